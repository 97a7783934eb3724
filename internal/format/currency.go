package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usPrinter = message.NewPrinter(language.AmericanEnglish)

// USD renders an amount as a grouped US dollar string, e.g. "$1,234,567.89".
func USD(amount float64) string {
	return usPrinter.Sprintf("$%.2f", amount)
}

// USDWhole renders an amount rounded to whole dollars, e.g. "$1,234,568".
func USDWhole(amount float64) string {
	return usPrinter.Sprintf("$%.0f", amount)
}
