package model

import "time"

// EntryType classifies a ledger entry.
type EntryType string

const (
	EntryTypeRevenue EntryType = "revenue"
	EntryTypeExpense EntryType = "expense"
)

// LedgerEntry is a single revenue or expense line in the Vault ledger.
type LedgerEntry struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	Type     EntryType `json:"type"`
	Category string    `json:"category"`
	Account  string    `json:"account"`
	Amount   float64   `json:"amount"`
	Budget   float64   `json:"budget"`
}

// ViewMode selects the reporting period for Vault snapshots.
type ViewMode string

const (
	ViewModeYTD     ViewMode = "ytd"     // current year, dates up to today
	ViewModeMTD     ViewMode = "mtd"     // current month, dates up to today
	ViewModeYear    ViewMode = "year"    // a selected full year
	ViewModeCompare ViewMode = "compare" // a selected set of years
)

// ParseViewMode validates a submitted view mode string.
func ParseViewMode(s string) (ViewMode, bool) {
	switch ViewMode(s) {
	case ViewModeYTD, ViewModeMTD, ViewModeYear, ViewModeCompare:
		return ViewMode(s), true
	default:
		return "", false
	}
}
