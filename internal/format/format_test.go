package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoneNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"full number", "5551234567", "(555) 123-4567"},
		{"non-digits stripped", "abc5551234567xyz", "(555) 123-4567"},
		{"already formatted", "(555) 123-4567", "(555) 123-4567"},
		{"excess digits dropped", "555123456789999", "(555) 123-4567"},
		{"three digits", "555", "(555) "},
		{"five digits", "55512", "(555) 12"},
		{"six digits", "555123", "(555) 123-"},
		{"two digits", "55", "55"},
		{"one digit", "7", "7"},
		{"empty", "", ""},
		{"letters only", "call me", ""},
		{"dashes and spaces", "555-123-4567", "(555) 123-4567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PhoneNumber(tt.input))
		})
	}
}

func TestPhoneNumber_DigitChannelIdempotent(t *testing.T) {
	// Reapplying the formatter to its own output must preserve the digit
	// sequence.
	out := PhoneNumber("555-123-4567")
	assert.Equal(t, out, PhoneNumber(out))
}

func TestUSD(t *testing.T) {
	assert.Equal(t, "$1,234,567.89", USD(1234567.891))
	assert.Equal(t, "$0.00", USD(0))
	assert.Equal(t, "$50.00", USD(50))
}

func TestUSDWhole(t *testing.T) {
	assert.Equal(t, "$420,000", USDWhole(420000))
	assert.Equal(t, "$1,235", USDWhole(1234.6))
}
