// Package format holds display formatting shared by the intake API and
// the report exporters.
package format

import "strings"

// PhoneNumber normalizes free-typed phone input into (XXX) XXX-XXXX form.
// Non-digits are stripped, digits beyond the tenth are dropped, and short
// inputs get the partial pattern: fewer than 3 digits come back raw,
// 3 to 5 digits get the area-code parens only.
func PhoneNumber(input string) string {
	var digits strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			if digits.Len() == 10 {
				break
			}
		}
	}

	d := digits.String()
	switch {
	case len(d) >= 6:
		return "(" + d[0:3] + ") " + d[3:6] + "-" + d[6:]
	case len(d) >= 3:
		return "(" + d[0:3] + ") " + d[3:]
	default:
		return d
	}
}
