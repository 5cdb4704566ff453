// Package phone formats free-form phone input for display and storage.
//
// The formatter is deliberately lenient: it never rejects non-empty input and always
// produces "+" followed by the digits it found. Callers that need a coarse sanity
// check use IsValidPhoneNumber.
package phone

import "strings"

const minValidDigits = 8

// Digits returns the ASCII digits of input, discarding everything else.
func Digits(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for i := 0; i < len(input); i++ {
		if c := input[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ToE164 converts input to an E.164-like "+<digits>" string.
// Input without a leading "+" and with fewer than 11 digits is taken as a
// (possibly partial) US number and gets the "+1" prefix.
func ToE164(input string) string {
	if input == "" {
		return ""
	}

	digits := Digits(input)
	hasCountryCode := strings.HasPrefix(input, "+") || len(digits) >= 11

	switch {
	case !hasCountryCode && len(digits) == 10:
		return "+1" + digits
	case !hasCountryCode:
		// partial domestic number, still prefixed
		return "+1" + digits
	default:
		return "+" + digits
	}
}

// IsValidPhoneNumber reports whether input has at least eight digits.
func IsValidPhoneNumber(input string) bool {
	if input == "" {
		return false
	}
	return len(Digits(input)) >= minValidDigits
}
