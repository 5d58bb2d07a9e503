package gateway

import (
	"errors"
	"fmt"
	"strings"
)

// CountryCode is the dialing prefix payments are submitted under.
const CountryCode = "+252"

// ErrInvalidPhone is returned for numbers that cannot be normalized; they
// fail fast and are never sent to a provider.
var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone converts a subscriber number to canonical international
// form. Accepted inputs: "+252615551234", "252615551234", "00252615551234",
// "0615551234" and the bare nine-digit "615551234".
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '+', r == ' ', r == '-', r == '(', r == ')':
			// separators and the leading plus are dropped
		default:
			return "", fmt.Errorf("%w: unexpected character %q", ErrInvalidPhone, r)
		}
	}

	number := digits.String()
	switch {
	case strings.HasPrefix(number, "00252"):
		number = number[5:]
	case strings.HasPrefix(number, "252"):
		number = number[3:]
	case strings.HasPrefix(number, "0"):
		number = number[1:]
	}

	if len(number) != 9 {
		return "", fmt.Errorf("%w: expected 9 subscriber digits, got %d", ErrInvalidPhone, len(number))
	}
	if number[0] == '0' {
		return "", fmt.Errorf("%w: subscriber number cannot start with 0", ErrInvalidPhone)
	}

	return CountryCode + number, nil
}
