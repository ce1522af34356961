package domain

import (
	"net/mail"
	"strings"
)

// DefaultCountryCode is used when a phone number is given in local form
// (e.g. "0701234567"). Overridable via configuration at dispatch time.
const DefaultCountryCode = "+256"

// NormalizePhone converts a phone number to canonical international form
// ("+256701234567"). Accepted inputs: "+256…", "00256…", "256…", local
// "07…", and bare subscriber numbers; separators (spaces, dashes, dots,
// parentheses) are stripped. Normalization is idempotent.
//
// Returns ErrInvalidPhone for anything that does not reduce to a plausible
// E.164 number. Invalid numbers must be rejected before any provider call.
func NormalizePhone(raw, countryCode string) (string, error) {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}

	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
			// separator, drop
		default:
			return "", ErrInvalidPhone
		}
	}
	s := b.String()

	cc := strings.TrimPrefix(countryCode, "+")

	switch {
	case strings.HasPrefix(s, "+"):
		// already international
	case strings.HasPrefix(s, "00"):
		s = "+" + s[2:]
	case strings.HasPrefix(s, cc):
		s = "+" + s
	case strings.HasPrefix(s, "0"):
		s = "+" + cc + s[1:]
	case s != "":
		s = "+" + cc + s
	}

	digits := strings.TrimPrefix(s, "+")
	if len(digits) < 9 || len(digits) > 15 {
		return "", ErrInvalidPhone
	}
	return s, nil
}

// MaskPhone hides the middle of a phone number for logs and API responses:
// "+256701234567" → "+2567****567". The placeholder is fixed-width so the
// masked form leaks nothing about the number's length.
func MaskPhone(phone string) string {
	if len(phone) < 9 {
		return "****"
	}
	return phone[:5] + "****" + phone[len(phone)-3:]
}

// MaskEmail keeps the first character of the local part and the full domain:
// "jdoe@example.com" → "j***@example.com".
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "****"
	}
	return email[:1] + "***" + email[at:]
}

// ValidateEmail rejects addresses net/mail cannot parse. Deliberately
// permissive beyond that — the SMTP server is the final authority.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}
