package domain

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]+$`)
	phoneNoise   = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")
)

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email has a single @ separating non-blank local
// and domain parts, and a dotted domain.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPhone reports whether phone, once spaces, dashes, dots and parentheses
// are stripped, holds 10 to 15 characters that are digits or a leading +.
func ValidPhone(phone string) bool {
	stripped := phoneNoise.Replace(phone)
	n := len(stripped)
	if n < 10 || n > 15 {
		return false
	}
	return phonePattern.MatchString(stripped)
}
