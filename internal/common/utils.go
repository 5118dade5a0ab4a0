package common

import "strings"

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// NormalizeName trims and lower-cases a free-text name for comparison.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SameName compares two free-text names ignoring case and surrounding whitespace.
func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}
