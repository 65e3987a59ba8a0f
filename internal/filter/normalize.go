// Package filter holds the generic list pipeline shared by every entity view:
// field normalization, predicate composition, filtering and stable sorting.
package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Fold returns the case-folded form of s used for case-insensitive matching.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	return cases.Fold().String(s)
}

// Digits strips everything but decimal digits, so "(555) 010-2000" and
// "555.010.2000" compare equal.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Inactive reports whether a categorical filter value means "no filter".
func Inactive(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || strings.EqualFold(v, All)
}

// All is the sentinel value of an unset categorical filter.
const All = "all"

// ParseFlag reads a boolean toggle from a UI control value. "true"/"yes"/"1"
// and "false"/"no"/"0" set the flag; anything else, including "all", leaves
// it inactive.
func ParseFlag(value string) *bool {
	var b bool
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1":
		b = true
	case "false", "no", "0":
		b = false
	default:
		return nil
	}
	return &b
}
