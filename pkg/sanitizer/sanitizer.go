// Package sanitizer normalizes free-text input before validation and storage.
// All functions are idempotent and never return errors; invalid input
// degrades to the empty string.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses any run of whitespace into
// a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeName cleans property names.
func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeLocation cleans location strings.
func NormalizeLocation(location string) string {
	return TrimAndNormalize(location)
}

// NormalizeComment cleans review comments: trims the edges and strips
// control characters but keeps the author's line breaks.
func NormalizeComment(comment string) string {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return ""
	}

	var result strings.Builder
	for _, r := range comment {
		if r == '\n' || !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}
