package sanitizer

import (
	"strings"
	"unicode"
)

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

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeAddress(address string) string {
	return TrimAndNormalize(address)
}

// NormalizeSearchTerm prepares a free-text query for case-insensitive
// matching.
func NormalizeSearchTerm(term string) string {
	return strings.ToLower(TrimAndNormalize(term))
}

// NormalizeTag is used for expertise tags.
func NormalizeTag(tag string) string {
	return strings.ToLower(TrimAndNormalize(tag))
}
