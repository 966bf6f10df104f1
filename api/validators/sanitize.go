package validators

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString trims input, collapses runs of whitespace to one space and
// cuts the result to at most maxLen bytes without splitting a character, so
// product searches in any script stay valid UTF-8.
func SanitizeString(input string, maxLen int) string {
	clean := strings.Join(strings.Fields(input), " ")
	if maxLen <= 0 || len(clean) <= maxLen {
		return clean
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(clean[cut]) {
		cut--
	}
	return strings.TrimSpace(clean[:cut])
}
