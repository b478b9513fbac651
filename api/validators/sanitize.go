package validators

import "strings"

// SanitizeString trims whitespace and caps the result at maxLen runes.
// Truncation counts runes, not bytes; accented names common in
// Portuguese must not be cut mid-character.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return trimmed
}
