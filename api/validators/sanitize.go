package validators

import "strings"

// SanitizeString trims surrounding whitespace and hard-caps length for
// free-text fields that end up inside order address snapshots.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
