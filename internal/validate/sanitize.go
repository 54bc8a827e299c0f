package validate

import (
	"strings"
	"unicode"
)

// MaxValueLength bounds free-form setting values and spool fields.
const MaxValueLength = 256

// StripControlChars removes all control characters except newlines and tabs.
func StripControlChars(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// TruncateString truncates a string to the given length, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// SanitizeValue trims, strips control characters and bounds a CLI value.
func SanitizeValue(s string) string {
	s = strings.TrimSpace(StripControlChars(s))
	return TruncateString(s, MaxValueLength)
}
