package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var clockPattern = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)

// ParseClock parses a time of day into minutes after midnight.
// Accepts "9", "09:30", "21:00", "9am", "9:30 pm" and "24:00" (midnight).
func ParseClock(input string) (int, error) {
	s := strings.TrimSpace(input)
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, NewClockError(input)
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if minute > 59 {
		return 0, NewClockError(input)
	}

	switch strings.ToLower(m[3]) {
	case "am":
		if hour < 1 || hour > 12 {
			return 0, NewClockError(input)
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, NewClockError(input)
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour == 24 && minute == 0 {
			hour = 0
		}
		if hour > 23 {
			return 0, NewClockError(input)
		}
	}

	return hour*60 + minute, nil
}

// looksLikeClock reports whether s is a time of day rather than a length.
func looksLikeClock(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Contains(s, ":") || strings.HasSuffix(s, "am") || strings.HasSuffix(s, "pm")
}
