package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// DeadlineResult holds the parsed deadline and any error.
type DeadlineResult struct {
	Time  time.Time
	Error error
}

// relativeRegex matches relative time expressions like "+5m", "+1h", "+2d".
var relativeRegex = regexp.MustCompile(`^\+(\d+)([smhdw])$`)

// ParseDeadline parses the end of a pause relative to now.
// Supports formats like:
//   - "+45m", "+2h", "+1d" (relative)
//   - "tomorrow 9am", "monday 8:30" (natural language)
//   - "2026-01-15 14:00" (ISO format)
//
// A time of day that already passed today means tomorrow.
func ParseDeadline(input string, now time.Time) DeadlineResult {
	input = strings.TrimSpace(input)
	if input == "" {
		return DeadlineResult{Error: NewDeadlineError(input)}
	}

	if match := relativeRegex.FindStringSubmatch(input); match != nil {
		return parseRelativeDeadline(match[1], match[2], now)
	}

	// A bare duration ("90m", "1h30m") also reads as relative.
	if d := ParseDuration(input); d.Valid && !looksLikeClock(input) {
		return DeadlineResult{Time: now.Add(d.Duration)}
	}

	cfg := &dateparser.Configuration{CurrentTime: now}
	result, err := dateparser.Parse(cfg, input)
	if err != nil {
		return DeadlineResult{Error: NewDeadlineError(input)}
	}

	t := result.Time
	if !t.After(now) {
		if !isSameDay(t, now) {
			return DeadlineResult{Error: fmt.Errorf("deadline %q is in the past", input)}
		}
		t = t.AddDate(0, 0, 1)
	}
	return DeadlineResult{Time: t}
}

func parseRelativeDeadline(numStr, unit string, now time.Time) DeadlineResult {
	num, _ := strconv.Atoi(numStr)
	if num <= 0 {
		return DeadlineResult{Error: fmt.Errorf("invalid duration: must be positive")}
	}

	var d time.Duration
	switch unit {
	case "s":
		d = time.Duration(num) * time.Second
	case "m":
		d = time.Duration(num) * time.Minute
	case "h":
		d = time.Duration(num) * time.Hour
	case "d":
		return DeadlineResult{Time: now.AddDate(0, 0, num)}
	case "w":
		return DeadlineResult{Time: now.AddDate(0, 0, 7*num)}
	default:
		return DeadlineResult{Error: fmt.Errorf("invalid time unit: %s", unit)}
	}

	return DeadlineResult{Time: now.Add(d)}
}

func isSameDay(t1, t2 time.Time) bool {
	y1, m1, d1 := t1.Date()
	y2, m2, d2 := t2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ParseDeadlineArgs joins args into one expression.
func ParseDeadlineArgs(args []string, now time.Time) DeadlineResult {
	return ParseDeadline(strings.Join(args, " "), now)
}

// FormatDeadline renders t relative to now, e.g. "Today at 3:04 PM".
func FormatDeadline(t, now time.Time) string {
	var datePart string
	switch {
	case isSameDay(t, now):
		datePart = "Today"
	case isSameDay(t, now.AddDate(0, 0, 1)):
		datePart = "Tomorrow"
	case t.Sub(now) < 7*24*time.Hour && t.After(now):
		datePart = t.Format("Monday")
	default:
		datePart = t.Format("Mon, Jan 2")
	}
	return fmt.Sprintf("%s at %s", datePart, t.Format("3:04 PM"))
}

// FormatTimeUntil renders the wait until t, e.g. "in 2 hours 5 minutes".
func FormatTimeUntil(t, now time.Time) string {
	diff := t.Sub(now)
	if diff < 0 {
		return "overdue"
	}
	if diff < time.Minute {
		return "in less than a minute"
	}
	if diff < time.Hour {
		return "in " + plural(int(diff.Minutes()), "minute")
	}
	if diff < 24*time.Hour {
		hours := int(diff.Hours())
		mins := int(diff.Minutes()) % 60
		if mins > 0 {
			return fmt.Sprintf("in %s %s", plural(hours, "hour"), plural(mins, "minute"))
		}
		return "in " + plural(hours, "hour")
	}
	if diff < 7*24*time.Hour {
		return "in " + plural(int(diff.Hours()/24), "day")
	}
	return "in " + plural(int(diff.Hours()/(24*7)), "week")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
