package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DurationResult represents the result of parsing a duration.
type DurationResult struct {
	Duration time.Duration
	Valid    bool
}

// durationPattern matches "2h", "30 min", "1h 30m", "2.5 hours". A bare
// number is minutes.
var durationPattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(h|hr|hrs|hour|hours|m|min|mins|minute|minutes|s|sec|secs|second|seconds)?\s*(?:(\d+(?:\.\d+)?)\s*(m|min|mins|minute|minutes))?$`)

// ParseDuration parses a human-readable duration string.
func ParseDuration(input string) DurationResult {
	input = strings.TrimSpace(input)
	if input == "" {
		return DurationResult{}
	}

	if d, err := time.ParseDuration(input); err == nil {
		return DurationResult{Duration: d, Valid: d > 0}
	}

	matches := durationPattern.FindStringSubmatch(input)
	if matches == nil {
		return DurationResult{}
	}

	var total time.Duration
	value, _ := strconv.ParseFloat(matches[1], 64)
	unit := strings.ToLower(matches[2])
	if unit == "" {
		unit = "m"
	}
	total += unitToDuration(value, unit)

	if matches[3] != "" {
		value, _ := strconv.ParseFloat(matches[3], 64)
		total += unitToDuration(value, strings.ToLower(matches[4]))
	}

	if total <= 0 {
		return DurationResult{}
	}
	return DurationResult{Duration: total, Valid: true}
}

func unitToDuration(value float64, unit string) time.Duration {
	switch unit {
	case "h", "hr", "hrs", "hour", "hours":
		return time.Duration(value * float64(time.Hour))
	case "s", "sec", "secs", "second", "seconds":
		return time.Duration(value * float64(time.Second))
	default:
		return time.Duration(value * float64(time.Minute))
	}
}

// ParseMinutes parses a pause or snooze length into whole minutes,
// rounding up.
func ParseMinutes(input string) (int, error) {
	result := ParseDuration(input)
	if !result.Valid {
		return 0, NewDurationError(input)
	}
	return int(math.Ceil(result.Duration.Minutes())), nil
}

// IsDurationLike checks if a string looks like a duration expression.
func IsDurationLike(s string) bool {
	return ParseDuration(s).Valid
}
