package parser

import (
	"fmt"
	"strings"

	"github.com/manav03panchal/nudge/internal/errors"
)

// TimeParseError represents a time parsing error with helpful suggestions.
type TimeParseError struct {
	Input      string
	Field      string
	Message    string
	Examples   []string
	Suggestion string
	sentinel   error
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Input, e.Message)
}

// Unwrap lets errors.Is match the domain sentinel.
func (e *TimeParseError) Unwrap() error {
	return e.sentinel
}

// FormatWithExamples returns the error message with example suggestions.
func (e *TimeParseError) FormatWithExamples() string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Examples) > 0 {
		sb.WriteString("\n\nValid examples:\n")
		for _, ex := range e.Examples {
			sb.WriteString("  - ")
			sb.WriteString(ex)
			sb.WriteString("\n")
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

// DurationExamples provides example pause and snooze lengths.
var DurationExamples = []string{
	"30",
	"45m",
	"1h30m",
	"2 hours",
}

// DeadlineExamples provides example pause deadlines.
var DeadlineExamples = []string{
	"+90m",
	"17:30",
	"tomorrow 9am",
	"monday 8:30",
}

// ClockExamples provides example times of day.
var ClockExamples = []string{
	"9",
	"09:30",
	"21:00",
	"9pm",
}

// NewDurationError creates a duration parse error with standard examples.
func NewDurationError(input string) *TimeParseError {
	return &TimeParseError{
		Input:      input,
		Field:      "duration",
		Message:    "could not parse duration",
		Examples:   DurationExamples,
		Suggestion: "A bare number is minutes; hours (h) and minutes (m) can be combined.",
		sentinel:   errors.ErrInvalidDuration,
	}
}

// NewDeadlineError creates a deadline parse error with standard examples.
func NewDeadlineError(input string) *TimeParseError {
	return &TimeParseError{
		Input:      input,
		Field:      "deadline",
		Message:    "could not parse time",
		Examples:   DeadlineExamples,
		Suggestion: "Try a relative time like '+2h' or a time like 'tomorrow 9am'.",
		sentinel:   errors.ErrInvalidTime,
	}
}

// NewClockError creates a time-of-day parse error.
func NewClockError(input string) *TimeParseError {
	return &TimeParseError{
		Input:      input,
		Field:      "time of day",
		Message:    "expected HH:MM",
		Examples:   ClockExamples,
		Suggestion: "Use a 24-hour time like 09:00 or 21:30.",
		sentinel:   errors.ErrInvalidTime,
	}
}

// ToUserError converts a TimeParseError to a UserError for consistent handling.
func (e *TimeParseError) ToUserError() *errors.UserError {
	suggestion := e.Suggestion
	if suggestion == "" && len(e.Examples) > 0 {
		suggestion = "Try: " + strings.Join(e.Examples[:min(3, len(e.Examples))], ", ")
	}
	sentinel := e.sentinel
	if sentinel == nil {
		sentinel = errors.ErrInvalidValue
	}
	ue := errors.InvalidInput(sentinel, e.Field, e.Input, suggestion)
	ue.Message = e.Message
	return ue
}
