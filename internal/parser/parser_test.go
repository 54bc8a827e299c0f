package parser

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/nudge/internal/errors"
)

var now = time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC) // Monday

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		valid    bool
	}{
		{"go_duration", "1h30m", 90 * time.Minute, true},
		{"go_seconds", "45s", 45 * time.Second, true},
		{"bare_number_is_minutes", "30", 30 * time.Minute, true},
		{"hours_words", "2 hours", 2 * time.Hour, true},
		{"minutes_words", "30 minutes", 30 * time.Minute, true},
		{"decimal_hours", "1.5h", 90 * time.Minute, true},
		{"spaced_combo", "1h 15m", 75 * time.Minute, true},
		{"empty", "", 0, false},
		{"zero", "0", 0, false},
		{"negative", "-5m", 0, false},
		{"garbage", "soon", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseDuration(tt.input)
			assert.Equal(t, tt.valid, result.Valid)
			if tt.valid {
				assert.Equal(t, tt.expected, result.Duration)
			}
		})
	}
}

func TestParseMinutes(t *testing.T) {
	m, err := ParseMinutes("90")
	require.NoError(t, err)
	assert.Equal(t, 90, m)

	m, err = ParseMinutes("90s")
	require.NoError(t, err)
	assert.Equal(t, 2, m, "rounds up")

	_, err = ParseMinutes("later")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidDuration))
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"9", 540, true},
		{"09:30", 570, true},
		{"21:00", 1260, true},
		{"0:00", 0, true},
		{"24:00", 0, true},
		{"9am", 540, true},
		{"9:30 pm", 1290, true},
		{"12am", 0, true},
		{"12pm", 720, true},
		{"25:00", 0, false},
		{"10:75", 0, false},
		{"13pm", 0, false},
		{"noon", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if !tt.ok {
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, errors.ErrInvalidTime))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDeadlineRelative(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"+45m", now.Add(45 * time.Minute)},
		{"+2h", now.Add(2 * time.Hour)},
		{"+1d", now.AddDate(0, 0, 1)},
		{"+1w", now.AddDate(0, 0, 7)},
		{"90m", now.Add(90 * time.Minute)},
		{"30", now.Add(30 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseDeadline(tt.input, now)
			require.NoError(t, result.Error)
			assert.Equal(t, tt.want, result.Time)
		})
	}
}

func TestParseDeadlineNatural(t *testing.T) {
	result := ParseDeadline("tomorrow at 3pm", now)
	require.NoError(t, result.Error)
	assert.Equal(t, 3, result.Time.Day())
	assert.Equal(t, 15, result.Time.Hour())
}

func TestParseDeadlineEmpty(t *testing.T) {
	result := ParseDeadline("   ", now)
	require.Error(t, result.Error)
	assert.True(t, stderrors.Is(result.Error, errors.ErrInvalidTime))
}

func TestParseDeadlineArgs(t *testing.T) {
	result := ParseDeadlineArgs([]string{"+2h"}, now)
	require.NoError(t, result.Error)
	assert.Equal(t, now.Add(2*time.Hour), result.Time)
}

func TestFormatDeadline(t *testing.T) {
	assert.Equal(t, "Today at 5:30 PM", FormatDeadline(time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC), now))
	assert.Equal(t, "Tomorrow at 9:00 AM", FormatDeadline(time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "Friday at 9:00 AM", FormatDeadline(time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "Mon, Mar 16 at 9:00 AM", FormatDeadline(time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC), now))
}

func TestFormatTimeUntil(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Minute, "overdue"},
		{30 * time.Second, "in less than a minute"},
		{time.Minute, "in 1 minute"},
		{45 * time.Minute, "in 45 minutes"},
		{time.Hour, "in 1 hour"},
		{2*time.Hour + 5*time.Minute, "in 2 hours 5 minutes"},
		{3 * 24 * time.Hour, "in 3 days"},
		{14 * 24 * time.Hour, "in 2 weeks"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTimeUntil(now.Add(tt.d), now), tt.d.String())
	}
}

func TestTimeParseError(t *testing.T) {
	err := NewDurationError("soon")

	assert.Equal(t, "invalid duration 'soon': could not parse duration", err.Error())
	assert.Contains(t, err.FormatWithExamples(), "Valid examples:")
	assert.Contains(t, err.FormatWithExamples(), "1h30m")

	ue := err.ToUserError()
	assert.Equal(t, "duration", ue.Field)
	assert.Equal(t, "soon", ue.Value)
	assert.NotEmpty(t, ue.Suggestion)
	assert.True(t, stderrors.Is(ue, errors.ErrInvalidDuration))
}
