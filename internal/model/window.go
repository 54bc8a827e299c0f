package model

import "time"

// MinutesPerDay is the number of minutes in a wall-clock day.
const MinutesPerDay = 24 * 60

// ActiveWindow is the daily span, in minutes after local midnight, during
// which reminders may fire. Start == End means all day; Start > End wraps
// past midnight.
type ActiveWindow struct {
	StartMinutes int
	EndMinutes   int
}

// AllDay reports whether the window covers the whole day.
func (w ActiveWindow) AllDay() bool {
	return w.StartMinutes == w.EndMinutes
}

// ContainsMinute reports whether minute-of-day m lies inside the window.
func (w ActiveWindow) ContainsMinute(m int) bool {
	switch {
	case w.AllDay():
		return true
	case w.StartMinutes < w.EndMinutes:
		return m >= w.StartMinutes && m < w.EndMinutes
	default:
		return m >= w.StartMinutes || m < w.EndMinutes
	}
}

// Contains reports whether t falls inside the window, using t's location.
func (w ActiveWindow) Contains(t time.Time) bool {
	return w.ContainsMinute(MinuteOfDay(t))
}

// NextStart returns t itself when t is inside the window, otherwise the
// next instant the window opens: today's start if still ahead of t, else
// tomorrow's.
func (w ActiveWindow) NextStart(t time.Time) time.Time {
	if w.Contains(t) {
		return t
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), w.StartMinutes/60, w.StartMinutes%60, 0, 0, t.Location())
	if start.After(t) {
		return start
	}
	return start.AddDate(0, 0, 1)
}

// DurationMinutes returns the length of the window.
func (w ActiveWindow) DurationMinutes() int {
	switch {
	case w.AllDay():
		return MinutesPerDay
	case w.StartMinutes < w.EndMinutes:
		return w.EndMinutes - w.StartMinutes
	default:
		return MinutesPerDay - w.StartMinutes + w.EndMinutes
	}
}

// String renders the window as HH:MM-HH:MM.
func (w ActiveWindow) String() string {
	if w.AllDay() {
		return "all day"
	}
	return FormatClock(w.StartMinutes) + "-" + FormatClock(w.EndMinutes)
}

// MinuteOfDay returns the minutes elapsed since local midnight of t.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// FormatClock renders a minute-of-day as HH:MM.
func FormatClock(minutes int) string {
	m := normalizeMinuteOfDay(minutes)
	return twoDigits(m/60) + ":" + twoDigits(m%60)
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

func normalizeMinuteOfDay(m int) int {
	m %= MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return m
}
