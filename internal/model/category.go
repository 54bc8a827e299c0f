package model

import "strings"

// Category identifies a reminder kind.
type Category string

// Reminder categories.
const (
	Water Category = "water"
	Stand Category = "stand"
	Eyes  Category = "eyes"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{Water, Stand, Eyes}
}

// ParseCategory parses a category name, case-insensitively.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "water", "drink":
		return Water, true
	case "stand", "move":
		return Stand, true
	case "eyes", "eye":
		return Eyes, true
	default:
		return "", false
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case Water, Stand, Eyes:
		return true
	}
	return false
}

// DisplayName returns the capitalised label for c.
func (c Category) DisplayName() string {
	switch c {
	case Water:
		return "Water"
	case Stand:
		return "Stand"
	case Eyes:
		return "Eyes"
	default:
		return string(c)
	}
}

// IntervalRange returns the allowed interval bounds in minutes.
func (c Category) IntervalRange() (min, max int) {
	switch c {
	case Water:
		return 15, 180
	case Stand:
		return 20, 120
	case Eyes:
		return 10, 60
	default:
		return 15, 180
	}
}

// DefaultIntervalMinutes returns the out-of-the-box interval for c.
func (c Category) DefaultIntervalMinutes() int {
	switch c {
	case Stand:
		return 30
	case Eyes:
		return 20
	default:
		return 60
	}
}

// ClampInterval clamps minutes into the range of c.
func (c Category) ClampInterval(minutes int) int {
	lo, hi := c.IntervalRange()
	return clampInt(minutes, lo, hi)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
