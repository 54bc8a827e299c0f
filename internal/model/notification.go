package model

import (
	"fmt"
	"time"
)

// NotificationType defines the type of notification.
type NotificationType string

// Notification types.
const (
	NotifyReminder NotificationType = "reminder"
	NotifyBreak    NotificationType = "break"
	NotifyTest     NotificationType = "test"
)

// Notification is a titled alert handed to the sender backends.
type Notification struct {
	Type      NotificationType  `json:"type"`
	Category  Category          `json:"category,omitempty"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Sound     bool              `json:"sound"`
	Actions   []ActionID        `json:"actions,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Color     int               `json:"color,omitempty"` // Hex color for embeds
}

// NewNotification creates a new notification.
func NewNotification(t NotificationType, title, message string) *Notification {
	return &Notification{
		Type:      t,
		Title:     title,
		Message:   message,
		Fields:    make(map[string]string),
		Timestamp: time.Now(),
	}
}

// NewReminderNotification builds the plain reminder for c. The water body
// embeds the per-tap dose.
func NewReminderNotification(c Category, doseMl int, sound bool) *Notification {
	var title, body string
	switch c {
	case Water:
		title = "Time to drink water"
		body = fmt.Sprintf("Drink about %d ml. Tap \"I drank it\" afterwards to log it.", doseMl)
	case Stand:
		title = "Time to stand up"
		body = "Stand for 2 minutes, walk around and loosen your neck and shoulders."
	case Eyes:
		title = "Rest your eyes"
		body = "Follow 20-20-20: look at something 6 m away for 20 seconds and blink."
	}
	n := NewNotification(NotifyReminder, title, body)
	n.Category = c
	n.Sound = sound
	n.Actions = ActionsFor(c)
	n.Color = ColorForCategory(c)
	return n
}

// NewBreakNotification accompanies a forced break overlay.
func NewBreakNotification(c Category, sound bool) *Notification {
	var title, body string
	switch c {
	case Stand:
		title = "Stand and move"
		body = "Get up and walk around for 2 minutes now."
	default:
		title = "Eye rest"
		body = "Close your eyes or look far away for 20 seconds."
	}
	n := NewNotification(NotifyBreak, title, body)
	n.Category = c
	n.Sound = sound
	n.Actions = []ActionID{ActionSnooze10}
	n.Color = ColorForCategory(c)
	return n
}

// NewTestNotification uses fixed copy to check that delivery works.
func NewTestNotification() *Notification {
	n := NewNotification(NotifyTest, "Test notification", "If you can read this, reminders will reach you.")
	n.Sound = true
	n.Color = ColorPrimary
	return n
}

// WithField adds a field to the notification.
func (n *Notification) WithField(key, value string) *Notification {
	if n.Fields == nil {
		n.Fields = make(map[string]string)
	}
	n.Fields[key] = value
	return n
}

// WithColor sets the embed color.
func (n *Notification) WithColor(color int) *Notification {
	n.Color = color
	return n
}

// Notification colors (Discord-compatible hex values).
const (
	ColorWater   = 0x3498DB // Blue
	ColorStand   = 0x57F287 // Green
	ColorEyes    = 0xFEE75C // Yellow
	ColorInfo    = 0x5865F2 // Blurple
	ColorError   = 0xED4245 // Red
	ColorPrimary = 0x3498DB
)

// ColorForCategory returns the embed color used for c.
func ColorForCategory(c Category) int {
	switch c {
	case Water:
		return ColorWater
	case Stand:
		return ColorStand
	case Eyes:
		return ColorEyes
	default:
		return ColorInfo
	}
}

// Icon returns an emoji shortcode for the notification.
func (n *Notification) Icon() string {
	switch {
	case n.Type == NotifyTest:
		return "test_tube"
	case n.Category == Water:
		return "droplet"
	case n.Category == Stand:
		return "walking"
	case n.Category == Eyes:
		return "eyes"
	default:
		return "bell"
	}
}

// TypeLabel returns a human-readable label for the notification.
func (n *Notification) TypeLabel() string {
	switch n.Type {
	case NotifyReminder:
		return n.Category.DisplayName() + " Reminder"
	case NotifyBreak:
		return n.Category.DisplayName() + " Break"
	case NotifyTest:
		return "Test Notification"
	default:
		return "Notification"
	}
}
