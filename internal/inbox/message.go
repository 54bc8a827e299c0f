// Package inbox carries CLI requests to a running daemon.
//
// The daemon holds the database lock, so commands that would change
// preferences write a Message into a spool directory instead. The daemon
// watches the spool, drains it in arrival order and routes every message.
package inbox

import (
	"fmt"
	"time"

	"github.com/manav03panchal/nudge/internal/model"
)

// Kind names what a message asks the daemon to do.
type Kind string

const (
	KindAction      Kind = "action"
	KindPause       Kind = "pause"
	KindResume      Kind = "resume"
	KindSnooze      Kind = "snooze"
	KindSetting     Kind = "setting"
	KindReset       Kind = "reset"
	KindRecalculate Kind = "recalculate"
	KindTest        Kind = "test"
)

// Message is one spooled request.
type Message struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	Action    model.ActionID `json:"action,omitempty"`
	Category  model.Category `json:"category,omitempty"`
	Minutes   int            `json:"minutes,omitempty"`
	Until     time.Time      `json:"until,omitzero"`
	Key       string         `json:"key,omitempty"`
	Value     string         `json:"value,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Action builds an action message.
func Action(id model.ActionID, c model.Category) Message {
	return Message{Kind: KindAction, Action: id, Category: c}
}

// Pause builds a pause for a number of minutes.
func Pause(minutes int) Message {
	return Message{Kind: KindPause, Minutes: minutes}
}

// PauseUntil builds a pause ending at t.
func PauseUntil(t time.Time) Message {
	return Message{Kind: KindPause, Until: t}
}

// Resume builds a resume message.
func Resume() Message {
	return Message{Kind: KindResume}
}

// Snooze builds a per-category snooze.
func Snooze(c model.Category, minutes int) Message {
	return Message{Kind: KindSnooze, Category: c, Minutes: minutes}
}

// Setting builds a preference edit.
func Setting(key, value string) Message {
	return Message{Kind: KindSetting, Key: key, Value: value}
}

// Reset builds a reset-to-defaults message.
func Reset() Message {
	return Message{Kind: KindReset}
}

// Recalculate asks the engine to rebuild its timers.
func Recalculate() Message {
	return Message{Kind: KindRecalculate}
}

// Test asks the daemon to send a test notification to every backend.
func Test() Message {
	return Message{Kind: KindTest}
}

func (m Message) String() string {
	switch m.Kind {
	case KindAction:
		if m.Category != "" {
			return fmt.Sprintf("action %s (%s)", m.Action, m.Category)
		}
		return fmt.Sprintf("action %s", m.Action)
	case KindPause:
		if !m.Until.IsZero() {
			return "pause until " + m.Until.Format(time.RFC3339)
		}
		return fmt.Sprintf("pause %dm", m.Minutes)
	case KindSnooze:
		return fmt.Sprintf("snooze %s %dm", m.Category, m.Minutes)
	case KindSetting:
		return fmt.Sprintf("set %s=%s", m.Key, m.Value)
	default:
		return string(m.Kind)
	}
}
