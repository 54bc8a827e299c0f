package model

// ActionID identifies a user action routed back from notifications,
// overlays and the CLI.
type ActionID string

// Known actions.
const (
	ActionWaterDone    ActionID = "water_done"
	ActionStartStand   ActionID = "start_stand"
	ActionStartEyes    ActionID = "start_eyes"
	ActionSnooze10     ActionID = "snooze_10"
	ActionOpenSettings ActionID = "open_settings"
)

// Actions returns every known action id.
func Actions() []ActionID {
	return []ActionID{ActionWaterDone, ActionStartStand, ActionStartEyes, ActionSnooze10, ActionOpenSettings}
}

// Label returns the button caption for a.
func (a ActionID) Label() string {
	switch a {
	case ActionWaterDone:
		return "I drank it"
	case ActionStartStand:
		return "Start stand break"
	case ActionStartEyes:
		return "Start eye rest"
	case ActionSnooze10:
		return "Snooze 10 min"
	case ActionOpenSettings:
		return "Settings"
	default:
		return string(a)
	}
}

// ActionsFor returns the action buttons offered with a reminder of c.
func ActionsFor(c Category) []ActionID {
	switch c {
	case Water:
		return []ActionID{ActionWaterDone, ActionSnooze10}
	case Stand:
		return []ActionID{ActionStartStand, ActionSnooze10}
	case Eyes:
		return []ActionID{ActionStartEyes, ActionSnooze10}
	default:
		return nil
	}
}
