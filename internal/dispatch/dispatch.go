// Package dispatch routes user actions from notifications, overlays and
// the CLI onto engine calls.
package dispatch

import (
	"log/slog"

	"github.com/manav03panchal/nudge/internal/engine"
	"github.com/manav03panchal/nudge/internal/logging"
	"github.com/manav03panchal/nudge/internal/model"
)

// Action is an inbound (action id, optional category) pair.
type Action struct {
	ID       model.ActionID `json:"id"`
	Category model.Category `json:"category,omitempty"`
}

// Target is the subset of the engine that actions drive.
type Target interface {
	MarkWaterDone() engine.WaterResult
	StartBreak(c model.Category)
	Snooze(c model.Category, minutes int)
}

// SettingsOpener hands off to whatever settings surface the host has.
type SettingsOpener interface {
	OpenSettings()
}

// Outcome describes what a dispatched action did.
type Outcome struct {
	Handled bool
	Water   *engine.WaterResult
}

// SnoozeMinutes is the fixed snooze of the snooze_10 action.
const SnoozeMinutes = 10

// Dispatcher maps every known action id to exactly one call.
type Dispatcher struct {
	target   Target
	settings SettingsOpener
	routes   map[model.ActionID]func(Action) Outcome
	log      *slog.Logger
}

// New creates a dispatcher. settings may be nil.
func New(target Target, settings SettingsOpener) *Dispatcher {
	d := &Dispatcher{
		target:   target,
		settings: settings,
		log:      logging.Component("dispatch"),
	}
	d.routes = map[model.ActionID]func(Action) Outcome{
		model.ActionWaterDone:    d.waterDone,
		model.ActionStartStand:   d.startBreak(model.Stand),
		model.ActionStartEyes:    d.startBreak(model.Eyes),
		model.ActionSnooze10:     d.snooze,
		model.ActionOpenSettings: d.openSettings,
	}
	return d
}

// Dispatch runs the route for a. Unknown ids are logged and ignored.
func (d *Dispatcher) Dispatch(a Action) Outcome {
	route, ok := d.routes[a.ID]
	if !ok {
		d.log.Debug("ignoring unknown action", logging.KeyAction, a.ID)
		return Outcome{}
	}
	d.log.Debug("dispatching action", logging.KeyAction, a.ID, logging.KeyCategory, a.Category)
	return route(a)
}

func (d *Dispatcher) waterDone(Action) Outcome {
	res := d.target.MarkWaterDone()
	return Outcome{Handled: true, Water: &res}
}

func (d *Dispatcher) startBreak(c model.Category) func(Action) Outcome {
	return func(Action) Outcome {
		d.target.StartBreak(c)
		return Outcome{Handled: true}
	}
}

func (d *Dispatcher) snooze(a Action) Outcome {
	if !a.Category.Valid() {
		d.log.Debug("snooze without category ignored", logging.KeyCategory, a.Category)
		return Outcome{}
	}
	d.target.Snooze(a.Category, SnoozeMinutes)
	return Outcome{Handled: true}
}

func (d *Dispatcher) openSettings(Action) Outcome {
	if d.settings == nil {
		return Outcome{}
	}
	d.settings.OpenSettings()
	return Outcome{Handled: true}
}
