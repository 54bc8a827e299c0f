package inbox

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/manav03panchal/nudge/internal/dispatch"
	"github.com/manav03panchal/nudge/internal/errors"
	"github.com/manav03panchal/nudge/internal/logging"
	"github.com/manav03panchal/nudge/internal/model"
	"github.com/manav03panchal/nudge/internal/settings"
	"github.com/manav03panchal/nudge/internal/validate"
)

// Dispatcher runs notification actions.
type Dispatcher interface {
	Dispatch(a dispatch.Action) dispatch.Outcome
}

// Engine is the part of the reminder engine the inbox drives.
type Engine interface {
	PauseAll(minutes int)
	PauseUntil(t time.Time)
	ResumeAll()
	Snooze(c model.Category, minutes int)
	Recalculate()
}

// Prefs edits persisted preferences.
type Prefs interface {
	Update(fn func(p *model.Preferences)) *model.Preferences
	Reset() *model.Preferences
}

// Routes wires a Router. Test may be nil.
type Routes struct {
	Dispatcher Dispatcher
	Engine     Engine
	Prefs      Prefs
	Test       func()
}

// Router applies spooled messages inside the daemon.
type Router struct {
	routes Routes
	log    *slog.Logger
}

// NewRouter creates a router.
func NewRouter(r Routes) *Router {
	return &Router{routes: r, log: logging.Component("inbox")}
}

// Handle applies m and logs failures. It is shaped for Spool.Watch.
func (r *Router) Handle(m Message) {
	if err := r.Route(m); err != nil {
		r.log.Warn("inbox message rejected", "message", m.String(), logging.KeyError, err)
		return
	}
	r.log.Debug("inbox message applied", "message", m.String())
}

// Route applies m. Messages were validated by the CLI that posted them,
// but the spool is a plain directory, so everything is checked again.
func (r *Router) Route(m Message) error {
	switch m.Kind {
	case KindAction:
		id, err := validate.Action(string(m.Action))
		if err != nil {
			return err
		}
		out := r.routes.Dispatcher.Dispatch(dispatch.Action{ID: id, Category: m.Category})
		if out.Water != nil && !out.Water.Logged {
			r.log.Info("water tap rejected by cooldown", KeyRemaining, out.Water.Remaining)
		}
		return nil

	case KindPause:
		if !m.Until.IsZero() {
			r.routes.Engine.PauseUntil(m.Until)
			return nil
		}
		if m.Minutes <= 0 {
			return errors.InvalidInput(errors.ErrInvalidDuration, "minutes", fmt.Sprint(m.Minutes), "Pause for at least one minute")
		}
		r.routes.Engine.PauseAll(m.Minutes)
		return nil

	case KindResume:
		r.routes.Engine.ResumeAll()
		return nil

	case KindSnooze:
		c, err := validate.Category(string(m.Category))
		if err != nil {
			return err
		}
		if m.Minutes <= 0 {
			return errors.InvalidInput(errors.ErrInvalidDuration, "minutes", fmt.Sprint(m.Minutes), "Snooze for at least one minute")
		}
		r.routes.Engine.Snooze(c, m.Minutes)
		return nil

	case KindSetting:
		if err := settings.Validate(m.Key, m.Value); err != nil {
			return err
		}
		r.routes.Prefs.Update(func(p *model.Preferences) {
			if err := settings.Apply(p, m.Key, m.Value); err != nil {
				r.log.Warn("setting not applied", "key", m.Key, logging.KeyError, err)
			}
		})
		return nil

	case KindReset:
		r.routes.Prefs.Reset()
		return nil

	case KindRecalculate:
		r.routes.Engine.Recalculate()
		return nil

	case KindTest:
		if r.routes.Test != nil {
			r.routes.Test()
		}
		return nil
	}
	return errors.NewUserError(fmt.Sprintf("unknown inbox message kind %q", m.Kind), "")
}

// KeyRemaining is the log key for a cooldown remainder.
const KeyRemaining = "remaining"
