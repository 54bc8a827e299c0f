package engine

import (
	"time"

	"github.com/manav03panchal/nudge/internal/model"
)

// Effect is an output command produced by a transition.
type Effect interface {
	isEffect()
}

// Notify asks the sender to deliver a notification.
type Notify struct {
	Notification *model.Notification
}

// PresentOverlay asks the presenter for a forced break. Snooze is zero when
// the overlay offers no snooze.
type PresentOverlay struct {
	Category model.Category
	Min      time.Duration
	Max      time.Duration
	Snooze   time.Duration
}

func (Notify) isEffect()         {}
func (PresentOverlay) isEffect() {}

// BreakDurations bounds the forced break overlays.
type BreakDurations struct {
	StandMin    time.Duration
	StandMax    time.Duration
	StandSnooze time.Duration
	EyesMin     time.Duration
	EyesMax     time.Duration
}

// DefaultBreakDurations returns 2-5 minutes for stand with a 10 minute
// snooze, and 20 seconds to 5 minutes for eyes.
func DefaultBreakDurations() BreakDurations {
	return BreakDurations{
		StandMin:    120 * time.Second,
		StandMax:    300 * time.Second,
		StandSnooze: 10 * time.Minute,
		EyesMin:     20 * time.Second,
		EyesMax:     300 * time.Second,
	}
}

// CanFire reports whether c may produce a visible reminder at now.
func CanFire(p *model.Preferences, c model.Category, now time.Time) bool {
	return !p.IsPaused(now) && p.Enabled(c) && p.IsWithinActiveWindow(now)
}

// Fire is the transition run when the timer of c elapses. It re-validates
// pause, enablement and the active window; when any fails it returns
// fired=false and leaves p untouched. Otherwise it clears the snooze of c
// and returns the effects to perform.
func Fire(p *model.Preferences, c model.Category, now time.Time, d BreakDurations) ([]Effect, bool) {
	if !CanFire(p, c, now) {
		return nil, false
	}
	p.ClearSnooze(c)

	switch {
	case c == model.Stand && p.ForceOverlay(c):
		return []Effect{
			overlayEffect(c, d),
			Notify{Notification: model.NewBreakNotification(c, p.SoundEnabled)},
		}, true
	case c == model.Eyes && p.ForceOverlay(c):
		return []Effect{
			overlayEffect(c, d),
			Notify{Notification: model.NewBreakNotification(c, false)},
		}, true
	default:
		return []Effect{
			Notify{Notification: model.NewReminderNotification(c, p.WaterDoseMl(), p.SoundEnabled)},
		}, true
	}
}

// StartBreak is the user-initiated overlay path. It snoozes c for its
// interval so the scheduled reminder does not follow right after, and
// returns the overlay to present. Water has no overlay.
func StartBreak(p *model.Preferences, c model.Category, now time.Time, d BreakDurations) []Effect {
	if c != model.Stand && c != model.Eyes {
		return nil
	}
	p.Snooze(c, now.Add(p.Interval(c)))
	return []Effect{overlayEffect(c, d)}
}

func overlayEffect(c model.Category, d BreakDurations) PresentOverlay {
	if c == model.Stand {
		return PresentOverlay{Category: c, Min: d.StandMin, Max: d.StandMax, Snooze: d.StandSnooze}
	}
	return PresentOverlay{Category: c, Min: d.EyesMin, Max: d.EyesMax}
}
