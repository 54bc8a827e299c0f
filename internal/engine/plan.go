package engine

import (
	"time"

	"github.com/manav03panchal/nudge/internal/model"
)

// Plan is the outcome of one recalculation: the deadline of every enabled
// category, or a single resume deadline while paused.
type Plan struct {
	Next     map[model.Category]time.Time
	ResumeAt time.Time
}

// Paused reports whether the plan is a global pause.
func (p Plan) Paused() bool {
	return !p.ResumeAt.IsZero()
}

// ComputeNextFire returns when category c should fire next, ignoring
// pauses and snoozes. Outside the active window it waits for the window to
// open. Inside, it adds the interval and rounds up to a whole minute, or
// defers to the next opening when the candidate lands outside the window.
func ComputeNextFire(p *model.Preferences, c model.Category, now time.Time) time.Time {
	if !p.IsWithinActiveWindow(now) {
		return p.NextActiveWindowStart(now)
	}
	candidate := now.Add(p.Interval(c))
	if p.IsWithinActiveWindow(candidate) {
		return roundUpToMinute(candidate)
	}
	return p.NextActiveWindowStart(candidate)
}

// BuildPlan computes the schedule for p at now. Disabled categories are
// omitted. An active snooze takes precedence over the interval.
func BuildPlan(p *model.Preferences, now time.Time) Plan {
	plan := Plan{Next: make(map[model.Category]time.Time)}

	if p.IsPaused(now) {
		plan.ResumeAt = p.PauseUntil
		return plan
	}

	for _, c := range model.Categories() {
		if !p.Enabled(c) {
			continue
		}
		if p.IsSnoozed(c, now) {
			plan.Next[c] = p.SnoozeDeadline(c)
			continue
		}
		plan.Next[c] = ComputeNextFire(p, c, now)
	}
	return plan
}

func roundUpToMinute(t time.Time) time.Time {
	r := t.Truncate(time.Minute)
	if r.Before(t) {
		r = r.Add(time.Minute)
	}
	return r
}
