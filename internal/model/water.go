package model

import (
	"math"
	"time"
)

// DailyStampKey returns the local calendar date of t as YYYY-MM-DD.
func DailyStampKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// RefreshDailyIfNeeded resets today's consumption when the calendar date of
// now differs from the stored stamp. It reports whether a reset happened.
func (p *Preferences) RefreshDailyIfNeeded(now time.Time) bool {
	today := DailyStampKey(now)
	if p.DailyStamp == today {
		return false
	}
	p.DailyStamp = today
	p.WaterConsumedTodayMl = 0
	p.LastWaterTapAt = time.Time{}
	return true
}

// WaterGoalMl returns the daily goal clamped to its range.
func (p *Preferences) WaterGoalMl() int {
	return clampInt(p.DailyWaterGoalMl, MinWaterGoalMl, MaxWaterGoalMl)
}

// WaterDoseMl returns the per-tap dose clamped to its range.
func (p *Preferences) WaterDoseMl() int {
	return clampInt(p.WaterDosePerTapMl, MinWaterDoseMl, MaxWaterDoseMl)
}

// WaterCooldown returns the tap cooldown, never shorter than 15 seconds.
func (p *Preferences) WaterCooldown() time.Duration {
	return time.Duration(max(MinWaterCooldownSec, p.WaterTapCooldownSeconds)) * time.Second
}

// NextWaterTapAllowedAt returns the first instant a tap is accepted.
func (p *Preferences) NextWaterTapAllowedAt() time.Time {
	if p.LastWaterTapAt.IsZero() {
		return time.Time{}
	}
	return p.LastWaterTapAt.Add(p.WaterCooldown())
}

// CanLogWaterNow reports whether the cooldown since the last tap has elapsed.
func (p *Preferences) CanLogWaterNow(now time.Time) bool {
	return !now.Before(p.NextWaterTapAllowedAt())
}

// WaterTapRemaining returns the cooldown left at now, rounded up to whole seconds.
func (p *Preferences) WaterTapRemaining(now time.Time) time.Duration {
	left := p.NextWaterTapAllowedAt().Sub(now)
	if p.LastWaterTapAt.IsZero() || left <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(left.Seconds())) * time.Second
}

// TryLogWater records one dose if the cooldown allows it. The returned dose
// is the amount actually added after capping at the daily goal.
func (p *Preferences) TryLogWater(now time.Time) (int, bool) {
	p.RefreshDailyIfNeeded(now)
	if !p.CanLogWaterNow(now) {
		return 0, false
	}

	goal := p.WaterGoalMl()
	before := clampInt(p.WaterConsumedTodayMl, 0, goal)
	p.WaterConsumedTodayMl = min(goal, before+p.WaterDoseMl())
	p.LastWaterTapAt = now
	return p.WaterConsumedTodayMl - before, true
}

// WaterRemainingMl returns how much is left to reach today's goal.
func (p *Preferences) WaterRemainingMl() int {
	return max(0, p.WaterGoalMl()-p.WaterConsumedTodayMl)
}

// WaterProgress returns consumed/goal in [0, 1].
func (p *Preferences) WaterProgress() float64 {
	goal := p.WaterGoalMl()
	return math.Min(1, float64(max(0, p.WaterConsumedTodayMl))/float64(goal))
}

// SuggestedDoseMl spreads the daily goal over the reminders that fit in the
// active window, clamped to [120, 350].
func (p *Preferences) SuggestedDoseMl() int {
	duration := p.ActiveDurationMinutes()
	if duration <= 0 {
		return 200
	}
	reminders := max(1, duration/max(15, p.IntervalMinutes(Water)))
	raw := math.Round(float64(p.WaterGoalMl()) / float64(reminders))
	return clampInt(int(raw), 120, 350)
}
