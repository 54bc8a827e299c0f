package model

import (
	"encoding/json"
	"time"
)

// PreferencesVersion is the schema version written into every blob.
const PreferencesVersion = 1

// Water quota bounds.
const (
	MinWaterGoalMl      = 1200
	MaxWaterGoalMl      = 4000
	MinWaterDoseMl      = 80
	MaxWaterDoseMl      = 400
	MinWaterCooldownSec = 15
)

// Preferences is the single source of user settings and daily runtime state.
// The zero time.Time means "never" for every timestamp field.
type Preferences struct {
	Version int `json:"version"`

	WaterEnabled         bool `json:"waterEnabled"`
	WaterIntervalMinutes int  `json:"waterIntervalMinutes"`
	StandEnabled         bool `json:"standEnabled"`
	StandIntervalMinutes int  `json:"standIntervalMinutes"`
	EyesEnabled          bool `json:"eyesEnabled"`
	EyesIntervalMinutes  int  `json:"eyesIntervalMinutes"`

	SnoozeUntil map[Category]time.Time `json:"snoozeUntil"`

	ActiveStartMinutes int `json:"activeStartMinutes"`
	ActiveEndMinutes   int `json:"activeEndMinutes"`

	DailyWaterGoalMl        int       `json:"dailyWaterGoalMl"`
	WaterDosePerTapMl       int       `json:"waterDosePerTapMl"`
	WaterTapCooldownSeconds int       `json:"waterTapCooldownSeconds"`
	WaterConsumedTodayMl    int       `json:"waterConsumedTodayMl"`
	DailyStamp              string    `json:"dailyStamp"`
	LastWaterTapAt          time.Time `json:"lastWaterTapAt"`

	PauseUntil               time.Time `json:"pauseUntil"`
	SoundEnabled             bool      `json:"soundEnabled"`
	StandForceOverlayEnabled bool      `json:"standForceOverlayEnabled"`
	EyesForceOverlayEnabled  bool      `json:"eyesForceOverlayEnabled"`
	LaunchAtLogin            bool      `json:"launchAtLogin"`
}

// DefaultPreferences returns the out-of-the-box settings.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Version:                  PreferencesVersion,
		WaterEnabled:             true,
		WaterIntervalMinutes:     Water.DefaultIntervalMinutes(),
		StandEnabled:             true,
		StandIntervalMinutes:     Stand.DefaultIntervalMinutes(),
		EyesEnabled:              true,
		EyesIntervalMinutes:      Eyes.DefaultIntervalMinutes(),
		SnoozeUntil:              make(map[Category]time.Time),
		ActiveStartMinutes:       9 * 60,
		ActiveEndMinutes:         21 * 60,
		DailyWaterGoalMl:         2000,
		WaterDosePerTapMl:        200,
		WaterTapCooldownSeconds:  120,
		SoundEnabled:             true,
		StandForceOverlayEnabled: true,
		EyesForceOverlayEnabled:  true,
	}
}

// ResetToDefaults overwrites every field, runtime state included.
func (p *Preferences) ResetToDefaults() {
	*p = *DefaultPreferences()
}

// Clone returns a deep copy.
func (p *Preferences) Clone() *Preferences {
	c := *p
	c.SnoozeUntil = make(map[Category]time.Time, len(p.SnoozeUntil))
	for k, v := range p.SnoozeUntil {
		c.SnoozeUntil[k] = v
	}
	return &c
}

// Enabled reports whether reminders of category c are on.
func (p *Preferences) Enabled(c Category) bool {
	switch c {
	case Water:
		return p.WaterEnabled
	case Stand:
		return p.StandEnabled
	case Eyes:
		return p.EyesEnabled
	}
	return false
}

// SetEnabled turns category c on or off.
func (p *Preferences) SetEnabled(c Category, on bool) {
	switch c {
	case Water:
		p.WaterEnabled = on
	case Stand:
		p.StandEnabled = on
	case Eyes:
		p.EyesEnabled = on
	}
}

// AnyEnabled reports whether at least one category is on.
func (p *Preferences) AnyEnabled() bool {
	for _, c := range Categories() {
		if p.Enabled(c) {
			return true
		}
	}
	return false
}

// IntervalMinutes returns the interval of c, clamped to its range on every read.
func (p *Preferences) IntervalMinutes(c Category) int {
	var raw int
	switch c {
	case Water:
		raw = p.WaterIntervalMinutes
	case Stand:
		raw = p.StandIntervalMinutes
	case Eyes:
		raw = p.EyesIntervalMinutes
	}
	return c.ClampInterval(raw)
}

// Interval returns IntervalMinutes as a duration.
func (p *Preferences) Interval(c Category) time.Duration {
	return time.Duration(p.IntervalMinutes(c)) * time.Minute
}

// SetIntervalMinutes stores a clamped interval for c.
func (p *Preferences) SetIntervalMinutes(c Category, minutes int) {
	minutes = c.ClampInterval(minutes)
	switch c {
	case Water:
		p.WaterIntervalMinutes = minutes
	case Stand:
		p.StandIntervalMinutes = minutes
	case Eyes:
		p.EyesIntervalMinutes = minutes
	}
}

// ForceOverlay reports whether c presents a forced break overlay. Water never does.
func (p *Preferences) ForceOverlay(c Category) bool {
	switch c {
	case Stand:
		return p.StandForceOverlayEnabled
	case Eyes:
		return p.EyesForceOverlayEnabled
	}
	return false
}

// SetForceOverlay toggles the overlay for stand or eyes.
func (p *Preferences) SetForceOverlay(c Category, on bool) {
	switch c {
	case Stand:
		p.StandForceOverlayEnabled = on
	case Eyes:
		p.EyesForceOverlayEnabled = on
	}
}

// SnoozeDeadline returns the snooze deadline of c, zero if never snoozed.
func (p *Preferences) SnoozeDeadline(c Category) time.Time {
	return p.SnoozeUntil[c]
}

// IsSnoozed reports whether c has a snooze deadline after now.
func (p *Preferences) IsSnoozed(c Category, now time.Time) bool {
	return p.SnoozeUntil[c].After(now)
}

// Snooze postpones c until the given instant.
func (p *Preferences) Snooze(c Category, until time.Time) {
	if p.SnoozeUntil == nil {
		p.SnoozeUntil = make(map[Category]time.Time)
	}
	p.SnoozeUntil[c] = until
}

// ClearSnooze resets the snooze of c to never.
func (p *Preferences) ClearSnooze(c Category) {
	delete(p.SnoozeUntil, c)
}

// IsPaused reports whether a global pause is still in effect at now.
func (p *Preferences) IsPaused(now time.Time) bool {
	return p.PauseUntil.After(now)
}

// Window returns the active window with both bounds folded into [0, 1440).
func (p *Preferences) Window() ActiveWindow {
	return ActiveWindow{
		StartMinutes: normalizeMinuteOfDay(p.ActiveStartMinutes),
		EndMinutes:   normalizeMinuteOfDay(p.ActiveEndMinutes),
	}
}

// IsWithinActiveWindow reports whether now lies inside the active window.
func (p *Preferences) IsWithinActiveWindow(now time.Time) bool {
	return p.Window().Contains(now)
}

// NextActiveWindowStart returns now when inside the window, else the next opening.
func (p *Preferences) NextActiveWindowStart(now time.Time) time.Time {
	return p.Window().NextStart(now)
}

// ActiveDurationMinutes returns the length of the active window.
func (p *Preferences) ActiveDurationMinutes() int {
	return p.Window().DurationMinutes()
}

// Normalize clamps every stored field into its valid range.
func (p *Preferences) Normalize() {
	p.Version = PreferencesVersion
	for _, c := range Categories() {
		p.SetIntervalMinutes(c, p.IntervalMinutes(c))
	}
	p.ActiveStartMinutes = normalizeMinuteOfDay(p.ActiveStartMinutes)
	p.ActiveEndMinutes = normalizeMinuteOfDay(p.ActiveEndMinutes)
	p.DailyWaterGoalMl = p.WaterGoalMl()
	p.WaterDosePerTapMl = p.WaterDoseMl()
	p.WaterTapCooldownSeconds = int(p.WaterCooldown() / time.Second)
	p.WaterConsumedTodayMl = clampInt(p.WaterConsumedTodayMl, 0, p.DailyWaterGoalMl)
	if p.SnoozeUntil == nil {
		p.SnoozeUntil = make(map[Category]time.Time)
	}
}

// UnmarshalJSON decodes a stored blob field by field on top of the defaults.
// A missing, null or malformed field keeps its default value.
func (p *Preferences) UnmarshalJSON(data []byte) error {
	*p = *DefaultPreferences()

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	decodeField(raw, "version", &p.Version)
	decodeField(raw, "waterEnabled", &p.WaterEnabled)
	decodeField(raw, "waterIntervalMinutes", &p.WaterIntervalMinutes)
	decodeField(raw, "standEnabled", &p.StandEnabled)
	decodeField(raw, "standIntervalMinutes", &p.StandIntervalMinutes)
	decodeField(raw, "eyesEnabled", &p.EyesEnabled)
	decodeField(raw, "eyesIntervalMinutes", &p.EyesIntervalMinutes)
	decodeField(raw, "activeStartMinutes", &p.ActiveStartMinutes)
	decodeField(raw, "activeEndMinutes", &p.ActiveEndMinutes)
	decodeField(raw, "dailyWaterGoalMl", &p.DailyWaterGoalMl)
	decodeField(raw, "waterDosePerTapMl", &p.WaterDosePerTapMl)
	decodeField(raw, "waterTapCooldownSeconds", &p.WaterTapCooldownSeconds)
	decodeField(raw, "waterConsumedTodayMl", &p.WaterConsumedTodayMl)
	decodeField(raw, "dailyStamp", &p.DailyStamp)
	decodeField(raw, "lastWaterTapAt", &p.LastWaterTapAt)
	decodeField(raw, "pauseUntil", &p.PauseUntil)
	decodeField(raw, "soundEnabled", &p.SoundEnabled)
	decodeField(raw, "standForceOverlayEnabled", &p.StandForceOverlayEnabled)
	decodeField(raw, "eyesForceOverlayEnabled", &p.EyesForceOverlayEnabled)
	decodeField(raw, "launchAtLogin", &p.LaunchAtLogin)

	var snoozes map[string]json.RawMessage
	decodeField(raw, "snoozeUntil", &snoozes)
	for name, v := range snoozes {
		c := Category(name)
		if !c.Valid() {
			continue
		}
		var until time.Time
		if err := json.Unmarshal(v, &until); err == nil {
			p.SnoozeUntil[c] = until
		}
	}

	return nil
}

func decodeField[T any](raw map[string]json.RawMessage, key string, dst *T) {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return
	}
	var tmp T
	if err := json.Unmarshal(v, &tmp); err != nil {
		return
	}
	*dst = tmp
}
