// Package settings maps `nudge config` keys onto preference fields.
package settings

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/manav03panchal/nudge/internal/errors"
	"github.com/manav03panchal/nudge/internal/model"
	"github.com/manav03panchal/nudge/internal/parser"
	"github.com/manav03panchal/nudge/internal/validate"
)

// Setting is one editable preference.
type Setting struct {
	Key         string
	Description string
	get         func(p *model.Preferences) string
	set         func(p *model.Preferences, value string) error
}

var registry = map[string]Setting{}

func register(s Setting) {
	registry[s.Key] = s
}

func init() {
	for _, c := range model.Categories() {
		c := c
		lo, hi := c.IntervalRange()
		register(Setting{
			Key:         string(c) + ".enabled",
			Description: c.DisplayName() + " reminders on or off",
			get:         func(p *model.Preferences) string { return onOff(p.Enabled(c)) },
			set: func(p *model.Preferences, v string) error {
				on, err := validate.Bool(string(c)+".enabled", v)
				if err == nil {
					p.SetEnabled(c, on)
				}
				return err
			},
		})
		register(Setting{
			Key:         string(c) + ".interval",
			Description: c.DisplayName() + " interval in minutes (" + strconv.Itoa(lo) + "-" + strconv.Itoa(hi) + ")",
			get:         func(p *model.Preferences) string { return strconv.Itoa(p.IntervalMinutes(c)) },
			set: func(p *model.Preferences, v string) error {
				n, err := parser.ParseMinutes(v)
				if err != nil {
					return err
				}
				if n < lo || n > hi {
					return errors.InvalidInput(errors.ErrInvalidValue, string(c)+".interval", v,
						"Use "+strconv.Itoa(lo)+" to "+strconv.Itoa(hi)+" minutes")
				}
				p.SetIntervalMinutes(c, n)
				return nil
			},
		})
	}

	for _, c := range []model.Category{model.Stand, model.Eyes} {
		c := c
		register(Setting{
			Key:         string(c) + ".overlay",
			Description: "Force a full-screen " + strings.ToLower(c.DisplayName()) + " break",
			get:         func(p *model.Preferences) string { return onOff(p.ForceOverlay(c)) },
			set: func(p *model.Preferences, v string) error {
				on, err := validate.Bool(string(c)+".overlay", v)
				if err == nil {
					p.SetForceOverlay(c, on)
				}
				return err
			},
		})
	}

	register(Setting{
		Key:         "active.start",
		Description: "Start of the active window (HH:MM)",
		get:         func(p *model.Preferences) string { return model.FormatClock(p.ActiveStartMinutes) },
		set: func(p *model.Preferences, v string) error {
			m, err := parser.ParseClock(v)
			if err == nil {
				p.ActiveStartMinutes = m
			}
			return err
		},
	})
	register(Setting{
		Key:         "active.end",
		Description: "End of the active window (HH:MM, equal to start means all day)",
		get:         func(p *model.Preferences) string { return model.FormatClock(p.ActiveEndMinutes) },
		set: func(p *model.Preferences, v string) error {
			m, err := parser.ParseClock(v)
			if err == nil {
				p.ActiveEndMinutes = m
			}
			return err
		},
	})
	register(Setting{
		Key:         "water.goal",
		Description: "Daily water goal in ml",
		get:         func(p *model.Preferences) string { return strconv.Itoa(p.WaterGoalMl()) },
		set: intSetter("water.goal", model.MinWaterGoalMl, model.MaxWaterGoalMl, func(p *model.Preferences, n int) {
			p.DailyWaterGoalMl = n
			p.WaterConsumedTodayMl = min(p.WaterConsumedTodayMl, n)
		}),
	})
	register(Setting{
		Key:         "water.dose",
		Description: "Amount logged per tap in ml",
		get:         func(p *model.Preferences) string { return strconv.Itoa(p.WaterDoseMl()) },
		set: intSetter("water.dose", model.MinWaterDoseMl, model.MaxWaterDoseMl, func(p *model.Preferences, n int) {
			p.WaterDosePerTapMl = n
		}),
	})
	register(Setting{
		Key:         "water.cooldown",
		Description: "Minimum seconds between two taps",
		get:         func(p *model.Preferences) string { return strconv.Itoa(int(p.WaterCooldown() / time.Second)) },
		set: intSetter("water.cooldown", model.MinWaterCooldownSec, 3600, func(p *model.Preferences, n int) {
			p.WaterTapCooldownSeconds = n
		}),
	})
	register(boolSetting("sound", "Play a sound with reminders",
		func(p *model.Preferences) *bool { return &p.SoundEnabled }))
	register(boolSetting("launch_at_login", "Start the daemon at login",
		func(p *model.Preferences) *bool { return &p.LaunchAtLogin }))
}

func intSetter(key string, lo, hi int, apply func(p *model.Preferences, n int)) func(*model.Preferences, string) error {
	return func(p *model.Preferences, v string) error {
		n, err := validate.IntRange(key, v, lo, hi)
		if err == nil {
			apply(p, n)
		}
		return err
	}
}

func boolSetting(key, desc string, field func(p *model.Preferences) *bool) Setting {
	return Setting{
		Key:         key,
		Description: desc,
		get:         func(p *model.Preferences) string { return onOff(*field(p)) },
		set: func(p *model.Preferences, v string) error {
			on, err := validate.Bool(key, v)
			if err == nil {
				*field(p) = on
			}
			return err
		},
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// All returns every setting sorted by key.
func All() []Setting {
	out := make([]Setting, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Keys returns every setting key sorted.
func Keys() []string {
	all := All()
	keys := make([]string, len(all))
	for i, s := range all {
		keys[i] = s.Key
	}
	return keys
}

func lookup(key string) (Setting, error) {
	s, ok := registry[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return Setting{}, errors.InvalidInput(errors.ErrUnknownSetting, "key", key,
			"Run 'nudge config show' to list settings")
	}
	return s, nil
}

// Validate checks key and value without changing anything.
func Validate(key, value string) error {
	return Apply(model.DefaultPreferences(), key, value)
}

// Apply parses value and stores it in p.
func Apply(p *model.Preferences, key, value string) error {
	s, err := lookup(key)
	if err != nil {
		return err
	}
	return s.set(p, validate.SanitizeValue(value))
}

// Get renders the current value of key.
func Get(p *model.Preferences, key string) (string, error) {
	s, err := lookup(key)
	if err != nil {
		return "", err
	}
	return s.get(p), nil
}

// Value renders the current value of s.
func (s Setting) Value(p *model.Preferences) string {
	return s.get(p)
}
