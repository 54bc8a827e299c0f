package output

import (
	"time"

	"github.com/manav03panchal/nudge/internal/engine"
	"github.com/manav03panchal/nudge/internal/model"
)

// Overall states shown by `nudge status`.
const (
	StateActive   = "active"
	StatePaused   = "paused"
	StateDisabled = "disabled"
)

// CategoryStatus is one category line of the status report.
type CategoryStatus struct {
	Category        model.Category `json:"category"`
	Enabled         bool           `json:"enabled"`
	IntervalMinutes int            `json:"interval_minutes"`
	ForceOverlay    bool           `json:"force_overlay"`
	SnoozedUntil    string         `json:"snoozed_until,omitempty"`
	NextFire        string         `json:"next_fire,omitempty"`
	LastFire        string         `json:"last_fire,omitempty"`

	next, last, snoozed time.Time
}

// StatusResponse is the full `nudge status` report.
type StatusResponse struct {
	State         string           `json:"state"`
	PausedUntil   string           `json:"paused_until,omitempty"`
	DaemonRunning bool             `json:"daemon_running"`
	ActiveWindow  string           `json:"active_window"`
	InWindow      bool             `json:"in_window"`
	Categories    []CategoryStatus `json:"categories"`
	Water         WaterResponse    `json:"water"`

	now, pausedUntil time.Time
}

// NewStatusResponse builds a report from preferences and a schedule. The
// schedule comes from the daemon when it runs, else from engine.BuildPlan.
func NewStatusResponse(p *model.Preferences, s engine.Schedule, now time.Time, daemonRunning bool) *StatusResponse {
	r := &StatusResponse{
		State:         StateActive,
		DaemonRunning: daemonRunning,
		ActiveWindow:  p.Window().String(),
		InWindow:      p.IsWithinActiveWindow(now),
		Water:         NewWaterResponse(p, now),
		now:           now,
	}

	switch {
	case p.IsPaused(now):
		r.State = StatePaused
		r.pausedUntil = p.PauseUntil
		r.PausedUntil = FormatTimestamp(p.PauseUntil)
	case !p.AnyEnabled():
		r.State = StateDisabled
	}

	for _, c := range model.Categories() {
		cs := CategoryStatus{
			Category:        c,
			Enabled:         p.Enabled(c),
			IntervalMinutes: p.IntervalMinutes(c),
			ForceOverlay:    p.ForceOverlay(c),
			next:            s.Next[c],
			last:            s.Last[c],
		}
		if p.IsSnoozed(c, now) {
			cs.snoozed = p.SnoozeDeadline(c)
			cs.SnoozedUntil = FormatTimestamp(cs.snoozed)
		}
		cs.NextFire = FormatTimestamp(cs.next)
		cs.LastFire = FormatTimestamp(cs.last)
		r.Categories = append(r.Categories, cs)
	}
	return r
}

// WaterResponse is today's hydration progress.
type WaterResponse struct {
	ConsumedMl      int     `json:"consumed_ml"`
	GoalMl          int     `json:"goal_ml"`
	RemainingMl     int     `json:"remaining_ml"`
	Progress        float64 `json:"progress"`
	DoseMl          int     `json:"dose_ml"`
	SuggestedDoseMl int     `json:"suggested_dose_ml"`
	NextTapAllowed  string  `json:"next_tap_allowed,omitempty"`

	cooldown time.Duration
}

// NewWaterResponse reads water state from p. A stale daily stamp counts as
// nothing consumed yet.
func NewWaterResponse(p *model.Preferences, now time.Time) WaterResponse {
	p = p.Clone()
	p.RefreshDailyIfNeeded(now)

	r := WaterResponse{
		ConsumedMl:      p.WaterConsumedTodayMl,
		GoalMl:          p.WaterGoalMl(),
		RemainingMl:     p.WaterRemainingMl(),
		Progress:        p.WaterProgress(),
		DoseMl:          p.WaterDoseMl(),
		SuggestedDoseMl: p.SuggestedDoseMl(),
		cooldown:        p.WaterTapRemaining(now),
	}
	if r.cooldown > 0 {
		r.NextTapAllowed = FormatTimestamp(p.NextWaterTapAllowedAt())
	}
	return r
}

// WaterTapResponse reports a `nudge water` tap.
type WaterTapResponse struct {
	Status           string        `json:"status"`
	LoggedMl         int           `json:"logged_ml"`
	RemainingSeconds int           `json:"cooldown_remaining_seconds,omitempty"`
	Water            WaterResponse `json:"water"`
}

// SettingOutput is one `nudge config show` entry.
type SettingOutput struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// WebhookOutput is one configured webhook.
type WebhookOutput struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	URL        string   `json:"url"`
	Enabled    bool     `json:"enabled"`
	Categories []string `json:"categories,omitempty"`
	LastUsed   string   `json:"last_used,omitempty"`
	LastError  string   `json:"last_error,omitempty"`
}

// NewWebhookOutput converts a webhook with its URL masked.
func NewWebhookOutput(w *model.Webhook) WebhookOutput {
	out := WebhookOutput{
		Name:      w.Name,
		Type:      w.Type,
		URL:       w.MaskedURL(),
		Enabled:   w.Enabled,
		LastUsed:  FormatTimestamp(w.LastUsed),
		LastError: w.LastError,
	}
	for _, c := range w.Categories {
		out.Categories = append(out.Categories, string(c))
	}
	return out
}

// ActionResponse reports a command that changed state.
type ActionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Queued  bool   `json:"queued,omitempty"`
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status     string `json:"status"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}
