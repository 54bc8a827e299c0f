package runtime

import (
	"log/slog"
	"time"

	"github.com/manav03panchal/nudge/internal/dispatch"
	"github.com/manav03panchal/nudge/internal/engine"
	"github.com/manav03panchal/nudge/internal/inbox"
	"github.com/manav03panchal/nudge/internal/logging"
	"github.com/manav03panchal/nudge/internal/model"
	"github.com/manav03panchal/nudge/internal/prefs"
)

// Local applies engine operations straight to the preference store when no
// daemon is running. It arms no timers; the next daemon start schedules
// from whatever it leaves behind.
type Local struct {
	store  *prefs.Store
	now    func() time.Time
	breaks engine.BreakDurations
	disp   *dispatch.Dispatcher
	router *inbox.Router
	log    *slog.Logger
}

// NewLocal creates a controller over store.
func NewLocal(store *prefs.Store, now func() time.Time) *Local {
	l := &Local{
		store:  store,
		now:    now,
		breaks: engine.DefaultBreakDurations(),
		log:    logging.Component("local"),
	}
	l.disp = dispatch.New(l, l)
	l.router = inbox.NewRouter(inbox.Routes{Dispatcher: l.disp, Engine: l, Prefs: store})
	return l
}

// Router returns the router that applies inbox messages locally.
func (l *Local) Router() *inbox.Router {
	return l.router
}

// Dispatch runs one notification action.
func (l *Local) Dispatch(a dispatch.Action) dispatch.Outcome {
	return l.disp.Dispatch(a)
}

func (l *Local) PauseAll(minutes int) {
	l.PauseUntil(l.now().Add(time.Duration(minutes) * time.Minute))
}

func (l *Local) PauseUntil(t time.Time) {
	l.store.Update(func(p *model.Preferences) { p.PauseUntil = t })
	l.log.Debug("reminders paused", logging.KeyUntil, t.Format(time.RFC3339))
}

func (l *Local) ResumeAll() {
	l.store.Update(func(p *model.Preferences) { p.PauseUntil = time.Time{} })
}

func (l *Local) Snooze(c model.Category, minutes int) {
	until := l.now().Add(time.Duration(minutes) * time.Minute)
	l.store.Update(func(p *model.Preferences) { p.Snooze(c, until) })
}

// Recalculate has nothing to re-arm without a daemon.
func (l *Local) Recalculate() {}

// StartBreak records the post-break snooze. The caller shows the overlay.
func (l *Local) StartBreak(c model.Category) {
	l.store.Update(func(p *model.Preferences) {
		engine.StartBreak(p, c, l.now(), l.breaks)
	})
}

// MarkWaterDone logs a dose and snoozes water for one interval.
func (l *Local) MarkWaterDone() engine.WaterResult {
	var res engine.WaterResult
	now := l.now()
	res.DoseMl, res.Logged, res.Remaining = l.store.TryLogWater(now)
	if res.Logged {
		l.Snooze(model.Water, l.store.Get().IntervalMinutes(model.Water))
	}
	return res
}

// OpenSettings has no window to open from the CLI.
func (l *Local) OpenSettings() {
	l.log.Info("settings are edited with 'nudge config set <key> <value>'")
}
