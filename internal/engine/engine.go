// Package engine schedules and fires wellness reminders.
//
// All state changes happen on a single goroutine started by Run. Timer
// callbacks and public methods only post closures to its mailbox, so a fire
// never interleaves with a recalculation or a user action.
package engine

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/manav03panchal/nudge/internal/clock"
	"github.com/manav03panchal/nudge/internal/logging"
	"github.com/manav03panchal/nudge/internal/model"
)

// Sender delivers notifications. Send must not block.
type Sender interface {
	Send(n *model.Notification)
}

// Presenter shows forced break overlays. At most one overlay is visible; a
// new request replaces the current one. Calls must not block.
type Presenter interface {
	PresentStand(min, max time.Duration, onSnooze func())
	PresentEyes(min, max time.Duration)
}

// Store is the preferences owner the engine borrows.
type Store interface {
	Get() *model.Preferences
	Apply(fn func(p *model.Preferences)) *model.Preferences
	Subscribe(fn func(p *model.Preferences)) (unsubscribe func())
	TryLogWater(now time.Time) (dose int, ok bool, remaining time.Duration)
}

// Schedule is the derived, never persisted view of the engine.
type Schedule struct {
	Next        map[model.Category]time.Time `json:"next"`
	Last        map[model.Category]time.Time `json:"last"`
	PausedUntil time.Time                    `json:"paused_until"`
	UpdatedAt   time.Time                    `json:"updated_at"`
}

// Paused reports whether the schedule is collapsed by a global pause.
func (s Schedule) Paused() bool {
	return !s.PausedUntil.IsZero()
}

func (s Schedule) clone() Schedule {
	s.Next = maps.Clone(s.Next)
	s.Last = maps.Clone(s.Last)
	return s
}

// WaterResult reports the outcome of a water tap.
type WaterResult struct {
	Logged    bool
	DoseMl    int
	Remaining time.Duration
}

// Options configures an Engine.
type Options struct {
	Clock       clock.Clock
	Prefs       Store
	Sender      Sender
	Presenter   Presenter
	Breaks      BreakDurations
	Debounce    time.Duration
	MailboxSize int
}

// Engine owns timers and the derived schedule.
type Engine struct {
	clock     clock.Clock
	prefs     Store
	sender    Sender
	presenter Presenter
	breaks    BreakDurations
	debounce  time.Duration
	log       *slog.Logger

	mailbox chan func()
	stopped chan struct{}

	// Owned by the loop goroutine.
	timers      map[model.Category]clock.Timer
	resumeTimer clock.Timer
	debouncer   clock.Timer
	generation  uint64
	last        map[model.Category]time.Time

	mu         sync.RWMutex
	schedule   Schedule
	onSchedule []func(Schedule)
}

// New creates an engine. Zero options fall back to the system clock, the
// default break durations and a 150ms debounce.
func New(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Breaks == (BreakDurations{}) {
		opts.Breaks = DefaultBreakDurations()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 150 * time.Millisecond
	}
	if opts.MailboxSize <= 0 {
		opts.MailboxSize = 64
	}

	return &Engine{
		clock:     opts.Clock,
		prefs:     opts.Prefs,
		sender:    opts.Sender,
		presenter: opts.Presenter,
		breaks:    opts.Breaks,
		debounce:  opts.Debounce,
		log:       logging.Component("engine"),
		mailbox:   make(chan func(), opts.MailboxSize),
		stopped:   make(chan struct{}),
		timers:    make(map[model.Category]clock.Timer),
		last:      make(map[model.Category]time.Time),
	}
}

// Run processes the mailbox until ctx is done. It recalculates once on
// start and reacts to preference changes after a debounce.
func (e *Engine) Run(ctx context.Context) error {
	unsubscribe := e.prefs.Subscribe(func(*model.Preferences) {
		e.post(e.scheduleDebounced)
	})
	defer unsubscribe()
	defer close(e.stopped)

	e.recalculate()

	for {
		select {
		case <-ctx.Done():
			e.cancelTimers()
			e.cancelDebounce()
			e.log.Debug("engine stopped")
			return nil
		case fn := <-e.mailbox:
			fn()
		}
	}
}

// OnSchedule registers fn to receive every new schedule. It is called on
// the engine goroutine.
func (e *Engine) OnSchedule(fn func(Schedule)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onSchedule = append(e.onSchedule, fn)
}

// Schedule returns a snapshot of the latest schedule.
func (e *Engine) Schedule() Schedule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.schedule.clone()
}

// Recalculate cancels every timer and re-arms from current preferences.
func (e *Engine) Recalculate() {
	e.do(e.recalculate)
}

// Stop cancels pending timers, including a pending preference debounce,
// without recomputing. The schedule stays as it was until the next
// Recalculate.
func (e *Engine) Stop() {
	e.do(func() {
		e.cancelTimers()
		e.cancelDebounce()
	})
}

// PauseAll pauses every reminder for the given number of minutes.
func (e *Engine) PauseAll(minutes int) {
	e.do(func() {
		until := e.clock.Now().Add(time.Duration(minutes) * time.Minute)
		e.pauseUntil(until)
	})
}

// PauseUntil pauses every reminder until t.
func (e *Engine) PauseUntil(t time.Time) {
	e.do(func() { e.pauseUntil(t) })
}

// ResumeAll lifts a global pause.
func (e *Engine) ResumeAll() {
	e.do(func() {
		e.prefs.Apply(func(p *model.Preferences) { p.PauseUntil = time.Time{} })
		e.log.Info("reminders resumed")
		e.recalculate()
	})
}

// Snooze postpones category c by minutes. A disabled category keeps the
// snooze stored but stays unscheduled.
func (e *Engine) Snooze(c model.Category, minutes int) {
	e.do(func() { e.snooze(c, time.Duration(minutes)*time.Minute) })
}

// StartBreak presents the overlay of c right away, independent of the
// schedule, and snoozes c for one interval.
func (e *Engine) StartBreak(c model.Category) {
	e.do(func() {
		var effects []Effect
		e.prefs.Apply(func(p *model.Preferences) {
			effects = StartBreak(p, c, e.clock.Now(), e.breaks)
		})
		if len(effects) == 0 {
			e.log.Debug("no break overlay for category", logging.KeyCategory, c)
			return
		}
		e.execute(effects)
		e.recalculate()
	})
}

// MarkWaterDone logs one dose. On success Water is snoozed for its interval.
func (e *Engine) MarkWaterDone() WaterResult {
	var res WaterResult
	e.do(func() {
		now := e.clock.Now()
		res.DoseMl, res.Logged, res.Remaining = e.prefs.TryLogWater(now)
		if !res.Logged {
			e.log.Debug("water tap rejected", "remaining", res.Remaining)
			return
		}
		e.snooze(model.Water, e.prefs.Get().Interval(model.Water))
	})
	return res
}

// Sync waits until every previously posted event has been handled.
func (e *Engine) Sync() {
	e.do(func() {})
}

func (e *Engine) pauseUntil(t time.Time) {
	e.prefs.Apply(func(p *model.Preferences) { p.PauseUntil = t })
	e.log.Info("reminders paused", logging.KeyUntil, t.Format(time.RFC3339))
	e.recalculate()
}

func (e *Engine) snooze(c model.Category, d time.Duration) {
	until := e.clock.Now().Add(d)
	e.prefs.Apply(func(p *model.Preferences) { p.Snooze(c, until) })
	e.log.Info("reminder snoozed", logging.KeyCategory, c, logging.KeyUntil, until.Format(time.RFC3339))
	e.recalculate()
}

func (e *Engine) recalculate() {
	e.cancelTimers()

	now := e.clock.Now()
	plan := BuildPlan(e.prefs.Get(), now)
	gen := e.generation

	if plan.Paused() {
		e.resumeTimer = e.clock.AfterFunc(plan.ResumeAt.Sub(now), func() {
			e.post(func() {
				if gen == e.generation {
					e.recalculate()
				}
			})
		})
	}

	for c, at := range plan.Next {
		e.timers[c] = e.clock.AfterFunc(at.Sub(now), func() {
			e.post(func() { e.fire(c, gen) })
		})
		e.log.Debug("reminder armed", logging.KeyCategory, c, logging.KeyNextFire, at.Format(time.RFC3339))
	}

	e.publish(Schedule{
		Next:        plan.Next,
		Last:        maps.Clone(e.last),
		PausedUntil: plan.ResumeAt,
		UpdatedAt:   now,
	})
}

// fire handles an elapsed timer. Events from a generation that has since
// been cancelled are dropped.
func (e *Engine) fire(c model.Category, gen uint64) {
	if gen != e.generation {
		return
	}

	now := e.clock.Now()
	var effects []Effect
	var fired bool
	if CanFire(e.prefs.Get(), c, now) {
		e.prefs.Apply(func(p *model.Preferences) {
			effects, fired = Fire(p, c, now, e.breaks)
		})
	}

	if fired {
		e.last[c] = now
		e.log.Info("reminder fired", logging.KeyCategory, c)
		e.execute(effects)
	} else {
		e.log.Debug("stale reminder skipped", logging.KeyCategory, c)
	}
	e.recalculate()
}

func (e *Engine) execute(effects []Effect) {
	for _, eff := range effects {
		switch eff := eff.(type) {
		case Notify:
			if e.sender != nil {
				e.sender.Send(eff.Notification)
			}
		case PresentOverlay:
			if e.presenter == nil {
				continue
			}
			switch eff.Category {
			case model.Stand:
				var onSnooze func()
				if eff.Snooze > 0 {
					d := eff.Snooze
					onSnooze = func() {
						e.post(func() { e.snooze(model.Stand, d) })
					}
				}
				e.presenter.PresentStand(eff.Min, eff.Max, onSnooze)
			case model.Eyes:
				e.presenter.PresentEyes(eff.Min, eff.Max)
			}
		}
	}
}

func (e *Engine) scheduleDebounced() {
	if e.debouncer != nil {
		e.debouncer.Stop()
	}
	e.debouncer = e.clock.AfterFunc(e.debounce, func() {
		e.post(e.recalculate)
	})
}

func (e *Engine) cancelDebounce() {
	if e.debouncer != nil {
		e.debouncer.Stop()
		e.debouncer = nil
	}
}

func (e *Engine) cancelTimers() {
	e.generation++
	for c, t := range e.timers {
		t.Stop()
		delete(e.timers, c)
	}
	if e.resumeTimer != nil {
		e.resumeTimer.Stop()
		e.resumeTimer = nil
	}
}

func (e *Engine) publish(s Schedule) {
	e.mu.Lock()
	e.schedule = s
	hooks := append([]func(Schedule){}, e.onSchedule...)
	e.mu.Unlock()

	for _, fn := range hooks {
		fn(s.clone())
	}
}

// post enqueues fn. It returns false once the engine has stopped.
func (e *Engine) post(fn func()) bool {
	select {
	case <-e.stopped:
		return false
	default:
	}
	select {
	case e.mailbox <- fn:
		return true
	case <-e.stopped:
		return false
	}
}

// do posts fn and waits for it to run.
func (e *Engine) do(fn func()) {
	done := make(chan struct{})
	if !e.post(func() {
		fn()
		close(done)
	}) {
		return
	}
	select {
	case <-done:
	case <-e.stopped:
	}
}
