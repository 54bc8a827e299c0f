package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/manav03panchal/nudge/internal/clock"
	"github.com/manav03panchal/nudge/internal/model"
	"github.com/manav03panchal/nudge/internal/prefs"
	"github.com/manav03panchal/nudge/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localAt(hour, minute, second int) time.Time {
	return time.Date(2026, 5, 14, hour, minute, second, 0, time.Local)
}

type fakeSender struct {
	mu   sync.Mutex
	sent []*model.Notification
}

func (s *fakeSender) Send(n *model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
}

func (s *fakeSender) all() []*model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.Notification(nil), s.sent...)
}

type overlayCall struct {
	category model.Category
	min, max time.Duration
	onSnooze func()
}

type fakePresenter struct {
	mu    sync.Mutex
	calls []overlayCall
}

func (p *fakePresenter) PresentStand(min, max time.Duration, onSnooze func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, overlayCall{model.Stand, min, max, onSnooze})
}

func (p *fakePresenter) PresentEyes(min, max time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, overlayCall{category: model.Eyes, min: min, max: max})
}

func (p *fakePresenter) all() []overlayCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]overlayCall(nil), p.calls...)
}

type harness struct {
	engine    *Engine
	clock     *clock.Fake
	store     *prefs.Store
	sender    *fakeSender
	presenter *fakePresenter
}

// setupEngine starts an engine at start with preferences adjusted by edit.
func setupEngine(t *testing.T, start time.Time, edit func(p *model.Preferences)) *harness {
	t.Helper()

	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := prefs.Open(storage.NewPreferencesRepo(db))
	require.NoError(t, err)
	if edit != nil {
		store.Apply(edit)
	}

	h := &harness{
		clock:     clock.NewFake(start),
		store:     store,
		sender:    &fakeSender{},
		presenter: &fakePresenter{},
	}
	h.engine = New(Options{
		Clock:     h.clock,
		Prefs:     store,
		Sender:    h.sender,
		Presenter: h.presenter,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = h.engine.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	h.engine.Sync()
	return h
}

func (h *harness) advance(d time.Duration) {
	h.clock.Advance(d)
	h.engine.Sync()
}

func onlyStand(p *model.Preferences) {
	p.WaterEnabled = false
	p.EyesEnabled = false
}

// =============================================================================
// ComputeNextFire / BuildPlan Tests
// =============================================================================

func TestComputeNextFireNeverBeforeNow(t *testing.T) {
	windows := []model.ActiveWindow{{StartMinutes: 540, EndMinutes: 1260}, {StartMinutes: 1320, EndMinutes: 360}, {StartMinutes: 0, EndMinutes: 0}}

	for _, w := range windows {
		p := model.DefaultPreferences()
		p.ActiveStartMinutes, p.ActiveEndMinutes = w.StartMinutes, w.EndMinutes

		for minute := 0; minute < model.MinutesPerDay; minute += 7 {
			now := localAt(0, 0, 0).Add(time.Duration(minute)*time.Minute + 13*time.Second)
			for _, c := range model.Categories() {
				next := ComputeNextFire(p, c, now)
				assert.False(t, next.Before(now), "window %v at %v for %s", w, now, c)

				candidate := now.Add(p.Interval(c))
				if p.IsWithinActiveWindow(now) && p.IsWithinActiveWindow(candidate) {
					assert.False(t, next.Before(candidate), "window %v at %v for %s", w, now, c)
					assert.True(t, next.Sub(candidate) < time.Minute)
				}
			}
		}
	}
}

func TestComputeNextFire(t *testing.T) {
	p := model.DefaultPreferences()

	tests := []struct {
		name     string
		category model.Category
		now      time.Time
		want     time.Time
	}{
		{"inside_window", model.Stand, localAt(10, 0, 0), localAt(10, 30, 0)},
		{"rounds_up", model.Eyes, localAt(10, 0, 30), localAt(10, 21, 0)},
		{"before_window", model.Water, localAt(7, 0, 0), localAt(9, 0, 0)},
		{"after_window", model.Water, localAt(22, 0, 0), localAt(9, 0, 0).AddDate(0, 0, 1)},
		{"candidate_past_close", model.Water, localAt(20, 30, 0), localAt(9, 0, 0).AddDate(0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeNextFire(p, tt.category, tt.now))
		})
	}
}

func TestComputeNextFireClampsCorruptInterval(t *testing.T) {
	p := model.DefaultPreferences()
	p.EyesIntervalMinutes = 0

	now := localAt(10, 0, 0)
	assert.Equal(t, localAt(10, 10, 0), ComputeNextFire(p, model.Eyes, now))
}

func TestBuildPlan(t *testing.T) {
	now := localAt(10, 0, 0)

	t.Run("all_enabled", func(t *testing.T) {
		plan := BuildPlan(model.DefaultPreferences(), now)
		assert.False(t, plan.Paused())
		assert.Equal(t, map[model.Category]time.Time{
			model.Water: localAt(11, 0, 0),
			model.Stand: localAt(10, 30, 0),
			model.Eyes:  localAt(10, 20, 0),
		}, plan.Next)
	})

	t.Run("disabled_omitted", func(t *testing.T) {
		p := model.DefaultPreferences()
		p.SetEnabled(model.Eyes, false)
		plan := BuildPlan(p, now)
		assert.NotContains(t, plan.Next, model.Eyes)
		assert.Len(t, plan.Next, 2)
	})

	t.Run("snooze_wins", func(t *testing.T) {
		p := model.DefaultPreferences()
		p.Snooze(model.Stand, now.Add(7*time.Minute))
		p.Snooze(model.Water, now.Add(-time.Minute))
		plan := BuildPlan(p, now)
		assert.Equal(t, now.Add(7*time.Minute), plan.Next[model.Stand])
		assert.Equal(t, localAt(11, 0, 0), plan.Next[model.Water])
	})

	t.Run("paused", func(t *testing.T) {
		p := model.DefaultPreferences()
		p.PauseUntil = now.Add(time.Hour)
		plan := BuildPlan(p, now)
		assert.True(t, plan.Paused())
		assert.Empty(t, plan.Next)
		assert.Equal(t, now.Add(time.Hour), plan.ResumeAt)
	})

	t.Run("expired_pause_ignored", func(t *testing.T) {
		p := model.DefaultPreferences()
		p.PauseUntil = now
		plan := BuildPlan(p, now)
		assert.False(t, plan.Paused())
		assert.Len(t, plan.Next, 3)
	})
}

// =============================================================================
// Fire / StartBreak Tests
// =============================================================================

func TestFireRevalidates(t *testing.T) {
	now := localAt(10, 0, 0)
	d := DefaultBreakDurations()

	paused := model.DefaultPreferences()
	paused.PauseUntil = now.Add(time.Minute)
	disabled := model.DefaultPreferences()
	disabled.StandEnabled = false
	closed := model.DefaultPreferences()
	closed.ActiveStartMinutes, closed.ActiveEndMinutes = 660, 720

	for name, p := range map[string]*model.Preferences{"paused": paused, "disabled": disabled, "outside_window": closed} {
		t.Run(name, func(t *testing.T) {
			p.Snooze(model.Stand, now.Add(-time.Second))
			effects, fired := Fire(p, model.Stand, now, d)
			assert.False(t, fired)
			assert.Empty(t, effects)
			assert.False(t, p.SnoozeDeadline(model.Stand).IsZero(), "must not mutate")
		})
	}
}

func TestFireStandOverlay(t *testing.T) {
	p := model.DefaultPreferences()
	p.Snooze(model.Stand, localAt(9, 0, 0))

	effects, fired := Fire(p, model.Stand, localAt(10, 0, 0), DefaultBreakDurations())
	require.True(t, fired)
	require.Len(t, effects, 2)

	overlay, ok := effects[0].(PresentOverlay)
	require.True(t, ok)
	assert.Equal(t, PresentOverlay{Category: model.Stand, Min: 120 * time.Second, Max: 300 * time.Second, Snooze: 10 * time.Minute}, overlay)

	notify, ok := effects[1].(Notify)
	require.True(t, ok)
	assert.Equal(t, model.NotifyBreak, notify.Notification.Type)
	assert.True(t, notify.Notification.Sound)
	assert.True(t, p.SnoozeDeadline(model.Stand).IsZero())
}

func TestFireEyesOverlayIsSilent(t *testing.T) {
	p := model.DefaultPreferences()

	effects, fired := Fire(p, model.Eyes, localAt(10, 0, 0), DefaultBreakDurations())
	require.True(t, fired)
	require.Len(t, effects, 2)
	assert.Equal(t, PresentOverlay{Category: model.Eyes, Min: 20 * time.Second, Max: 300 * time.Second}, effects[0])
	assert.False(t, effects[1].(Notify).Notification.Sound)
}

func TestFirePlainNotification(t *testing.T) {
	p := model.DefaultPreferences()
	p.WaterDosePerTapMl = 250
	p.StandForceOverlayEnabled = false
	p.SoundEnabled = false

	effects, fired := Fire(p, model.Water, localAt(10, 0, 0), DefaultBreakDurations())
	require.True(t, fired)
	require.Len(t, effects, 1)
	n := effects[0].(Notify).Notification
	assert.Equal(t, model.NotifyReminder, n.Type)
	assert.Contains(t, n.Message, "250 ml")
	assert.False(t, n.Sound)

	effects, fired = Fire(p, model.Stand, localAt(10, 0, 0), DefaultBreakDurations())
	require.True(t, fired)
	require.Len(t, effects, 1)
	assert.Equal(t, model.Stand, effects[0].(Notify).Notification.Category)
}

func TestStartBreakTransition(t *testing.T) {
	now := localAt(10, 0, 0)
	p := model.DefaultPreferences()

	effects := StartBreak(p, model.Eyes, now, DefaultBreakDurations())
	require.Len(t, effects, 1)
	assert.Equal(t, model.Eyes, effects[0].(PresentOverlay).Category)
	assert.Equal(t, now.Add(20*time.Minute), p.SnoozeDeadline(model.Eyes))

	assert.Nil(t, StartBreak(p, model.Water, now, DefaultBreakDurations()))
	assert.True(t, p.SnoozeDeadline(model.Water).IsZero())
}

// =============================================================================
// Engine Tests
// =============================================================================

func TestEngineInitialSchedule(t *testing.T) {
	h := setupEngine(t, localAt(10, 0, 0), nil)

	s := h.engine.Schedule()
	assert.Equal(t, localAt(10, 20, 0), s.Next[model.Eyes])
	assert.Equal(t, localAt(10, 30, 0), s.Next[model.Stand])
	assert.Equal(t, localAt(11, 0, 0), s.Next[model.Water])
	assert.False(t, s.Paused())
	assert.Equal(t, 3, h.clock.Pending())
}

func TestEngineRecalculateIsIdempotent(t *testing.T) {
	h := setupEngine(t, localAt(10, 0, 0), nil)

	h.engine.Recalculate()
	first := h.engine.Schedule().Next
	h.engine.Recalculate()
	second := h.engine.Schedule().Next

	assert.Equal(t, first, second)
	assert.Equal(t, 3, h.clock.Pending())
}

func TestEnginePauseAndLapse(t *testing.T) {
	h := setupEngine(t, localAt(10, 0, 0), nil)

	h.engine.PauseAll(60)
	s := h.engine.Schedule()
	assert.Empty(t, s.Next)
	assert.Equal(t, localAt(11, 0, 0), s.PausedUntil)
	assert.Equal(t, 1, h.clock.Pending(), "only the resume check is armed")

	h.advance(60 * time.Minute)

	s = h.engine.Schedule()
	assert.False(t, s.Paused())
	assert.Len(t, s.Next, 3)
	assert.Empty(t, h.sender.all(), "nothing fires while paused")
}

func TestEngineResumeAll(t *testing.T) {
	h := setupEngine(t, localAt(10, 0, 0), nil)

	h.engine.PauseUntil(localAt(18, 0, 0))
	assert.True(t, h.engine.Schedule().Paused())

	h.engine.ResumeAll()
	assert.Len(t, h.engine.Schedule().Next, 3)
	assert.True(t, h.store.Get().PauseUntil.IsZero())
}

func TestEngineStandFireEndToEnd(t *testing.T) {
	h := setupEngine(t, localAt(10, 0, 0), onlyStand)

	h.advance(30 * time.Minute)

	overlays := h.presenter.all()
	require.Len(t, overlays, 1)
	assert.Equal(t, model.Stand, overlays[0].category)
	assert.Equal(t, 120*time.Second, overlays[0].min)
	assert.Equal(t, 300*time.Second, overlays[0].max)
	assert.NotNil(t, overlays[0].onSnooze)

	sent := h.sender.all()
	require.Len(t, sent, 1)
	assert.Equal(t, model.Stand, sent[0].Category)

	s := h.engine.Schedule()
	assert.Equal(t, localAt(11, 0, 0), s.Next[model.Stand])
	assert.Equal(t, localAt(10, 30, 0), s.Last[model.Stand])
}

func TestEngineOverlaySnoozeCallback(t *testing.T) {
	h := setupEngine(t, localAt(10, 0, 0), onlyStand)
	h.advance(30 * time.Minute)

	overlays := h.presenter.all()
	require.Len(t, overlays, 1)

	h.clock.Advance(time.Minute)
	overlays[0].onSnooze()
	h.engine.Sync()

	assert.Equal(t, localAt(10, 41, 0), h.engine.Schedule().Next[model.Stand])
	assert.Equal(t, localAt(10, 41, 0), h.store.Get().SnoozeDeadline(model.Stand))
}

func TestEngineStaleFireIsSkipped(t *testing.T) {
	h := setupEngine(t, localAt(10, 0, 0), onlyStand)

	h.advance(30*time.Minute - 100*time.Millisecond)
	h.store.Update(func(p *model.Preferences) { p.StandEnabled = false })
	h.engine.Sync()

	// The stand timer elapses before the debounced recalculation runs.
	h.advance(200 * time.Millisecond)

	assert.Empty(t, h.sender.all())
	assert.Empty(t, h.presenter.all())
	assert.NotContains(t, h.engine.Schedule().Next, model.Stand)
}

func TestEngineDebouncesPreferenceEdits(t *testing.T) {
	h := setupEngine(t, localAt(10, 0, 0), nil)

	var mu sync.Mutex
	published := 0
	h.engine.OnSchedule(func(Schedule) {
		mu.Lock()
		published++
		mu.Unlock()
	})
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return published
	}

	for i := 1; i <= 3; i++ {
		h.store.Update(func(p *model.Preferences) { p.EyesIntervalMinutes = 20 + i })
		h.engine.Sync()
		h.advance(100 * time.Millisecond)
	}
	assert.Equal(t, 0, count(), "edits inside the debounce window coalesce")

	h.advance(100 * time.Millisecond)
	assert.Equal(t, 1, count())
	assert.Equal(t, localAt(10, 24, 0), h.engine.Schedule().Next[model.Eyes])
}

func TestEngineSnooze(t *testing.T) {
	h := setupEngine(t, localAt(10, 0, 0), nil)

	h.engine.Snooze(model.Eyes, 45)
	assert.Equal(t, localAt(10, 45, 0), h.engine.Schedule().Next[model.Eyes])

	h.store.Apply(func(p *model.Preferences) { p.WaterEnabled = false })
	h.engine.Snooze(model.Water, 10)
	assert.NotContains(t, h.engine.Schedule().Next, model.Water)
	assert.Equal(t, localAt(10, 10, 0), h.store.Get().SnoozeDeadline(model.Water))
}

func TestEngineMarkWaterDone(t *testing.T) {
	h := setupEngine(t, localAt(10, 0, 30), nil)

	res := h.engine.MarkWaterDone()
	assert.True(t, res.Logged)
	assert.Equal(t, 200, res.DoseMl)
	assert.Equal(t, localAt(11, 0, 30), h.engine.Schedule().Next[model.Water])
	assert.Equal(t, 200, h.store.Get().WaterConsumedTodayMl)

	h.clock.Advance(100 * time.Second)
	res = h.engine.MarkWaterDone()
	assert.False(t, res.Logged)
	assert.Equal(t, 20*time.Second, res.Remaining)
	assert.Equal(t, 200, h.store.Get().WaterConsumedTodayMl)
}

func TestEngineStartBreak(t *testing.T) {
	h := setupEngine(t, localAt(10, 0, 0), nil)

	h.engine.StartBreak(model.Stand)

	overlays := h.presenter.all()
	require.Len(t, overlays, 1)
	assert.Equal(t, model.Stand, overlays[0].category)
	assert.Empty(t, h.sender.all())
	assert.Equal(t, localAt(10, 30, 0), h.engine.Schedule().Next[model.Stand])

	h.engine.StartBreak(model.Water)
	assert.Len(t, h.presenter.all(), 1)
}

func TestEngineStopThenRecalculateAfterSleep(t *testing.T) {
	h := setupEngine(t, localAt(10, 0, 0), nil)

	h.engine.Stop()
	assert.Equal(t, 0, h.clock.Pending())
	assert.Len(t, h.engine.Schedule().Next, 3, "logical schedule survives stop")

	h.advance(3 * time.Hour)
	assert.Empty(t, h.sender.all())

	h.engine.Recalculate()
	s := h.engine.Schedule()
	assert.Equal(t, localAt(13, 20, 0), s.Next[model.Eyes])
	assert.Equal(t, 3, h.clock.Pending())
}

func TestEngineStopCancelsPendingDebounce(t *testing.T) {
	h := setupEngine(t, localAt(10, 0, 0), nil)

	h.store.Update(func(p *model.Preferences) { p.EyesIntervalMinutes = 25 })
	h.engine.Sync()
	h.engine.Stop()
	assert.Equal(t, 0, h.clock.Pending())

	h.advance(200 * time.Millisecond)
	assert.Equal(t, 0, h.clock.Pending(), "stopped engine stays dormant")

	h.advance(time.Hour)
	assert.Empty(t, h.sender.all())
}

func TestEngineFiresOnlyInsideWindow(t *testing.T) {
	h := setupEngine(t, localAt(20, 50, 0), func(p *model.Preferences) {
		p.WaterEnabled = false
		p.StandEnabled = false
		p.EyesForceOverlayEnabled = false
	})

	// 20:50 + 20m lands after 21:00, so eyes waits for tomorrow 09:00.
	assert.Equal(t, localAt(9, 0, 0).AddDate(0, 0, 1), h.engine.Schedule().Next[model.Eyes])

	h.advance(12*time.Hour + 10*time.Minute)
	sent := h.sender.all()
	require.Len(t, sent, 1)
	assert.Equal(t, model.Eyes, sent[0].Category)
	assert.Equal(t, localAt(9, 20, 0).AddDate(0, 0, 1), h.engine.Schedule().Next[model.Eyes])
}
