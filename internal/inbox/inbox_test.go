package inbox

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/nudge/internal/dispatch"
	"github.com/manav03panchal/nudge/internal/engine"
	"github.com/manav03panchal/nudge/internal/model"
)

func openSpool(t *testing.T) *Spool {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "inbox"))
	require.NoError(t, err)
	return s
}

func TestSpoolPostAndDrainInOrder(t *testing.T) {
	s := openSpool(t)
	base := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	_, err := s.Post(Pause(30))
	require.NoError(t, err)
	_, err = s.Post(Snooze(model.Stand, 10))
	require.NoError(t, err)
	_, err = s.Post(Resume())
	require.NoError(t, err)

	assert.Equal(t, 3, s.Pending())

	msgs := s.Drain()
	require.Len(t, msgs, 3)
	assert.Equal(t, KindPause, msgs[0].Kind)
	assert.Equal(t, 30, msgs[0].Minutes)
	assert.Equal(t, KindSnooze, msgs[1].Kind)
	assert.Equal(t, model.Stand, msgs[1].Category)
	assert.Equal(t, KindResume, msgs[2].Kind)
	assert.Equal(t, base.Add(time.Second), msgs[0].CreatedAt.UTC())

	assert.Equal(t, 0, s.Pending())
	assert.Empty(t, s.Drain())
}

func TestSpoolDropsMalformedEntries(t *testing.T) {
	s := openSpool(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "00000000000000000001-garbage"), []byte("{not json"), 0o644))
	_, err := s.Post(Recalculate())
	require.NoError(t, err)

	msgs := s.Drain()
	require.Len(t, msgs, 1)
	assert.Equal(t, KindRecalculate, msgs[0].Kind)
	assert.Equal(t, 0, s.Pending())
}

func TestSpoolWatchDeliversPostedMessages(t *testing.T) {
	s := openSpool(t)
	_, err := s.Post(Action(model.ActionWaterDone, model.Water))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []Message
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, func(m Message) {
			mu.Lock()
			got = append(got, m)
			mu.Unlock()
		})
	}()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err = s.Post(Resume())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, model.ActionWaterDone, got[0].Action)
	assert.Equal(t, KindResume, got[1].Kind)
}

type fakeEngine struct {
	calls []string
}

func (f *fakeEngine) PauseAll(minutes int) {
	f.calls = append(f.calls, "pause")
}

func (f *fakeEngine) PauseUntil(time.Time) {
	f.calls = append(f.calls, "pause_until")
}

func (f *fakeEngine) ResumeAll() {
	f.calls = append(f.calls, "resume")
}

func (f *fakeEngine) Snooze(c model.Category, minutes int) {
	f.calls = append(f.calls, "snooze:"+string(c))
}

func (f *fakeEngine) Recalculate() {
	f.calls = append(f.calls, "recalculate")
}

type fakeDispatcher struct {
	actions []dispatch.Action
	water   *engine.WaterResult
}

func (f *fakeDispatcher) Dispatch(a dispatch.Action) dispatch.Outcome {
	f.actions = append(f.actions, a)
	return dispatch.Outcome{Handled: true, Water: f.water}
}

type fakePrefs struct {
	p       *model.Preferences
	updates int
	resets  int
}

func (f *fakePrefs) Update(fn func(p *model.Preferences)) *model.Preferences {
	fn(f.p)
	f.updates++
	return f.p.Clone()
}

func (f *fakePrefs) Reset() *model.Preferences {
	f.p.ResetToDefaults()
	f.resets++
	return f.p.Clone()
}

func newRouter() (*Router, *fakeDispatcher, *fakeEngine, *fakePrefs, *int) {
	d := &fakeDispatcher{}
	e := &fakeEngine{}
	p := &fakePrefs{p: model.DefaultPreferences()}
	tests := 0
	r := NewRouter(Routes{Dispatcher: d, Engine: e, Prefs: p, Test: func() { tests++ }})
	return r, d, e, p, &tests
}

func TestRouterRoutesEveryKind(t *testing.T) {
	r, d, e, p, tests := newRouter()

	require.NoError(t, r.Route(Action(model.ActionSnooze10, model.Eyes)))
	require.NoError(t, r.Route(Pause(15)))
	require.NoError(t, r.Route(PauseUntil(time.Now().Add(time.Hour))))
	require.NoError(t, r.Route(Snooze(model.Water, 20)))
	require.NoError(t, r.Route(Resume()))
	require.NoError(t, r.Route(Recalculate()))
	require.NoError(t, r.Route(Setting("stand.interval", "40")))
	require.NoError(t, r.Route(Reset()))
	require.NoError(t, r.Route(Test()))

	require.Len(t, d.actions, 1)
	assert.Equal(t, dispatch.Action{ID: model.ActionSnooze10, Category: model.Eyes}, d.actions[0])
	assert.Equal(t, []string{"pause", "pause_until", "snooze:water", "resume", "recalculate"}, e.calls)
	assert.Equal(t, 1, p.updates)
	assert.Equal(t, 1, p.resets)
	assert.Equal(t, 1, *tests)
}

func TestRouterAppliesSetting(t *testing.T) {
	r, _, _, p, _ := newRouter()

	require.NoError(t, r.Route(Setting("stand.interval", "40")))
	assert.Equal(t, 1, p.updates)
	assert.Equal(t, 40, p.p.StandIntervalMinutes)

	require.NoError(t, r.Route(Setting("water.goal", "1500")))
	assert.Equal(t, 1500, p.p.WaterGoalMl())
}

func TestRouterRejectsInvalidMessages(t *testing.T) {
	r, d, e, p, _ := newRouter()

	tests := []struct {
		name string
		msg  Message
	}{
		{"unknown_action", Action("dance", "")},
		{"zero_pause", Pause(0)},
		{"bad_category", Snooze("sleep", 10)},
		{"zero_snooze", Snooze(model.Stand, 0)},
		{"bad_setting", Setting("stand.interval", "500")},
		{"unknown_kind", Message{Kind: "reboot"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, r.Route(tt.msg))
		})
	}

	assert.Empty(t, d.actions)
	assert.Empty(t, e.calls)
	assert.Zero(t, p.updates)
	assert.Equal(t, model.Stand.DefaultIntervalMinutes(), p.p.StandIntervalMinutes)
}

func TestRouterSettingChangesPreferences(t *testing.T) {
	r, _, _, p, _ := newRouter()
	require.NoError(t, r.Route(Setting("eyes.enabled", "off")))
	assert.False(t, p.p.EyesEnabled)
}

func TestMessageString(t *testing.T) {
	assert.Equal(t, "action water_done (water)", Action(model.ActionWaterDone, model.Water).String())
	assert.Equal(t, "pause 30m", Pause(30).String())
	assert.Equal(t, "set sound=off", Setting("sound", "off").String())
	assert.Equal(t, "resume", Resume().String())
}
