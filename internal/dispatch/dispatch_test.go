package dispatch

import (
	"fmt"
	"testing"

	"github.com/manav03panchal/nudge/internal/engine"
	"github.com/manav03panchal/nudge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
	water engine.WaterResult
}

func (r *recorder) MarkWaterDone() engine.WaterResult {
	r.calls = append(r.calls, "water")
	return r.water
}

func (r *recorder) StartBreak(c model.Category) {
	r.calls = append(r.calls, "break:"+string(c))
}

func (r *recorder) Snooze(c model.Category, minutes int) {
	r.calls = append(r.calls, fmt.Sprintf("snooze:%s:%d", c, minutes))
}

type settings struct{ opened int }

func (s *settings) OpenSettings() { s.opened++ }

func TestDispatchRoutes(t *testing.T) {
	tests := []struct {
		action Action
		want   []string
	}{
		{Action{ID: model.ActionWaterDone}, []string{"water"}},
		{Action{ID: model.ActionStartStand, Category: model.Eyes}, []string{"break:stand"}},
		{Action{ID: model.ActionStartEyes}, []string{"break:eyes"}},
		{Action{ID: model.ActionSnooze10, Category: model.Water}, []string{"snooze:water:10"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.action.ID), func(t *testing.T) {
			r := &recorder{}
			out := New(r, nil).Dispatch(tt.action)
			assert.True(t, out.Handled)
			assert.Equal(t, tt.want, r.calls)
		})
	}
}

func TestDispatchWaterOutcome(t *testing.T) {
	r := &recorder{water: engine.WaterResult{Logged: true, DoseMl: 150}}
	out := New(r, nil).Dispatch(Action{ID: model.ActionWaterDone})
	require.NotNil(t, out.Water)
	assert.Equal(t, 150, out.Water.DoseMl)
}

func TestDispatchOpenSettings(t *testing.T) {
	s := &settings{}
	out := New(&recorder{}, s).Dispatch(Action{ID: model.ActionOpenSettings})
	assert.True(t, out.Handled)
	assert.Equal(t, 1, s.opened)

	out = New(&recorder{}, nil).Dispatch(Action{ID: model.ActionOpenSettings})
	assert.False(t, out.Handled)
}

func TestDispatchIgnoresUnknownAndIncomplete(t *testing.T) {
	r := &recorder{}
	d := New(r, &settings{})

	assert.NotPanics(t, func() {
		assert.False(t, d.Dispatch(Action{ID: "launch_rockets"}).Handled)
		assert.False(t, d.Dispatch(Action{}).Handled)
		assert.False(t, d.Dispatch(Action{ID: model.ActionSnooze10}).Handled)
		assert.False(t, d.Dispatch(Action{ID: model.ActionSnooze10, Category: "coffee"}).Handled)
	})
	assert.Empty(t, r.calls)
}

func TestEveryKnownActionIsRouted(t *testing.T) {
	d := New(&recorder{}, &settings{})
	for _, id := range model.Actions() {
		assert.Contains(t, d.routes, id)
	}
}
