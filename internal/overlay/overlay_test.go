package overlay

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/nudge/internal/model"
)

var t0 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func at(d time.Duration) tickMsg { return tickMsg(t0.Add(d)) }

// =============================================================================
// BreakModel Tests
// =============================================================================

func TestBreakDoneOnlyAfterMin(t *testing.T) {
	m := NewBreakModel(model.Stand, 2*time.Minute, 5*time.Minute, func() {}, t0)

	m.Update(at(90 * time.Second))
	_, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, OutcomeReplaced, m.Outcome())
	assert.Contains(t, m.View(), "Not yet")

	m.Update(at(2 * time.Minute))
	_, cmd = m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, OutcomeDone, m.Outcome())
}

func TestBreakSnoozeCallsBack(t *testing.T) {
	var snoozed int
	m := NewBreakModel(model.Stand, 2*time.Minute, 5*time.Minute, func() { snoozed++ }, t0)

	_, cmd := m.Update(key("s"))

	require.NotNil(t, cmd)
	assert.Equal(t, 1, snoozed, "snooze is available immediately")
	assert.Equal(t, OutcomeSnoozed, m.Outcome())
}

func TestEyesCannotSnooze(t *testing.T) {
	m := NewBreakModel(model.Eyes, 20*time.Second, 5*time.Minute, nil, t0)

	_, cmd := m.Update(key("s"))

	assert.Nil(t, cmd)
	assert.False(t, m.CanSnooze())
	assert.NotContains(t, m.View(), "snooze")
}

func TestBreakExpiresAtMax(t *testing.T) {
	m := NewBreakModel(model.Eyes, 20*time.Second, 5*time.Minute, nil, t0)

	_, cmd := m.Update(at(4 * time.Minute))
	require.NotNil(t, cmd)
	assert.Equal(t, OutcomeReplaced, m.Outcome())

	_, cmd = m.Update(at(5 * time.Minute))
	require.NotNil(t, cmd)
	assert.Equal(t, OutcomeExpired, m.Outcome())
}

func TestBreakCtrlCBeforeMin(t *testing.T) {
	m := NewBreakModel(model.Eyes, 20*time.Second, 5*time.Minute, nil, t0)

	_, cmd := m.Update(key("ctrl+c"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Finish the break first")

	m.Update(at(21 * time.Second))
	_, cmd = m.Update(key("ctrl+c"))
	assert.NotNil(t, cmd)
	assert.Equal(t, OutcomeDone, m.Outcome())
}

func TestBreakView(t *testing.T) {
	m := NewBreakModel(model.Stand, 2*time.Minute, 5*time.Minute, func() {}, t0)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(at(30 * time.Second))

	view := m.View()
	assert.Contains(t, view, "Stand and move")
	assert.Contains(t, view, "01:30")
	assert.Contains(t, view, "snooze")

	m.Update(at(3 * time.Minute))
	assert.Contains(t, m.View(), "Done is available")
}

func TestNewBreakModelMaxNotBelowMin(t *testing.T) {
	m := NewBreakModel(model.Eyes, time.Minute, time.Second, nil, t0)
	assert.Equal(t, time.Minute, m.Max)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{-time.Second, "00:00"},
		{500 * time.Millisecond, "00:01"},
		{90 * time.Second, "01:30"},
		{time.Hour + 2*time.Second, "01:00:02"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d), tt.d.String())
	}
}

func TestProgressBarWidth(t *testing.T) {
	assert.Greater(t, len(ProgressBar(50, 20)), len(ProgressBar(50, 10)))
	assert.NotEmpty(t, ProgressBar(150, 10))
	assert.NotEmpty(t, ProgressBar(-10, 10))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "done", OutcomeDone.String())
	assert.Equal(t, "snoozed", OutcomeSnoozed.String())
	assert.Equal(t, "expired", OutcomeExpired.String())
	assert.Equal(t, "replaced", OutcomeReplaced.String())
}

// =============================================================================
// TerminalPresenter Tests
// =============================================================================

type fakeProgram struct {
	model *BreakModel
	quit  chan struct{}
	once  sync.Once
}

func (p *fakeProgram) Run() (tea.Model, error) {
	<-p.quit
	return p.model, nil
}

func (p *fakeProgram) Quit() { p.once.Do(func() { close(p.quit) }) }

type programLog struct {
	mu       sync.Mutex
	programs []*fakeProgram
}

func (l *programLog) new(m tea.Model) program {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := &fakeProgram{model: m.(*BreakModel), quit: make(chan struct{})}
	l.programs = append(l.programs, p)
	return p
}

func (l *programLog) get(i int) *fakeProgram {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.programs[i]
}

func newTestPresenter() (*TerminalPresenter, *programLog) {
	log := &programLog{}
	return &TerminalPresenter{newProgram: log.new, now: func() time.Time { return t0 }}, log
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestPresenterReplacesCurrentSession(t *testing.T) {
	p, log := newTestPresenter()

	p.PresentStand(2*time.Minute, 5*time.Minute, func() {})
	p.PresentEyes(20*time.Second, 5*time.Minute)

	first, second := log.get(0), log.get(1)
	assert.Equal(t, model.Stand, first.model.Category)
	assert.Equal(t, model.Eyes, second.model.Category)
	assert.Eventually(t, func() bool { return isClosed(first.quit) }, time.Second, 5*time.Millisecond)
	assert.False(t, isClosed(second.quit))
	assert.True(t, p.Active())

	p.Close()
	assert.False(t, p.Active())
}

func TestPresenterCloseWithoutSession(t *testing.T) {
	p, _ := newTestPresenter()
	p.Close()
	assert.False(t, p.Active())
}

func TestHeadlessPresenter(t *testing.T) {
	var p HeadlessPresenter
	p.PresentStand(time.Minute, 2*time.Minute, nil)
	p.PresentEyes(time.Second, time.Minute)
}
