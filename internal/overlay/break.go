package overlay

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/nudge/internal/model"
)

// Outcome is how a break session ended.
type Outcome int

// Break outcomes.
const (
	OutcomeReplaced Outcome = iota // closed by a newer session or shutdown
	OutcomeDone
	OutcomeSnoozed
	OutcomeExpired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeSnoozed:
		return "snoozed"
	case OutcomeExpired:
		return "expired"
	default:
		return "replaced"
	}
}

// tickMsg advances the break clock.
type tickMsg time.Time

const tickInterval = 250 * time.Millisecond

// BreakModel is the bubbletea model of one forced break.
type BreakModel struct {
	Category model.Category
	Min      time.Duration
	Max      time.Duration

	onSnooze func()
	started  time.Time
	elapsed  time.Duration
	outcome  Outcome
	notice   string

	width  int
	height int
}

// NewBreakModel starts a break at start. onSnooze is nil for breaks that
// cannot be snoozed.
func NewBreakModel(c model.Category, minDur, maxDur time.Duration, onSnooze func(), start time.Time) *BreakModel {
	if maxDur < minDur {
		maxDur = minDur
	}
	return &BreakModel{
		Category: c,
		Min:      minDur,
		Max:      maxDur,
		onSnooze: onSnooze,
		started:  start,
	}
}

// Outcome returns how the session ended so far.
func (m *BreakModel) Outcome() Outcome { return m.outcome }

// Elapsed returns the time spent in the break.
func (m *BreakModel) Elapsed() time.Duration { return m.elapsed }

// CanFinish reports whether the minimum duration has passed.
func (m *BreakModel) CanFinish() bool { return m.elapsed >= m.Min }

// CanSnooze reports whether the snooze key is offered.
func (m *BreakModel) CanSnooze() bool { return m.onSnooze != nil }

// Init starts the clock.
func (m *BreakModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model.
func (m *BreakModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.elapsed = time.Time(msg).Sub(m.started)
		if m.elapsed >= m.Max {
			m.outcome = OutcomeExpired
			return m, tea.Quit
		}
		return m, tick()

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m *BreakModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "d", " ":
		if !m.CanFinish() {
			m.notice = "Not yet. " + FormatDuration(m.Min-m.elapsed) + " to go."
			return m, nil
		}
		m.outcome = OutcomeDone
		return m, tea.Quit

	case "s":
		if !m.CanSnooze() {
			return m, nil
		}
		m.outcome = OutcomeSnoozed
		m.onSnooze()
		return m, tea.Quit

	case "ctrl+c", "q", "esc":
		if m.CanFinish() {
			m.outcome = OutcomeDone
			return m, tea.Quit
		}
		m.notice = "Finish the break first."
		return m, nil
	}
	return m, nil
}

func (m *BreakModel) title() string {
	if m.Category == model.Eyes {
		return "Eye rest"
	}
	return "Stand and move"
}

func (m *BreakModel) instruction() string {
	if m.Category == model.Eyes {
		return "Look at something 6 m away and blink slowly."
	}
	return "Get up, walk around and loosen your neck and shoulders."
}

// View renders the break screen.
func (m *BreakModel) View() string {
	var sections []string

	sections = append(sections, lipgloss.NewStyle().Bold(true).Foreground(accent(m.Category)).Render(m.title()))
	sections = append(sections, styleBody.Render(m.instruction()))

	var clock string
	if m.CanFinish() {
		clock = "Done is available · closes in " + FormatDuration(m.Max-m.elapsed)
	} else {
		clock = FormatDuration(m.Min - m.elapsed)
	}
	sections = append(sections, styleClock.Render(clock))

	progress := 100.0
	if m.Min > 0 {
		progress = float64(m.elapsed) / float64(m.Min) * 100
	}
	sections = append(sections, ProgressBar(progress, 30))

	if m.notice != "" {
		sections = append(sections, styleHint.Render(m.notice))
	}

	help := []string{helpItem("enter", "done", m.CanFinish())}
	if m.CanSnooze() {
		help = append(help, helpItem("s", "snooze", true))
	}
	sections = append(sections, strings.Join(help, "   "))

	box := boxStyle(m.Category).Render(lipgloss.JoinVertical(lipgloss.Center, joinWithGaps(sections)...))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func joinWithGaps(sections []string) []string {
	out := make([]string, 0, len(sections)*2)
	for i, s := range sections {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, s)
	}
	return out
}
