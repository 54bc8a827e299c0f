package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/nudge/internal/engine"
	"github.com/manav03panchal/nudge/internal/model"
)

// Snapshot is what the dashboard shows on each refresh.
type Snapshot struct {
	Prefs         *model.Preferences
	Schedule      engine.Schedule
	DaemonRunning bool
}

// Backend loads snapshots and applies key actions.
type Backend interface {
	Load() (Snapshot, error)
	LogWater() (string, error)
	TogglePause(paused bool) (string, error)
}

// tickMsg is sent when the countdown ticks.
type tickMsg time.Time

// refreshMsg asks for a reload from the backend.
type refreshMsg struct{}

// DashboardModel is the bubbletea model behind `nudge watch`.
type DashboardModel struct {
	backend Backend
	now     func() time.Time

	snap Snapshot

	width      int
	height     int
	err        error
	message    string
	messageExp time.Time

	refreshInterval time.Duration
	reloadEvery     int
	ticks           int
}

// DashboardConfig holds configuration for the dashboard.
type DashboardConfig struct {
	Backend Backend
	Now     func() time.Time
	// RefreshInterval is the countdown tick. The backend is reloaded every
	// ReloadEvery ticks.
	RefreshInterval time.Duration
	ReloadEvery     int
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(config DashboardConfig) *DashboardModel {
	if config.RefreshInterval == 0 {
		config.RefreshInterval = time.Second
	}
	if config.ReloadEvery <= 0 {
		config.ReloadEvery = 5
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &DashboardModel{
		backend:         config.Backend,
		now:             config.Now,
		refreshInterval: config.RefreshInterval,
		reloadEvery:     config.ReloadEvery,
	}
}

// Init initializes the model.
func (m *DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.refreshCmd())
}

// Update handles messages and updates the model.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if !m.messageExp.IsZero() && m.now().After(m.messageExp) {
			m.message = ""
			m.messageExp = time.Time{}
		}
		m.ticks++
		if m.ticks%m.reloadEvery == 0 {
			m.loadData()
		}
		return m, m.tickCmd()

	case refreshMsg:
		m.loadData()
		return m, nil
	}
	return m, nil
}

func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "w":
		m.apply(m.backend.LogWater())

	case "p":
		paused := m.snap.Prefs != nil && m.snap.Prefs.IsPaused(m.now())
		m.apply(m.backend.TogglePause(paused))

	case "r":
		m.loadData()
		m.setMessage("Refreshed", time.Second)
	}
	return m, nil
}

func (m *DashboardModel) apply(msg string, err error) {
	if err != nil {
		m.setMessage(err.Error(), 3*time.Second)
		return
	}
	m.setMessage(msg, 2*time.Second)
	m.loadData()
}

// View renders the dashboard.
func (m *DashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	now := m.now()

	sections := []string{m.renderHeader(now)}

	if m.err != nil {
		sections = append(sections, StyleError.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.message != "" {
		sections = append(sections, StyleWarning.Render(m.message))
	}

	p := m.snap.Prefs
	if p == nil {
		return lipgloss.JoinVertical(lipgloss.Left, append(sections, HelpBar(false))...)
	}

	for _, c := range model.Categories() {
		sections = append(sections, NewCategoryPanel(c, p, m.snap.Schedule, now, m.width).View())
	}
	sections = append(sections, WaterPanel(p, now))
	if !m.snap.DaemonRunning {
		sections = append(sections, StyleSubtitle.Render("Daemon not running, reminders will not fire."))
	}
	sections = append(sections, HelpBar(p.IsPaused(now)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *DashboardModel) renderHeader(now time.Time) string {
	title := StyleTitle.Render("nudge")
	state := StyleSuccess.Render("active")
	if p := m.snap.Prefs; p != nil {
		switch {
		case p.IsPaused(now):
			state = StyleWarning.Render("paused until " + p.PauseUntil.Format("15:04"))
		case !p.AnyEnabled():
			state = StyleSubtitle.Render("all reminders off")
		case !p.IsWithinActiveWindow(now):
			state = StyleSubtitle.Render("outside " + p.Window().String())
		}
	}
	clock := StyleSubtitle.Render(now.Format("Mon Jan 2, 15:04:05"))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", state, "  ", clock) + "\n"
}

func (m *DashboardModel) loadData() {
	snap, err := m.backend.Load()
	if err != nil {
		m.err = err
		return
	}
	m.snap = snap
	m.err = nil
}

func (m *DashboardModel) setMessage(msg string, d time.Duration) {
	m.message = msg
	m.messageExp = m.now().Add(d)
}

func (m *DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *DashboardModel) refreshCmd() tea.Cmd {
	return func() tea.Msg { return refreshMsg{} }
}

// Run starts the dashboard on the alternate screen.
func Run(config DashboardConfig) error {
	p := tea.NewProgram(NewDashboardModel(config), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
