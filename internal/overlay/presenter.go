package overlay

import (
	"context"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/manav03panchal/nudge/internal/config"
	"github.com/manav03panchal/nudge/internal/engine"
	"github.com/manav03panchal/nudge/internal/logging"
	"github.com/manav03panchal/nudge/internal/model"
)

// program is the part of *tea.Program the presenter drives.
type program interface {
	Run() (tea.Model, error)
	Quit()
}

// TerminalPresenter shows breaks in the controlling terminal. Only one
// session is visible; a new request closes the current one first.
type TerminalPresenter struct {
	mu      sync.Mutex
	current program
	done    chan struct{}

	newProgram func(m tea.Model) program
	now        func() time.Time
}

// NewTerminalPresenter creates a presenter that runs full-screen programs.
func NewTerminalPresenter(opts ...tea.ProgramOption) *TerminalPresenter {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return &TerminalPresenter{
		newProgram: func(m tea.Model) program { return tea.NewProgram(m, opts...) },
		now:        time.Now,
	}
}

// PresentStand implements engine.Presenter.
func (p *TerminalPresenter) PresentStand(minDur, maxDur time.Duration, onSnooze func()) {
	p.present(NewBreakModel(model.Stand, minDur, maxDur, onSnooze, p.now()))
}

// PresentEyes implements engine.Presenter.
func (p *TerminalPresenter) PresentEyes(minDur, maxDur time.Duration) {
	p.present(NewBreakModel(model.Eyes, minDur, maxDur, nil, p.now()))
}

func (p *TerminalPresenter) present(m *BreakModel) {
	prog := p.newProgram(m)
	done := make(chan struct{})

	p.mu.Lock()
	prev, prevDone := p.current, p.done
	p.current, p.done = prog, done
	p.mu.Unlock()

	go func() {
		defer close(done)
		if prev != nil {
			prev.Quit()
			<-prevDone
		}

		log := logging.Component("overlay")
		log.Info("break started", logging.KeyCategory, m.Category)
		if _, err := prog.Run(); err != nil {
			log.Warn("break overlay failed", logging.KeyCategory, m.Category, logging.KeyError, err)
		}
		log.Info("break ended",
			logging.KeyCategory, m.Category,
			logging.KeyStatus, m.Outcome().String(),
			logging.KeyDuration, m.Elapsed().Round(time.Second).String())

		p.mu.Lock()
		if p.current == prog {
			p.current, p.done = nil, nil
		}
		p.mu.Unlock()
	}()
}

// Active reports whether a session is showing or about to show.
func (p *TerminalPresenter) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}

// Close ends the current session and waits for the terminal to be restored.
func (p *TerminalPresenter) Close() {
	p.mu.Lock()
	cur, done := p.current, p.done
	p.mu.Unlock()

	if cur == nil {
		return
	}
	cur.Quit()
	<-done
}

// HeadlessPresenter logs break requests when no terminal is available.
type HeadlessPresenter struct{}

// PresentStand implements engine.Presenter.
func (HeadlessPresenter) PresentStand(minDur, maxDur time.Duration, _ func()) {
	logging.Info("stand break requested without a terminal",
		"min", minDur.String(), "max", maxDur.String())
}

// PresentEyes implements engine.Presenter.
func (HeadlessPresenter) PresentEyes(minDur, maxDur time.Duration) {
	logging.Info("eye break requested without a terminal",
		"min", minDur.String(), "max", maxDur.String())
}

// IsTerminal reports whether stdin and stdout are both a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// NewPresenter picks the presenter for an overlay mode from config.yaml.
func NewPresenter(mode string) engine.Presenter {
	switch mode {
	case config.OverlayTerminal:
		return NewTerminalPresenter()
	case config.OverlayOff:
		return HeadlessPresenter{}
	default:
		if IsTerminal() {
			return NewTerminalPresenter()
		}
		return HeadlessPresenter{}
	}
}

// Run shows one break in the current terminal and blocks until it ends.
func Run(ctx context.Context, c model.Category, minDur, maxDur time.Duration, onSnooze func()) (Outcome, error) {
	if c != model.Eyes {
		c = model.Stand
	} else {
		onSnooze = nil
	}
	m := NewBreakModel(c, minDur, maxDur, onSnooze, time.Now())
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return m.Outcome(), err
	}
	return m.Outcome(), nil
}
