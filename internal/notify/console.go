package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/manav03panchal/nudge/internal/model"
)

var consoleIcons = map[string]string{
	"droplet":   "💧",
	"walking":   "🚶",
	"eyes":      "👀",
	"test_tube": "🧪",
	"bell":      "🔔",
}

var (
	consoleTimeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	consoleBodyStyle   = lipgloss.NewStyle().PaddingLeft(8)
	consoleActionStyle = lipgloss.NewStyle().PaddingLeft(8).Foreground(lipgloss.Color("8")).Italic(true)
)

// Console prints notifications to a terminal.
type Console struct {
	mu   sync.Mutex
	w    io.Writer
	bell bool
}

// NewConsole writes to w. The bell only rings when w is a terminal.
func NewConsole(w io.Writer, bell bool) *Console {
	if w == nil {
		w = os.Stdout
	}
	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		bell = false
	}
	return &Console{w: w, bell: bell}
}

// Name implements Backend.
func (c *Console) Name() string { return "console" }

// Deliver implements Backend.
func (c *Console) Deliver(_ context.Context, n *model.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := io.WriteString(c.w, c.render(n))
	return err
}

func (c *Console) render(n *model.Notification) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorToHex(colorOf(n)))).
		Render(n.Title)

	var b strings.Builder
	if c.bell && n.Sound {
		b.WriteString("\a")
	}
	fmt.Fprintf(&b, "%s %s %s\n", consoleTimeStyle.Render(n.Timestamp.Format("15:04")), consoleIcons[n.Icon()], title)
	b.WriteString(consoleBodyStyle.Render(n.Message))
	b.WriteString("\n")
	for _, fl := range sortedFields(n) {
		b.WriteString(consoleBodyStyle.Render(fl.Name + ": " + fl.Value))
		b.WriteString("\n")
	}
	if len(n.Actions) > 0 {
		parts := make([]string, 0, len(n.Actions))
		for _, a := range n.Actions {
			parts = append(parts, fmt.Sprintf("%s [nudge action %s]", a.Label(), a))
		}
		b.WriteString(consoleActionStyle.Render(strings.Join(parts, "  ")))
		b.WriteString("\n")
	}
	return b.String()
}
