// Package overlay renders forced stand and eye breaks as full-screen
// terminal sessions.
package overlay

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/nudge/internal/model"
)

// Color palette for break screens.
var (
	ColorStand   = lipgloss.Color("#10B981") // Green
	ColorEyes    = lipgloss.Color("#F59E0B") // Yellow
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
	ColorBorder  = lipgloss.Color("#4B5563") // Dark gray
	ColorSuccess = lipgloss.Color("#10B981")
	ColorClock   = lipgloss.Color("#7C3AED") // Purple
)

var (
	styleClock = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorClock)

	styleBody = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB"))

	styleHint = lipgloss.NewStyle().
			Italic(true).
			Foreground(ColorMuted)

	styleHelpKey = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)

	styleHelpDesc = lipgloss.NewStyle().
			Foreground(ColorMuted)

	styleDisabled = lipgloss.NewStyle().
			Foreground(ColorBorder).
			Strikethrough(true)
)

func accent(c model.Category) lipgloss.Color {
	if c == model.Eyes {
		return ColorEyes
	}
	return ColorStand
}

func boxStyle(c model.Category) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent(c)).
		Padding(1, 4)
}

// ProgressBar renders percentage (0-100) as a bar of width cells.
func ProgressBar(percentage float64, width int) string {
	percentage = min(max(percentage, 0), 100)

	filled := int(float64(width) * percentage / 100)
	empty := width - filled

	filledStyle := lipgloss.NewStyle().Foreground(ColorSuccess)
	emptyStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", empty))
}

// FormatDuration formats a duration as MM:SS or HH:MM:SS, rounding up to
// whole seconds so a countdown never shows 00:00 early.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = (d + time.Second - 1).Truncate(time.Second)

	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func helpItem(key, desc string, enabled bool) string {
	if !enabled {
		return styleDisabled.Render(key + " " + desc)
	}
	return styleHelpKey.Render(key) + " " + styleHelpDesc.Render(desc)
}
