// Package tui provides the live `nudge watch` dashboard.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/nudge/internal/model"
)

// Color palette for the dashboard.
var (
	ColorPrimary = lipgloss.Color("#7C3AED") // Purple
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
	ColorWarning = lipgloss.Color("#F59E0B") // Yellow
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorWater   = lipgloss.Color("#3B82F6") // Blue
	ColorBorder  = lipgloss.Color("#4B5563") // Dark gray
)

var (
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	StyleSubtitle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StyleCountdown = lipgloss.NewStyle().
			Bold(true)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1)

	StyleHelpKey = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)

	StyleHelpDesc = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleCategoryBox frames one reminder panel.
	StyleCategoryBox = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder).
				Padding(0, 1)
)

// CategoryColor is the accent used for a category's panel.
func CategoryColor(c model.Category) lipgloss.Color {
	switch c {
	case model.Water:
		return ColorWater
	case model.Stand:
		return ColorSuccess
	default:
		return ColorPrimary
	}
}

// ProgressBar renders a bar of width cells filled to percentage.
func ProgressBar(percentage float64, width int) string {
	percentage = min(100, max(0, percentage))
	filled := int(float64(width) * percentage / 100)

	filledStyle := lipgloss.NewStyle().Foreground(ColorWater)
	emptyStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled))
}

// HelpBar renders the key bindings line.
func HelpBar(paused bool) string {
	pause := "pause 1h"
	if paused {
		pause = "resume"
	}
	items := []string{
		StyleHelpKey.Render("w") + " " + StyleHelpDesc.Render("log water"),
		StyleHelpKey.Render("p") + " " + StyleHelpDesc.Render(pause),
		StyleHelpKey.Render("r") + " " + StyleHelpDesc.Render("refresh"),
		StyleHelpKey.Render("q") + " " + StyleHelpDesc.Render("quit"),
	}
	return StyleHelp.Render(strings.Join(items, "  "))
}
