package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/nudge/internal/model"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorSuccess = lipgloss.Color("#10B981")

	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
	styleError   = lipgloss.NewStyle().Foreground(colorError)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleBold    = lipgloss.NewStyle().Bold(true)

	categoryColors = map[model.Category]lipgloss.Color{
		model.Water: lipgloss.Color("#3B82F6"),
		model.Stand: lipgloss.Color("#F97316"),
		model.Eyes:  lipgloss.Color("#14B8A6"),
	}
)

// Glyphs for the overall state.
const (
	GlyphActive   = "●"
	GlyphPaused   = "⏸"
	GlyphDisabled = "○"
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) style(s lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return s.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.style(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.style(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.style(styleWarning, "⚠ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.style(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.style(styleMuted, text))
}

// CategoryName renders the display name of cat in its color.
func (c *CLIFormatter) CategoryName(cat model.Category) string {
	name := cat.DisplayName()
	if color, ok := categoryColors[cat]; ok && c.IsColorEnabled() {
		return lipgloss.NewStyle().Bold(true).Foreground(color).Render(name)
	}
	return name
}

// StateGlyph returns the glyph for a StatusResponse state.
func StateGlyph(state string) string {
	switch state {
	case StatePaused:
		return GlyphPaused
	case StateDisabled:
		return GlyphDisabled
	default:
		return GlyphActive
	}
}

// PrintStatus prints the status report.
func (c *CLIFormatter) PrintStatus(r *StatusResponse) {
	glyph := StateGlyph(r.State)
	switch r.State {
	case StatePaused:
		c.Printf("%s Paused until %s (%s)\n", c.style(styleWarning, glyph),
			FormatClockTime(r.pausedUntil, r.now), FormatRelative(r.pausedUntil, r.now))
	case StateDisabled:
		c.Printf("%s All reminders are off\n", c.style(styleMuted, glyph))
	default:
		c.Printf("%s Active\n", c.style(styleSuccess, glyph))
	}

	window := "Active window " + r.ActiveWindow
	if !r.InWindow {
		window += " (outside now)"
	}
	c.Muted(window)
	if !r.DaemonRunning {
		c.Muted("Daemon not running. Start it with 'nudge daemon start'.")
	}
	c.Println()

	rows := make([]TableRow, 0, len(r.Categories))
	for _, cs := range r.Categories {
		next, last := "-", "-"
		switch {
		case !cs.Enabled:
			next = "off"
		case !cs.snoozed.IsZero():
			next = "snoozed until " + FormatClockTime(cs.snoozed, r.now)
		case !cs.next.IsZero():
			next = FormatClockTime(cs.next, r.now) + " (" + FormatRelative(cs.next, r.now) + ")"
		}
		if !cs.last.IsZero() {
			last = FormatClockTime(cs.last, r.now)
		}
		rows = append(rows, TableRow{Columns: []string{
			cs.Category.DisplayName(),
			fmt.Sprintf("every %dm", cs.IntervalMinutes),
			next,
			last,
		}})
	}
	c.PrintTable([]string{"Reminder", "Interval", "Next", "Last"}, rows)
	c.Println()
	c.PrintWater(r.Water)
}

// PrintWater prints today's hydration progress.
func (c *CLIFormatter) PrintWater(w WaterResponse) {
	bar := ProgressBar(w.Progress*100, 20)
	c.Printf("%s %s %d / %d ml\n", c.CategoryName(model.Water), bar, w.ConsumedMl, w.GoalMl)
	if w.RemainingMl > 0 {
		c.Muted(fmt.Sprintf("%d ml to go. Suggested sip: %d ml.", w.RemainingMl, w.SuggestedDoseMl))
	} else {
		c.Success("Goal reached for today.")
	}
	if w.cooldown > 0 {
		c.Muted("Next tap accepted in " + FormatDuration(w.cooldown) + ".")
	}
}

// PrintSettings prints every setting with its value.
func (c *CLIFormatter) PrintSettings(items []SettingOutput) {
	rows := make([]TableRow, 0, len(items))
	for _, s := range items {
		rows = append(rows, TableRow{Columns: []string{s.Key, s.Value, s.Description}})
	}
	c.PrintTable([]string{"Key", "Value", "Description"}, rows)
}

// PrintWebhooks prints the configured webhooks.
func (c *CLIFormatter) PrintWebhooks(hooks []WebhookOutput) {
	if len(hooks) == 0 {
		c.Muted("No webhooks configured.")
		c.Muted("Add one with 'nudge webhook add <name> <url>'.")
		return
	}
	rows := make([]TableRow, 0, len(hooks))
	for _, h := range hooks {
		state := "on"
		if !h.Enabled {
			state = "off"
		}
		cats := "all"
		if len(h.Categories) > 0 {
			cats = strings.Join(h.Categories, ",")
		}
		rows = append(rows, TableRow{Columns: []string{h.Name, h.Type, state, cats, h.URL}})
	}
	c.PrintTable([]string{"Name", "Type", "State", "Reminders", "URL"}, rows)
}

// ProgressBar renders a bar of width cells filled to percentage.
func ProgressBar(percentage float64, width int) string {
	percentage = min(100, max(0, percentage))
	filled := int(float64(width) * percentage / 100)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// TableRow is one row of PrintTable.
type TableRow struct {
	Columns []string
}

// PrintTable prints left-aligned columns under a bold header.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(col))
			}
		}
	}

	line := func(cols []string) string {
		var sb strings.Builder
		for i, col := range cols {
			if i >= len(widths) {
				break
			}
			sb.WriteString(col)
			if i < len(cols)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(col)+2))
			}
		}
		return sb.String()
	}

	c.Println(c.style(styleBold, line(headers)))
	var sep []string
	for _, w := range widths {
		sep = append(sep, strings.Repeat("─", w))
	}
	c.Println(line(sep))
	for _, row := range rows {
		c.Println(line(row.Columns))
	}
}
