package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/manav03panchal/nudge/internal/engine"
	"github.com/manav03panchal/nudge/internal/model"
	"github.com/manav03panchal/nudge/internal/output"
)

// CategoryPanel shows one reminder's countdown.
type CategoryPanel struct {
	Category model.Category
	Enabled  bool
	Interval int
	Next     time.Time
	Last     time.Time
	Snoozed  time.Time
	Paused   bool
	Now      time.Time
	Width    int
}

// NewCategoryPanel reads c's state from p and s.
func NewCategoryPanel(c model.Category, p *model.Preferences, s engine.Schedule, now time.Time, width int) *CategoryPanel {
	cp := &CategoryPanel{
		Category: c,
		Enabled:  p.Enabled(c),
		Interval: p.IntervalMinutes(c),
		Next:     s.Next[c],
		Last:     s.Last[c],
		Paused:   p.IsPaused(now),
		Now:      now,
		Width:    width,
	}
	if p.IsSnoozed(c, now) {
		cp.Snoozed = p.SnoozeDeadline(c)
	}
	return cp
}

// Countdown is the headline text of the panel.
func (cp *CategoryPanel) Countdown() string {
	switch {
	case !cp.Enabled:
		return "off"
	case cp.Paused:
		return "paused"
	case !cp.Snoozed.IsZero():
		return "snoozed " + output.FormatDuration(cp.Snoozed.Sub(cp.Now))
	case cp.Next.IsZero():
		return "outside active hours"
	case !cp.Next.After(cp.Now):
		return "due"
	}
	return "in " + output.FormatDuration(cp.Next.Sub(cp.Now).Truncate(time.Second))
}

// View renders the panel.
func (cp *CategoryPanel) View() string {
	var sb strings.Builder
	title := StyleCountdown.Foreground(CategoryColor(cp.Category)).Render(cp.Category.DisplayName())
	sb.WriteString(title)
	sb.WriteString("  ")
	if cp.Enabled && !cp.Paused {
		sb.WriteString(StyleCountdown.Render(cp.Countdown()))
	} else {
		sb.WriteString(StyleSubtitle.Render(cp.Countdown()))
	}
	sb.WriteString("\n")

	detail := fmt.Sprintf("every %dm", cp.Interval)
	if !cp.Next.IsZero() && cp.Enabled {
		detail += " · next " + output.FormatClockTime(cp.Next, cp.Now)
	}
	if !cp.Last.IsZero() {
		detail += " · last " + output.FormatClockTime(cp.Last, cp.Now)
	}
	sb.WriteString(StyleSubtitle.Render(detail))

	box := StyleCategoryBox.BorderForeground(CategoryColor(cp.Category))
	if cp.Width > 4 {
		box = box.Width(cp.Width - 4)
	}
	return box.Render(sb.String())
}

// WaterPanel renders today's hydration progress.
func WaterPanel(p *model.Preferences, now time.Time) string {
	w := output.NewWaterResponse(p, now)
	line := fmt.Sprintf("%s %d / %d ml", ProgressBar(w.Progress*100, 24), w.ConsumedMl, w.GoalMl)
	var hint string
	switch {
	case w.RemainingMl <= 0:
		hint = StyleSuccess.Render("Goal reached for today")
	case w.NextTapAllowed != "":
		hint = StyleSubtitle.Render("Next tap accepted in " + output.FormatDuration(p.WaterTapRemaining(now)))
	default:
		hint = StyleSubtitle.Render(fmt.Sprintf("%d ml to go, suggested sip %d ml", w.RemainingMl, w.SuggestedDoseMl))
	}
	return line + "\n" + hint
}
