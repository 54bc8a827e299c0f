package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/nudge/internal/errors"
	"github.com/manav03panchal/nudge/internal/inbox"
	"github.com/manav03panchal/nudge/internal/overlay"
	"github.com/manav03panchal/nudge/internal/tui"
)

// watchCmd opens the live dashboard.
var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"dashboard", "dash"},
	Short:   "Live countdown of every reminder",
	Long: `Show a live dashboard with the next reminder per category and today's
water progress.

Keys:
  w  log a glass of water
  p  pause for an hour, or resume
  r  refresh
  q  quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !overlay.IsTerminal() {
			return errors.NewUserError("the dashboard needs an interactive terminal",
				"Use 'nudge status' instead")
		}
		return tui.Run(tui.DashboardConfig{Backend: watchBackend{}, Now: ctx.Now})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// watchBackend feeds the dashboard from the runtime context.
type watchBackend struct{}

func (watchBackend) Load() (tui.Snapshot, error) {
	p, err := ctx.Preferences()
	if err != nil {
		return tui.Snapshot{}, err
	}
	return tui.Snapshot{
		Prefs:         p,
		Schedule:      ctx.Schedule(p),
		DaemonRunning: ctx.DaemonOwned || daemonRunning(),
	}, nil
}

func (watchBackend) LogWater() (string, error) {
	dose, _, err := tapWater(ctx.Now())
	if err != nil {
		return "", err
	}
	return waterMessage(dose), nil
}

func (watchBackend) TogglePause(paused bool) (string, error) {
	if paused {
		if _, err := ctx.Submit(inbox.Resume()); err != nil {
			return "", err
		}
		return "Resumed", nil
	}
	if _, err := ctx.Submit(inbox.Pause(defaultPauseMinutes)); err != nil {
		return "", err
	}
	return "Paused until " + ctx.Now().Add(defaultPauseMinutes*time.Minute).Format("15:04"), nil
}
