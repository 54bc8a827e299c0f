package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/nudge/internal/output"
)

// statusCmd shows the reminder schedule.
var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"s", "st"},
	Short:   "Show the reminder schedule",
	Long: `Show whether reminders are active, paused or disabled, when each
category fires next and how much water you have logged today.

While the daemon runs the schedule comes from the daemon itself. Otherwise
it is the schedule the daemon would arm if started now.

Examples:
  nudge status
  nudge status --format json`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// runStatus shows the current schedule.
func runStatus(cmd *cobra.Command, args []string) error {
	p, err := ctx.Preferences()
	if err != nil {
		return err
	}
	resp := output.NewStatusResponse(p, ctx.Schedule(p), ctx.Now(), daemonRunning())

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(resp)
	}
	ctx.CLIFormatter().PrintStatus(resp)
	return nil
}
