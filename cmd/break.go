package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/nudge/internal/config"
	"github.com/manav03panchal/nudge/internal/dispatch"
	"github.com/manav03panchal/nudge/internal/errors"
	"github.com/manav03panchal/nudge/internal/inbox"
	"github.com/manav03panchal/nudge/internal/model"
	"github.com/manav03panchal/nudge/internal/output"
	"github.com/manav03panchal/nudge/internal/overlay"
	"github.com/manav03panchal/nudge/internal/validate"
)

// breakCmd starts a forced break now.
var breakCmd = &cobra.Command{
	Use:   "break stand|eyes",
	Short: "Take a break now",
	Long: `Start a stand or eye-rest break right away, independent of the schedule.
The category is then snoozed for one interval.

With the daemon running the break is shown wherever the daemon shows
overlays. Otherwise it takes over this terminal.

Examples:
  nudge break stand
  nudge break eyes`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(model.Stand), string(model.Eyes)},
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := validate.Category(args[0])
		if err != nil {
			return err
		}
		return startBreak(cmd, c)
	},
}

func init() {
	rootCmd.AddCommand(breakCmd)
}

func startBreak(cmd *cobra.Command, c model.Category) error {
	id := model.ActionStartStand
	switch c {
	case model.Stand:
	case model.Eyes:
		id = model.ActionStartEyes
	default:
		return errors.InvalidInput(errors.ErrInvalidCategory, "category", string(c), "Breaks are stand or eyes")
	}

	if ctx.DaemonOwned {
		if _, err := ctx.Submit(inbox.Action(id, c)); err != nil {
			return err
		}
		return printAction("started", c.DisplayName()+" break started", true)
	}

	if !overlay.IsTerminal() {
		return errors.NewUserError("a break needs an interactive terminal",
			"Start the daemon with 'nudge daemon start' to get breaks without one")
	}

	local := ctx.Local()
	local.Dispatch(dispatch.Action{ID: id, Category: c})

	o := config.Global.Overlay
	minDur, maxDur := o.EyesMin, o.EyesMax
	var onSnooze func()
	if c == model.Stand {
		minDur, maxDur = o.StandMin, o.StandMax
		onSnooze = func() { local.Snooze(model.Stand, int(o.StandSnooze.Minutes())) }
	}

	outcome, err := overlay.Run(cmd.Context(), c, minDur, maxDur, onSnooze)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.ActionResponse{Status: outcome.String(), Message: c.DisplayName() + " break " + outcome.String()})
	}
	cli := ctx.CLIFormatter()
	switch outcome {
	case overlay.OutcomeDone:
		cli.Success(c.DisplayName() + " break done")
	case overlay.OutcomeSnoozed:
		cli.Muted(c.DisplayName() + " break snoozed for " + output.FormatDuration(o.StandSnooze))
	default:
		cli.Muted(c.DisplayName() + " break " + outcome.String())
	}
	return nil
}
