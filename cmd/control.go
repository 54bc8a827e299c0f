package cmd

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/nudge/internal/dispatch"
	"github.com/manav03panchal/nudge/internal/errors"
	"github.com/manav03panchal/nudge/internal/inbox"
	"github.com/manav03panchal/nudge/internal/model"
	"github.com/manav03panchal/nudge/internal/output"
	"github.com/manav03panchal/nudge/internal/parser"
	"github.com/manav03panchal/nudge/internal/validate"
)

// defaultPauseMinutes applies when pause gets neither a duration nor --until.
const defaultPauseMinutes = 60

var pauseFlagUntil string

// pauseCmd pauses every reminder.
var pauseCmd = &cobra.Command{
	Use:   "pause [DURATION]",
	Short: "Pause all reminders",
	Long: `Pause every reminder for a while. Nothing fires until the pause ends
or you resume.

Examples:
  nudge pause              # one hour
  nudge pause 30m
  nudge pause 2h
  nudge pause --until 'tomorrow 9am'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPause,
}

// resumeCmd lifts a pause.
var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume reminders after a pause",
	Args:  cobra.NoArgs,
	RunE:  runResume,
}

// snoozeCmd postpones one category.
var snoozeCmd = &cobra.Command{
	Use:   "snooze CATEGORY [DURATION]",
	Short: "Postpone one reminder",
	Long: `Postpone the next reminder of one category without changing its
interval. The default is ten minutes.

Examples:
  nudge snooze stand
  nudge snooze water 45m`,
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completeCategories,
	RunE:              runSnooze,
}

// actionCmd runs a notification action by id.
var actionCmd = &cobra.Command{
	Use:   "action ID [CATEGORY]",
	Short: "Run a notification action",
	Long: `Run one of the actions offered on reminders: water_done, start_stand,
start_eyes, snooze_10 or open_settings. snooze_10 needs a category.

Examples:
  nudge action water_done
  nudge action snooze_10 eyes`,
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completeActions,
	RunE:              runAction,
}

func init() {
	pauseCmd.Flags().StringVarP(&pauseFlagUntil, "until", "u", "",
		"Pause until a time, e.g. '17:00' or 'tomorrow 9am'")

	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(snoozeCmd)
	rootCmd.AddCommand(actionCmd)
}

// userError swaps a time parse failure for its UserError form, which
// carries examples.
func userError(err error) error {
	var tpe *parser.TimeParseError
	if stderrors.As(err, &tpe) {
		return tpe.ToUserError()
	}
	return err
}

func runPause(cmd *cobra.Command, args []string) error {
	now := ctx.Now()

	var m inbox.Message
	var until time.Time
	if pauseFlagUntil != "" {
		res := parser.ParseDeadline(pauseFlagUntil, now)
		if res.Error != nil {
			return userError(res.Error)
		}
		until = res.Time
		m = inbox.PauseUntil(until)
	} else {
		minutes := defaultPauseMinutes
		if len(args) == 1 {
			var err error
			if minutes, err = parser.ParseMinutes(args[0]); err != nil {
				return userError(err)
			}
		}
		until = now.Add(time.Duration(minutes) * time.Minute)
		m = inbox.Pause(minutes)
	}

	queued, err := ctx.Submit(m)
	if err != nil {
		return err
	}
	return printAction("paused", "Reminders paused until "+output.FormatClockTime(until, now), queued)
}

func runResume(cmd *cobra.Command, args []string) error {
	queued, err := ctx.Submit(inbox.Resume())
	if err != nil {
		return err
	}
	return printAction("resumed", "Reminders resumed", queued)
}

func runSnooze(cmd *cobra.Command, args []string) error {
	c, err := validate.Category(args[0])
	if err != nil {
		return err
	}
	minutes := dispatch.SnoozeMinutes
	if len(args) == 2 {
		if minutes, err = parser.ParseMinutes(args[1]); err != nil {
			return userError(err)
		}
	}

	queued, err := ctx.Submit(inbox.Snooze(c, minutes))
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("%s snoozed for %s", c.DisplayName(), output.FormatDuration(time.Duration(minutes)*time.Minute))
	return printAction("snoozed", msg, queued)
}

func runAction(cmd *cobra.Command, args []string) error {
	id, err := validate.Action(args[0])
	if err != nil {
		return err
	}
	var c model.Category
	if len(args) == 2 {
		if c, err = validate.Category(args[1]); err != nil {
			return err
		}
	}

	switch id {
	case model.ActionWaterDone:
		return runWaterTap(cmd, nil)
	case model.ActionStartStand:
		return startBreak(cmd, model.Stand)
	case model.ActionStartEyes:
		return startBreak(cmd, model.Eyes)
	case model.ActionSnooze10:
		if c == "" {
			return errors.NewUserError(string(id)+" needs a category", "Add one of: water, stand, eyes")
		}
	}

	queued, err := ctx.Submit(inbox.Action(id, c))
	if err != nil {
		return err
	}
	return printAction("ok", id.Label(), queued)
}

func completeCategories(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, c := range model.Categories() {
		out = append(out, string(c)+"\t"+c.DisplayName())
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completeActions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 1 {
		return completeCategories(cmd, nil, toComplete)
	}
	if len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, a := range model.Actions() {
		out = append(out, string(a)+"\t"+a.Label())
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
