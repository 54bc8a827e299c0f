package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/nudge/internal/dispatch"
	"github.com/manav03panchal/nudge/internal/errors"
	"github.com/manav03panchal/nudge/internal/inbox"
	"github.com/manav03panchal/nudge/internal/model"
	"github.com/manav03panchal/nudge/internal/output"
)

// waterCmd logs one dose.
var waterCmd = &cobra.Command{
	Use:     "water",
	Aliases: []string{"drink", "w"},
	Short:   "Log a glass of water",
	Long: `Log one dose of water toward today's goal and push the next water
reminder back by one interval. Taps closer together than the cooldown
are ignored.

Examples:
  nudge water
  nudge water status`,
	Args: cobra.NoArgs,
	RunE: runWaterTap,
}

// waterStatusCmd shows today's progress.
var waterStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's water progress",
	Args:  cobra.NoArgs,
	RunE:  runWaterStatus,
}

func init() {
	waterCmd.AddCommand(waterStatusCmd)
	rootCmd.AddCommand(waterCmd)
}

func cooldownError(remaining time.Duration) error {
	return &errors.UserError{
		Message:    fmt.Sprintf("water logged too recently, the next tap counts in %s", output.FormatDuration(remaining)),
		Suggestion: "Check 'nudge water status' for today's progress",
		Cause:      errors.ErrWaterCooldown,
	}
}

// tapWater logs one dose locally or through the daemon. dose is zero when
// the daemon will apply it and the dose is not yet known.
func tapWater(now time.Time) (dose int, queued bool, err error) {
	if ctx.DaemonOwned {
		// The daemon cannot answer back, so reject what it would reject.
		p, err := ctx.Preferences()
		if err == nil && !p.CanLogWaterNow(now) {
			return 0, false, cooldownError(p.WaterTapRemaining(now))
		}
		if _, err := ctx.Submit(inbox.Action(model.ActionWaterDone, model.Water)); err != nil {
			return 0, false, err
		}
		if p != nil {
			dose = p.WaterDoseMl()
		}
		return dose, true, nil
	}

	res := ctx.Local().Dispatch(dispatch.Action{ID: model.ActionWaterDone, Category: model.Water}).Water
	if !res.Logged {
		return 0, false, cooldownError(res.Remaining)
	}
	return res.DoseMl, false, nil
}

func waterMessage(dose int) string {
	if dose == 0 {
		return "Water logged"
	}
	return fmt.Sprintf("Logged %d ml", dose)
}

func runWaterTap(cmd *cobra.Command, args []string) error {
	now := ctx.Now()
	dose, queued, err := tapWater(now)
	if err != nil {
		return err
	}
	if queued {
		return printAction("logged", waterMessage(dose), true)
	}

	water := output.NewWaterResponse(ctx.Prefs.Get(), now)
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.WaterTapResponse{Status: "logged", LoggedMl: dose, Water: water})
	}

	cli := ctx.CLIFormatter()
	cli.Success(waterMessage(dose))
	cli.PrintWater(water)
	return nil
}

func runWaterStatus(cmd *cobra.Command, args []string) error {
	p, err := ctx.Preferences()
	if err != nil {
		return err
	}
	water := output.NewWaterResponse(p, ctx.Now())

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(water)
	}
	ctx.CLIFormatter().PrintWater(water)
	return nil
}
