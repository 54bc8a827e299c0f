// Package cmd provides the CLI commands for nudge.
//
// This software is a derivative work based on Zeit (https://github.com/mrusme/zeit)
// Original work copyright (c) マリウス (mrusme)
// Modifications copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/nudge/internal/daemon"
	"github.com/manav03panchal/nudge/internal/errors"
	"github.com/manav03panchal/nudge/internal/logging"
	"github.com/manav03panchal/nudge/internal/output"
	"github.com/manav03panchal/nudge/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// noRuntime marks commands that must not open the database themselves.
const noRuntime = "no-runtime"

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "nudge",
	Short: "Water, stand and eye-rest reminders",
	Long: `nudge reminds you to drink water, stand up and rest your eyes while
respecting your active hours, pauses and snoozes.

Examples:
  nudge daemon start
  nudge status
  nudge water
  nudge pause 1h
  nudge snooze stand 20m
  nudge config set eyes.interval 25`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagDebug {
			logging.InitDebug()
		}

		// Skip initialization for completion and help commands (but allow __complete for dynamic completions)
		if cmd.Name() == "completion" || cmd.Name() == "help" || cmd.Annotations[noRuntime] != "" {
			return nil
		}

		opts := runtime.DefaultOptions()
		opts.Format = output.ParseFormat(flagFormat)
		opts.ColorMode = parseColorMode(flagColor)
		opts.Debug = flagDebug

		var err error
		ctx, err = runtime.New(opts)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ctx != nil {
			return ctx.Close()
		}
		return nil
	},
	RunE: runStatus,
}

func parseColorMode(s string) output.ColorMode {
	switch s {
	case "always":
		return output.ColorAlways
	case "never":
		return output.ColorNever
	default:
		return output.ColorAuto
	}
}

// Execute runs the root command and renders any error it returns. An
// interrupt cancels the command's context.
func Execute() error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(sigCtx)
	if err != nil {
		printError(err)
	}
	if ctx != nil {
		ctx.Close()
	}
	return err
}

func printError(err error) {
	logging.DebugLog("command failed", "user_error", errors.IsUserError(err), logging.KeyError, err)
	if flagFormat == string(output.FormatJSON) {
		f := output.NewFormatter()
		f.Writer = os.Stderr
		_ = f.JSON(output.ErrorResponse{
			Status:     "error",
			Error:      err.Error(),
			Suggestion: runtime.GetSuggestion(err),
		})
		return
	}
	fmt.Fprintln(os.Stderr, "Error: "+runtime.FormatError(err))
}

// printAction reports a state change, noting when the daemon will apply it.
func printAction(status, message string, queued bool) error {
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.ActionResponse{Status: status, Message: message, Queued: queued})
	}
	cli := ctx.CLIFormatter()
	cli.Success(message)
	if queued {
		cli.Muted("Sent to the running daemon.")
	}
	return nil
}

func daemonRunning() bool {
	return daemon.NewPIDFile().IsRunning()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: map[string]string{noRuntime: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("nudge %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
		cmd.Println("")
		cmd.Println("Based on Zeit (https://github.com/mrusme/zeit)")
		cmd.Println("Licensed under SEGV License v1.0")
	},
}
