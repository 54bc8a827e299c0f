package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/nudge/internal/daemon"
	"github.com/manav03panchal/nudge/internal/inbox"
)

// notifyCmd groups notification helpers.
var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification helpers",
}

// notifyTestCmd sends the test notification through every backend.
var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification through every enabled backend",
	Long: `Send a test notification through the console, Telegram and webhooks,
whichever config.yaml enables.

With the daemon running the daemon sends it. Otherwise this command does.`,
	Args: cobra.NoArgs,
	RunE: runNotifyTest,
}

func init() {
	notifyCmd.AddCommand(notifyTestCmd)
	rootCmd.AddCommand(notifyCmd)
}

type backendTestResult struct {
	Backend    string `json:"backend"`
	Success    bool   `json:"success"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	if ctx.DaemonOwned {
		if _, err := ctx.Submit(inbox.Test()); err != nil {
			return err
		}
		return printAction("sent", "Test notification handed to the daemon", true)
	}

	var console io.Writer = os.Stdout
	if ctx.IsJSON() {
		console = nil
	}
	backends := daemon.NewBackends(ctx.File, ctx.Webhooks, console)
	if len(backends.Hub.Backends()) == 0 {
		return printAction("skipped", "No notification backends are enabled in config.yaml", false)
	}

	c, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	var results []backendTestResult
	for _, r := range backends.Hub.SendTest(c) {
		res := backendTestResult{Backend: r.Backend, Success: r.Error == nil, DurationMs: r.Duration.Milliseconds()}
		if r.Error != nil {
			res.Error = r.Error.Error()
		}
		results = append(results, res)
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"results": results})
	}
	cli := ctx.CLIFormatter()
	for _, r := range results {
		if r.Success {
			cli.Success(r.Backend + ": sent")
		} else {
			cli.Error(r.Backend + ": " + r.Error)
		}
	}
	return nil
}
