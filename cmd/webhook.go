package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/nudge/internal/errors"
	"github.com/manav03panchal/nudge/internal/model"
	"github.com/manav03panchal/nudge/internal/notify"
	"github.com/manav03panchal/nudge/internal/output"
	"github.com/manav03panchal/nudge/internal/runtime"
	"github.com/manav03panchal/nudge/internal/storage"
	"github.com/manav03panchal/nudge/internal/validate"
)

// Webhook command flags.
var (
	webhookAddFlagType       string
	webhookAddFlagCategories []string
	webhookRemoveFlagForce   bool
	webhookTestFlagAll       bool
)

// webhookCmd represents the webhook command.
var webhookCmd = &cobra.Command{
	Use:     "webhook [command]",
	Aliases: []string{"wh", "hook"},
	Short:   "Configure notification webhooks",
	Long: `Mirror reminders to Discord, Slack, Teams or any HTTP endpoint.

Webhooks live in the database, so the daemon must be stopped while you
change them.

Examples:
  nudge webhook add discord https://discord.com/api/webhooks/...
  nudge webhook add team https://hooks.slack.com/services/... --category stand
  nudge webhook list
  nudge webhook test discord
  nudge webhook disable team
  nudge webhook remove discord`,
	RunE: runWebhookList,
}

// webhookAddCmd adds a new webhook.
var webhookAddCmd = &cobra.Command{
	Use:   "add NAME URL",
	Short: "Add a new webhook",
	Long: `Add a webhook for receiving reminders.

The webhook type is auto-detected from the URL:
  - Discord: discord.com/api/webhooks/...
  - Slack:   hooks.slack.com/services/...
  - Teams:   outlook.office.com/webhook/...
  - Generic: Any other URL

Examples:
  nudge webhook add discord https://discord.com/api/webhooks/123/abc
  nudge webhook add my-hook https://example.com/hook --type generic
  nudge webhook add desk https://example.com/hook --category stand --category eyes`,
	Args: cobra.ExactArgs(2),
	RunE: runWebhookAdd,
}

// webhookListCmd lists all webhooks.
var webhookListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all webhooks",
	RunE:    runWebhookList,
}

// webhookTestCmd tests a webhook.
var webhookTestCmd = &cobra.Command{
	Use:   "test [NAME]",
	Short: "Send a test notification to a webhook",
	Long: `Send a test notification to verify webhook configuration.

Examples:
  nudge webhook test discord
  nudge webhook test --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWebhookTest,
}

// webhookRemoveCmd removes a webhook.
var webhookRemoveCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a webhook",
	Args:    cobra.ExactArgs(1),
	RunE:    runWebhookRemove,
}

// webhookEnableCmd enables a webhook.
var webhookEnableCmd = &cobra.Command{
	Use:   "enable NAME",
	Short: "Enable a webhook",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setWebhookEnabled(args[0], true) },
}

// webhookDisableCmd disables a webhook.
var webhookDisableCmd = &cobra.Command{
	Use:   "disable NAME",
	Short: "Disable a webhook",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setWebhookEnabled(args[0], false) },
}

func init() {
	webhookAddCmd.Flags().StringVarP(&webhookAddFlagType, "type", "t", "",
		"Webhook type: discord, slack, teams, generic (auto-detected from URL if not specified)")
	webhookAddCmd.Flags().StringSliceVarP(&webhookAddFlagCategories, "category", "c", nil,
		"Only send these categories (default: all)")

	webhookRemoveCmd.Flags().BoolVar(&webhookRemoveFlagForce, "force", false,
		"Skip confirmation")

	webhookTestCmd.Flags().BoolVarP(&webhookTestFlagAll, "all", "a", false,
		"Test all enabled webhooks")

	webhookTestCmd.ValidArgsFunction = completeWebhookArgs
	webhookRemoveCmd.ValidArgsFunction = completeWebhookArgs
	webhookEnableCmd.ValidArgsFunction = completeWebhookArgs
	webhookDisableCmd.ValidArgsFunction = completeWebhookArgs

	webhookCmd.AddCommand(webhookAddCmd)
	webhookCmd.AddCommand(webhookListCmd)
	webhookCmd.AddCommand(webhookTestCmd)
	webhookCmd.AddCommand(webhookRemoveCmd)
	webhookCmd.AddCommand(webhookEnableCmd)
	webhookCmd.AddCommand(webhookDisableCmd)

	rootCmd.AddCommand(webhookCmd)
}

// completeWebhookArgs provides completion for webhook names.
func completeWebhookArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 || ctx == nil || ctx.Webhooks == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	webhooks, err := ctx.Webhooks.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, wh := range webhooks {
		if strings.HasPrefix(wh.Name, toComplete) {
			names = append(names, wh.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func getWebhook(name string) (*model.Webhook, error) {
	wh, err := ctx.Webhooks.Get(name)
	if err != nil {
		if storage.IsErrKeyNotFound(err) {
			return nil, errors.InvalidInput(errors.ErrWebhookNotFound, "webhook", name,
				"Use 'nudge webhook list' to see configured webhooks")
		}
		return nil, err
	}
	return wh, nil
}

func runWebhookAdd(cmd *cobra.Command, args []string) error {
	if err := ctx.RequireDB(); err != nil {
		return err
	}
	name, webhookURL := args[0], args[1]

	if err := validate.WebhookName(name); err != nil {
		return err
	}
	if err := validate.URL(webhookURL); err != nil {
		return err
	}

	exists, err := ctx.Webhooks.Exists(name)
	if err != nil {
		return err
	}
	if exists {
		return errors.NewUserError(fmt.Sprintf("webhook %q already exists", name),
			"Remove it first with 'nudge webhook remove "+name+"'")
	}

	webhookType := webhookAddFlagType
	if webhookType == "" {
		webhookType = model.DetectWebhookType(webhookURL)
	}
	if !model.IsValidWebhookType(webhookType) {
		return errors.InvalidInput(errors.ErrInvalidValue, "type", webhookType,
			"Use one of: "+strings.Join(model.ValidWebhookTypes(), ", "))
	}

	webhook := model.NewWebhook(name, webhookType, webhookURL)
	for _, raw := range webhookAddFlagCategories {
		c, err := validate.Category(raw)
		if err != nil {
			return err
		}
		webhook.Categories = append(webhook.Categories, c)
	}

	if err := ctx.Webhooks.Create(webhook); err != nil {
		return runtime.WrapDiskFullError(err, "write", ctx.DB.Path())
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewWebhookOutput(webhook))
	}

	ctx.CLIFormatter().Success("Added webhook " + name)
	ctx.Formatter.Printf("  Type: %s\n", webhook.Type)
	ctx.Formatter.Printf("  URL:  %s\n", webhook.MaskedURL())
	ctx.Formatter.Println("")
	ctx.Formatter.Printf("Test with: nudge webhook test %s\n", name)
	return nil
}

func runWebhookList(cmd *cobra.Command, args []string) error {
	if err := ctx.RequireDB(); err != nil {
		return err
	}
	webhooks, err := ctx.Webhooks.List()
	if err != nil {
		return err
	}

	hooks := make([]output.WebhookOutput, 0, len(webhooks))
	for _, wh := range webhooks {
		hooks = append(hooks, output.NewWebhookOutput(wh))
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"webhooks": hooks, "count": len(hooks)})
	}
	if len(hooks) == 0 {
		ctx.Formatter.Println("No webhooks configured.")
		ctx.Formatter.Println("")
		ctx.Formatter.Println("Add one with: nudge webhook add discord <url>")
		return nil
	}
	ctx.CLIFormatter().PrintWebhooks(hooks)
	return nil
}

// webhookTestResult is one `nudge webhook test` outcome.
type webhookTestResult struct {
	Webhook    string `json:"webhook"`
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func runWebhookTest(cmd *cobra.Command, args []string) error {
	if err := ctx.RequireDB(); err != nil {
		return err
	}

	var targets []*model.Webhook
	switch {
	case webhookTestFlagAll:
		all, err := ctx.Webhooks.List()
		if err != nil {
			return err
		}
		for _, wh := range all {
			if wh.IsEnabled() {
				targets = append(targets, wh)
			}
		}
		if len(targets) == 0 {
			return errors.NewUserError("no enabled webhooks to test", "Add one with 'nudge webhook add'")
		}
	case len(args) == 1:
		wh, err := getWebhook(args[0])
		if err != nil {
			return err
		}
		targets = append(targets, wh)
	default:
		return errors.NewUserError("webhook name required", "Name a webhook or pass --all")
	}

	c, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	backend := notify.NewWebhookBackend(ctx.Webhooks, notify.NewHTTPClient(), nil)
	n := model.NewTestNotification()

	var results []webhookTestResult
	for _, wh := range targets {
		r := backend.SendTo(c, n, wh)
		res := webhookTestResult{
			Webhook:    wh.Name,
			Success:    r.Success,
			StatusCode: r.StatusCode,
			DurationMs: r.Duration.Milliseconds(),
		}
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
			cli.Success(fmt.Sprintf("%s: delivered in %dms", r.Webhook, r.DurationMs))
		} else {
			cli.Error(fmt.Sprintf("%s: %s", r.Webhook, r.Error))
		}
	}
	return nil
}

func runWebhookRemove(cmd *cobra.Command, args []string) error {
	if err := ctx.RequireDB(); err != nil {
		return err
	}
	name := args[0]
	if _, err := getWebhook(name); err != nil {
		return err
	}

	if !webhookRemoveFlagForce && !ctx.IsJSON() {
		ctx.Formatter.Printf("Remove webhook %q? [y/N] ", name)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			ctx.Formatter.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.Webhooks.Delete(name); err != nil {
		return err
	}
	return printAction("removed", "Removed webhook "+name, false)
}

func setWebhookEnabled(name string, enabled bool) error {
	if err := ctx.RequireDB(); err != nil {
		return err
	}
	if _, err := getWebhook(name); err != nil {
		return err
	}
	if err := ctx.Webhooks.SetEnabled(name, enabled); err != nil {
		return err
	}
	if enabled {
		return printAction("enabled", "Enabled webhook "+name, false)
	}
	return printAction("disabled", "Disabled webhook "+name, false)
}
