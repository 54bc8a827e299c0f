package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/nudge/internal/config"
	"github.com/manav03panchal/nudge/internal/inbox"
	"github.com/manav03panchal/nudge/internal/model"
	"github.com/manav03panchal/nudge/internal/output"
	"github.com/manav03panchal/nudge/internal/settings"
)

const launchAtLoginKey = "launch_at_login"

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg", "settings"},
	Short:   "View and change preferences",
	Long: `View and change reminder preferences.

Senders and overlay mode live in config.yaml instead; 'nudge config path'
shows where.

Examples:
  nudge config show
  nudge config get water.goal
  nudge config set stand.interval 45
  nudge config set active.start 08:30
  nudge config set eyes.overlay off
  nudge config reset`,
	RunE: runConfigShow,
}

// configShowCmd lists every setting.
var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list", "ls"},
	Short:   "Show every setting",
	Args:    cobra.NoArgs,
	RunE:    runConfigShow,
}

// configGetCmd prints one setting.
var configGetCmd = &cobra.Command{
	Use:               "get KEY",
	Short:             "Print one setting",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeSettingKeys,
	RunE:              runConfigGet,
}

// configSetCmd changes one setting.
var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting",
	Long: `Change one setting. Run 'nudge config show' for every key.

Examples:
  nudge config set water.interval 30
  nudge config set water.goal 2500
  nudge config set active.end 18:00
  nudge config set sound off`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeSettingKeys,
	RunE:              runConfigSet,
}

// configResetCmd restores defaults.
var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore every setting to its default",
	Args:  cobra.NoArgs,
	RunE:  runConfigReset,
}

// configPathCmd shows where config.yaml is read from.
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config.yaml location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ctx.File.Path
		if path == "" {
			path = config.Dir() + "/config.yaml"
		}
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]any{"path": path, "exists": ctx.File.Path != ""})
		}
		ctx.Formatter.Println(path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func settingOutputs(p *model.Preferences) []output.SettingOutput {
	var items []output.SettingOutput
	for _, s := range settings.All() {
		items = append(items, output.SettingOutput{Key: s.Key, Value: s.Value(p), Description: s.Description})
	}
	return items
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	p, err := ctx.Preferences()
	if err != nil {
		return err
	}
	items := settingOutputs(p)

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(items)
	}
	ctx.CLIFormatter().PrintSettings(items)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	p, err := ctx.Preferences()
	if err != nil {
		return err
	}
	value, err := settings.Get(p, args[0])
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.SettingOutput{Key: strings.ToLower(args[0]), Value: value})
	}
	ctx.Formatter.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := strings.ToLower(strings.TrimSpace(args[0])), args[1]
	if err := settings.Validate(key, value); err != nil {
		return userError(err)
	}

	queued, err := ctx.Submit(inbox.Setting(key, value))
	if err != nil {
		return userError(err)
	}

	if key == launchAtLoginKey {
		if err := syncLaunchAtLogin(value); err != nil {
			return err
		}
	}

	var shown string
	if p, err := ctx.Preferences(); err == nil && !queued {
		shown, _ = settings.Get(p, key)
	}
	if shown == "" {
		shown = value
	}
	return printAction("updated", key+" = "+shown, queued)
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	queued, err := ctx.Submit(inbox.Reset())
	if err != nil {
		return err
	}
	return printAction("reset", "All settings restored to defaults", queued)
}

func completeSettingKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, s := range settings.All() {
		if strings.HasPrefix(s.Key, toComplete) {
			out = append(out, s.Key+"\t"+s.Description)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
