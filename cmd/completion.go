package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCmd represents the completion command.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for nudge.

To load completions:

Bash:
  $ source <(nudge completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ nudge completion bash > /etc/bash_completion.d/nudge
  # macOS:
  $ nudge completion bash > $(brew --prefix)/etc/bash_completion.d/nudge

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ nudge completion zsh > "${fpath[1]}/_nudge"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ nudge completion fish | source

  # To load completions for each session, execute once:
  $ nudge completion fish > ~/.config/fish/completions/nudge.fish

PowerShell:
  PS> nudge completion powershell | Out-String | Invoke-Expression
`,
	Annotations:           map[string]string{noRuntime: "true"},
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
