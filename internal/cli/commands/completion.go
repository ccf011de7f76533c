package commands

import (
	"os"

	"github.com/spf13/cobra"
)

// NewCompletionCommand creates the completion command for shell completions
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for the unknot CLI.

To load completions:

Bash:

  $ source <(unknot completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ unknot completion bash > /etc/bash_completion.d/unknot
  # macOS:
  $ unknot completion bash > $(brew --prefix)/etc/bash_completion.d/unknot

Zsh:

  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ unknot completion zsh > "${fpath[1]}/_unknot"

  # You will need to start a new shell for this setup to take effect.

Fish:

  $ unknot completion fish | source

  # To load completions for each session, execute once:
  $ unknot completion fish > ~/.config/fish/completions/unknot.fish

PowerShell:

  PS> unknot completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> unknot completion powershell > unknot.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := args[0]
			root := cmd.Root()

			switch shell {
			case "bash":
				return root.GenBashCompletion(os.Stdout)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
