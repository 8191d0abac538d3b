package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for your shell. Line IDs are completed from
the configured store.

  bash:        source <(subway completion bash)
  zsh:         subway completion zsh > "${fpath[1]}/_subway"
  fish:        subway completion fish | source
  powershell:  subway completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeLineIDs completes the first argument with the IDs of stored lines,
// described by their names.
func (c *CLI) completeLineIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, closeFn, err := c.openService(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer closeFn()

	lines, err := svc.Lines(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var ids []string
	for _, l := range lines {
		if id := string(l.ID); strings.HasPrefix(id, toComplete) {
			ids = append(ids, id+"\t"+lineTitle(l))
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
