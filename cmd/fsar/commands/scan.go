package commands

import (
	"github.com/spf13/cobra"

	"github.com/foglomon/FSAR/internal/app"
)

func (c *CLI) newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Print a one-shot tree of the directory and exit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			includeHidden, _ := cmd.Flags().GetBool("include-hidden")
			maxDepth, _ := cmd.Flags().GetInt("max-depth")
			verbose, _ := cmd.Flags().GetBool("verbose")

			return c.app.Scan(cmd.Context(), root, app.ScanOptions{
				MaxDepth:      maxDepth,
				IncludeHidden: includeHidden,
				Verbose:       verbose,
			})
		},
	}
	cmd.Flags().Bool("include-hidden", false, "Include dotfiles and hidden directories")
	cmd.Flags().Int("max-depth", -1, "Limit traversal depth, 0 means unlimited (overrides config)")
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")
	return cmd
}
