package commands

import (
	"github.com/spf13/cobra"

	"github.com/foglomon/FSAR/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Watch a directory and render activity until interrupted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			outputMode, _ := cmd.Flags().GetString("output-mode")
			ci, _ := cmd.Flags().GetBool("ci")
			backend, _ := cmd.Flags().GetString("backend")
			debounce, _ := cmd.Flags().GetDuration("debounce")
			tick, _ := cmd.Flags().GetDuration("tick")
			includeHidden, _ := cmd.Flags().GetBool("include-hidden")
			maxDepth, _ := cmd.Flags().GetInt("max-depth")
			trace, _ := cmd.Flags().GetBool("trace")
			verbose, _ := cmd.Flags().GetBool("verbose")

			// If --ci is set, override output-mode to "linear"
			if ci || outputMode == "ci" {
				outputMode = "linear"
			}

			return c.app.Run(cmd.Context(), root, app.RunOptions{
				OutputMode:    outputMode,
				Backend:       backend,
				Debounce:      debounce,
				RenderTick:    tick,
				MaxDepth:      maxDepth,
				IncludeHidden: includeHidden,
				Trace:         trace,
				Verbose:       verbose,
			})
		},
	}
	cmd.Flags().StringP("output-mode", "o", "auto", "Output mode: auto, tree, or linear")
	cmd.Flags().Bool("ci", false, "Use linear output mode (shorthand for --output-mode=linear)")
	cmd.Flags().String("backend", "auto", "Watch backend: auto, fsnotify, or poll")
	cmd.Flags().Duration("debounce", 0, "Quiet window before an event settles (overrides config)")
	cmd.Flags().Duration("tick", 0, "Interval between tree repaints (overrides config)")
	cmd.Flags().Bool("include-hidden", false, "Track dotfiles and hidden directories")
	cmd.Flags().Int("max-depth", -1, "Limit traversal depth, 0 means unlimited (overrides config)")
	cmd.Flags().Bool("trace", false, "Log pipeline trace spans")
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")
	return cmd
}
