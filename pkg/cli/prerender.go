package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	pagekit "github.com/pagekit-dev/pagekit"
	"github.com/pagekit-dev/pagekit/internal/build"
)

func prerenderCmd(global *pagekit.GlobalContext) *cobra.Command {
	var (
		output string
		clean  bool
	)

	cmd := &cobra.Command{
		Use:   "prerender",
		Short: "Pre-render the site to static files",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p := build.New(global, build.Options{
				OutputDir: output,
				OnProgress: func(step string) {
					fmt.Fprintf(out, "  %s\n", step)
				},
				Logger: global.Logger,
			})
			if clean {
				if err := p.Clean(); err != nil {
					return err
				}
			}
			result, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n  Pre-rendered %d pages to %s in %s\n",
				result.Pages, result.OutputDir, result.Duration.Round(time.Millisecond))
			if len(result.Skipped) > 0 {
				fmt.Fprintf(out, "  Skipped: %v\n", result.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default <build.output>/client)")
	cmd.Flags().BoolVar(&clean, "clean", false, "Remove the output directory first")

	return cmd
}
