// Command pagekit is the standalone project tool. It operates on a project
// from the outside: `prerender` runs the project's own binary (every
// pagekit app embeds the pkg/cli command tree), `deploy` uploads the
// pre-rendered output, `version` prints build information.
package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/pagekit-dev/pagekit/pkg/cli"
)

func main() {
	root := &cobra.Command{
		Use:           "pagekit",
		Short:         "Server-side rendering toolkit for Go web apps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		prerenderCmd(),
		deployCmd(),
		versionCmd(),
	)

	if err := root.Execute(); err != nil {
		var perr *errors.PagekitError
		if stderrors.As(err, &perr) {
			fmt.Fprintln(os.Stderr, perr.Format())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), cli.Version)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pagekit %s (commit %s, built %s)\n", cli.Version, cli.Commit, cli.Date)
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")
	return cmd
}
