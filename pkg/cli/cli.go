// Package cli is the cobra command tree a pagekit app embeds in its main:
//
//	func main() {
//		global, err := pagekit.NewGlobalContext(ctx, opts)
//		if err != nil {
//			log.Fatal(err)
//		}
//		cli.Main(global)
//	}
//
// It gives every app binary the serve, prerender, deploy, and version
// subcommands. The standalone `pagekit` tool drives the same commands from
// outside the project by executing the app binary.
package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	pagekit "github.com/pagekit-dev/pagekit"
	"github.com/pagekit-dev/pagekit/internal/errors"
)

// Version information set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// New builds the app command tree.
func New(global *pagekit.GlobalContext) *cobra.Command {
	root := &cobra.Command{
		Use:           "app",
		Short:         "A pagekit application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		serveCmd(global),
		prerenderCmd(global),
		deployCmd(global),
		versionCmd(),
	)
	return root
}

// Main executes the command tree and exits non-zero on failure. Structured
// errors print with their code and suggestion.
func Main(global *pagekit.GlobalContext) {
	if err := New(global).Execute(); err != nil {
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
				fmt.Fprintln(cmd.OutOrStdout(), Version)
				return
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pagekit %s\n", Version)
			fmt.Fprintf(out, "  Commit:     %s\n", Commit)
			fmt.Fprintf(out, "  Built:      %s\n", Date)
			fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")
	return cmd
}
