package main

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pagekit-dev/pagekit/internal/config"
	"github.com/pagekit-dev/pagekit/internal/errors"
)

func prerenderCmd() *cobra.Command {
	var (
		output string
		clean  bool
	)

	cmd := &cobra.Command{
		Use:   "prerender",
		Short: "Pre-render the project to static files",
		Long: `Pre-render the project to static files.

The project's own binary does the rendering (pagekit apps embed the
prerender subcommand); this command locates the project via pagekit.json
and runs it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrerender(cmd, output, clean)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default <build.output>/client)")
	cmd.Flags().BoolVar(&clean, "clean", false, "Remove the output directory first")

	return cmd
}

func runPrerender(cmd *cobra.Command, output string, clean bool) error {
	if _, err := exec.LookPath("go"); err != nil {
		return errors.Newf(errors.CategoryConfig, "the go toolchain is required to run the project").Wrap(err)
	}

	cfg, err := config.Find(".")
	if err != nil {
		return err
	}

	if output == "" {
		output = filepath.Join(cfg.OutputDir(), "client")
	}

	childArgs := []string{"run", ".", "prerender", "--output", output}
	if clean {
		childArgs = append(childArgs, "--clean")
	}
	child := exec.CommandContext(cmd.Context(), "go", childArgs...)
	child.Dir = cfg.Root()
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr
	if err := child.Run(); err != nil {
		return errors.Newf(errors.CategoryCLI, "pre-rendering failed").Wrap(err)
	}
	return nil
}
