package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagekit-dev/pagekit/internal/config"
	"github.com/pagekit-dev/pagekit/pkg/deploy"
)

func deployCmd() *cobra.Command {
	var (
		dir    string
		bucket string
		prefix string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Upload the pre-rendered site to S3",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Find(".")
			if err != nil {
				return err
			}
			deployCfg := cfg.Deploy
			if bucket != "" {
				deployCfg.S3Bucket = bucket
			}
			if prefix != "" {
				deployCfg.S3Prefix = prefix
			}
			if dir == "" {
				dir = filepath.Join(cfg.OutputDir(), "client")
			}

			d, err := deploy.NewFromConfig(cmd.Context(), deployCfg, slog.Default())
			if err != nil {
				return err
			}
			summary, err := d.Deploy(cmd.Context(), dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d files (%d bytes) in %s\n",
				summary.Files, summary.Bytes, summary.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to upload (default <build.output>/client)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket (default from pagekit.json)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix inside the bucket")

	return cmd
}
