package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	pagekit "github.com/pagekit-dev/pagekit"
	"github.com/pagekit-dev/pagekit/pkg/deploy"
)

func deployCmd(global *pagekit.GlobalContext) *cobra.Command {
	var (
		dir    string
		bucket string
		prefix string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Upload the pre-rendered site to S3",
		RunE: func(cmd *cobra.Command, args []string) error {
			deployCfg := global.Config.Deploy
			if bucket != "" {
				deployCfg.S3Bucket = bucket
			}
			if prefix != "" {
				deployCfg.S3Prefix = prefix
			}
			if dir == "" {
				dir = filepath.Join(global.Config.Build.Output, "client")
			}

			d, err := deploy.NewFromConfig(cmd.Context(), deployCfg, global.Logger)
			if err != nil {
				return err
			}
			summary, err := d.Deploy(cmd.Context(), dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  Uploaded %d files (%d bytes) in %s\n",
				summary.Files, summary.Bytes, summary.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to upload (default <build.output>/client)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket (default from pagekit.json)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix inside the bucket")

	return cmd
}
