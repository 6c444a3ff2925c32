package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/examples/counter"
	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/pkg/render"
	"github.com/vango-dev/reactor/pkg/snapshot"
)

func snapshotCmd(g *globals) *cobra.Command {
	var (
		name   string
		dir    string
		bucket string
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render the counter app and store the HTML",
		Long: `Render the counter app and write the HTML to the snapshot store:
a local directory, or an S3 bucket when a bucket is configured.

Examples:
  reactor snapshot
  reactor snapshot --name=home.html --dir=out
  reactor snapshot --bucket=my-bucket`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.Snapshot.Dir = dir
			}
			if bucket != "" {
				cfg.Snapshot.Bucket = bucket
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			loc, err := snapshot.Save(cmd.Context(), newStore(cfg), name,
				counter.New(logger), render.WithLogger(logger))
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Snapshot written to %s", loc)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "index.html", "Snapshot name")
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket (default from config)")

	return cmd
}

func newStore(cfg *config.Config) snapshot.Store {
	s := cfg.Snapshot
	if s.UsesS3() {
		return snapshot.NewS3Store(snapshot.NewS3Client(s.Region, s.Endpoint), s.Bucket, s.Prefix)
	}
	return snapshot.NewFileStore(cfg.SnapshotPath())
}
