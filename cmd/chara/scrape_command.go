package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chara/internal/feed"
	"chara/internal/ingest"
	"chara/internal/logging"
)

func newScrapeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one ingestion batch against the configured feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeServices, err := ctx.openServices()
			if err != nil {
				return err
			}
			defer closeServices()

			if !svc.cfg.Scraper.Enabled {
				return errNotConfigured
			}

			source := feed.NewHTTPSource(svc.cfg)
			pipeline := ingest.NewPipeline(svc.cfg, svc.store, svc.images, source, svc.hasher, logging.NewNop())

			summary, err := pipeline.RunBatch(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Listed:     %d\n", summary.Listed)
			fmt.Fprintf(out, "Accepted:   %d\n", summary.Accepted)
			fmt.Fprintf(out, "Duplicates: %d\n", summary.Duplicates)
			fmt.Fprintf(out, "No hash:    %d\n", summary.NoHash)
			fmt.Fprintf(out, "Errors:     %d\n", summary.Errors)
			fmt.Fprintf(out, "Skipped:    %d\n", summary.Skipped)
			fmt.Fprintf(out, "Checkpoint: %d\n", summary.Checkpoint)
			return nil
		},
	}
	return cmd
}
