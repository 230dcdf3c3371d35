package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show catalog size and feed checkpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeServices, err := ctx.openServices()
			if err != nil {
				return err
			}
			defer closeServices()

			count, err := svc.gallery.Count(cmd.Context())
			if err != nil {
				return err
			}
			checkpoints, err := svc.store.Checkpoints(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Catalog:  %s\n", svc.cfg.DatabasePath())
			fmt.Fprintf(out, "Items:    %d\n", count)
			fmt.Fprintf(out, "Scraper:  %v\n", svc.cfg.Scraper.Enabled)

			if len(checkpoints) == 0 {
				fmt.Fprintln(out, "No feed checkpoints recorded.")
				return nil
			}
			rows := make([][]string, 0, len(checkpoints))
			for _, cp := range checkpoints {
				rows = append(rows, []string{
					cp.FeedKey,
					strconv.FormatInt(cp.LastProcessedID, 10),
					cp.UpdatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Feed", "Last Message", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	return cmd
}
