package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"chara/internal/catalog"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		subject string
		group   string
		search  string
		limit   int
		offset  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cataloged images, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeServices, err := ctx.openServices()
			if err != nil {
				return err
			}
			defer closeServices()

			items, err := svc.gallery.List(cmd.Context(), catalog.ListOptions{
				Subject: subject,
				Group:   group,
				Search:  search,
				Limit:   limit,
				Offset:  offset,
			})
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No items found.")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				source := "-"
				if item.SourceMessageID != nil {
					source = strconv.FormatInt(*item.SourceMessageID, 10)
				}
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					item.Subject,
					item.Group,
					item.CreatedAt.Local().Format(time.DateTime),
					source,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Subject", "Group", "Added", "Message"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Filter by subject")
	cmd.Flags().StringVar(&group, "group", "", "Filter by group")
	cmd.Flags().StringVar(&search, "search", "", "Substring match on subject or group")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")

	return cmd
}
