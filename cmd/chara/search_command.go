package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"chara/internal/gallery"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "search <image-file>",
		Short: "Find cataloged images similar to a local image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read query image: %w", err)
			}

			svc, closeServices, err := ctx.openServices()
			if err != nil {
				return err
			}
			defer closeServices()

			matches, err := svc.gallery.ReverseSearch(cmd.Context(), data, topK)
			if errors.Is(err, gallery.ErrUndecodable) {
				return fmt.Errorf("%s is not a readable image", args[0])
			}
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No similar images found.")
				return nil
			}

			rows := make([][]string, 0, len(matches))
			for _, match := range matches {
				rows = append(rows, []string{
					strconv.FormatInt(match.Item.ID, 10),
					match.Item.Subject,
					match.Item.Group,
					fmt.Sprintf("%.1f%%", match.Similarity*100),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Subject", "Group", "Similarity"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&topK, "top-k", 0, "Maximum matches to return (0 uses the configured default)")

	return cmd
}
