package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chara/internal/gallery"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var (
		subject string
		group   string
	)

	cmd := &cobra.Command{
		Use:   "add <image-file>",
		Short: "Add a local image to the catalog",
		Long: "Add stores the image without duplicate rejection; it is the curator\n" +
			"override for images the scraper would have rejected as near-duplicates.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			svc, closeServices, err := ctx.openServices()
			if err != nil {
				return err
			}
			defer closeServices()

			item, err := svc.gallery.Upload(cmd.Context(), subject, group, data)
			if errors.Is(err, gallery.ErrUndecodable) {
				return fmt.Errorf("%s is not a readable image", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added item %d (%s / %s)\n", item.ID, item.Subject, item.Group)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Subject name (defaults to Unknown)")
	cmd.Flags().StringVar(&group, "group", "", "Group or series name (defaults to Unknown)")

	return cmd
}
