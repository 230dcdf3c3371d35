package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"chara/internal/gallery"
)

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a cataloged image and its stored bytes",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			svc, closeServices, err := ctx.openServices()
			if err != nil {
				return err
			}
			defer closeServices()

			if err := svc.gallery.Delete(cmd.Context(), id); err != nil {
				if errors.Is(err, gallery.ErrNotFound) {
					return fmt.Errorf("item %d not found", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted item %d\n", id)
			return nil
		},
	}
	return cmd
}
