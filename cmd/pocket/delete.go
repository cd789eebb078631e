package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/pocket/pkg/core"
)

func newDeleteCmd(a *app) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, err := a.open()
			if err != nil {
				return fmt.Errorf("initializing pocket: %w", err)
			}
			defer nb.Close()

			ctx := withReason(cmd.Context(), message)
			for _, id := range args {
				if _, ok := nb.Store.Get(id); !ok {
					return fmt.Errorf("%w: %s", core.ErrNotFound, id)
				}
			}
			for _, id := range args {
				if _, err := nb.Store.Delete(ctx, id); err != nil {
					return fmt.Errorf("deleting note: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note deleted: %s\n", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message when versioned")
	return cmd
}
