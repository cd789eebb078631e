package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/pocket/pkg/core"
)

func newShowCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, err := a.open()
			if err != nil {
				return fmt.Errorf("initializing pocket: %w", err)
			}
			defer nb.Close()

			n, ok := nb.Store.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", core.ErrNotFound, args[0])
			}
			if asJSON {
				return encodeJSON(cmd.OutOrStdout(), n)
			}
			printNote(cmd.OutOrStdout(), n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}
