package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/pocket/internal/tui"
	"github.com/aretw0/pocket/pkg/core"
)

func newUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive two-pane view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, err := a.open()
			if err != nil {
				return fmt.Errorf("initializing pocket: %w", err)
			}
			defer nb.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			events, err := nb.Store.Watch(ctx)
			if err != nil {
				return err
			}
			model := tui.New(ctx, core.NewSession(nb.Store), nb.Prefs, tui.WithEvents(events))
			return tui.Run(ctx, model)
		},
	}
}
