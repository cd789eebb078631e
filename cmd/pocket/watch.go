package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	source "github.com/aretw0/pocket/pkg/adapters/lifecycle"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print collection events until interrupted",
		Long: `Watch prints one line per event. With the fs backend, edits made by
other processes to the notes file are reported as RELOAD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runWatch(ctx, a, cmd)
		},
	}
}

func runWatch(ctx context.Context, a *app, cmd *cobra.Command) error {
	nb, err := a.open()
	if err != nil {
		return fmt.Errorf("initializing pocket: %w", err)
	}
	defer nb.Close()

	events, err := nb.Store.Watch(ctx)
	if err != nil {
		return err
	}
	src := source.NewSource(events)
	if err := src.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", nb.Path)
	for e := range src.Events() {
		fmt.Fprintln(cmd.OutOrStdout(), e.String())
	}
	return nil
}
