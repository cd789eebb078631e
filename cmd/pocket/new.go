package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/pocket/pkg/core"
)

func newNewCmd(a *app) *cobra.Command {
	var (
		body    string
		message string
	)

	cmd := &cobra.Command{
		Use:   "new [title]",
		Short: "Create a note",
		Long: `Create a note at the top of the collection.
Title and body are trimmed; a blank title becomes "Untitled".
Use --body - to read the body from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			body, err := readBody(body, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := core.CheckLimits(strings.TrimSpace(title), strings.TrimSpace(body)); err != nil {
				return err
			}

			nb, err := a.open()
			if err != nil {
				return fmt.Errorf("initializing pocket: %w", err)
			}
			defer nb.Close()

			n, err := nb.Store.Create(withReason(cmd.Context(), message), title, body)
			if err != nil {
				return fmt.Errorf("creating note: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note created: %s\n", n.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&body, "body", "b", "", "note body (- reads stdin)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message when versioned")
	return cmd
}
