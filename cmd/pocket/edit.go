package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/pocket/pkg/core"
)

func newEditCmd(a *app) *cobra.Command {
	var (
		title   string
		body    string
		message string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace the title and/or body of a note",
		Long: `Edit stores the given values as they are (no trimming).
Fields without a flag keep their current value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("body") {
				return fmt.Errorf("nothing to change: pass --title and/or --body")
			}

			nb, err := a.open()
			if err != nil {
				return fmt.Errorf("initializing pocket: %w", err)
			}
			defer nb.Close()

			current, ok := nb.Store.Get(id)
			if !ok {
				return fmt.Errorf("%w: %s", core.ErrNotFound, id)
			}

			newTitle, newBody := current.Title, current.Body
			if cmd.Flags().Changed("title") {
				newTitle = title
			}
			if cmd.Flags().Changed("body") {
				if newBody, err = readBody(body, cmd.InOrStdin()); err != nil {
					return err
				}
			}
			if err := core.CheckLimits(newTitle, newBody); err != nil {
				return err
			}

			if _, err := nb.Store.Update(withReason(cmd.Context(), message), id, newTitle, newBody); err != nil {
				return fmt.Errorf("updating note: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note updated: %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&body, "body", "b", "", "new body (- reads stdin)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message when versioned")
	return cmd
}
