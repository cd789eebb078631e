package main

import (
	"fmt"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/pocket/pkg/core"
)

func newListCmd(a *app) *cobra.Command {
	var (
		query  string
		match  string
		asJSON bool
		state  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		Long: `List prints the collection in display order.
--query keeps notes whose title or body contains the text (any case);
--match keeps notes whose title matches a glob such as "work/*".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, err := a.open()
			if err != nil {
				return fmt.Errorf("initializing pocket: %w", err)
			}
			defer nb.Close()

			if state {
				out := map[string]any{nb.Store.ComponentType(): nb.Store.State()}
				if c, ok := nb.Storage.(introspection.Component); ok {
					if i, ok := nb.Storage.(introspection.Introspectable); ok {
						out[c.ComponentType()] = i.State()
					}
				}
				return encodeJSON(cmd.OutOrStdout(), out)
			}

			notes := nb.Store.Search(query)
			if match != "" {
				matched, err := nb.Store.Match(match)
				if err != nil {
					return err
				}
				notes = core.Filter(matched, query)
			}

			if asJSON {
				return encodeJSON(cmd.OutOrStdout(), notes)
			}
			if len(notes) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No notes found.")
				return nil
			}
			printNotes(cmd.OutOrStdout(), notes)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive text filter")
	cmd.Flags().StringVar(&match, "match", "", "glob filter on titles")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&state, "state", false, "print store and storage state as JSON")
	return cmd
}
