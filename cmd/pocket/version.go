package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/pocket"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of pocket",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pocket version %s\n", pocket.Version)
		},
	}
}
