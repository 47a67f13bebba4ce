package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"eco-connect/verification-backend/internal/tasks"
)

func newTasksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the supported task types and their point values",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := tasks.NewRegistry()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tLABEL\tPOINTS\tREQUIRED ENTITIES")
			for _, d := range registry.All() {
				fmt.Fprintf(w, "%s\t%s\t%d\t%v\n", d.Type, d.Label, d.Points, d.RequiredEntities)
			}
			return w.Flush()
		},
	}
}
