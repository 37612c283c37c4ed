package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/labelgraph/internal/status"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sum, err := status.Summarize(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			printSummary(a, sum)
			return nil
		},
	}
}

func printSummary(a *app, sum *status.Summary) {
	fmt.Fprintf(a.out, "Driver: %s\n\n", sum.Driver)
	fmt.Fprintf(a.out, "  Labels:        %d\n", sum.Stats.LabelCount)
	fmt.Fprintf(a.out, "  Relationships: %d\n", sum.Stats.RelationshipCount)
	fmt.Fprintf(a.out, "  Routes:        %d\n", sum.Stats.RouteCount)
	fmt.Fprintf(a.out, "  Attachments:   %d\n", sum.Stats.AttachmentCount)

	if sum.Stats.LabelCount == 0 {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "No labels found.")
		fmt.Fprintln(a.out, "Run 'labelgraph label create <name>' to start a taxonomy.")
		return
	}

	fmt.Fprintf(a.out, "\n  Roots:  %s\n", strings.Join(sum.Roots, ", "))
	fmt.Fprintf(a.out, "  Leaves: %s\n", strings.Join(sum.Leaves, ", "))

	fmt.Fprintln(a.out, "\n  Routes by depth:")
	for _, d := range sum.Depths {
		fmt.Fprintf(a.out, "    %2d  %d\n", d.Depth, d.Routes)
	}

	if len(sum.Used) > 0 {
		fmt.Fprintln(a.out, "\n  Routes in use:")
		for _, u := range sum.Used {
			fmt.Fprintf(a.out, "    %-32s %d\n", u.Path, u.Attachments)
		}
	}
}
