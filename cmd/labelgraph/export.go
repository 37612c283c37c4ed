package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/labelgraph/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print labels, relationships, routes and attachments as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := export.ExportTaxonomy(cmd.Context(), a.store)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			out, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal JSON: %w", err)
			}

			_, err = a.out.Write(append(out, '\n'))
			return err
		},
	}
}

func newDiagramCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diagram",
		Short: "Print the label graph as a Mermaid diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mermaid, err := export.GenerateMermaid(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, mermaid)
			return nil
		},
	}
}
