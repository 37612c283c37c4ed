package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/labelgraph/internal/graph"
)

func newLabelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Create, list and delete labels",
	}

	var in graph.LabelInput
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a label and its root route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			label, err := a.svc.CreateLabel(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "created label %s (%s)\n", label.Slug, label.ID)
			return nil
		},
	}
	create.Flags().StringVar(&in.Slug, "slug", "", "slug (derived from the name when empty)")
	create.Flags().StringVar(&in.Color, "color", "", "display color")
	create.Flags().StringVar(&in.Icon, "icon", "", "display icon")
	create.Flags().StringVar(&in.Description, "description", "", "description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List labels ordered by slug",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			labels, err := a.svc.Labels(cmd.Context())
			if err != nil {
				return err
			}
			if len(labels) == 0 {
				fmt.Fprintln(a.out, "No labels found.")
				return nil
			}
			for _, l := range labels {
				fmt.Fprintf(a.out, "  %-24s %s\n", l.Slug, l.Name)
			}
			return nil
		},
	}

	var del deleteFlags
	remove := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a label and its relationships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := del.options()
			if err != nil {
				return err
			}
			res, err := a.svc.DeleteLabel(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			printDeleteResult(a, "label "+args[0], res)
			return nil
		},
	}
	del.register(remove)

	cmd.AddCommand(create, list, remove)
	return cmd
}

// deleteFlags selects a DeleteMode from --mode and --replace.
type deleteFlags struct {
	mode    string
	replace string
}

func (d *deleteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.mode, "mode", "safe", "attachment handling: safe, cascade, replace, force")
	cmd.Flags().StringVar(&d.replace, "replace", "", "target route for replace mode (implies --mode replace)")
}

func (d *deleteFlags) options() (graph.DeleteOptions, error) {
	if d.replace != "" {
		return graph.Replace(d.replace), nil
	}
	mode, err := graph.ParseDeleteMode(d.mode)
	if err != nil {
		return graph.DeleteOptions{}, err
	}
	if mode == graph.DeleteReplace {
		return graph.DeleteOptions{}, fmt.Errorf("--mode replace needs --replace <path>")
	}
	return graph.DeleteOptions{Mode: mode}, nil
}

func printDeleteResult(a *app, what string, res *graph.DeleteResult) {
	fmt.Fprintf(a.out, "deleted %s (%s)\n", what, res.Mode)
	fmt.Fprintf(a.out, "  routes removed:      %d\n", len(res.Regenerated.Deleted))
	fmt.Fprintf(a.out, "  routes added:        %d\n", len(res.Regenerated.Inserted))
	if res.AttachmentsDeleted > 0 {
		fmt.Fprintf(a.out, "  attachments deleted: %d\n", res.AttachmentsDeleted)
	}
	if res.AttachmentsMoved > 0 {
		fmt.Fprintf(a.out, "  attachments moved:   %d\n", res.AttachmentsMoved)
	}
}
