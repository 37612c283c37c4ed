package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/labelgraph/internal/graph"
)

func newRelationshipCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "relationship",
		Aliases: []string{"rel"},
		Short:   "Create, list and delete parent -> child relationships",
	}

	create := &cobra.Command{
		Use:   "create <parent> <child>",
		Short: "Add an edge and regenerate routes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := a.svc.CreateRelationship(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "created relationship %s -> %s (%s)\n", args[0], args[1], rel.ID)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List relationships",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rels, err := a.svc.Relationships(ctx)
			if err != nil {
				return err
			}
			if len(rels) == 0 {
				fmt.Fprintln(a.out, "No relationships found.")
				return nil
			}
			slugs, err := labelSlugs(ctx, a.svc)
			if err != nil {
				return err
			}
			for _, r := range rels {
				fmt.Fprintf(a.out, "  %s  %s -> %s\n", r.ID, slugs[r.ParentID], slugs[r.ChildID])
			}
			return nil
		},
	}

	var (
		del    deleteFlags
		dryRun bool
	)
	remove := &cobra.Command{
		Use:   "delete <parent> <child>",
		Short: "Remove an edge; attached routes it would orphan block a safe delete",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rel, err := a.svc.FindRelationship(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if dryRun {
				return printAffected(ctx, a, rel.ID)
			}
			opts, err := del.options()
			if err != nil {
				return err
			}
			res, err := a.svc.DeleteRelationship(ctx, rel.ID, opts)
			if err != nil {
				return err
			}
			printDeleteResult(a, "relationship "+args[0]+" -> "+args[1], res)
			return nil
		},
	}
	del.register(remove)
	remove.Flags().BoolVar(&dryRun, "dry-run", false, "show the routes that would be orphaned and stop")

	cmd.AddCommand(create, list, remove)
	return cmd
}

func printAffected(ctx context.Context, a *app, relID string) error {
	routes, err := a.svc.AffectedRoutes(ctx, relID)
	if err != nil {
		return err
	}
	n, err := a.svc.AffectedAttachmentCount(ctx, relID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d routes would be removed, %d attachments on them\n", len(routes), n)
	for _, r := range routes {
		fmt.Fprintf(a.out, "  %s\n", r.Path)
	}
	return nil
}

func labelSlugs(ctx context.Context, svc *graph.Service) (map[string]string, error) {
	labels, err := svc.Labels(ctx)
	if err != nil {
		return nil, err
	}
	slugs := make(map[string]string, len(labels))
	for _, l := range labels {
		slugs[l.ID] = l.Slug
	}
	return slugs, nil
}
