package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/labelgraph/internal/graph"
)

func newAttachCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <path> <entity-type> <entity-id>",
		Short: "Link an entity to a route",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			att, err := a.svc.Attach(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "attached %s/%s to %s (%s)\n", att.EntityType, att.EntityID, args[0], att.ID)
			return nil
		},
	}
}

func newDetachCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detach <path> <entity-type> <entity-id>",
		Short: "Remove the link between an entity and a route",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.svc.Detach(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(a.out, "%s/%s was not attached to %s\n", args[1], args[2], args[0])
				return nil
			}
			fmt.Fprintf(a.out, "detached %s/%s from %s\n", args[1], args[2], args[0])
			return nil
		},
	}
}

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <entity-type> <entity-id> [path]...",
		Short: "Replace the routes an entity is attached to",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.svc.SyncRoutes(cmd.Context(), args[0], args[1], args[2:])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "synced %s/%s: %d attached, %d detached\n", args[0], args[1], res.Attached, res.Detached)
			return nil
		},
	}
}

func newEntitiesCmd(a *app) *cobra.Command {
	q := newRouteQuery()
	cmd := &cobra.Command{
		Use:   "entities",
		Short: "List entities attached to routes matching every given filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters, err := q.filters(cmd, a.svc.Adapter())
			if err != nil {
				return err
			}
			entities, err := a.svc.Entities(cmd.Context(), filters...)
			if err != nil {
				return err
			}
			if q.json {
				if entities == nil {
					entities = []graph.Entity{}
				}
				out, err := json.MarshalIndent(entities, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal JSON: %w", err)
				}
				_, err = a.out.Write(append(out, '\n'))
				return err
			}
			if len(entities) == 0 {
				fmt.Fprintln(a.out, "No entities found.")
				return nil
			}
			for _, e := range entities {
				fmt.Fprintf(a.out, "  %s/%s\n", e.Type, e.ID)
			}
			return nil
		},
	}
	q.register(cmd)
	return cmd
}
