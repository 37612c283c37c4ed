package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/labelgraph/internal/graph"
	"github.com/dusk-indust/labelgraph/internal/query"
)

func newRouteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Regenerate and query materialized routes",
	}

	regenerate := &cobra.Command{
		Use:   "regenerate",
		Short: "Rebuild the route set from the label graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.svc.Regenerate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "routes: %d total, %d inserted, %d deleted\n",
				res.Total, len(res.Inserted), len(res.Deleted))
			return nil
		},
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List every route ordered by path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			routes, err := a.svc.Routes(cmd.Context())
			if err != nil {
				return err
			}
			return printRoutes(a, routes, asJSON)
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	match := &cobra.Command{
		Use:   "match <pattern>",
		Short: "List routes matching a path pattern such as tech.* or **.php",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			routes, err := a.svc.Match(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printRoutes(a, routes, asJSON)
		},
	}
	match.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	migrate := &cobra.Command{
		Use:   "migrate <from> <to>",
		Short: "Move every attachment from one route to another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.svc.MigrateAttachments(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "moved %d attachments from %s to %s\n", n, args[0], args[1])
			return nil
		},
	}

	forEntity := &cobra.Command{
		Use:   "for <entity-type> <entity-id>",
		Short: "List the routes an entity is attached to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			routes, err := a.svc.RoutesFor(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printRoutes(a, routes, asJSON)
		},
	}

	attachments := &cobra.Command{
		Use:   "attachments <path>",
		Short: "List the entities attached to a route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			atts, err := a.svc.AttachmentsFor(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(atts) == 0 {
				fmt.Fprintln(a.out, "No attachments found.")
				return nil
			}
			for _, att := range atts {
				fmt.Fprintf(a.out, "  %s/%s\n", att.EntityType, att.EntityID)
			}
			return nil
		},
	}

	cmd.AddCommand(regenerate, list, match, newRouteQueryCmd(a), migrate, forEntity, attachments)
	return cmd
}

// routeQuery collects the filter flags of "route query".
type routeQuery struct {
	ancestorOf      string
	descendantOf    string
	childrenOf      string
	text            string
	like            string
	pattern         string
	depth           int
	minDepth        int
	maxDepth        int
	hasAncestorIn   []string
	hasDescendantIn []string
	json            bool
}

func newRouteQueryCmd(a *app) *cobra.Command {
	q := newRouteQuery()
	cmd := &cobra.Command{
		Use:   "query",
		Short: "List routes matching every given filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters, err := q.filters(cmd, a.svc.Adapter())
			if err != nil {
				return err
			}
			routes, err := a.svc.FindRoutes(cmd.Context(), filters...)
			if err != nil {
				return err
			}
			return printRoutes(a, routes, q.json)
		},
	}
	q.register(cmd)
	return cmd
}

func newRouteQuery() *routeQuery {
	return &routeQuery{depth: -1, minDepth: -1, maxDepth: -1}
}

func (q *routeQuery) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&q.ancestorOf, "ancestor-of", "", "strict ancestors of a path")
	f.StringVar(&q.descendantOf, "descendant-of", "", "strict descendants of a path")
	f.StringVar(&q.childrenOf, "children-of", "", "direct children of a path")
	f.StringVar(&q.text, "text", "", "boolean label pattern such as 'backend & !php'")
	f.StringVar(&q.like, "like", "", "SQL LIKE pattern on the path, ignoring case")
	f.StringVar(&q.pattern, "match", "", "path pattern such as tech.*")
	f.IntVar(&q.depth, "depth", -1, "exact depth (root routes are 0)")
	f.IntVar(&q.minDepth, "min-depth", -1, "minimum depth")
	f.IntVar(&q.maxDepth, "max-depth", -1, "maximum depth")
	f.StringSliceVar(&q.hasAncestorIn, "has-ancestor-in", nil, "routes under any of these paths (ltree backends only)")
	f.StringSliceVar(&q.hasDescendantIn, "has-descendant-in", nil, "routes above any of these paths (ltree backends only)")
	f.BoolVar(&q.json, "json", false, "print JSON")
}

func (q *routeQuery) filters(cmd *cobra.Command, ad query.Adapter) ([]query.Filter, error) {
	ctx := cmd.Context()
	var out []query.Filter
	if q.ancestorOf != "" {
		out = append(out, ad.AncestorOf(ctx, q.ancestorOf))
	}
	if q.descendantOf != "" {
		out = append(out, ad.DescendantOf(ctx, q.descendantOf))
	}
	if q.childrenOf != "" {
		out = append(out, ad.DescendantOf(ctx, q.childrenOf), ad.Nlevel(len(graph.Route{Path: q.childrenOf}.Segments())+1))
	}
	if q.text != "" {
		f, err := ad.PathMatchesText(ctx, q.text)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if q.like != "" {
		out = append(out, ad.PathLike(q.like))
	}
	if q.pattern != "" {
		f, err := ad.PathMatches(ctx, q.pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	switch {
	case q.depth >= 0:
		out = append(out, ad.Depth(q.depth))
	case q.minDepth >= 0 && q.maxDepth >= 0:
		out = append(out, ad.DepthBetween(q.minDepth, q.maxDepth))
	case q.minDepth >= 0:
		out = append(out, ad.DepthAtLeast(q.minDepth))
	case q.maxDepth >= 0:
		out = append(out, ad.DepthAtMost(q.maxDepth))
	}
	if len(q.hasAncestorIn) > 0 {
		f, err := ad.PathHasAncestorIn(ctx, q.hasAncestorIn)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if len(q.hasDescendantIn) > 0 {
		f, err := ad.PathHasDescendantIn(ctx, q.hasDescendantIn)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func printRoutes(a *app, routes []graph.Route, asJSON bool) error {
	if asJSON {
		if routes == nil {
			routes = []graph.Route{}
		}
		out, err := json.MarshalIndent(routes, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		_, err = a.out.Write(append(out, '\n'))
		return err
	}
	if len(routes) == 0 {
		fmt.Fprintln(a.out, "No routes found.")
		return nil
	}
	for _, r := range routes {
		fmt.Fprintf(a.out, "  %d  %s\n", r.Depth, r.Path)
	}
	return nil
}
