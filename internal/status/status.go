package status

import (
	"context"
	"fmt"
	"sort"

	"github.com/dusk-indust/labelgraph/internal/graph"
)

// DepthCount is the number of routes at one depth.
type DepthCount struct {
	Depth  int
	Routes int
}

// RouteUsage is a route that carries attachments.
type RouteUsage struct {
	Path        string
	Attachments int
}

// Summary describes the shape of one dataset.
type Summary struct {
	Driver string
	Stats  graph.GraphStats
	Roots  []string // slugs of labels with no parent
	Leaves []string // slugs of labels with no child
	Depths []DepthCount
	Used   []RouteUsage // ordered by path
}

// MaxDepth returns the deepest route depth, or -1 when there are no routes.
func (s *Summary) MaxDepth() int {
	if len(s.Depths) == 0 {
		return -1
	}
	return s.Depths[len(s.Depths)-1].Depth
}

// Summarize reads the dataset in one view transaction.
func Summarize(ctx context.Context, store graph.Store) (*Summary, error) {
	sum := &Summary{Driver: store.Driver()}
	err := store.View(ctx, func(tx graph.Tx) error {
		stats, err := tx.Stats(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		sum.Stats = *stats

		labels, err := tx.Labels(ctx)
		if err != nil {
			return fmt.Errorf("labels: %w", err)
		}
		rels, err := tx.Relationships(ctx)
		if err != nil {
			return fmt.Errorf("relationships: %w", err)
		}
		hasParent := make(map[string]bool)
		hasChild := make(map[string]bool)
		for _, r := range rels {
			hasParent[r.ChildID] = true
			hasChild[r.ParentID] = true
		}
		for _, l := range labels {
			if !hasParent[l.ID] {
				sum.Roots = append(sum.Roots, l.Slug)
			}
			if !hasChild[l.ID] {
				sum.Leaves = append(sum.Leaves, l.Slug)
			}
		}

		routes, err := tx.Routes(ctx)
		if err != nil {
			return fmt.Errorf("routes: %w", err)
		}
		sum.Depths = histogram(routes)

		if len(routes) == 0 {
			return nil
		}
		ids := make([]string, len(routes))
		for i, r := range routes {
			ids[i] = r.ID
		}
		atts, err := tx.AttachmentsOn(ctx, ids)
		if err != nil {
			return fmt.Errorf("attachments: %w", err)
		}
		perRoute := make(map[string]int)
		for _, a := range atts {
			perRoute[a.RouteID]++
		}
		for _, r := range routes {
			if n := perRoute[r.ID]; n > 0 {
				sum.Used = append(sum.Used, RouteUsage{Path: r.Path, Attachments: n})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

func histogram(routes []graph.Route) []DepthCount {
	counts := make(map[int]int)
	for _, r := range routes {
		counts[r.Depth]++
	}
	out := make([]DepthCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, DepthCount{Depth: d, Routes: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Depth < out[j].Depth })
	return out
}
