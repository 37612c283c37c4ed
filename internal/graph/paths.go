package graph

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/labelgraph/internal/ltree"
)

// DefaultMaxDepth bounds the number of segments in an enumerated path.
const DefaultMaxDepth = 64

// Adjacency maps a parent label id to its direct child ids, in edge order.
type Adjacency map[string][]string

// BuildAdjacency builds the parent -> children mapping from the full edge set.
func BuildAdjacency(rels []Relationship) Adjacency {
	adj := make(Adjacency)
	for _, r := range rels {
		adj[r.ParentID] = append(adj[r.ParentID], r.ChildID)
	}
	return adj
}

// Without returns a copy of adj with the parent -> child edge removed.
func (adj Adjacency) Without(parentID, childID string) Adjacency {
	out := make(Adjacency, len(adj))
	for p, children := range adj {
		kept := make([]string, 0, len(children))
		for _, c := range children {
			if p == parentID && c == childID {
				continue
			}
			kept = append(kept, c)
		}
		out[p] = kept
	}
	return out
}

// WithoutLabel returns a copy of adj with every edge touching id removed.
func (adj Adjacency) WithoutLabel(id string) Adjacency {
	out := make(Adjacency, len(adj))
	for p, children := range adj {
		if p == id {
			continue
		}
		kept := make([]string, 0, len(children))
		for _, c := range children {
			if c != id {
				kept = append(kept, c)
			}
		}
		out[p] = kept
	}
	return out
}

// Reachable reports whether to can be reached from from by following edges.
// A node reaches itself.
func (adj Adjacency) Reachable(from, to string) bool {
	seen := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == to {
			return true
		}
		for _, c := range adj[cur] {
			if !seen[c] {
				seen[c] = true
				stack = append(stack, c)
			}
		}
	}
	return false
}

// EnumerateOptions bounds path enumeration.
type EnumerateOptions struct {
	// MaxDepth is the maximum number of segments in one path.
	// Zero means DefaultMaxDepth.
	MaxDepth int
	// Workers limits how many roots are walked concurrently.
	// Zero means GOMAXPROCS.
	Workers int
}

// EnumeratePaths walks the graph depth-first from every label and returns
// each dot-joined slug path it visits, the 1-segment root path included.
// A walk never revisits a label already on its own ancestor chain.
//
// Roots are walked in parallel; the result is deduplicated and ordered by
// label order, then by walk order, so equal inputs give equal output.
func EnumeratePaths(ctx context.Context, adj Adjacency, labels []Label, opts EnumerateOptions) ([]string, error) {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	slugs := make(map[string]string, len(labels))
	for _, l := range labels {
		slugs[l.ID] = l.Slug
	}

	perRoot := make([][]string, len(labels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, l := range labels {
		g.Go(func() error {
			w := walker{adj: adj, slugs: slugs, maxDepth: maxDepth, onPath: map[string]bool{}}
			if err := w.walk(gctx, l.ID, nil); err != nil {
				return err
			}
			perRoot[i] = w.paths
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []string
	for _, paths := range perRoot {
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out, nil
}

// walker is the depth-first state for one root.
type walker struct {
	adj      Adjacency
	slugs    map[string]string
	maxDepth int
	onPath   map[string]bool
	paths    []string
}

func (w *walker) walk(ctx context.Context, id string, prefix []string) error {
	slug, ok := w.slugs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLabel, id)
	}
	if len(prefix) >= w.maxDepth {
		return fmt.Errorf("%w: %s.%s exceeds %d segments", ErrPathTooDeep, ltree.Join(prefix...), slug, w.maxDepth)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	segs := append(prefix[:len(prefix):len(prefix)], slug)
	w.paths = append(w.paths, ltree.Join(segs...))

	w.onPath[id] = true
	defer delete(w.onPath, id)
	for _, child := range w.adj[id] {
		if w.onPath[child] {
			continue
		}
		if err := w.walk(ctx, child, segs); err != nil {
			return err
		}
	}
	return nil
}

// RouteDiff is the reconciliation between materialized routes and the
// desired path set.
type RouteDiff struct {
	Insert []string // paths to materialize
	Delete []Route  // routes absent from the desired set
}

// Empty reports whether the diff changes nothing.
func (d RouteDiff) Empty() bool { return len(d.Insert) == 0 && len(d.Delete) == 0 }

// DiffRoutes compares the materialized routes against the desired paths.
func DiffRoutes(existing []Route, desired []string) RouteDiff {
	want := toSet(desired)
	have := make(map[string]bool, len(existing))
	var d RouteDiff
	for _, r := range existing {
		have[r.Path] = true
		if !want[r.Path] {
			d.Delete = append(d.Delete, r)
		}
	}
	added := make(map[string]bool)
	for _, p := range desired {
		if !have[p] && !added[p] {
			added[p] = true
			d.Insert = append(d.Insert, p)
		}
	}
	return d
}

// Orphaned returns the routes whose path is absent from the hypothetical set.
func Orphaned(existing []Route, hypothetical []string) []Route {
	return DiffRoutes(existing, hypothetical).Delete
}
