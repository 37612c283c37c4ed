package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RegenerateResult reports what one regeneration changed.
type RegenerateResult struct {
	Inserted []Route       `json:"inserted"`
	Deleted  []Route       `json:"deleted"`
	Total    int           `json:"total"` // routes materialized afterwards
	Took     time.Duration `json:"-"`
}

// Generator derives the materialized route set from the relationship graph.
// It is a pure function of the label and edge sets visible in the
// transaction it runs in; callers serialize regenerations per dataset.
type Generator struct {
	enum   EnumerateOptions
	newID  func() string
	logger *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithEnumerateOptions bounds path enumeration.
func WithEnumerateOptions(opts EnumerateOptions) GeneratorOption {
	return func(g *Generator) { g.enum = opts }
}

// WithRouteIDs overrides route id generation.
func WithRouteIDs(fn func() string) GeneratorOption {
	return func(g *Generator) { g.newID = fn }
}

// WithGeneratorLogger sets the logger for regeneration records.
func WithGeneratorLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator returns a Generator with time-ordered route ids and a discard
// logger unless overridden.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		newID:  newID,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Desired computes the full path set for the graph visible in tx.
func (g *Generator) Desired(ctx context.Context, tx Tx) ([]string, error) {
	labels, adj, err := g.load(ctx, tx)
	if err != nil {
		return nil, err
	}
	return EnumeratePaths(ctx, adj, labels, g.enum)
}

// RegenerateAll recomputes every path, deletes routes that no longer exist
// and inserts new ones. Run it inside Store.Update so the route set is never
// observed half-applied.
func (g *Generator) RegenerateAll(ctx context.Context, tx Tx) (*RegenerateResult, error) {
	start := time.Now()
	desired, err := g.Desired(ctx, tx)
	if err != nil {
		return nil, err
	}
	existing, err := tx.Routes(ctx)
	if err != nil {
		return nil, fmt.Errorf("generator: load routes: %w", err)
	}

	diff := DiffRoutes(existing, desired)
	res := &RegenerateResult{Deleted: diff.Delete, Total: len(desired)}
	if len(diff.Delete) > 0 {
		if err := tx.DeleteRoutes(ctx, routeIDs(diff.Delete)); err != nil {
			return nil, fmt.Errorf("generator: delete routes: %w", err)
		}
	}
	if len(diff.Insert) > 0 {
		res.Inserted = make([]Route, len(diff.Insert))
		for i, p := range diff.Insert {
			res.Inserted[i] = newRoute(g.newID(), p)
		}
		if err := tx.InsertRoutes(ctx, res.Inserted); err != nil {
			return nil, fmt.Errorf("generator: insert routes: %w", err)
		}
	}
	res.Took = time.Since(start)

	g.logger.Debug("routes regenerated",
		"inserted", len(res.Inserted),
		"deleted", len(res.Deleted),
		"total", res.Total,
		"took", res.Took)
	return res, nil
}

// AffectedByRemoval returns the materialized routes that would disappear if
// rel were deleted.
func (g *Generator) AffectedByRemoval(ctx context.Context, tx Tx, rel Relationship) ([]Route, error) {
	return g.affected(ctx, tx, func(adj Adjacency, labels []Label) (Adjacency, []Label) {
		return adj.Without(rel.ParentID, rel.ChildID), labels
	})
}

// AffectedByLabelRemoval returns the materialized routes that would disappear
// if the label and its relationships were deleted.
func (g *Generator) AffectedByLabelRemoval(ctx context.Context, tx Tx, labelID string) ([]Route, error) {
	return g.affected(ctx, tx, func(adj Adjacency, labels []Label) (Adjacency, []Label) {
		kept := make([]Label, 0, len(labels))
		for _, l := range labels {
			if l.ID != labelID {
				kept = append(kept, l)
			}
		}
		return adj.WithoutLabel(labelID), kept
	})
}

func (g *Generator) affected(ctx context.Context, tx Tx, hypothetical func(Adjacency, []Label) (Adjacency, []Label)) ([]Route, error) {
	labels, adj, err := g.load(ctx, tx)
	if err != nil {
		return nil, err
	}
	adj, labels = hypothetical(adj, labels)
	paths, err := EnumeratePaths(ctx, adj, labels, g.enum)
	if err != nil {
		return nil, err
	}
	existing, err := tx.Routes(ctx)
	if err != nil {
		return nil, fmt.Errorf("generator: load routes: %w", err)
	}
	return Orphaned(existing, paths), nil
}

func (g *Generator) load(ctx context.Context, tx Tx) ([]Label, Adjacency, error) {
	labels, err := tx.Labels(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("generator: load labels: %w", err)
	}
	rels, err := tx.Relationships(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("generator: load relationships: %w", err)
	}
	return labels, BuildAdjacency(rels), nil
}

// newID returns a time-ordered UUID.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
