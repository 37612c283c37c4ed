package graph

import (
	"context"
	"io"
	"sort"

	"github.com/dusk-indust/labelgraph/internal/query"
)

// Store is the persistence backend for labels, relationships, routes and
// attachments. Implementations: MemStore (testing, embedded use), SQLStore
// (SQLite, PostgreSQL, MySQL) and KuzuStore (embedded graph database).
//
// All access goes through transactions so that route regeneration and the
// attachment changes that accompany a deletion commit or roll back together.
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Driver identifies the backend for adapter selection.
	Driver() string
	// Adapter returns the query adapter matching the backend's capabilities.
	Adapter() query.Adapter

	// Update runs fn in one read-write transaction. Any error from fn rolls
	// back every change fn made.
	Update(ctx context.Context, fn func(tx Tx) error) error
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(tx Tx) error) error

	// FindRoutes returns the routes matching every filter, ordered by path.
	FindRoutes(ctx context.Context, filters ...query.Filter) ([]Route, error)
	// AllPaths lists every materialized path.
	AllPaths(ctx context.Context) ([]string, error)
}

// Tx is the set of operations available inside a transaction. Lookups that
// find nothing return (nil, nil).
type Tx interface {
	// Labels.
	AddLabel(ctx context.Context, label Label) error
	GetLabel(ctx context.Context, id string) (*Label, error)
	GetLabelBySlug(ctx context.Context, slug string) (*Label, error)
	Labels(ctx context.Context) ([]Label, error)
	// DeleteLabel removes the label and every relationship touching it.
	DeleteLabel(ctx context.Context, id string) error

	// Relationships, ordered by id.
	AddRelationship(ctx context.Context, rel Relationship) error
	GetRelationship(ctx context.Context, id string) (*Relationship, error)
	FindRelationship(ctx context.Context, parentID, childID string) (*Relationship, error)
	Relationships(ctx context.Context) ([]Relationship, error)
	DeleteRelationship(ctx context.Context, id string) error

	// Routes, ordered by path.
	Routes(ctx context.Context) ([]Route, error)
	GetRoute(ctx context.Context, path string) (*Route, error)
	FindRoutes(ctx context.Context, filters ...query.Filter) ([]Route, error)
	InsertRoutes(ctx context.Context, routes []Route) error
	// DeleteRoutes removes the routes and any attachments still on them.
	DeleteRoutes(ctx context.Context, ids []string) error

	// Attachments.
	AddAttachment(ctx context.Context, a Attachment) error
	AttachmentsOn(ctx context.Context, routeIDs []string) ([]Attachment, error)
	AttachmentsOf(ctx context.Context, entityType, entityID string) ([]Attachment, error)
	CountAttachments(ctx context.Context, routeIDs []string) (int, error)
	MoveAttachments(ctx context.Context, ids []string, routeID string) error
	DeleteAttachments(ctx context.Context, ids []string) error

	Stats(ctx context.Context) (*GraphStats, error)
}

// matchRoutes evaluates filters in-process for stores without a SQL engine.
func matchRoutes(routes []Route, filters []query.Filter) ([]Route, error) {
	for _, f := range filters {
		if f.IsNone() {
			return nil, nil
		}
		if f.Native() {
			return nil, query.ErrNativeFilter
		}
	}
	out := make([]Route, 0, len(routes))
	for _, r := range routes {
		if matchesAll(r.Path, filters) {
			out = append(out, r)
		}
	}
	return out, nil
}

func matchesAll(path string, filters []query.Filter) bool {
	for _, f := range filters {
		if f.Match != nil && !f.Match(path) {
			return false
		}
	}
	return true
}

func sortRoutes(routes []Route) {
	sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })
}

func sortLabels(labels []Label) {
	sort.Slice(labels, func(i, j int) bool { return labels[i].Slug < labels[j].Slug })
}

func sortRelationships(rels []Relationship) {
	sort.Slice(rels, func(i, j int) bool { return rels[i].ID < rels[j].ID })
}

// allPaths is the AllPaths implementation shared by every store.
func allPaths(ctx context.Context, s Store) ([]string, error) {
	var paths []string
	err := s.View(ctx, func(tx Tx) error {
		routes, err := tx.Routes(ctx)
		if err != nil {
			return err
		}
		paths = routePaths(routes)
		return nil
	})
	return paths, err
}

// findRoutes is the FindRoutes implementation shared by every store.
func findRoutes(ctx context.Context, s Store, filters []query.Filter) ([]Route, error) {
	var routes []Route
	err := s.View(ctx, func(tx Tx) error {
		var err error
		routes, err = tx.FindRoutes(ctx, filters...)
		return err
	})
	return routes, err
}

func sortAttachments(atts []Attachment) {
	sort.Slice(atts, func(i, j int) bool { return atts[i].ID < atts[j].ID })
}

func sortEntities(entities []Entity) {
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].Type != entities[j].Type {
			return entities[i].Type < entities[j].Type
		}
		return entities[i].ID < entities[j].ID
	})
}
