package graph

import (
	"github.com/dusk-indust/labelgraph/internal/ltree"
)

// --- Models ---

// Label is a named taxonomy node. Its slug is the segment used in route paths.
type Label struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

// Relationship is a directed parent -> child edge between two labels.
type Relationship struct {
	ID       string `json:"id"`
	ParentID string `json:"parentId"`
	ChildID  string `json:"childId"`
}

// Route is a materialized root-to-node walk through the label graph,
// rendered as dot-joined slugs ("tech.backend.php").
type Route struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Depth int    `json:"depth"` // segment count - 1
}

// Segments returns the slugs that make up the route.
func (r Route) Segments() []string { return ltree.Segments(r.Path) }

// IsAncestorOf reports whether r is a strict ancestor of other.
func (r Route) IsAncestorOf(other Route) bool { return ltree.IsAncestor(r.Path, other.Path) }

// IsDescendantOf reports whether r is a strict descendant of other.
func (r Route) IsDescendantOf(other Route) bool { return ltree.IsDescendant(r.Path, other.Path) }

// Entity identifies an application object that routes are attached to.
type Entity struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Attachment links an arbitrary application entity to a route.
type Attachment struct {
	ID         string `json:"id"`
	RouteID    string `json:"routeId"`
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
}

// GraphStats summarizes a label graph dataset.
type GraphStats struct {
	LabelCount        int `json:"labelCount"`
	RelationshipCount int `json:"relationshipCount"`
	RouteCount        int `json:"routeCount"`
	AttachmentCount   int `json:"attachmentCount"`
}

// newRoute builds a route for path with its depth derived from the path.
func newRoute(id, path string) Route {
	return Route{ID: id, Path: path, Depth: ltree.Depth(path)}
}

func routeIDs(routes []Route) []string {
	ids := make([]string, len(routes))
	for i, r := range routes {
		ids[i] = r.ID
	}
	return ids
}

func routePaths(routes []Route) []string {
	paths := make([]string, len(routes))
	for i, r := range routes {
		paths[i] = r.Path
	}
	return paths
}
