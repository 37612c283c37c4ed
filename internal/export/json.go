package export

import (
	"context"
	"fmt"
	"time"

	"github.com/dusk-indust/labelgraph/internal/graph"
)

// TaxonomyExport is the top-level JSON export structure.
type TaxonomyExport struct {
	Driver        string               `json:"driver"`
	ExportedAt    string               `json:"exportedAt"`
	Labels        []graph.Label        `json:"labels"`
	Relationships []RelationshipExport `json:"relationships"`
	Routes        []RouteExport        `json:"routes"`
}

// RelationshipExport is an edge with its endpoints resolved to slugs.
type RelationshipExport struct {
	ID     string `json:"id"`
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// RouteExport describes one materialized route and what is attached to it.
type RouteExport struct {
	Path        string      `json:"path"`
	Depth       int         `json:"depth"`
	Attachments []EntityRef `json:"attachments,omitempty"`
}

// EntityRef identifies an attached entity.
type EntityRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ExportTaxonomy reads the whole dataset in one view transaction.
func ExportTaxonomy(ctx context.Context, store graph.Store) (*TaxonomyExport, error) {
	export := &TaxonomyExport{
		Driver:     store.Driver(),
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}

	err := store.View(ctx, func(tx graph.Tx) error {
		labels, err := tx.Labels(ctx)
		if err != nil {
			return fmt.Errorf("get labels: %w", err)
		}
		export.Labels = labels

		slugs := make(map[string]string, len(labels))
		for _, l := range labels {
			slugs[l.ID] = l.Slug
		}

		rels, err := tx.Relationships(ctx)
		if err != nil {
			return fmt.Errorf("get relationships: %w", err)
		}
		for _, r := range rels {
			export.Relationships = append(export.Relationships, RelationshipExport{
				ID:     r.ID,
				Parent: slugs[r.ParentID],
				Child:  slugs[r.ChildID],
			})
		}

		routes, err := tx.Routes(ctx)
		if err != nil {
			return fmt.Errorf("get routes: %w", err)
		}
		if len(routes) == 0 {
			return nil
		}
		ids := make([]string, len(routes))
		for i, r := range routes {
			ids[i] = r.ID
		}
		atts, err := tx.AttachmentsOn(ctx, ids)
		if err != nil {
			return fmt.Errorf("get attachments: %w", err)
		}
		byRoute := make(map[string][]EntityRef)
		for _, a := range atts {
			byRoute[a.RouteID] = append(byRoute[a.RouteID], EntityRef{Type: a.EntityType, ID: a.EntityID})
		}
		for _, r := range routes {
			export.Routes = append(export.Routes, RouteExport{
				Path:        r.Path,
				Depth:       r.Depth,
				Attachments: byRoute[r.ID],
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return export, nil
}
