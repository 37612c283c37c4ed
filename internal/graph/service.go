package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dusk-indust/labelgraph/internal/lquery"
	"github.com/dusk-indust/labelgraph/internal/ltree"
	"github.com/dusk-indust/labelgraph/internal/metrics"
	"github.com/dusk-indust/labelgraph/internal/query"
)

// Service is the entry point for every graph mutation and route query.
// Mutations are serialized so at most one regeneration is in flight per
// Service, and each runs in a single store transaction together with the
// regeneration it triggers.
type Service struct {
	store   Store
	gen     *Generator
	logger  *slog.Logger
	metrics *metrics.Metrics
	newID   func() string
	enum    EnumerateOptions

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithMaxDepth bounds the number of segments in a generated path.
func WithMaxDepth(n int) Option {
	return func(s *Service) { s.enum.MaxDepth = n }
}

// WithWorkers limits concurrent root walks during regeneration.
func WithWorkers(n int) Option {
	return func(s *Service) { s.enum.Workers = n }
}

// WithIDs overrides identifier generation for every entity.
func WithIDs(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService wraps store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		newID:  newID,
	}
	for _, o := range opts {
		o(s)
	}
	s.gen = NewGenerator(
		WithEnumerateOptions(s.enum),
		WithRouteIDs(s.newID),
		WithGeneratorLogger(s.logger),
	)
	return s
}

// Store returns the underlying store.
func (s *Service) Store() Store { return s.store }

// Adapter returns the query adapter of the underlying store.
func (s *Service) Adapter() query.Adapter { return s.store.Adapter() }

// ---------- Labels ----------

// LabelInput describes a label to create. Slug is derived from Name when empty.
type LabelInput struct {
	Name        string
	Slug        string
	Color       string
	Icon        string
	Description string
}

// CreateLabel adds a label and materializes its root route.
func (s *Service) CreateLabel(ctx context.Context, in LabelInput) (*Label, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.New("graph: label name is required")
	}
	slug := in.Slug
	if slug == "" {
		slug = Slugify(name)
	}
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}
	label := Label{
		ID:          s.newID(),
		Name:        name,
		Slug:        slug,
		Color:       in.Color,
		Icon:        in.Icon,
		Description: in.Description,
	}

	regen, err := s.mutate(ctx, func(tx Tx) (*RegenerateResult, error) {
		existing, err := tx.GetLabelBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSlug, slug)
		}
		if err := tx.AddLabel(ctx, label); err != nil {
			return nil, err
		}
		return s.gen.RegenerateAll(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("label created", "label", slug, "inserted", len(regen.Inserted))
	return &label, nil
}

// Label returns the label with the given slug.
func (s *Service) Label(ctx context.Context, slug string) (*Label, error) {
	var label *Label
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		label, err = requireLabel(ctx, tx, slug, ErrNotFound)
		return err
	})
	return label, err
}

// Labels returns every label ordered by slug.
func (s *Service) Labels(ctx context.Context) ([]Label, error) {
	var labels []Label
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		labels, err = tx.Labels(ctx)
		return err
	})
	return labels, err
}

// DeleteLabel removes a label and its relationships. Routes that disappear
// are gated like relationship deletion.
func (s *Service) DeleteLabel(ctx context.Context, slug string, opts DeleteOptions) (*DeleteResult, error) {
	res := &DeleteResult{Mode: opts.Mode}
	regen, err := s.mutate(ctx, func(tx Tx) (*RegenerateResult, error) {
		label, err := requireLabel(ctx, tx, slug, ErrNotFound)
		if err != nil {
			return nil, err
		}
		affected, err := s.gen.AffectedByLabelRemoval(ctx, tx, label.ID)
		if err != nil {
			return nil, err
		}
		res.Affected = affected
		if err := settleAttachments(ctx, tx, affected, opts, res); err != nil {
			return nil, err
		}
		if err := tx.DeleteLabel(ctx, label.ID); err != nil {
			return nil, err
		}
		return s.gen.RegenerateAll(ctx, tx)
	})
	if err != nil {
		s.reject(err, "label", slug, "mode", opts.Mode.String())
		return nil, err
	}
	res.Regenerated = regen
	s.metrics.Deleted("label", opts.Mode.String(), res.AttachmentsDeleted, res.AttachmentsMoved)
	s.logger.Info("label deleted",
		"label", slug,
		"mode", opts.Mode.String(),
		"affected", len(res.Affected),
		"inserted", len(regen.Inserted),
		"deleted", len(regen.Deleted))
	return res, nil
}

// ---------- Relationships ----------

// CreateRelationship adds the parent -> child edge after checking it closes
// no cycle, then regenerates routes.
func (s *Service) CreateRelationship(ctx context.Context, parentSlug, childSlug string) (*Relationship, error) {
	var rel Relationship
	regen, err := s.mutate(ctx, func(tx Tx) (*RegenerateResult, error) {
		parent, err := requireLabel(ctx, tx, parentSlug, ErrUnknownLabel)
		if err != nil {
			return nil, err
		}
		child, err := requireLabel(ctx, tx, childSlug, ErrUnknownLabel)
		if err != nil {
			return nil, err
		}
		rels, err := tx.Relationships(ctx)
		if err != nil {
			return nil, err
		}
		if err := CheckRelationship(BuildAdjacency(rels), parent.ID, child.ID); err != nil {
			return nil, err
		}
		for _, r := range rels {
			if r.ParentID == parent.ID && r.ChildID == child.ID {
				return nil, fmt.Errorf("%w: %s -> %s", ErrDuplicateRelationship, parentSlug, childSlug)
			}
		}
		rel = Relationship{ID: s.newID(), ParentID: parent.ID, ChildID: child.ID}
		if err := tx.AddRelationship(ctx, rel); err != nil {
			return nil, err
		}
		return s.gen.RegenerateAll(ctx, tx)
	})
	if err != nil {
		s.reject(err, "parent", parentSlug, "child", childSlug)
		return nil, err
	}
	s.logger.Info("relationship created",
		"relationship", rel.ID,
		"parent", parentSlug,
		"child", childSlug,
		"inserted", len(regen.Inserted),
		"deleted", len(regen.Deleted))
	return &rel, nil
}

// Relationship returns the relationship with the given id.
func (s *Service) Relationship(ctx context.Context, id string) (*Relationship, error) {
	var rel *Relationship
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		rel, err = requireRelationship(ctx, tx, id)
		return err
	})
	return rel, err
}

// FindRelationship returns the edge between two labels.
func (s *Service) FindRelationship(ctx context.Context, parentSlug, childSlug string) (*Relationship, error) {
	var rel *Relationship
	err := s.store.View(ctx, func(tx Tx) error {
		parent, err := requireLabel(ctx, tx, parentSlug, ErrUnknownLabel)
		if err != nil {
			return err
		}
		child, err := requireLabel(ctx, tx, childSlug, ErrUnknownLabel)
		if err != nil {
			return err
		}
		rel, err = tx.FindRelationship(ctx, parent.ID, child.ID)
		if err != nil {
			return err
		}
		if rel == nil {
			return fmt.Errorf("relationship %s -> %s: %w", parentSlug, childSlug, ErrNotFound)
		}
		return nil
	})
	return rel, err
}

// Relationships returns every relationship.
func (s *Service) Relationships(ctx context.Context) ([]Relationship, error) {
	var rels []Relationship
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		rels, err = tx.Relationships(ctx)
		return err
	})
	return rels, err
}

// DeleteRelationship removes an edge. In safe mode it fails with a
// *RoutesInUseError when a route it would orphan carries attachments.
func (s *Service) DeleteRelationship(ctx context.Context, id string, opts DeleteOptions) (*DeleteResult, error) {
	res := &DeleteResult{Mode: opts.Mode}
	regen, err := s.mutate(ctx, func(tx Tx) (*RegenerateResult, error) {
		rel, err := requireRelationship(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if opts.Mode != DeleteForce {
			affected, err := s.gen.AffectedByRemoval(ctx, tx, *rel)
			if err != nil {
				return nil, err
			}
			res.Affected = affected
		}
		if err := settleAttachments(ctx, tx, res.Affected, opts, res); err != nil {
			return nil, err
		}
		if err := tx.DeleteRelationship(ctx, rel.ID); err != nil {
			return nil, err
		}
		return s.gen.RegenerateAll(ctx, tx)
	})
	if err != nil {
		s.reject(err, "relationship", id, "mode", opts.Mode.String())
		return nil, err
	}
	res.Regenerated = regen
	if opts.Mode == DeleteForce {
		res.Affected = regen.Deleted
	}
	s.metrics.Deleted("relationship", opts.Mode.String(), res.AttachmentsDeleted, res.AttachmentsMoved)
	s.logger.Info("relationship deleted",
		"relationship", id,
		"mode", opts.Mode.String(),
		"affected", len(res.Affected),
		"inserted", len(regen.Inserted),
		"deleted", len(regen.Deleted))
	return res, nil
}

// AffectedRoutes returns the routes that deleting the relationship would orphan.
func (s *Service) AffectedRoutes(ctx context.Context, id string) ([]Route, error) {
	var routes []Route
	err := s.store.View(ctx, func(tx Tx) error {
		rel, err := requireRelationship(ctx, tx, id)
		if err != nil {
			return err
		}
		routes, err = s.gen.AffectedByRemoval(ctx, tx, *rel)
		return err
	})
	return routes, err
}

// AffectedAttachmentCount counts attachments on the routes that deleting the
// relationship would orphan.
func (s *Service) AffectedAttachmentCount(ctx context.Context, id string) (int, error) {
	var n int
	err := s.store.View(ctx, func(tx Tx) error {
		rel, err := requireRelationship(ctx, tx, id)
		if err != nil {
			return err
		}
		affected, err := s.gen.AffectedByRemoval(ctx, tx, *rel)
		if err != nil || len(affected) == 0 {
			return err
		}
		n, err = tx.CountAttachments(ctx, routeIDs(affected))
		return err
	})
	return n, err
}

// CanDelete reports whether a safe delete of the relationship would succeed.
func (s *Service) CanDelete(ctx context.Context, id string) (bool, error) {
	n, err := s.AffectedAttachmentCount(ctx, id)
	return n == 0, err
}

// ---------- Routes ----------

// Regenerate rebuilds the route set from the current graph.
func (s *Service) Regenerate(ctx context.Context) (*RegenerateResult, error) {
	regen, err := s.mutate(ctx, func(tx Tx) (*RegenerateResult, error) {
		return s.gen.RegenerateAll(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("routes regenerated",
		"inserted", len(regen.Inserted),
		"deleted", len(regen.Deleted),
		"total", regen.Total)
	return regen, nil
}

// Routes returns every materialized route ordered by path.
func (s *Service) Routes(ctx context.Context) ([]Route, error) {
	return s.store.FindRoutes(ctx)
}

// Route returns the route with the given path.
func (s *Service) Route(ctx context.Context, path string) (*Route, error) {
	var route *Route
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		route, err = requireRoute(ctx, tx, path, ErrNotFound)
		return err
	})
	return route, err
}

// FindRoutes returns routes matching every filter.
func (s *Service) FindRoutes(ctx context.Context, filters ...query.Filter) ([]Route, error) {
	return s.store.FindRoutes(ctx, filters...)
}

// Match returns routes matching a glob-style path pattern ("tech.*", "**.php").
func (s *Service) Match(ctx context.Context, pattern string, filters ...query.Filter) ([]Route, error) {
	f, err := s.Adapter().PathMatches(ctx, pattern)
	if err != nil {
		return nil, err
	}
	return s.store.FindRoutes(ctx, append([]query.Filter{f}, filters...)...)
}

// MatchText returns routes matching a boolean containment pattern
// ("backend & !php").
func (s *Service) MatchText(ctx context.Context, pattern string, filters ...query.Filter) ([]Route, error) {
	f, err := s.Adapter().PathMatchesText(ctx, pattern)
	if err != nil {
		return nil, err
	}
	return s.store.FindRoutes(ctx, append([]query.Filter{f}, filters...)...)
}

// Ancestors returns the materialized strict ancestors of path.
func (s *Service) Ancestors(ctx context.Context, path string) ([]Route, error) {
	return s.store.FindRoutes(ctx, s.Adapter().AncestorOf(ctx, path))
}

// Descendants returns the materialized strict descendants of path.
func (s *Service) Descendants(ctx context.Context, path string) ([]Route, error) {
	return s.store.FindRoutes(ctx, s.Adapter().DescendantOf(ctx, path))
}

// Children returns the descendants of path exactly one level deeper.
func (s *Service) Children(ctx context.Context, path string) ([]Route, error) {
	a := s.Adapter()
	return s.store.FindRoutes(ctx, a.DescendantOf(ctx, path), a.Depth(ltree.Depth(path)+1))
}

// Parent returns the route one level above path, or nil for a root path.
func (s *Service) Parent(ctx context.Context, path string) (*Route, error) {
	parent, ok := ltree.Parent(path)
	if !ok {
		return nil, nil
	}
	return s.Route(ctx, parent)
}

// ---------- Attachments ----------

// Attach links an entity to the route at path. Attaching the same entity to
// the same route twice returns the existing attachment.
func (s *Service) Attach(ctx context.Context, path, entityType, entityID string) (*Attachment, error) {
	if entityType == "" || entityID == "" {
		return nil, errors.New("graph: entity type and id are required")
	}
	var att Attachment
	err := s.update(ctx, func(tx Tx) error {
		route, err := requireRoute(ctx, tx, path, ErrInvalidRoute)
		if err != nil {
			return err
		}
		existing, err := tx.AttachmentsOf(ctx, entityType, entityID)
		if err != nil {
			return err
		}
		for _, a := range existing {
			if a.RouteID == route.ID {
				att = a
				return nil
			}
		}
		att = Attachment{ID: s.newID(), RouteID: route.ID, EntityType: entityType, EntityID: entityID}
		return tx.AddAttachment(ctx, att)
	})
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// Detach removes the link between an entity and the route at path. It
// reports whether a link existed.
func (s *Service) Detach(ctx context.Context, path, entityType, entityID string) (bool, error) {
	var removed bool
	err := s.update(ctx, func(tx Tx) error {
		route, err := requireRoute(ctx, tx, path, ErrInvalidRoute)
		if err != nil {
			return err
		}
		existing, err := tx.AttachmentsOf(ctx, entityType, entityID)
		if err != nil {
			return err
		}
		for _, a := range existing {
			if a.RouteID == route.ID {
				removed = true
				return tx.DeleteAttachments(ctx, []string{a.ID})
			}
		}
		return nil
	})
	return removed, err
}

// AttachmentsFor returns the attachments on the route at path.
func (s *Service) AttachmentsFor(ctx context.Context, path string) ([]Attachment, error) {
	var atts []Attachment
	err := s.store.View(ctx, func(tx Tx) error {
		route, err := requireRoute(ctx, tx, path, ErrInvalidRoute)
		if err != nil {
			return err
		}
		atts, err = tx.AttachmentsOn(ctx, []string{route.ID})
		return err
	})
	return atts, err
}

// AttachmentCount counts the attachments on the route at path.
func (s *Service) AttachmentCount(ctx context.Context, path string) (int, error) {
	var n int
	err := s.store.View(ctx, func(tx Tx) error {
		route, err := requireRoute(ctx, tx, path, ErrInvalidRoute)
		if err != nil {
			return err
		}
		n, err = tx.CountAttachments(ctx, []string{route.ID})
		return err
	})
	return n, err
}

// RoutesFor returns the routes an entity is attached to, ordered by path.
func (s *Service) RoutesFor(ctx context.Context, entityType, entityID string) ([]Route, error) {
	var out []Route
	err := s.store.View(ctx, func(tx Tx) error {
		atts, err := tx.AttachmentsOf(ctx, entityType, entityID)
		if err != nil || len(atts) == 0 {
			return err
		}
		want := make(map[string]bool, len(atts))
		for _, a := range atts {
			want[a.RouteID] = true
		}
		routes, err := tx.Routes(ctx)
		if err != nil {
			return err
		}
		for _, r := range routes {
			if want[r.ID] {
				out = append(out, r)
			}
		}
		return nil
	})
	return out, err
}

// MigrateAttachments re-points every attachment on fromPath to toPath and
// returns how many moved. Entities already on toPath are not duplicated.
func (s *Service) MigrateAttachments(ctx context.Context, fromPath, toPath string) (int, error) {
	var moved int
	err := s.update(ctx, func(tx Tx) error {
		from, err := requireRoute(ctx, tx, fromPath, ErrInvalidRoute)
		if err != nil {
			return err
		}
		to, err := requireRoute(ctx, tx, toPath, ErrInvalidRoute)
		if err != nil {
			return err
		}
		if from.ID == to.ID {
			return nil
		}
		atts, err := tx.AttachmentsOn(ctx, []string{from.ID})
		if err != nil || len(atts) == 0 {
			return err
		}
		move, drop, err := planMove(ctx, tx, atts, to.ID)
		if err != nil {
			return err
		}
		if len(drop) > 0 {
			if err := tx.DeleteAttachments(ctx, drop); err != nil {
				return err
			}
		}
		if len(move) > 0 {
			if err := tx.MoveAttachments(ctx, move, to.ID); err != nil {
				return err
			}
		}
		moved = len(move)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("attachments migrated", "from", fromPath, "to", toPath, "moved", moved)
	return moved, nil
}

// ---------- Entities ----------

// SyncResult reports how SyncRoutes changed an entity's attachments.
type SyncResult struct {
	Attached int `json:"attached"`
	Detached int `json:"detached"`
}

// SyncRoutes makes paths the complete route set of an entity: routes not in
// paths are detached and missing ones attached, in one transaction. Every
// path must resolve to a route; an empty list detaches everything.
func (s *Service) SyncRoutes(ctx context.Context, entityType, entityID string, paths []string) (*SyncResult, error) {
	if entityType == "" || entityID == "" {
		return nil, errors.New("graph: entity type and id are required")
	}
	res := &SyncResult{}
	err := s.update(ctx, func(tx Tx) error {
		var order []string
		want := make(map[string]bool, len(paths))
		for _, p := range paths {
			route, err := requireRoute(ctx, tx, p, ErrInvalidRoute)
			if err != nil {
				return err
			}
			if !want[route.ID] {
				want[route.ID] = true
				order = append(order, route.ID)
			}
		}

		existing, err := tx.AttachmentsOf(ctx, entityType, entityID)
		if err != nil {
			return err
		}
		kept := make(map[string]bool, len(existing))
		var drop []string
		for _, a := range existing {
			if want[a.RouteID] && !kept[a.RouteID] {
				kept[a.RouteID] = true
				continue
			}
			drop = append(drop, a.ID)
		}
		if len(drop) > 0 {
			if err := tx.DeleteAttachments(ctx, drop); err != nil {
				return err
			}
		}
		res.Detached = len(drop)

		for _, routeID := range order {
			if kept[routeID] {
				continue
			}
			att := Attachment{ID: s.newID(), RouteID: routeID, EntityType: entityType, EntityID: entityID}
			if err := tx.AddAttachment(ctx, att); err != nil {
				return err
			}
			res.Attached++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("routes synced",
		"entity_type", entityType,
		"entity_id", entityID,
		"attached", res.Attached,
		"detached", res.Detached)
	return res, nil
}

// HasRoute reports whether an entity is attached to the route at path.
func (s *Service) HasRoute(ctx context.Context, entityType, entityID, path string) (bool, error) {
	routes, err := s.RoutesFor(ctx, entityType, entityID)
	if err != nil {
		return false, err
	}
	for _, r := range routes {
		if r.Path == path {
			return true, nil
		}
	}
	return false, nil
}

// HasRouteMatching reports whether any route of an entity matches the path
// pattern ("tech.*", "*.php").
func (s *Service) HasRouteMatching(ctx context.Context, entityType, entityID, pattern string) (bool, error) {
	p, err := lquery.Compile(pattern)
	if err != nil {
		return false, err
	}
	routes, err := s.RoutesFor(ctx, entityType, entityID)
	if err != nil {
		return false, err
	}
	for _, r := range routes {
		if p.Match(r.Path) {
			return true, nil
		}
	}
	return false, nil
}

// Entities returns the distinct entities attached to any route matching
// every filter, ordered by type then id.
func (s *Service) Entities(ctx context.Context, filters ...query.Filter) ([]Entity, error) {
	var out []Entity
	err := s.store.View(ctx, func(tx Tx) error {
		routes, err := tx.FindRoutes(ctx, filters...)
		if err != nil || len(routes) == 0 {
			return err
		}
		atts, err := tx.AttachmentsOn(ctx, routeIDs(routes))
		if err != nil {
			return err
		}
		seen := make(map[Entity]bool, len(atts))
		for _, a := range atts {
			e := Entity{Type: a.EntityType, ID: a.EntityID}
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
		return nil
	})
	sortEntities(out)
	return out, err
}

// EntitiesWithRoute returns the entities attached to the route at path.
func (s *Service) EntitiesWithRoute(ctx context.Context, path string) ([]Entity, error) {
	return s.Entities(ctx, s.Adapter().ExactPath(path))
}

// EntitiesWithRouteMatching returns the entities attached to a route that
// matches the path pattern.
func (s *Service) EntitiesWithRouteMatching(ctx context.Context, pattern string) ([]Entity, error) {
	f, err := s.Adapter().PathMatches(ctx, pattern)
	if err != nil {
		return nil, err
	}
	return s.Entities(ctx, f)
}

// EntitiesWithRouteDescendantOf returns the entities attached to a strict
// descendant of path.
func (s *Service) EntitiesWithRouteDescendantOf(ctx context.Context, path string) ([]Entity, error) {
	return s.Entities(ctx, s.Adapter().DescendantOf(ctx, path))
}

// EntitiesWithRouteAncestorOf returns the entities attached to a strict
// ancestor of path.
func (s *Service) EntitiesWithRouteAncestorOf(ctx context.Context, path string) ([]Entity, error) {
	return s.Entities(ctx, s.Adapter().AncestorOf(ctx, path))
}

// Stats returns dataset counts.
func (s *Service) Stats(ctx context.Context) (*GraphStats, error) {
	var stats *GraphStats
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		stats, err = tx.Stats(ctx)
		return err
	})
	return stats, err
}

// ---------- Internal helpers ----------

// mutate runs a structural change that ends in a regeneration.
func (s *Service) mutate(ctx context.Context, fn func(tx Tx) (*RegenerateResult, error)) (*RegenerateResult, error) {
	var regen *RegenerateResult
	err := s.update(ctx, func(tx Tx) error {
		var err error
		regen, err = fn(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveRegeneration(len(regen.Inserted), len(regen.Deleted), regen.Took)
	return regen, nil
}

func (s *Service) update(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Update(ctx, fn)
}

// reject logs and counts guard rejections. Other errors pass through silently.
func (s *Service) reject(err error, attrs ...any) {
	var reason string
	switch {
	case errors.Is(err, ErrSelfReference):
		reason = "self_reference"
	case errors.Is(err, ErrCycleDetected):
		reason = "cycle"
	case errors.Is(err, ErrRoutesInUse):
		reason = "routes_in_use"
	case errors.Is(err, ErrInvalidRoute):
		reason = "invalid_route"
	default:
		return
	}
	s.metrics.Rejected(reason)
	s.logger.Debug("mutation rejected", append(attrs, "reason", reason, "error", err)...)
}

func requireLabel(ctx context.Context, tx Tx, slug string, notFound error) (*Label, error) {
	label, err := tx.GetLabelBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if label == nil {
		return nil, fmt.Errorf("label %q: %w", slug, notFound)
	}
	return label, nil
}

func requireRelationship(ctx context.Context, tx Tx, id string) (*Relationship, error) {
	rel, err := tx.GetRelationship(ctx, id)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, fmt.Errorf("relationship %s: %w", id, ErrNotFound)
	}
	return rel, nil
}

func requireRoute(ctx context.Context, tx Tx, path string, notFound error) (*Route, error) {
	route, err := tx.GetRoute(ctx, path)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, fmt.Errorf("route %q: %w", path, notFound)
	}
	return route, nil
}
