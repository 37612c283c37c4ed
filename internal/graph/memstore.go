package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/dusk-indust/labelgraph/internal/query"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// memState is one consistent snapshot of the dataset. Update works on a
// clone and swaps it in on success.
type memState struct {
	labels        map[string]Label        // key: id
	relationships map[string]Relationship // key: id
	routes        map[string]Route        // key: id
	attachments   map[string]Attachment   // key: id
}

func newMemState() *memState {
	return &memState{
		labels:        make(map[string]Label),
		relationships: make(map[string]Relationship),
		routes:        make(map[string]Route),
		attachments:   make(map[string]Attachment),
	}
}

func (s *memState) clone() *memState {
	c := &memState{
		labels:        make(map[string]Label, len(s.labels)),
		relationships: make(map[string]Relationship, len(s.relationships)),
		routes:        make(map[string]Route, len(s.routes)),
		attachments:   make(map[string]Attachment, len(s.attachments)),
	}
	for k, v := range s.labels {
		c.labels[k] = v
	}
	for k, v := range s.relationships {
		c.relationships[k] = v
	}
	for k, v := range s.routes {
		c.routes[k] = v
	}
	for k, v := range s.attachments {
		c.attachments[k] = v
	}
	return c
}

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex;
// writers are serialized and readers see the last committed snapshot.
type MemStore struct {
	mu      sync.RWMutex
	state   *memState
	adapter query.Adapter
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		state:   newMemState(),
		adapter: query.NewEmbeddedAdapter(query.DriverMemory, query.Options{}),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// Driver returns query.DriverMemory.
func (m *MemStore) Driver() string { return query.DriverMemory }

// Adapter returns the in-process query tier.
func (m *MemStore) Adapter() query.Adapter { return m.adapter }

// Update runs fn against a private copy of the dataset and publishes the copy
// only when fn succeeds.
func (m *MemStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	next := m.state.clone()
	if err := fn(&memTx{st: next}); err != nil {
		return err
	}
	m.state = next
	return nil
}

// View runs fn against the current snapshot.
func (m *MemStore) View(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&memTx{st: m.state, readOnly: true})
}

// FindRoutes returns routes matching every filter.
func (m *MemStore) FindRoutes(ctx context.Context, filters ...query.Filter) ([]Route, error) {
	return findRoutes(ctx, m, filters)
}

// AllPaths lists every materialized path.
func (m *MemStore) AllPaths(ctx context.Context) ([]string, error) {
	return allPaths(ctx, m)
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

// memTx is a transaction over one memState.
type memTx struct {
	st       *memState
	readOnly bool
}

func (t *memTx) writable() error {
	if t.readOnly {
		return ErrReadOnly
	}
	return nil
}

// ---------- Labels ----------

func (t *memTx) AddLabel(_ context.Context, label Label) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.labels[label.ID]; ok {
		return fmt.Errorf("memstore: label %s already exists", label.ID)
	}
	for _, l := range t.st.labels {
		if l.Slug == label.Slug {
			return fmt.Errorf("memstore: %w: %s", ErrDuplicateSlug, label.Slug)
		}
	}
	t.st.labels[label.ID] = label
	return nil
}

func (t *memTx) GetLabel(_ context.Context, id string) (*Label, error) {
	l, ok := t.st.labels[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (t *memTx) GetLabelBySlug(_ context.Context, slug string) (*Label, error) {
	for _, l := range t.st.labels {
		if l.Slug == slug {
			return &l, nil
		}
	}
	return nil, nil
}

func (t *memTx) Labels(_ context.Context) ([]Label, error) {
	out := make([]Label, 0, len(t.st.labels))
	for _, l := range t.st.labels {
		out = append(out, l)
	}
	sortLabels(out)
	return out, nil
}

func (t *memTx) DeleteLabel(_ context.Context, id string) error {
	if err := t.writable(); err != nil {
		return err
	}
	for rid, r := range t.st.relationships {
		if r.ParentID == id || r.ChildID == id {
			delete(t.st.relationships, rid)
		}
	}
	delete(t.st.labels, id)
	return nil
}

// ---------- Relationships ----------

func (t *memTx) AddRelationship(_ context.Context, rel Relationship) error {
	if err := t.writable(); err != nil {
		return err
	}
	for _, id := range []string{rel.ParentID, rel.ChildID} {
		if _, ok := t.st.labels[id]; !ok {
			return fmt.Errorf("memstore: %w: %s", ErrUnknownLabel, id)
		}
	}
	for _, r := range t.st.relationships {
		if r.ParentID == rel.ParentID && r.ChildID == rel.ChildID {
			return fmt.Errorf("memstore: %w", ErrDuplicateRelationship)
		}
	}
	t.st.relationships[rel.ID] = rel
	return nil
}

func (t *memTx) GetRelationship(_ context.Context, id string) (*Relationship, error) {
	r, ok := t.st.relationships[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (t *memTx) FindRelationship(_ context.Context, parentID, childID string) (*Relationship, error) {
	for _, r := range t.st.relationships {
		if r.ParentID == parentID && r.ChildID == childID {
			return &r, nil
		}
	}
	return nil, nil
}

func (t *memTx) Relationships(_ context.Context) ([]Relationship, error) {
	out := make([]Relationship, 0, len(t.st.relationships))
	for _, r := range t.st.relationships {
		out = append(out, r)
	}
	sortRelationships(out)
	return out, nil
}

func (t *memTx) DeleteRelationship(_ context.Context, id string) error {
	if err := t.writable(); err != nil {
		return err
	}
	delete(t.st.relationships, id)
	return nil
}

// ---------- Routes ----------

func (t *memTx) Routes(_ context.Context) ([]Route, error) {
	out := make([]Route, 0, len(t.st.routes))
	for _, r := range t.st.routes {
		out = append(out, r)
	}
	sortRoutes(out)
	return out, nil
}

func (t *memTx) GetRoute(_ context.Context, path string) (*Route, error) {
	for _, r := range t.st.routes {
		if r.Path == path {
			return &r, nil
		}
	}
	return nil, nil
}

func (t *memTx) FindRoutes(ctx context.Context, filters ...query.Filter) ([]Route, error) {
	routes, err := t.Routes(ctx)
	if err != nil {
		return nil, err
	}
	return matchRoutes(routes, filters)
}

func (t *memTx) InsertRoutes(_ context.Context, routes []Route) error {
	if err := t.writable(); err != nil {
		return err
	}
	paths := make(map[string]bool, len(t.st.routes))
	for _, r := range t.st.routes {
		paths[r.Path] = true
	}
	for _, r := range routes {
		if paths[r.Path] {
			return fmt.Errorf("memstore: route %s already exists", r.Path)
		}
		paths[r.Path] = true
		t.st.routes[r.ID] = r
	}
	return nil
}

func (t *memTx) DeleteRoutes(_ context.Context, ids []string) error {
	if err := t.writable(); err != nil {
		return err
	}
	doomed := toSet(ids)
	for aid, a := range t.st.attachments {
		if doomed[a.RouteID] {
			delete(t.st.attachments, aid)
		}
	}
	for _, id := range ids {
		delete(t.st.routes, id)
	}
	return nil
}

// ---------- Attachments ----------

func (t *memTx) AddAttachment(_ context.Context, a Attachment) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.routes[a.RouteID]; !ok {
		return fmt.Errorf("memstore: %w: route id %s", ErrInvalidRoute, a.RouteID)
	}
	for _, existing := range t.st.attachments {
		if existing.RouteID == a.RouteID && existing.EntityType == a.EntityType && existing.EntityID == a.EntityID {
			return fmt.Errorf("memstore: attachment %s/%s already on route %s", a.EntityType, a.EntityID, a.RouteID)
		}
	}
	t.st.attachments[a.ID] = a
	return nil
}

func (t *memTx) AttachmentsOn(_ context.Context, routeIDs []string) ([]Attachment, error) {
	want := toSet(routeIDs)
	var out []Attachment
	for _, a := range t.st.attachments {
		if want[a.RouteID] {
			out = append(out, a)
		}
	}
	sortAttachments(out)
	return out, nil
}

func (t *memTx) AttachmentsOf(_ context.Context, entityType, entityID string) ([]Attachment, error) {
	var out []Attachment
	for _, a := range t.st.attachments {
		if a.EntityType == entityType && a.EntityID == entityID {
			out = append(out, a)
		}
	}
	sortAttachments(out)
	return out, nil
}

func (t *memTx) CountAttachments(ctx context.Context, routeIDs []string) (int, error) {
	atts, err := t.AttachmentsOn(ctx, routeIDs)
	return len(atts), err
}

func (t *memTx) MoveAttachments(_ context.Context, ids []string, routeID string) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.routes[routeID]; !ok {
		return fmt.Errorf("memstore: %w: route id %s", ErrInvalidRoute, routeID)
	}
	for _, id := range ids {
		if a, ok := t.st.attachments[id]; ok {
			a.RouteID = routeID
			t.st.attachments[id] = a
		}
	}
	return nil
}

func (t *memTx) DeleteAttachments(_ context.Context, ids []string) error {
	if err := t.writable(); err != nil {
		return err
	}
	for _, id := range ids {
		delete(t.st.attachments, id)
	}
	return nil
}

// ---------- Stats ----------

func (t *memTx) Stats(_ context.Context) (*GraphStats, error) {
	return &GraphStats{
		LabelCount:        len(t.st.labels),
		RelationshipCount: len(t.st.relationships),
		RouteCount:        len(t.st.routes),
		AttachmentCount:   len(t.st.attachments),
	}, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
