//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/labelgraph/internal/query"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// Labels are nodes joined by PARENT_OF edges; routes and attachments are
// nodes joined by ATTACHED_TO edges. It requires CGO because the go-kuzu
// driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection

	// mu serializes transactions on the single connection.
	mu      sync.Mutex
	adapter query.Adapter
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the directory itself for new databases.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	// Ensure parent directory exists (KuzuDB creates the leaf directory).
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{
		db:      db,
		conn:    conn,
		adapter: query.NewEmbeddedAdapter(query.DriverKuzu, query.Options{}),
	}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// Driver returns query.DriverKuzu.
func (s *KuzuStore) Driver() string { return query.DriverKuzu }

// Adapter returns the in-process query tier.
func (s *KuzuStore) Adapter() query.Adapter { return s.adapter }

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Label(
		id STRING,
		name STRING,
		slug STRING,
		color STRING,
		icon STRING,
		description STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Route(
		id STRING,
		path STRING,
		depth INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Attachment(
		id STRING,
		entity_type STRING,
		entity_id STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS PARENT_OF(FROM Label TO Label, id STRING)`,
	`CREATE REL TABLE IF NOT EXISTS ATTACHED_TO(FROM Attachment TO Route)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Transactions ----------

// Update runs fn inside BEGIN TRANSACTION / COMMIT and rolls back on error.
func (s *KuzuStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	return s.run(ctx, "BEGIN TRANSACTION", false, fn)
}

// View runs fn inside a read-only transaction.
func (s *KuzuStore) View(ctx context.Context, fn func(tx Tx) error) error {
	return s.run(ctx, "BEGIN TRANSACTION READ ONLY", true, fn)
}

func (s *KuzuStore) run(ctx context.Context, begin string, readOnly bool, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.exec(begin, nil); err != nil {
		return err
	}
	if err := fn(&kuzuTx{s: s, readOnly: readOnly}); err != nil {
		// A failed statement may already have aborted the transaction.
		_ = s.exec("ROLLBACK", nil)
		return err
	}
	if err := s.exec("COMMIT", nil); err != nil {
		return fmt.Errorf("kuzu: commit: %w", err)
	}
	return nil
}

// FindRoutes returns routes matching every filter.
func (s *KuzuStore) FindRoutes(ctx context.Context, filters ...query.Filter) ([]Route, error) {
	return findRoutes(ctx, s, filters)
}

// AllPaths lists every materialized path.
func (s *KuzuStore) AllPaths(ctx context.Context) ([]string, error) {
	return allPaths(ctx, s)
}

// kuzuTx issues statements on the store's connection while a transaction
// is open.
type kuzuTx struct {
	s        *KuzuStore
	readOnly bool
}

func (t *kuzuTx) exec(cypher string, params map[string]any) error {
	if t.readOnly {
		return ErrReadOnly
	}
	return t.s.exec(cypher, params)
}

// ---------- Labels ----------

func (t *kuzuTx) AddLabel(ctx context.Context, l Label) error {
	existing, err := t.GetLabelBySlug(ctx, l.Slug)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("kuzu: %w: %s", ErrDuplicateSlug, l.Slug)
	}
	return t.exec(
		`CREATE (l:Label {
			id: $id,
			name: $name,
			slug: $slug,
			color: $color,
			icon: $icon,
			description: $desc
		})`,
		map[string]any{
			"id":    l.ID,
			"name":  l.Name,
			"slug":  l.Slug,
			"color": l.Color,
			"icon":  l.Icon,
			"desc":  l.Description,
		},
	)
}

const labelReturn = "RETURN l.id, l.name, l.slug, l.color, l.icon, l.description"

func (t *kuzuTx) GetLabel(_ context.Context, id string) (*Label, error) {
	return t.oneLabel("MATCH (l:Label {id: $v}) "+labelReturn, id)
}

func (t *kuzuTx) GetLabelBySlug(_ context.Context, slug string) (*Label, error) {
	return t.oneLabel("MATCH (l:Label) WHERE l.slug = $v "+labelReturn, slug)
}

func (t *kuzuTx) oneLabel(cypher, v string) (*Label, error) {
	rows, err := t.s.query(cypher, map[string]any{"v": v})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToLabel(rows[0]), nil
}

func (t *kuzuTx) Labels(_ context.Context) ([]Label, error) {
	rows, err := t.s.query("MATCH (l:Label) "+labelReturn+" ORDER BY l.slug", nil)
	if err != nil {
		return nil, err
	}
	out := make([]Label, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToLabel(r))
	}
	return out, nil
}

// DeleteLabel removes the node; DETACH drops its PARENT_OF edges.
func (t *kuzuTx) DeleteLabel(_ context.Context, id string) error {
	return t.exec("MATCH (l:Label {id: $id}) DETACH DELETE l", map[string]any{"id": id})
}

// ---------- Relationships ----------

func (t *kuzuTx) AddRelationship(ctx context.Context, r Relationship) error {
	for _, id := range []string{r.ParentID, r.ChildID} {
		l, err := t.GetLabel(ctx, id)
		if err != nil {
			return err
		}
		if l == nil {
			return fmt.Errorf("kuzu: %w: %s", ErrUnknownLabel, id)
		}
	}
	existing, err := t.FindRelationship(ctx, r.ParentID, r.ChildID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("kuzu: %w", ErrDuplicateRelationship)
	}
	return t.exec(
		`MATCH (p:Label {id: $parent}), (c:Label {id: $child})
		 CREATE (p)-[:PARENT_OF {id: $id}]->(c)`,
		map[string]any{"id": r.ID, "parent": r.ParentID, "child": r.ChildID},
	)
}

const relReturn = "RETURN e.id, p.id, c.id"

func (t *kuzuTx) GetRelationship(_ context.Context, id string) (*Relationship, error) {
	return t.oneRelationship(
		"MATCH (p:Label)-[e:PARENT_OF]->(c:Label) WHERE e.id = $id "+relReturn,
		map[string]any{"id": id})
}

func (t *kuzuTx) FindRelationship(_ context.Context, parentID, childID string) (*Relationship, error) {
	return t.oneRelationship(
		"MATCH (p:Label {id: $parent})-[e:PARENT_OF]->(c:Label {id: $child}) "+relReturn,
		map[string]any{"parent": parentID, "child": childID})
}

func (t *kuzuTx) oneRelationship(cypher string, params map[string]any) (*Relationship, error) {
	rows, err := t.s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToRelationship(rows[0]), nil
}

func (t *kuzuTx) Relationships(_ context.Context) ([]Relationship, error) {
	rows, err := t.s.query("MATCH (p:Label)-[e:PARENT_OF]->(c:Label) "+relReturn+" ORDER BY e.id", nil)
	if err != nil {
		return nil, err
	}
	out := make([]Relationship, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToRelationship(r))
	}
	return out, nil
}

func (t *kuzuTx) DeleteRelationship(_ context.Context, id string) error {
	return t.exec("MATCH (:Label)-[e:PARENT_OF]->(:Label) WHERE e.id = $id DELETE e", map[string]any{"id": id})
}

// ---------- Routes ----------

func (t *kuzuTx) Routes(_ context.Context) ([]Route, error) {
	rows, err := t.s.query("MATCH (r:Route) RETURN r.id, r.path, r.depth ORDER BY r.path", nil)
	if err != nil {
		return nil, err
	}
	out := make([]Route, 0, len(rows))
	for _, r := range rows {
		out = append(out, Route{ID: toString(r[0]), Path: toString(r[1]), Depth: toInt(r[2])})
	}
	return out, nil
}

func (t *kuzuTx) GetRoute(_ context.Context, path string) (*Route, error) {
	rows, err := t.s.query(
		"MATCH (r:Route) WHERE r.path = $path RETURN r.id, r.path, r.depth",
		map[string]any{"path": path})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	return &Route{ID: toString(r[0]), Path: toString(r[1]), Depth: toInt(r[2])}, nil
}

// FindRoutes evaluates filters in-process over every route.
func (t *kuzuTx) FindRoutes(ctx context.Context, filters ...query.Filter) ([]Route, error) {
	routes, err := t.Routes(ctx)
	if err != nil {
		return nil, err
	}
	return matchRoutes(routes, filters)
}

func (t *kuzuTx) InsertRoutes(_ context.Context, routes []Route) error {
	for _, r := range routes {
		if err := t.exec(
			"CREATE (r:Route {id: $id, path: $path, depth: $depth})",
			map[string]any{"id": r.ID, "path": r.Path, "depth": int64(r.Depth)},
		); err != nil {
			return err
		}
	}
	return nil
}

// DeleteRoutes removes each route together with the attachments on it.
func (t *kuzuTx) DeleteRoutes(_ context.Context, ids []string) error {
	for _, id := range ids {
		params := map[string]any{"id": id}
		if err := t.exec(
			"MATCH (a:Attachment)-[:ATTACHED_TO]->(r:Route {id: $id}) DETACH DELETE a", params); err != nil {
			return err
		}
		if err := t.exec("MATCH (r:Route {id: $id}) DETACH DELETE r", params); err != nil {
			return err
		}
	}
	return nil
}

// ---------- Attachments ----------

func (t *kuzuTx) AddAttachment(_ context.Context, a Attachment) error {
	if err := t.exec(
		"CREATE (a:Attachment {id: $id, entity_type: $type, entity_id: $eid})",
		map[string]any{"id": a.ID, "type": a.EntityType, "eid": a.EntityID},
	); err != nil {
		return err
	}
	return t.link(a.ID, a.RouteID)
}

func (t *kuzuTx) link(attachmentID, routeID string) error {
	return t.exec(
		`MATCH (a:Attachment {id: $id}), (r:Route {id: $rid})
		 CREATE (a)-[:ATTACHED_TO]->(r)`,
		map[string]any{"id": attachmentID, "rid": routeID},
	)
}

const attachReturn = "RETURN a.id, r.id, a.entity_type, a.entity_id"

func (t *kuzuTx) AttachmentsOn(_ context.Context, routeIDs []string) ([]Attachment, error) {
	var out []Attachment
	for _, id := range routeIDs {
		rows, err := t.s.query(
			"MATCH (a:Attachment)-[:ATTACHED_TO]->(r:Route {id: $rid}) "+attachReturn,
			map[string]any{"rid": id})
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out = append(out, rowToAttachment(r))
		}
	}
	sortAttachments(out)
	return out, nil
}

func (t *kuzuTx) AttachmentsOf(_ context.Context, entityType, entityID string) ([]Attachment, error) {
	rows, err := t.s.query(
		`MATCH (a:Attachment)-[:ATTACHED_TO]->(r:Route)
		 WHERE a.entity_type = $type AND a.entity_id = $eid `+attachReturn+` ORDER BY a.id`,
		map[string]any{"type": entityType, "eid": entityID})
	if err != nil {
		return nil, err
	}
	out := make([]Attachment, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToAttachment(r))
	}
	return out, nil
}

func (t *kuzuTx) CountAttachments(ctx context.Context, routeIDs []string) (int, error) {
	atts, err := t.AttachmentsOn(ctx, routeIDs)
	return len(atts), err
}

// MoveAttachments replaces each attachment's ATTACHED_TO edge.
func (t *kuzuTx) MoveAttachments(_ context.Context, ids []string, routeID string) error {
	for _, id := range ids {
		if err := t.exec(
			"MATCH (a:Attachment {id: $id})-[e:ATTACHED_TO]->(:Route) DELETE e",
			map[string]any{"id": id}); err != nil {
			return err
		}
		if err := t.link(id, routeID); err != nil {
			return err
		}
	}
	return nil
}

func (t *kuzuTx) DeleteAttachments(_ context.Context, ids []string) error {
	for _, id := range ids {
		if err := t.exec("MATCH (a:Attachment {id: $id}) DETACH DELETE a", map[string]any{"id": id}); err != nil {
			return err
		}
	}
	return nil
}

// ---------- Stats ----------

// Stats returns counts of all node and edge tables.
func (t *kuzuTx) Stats(_ context.Context) (*GraphStats, error) {
	labels, err := t.s.count("MATCH (n:Label) RETURN count(n)")
	if err != nil {
		return nil, err
	}
	rels, err := t.s.count("MATCH ()-[e:PARENT_OF]->() RETURN count(e)")
	if err != nil {
		return nil, err
	}
	routes, err := t.s.count("MATCH (n:Route) RETURN count(n)")
	if err != nil {
		return nil, err
	}
	atts, err := t.s.count("MATCH (n:Attachment) RETURN count(n)")
	if err != nil {
		return nil, err
	}
	return &GraphStats{
		LabelCount:        labels,
		RelationshipCount: rels,
		RouteCount:        routes,
		AttachmentCount:   atts,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	if len(params) == 0 {
		res, err := s.conn.Query(cypher)
		if err != nil {
			return fmt.Errorf("kuzu: execute: %w", err)
		}
		res.Close()
		return nil
	}
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// count runs a single-value count query.
func (s *KuzuStore) count(cypher string) (int, error) {
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// rowToLabel converts a 6-column result row into a Label.
// Column order: id, name, slug, color, icon, description.
func rowToLabel(r []any) *Label {
	return &Label{
		ID:          toString(r[0]),
		Name:        toString(r[1]),
		Slug:        toString(r[2]),
		Color:       toString(r[3]),
		Icon:        toString(r[4]),
		Description: toString(r[5]),
	}
}

func rowToRelationship(r []any) *Relationship {
	return &Relationship{ID: toString(r[0]), ParentID: toString(r[1]), ChildID: toString(r[2])}
}

func rowToAttachment(r []any) Attachment {
	return Attachment{
		ID:         toString(r[0]),
		RouteID:    toString(r[1]),
		EntityType: toString(r[2]),
		EntityID:   toString(r[3]),
	}
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
