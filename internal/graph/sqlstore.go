package graph

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/dusk-indust/labelgraph/internal/query"
)

// SQLStore implements Store on database/sql for SQLite, PostgreSQL and MySQL.
type SQLStore struct {
	db      *sql.DB
	dialect sqlDialect
	tables  Tables
	adapter query.Adapter
}

// Compile-time check that SQLStore satisfies Store.
var _ Store = (*SQLStore)(nil)

// sqlDialect captures what differs between the SQL backends.
type sqlDialect struct {
	name      string // query driver id
	sqlDriver string // database/sql driver name
	dollar    bool   // $n placeholders
	write     *sql.TxOptions
	read      *sql.TxOptions
	ddl       func(t Tables) []string
}

var dialects = map[string]sqlDialect{
	query.DriverSQLite: {
		name:      query.DriverSQLite,
		sqlDriver: "sqlite",
		ddl:       sqliteDDL,
	},
	query.DriverPostgres: {
		name:      query.DriverPostgres,
		sqlDriver: "postgres",
		dollar:    true,
		write:     &sql.TxOptions{Isolation: sql.LevelSerializable},
		read:      &sql.TxOptions{ReadOnly: true},
		ddl:       postgresDDL,
	},
	query.DriverMySQL: {
		name:      query.DriverMySQL,
		sqlDriver: "mysql",
		write:     &sql.TxOptions{Isolation: sql.LevelSerializable},
		read:      &sql.TxOptions{ReadOnly: true},
		ddl:       mysqlDDL,
	},
}

func lookupDialect(driverName string) (sqlDialect, error) {
	switch strings.ToLower(driverName) {
	case "sqlite", "sqlite3":
		return dialects[query.DriverSQLite], nil
	case "pgsql", "postgres", "postgresql":
		return dialects[query.DriverPostgres], nil
	case "mysql":
		return dialects[query.DriverMySQL], nil
	default:
		return sqlDialect{}, fmt.Errorf("sqlstore: %w: %q", query.ErrUnsupportedDriver, driverName)
	}
}

// OpenSQLStore opens a database with the named driver ("sqlite", "postgres"
// or "mysql") and wraps it in a SQLStore. Empty table names take defaults.
func OpenSQLStore(driverName, dsn string, tables Tables) (*SQLStore, error) {
	d, err := lookupDialect(driverName)
	if err != nil {
		return nil, err
	}
	if d.name == query.DriverSQLite {
		if err := registerSQLiteFunctions(); err != nil {
			return nil, err
		}
		dsn = sqliteDSN(dsn)
	}
	db, err := sql.Open(d.sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", d.name, err)
	}
	if d.name == query.DriverSQLite && strings.Contains(dsn, ":memory:") {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	s, err := NewSQLStore(db, d.name, tables)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database. The SQLite regexp() function must be
// registered before the first connection is made; OpenSQLStore does this.
func NewSQLStore(db *sql.DB, driverName string, tables Tables) (*SQLStore, error) {
	d, err := lookupDialect(driverName)
	if err != nil {
		return nil, err
	}
	t, err := tables.withDefaults()
	if err != nil {
		return nil, err
	}
	s := &SQLStore{db: db, dialect: d, tables: t}
	adapter, err := query.New(d.name, query.Options{DB: db, Paths: s})
	if err != nil {
		return nil, err
	}
	s.adapter = adapter
	return s, nil
}

// sqliteDSN enables foreign keys and a busy timeout unless the caller set
// pragmas explicitly.
func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = ":memory:"
	}
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Driver returns the query driver id of the backend.
func (s *SQLStore) Driver() string { return s.dialect.name }

// Adapter returns the capability tier for the backend.
func (s *SQLStore) Adapter() query.Adapter { return s.adapter }

// Tables returns the table names in use.
func (s *SQLStore) Tables() Tables { return s.tables }

// ---------- Schema setup ----------

func sqliteDDL(t Tables) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			color TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT ''
		)`, t.Labels),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			parent_label_id TEXT NOT NULL,
			child_label_id TEXT NOT NULL,
			UNIQUE (parent_label_id, child_label_id),
			FOREIGN KEY (parent_label_id) REFERENCES %[2]s(id) ON DELETE CASCADE,
			FOREIGN KEY (child_label_id) REFERENCES %[2]s(id) ON DELETE CASCADE
		)`, t.Relationships, t.Labels),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL UNIQUE,
			depth INTEGER NOT NULL
		)`, t.Routes),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_depth_idx ON %[1]s (depth)`, t.Routes),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			label_route_id TEXT NOT NULL,
			labelable_type TEXT NOT NULL,
			labelable_id TEXT NOT NULL,
			UNIQUE (label_route_id, labelable_type, labelable_id),
			FOREIGN KEY (label_route_id) REFERENCES %s(id) ON DELETE CASCADE
		)`, t.Labelables, t.Routes),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_entity_idx ON %[1]s (labelable_type, labelable_id)`, t.Labelables),
	}
}

// postgresDDL matches sqliteDDL; path stays TEXT so the same table serves
// both the native ltree tier (path::ltree casts) and the fallback tier.
func postgresDDL(t Tables) []string {
	return sqliteDDL(t)
}

func mysqlDDL(t Tables) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			slug VARCHAR(191) NOT NULL UNIQUE,
			color VARCHAR(64) NOT NULL DEFAULT '',
			icon VARCHAR(255) NOT NULL DEFAULT '',
			description VARCHAR(1024) NOT NULL DEFAULT ''
		)`, t.Labels),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
			id VARCHAR(64) PRIMARY KEY,
			parent_label_id VARCHAR(64) NOT NULL,
			child_label_id VARCHAR(64) NOT NULL,
			UNIQUE KEY %[1]s_edge_uq (parent_label_id, child_label_id),
			FOREIGN KEY (parent_label_id) REFERENCES %[2]s(id) ON DELETE CASCADE,
			FOREIGN KEY (child_label_id) REFERENCES %[2]s(id) ON DELETE CASCADE
		)`, t.Relationships, t.Labels),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
			id VARCHAR(64) PRIMARY KEY,
			path VARCHAR(768) NOT NULL UNIQUE,
			depth INT NOT NULL,
			INDEX %[1]s_depth_idx (depth)
		)`, t.Routes),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
			id VARCHAR(64) PRIMARY KEY,
			label_route_id VARCHAR(64) NOT NULL,
			labelable_type VARCHAR(191) NOT NULL,
			labelable_id VARCHAR(191) NOT NULL,
			UNIQUE KEY %[1]s_attach_uq (label_route_id, labelable_type, labelable_id),
			INDEX %[1]s_entity_idx (labelable_type, labelable_id),
			FOREIGN KEY (label_route_id) REFERENCES %[2]s(id) ON DELETE CASCADE
		)`, t.Labelables, t.Routes),
	}
}

// InitSchema creates all tables if they do not exist.
func (s *SQLStore) InitSchema(ctx context.Context) error {
	for _, stmt := range s.dialect.ddl(s.tables) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore: init schema: %w", err)
		}
	}
	return nil
}

// ---------- Transactions ----------

// Update runs fn in a read-write transaction. PostgreSQL and MySQL use
// serializable isolation.
func (s *SQLStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	return s.run(ctx, s.dialect.write, false, fn)
}

// View runs fn in a read-only transaction.
func (s *SQLStore) View(ctx context.Context, fn func(tx Tx) error) error {
	return s.run(ctx, s.dialect.read, true, fn)
}

func (s *SQLStore) run(ctx context.Context, opts *sql.TxOptions, readOnly bool, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("sqlstore: begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlTx{s: s, tx: tx, readOnly: readOnly}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: commit: %w", err)
	}
	return nil
}

// FindRoutes returns routes matching every filter.
func (s *SQLStore) FindRoutes(ctx context.Context, filters ...query.Filter) ([]Route, error) {
	return findRoutes(ctx, s, filters)
}

// AllPaths lists every materialized path.
func (s *SQLStore) AllPaths(ctx context.Context) ([]string, error) {
	return allPaths(ctx, s)
}

// rebind rewrites '?' placeholders to $n outside quoted literals.
func (s *SQLStore) rebind(q string) string {
	if !s.dialect.dollar {
		return q
	}
	var sb strings.Builder
	n := 0
	quoted := false
	for i := 0; i < len(q); i++ {
		c := q[i]
		switch {
		case c == '\'':
			quoted = !quoted
		case c == '?' && !quoted:
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// sqlTx is a transaction on a SQLStore.
type sqlTx struct {
	s        *SQLStore
	tx       *sql.Tx
	readOnly bool
}

func (t *sqlTx) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	if t.readOnly {
		return nil, ErrReadOnly
	}
	return t.tx.ExecContext(ctx, t.s.rebind(q), args...)
}

func (t *sqlTx) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, t.s.rebind(q), args...)
}

func (t *sqlTx) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.s.rebind(q), args...)
}

// ---------- Labels ----------

const labelColumns = "id, name, slug, color, icon, description"

func (t *sqlTx) AddLabel(ctx context.Context, l Label) error {
	_, err := t.exec(ctx,
		"INSERT INTO "+t.s.tables.Labels+" ("+labelColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		l.ID, l.Name, l.Slug, l.Color, l.Icon, l.Description)
	if isUniqueViolation(err) {
		return fmt.Errorf("sqlstore: insert label: %w: %s", ErrDuplicateSlug, l.Slug)
	}
	if err != nil {
		return fmt.Errorf("sqlstore: insert label: %w", err)
	}
	return nil
}

func (t *sqlTx) GetLabel(ctx context.Context, id string) (*Label, error) {
	return t.oneLabel(ctx, "id", id)
}

func (t *sqlTx) GetLabelBySlug(ctx context.Context, slug string) (*Label, error) {
	return t.oneLabel(ctx, "slug", slug)
}

func (t *sqlTx) oneLabel(ctx context.Context, col, v string) (*Label, error) {
	var l Label
	err := t.queryRow(ctx,
		"SELECT "+labelColumns+" FROM "+t.s.tables.Labels+" WHERE "+col+" = ?", v).
		Scan(&l.ID, &l.Name, &l.Slug, &l.Color, &l.Icon, &l.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get label: %w", err)
	}
	return &l, nil
}

func (t *sqlTx) Labels(ctx context.Context) ([]Label, error) {
	rows, err := t.query(ctx, "SELECT "+labelColumns+" FROM "+t.s.tables.Labels+" ORDER BY slug")
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list labels: %w", err)
	}
	defer rows.Close()

	var out []Label
	for rows.Next() {
		var l Label
		if err := rows.Scan(&l.ID, &l.Name, &l.Slug, &l.Color, &l.Icon, &l.Description); err != nil {
			return nil, fmt.Errorf("sqlstore: scan label: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (t *sqlTx) DeleteLabel(ctx context.Context, id string) error {
	if _, err := t.exec(ctx,
		"DELETE FROM "+t.s.tables.Relationships+" WHERE parent_label_id = ? OR child_label_id = ?", id, id); err != nil {
		return fmt.Errorf("sqlstore: delete label relationships: %w", err)
	}
	if _, err := t.exec(ctx, "DELETE FROM "+t.s.tables.Labels+" WHERE id = ?", id); err != nil {
		return fmt.Errorf("sqlstore: delete label: %w", err)
	}
	return nil
}

// ---------- Relationships ----------

const relColumns = "id, parent_label_id, child_label_id"

func (t *sqlTx) AddRelationship(ctx context.Context, r Relationship) error {
	for _, id := range []string{r.ParentID, r.ChildID} {
		l, err := t.GetLabel(ctx, id)
		if err != nil {
			return err
		}
		if l == nil {
			return fmt.Errorf("sqlstore: insert relationship: %w: %s", ErrUnknownLabel, id)
		}
	}
	_, err := t.exec(ctx,
		"INSERT INTO "+t.s.tables.Relationships+" ("+relColumns+") VALUES (?, ?, ?)",
		r.ID, r.ParentID, r.ChildID)
	if isUniqueViolation(err) {
		return fmt.Errorf("sqlstore: insert relationship: %w", ErrDuplicateRelationship)
	}
	if err != nil {
		return fmt.Errorf("sqlstore: insert relationship: %w", err)
	}
	return nil
}

func (t *sqlTx) GetRelationship(ctx context.Context, id string) (*Relationship, error) {
	return t.oneRelationship(ctx, "id = ?", id)
}

func (t *sqlTx) FindRelationship(ctx context.Context, parentID, childID string) (*Relationship, error) {
	return t.oneRelationship(ctx, "parent_label_id = ? AND child_label_id = ?", parentID, childID)
}

func (t *sqlTx) oneRelationship(ctx context.Context, where string, args ...any) (*Relationship, error) {
	var r Relationship
	err := t.queryRow(ctx,
		"SELECT "+relColumns+" FROM "+t.s.tables.Relationships+" WHERE "+where, args...).
		Scan(&r.ID, &r.ParentID, &r.ChildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get relationship: %w", err)
	}
	return &r, nil
}

func (t *sqlTx) Relationships(ctx context.Context) ([]Relationship, error) {
	rows, err := t.query(ctx, "SELECT "+relColumns+" FROM "+t.s.tables.Relationships+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list relationships: %w", err)
	}
	defer rows.Close()

	var out []Relationship
	for rows.Next() {
		var r Relationship
		if err := rows.Scan(&r.ID, &r.ParentID, &r.ChildID); err != nil {
			return nil, fmt.Errorf("sqlstore: scan relationship: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (t *sqlTx) DeleteRelationship(ctx context.Context, id string) error {
	if _, err := t.exec(ctx, "DELETE FROM "+t.s.tables.Relationships+" WHERE id = ?", id); err != nil {
		return fmt.Errorf("sqlstore: delete relationship: %w", err)
	}
	return nil
}

// ---------- Routes ----------

func (t *sqlTx) Routes(ctx context.Context) ([]Route, error) {
	return t.FindRoutes(ctx)
}

func (t *sqlTx) GetRoute(ctx context.Context, path string) (*Route, error) {
	var r Route
	err := t.queryRow(ctx,
		"SELECT id, path, depth FROM "+t.s.tables.Routes+" WHERE path = ?", path).
		Scan(&r.ID, &r.Path, &r.Depth)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get route: %w", err)
	}
	return &r, nil
}

// FindRoutes pushes SQL filters into the WHERE clause and evaluates
// matcher-only filters on the result.
func (t *sqlTx) FindRoutes(ctx context.Context, filters ...query.Filter) ([]Route, error) {
	var (
		where []string
		args  []any
		post  []query.Filter
	)
	for _, f := range filters {
		switch {
		case f.IsNone():
			return nil, nil
		case f.SQL != "":
			where = append(where, "("+f.SQL+")")
			args = append(args, f.Args...)
		case f.Match != nil:
			post = append(post, f)
		}
	}

	q := "SELECT id, path, depth FROM " + t.s.tables.Routes
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY path"

	rows, err := t.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: find routes: %w", err)
	}
	defer rows.Close()

	var out []Route
	for rows.Next() {
		var r Route
		if err := rows.Scan(&r.ID, &r.Path, &r.Depth); err != nil {
			return nil, fmt.Errorf("sqlstore: scan route: %w", err)
		}
		if matchesAll(r.Path, post) {
			out = append(out, r)
		}
	}
	return out, rows.Err()
}

func (t *sqlTx) InsertRoutes(ctx context.Context, routes []Route) error {
	for _, r := range routes {
		if _, err := t.exec(ctx,
			"INSERT INTO "+t.s.tables.Routes+" (id, path, depth) VALUES (?, ?, ?)",
			r.ID, r.Path, r.Depth); err != nil {
			return fmt.Errorf("sqlstore: insert route %s: %w", r.Path, err)
		}
	}
	return nil
}

func (t *sqlTx) DeleteRoutes(ctx context.Context, ids []string) error {
	return inChunks(ids, func(chunk []string) error {
		in, args := placeholders(chunk)
		if _, err := t.exec(ctx, "DELETE FROM "+t.s.tables.Labelables+" WHERE label_route_id IN "+in, args...); err != nil {
			return fmt.Errorf("sqlstore: delete route attachments: %w", err)
		}
		if _, err := t.exec(ctx, "DELETE FROM "+t.s.tables.Routes+" WHERE id IN "+in, args...); err != nil {
			return fmt.Errorf("sqlstore: delete routes: %w", err)
		}
		return nil
	})
}

// ---------- Attachments ----------

const attachColumns = "id, label_route_id, labelable_type, labelable_id"

func (t *sqlTx) AddAttachment(ctx context.Context, a Attachment) error {
	_, err := t.exec(ctx,
		"INSERT INTO "+t.s.tables.Labelables+" ("+attachColumns+") VALUES (?, ?, ?, ?)",
		a.ID, a.RouteID, a.EntityType, a.EntityID)
	if err != nil {
		return fmt.Errorf("sqlstore: insert attachment: %w", err)
	}
	return nil
}

func (t *sqlTx) AttachmentsOn(ctx context.Context, routeIDs []string) ([]Attachment, error) {
	var out []Attachment
	err := inChunks(routeIDs, func(chunk []string) error {
		in, args := placeholders(chunk)
		atts, err := t.attachments(ctx, "label_route_id IN "+in, args...)
		out = append(out, atts...)
		return err
	})
	if err != nil {
		return nil, err
	}
	sortAttachments(out)
	return out, nil
}

func (t *sqlTx) AttachmentsOf(ctx context.Context, entityType, entityID string) ([]Attachment, error) {
	return t.attachments(ctx, "labelable_type = ? AND labelable_id = ?", entityType, entityID)
}

func (t *sqlTx) attachments(ctx context.Context, where string, args ...any) ([]Attachment, error) {
	rows, err := t.query(ctx,
		"SELECT "+attachColumns+" FROM "+t.s.tables.Labelables+" WHERE "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list attachments: %w", err)
	}
	defer rows.Close()

	var out []Attachment
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.RouteID, &a.EntityType, &a.EntityID); err != nil {
			return nil, fmt.Errorf("sqlstore: scan attachment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (t *sqlTx) CountAttachments(ctx context.Context, routeIDs []string) (int, error) {
	total := 0
	err := inChunks(routeIDs, func(chunk []string) error {
		in, args := placeholders(chunk)
		var n int
		if err := t.queryRow(ctx,
			"SELECT COUNT(*) FROM "+t.s.tables.Labelables+" WHERE label_route_id IN "+in, args...).Scan(&n); err != nil {
			return fmt.Errorf("sqlstore: count attachments: %w", err)
		}
		total += n
		return nil
	})
	return total, err
}

func (t *sqlTx) MoveAttachments(ctx context.Context, ids []string, routeID string) error {
	return inChunks(ids, func(chunk []string) error {
		in, args := placeholders(chunk)
		if _, err := t.exec(ctx,
			"UPDATE "+t.s.tables.Labelables+" SET label_route_id = ? WHERE id IN "+in,
			append([]any{routeID}, args...)...); err != nil {
			return fmt.Errorf("sqlstore: move attachments: %w", err)
		}
		return nil
	})
}

func (t *sqlTx) DeleteAttachments(ctx context.Context, ids []string) error {
	return inChunks(ids, func(chunk []string) error {
		in, args := placeholders(chunk)
		if _, err := t.exec(ctx, "DELETE FROM "+t.s.tables.Labelables+" WHERE id IN "+in, args...); err != nil {
			return fmt.Errorf("sqlstore: delete attachments: %w", err)
		}
		return nil
	})
}

// ---------- Stats ----------

func (t *sqlTx) Stats(ctx context.Context) (*GraphStats, error) {
	var st GraphStats
	counts := []struct {
		table string
		dst   *int
	}{
		{t.s.tables.Labels, &st.LabelCount},
		{t.s.tables.Relationships, &st.RelationshipCount},
		{t.s.tables.Routes, &st.RouteCount},
		{t.s.tables.Labelables, &st.AttachmentCount},
	}
	for _, c := range counts {
		if err := t.queryRow(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("sqlstore: count %s: %w", c.table, err)
		}
	}
	return &st, nil
}

// ---------- Internal helpers ----------

func inChunks(ids []string, fn func(chunk []string) error) error {
	for start := 0; start < len(ids); start += query.MaxInList {
		end := min(start+query.MaxInList, len(ids))
		if err := fn(ids[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// placeholders renders "(?, ?, ...)" and the matching args.
func placeholders(ids []string) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + ")", args
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE")
		}
	}
	return false
}

// ---------- SQLite functions ----------

var (
	registerOnce sync.Once
	registerErr  error
	regexCache   sync.Map // pattern -> *regexp.Regexp
)

// registerSQLiteFunctions installs regexp(pattern, value), which backs the
// REGEXP operator used by glob path matching on SQLite.
func registerSQLiteFunctions() error {
	registerOnce.Do(func() {
		registerErr = sqlite.RegisterDeterministicScalarFunction("regexp", 2, sqliteRegexp)
		if registerErr != nil {
			registerErr = fmt.Errorf("sqlstore: register regexp: %w", registerErr)
		}
	})
	return registerErr
}

func sqliteRegexp(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	pattern, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("regexp: pattern must be text, got %T", args[0])
	}
	var value string
	switch v := args[1].(type) {
	case nil:
		return nil, nil
	case string:
		value = v
	case []byte:
		value = string(v)
	default:
		value = fmt.Sprint(v)
	}

	var re *regexp.Regexp
	if cached, ok := regexCache.Load(pattern); ok {
		re = cached.(*regexp.Regexp)
	} else {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		regexCache.Store(pattern, compiled)
		re = compiled
	}
	if re.MatchString(value) {
		return int64(1), nil
	}
	return int64(0), nil
}
