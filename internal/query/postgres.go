package query

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/lib/pq"

	"github.com/dusk-indust/labelgraph/internal/lquery"
	"github.com/dusk-indust/labelgraph/internal/ltxtquery"
)

// PostgresAdapter is the PostgreSQL tier. When the ltree extension is
// installed it renders native ltree, lquery and ltxtquery operators and
// enables the array-batch operators; otherwise it behaves like the portable
// tiers. The extension probe runs once per adapter.
type PostgresAdapter struct {
	portable
	db    Querier
	probe func(ctx context.Context) (bool, error)

	once  sync.Once
	ltree bool
}

var _ Adapter = (*PostgresAdapter)(nil)

// NewPostgresAdapter creates the PostgreSQL tier.
func NewPostgresAdapter(opts Options) *PostgresAdapter {
	a := &PostgresAdapter{
		portable: newPortable(DriverPostgres, postgresFallback, opts),
		db:       opts.DB,
		probe:    opts.Probe,
	}
	if a.probe == nil {
		a.probe = a.probeExtension
	}
	return a
}

func (a *PostgresAdapter) probeExtension(ctx context.Context) (bool, error) {
	if a.db == nil {
		return false, nil
	}
	var one int
	err := a.db.QueryRowContext(ctx, "SELECT 1 FROM pg_extension WHERE extname = 'ltree'").Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// HasNativeSupport reports whether the ltree extension is installed. A failed
// probe counts as "not installed".
func (a *PostgresAdapter) HasNativeSupport(ctx context.Context) bool {
	a.once.Do(func() {
		ok, err := a.probe(ctx)
		a.ltree = ok && err == nil
	})
	return a.ltree
}

func (a *PostgresAdapter) SupportsArrayOperators(ctx context.Context) bool {
	return a.HasNativeSupport(ctx)
}

func (a *PostgresAdapter) driverLabel(ctx context.Context) string {
	if a.HasNativeSupport(ctx) {
		return DriverPostgres
	}
	return DriverPostgres + " (no ltree)"
}

func (a *PostgresAdapter) PathMatches(ctx context.Context, pattern string) (Filter, error) {
	if !a.HasNativeSupport(ctx) {
		return a.portable.PathMatches(ctx, pattern)
	}
	p, err := lquery.Compile(pattern)
	if err != nil {
		return Filter{}, err
	}
	return Filter{
		SQL:  a.cols.Path + "::ltree ~ ?::lquery",
		Args: []any{p.Lquery()},
	}, nil
}

func (a *PostgresAdapter) AncestorOf(ctx context.Context, path string) Filter {
	if !a.HasNativeSupport(ctx) {
		return a.portable.AncestorOf(ctx, path)
	}
	if path == "" {
		return None()
	}
	return Filter{
		SQL:  a.cols.Path + "::ltree @> ?::ltree AND " + a.cols.Path + " <> ?",
		Args: []any{path, path},
	}
}

func (a *PostgresAdapter) DescendantOf(ctx context.Context, path string) Filter {
	if !a.HasNativeSupport(ctx) {
		return a.portable.DescendantOf(ctx, path)
	}
	if path == "" {
		return None()
	}
	return Filter{
		SQL:  a.cols.Path + "::ltree <@ ?::ltree AND " + a.cols.Path + " <> ?",
		Args: []any{path, path},
	}
}

func (a *PostgresAdapter) PathMatchesText(ctx context.Context, pattern string) (Filter, error) {
	if !a.HasNativeSupport(ctx) {
		return a.portable.PathMatchesText(ctx, pattern)
	}
	native, err := ltxtquery.ToNative(pattern)
	if err != nil {
		return Filter{}, err
	}
	return Filter{
		SQL:  a.cols.Path + "::ltree @ ?::ltxtquery",
		Args: []any{native},
	}, nil
}

// PathHasAncestorIn matches routes for which paths holds an ancestor
// (ltree[] @> ltree).
func (a *PostgresAdapter) PathHasAncestorIn(ctx context.Context, paths []string) (Filter, error) {
	if !a.SupportsArrayOperators(ctx) {
		return Filter{}, unsupported("PathHasAncestorIn", a.driverLabel(ctx))
	}
	if len(paths) == 0 {
		return None(), nil
	}
	return Filter{
		SQL:  "?::ltree[] @> " + a.cols.Path + "::ltree",
		Args: []any{pq.Array(paths)},
	}, nil
}

// PathHasDescendantIn matches routes for which paths holds a descendant
// (ltree[] <@ ltree).
func (a *PostgresAdapter) PathHasDescendantIn(ctx context.Context, paths []string) (Filter, error) {
	if !a.SupportsArrayOperators(ctx) {
		return Filter{}, unsupported("PathHasDescendantIn", a.driverLabel(ctx))
	}
	if len(paths) == 0 {
		return None(), nil
	}
	return Filter{
		SQL:  "?::ltree[] <@ " + a.cols.Path + "::ltree",
		Args: []any{pq.Array(paths)},
	}, nil
}

// AnyPathMatches holds when any of paths matches the glob pattern
// (ltree[] ~ lquery).
func (a *PostgresAdapter) AnyPathMatches(ctx context.Context, paths []string, pattern string) (Filter, error) {
	if !a.SupportsArrayOperators(ctx) {
		return Filter{}, unsupported("AnyPathMatches", a.driverLabel(ctx))
	}
	if len(paths) == 0 {
		return None(), nil
	}
	lq, err := lquery.ToLquery(pattern)
	if err != nil {
		return Filter{}, err
	}
	return Filter{
		SQL:  "?::ltree[] ~ ?::lquery",
		Args: []any{pq.Array(paths), lq},
	}, nil
}

// FirstAncestorFrom returns the first candidate that is an ancestor of path
// (ltree[] ?@> ltree).
func (a *PostgresAdapter) FirstAncestorFrom(ctx context.Context, path string, candidates []string) (string, bool, error) {
	if !a.SupportsArrayOperators(ctx) {
		return "", false, unsupported("FirstAncestorFrom", a.driverLabel(ctx))
	}
	return a.firstFrom(ctx, "SELECT ($1::ltree[] ?@> $2::ltree)::text", path, candidates)
}

// FirstDescendantFrom returns the first candidate that is a descendant of
// path (ltree[] ?<@ ltree).
func (a *PostgresAdapter) FirstDescendantFrom(ctx context.Context, path string, candidates []string) (string, bool, error) {
	if !a.SupportsArrayOperators(ctx) {
		return "", false, unsupported("FirstDescendantFrom", a.driverLabel(ctx))
	}
	return a.firstFrom(ctx, "SELECT ($1::ltree[] ?<@ $2::ltree)::text", path, candidates)
}

func (a *PostgresAdapter) firstFrom(ctx context.Context, stmt, path string, candidates []string) (string, bool, error) {
	if len(candidates) == 0 {
		return "", false, nil
	}
	if a.db == nil {
		return "", false, errors.New("query: postgres adapter has no database handle")
	}
	var result sql.NullString
	if err := a.db.QueryRowContext(ctx, stmt, pq.Array(candidates), path).Scan(&result); err != nil {
		return "", false, err
	}
	return result.String, result.Valid, nil
}
