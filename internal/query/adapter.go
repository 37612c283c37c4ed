// Package query routes path queries to the strategy each backend supports.
// PostgreSQL with the ltree extension gets native ltree, lquery and
// ltxtquery operators; every other backend gets portable string algorithms
// and the in-process ltxtquery predicate.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Driver identifiers understood by New.
const (
	DriverPostgres = "pgsql"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
	DriverKuzu     = "kuzu"
)

// Adapter builds route filters for one backend tier.
type Adapter interface {
	// Driver identifies the backend tier.
	Driver() string
	// HasNativeSupport reports whether native ltree operators are available.
	// The answer is computed once per adapter.
	HasNativeSupport(ctx context.Context) bool
	// SupportsArrayOperators reports whether the array-batch operators work.
	SupportsArrayOperators(ctx context.Context) bool

	ExactPath(path string) Filter
	PathMatches(ctx context.Context, pattern string) (Filter, error)
	PathLike(pattern string) Filter
	AncestorOf(ctx context.Context, path string) Filter
	DescendantOf(ctx context.Context, path string) Filter
	PathMatchesText(ctx context.Context, pattern string) (Filter, error)

	Depth(depth int) Filter
	DepthBetween(min, max int) Filter
	DepthAtMost(max int) Filter
	DepthAtLeast(min int) Filter
	Nlevel(level int) Filter

	PathHasAncestorIn(ctx context.Context, paths []string) (Filter, error)
	PathHasDescendantIn(ctx context.Context, paths []string) (Filter, error)
	AnyPathMatches(ctx context.Context, paths []string, pattern string) (Filter, error)
	FirstAncestorFrom(ctx context.Context, path string, candidates []string) (string, bool, error)
	FirstDescendantFrom(ctx context.Context, path string, candidates []string) (string, bool, error)
}

// Querier runs single-row queries. *sql.DB and *sql.Tx satisfy it.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PathSource lists every materialized path. SQL tiers without native
// ltxtquery use it to filter candidates in-process.
type PathSource interface {
	AllPaths(ctx context.Context) ([]string, error)
}

// Options configures an adapter.
type Options struct {
	Columns Columns
	// DB serves the ltree probe and the native first-match helpers.
	DB Querier
	// Paths feeds the in-process ltxtquery fallback. When nil, the fallback
	// returns a filter with only a matcher and the store post-filters.
	Paths PathSource
	// Probe overrides the ltree availability check.
	Probe func(ctx context.Context) (bool, error)
}

// New constructs the adapter tier for driver.
func New(driver string, opts Options) (Adapter, error) {
	switch strings.ToLower(driver) {
	case "pgsql", "postgres", "postgresql":
		return NewPostgresAdapter(opts), nil
	case DriverMySQL:
		return NewMySQLAdapter(opts), nil
	case DriverSQLite, "sqlite3":
		return NewSQLiteAdapter(opts), nil
	case DriverMemory, DriverKuzu:
		return NewEmbeddedAdapter(strings.ToLower(driver), opts), nil
	default:
		return nil, fmt.Errorf("query: %w: %q", ErrUnsupportedDriver, driver)
	}
}
