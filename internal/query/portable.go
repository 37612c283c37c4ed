package query

import (
	"context"
	"fmt"

	"github.com/dusk-indust/labelgraph/internal/lquery"
	"github.com/dusk-indust/labelgraph/internal/ltree"
	"github.com/dusk-indust/labelgraph/internal/ltxtquery"
)

// dialect supplies the SQL pieces that differ between portable backends.
type dialect struct {
	// regexMatch renders "<expr> matches <placeholder>".
	regexMatch func(expr string) string
	// dotted renders "." || col.
	dotted func(col string) string
}

// portable implements every adapter operation with plain string algorithms.
// It backs the MySQL, SQLite and embedded tiers and the PostgreSQL tier when
// the ltree extension is missing.
type portable struct {
	driver string
	cols   Columns
	sql    dialect
	paths  PathSource
}

func newPortable(driver string, d dialect, opts Options) portable {
	return portable{
		driver: driver,
		cols:   opts.Columns.withDefaults(),
		sql:    d,
		paths:  opts.Paths,
	}
}

func (a *portable) Driver() string { return a.driver }

func (a *portable) HasNativeSupport(context.Context) bool { return false }

func (a *portable) SupportsArrayOperators(context.Context) bool { return false }

func (a *portable) ExactPath(path string) Filter {
	return Filter{
		SQL:   a.cols.Path + " = ?",
		Args:  []any{path},
		Match: func(p string) bool { return p == path },
	}
}

func (a *portable) PathMatches(_ context.Context, pattern string) (Filter, error) {
	p, err := lquery.Compile(pattern)
	if err != nil {
		return Filter{}, err
	}
	return Filter{
		SQL:   a.sql.regexMatch(a.sql.dotted(a.cols.Path)),
		Args:  []any{p.Regex()},
		Match: p.Match,
	}, nil
}

// PathLike matches an SQL LIKE pattern, ignoring ASCII case on every tier.
func (a *portable) PathLike(pattern string) Filter {
	return Filter{
		SQL:   "LOWER(" + a.cols.Path + ") LIKE LOWER(?)",
		Args:  []any{pattern},
		Match: likeMatcher(pattern),
	}
}

// AncestorOf matches routes equal to one of path's strict prefixes.
func (a *portable) AncestorOf(_ context.Context, path string) Filter {
	prefixes := ltree.Prefixes(path)
	if len(prefixes) == 0 {
		return None()
	}
	return Filter{
		SQL:   inList(a.cols.Path, len(prefixes)),
		Args:  stringArgs(prefixes),
		Match: setMatcher(prefixes),
	}
}

// DescendantOf matches routes that start with path + ".".
func (a *portable) DescendantOf(_ context.Context, path string) Filter {
	if path == "" {
		return None()
	}
	return Filter{
		SQL:   fmt.Sprintf("%s LIKE ? ESCAPE '%c'", a.cols.Path, likeEscape),
		Args:  []any{escapeLike(path+ltree.Separator) + "%"},
		Match: func(p string) bool { return ltree.IsDescendant(p, path) },
	}
}

// PathMatchesText evaluates the ltxtquery predicate over every materialized
// path and narrows the query to the survivors. Past MaxInList survivors the
// filter carries only the predicate and the store post-filters.
func (a *portable) PathMatchesText(ctx context.Context, pattern string) (Filter, error) {
	pred, err := ltxtquery.ToPredicate(pattern)
	if err != nil {
		return Filter{}, err
	}
	if a.paths == nil {
		return Filter{Match: pred}, nil
	}

	all, err := a.paths.AllPaths(ctx)
	if err != nil {
		return Filter{}, fmt.Errorf("query: load candidate paths: %w", err)
	}
	var matching []string
	for _, p := range all {
		if pred(p) {
			matching = append(matching, p)
		}
	}
	if len(matching) == 0 {
		return None(), nil
	}
	if len(matching) > MaxInList {
		return Filter{Match: pred}, nil
	}
	return Filter{
		SQL:   inList(a.cols.Path, len(matching)),
		Args:  stringArgs(matching),
		Match: pred,
	}, nil
}

func (a *portable) Depth(depth int) Filter {
	return a.depthFilter("=", depth, func(d int) bool { return d == depth })
}

func (a *portable) DepthBetween(min, max int) Filter {
	if min > max {
		return None()
	}
	return Filter{
		SQL:   a.cols.Depth + " BETWEEN ? AND ?",
		Args:  []any{min, max},
		Match: func(p string) bool { d := ltree.Depth(p); return d >= min && d <= max },
	}
}

func (a *portable) DepthAtMost(max int) Filter {
	return a.depthFilter("<=", max, func(d int) bool { return d <= max })
}

func (a *portable) DepthAtLeast(min int) Filter {
	return a.depthFilter(">=", min, func(d int) bool { return d >= min })
}

// Nlevel filters on label count, which is depth + 1.
func (a *portable) Nlevel(level int) Filter {
	return a.Depth(level - 1)
}

func (a *portable) depthFilter(op string, v int, ok func(int) bool) Filter {
	return Filter{
		SQL:   a.cols.Depth + " " + op + " ?",
		Args:  []any{v},
		Match: func(p string) bool { return ok(ltree.Depth(p)) },
	}
}

func (a *portable) PathHasAncestorIn(context.Context, []string) (Filter, error) {
	return Filter{}, unsupported("PathHasAncestorIn", a.driver)
}

func (a *portable) PathHasDescendantIn(context.Context, []string) (Filter, error) {
	return Filter{}, unsupported("PathHasDescendantIn", a.driver)
}

func (a *portable) AnyPathMatches(context.Context, []string, string) (Filter, error) {
	return Filter{}, unsupported("AnyPathMatches", a.driver)
}

func (a *portable) FirstAncestorFrom(context.Context, string, []string) (string, bool, error) {
	return "", false, unsupported("FirstAncestorFrom", a.driver)
}

func (a *portable) FirstDescendantFrom(context.Context, string, []string) (string, bool, error) {
	return "", false, unsupported("FirstDescendantFrom", a.driver)
}

// SQLiteAdapter is the SQLite tier. REGEXP resolves to the regexp() scalar
// function the SQLite store registers on open.
type SQLiteAdapter struct{ portable }

var _ Adapter = (*SQLiteAdapter)(nil)

// NewSQLiteAdapter creates the SQLite tier.
func NewSQLiteAdapter(opts Options) *SQLiteAdapter {
	return &SQLiteAdapter{newPortable(DriverSQLite, dialect{
		regexMatch: func(expr string) string { return expr + " REGEXP ?" },
		dotted:     func(col string) string { return "('.' || " + col + ")" },
	}, opts)}
}

// MySQLAdapter is the MySQL tier.
type MySQLAdapter struct{ portable }

var _ Adapter = (*MySQLAdapter)(nil)

// NewMySQLAdapter creates the MySQL tier.
func NewMySQLAdapter(opts Options) *MySQLAdapter {
	return &MySQLAdapter{newPortable(DriverMySQL, dialect{
		regexMatch: func(expr string) string { return expr + " REGEXP ?" },
		dotted:     func(col string) string { return "CONCAT('.', " + col + ")" },
	}, opts)}
}

// EmbeddedAdapter serves stores that evaluate every filter in-process
// (MemStore, KuzuStore). Its filters still carry SQL for logging.
type EmbeddedAdapter struct{ portable }

var _ Adapter = (*EmbeddedAdapter)(nil)

// NewEmbeddedAdapter creates the in-process tier under the given driver name.
func NewEmbeddedAdapter(driver string, opts Options) *EmbeddedAdapter {
	if driver == "" {
		driver = DriverMemory
	}
	opts.Paths = nil
	return &EmbeddedAdapter{newPortable(driver, dialect{
		regexMatch: func(expr string) string { return expr + " REGEXP ?" },
		dotted:     func(col string) string { return "('.' || " + col + ")" },
	}, opts)}
}

// postgresFallback renders the portable dialect for PostgreSQL.
var postgresFallback = dialect{
	regexMatch: func(expr string) string { return expr + " ~ ?" },
	dotted:     func(col string) string { return "('.' || " + col + ")" },
}
