package query

import (
	"regexp"
	"strings"
)

// Filter is one condition over materialized routes. SQL stores push SQL down
// as a WHERE fragment with '?' placeholders; in-process stores evaluate Match.
// A filter may carry both, or only one of them:
//
//   - Match == nil marks a native filter that only a SQL backend can run.
//   - SQL == "" marks a filter that must be evaluated in-process.
//
// The zero Filter matches everything.
type Filter struct {
	SQL   string
	Args  []any
	Match func(path string) bool

	none bool
}

// None returns a filter that matches nothing. Stores short-circuit it without
// issuing a query.
func None() Filter {
	return Filter{none: true, Match: func(string) bool { return false }}
}

// IsNone reports whether f can never match.
func (f Filter) IsNone() bool { return f.none }

// Native reports whether f can only be evaluated by the backend.
func (f Filter) Native() bool { return !f.none && f.Match == nil && f.SQL != "" }

// Columns names the route table columns referenced by rendered SQL.
type Columns struct {
	Path  string
	Depth string
}

func (c Columns) withDefaults() Columns {
	if c.Path == "" {
		c.Path = "path"
	}
	if c.Depth == "" {
		c.Depth = "depth"
	}
	return c
}

// MaxInList bounds the placeholders in one IN clause. It stays well below
// the SQLite, MySQL and PostgreSQL bind-variable limits.
const MaxInList = 500

// inList renders "col IN (?, ?, ...)" for n values.
func inList(col string, n int) string {
	return col + " IN (" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func setMatcher(values []string) func(string) bool {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(path string) bool {
		_, ok := set[path]
		return ok
	}
}

// likeEscape is the escape character used in rendered LIKE clauses. It is
// not a backslash because MySQL treats backslash specially in literals.
const likeEscape = '!'

// escapeLike quotes LIKE wildcards in a literal.
func escapeLike(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '%', '_', likeEscape:
			sb.WriteByte(likeEscape)
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// likeMatcher evaluates an SQL LIKE pattern in-process, ignoring case. The
// pattern uses the standard '%' and '_' wildcards with no escape character.
func likeMatcher(pattern string) func(string) bool {
	var sb strings.Builder
	sb.WriteString(`(?is)^`)
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(`.*`)
		case '_':
			sb.WriteString(`.`)
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString(`$`)
	re := regexp.MustCompile(sb.String())
	return re.MatchString
}
