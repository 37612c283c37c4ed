package ltxtquery

import "strings"

// Predicate reports whether a dotted path satisfies a compiled pattern.
// Predicates close over immutable values only and are safe for concurrent use.
type Predicate func(path string) bool

// CompilePredicate turns a tree into a Predicate for backends without native
// ltxtquery support. Every dot-separated label of the path is tested
// independently; a word matches when any label matches.
func CompilePredicate(n *Node) Predicate {
	switch n.Kind {
	case KindWord:
		return compileWord(n)
	case KindAnd:
		left, right := CompilePredicate(n.Left()), CompilePredicate(n.Right())
		return func(path string) bool { return left(path) && right(path) }
	case KindOr:
		left, right := CompilePredicate(n.Left()), CompilePredicate(n.Right())
		return func(path string) bool { return left(path) || right(path) }
	case KindNot:
		inner := CompilePredicate(n.Operand())
		return func(path string) bool { return !inner(path) }
	case KindGroup:
		return CompilePredicate(n.Operand())
	default:
		return func(string) bool { return false }
	}
}

// wordMatcher holds the precomputed form of one word node.
type wordMatcher struct {
	value      string
	valueParts []string
	fold       bool
	prefix     bool
	boundary   bool
}

func compileWord(n *Node) Predicate {
	m := wordMatcher{
		value:    n.Value,
		fold:     n.Has(CaseInsensitive),
		prefix:   n.Has(Prefix),
		boundary: n.Has(WordBoundary),
	}
	if m.fold {
		m.value = strings.ToLower(m.value)
	}
	if m.boundary {
		m.valueParts = strings.Split(m.value, "_")
	}
	return func(path string) bool {
		for _, label := range strings.Split(path, ".") {
			if m.matchLabel(label) {
				return true
			}
		}
		return false
	}
}

func (m wordMatcher) matchLabel(label string) bool {
	if m.fold {
		label = strings.ToLower(label)
	}

	if m.boundary {
		words := strings.Split(label, "_")
		if len(words) < len(m.valueParts) {
			return false
		}
		for i, want := range m.valueParts {
			if m.prefix {
				if !strings.HasPrefix(words[i], want) {
					return false
				}
			} else if words[i] != want {
				return false
			}
		}
		return true
	}

	if m.prefix {
		return strings.HasPrefix(label, m.value)
	}
	return label == m.value
}
