// Package ltxtquery implements the boolean label-containment pattern
// language: words joined with '&', '|', '!' and parentheses, where a word
// may carry '*' (prefix), '@' (case-insensitive) and '%' (word-boundary)
// modifiers. A pattern matches a dotted path when the boolean expression
// holds over the path's labels, regardless of their position.
//
//	Europe & Asia          both labels present
//	(Europe | Asia) & !Africa
//	Russia*                prefix match
//	russia@                case-insensitive
//	foo_bar%               underscore word match
package ltxtquery

// Parse parses pattern into a tree.
func Parse(pattern string) (*Node, error) {
	var p Parser
	return p.Parse(pattern)
}

// Validate reports whether pattern parses. It never returns an error.
func Validate(pattern string) bool {
	_, err := Parse(pattern)
	return err == nil
}

// ToNative parses pattern and renders it in canonical native syntax.
func ToNative(pattern string) (string, error) {
	ast, err := Parse(pattern)
	if err != nil {
		return "", err
	}
	return Compile(ast), nil
}

// ToPredicate parses pattern and compiles it to an in-process Predicate.
func ToPredicate(pattern string) (Predicate, error) {
	ast, err := Parse(pattern)
	if err != nil {
		return nil, err
	}
	return CompilePredicate(ast), nil
}

// Matches reports whether path satisfies pattern.
func Matches(pattern, path string) (bool, error) {
	pred, err := ToPredicate(pattern)
	if err != nil {
		return false, err
	}
	return pred(path), nil
}

// Filter returns the paths that satisfy pattern, preserving input order.
func Filter(paths []string, pattern string) ([]string, error) {
	pred, err := ToPredicate(pattern)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out, nil
}
