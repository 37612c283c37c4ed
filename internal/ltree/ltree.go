// Package ltree provides pure helpers over dotted label paths, mirroring the
// PostgreSQL ltree functions (nlevel, subpath, subltree, index) for backends
// that lack the extension.
package ltree

import "strings"

// Separator joins labels in a path.
const Separator = "."

// Segments splits a path into its labels. The empty path has no labels.
func Segments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Separator)
}

// Join builds a path from labels.
func Join(labels ...string) string {
	return strings.Join(labels, Separator)
}

// Nlevel returns the number of labels in path.
func Nlevel(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, Separator) + 1
}

// Depth returns the zero-based depth of path: a root label has depth 0.
func Depth(path string) int {
	return strings.Count(path, Separator)
}

// Parent returns path without its last label, or false for a root path.
func Parent(path string) (string, bool) {
	i := strings.LastIndex(path, Separator)
	if i < 0 {
		return "", false
	}
	return path[:i], true
}

// Prefixes returns every strict prefix of path, shortest first. A root path
// has none.
func Prefixes(path string) []string {
	segs := Segments(path)
	if len(segs) <= 1 {
		return nil
	}
	out := make([]string, 0, len(segs)-1)
	current := segs[0]
	out = append(out, current)
	for _, s := range segs[1 : len(segs)-1] {
		current += Separator + s
		out = append(out, current)
	}
	return out
}

// IsAncestor reports whether ancestor is a strict prefix of path on label
// boundaries.
func IsAncestor(ancestor, path string) bool {
	return ancestor != "" && strings.HasPrefix(path, ancestor+Separator)
}

// IsDescendant reports whether path lies strictly below ancestor.
func IsDescendant(path, ancestor string) bool {
	return IsAncestor(ancestor, path)
}

// Subpath extracts length labels starting at offset. A negative offset counts
// from the end; a negative length leaves that many labels off the end; a
// zero length means "to the end". Out-of-range requests yield "".
func Subpath(path string, offset, length int) string {
	segs := Segments(path)
	n := len(segs)
	if offset < 0 {
		offset += n
	}
	if offset < 0 || offset >= n {
		return ""
	}
	end := n
	switch {
	case length > 0:
		end = offset + length
		if end > n {
			end = n
		}
	case length < 0:
		end = n + length
	}
	if end <= offset {
		return ""
	}
	return Join(segs[offset:end]...)
}

// Subltree returns the labels from position start up to, not including, end.
func Subltree(path string, start, end int) string {
	if start >= end {
		return ""
	}
	return Subpath(path, start, end-start)
}

// Index returns the label position of the first occurrence of sub in path,
// or -1.
func Index(path, sub string) int {
	segs, want := Segments(path), Segments(sub)
	if len(want) == 0 {
		return -1
	}
outer:
	for i := 0; i+len(want) <= len(segs); i++ {
		for j := range want {
			if segs[i+j] != want[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

// Concat joins two paths, skipping empty operands.
func Concat(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + Separator + b
}
