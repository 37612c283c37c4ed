package ltree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNlevelAndDepth(t *testing.T) {
	assert.Equal(t, 0, Nlevel(""))
	assert.Equal(t, 1, Nlevel("tech"))
	assert.Equal(t, 3, Nlevel("tech.backend.php"))
	assert.Equal(t, 0, Depth("tech"))
	assert.Equal(t, 2, Depth("tech.backend.php"))
}

func TestParent(t *testing.T) {
	p, ok := Parent("tech.backend.php")
	assert.True(t, ok)
	assert.Equal(t, "tech.backend", p)

	_, ok = Parent("tech")
	assert.False(t, ok)
}

func TestPrefixes(t *testing.T) {
	assert.Equal(t, []string{"a", "a.b", "a.b.c"}, Prefixes("a.b.c.d"))
	assert.Equal(t, []string{"tech"}, Prefixes("tech.backend"))
	assert.Empty(t, Prefixes("tech"))
	assert.Empty(t, Prefixes(""))
}

func TestIsAncestor(t *testing.T) {
	assert.True(t, IsAncestor("tech", "tech.backend"))
	assert.True(t, IsDescendant("tech.backend.php", "tech"))
	assert.False(t, IsAncestor("tech", "tech"))
	assert.False(t, IsAncestor("tech", "technology.backend"))
	assert.False(t, IsAncestor("", "tech"))
}

func TestSubpath(t *testing.T) {
	const p = "Top.Child1.Child2.Child3"
	tests := []struct {
		name           string
		offset, length int
		want           string
	}{
		{"to end", 1, 0, "Child1.Child2.Child3"},
		{"window", 0, 2, "Top.Child1"},
		{"negative offset", -2, 0, "Child2.Child3"},
		{"negative length", 0, -1, "Top.Child1.Child2"},
		{"clamped", 2, 10, "Child2.Child3"},
		{"offset past end", 4, 0, ""},
		{"empty window", 1, -3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Subpath(p, tt.offset, tt.length))
		})
	}
}

func TestSubltreeIndexConcat(t *testing.T) {
	assert.Equal(t, "Child1", Subltree("Top.Child1.Child2", 1, 2))
	assert.Equal(t, "", Subltree("Top.Child1.Child2", 2, 2))

	assert.Equal(t, 1, Index("a.b.c.b.c", "b.c"))
	assert.Equal(t, -1, Index("a.b", "c"))
	assert.Equal(t, -1, Index("a.b", ""))

	assert.Equal(t, "a.b", Concat("a", "b"))
	assert.Equal(t, "a", Concat("a", ""))
	assert.Equal(t, "b", Concat("", "b"))
}
