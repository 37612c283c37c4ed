package ltxtquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"Europe", "Europe"},
		{"Europe&Asia", "Europe & Asia"},
		{"Europe|Asia", "Europe | Asia"},
		{"!Europe", "!Europe"},
		{"(Europe)", "(Europe)"},
		{"Russia%@*", "Russia*@%"},
		{"Russia@*", "Russia*@"},
		{"a | b & c", "a | b & c"},
		{"(a|b)&!c", "(a | b) & !c"},
		{"!(a&b)", "!(a & b)"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := ToNative(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_RoundTrip(t *testing.T) {
	patterns := []string{
		"Europe",
		"Europe & Asia",
		"A | B & C",
		"A & B | C",
		"(Europe | Asia) & !Africa",
		"!!x",
		"foo_bar%@ | baz-1*",
		"((a))",
		"a%*@ & (b | !(c & d*))",
	}

	for _, p := range patterns {
		t.Run(p, func(t *testing.T) {
			ast, err := Parse(p)
			require.NoError(t, err)

			again, err := Parse(Compile(ast))
			require.NoError(t, err)
			assert.Equal(t, ast, again)
			assert.Equal(t, Compile(ast), Compile(again))
		})
	}
}

func TestNode_String(t *testing.T) {
	n := Or(Word("a", CaseInsensitive), Not(Group(Word("b", WordBoundary, Prefix))))
	assert.Equal(t, "a@ | !(b*%)", n.String())
}

func TestWalk(t *testing.T) {
	ast, err := Parse("(a | b) & !c")
	require.NoError(t, err)

	var words []string
	Walk(ast, func(n *Node) bool {
		if n.Kind == KindWord {
			words = append(words, n.Value)
		}
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, words)

	var kinds []Kind
	Walk(ast, func(n *Node) bool {
		kinds = append(kinds, n.Kind)
		return n.Kind != KindGroup
	})
	assert.Equal(t, []Kind{KindAnd, KindGroup, KindNot, KindWord}, kinds)
}
