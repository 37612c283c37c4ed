package ltxtquery

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Words(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    *Node
	}{
		{"plain", "Europe", Word("Europe")},
		{"underscores", "foo_bar", Word("foo_bar")},
		{"hyphens", "foo-bar", Word("foo-bar")},
		{"digits", "foo123", Word("foo123")},
		{"case-insensitive", "Europe@", Word("Europe", CaseInsensitive)},
		{"prefix", "Russia*", Word("Russia", Prefix)},
		{"word boundary", "foo_bar%", Word("foo_bar", WordBoundary)},
		{"all modifiers", "Russia*@%", Word("Russia", Prefix, CaseInsensitive, WordBoundary)},
		{"modifiers any order", "Russia%@*", Word("Russia", Prefix, CaseInsensitive, WordBoundary)},
		{"repeated modifier", "Russia**", Word("Russia", Prefix)},
		{"surrounding space", "  Europe  ", Word("Europe")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Operators(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    *Node
	}{
		{"and", "Europe & Asia", And(Word("Europe"), Word("Asia"))},
		{"or", "Europe | Asia", Or(Word("Europe"), Word("Asia"))},
		{"not", "!Europe", Not(Word("Europe"))},
		{"double not", "!!Europe", Not(Not(Word("Europe")))},
		{"no spaces", "Europe&Asia", And(Word("Europe"), Word("Asia"))},
		{"wide spaces", "  Europe   &   Asia  ", And(Word("Europe"), Word("Asia"))},
		{"and binds tighter", "A | B & C", Or(Word("A"), And(Word("B"), Word("C")))},
		{"and binds tighter left", "A & B | C", Or(And(Word("A"), Word("B")), Word("C"))},
		{"left associative and", "A & B & C", And(And(Word("A"), Word("B")), Word("C"))},
		{"left associative or", "A | B | C", Or(Or(Word("A"), Word("B")), Word("C"))},
		{"group", "(Europe)", Group(Word("Europe"))},
		{
			"nested",
			"(Europe | Asia) & !Africa",
			And(Group(Or(Word("Europe"), Word("Asia"))), Not(Word("Africa"))),
		},
		{"not group", "!(A | B)", Not(Group(Or(Word("A"), Word("B"))))},
		{"space after bang", "! A", Not(Word("A"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		kind    error
		pos     int
	}{
		{"empty", "", ErrEmptyPattern, 0},
		{"only spaces", "   ", ErrEmptyPattern, 0},
		{"unclosed group", "(Europe", ErrMissingCloseParen, 7},
		{"trailing garbage", "Europe $", ErrUnexpectedCharacter, 7},
		{"dangling and", "Europe &", ErrExpectedWord, 8},
		{"dangling or", "Europe |", ErrExpectedWord, 8},
		{"bad factor", "$Europe", ErrExpectedWord, 0},
		{"stray close", "Europe)", ErrUnexpectedCharacter, 6},
		{"empty group", "()", ErrExpectedWord, 1},
		{"bare bang", "!", ErrExpectedWord, 1},
		{"two words", "Europe Asia", ErrUnexpectedCharacter, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.pattern)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.pos, pe.Pos)
		})
	}
}

func TestParse_UnexpectedCharacterMessage(t *testing.T) {
	_, err := Parse("Europe $")
	require.Error(t, err)
	assert.Equal(t, "unexpected character '$' at position 7", err.Error())
}

func TestParse_NestingLimit(t *testing.T) {
	deep := strings.Repeat("(", maxNesting+1) + "a" + strings.Repeat(")", maxNesting+1)
	_, err := Parse(deep)
	assert.ErrorIs(t, err, ErrNestingTooDeep)

	ok := strings.Repeat("!", maxNesting) + "a"
	_, err = Parse(ok)
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	assert.True(t, Validate("Europe & Asia"))
	assert.True(t, Validate("(a|b)&!c*@"))
	assert.False(t, Validate(""))
	assert.False(t, Validate("(Europe"))
	assert.False(t, Validate("Europe $"))
	assert.False(t, Validate("Europe &"))
}
