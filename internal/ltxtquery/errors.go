package ltxtquery

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPattern        = errors.New("empty ltxtquery pattern")
	ErrUnexpectedCharacter = errors.New("unexpected character")
	ErrMissingCloseParen   = errors.New("missing closing parenthesis")
	ErrExpectedWord        = errors.New("expected word")
	ErrNestingTooDeep      = errors.New("pattern nesting too deep")
)

// ParseError reports where and why a pattern failed to parse. Kind is one of
// the package sentinel errors, so callers can branch with errors.Is.
type ParseError struct {
	Kind error
	Char byte
	Pos  int
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrEmptyPattern:
		return e.Kind.Error()
	case ErrUnexpectedCharacter:
		return fmt.Sprintf("unexpected character '%c' at position %d", e.Char, e.Pos)
	default:
		return fmt.Sprintf("%s at position %d", e.Kind, e.Pos)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}
