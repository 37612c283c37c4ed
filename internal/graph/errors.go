package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSelfReference rejects a relationship whose parent and child are the same label.
	ErrSelfReference = errors.New("cannot create self-referential relationship")
	// ErrCycleDetected rejects a relationship that would close a cycle.
	ErrCycleDetected = errors.New("creating this relationship would form a cycle")
	// ErrRoutesInUse blocks a deletion that would orphan attached routes.
	ErrRoutesInUse = errors.New("routes in use")
	// ErrInvalidRoute reports a path that does not resolve to a materialized route.
	ErrInvalidRoute = errors.New("invalid route")
	// ErrNotFound reports a missing label, relationship or route.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateSlug rejects a label whose slug is already taken.
	ErrDuplicateSlug = errors.New("duplicate slug")
	// ErrInvalidSlug rejects a slug outside [a-z0-9_-].
	ErrInvalidSlug = errors.New("invalid slug")
	// ErrDuplicateRelationship rejects a second edge between the same labels.
	ErrDuplicateRelationship = errors.New("duplicate relationship")
	// ErrPathTooDeep stops path enumeration past the configured depth bound.
	ErrPathTooDeep = errors.New("path exceeds maximum depth")
	// ErrUnknownLabel reports a relationship endpoint with no label.
	ErrUnknownLabel = errors.New("unknown label")
	// ErrReadOnly is returned by write operations inside View.
	ErrReadOnly = errors.New("read-only transaction")
)

// RoutesInUseError carries the attachment count and the routes that would be
// orphaned by a blocked deletion.
type RoutesInUseError struct {
	Count int
	Paths []string
}

func (e *RoutesInUseError) Error() string {
	return fmt.Sprintf("cannot delete: %d attachments exist on routes: %s",
		e.Count, strings.Join(e.Paths, ", "))
}

func (e *RoutesInUseError) Unwrap() error { return ErrRoutesInUse }
