package query

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedCapability is returned by array-batch operators on
	// backends without native set support. Check SupportsArrayOperators first.
	ErrUnsupportedCapability = errors.New("unsupported capability")

	// ErrUnsupportedDriver is returned when no adapter tier exists for a driver.
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrNativeFilter is returned when a backend-only filter reaches a store
	// that evaluates filters in-process.
	ErrNativeFilter = errors.New("filter requires native backend support")
)

// UnsupportedCapabilityError names the operation that was refused and the
// backend it was refused on.
type UnsupportedCapabilityError struct {
	Operation string
	Driver    string
}

func (e *UnsupportedCapabilityError) Error() string {
	return fmt.Sprintf("%s requires PostgreSQL with the ltree extension; current driver: %s; "+
		"use SupportsArrayOperators() before calling array operators", e.Operation, e.Driver)
}

func (e *UnsupportedCapabilityError) Unwrap() error { return ErrUnsupportedCapability }

func unsupported(op, driver string) error {
	return &UnsupportedCapabilityError{Operation: op, Driver: driver}
}
