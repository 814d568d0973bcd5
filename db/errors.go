package db

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for unknown workflow, unit or master-data ids.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateIdentity is returned when a serial number or MAC address
	// collides with one already carried by an active unit.
	ErrDuplicateIdentity = errors.New("duplicate identity")
	// ErrInsufficientStock is returned when fewer units are available than a
	// workflow line requested, after allocation retries are exhausted.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStaleState means a transition's expected-current-state check failed
	// because a concurrent writer already moved the unit. The allocation
	// coordinator retries it internally; callers normally never see it.
	ErrStaleState = errors.New("stale unit state")
	// ErrStateConflict is returned when a workflow record is already in a
	// terminal or incompatible status for the requested operation.
	ErrStateConflict = errors.New("workflow state conflict")
)

// ValidationError marks missing or invalid input, including references to
// unknown or inactive master data.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
