// Package apperr defines the error taxonomy surfaced by the core operations.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed field on a single entity or row.
// Ingestion records these per row and keeps going; single-entity operations
// reject synchronously.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown entity identifier.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError reports a duplicate row detected during ingestion. Callers
// treat it as a counted outcome, not a failure.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Reason)
}

// ConsistencyError reports a multi-step mutation that was aborted partway.
// It must never be swallowed.
type ConsistencyError struct {
	Operation string
	Err       error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency violation in %s: %v", e.Operation, e.Err)
}

func (e *ConsistencyError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
