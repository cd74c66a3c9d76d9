package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingArtifact indicates an analysis was requested whose
	// prerequisite artifact or spec file is absent. This is a precondition
	// the caller must satisfy, surfaced as a message rather than a crash.
	ErrMissingArtifact = errors.New("required artifact or spec file missing")

	// ErrEmptyResult indicates an ingestion run completed but produced no
	// usable text files. It is a reported, recoverable outcome: blocked
	// downloads and unsupported formats are common and informative.
	ErrEmptyResult = errors.New("no usable text files produced")

	// ErrEmptyGroup indicates a grouped ratio was requested for a metadata
	// group containing zero documents.
	ErrEmptyGroup = errors.New("metadata group contains no documents")

	// ErrUnsupportedType indicates an unknown upload or converter type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSheetNameCollision indicates two tab-partition values truncate to
	// the same workbook sheet name.
	ErrSheetNameCollision = errors.New("workbook sheet name collision")
)

// IngestionError classifies any failure between staging and registration.
// The pipeline rolls back its staging directory and wraps the original
// cause; a failed run never produces a registry row.
type IngestionError struct {
	// Stage is the pipeline stage that failed (staged, metadata, converted,
	// normalized).
	Stage string

	// Err is the original cause.
	Err error
}

// Error implements the error interface.
func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the original cause.
func (e *IngestionError) Unwrap() error {
	return e.Err
}

// SkippableError marks a best-effort sub-step that is allowed to fail
// without aborting the larger operation. Callers treat it as "proceed
// without this enhancement".
type SkippableError struct {
	// Op names the skipped enhancement.
	Op string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *SkippableError) Error() string {
	return fmt.Sprintf("%s skipped: %v", e.Op, e.Err)
}

// Unwrap returns the underlying failure.
func (e *SkippableError) Unwrap() error {
	return e.Err
}

// Skippable wraps err as a SkippableError for op.
func Skippable(op string, err error) error {
	return &SkippableError{Op: op, Err: err}
}

// IsSkippable reports whether err is (or wraps) a SkippableError.
func IsSkippable(err error) bool {
	var se *SkippableError
	return errors.As(err, &se)
}
