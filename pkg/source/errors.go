package source

import (
	"errors"
	"fmt"
)

// Static errors for event sources
var (
	ErrMalformedInput  = errors.New("malformed input")
	ErrColumnNotFound  = errors.New("column not found")
	ErrPathRequired    = errors.New("csv path is required")
	ErrInvalidComma    = errors.New("csv comma must be a single character")
	ErrClientRequired  = errors.New("clickhouse client is required")
	ErrInvalidTimeSpan = errors.New("from must be before to")
	// ErrNonexistentLocalTime is returned for a wall clock time skipped by a DST transition
	ErrNonexistentLocalTime = errors.New("local time does not exist in timezone")
)

// MalformedInputError reports a row whose timestamp could not be parsed
type MalformedInputError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input at line %d, column %q: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

// Unwrap exposes the parse error
func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Is matches ErrMalformedInput
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}
