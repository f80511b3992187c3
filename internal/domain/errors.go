package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyInput is returned when a source has no header row.
	ErrEmptyInput = errors.New("input has no header row")

	// ErrMissingDate marks a null date cell.
	ErrMissingDate = errors.New("date is missing")
)

// ReadError reports an input that is missing, unreadable, or malformed.
// Line is zero when the failure is not tied to a record.
type ReadError struct {
	Path string
	Line int
	Err  error
}

func (e *ReadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("read %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// SchemaError reports source columns that the column mapping expects but the
// input header lacks.
type SchemaError struct {
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema %s: missing columns: %s", e.Path, strings.Join(e.Missing, ", "))
}

// DateParseError reports a date cell that does not match the configured layout.
type DateParseError struct {
	Path  string
	Line  int
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("parse date %s: line %d: %q: %v", e.Path, e.Line, e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }

// WriteError reports an output path that cannot be created or written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
