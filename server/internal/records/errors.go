package records

import (
	"errors"
	"fmt"
)

// ErrMissingColumn matches any *MissingColumnError via errors.Is.
var ErrMissingColumn = errors.New("missing required column")

// errEmptyInput is wrapped in a ParseError when the input has no header row.
var errEmptyInput = errors.New("input is empty")

// ParseError reports input that could not be read as CSV.
type ParseError struct {
	// Line is the 1-based source line, or 0 when unknown.
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("records: parse csv: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("records: parse csv: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingColumnError reports a required column absent after header
// normalization.
type MissingColumnError struct {
	Column string
	// Available lists the normalized header names that were found.
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("records: input is missing required column %q", e.Column)
}

func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }

// TimeParseError reports a timestamp cell that could not be parsed.
type TimeParseError struct {
	Column string
	// Row is the 1-based data row (header excluded).
	Row   int
	Line  int
	Value string
	Err   error
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("records: column %q row %d (line %d): cannot parse timestamp %q: %v",
		e.Column, e.Row, e.Line, e.Value, e.Err)
}

func (e *TimeParseError) Unwrap() error { return e.Err }

// DerivationError reports a failure computing a row's duration or hardness.
type DerivationError struct {
	Row int
	Err error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("records: row %d: derive hardness: %v", e.Row, e.Err)
}

func (e *DerivationError) Unwrap() error { return e.Err }
