package parser

import (
	"errors"
	"fmt"

	"github.com/transitfeed/pkg/gtfs/models"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrMissingValue  = errors.New("missing required value")
	ErrInvalidRange  = errors.New("start date after end date")
)

// DecodeError identifies the table, line and column of a row that could not
// be mapped to its schema. Line is 1-based and counts the header.
type DecodeError struct {
	Table  models.Table
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s:%d: %s: %v", e.Table, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("%s:%d: %s %q: %v", e.Table, e.Line, e.Column, e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
