package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/transitfeed/pkg/gtfs/models"
)

// row reads typed values out of one CSV record. The first failure is kept in
// err and later reads become no-ops.
type row struct {
	table     models.Table
	line      int
	record    []string
	headerMap map[string]int
	err       error
}

func (r *row) fail(column, value string, err error) {
	if r.err != nil {
		return
	}
	r.err = &DecodeError{Table: r.table, Line: r.line, Column: column, Value: value, Err: err}
}

// getString returns the trimmed field, or "" if the column is absent.
func (r *row) getString(field string) string {
	if idx, ok := r.headerMap[field]; ok && idx < len(r.record) {
		return strings.TrimSpace(r.record[idx])
	}
	return ""
}

func (r *row) required(field string) string {
	s := r.getString(field)
	if s == "" {
		r.fail(field, "", ErrMissingValue)
	}
	return s
}

func (r *row) requiredInt(field string) int {
	s := r.required(field)
	if s == "" || r.err != nil {
		return 0
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		r.fail(field, s, err)
	}
	return val
}

func (r *row) optionalInt(field string) *int {
	s := r.getString(field)
	if s == "" {
		return nil
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		r.fail(field, s, err)
		return nil
	}
	return &val
}

func (r *row) requiredFloat(field string) float64 {
	s := r.required(field)
	if s == "" || r.err != nil {
		return 0
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(field, s, err)
	}
	return val
}

func (r *row) optionalFloat(field string) *float64 {
	s := r.getString(field)
	if s == "" {
		return nil
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(field, s, err)
		return nil
	}
	return &val
}

// flag reads a 0/1 weekday column.
func (r *row) flag(field string) bool {
	s := r.required(field)
	switch s {
	case "1":
		return true
	case "0", "":
		return false
	}
	r.fail(field, s, models.ErrUnknownCode)
	return false
}

func (r *row) requiredDate(field string) time.Time {
	s := r.required(field)
	if s == "" || r.err != nil {
		return time.Time{}
	}
	t, err := models.ParseDate(s)
	if err != nil {
		r.fail(field, s, err)
	}
	return t
}

func (r *row) optionalDate(field string) *time.Time {
	s := r.getString(field)
	if s == "" {
		return nil
	}
	t, err := models.ParseDate(s)
	if err != nil {
		r.fail(field, s, err)
		return nil
	}
	return &t
}

// enum decodes field with parse, recording the failure against the column.
func enum[T any](r *row, field string, parse func(string) (T, error)) T {
	s := r.getString(field)
	v, err := parse(s)
	if err != nil {
		r.fail(field, s, err)
	}
	return v
}
