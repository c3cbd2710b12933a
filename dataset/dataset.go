// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dataset reads tabular simulation output as named numeric
// fields.
//
// A dataset is one table of records. Each numeric column of the table
// is a field, and reading a field yields the field's samples in record
// order. Datasets can be read from the simval text format, CSV, TSV,
// XLSX, JSON and JSON Lines files, optionally compressed with gzip,
// bzip2 or xz. See Open.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
)

// DefaultTable is the table read when Options does not name one.
const DefaultTable = "SimValidation"

var (
	// ErrNotFound is returned by Open when no file matches the
	// locator. It wraps fs.ErrNotExist.
	ErrNotFound = fmt.Errorf("dataset not found: %w", fs.ErrNotExist)

	// ErrNoTable is returned when the requested table is absent.
	ErrNoTable = errors.New("table not found")

	// ErrNoField is returned when reading a field the dataset does
	// not have.
	ErrNoField = errors.New("field not found")
)

// SyntaxError represents a syntax error on a particular line of a
// dataset file. Line is 0 if the error is not tied to a line.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (s *SyntaxError) Error() string {
	if s.Line == 0 {
		return fmt.Sprintf("%s: %s", s.FileName, s.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", s.FileName, s.Line, s.Msg)
}

// Series is the samples of one field. Weights is nil if every sample
// has weight 1, and otherwise has the same length as Values.
type Series struct {
	Name    string
	Values  []float64
	Weights []float64
}

// Len returns the number of samples in s.
func (s Series) Len() int {
	return len(s.Values)
}

// A Dataset is a read-only table of numeric fields.
type Dataset interface {
	// Name returns a description of where the dataset came from.
	Name() string

	// FieldNames returns the names of the numeric fields, in
	// column order.
	FieldNames() []string

	// HasField reports whether the dataset has field name.
	HasField(name string) bool

	// ReadField returns the samples of field name. Records where
	// the field is absent are left out.
	ReadField(name string) (Series, error)

	// ReadWeighted returns the samples of field name, weighted by
	// field weight. Records where either is absent are left out.
	ReadWeighted(name, weight string) (Series, error)

	// TotalRecordCount returns the number of records in the
	// table, including records where some fields are absent.
	TotalRecordCount() int
}

// Options controls how Open reads a dataset.
type Options struct {
	// Table is the name of the table to read. If empty,
	// DefaultTable is used.
	Table string
}

func (o Options) table() string {
	if o.Table == "" {
		return DefaultTable
	}
	return o.Table
}

// Table is an in-memory Dataset. Absent samples are stored as NaN.
type Table struct {
	name   string
	fields []string
	cols   map[string][]float64
	n      int

	// Meta holds the file-level "key: value" lines of a text
	// dataset.
	Meta map[string]string
}

// NewTable returns an empty table with the given fields.
func NewTable(name string, fields ...string) *Table {
	t := &Table{name: name, cols: make(map[string][]float64)}
	for _, f := range fields {
		if _, ok := t.cols[f]; ok {
			continue
		}
		t.fields = append(t.fields, f)
		t.cols[f] = nil
	}
	return t
}

// Append adds one record to t. record must have one value per field,
// in field order; NaN marks an absent sample.
func (t *Table) Append(record ...float64) error {
	if len(record) != len(t.fields) {
		return fmt.Errorf("record has %d values, table %s has %d fields", len(record), t.name, len(t.fields))
	}
	for i, f := range t.fields {
		t.cols[f] = append(t.cols[f], record[i])
	}
	t.n++
	return nil
}

// Name returns the name t was created with.
func (t *Table) Name() string { return t.name }

// FieldNames returns a copy of t's field names.
func (t *Table) FieldNames() []string {
	return append([]string(nil), t.fields...)
}

// HasField reports whether t has field name.
func (t *Table) HasField(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// TotalRecordCount returns the number of records in t.
func (t *Table) TotalRecordCount() int { return t.n }

// ReadField returns the present samples of field name.
func (t *Table) ReadField(name string) (Series, error) {
	col, ok := t.cols[name]
	if !ok {
		return Series{}, fmt.Errorf("%s: %w: %s", t.name, ErrNoField, name)
	}
	s := Series{Name: name, Values: make([]float64, 0, len(col))}
	for _, v := range col {
		if !math.IsNaN(v) {
			s.Values = append(s.Values, v)
		}
	}
	return s, nil
}

// ReadWeighted returns the samples of field name weighted by field
// weight.
func (t *Table) ReadWeighted(name, weight string) (Series, error) {
	col, ok := t.cols[name]
	if !ok {
		return Series{}, fmt.Errorf("%s: %w: %s", t.name, ErrNoField, name)
	}
	wcol, ok := t.cols[weight]
	if !ok {
		return Series{}, fmt.Errorf("%s: %w: weight %s", t.name, ErrNoField, weight)
	}
	s := Series{Name: name, Values: make([]float64, 0, len(col)), Weights: make([]float64, 0, len(col))}
	for i, v := range col {
		if math.IsNaN(v) || math.IsNaN(wcol[i]) {
			continue
		}
		s.Values = append(s.Values, v)
		s.Weights = append(s.Weights, wcol[i])
	}
	return s, nil
}

// concat appends the records of u to t. u must have every field of
// t; fields only u has are dropped.
func (t *Table) concat(u *Table) error {
	for _, f := range t.fields {
		if !u.HasField(f) {
			return fmt.Errorf("%s: %w: %s (present in %s)", u.name, ErrNoField, f, t.name)
		}
	}
	for _, f := range t.fields {
		t.cols[f] = append(t.cols[f], u.cols[f]...)
	}
	t.n += u.n
	return nil
}
