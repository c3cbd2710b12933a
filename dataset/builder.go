// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"math"
	"strconv"
	"strings"
)

// A builder collects a table of text cells and converts the numeric
// columns into a Table.
type builder struct {
	name   string
	fields []string
	index  map[string]int
	rows   [][]string
}

func newBuilder(name string) *builder {
	return &builder{name: name, index: make(map[string]int)}
}

// field returns the column of field name, adding it if necessary.
func (b *builder) field(name string) int {
	if i, ok := b.index[name]; ok {
		return i
	}
	b.index[name] = len(b.fields)
	b.fields = append(b.fields, name)
	return len(b.fields) - 1
}

// header sets the column names from a header row. Blank names become
// "col<N>" and repeated names keep their first column.
func (b *builder) header(names []string) []int {
	cols := make([]int, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "col" + strconv.Itoa(i+1)
		}
		if _, dup := b.index[name]; dup {
			cols[i] = -1
			continue
		}
		cols[i] = b.field(name)
	}
	return cols
}

// add appends a record. row is indexed by field and may be shorter
// than the number of fields.
func (b *builder) add(row []string) {
	b.rows = append(b.rows, row)
}

// addColumns appends a record whose cells are laid out as in the
// header that returned cols. Cells past the header are dropped.
func (b *builder) addColumns(cols []int, cells []string) {
	row := make([]string, len(b.fields))
	for i, cell := range cells {
		if i < len(cols) && cols[i] >= 0 {
			row[cols[i]] = cell
		}
	}
	b.add(row)
}

// table converts the collected cells. A column is a field if every
// non-empty cell in it parses as a number.
func (b *builder) table() *Table {
	numeric := make([]bool, len(b.fields))
	for i := range numeric {
		numeric[i] = true
	}
	for _, row := range b.rows {
		for i, cell := range row {
			if i >= len(numeric) || !numeric[i] {
				continue
			}
			if _, ok := parseCell(cell); !ok {
				numeric[i] = false
			}
		}
	}

	var names []string
	for i, f := range b.fields {
		if numeric[i] {
			names = append(names, f)
		}
	}
	t := NewTable(b.name, names...)
	rec := make([]float64, 0, len(names))
	for _, row := range b.rows {
		rec = rec[:0]
		for i := range b.fields {
			if !numeric[i] {
				continue
			}
			v := math.NaN()
			if i < len(row) {
				v, _ = parseCell(row[i])
			}
			rec = append(rec, v)
		}
		t.Append(rec...)
	}
	return t
}

// parseCell parses one cell. An empty cell is an absent sample and
// yields NaN. ok is false if the cell is not a number.
func parseCell(cell string) (v float64, ok bool) {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "":
		return math.NaN(), true
	case "true":
		return 1, true
	case "false":
		return 0, true
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
