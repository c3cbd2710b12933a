// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
)

// Format is the syntax of a dataset file.
type Format int

const (
	FormatText Format = iota
	FormatCSV
	FormatTSV
	FormatXLSX
	FormatJSON
	FormatJSONLines
)

// DetectFormat returns the format and compression of the file at
// path, from its extension. Compression not named by the extension
// is detected from the file contents when it is read.
func DetectFormat(path string) (Format, Compression) {
	inner, c := splitCompression(path)
	switch strings.ToLower(filepath.Ext(inner)) {
	case ".csv":
		return FormatCSV, c
	case ".tsv":
		return FormatTSV, c
	case ".xlsx":
		return FormatXLSX, c
	case ".json":
		return FormatJSON, c
	case ".jsonl", ".ndjson":
		return FormatJSONLines, c
	}
	return FormatText, c
}

// readTable reads the table named table in format f from r.
func readTable(r io.Reader, name string, f Format, table string) (*Table, error) {
	switch f {
	case FormatCSV:
		return readDelimited(r, name, ',')
	case FormatTSV:
		return readDelimited(r, name, '\t')
	case FormatXLSX:
		return readXLSX(r, name, table)
	case FormatJSON:
		return readJSON(r, name, table)
	case FormatJSONLines:
		return readJSONLines(r, name)
	}
	return readText(r, name, table)
}

// readText reads the text format. Sections named table are
// concatenated. A file without any named section is one table,
// whatever table is requested.
func readText(r io.Reader, name string, table string) (*Table, error) {
	var out, unnamed *Table
	named := false
	tr := NewReader(r, name)
	for tr.Scan() {
		t := tr.Table()
		switch tr.TableName() {
		case "":
			unnamed = t
			continue
		case table:
			if out == nil {
				out = t
			} else if err := out.concat(t); err != nil {
				return nil, err
			}
		}
		named = true
	}
	if err := tr.Err(); err != nil {
		return nil, err
	}
	if out != nil {
		return out, nil
	}
	if !named && unnamed != nil {
		return unnamed, nil
	}
	return nil, fmt.Errorf("%s: %w: %s", name, ErrNoTable, table)
}

// readDelimited reads a CSV or TSV file with a header row.
func readDelimited(r io.Reader, name string, comma rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = comma != '\t'
	cr.ReuseRecord = true

	b := newBuilder(name)
	var cols []int
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &SyntaxError{name, pe.Line, pe.Err.Error()}
			}
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if cols == nil {
			cols = b.header(rec)
			continue
		}
		b.addColumns(cols, rec)
	}
	if cols == nil {
		return nil, &SyntaxError{name, 0, "missing header row"}
	}
	return b.table(), nil
}

// readXLSX reads the sheet named table. The first row of the sheet is
// the header.
func readXLSX(r io.Reader, name string, table string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer f.Close()

	found := false
	for _, s := range f.GetSheetList() {
		if s == table {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%s: %w: %s", name, ErrNoTable, table)
	}
	rows, err := f.GetRows(table)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, &SyntaxError{name, 0, "sheet " + table + " has no header row"}
	}
	b := newBuilder(name)
	cols := b.header(rows[0])
	for _, row := range rows[1:] {
		b.addColumns(cols, row)
	}
	return b.table(), nil
}

// readJSON reads {"<table>": [{field: value, ...}, ...]}.
func readJSON(r io.Reader, name string, table string) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, &SyntaxError{name, 0, "invalid JSON"}
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, &SyntaxError{name, 0, "top level is not an object"}
	}
	var records gjson.Result
	doc.ForEach(func(key, value gjson.Result) bool {
		if key.String() == table {
			records = value
			return false
		}
		return true
	})
	if !records.Exists() {
		return nil, fmt.Errorf("%s: %w: %s", name, ErrNoTable, table)
	}
	if !records.IsArray() {
		return nil, &SyntaxError{name, 0, "table " + table + " is not an array"}
	}

	b := newBuilder(name)
	var bad error
	records.ForEach(func(_, rec gjson.Result) bool {
		if !rec.IsObject() {
			bad = &SyntaxError{name, 0, fmt.Sprintf("record %d of %s is not an object", len(b.rows)+1, table)}
			return false
		}
		b.addObject(rec)
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return b.table(), nil
}

// readJSONLines reads one record object per line.
func readJSONLines(r io.Reader, name string) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	b := newBuilder(name)
	var bad error
	gjson.ForEachLine(string(data), func(rec gjson.Result) bool {
		if !rec.IsObject() {
			bad = &SyntaxError{name, len(b.rows) + 1, "record is not an object"}
			return false
		}
		b.addObject(rec)
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return b.table(), nil
}

// addObject adds a JSON object as a record.
func (b *builder) addObject(rec gjson.Result) {
	var row []string
	rec.ForEach(func(key, value gjson.Result) bool {
		i := b.field(key.String())
		for len(row) <= i {
			row = append(row, "")
		}
		row[i] = jsonCell(value)
		return true
	})
	b.add(row)
}

// jsonCell returns the cell text of a JSON value. Objects and arrays
// yield text that never parses as a number.
func jsonCell(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	case gjson.Number:
		return v.Raw
	case gjson.String:
		return v.Str
	}
	return v.Raw
}
