// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// A Reader reads the simval text format.
//
// A text dataset is a sequence of lines. Blank lines and lines
// beginning with "#" are ignored. A line of the form "key: value",
// where key begins with a lower case letter and contains no spaces or
// upper case letters, is a configuration line. The configuration line
// "table: <name>" begins a table section; every other configuration
// line is recorded in the Meta of the tables that follow it.
//
// Within a section, the first other line lists the field names,
// separated by white space, and each following line is one record
// with one value per field. A value is a floating point number,
// "true" or "false", or "-" for an absent sample.
//
// Lines before the first "table:" line form an unnamed section.
//
// Its API is modeled on bufio.Scanner.
type Reader struct {
	s        *bufio.Scanner
	fileName string
	lineNum  int
	err      error

	meta map[string]string

	// cur is the name of the section returned by the last Scan.
	cur   string
	table *Table

	// next is the name of the section that begins after the
	// current one, if any.
	next    string
	hasNext bool
	done    bool
}

const maxLine = 16 << 20

// NewReader constructs a reader to parse the simval text format from
// r. fileName is used in error messages and as the name of the tables
// read.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input. This
// also resets all configuration values.
func (r *Reader) Reset(ior io.Reader, fileName string) {
	r.s = bufio.NewScanner(ior)
	r.s.Buffer(nil, maxLine)
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.fileName = fileName
	r.lineNum = 0
	r.err = nil
	r.meta = make(map[string]string)
	r.cur, r.table = "", nil
	r.next, r.hasNext, r.done = "", false, false
}

// Scan advances the reader to the next table section and returns true
// if one was read. The caller should use the Table method to get the
// table. If an I/O or syntax error occurs, or this reaches the end of
// the file, it returns false and the caller should use the Err method
// to check for errors.
func (r *Reader) Scan() bool {
	if r.err != nil || r.done {
		return false
	}

	name, started := r.next, r.hasNext
	r.hasNext = false
	var t *Table
	emit := func() bool {
		if t == nil {
			t = NewTable(r.fileName)
		}
		t.Meta = make(map[string]string, len(r.meta))
		for k, v := range r.meta {
			t.Meta[k] = v
		}
		r.cur, r.table = name, t
		return true
	}

	for r.s.Scan() {
		r.lineNum++
		line := bytes.TrimSpace(r.s.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if key, val, ok := parseKeyValueLine(line); ok {
			if string(key) != "table" {
				r.meta[string(key)] = string(val)
				continue
			}
			if t == nil && !started {
				// Nothing in the unnamed section.
				name, started = string(val), true
				continue
			}
			r.next, r.hasNext = string(val), true
			return emit()
		}

		if t == nil {
			fields := strings.Fields(string(line))
			seen := make(map[string]bool)
			for _, f := range fields {
				if seen[f] {
					r.err = &SyntaxError{r.fileName, r.lineNum, "duplicate field " + f}
					return false
				}
				seen[f] = true
			}
			t = NewTable(r.fileName, fields...)
			continue
		}
		if err := r.parseRecord(t, line); err != nil {
			r.err = err
			return false
		}
	}

	if err := r.s.Err(); err != nil {
		r.err = fmt.Errorf("%s:%d: %w", r.fileName, r.lineNum, err)
		return false
	}
	r.done = true
	if t == nil && !started {
		return false
	}
	return emit()
}

// parseRecord parses line as a record of t.
func (r *Reader) parseRecord(t *Table, line []byte) error {
	cells := strings.Fields(string(line))
	fields := t.FieldNames()
	if len(cells) != len(fields) {
		return &SyntaxError{r.fileName, r.lineNum, fmt.Sprintf("record has %d values, want %d", len(cells), len(fields))}
	}
	rec := make([]float64, len(cells))
	for i, cell := range cells {
		if cell == "-" {
			rec[i] = math.NaN()
			continue
		}
		v, ok := parseCell(cell)
		if !ok {
			return &SyntaxError{r.fileName, r.lineNum, fmt.Sprintf("parsing %s: invalid number %q", fields[i], cell)}
		}
		rec[i] = v
	}
	return t.Append(rec...)
}

// parseKeyValueLine attempts to parse line as a key: value pair. ok
// indicates whether the line could be parsed.
func parseKeyValueLine(line []byte) (key, val []byte, ok bool) {
	for i := 0; i < len(line); {
		r, n := utf8.DecodeRune(line[i:])
		// key begins with a lower case character ...
		if i == 0 && !unicode.IsLower(r) {
			return
		}
		// and contains no space characters nor upper case
		// characters.
		if unicode.IsSpace(r) || unicode.IsUpper(r) {
			return
		}
		if i > 0 && r == ':' {
			key = line[:i]
			val = line[i+1:]
			break
		}

		i += n
	}
	if len(key) == 0 {
		return
	}
	// Value can be omitted entirely, in which case the colon must
	// still be present.
	if len(val) == 0 {
		ok = true
		return
	}
	// One or more ASCII space or tab characters separate "key:"
	// from "value."
	for len(val) > 0 && (val[0] == ' ' || val[0] == '\t') {
		val = val[1:]
		ok = true
	}
	return
}

// Table returns the table read by the last call to Scan.
func (r *Reader) Table() *Table {
	return r.table
}

// TableName returns the section name of the table read by the last
// call to Scan. It is "" for the unnamed section.
func (r *Reader) TableName() string {
	return r.cur
}

// Err returns the first error encountered by the Reader.
func (r *Reader) Err() error {
	return r.err
}
