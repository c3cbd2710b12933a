// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseAll(t *testing.T, data string) ([]string, []*Table) {
	t.Helper()
	r := NewReader(strings.NewReader(data), "test")
	var names []string
	var tables []*Table
	for r.Scan() {
		names = append(names, r.TableName())
		tables = append(tables, r.Table())
	}
	require.NoError(t, r.Err())
	return names, tables
}

func TestReaderSections(t *testing.T) {
	names, tables := parseAll(t, `
# produced by the detector simulation
generator: falaise
table: SimValidation
energy   time  hit
1.5      10    true
2.5      -     false

table: other
x
1
2
3
`)
	require.Equal(t, []string{"SimValidation", "other"}, names)

	sv := tables[0]
	assert.Equal(t, []string{"energy", "time", "hit"}, sv.FieldNames())
	assert.Equal(t, 2, sv.TotalRecordCount())
	assert.Equal(t, "falaise", sv.Meta["generator"])

	s, err := sv.ReadField("time")
	require.NoError(t, err)
	assert.Equal(t, []float64{10}, s.Values, "absent samples are left out")
	s, err = sv.ReadField("hit")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, s.Values)

	assert.Equal(t, 3, tables[1].TotalRecordCount())
}

func TestReaderUnnamedSection(t *testing.T) {
	names, tables := parseAll(t, "a b\n1 2\n3 4\n")
	require.Equal(t, []string{""}, names)
	assert.Equal(t, 2, tables[0].TotalRecordCount())

	// A file with nothing but comments has no tables.
	names, _ = parseAll(t, "# empty\n\n")
	assert.Empty(t, names)

	// A named section with no lines is an empty table.
	names, tables = parseAll(t, "table: empty\n")
	require.Equal(t, []string{"empty"}, names)
	assert.Empty(t, tables[0].FieldNames())
	assert.Zero(t, tables[0].TotalRecordCount())
}

func TestReaderSyntaxErrors(t *testing.T) {
	check := func(data string, line int, msg string) {
		t.Helper()
		r := NewReader(strings.NewReader(data), "in.txt")
		for r.Scan() {
		}
		var se *SyntaxError
		if !errors.As(r.Err(), &se) {
			t.Fatalf("want *SyntaxError, got %v", r.Err())
		}
		assert.Equal(t, "in.txt", se.FileName)
		assert.Equal(t, line, se.Line)
		assert.Contains(t, se.Msg, msg)
	}
	check("a b\n1 2\n3\n", 3, "record has 1 values, want 2")
	check("a b\n1 x\n", 2, `parsing b: invalid number "x"`)
	check("\n\na a\n", 3, "duplicate field a")
}

func TestReaderNaN(t *testing.T) {
	_, tables := parseAll(t, "v\nNaN\n1\n")
	s, err := tables[0].ReadField("v")
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, s.Values)
	assert.Equal(t, 2, tables[0].TotalRecordCount())
}

func TestParseKeyValueLine(t *testing.T) {
	check := func(line, wantKey, wantVal string, wantOK bool) {
		t.Helper()
		k, v, ok := parseKeyValueLine([]byte(line))
		if ok != wantOK || (ok && (string(k) != wantKey || string(v) != wantVal)) {
			t.Errorf("parseKeyValueLine(%q) = %q, %q, %v; want %q, %q, %v", line, k, v, ok, wantKey, wantVal, wantOK)
		}
	}
	check("table: SimValidation", "table", "SimValidation", true)
	check("key:", "key", "", true)
	check("key:value", "", "", false)
	check("Key: value", "", "", false)
	check("energy time", "", "", false)
	check("1.5 2", "", "", false)
}

func TestTable(t *testing.T) {
	tab := NewTable("t", "x", "w", "x")
	assert.Equal(t, []string{"x", "w"}, tab.FieldNames())
	require.NoError(t, tab.Append(1, 2))
	require.NoError(t, tab.Append(math.NaN(), 3))
	require.NoError(t, tab.Append(4, math.NaN()))
	require.NoError(t, tab.Append(5, 0.5))
	assert.Error(t, tab.Append(1))

	s, err := tab.ReadWeighted("x", "w")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 5}, s.Values)
	assert.Equal(t, []float64{2, 0.5}, s.Weights)
	assert.Equal(t, 4, tab.TotalRecordCount())

	_, err = tab.ReadField("y")
	assert.ErrorIs(t, err, ErrNoField)
	_, err = tab.ReadWeighted("x", "y")
	assert.ErrorIs(t, err, ErrNoField)
	assert.True(t, tab.HasField("w"))
	assert.False(t, tab.HasField("y"))
}
