// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Stdin is the reader Open uses for the locator "-".
var Stdin io.Reader = os.Stdin

// Open opens the dataset named by locator and reads the table
// opts.Table from it.
//
// locator is a file path, "-" for standard input in the text format,
// or a glob pattern (which may use "**"). The tables of all files
// matching a pattern are concatenated in sorted path order. The
// fields of the result are the fields of the first file, and every
// later file must have them.
//
// The file format is chosen by DetectFormat.
func Open(locator string, opts Options) (Dataset, error) {
	table := opts.table()
	if locator == "-" {
		r, err := decompress(Stdin, CompressionNone)
		if err != nil {
			return nil, fmt.Errorf("<stdin>: %w", err)
		}
		t, err := readText(r, "<stdin>", table)
		if err != nil {
			return nil, err
		}
		t.name = "<stdin>"
		return t, nil
	}

	paths, err := expand(locator)
	if err != nil {
		return nil, err
	}
	var out *Table
	for _, path := range paths {
		t, err := openFile(path, table)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = t
			continue
		}
		if err := out.concat(t); err != nil {
			return nil, err
		}
	}
	out.name = locator
	return out, nil
}

// expand returns the files named by locator.
func expand(locator string) ([]string, error) {
	if !isGlob(locator) {
		if _, err := os.Stat(locator); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, locator)
			}
			return nil, err
		}
		return []string{locator}, nil
	}
	paths, err := doublestar.FilepathGlob(locator, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", locator, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files match %s", ErrNotFound, locator)
	}
	sort.Strings(paths)
	return paths, nil
}

func isGlob(locator string) bool {
	return strings.ContainsAny(locator, "*?[{")
}

// openFile reads table from the file at path.
func openFile(path string, table string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	format, c := DetectFormat(path)
	r, err := decompress(f, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if rc, ok := r.(io.Closer); ok {
		defer rc.Close()
	}
	return readTable(r, path, format, table)
}
