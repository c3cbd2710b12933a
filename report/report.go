// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report drives the field-by-field comparison of a candidate
// dataset with a reference dataset and writes the text report.
package report

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/SuperNEMO-DBD/SimulationValidationTool/dataset"
	"github.com/SuperNEMO-DBD/SimulationValidationTool/fieldfilter"
	"github.com/SuperNEMO-DBD/SimulationValidationTool/histcmp"
	"github.com/SuperNEMO-DBD/SimulationValidationTool/histo"
)

// A Driver compares every selected field of Cand with the same field
// of Ref.
type Driver struct {
	Cand dataset.Dataset

	// Ref is the reference dataset. If nil, the report describes
	// the candidate fields without comparing them.
	Ref dataset.Dataset

	// BinSpec returns the binning of a field. If nil, every field
	// uses histo.DefaultBinSpec.
	BinSpec func(field string) (histo.BinSpec, error)

	// WeightField, if set, names the field holding per-record
	// weights in both datasets. It is not compared itself.
	WeightField string

	// Filter selects the fields to compare. If nil, every field is
	// compared.
	Filter *fieldfilter.Filter

	// Workers is the number of fields compared at once. Values
	// below 1 mean 1. Blocks are written in field order regardless.
	Workers int

	// Log receives progress messages. It may be nil.
	Log *log.Logger
}

// Summary counts the outcomes of a run.
type Summary struct {
	Compared int // Fields with a verdict
	Passed   int
	Failed   int
	Skipped  int // Fields with a warning and no verdict
}

func (s Summary) String() string {
	return fmt.Sprintf("Summary: compared %d, passed %d, failed %d, skipped %d", s.Compared, s.Passed, s.Failed, s.Skipped)
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomePassed
	outcomeFailed
	outcomeDescribed
)

// fieldResult is the rendered block of one field.
type fieldResult struct {
	done    bool
	outcome outcome
	text    []byte
}

// Fields returns the fields d compares, in candidate order.
func (d *Driver) Fields() []string {
	var fields []string
	for _, f := range d.Filter.Apply(d.Cand.FieldNames()) {
		if d.WeightField != "" && f == d.WeightField {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

// Run compares every field and writes the report to w. Cancelling ctx
// stops starting new fields; the blocks of fields already compared
// are still written.
func (d *Driver) Run(ctx context.Context, w io.Writer) (Summary, error) {
	fields := d.Fields()
	workers := d.Workers
	if workers < 1 {
		workers = 1
	}
	d.logf("report: comparing %d fields of %s with %d workers", len(fields), d.Cand.Name(), workers)

	var nref int
	if d.Ref != nil {
		nref = d.Ref.TotalRecordCount()
	}
	n := d.Cand.TotalRecordCount()

	results := make([]fieldResult, len(fields))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range fields {
		if gctx.Err() != nil {
			break
		}
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = d.field(name, n, nref)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	bw := bufio.NewWriter(w)
	if d.Ref == nil {
		fmt.Fprintf(bw, "WARNING: no valid reference; reporting candidate statistics only\n")
	}
	fmt.Fprintf(bw, "\nStatistics on fields\n\n")
	var sum Summary
	for _, r := range results {
		if !r.done {
			continue
		}
		bw.Write(r.text)
		switch r.outcome {
		case outcomePassed:
			sum.Compared++
			sum.Passed++
		case outcomeFailed:
			sum.Compared++
			sum.Failed++
		case outcomeSkipped, outcomeDescribed:
			sum.Skipped++
		}
	}
	fmt.Fprintf(bw, "%s\n", sum)
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	return sum, err
}

// field compares one field and renders its block.
func (d *Driver) field(name string, n, nref int) fieldResult {
	var buf bytes.Buffer
	res := fieldResult{done: true}
	skip := func(format string, args ...interface{}) fieldResult {
		fmt.Fprintf(&buf, format, args...)
		res.outcome, res.text = outcomeSkipped, buf.Bytes()
		return res
	}

	if d.Ref != nil && !d.Ref.HasField(name) {
		return skip("WARNING: field %s not found in reference. No comparison statistics will be made for this field\n", name)
	}
	spec := histo.DefaultBinSpec()
	if d.BinSpec != nil {
		var err error
		if spec, err = d.BinSpec(name); err != nil {
			return skip("WARNING: field %s: %v\n", name, err)
		}
	}
	if spec.Title == "" {
		spec.Title = FieldTitle(name)
	}
	cand, err := d.read(d.Cand, name)
	if err != nil {
		return skip("WARNING: field %s: %v\n", name, err)
	}

	if d.Ref == nil {
		h, err := histo.Bin(spec, cand.Values, cand.Weights)
		if err != nil {
			return skip("WARNING: field %s: %v\n", name, err)
		}
		writeCandidateOnly(&buf, name, h, cand.Values)
		res.outcome, res.text = outcomeDescribed, buf.Bytes()
		return res
	}

	ref, err := d.read(d.Ref, name)
	if err != nil {
		return skip("WARNING: field %s: %v\n", name, err)
	}
	c, err := histcmp.CompareField(name, cand, ref, n, nref, spec)
	if err != nil {
		return skip("WARNING: field %s: %v\n", name, err)
	}
	writeComparison(&buf, c)
	res.outcome = outcomePassed
	if !c.Verdict.Passed {
		res.outcome = outcomeFailed
	}
	res.text = buf.Bytes()
	d.logf("report: %s: %d rules failed", name, len(c.Verdict.Failed()))
	return res
}

func (d *Driver) read(ds dataset.Dataset, name string) (dataset.Series, error) {
	if d.WeightField == "" {
		return ds.ReadField(name)
	}
	return ds.ReadWeighted(name, d.WeightField)
}

func (d *Driver) logf(format string, args ...interface{}) {
	if d.Log != nil {
		d.Log.Printf(format, args...)
	}
}
