// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package histcmp compares the binned distributions of a candidate
// and a reference data series.
//
// A comparison bins the candidate series, bins the reference series
// on the candidate's binning, scales the reference to the candidate's
// entry count, and then computes summary statistics of both, a
// chi-squared and Kolmogorov agreement test, and a Verdict.
package histcmp

import (
	"fmt"

	"github.com/SuperNEMO-DBD/SimulationValidationTool/dataset"
	"github.com/SuperNEMO-DBD/SimulationValidationTool/histo"
)

// Comparison is the complete result of comparing one field.
type Comparison struct {
	Field string

	// Hist is the candidate histogram and Ref is the reference
	// histogram after normalization.
	Hist, Ref *histo.Histogram

	Stats, RefStats histo.Stats
	Agreement       Agreement
	Verdict         Verdict
}

// CompareField compares the candidate series cand with the reference
// series ref. n and nref are the total record counts of the candidate
// and reference datasets and determine the reference scale factor.
//
// The reference is binned on the candidate's resolved binning, so
// reference values outside the candidate's range are dropped.
func CompareField(name string, cand, ref dataset.Series, n, nref int, spec histo.BinSpec) (*Comparison, error) {
	h, err := histo.Bin(spec, cand.Values, cand.Weights)
	if err != nil {
		return nil, fmt.Errorf("binning %s: %w", name, err)
	}
	href := h.Reshaped()
	if ref.Weights != nil && len(ref.Weights) != len(ref.Values) {
		return nil, fmt.Errorf("binning reference %s: %w: %d weights for %d values",
			name, histo.ErrBadSpec, len(ref.Weights), len(ref.Values))
	}
	for i, x := range ref.Values {
		w := 1.0
		if ref.Weights != nil {
			w = ref.Weights[i]
		}
		href.Fill(x, w)
	}

	if err := histo.Normalize(href, n, nref); err != nil {
		return nil, fmt.Errorf("normalizing %s: %w", name, err)
	}

	a, err := Agree(h, href)
	if err != nil {
		return nil, fmt.Errorf("comparing %s: %w", name, err)
	}
	c := &Comparison{
		Field:     name,
		Hist:      h,
		Ref:       href,
		Stats:     h.Stats(),
		RefStats:  href.Stats(),
		Agreement: a,
	}
	c.Verdict = Judge(name, c.Stats, c.RefStats, a)
	return c, nil
}
