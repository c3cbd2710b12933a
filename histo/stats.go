// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package histo

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/floats"
)

// Stats summarizes the binned distribution of a Histogram.
//
// All moments are computed from bin centers weighted by bin content;
// weight outside the histogram range is not included.
type Stats struct {
	Mean, MeanError     float64
	StdDev, StdDevError float64
	Skewness            float64

	// Min and Max are the smallest and largest bin contents, that
	// is, the heights of the shortest and tallest bins. They are
	// not the extent of the data.
	Min, Max float64

	// Median is the median of the binned distribution, interpolated
	// within its bin. It is NaN if it cannot be located.
	Median float64

	// EffEntries is the effective number of entries,
	// (Σcontent)² / Σsumw2. For unweighted, unscaled histograms it
	// is the number of in-range entries.
	EffEntries float64

	// Empty indicates the histogram had no in-range content. All
	// moments are zero in that case and should not be reported as
	// measurements.
	Empty bool
}

// Stats computes summary statistics of h.
func (h *Histogram) Stats() Stats {
	var s Stats
	s.Min, s.Max = floats.Min(h.Content), floats.Max(h.Content)

	sumw := floats.Sum(h.Content)
	sumw2 := floats.Sum(h.SumW2)
	if sumw <= 0 {
		s.Empty = true
		s.Median = math.NaN()
		return s
	}

	var sx float64
	for i, c := range h.Content {
		sx += c * h.Center(i)
	}
	s.Mean = sx / sumw

	var m2, m3 float64
	for i, c := range h.Content {
		d := h.Center(i) - s.Mean
		m2 += c * d * d
		m3 += c * d * d * d
	}
	m2 /= sumw
	m3 /= sumw
	s.StdDev = math.Sqrt(m2)
	if s.StdDev > 0 {
		s.Skewness = m3 / (s.StdDev * s.StdDev * s.StdDev)
	}

	if sumw2 > 0 {
		s.EffEntries = sumw * sumw / sumw2
		s.MeanError = s.StdDev / math.Sqrt(s.EffEntries)
		s.StdDevError = s.StdDev / math.Sqrt(2*s.EffEntries)
	}

	s.Median = stats.HistogramQuantile(inRange{h}, 0.5)
	return s
}

// inRange views the in-range bins of a Histogram as a go-moremath
// stats.Histogram. Under- and overflow are reported as zero so
// quantiles describe the same distribution as the moments.
type inRange struct {
	h *Histogram
}

var _ stats.Histogram = inRange{}

// countScale is the count the tallest bin maps to when fractional
// (weighted or scaled) contents are converted to the whole counts
// stats.Histogram requires. Quantile interpolation is invariant under
// a common factor.
const countScale = 1 << 20

func (v inRange) Add(x float64) {
	v.h.Fill(x, 1)
}

func (v inRange) Counts() (under uint, counts []uint, over uint) {
	counts = make([]uint, v.h.NBins)
	top := floats.Max(v.h.Content)
	if !(top > 0) || math.IsInf(top, 0) {
		return 0, counts, 0
	}
	scale := countScale / top
	for i, c := range v.h.Content {
		if c > 0 {
			counts[i] = uint(math.Round(c * scale))
		}
	}
	return 0, counts, 0
}

func (v inRange) BinToValue(bin float64) float64 {
	return v.h.Low + bin*v.h.Width()
}
