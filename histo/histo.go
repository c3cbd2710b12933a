// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package histo implements fixed-resolution, weighted histograms with
// per-bin sum-of-squared-weights tracking.
//
// A Histogram records, for each bin, the accumulated weight and the
// accumulated squared weight. The error of a bin is the square root
// of the latter, which keeps errors statistically meaningful after
// the histogram is scaled.
package histo

import (
	"errors"
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
)

// DefaultNBins is the bin count used when a BinSpec does not give
// one.
const DefaultNBins = 100

// ErrBadSpec is returned when a BinSpec cannot produce a valid
// binning.
var ErrBadSpec = errors.New("invalid binning")

// Unset is the sentinel for an unset range limit. It is distinct from
// every real value.
var Unset = math.NaN()

// BinSpec describes how to bin a series.
//
// If High is Unset, or High <= Low, the range is computed from the
// data being binned.
type BinSpec struct {
	Title string
	NBins int
	Low   float64
	High  float64
}

// DefaultBinSpec returns a BinSpec with DefaultNBins bins and an
// automatic range.
func DefaultBinSpec() BinSpec {
	return BinSpec{NBins: DefaultNBins, Low: 0, High: Unset}
}

// AutoRange reports whether s leaves the range to be computed from
// the data.
func (s BinSpec) AutoRange() bool {
	return math.IsNaN(s.High) || s.High <= s.Low
}

func (s BinSpec) String() string {
	if s.AutoRange() {
		return fmt.Sprintf("%d bins, auto range", s.NBins)
	}
	return fmt.Sprintf("%d bins over [%v, %v)", s.NBins, s.Low, s.High)
}

// A Histogram is a sequence of NBins equal-width bins over
// [Low, High).
//
// Content[i] is the total weight that fell in bin i and SumW2[i] is
// the total squared weight. Weight that fell outside the range is
// accumulated in Underflow and Overflow and does not contribute to
// any statistic.
type Histogram struct {
	Title string
	NBins int
	Low   float64
	High  float64

	Content []float64
	SumW2   []float64

	Underflow, Overflow float64

	// Entries is the number of Fill calls, including ones that
	// fell outside the range.
	Entries int
}

// New returns an empty histogram with the explicit range in spec.
func New(spec BinSpec) (*Histogram, error) {
	if spec.NBins < 1 {
		return nil, fmt.Errorf("%w: bin count %d < 1", ErrBadSpec, spec.NBins)
	}
	if spec.AutoRange() {
		return nil, fmt.Errorf("%w: range [%v, %v) is not resolved", ErrBadSpec, spec.Low, spec.High)
	}
	if math.IsInf(spec.Low, 0) || math.IsInf(spec.High, 0) {
		return nil, fmt.Errorf("%w: range [%v, %v) is not finite", ErrBadSpec, spec.Low, spec.High)
	}
	return &Histogram{
		Title:   spec.Title,
		NBins:   spec.NBins,
		Low:     spec.Low,
		High:    spec.High,
		Content: make([]float64, spec.NBins),
		SumW2:   make([]float64, spec.NBins),
	}, nil
}

// Bin builds a histogram of values according to spec. weights may be
// nil, in which case every value has weight 1; otherwise it must have
// the same length as values.
//
// If spec leaves the range unset, it is resolved by ResolveRange.
func Bin(spec BinSpec, values, weights []float64) (*Histogram, error) {
	if weights != nil && len(weights) != len(values) {
		return nil, fmt.Errorf("%w: %d weights for %d values", ErrBadSpec, len(weights), len(values))
	}
	if spec.AutoRange() {
		spec.Low, spec.High = ResolveRange(values)
	}
	h, err := New(spec)
	if err != nil {
		return nil, err
	}
	if weights == nil {
		for _, x := range values {
			h.Fill(x, 1)
		}
	} else {
		for i, x := range values {
			h.Fill(x, weights[i])
		}
	}
	return h, nil
}

// ResolveRange returns the range [low, high) that covers every
// non-NaN value in values.
//
// high is the next float64 above the largest value, so the largest
// value is binned rather than dropped. An empty series resolves to
// [0, 1) and a constant series v resolves to [v-0.5, v+0.5)
// (wider if v is too large for ±0.5 to be representable).
func ResolveRange(values []float64) (low, high float64) {
	finite := values[:0:0]
	for _, x := range values {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			finite = append(finite, x)
		}
	}
	if len(finite) == 0 {
		return 0, 1
	}
	lo, hi := stats.Sample{Xs: finite}.Bounds()
	if lo == hi {
		// Keep the half-width representable for large magnitudes.
		d := math.Max(0.5, math.Abs(lo)*1e-9)
		return lo - d, hi + d
	}
	return lo, math.Nextafter(hi, math.Inf(1))
}

// Reshaped returns an empty histogram with the same title and
// binning as h.
func (h *Histogram) Reshaped() *Histogram {
	return &Histogram{
		Title:   h.Title,
		NBins:   h.NBins,
		Low:     h.Low,
		High:    h.High,
		Content: make([]float64, h.NBins),
		SumW2:   make([]float64, h.NBins),
	}
}

// Clone returns a deep copy of h.
func (h *Histogram) Clone() *Histogram {
	h2 := *h
	h2.Content = append([]float64(nil), h.Content...)
	h2.SumW2 = append([]float64(nil), h.SumW2...)
	return &h2
}

// SameShape reports whether h and h2 have identical binning.
func (h *Histogram) SameShape(h2 *Histogram) bool {
	return h.NBins == h2.NBins && h.Low == h2.Low && h.High == h2.High &&
		len(h.Content) == len(h2.Content) && len(h.SumW2) == len(h2.SumW2)
}

// Fill adds value x with weight w. NaN values are ignored entirely.
func (h *Histogram) Fill(x, w float64) {
	if math.IsNaN(x) {
		return
	}
	h.Entries++
	bin, ok := h.FindBin(x)
	if !ok {
		if x < h.Low {
			h.Underflow += w
		} else {
			h.Overflow += w
		}
		return
	}
	h.Content[bin] += w
	h.SumW2[bin] += w * w
}

// FindBin returns the bin containing x. ok is false if x lies outside
// [Low, High).
func (h *Histogram) FindBin(x float64) (bin int, ok bool) {
	if !(x >= h.Low && x < h.High) {
		return -1, false
	}
	bin = int(math.Floor((x - h.Low) / (h.High - h.Low) * float64(h.NBins)))
	// Rounding can push values just below High into bin NBins.
	if bin < 0 {
		bin = 0
	} else if bin >= h.NBins {
		bin = h.NBins - 1
	}
	return bin, true
}

// Width returns the width of each bin.
func (h *Histogram) Width() float64 {
	return (h.High - h.Low) / float64(h.NBins)
}

// Center returns the center of bin i.
func (h *Histogram) Center(i int) float64 {
	return h.Low + (float64(i)+0.5)*h.Width()
}

// Error returns the statistical error of bin i.
func (h *Histogram) Error(i int) float64 {
	return math.Sqrt(h.SumW2[i])
}

// Integral returns the total in-range weight of h.
func (h *Histogram) Integral() float64 {
	var sum float64
	for _, c := range h.Content {
		sum += c
	}
	return sum
}
