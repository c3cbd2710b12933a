// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	mstats "github.com/montanaflynn/stats"

	"github.com/SuperNEMO-DBD/SimulationValidationTool/histcmp"
	"github.com/SuperNEMO-DBD/SimulationValidationTool/histo"
)

// NotComputed is printed in place of an undefined value.
const NotComputed = "n/a"

// Num formats v with six significant digits, or NotComputed if v is
// NaN or infinite.
func Num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotComputed
	}
	return fmt.Sprintf("%.6g", v)
}

// FieldTitle turns a field name into a histogram title: underscores
// become spaces, everything up to the first underscore is dropped,
// and the first letter is upper-cased. "calo_energy_total" becomes
// "Energy total".
func FieldTitle(name string) string {
	if i := strings.IndexByte(name, '_'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, "_", " ")
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

type statLine struct {
	label string
	get   func(histo.Stats) float64
}

// value formats the statistic of s, or NotComputed if s describes an
// empty histogram.
func (l statLine) value(s histo.Stats) string {
	if s.Empty {
		return NotComputed
	}
	return Num(l.get(s))
}

// statLines lists the paired statistic lines in report order.
var statLines = []statLine{
	{"Mean", func(s histo.Stats) float64 { return s.Mean }},
	{"Mean Error", func(s histo.Stats) float64 { return s.MeanError }},
	{"Maximum", func(s histo.Stats) float64 { return s.Max }},
	{"Minimum", func(s histo.Stats) float64 { return s.Min }},
	{"Skewness", func(s histo.Stats) float64 { return s.Skewness }},
	{"Std", func(s histo.Stats) float64 { return s.StdDev }},
	{"Std Error", func(s histo.Stats) float64 { return s.StdDevError }},
	{"Median", func(s histo.Stats) float64 { return s.Median }},
}

// writeComparison writes the report block of one compared field.
func writeComparison(w io.Writer, c *histcmp.Comparison) {
	fmt.Fprintf(w, "Comparing fields: %s\n\n", c.Field)
	for _, l := range statLines {
		fmt.Fprintf(w, "%s: %s ; Reference %s: %s\n", l.label, l.value(c.Stats), l.label, l.value(c.RefStats))
	}

	a := c.Agreement
	prob, dist := NotComputed, NotComputed
	if a.KSOK {
		prob, dist = Num(a.KSProb), Num(a.KSDistance)
	}
	fmt.Fprintf(w, "Kolmogorov: %s ; Kolmogorov Distance: %s\n", prob, dist)
	p := NotComputed
	if a.PValueOK {
		p = Num(a.PValue)
	}
	chisq := NotComputed
	if a.NDF > 0 {
		chisq = Num(a.ChiSquare)
	}
	fmt.Fprintf(w, "P-value: %s\n", p)
	fmt.Fprintf(w, "Chi-square: %s\n", chisq)
	fmt.Fprintf(w, "Chi-square/NDF: %s (NDF: %d)\n\n", Num(a.ChiSquarePerNDF()), a.NDF)

	fmt.Fprintf(w, "Testing fields: %s\n", c.Field)
	if c.Verdict.Passed {
		fmt.Fprintf(w, "All Tests Passed\n")
	} else {
		for _, r := range c.Verdict.Failed() {
			fmt.Fprintf(w, "%s\n", r.Message)
		}
	}
	writeFinished(w, c.Field)
}

// writeCandidateOnly writes the report block of a field when there is
// no reference to compare with.
func writeCandidateOnly(w io.Writer, name string, h *histo.Histogram, values []float64) {
	s := h.Stats()
	fmt.Fprintf(w, "Comparing fields: %s\n\n", name)
	for _, l := range statLines {
		fmt.Fprintf(w, "%s: %s\n", l.label, l.value(s))
	}
	fmt.Fprintf(w, "%s\n\n", sampleSummary(values))
	fmt.Fprintf(w, "No reference available: comparison not performed\n")
	writeFinished(w, name)
}

func writeFinished(w io.Writer, name string) {
	fmt.Fprintf(w, "---- Finished working with fields: %s ----\n\n", name)
}

// sampleSummary describes the raw samples of a field, before binning.
func sampleSummary(values []float64) string {
	num := func(f func(mstats.Float64Data) (float64, error)) string {
		v, err := f(values)
		if err != nil {
			return NotComputed
		}
		return Num(v)
	}
	return fmt.Sprintf("Samples: N=%d mean=%s median=%s std=%s min=%s max=%s",
		len(values),
		num(mstats.Mean),
		num(mstats.Median),
		num(mstats.StandardDeviation),
		num(mstats.Min),
		num(mstats.Max))
}
