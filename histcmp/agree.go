// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package histcmp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/SuperNEMO-DBD/SimulationValidationTool/histo"
)

// ErrShapeMismatch is returned when two histograms do not share the
// same binning.
var ErrShapeMismatch = errors.New("histograms have different binning")

// Agreement is the result of testing whether two histograms are
// drawn from the same distribution.
type Agreement struct {
	// ChiSquare is the bin-by-bin chi-squared statistic and NDF is
	// the number of bins that contributed to it.
	ChiSquare float64
	NDF       int

	// PValue is the upper-tail probability of ChiSquare for NDF
	// degrees of freedom. It is only meaningful if PValueOK; when
	// no bin contributed it is 0 and PValueOK is false.
	PValue   float64
	PValueOK bool

	// KSDistance is the largest difference between the two
	// unit-normalized cumulative distributions, and KSProb is the
	// Kolmogorov probability of a distance at least that large
	// given the effective entries of both histograms. Both are
	// only meaningful if KSOK.
	KSDistance float64
	KSProb     float64
	KSOK       bool
}

// ChiSquarePerNDF returns ChiSquare/NDF, or NaN if NDF is 0.
func (a Agreement) ChiSquarePerNDF() float64 {
	if a.NDF == 0 {
		return math.NaN()
	}
	return a.ChiSquare / float64(a.NDF)
}

// Agree compares h1 and h2, which must have the same binning.
func Agree(h1, h2 *histo.Histogram) (Agreement, error) {
	if !h1.SameShape(h2) {
		return Agreement{}, fmt.Errorf("%w: %d bins over [%v, %v) vs %d bins over [%v, %v)",
			ErrShapeMismatch, h1.NBins, h1.Low, h1.High, h2.NBins, h2.Low, h2.High)
	}
	var a Agreement
	a.ChiSquare, a.NDF = ChiSquare(h1, h2)
	if a.NDF > 0 {
		a.PValue = distuv.ChiSquared{K: float64(a.NDF)}.Survival(a.ChiSquare)
		a.PValueOK = true
	}
	a.KSDistance, a.KSProb, a.KSOK = kolmogorov(h1, h2)
	return a, nil
}

// ChiSquare returns the chi-squared statistic between two histograms
// of the same binning and the number of bins that contributed.
//
// A bin is left out, and does not count as a degree of freedom, if
// either content or error is NaN or if either error is zero. With
// sum-of-squares tracking a zero error means the bin is empty in that
// histogram.
func ChiSquare(h1, h2 *histo.Histogram) (chisq float64, ndf int) {
	for i := range h1.Content {
		v1, v2 := h1.Content[i], h2.Content[i]
		e1, e2 := h1.Error(i), h2.Error(i)
		if math.IsNaN(v1) || math.IsNaN(v2) || math.IsNaN(e1) || math.IsNaN(e2) {
			continue
		}
		if e1 == 0 || e2 == 0 {
			continue
		}
		d := v1 - v2
		chisq += d * d / (e1*e1 + e2*e2)
		ndf++
	}
	return chisq, ndf
}

// kolmogorov computes the two-sample Kolmogorov distance between the
// binned distributions of h1 and h2 and its probability.
func kolmogorov(h1, h2 *histo.Histogram) (d, prob float64, ok bool) {
	s1, s2 := h1.Stats(), h2.Stats()
	if s1.Empty || s2.Empty {
		return 0, 0, false
	}
	centers := make([]float64, h1.NBins)
	for i := range centers {
		centers[i] = h1.Center(i)
	}
	// Bin centers weighted by content give the same cumulative
	// sums as the unit-normalized histograms.
	d = stat.KolmogorovSmirnov(centers, h1.Content, centers, h2.Content)
	n1, n2 := s1.EffEntries, s2.EffEntries
	z := d * math.Sqrt(n1*n2/(n1+n2))
	return d, KolmogorovProb(z), true
}

// KolmogorovProb returns the probability that the Kolmogorov
// statistic exceeds z, that is, the survival function of the
// Kolmogorov distribution.
func KolmogorovProb(z float64) float64 {
	const (
		w  = 2.50662827 // sqrt(2π)
		c1 = -1.2337005501361697
		c2 = -11.103304951225528
		c3 = -30.842513753404244
	)
	u := math.Abs(z)
	switch {
	case u < 0.2:
		return 1
	case u < 0.755:
		v := 1 / (u * u)
		return 1 - w*(math.Exp(c1*v)+math.Exp(c2*v)+math.Exp(c3*v))/u
	case u < 6.8116:
		fj := [4]float64{-2, -8, -18, -32}
		var r [4]float64
		v := u * u
		maxj := int(math.Max(1, math.Round(3/u)))
		for j := 0; j < maxj && j < len(r); j++ {
			r[j] = math.Exp(fj[j] * v)
		}
		return 2 * (r[0] - r[1] + r[2] - r[3])
	}
	return 0
}
