// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package histcmp

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SuperNEMO-DBD/SimulationValidationTool/histo"
)

func mustBin(t *testing.T, nbins int, low, high float64, values ...float64) *histo.Histogram {
	t.Helper()
	h, err := histo.Bin(histo.BinSpec{NBins: nbins, Low: low, High: high}, values, nil)
	require.NoError(t, err)
	return h
}

func TestAgreeIdentical(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	values := make([]float64, 500)
	for i := range values {
		values[i] = rng.ExpFloat64()
	}
	h := mustBin(t, 20, 0, 5, values...)

	a, err := Agree(h, h.Clone())
	require.NoError(t, err)
	assert.Zero(t, a.ChiSquare)
	assert.Greater(t, a.NDF, 0)
	assert.True(t, a.PValueOK)
	assert.InDelta(t, 1.0, a.PValue, 1e-12)
	assert.True(t, a.KSOK)
	assert.Zero(t, a.KSDistance)
	assert.Equal(t, 1.0, a.KSProb)
	assert.Zero(t, a.ChiSquarePerNDF())
}

func TestChiSquare(t *testing.T) {
	h1 := mustBin(t, 3, 0, 3, 0.5, 0.5, 0.5, 0.5, 1.5, 2.5)
	h2 := mustBin(t, 3, 0, 3, 0.5, 0.5, 1.5, 1.5)

	// Bin 2 is empty in h2, so its zero error excludes it.
	chisq, ndf := ChiSquare(h1, h2)
	assert.Equal(t, 2, ndf)
	want := (4.0-2)*(4.0-2)/(4+2) + (1.0-2)*(1.0-2)/(1+2)
	assert.InDelta(t, want, chisq, 1e-12)

	a, err := Agree(h1, h2)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-want/2), a.PValue, 1e-9, "two degrees of freedom have an exponential tail")
	assert.InDelta(t, want/2, a.ChiSquarePerNDF(), 1e-12)
}

func TestChiSquareSkipsNaN(t *testing.T) {
	h1 := mustBin(t, 2, 0, 2, 0.5, 1.5)
	h2 := h1.Clone()
	h2.Content[0] = math.NaN()
	chisq, ndf := ChiSquare(h1, h2)
	assert.Equal(t, 1, ndf)
	assert.Zero(t, chisq)

	h2.SumW2[1] = math.NaN()
	_, ndf = ChiSquare(h1, h2)
	assert.Equal(t, 0, ndf)
}

func TestAgreeNoInformation(t *testing.T) {
	h1 := mustBin(t, 4, 0, 4)
	h2 := mustBin(t, 4, 0, 4)
	a, err := Agree(h1, h2)
	require.NoError(t, err)
	assert.Equal(t, 0, a.NDF)
	assert.False(t, a.PValueOK)
	assert.Zero(t, a.PValue)
	assert.False(t, a.KSOK)
	assert.True(t, math.IsNaN(a.ChiSquarePerNDF()))

	// Disjoint histograms have no bin with information in both.
	h1 = mustBin(t, 4, 0, 4, 0.5, 0.5)
	h2 = mustBin(t, 4, 0, 4, 3.5, 3.5)
	a, err = Agree(h1, h2)
	require.NoError(t, err)
	assert.False(t, a.PValueOK)
	assert.True(t, a.KSOK)
	assert.Equal(t, 1.0, a.KSDistance)
}

func TestAgreeShapeMismatch(t *testing.T) {
	for _, h2 := range []*histo.Histogram{
		mustBin(t, 5, 0, 4, 1),
		mustBin(t, 4, 0, 5, 1),
		mustBin(t, 4, -1, 4, 1),
	} {
		_, err := Agree(mustBin(t, 4, 0, 4, 1), h2)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	}
}

func TestKolmogorovDistance(t *testing.T) {
	h1 := mustBin(t, 4, 0, 4, 0.5, 1.5, 2.5, 3.5)
	h2 := mustBin(t, 4, 0, 4, 0.5, 0.5, 0.5, 3.5)
	a, err := Agree(h1, h2)
	require.NoError(t, err)
	// Cumulative sums: 1/4, 2/4, 3/4 against 3/4, 3/4, 3/4.
	assert.InDelta(t, 0.5, a.KSDistance, 1e-12)
	assert.InDelta(t, KolmogorovProb(0.5*math.Sqrt(2)), a.KSProb, 1e-12)

	// Scaling one side does not change the distance.
	h2.Scale(7)
	a, err = Agree(h1, h2)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, a.KSDistance, 1e-12)
}

func TestKolmogorovProb(t *testing.T) {
	for _, test := range []struct {
		z, want float64
	}{
		{0, 1},
		{0.1, 1},
		{0.5, 0.96394},
		{1, 0.27000},
		{1.36, 0.04946},
		{2, 0.00067},
		{7, 0},
	} {
		assert.InDelta(t, test.want, KolmogorovProb(test.z), 1e-4, "z=%v", test.z)
	}

	prev := 1.0
	for z := 0.0; z < 4; z += 0.01 {
		p := KolmogorovProb(z)
		assert.LessOrEqual(t, p, prev+1e-9, "not monotone at z=%v", z)
		prev = p
	}
}
