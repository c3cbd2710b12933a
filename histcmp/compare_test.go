// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package histcmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SuperNEMO-DBD/SimulationValidationTool/dataset"
	"github.com/SuperNEMO-DBD/SimulationValidationTool/histo"
)

func series(name string, values ...float64) dataset.Series {
	return dataset.Series{Name: name, Values: values}
}

func TestCompareFieldIdentical(t *testing.T) {
	s := series("energy", 1, 2, 3, 4, 5)
	c, err := CompareField("energy", s, s, 5, 5, histo.BinSpec{NBins: 5, Low: 0, High: 6})
	require.NoError(t, err)

	assert.Equal(t, "energy", c.Field)
	assert.Equal(t, c.Stats, c.RefStats)
	assert.Zero(t, c.Agreement.ChiSquare)
	assert.Equal(t, 5, c.Agreement.NDF)
	assert.InDelta(t, 1.0, c.Agreement.PValue, 1e-12)
	assert.True(t, c.Verdict.Passed, "failed rules: %v", c.Verdict.Failed())
	assert.Len(t, c.Verdict.Rules, 5)
}

func TestCompareFieldShiftedMean(t *testing.T) {
	ref := series("x", 1, 2, 3, 4, 5)
	cand := series("x", 16, 17, 18, 19, 20)
	c, err := CompareField("x", cand, ref, 5, 5, histo.BinSpec{NBins: 30, Low: 0, High: 30})
	require.NoError(t, err)

	assert.False(t, c.Verdict.Passed)
	var failed []RuleID
	for _, r := range c.Verdict.Failed() {
		failed = append(failed, r.Rule)
	}
	assert.Contains(t, failed, RuleMeanWithinStd)
	assert.Contains(t, failed, RuleMeanErrorBounds)
}

func TestCompareFieldReferenceUsesCandidateBinning(t *testing.T) {
	// The candidate range is resolved from the candidate alone, so
	// reference values beyond it are not counted.
	cand := series("x", 0, 1, 2, 3)
	ref := series("x", 0, 1, 2, 3, 100, -100)
	c, err := CompareField("x", cand, ref, 4, 4, histo.BinSpec{NBins: 4, High: histo.Unset})
	require.NoError(t, err)

	assert.True(t, c.Hist.SameShape(c.Ref))
	assert.Equal(t, 0.0, c.Ref.Low)
	assert.InDelta(t, 4.0, c.Ref.Integral(), 1e-12)
	assert.InDelta(t, 1.0, c.Ref.Underflow, 1e-12)
	assert.InDelta(t, 1.0, c.Ref.Overflow, 1e-12)
}

func TestCompareFieldNormalizesReference(t *testing.T) {
	// Three copies of the candidate in the reference scale down to
	// the candidate.
	cand := series("x", 1, 2, 3)
	ref := series("x", 1, 1, 1, 2, 2, 2, 3, 3, 3)
	c, err := CompareField("x", cand, ref, 3, 9, histo.BinSpec{NBins: 3, Low: 0.5, High: 3.5})
	require.NoError(t, err)
	for i := range c.Hist.Content {
		assert.InDelta(t, c.Hist.Content[i], c.Ref.Content[i], 1e-12)
	}
	assert.InDelta(t, c.Stats.Mean, c.RefStats.Mean, 1e-12)
}

func TestCompareFieldErrors(t *testing.T) {
	s := series("x", 1, 2, 3)

	_, err := CompareField("x", s, s, 3, 3, histo.BinSpec{NBins: 0, High: histo.Unset})
	assert.ErrorIs(t, err, histo.ErrBadSpec)

	_, err = CompareField("x", s, s, 3, 0, histo.DefaultBinSpec())
	assert.ErrorIs(t, err, histo.ErrZeroDivisor)

	bad := dataset.Series{Name: "x", Values: []float64{1, 2}, Weights: []float64{1}}
	_, err = CompareField("x", s, bad, 3, 2, histo.DefaultBinSpec())
	assert.ErrorIs(t, err, histo.ErrBadSpec)
}
