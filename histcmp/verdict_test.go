// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package histcmp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SuperNEMO-DBD/SimulationValidationTool/histo"
)

// base returns statistics and an agreement that pass every rule.
func base() (histo.Stats, histo.Stats, Agreement) {
	s := histo.Stats{Mean: 10, MeanError: 0.1, StdDev: 2, StdDevError: 0.05, Min: 0, Max: 50}
	return s, s, Agreement{PValue: 1, PValueOK: true, NDF: 10}
}

func ruleResult(t *testing.T, v Verdict, id RuleID) RuleResult {
	t.Helper()
	for _, r := range v.Rules {
		if r.Rule == id {
			return r
		}
	}
	t.Fatalf("verdict has no rule %s", id)
	return RuleResult{}
}

func TestJudgeAllPass(t *testing.T) {
	s, ref, a := base()
	v := Judge("x", s, ref, a)
	assert.True(t, v.Passed)
	assert.Empty(t, v.Failed())
	require.Len(t, v.Rules, 5)
	ids := []RuleID{RuleMeanWithinStd, RuleStdErrorRatio, RuleMeanErrorBounds, RuleMaxMinOrder, RulePValue}
	for i, r := range v.Rules {
		assert.Equal(t, ids[i], r.Rule)
		assert.True(t, r.Passed)
		assert.Empty(t, r.Message)
	}
}

func TestJudgePValueBoundary(t *testing.T) {
	s, ref, a := base()

	a.PValue = 0.99
	assert.True(t, ruleResult(t, Judge("x", s, ref, a), RulePValue).Passed)

	a.PValue = math.Nextafter(0.99, 0)
	r := ruleResult(t, Judge("x", s, ref, a), RulePValue)
	assert.False(t, r.Passed)
	assert.Equal(t, "Error: P-value less than 0.99", r.Message)

	a.PValue = 0.9899
	assert.False(t, ruleResult(t, Judge("x", s, ref, a), RulePValue).Passed)

	a = Agreement{PValueOK: false}
	r = ruleResult(t, Judge("x", s, ref, a), RulePValue)
	assert.False(t, r.Passed)
	assert.Equal(t, "Error: P-value not computed", r.Message)
}

func TestJudgeStdErrorRatioBoundary(t *testing.T) {
	check := func(se, seRef float64, want bool) {
		t.Helper()
		s, ref, a := base()
		s.StdDevError, ref.StdDevError = se, seRef
		r := ruleResult(t, Judge("x", s, ref, a), RuleStdErrorRatio)
		if r.Passed != want {
			t.Errorf("std errors %v/%v: passed=%v, want %v (%s)", se, seRef, r.Passed, want, r.Message)
		}
	}
	check(1.01, 1, true)
	check(1, 1.005, true)
	check(1.02, 1, false)
	check(1, 1.02, false)
	check(0.98, 1, false)
	check(0, 0, true)
	check(0, 1, false)
	check(1, 0, false)
	check(math.NaN(), 1, false)
}

func TestJudgeMeanWithinStd(t *testing.T) {
	s, ref, a := base()
	s.Mean = ref.Mean + ref.StdDev
	assert.True(t, ruleResult(t, Judge("x", s, ref, a), RuleMeanWithinStd).Passed)

	s.Mean = ref.Mean - 1.5*ref.StdDev
	r := ruleResult(t, Judge("x", s, ref, a), RuleMeanWithinStd)
	assert.False(t, r.Passed)
	assert.Equal(t, "Error: Mean outside of 1 Standard Deviation", r.Message)
}

func TestJudgeMeanErrorBoundsIsSymmetric(t *testing.T) {
	s, ref, a := base()
	// The candidate mean is within the reference's mean error, but
	// the reference mean is not within the candidate's.
	ref.MeanError = 1
	s.MeanError = 0.1
	s.Mean = ref.Mean + 0.5
	r := ruleResult(t, Judge("x", s, ref, a), RuleMeanErrorBounds)
	assert.False(t, r.Passed)
	assert.Equal(t, "Error: Mean Value outside error bounds", r.Message)

	s.MeanError = 0.5
	assert.True(t, ruleResult(t, Judge("x", s, ref, a), RuleMeanErrorBounds).Passed)
}

func TestJudgeMaxMinOrder(t *testing.T) {
	s, ref, a := base()
	s.Min, s.Max = 0, 3
	ref.Min, ref.Max = 4, 9
	r := ruleResult(t, Judge("x", s, ref, a), RuleMaxMinOrder)
	assert.False(t, r.Passed)
	assert.Equal(t, "Error: Max, Min reversed", r.Message)

	s.Min, s.Max = 10, 12
	assert.False(t, ruleResult(t, Judge("x", s, ref, a), RuleMaxMinOrder).Passed)

	s.Min, s.Max = 4, 9
	assert.True(t, ruleResult(t, Judge("x", s, ref, a), RuleMaxMinOrder).Passed)
}

func TestJudgeReportsEveryFailure(t *testing.T) {
	s, ref, a := base()
	s.Mean = 100
	s.StdDevError = 1
	s.Min, s.Max = 60, 70
	a.PValue = 0.1
	v := Judge("energy", s, ref, a)
	assert.False(t, v.Passed)
	assert.Equal(t, "energy", v.Field)
	var failed []RuleID
	for _, r := range v.Failed() {
		failed = append(failed, r.Rule)
	}
	assert.Equal(t, []RuleID{RuleMeanWithinStd, RuleStdErrorRatio, RuleMeanErrorBounds, RuleMaxMinOrder, RulePValue}, failed)
}

func TestJudgeEmptyHistogram(t *testing.T) {
	want := map[RuleID]string{
		RuleMeanWithinStd:   "Error: Mean not computed",
		RuleStdErrorRatio:   "Error: Standard Deviation Error not computed",
		RuleMeanErrorBounds: "Error: Mean Value error bounds not computed",
		RuleMaxMinOrder:     "Error: Max, Min not computed",
	}
	for _, side := range []string{"candidate", "reference", "both"} {
		s, ref, a := base()
		empty := histo.Stats{Empty: true, Median: math.NaN()}
		switch side {
		case "candidate":
			s = empty
		case "reference":
			ref = empty
		case "both":
			s, ref = empty, empty
		}
		v := Judge("x", s, ref, a)
		assert.False(t, v.Passed, side)
		require.Len(t, v.Rules, 5, side)
		for id, msg := range want {
			r := ruleResult(t, v, id)
			assert.False(t, r.Passed, "%s: %s", side, id)
			assert.Equal(t, msg, r.Message, "%s: %s", side, id)
		}
		assert.True(t, ruleResult(t, v, RulePValue).Passed, side)
	}
}
