// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package histcmp

import (
	"math"

	"github.com/SuperNEMO-DBD/SimulationValidationTool/histo"
)

// RuleID identifies one rule of the verdict.
type RuleID string

// The rules of a verdict, in evaluation order.
const (
	RuleMeanWithinStd   RuleID = "mean-within-std"
	RuleStdErrorRatio   RuleID = "std-error-ratio"
	RuleMeanErrorBounds RuleID = "mean-error-bounds"
	RuleMaxMinOrder     RuleID = "max-min-order"
	RulePValue          RuleID = "p-value"
)

// Thresholds used by the rules.
const (
	// MaxStdErrorRatio and MinStdErrorRatio bound the ratio of the
	// two standard deviation errors, in either direction.
	MaxStdErrorRatio = 1.01
	MinStdErrorRatio = 0.99

	// MinPValue is the smallest passing chi-squared p-value.
	MinPValue = 0.99
)

// RuleResult is the outcome of one rule. Message is empty for a rule
// that passed.
type RuleResult struct {
	Rule    RuleID
	Passed  bool
	Message string
}

// Verdict is the outcome of all rules for one field.
type Verdict struct {
	Field  string
	Rules  []RuleResult
	Passed bool
}

// Failed returns the rules that did not pass, in evaluation order.
func (v *Verdict) Failed() []RuleResult {
	var out []RuleResult
	for _, r := range v.Rules {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// Judge applies every rule to the candidate statistics s, the
// reference statistics ref, and the agreement a. All rules are
// evaluated; the verdict passes only if every rule passes.
func Judge(field string, s, ref histo.Stats, a Agreement) Verdict {
	v := Verdict{Field: field, Passed: true}
	add := func(id RuleID, fail bool, msg string) {
		r := RuleResult{Rule: id, Passed: !fail}
		if fail {
			r.Message = msg
			v.Passed = false
		}
		v.Rules = append(v.Rules, r)
	}

	if s.Empty || ref.Empty {
		// An empty side has no moments.
		add(RuleMeanWithinStd, true, "Error: Mean not computed")
		add(RuleStdErrorRatio, true, "Error: Standard Deviation Error not computed")
		add(RuleMeanErrorBounds, true, "Error: Mean Value error bounds not computed")
		add(RuleMaxMinOrder, true, "Error: Max, Min not computed")
	} else {
		judgeMoments(add, s, ref)
	}

	if !a.PValueOK {
		add(RulePValue, true, "Error: P-value not computed")
	} else {
		add(RulePValue, !(a.PValue >= MinPValue), "Error: P-value less than 0.99")
	}
	return v
}

// judgeMoments applies rules 1 to 4 to two non-empty histograms.
func judgeMoments(add func(RuleID, bool, string), s, ref histo.Stats) {
	// The candidate mean within one reference standard deviation.
	add(RuleMeanWithinStd,
		outside(s.Mean, ref.Mean, ref.StdDev),
		"Error: Mean outside of 1 Standard Deviation")

	if ratio, ok := stdErrorRatio(s.StdDevError, ref.StdDevError); !ok {
		add(RuleStdErrorRatio, true, "Error: Standard Deviation Error ratio not computable")
	} else {
		add(RuleStdErrorRatio,
			ratio > MaxStdErrorRatio || 1/ratio > MaxStdErrorRatio ||
				ratio < MinStdErrorRatio || 1/ratio < MinStdErrorRatio,
			"Error: Standard Deviation Error too large")
	}

	// Each mean within the other's mean error.
	add(RuleMeanErrorBounds,
		outside(s.Mean, ref.Mean, ref.MeanError) || outside(ref.Mean, s.Mean, s.MeanError),
		"Error: Mean Value outside error bounds")

	add(RuleMaxMinOrder,
		s.Max < ref.Min || ref.Max < s.Min,
		"Error: Max, Min reversed")
}

// outside reports whether x lies outside [center-width, center+width].
func outside(x, center, width float64) bool {
	return x > center+width || x < center-width
}

// stdErrorRatio returns se/seRef. Two zero errors count as equal. ok
// is false if the ratio is not a finite positive number.
func stdErrorRatio(se, seRef float64) (ratio float64, ok bool) {
	if se == 0 && seRef == 0 {
		return 1, true
	}
	ratio = se / seRef
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio <= 0 {
		return 0, false
	}
	return ratio, true
}
