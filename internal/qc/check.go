package qc

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Series is the read-only view a check evaluates: the raw variable
// values and, for time-based checks, the parallel time coordinate in
// seconds since the epoch. Checks never see other checks' flags.
type Series struct {
	Values []float64
	Times  []float64 // may be nil when the dataset has no time coordinate
}

// Bounds is the per-point pass band a threshold check evaluated
// against, recorded for traceability.
type Bounds struct {
	Lower float64
	Upper float64
}

// Check evaluates one quality test over a series, returning one flag
// per point and, for threshold checks, the bounds applied.
type Check interface {
	Name() string
	Evaluate(s Series) ([]Flag, []Bounds)
}

// Result is the outcome of one check over one variable.
type Result struct {
	VariableName string
	CheckName    string
	Flags        []Flag
	Bounds       []Bounds // nil for non-threshold checks
}

// GrossRangeCheck flags values outside the fail span as FAIL and
// values inside the fail span but outside the narrower suspect span as
// SUSPECT.
type GrossRangeCheck struct {
	FailMin    float64
	FailMax    float64
	SuspectMin float64
	SuspectMax float64
}

func (c GrossRangeCheck) Name() string { return "gross_range" }

func (c GrossRangeCheck) Evaluate(s Series) ([]Flag, []Bounds) {
	flags := make([]Flag, len(s.Values))
	bounds := make([]Bounds, len(s.Values))
	for i, v := range s.Values {
		bounds[i] = Bounds{Lower: c.FailMin, Upper: c.FailMax}
		switch {
		case math.IsNaN(v):
			flags[i] = FlagMissing
		case v < c.FailMin || v > c.FailMax:
			flags[i] = FlagFail
		case v < c.SuspectMin || v > c.SuspectMax:
			flags[i] = FlagSuspect
		default:
			flags[i] = FlagGood
		}
	}
	return flags, bounds
}

// SpikeCheck compares each point's deviation from the mean of its two
// immediate neighbours against suspect/fail thresholds. Endpoints lack
// two neighbours and are NOT_EVALUATED.
type SpikeCheck struct {
	SuspectThreshold float64
	FailThreshold    float64
}

func (c SpikeCheck) Name() string { return "spike" }

func (c SpikeCheck) Evaluate(s Series) ([]Flag, []Bounds) {
	flags := make([]Flag, len(s.Values))
	for i, v := range s.Values {
		if math.IsNaN(v) {
			flags[i] = FlagMissing
			continue
		}
		if i == 0 || i == len(s.Values)-1 {
			flags[i] = FlagNotEvaluated
			continue
		}
		prev, next := s.Values[i-1], s.Values[i+1]
		if math.IsNaN(prev) || math.IsNaN(next) {
			flags[i] = FlagNotEvaluated
			continue
		}
		dev := math.Abs(v - stat.Mean([]float64{prev, next}, nil))
		switch {
		case dev > c.FailThreshold:
			flags[i] = FlagFail
		case dev > c.SuspectThreshold:
			flags[i] = FlagSuspect
		default:
			flags[i] = FlagGood
		}
	}
	return flags, nil
}

// RateOfChangeCheck flags points whose rate of change from the
// previous point exceeds the threshold (variable units per second) as
// SUSPECT. The first point, and points without usable timestamps, are
// NOT_EVALUATED.
type RateOfChangeCheck struct {
	Threshold float64
}

func (c RateOfChangeCheck) Name() string { return "rate_of_change" }

func (c RateOfChangeCheck) Evaluate(s Series) ([]Flag, []Bounds) {
	flags := make([]Flag, len(s.Values))
	for i, v := range s.Values {
		if math.IsNaN(v) {
			flags[i] = FlagMissing
			continue
		}
		if i == 0 || s.Times == nil || i >= len(s.Times) {
			flags[i] = FlagNotEvaluated
			continue
		}
		prev := s.Values[i-1]
		dt := s.Times[i] - s.Times[i-1]
		if math.IsNaN(prev) || math.IsNaN(dt) || dt <= 0 {
			flags[i] = FlagNotEvaluated
			continue
		}
		if math.Abs(v-prev)/dt > c.Threshold {
			flags[i] = FlagSuspect
		} else {
			flags[i] = FlagGood
		}
	}
	return flags, nil
}

// FlatLineCheck flags stuck sensors: a point whose trailing run of
// values all within Tolerance of it reaches SuspectWindow points is
// SUSPECT, FailWindow points FAIL. Points too early in the series for
// a full suspect window are NOT_EVALUATED.
type FlatLineCheck struct {
	SuspectWindow int
	FailWindow    int
	Tolerance     float64
}

func (c FlatLineCheck) Name() string { return "flat_line" }

func (c FlatLineCheck) Evaluate(s Series) ([]Flag, []Bounds) {
	flags := make([]Flag, len(s.Values))
	for i, v := range s.Values {
		if math.IsNaN(v) {
			flags[i] = FlagMissing
			continue
		}
		if i+1 < c.SuspectWindow {
			flags[i] = FlagNotEvaluated
			continue
		}
		run := trailingRun(s.Values, i, c.Tolerance)
		switch {
		case run >= c.FailWindow:
			flags[i] = FlagFail
		case run >= c.SuspectWindow:
			flags[i] = FlagSuspect
		default:
			flags[i] = FlagGood
		}
	}
	return flags, nil
}

// trailingRun counts how many consecutive values ending at index i
// stay within tol of s[i].
func trailingRun(values []float64, i int, tol float64) int {
	run := 1
	for j := i - 1; j >= 0; j-- {
		if math.IsNaN(values[j]) || math.Abs(values[j]-values[i]) > tol {
			break
		}
		run++
	}
	return run
}

// MissingValueCheck flags missing samples explicitly so a pipeline of
// only this check still yields a complete flag series.
type MissingValueCheck struct{}

func (MissingValueCheck) Name() string { return "missing" }

func (MissingValueCheck) Evaluate(s Series) ([]Flag, []Bounds) {
	flags := make([]Flag, len(s.Values))
	for i, v := range s.Values {
		if math.IsNaN(v) {
			flags[i] = FlagMissing
		} else {
			flags[i] = FlagGood
		}
	}
	return flags, nil
}

// notEvaluated returns an all-NOT_EVALUATED flag series, used when a
// check cannot run at all.
func notEvaluated(n int) []Flag {
	flags := make([]Flag, n)
	for i := range flags {
		flags[i] = FlagNotEvaluated
	}
	return flags
}
