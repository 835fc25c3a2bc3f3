package qc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrossRangeCheck(t *testing.T) {
	check := GrossRangeCheck{FailMin: 0, FailMax: 40, SuspectMin: 2, SuspectMax: 35}

	flags, bounds := check.Evaluate(Series{Values: []float64{41, 1, 20, math.NaN()}})

	assert.Equal(t, []Flag{FlagFail, FlagSuspect, FlagGood, FlagMissing}, flags)
	require.Len(t, bounds, 4)
	assert.Equal(t, Bounds{Lower: 0, Upper: 40}, bounds[0])
}

func TestSpikeCheck(t *testing.T) {
	check := SpikeCheck{SuspectThreshold: 0.5, FailThreshold: 1.0}

	t.Run("flat series is good inside, not evaluated at endpoints", func(t *testing.T) {
		flags, _ := check.Evaluate(Series{Values: []float64{10, 10, 10, 10}})
		assert.Equal(t, []Flag{FlagNotEvaluated, FlagGood, FlagGood, FlagNotEvaluated}, flags)
	})

	t.Run("deviation grades against both thresholds", func(t *testing.T) {
		// Neighbour means are 10 in each case: deviations 0.7 and 2.0.
		flags, _ := check.Evaluate(Series{Values: []float64{10, 10.7, 10, 12, 10}})
		assert.Equal(t, FlagSuspect, flags[1])
		assert.Equal(t, FlagFail, flags[3])
	})

	t.Run("missing neighbour suppresses evaluation", func(t *testing.T) {
		flags, _ := check.Evaluate(Series{Values: []float64{10, 15, math.NaN(), 10}})
		assert.Equal(t, FlagNotEvaluated, flags[1])
		assert.Equal(t, FlagMissing, flags[2])
	})
}

func TestRateOfChangeCheck(t *testing.T) {
	check := RateOfChangeCheck{Threshold: 2.0}
	times := []float64{0, 1, 2, 3}

	t.Run("gradual change is good", func(t *testing.T) {
		flags, _ := check.Evaluate(Series{Values: []float64{10, 11, 12, 13}, Times: times})
		assert.Equal(t, []Flag{FlagNotEvaluated, FlagGood, FlagGood, FlagGood}, flags)
	})

	t.Run("jump beyond threshold is suspect", func(t *testing.T) {
		flags, _ := check.Evaluate(Series{Values: []float64{10, 10, 15, 15}, Times: times})
		assert.Equal(t, FlagSuspect, flags[2])
	})

	t.Run("no time coordinate means no evaluation", func(t *testing.T) {
		flags, _ := check.Evaluate(Series{Values: []float64{10, 20}})
		assert.Equal(t, []Flag{FlagNotEvaluated, FlagNotEvaluated}, flags)
	})

	t.Run("non-increasing timestamps suppress evaluation", func(t *testing.T) {
		flags, _ := check.Evaluate(Series{Values: []float64{10, 20}, Times: []float64{5, 5}})
		assert.Equal(t, FlagNotEvaluated, flags[1])
	})
}

func TestFlatLineCheck(t *testing.T) {
	check := FlatLineCheck{SuspectWindow: 3, FailWindow: 5, Tolerance: 0.01}

	t.Run("varying series is good once the window fills", func(t *testing.T) {
		flags, _ := check.Evaluate(Series{Values: []float64{1, 2, 3, 4, 5}})
		assert.Equal(t, []Flag{FlagNotEvaluated, FlagNotEvaluated, FlagGood, FlagGood, FlagGood}, flags)
	})

	t.Run("stuck sensor escalates from suspect to fail", func(t *testing.T) {
		flags, _ := check.Evaluate(Series{Values: []float64{7, 7, 7, 7, 7, 7}})
		assert.Equal(t, []Flag{
			FlagNotEvaluated, FlagNotEvaluated,
			FlagSuspect, FlagSuspect,
			FlagFail, FlagFail,
		}, flags)
	})

	t.Run("tolerance bounds the run", func(t *testing.T) {
		flags, _ := check.Evaluate(Series{Values: []float64{7, 7.005, 7.002, 7.1, 7.1}})
		assert.Equal(t, FlagSuspect, flags[2])
		assert.Equal(t, FlagGood, flags[3])
	})
}

func TestMissingValueCheck(t *testing.T) {
	flags, _ := MissingValueCheck{}.Evaluate(Series{Values: []float64{1, math.NaN(), 3}})
	assert.Equal(t, []Flag{FlagGood, FlagMissing, FlagGood}, flags)
}
