package qc

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/ctd-cast-etl/internal/canonical"
)

func testEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testDataset(t *testing.T, values []float64) *canonical.Dataset {
	t.Helper()
	ds := canonical.NewDataset(
		canonical.Dimension{Name: canonical.DimTrajectory, Length: 1},
		canonical.Dimension{Name: canonical.DimObservation, Length: len(values)},
	)
	times := make([]float64, len(values))
	for i := range times {
		times[i] = float64(1622629935 + i)
	}
	require.NoError(t, ds.AddVariable("time", &canonical.Variable{
		Dimensions: []string{canonical.DimObservation},
		Floats:     times,
		Attributes: map[string]any{"standard_name": "time"},
	}))
	require.NoError(t, ds.AddVariable("t090c", &canonical.Variable{
		Dimensions: []string{canonical.DimObservation},
		Floats:     values,
		Attributes: map[string]any{"standard_name": "sea_water_temperature"},
	}))
	return ds
}

func TestEngineRun(t *testing.T) {
	specs := []CheckSpec{
		{Kind: "gross_range", FailMin: f(0), FailMax: f(40), SuspectMin: f(2), SuspectMax: f(35)},
		{Kind: "spike", SuspectThreshold: f(0.5), FailThreshold: f(1.0)},
	}

	t.Run("each check yields one result", func(t *testing.T) {
		ds := testDataset(t, []float64{10, 10.1, 10.2, 10.1})
		results, diags, err := testEngine().Run(ds, "t090c", specs)
		require.NoError(t, err)
		assert.Empty(t, diags)
		require.Len(t, results, 2)
		assert.Equal(t, "gross_range", results[0].CheckName)
		assert.Equal(t, "spike", results[1].CheckName)
		for _, r := range results {
			assert.Len(t, r.Flags, 4)
			assert.Equal(t, "t090c", r.VariableName)
		}
	})

	t.Run("misconfigured check degrades without aborting siblings", func(t *testing.T) {
		ds := testDataset(t, []float64{10, 10.1, 10.2})
		bad := append([]CheckSpec{{Kind: "spike"}}, specs[0])

		results, diags, err := testEngine().Run(ds, "t090c", bad)
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, canonical.KindCheckConfig, diags[0].Kind)

		require.Len(t, results, 2)
		assert.Equal(t, []Flag{FlagNotEvaluated, FlagNotEvaluated, FlagNotEvaluated}, results[0].Flags)
		assert.Equal(t, FlagGood, results[1].Flags[0])
	})

	t.Run("unknown variable is an error", func(t *testing.T) {
		ds := testDataset(t, []float64{10})
		_, _, err := testEngine().Run(ds, "sal00", specs)
		assert.ErrorContains(t, err, "sal00")
	})
}

func TestEngineAttachAggregate(t *testing.T) {
	ds := testDataset(t, []float64{10, 41, math.NaN()})
	engine := testEngine()

	specs := []CheckSpec{
		{Kind: "gross_range", FailMin: f(0), FailMax: f(40), SuspectMin: f(2), SuspectMax: f(35)},
	}
	results, diags, err := engine.Run(ds, "t090c", specs)
	require.NoError(t, err)
	require.Empty(t, diags)

	require.NoError(t, engine.AttachAggregate(ds, "t090c", results))

	v, ok := ds.Variable("t090c_qc")
	require.True(t, ok)
	assert.Equal(t, []uint8{uint8(FlagGood), uint8(FlagFail), uint8(FlagMissing)}, v.Bytes)
	assert.Equal(t, []string{canonical.DimObservation}, v.Dimensions)
	assert.Equal(t, "aggregate_quality_flag", v.Attributes["standard_name"])
	assert.Equal(t, FlagValues(), v.Attributes["flag_values"])
	assert.Equal(t, FlagMeanings, v.Attributes["flag_meanings"])
	assert.Equal(t, "checks applied: gross_range", v.Attributes["comment"])
	require.NoError(t, ds.Validate())

	t.Run("second attach for the same variable is rejected", func(t *testing.T) {
		assert.Error(t, engine.AttachAggregate(ds, "t090c", results))
	})
}
