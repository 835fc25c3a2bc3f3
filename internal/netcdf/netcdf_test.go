package netcdf

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/ctd-cast-etl/internal/canonical"
)

func sampleDataset(t *testing.T) *canonical.Dataset {
	t.Helper()
	ds := canonical.NewDataset(
		canonical.Dimension{Name: canonical.DimTrajectory, Length: 1},
		canonical.Dimension{Name: canonical.DimObservation, Length: 3},
	)
	ds.Global["featureType"] = "trajectory"
	ds.Global["Conventions"] = "CF-1.12"

	require.NoError(t, ds.AddVariable("trajectory", &canonical.Variable{
		Dimensions: []string{canonical.DimTrajectory},
		Ints:       []int32{1},
		Attributes: map[string]any{"cf_role": "trajectory_id"},
	}))
	require.NoError(t, ds.AddVariable("time", &canonical.Variable{
		Dimensions: []string{canonical.DimObservation},
		Floats:     []float64{1622629935, 1622629940, 1622629945},
		Attributes: map[string]any{"standard_name": "time", "units": "seconds since 1970-01-01T00:00:00Z"},
	}))
	require.NoError(t, ds.AddVariable("tv290c", &canonical.Variable{
		Dimensions: []string{canonical.DimObservation},
		Floats:     []float64{10.1, math.NaN(), 10.3},
		Attributes: map[string]any{
			"standard_name": "sea_water_temperature",
			"units":         "degree_Celsius",
			"coordinates":   "time lat lon",
		},
	}))
	require.NoError(t, ds.AddVariable("tv290c_qc", &canonical.Variable{
		Dimensions: []string{canonical.DimObservation},
		Bytes:      []uint8{1, 9, 4},
		Attributes: map[string]any{
			"standard_name": "aggregate_quality_flag",
			"flag_values":   []uint8{1, 2, 3, 4, 9},
		},
	}))
	return ds
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cast.nc")
	require.NoError(t, Write(path, sampleDataset(t)))

	got, err := Read(path)
	require.NoError(t, err)

	t.Run("dimensions survive", func(t *testing.T) {
		obs, ok := got.DimLength(canonical.DimObservation)
		require.True(t, ok)
		assert.Equal(t, 3, obs)
		traj, ok := got.DimLength(canonical.DimTrajectory)
		require.True(t, ok)
		assert.Equal(t, 1, traj)
	})

	t.Run("global attributes survive", func(t *testing.T) {
		assert.Equal(t, "trajectory", got.Global["featureType"])
		assert.Equal(t, "CF-1.12", got.Global["Conventions"])
	})

	t.Run("float values and missing samples survive", func(t *testing.T) {
		temp, ok := got.Variable("tv290c")
		require.True(t, ok)
		require.Len(t, temp.Floats, 3)
		assert.Equal(t, 10.1, temp.Floats[0])
		assert.True(t, math.IsNaN(temp.Floats[1]))
		assert.Equal(t, 10.3, temp.Floats[2])
		assert.Equal(t, "sea_water_temperature", temp.Attributes["standard_name"])
	})

	t.Run("byte flags and int ids survive", func(t *testing.T) {
		flags, ok := got.Variable("tv290c_qc")
		require.True(t, ok)
		assert.Equal(t, []uint8{1, 9, 4}, flags.Bytes)

		traj, ok := got.Variable("trajectory")
		require.True(t, ok)
		assert.Equal(t, []int32{1}, traj.Ints)
	})

	t.Run("reloaded dataset passes validation", func(t *testing.T) {
		require.NoError(t, got.Validate())
	})
}

func TestWriteLeavesNoPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "cast.nc") // parent does not exist

	err := Write(path, sampleDataset(t))
	require.Error(t, err)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
