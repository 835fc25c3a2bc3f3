package canonical

import (
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/ctd-cast-etl/internal/cnv"
)

// Global attribute values applied to every converted cast.
const (
	conventionsVersion = "CF-1.12"
	featureType        = "trajectory"
	timeUnits          = "seconds since 1970-01-01T00:00:00Z"
)

// AssembleInput bundles everything the assembler needs for one cast.
type AssembleInput struct {
	SourceName string // input file name, used in diagnostics and history
	Records    []cnv.Record
	Columns    []MappedColumn
	Metadata   cnv.CastMetadata
}

// Assemble builds the canonical dataset for a single cast: one
// trajectory, one observation dimension, coordinate variables linked
// to every data variable, and the full CF attribute set. The emitted
// dataset is self-describing; no writer adds attributes afterwards.
//
// Positions are taken per observation when the cast carries latitude
// and longitude columns, and broadcast from the header position
// otherwise. Zero records fail with *EmptyCastError. A non-monotonic
// time coordinate is reported as a diagnostic, not an error: casts
// with instrument clock steps must still convert.
func Assemble(in AssembleInput) (*Dataset, []Diagnostic, error) {
	n := len(in.Records)
	if n == 0 {
		return nil, nil, &EmptyCastError{File: in.SourceName}
	}

	var diags []Diagnostic

	timeIdx, latIdx, lonIdx := -1, -1, -1
	for i, col := range in.Columns {
		switch col.Role {
		case RoleTime:
			timeIdx = i
		case RoleLatitude:
			latIdx = i
		case RoleLongitude:
			lonIdx = i
		}
	}

	times, timeDiags := buildTimes(in, timeIdx)
	diags = append(diags, timeDiags...)

	if idx := firstDecrease(times); idx >= 0 {
		diags = append(diags, Diagnostic{
			Kind: KindNonMonotonicTime,
			Message: fmt.Sprintf("%s: time coordinate decreases at observation %d; trajectory ordering is suspect",
				in.SourceName, idx),
		})
	}

	// Per-row positions only when the cast carries both coordinates;
	// a lone latitude or longitude column cannot place observations.
	var lats, lons []float64
	if latIdx >= 0 && lonIdx >= 0 {
		lats = columnValues(in.Records, in.Columns[latIdx], latIdx)
		lons = columnValues(in.Records, in.Columns[lonIdx], lonIdx)
	} else {
		lats = broadcast(in.Metadata.StartLatitude, n)
		lons = broadcast(in.Metadata.StartLongitude, n)
	}

	ds := NewDataset(
		Dimension{Name: DimTrajectory, Length: 1},
		Dimension{Name: DimObservation, Length: n},
	)

	if err := ds.AddVariable("trajectory", &Variable{
		Dimensions: []string{DimTrajectory},
		Ints:       []int32{1},
		Attributes: map[string]any{
			"cf_role":   "trajectory_id",
			"long_name": "trajectory identifier",
		},
	}); err != nil {
		return nil, nil, err
	}

	if err := ds.AddVariable("time", &Variable{
		Dimensions: []string{DimObservation},
		Floats:     times,
		Attributes: map[string]any{
			"standard_name": "time",
			"units":         timeUnits,
			"calendar":      "gregorian",
			"axis":          "T",
		},
	}); err != nil {
		return nil, nil, err
	}

	if err := ds.AddVariable("lat", &Variable{
		Dimensions: []string{DimObservation},
		Floats:     lats,
		Attributes: map[string]any{
			"standard_name": "latitude",
			"units":         "degrees_north",
			"axis":          "Y",
		},
	}); err != nil {
		return nil, nil, err
	}

	if err := ds.AddVariable("lon", &Variable{
		Dimensions: []string{DimObservation},
		Floats:     lons,
		Attributes: map[string]any{
			"standard_name": "longitude",
			"units":         "degrees_east",
			"axis":          "X",
		},
	}); err != nil {
		return nil, nil, err
	}

	for i, col := range in.Columns {
		if col.Role != RoleData {
			continue
		}
		attrs := map[string]any{
			"long_name":   col.Column.LongName,
			"units":       col.Unit,
			"coordinates": "time lat lon",
		}
		if col.StandardName != "" {
			attrs["standard_name"] = col.StandardName
		}
		if err := ds.AddVariable(col.VariableName(), &Variable{
			Dimensions: []string{DimObservation},
			Floats:     columnValues(in.Records, col, i),
			Attributes: attrs,
		}); err != nil {
			return nil, nil, err
		}
	}

	applyGlobalAttributes(ds, in, times)

	if err := ds.Validate(); err != nil {
		return nil, nil, fmt.Errorf("assembled dataset failed validation: %w", err)
	}
	return ds, diags, nil
}

// buildTimes derives the time coordinate: from a Julian-day column
// relative to January 1 of the start year when present, otherwise the
// header start time broadcast across all observations.
func buildTimes(in AssembleInput, timeIdx int) ([]float64, []Diagnostic) {
	var diags []Diagnostic

	start := in.Metadata.StartTime
	if start.IsZero() {
		start = clock.Now().UTC()
		diags = append(diags, Diagnostic{
			Kind:    KindMissingStartTime,
			Message: fmt.Sprintf("%s: header carries no start_time; using conversion time", in.SourceName),
		})
	}

	n := len(in.Records)
	times := make([]float64, n)

	if timeIdx >= 0 {
		base := time.Date(start.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		for j, rec := range in.Records {
			times[j] = float64(base.Unix()) + rec[timeIdx]*86400
		}
		return times, diags
	}

	sec := float64(start.Unix())
	for j := range times {
		times[j] = sec
	}
	return times, diags
}

// timeBounds returns the first and last usable timestamps, skipping
// missing samples at either end. ok is false when every time is
// missing.
func timeBounds(times []float64) (time.Time, time.Time, bool) {
	lo, hi := -1, -1
	for i, v := range times {
		if math.IsNaN(v) {
			continue
		}
		if lo < 0 {
			lo = i
		}
		hi = i
	}
	if lo < 0 {
		return time.Time{}, time.Time{}, false
	}
	first := time.Unix(int64(times[lo]), 0).UTC()
	last := time.Unix(int64(times[hi]), 0).UTC()
	return first, last, true
}

// columnValues extracts column idx from every record, applying the
// mapper's unit conversion. NaN (missing) propagates untouched.
func columnValues(records []cnv.Record, col MappedColumn, idx int) []float64 {
	values := make([]float64, len(records))
	scale := col.Scale
	if scale == 0 {
		scale = 1
	}
	for j, rec := range records {
		values[j] = rec[idx]*scale + col.Offset
	}
	return values
}

func broadcast(v float64, n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return values
}

// firstDecrease returns the index of the first element smaller than
// its predecessor, or -1. NaN entries are skipped.
func firstDecrease(values []float64) int {
	prev := math.NaN()
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if !math.IsNaN(prev) && v < prev {
			return i
		}
		prev = v
	}
	return -1
}

func applyGlobalAttributes(ds *Dataset, in AssembleInput, times []float64) {
	ds.Global["title"] = "CTD cast trajectory data"
	ds.Global["summary"] = "CTD profile data converted from Sea-Bird CNV to a CF-compliant NetCDF trajectory."
	ds.Global["Conventions"] = conventionsVersion
	ds.Global["featureType"] = featureType
	ds.Global["institution"] = "Institute of Marine Research (IMR)"
	ds.Global["source"] = "Sea-Bird CTD"
	ds.Global["references"] = "http://metadata.nmdc.no"
	ds.Global["history"] = fmt.Sprintf("%s: converted from %s",
		clock.Now().UTC().Format(time.RFC3339), in.SourceName)
	if first, last, ok := timeBounds(times); ok {
		ds.Global["time_coverage_start"] = first.Format(time.RFC3339)
		ds.Global["time_coverage_end"] = last.Format(time.RFC3339)
		ds.Global["time_coverage_duration"] = last.Sub(first).String()
	}
	if in.Metadata.InstrumentID != "" {
		ds.Global["instrument_serial_number"] = in.Metadata.InstrumentID
	}
}
