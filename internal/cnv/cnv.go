package cnv

import (
	"math"
	"time"
)

// ColumnDefinition describes one declared data column.
type ColumnDefinition struct {
	RawName     string // vendor short name, e.g. "tv290C"
	LongName    string // descriptive name, e.g. "Temperature"
	Unit        string // raw unit string, e.g. "ITS-90, deg C"
	SensorIndex int    // zero-based index from the declaration line
}

// CastMetadata holds the scalar header fields of a single cast.
// Built once per parse and not modified afterwards.
type CastMetadata struct {
	StartTime      time.Time // zero when the header carries no start_time
	StartLatitude  float64   // NaN when absent
	StartLongitude float64   // NaN when absent
	InstrumentID   string
	BadFlag        float64 // fill sentinel declared by the header
	HasBadFlag     bool

	// Extra keeps every key = value line that did not map to a field
	// above, plus superseded duplicates of recognized keys under a
	// "<key>_dup<n>" suffix. Nothing is silently dropped.
	Extra map[string]string
}

// HasPosition reports whether the header carried a usable start position.
func (m CastMetadata) HasPosition() bool {
	return !math.IsNaN(m.StartLatitude) && !math.IsNaN(m.StartLongitude)
}

// Record is one decoded observation row: one float per column, in
// declaration order. Missing samples are NaN.
type Record []float64

// lineKind classifies a single header line by shape. Keeping the
// vendor-format drift inside classifyLine is what lets the rest of the
// parser stay a plain accumulation loop.
type lineKind int

const (
	lineIgnorable lineKind = iota
	lineColumnDecl
	lineScalarMeta
	lineDataStart
)
