package cnv

import (
	"io"
	"math"
	"strconv"
	"strings"
)

// DefaultFillValues are the sentinels Sea-Bird instruments emit for
// missing samples.
var DefaultFillValues = []float64{-9.990e-29}

// FillPredicate reports whether a successfully parsed value is a fill
// sentinel and should decode as missing.
type FillPredicate func(v float64) bool

// FillValuePredicate builds a predicate matching any of the given
// sentinels exactly.
func FillValuePredicate(sentinels []float64) FillPredicate {
	set := make(map[float64]bool, len(sentinels))
	for _, s := range sentinels {
		set[s] = true
	}
	return func(v float64) bool { return set[v] }
}

// RowReader decodes the data section of a CNV file into Records. It is
// forward-only and bounded by the input; Reset rewinds it to the first
// row, so re-reading the same lines yields identical records.
type RowReader struct {
	lines     []string
	startLine int // 1-based file line number of lines[0]
	columns   int
	isFill    FillPredicate
	pos       int
}

// NewRowReader creates a reader over the data lines that follow the
// header. startLine is the 1-based file line number of the first data
// line, used for error reporting. A nil fill predicate uses
// DefaultFillValues.
func NewRowReader(lines []string, startLine int, columns []ColumnDefinition, isFill FillPredicate) *RowReader {
	if isFill == nil {
		isFill = FillValuePredicate(DefaultFillValues)
	}
	return &RowReader{
		lines:     lines,
		startLine: startLine,
		columns:   len(columns),
		isFill:    isFill,
	}
}

// Next returns the next observation record, io.EOF when the data is
// exhausted, or *RowShapeError when a row's token count does not match
// the declared columns. Blank lines are skipped.
func (r *RowReader) Next() (Record, error) {
	for r.pos < len(r.lines) {
		line := r.lines[r.pos]
		fileLine := r.startLine + r.pos
		r.pos++

		tokens := splitRow(line)
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) != r.columns {
			return nil, &RowShapeError{Line: fileLine, Got: len(tokens), Want: r.columns}
		}

		rec := make(Record, len(tokens))
		for i, tok := range tokens {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil || r.isFill(v) {
				// Unparseable tokens and fill sentinels both decode as
				// missing; vendors use each interchangeably.
				rec[i] = math.NaN()
				continue
			}
			rec[i] = v
		}
		return rec, nil
	}
	return nil, io.EOF
}

// Reset rewinds the reader to the first data row.
func (r *RowReader) Reset() { r.pos = 0 }

// DecodeAll drains the reader and returns every record. The first row
// shape error aborts decoding.
func (r *RowReader) DecodeAll() ([]Record, error) {
	var records []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

// splitRow tokenizes one data row. Rows are whitespace-delimited in
// most files but some vendors export comma-separated values.
func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if strings.Contains(line, ",") {
		parts := strings.Split(line, ",")
		tokens := make([]string, 0, len(parts))
		for _, p := range parts {
			tokens = append(tokens, strings.TrimSpace(p))
		}
		return tokens
	}
	return strings.Fields(line)
}
