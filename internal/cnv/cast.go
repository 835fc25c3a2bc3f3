package cnv

import "strings"

// ParseCast parses a fully buffered CNV file: header first, then a
// RowReader positioned at the first data row. The reader is
// restartable via Reset, and re-parsing the same bytes yields
// identical output.
//
// A bad_flag sentinel declared in the header is honored in addition to
// the caller's fill predicate, so per-file sentinels need no
// configuration.
func ParseCast(data []byte, isFill FillPredicate) ([]ColumnDefinition, CastMetadata, *RowReader, error) {
	lines := splitLines(string(data))

	columns, meta, dataStart, err := ParseHeader(lines)
	if err != nil {
		return nil, meta, nil, err
	}

	if meta.HasBadFlag {
		isFill = withSentinel(isFill, meta.BadFlag)
	}

	rows := NewRowReader(lines[dataStart:], dataStart+1, columns, isFill)
	return columns, meta, rows, nil
}

func withSentinel(isFill FillPredicate, sentinel float64) FillPredicate {
	if isFill == nil {
		isFill = FillValuePredicate(DefaultFillValues)
	}
	return func(v float64) bool { return v == sentinel || isFill(v) }
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}
