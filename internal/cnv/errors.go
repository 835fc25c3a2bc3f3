package cnv

import "fmt"

// MalformedHeaderError reports a header that violates the CNV grammar:
// no column declarations, a declared column count that disagrees with
// the declarations found, or a missing data-start marker. Fatal for
// the file.
type MalformedHeaderError struct {
	Reason string
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("malformed CNV header: %s", e.Reason)
}

// RowShapeError reports a data row whose token count does not match
// the declared columns. Line is 1-based within the file.
type RowShapeError struct {
	Line int
	Got  int
	Want int
}

func (e *RowShapeError) Error() string {
	return fmt.Sprintf("line %d: row has %d values, header declares %d columns", e.Line, e.Got, e.Want)
}
