package cnv

import (
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testColumns(n int) []ColumnDefinition {
	cols := make([]ColumnDefinition, n)
	for i := range cols {
		cols[i] = ColumnDefinition{RawName: "c", SensorIndex: i}
	}
	return cols
}

func TestRowReader(t *testing.T) {
	t.Run("decodes every row with one value per column", func(t *testing.T) {
		lines := []string{
			" 153.43970    10.1234    35.0010     1.013",
			" 153.43975    10.1301    35.0021     2.027",
			" 153.43980    10.1355    35.0034     3.041",
		}
		r := NewRowReader(lines, 14, testColumns(4), nil)

		records, err := r.DecodeAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		for _, rec := range records {
			assert.Len(t, rec, 4)
		}
		assert.InDelta(t, 153.43970, records[0][0], 1e-9)
		assert.InDelta(t, 3.041, records[2][3], 1e-9)
	})

	t.Run("re-reading yields identical records", func(t *testing.T) {
		lines := []string{"1.0 2.0", "3.0 4.0"}
		r := NewRowReader(lines, 1, testColumns(2), nil)

		first, err := r.DecodeAll()
		require.NoError(t, err)
		r.Reset()
		second, err := r.DecodeAll()
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("row shape error cites the file line", func(t *testing.T) {
		lines := []string{
			"1.0 2.0 3.0",
			"1.0 2.0", // short row
		}
		r := NewRowReader(lines, 20, testColumns(3), nil)

		_, err := r.Next()
		require.NoError(t, err)
		_, err = r.Next()

		var shapeErr *RowShapeError
		require.ErrorAs(t, err, &shapeErr)
		assert.Equal(t, 21, shapeErr.Line)
		assert.Equal(t, 2, shapeErr.Got)
		assert.Equal(t, 3, shapeErr.Want)
	})

	t.Run("fill sentinel decodes as missing", func(t *testing.T) {
		lines := []string{"10.5 -9.990e-29"}
		r := NewRowReader(lines, 1, testColumns(2), nil)

		rec, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, 10.5, rec[0])
		assert.True(t, math.IsNaN(rec[1]))
	})

	t.Run("unparseable token decodes as missing", func(t *testing.T) {
		lines := []string{"10.5 bad"}
		r := NewRowReader(lines, 1, testColumns(2), nil)

		rec, err := r.Next()
		require.NoError(t, err)
		assert.True(t, math.IsNaN(rec[1]))
	})

	t.Run("custom fill predicate", func(t *testing.T) {
		lines := []string{"-999.0 5.0"}
		r := NewRowReader(lines, 1, testColumns(2), FillValuePredicate([]float64{-999.0}))

		rec, err := r.Next()
		require.NoError(t, err)
		assert.True(t, math.IsNaN(rec[0]))
		assert.Equal(t, 5.0, rec[1])
	})

	t.Run("comma-delimited rows", func(t *testing.T) {
		lines := []string{"1.5, 2.5, 3.5"}
		r := NewRowReader(lines, 1, testColumns(3), nil)

		rec, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, Record{1.5, 2.5, 3.5}, rec)
	})

	t.Run("blank lines skipped, EOF at end", func(t *testing.T) {
		lines := []string{"", "1.0", "   ", "2.0", ""}
		r := NewRowReader(lines, 1, testColumns(1), nil)

		records, err := r.DecodeAll()
		require.NoError(t, err)
		assert.Len(t, records, 2)

		_, err = r.Next()
		assert.Equal(t, io.EOF, err)
	})
}

func TestParseCast(t *testing.T) {
	data := []byte("# nquan = 2\n" +
		"# name 0 = tv290C: Temperature [ITS-90, deg C]\n" +
		"# name 1 = sal00: Salinity, Practical [PSU]\n" +
		"# start_time = Jun 02 2021 10:32:15\n" +
		"*END*\n" +
		" 10.1 35.0\n" +
		" 10.2 35.1\n")

	columns, meta, rows, err := ParseCast(data, nil)
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.False(t, meta.StartTime.IsZero())

	records, err := rows.DecodeAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Record{10.1, 35.0}, records[0])
}

func TestParseCastHonorsDeclaredBadFlag(t *testing.T) {
	data := []byte("# nquan = 2\n" +
		"# name 0 = tv290C: Temperature [ITS-90, deg C]\n" +
		"# name 1 = sal00: Salinity, Practical [PSU]\n" +
		"# bad_flag = -99.0\n" +
		"# start_time = Jun 02 2021 10:32:15\n" +
		"*END*\n" +
		" 10.1 -99.0\n" +
		" 10.2 35.1\n")

	// The caller's predicate knows nothing about -99.0; the header
	// declaration alone must mark it missing.
	_, meta, rows, err := ParseCast(data, FillValuePredicate(DefaultFillValues))
	require.NoError(t, err)
	assert.True(t, meta.HasBadFlag)
	assert.Equal(t, -99.0, meta.BadFlag)

	records, err := rows.DecodeAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, math.IsNaN(records[0][1]))
	assert.Equal(t, 35.1, records[1][1])
}
