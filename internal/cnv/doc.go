// Package cnv parses Sea-Bird style CNV instrument cast files.
//
// # File layout
//
// A CNV file is an ASCII header followed by numeric data rows. Header
// lines begin with "*" (vendor/instrument lines) or "#" (software
// lines); the data section starts immediately after the "*END*"
// marker. Three header line shapes matter:
//
// Column declarations:
//
//	# name 0 = tv290C: Temperature [ITS-90, deg C]
//	         │   │      │            └ unit, bracketed, optional
//	         │   │      └ descriptive long name
//	         │   └ vendor short name (the column's raw name)
//	         └ zero-based sensor index
//
// Scalar metadata, loosely ordered key = value lines:
//
//	# nquan = 12                       (declared column count)
//	# start_time = Jun 02 2021 10:32:15 [NMEA time, header]
//	* NMEA Latitude = 60 05.92 N
//	* NMEA Longitude = 003 44.17 E
//	* Temperature SN = 6083
//
// Everything else (blank lines, comments, calibration dumps) is
// ignorable. Vendors disagree on whitespace, key casing, and line
// order, so classification is per-line and shape-based rather than
// positional.
//
// Data rows are whitespace- or comma-delimited, one observation per
// line, one token per declared column. Instruments embed fill
// sentinels (typically -9.990e-29) for missing samples; those and
// unparseable numeric tokens decode as NaN rather than failing the
// row.
package cnv
