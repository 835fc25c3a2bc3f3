package cnv

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// columnDeclRex matches "# name 3 = sal00: Salinity, Practical [PSU]".
	columnDeclRex = regexp.MustCompile(`^#\s*name\s+(\d+)\s*=\s*([^:]+?)\s*:\s*(.*)$`)

	// scalarMetaRex matches loosely formatted "key = value" lines from
	// both the "*" and "#" header sections.
	scalarMetaRex = regexp.MustCompile(`^[*#]\s*([A-Za-z][A-Za-z0-9_./ -]*?)\s*=\s*(.+?)\s*$`)

	// unitRex extracts the bracketed unit from a column declaration.
	unitRex = regexp.MustCompile(`\[([^\]]+)\]`)
)

// startTimeLayout matches Sea-Bird "Jun 02 2021 10:32:15".
const startTimeLayout = "Jan 02 2006 15:04:05"

// ParseHeader reads the header section of a CNV file and returns the
// declared columns, the cast's scalar metadata, and the index into
// lines of the first data row.
//
// It tolerates blank lines, comment noise, and key = value lines in
// any order. It fails with *MalformedHeaderError when no column
// declarations are present, when a declared column count (nquan)
// disagrees with the declarations found, when a sensor index repeats,
// or when the *END* data-start marker is missing.
func ParseHeader(lines []string) ([]ColumnDefinition, CastMetadata, int, error) {
	meta := CastMetadata{
		StartLatitude:  math.NaN(),
		StartLongitude: math.NaN(),
		Extra:          make(map[string]string),
	}

	var (
		columns       []ColumnDefinition
		seenIndex     = make(map[int]bool)
		recognized    = make(map[string]string) // normalized key -> last raw value
		declaredCount = -1
		dataStart     = -1
	)

	for i, line := range lines {
		kind, decl, key, value := classifyLine(line)

		switch kind {
		case lineDataStart:
			dataStart = i + 1

		case lineColumnDecl:
			if decl.RawName == "" {
				return nil, meta, 0, &MalformedHeaderError{
					Reason: fmt.Sprintf("line %d: column declaration with empty name", i+1),
				}
			}
			if seenIndex[decl.SensorIndex] {
				return nil, meta, 0, &MalformedHeaderError{
					Reason: fmt.Sprintf("line %d: duplicate sensor index %d", i+1, decl.SensorIndex),
				}
			}
			seenIndex[decl.SensorIndex] = true
			columns = append(columns, decl)

		case lineScalarMeta:
			applyScalar(&meta, recognized, &declaredCount, key, value)

		case lineIgnorable:
			// blank lines, calibration dumps, comments
		}

		if dataStart >= 0 {
			break
		}
	}

	if dataStart < 0 {
		return nil, meta, 0, &MalformedHeaderError{Reason: "no *END* data-start marker"}
	}
	if len(columns) == 0 {
		return nil, meta, 0, &MalformedHeaderError{Reason: "no column declarations found"}
	}
	if declaredCount >= 0 && declaredCount != len(columns) {
		return nil, meta, 0, &MalformedHeaderError{
			Reason: fmt.Sprintf("header declares %d columns (nquan) but %d were found", declaredCount, len(columns)),
		}
	}

	return columns, meta, dataStart, nil
}

// classifyLine decides the shape of one header line. All knowledge of
// vendor formatting quirks lives here.
func classifyLine(line string) (lineKind, ColumnDefinition, string, string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return lineIgnorable, ColumnDefinition{}, "", ""
	}
	if trimmed == "*END*" {
		return lineDataStart, ColumnDefinition{}, "", ""
	}

	if m := columnDeclRex.FindStringSubmatch(trimmed); m != nil {
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			return lineIgnorable, ColumnDefinition{}, "", ""
		}
		rest := strings.TrimSpace(m[3])
		unit := ""
		if um := unitRex.FindStringSubmatch(rest); um != nil {
			unit = strings.TrimSpace(um[1])
			rest = strings.TrimSpace(strings.Replace(rest, um[0], "", 1))
		}
		rest = strings.TrimSuffix(rest, ",")
		return lineColumnDecl, ColumnDefinition{
			RawName:     strings.TrimSpace(m[2]),
			LongName:    strings.TrimSpace(rest),
			Unit:        unit,
			SensorIndex: idx,
		}, "", ""
	}

	if m := scalarMetaRex.FindStringSubmatch(trimmed); m != nil {
		return lineScalarMeta, ColumnDefinition{}, strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}

	return lineIgnorable, ColumnDefinition{}, "", ""
}

// applyScalar routes one key = value line into the metadata struct.
// When a recognized key repeats, the later value wins and the earlier
// one is preserved in Extra under a "_dup<n>" suffix so nothing is
// silently dropped.
func applyScalar(meta *CastMetadata, recognized map[string]string, declaredCount *int, key, value string) {
	norm := strings.ToLower(strings.Join(strings.Fields(key), " "))

	isRecognized := false
	switch {
	case norm == "start_time":
		isRecognized = true
	case norm == "nquan":
		isRecognized = true
	case norm == "nmea latitude":
		isRecognized = true
	case norm == "nmea longitude":
		isRecognized = true
	case norm == "bad_flag":
		isRecognized = true
	case strings.HasSuffix(norm, " sn"):
		norm = "instrument sn"
		isRecognized = true
	}

	if !isRecognized {
		stashExtra(meta.Extra, key, value)
		return
	}

	if prev, seen := recognized[norm]; seen {
		stashExtra(meta.Extra, dupKey(meta.Extra, key), prev)
	}
	recognized[norm] = value

	switch norm {
	case "start_time":
		// Trailing "[NMEA time, header]" qualifiers are not part of the
		// timestamp.
		raw := strings.TrimSpace(strings.SplitN(value, "[", 2)[0])
		t, err := time.Parse(startTimeLayout, raw)
		if err != nil {
			stashExtra(meta.Extra, key, value)
			return
		}
		meta.StartTime = t.UTC()
	case "nquan":
		if n, err := strconv.Atoi(value); err == nil {
			*declaredCount = n
		} else {
			stashExtra(meta.Extra, key, value)
		}
	case "nmea latitude":
		if v, ok := parseNMEAAngle(value); ok {
			meta.StartLatitude = v
		} else {
			stashExtra(meta.Extra, key, value)
		}
	case "nmea longitude":
		if v, ok := parseNMEAAngle(value); ok {
			meta.StartLongitude = v
		} else {
			stashExtra(meta.Extra, key, value)
		}
	case "bad_flag":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			meta.BadFlag = v
			meta.HasBadFlag = true
		} else {
			stashExtra(meta.Extra, key, value)
		}
	case "instrument sn":
		meta.InstrumentID = value
	}
}

// parseNMEAAngle parses "60 05.92 N" style degree/decimal-minute
// coordinates, or a plain signed decimal degree value.
func parseNMEAAngle(s string) (float64, bool) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		v, err := strconv.ParseFloat(fields[0], 64)
		return v, err == nil
	case 3:
		deg, errD := strconv.ParseFloat(fields[0], 64)
		min, errM := strconv.ParseFloat(fields[1], 64)
		if errD != nil || errM != nil {
			return 0, false
		}
		v := deg + min/60
		switch strings.ToUpper(fields[2]) {
		case "N", "E":
			return v, true
		case "S", "W":
			return -v, true
		}
	}
	return 0, false
}

func stashExtra(extra map[string]string, key, value string) {
	if _, exists := extra[key]; !exists {
		extra[key] = value
		return
	}
	extra[dupKey(extra, key)] = value
}

func dupKey(extra map[string]string, key string) string {
	for n := 1; ; n++ {
		k := fmt.Sprintf("%s_dup%d", key, n)
		if _, exists := extra[k]; !exists {
			return k
		}
	}
}
