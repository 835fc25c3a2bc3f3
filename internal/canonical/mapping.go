package canonical

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/ctd-cast-etl/internal/cnv"
)

// Role marks what a column contributes to the trajectory layout.
type Role int

const (
	RoleData Role = iota
	RoleTime
	RoleLatitude
	RoleLongitude
)

// Entry maps a known vendor sensor to its standardized identity.
// Scale/Offset convert raw values to the canonical unit and apply only
// when the column's raw unit matches RawUnit; an unexpected raw unit
// passes through unconverted with the raw unit string preserved.
type Entry struct {
	StandardName string
	RawUnit      string // expected vendor unit; "" accepts any
	Unit         string // canonical unit written when RawUnit matches
	Role         Role
	Scale        float64 // 0 means 1
	Offset       float64
}

// Mapping is an immutable lookup from vendor naming to the
// standardized convention. It is passed into the mapper explicitly so
// concurrent conversions never share mutable state.
type Mapping struct {
	byRawName map[string]Entry
}

// NewMapping builds a mapping from lowercase raw sensor names.
func NewMapping(entries map[string]Entry) Mapping {
	byName := make(map[string]Entry, len(entries))
	for k, v := range entries {
		byName[strings.ToLower(k)] = v
	}
	return Mapping{byRawName: byName}
}

// DefaultMapping covers the Sea-Bird sensor suite this pipeline sees
// in practice. IPTS-68 temperatures are rescaled to ITS-90
// (T90 = T68/1.00024); everything else converts by renaming only.
func DefaultMapping() Mapping {
	return NewMapping(map[string]Entry{
		"timej": {StandardName: "time", Role: RoleTime},

		"tv290c": {StandardName: "sea_water_temperature", RawUnit: "ITS-90, deg C", Unit: "degree_Celsius"},
		"t090c":  {StandardName: "sea_water_temperature", RawUnit: "ITS-90, deg C", Unit: "degree_Celsius"},
		"t190c":  {StandardName: "sea_water_temperature", RawUnit: "ITS-90, deg C", Unit: "degree_Celsius"},
		"t068c":  {StandardName: "sea_water_temperature", RawUnit: "IPTS-68, deg C", Unit: "degree_Celsius", Scale: 1 / 1.00024},

		"sal00": {StandardName: "sea_water_practical_salinity", RawUnit: "PSU", Unit: "1"},
		"sal11": {StandardName: "sea_water_practical_salinity", RawUnit: "PSU", Unit: "1"},

		"prdm": {StandardName: "sea_water_pressure", RawUnit: "db", Unit: "decibar"},
		"prm":  {StandardName: "sea_water_pressure", RawUnit: "db", Unit: "decibar"},

		"depsm": {StandardName: "depth", RawUnit: "salt water, m", Unit: "m"},

		"c0s/m": {StandardName: "sea_water_electrical_conductivity", RawUnit: "S/m", Unit: "S m-1"},
		"c1s/m": {StandardName: "sea_water_electrical_conductivity", RawUnit: "S/m", Unit: "S m-1"},

		"wetstar":   {StandardName: "volume_scattering_function", RawUnit: "mg/m^3", Unit: "mg m-3"},
		"fleco-afl": {StandardName: "volume_scattering_function", RawUnit: "mg/m^3", Unit: "mg m-3"},
	})
}

// MappedColumn is a column definition joined with its standardized
// identity. Unmapped columns keep their raw name and unit.
type MappedColumn struct {
	Column        cnv.ColumnDefinition
	CanonicalName string // standard name when mapped, raw name otherwise
	StandardName  string // "" when unmapped
	Unit          string // canonical unit when converted, raw otherwise
	Role          Role
	Scale         float64
	Offset        float64
	Mapped        bool
}

// VariableName returns the dataset variable name for the column:
// the vendor short name, lowercased with spaces collapsed.
func (c MappedColumn) VariableName() string {
	return strings.ReplaceAll(strings.ToLower(c.Column.RawName), " ", "_")
}

// Apply resolves every column against the mapping. An unrecognized
// column is retained under its raw name with an unmapped-variable
// diagnostic; conversion never aborts for one unknown sensor.
func (m Mapping) Apply(columns []cnv.ColumnDefinition) ([]MappedColumn, []Diagnostic) {
	mapped := make([]MappedColumn, 0, len(columns))
	var diags []Diagnostic

	for _, col := range columns {
		mc := MappedColumn{
			Column:        col,
			CanonicalName: col.RawName,
			Unit:          col.Unit,
			Scale:         1,
		}

		entry, ok := m.byRawName[strings.ToLower(col.RawName)]
		switch {
		case ok:
			mc.Mapped = true
			mc.CanonicalName = entry.StandardName
			mc.StandardName = entry.StandardName
			mc.Role = entry.Role
			if entry.RawUnit == "" || strings.EqualFold(entry.RawUnit, col.Unit) {
				mc.Unit = entry.Unit
				if entry.Scale != 0 {
					mc.Scale = entry.Scale
				}
				mc.Offset = entry.Offset
			}
			// else: unknown unit combination, values and raw unit pass
			// through untouched.

		case positionRole(col.RawName) != RoleData:
			mc.Mapped = true
			mc.Role = positionRole(col.RawName)
			if mc.Role == RoleLatitude {
				mc.CanonicalName = "latitude"
				mc.StandardName = "latitude"
				mc.Unit = "degrees_north"
			} else {
				mc.CanonicalName = "longitude"
				mc.StandardName = "longitude"
				mc.Unit = "degrees_east"
			}

		default:
			diags = append(diags, Diagnostic{
				Kind: KindUnmappedVariable,
				Message: fmt.Sprintf("column %q (unit %q) has no canonical mapping; keeping raw name",
					col.RawName, col.Unit),
			})
		}

		mapped = append(mapped, mc)
	}

	return mapped, diags
}

// positionRole detects per-row position columns by name, matching the
// loose vendor naming seen in the field (latitude, lat, lon, longitude).
func positionRole(rawName string) Role {
	n := strings.ToLower(rawName)
	switch {
	case strings.Contains(n, "lat"):
		return RoleLatitude
	case strings.Contains(n, "lon"):
		return RoleLongitude
	}
	return RoleData
}
