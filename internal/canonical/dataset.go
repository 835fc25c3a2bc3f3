// Package canonical holds the in-memory dataset model shared by the
// conversion and QC paths: named dimensions, variables with CF-style
// attributes, and global attributes. The dataset assembler builds it
// from a decoded cast; the QC engine treats it as read-only and only
// the flag aggregation step appends variables.
package canonical

import (
	"fmt"
	"slices"
)

// Dimension names used by the trajectory layout.
const (
	DimObservation = "obs"
	DimTrajectory  = "trajectory"
)

// Dimension is a named axis with a fixed length.
type Dimension struct {
	Name   string
	Length int
}

// Variable holds one named array. Exactly one of Floats, Ints, or
// Bytes is populated, matching the NetCDF storage type. Attribute
// values may be string, []float64, []int32, or []uint8.
type Variable struct {
	Dimensions []string
	Floats     []float64
	Ints       []int32
	Bytes      []uint8
	Attributes map[string]any
}

// Len returns the number of elements in the variable's backing array.
func (v *Variable) Len() int {
	switch {
	case v.Floats != nil:
		return len(v.Floats)
	case v.Ints != nil:
		return len(v.Ints)
	case v.Bytes != nil:
		return len(v.Bytes)
	}
	return 0
}

// Dataset is the canonical self-describing container.
type Dataset struct {
	Dimensions []Dimension
	Global     map[string]any

	names []string
	vars  map[string]*Variable
}

// NewDataset creates a dataset with the given dimensions.
func NewDataset(dims ...Dimension) *Dataset {
	return &Dataset{
		Dimensions: dims,
		Global:     make(map[string]any),
		vars:       make(map[string]*Variable),
	}
}

// DimLength returns the length of the named dimension.
func (d *Dataset) DimLength(name string) (int, bool) {
	for _, dim := range d.Dimensions {
		if dim.Name == name {
			return dim.Length, true
		}
	}
	return 0, false
}

// AddVariable appends a variable. It validates the variable fully
// before mutating the dataset, so a failed add leaves no partial
// state. Adding over an existing name is an error.
func (d *Dataset) AddVariable(name string, v *Variable) error {
	if name == "" {
		return fmt.Errorf("add variable: empty name")
	}
	if _, exists := d.vars[name]; exists {
		return fmt.Errorf("add variable %q: already present", name)
	}
	want := 1
	for _, dn := range v.Dimensions {
		length, ok := d.DimLength(dn)
		if !ok {
			return fmt.Errorf("add variable %q: unknown dimension %q", name, dn)
		}
		want *= length
	}
	if got := v.Len(); got != want {
		return fmt.Errorf("add variable %q: %d values for dimensions %v (want %d)", name, got, v.Dimensions, want)
	}
	if v.Attributes == nil {
		v.Attributes = make(map[string]any)
	}
	d.names = append(d.names, name)
	d.vars[name] = v
	return nil
}

// Variable returns the named variable.
func (d *Dataset) Variable(name string) (*Variable, bool) {
	v, ok := d.vars[name]
	return v, ok
}

// Names returns the variable names in insertion order.
func (d *Dataset) Names() []string {
	return slices.Clone(d.names)
}

// Validate checks the structural contract: every variable's length
// equals the product of its dimension lengths. A violation is a bug in
// the assembler or aggregator, never a data problem.
func (d *Dataset) Validate() error {
	for _, name := range d.names {
		v := d.vars[name]
		want := 1
		for _, dn := range v.Dimensions {
			length, ok := d.DimLength(dn)
			if !ok {
				return fmt.Errorf("variable %q: unknown dimension %q", name, dn)
			}
			want *= length
		}
		if got := v.Len(); got != want {
			return fmt.Errorf("variable %q: %d values, dimension product %d", name, got, want)
		}
	}
	return nil
}
