// Package netcdf persists the canonical dataset as a NetCDF classic
// (CDF-1/2) container and loads it back for the QC path.
package netcdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"

	"github.com/couchcryptid/ctd-cast-etl/internal/canonical"
)

// Write emits the dataset to path. The file is written to a temporary
// sibling and renamed into place, so a failed conversion never leaves
// a partial output file behind.
func Write(path string, ds *canonical.Dataset) (err error) {
	h, err := buildHeader(ds)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".cast-*.nc")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	f, err := cdf.Create(tmp, h)
	if err != nil {
		return fmt.Errorf("write %s: header: %w", path, err)
	}

	for _, name := range ds.Names() {
		v, _ := ds.Variable(name)
		if err = writeVariable(f, name, v); err != nil {
			return fmt.Errorf("write %s: variable %q: %w", path, name, err)
		}
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Read loads a previously written container into the canonical model.
func Read(path string) (*canonical.Dataset, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer ff.Close()

	f, err := cdf.Open(ff)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	dimNames := f.Header.Dimensions("")
	dimLens := f.Header.Lengths("")
	dims := make([]canonical.Dimension, len(dimNames))
	for i := range dimNames {
		dims[i] = canonical.Dimension{Name: dimNames[i], Length: dimLens[i]}
	}
	ds := canonical.NewDataset(dims...)

	for _, a := range f.Header.Attributes("") {
		ds.Global[a] = f.Header.GetAttribute("", a)
	}

	for _, name := range f.Header.Variables() {
		v, err := readVariable(f, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: variable %q: %w", path, name, err)
		}
		if err := ds.AddVariable(name, v); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	return ds, nil
}

func buildHeader(ds *canonical.Dataset) (*cdf.Header, error) {
	names := make([]string, len(ds.Dimensions))
	lengths := make([]int, len(ds.Dimensions))
	for i, d := range ds.Dimensions {
		names[i] = d.Name
		lengths[i] = d.Length
	}
	h := cdf.NewHeader(names, lengths)

	for name, value := range ds.Global {
		h.AddAttribute("", name, value)
	}

	for _, name := range ds.Names() {
		v, _ := ds.Variable(name)
		h.AddVariable(name, v.Dimensions, zeroValue(v))
		for attr, value := range v.Attributes {
			h.AddAttribute(name, attr, value)
		}
	}

	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid container header: %v", errs[0])
	}
	return h, nil
}

// zeroValue picks the storage type for a variable: DOUBLE for data
// and coordinates, INT for identifiers, BYTE for QC flags.
func zeroValue(v *canonical.Variable) any {
	switch {
	case v.Ints != nil:
		return []int32{}
	case v.Bytes != nil:
		return []uint8{}
	default:
		return []float64{}
	}
}

func writeVariable(f *cdf.File, name string, v *canonical.Variable) error {
	end := f.Header.Lengths(name)
	begin := make([]int, len(end))
	w := f.Writer(name, begin, end)

	var values any
	switch {
	case v.Ints != nil:
		values = v.Ints
	case v.Bytes != nil:
		values = v.Bytes
	default:
		values = v.Floats
	}

	// A write that exactly fills the variable's extent reports io.EOF,
	// matching the reader side.
	if _, err := w.Write(values); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func readVariable(f *cdf.File, name string) (*canonical.Variable, error) {
	v := &canonical.Variable{
		Dimensions: f.Header.Dimensions(name),
		Attributes: make(map[string]any),
	}
	for _, a := range f.Header.Attributes(name) {
		v.Attributes[a] = f.Header.GetAttribute(name, a)
	}

	n := 1
	for _, l := range f.Header.Lengths(name) {
		n *= l
	}

	r := f.Reader(name, nil, nil)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil && err != io.EOF {
		return nil, err
	}

	switch b := buf.(type) {
	case []float64:
		v.Floats = b
	case []float32:
		v.Floats = make([]float64, len(b))
		for i, x := range b {
			v.Floats[i] = float64(x)
		}
	case []int32:
		v.Ints = b
	case []int16:
		v.Ints = make([]int32, len(b))
		for i, x := range b {
			v.Ints[i] = int32(x)
		}
	case []uint8:
		v.Bytes = b
	default:
		return nil, fmt.Errorf("unsupported storage type %T", buf)
	}
	return v, nil
}
