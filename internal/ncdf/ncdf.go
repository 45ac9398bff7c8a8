// SPDX-License-Identifier: MIT

// Package ncdf implements the array container format used for raw and
// daily observation files: named dimensions, typed n-dimensional
// variables with attributes, and global attributes. The on-disk layout
// is a JSON header followed by a little-endian binary payload. It
// preserves the data model of the upstream netCDF archives without
// claiming binary compatibility with them.
package ncdf

import (
	"errors"
	"fmt"
	"sort"
)

// Magic identifies a container file.
const Magic = "ARCN"

// ErrNotContainer reports a file that does not carry the magic bytes.
var ErrNotContainer = errors.New("ncdf: not a container file")

// Kind names the element type of an array.
type Kind string

const (
	I1 Kind = "i1"
	I2 Kind = "i2"
	I4 Kind = "i4"
	U1 Kind = "u1"
	U2 Kind = "u2"
	U4 Kind = "u4"
	F4 Kind = "f4"
	F8 Kind = "f8"
)

var elemSize = map[Kind]int{
	I1: 1, I2: 2, I4: 4,
	U1: 1, U2: 2, U4: 4,
	F4: 4, F8: 8,
}

func (k Kind) valid() bool {
	_, ok := elemSize[k]
	return ok
}

// Array is one variable: up to two dimensions of float64-representable
// values plus string attributes (long_name, units, scale and the like).
type Array struct {
	Dims  []string          `json:"dims"`
	Kind  Kind              `json:"kind"`
	Attrs map[string]string `json:"attrs,omitempty"`

	Scalar float64     `json:"-"`
	Vector []float64   `json:"-"`
	Matrix [][]float64 `json:"-"`
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.Dims) }

// Len returns the element count implied by the stored values.
func (a *Array) Len() int {
	switch a.Rank() {
	case 0:
		return 1
	case 1:
		return len(a.Vector)
	default:
		n := 0
		for _, row := range a.Matrix {
			n += len(row)
		}
		return n
	}
}

// File is an in-memory container.
type File struct {
	Attrs      map[string]string
	Dimensions map[string]int
	Arrays     map[string]*Array
}

// New returns an empty container.
func New() *File {
	return &File{
		Attrs:      make(map[string]string),
		Dimensions: make(map[string]int),
		Arrays:     make(map[string]*Array),
	}
}

// AddDimension registers a named dimension.
func (f *File) AddDimension(name string, size int) {
	f.Dimensions[name] = size
}

// AddArray registers an array after validating its shape against the
// file's dimensions.
func (f *File) AddArray(name string, a *Array) error {
	if !a.Kind.valid() {
		return fmt.Errorf("ncdf: array %q: unknown kind %q", name, a.Kind)
	}
	if len(a.Dims) > 2 {
		return fmt.Errorf("ncdf: array %q: rank %d not supported", name, len(a.Dims))
	}
	for _, dim := range a.Dims {
		if _, ok := f.Dimensions[dim]; !ok {
			return fmt.Errorf("ncdf: array %q: undefined dimension %q", name, dim)
		}
	}
	switch a.Rank() {
	case 1:
		if want := f.Dimensions[a.Dims[0]]; len(a.Vector) != want {
			return fmt.Errorf("ncdf: array %q: %d values for dimension %q of size %d",
				name, len(a.Vector), a.Dims[0], want)
		}
	case 2:
		rows, cols := f.Dimensions[a.Dims[0]], f.Dimensions[a.Dims[1]]
		if len(a.Matrix) != rows {
			return fmt.Errorf("ncdf: array %q: %d rows for dimension %q of size %d",
				name, len(a.Matrix), a.Dims[0], rows)
		}
		for i, row := range a.Matrix {
			if len(row) != cols {
				return fmt.Errorf("ncdf: array %q: row %d has %d values for dimension %q of size %d",
					name, i, len(row), a.Dims[1], cols)
			}
		}
	}
	f.Arrays[name] = a
	return nil
}

// names returns array names in deterministic order; the payload is
// written and read in this order.
func (f *File) names() []string {
	names := make([]string, 0, len(f.Arrays))
	for name := range f.Arrays {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
