// SPDX-License-Identifier: MIT

// Package transform converts raw instrument datasets into the compact
// integer representation used by daily files, and derives threshold
// masks over time-height grids.
package transform

import (
	"github.com/rinman24/arcobs/internal/engine"
)

// Dimension describes one axis of a variable.
type Dimension struct {
	Name engine.Dimension
	Size int
}

// Variable is an extracted, rescaled variable. Exactly one of Scalar,
// Vector, or Matrix is meaningful, selected by the rank implied by
// Dimensions.
type Variable struct {
	Dimensions []Dimension
	DType      engine.DType
	LongName   string
	Units      engine.Units
	Scale      engine.Scale

	Scalar int64
	Vector []int64
	Matrix [][]int64
}

// Rank returns the number of dimensions.
func (v *Variable) Rank() int { return len(v.Dimensions) }

// InstrumentData is the normalized content of one instrument file.
type InstrumentData struct {
	Dimensions map[string]Dimension
	Variables  map[string]*Variable
}

// NewInstrumentData returns an empty container.
func NewInstrumentData() *InstrumentData {
	return &InstrumentData{
		Dimensions: make(map[string]Dimension),
		Variables:  make(map[string]*Variable),
	}
}

// VariableRequest names a source variable and how to convert it.
type VariableRequest struct {
	// Variable is the name in the source dataset.
	Variable string
	// Name is the name in the produced InstrumentData.
	Name     string
	LongName string
	Units    engine.Units
	DType    engine.DType
	// Flag marks missing samples in the source; they convert to DType.Min().
	Flag float64
	// Dimensions of the produced variable.
	Dimensions []Dimension
	// Scale stored values must be divided by to recover physical values.
	// Zero means one.
	Scale engine.Scale
	// ConversionScale is applied to source values before rounding.
	// Zero means one.
	ConversionScale engine.Scale
	// Binary, when set, snaps in-range values to the nearer bound and
	// flags out-of-range values.
	Binary *[2]float64
	// Offset is added (after conversion scaling) to every value.
	Offset float64
}

func (r VariableRequest) scale() engine.Scale {
	if r.Scale == 0 {
		return engine.ScaleOne
	}
	return r.Scale
}

func (r VariableRequest) conversionScale() engine.Scale {
	if r.ConversionScale == 0 {
		return engine.ScaleOne
	}
	return r.ConversionScale
}

// Direction specifies which side of a threshold holds valid values.
type Direction uint8

const (
	LessThan Direction = iota
	GreaterThan
)

// Threshold is a mask cut value.
type Threshold struct {
	Value     float64
	Direction Direction
}

// MaskRequest asks for a binary cloud mask over a time-height grid.
type MaskRequest struct {
	Values    [][]int64
	Length    int
	Height    int
	Threshold Threshold
	// Scale divides stored values back to physical units before the
	// threshold comparison.
	Scale float64
	DType engine.DType
}
