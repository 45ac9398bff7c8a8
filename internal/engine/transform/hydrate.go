// SPDX-License-Identifier: MIT

package transform

import (
	"fmt"

	"github.com/rinman24/arcobs/internal/chrono"
	"github.com/rinman24/arcobs/internal/engine"
	"github.com/rinman24/arcobs/internal/ncdf"
)

// Flag9s is the missing-value marker most upstream archives use.
const Flag9s = -999

// Strategy hydrates InstrumentData from one source dataset. Each
// instrument/product pairing declares its own dimensions and variable
// requests.
type Strategy interface {
	Hydrate(ds *ncdf.File, name string) (*InstrumentData, error)
}

// builder accumulates dimensions and variables while hydrating; the
// first error wins and short-circuits the rest.
type builder struct {
	ds   *ncdf.File
	name string
	data *InstrumentData
	err  error
}

func newBuilder(ds *ncdf.File, name string) *builder {
	return &builder{ds: ds, name: name, data: NewInstrumentData()}
}

func (b *builder) build() (*InstrumentData, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.data, nil
}

// dimension sizes a pipeline dimension from a source dimension.
func (b *builder) dimension(key string, name engine.Dimension, source string) {
	if b.err != nil {
		return
	}
	size, ok := b.ds.Dimensions[source]
	if !ok {
		b.err = fmt.Errorf("transform: %s: no dimension %q", b.name, source)
		return
	}
	b.data.Dimensions[key] = Dimension{Name: name, Size: size}
}

// fixedDimension declares a dimension whose size the strategy dictates.
func (b *builder) fixedDimension(key string, name engine.Dimension, size int) {
	if b.err != nil {
		return
	}
	b.data.Dimensions[key] = Dimension{Name: name, Size: size}
}

func (b *builder) dim(key string) Dimension {
	return b.data.Dimensions[key]
}

// epoch records the midnight of the file's timestamp as a scalar epoch
// variable. Precision controls how much of the name must parse.
func (b *builder) epoch(precision chrono.Precision) {
	if b.err != nil {
		return
	}
	dt, err := chrono.Extract(b.name, precision)
	if err != nil {
		b.err = fmt.Errorf("transform: epoch: %w", err)
		return
	}
	b.data.Variables["epoch"] = &Variable{
		DType:    engine.I4,
		LongName: "Unix Epoch 1970 of Initial Timestamp",
		Units:    engine.UnitsSeconds,
		Scale:    engine.ScaleOne,
		Scalar:   dt.Midnight().Unix(),
	}
}

// epochAtTime records the file timestamp itself, not its midnight.
func (b *builder) epochAtTime() {
	if b.err != nil {
		return
	}
	dt, err := chrono.Extract(b.name, chrono.ToSecond)
	if err != nil {
		b.err = fmt.Errorf("transform: epoch: %w", err)
		return
	}
	b.data.Variables["epoch"] = &Variable{
		DType:    engine.I4,
		LongName: "Unix Epoch 1970 of Initial Timestamp",
		Units:    engine.UnitsSeconds,
		Scale:    engine.ScaleOne,
		Scalar:   dt.Unix(),
	}
}

// variable extracts one variable from the source dataset per the request.
func (b *builder) variable(req VariableRequest) {
	if b.err != nil {
		return
	}
	src, ok := b.ds.Arrays[req.Variable]
	if !ok {
		b.err = fmt.Errorf("transform: %s: no variable %q", b.name, req.Variable)
		return
	}
	v := &Variable{
		Dimensions: req.Dimensions,
		DType:      req.DType,
		LongName:   req.LongName,
		Units:      req.Units,
		Scale:      req.scale(),
	}
	if err := extractValues(v, src, req); err != nil {
		b.err = fmt.Errorf("transform: %s: %q: %w", b.name, req.Variable, err)
		return
	}
	b.data.Variables[req.Name] = v
}

func extractValues(v *Variable, src *ncdf.Array, req VariableRequest) error {
	switch req.Units {
	case engine.UnitsDegrees:
		return extractDegrees(v, src)
	case engine.UnitsSeconds:
		if src.Rank() != 1 {
			return fmt.Errorf("temporal variable has rank %d", src.Rank())
		}
		seconds := make([]int64, len(src.Vector))
		for i, raw := range src.Vector {
			seconds[i] = convertWithRails(raw, req)
		}
		v.Vector = monotonicTimes(seconds)
		return nil
	}

	switch src.Rank() {
	case 0:
		v.Scalar = convertWithRails(src.Scalar, req)
	case 1:
		v.Vector = make([]int64, len(src.Vector))
		for i, raw := range src.Vector {
			v.Vector[i] = convertWithRails(raw, req)
		}
	default:
		v.Matrix = make([][]int64, len(src.Matrix))
		for i, row := range src.Matrix {
			v.Matrix[i] = make([]int64, len(row))
			for j, raw := range row {
				v.Matrix[i][j] = convertWithRails(raw, req)
			}
		}
	}
	return nil
}

// extractDegrees expands each decimal angle into its four-component
// sign/degree/minute/second form.
func extractDegrees(v *Variable, src *ncdf.Array) error {
	switch src.Rank() {
	case 0:
		parts := degMinSec(src.Scalar)
		v.Vector = parts[:]
	case 1:
		v.Matrix = make([][]int64, len(src.Vector))
		for i, raw := range src.Vector {
			parts := degMinSec(raw)
			v.Matrix[i] = parts[:]
		}
	default:
		return fmt.Errorf("angles have rank %d", src.Rank())
	}
	return nil
}
