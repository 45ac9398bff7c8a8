// SPDX-License-Identifier: MIT

package transform

import (
	"fmt"
	"strconv"

	"github.com/rinman24/arcobs/internal/engine"
	"github.com/rinman24/arcobs/internal/ncdf"
)

var kindByDType = map[engine.DType]ncdf.Kind{
	engine.I1: ncdf.I1,
	engine.I2: ncdf.I2,
	engine.I4: ncdf.I4,
	engine.U1: ncdf.U1,
	engine.U2: ncdf.U2,
	engine.U4: ncdf.U4,
}

// Serialize renders InstrumentData as a container file. Global
// attributes identify the product (observatory, instrument); per-array
// attributes carry long_name, units, and scale so daily strategies can
// hydrate the file back.
func Serialize(data *InstrumentData, attrs map[string]string) (*ncdf.File, error) {
	f := ncdf.New()
	for k, v := range attrs {
		f.Attrs[k] = v
	}
	for key, dim := range data.Dimensions {
		f.AddDimension(key, dim.Size)
	}
	for name, v := range data.Variables {
		kind, ok := kindByDType[v.DType]
		if !ok {
			return nil, fmt.Errorf("transform: serialize %q: dtype %s has no container kind", name, v.DType)
		}
		a := &ncdf.Array{
			Kind: kind,
			Attrs: map[string]string{
				"long_name": v.LongName,
				"units":     v.Units.String(),
				"scale":     strconv.FormatFloat(float64(v.Scale), 'g', -1, 64),
			},
		}
		for _, d := range v.Dimensions {
			a.Dims = append(a.Dims, d.Name.String())
		}
		switch v.Rank() {
		case 0:
			a.Scalar = float64(v.Scalar)
		case 1:
			a.Vector = make([]float64, len(v.Vector))
			for i, x := range v.Vector {
				a.Vector[i] = float64(x)
			}
		case 2:
			a.Matrix = make([][]float64, len(v.Matrix))
			for i, row := range v.Matrix {
				a.Matrix[i] = make([]float64, len(row))
				for j, x := range row {
					a.Matrix[i][j] = float64(x)
				}
			}
		default:
			return nil, fmt.Errorf("transform: serialize %q: rank %d not supported", name, v.Rank())
		}
		if err := f.AddArray(name, a); err != nil {
			return nil, fmt.Errorf("transform: serialize: %w", err)
		}
	}
	return f, nil
}
