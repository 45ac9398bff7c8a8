// SPDX-License-Identifier: MIT

package transform

import (
	"github.com/rinman24/arcobs/internal/chrono"
	"github.com/rinman24/arcobs/internal/engine"
	"github.com/rinman24/arcobs/internal/ncdf"
)

// UtqiagvikKazrRaw extracts raw Utqiagvik KAZR radar product files.
type UtqiagvikKazrRaw struct{}

func (UtqiagvikKazrRaw) Hydrate(ds *ncdf.File, name string) (*InstrumentData, error) {
	b := newBuilder(ds, name)
	b.dimension("time", engine.Time, "time")
	b.dimension("level", engine.Level, "height")
	b.dimension("layer", engine.Layer, "layer")

	b.epochAtTime()
	b.variable(VariableRequest{
		Variable: "cloud_source_flag",
		Name:     "cloud_source_flag",
		LongName: "Cloud Source Flag",
		Units:    engine.UnitsNone,
		DType:    engine.U1,
		Flag:     Flag9s,
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	b.variable(VariableRequest{
		Variable: "cloud_layer_base_height",
		Name:     "cloud_layer_base_height",
		LongName: "Cloud Layer Base Height",
		Units:    engine.UnitsMeters,
		DType:    engine.U4,
		Flag:     Flag9s,
		Dimensions: []Dimension{
			b.dim("time"), b.dim("layer"),
		},
	})
	b.variable(VariableRequest{
		Variable: "cloud_layer_top_height",
		Name:     "cloud_layer_top_height",
		LongName: "Cloud Layer Top Height",
		Units:    engine.UnitsMeters,
		DType:    engine.U4,
		Flag:     Flag9s,
		Dimensions: []Dimension{
			b.dim("time"), b.dim("layer"),
		},
	})
	b.variable(VariableRequest{
		Variable: "mean_doppler_velocity",
		Name:     "mean_dopp_vel",
		LongName: "Mean Doppler Velocity",
		Units:    engine.UnitsMetersPerSecond,
		Scale:    engine.ScaleThousand,
		DType:    engine.I2,
		Flag:     Flag9s,
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	b.variable(VariableRequest{
		Variable:   "time",
		Name:       "offset",
		LongName:   "Seconds Since Initial Timestamp",
		Units:      engine.UnitsSeconds,
		DType:      engine.I4,
		Flag:       Flag9s,
		Dimensions: []Dimension{b.dim("time")},
	})
	b.variable(VariableRequest{
		Variable:   "height",
		Name:       "range",
		LongName:   "Return Range",
		Units:      engine.UnitsMeters,
		DType:      engine.U2,
		Flag:       Flag9s,
		Dimensions: []Dimension{b.dim("level")},
	})
	return b.build()
}

// DailyMask re-reads daily cloud-mask files produced by this pipeline.
type DailyMask struct{}

func (DailyMask) Hydrate(ds *ncdf.File, name string) (*InstrumentData, error) {
	b := newBuilder(ds, name)
	b.dimension("time", engine.Time, "time")
	b.dimension("level", engine.Level, "level")

	b.epoch(chrono.ToDay)
	b.variable(VariableRequest{
		Variable:   "offset",
		Name:       "offset",
		LongName:   "Seconds Since Initial Timestamp",
		Units:      engine.UnitsSeconds,
		DType:      engine.I4,
		Flag:       Flag9s,
		Dimensions: []Dimension{b.dim("time")},
	})
	b.variable(VariableRequest{
		Variable:   "range",
		Name:       "range",
		LongName:   "Return Range",
		Units:      engine.UnitsMeters,
		DType:      engine.U2,
		Flag:       Flag9s,
		Dimensions: []Dimension{b.dim("level")},
	})
	b.variable(VariableRequest{
		Variable: "cloud_mask",
		Name:     "cloud_mask",
		LongName: "Cloud Mask",
		Units:    engine.UnitsNone,
		DType:    engine.I1,
		Flag:     float64(engine.I1.Min()),
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	return b.build()
}
