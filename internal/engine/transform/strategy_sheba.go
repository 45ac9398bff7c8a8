// SPDX-License-Identifier: MIT

package transform

import (
	"github.com/rinman24/arcobs/internal/chrono"
	"github.com/rinman24/arcobs/internal/engine"
	"github.com/rinman24/arcobs/internal/ncdf"
)

// ShebaDabulRaw extracts raw SHEBA DABUL lidar files.
type ShebaDabulRaw struct{}

func (ShebaDabulRaw) Hydrate(ds *ncdf.File, name string) (*InstrumentData, error) {
	b := newBuilder(ds, name)
	b.dimension("time", engine.Time, "record")
	b.dimension("level", engine.Level, "level")
	b.fixedDimension("angle", engine.Angle, 4)

	b.epochAtTime()
	b.variable(VariableRequest{
		Variable: "azimuth",
		Name:     "azimuth",
		LongName: "Beam Azimuth Angle",
		Units:    engine.UnitsDegrees,
		DType:    engine.U1,
		Flag:     Flag9s,
		Dimensions: []Dimension{
			b.dim("time"), b.dim("angle"),
		},
	})
	b.variable(VariableRequest{
		Variable: "depolarization",
		Name:     "depol",
		LongName: "Depolarization Ratio",
		Units:    engine.UnitsNone,
		Scale:    engine.ScaleThousand,
		DType:    engine.I2,
		Flag:     Flag9s,
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	b.variable(VariableRequest{
		Variable: "far_parallel",
		Name:     "far_par",
		LongName: "Lidar Returned Power",
		Units:    engine.UnitsUnspecified,
		Scale:    engine.ScaleHundred,
		DType:    engine.I2,
		Flag:     Flag9s,
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	b.variable(VariableRequest{
		Variable: "latitude",
		Name:     "latitude",
		LongName: "Platform Latitude [North]",
		Units:    engine.UnitsDegrees,
		DType:    engine.U1,
		Flag:     Flag9s,
		Dimensions: []Dimension{
			b.dim("time"), b.dim("angle"),
		},
	})
	b.variable(VariableRequest{
		Variable: "longitude",
		Name:     "longitude",
		LongName: "Platform Longitude [East]",
		Units:    engine.UnitsDegrees,
		DType:    engine.U1,
		Flag:     Flag9s,
		Dimensions: []Dimension{
			b.dim("time"), b.dim("angle"),
		},
	})
	b.variable(VariableRequest{
		Variable:        "time",
		Name:            "offset",
		LongName:        "Seconds Since Initial Timestamp",
		Units:           engine.UnitsSeconds,
		ConversionScale: engine.ScaleSecondsPerHour,
		DType:           engine.I4,
		Flag:            Flag9s,
		Dimensions:      []Dimension{b.dim("time")},
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
		Variable:   "scanmode",
		Name:       "scan_mode",
		LongName:   "Scan Mode",
		Units:      engine.UnitsNone,
		DType:      engine.I4,
		Flag:       Flag9s,
		Dimensions: []Dimension{b.dim("time")},
	})
	return b.build()
}

// ShebaMmcrRaw extracts raw SHEBA MMCR radar files.
type ShebaMmcrRaw struct{}

func (ShebaMmcrRaw) Hydrate(ds *ncdf.File, name string) (*InstrumentData, error) {
	b := newBuilder(ds, name)
	b.dimension("time", engine.Time, "time")
	b.dimension("level", engine.Level, "nheights")

	b.epochAtTime()
	b.variable(VariableRequest{
		Variable: "MeanDopplerVelocity",
		Name:     "mean_dopp_vel",
		LongName: "Mean Doppler Velocity",
		Units:    engine.UnitsMetersPerSecond,
		Scale:    engine.ScaleThousand,
		DType:    engine.I2,
		Flag:     float64(engine.I2.Min()),
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	b.variable(VariableRequest{
		Variable:   "time_offset",
		Name:       "offset",
		LongName:   "Seconds Since Initial Timestamp",
		Units:      engine.UnitsSeconds,
		DType:      engine.I4,
		Flag:       Flag9s,
		Dimensions: []Dimension{b.dim("time")},
	})
	b.variable(VariableRequest{
		Variable:   "Heights",
		Name:       "range",
		LongName:   "Return Range",
		Units:      engine.UnitsMeters,
		DType:      engine.U2,
		Flag:       Flag9s,
		Dimensions: []Dimension{b.dim("level")},
	})
	b.variable(VariableRequest{
		Variable: "Reflectivity",
		Name:     "refl",
		LongName: "Reflectivity",
		Units:    engine.UnitsDBZ,
		Scale:    engine.ScaleHundred,
		DType:    engine.I2,
		Flag:     float64(engine.I2.Min()),
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	b.variable(VariableRequest{
		Variable: "SpectralWidth",
		Name:     "spec_width",
		LongName: "Spectral Width",
		Units:    engine.UnitsMetersPerSecond,
		Scale:    engine.ScaleThousand,
		DType:    engine.I2,
		Flag:     float64(engine.I2.Min()),
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	return b.build()
}

// ShebaDabulDaily re-reads daily DABUL files produced by this pipeline.
type ShebaDabulDaily struct{}

func (ShebaDabulDaily) Hydrate(ds *ncdf.File, name string) (*InstrumentData, error) {
	b := newBuilder(ds, name)
	b.dimension("time", engine.Time, "time")
	b.dimension("level", engine.Level, "level")

	b.epoch(chrono.ToDay)
	b.variable(VariableRequest{
		Variable: "depol",
		Name:     "depol",
		LongName: "Depolarization Ratio",
		Units:    engine.UnitsNone,
		Scale:    engine.ScaleThousand,
		DType:    engine.I2,
		Flag:     float64(engine.I2.Min()),
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	b.variable(VariableRequest{
		Variable: "far_par",
		Name:     "far_par",
		LongName: "Lidar Returned Power",
		Units:    engine.UnitsUnspecified,
		Scale:    engine.ScaleHundred,
		DType:    engine.I2,
		Flag:     float64(engine.I2.Min()),
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	b.variable(VariableRequest{
		Variable:   "offset",
		Name:       "offset",
		LongName:   "Seconds Since Initial Timestamp",
		Units:      engine.UnitsSeconds,
		DType:      engine.I4,
		Flag:       float64(engine.I4.Min()),
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
	return b.build()
}

// ShebaMmcrDaily re-reads daily MMCR files produced by this pipeline.
// Eureka daily radar files share the layout, so the manager reuses it
// there.
type ShebaMmcrDaily struct{}

func (ShebaMmcrDaily) Hydrate(ds *ncdf.File, name string) (*InstrumentData, error) {
	b := newBuilder(ds, name)
	b.dimension("time", engine.Time, "time")
	b.dimension("level", engine.Level, "level")

	b.epoch(chrono.ToDay)
	b.variable(VariableRequest{
		Variable: "refl",
		Name:     "refl",
		LongName: "Reflectivity",
		Units:    engine.UnitsDBZ,
		Scale:    engine.ScaleHundred,
		DType:    engine.I2,
		Flag:     float64(engine.I2.Min()),
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	b.variable(VariableRequest{
		Variable: "mean_dopp_vel",
		Name:     "mean_dopp_vel",
		LongName: "Mean Doppler Velocity",
		Units:    engine.UnitsMetersPerSecond,
		Scale:    engine.ScaleThousand,
		DType:    engine.I2,
		Flag:     float64(engine.I2.Min()),
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	b.variable(VariableRequest{
		Variable: "spec_width",
		Name:     "spec_width",
		LongName: "Spectral Width",
		Units:    engine.UnitsMetersPerSecond,
		Scale:    engine.ScaleThousand,
		DType:    engine.I2,
		Flag:     float64(engine.I2.Min()),
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	b.variable(VariableRequest{
		Variable:   "offset",
		Name:       "offset",
		LongName:   "Seconds Since Initial Timestamp",
		Units:      engine.UnitsSeconds,
		DType:      engine.I4,
		Flag:       float64(engine.I4.Min()),
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
	return b.build()
}
