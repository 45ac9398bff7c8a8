// SPDX-License-Identifier: MIT

package transform

import (
	"github.com/rinman24/arcobs/internal/engine"
	"github.com/rinman24/arcobs/internal/ncdf"
)

// EurekaAhsrlRaw extracts raw Eureka AHSRL lidar files.
type EurekaAhsrlRaw struct{}

func (EurekaAhsrlRaw) Hydrate(ds *ncdf.File, name string) (*InstrumentData, error) {
	b := newBuilder(ds, name)
	b.dimension("time", engine.Time, "time")
	b.dimension("level", engine.Level, "altitude")

	b.epochAtTime()
	b.variable(VariableRequest{
		Variable: "combined_counts_lo",
		Name:     "counts_lo",
		LongName: "Low Gain Combined Photon Counts",
		Units:    engine.UnitsNone,
		DType:    engine.I4,
		Flag:     -1,
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	b.variable(VariableRequest{
		Variable: "combined_counts_hi",
		Name:     "counts_hi",
		LongName: "High Gain Combined Photon Counts",
		Units:    engine.UnitsNone,
		DType:    engine.I4,
		Flag:     -1,
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	b.variable(VariableRequest{
		Variable: "cross_counts",
		Name:     "cross_counts",
		LongName: "Cross Polarized Photon Counts",
		Units:    engine.UnitsNone,
		DType:    engine.I4,
		Flag:     -1,
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	b.variable(VariableRequest{
		Variable:        "depol",
		Name:            "depol",
		LongName:        "Circular depolarization ratio for particulate",
		Units:           engine.UnitsNone,
		Scale:           engine.ScaleThousand,
		ConversionScale: engine.ScaleThousand,
		DType:           engine.I2,
		Flag:            Flag9s,
		Dimensions: []Dimension{
			b.dim("time"), b.dim("level"),
		},
	})
	b.variable(VariableRequest{
		Variable: "molecular_counts",
		Name:     "molecular_counts",
		LongName: "Molecular Photon Counts",
		Units:    engine.UnitsNone,
		DType:    engine.I4,
		Flag:     -1,
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
		Variable:   "altitude",
		Name:       "range",
		LongName:   "Return Range",
		Units:      engine.UnitsMeters,
		DType:      engine.U2,
		Flag:       Flag9s,
		Dimensions: []Dimension{b.dim("level")},
	})
	return b.build()
}

// EurekaMmcrRaw extracts raw Eureka MMCR radar files. The layout matches
// the SHEBA radar except the range variable is lowercase "heights".
type EurekaMmcrRaw struct{}

func (EurekaMmcrRaw) Hydrate(ds *ncdf.File, name string) (*InstrumentData, error) {
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
		Variable:   "heights",
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
