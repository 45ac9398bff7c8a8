// SPDX-License-Identifier: MIT

package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinman24/arcobs/internal/engine"
	"github.com/rinman24/arcobs/internal/ncdf"
)

func shebaMmcrDataset(t *testing.T) *ncdf.File {
	t.Helper()
	ds := ncdf.New()
	ds.AddDimension("time", 3)
	ds.AddDimension("nheights", 2)

	require.NoError(t, ds.AddArray("time_offset", &ncdf.Array{
		Dims: []string{"time"}, Kind: ncdf.F8,
		Vector: []float64{0, 10, 20},
	}))
	require.NoError(t, ds.AddArray("Heights", &ncdf.Array{
		Dims: []string{"nheights"}, Kind: ncdf.F4,
		Vector: []float64{104, 149},
	}))
	require.NoError(t, ds.AddArray("Reflectivity", &ncdf.Array{
		Dims: []string{"time", "nheights"}, Kind: ncdf.I2,
		Matrix: [][]float64{
			{-32768, -32768},
			{-6429, -6416},
			{-4338, -4397},
		},
	}))
	require.NoError(t, ds.AddArray("MeanDopplerVelocity", &ncdf.Array{
		Dims: []string{"time", "nheights"}, Kind: ncdf.I2,
		Matrix: [][]float64{
			{-32768, -32768},
			{-821, -813},
			{602, 610},
		},
	}))
	require.NoError(t, ds.AddArray("SpectralWidth", &ncdf.Array{
		Dims: []string{"time", "nheights"}, Kind: ncdf.I2,
		Matrix: [][]float64{
			{-32768, -32768},
			{101, 116},
			{204, 198},
		},
	}))
	return ds
}

func TestShebaMmcrRawHydrate(t *testing.T) {
	ds := shebaMmcrDataset(t)

	data, err := ShebaMmcrRaw{}.Hydrate(ds, "D1997-10-30T12-00-00.mrg.corrected.nc")
	require.NoError(t, err)

	assert.Equal(t, 3, data.Dimensions["time"].Size)
	assert.Equal(t, 2, data.Dimensions["level"].Size)

	epoch := data.Variables["epoch"]
	require.NotNil(t, epoch)
	assert.Equal(t, int64(878212800), epoch.Scalar) // 1997-10-30T12:00:00Z

	offset := data.Variables["offset"]
	require.NotNil(t, offset)
	assert.Equal(t, []int64{0, 10, 20}, offset.Vector)

	refl := data.Variables["refl"]
	require.NotNil(t, refl)
	assert.Equal(t, engine.I2, refl.DType)
	assert.Equal(t, engine.ScaleHundred, refl.Scale)
	// The -32768 flag row converts to the dtype minimum.
	assert.Equal(t, engine.I2.Min(), refl.Matrix[0][0])
	assert.Equal(t, int64(-6429), refl.Matrix[1][0])

	rng := data.Variables["range"]
	require.NotNil(t, rng)
	assert.Equal(t, []int64{104, 149}, rng.Vector)
}

func TestEurekaMmcrRawHydrate(t *testing.T) {
	ds := ncdf.New()
	ds.AddDimension("time", 3)
	ds.AddDimension("nheights", 3)

	require.NoError(t, ds.AddArray("time_offset", &ncdf.Array{
		Dims: []string{"time"}, Kind: ncdf.F8,
		Vector: []float64{0, 10, 20},
	}))
	// Eureka files carry a lowercase range variable.
	require.NoError(t, ds.AddArray("heights", &ncdf.Array{
		Dims: []string{"nheights"}, Kind: ncdf.F4,
		Vector: []float64{54, 97, 140},
	}))
	require.NoError(t, ds.AddArray("Reflectivity", &ncdf.Array{
		Dims: []string{"time", "nheights"}, Kind: ncdf.I2,
		Matrix: [][]float64{
			{-32768, -32768, -32768},
			{-4713, -4684, -4601},
			{-4725, -4693, -4607},
		},
	}))
	require.NoError(t, ds.AddArray("MeanDopplerVelocity", &ncdf.Array{
		Dims: []string{"time", "nheights"}, Kind: ncdf.I2,
		Matrix: [][]float64{
			{-32768, -32768, -32768},
			{-865, -296, 273},
			{-864, -288, 288},
		},
	}))
	require.NoError(t, ds.AddArray("SpectralWidth", &ncdf.Array{
		Dims: []string{"time", "nheights"}, Kind: ncdf.I2,
		Matrix: [][]float64{
			{-32768, -32768, -32768},
			{104, 165, 225},
			{104, 167, 230},
		},
	}))

	data, err := EurekaMmcrRaw{}.Hydrate(ds, "D2005-09-01T00-00-00.mmcr.ncdf")
	require.NoError(t, err)

	assert.Equal(t, 3, data.Dimensions["time"].Size)
	assert.Equal(t, 3, data.Dimensions["level"].Size)

	epoch := data.Variables["epoch"]
	require.NotNil(t, epoch)
	assert.Equal(t, int64(1125532800), epoch.Scalar) // 2005-09-01T00:00:00Z

	rng := data.Variables["range"]
	require.NotNil(t, rng)
	assert.Equal(t, []int64{54, 97, 140}, rng.Vector)

	refl := data.Variables["refl"]
	require.NotNil(t, refl)
	assert.Equal(t, engine.I2, refl.DType)
	assert.Equal(t, engine.I2.Min(), refl.Matrix[0][0])
	assert.Equal(t, int64(-4713), refl.Matrix[1][0])

	vel := data.Variables["mean_dopp_vel"]
	require.NotNil(t, vel)
	assert.Equal(t, engine.ScaleThousand, vel.Scale)
	assert.Equal(t, int64(273), vel.Matrix[1][2])
}

func TestShebaDabulRawHydrate(t *testing.T) {
	ds := ncdf.New()
	ds.AddDimension("record", 2)
	ds.AddDimension("level", 3)

	require.NoError(t, ds.AddArray("time", &ncdf.Array{
		Dims: []string{"record"}, Kind: ncdf.F8,
		Vector: []float64{0.5167, 0.5194}, // fractional hours
	}))
	require.NoError(t, ds.AddArray("range", &ncdf.Array{
		Dims: []string{"level"}, Kind: ncdf.F4,
		Vector: []float64{0, 30, 60},
	}))
	require.NoError(t, ds.AddArray("azimuth", &ncdf.Array{
		Dims: []string{"record"}, Kind: ncdf.F4,
		Vector: []float64{360.0, 190.0},
	}))
	require.NoError(t, ds.AddArray("depolarization", &ncdf.Array{
		Dims: []string{"record", "level"}, Kind: ncdf.F4,
		Matrix: [][]float64{
			{-999, 0.1525, 0.1476},
			{-999, 0.1519, 0.1773},
		},
	}))
	require.NoError(t, ds.AddArray("far_parallel", &ncdf.Array{
		Dims: []string{"record", "level"}, Kind: ncdf.F4,
		Matrix: [][]float64{
			{-999, 61.718, 62.322},
			{-999, 61.037, 62.909},
		},
	}))
	require.NoError(t, ds.AddArray("latitude", &ncdf.Array{
		Dims: []string{"record"}, Kind: ncdf.F4,
		Vector: []float64{76.0312, 76.0312},
	}))
	require.NoError(t, ds.AddArray("longitude", &ncdf.Array{
		Dims: []string{"record"}, Kind: ncdf.F4,
		Vector: []float64{-165.25, -165.25},
	}))
	require.NoError(t, ds.AddArray("scanmode", &ncdf.Array{
		Dims: []string{"record"}, Kind: ncdf.I4,
		Vector: []float64{-999, 0},
	}))

	data, err := ShebaDabulRaw{}.Hydrate(ds, "D1997-11-04T00-31-00.BHAR.ncdf")
	require.NoError(t, err)

	// Angle dimension is fixed at four regardless of the source file.
	assert.Equal(t, 4, data.Dimensions["angle"].Size)

	// Fractional hours scale to whole seconds.
	offset := data.Variables["offset"]
	require.NotNil(t, offset)
	assert.Equal(t, int64(1860), offset.Vector[0])

	// Angles decompose into sign/deg/min/sec rows.
	azimuth := data.Variables["azimuth"]
	require.NotNil(t, azimuth)
	assert.Equal(t, []int64{1, 0, 0, 0}, azimuth.Matrix[0])
	assert.Equal(t, []int64{-1, 170, 0, 0}, azimuth.Matrix[1])

	// Flagged scan modes rail to the dtype minimum.
	assert.Equal(t, engine.I4.Min(), data.Variables["scan_mode"].Vector[0])
}

func TestHydrateMissingVariable(t *testing.T) {
	ds := ncdf.New()
	ds.AddDimension("time", 1)
	ds.AddDimension("nheights", 1)

	_, err := ShebaMmcrRaw{}.Hydrate(ds, "D1997-10-30T12-00-00.mrg.corrected.nc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MeanDopplerVelocity")
}

func TestHydrateMissingDimension(t *testing.T) {
	ds := ncdf.New()
	_, err := ShebaMmcrRaw{}.Hydrate(ds, "D1997-10-30T12-00-00.mrg.corrected.nc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"time"`)
}
