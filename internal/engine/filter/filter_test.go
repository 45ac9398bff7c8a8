// SPDX-License-Identifier: MIT

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinman24/arcobs/internal/chrono"
	"github.com/rinman24/arcobs/internal/engine"
	"github.com/rinman24/arcobs/internal/engine/transform"
)

func TestNamesByDateAlignedFiles(t *testing.T) {
	names := []string{
		"D1998-03-24T00-00-00.mrg.corrected.nc",
		"D1998-03-24T12-00-00.mrg.corrected.nc",
		"D1998-03-25T00-00-00.mrg.corrected.nc",
		"D1998-03-25T12-00-00.mrg.corrected.nc",
		"D1998-03-26T00-00-00.mrg.corrected.nc",
		"D1998-03-26T12-00-00.mrg.corrected.nc",
	}
	target := chrono.DateTime{Year: 1998, Month: 3, Day: 25}

	got, err := NamesByDate(target, names, chrono.ToSecond)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"D1998-03-25T00-00-00.mrg.corrected.nc",
		"D1998-03-25T12-00-00.mrg.corrected.nc",
	}, got)
}

func TestNamesByDateStraddlingFiles(t *testing.T) {
	names := []string{
		"D1998-05-03T08-25-00.BARO.ncdf",
		"D1998-05-03T16-45-00.BARO.ncdf",
		"D1998-05-04T00-33-00.BARO.ncdf",
		"D1998-05-04T08-53-00.BARO.ncdf",
		"D1998-05-04T17-14-00.BARO.ncdf",
		"D1998-05-05T00-12-00.BARO.ncdf",
		"D1998-05-05T08-32-00.BARO.ncdf",
		"D1998-05-05T16-52-00.BARO.ncdf",
	}
	target := chrono.DateTime{Year: 1998, Month: 5, Day: 4}

	got, err := NamesByDate(target, names, chrono.ToSecond)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"D1998-05-03T16-45-00.BARO.ncdf",
		"D1998-05-04T00-33-00.BARO.ncdf",
		"D1998-05-04T08-53-00.BARO.ncdf",
		"D1998-05-04T17-14-00.BARO.ncdf",
		"D1998-05-05T00-12-00.BARO.ncdf",
	}, got)
}

func TestNamesByDateDailyPrecision(t *testing.T) {
	names := []string{
		"D1998-05-03-sheba-mmcr.ncdf",
		"D1998-05-04-sheba-mmcr.ncdf",
		"D1998-05-05-sheba-mmcr.ncdf",
	}
	target := chrono.DateTime{Year: 1998, Month: 5, Day: 4}

	got, err := NamesByDate(target, names, chrono.ToDay)
	require.NoError(t, err)
	assert.Equal(t, []string{"D1998-05-04-sheba-mmcr.ncdf"}, got)
}

func TestNamesByDateBadName(t *testing.T) {
	_, err := NamesByDate(chrono.DateTime{Year: 1998, Month: 5, Day: 4},
		[]string{"mmcr.19980504.ncdf"}, chrono.ToSecond)
	assert.Error(t, err)
}

func TestNamesByDateEmptyDay(t *testing.T) {
	names := []string{
		"D1998-05-03T08-25-00.BARO.ncdf",
		"D1998-05-05T00-12-00.BARO.ncdf",
	}
	target := chrono.DateTime{Year: 1998, Month: 5, Day: 7}

	got, err := NamesByDate(target, names, chrono.ToSecond)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func timeDim(size int) transform.Dimension {
	return transform.Dimension{Name: engine.Time, Size: size}
}

func levelDim(size int) transform.Dimension {
	return transform.Dimension{Name: engine.Level, Size: size}
}

// fixture builds a dataset with epoch, offset, range, and refl in the
// shape produced by hydration.
func fixture(epoch int64, offsets []int64, refl [][]int64) *transform.InstrumentData {
	data := transform.NewInstrumentData()
	data.Dimensions["time"] = timeDim(len(offsets))
	data.Dimensions["level"] = levelDim(3)
	data.Variables["epoch"] = &transform.Variable{
		DType:    engine.I4,
		LongName: "Unix Epoch Time of Day",
		Units:    engine.UnitsSeconds,
		Scale:    engine.ScaleOne,
		Scalar:   epoch,
	}
	data.Variables["offset"] = &transform.Variable{
		Dimensions: []transform.Dimension{timeDim(len(offsets))},
		DType:      engine.I4,
		LongName:   "Seconds Since Initial Time",
		Units:      engine.UnitsSeconds,
		Scale:      engine.ScaleOne,
		Vector:     offsets,
	}
	data.Variables["range"] = &transform.Variable{
		Dimensions: []transform.Dimension{levelDim(3)},
		DType:      engine.U2,
		LongName:   "Return Range",
		Units:      engine.UnitsMeters,
		Scale:      engine.ScaleOne,
		Vector:     []int64{0, 45, 90},
	}
	data.Variables["refl"] = &transform.Variable{
		Dimensions: []transform.Dimension{timeDim(len(offsets)), levelDim(3)},
		DType:      engine.I2,
		LongName:   "Reflectivity",
		Units:      engine.UnitsDBZ,
		Scale:      engine.ScaleHundred,
		Matrix:     refl,
	}
	return data
}

func TestIndicesByDateMergesDatasets(t *testing.T) {
	// 1998-05-04 starts at unix 894240000.
	target := chrono.DateTime{Year: 1998, Month: 5, Day: 4}

	// First dataset starts at 23:00 the previous day, so its first
	// sample falls outside the target day.
	first := fixture(894236400, []int64{0, 3600, 7200}, [][]int64{
		{-100, -200, -300},
		{-110, -210, -310},
		{-120, -220, -320},
	})
	second := fixture(894240000, []int64{7200, 10800}, [][]int64{
		{-130, -230, -330},
		{-140, -240, -340},
	})

	got, err := IndicesByDate(target, []*transform.InstrumentData{first, second})
	require.NoError(t, err)

	assert.Equal(t, 4, got.Dimensions["time"].Size)
	assert.Equal(t, 3, got.Dimensions["level"].Size)

	// Offsets are rebased onto the epoch of the first contributing
	// dataset.
	assert.Equal(t, int64(894236400), got.Variables["epoch"].Scalar)
	assert.Equal(t, []int64{3600, 7200, 10800, 14400}, got.Variables["offset"].Vector)

	assert.Equal(t, []int64{0, 45, 90}, got.Variables["range"].Vector)
	assert.Equal(t, [][]int64{
		{-110, -210, -310},
		{-120, -220, -320},
		{-130, -230, -330},
		{-140, -240, -340},
	}, got.Variables["refl"].Matrix)

	refl := got.Variables["refl"]
	require.Len(t, refl.Dimensions, 2)
	assert.Equal(t, 4, refl.Dimensions[0].Size)
	assert.Equal(t, 3, refl.Dimensions[1].Size)
	assert.Equal(t, engine.ScaleHundred, refl.Scale)
}

func TestIndicesByDateSkipsEmptyDataset(t *testing.T) {
	target := chrono.DateTime{Year: 1998, Month: 5, Day: 4}

	// Entirely on 1998-05-03.
	stale := fixture(894153600, []int64{0, 3600}, [][]int64{
		{-100, -200, -300},
		{-110, -210, -310},
	})
	fresh := fixture(894240000, []int64{0}, [][]int64{
		{-120, -220, -320},
	})

	got, err := IndicesByDate(target, []*transform.InstrumentData{stale, fresh})
	require.NoError(t, err)

	// The stale dataset contributes nothing, so the kept epoch is the
	// second dataset's.
	assert.Equal(t, int64(894240000), got.Variables["epoch"].Scalar)
	assert.Equal(t, []int64{0}, got.Variables["offset"].Vector)
	assert.Equal(t, 1, got.Dimensions["time"].Size)
}

func TestIndicesByDateEmptyDay(t *testing.T) {
	target := chrono.DateTime{Year: 1998, Month: 6, Day: 1}
	data := fixture(894240000, []int64{0, 3600}, [][]int64{
		{-100, -200, -300},
		{-110, -210, -310},
	})

	_, err := IndicesByDate(target, []*transform.InstrumentData{data})
	assert.ErrorIs(t, err, ErrEmptyDay)
}

func TestIndicesByDateNoContent(t *testing.T) {
	_, err := IndicesByDate(chrono.DateTime{Year: 1998, Month: 5, Day: 4}, nil)
	assert.ErrorIs(t, err, ErrEmptyDay)
}
