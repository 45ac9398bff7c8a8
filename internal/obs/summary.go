// SPDX-License-Identifier: MIT

package obs

import (
	"fmt"
	"math"
	"sort"

	"github.com/rinman24/arcobs/internal/engine/transform"
)

// MaxWaveletOrder bounds periodogram sweeps; order 12 spans 2^13
// samples, longer than a day of 10-second data.
const MaxWaveletOrder = 12

// ResampleMethod selects the aggregate used per grid cell.
type ResampleMethod uint8

const (
	// ResampleMean averages the non-missing members of a cell.
	ResampleMean ResampleMethod = iota
	// ResampleMode takes the most common member of a cell, masks and
	// flags being categorical.
	ResampleMode
)

// Frame is a time-height grid: Values[i][j] is the sample at
// Offsets[i] seconds and Ranges[j] meters.
type Frame struct {
	Offsets []int64
	Ranges  []int64
	Values  [][]int64
}

// Resample bins a frame onto a regular seconds-by-meters grid. Cells
// holding only the missing value stay missing; under ResampleMean other
// members average (rounded), under ResampleMode the most common member
// wins with ties going to the smaller value.
func Resample(f Frame, seconds, meters int64, method ResampleMethod, missing int64) (Frame, error) {
	if seconds < 1 || meters < 1 {
		return Frame{}, fmt.Errorf("obs: resample bins must be positive, got %ds x %dm", seconds, meters)
	}
	if len(f.Values) != len(f.Offsets) {
		return Frame{}, fmt.Errorf("obs: resample: %d rows for %d offsets", len(f.Values), len(f.Offsets))
	}

	rowBins := binIndexes(f.Offsets, seconds)
	colBins := binIndexes(f.Ranges, meters)
	rowKeys := sortedKeys(rowBins)
	colKeys := sortedKeys(colBins)

	out := Frame{
		Offsets: make([]int64, len(rowKeys)),
		Ranges:  make([]int64, len(colKeys)),
		Values:  make([][]int64, len(rowKeys)),
	}
	for i, key := range rowKeys {
		out.Offsets[i] = key * seconds
	}
	for j, key := range colKeys {
		out.Ranges[j] = key * meters
	}

	for i, rowKey := range rowKeys {
		out.Values[i] = make([]int64, len(colKeys))
		for j, colKey := range colKeys {
			var members []int64
			for _, r := range rowBins[rowKey] {
				if len(f.Values[r]) != len(f.Ranges) {
					return Frame{}, fmt.Errorf("obs: resample: row %d has %d cells for %d ranges", r, len(f.Values[r]), len(f.Ranges))
				}
				for _, c := range colBins[colKey] {
					if v := f.Values[r][c]; v != missing {
						members = append(members, v)
					}
				}
			}
			out.Values[i][j] = aggregate(members, method, missing)
		}
	}
	return out, nil
}

func binIndexes(coords []int64, size int64) map[int64][]int {
	bins := make(map[int64][]int)
	for i, c := range coords {
		key := c / size
		bins[key] = append(bins[key], i)
	}
	return bins
}

func sortedKeys(bins map[int64][]int) []int64 {
	keys := make([]int64, 0, len(bins))
	for k := range bins {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func aggregate(members []int64, method ResampleMethod, missing int64) int64 {
	if len(members) == 0 {
		return missing
	}
	if method == ResampleMode {
		counts := make(map[int64]int)
		for _, m := range members {
			counts[m]++
		}
		best, bestCount := members[0], 0
		for v, n := range counts {
			if n > bestCount || (n == bestCount && v < best) {
				best, bestCount = v, n
			}
		}
		return best
	}
	var sum float64
	for _, m := range members {
		sum += float64(m)
	}
	return int64(math.Round(sum / float64(len(members))))
}

// Persistence returns the length of the longest run of true samples.
func Persistence(series []bool) int {
	best, run := 0, 0
	for _, v := range series {
		if !v {
			run = 0
			continue
		}
		run++
		if run > best {
			best = run
		}
	}
	return best
}

// summarizeMask reduces a time-by-level cloud mask to a coverage
// fraction and the longest cloudy streak across timesteps. Missing
// cells count toward the total but never toward coverage.
func summarizeMask(date string, mask [][]int64) MaskSummary {
	var flagged, total int
	cloudy := make([]bool, len(mask))
	for i, row := range mask {
		for _, v := range row {
			total++
			if v == 1 {
				flagged++
				cloudy[i] = true
			}
		}
	}
	s := MaskSummary{Date: date, Persistence: Persistence(cloudy)}
	if total > 0 {
		s.Coverage = float64(flagged) / float64(total)
	}
	return s
}

// WaveletTransform computes the top-hat response of the series at one
// order. Positions whose support leaves the series are NaN.
func WaveletTransform(series []float64, order int) ([]float64, error) {
	if order < 1 || order > MaxWaveletOrder {
		return nil, fmt.Errorf("obs: wavelet order %d out of [1, %d]", order, MaxWaveletOrder)
	}
	return transform.NewTopHat(order).Response(series), nil
}

// Periodogram sweeps orders 1 through MaxWaveletOrder, reporting the
// mean absolute wavelet response per order. Orders whose support
// exceeds the series report NaN.
func Periodogram(series []float64) []float64 {
	out := make([]float64, MaxWaveletOrder)
	for order := 1; order <= MaxWaveletOrder; order++ {
		response := transform.NewTopHat(order).Response(series)
		var sum float64
		var n int
		for _, r := range response {
			if math.IsNaN(r) {
				continue
			}
			sum += math.Abs(r)
			n++
		}
		if n == 0 {
			out[order-1] = math.NaN()
			continue
		}
		out[order-1] = sum / float64(n)
	}
	return out
}
