// SPDX-License-Identifier: MIT

package transform

import (
	"math"
)

const secondsPerDay = 86400

// convertWithRails maps one source sample onto the integer range of the
// request's dtype. Flagged, out-of-range, and NaN inputs all land on
// the dtype minimum, which doubles as the missing-value marker.
func convertWithRails(element float64, req VariableRequest) int64 {
	if element == req.Flag {
		return req.DType.Min()
	}
	value := (req.Offset + element) * float64(req.conversionScale())
	switch {
	case math.IsNaN(value):
		return req.DType.Min()
	case value <= float64(req.DType.Min()):
		return req.DType.Min()
	case float64(req.DType.Max()) < value:
		return req.DType.Min()
	}
	if req.Binary != nil {
		lo, hi := req.Binary[0], req.Binary[1]
		mid := (lo + hi) / 2
		switch {
		case value < lo || hi < value:
			return req.DType.Min()
		case value < mid:
			return int64(lo)
		default:
			return int64(hi)
		}
	}
	return int64(math.Round(value))
}

// degMinSec normalizes an angle in decimal degrees into the interval
// (-180, 180] and decomposes it as (sign, degrees, minutes, seconds).
func degMinSec(angle float64) [4]int64 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	if angle > 180 {
		angle -= 360
	}
	sign := int64(1)
	if angle < 0 {
		sign = -1
	}
	angle = math.Abs(angle)
	minutes, seconds := math.Floor(angle*3600/60), math.Mod(angle*3600, 60)
	degrees := math.Floor(minutes / 60)
	minutes = math.Mod(minutes, 60)
	return [4]int64{sign, int64(degrees), int64(minutes), int64(math.Round(seconds))}
}

// monotonicTimes repairs seconds-since-initial offsets that wrap at
// midnight by adding a day per rollover.
func monotonicTimes(seconds []int64) []int64 {
	previous := int64(-999)
	datum := int64(0)
	out := make([]int64, len(seconds))
	for i, s := range seconds {
		if s < previous {
			datum += secondsPerDay
		}
		out[i] = datum + s
		previous = s
	}
	return out
}
