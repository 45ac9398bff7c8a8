// SPDX-License-Identifier: MIT

package transform

import (
	"fmt"

	"github.com/rinman24/arcobs/internal/engine"
)

// MaskType is the storage dtype of derived cloud masks.
const MaskType = engine.I1

// Mask derives a binary cloud mask over a time-height grid. A window
// cell set is flagged 1 when every member clears the threshold, 0 when
// any member fails it, and the mask dtype minimum when any member
// carries the missing-value marker.
func Mask(req MaskRequest) ([][]int64, error) {
	if len(req.Values) == 0 || len(req.Values[0]) == 0 {
		return nil, fmt.Errorf("transform: empty mask input")
	}
	if req.Scale == 0 {
		return nil, fmt.Errorf("transform: mask scale must be non-zero")
	}
	rows, cols := len(req.Values), len(req.Values[0])
	window := NewGridWindow(req.Length, req.Height)

	mask := make([][]int64, rows)
	for i := range mask {
		mask[i] = make([]int64, cols)
	}

	clears := func(v int64) bool {
		physical := float64(v) / req.Scale
		if req.Threshold.Direction == LessThan {
			return physical < req.Threshold.Value
		}
		return req.Threshold.Value < physical
	}

	for x := window.Padding.Left; x < rows-window.Padding.Right; x++ {
		for y := window.Padding.Bottom; y < cols-window.Padding.Top; y++ {
			window.Position = [2]int{x, y}

			contaminated := false
			all := true
			window.Members(func(i, j int) {
				v := req.Values[i][j]
				if v == req.DType.Min() {
					contaminated = true
					return
				}
				if !clears(v) {
					all = false
				}
			})

			var value int64
			switch {
			case contaminated:
				value = MaskType.Min()
			case all:
				value = 1
			default:
				value = 0
			}
			window.Members(func(i, j int) {
				mask[i][j] = value
			})
		}
	}
	return mask, nil
}
