// SPDX-License-Identifier: MIT

package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopHatShape(t *testing.T) {
	tests := []struct {
		order  int
		length int
		values []float64
	}{
		{1, 4, []float64{-1, 1, 1, -1}},
		{2, 8, []float64{-1, -1, 1, 1, 1, 1, -1, -1}},
		{3, 16, nil},
	}
	for _, tt := range tests {
		w := NewTopHat(tt.order)
		assert.Equal(t, tt.order, w.Order())
		assert.Equal(t, tt.length, w.Length())
		if tt.values != nil {
			assert.Equal(t, tt.values, w.Values())
		}
	}
}

func TestTopHatValuesSumToZero(t *testing.T) {
	for j := 1; j <= 12; j++ {
		var sum float64
		for _, v := range NewTopHat(j).Values() {
			sum += v
		}
		assert.Zero(t, sum, "order %d", j)
	}
}

func TestTopHatResponse(t *testing.T) {
	w := NewTopHat(1) // [-1, 1, 1, -1]
	series := []float64{0, 0, 1, 1, 0, 0}

	got := w.Response(series)

	// Window anchored left of center: positions 0 and the last two lack
	// full support.
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[4]))
	assert.True(t, math.IsNaN(got[5]))

	// Anchor 2 covers indices [1..4]: -0 +1 +1 -0 = 2, the pulse peak.
	assert.Equal(t, 2.0, got[2])
	// Anchor 1 covers [0..3]: -0 +0 +1 -1 = 0.
	assert.Equal(t, 0.0, got[1])
	// Anchor 3 covers [2..5]: -1 +1 +0 -0 = 0.
	assert.Equal(t, 0.0, got[3])
}
