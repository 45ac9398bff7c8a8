// SPDX-License-Identifier: MIT

package transform

import "math"

// TopHat is the top-hat wavelet of order j: length 2^(j+1), with the
// middle half at +1 and the outer quarters at -1.
type TopHat struct {
	order  int
	values []float64
}

// NewTopHat builds the wavelet for order j >= 1.
func NewTopHat(j int) *TopHat {
	length := 1 << (j + 1)
	values := make([]float64, length)
	quarter := length / 4
	for i := range values {
		if i < quarter || i >= length-quarter {
			values[i] = -1
		} else {
			values[i] = 1
		}
	}
	return &TopHat{order: j, values: values}
}

// Order returns the wavelet order.
func (w *TopHat) Order() int { return w.order }

// Length returns the support length 2^(j+1).
func (w *TopHat) Length() int { return len(w.values) }

// Values returns the wavelet coefficients.
func (w *TopHat) Values() []float64 { return w.values }

// Response computes the centered rolling inner product of the series
// with the wavelet. Positions whose window leaves the series are NaN,
// matching a centered rolling apply.
func (w *TopHat) Response(series []float64) []float64 {
	n := len(w.values)
	before, after := splitPadding(n)
	out := make([]float64, len(series))
	for i := range out {
		lo, hi := i-before, i+after
		if lo < 0 || hi >= len(series) {
			out[i] = math.NaN()
			continue
		}
		var sum float64
		for k := 0; k < n; k++ {
			sum += series[lo+k] * w.values[k]
		}
		out[i] = sum
	}
	return out
}
