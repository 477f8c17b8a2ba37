// Package stats provides the small numeric helpers shared by the
// complexity engine: clamping, percentiles and a single-pass
// mean/variance accumulator.
package stats

import "math"

// Clamp01 clamps x to [0, 1]. NaN maps to 0.
func Clamp01(x float64) float64 {
	return Clamp(x, 0, 1)
}

// Clamp clamps v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Percentile returns the linearly interpolated p-th percentile of sorted,
// which must be in ascending order. p is clamped to [0, 1].
// Returns 0 for empty input.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = Clamp01(p)

	idx := float64(len(sorted)-1) * p
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Summary is the result of MeanVariance.
type Summary struct {
	Count    int
	Mean     float64
	Variance float64 // population variance
	StdDev   float64
}

// MeanVariance computes mean, population variance and standard deviation
// in one pass using Welford's algorithm. Empty input yields the zero Summary.
func MeanVariance(values []float64) Summary {
	var s Summary
	var m2 float64
	for _, v := range values {
		s.Count++
		delta := v - s.Mean
		s.Mean += delta / float64(s.Count)
		m2 += delta * (v - s.Mean)
	}
	if s.Count == 0 {
		return s
	}
	s.Variance = m2 / float64(s.Count)
	if s.Variance < 0 {
		s.Variance = 0
	}
	s.StdDev = math.Sqrt(s.Variance)
	return s
}
