package stats

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{7, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}

	tests := []struct {
		name string
		p    float64
		want float64
	}{
		{"min", 0, 1},
		{"max", 1, 4},
		{"median interpolates", 0.5, 2.5},
		{"quarter", 0.25, 1.75},
		{"p below range clamps", -3, 1},
		{"p above range clamps", 3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentile(sorted, tt.p); !almostEqual(got, tt.want) {
				t.Errorf("Percentile(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPercentile_EmptyAndSingle(t *testing.T) {
	if got := Percentile(nil, 0.5); got != 0 {
		t.Errorf("Percentile(nil) = %v, want 0", got)
	}
	if got := Percentile([]float64{9}, 0.9); got != 9 {
		t.Errorf("Percentile([9]) = %v, want 9", got)
	}
}

func TestMeanVariance(t *testing.T) {
	s := MeanVariance([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if s.Count != 8 {
		t.Errorf("Count = %d, want 8", s.Count)
	}
	if !almostEqual(s.Mean, 5) {
		t.Errorf("Mean = %v, want 5", s.Mean)
	}
	if !almostEqual(s.Variance, 4) {
		t.Errorf("Variance = %v, want 4", s.Variance)
	}
	if !almostEqual(s.StdDev, 2) {
		t.Errorf("StdDev = %v, want 2", s.StdDev)
	}
}

func TestMeanVariance_Empty(t *testing.T) {
	s := MeanVariance(nil)
	if s != (Summary{}) {
		t.Errorf("MeanVariance(nil) = %+v, want zero", s)
	}
}

func TestMeanVariance_LargeOffsetStable(t *testing.T) {
	// Naive sum-of-squares loses all precision here.
	base := 1e9
	s := MeanVariance([]float64{base + 4, base + 7, base + 13, base + 16})
	if !almostEqual(s.Variance, 22.5) {
		t.Errorf("Variance = %v, want 22.5", s.Variance)
	}
}
