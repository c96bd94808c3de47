package common

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistical functions used across the sift using gonum for robustness

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// PopStdDev calculates the population standard deviation (divisor N).
// Noise and mask amplitudes are scaled by this value.
func PopStdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	_, std := stat.PopMeanStdDev(data, nil)
	return std
}

// Median returns the median of data without modifying it
func Median(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2.0
	}
	return sorted[mid]
}

// SumSquares returns the sum of squared samples
func SumSquares(data []float64) float64 {
	return floats.Dot(data, data)
}

// SumAbs returns the sum of absolute sample values (the L1 norm)
func SumAbs(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Norm(data, 1)
}

// MeanAbs returns the mean absolute sample value
func MeanAbs(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return SumAbs(data) / float64(len(data))
}

// Sub returns a - b as a new slice
func Sub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	floats.SubTo(out, a, b)
	return out
}

// Add returns a + b as a new slice
func Add(a, b []float64) []float64 {
	out := make([]float64, len(a))
	floats.AddTo(out, a, b)
	return out
}

// Negate returns -data as a new slice
func Negate(data []float64) []float64 {
	out := make([]float64, len(data))
	floats.ScaleTo(out, -1, data)
	return out
}

// Abs returns |data| as a new slice
func Abs(data []float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = math.Abs(v)
	}
	return out
}

// Clone returns a copy of data
func Clone(data []float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	return out
}

// MeanOf averages equally sized rows pointwise. It returns nil for no rows.
func MeanOf(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]float64, len(rows[0]))
	for _, row := range rows {
		floats.Add(out, row)
	}
	floats.Scale(1/float64(len(rows)), out)
	return out
}
