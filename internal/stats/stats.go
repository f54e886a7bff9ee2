// Package stats holds the small order statistics the pipeline needs,
// using linear interpolation between closest ranks.
package stats

import (
	"math"
	"sort"
)

// SafeFloat maps NaN and ±Inf to 0.
func SafeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0.0
	}
	return v
}

// Quantile returns the q-th quantile (0 ≤ q ≤ 1) of data using linear
// interpolation between closest ranks. Returns NaN for empty data.
func Quantile(data []float64, q float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	return SortedQuantile(sorted, q)
}

// SortedQuantile is Quantile for data already sorted ascending.
func SortedQuantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	index := q * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Median returns the 0.5 quantile.
func Median(data []float64) float64 {
	return Quantile(data, 0.5)
}

// Mean returns the arithmetic mean, NaN for empty data.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// Std returns the population standard deviation (divides by n).
func Std(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	mean := Mean(data)
	sumSquares := 0.0
	for _, v := range data {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(data)))
}

// Below returns the values of data strictly lower than limit.
func Below(data []float64, limit float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if v < limit {
			out = append(out, v)
		}
	}
	return out
}

// MinMax returns the extrema of data; both are 0 for empty data.
func MinMax(data []float64) (lo, hi float64) {
	if len(data) == 0 {
		return 0, 0
	}
	lo, hi = data[0], data[0]
	for _, v := range data[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
