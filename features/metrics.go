package features

import (
	"math"

	"brainstate/internal/stats"
)

// Proportions divides each band power by their sum. A window without any
// power gets the uniform 1/len fallback so that no NaN reaches the
// classifier.
func Proportions(power [4]float64) [4]float64 {
	var out [4]float64
	total := 0.0
	for _, p := range power {
		total += p
	}
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		for i := range out {
			out[i] = 1.0 / float64(len(out))
		}
		return out
	}
	for i, p := range power {
		out[i] = p / total
	}
	return out
}

// zscore returns (x - mean) / std, or nil when x is constant.
func zscore(x []float64) []float64 {
	sd := stats.Std(x)
	if len(x) == 0 || sd == 0 || math.IsNaN(sd) {
		return nil
	}
	mean := stats.Mean(x)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - mean) / sd
	}
	return out
}

// quantize maps z into bins equal-width bins over [min, max]; the maximum
// falls in the last bin.
func quantize(z []float64, bins int) []int {
	lo, hi := stats.MinMax(z)
	out := make([]int, len(z))
	width := (hi - lo) / float64(bins)
	if width == 0 {
		return out
	}
	for i, v := range z {
		k := int((v - lo) / width)
		if k >= bins {
			k = bins - 1
		}
		out[i] = k
	}
	return out
}

// shannon returns the base-2 entropy of the empirical distribution given
// by counts.
func shannon(counts map[int]int, total int) float64 {
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// Entropy z-scores x, histograms it into bins and returns the Shannon
// entropy (bits) of the non-empty bins. A constant window has entropy 0.
func Entropy(x []float64, bins int) float64 {
	z := zscore(x)
	if z == nil || bins < 1 {
		return 0
	}
	counts := make(map[int]int, bins)
	for _, k := range quantize(z, bins) {
		counts[k]++
	}
	return shannon(counts, len(z))
}

// BlockEntropy z-scores x, quantizes it into bins symbols and returns the
// Shannon entropy (bits) of the overlapping order-length symbol tuples.
func BlockEntropy(x []float64, bins, order int) float64 {
	z := zscore(x)
	if z == nil || bins < 1 || order < 1 || len(z) < order {
		return 0
	}
	symbols := quantize(z, bins)

	counts := make(map[int]int)
	total := 0
	for i := 0; i+order <= len(symbols); i++ {
		key := 0
		for _, s := range symbols[i : i+order] {
			key = key*bins + s
		}
		counts[key]++
		total++
	}
	return shannon(counts, total)
}

// LineLength is sum|diff(x)| normalised by the root-median-square
// amplitude and by len(x). A window with zero amplitude has line length 0.
func LineLength(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	sq := make([]float64, len(x))
	for i, v := range x {
		sq[i] = v * v
	}
	amp := math.Sqrt(stats.Median(sq))
	if amp == 0 {
		return 0
	}
	sum := 0.0
	for i := 1; i < len(x); i++ {
		sum += math.Abs(x[i] - x[i-1])
	}
	return sum / amp / float64(len(x))
}

// ZeroCrossingFrequency is half the number of sign changes per second.
// A sample at exactly zero counts as its own sign.
func ZeroCrossingFrequency(x []float64, rate float64) float64 {
	if len(x) == 0 || rate <= 0 {
		return 0
	}
	sign := func(v float64) int {
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		}
		return 0
	}
	changes := 0
	for i := 1; i < len(x); i++ {
		if sign(x[i]) != sign(x[i-1]) {
			changes++
		}
	}
	duration := float64(len(x)) / rate
	return float64(changes) / 2 / duration
}

// SmoothTrailing replaces each value by the mean of itself and up to n-1
// preceding values. It is a post-processing aid and is not applied by the
// extractor.
func SmoothTrailing(x []float64, n int) []float64 {
	out := make([]float64, len(x))
	if n < 1 {
		n = 1
	}
	sum := 0.0
	for i, v := range x {
		sum += v
		if i >= n {
			sum -= x[i-n]
		}
		count := n
		if i+1 < n {
			count = i + 1
		}
		out[i] = sum / float64(count)
	}
	return out
}
