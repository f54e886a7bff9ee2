package filters

// MovingAverage convolves x with a flat kernel of n taps (each 1/n) and
// keeps the centred part, the same length as x.
// Samples beyond the edges count as zero. n <= 1 returns a copy of x.
func MovingAverage(x []float64, n int) []float64 {
	out := make([]float64, len(x))
	if n <= 1 {
		copy(out, x)
		return out
	}

	prefix := make([]float64, len(x)+1)
	for i, v := range x {
		prefix[i+1] = prefix[i] + v
	}

	// window for output i covers [i - n/2, i + (n-1)/2]
	left, right := n/2, (n-1)/2
	last := len(x) - 1
	for i := range x {
		lo := i - left
		hi := i + right
		if lo < 0 {
			lo = 0
		}
		if hi > last {
			hi = last
		}
		out[i] = (prefix[hi+1] - prefix[lo]) / float64(n)
	}
	return out
}

// SmoothedPower returns MovingAverage(x*x, n).
func SmoothedPower(x []float64, n int) []float64 {
	sq := make([]float64, len(x))
	for i, v := range x {
		sq[i] = v * v
	}
	return MovingAverage(sq, n)
}
