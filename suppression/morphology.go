package suppression

// Binary morphology on 1-D masks with a flat structuring element of size
// taps. Samples outside the mask count as false. For an even size the
// erosion footprint is [i-size/2, i+size/2-1] and the dilation footprint
// is its mirror [i-size/2+1, i+size/2], so that an erosion followed by a
// dilation of the same size restores every run at least size long.

// Erode keeps i true only when the whole footprint around i is true.
func Erode(mask []bool, size int) []bool {
	if size <= 1 {
		return clone(mask)
	}
	lo, hi := -(size / 2), size-1-size/2
	return sweep(mask, lo, hi, func(count, width int) bool { return count == width })
}

// Dilate sets i true when any sample of the footprint around i is true.
func Dilate(mask []bool, size int) []bool {
	if size <= 1 {
		return clone(mask)
	}
	lo, hi := -(size-1-size/2), size/2
	return sweep(mask, lo, hi, func(count, _ int) bool { return count > 0 })
}

// sweep evaluates keep(trueCount, size) over [i+lo, i+hi] for every i.
// Positions outside the mask add to the size but never to the count.
func sweep(mask []bool, lo, hi int, keep func(count, width int) bool) []bool {
	n := len(mask)
	prefix := make([]int, n+1)
	for i, v := range mask {
		prefix[i+1] = prefix[i]
		if v {
			prefix[i+1]++
		}
	}

	width := hi - lo + 1
	out := make([]bool, n)
	for i := range out {
		a, b := i+lo, i+hi
		if a < 0 {
			a = 0
		}
		if b > n-1 {
			b = n - 1
		}
		count := 0
		if a <= b {
			count = prefix[b+1] - prefix[a]
		}
		out[i] = keep(count, width)
	}
	return out
}

// ErosionDilation removes true runs shorter than minBand seconds and
// bridges false gaps up to about maxGap seconds: erosion by
// int(fs*minBand), dilation by that plus int(fs*maxGap)-1, then erosion by
// int(fs*maxGap)-1.
func ErosionDilation(mask []bool, minBand, maxGap, fs float64) []bool {
	minRun := int(fs * minBand)
	gap := int(fs*maxGap) - 1

	out := Erode(mask, minRun)
	out = Dilate(out, minRun+gap)
	return Erode(out, gap)
}

func clone(mask []bool) []bool {
	out := make([]bool, len(mask))
	copy(out, mask)
	return out
}
