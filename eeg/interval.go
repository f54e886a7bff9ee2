package eeg

// Interval is a half-open sample range [Start, End).
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of samples covered.
func (iv Interval) Len() int {
	return iv.End - iv.Start
}

// Contains reports whether sample i lies in the interval.
func (iv Interval) Contains(i int) bool {
	return i >= iv.Start && i < iv.End
}

// Overlaps reports whether the two intervals share at least one sample.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start < o.End && o.Start < iv.End
}

// Shift returns the interval moved by offset samples.
func (iv Interval) Shift(offset int) Interval {
	return Interval{Start: iv.Start + offset, End: iv.End + offset}
}

// Intervals compacts the contiguous true-runs of mask into an ordered list.
func Intervals(mask []bool) []Interval {
	var out []Interval
	start := -1
	for i, v := range mask {
		switch {
		case v && start < 0:
			start = i
		case !v && start >= 0:
			out = append(out, Interval{Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, Interval{Start: start, End: len(mask)})
	}
	return out
}

// Mask rebuilds an n-sample mask that is true inside the intervals.
// Interval bounds are clipped to [0, n).
func Mask(n int, intervals []Interval) []bool {
	mask := make([]bool, n)
	for _, iv := range intervals {
		start, end := iv.Start, iv.End
		if start < 0 {
			start = 0
		}
		if end > n {
			end = n
		}
		for i := start; i < end; i++ {
			mask[i] = true
		}
	}
	return mask
}

// Count returns the number of true entries.
func Count(mask []bool) int {
	n := 0
	for _, v := range mask {
		if v {
			n++
		}
	}
	return n
}

// Fraction returns Count(mask) / len(mask), or 0 for an empty mask.
func Fraction(mask []bool) float64 {
	if len(mask) == 0 {
		return 0
	}
	return float64(Count(mask)) / float64(len(mask))
}

// Invert returns the element-wise negation of mask.
func Invert(mask []bool) []bool {
	out := make([]bool, len(mask))
	for i, v := range mask {
		out[i] = !v
	}
	return out
}
