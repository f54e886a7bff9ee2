package artifacts

import (
	"fmt"

	"brainstate/eeg"
)

// Corrector repairs the flagged spans of a signal and returns a new signal
// of the same length. The wavelet-domain correction used in production is
// an external collaborator plugged in through this interface.
type Corrector interface {
	Correct(samples []float64, intervals []eeg.Interval) ([]float64, error)
}

// CorrectorFunc adapts a plain function to Corrector.
type CorrectorFunc func(samples []float64, intervals []eeg.Interval) ([]float64, error)

// Correct calls f.
func (f CorrectorFunc) Correct(samples []float64, intervals []eeg.Interval) ([]float64, error) {
	return f(samples, intervals)
}

// Interpolator replaces each flagged span by a straight line between the
// clean samples that bracket it. It is a simple stand-in when no
// wavelet-domain corrector is available.
type Interpolator struct{}

// Correct implements Corrector.
func (Interpolator) Correct(samples []float64, intervals []eeg.Interval) ([]float64, error) {
	n := len(samples)
	out := make([]float64, n)
	copy(out, samples)

	for _, iv := range intervals {
		if iv.Start < 0 || iv.End > n || iv.Start >= iv.End {
			return nil, fmt.Errorf("interval [%d,%d) out of range for %d samples", iv.Start, iv.End, n)
		}

		// anchors: last clean sample before, first clean sample after
		left, right := iv.Start-1, iv.End
		switch {
		case left < 0 && right >= n:
			for i := iv.Start; i < iv.End; i++ {
				out[i] = 0
			}
		case left < 0:
			for i := iv.Start; i < iv.End; i++ {
				out[i] = out[right]
			}
		case right >= n:
			for i := iv.Start; i < iv.End; i++ {
				out[i] = out[left]
			}
		default:
			a, b := out[left], out[right]
			span := float64(right - left)
			for i := iv.Start; i < iv.End; i++ {
				frac := float64(i-left) / span
				out[i] = a + (b-a)*frac
			}
		}
	}
	return out, nil
}
