// Package eeg holds the data model shared by every stage of the pipeline:
// a sampled signal, half-open sample intervals and boolean masks.
package eeg

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every configuration error returned at a
// component entry point.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError builds an error wrapping ErrInvalidConfig.
func ConfigError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Signal is a single-channel recording sampled at a fixed rate.
// Components borrow Samples and never modify them.
type Signal struct {
	Samples []float64
	Rate    float64 // Hz
}

// NewSignal wraps samples recorded at rate Hz.
func NewSignal(samples []float64, rate float64) (Signal, error) {
	if rate <= 0 {
		return Signal{}, ConfigError("sampling rate must be positive, got %v", rate)
	}
	return Signal{Samples: samples, Rate: rate}, nil
}

// Len returns the number of samples.
func (s Signal) Len() int {
	return len(s.Samples)
}

// Time returns the time base value t[i] = i / fs in seconds.
func (s Signal) Time(i int) float64 {
	return float64(i) / s.Rate
}

// Duration returns the recording length in seconds.
func (s Signal) Duration() float64 {
	return float64(len(s.Samples)) / s.Rate
}

// Window returns the borrowed half-open sub-range [start, start+size).
func (s Signal) Window(start, size int) []float64 {
	return s.Samples[start : start+size]
}

// Seconds converts a duration in seconds into a sample count, truncating
// like int(fs*d).
func Seconds(rate, d float64) int {
	return int(rate * d)
}
