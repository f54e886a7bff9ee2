package wavelet

import (
	"brainstate/eeg"
)

// Mode selects how the signal is extended past its edges.
type Mode string

const (
	// Periodization treats the signal as periodic and yields exactly
	// ceil(N/2) coefficients per level.
	Periodization Mode = "periodization"
	// Symmetric mirrors the signal about its edge samples (half-sample symmetry).
	Symmetric Mode = "symmetric"
	// Zero pads with zeros.
	Zero Mode = "zero"
	// Periodic wraps the signal around without trimming the output.
	Periodic Mode = "periodic"
)

// ParseMode validates a boundary mode name.
func ParseMode(name string) (Mode, error) {
	switch m := Mode(name); m {
	case Periodization, Symmetric, Zero, Periodic:
		return m, nil
	}
	return "", eeg.ConfigError("unknown wavelet boundary mode %q", name)
}

// Coefficients is the result of a multilevel decomposition.
type Coefficients struct {
	Approx  []float64   // approximation at the deepest level
	Details [][]float64 // Details[0] is the finest level (d1)
}

// Finest returns the first-level detail coefficients.
func (c Coefficients) Finest() []float64 {
	if len(c.Details) == 0 {
		return nil
	}
	return c.Details[0]
}

// Decompose runs a level-deep DWT of x.
func Decompose(x []float64, w Wavelet, mode Mode, level int) (Coefficients, error) {
	if level < 1 {
		return Coefficients{}, eeg.ConfigError("decomposition level must be at least 1, got %d", level)
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return Coefficients{}, err
	}
	if len(x) == 0 {
		return Coefficients{}, eeg.ConfigError("cannot decompose an empty signal")
	}

	details := make([][]float64, level)
	approx := x
	for l := 0; l < level; l++ {
		a, d := Step(approx, w, mode)
		details[l] = d
		approx = a
	}
	return Coefficients{Approx: approx, Details: details}, nil
}

// Step runs one analysis level and returns approximation and detail.
func Step(x []float64, w Wavelet, mode Mode) (approx, detail []float64) {
	if mode == Periodization {
		return convolvePeriodization(x, w.DecLo), convolvePeriodization(x, w.DecHi)
	}
	return convolveExtended(x, w.DecLo, mode), convolveExtended(x, w.DecHi, mode)
}

// convolvePeriodization computes out[o] = sum_j f[j] * x'[(F/2 + 2o - j) mod N'],
// where x' duplicates the last sample when N is odd.
func convolvePeriodization(x, f []float64) []float64 {
	n := len(x)
	ext := x
	if n%2 == 1 {
		ext = make([]float64, n+1)
		copy(ext, x)
		ext[n] = x[n-1]
	}
	np := len(ext)
	out := make([]float64, np/2)
	half := len(f) / 2
	for o := range out {
		i := half + 2*o
		sum := 0.0
		for j, c := range f {
			k := (i - j) % np
			if k < 0 {
				k += np
			}
			sum += c * ext[k]
		}
		out[o] = sum
	}
	return out
}

// convolveExtended computes out[o] = sum_j f[j] * x[2o + 1 - j] with the
// signal extended by mode; floor((N+F-1)/2) outputs.
func convolveExtended(x, f []float64, mode Mode) []float64 {
	n := len(x)
	out := make([]float64, (n+len(f)-1)/2)
	for o := range out {
		i := 2*o + 1
		sum := 0.0
		for j, c := range f {
			sum += c * extend(x, i-j, mode)
		}
		out[o] = sum
	}
	return out
}

// extend returns x[idx] for any idx under the boundary mode.
func extend(x []float64, idx int, mode Mode) float64 {
	n := len(x)
	if idx >= 0 && idx < n {
		return x[idx]
	}
	switch mode {
	case Zero:
		return 0
	case Periodic:
		k := idx % n
		if k < 0 {
			k += n
		}
		return x[k]
	default: // Symmetric
		period := 2 * n
		k := idx % period
		if k < 0 {
			k += period
		}
		if k >= n {
			k = period - 1 - k
		}
		return x[k]
	}
}
