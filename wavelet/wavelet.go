// Package wavelet implements the multilevel discrete wavelet decomposition
// used by the artifact detector. Filter banks and boundary handling follow
// the PyWavelets conventions so thresholds tuned there carry over.
package wavelet

import (
	"math"
	"sort"

	"brainstate/eeg"
)

// Wavelet is an orthogonal wavelet described by its decomposition filters.
type Wavelet struct {
	Name  string
	DecLo []float64
	DecHi []float64
}

// decomposition low-pass filters, as published by PyWavelets
var lowpass = map[string][]float64{
	"haar": {math.Sqrt2 / 2, math.Sqrt2 / 2},
	"db1":  {math.Sqrt2 / 2, math.Sqrt2 / 2},
	"db2": {
		-0.12940952255126037, 0.2241438680420134,
		0.8365163037378079, 0.48296291314453416,
	},
	"db4": {
		-0.010597401785069032, 0.0328830116668852,
		0.030841381835560764, -0.18703481171909309,
		-0.027983769416859854, 0.6308807679298589,
		0.7148465705529157, 0.2303778133088965,
	},
	"sym2": {
		-0.12940952255126037, 0.2241438680420134,
		0.8365163037378079, 0.48296291314453416,
	},
	"sym4": {
		-0.07576571478927333, -0.02963552764599851,
		0.49761866763201545, 0.8037387518059161,
		0.29785779560527736, -0.09921954357684722,
		-0.012603967262037833, 0.0322231006040427,
	},
}

// Lookup returns the named wavelet.
func Lookup(name string) (Wavelet, error) {
	lo, ok := lowpass[name]
	if !ok {
		return Wavelet{}, eeg.ConfigError("unknown wavelet %q (known: %v)", name, Names())
	}
	// quadrature mirror: hi[k] = (-1)^(k+1) * lo[L-1-k]
	n := len(lo)
	hi := make([]float64, n)
	for k := 0; k < n; k++ {
		sign := -1.0
		if k%2 == 1 {
			sign = 1.0
		}
		hi[k] = sign * lo[n-1-k]
	}
	return Wavelet{Name: name, DecLo: lo, DecHi: hi}, nil
}

// Names lists the supported wavelets.
func Names() []string {
	names := make([]string, 0, len(lowpass))
	for name := range lowpass {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the filter length.
func (w Wavelet) Len() int {
	return len(w.DecLo)
}

// MaxLevel is the deepest useful decomposition level for a signal of
// length n: floor(log2(n / (filterLen - 1))).
func (w Wavelet) MaxLevel(n int) int {
	if w.Len() < 2 || n < w.Len()-1 {
		return 0
	}
	return int(math.Floor(math.Log2(float64(n) / float64(w.Len()-1))))
}
