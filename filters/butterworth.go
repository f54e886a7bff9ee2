// Package filters implements the digital filter bank: Butterworth biquad
// cascades, zero-phase band-pass filtering and moving-average smoothing.
package filters

import (
	"math"

	"brainstate/eeg"
)

// Biquad is one second-order IIR section in transposed direct form II.
// Cascaded to build higher-order filters.
type Biquad struct {
	// coefficients, denominator normalised so that its z^0 term is 1
	a0, a1, a2, b1, b2 float64
	// delay line
	z1, z2 float64
}

// Process filters a single sample.
func (f *Biquad) Process(in float64) float64 {
	out := in*f.a0 + f.z1
	f.z1 = in*f.a1 - out*f.b1 + f.z2
	f.z2 = in*f.a2 - out*f.b2
	return out
}

// Reset clears the delay line.
func (f *Biquad) Reset() {
	f.z1, f.z2 = 0, 0
}

// dcGain is the section gain for a constant input.
func (f *Biquad) dcGain() float64 {
	den := 1 + f.b1 + f.b2
	if den == 0 {
		return 0
	}
	return (f.a0 + f.a1 + f.a2) / den
}

// settle loads the delay line with the steady state reached for a constant
// input x, and returns the corresponding constant output.
func (f *Biquad) settle(x float64) float64 {
	y := f.dcGain() * x
	f.z1 = y - f.a0*x
	f.z2 = f.a2*x - f.b2*y
	return y
}

// Butterworth is a cascade of biquad sections.
type Butterworth struct {
	sections []*Biquad
}

type response int

const (
	lowpass response = iota
	highpass
)

// NewLowpass designs an order-th Butterworth low-pass filter.
// order must be even and positive.
func NewLowpass(order int, sampleRate, cutoff float64) (*Butterworth, error) {
	return design(lowpass, order, sampleRate, cutoff)
}

// NewHighpass designs an order-th Butterworth high-pass filter.
// order must be even and positive.
func NewHighpass(order int, sampleRate, cutoff float64) (*Butterworth, error) {
	return design(highpass, order, sampleRate, cutoff)
}

// NewBandpass chains a high-pass at low and a low-pass at high.
// A non-positive low skips the high-pass stage.
func NewBandpass(order int, sampleRate, low, high float64) (*Butterworth, error) {
	if low >= high {
		return nil, eeg.ConfigError("band-pass low cutoff %v must be below high cutoff %v", low, high)
	}
	lp, err := NewLowpass(order, sampleRate, high)
	if err != nil {
		return nil, err
	}
	if low <= 0 {
		return lp, nil
	}
	hp, err := NewHighpass(order, sampleRate, low)
	if err != nil {
		return nil, err
	}
	return &Butterworth{sections: append(hp.sections, lp.sections...)}, nil
}

func design(kind response, order int, sampleRate, cutoff float64) (*Butterworth, error) {
	if order <= 0 || order%2 != 0 {
		return nil, eeg.ConfigError("butterworth order must be even and positive, got %d", order)
	}
	if sampleRate <= 0 {
		return nil, eeg.ConfigError("sampling rate must be positive, got %v", sampleRate)
	}
	if cutoff <= 0 {
		return nil, eeg.ConfigError("cutoff must be positive, got %v", cutoff)
	}

	// Keep away from Nyquist: math.Tan diverges as cutoff -> sampleRate/2.
	if cutoff >= sampleRate*0.499 {
		cutoff = sampleRate * 0.499
	}

	sections := make([]*Biquad, order/2)

	// Bilinear transform of the analog prototype.
	// 1. pre-warp the cutoff
	k := 2.0 * sampleRate
	w := k * math.Tan(math.Pi*cutoff/sampleRate)

	// 2. one section per conjugate pole pair, low Q first
	for i := 0; i < order/2; i++ {
		poleIdx := (order/2 - 1) - i
		theta := math.Pi * (2.0*float64(poleIdx) + 1.0) / (2.0 * float64(order))

		pRe := -w * math.Sin(theta)
		pIm := w * math.Cos(theta)
		mag2 := pRe*pRe + pIm*pIm

		// denominator K^2 - 2*K*p_re + |p|^2 (z^0) and K^2 + 2*K*p_re + |p|^2 (z^-2)
		alpha := k*k - 2.0*k*pRe + mag2
		b1 := (-2.0*k*k + 2.0*mag2) / alpha
		b2 := (k*k + 2.0*k*pRe + mag2) / alpha

		var a0, a1, a2 float64
		switch kind {
		case lowpass:
			// numerator |p|^2 (1 + z^-1)^2
			a0 = mag2 / alpha
			a1 = 2.0 * mag2 / alpha
			a2 = mag2 / alpha
		case highpass:
			// numerator K^2 (1 - z^-1)^2
			a0 = k * k / alpha
			a1 = -2.0 * k * k / alpha
			a2 = k * k / alpha
		}

		sections[i] = &Biquad{
			a0: a0, a1: a1, a2: a2,
			b1: b1, b2: b2,
		}
	}

	return &Butterworth{sections: sections}, nil
}

// Process filters a single sample through all sections.
func (f *Butterworth) Process(in float64) float64 {
	out := in
	for _, s := range f.sections {
		out = s.Process(out)
	}
	return out
}

// Reset clears every section.
func (f *Butterworth) Reset() {
	for _, s := range f.sections {
		s.Reset()
	}
}

// Order returns the total filter order.
func (f *Butterworth) Order() int {
	return 2 * len(f.sections)
}

// Filter runs a causal pass over x from a cleared state and returns a new slice.
func (f *Butterworth) Filter(x []float64) []float64 {
	f.Reset()
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = f.Process(v)
	}
	return out
}

// padLen is the odd-reflection padding applied on each side by FiltFilt.
func (f *Butterworth) padLen() int {
	return 3 * (2*len(f.sections) + 1)
}

// FiltFilt applies the filter forward then backward so the output has zero
// phase shift. Edges are extended by odd reflection and each pass starts
// from the steady state of its first sample to limit start-up transients.
func (f *Butterworth) FiltFilt(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return []float64{}
	}
	pad := f.padLen()
	if pad > n-1 {
		pad = n - 1
	}

	// 1. odd extension: 2*x[0] - x[pad..1], x, 2*x[n-1] - x[n-2..n-1-pad]
	ext := make([]float64, n+2*pad)
	for i := 0; i < pad; i++ {
		ext[i] = 2*x[0] - x[pad-i]
		ext[n+pad+i] = 2*x[n-1] - x[n-2-i]
	}
	copy(ext[pad:], x)

	// 2. forward pass
	f.pass(ext)

	// 3. backward pass
	reverse(ext)
	f.pass(ext)
	reverse(ext)

	out := make([]float64, n)
	copy(out, ext[pad:pad+n])
	return out
}

// pass filters x in place, seeding the sections with the steady state of x[0].
func (f *Butterworth) pass(x []float64) {
	v := x[0]
	for _, s := range f.sections {
		v = s.settle(v)
	}
	for i, in := range x {
		x[i] = f.Process(in)
	}
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
