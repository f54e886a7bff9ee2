// Package synth builds synthetic single-channel EEG recordings: white
// noise, rhythms, flat suppression, burst-suppression and transient
// artifacts. Amplitudes are in µV.
package synth

import (
	"math"
	"math/rand"
)

// Rhythm is one sinusoidal component.
type Rhythm struct {
	Freq  float64 // Hz
	Amp   float64 // peak amplitude
	Phase float64 // radians
}

// Typical rhythms of an anesthetised adult.
var (
	SlowDelta  = Rhythm{Freq: 1.5, Amp: 40}
	FrontAlpha = Rhythm{Freq: 10, Amp: 15, Phase: 0.7}
	LowBeta    = Rhythm{Freq: 18, Amp: 5, Phase: 1.3}
)

// Generator appends segments to a growing recording.
type Generator struct {
	rate   float64
	rng    *rand.Rand
	buffer []float64
}

// NewGenerator creates a generator for rate Hz with a fixed seed so that
// runs are reproducible.
func NewGenerator(rate float64, seed int64) *Generator {
	return &Generator{rate: rate, rng: rand.New(rand.NewSource(seed))}
}

// Rate returns the sampling rate.
func (g *Generator) Rate() float64 { return g.rate }

func (g *Generator) samples(seconds float64) int {
	return int(seconds * g.rate)
}

// Noise appends Gaussian white noise of standard deviation sigma.
func (g *Generator) Noise(seconds, sigma float64) *Generator {
	n := g.samples(seconds)
	for i := 0; i < n; i++ {
		g.buffer = append(g.buffer, sigma*g.rng.NormFloat64())
	}
	return g
}

// Silence appends an exactly flat segment.
func (g *Generator) Silence(seconds float64) *Generator {
	g.buffer = append(g.buffer, make([]float64, g.samples(seconds))...)
	return g
}

// Rhythms appends the sum of the rhythms plus white noise of sigma.
// Phases continue from the absolute sample index.
func (g *Generator) Rhythms(seconds, sigma float64, rhythms ...Rhythm) *Generator {
	n := g.samples(seconds)
	offset := len(g.buffer)
	for i := 0; i < n; i++ {
		t := float64(offset+i) / g.rate
		v := sigma * g.rng.NormFloat64()
		for _, r := range rhythms {
			v += r.Amp * math.Sin(2*math.Pi*r.Freq*t+r.Phase)
		}
		g.buffer = append(g.buffer, v)
	}
	return g
}

// BurstSuppression appends alternating bursts of noise (sigma) and flat
// stretches, starting with a burst, until seconds are filled.
func (g *Generator) BurstSuppression(seconds, burst, flat, sigma float64) *Generator {
	total := g.samples(seconds)
	on, off := g.samples(burst), g.samples(flat)
	if on+off == 0 {
		return g.Noise(seconds, sigma)
	}
	for i := 0; i < total; i++ {
		if i%(on+off) < on {
			g.buffer = append(g.buffer, sigma*g.rng.NormFloat64())
		} else {
			g.buffer = append(g.buffer, 0)
		}
	}
	return g
}

// Samples returns a copy of the recording built so far.
func (g *Generator) Samples() []float64 {
	out := make([]float64, len(g.buffer))
	copy(out, g.buffer)
	return out
}

// Len returns the number of samples generated so far.
func (g *Generator) Len() int { return len(g.buffer) }

// Spike returns a copy of x with a half-sine transient of the given peak
// amplitude added over [at, at+duration) seconds.
func Spike(x []float64, rate, at, duration, amp float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)

	start := int(at * rate)
	n := int(duration * rate)
	for i := 0; i < n && start+i < len(out); i++ {
		out[start+i] += amp * math.Sin(math.Pi*float64(i)/float64(n))
	}
	return out
}

// Effects describes recording-chain impairments.
type Effects struct {
	NoiseSigma float64 // additive white noise
	LineFreq   float64 // mains interference frequency, 0 disables
	LineAmp    float64
	Offset     float64 // constant DC offset
	DriftRate  float64 // slow baseline wander frequency (Hz)
	DriftDepth float64 // wander amplitude
}

// ApplyEffects returns a copy of x with the impairments added.
func ApplyEffects(x []float64, rate float64, fx Effects, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, len(x))
	for i, v := range x {
		t := float64(i) / rate

		// 1. baseline
		v += fx.Offset
		if fx.DriftDepth > 0 {
			v += fx.DriftDepth * math.Sin(2*math.Pi*fx.DriftRate*t)
		}

		// 2. mains
		if fx.LineFreq > 0 {
			v += fx.LineAmp * math.Sin(2*math.Pi*fx.LineFreq*t)
		}

		// 3. noise
		if fx.NoiseSigma > 0 {
			v += fx.NoiseSigma * rng.NormFloat64()
		}
		out[i] = v
	}
	return out
}
