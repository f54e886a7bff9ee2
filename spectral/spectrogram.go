package spectral

import (
	"math/cmplx"

	"brainstate/eeg"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/spectral"
	"github.com/mjibson/go-dsp/window"
)

// Analyzer computes one-sided density spectra of fixed-size segments.
type Analyzer struct {
	Rate   float64
	Size   int
	Window []float64
	norm   float64 // Rate * sum(w²)
}

// NewAnalyzer creates an analyzer for segments of size samples.
func NewAnalyzer(rate float64, size int) (*Analyzer, error) {
	if rate <= 0 {
		return nil, eeg.ConfigError("sample rate must be positive, got %v", rate)
	}
	if size < 2 {
		return nil, eeg.ConfigError("spectrum segment must be at least 2 samples, got %d", size)
	}
	w := window.Hann(size)
	sum := 0.0
	for _, v := range w {
		sum += v * v
	}
	return &Analyzer{Rate: rate, Size: size, Window: w, norm: rate * sum}, nil
}

// Resolution returns the bin spacing in Hz.
func (a *Analyzer) Resolution() float64 {
	return a.Rate / float64(a.Size)
}

// Freqs returns the centre frequency of every one-sided bin.
func (a *Analyzer) Freqs() []float64 {
	freqs := make([]float64, a.Size/2+1)
	for i := range freqs {
		freqs[i] = float64(i) * a.Resolution()
	}
	return freqs
}

// Density returns the one-sided PSD of a segment of exactly Size samples.
// The segment mean is removed before windowing.
func (a *Analyzer) Density(segment []float64) []float64 {
	// 1. constant detrend and window
	x := detrend(segment[:a.Size])
	for i := range x {
		x[i] *= a.Window[i]
	}

	// 2. FFT
	spectrum := fft.FFTReal(x)

	// 3. fold to one side and scale to density
	bins := a.Size/2 + 1
	out := make([]float64, bins)
	for i := 0; i < bins; i++ {
		mag := cmplx.Abs(spectrum[i])
		p := mag * mag / a.norm
		if i > 0 && !(a.Size%2 == 0 && i == bins-1) {
			p *= 2
		}
		out[i] = p
	}
	return out
}

// Spectrogram is a sequence of density spectra. Power[c][k] is the power
// of frequency bin k in column c; Times are column centres in seconds.
type Spectrogram struct {
	Times []float64
	Freqs []float64
	Power [][]float64
	Hop   int
	Size  int
}

// Spectrogram slides the analyzer over x with the given hop. A signal
// shorter than one segment yields an empty spectrogram.
func (a *Analyzer) Spectrogram(x []float64, hop int) (Spectrogram, error) {
	if hop < 1 || hop > a.Size {
		return Spectrogram{}, eeg.ConfigError("spectrogram hop must be in [1,%d], got %d", a.Size, hop)
	}
	sg := Spectrogram{Freqs: a.Freqs(), Hop: hop, Size: a.Size}

	segs := spectral.Segment(x, a.Size, a.Size-hop)
	sg.Power = make([][]float64, len(segs))
	sg.Times = make([]float64, len(segs))
	for c, seg := range segs {
		sg.Power[c] = a.Density(seg)
		sg.Times[c] = float64(c*hop+a.Size/2) / a.Rate
	}
	return sg, nil
}

// Columns returns the number of time columns.
func (s Spectrogram) Columns() int { return len(s.Power) }

// BinsBelow returns how many leading bins lie strictly below freq.
func (s Spectrogram) BinsBelow(freq float64) int {
	n := 0
	for n < len(s.Freqs) && s.Freqs[n] < freq {
		n++
	}
	return n
}

// Centre returns the sample index at the centre of column c.
func (s Spectrogram) Centre(c int) int {
	return c*s.Hop + s.Size/2
}
