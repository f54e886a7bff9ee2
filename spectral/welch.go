// Package spectral estimates power spectra of EEG windows: Welch PSD,
// short-time spectrogram, cumulative-power quantiles and peak frequency.
package spectral

import (
	"brainstate/eeg"
	"brainstate/internal/stats"

	"github.com/mjibson/go-dsp/spectral"
	"github.com/mjibson/go-dsp/window"
)

// PSD is a one-sided power spectral density in units²/Hz.
type PSD struct {
	Freqs []float64
	Power []float64
}

// Welch estimates the PSD of x with Hann-windowed segments of the given
// length and 50% overlap. The mean of x is removed first. A segment longer
// than x is shortened to len(x).
func Welch(x []float64, rate float64, segment int) (PSD, error) {
	if rate <= 0 {
		return PSD{}, eeg.ConfigError("sample rate must be positive, got %v", rate)
	}
	if segment < 2 {
		return PSD{}, eeg.ConfigError("welch segment must be at least 2 samples, got %d", segment)
	}
	if len(x) < 2 {
		return PSD{}, nil
	}
	if segment > len(x) {
		segment = len(x)
	}
	// go-dsp wants an even block size
	segment -= segment % 2

	centred := detrend(x)
	pxx, freqs := spectral.Pwelch(centred, rate, &spectral.PwelchOptions{
		NFFT:     segment,
		Noverlap: segment / 2,
		Window:   window.Hann,
	})
	return PSD{Freqs: freqs, Power: pxx}, nil
}

// Len returns the number of frequency bins.
func (p PSD) Len() int { return len(p.Freqs) }

// Total returns the summed power over all bins.
func (p PSD) Total() float64 {
	sum := 0.0
	for _, v := range p.Power {
		sum += v
	}
	return sum
}

// Quantiles returns, for each q in qs, the first frequency at which the
// normalised cumulative power reaches q. When it is never reached (or the
// spectrum carries no power) the top frequency bin is reported.
func (p PSD) Quantiles(qs []float64) []float64 {
	out := make([]float64, len(qs))
	if p.Len() == 0 {
		return out
	}
	top := p.Freqs[p.Len()-1]

	total := p.Total()
	if total <= 0 {
		for i := range out {
			out[i] = top
		}
		return out
	}

	cum := make([]float64, p.Len())
	acc := 0.0
	for i, v := range p.Power {
		acc += v
		cum[i] = acc / total
	}

	for i, q := range qs {
		out[i] = top
		for k, c := range cum {
			if c >= q {
				out[i] = p.Freqs[k]
				break
			}
		}
	}
	return out
}

// DominantFrequency returns the frequency of the strongest bin within
// [minFreq, maxFreq), refined by parabolic interpolation over its
// neighbours, together with the power of that bin. An empty band yields 0, 0.
func (p PSD) DominantFrequency(minFreq, maxFreq float64) (freq, power float64) {
	if p.Len() < 2 {
		return 0, 0
	}
	binRes := p.Freqs[1] - p.Freqs[0]

	// 1. coarse search inside the band
	maxIndex := -1
	maxPow := -1.0
	for i, f := range p.Freqs {
		if f < minFreq || f >= maxFreq {
			continue
		}
		if p.Power[i] > maxPow {
			maxPow = p.Power[i]
			maxIndex = i
		}
	}
	if maxIndex == -1 || maxPow <= 0 {
		return 0, 0
	}

	// 2. parabolic interpolation, skipped at the spectrum edges
	if maxIndex == 0 || maxIndex >= p.Len()-1 {
		return p.Freqs[maxIndex], maxPow
	}
	y1 := p.Power[maxIndex-1]
	y2 := maxPow
	y3 := p.Power[maxIndex+1]

	delta := 0.0
	if den := 2 * (2*y2 - y1 - y3); den != 0 {
		delta = (y3 - y1) / den
	}
	return p.Freqs[maxIndex] + delta*binRes, maxPow
}

// detrend returns x minus its mean.
func detrend(x []float64) []float64 {
	m := stats.Mean(x)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - m
	}
	return out
}
