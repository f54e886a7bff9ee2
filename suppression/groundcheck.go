package suppression

import (
	"math"

	"brainstate/spectral"
)

// GroundCheck flags spectrogram columns that look like an electrode or
// ground fault: most bins saturated or most bins flat at the same time.
type GroundCheck struct {
	Resolution float64 `yaml:"resolution"` // Hz per bin
	Hop        int     `yaml:"hop"`        // samples between columns
	MaxFreq    float64 `yaml:"max_freq"`
	High       float64 `yaml:"high"`       // saturated bin level
	Low        float64 `yaml:"low"`        // flat bin level
	HighBins   int     `yaml:"high_bins"`  // saturated bins needed to flag a column
	LowBins    int     `yaml:"low_bins"`   // flat bins needed to flag a column
}

// DefaultGroundCheck returns 1 Hz bins every 16 samples up to 45 Hz,
// flagging columns with 30 bins >= 10 or 20 bins <= 0.005.
func DefaultGroundCheck() GroundCheck {
	return GroundCheck{
		Resolution: 1,
		Hop:        16,
		MaxFreq:    45,
		High:       10,
		Low:        0.005,
		HighBins:   30,
		LowBins:    20,
	}
}

// Columns returns the per-column flags and the spectrogram they came from.
func (g GroundCheck) Columns(y []float64, fs float64) ([]bool, spectral.Spectrogram, error) {
	size := int(fs / g.Resolution)
	a, err := spectral.NewAnalyzer(fs, size)
	if err != nil {
		return nil, spectral.Spectrogram{}, err
	}
	hop := g.Hop
	if hop > size {
		hop = size
	}
	sg, err := a.Spectrogram(y, hop)
	if err != nil {
		return nil, spectral.Spectrogram{}, err
	}

	bins := sg.BinsBelow(g.MaxFreq)
	flags := make([]bool, sg.Columns())
	for c, col := range sg.Power {
		high, low := 0, 0
		for _, p := range col[:bins] {
			if p >= g.High {
				high++
			}
			if p <= g.Low {
				low++
			}
		}
		flags[c] = high >= g.HighBins || low >= g.LowBins
	}
	return flags, sg, nil
}

// Mask projects the column flags onto samples: each sample takes the flag
// of the column whose centre is nearest. A window shorter than one
// spectrogram segment is never flagged.
func (g GroundCheck) Mask(y []float64, fs float64) ([]bool, error) {
	flags, sg, err := g.Columns(y, fs)
	if err != nil {
		return nil, err
	}
	mask := make([]bool, len(y))
	if len(flags) == 0 {
		return mask, nil
	}
	for i := range mask {
		c := int(math.Round(float64(i-sg.Size/2) / float64(sg.Hop)))
		if c < 0 {
			c = 0
		}
		if c >= len(flags) {
			c = len(flags) - 1
		}
		mask[i] = flags[c]
	}
	return mask, nil
}
