package filters

import (
	"fmt"

	"brainstate/eeg"
)

// DefaultOrder is the order of each low-pass / high-pass stage.
const DefaultOrder = 4

// Band is a named pass band in Hz.
type Band struct {
	Name string  `yaml:"name"`
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

func (b Band) String() string {
	return fmt.Sprintf("%s[%g-%g Hz]", b.Name, b.Low, b.High)
}

// Feature bands, in the order used by power proportions.
var (
	Delta = Band{Name: "delta", Low: 0.1, High: 4}
	Alpha = Band{Name: "alpha", Low: 7, High: 14}
	Beta  = Band{Name: "beta", Low: 15, High: 30}
	Gamma = Band{Name: "gamma", Low: 30, High: 45}
)

// FeatureBands returns delta, alpha, beta and gamma.
func FeatureBands() []Band {
	return []Band{Delta, Alpha, Beta, Gamma}
}

// Bands used only by the suppression detector.
var (
	SuppressionBroadband = Band{Name: "broadband", Low: 1.5, High: 30}
	SuppressionAlpha     = Band{Name: "alpha", Low: 7, High: 14}
	SuppressionBeta      = Band{Name: "beta", Low: 15, High: 20}
	SuppressionGamma     = Band{Name: "gamma", Low: 40, High: 45}
	ShallowGamma         = Band{Name: "high-gamma", Low: 30, High: 45}
	ShallowDelta         = Band{Name: "low-delta", Low: 1, High: 4}
	ShallowTotal         = Band{Name: "total", Low: 0.1, High: 45}
)

// Bank band-pass filters signals into fixed bands. It holds no state
// between calls.
type Bank struct {
	rate  float64
	order int
}

// NewBank creates a bank for signals sampled at rate Hz.
func NewBank(rate float64, order int) (*Bank, error) {
	if rate <= 0 {
		return nil, eeg.ConfigError("sampling rate must be positive, got %v", rate)
	}
	if order <= 0 || order%2 != 0 {
		return nil, eeg.ConfigError("filter order must be even and positive, got %d", order)
	}
	return &Bank{rate: rate, order: order}, nil
}

// Rate returns the sampling rate the bank was built for.
func (b *Bank) Rate() float64 {
	return b.rate
}

// BandPass returns x filtered with zero phase into band.
func (b *Bank) BandPass(x []float64, band Band) ([]float64, error) {
	f, err := NewBandpass(b.order, b.rate, band.Low, band.High)
	if err != nil {
		return nil, fmt.Errorf("band %s: %w", band, err)
	}
	return f.FiltFilt(x), nil
}

// Apply filters x into every band, in order.
func (b *Bank) Apply(x []float64, bands []Band) ([][]float64, error) {
	out := make([][]float64, len(bands))
	for i, band := range bands {
		y, err := b.BandPass(x, band)
		if err != nil {
			return nil, err
		}
		out[i] = y
	}
	return out, nil
}

// Power returns the squared band-passed signal.
func (b *Bank) Power(x []float64, band Band) ([]float64, error) {
	y, err := b.BandPass(x, band)
	if err != nil {
		return nil, err
	}
	for i, v := range y {
		y[i] = v * v
	}
	return y, nil
}
