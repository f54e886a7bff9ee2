// Package suppression finds isoelectric suppression (IES) and
// alpha-suppression inside one analysis window, using thresholds derived
// from the window's own smoothed band power.
package suppression

import (
	"fmt"
	"log/slog"

	"brainstate/eeg"
	"brainstate/filters"
)

// Config holds the detector settings.
type Config struct {
	IESMax   float64     `yaml:"ies_max"`   // cap on T_IES (and on T_alpha)
	AlphaMax float64     `yaml:"alpha_max"` // sets the alpha outlier limit
	Order    int         `yaml:"order"`     // band-pass filter order
	Ground   GroundCheck `yaml:"ground"`
}

// DefaultConfig returns T_IES_max = 12 and T_alpha_max = 5.
func DefaultConfig() Config {
	return Config{
		IESMax:   12,
		AlphaMax: 5,
		Order:    filters.DefaultOrder,
		Ground:   DefaultGroundCheck(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.IESMax <= 0 || c.AlphaMax <= 0 {
		return eeg.ConfigError("suppression caps must be positive, got ies=%v alpha=%v", c.IESMax, c.AlphaMax)
	}
	if c.Ground.Resolution <= 0 || c.Ground.Hop <= 0 {
		return eeg.ConfigError("ground check needs positive resolution and hop")
	}
	return nil
}

// Morphology settings in seconds: minimum true run, maximum false gap.
const (
	shallowMinBand, shallowMaxGap = 0.5, 0.5
	alphaMinBand, alphaMaxGap     = 0.6, 0.5
	iesMinBand, iesMaxGap         = 1.1, 0.9

	smoothingSeconds = 0.25
	deltaSmoothing   = 1.0

	shallowRatio      = 0.05  // gamma / delta at or above this is shallow
	shallowMaxPower   = 100.0 // total power at or below this may be shallow
	alphaGammaCeiling = 0.25
)

// Result is everything the detector reports for one window. All masks
// have the window's length.
type Result struct {
	Broadband []float64 // smoothed 1.5-30 Hz power
	Alpha     []float64 // smoothed 7-14 Hz power

	IESIntervals   []eeg.Interval
	AlphaIntervals []eeg.Interval

	IESMask     []bool
	AlphaMask   []bool
	ShallowMask []bool
	GroundMask  []bool

	IESFraction     float64
	AlphaFraction   float64
	ShallowFraction float64

	Thresholds Thresholds

	rawAlpha []bool // alpha condition before morphology
}

// Score is alpha_fraction + 2 * IES_fraction.
func (r Result) Score() float64 {
	return r.AlphaFraction + 2*r.IESFraction
}

// GatedIESMask returns broadband < T_IES restricted to samples that also
// met the alpha-suppression condition, before morphology. The reported
// IESMask does not use this gating; the mask is kept for comparison only.
func (r Result) GatedIESMask() []bool {
	out := make([]bool, len(r.Broadband))
	for i, p := range r.Broadband {
		out[i] = r.rawAlpha[i] && p < r.Thresholds.IES
	}
	return out
}

// Detector runs suppression detection for windows sampled at one rate.
// It keeps no per-window state and may be shared between goroutines.
type Detector struct {
	cfg    Config
	rate   float64
	bank   *filters.Bank
	logger *slog.Logger
}

// NewDetector validates cfg for signals sampled at rate Hz.
func NewDetector(cfg Config, rate float64, logger *slog.Logger) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	order := cfg.Order
	if order == 0 {
		order = filters.DefaultOrder
	}
	bank, err := filters.NewBank(rate, order)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{cfg: cfg, rate: rate, bank: bank, logger: logger}, nil
}

// Detect is a convenience wrapper building a Detector for one call.
func Detect(window []float64, fs float64, cfg Config) (Result, error) {
	d, err := NewDetector(cfg, fs, nil)
	if err != nil {
		return Result{}, err
	}
	return d.Detect(window)
}

// Detect analyses one window. An empty window yields an empty Result.
func (d *Detector) Detect(y []float64) (Result, error) {
	n := len(y)
	if n == 0 {
		return Result{}, nil
	}
	fs := d.rate
	kernel := int(fs * smoothingSeconds)

	// 1. smoothed band powers
	power := func(band filters.Band, taps int) ([]float64, error) {
		x, err := d.bank.BandPass(y, band)
		if err != nil {
			return nil, err
		}
		return filters.SmoothedPower(x, taps), nil
	}
	var (
		res   Result
		err   error
		beta  []float64
		gamma []float64
	)
	if res.Broadband, err = power(filters.SuppressionBroadband, kernel); err != nil {
		return Result{}, err
	}
	if res.Alpha, err = power(filters.SuppressionAlpha, kernel); err != nil {
		return Result{}, err
	}
	if beta, err = power(filters.SuppressionBeta, kernel); err != nil {
		return Result{}, err
	}
	if gamma, err = power(filters.SuppressionGamma, kernel); err != nil {
		return Result{}, err
	}

	// 2-3. adaptive thresholds
	th := ComputeThresholds(res.Broadband, res.Alpha, d.cfg.IESMax, d.cfg.AlphaMax)
	res.Thresholds = th

	// 4. shallow signal
	shallow, err := d.shallowMask(y, kernel)
	if err != nil {
		return Result{}, err
	}
	res.ShallowMask = shallow

	// 5. ground check
	ground, err := d.cfg.Ground.Mask(y, fs)
	if err != nil {
		return Result{}, fmt.Errorf("ground check: %w", err)
	}
	res.GroundMask = ground

	// 6. alpha suppression
	res.rawAlpha = make([]bool, n)
	for i := range res.rawAlpha {
		res.rawAlpha[i] = res.Alpha[i] < th.Alpha &&
			beta[i] < th.Beta &&
			!shallow[i] &&
			gamma[i] < alphaGammaCeiling &&
			!ground[i]
	}
	alpha := ErosionDilation(res.rawAlpha, alphaMinBand, alphaMaxGap, fs)

	// 7. IES, broadband only
	ies := make([]bool, n)
	for i, p := range res.Broadband {
		ies[i] = p < th.IES
	}
	ies = ErosionDilation(ies, iesMinBand, iesMaxGap, fs)

	// 8. alpha suppression and IES are exclusive
	for i := range alpha {
		if ies[i] {
			alpha[i] = false
		}
	}

	// 9. report
	res.IESMask, res.AlphaMask = ies, alpha
	res.IESIntervals = eeg.Intervals(ies)
	res.AlphaIntervals = eeg.Intervals(alpha)
	res.IESFraction = eeg.Fraction(ies)
	res.AlphaFraction = eeg.Fraction(alpha)
	res.ShallowFraction = eeg.Fraction(shallow)

	d.logger.Debug("suppression window",
		slog.Float64("t_ies", th.IES),
		slog.String("ies_branch", th.IESBranch.String()),
		slog.Float64("t_alpha", th.Alpha),
		slog.String("alpha_branch", th.AlphaBranch.String()),
		slog.Float64("ies_fraction", res.IESFraction),
		slog.Float64("alpha_fraction", res.AlphaFraction))
	return res, nil
}

// shallowMask flags samples where 30-45 Hz power is high relative to
// 1-4 Hz power while total power stays low.
func (d *Detector) shallowMask(y []float64, kernel int) ([]bool, error) {
	hi, err := d.bank.BandPass(y, filters.ShallowGamma)
	if err != nil {
		return nil, err
	}
	lo, err := d.bank.BandPass(y, filters.ShallowDelta)
	if err != nil {
		return nil, err
	}
	total, err := d.bank.BandPass(y, filters.ShallowTotal)
	if err != nil {
		return nil, err
	}
	gamma := filters.SmoothedPower(hi, kernel)
	delta := filters.SmoothedPower(lo, int(d.rate*deltaSmoothing))
	pTotal := filters.SmoothedPower(total, kernel)

	mask := make([]bool, len(y))
	for i := range mask {
		// x/0 is +Inf (shallow when x > 0); 0/0 is undefined and never shallow
		var high bool
		if delta[i] == 0 {
			high = gamma[i] > 0
		} else {
			high = gamma[i]/delta[i] >= shallowRatio
		}
		mask[i] = high && pTotal[i] <= shallowMaxPower
	}
	return ErosionDilation(mask, shallowMinBand, shallowMaxGap, d.rate), nil
}
