// Package artifacts flags transient artifacts (motion, EMG, EOG) in a raw
// EEG using the slope of the empirical CDF of wavelet coefficient
// magnitudes, and hands flagged spans to a correction collaborator.
package artifacts

import (
	"log/slog"
	"math"
	"sort"

	"brainstate/eeg"
	"brainstate/wavelet"
)

// Config holds the detector parameters. Sizes are in samples.
type Config struct {
	Window          int     `yaml:"window"`           // analysis window size
	Step            int     `yaml:"step"`             // stride between windows
	ApproxThreshold float64 `yaml:"approx_threshold"` // T_a, approximation CDF slope
	DetailThreshold float64 `yaml:"detail_threshold"` // T_d1, finest detail CDF slope
	Wavelet         string  `yaml:"wavelet"`
	Level           int     `yaml:"level"`
	Mode            string  `yaml:"mode"`
}

// DefaultConfig returns the settings used on 128 Hz anesthesia recordings:
// 2 s windows every second, sym4 to level 4 with periodization.
func DefaultConfig(rate float64) Config {
	return Config{
		Window:          eeg.Seconds(rate, 2),
		Step:            eeg.Seconds(rate, 1),
		ApproxThreshold: 0.0004,
		DetailThreshold: 0.012,
		Wavelet:         "sym4",
		Level:           4,
		Mode:            string(wavelet.Periodization),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Window <= 0 {
		return eeg.ConfigError("artifact window must be positive, got %d", c.Window)
	}
	if c.Step <= 0 {
		return eeg.ConfigError("artifact step must be positive, got %d", c.Step)
	}
	if c.Level < 1 {
		return eeg.ConfigError("artifact decomposition level must be at least 1, got %d", c.Level)
	}
	if _, err := wavelet.Lookup(c.Wavelet); err != nil {
		return err
	}
	if _, err := wavelet.ParseMode(c.Mode); err != nil {
		return err
	}
	return nil
}

// WindowSlopes records the decision taken for one analysis window.
type WindowSlopes struct {
	Span        eeg.Interval
	Approx      float64
	Detail      float64
	ApproxValid bool // false when the approximation CDF was degenerate
	DetailValid bool
	Artifact    bool
}

// Result is the outcome of a detection run.
type Result struct {
	// Intervals are the merged artifact spans, sorted and non-overlapping.
	// Empty means no artifact was found.
	Intervals []eeg.Interval
	// Mask is true where the signal is clean.
	Mask []bool
	// Windows holds one entry per evaluated window.
	Windows []WindowSlopes
}

// Detector scans a signal for artifact windows.
type Detector struct {
	cfg    Config
	wave   wavelet.Wavelet
	mode   wavelet.Mode
	logger *slog.Logger
}

// NewDetector validates cfg and prepares the wavelet filters.
func NewDetector(cfg Config, logger *slog.Logger) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w, err := wavelet.Lookup(cfg.Wavelet)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{cfg: cfg, wave: w, mode: wavelet.Mode(cfg.Mode), logger: logger}, nil
}

// Detect slides the analysis window over y. Full windows advance by Step;
// a single trailing partial window is evaluated with its own length and
// ends the scan.
func (d *Detector) Detect(y []float64) (Result, error) {
	n := len(y)
	res := Result{Mask: make([]bool, n)}
	for i := range res.Mask {
		res.Mask[i] = true
	}

	var flagged []eeg.Interval
	ws := d.cfg.Window
	for start := 0; start < n; {
		size := ws
		next := start + d.cfg.Step
		if start+ws > n {
			// trailing partial window: stride equals its own length
			size = n - start
			next = n
		}
		span := eeg.Interval{Start: start, End: start + size}

		slopes, err := d.evaluate(y[span.Start:span.End])
		if err != nil {
			return Result{}, err
		}
		slopes.Span = span
		res.Windows = append(res.Windows, slopes)

		if slopes.Artifact {
			flagged = append(flagged, span)
			for i := span.Start; i < span.End; i++ {
				res.Mask[i] = false
			}
		}
		start = next
	}

	res.Intervals = Merge(flagged, d.cfg.Step)
	if len(res.Intervals) > 0 {
		d.logger.Debug("artifacts detected",
			slog.Int("windows", len(flagged)),
			slog.Int("spans", len(res.Intervals)))
	}
	return res, nil
}

// evaluate decides whether one window is an artifact.
func (d *Detector) evaluate(x []float64) (WindowSlopes, error) {
	coeffs, err := wavelet.Decompose(x, d.wave, d.mode, d.cfg.Level)
	if err != nil {
		return WindowSlopes{}, err
	}

	var s WindowSlopes
	s.Approx, s.ApproxValid = CDFSlope(coeffs.Approx)
	s.Detail, s.DetailValid = CDFSlope(coeffs.Finest())

	// an undefined slope never counts as "below threshold"
	s.Artifact = (s.ApproxValid && s.Approx < d.cfg.ApproxThreshold) ||
		(s.DetailValid && s.Detail < d.cfg.DetailThreshold)
	return s, nil
}

// CDFSlope builds the empirical CDF of |c| over its sorted unique values and
// returns the slope of the line joining the first and last CDF points,
// (P_max - P_min) / (V_max - V_min). ok is false when the magnitudes are all
// equal (or c is empty) and the slope is undefined.
func CDFSlope(c []float64) (slope float64, ok bool) {
	if len(c) == 0 {
		return math.NaN(), false
	}
	mags := make([]float64, len(c))
	for i, v := range c {
		mags[i] = math.Abs(v)
	}
	sort.Float64s(mags)

	vMin, vMax := mags[0], mags[len(mags)-1]
	if vMax == vMin {
		return math.NaN(), false
	}

	// P at the smallest unique value is the share of samples equal to it
	count := 0
	for count < len(mags) && mags[count] == vMin {
		count++
	}
	pMin := float64(count) / float64(len(mags))
	pMax := 1.0

	return (pMax - pMin) / (vMax - vMin), true
}

// Merge joins flagged windows whose gap to the previous span is at most
// step samples (overlapping spans always merge). The input need not be
// sorted; the output is sorted and non-overlapping.
func Merge(spans []eeg.Interval, step int) []eeg.Interval {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]eeg.Interval, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := []eeg.Interval{sorted[0]}
	for _, s := range sorted[1:] {
		cur := &out[len(out)-1]
		if s.Start-cur.End > step {
			out = append(out, s)
			continue
		}
		if s.End > cur.End {
			cur.End = s.End
		}
	}
	return out
}
