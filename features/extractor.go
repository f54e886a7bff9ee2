// Package features slides analysis windows over a recording and derives
// the per-window feature vectors used by the state classifier.
package features

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"brainstate/eeg"
	"brainstate/filters"
	"brainstate/internal/stats"
	"brainstate/spectral"
	"brainstate/suppression"
)

// Config holds the extractor settings. Sizes are in samples.
type Config struct {
	Window           int                `yaml:"window"`
	Step             int                `yaml:"step"`
	LineLengthWindow int                `yaml:"line_length_window"`
	LineLengthStep   int                `yaml:"line_length_step"`
	Quantiles        []float64          `yaml:"quantiles"`
	WelchSegment     int                `yaml:"welch_segment"`
	EntropyBins      int                `yaml:"entropy_bins"`
	BlockEntropyBins int                `yaml:"block_entropy_bins"`
	BlockOrder       int                `yaml:"block_order"`
	Workers          int                `yaml:"workers"` // 0 means GOMAXPROCS
	Suppression      suppression.Config `yaml:"suppression"`
}

// DefaultConfig returns 30 s windows every 10 s, 2 s / 1 s line length
// windows and the 50/75/85/95% spectral quantiles.
func DefaultConfig(rate float64) Config {
	return Config{
		Window:           eeg.Seconds(rate, 30),
		Step:             eeg.Seconds(rate, 10),
		LineLengthWindow: eeg.Seconds(rate, 2),
		LineLengthStep:   eeg.Seconds(rate, 1),
		Quantiles:        []float64{0.50, 0.75, 0.85, 0.95},
		WelchSegment:     eeg.Seconds(rate, 2),
		EntropyBins:      32,
		BlockEntropyBins: 8,
		BlockOrder:       2,
		Suppression:      suppression.DefaultConfig(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Window <= 0 || c.Step <= 0 {
		return eeg.ConfigError("feature window and step must be positive, got %d/%d", c.Window, c.Step)
	}
	if c.LineLengthWindow <= 0 || c.LineLengthStep <= 0 {
		return eeg.ConfigError("line length window and step must be positive, got %d/%d", c.LineLengthWindow, c.LineLengthStep)
	}
	if len(c.Quantiles) == 0 {
		return eeg.ConfigError("at least one spectral quantile is required")
	}
	for _, q := range c.Quantiles {
		if q < 0 || q > 1 {
			return eeg.ConfigError("spectral quantile %v outside [0,1]", q)
		}
	}
	if c.WelchSegment < 2 {
		return eeg.ConfigError("welch segment must be at least 2 samples, got %d", c.WelchSegment)
	}
	if c.EntropyBins < 1 || c.BlockEntropyBins < 1 || c.BlockOrder < 1 {
		return eeg.ConfigError("entropy bins and block order must be positive")
	}
	if c.Workers < 0 {
		return eeg.ConfigError("workers must not be negative, got %d", c.Workers)
	}
	return c.Suppression.Validate()
}

// Vector is the feature set of one window.
type Vector struct {
	Time float64 `json:"time"` // right edge of the window, seconds

	BandPower   [4]float64 `json:"band_power"`  // delta, alpha, beta, gamma
	Proportions [4]float64 `json:"proportions"` // BandPower / sum, sums to 1

	Suppression     float64 `json:"suppression"` // alpha + 2*IES fraction
	IESFraction     float64 `json:"ies_fraction"`
	AlphaFraction   float64 `json:"alpha_fraction"`
	ShallowFraction float64 `json:"shallow_fraction"`

	Entropy      float64 `json:"entropy"`
	BlockEntropy float64 `json:"block_entropy"`
	LineLength   float64 `json:"line_length"`

	Quantiles             []float64 `json:"quantiles"`
	DominantFrequency     float64   `json:"dominant_frequency"`
	ZeroCrossingFrequency float64   `json:"zero_crossing_frequency"`
}

// Result holds window-aligned features plus the line length series, which
// runs on its own finer window.
type Result struct {
	Times   []float64
	Vectors []Vector

	LineLengthTimes []float64
	LineLength      []float64
}

// Len returns the number of feature windows.
func (r Result) Len() int { return len(r.Vectors) }

// Scores returns the suppression score of every window.
func (r Result) Scores() []float64 {
	out := make([]float64, len(r.Vectors))
	for i, v := range r.Vectors {
		out[i] = v.Suppression
	}
	return out
}

// Extractor computes feature vectors for signals sampled at one rate.
type Extractor struct {
	cfg      Config
	rate     float64
	bank     *filters.Bank
	detector *suppression.Detector
	logger   *slog.Logger
}

// NewExtractor validates cfg for signals sampled at rate Hz.
func NewExtractor(cfg Config, rate float64, logger *slog.Logger) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	bank, err := filters.NewBank(rate, filters.DefaultOrder)
	if err != nil {
		return nil, err
	}
	det, err := suppression.NewDetector(cfg.Suppression, rate, logger)
	if err != nil {
		return nil, err
	}
	return &Extractor{cfg: cfg, rate: rate, bank: bank, detector: det, logger: logger}, nil
}

// Starts returns the start index of every full window of size ws at the
// given stride over n samples. The trailing remainder is dropped.
func Starts(n, ws, step int) []int {
	var out []int
	for s := 0; s+ws <= n; s += step {
		out = append(out, s)
	}
	return out
}

// Extract computes the features of every full window of y. A signal
// shorter than one window yields an empty Result and no error.
func (e *Extractor) Extract(ctx context.Context, y []float64) (Result, error) {
	var res Result

	// 1. line length on its own window
	for _, s := range Starts(len(y), e.cfg.LineLengthWindow, e.cfg.LineLengthStep) {
		res.LineLengthTimes = append(res.LineLengthTimes, float64(s+e.cfg.LineLengthWindow)/e.rate)
		res.LineLength = append(res.LineLength, LineLength(y[s:s+e.cfg.LineLengthWindow]))
	}

	starts := Starts(len(y), e.cfg.Window, e.cfg.Step)
	if len(starts) == 0 {
		return res, nil
	}

	// 2. filter bank over the whole signal, once
	bands, err := e.bank.Apply(y, filters.FeatureBands())
	if err != nil {
		return Result{}, fmt.Errorf("feature bands: %w", err)
	}
	for _, b := range bands {
		for i, v := range b {
			b[i] = v * v
		}
	}

	// 3. per-window work on a bounded pool, results written by index
	res.Vectors = make([]Vector, len(starts))
	res.Times = make([]float64, len(starts))

	workers := e.cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(starts) {
		workers = len(starts)
	}

	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					continue
				}
				v, err := e.window(y, bands, starts[idx])
				if err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("window %d: %w", idx, err)
						cancel()
					})
					continue
				}
				res.Vectors[idx] = v
				res.Times[idx] = v.Time
			}
		}()
	}

feed:
	for idx := range starts {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return Result{}, firstErr
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	e.logger.Debug("features extracted",
		slog.Int("windows", len(starts)),
		slog.Int("line_length_windows", len(res.LineLength)),
		slog.Int("workers", workers))
	return res, nil
}

// window computes the vector of the window starting at s. bands holds the
// squared band signals of the whole recording.
func (e *Extractor) window(y []float64, bands [][]float64, s int) (Vector, error) {
	ws := e.cfg.Window
	x := y[s : s+ws]
	v := Vector{Time: float64(s+ws) / e.rate}

	// 1. band powers and proportions
	for i, b := range bands {
		v.BandPower[i] = stats.Median(b[s : s+ws])
	}
	v.Proportions = Proportions(v.BandPower)

	// 2. suppression on the raw window
	sup, err := e.detector.Detect(x)
	if err != nil {
		return Vector{}, fmt.Errorf("suppression: %w", err)
	}
	v.IESFraction = sup.IESFraction
	v.AlphaFraction = sup.AlphaFraction
	v.ShallowFraction = sup.ShallowFraction
	v.Suppression = sup.Score()

	// 3. regularity
	v.Entropy = Entropy(x, e.cfg.EntropyBins)
	v.BlockEntropy = BlockEntropy(x, e.cfg.BlockEntropyBins, e.cfg.BlockOrder)
	v.LineLength = LineLength(x)
	v.ZeroCrossingFrequency = ZeroCrossingFrequency(x, e.rate)

	// 4. spectrum
	psd, err := spectral.Welch(x, e.rate, e.cfg.WelchSegment)
	if err != nil {
		return Vector{}, fmt.Errorf("welch: %w", err)
	}
	v.Quantiles = psd.Quantiles(e.cfg.Quantiles)
	v.DominantFrequency, _ = psd.DominantFrequency(filters.Delta.Low, filters.Gamma.High)
	return v, nil
}
