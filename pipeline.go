// Package brainstate estimates the depth of anesthesia from a single EEG
// channel. A Pipeline flags and repairs transient artifacts, slides
// feature windows over the repaired signal and maps every window to one
// of the discrete states 0..21.
package brainstate

import (
	"context"
	"fmt"
	"log/slog"

	"brainstate/annotation"
	"brainstate/artifacts"
	"brainstate/eeg"
	"brainstate/features"
	"brainstate/report"
	"brainstate/state"
)

// Pipeline runs the whole analysis on in-memory recordings.
type Pipeline struct {
	cfg       *Config
	corrector artifacts.Corrector
	recorder  report.Recorder
	logger    *slog.Logger
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithCorrector replaces the default straight-line corrector.
func WithCorrector(c artifacts.Corrector) Option {
	return func(p *Pipeline) { p.corrector = c }
}

// WithRecorder receives one row per classified window.
func WithRecorder(r report.Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithLogger sets the logger; slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline validates cfg.
func NewPipeline(cfg *Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, eeg.ConfigError("nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:       cfg,
		corrector: artifacts.Interpolator{},
		recorder:  report.NoOp{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Result holds every stage's output. Features.Vectors, Features.Times
// and States are aligned index for index.
type Result struct {
	Signal    eeg.Signal
	Artifacts artifacts.Result
	// Corrected is the signal features were computed on. It is the input
	// itself when nothing was flagged or correction failed.
	Corrected []float64
	// CorrectionApplied is false when the corrector was skipped or failed.
	CorrectionApplied bool
	Features          features.Result
	States            []state.State
}

// Record builds the annotation record of the run. Reviewer states start
// equal to the classifier's.
func (r *Result) Record(name string) *annotation.Record {
	return annotation.NewRecord(name, r.Signal.Rate, r.Features.Times, r.States)
}

// Run analyses sig.
func (p *Pipeline) Run(ctx context.Context, sig eeg.Signal) (*Result, error) {
	// 1. validate
	if sig.Rate != p.cfg.Rate {
		return nil, eeg.ConfigError("signal sampled at %v Hz, configuration built for %v Hz", sig.Rate, p.cfg.Rate)
	}
	res := &Result{Signal: sig, Corrected: sig.Samples}
	log := p.logger.With(slog.Int("samples", sig.Len()), slog.Float64("rate", sig.Rate))

	// 2. artifacts
	if p.cfg.Pipeline.DetectArtifacts {
		det, err := artifacts.NewDetector(p.cfg.Artifacts, p.logger)
		if err != nil {
			return nil, err
		}
		res.Artifacts, err = det.Detect(sig.Samples)
		if err != nil {
			return nil, fmt.Errorf("artifacts: %w", err)
		}
	}

	// 3. correction, falling back to the raw signal
	if p.cfg.Pipeline.CorrectArtifacts && len(res.Artifacts.Intervals) > 0 {
		corrected, err := p.corrector.Correct(sig.Samples, res.Artifacts.Intervals)
		switch {
		case err != nil:
			log.Warn("artifact correction failed, using raw signal", slog.Any("error", err))
		case len(corrected) != sig.Len():
			log.Warn("artifact correction changed the signal length, using raw signal",
				slog.Int("corrected", len(corrected)))
		default:
			res.Corrected = corrected
			res.CorrectionApplied = true
		}
	}

	// 4. features
	ext, err := features.NewExtractor(p.cfg.Features, sig.Rate, p.logger)
	if err != nil {
		return nil, err
	}
	res.Features, err = ext.Extract(ctx, res.Corrected)
	if err != nil {
		return nil, fmt.Errorf("features: %w", err)
	}

	// 5. states
	props := make([]state.Proportions, res.Features.Len())
	for i, v := range res.Features.Vectors {
		props[i] = state.Proportions(v.Proportions)
	}
	res.States = state.ClassifyAll(res.Features.Scores(), props)

	for i, v := range res.Features.Vectors {
		if err := p.recorder.Record(v, res.States[i]); err != nil {
			return nil, fmt.Errorf("record window %d: %w", i, err)
		}
	}

	log.Info("recording analysed",
		slog.Int("artifact_spans", len(res.Artifacts.Intervals)),
		slog.Bool("corrected", res.CorrectionApplied),
		slog.Int("windows", res.Features.Len()))
	return res, nil
}
