package brainstate

import (
	"fmt"
	"os"

	"brainstate/artifacts"
	"brainstate/eeg"
	"brainstate/features"

	"gopkg.in/yaml.v3"
)

// Config gathers every tunable of the pipeline. Window sizes inside the
// sections are in samples, so a Config is bound to one sampling rate.
type Config struct {
	// Rate is the sampling rate (Hz) the sample counts below were computed for.
	Rate float64 `yaml:"rate"`

	// --- artifact detection ---
	// wavelet CDF slope test on short windows, run before feature extraction
	Artifacts artifacts.Config `yaml:"artifacts"`

	// --- features ---
	// sliding windows, suppression detection, spectral and regularity measures
	Features features.Config `yaml:"features"`

	// --- pipeline ---
	Pipeline struct {
		DetectArtifacts  bool `yaml:"detect_artifacts"`  // run the artifact detector
		CorrectArtifacts bool `yaml:"correct_artifacts"` // hand flagged spans to the corrector
	} `yaml:"pipeline"`

	// --- logging ---
	Log struct {
		Level  string `yaml:"level"`  // debug, info, warn or error
		Source bool   `yaml:"source"` // add file:line to every record
	} `yaml:"log"`
}

// DefaultConfig returns the settings used for anesthesia recordings at
// rate Hz (usually 128).
func DefaultConfig(rate float64) *Config {
	cfg := &Config{Rate: rate}

	// --- artifact detection ---
	cfg.Artifacts = artifacts.DefaultConfig(rate) // 2 s windows every 1 s

	// --- features ---
	cfg.Features = features.DefaultConfig(rate) // 30 s windows every 10 s

	// --- pipeline ---
	cfg.Pipeline.DetectArtifacts = true
	cfg.Pipeline.CorrectArtifacts = true

	// --- logging ---
	cfg.Log.Level = "info"

	return cfg
}

// LoadConfig overlays the YAML file at path onto DefaultConfig(rate).
// Fields missing from the file keep their defaults.
func LoadConfig(path string, rate float64) (*Config, error) {
	cfg := DefaultConfig(rate)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Rate <= 0 {
		return eeg.ConfigError("sampling rate must be positive, got %v", c.Rate)
	}
	if c.Pipeline.DetectArtifacts {
		if err := c.Artifacts.Validate(); err != nil {
			return fmt.Errorf("artifacts: %w", err)
		}
	}
	if err := c.Features.Validate(); err != nil {
		return fmt.Errorf("features: %w", err)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
