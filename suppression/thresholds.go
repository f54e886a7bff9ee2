package suppression

import (
	"math"

	"brainstate/internal/stats"
)

// Branch records which rule produced an adaptive threshold.
type Branch int

const (
	// MostlySuppressed: the 75th percentile of broadband power is already
	// low, the window is treated as mostly isoelectric.
	MostlySuppressed Branch = iota
	// Restricted: percentile taken over samples below the outlier limit.
	Restricted
	// FullSet: no sample was below the outlier limit, percentile taken
	// over the whole window.
	FullSet
)

func (b Branch) String() string {
	switch b {
	case MostlySuppressed:
		return "mostly-suppressed"
	case Restricted:
		return "restricted"
	case FullSet:
		return "full-set"
	}
	return "unknown"
}

const (
	suppressedQuantile = 0.75
	suppressedLevel    = 8.0  // q75 at or below this means mostly suppressed
	suppressedCeiling  = 10.0 // T_IES ceiling in the mostly suppressed branch
	suppressedGain     = 3.0

	thresholdQuantile  = 0.90
	iesOutlierFactor   = 12.0
	iesGain            = 0.12
	alphaOutlierFactor = 15.0
	alphaGain          = 0.15
	betaGain           = 0.75

	// isoelectricFloor replaces a zero T_IES so that an exactly flat
	// window still reads as isoelectric.
	isoelectricFloor = 1e-9
)

// Thresholds are the adaptive limits derived from one window's own power.
// They are never shared between windows.
type Thresholds struct {
	IES         float64
	Alpha       float64
	Beta        float64
	IESBranch   Branch
	AlphaBranch Branch
}

// ComputeThresholds derives T_IES, T_alpha and T_beta from the smoothed
// broadband and alpha power of a window.
func ComputeThresholds(broadband, alpha []float64, iesMax, alphaMax float64) Thresholds {
	var t Thresholds

	// 1. isoelectric threshold
	if q := stats.Quantile(broadband, suppressedQuantile); q <= suppressedLevel {
		t.IES = math.Min(suppressedCeiling, suppressedGain*q)
		t.IESBranch = MostlySuppressed
	} else {
		t.IES, t.IESBranch = restrictedQuantile(broadband, iesMax*iesOutlierFactor, iesGain)
		t.IES = math.Min(t.IES, iesMax)
	}
	if t.IES <= 0 {
		t.IES = isoelectricFloor
	}

	// 2. alpha and beta thresholds; the cap is the IES cap
	t.Alpha, t.AlphaBranch = restrictedQuantile(alpha, alphaMax*alphaOutlierFactor, alphaGain)
	t.Alpha = math.Min(t.Alpha, iesMax)
	t.Beta = betaGain * t.Alpha
	return t
}

// restrictedQuantile returns gain * q90 of the samples below limit, or of
// all samples when none is below limit.
func restrictedQuantile(power []float64, limit, gain float64) (float64, Branch) {
	if below := stats.Below(power, limit); len(below) > 0 {
		return stats.Quantile(below, thresholdQuantile) * gain, Restricted
	}
	return stats.Quantile(power, thresholdQuantile) * gain, FullSet
}
