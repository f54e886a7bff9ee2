// Package state maps a window's suppression score and band power
// proportions to one of the discrete brain states 0..21.
//
// Classification is two-stage: a Family is selected first, checking
// suppression before spectral shape, then a per-family threshold ladder
// picks the state. Every comparison is an exact literal.
package state

import (
	"fmt"
	"math"
)

// State is a discrete brain state. Lower is deeper.
type State int

// Range of valid states.
const (
	MinState State = 0
	MaxState State = 21
)

// Valid reports whether s is inside [MinState, MaxState].
func (s State) Valid() bool {
	return s >= MinState && s <= MaxState
}

// Family is the first-stage decision.
type Family int

const (
	Deep    Family = iota // frequent IES or much alpha suppression
	Light                 // rare IES or redundant alpha suppression
	Ok                    // mid depth
	Shallow               // beta takes over delta
	Awake                 // high frequency dominated
)

var familyNames = [...]string{"deep", "light", "ok", "shallow", "awake"}

func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return fmt.Sprintf("Family(%d)", int(f))
	}
	return familyNames[f]
}

// Proportions are the relative delta, alpha, beta and gamma powers of a
// window.
type Proportions [4]float64

func (p Proportions) Delta() float64 { return p[0] }
func (p Proportions) Alpha() float64 { return p[1] }
func (p Proportions) Beta() float64  { return p[2] }
func (p Proportions) Gamma() float64 { return p[3] }

// HF is the high-frequency share, beta plus gamma.
func (p Proportions) HF() float64 { return p[2] + p[3] }

// betaOverDelta is +Inf for beta > 0 without delta and NaN for 0/0, which
// fails every >= comparison.
func (p Proportions) betaOverDelta() float64 {
	if p.Delta() == 0 {
		if p.Beta() > 0 {
			return math.Inf(1)
		}
		return math.NaN()
	}
	return p.Beta() / p.Delta()
}

// SelectFamily is the first stage.
func SelectFamily(score float64, p Proportions) Family {
	hf, gamma := p.HF(), p.Gamma()
	switch {
	case score > 0.4:
		return Deep
	case score > 0.07:
		return Light
	case hf >= 0.6 || gamma >= 0.1:
		return Awake
	case (hf >= 0.15 && p.betaOverDelta() >= 0.5) || gamma >= 0.05:
		return Shallow
	default:
		return Ok
	}
}

// Refine is the second stage: the ladder of family f.
func Refine(f Family, score float64, p Proportions) State {
	switch f {
	case Deep:
		return deep(score)
	case Light:
		return light(score)
	case Awake:
		return awake(p)
	case Shallow:
		return shallow(p)
	default:
		return ok(p)
	}
}

// Classify returns the state of one window. It is a pure function.
func Classify(score float64, p Proportions) State {
	return Refine(SelectFamily(score, p), score, p)
}

// ClassifyAll classifies aligned score and proportion series. Extra
// entries of the longer series are ignored.
func ClassifyAll(scores []float64, props []Proportions) []State {
	n := len(scores)
	if len(props) < n {
		n = len(props)
	}
	out := make([]State, n)
	for i := 0; i < n; i++ {
		out[i] = Classify(scores[i], props[i])
	}
	return out
}

func deep(score float64) State {
	switch {
	case score > 1.5:
		return 0
	case score > 1:
		return 1
	case score > 0.75:
		return 2
	default:
		return 3
	}
}

func light(score float64) State {
	switch {
	case score > 0.25:
		return 4
	case score > 0.15:
		return 5
	case score > 0.10:
		return 6
	default:
		return 7
	}
}

func awake(p Proportions) State {
	hf, gamma := p.HF(), p.Gamma()
	switch {
	case hf >= 0.8 || gamma >= 0.7:
		return 19
	case hf >= 0.70 || gamma >= 0.025:
		return 18
	default:
		return 1
	}
}

func shallow(p Proportions) State {
	hf, gamma := p.HF(), p.Gamma()
	switch {
	case hf >= 0.5 || gamma >= 0.092:
		return 16
	case hf >= 0.40 || gamma >= 0.086:
		return 15
	case hf >= 0.31 || gamma >= 0.07:
		return 14
	case hf >= 0.22 || gamma >= 0.06:
		return 13
	default:
		return 12
	}
}

// ok is the only ladder with an alpha tie-break.
func ok(p Proportions) State {
	delta := p.Delta()
	switch {
	case delta >= 0.9:
		return 6
	case delta >= 0.75:
		if p.Alpha() >= 0.3 {
			return 8
		}
		return 7
	case delta >= 0.6:
		return 8
	case delta >= 0.5:
		return 9
	case delta >= 0.25:
		return 10
	case delta >= 0.15:
		return 11
	default:
		return 12
	}
}
