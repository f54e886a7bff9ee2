package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"brainstate"
	"brainstate/eeg"
	"brainstate/state"
	"brainstate/synth"
)

const sampleRate = 128.0

// ============================================================================
// 1. Scenarios
// ============================================================================

// Scenario is a synthetic recording with the family every window should
// fall into.
type Scenario struct {
	Name    string
	Build   func(g *synth.Generator) *synth.Generator
	Effects synth.Effects
	Want    state.Family
}

func scenarios() []Scenario {
	return []Scenario{
		{
			Name:  "awake (broadband noise)",
			Build: func(g *synth.Generator) *synth.Generator { return g.Noise(90, 20) },
			Want:  state.Awake,
		},
		{
			Name: "ok (delta + alpha)",
			Build: func(g *synth.Generator) *synth.Generator {
				return g.Rhythms(90, 3, synth.SlowDelta, synth.FrontAlpha)
			},
			Want: state.Ok,
		},
		{
			Name: "ok, mains + drift",
			Build: func(g *synth.Generator) *synth.Generator {
				return g.Rhythms(90, 3, synth.SlowDelta, synth.FrontAlpha)
			},
			Effects: synth.Effects{LineFreq: 50, LineAmp: 5, DriftRate: 0.05, DriftDepth: 30},
			Want:    state.Ok,
		},
		{
			Name: "shallow (beta rich)",
			Build: func(g *synth.Generator) *synth.Generator {
				return g.Rhythms(90, 2, synth.Rhythm{Freq: 2, Amp: 10}, synth.Rhythm{Freq: 20, Amp: 12}, synth.LowBeta)
			},
			Want: state.Shallow,
		},
		{
			Name:  "burst suppression",
			Build: func(g *synth.Generator) *synth.Generator { return g.BurstSuppression(90, 1, 4, 30) },
			Want:  state.Deep,
		},
		{
			Name:    "isoelectric",
			Build:   func(g *synth.Generator) *synth.Generator { return g.Silence(90) },
			Effects: synth.Effects{NoiseSigma: 0.3},
			Want:    state.Deep,
		},
	}
}

// ============================================================================
// 2. Scoring
// ============================================================================

// familyAccuracy is the share of windows whose family is want, in percent.
func familyAccuracy(res *brainstate.Result, want state.Family) float64 {
	n := res.Features.Len()
	if n == 0 {
		return 0
	}
	hits := 0
	for _, v := range res.Features.Vectors {
		if state.SelectFamily(v.Suppression, state.Proportions(v.Proportions)) == want {
			hits++
		}
	}
	return 100 * float64(hits) / float64(n)
}

func meanScore(res *brainstate.Result) float64 {
	scores := res.Features.Scores()
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// ============================================================================
// 3. Harness
// ============================================================================

func RunBenchmark(p *brainstate.Pipeline) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tWANT\tWINDOWS\tARTIFACTS\tSUPP\tSTATES\tACC(%)\tTIME(ms)\tSTATUS")
	fmt.Fprintln(w, "--------\t----\t-------\t---------\t----\t------\t------\t--------\t------")

	for i, sc := range scenarios() {
		// 1. synthesise
		clean := sc.Build(synth.NewGenerator(sampleRate, int64(i+1))).Samples()

		// 2. recording chain
		noisy := synth.ApplyEffects(clean, sampleRate, sc.Effects, int64(100+i))
		sig, err := eeg.NewSignal(noisy, sampleRate)
		if err != nil {
			return err
		}

		// 3. run
		start := time.Now()
		res, err := p.Run(context.Background(), sig)
		if err != nil {
			return fmt.Errorf("%s: %w", sc.Name, err)
		}
		elapsed := time.Since(start)

		// 4. score
		acc := familyAccuracy(res, sc.Want)
		status := "PASS"
		if acc < 80 {
			status = "FAIL"
		}

		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.3f\t%v\t%.0f\t%d\t%s\n",
			sc.Name, sc.Want, res.Features.Len(), len(res.Artifacts.Intervals),
			meanScore(res), res.States, acc, elapsed.Milliseconds(), status)
	}
	return w.Flush()
}

// ============================================================================
// Main Entry
// ============================================================================

func main() {
	fmt.Println("Starting brain state benchmark suite...")
	fmt.Println("========================================")

	logger := brainstate.NewLogger(os.Stderr, slog.LevelWarn, false)
	p, err := brainstate.NewPipeline(brainstate.DefaultConfig(sampleRate), brainstate.WithLogger(logger))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := RunBenchmark(p); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("\nBenchmark complete.")
}
