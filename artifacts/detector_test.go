package artifacts

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"brainstate/eeg"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 128.0

// cleanEEG is a smooth low-amplitude mixture of slow rhythms plus a little noise.
func cleanEEG(seconds float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	n := int(seconds * testRate)
	y := make([]float64, n)
	for i := range y {
		t := float64(i) / testRate
		y[i] = 15*math.Sin(2*math.Pi*2*t) +
			8*math.Sin(2*math.Pi*6.5*t+0.3) +
			5*math.Sin(2*math.Pi*10*t+1.1) +
			0.5*rng.NormFloat64()
	}
	return y
}

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	d, err := NewDetector(DefaultConfig(testRate), nil)
	require.NoError(t, err)
	return d
}

func TestCleanSignalHasNoArtifacts(t *testing.T) {
	d := newTestDetector(t)

	res, err := d.Detect(cleanEEG(30, 1))
	require.NoError(t, err)

	assert.Empty(t, res.Intervals)
	assert.Equal(t, 0, eeg.Count(eeg.Invert(res.Mask)))
}

func TestSpikeIsDetected(t *testing.T) {
	d := newTestDetector(t)

	y := cleanEEG(30, 2)
	spike := eeg.Interval{Start: 10 * 128, End: 11 * 128}
	for i := spike.Start; i < spike.End; i++ {
		tt := float64(i-spike.Start) / testRate
		y[i] += 2000 * math.Sin(math.Pi*tt)
	}

	res, err := d.Detect(y)
	require.NoError(t, err)
	require.NotEmpty(t, res.Intervals)

	covered := false
	for _, iv := range res.Intervals {
		if iv.Start <= spike.Start && iv.End >= spike.End {
			covered = true
		}
	}
	assert.True(t, covered, "spike %v not covered by %v", spike, res.Intervals)

	for i := spike.Start; i < spike.End; i++ {
		require.False(t, res.Mask[i])
	}
	assertSortedDisjoint(t, res.Intervals)
}

func TestTrailingPartialWindow(t *testing.T) {
	cfg := DefaultConfig(testRate)
	d, err := NewDetector(cfg, nil)
	require.NoError(t, err)

	// 10.5 s: full windows start at 0..8 s, then one partial window at 9 s
	y := cleanEEG(10.5, 3)
	res, err := d.Detect(y)
	require.NoError(t, err)

	last := res.Windows[len(res.Windows)-1]
	assert.Equal(t, eeg.Interval{Start: 9 * 128, End: len(y)}, last.Span)
	assert.Len(t, res.Windows, 10)

	// a spike in the tail is reported up to the signal end
	for i := len(y) - 40; i < len(y); i++ {
		y[i] = 5000
	}
	res, err = d.Detect(y)
	require.NoError(t, err)
	require.NotEmpty(t, res.Intervals)
	assert.Equal(t, len(y), res.Intervals[len(res.Intervals)-1].End)
}

func TestScanStopsWhenStepLandsOnEnd(t *testing.T) {
	d := newTestDetector(t)

	// 4 s exactly: windows at 0,1,2 s are full; 3 s is the partial tail
	res, err := d.Detect(cleanEEG(4, 4))
	require.NoError(t, err)
	assert.Len(t, res.Windows, 4)
	assert.Equal(t, 4*128, res.Windows[3].Span.End)
}

func TestMergeExample(t *testing.T) {
	got := Merge([]eeg.Interval{{Start: 100, End: 228}, {Start: 250, End: 378}}, 128)
	want := []eeg.Interval{{Start: 100, End: 378}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeKeepsDistantSpans(t *testing.T) {
	got := Merge([]eeg.Interval{
		{Start: 950, End: 1206},
		{Start: 2000, End: 2256},
		{Start: 0, End: 256},
		{Start: 128, End: 384},
		{Start: 600, End: 856},
	}, 128)
	want := []eeg.Interval{{Start: 0, End: 384}, {Start: 600, End: 1206}, {Start: 2000, End: 2256}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, Merge(nil, 128))
}

func TestCDFSlope(t *testing.T) {
	// |c| = {1, 1, 2, 3}: P(1) = 0.5, P(3) = 1 -> (1-0.5)/(3-1)
	slope, ok := CDFSlope([]float64{-1, 1, 2, -3})
	require.True(t, ok)
	assert.InDelta(t, 0.25, slope, 1e-12)

	// constant magnitudes: undefined, never an artifact
	_, ok = CDFSlope([]float64{2, -2, 2})
	assert.False(t, ok)
	_, ok = CDFSlope(nil)
	assert.False(t, ok)
}

func TestConstantSignalIsNotArtifact(t *testing.T) {
	d := newTestDetector(t)

	y := make([]float64, 5*128)
	for i := range y {
		y[i] = 7
	}
	res, err := d.Detect(y)
	require.NoError(t, err)
	assert.Empty(t, res.Intervals)
	for _, w := range res.Windows {
		assert.False(t, w.Artifact)
	}
}

func TestConfigValidation(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"window":  func(c *Config) { c.Window = 0 },
		"step":    func(c *Config) { c.Step = -1 },
		"level":   func(c *Config) { c.Level = 0 },
		"wavelet": func(c *Config) { c.Wavelet = "morlet" },
		"mode":    func(c *Config) { c.Mode = "reflect" },
	} {
		cfg := DefaultConfig(testRate)
		mutate(&cfg)
		_, err := NewDetector(cfg, nil)
		assert.True(t, errors.Is(err, eeg.ErrInvalidConfig), name)
	}
}

func TestInterpolator(t *testing.T) {
	y := []float64{0, 1, 100, 100, 100, 5, 6}
	out, err := Interpolator{}.Correct(y, []eeg.Interval{{Start: 2, End: 5}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1, 2, 3, 4, 5, 6}, out, 1e-12)
	assert.Equal(t, 100.0, y[2], "input must not be modified")

	out, err = Interpolator{}.Correct([]float64{9, 9, 1, 2}, []eeg.Interval{{Start: 0, End: 2}})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 2}, out)

	_, err = Interpolator{}.Correct(y, []eeg.Interval{{Start: 5, End: 50}})
	assert.Error(t, err)
}

func TestCorrectorFunc(t *testing.T) {
	var c Corrector = CorrectorFunc(func(s []float64, _ []eeg.Interval) ([]float64, error) {
		return s, nil
	})
	out, err := c.Correct([]float64{1}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, out)
}

func assertSortedDisjoint(t *testing.T, ivs []eeg.Interval) {
	t.Helper()
	for i := 1; i < len(ivs); i++ {
		assert.LessOrEqual(t, ivs[i-1].End, ivs[i].Start)
	}
}
