package suppression

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"brainstate/eeg"
	"brainstate/filters"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 128.0

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func whiteNoise(n int, sigma float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = sigma * rng.NormFloat64()
	}
	return out
}

func bools(s string) []bool {
	out := make([]bool, len(s))
	for i, c := range s {
		out[i] = c == '1'
	}
	return out
}

func TestThresholdsMostlySuppressed(t *testing.T) {
	th := ComputeThresholds(constant(100, 2), constant(100, 20), 12, 5)

	assert.Equal(t, MostlySuppressed, th.IESBranch)
	assert.InDelta(t, 6.0, th.IES, 1e-12)
	assert.Equal(t, Restricted, th.AlphaBranch)
	assert.InDelta(t, 3.0, th.Alpha, 1e-12)
	assert.InDelta(t, 2.25, th.Beta, 1e-12)

	// the mostly suppressed branch is capped at 10, not at T_IES_max
	th = ComputeThresholds(constant(100, 7), constant(100, 1), 2, 5)
	assert.InDelta(t, 10.0, th.IES, 1e-12)
}

func TestThresholdsRestrictedAndFullSet(t *testing.T) {
	th := ComputeThresholds(constant(100, 50), constant(100, 100), 12, 5)
	assert.Equal(t, Restricted, th.IESBranch)
	assert.InDelta(t, 6.0, th.IES, 1e-12)

	// nothing below 15*5: full set, capped by T_IES_max
	assert.Equal(t, FullSet, th.AlphaBranch)
	assert.InDelta(t, 12.0, th.Alpha, 1e-12)
	assert.InDelta(t, 9.0, th.Beta, 1e-12)

	// nothing below 12*12: full set, capped
	th = ComputeThresholds(constant(100, 1000), constant(100, 20), 12, 5)
	assert.Equal(t, FullSet, th.IESBranch)
	assert.InDelta(t, 12.0, th.IES, 1e-12)

	// outliers are excluded from the restricted percentile
	broad := append(constant(90, 40), constant(10, 5000)...)
	th = ComputeThresholds(broad, constant(100, 20), 12, 5)
	assert.Equal(t, Restricted, th.IESBranch)
	assert.InDelta(t, 40*0.12, th.IES, 1e-12)
}

func TestThresholdsFlatWindow(t *testing.T) {
	th := ComputeThresholds(constant(10, 0), constant(10, 0), 12, 5)
	assert.Equal(t, MostlySuppressed, th.IESBranch)
	assert.Greater(t, th.IES, 0.0)
	assert.Zero(t, th.Alpha)
}

func TestErodeDilateOddFootprint(t *testing.T) {
	assert.Equal(t, bools("00100"), Erode(bools("01110"), 3))
	assert.Equal(t, bools("01110"), Dilate(bools("00100"), 3))

	// outside samples count as false for erosion
	assert.Equal(t, bools("0110"), Erode(bools("1111"), 3))
	assert.Equal(t, bools("1100"), Dilate(bools("1000"), 3))

	assert.Equal(t, bools("101"), Erode(bools("101"), 1))
}

func TestOpeningRestoresLongRuns(t *testing.T) {
	for _, size := range []int{2, 3, 4, 7, 8} {
		mask := make([]bool, 60)
		for i := 10; i < 25; i++ {
			mask[i] = true
		}
		// a run shorter than size disappears
		for i := 40; i < 40+size-1; i++ {
			mask[i] = true
		}

		got := Dilate(Erode(mask, size), size)
		want := eeg.Mask(60, []eeg.Interval{{Start: 10, End: 25}})
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("size %d (-want +got):\n%s", size, diff)
		}
	}
}

func TestErosionDilationRemovesFlickerAndBridgesGaps(t *testing.T) {
	mask := make([]bool, 2000)
	set := func(a, b int) {
		for i := a; i < b; i++ {
			mask[i] = true
		}
	}
	set(200, 328) // 1 s
	set(366, 494) // 1 s after a 0.3 s gap
	set(1000, 1025)

	got := eeg.Intervals(ErosionDilation(mask, 0.5, 0.5, testRate))
	require.Len(t, got, 1)
	assert.Equal(t, 200, got[0].Start)
	assert.InDelta(t, 494, got[0].End, 1)
}

func TestErosionDilationFullMask(t *testing.T) {
	n := 30 * 128
	got := ErosionDilation(constant01(n), 1.1, 0.9, testRate)
	// trimmed by the final erosion at both ends
	assert.Equal(t, n-2*57+1, eeg.Count(got))
	assert.False(t, got[0])
	assert.True(t, got[n/2])
}

func constant01(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}

func TestDetectFlatWindowIsIsoelectric(t *testing.T) {
	res, err := Detect(make([]float64, 30*128), testRate, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, MostlySuppressed, res.Thresholds.IESBranch)
	assert.Greater(t, res.IESFraction, 0.95)
	assert.Zero(t, res.AlphaFraction)
	assert.Greater(t, res.Score(), 1.5)
	require.Len(t, res.IESIntervals, 1)
	assert.Equal(t, eeg.Count(res.IESMask), res.IESIntervals[0].Len())

	// a flat line also looks like a ground fault
	assert.Equal(t, 1.0, eeg.Fraction(res.GroundMask))
}

func TestDetectNoiseIsNotSuppressed(t *testing.T) {
	res, err := Detect(whiteNoise(30*128, 20, 1), testRate, DefaultConfig())
	require.NoError(t, err)

	assert.NotEqual(t, MostlySuppressed, res.Thresholds.IESBranch)
	assert.InDelta(t, 12.0, res.Thresholds.IES, 1e-9)
	assert.Zero(t, res.IESFraction)
	assert.Less(t, res.AlphaFraction, 0.02)
	assert.Less(t, res.Score(), 0.07)
	assert.Zero(t, eeg.Count(res.GroundMask))
	assert.Len(t, res.Broadband, 30*128)
}

func TestDetectHalfSuppressedWindow(t *testing.T) {
	y := append(whiteNoise(15*128, 20, 2), make([]float64, 15*128)...)
	res, err := Detect(y, testRate, DefaultConfig())
	require.NoError(t, err)

	assert.InDelta(t, 0.5, res.IESFraction, 0.07)
	require.NotEmpty(t, res.IESIntervals)
	last := res.IESIntervals[len(res.IESIntervals)-1]
	assert.Greater(t, last.Start, 14*128)
	assert.Greater(t, res.Score(), 0.4)
}

// alphaDropout is 30 s of delta and alpha rhythms over band-limited noise,
// with the alpha rhythm switched off between 10 s and 15 s.
func alphaDropout(t *testing.T) []float64 {
	t.Helper()
	lp, err := filters.NewLowpass(4, testRate, 30)
	require.NoError(t, err)
	noise := lp.FiltFilt(whiteNoise(30*128, 3, 4))

	y := make([]float64, len(noise))
	for i := range y {
		tt := float64(i) / testRate
		y[i] = 10*math.Sin(2*math.Pi*3*tt) + noise[i]
		if tt < 10 || tt >= 15 {
			y[i] += 9 * math.Sin(2*math.Pi*10*tt)
		}
	}
	return y
}

func TestDetectAlphaSuppression(t *testing.T) {
	res, err := Detect(alphaDropout(t), testRate, DefaultConfig())
	require.NoError(t, err)

	assert.Zero(t, res.IESFraction)
	assert.InDelta(t, 5.0/30, res.AlphaFraction, 0.05)
	require.NotEmpty(t, res.AlphaIntervals)
	for _, iv := range res.AlphaIntervals {
		assert.GreaterOrEqual(t, iv.Start, int(9.5*128))
		assert.LessOrEqual(t, iv.End, int(15.5*128))
	}
}

func TestAlphaAndIESAreExclusive(t *testing.T) {
	windows := map[string][]float64{
		"flat":    make([]float64, 20*128),
		"noise":   whiteNoise(20*128, 20, 5),
		"quiet":   whiteNoise(20*128, 0.5, 6),
		"half":    append(whiteNoise(10*128, 20, 7), make([]float64, 10*128)...),
		"dropout": alphaDropout(t),
	}
	for name, y := range windows {
		res, err := Detect(y, testRate, DefaultConfig())
		require.NoError(t, err, name)
		require.Len(t, res.AlphaMask, len(y), name)
		require.Len(t, res.IESMask, len(y), name)
		for i := range y {
			if res.AlphaMask[i] && res.IESMask[i] {
				t.Fatalf("%s: alpha and IES both set at %d", name, i)
			}
		}
		assert.Len(t, res.GatedIESMask(), len(y), name)
	}
}

func TestGatedIESMaskIsSubsetOfAlphaCondition(t *testing.T) {
	res, err := Detect(whiteNoise(20*128, 0.5, 8), testRate, DefaultConfig())
	require.NoError(t, err)

	gated := res.GatedIESMask()
	for i, g := range gated {
		if g {
			require.True(t, res.rawAlpha[i])
			require.Less(t, res.Broadband[i], res.Thresholds.IES)
		}
	}
}

func TestDetectEmptyAndBadConfig(t *testing.T) {
	res, err := Detect(nil, testRate, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, res.IESMask)

	cfg := DefaultConfig()
	cfg.IESMax = 0
	_, err = Detect(make([]float64, 10), testRate, cfg)
	assert.True(t, errors.Is(err, eeg.ErrInvalidConfig))

	_, err = Detect(make([]float64, 10), 0, DefaultConfig())
	assert.True(t, errors.Is(err, eeg.ErrInvalidConfig))
}

func TestGroundCheckProjectsColumns(t *testing.T) {
	g := DefaultGroundCheck()

	// noise, then a flat second: only the flat part is flagged
	y := append(whiteNoise(10*128, 20, 9), make([]float64, 5*128)...)
	mask, err := g.Mask(y, testRate)
	require.NoError(t, err)
	require.Len(t, mask, len(y))

	assert.False(t, mask[2*128])
	assert.True(t, mask[len(y)-1])
	assert.True(t, mask[12*128])

	short, err := g.Mask(make([]float64, 50), testRate)
	require.NoError(t, err)
	assert.Equal(t, make([]bool, 50), short)
}
