package filters

import (
	"errors"
	"math"
	"testing"

	"brainstate/eeg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 128.0

func generateSineWave(freq, durationSec, sampleRate float64) []float64 {
	samples := int(durationSec * sampleRate)
	data := make([]float64, samples)
	for i := 0; i < samples; i++ {
		t := float64(i) / sampleRate
		data[i] = math.Sin(2 * math.Pi * freq * t)
	}
	return data
}

// rms over the central part of x, away from edge effects
func centralRMS(x []float64) float64 {
	lo, hi := len(x)/4, 3*len(x)/4
	sum := 0.0
	for _, v := range x[lo:hi] {
		sum += v * v
	}
	return math.Sqrt(sum / float64(hi-lo))
}

func TestBandpassPassesInBand(t *testing.T) {
	f, err := NewBandpass(DefaultOrder, testRate, 7, 14)
	require.NoError(t, err)

	in := generateSineWave(10, 20, testRate)
	out := f.FiltFilt(in)
	require.Len(t, out, len(in))

	// both skirts cost a little at 10 Hz, squared by the two passes
	ratio := centralRMS(out) / centralRMS(in)
	assert.Greater(t, ratio, 0.8)
	assert.LessOrEqual(t, ratio, 1.0)
}

func TestBandpassRejectsOutOfBand(t *testing.T) {
	f, err := NewBandpass(DefaultOrder, testRate, 7, 14)
	require.NoError(t, err)

	for _, freq := range []float64{1, 40} {
		in := generateSineWave(freq, 20, testRate)
		out := f.FiltFilt(in)
		ratio := centralRMS(out) / centralRMS(in)
		if ratio > 0.05 {
			t.Errorf("%v Hz should be attenuated, got ratio %v", freq, ratio)
		}
	}
}

func TestLowpassKeepsConstant(t *testing.T) {
	f, err := NewLowpass(DefaultOrder, testRate, 30)
	require.NoError(t, err)

	in := make([]float64, 500)
	for i := range in {
		in[i] = 3.5
	}
	for _, v := range f.FiltFilt(in) {
		assert.InDelta(t, 3.5, v, 1e-6)
	}
}

func TestHighpassRemovesConstant(t *testing.T) {
	f, err := NewHighpass(DefaultOrder, testRate, 1.5)
	require.NoError(t, err)

	in := make([]float64, 500)
	for i := range in {
		in[i] = -2
	}
	for _, v := range f.FiltFilt(in) {
		assert.InDelta(t, 0, v, 1e-6)
	}
}

func TestFiltFiltZeroInput(t *testing.T) {
	f, err := NewBandpass(DefaultOrder, testRate, 0.1, 4)
	require.NoError(t, err)

	for _, v := range f.FiltFilt(make([]float64, 300)) {
		assert.Zero(t, v)
	}
	assert.Empty(t, f.FiltFilt(nil))
	assert.Len(t, f.FiltFilt([]float64{1, 2, 3}), 3)
}

func TestDesignRejectsBadConfig(t *testing.T) {
	_, err := NewLowpass(3, testRate, 10)
	assert.True(t, errors.Is(err, eeg.ErrInvalidConfig))

	_, err = NewHighpass(4, 0, 10)
	assert.True(t, errors.Is(err, eeg.ErrInvalidConfig))

	_, err = NewBandpass(4, testRate, 14, 7)
	assert.True(t, errors.Is(err, eeg.ErrInvalidConfig))

	_, err = NewBank(testRate, 0)
	assert.True(t, errors.Is(err, eeg.ErrInvalidConfig))
}

func TestCutoffClampedBelowNyquist(t *testing.T) {
	f, err := NewLowpass(DefaultOrder, testRate, 100)
	require.NoError(t, err)
	assert.Equal(t, DefaultOrder, f.Order())

	for _, v := range f.Filter(generateSineWave(5, 2, testRate)) {
		assert.False(t, math.IsNaN(v))
	}
}

func TestBankApply(t *testing.T) {
	bank, err := NewBank(testRate, DefaultOrder)
	require.NoError(t, err)

	in := generateSineWave(10, 20, testRate)
	out, err := bank.Apply(in, FeatureBands())
	require.NoError(t, err)
	require.Len(t, out, 4)

	// a 10 Hz tone lives in the alpha band
	alpha := centralRMS(out[1])
	for i, band := range out {
		if i == 1 {
			continue
		}
		assert.Less(t, centralRMS(band), alpha/10, "band %d", i)
	}

	p, err := bank.Power(in, Alpha)
	require.NoError(t, err)
	mean := 0.0
	for _, v := range p[len(p)/4 : 3*len(p)/4] {
		mean += v
	}
	mean /= float64(len(p) / 2)
	assert.InDelta(t, 0.45, mean, 0.1)
}

func TestMovingAverageSame(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}

	assert.InDeltaSlice(t, []float64{1, 2, 3, 4, 3}, MovingAverage(x, 3), 1e-12)
	assert.InDeltaSlice(t, []float64{0.75, 1.5, 2.5, 3.5, 3}, MovingAverage(x, 4), 1e-12)
	assert.Equal(t, x, MovingAverage(x, 1))
	assert.InDeltaSlice(t, []float64{5.0 / 3, 14.0 / 3, 29.0 / 3, 50.0 / 3, 41.0 / 3}, SmoothedPower(x, 3), 1e-12)
}
