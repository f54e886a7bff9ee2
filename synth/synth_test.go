package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorSegments(t *testing.T) {
	g := NewGenerator(128, 1).Noise(2, 20).Silence(1).Rhythms(1, 0, Rhythm{Freq: 4, Amp: 3})
	x := g.Samples()

	require.Len(t, x, 4*128)
	assert.Equal(t, 4*128, g.Len())
	for _, v := range x[256:384] {
		assert.Zero(t, v)
	}

	// rhythm phase follows the absolute time base
	i := 384 + 10
	assert.InDelta(t, 3*math.Sin(2*math.Pi*4*float64(i)/128), x[i], 1e-12)

	// Samples returns a copy
	x[0] = 1e9
	assert.NotEqual(t, 1e9, g.Samples()[0])
}

func TestGeneratorIsReproducible(t *testing.T) {
	a := NewGenerator(128, 42).Noise(1, 1).Samples()
	b := NewGenerator(128, 42).Noise(1, 1).Samples()
	assert.Equal(t, a, b)
}

func TestBurstSuppressionPattern(t *testing.T) {
	x := NewGenerator(128, 3).BurstSuppression(10, 1, 3, 20).Samples()
	require.Len(t, x, 1280)

	flat := 0
	for _, v := range x {
		if v == 0 {
			flat++
		}
	}
	// 1 s burst + 3 s flat, twice, then 1 s burst + 1 s flat
	assert.Equal(t, 7*128, flat)
	assert.NotZero(t, x[10])
	assert.Zero(t, x[200])

	assert.Len(t, NewGenerator(128, 3).BurstSuppression(1, 0, 0, 1).Samples(), 128)
}

func TestSpike(t *testing.T) {
	x := make([]float64, 512)
	y := Spike(x, 128, 1, 1, 1000)

	assert.Zero(t, x[192], "input untouched")
	assert.InDelta(t, 1000, y[192], 1e-9)
	assert.Zero(t, y[127])
	assert.Zero(t, y[256])

	// a spike past the end is clipped
	assert.Len(t, Spike(x, 128, 3.5, 2, 10), 512)
}

func TestApplyEffects(t *testing.T) {
	x := make([]float64, 1280)
	y := ApplyEffects(x, 128, Effects{Offset: 50, LineFreq: 50, LineAmp: 2}, 1)

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))
	assert.InDelta(t, 50, mean, 0.1)

	z := ApplyEffects(x, 128, Effects{}, 1)
	assert.Equal(t, x, z)
}
