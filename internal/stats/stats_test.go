package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantileLinear(t *testing.T) {
	data := []float64{4, 1, 3, 2}

	// linear interpolation between closest ranks
	assert.InDelta(t, 1.0, Quantile(data, 0), 1e-12)
	assert.InDelta(t, 1.75, Quantile(data, 0.25), 1e-12)
	assert.InDelta(t, 2.5, Quantile(data, 0.5), 1e-12)
	assert.InDelta(t, 3.25, Quantile(data, 0.75), 1e-12)
	assert.InDelta(t, 3.7, Quantile(data, 0.9), 1e-12)
	assert.InDelta(t, 4.0, Quantile(data, 1), 1e-12)

	// input must not be reordered
	assert.Equal(t, []float64{4, 1, 3, 2}, data)
}

func TestQuantileEmpty(t *testing.T) {
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
	assert.True(t, math.IsNaN(Mean(nil)))
	assert.True(t, math.IsNaN(Std(nil)))
}

func TestMedianMeanStd(t *testing.T) {
	assert.InDelta(t, 3.0, Median([]float64{5, 1, 3}), 1e-12)
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, math.Sqrt(2.0/3.0), Std([]float64{1, 2, 3}), 1e-12)
}

func TestSafeFloat(t *testing.T) {
	assert.Zero(t, SafeFloat(math.NaN()))
	assert.Zero(t, SafeFloat(math.Inf(1)))
	assert.Equal(t, 1.5, SafeFloat(1.5))
}

func TestBelowMinMax(t *testing.T) {
	assert.Equal(t, []float64{1, 2}, Below([]float64{1, 5, 2, 3}, 3))
	assert.Empty(t, Below([]float64{5}, 1))

	lo, hi := MinMax([]float64{3, -1, 7})
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 7.0, hi)
}
