package eeg_test

import (
	"errors"
	"testing"

	"brainstate/eeg"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervals(t *testing.T) {
	mask := []bool{false, true, true, false, false, true, false, true}
	got := eeg.Intervals(mask)
	want := []eeg.Interval{{Start: 1, End: 3}, {Start: 5, End: 6}, {Start: 7, End: 8}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Intervals mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, eeg.Intervals([]bool{false, false}))
	assert.Empty(t, eeg.Intervals(nil))
}

func TestMaskRoundTrip(t *testing.T) {
	mask := []bool{true, true, false, true, false, false, true}
	assert.Equal(t, mask, eeg.Mask(len(mask), eeg.Intervals(mask)))

	clipped := eeg.Mask(4, []eeg.Interval{{Start: -2, End: 1}, {Start: 3, End: 10}})
	assert.Equal(t, []bool{true, false, false, true}, clipped)
}

func TestFraction(t *testing.T) {
	assert.InDelta(t, 0.5, eeg.Fraction([]bool{true, false, true, false}), 1e-12)
	assert.Zero(t, eeg.Fraction(nil))
	assert.Equal(t, 3, eeg.Count([]bool{true, true, false, true}))
	assert.Equal(t, []bool{false, true}, eeg.Invert([]bool{true, false}))
}

func TestIntervalOverlaps(t *testing.T) {
	a := eeg.Interval{Start: 0, End: 10}
	assert.True(t, a.Overlaps(eeg.Interval{Start: 9, End: 12}))
	assert.False(t, a.Overlaps(eeg.Interval{Start: 10, End: 12}))
	assert.Equal(t, eeg.Interval{Start: 5, End: 15}, a.Shift(5))
	assert.True(t, a.Contains(9))
	assert.False(t, a.Contains(10))
}

func TestNewSignal(t *testing.T) {
	_, err := eeg.NewSignal([]float64{1, 2}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, eeg.ErrInvalidConfig))

	s, err := eeg.NewSignal(make([]float64, 256), 128)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, s.Duration(), 1e-12)
	assert.InDelta(t, 0.5, s.Time(64), 1e-12)
	assert.Len(t, s.Window(10, 20), 20)
}
