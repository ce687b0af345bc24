package statecell

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModifyForcesInitialWrite(t *testing.T) {
	c := NewCell(0.5)
	changed, state := c.Modify(0.0, 1000)
	require.True(t, changed)
	require.False(t, state)
	require.Equal(t, uint64(1000), c.Timestamp())
}

func TestHysteresisRisingAndFalling(t *testing.T) {
	c := NewCell(0.5)
	c.Modify(0.0, 1000)

	// margin = min(0.5, 0.5) * 0.025 = 0.0125
	_, state := c.Modify(0.51, 2000)
	require.False(t, state, "below threshold+margin must not rise")

	_, state = c.Modify(0.52, 3000)
	require.True(t, state, "above threshold+margin must rise")

	_, state = c.Modify(0.49, 4000)
	require.True(t, state, "above threshold-margin must not fall")

	_, state = c.Modify(0.48, 5000)
	require.False(t, state, "below threshold-margin must fall")
}

func TestModifyCountedTracksPressed(t *testing.T) {
	var pressed int
	a := NewCell(0.5)
	b := NewCell(0.5)

	a.ModifyCounted(1.0, 1000, &pressed)
	require.Equal(t, 1, pressed)

	b.ModifyCounted(1.0, 1100, &pressed)
	require.Equal(t, 2, pressed)

	a.ModifyCounted(0.0, 1200, &pressed)
	require.Equal(t, 1, pressed)
	require.False(t, a.State())
}

func TestTimeSinceChangeUninitializedIsInf(t *testing.T) {
	c := NewCell(0.5)
	require.True(t, math.IsInf(c.TimeSinceChange(1000), 1))
}

func TestTimeSinceChange(t *testing.T) {
	c := NewCell(0.5)
	c.Modify(1.0, 1000)
	require.InDelta(t, 0.0005, c.TimeSinceChange(1500), 1e-9)
}

func TestSetThresholdClampsAndRoundTrips(t *testing.T) {
	c := NewCell(0.5)
	c.SetThreshold(1.5)
	require.Equal(t, float32(1), c.Threshold())
	c.SetThreshold(-1)
	require.Equal(t, float32(0), c.Threshold())
	c.SetThreshold(0.3)
	c.SetThreshold(0.3)
	require.Equal(t, float32(0.3), c.Threshold())
}

func TestResetPreservesThreshold(t *testing.T) {
	c := NewCell(0.7)
	c.Modify(1.0, 1000)
	c.Reset()
	require.Equal(t, float32(0.7), c.Threshold())
	require.Equal(t, float32(0), c.Value())
	require.Equal(t, uint64(0), c.Timestamp())
}
