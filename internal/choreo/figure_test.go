package choreo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighlightsPendingUntilLoaded(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)
	h := NewHighlights(s, DefaultHighlightTiming())

	h.SetHighlights([]int{9, 10})
	assert.False(t, h.Loaded())
	assert.Equal(t, []int{9, 10}, h.Pending())
	assert.Equal(t, 0.0, h.Opacity(9, clock.Now()))

	h.Load(11)
	assert.Empty(t, h.Pending())
	step(clock, s, ms(1600))
	assert.InDelta(t, 1.0, h.Opacity(9, clock.Now()), 1e-9)
	assert.Equal(t, 0.0, h.Opacity(3, clock.Now()))
}

func TestHighlightsLoadWithoutPendingResets(t *testing.T) {
	s := NewScheduler(NewManualClock(epoch))
	h := NewHighlights(s, DefaultHighlightTiming())
	h.Load(0)
	assert.False(t, h.Loaded())
	h.Load(11)
	assert.Equal(t, 11, h.Regions())
	for i := 0; i < 11; i++ {
		assert.Equal(t, 0.0, h.Opacity(i, epoch))
	}
	assert.Equal(t, 0.0, h.Opacity(42, epoch))
}

func TestHighlightsPulseAfterTransition(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)
	h := NewHighlights(s, DefaultHighlightTiming())
	h.Load(11)

	h.SetHighlights([]int{4, 5})
	step(clock, s, ms(3240))
	assert.False(t, h.Pulsing(4))
	step(clock, s, ms(10))
	require.True(t, h.Pulsing(4))
	assert.True(t, h.Pulsing(5))
	assert.False(t, h.Pulsing(3))

	for i := 0; i < 50; i++ {
		step(clock, s, ms(97))
		o := h.Opacity(5, clock.Now())
		assert.GreaterOrEqual(t, o, 0.7-1e-9)
		assert.LessOrEqual(t, o, 1.0+1e-9)
	}

	h.ClearHighlights()
	assert.False(t, h.Pulsing(4))
	step(clock, s, ms(3200))
	assert.InDelta(t, 0.0, h.Opacity(4, clock.Now()), 1e-9)
}

func TestHighlightsResetCancelsPulse(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)
	h := NewHighlights(s, DefaultHighlightTiming())
	h.Load(11)
	h.SetHighlights([]int{0})
	h.RevealFigure()
	assert.True(t, h.Stage.Visible())

	h.Reset()
	assert.Equal(t, 0, s.Pending())
	assert.False(t, h.Stage.Visible())
	step(clock, s, ms(5000))
	assert.False(t, h.Pulsing(0))
	assert.Equal(t, 0.0, h.Opacity(0, clock.Now()))
}
