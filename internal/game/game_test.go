package game

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iburimskiy/stillwave/internal/audio"
	"github.com/iburimskiy/stillwave/internal/choreo"
	"github.com/iburimskiy/stillwave/internal/config"
	"github.com/iburimskiy/stillwave/internal/store"
)

var epoch = time.Date(2026, 5, 4, 7, 0, 0, 0, time.UTC)

type fakeStore struct {
	calls   int
	minutes float64
	breaths int
}

func (f *fakeStore) RecordSession(_ context.Context, minutes float64, breaths int) (store.Session, store.Stats, error) {
	f.calls++
	f.minutes, f.breaths = minutes, breaths
	return store.Session{ID: "session_test", DurationMinutes: minutes, Breaths: breaths},
		store.Stats{TotalMinutes: 320 + minutes, StreakDays: 13, BreathsCompleted: 48 + breaths, CalmScore: 87},
		nil
}

func newTestGame(t *testing.T, mode Mode, mutate func(*config.Config)) (*Game, *choreo.ManualClock, *fakeStore) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())
	clock := choreo.NewManualClock(epoch)
	st := &fakeStore{}
	g := New(Options{
		Config: cfg,
		Mode:   mode,
		Clock:  clock,
		Rand:   rand.New(rand.NewSource(1)),
		Store:  st,
		Log:    zap.NewNop(),
		PickFile: func() (string, error) {
			t.Fatal("file picker must not open")
			return "", nil
		},
	})
	return g, clock, st
}

// run steps the game every 50ms for d.
func run(t *testing.T, g *Game, clock *choreo.ManualClock, d time.Duration) {
	t.Helper()
	end := clock.Now().Add(d)
	for clock.Now().Before(end) {
		clock.Advance(50 * time.Millisecond)
		require.NoError(t, g.step(input{}))
	}
}

func TestJourneyRunsToFinish(t *testing.T) {
	g, clock, st := newTestGame(t, ModeJourney, nil)
	assert.Equal(t, choreo.JourneyReady, g.journey.State())

	require.NoError(t, g.step(input{chars: []rune("   ")}))
	require.NoError(t, g.step(input{enter: true}))
	assert.Equal(t, choreo.JourneyReady, g.journey.State(), "blank text does not burn")

	require.NoError(t, g.step(input{chars: []rune("the deadline"), enter: true}))
	assert.Equal(t, choreo.JourneyBurning, g.journey.State())
	assert.Equal(t, []string{"the deadline"}, g.burnLines)
	assert.True(t, g.burn.Running())

	run(t, g, clock, 9500*time.Millisecond)
	assert.Equal(t, choreo.JourneyBreathing, g.journey.State())
	assert.False(t, g.burnFrame.Visible())
	assert.True(t, g.stage.Visible())
	assert.True(t, g.renderer.Running())

	run(t, g, clock, 33*time.Second)
	assert.True(t, g.completed)
	assert.Equal(t, choreo.JourneyNarrating, g.journey.State())
	assert.True(t, g.renderer.Done())

	run(t, g, clock, 150*time.Second)
	assert.Equal(t, choreo.JourneyFinished, g.journey.State())
	assert.True(t, g.finished)
	assert.Equal(t, 1, st.calls)
	assert.Equal(t, 0.5, st.minutes)
	assert.Equal(t, 3, st.breaths)
	require.NotNil(t, g.stats)
	assert.Equal(t, 13, g.stats.StreakDays)

	require.NoError(t, g.step(input{enter: true}))
	assert.False(t, g.finished)
	assert.Equal(t, choreo.JourneyReady, g.journey.State())
	assert.Empty(t, g.text.String())
	assert.Equal(t, promptText, g.title.Text)
	assert.False(t, g.stage.Visible())
}

func TestBreatheModeStartsImmediately(t *testing.T) {
	g, clock, st := newTestGame(t, ModeBreathe, nil)
	assert.Nil(t, g.journey)

	require.NoError(t, g.step(input{}))
	assert.True(t, g.breathing.Started())
	assert.Equal(t, choreo.Revealing, g.stage.State)

	run(t, g, clock, 35*time.Second)
	assert.True(t, g.completed)
	assert.True(t, g.finished)
	assert.Equal(t, 1, st.calls)
}

func TestReducedMotionWaitsForEnter(t *testing.T) {
	g, clock, st := newTestGame(t, ModeBreathe, func(c *config.Config) { c.ReducedMotion = true })

	require.NoError(t, g.step(input{}))
	assert.True(t, g.breathing.Started())
	assert.False(t, g.renderer.Running())

	run(t, g, clock, 40*time.Second)
	assert.False(t, g.completed, "reduced motion never completes on its own")

	require.NoError(t, g.step(input{enter: true}))
	assert.True(t, g.completed)
	run(t, g, clock, 2*time.Second)
	assert.True(t, g.finished)
	assert.Equal(t, 1, st.calls)
}

func TestQuitAndMissingAudio(t *testing.T) {
	g, _, _ := newTestGame(t, ModeJourney, nil)
	assert.ErrorIs(t, g.step(input{quit: true}), ebiten.Termination)

	require.NoError(t, g.step(input{open: true}))
	assert.ErrorIs(t, g.lastErr, audio.ErrNotInitialized)
	assert.Contains(t, g.status(), "Error:")
}

func TestResizeClampsViewport(t *testing.T) {
	g, _, _ := newTestGame(t, ModeJourney, nil)
	g.resize(0, 0, 3)
	assert.Equal(t, 1, g.width)
	w, h, dpr := g.renderer.Size()
	assert.Equal(t, 1.0, w)
	assert.Equal(t, 1.0, h)
	assert.Equal(t, 2.0, dpr)
}

func TestLayoutFollowsPixelRatio(t *testing.T) {
	g, _, _ := newTestGame(t, ModeJourney, nil)
	cfg := config.Default()
	_, _, dpr := g.renderer.Size()
	require.Equal(t, 1.0, dpr)

	w, h := g.layout(cfg.Window.Width, cfg.Window.Height, 2)
	assert.Equal(t, cfg.Window.Width, w)
	assert.Equal(t, cfg.Window.Height, h)
	_, _, dpr = g.renderer.Size()
	assert.Equal(t, 2.0, dpr, "same viewport on a denser monitor")

	g.layout(cfg.Window.Width, cfg.Window.Height, 1)
	_, _, dpr = g.renderer.Size()
	assert.Equal(t, 1.0, dpr)
}
