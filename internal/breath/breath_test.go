package breath

import (
	"image/color"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type circle struct {
	x, y, r float64
	c       color.NRGBA
}

type recordingCanvas struct {
	clears  int
	circles []circle
}

func (c *recordingCanvas) Clear() {
	c.clears++
	c.circles = c.circles[:0]
}

func (c *recordingCanvas) FillCircle(x, y, r float64, col color.NRGBA) {
	c.circles = append(c.circles, circle{x: x, y: y, r: r, c: col})
}

func testOptions() Options {
	return Options{
		Count:          220,
		StageSize:      400,
		BaseDotSize:    9,
		CenterDotSize:  18,
		Inhale:         4 * time.Second,
		Exhale:         6 * time.Second,
		Rounds:         3,
		IntroDotFadeIn: 420 * time.Millisecond,
		Color:          color.NRGBA{R: 0x93, G: 0xBB, B: 0xED, A: 255},
		DPRCap:         2,
		DriftSpeed:     0.00028,
		DriftTiltSpeed: 0.00017,
		Tuning:         DefaultTuning(),
	}
}

func newTestRenderer(t *testing.T, opts Options) *Renderer {
	t.Helper()
	r := NewRenderer(opts, rand.New(rand.NewSource(7)))
	r.Resize(800, 600, 1)
	return r
}

func TestNewParticlesShellBias(t *testing.T) {
	for seed := int64(1); seed <= 3; seed++ {
		ps := NewParticles(rand.New(rand.NewSource(seed)), 220, DefaultTuning())
		require.Len(t, ps, 220)

		shell := 0
		for _, p := range ps {
			assert.GreaterOrEqual(t, p.ShellRadius, 0.42)
			assert.LessOrEqual(t, p.ShellRadius, 1.08)
			length := math.Sqrt(p.Position.X*p.Position.X + p.Position.Y*p.Position.Y + p.Position.Z*p.Position.Z)
			assert.InDelta(t, 1.0, length, 1e-9)
			if p.ShellRadius >= 0.8 {
				shell++
			}
		}
		assert.GreaterOrEqual(t, float64(shell)/220, 0.75, "seed %d", seed)
	}
}

func TestNewParticlesRanges(t *testing.T) {
	ps := NewParticles(rand.New(rand.NewSource(3)), 500, DefaultTuning())
	for _, p := range ps {
		assert.True(t, p.Speed >= 0.92 && p.Speed < 1.10)
		assert.True(t, p.PhaseOffset >= -0.035 && p.PhaseOffset < 0.035)
		assert.True(t, p.JitterAmp >= 0.006 && p.JitterAmp < 0.018)
		assert.True(t, p.BaseAlpha >= 0.62 && p.BaseAlpha < 0.90)
		assert.True(t, p.SizeJitter >= 0.93 && p.SizeJitter < 1.07)
	}
	assert.Empty(t, NewParticles(rand.New(rand.NewSource(3)), -4, DefaultTuning()))
}

func TestClassifyCoversActiveRange(t *testing.T) {
	c := Clock{Inhale: 4 * time.Second, Exhale: 6 * time.Second, Rounds: 3}
	for ms := 0; ms < 30000; ms += 37 {
		s := c.Classify(time.Duration(ms) * time.Millisecond)
		require.Contains(t, []Phase{PhaseInhale, PhaseExhale}, s.Phase, "elapsed %dms", ms)
		require.GreaterOrEqual(t, s.Progress, 0.0)
		require.LessOrEqual(t, s.Progress, 1.0)
		require.GreaterOrEqual(t, s.Round, 1)
		require.LessOrEqual(t, s.Round, 3)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	c := Clock{Inhale: 4 * time.Second, Exhale: 6 * time.Second, Rounds: 3}
	assert.Equal(t, 30*time.Second, c.Total())

	s := c.Classify(29999 * time.Millisecond)
	assert.Equal(t, PhaseExhale, s.Phase)
	assert.Equal(t, 3, s.Round)

	assert.Equal(t, PhaseComplete, c.Classify(30*time.Second).Phase)
	assert.Equal(t, PhaseIntro, c.Classify(-time.Millisecond).Phase)

	s = c.Classify(0)
	assert.Equal(t, PhaseInhale, s.Phase)
	assert.Equal(t, 0.0, s.Amount)

	s = c.Classify(4 * time.Second)
	assert.Equal(t, PhaseExhale, s.Phase)
	assert.Equal(t, 1.0, s.Amount)

	s = c.Classify(12 * time.Second)
	assert.Equal(t, PhaseInhale, s.Phase)
	assert.Equal(t, 2, s.Round)
}

func TestPlanDepthSorted(t *testing.T) {
	r := newTestRenderer(t, testOptions())
	for _, ms := range []int{500, 2000, 3999, 5000, 9000, 17000, 25000} {
		f := r.Plan(time.Duration(ms) * time.Millisecond)
		for i := 1; i < len(f.Dots); i++ {
			require.LessOrEqual(t, f.Dots[i-1].Z, f.Dots[i].Z, "elapsed %dms index %d", ms, i)
		}
	}
}

func TestPlanThinsAtEmptyPoint(t *testing.T) {
	r := newTestRenderer(t, testOptions())

	empty := r.Plan(0)
	assert.Empty(t, empty.Dots)
	assert.Equal(t, 1.0, empty.CenterAlpha)

	full := r.Plan(4 * time.Second)
	assert.Len(t, full.Dots, 220)
	assert.Equal(t, 0.0, full.CenterAlpha)
	for _, d := range full.Dots {
		assert.GreaterOrEqual(t, d.Alpha, 0.06)
		assert.LessOrEqual(t, d.Alpha, 1.0)
	}
}

func TestTickCompletionFiresOnce(t *testing.T) {
	r := newTestRenderer(t, testOptions())
	calls := 0
	r.OnComplete(func() { calls++ })

	canvas := &recordingCanvas{}
	start := time.Unix(1000, 0)
	r.Start(canvas, start, start)

	assert.True(t, r.Tick(canvas, start.Add(29999*time.Millisecond)))
	assert.Equal(t, PhaseExhale, r.Status().Phase)
	assert.Equal(t, 3, r.Status().Round)

	assert.False(t, r.Tick(canvas, start.Add(30*time.Second)))
	assert.False(t, r.Tick(canvas, start.Add(31*time.Second)))
	assert.False(t, r.Tick(canvas, start.Add(time.Minute)))
	assert.Equal(t, 1, calls)
	assert.True(t, r.Done())
	assert.Equal(t, PhaseComplete, r.Status().Phase)
	require.Len(t, canvas.circles, 1)
	assert.Equal(t, uint8(255), canvas.circles[0].c.A)
}

func TestTickIntroUsesKickoff(t *testing.T) {
	r := newTestRenderer(t, testOptions())
	canvas := &recordingCanvas{}
	kickoff := time.Unix(1000, 0)
	r.Start(canvas, kickoff, kickoff.Add(3*time.Second))

	assert.True(t, r.Tick(canvas, kickoff))
	assert.Equal(t, PhaseIntro, r.Status().Phase)
	assert.Equal(t, 0.0, r.Status().CenterAlpha)

	assert.True(t, r.Tick(canvas, kickoff.Add(2*time.Second)))
	assert.Equal(t, 1.0, r.Status().CenterAlpha)
	assert.Equal(t, 1, r.Status().Round)
}

func TestReducedMotionDrawsTerminalFrameOnly(t *testing.T) {
	opts := testOptions()
	opts.ReducedMotion = true
	r := newTestRenderer(t, opts)
	calls := 0
	r.OnComplete(func() { calls++ })

	canvas := &recordingCanvas{}
	now := time.Unix(1000, 0)
	r.Start(canvas, now, now)

	assert.Equal(t, 1, r.Frames())
	assert.False(t, r.Running())
	assert.False(t, r.Tick(canvas, now.Add(5*time.Second)))
	assert.Equal(t, 1, r.Frames())
	assert.Equal(t, 1, canvas.clears)
	assert.Equal(t, PhaseComplete, r.Status().Phase)
	assert.Equal(t, 0, calls)
}

func TestCancelStopsLoop(t *testing.T) {
	r := newTestRenderer(t, testOptions())
	canvas := &recordingCanvas{}
	now := time.Unix(1000, 0)
	r.Start(canvas, now, now)
	require.True(t, r.Tick(canvas, now.Add(time.Second)))

	r.Cancel()
	frames := r.Frames()
	assert.False(t, r.Tick(canvas, now.Add(2*time.Second)))
	assert.Equal(t, frames, r.Frames())
}

func TestZeroViewportClamps(t *testing.T) {
	r := NewRenderer(testOptions(), rand.New(rand.NewSource(1)))
	r.Resize(0, 0, 0)

	w, h, dpr := r.Size()
	assert.Equal(t, 1.0, w)
	assert.Equal(t, 1.0, h)
	assert.Equal(t, 1.0, dpr)

	for _, ms := range []int{0, 1500, 4000, 7000} {
		f := r.Plan(time.Duration(ms) * time.Millisecond)
		for _, d := range f.Dots {
			require.False(t, math.IsNaN(d.X) || math.IsNaN(d.Y) || math.IsInf(d.X, 0) || math.IsInf(d.Y, 0))
		}
	}

	canvas := &recordingCanvas{}
	r.Draw(canvas, r.Plan(2*time.Second))
	for _, c := range canvas.circles {
		assert.False(t, math.IsNaN(c.x) || math.IsNaN(c.y) || math.IsNaN(c.r))
	}
}

func TestResizeCapsPixelRatio(t *testing.T) {
	r := newTestRenderer(t, testOptions())
	r.Resize(1920, 1080, 3)
	w, h, dpr := r.Size()
	assert.Equal(t, 400.0, w)
	assert.Equal(t, 400.0, h)
	assert.Equal(t, 2.0, dpr)
}
