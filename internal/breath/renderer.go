// Package breath draws the breathing sphere: a fixed pool of particles on a
// shell-weighted sphere that expands on the inhale and collapses on the
// exhale, projected with a simple perspective and drawn back to front.
package breath

import (
	"cmp"
	"image/color"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/iburimskiy/stillwave/internal/motion"
)

// Canvas is the raster target of the renderer in logical pixels.
type Canvas interface {
	Clear()
	FillCircle(x, y, radius float64, c color.NRGBA)
}

// Options configures a Renderer.
type Options struct {
	Count          int
	StageSize      float64 // side of the square stage in logical px
	BaseDotSize    float64
	CenterDotSize  float64
	Inhale         time.Duration
	Exhale         time.Duration
	Rounds         int
	IntroDotFadeIn time.Duration
	Color          color.NRGBA
	DPRCap         float64
	DriftSpeed     float64 // yaw radians per ms
	DriftTiltSpeed float64 // pitch oscillation radians per ms
	ReducedMotion  bool
	Tuning         Tuning
}

// Dot is one projected particle of a frame.
type Dot struct {
	X, Y   float64
	Z      float64 // rotated depth; larger is nearer
	Radius float64
	Alpha  float64
}

// Frame is everything needed to draw one instant of the animation.
type Frame struct {
	PhaseState
	CenterAlpha float64
	Dots        []Dot // sorted back to front
}

// Status mirrors the last drawn frame.
type Status struct {
	Phase       Phase
	Round       int
	CenterAlpha float64
}

// Renderer owns one particle pool and one breathing clock.
type Renderer struct {
	opts      Options
	rng       *rand.Rand
	particles []Particle

	width, height float64
	dpr           float64
	cx, cy        float64
	radius        float64

	clock      Clock
	running    bool
	done       bool
	notified   bool
	onComplete func()

	status Status
	frames int
}

// NewRenderer creates the particle pool and sizes the stage to a 1x1
// viewport until Resize is called.
func NewRenderer(opts Options, rng *rand.Rand) *Renderer {
	if opts.DPRCap <= 0 {
		opts.DPRCap = 1
	}
	r := &Renderer{opts: opts, rng: rng}
	r.Reset()
	r.Resize(0, 0, 1)
	return r
}

// Reset recreates the particle pool.
func (r *Renderer) Reset() {
	r.particles = NewParticles(r.rng, r.opts.Count, r.opts.Tuning)
}

// Particles exposes the pool read-only.
func (r *Renderer) Particles() []Particle { return r.particles }

// Resize fits the stage into a viewport. Degenerate sizes clamp to 1 px.
func (r *Renderer) Resize(viewportW, viewportH, dpr float64) {
	side := math.Min(viewportW, viewportH)
	if r.opts.StageSize > 0 {
		side = math.Min(side, r.opts.StageSize)
	}
	r.width = math.Max(1, math.Round(side))
	r.height = r.width
	if dpr <= 0 || math.IsNaN(dpr) {
		dpr = 1
	}
	r.dpr = math.Min(dpr, r.opts.DPRCap)
	r.cx = math.Max(1, r.width/2)
	r.cy = math.Max(1, r.height/2)
	r.radius = math.Max(1, math.Min(r.width, r.height)*r.opts.Tuning.RadiusFactor)
}

// Size returns the stage size in logical px and the effective pixel ratio.
func (r *Renderer) Size() (width, height, dpr float64) {
	return r.width, r.height, r.dpr
}

// Clock returns the clock of the current run.
func (r *Renderer) Clock() Clock { return r.clock }

// Status returns the state of the last drawn frame.
func (r *Renderer) Status() Status { return r.status }

// Frames counts frames drawn since construction.
func (r *Renderer) Frames() int { return r.frames }

// Running reports whether the loop expects further ticks.
func (r *Renderer) Running() bool { return r.running }

// Done reports whether the run reached its terminal frame.
func (r *Renderer) Done() bool { return r.done }

// OnComplete registers the callback fired once when the last exhale ends.
func (r *Renderer) OnComplete(fn func()) { r.onComplete = fn }

// Idle clears the canvas before any run has started.
func (r *Renderer) Idle(c Canvas) {
	c.Clear()
	r.status = Status{Phase: PhaseIdle}
}

// Start arms a run whose first inhale begins at start. With reduced motion
// the terminal frame is drawn immediately and the loop never runs.
func (r *Renderer) Start(c Canvas, kickoff, start time.Time) {
	r.clock = Clock{
		Kickoff: kickoff,
		Start:   start,
		Inhale:  r.opts.Inhale,
		Exhale:  r.opts.Exhale,
		Rounds:  r.opts.Rounds,
	}
	r.done = false
	r.notified = false

	if r.opts.ReducedMotion {
		r.running = false
		r.draw(c, r.terminalFrame())
		return
	}
	r.running = true
}

// Cancel stops the loop without drawing or notifying.
func (r *Renderer) Cancel() {
	r.running = false
}

// Tick is the per-refresh callback. It draws the frame for now and returns
// false once the loop has stopped.
func (r *Renderer) Tick(c Canvas, now time.Time) bool {
	if !r.running {
		return false
	}

	elapsed := r.clock.Elapsed(now)
	switch {
	case elapsed < 0:
		r.draw(c, r.introFrame(now))
		return true
	case elapsed >= r.clock.Total():
		r.complete(c)
		return false
	}

	r.draw(c, r.Plan(elapsed))
	return true
}

func (r *Renderer) complete(c Canvas) {
	r.running = false
	r.done = true
	r.draw(c, r.terminalFrame())
	if r.notified {
		return
	}
	r.notified = true
	if r.onComplete != nil {
		r.onComplete()
	}
}

func (r *Renderer) introFrame(now time.Time) Frame {
	since := now.Sub(r.clock.Kickoff)
	if since < 0 {
		since = 0
	}
	alpha := 1.0
	if r.opts.IntroDotFadeIn > 0 {
		alpha = motion.EaseInOutCubic(motion.Clamp01(float64(since) / float64(r.opts.IntroDotFadeIn)))
	}
	return Frame{
		PhaseState:  PhaseState{Phase: PhaseIntro, Round: 1},
		CenterAlpha: alpha,
	}
}

func (r *Renderer) terminalFrame() Frame {
	return Frame{
		PhaseState:  PhaseState{Phase: PhaseComplete, Round: r.opts.Rounds, Progress: 1},
		CenterAlpha: 1,
	}
}

// Plan computes the frame at elapsed time since the first inhale. It draws
// nothing and may be called for any elapsed value.
func (r *Renderer) Plan(elapsed time.Duration) Frame {
	clock := r.clock
	clock.Inhale, clock.Exhale, clock.Rounds = r.opts.Inhale, r.opts.Exhale, r.opts.Rounds
	state := clock.Classify(elapsed)
	switch state.Phase {
	case PhaseIntro:
		return Frame{PhaseState: state}
	case PhaseComplete:
		return r.terminalFrame()
	}

	tuning := r.opts.Tuning
	frame := Frame{PhaseState: state}
	if state.Amount < tuning.CenterFadeAt && tuning.CenterFadeAt > 0 {
		frame.CenterAlpha = motion.Clamp01(math.Pow(1-state.Amount/tuning.CenterFadeAt, 1.6))
	}

	t := float64(elapsed) / float64(time.Millisecond)
	yaw := t * r.opts.DriftSpeed
	pitch := math.Sin(t*r.opts.DriftTiltSpeed) * 0.23
	cosYaw, sinYaw := math.Cos(yaw), math.Sin(yaw)
	cosPitch, sinPitch := math.Cos(pitch), math.Sin(pitch)
	perspective := r.radius * tuning.PerspectiveSpan
	envelope := math.Sin(state.Progress * math.Pi)

	dots := make([]Dot, 0, len(r.particles))
	for _, p := range r.particles {
		local := motion.Clamp01(state.Progress*p.Speed + envelope*p.PhaseOffset)
		localEase := motion.EaseInOutCubic(local)
		amount := localEase
		if state.Phase == PhaseExhale {
			amount = 1 - localEase
		}
		visual := math.Pow(amount, tuning.Gamma)
		if visual <= 0.0001 {
			continue
		}

		jitterTime := t*0.001*p.JitterFreq + p.JitterPhase
		jitterA := math.Sin(jitterTime)
		jitterB := math.Cos(jitterTime * 1.37)
		curve := math.Sin(local*math.Pi) * p.CurveStrength * visual
		radiusPx := r.radius * p.ShellRadius * visual
		jitter := p.JitterAmp * r.radius * visual

		x3 := p.Position.X*radiusPx + math.Cos(p.CurveAngle)*curve*r.radius + jitterA*jitter
		y3 := p.Position.Y*radiusPx + math.Sin(p.CurveAngle)*curve*r.radius + jitterB*jitter
		z3 := p.Position.Z*radiusPx + math.Sin(jitterTime*0.83)*jitter

		xYaw := x3*cosYaw - z3*sinYaw
		zYaw := x3*sinYaw + z3*cosYaw
		yPitch := y3*cosPitch - zYaw*sinPitch
		zPitch := y3*sinPitch + zYaw*cosPitch

		scale := perspective / (perspective + zPitch + r.radius*1.2)
		depth := motion.Clamp01((zPitch/r.radius + 1) / 2)
		size := (r.opts.BaseDotSize / 2) * p.SizeJitter * (0.88 + depth*0.26) * (0.9 + visual*0.1)
		alpha := motion.Clamp(p.BaseAlpha*(0.55+depth*0.5)*(0.35+visual*0.65), 0.06, 1)

		dots = append(dots, Dot{
			X:      r.cx + xYaw*scale,
			Y:      r.cy + yPitch*scale,
			Z:      zPitch,
			Radius: size,
			Alpha:  alpha,
		})
	}

	slices.SortStableFunc(dots, func(a, b Dot) int { return cmp.Compare(a.Z, b.Z) })
	frame.Dots = dots
	return frame
}

// Draw rasterises a frame: centre dot first, then dots in slice order.
func (r *Renderer) Draw(c Canvas, f Frame) {
	r.draw(c, f)
}

func (r *Renderer) draw(c Canvas, f Frame) {
	c.Clear()
	c.FillCircle(r.cx, r.cy, r.opts.CenterDotSize/2, motion.WithAlpha(r.opts.Color, f.CenterAlpha))
	for _, d := range f.Dots {
		c.FillCircle(d.X, d.Y, d.Radius, motion.WithAlpha(r.opts.Color, d.Alpha))
	}
	r.frames++
	r.status = Status{Phase: f.Phase, Round: f.Round, CenterAlpha: f.CenterAlpha}
}
