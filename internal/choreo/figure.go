package choreo

import (
	"math"
	"time"

	"github.com/iburimskiy/stillwave/internal/motion"
)

// Figure is the optional body figure whose regions light up during the
// body scan.
type Figure interface {
	SetHighlights(indexes []int)
	ClearHighlights()
	RevealFigure()
	Reset()
}

// Glow is the optional gratitude gradient.
type Glow interface {
	RevealGlow()
	ResetGlow()
}

// HighlightTiming configures region fades and the pulse that follows them.
type HighlightTiming struct {
	Transition     time.Duration
	LoadTransition time.Duration
	PulseDelay     time.Duration
	PulsePeriod    time.Duration
	PulseStagger   time.Duration
	PulseFloor     float64
	FigureReveal   time.Duration
}

// DefaultHighlightTiming returns the figure timings the app ships with.
func DefaultHighlightTiming() HighlightTiming {
	return HighlightTiming{
		Transition:     3200 * time.Millisecond,
		LoadTransition: 1600 * time.Millisecond,
		PulseDelay:     3250 * time.Millisecond,
		PulsePeriod:    4200 * time.Millisecond,
		PulseStagger:   350 * time.Millisecond,
		PulseFloor:     0.7,
		FigureReveal:   3200 * time.Millisecond,
	}
}

type region struct {
	from, to   float64
	since      time.Time
	duration   time.Duration
	pulse      bool
	pulseStart time.Time
}

// Highlights models the body figure: a set of regions with animated
// opacity. Until the figure is loaded, requested highlights are kept
// pending and applied on load.
type Highlights struct {
	timing  HighlightTiming
	group   *Group
	regions []region
	pending []int

	Stage Fade
}

// NewHighlights creates an unloaded figure.
func NewHighlights(sched *Scheduler, timing HighlightTiming) *Highlights {
	h := &Highlights{timing: timing, group: sched.NewGroup()}
	h.Stage.Hide()
	return h
}

// Loaded reports whether the figure has regions.
func (h *Highlights) Loaded() bool { return len(h.regions) > 0 }

// Regions is the number of loaded regions.
func (h *Highlights) Regions() int { return len(h.regions) }

// Pending returns highlights waiting for the figure to load.
func (h *Highlights) Pending() []int { return h.pending }

// Load makes count regions available. Pending highlights are applied,
// otherwise every region starts transparent.
func (h *Highlights) Load(count int) {
	if count <= 0 {
		return
	}
	h.regions = make([]region, count)
	if len(h.pending) == 0 {
		h.Reset()
		return
	}
	now := h.group.Now()
	for _, idx := range h.pending {
		if idx < 0 || idx >= len(h.regions) {
			continue
		}
		h.regions[idx] = region{from: 0, to: 1, since: now, duration: h.timing.LoadTransition}
	}
	h.pending = nil
}

// SetHighlights fades the listed regions in and every other region out,
// starting from their current opacity, then arms the pulse.
func (h *Highlights) SetHighlights(indexes []int) {
	if !h.Loaded() {
		h.pending = append([]int(nil), indexes...)
		return
	}
	now := h.group.Now()
	h.group.Cancel()

	target := make(map[int]bool, len(indexes))
	for _, idx := range indexes {
		target[idx] = true
	}
	for i := range h.regions {
		current := h.Opacity(i, now)
		to := 0.0
		if target[i] {
			to = 1
		}
		h.regions[i] = region{from: current, to: to, since: now, duration: h.timing.Transition}
	}

	h.group.After(h.timing.PulseDelay, func() {
		pulseAt := h.group.Now()
		for i := range h.regions {
			h.regions[i].pulse = target[i]
			if target[i] {
				h.regions[i].pulseStart = pulseAt.Add(time.Duration(i%3) * h.timing.PulseStagger)
			}
		}
	})
	h.pending = nil
}

// ClearHighlights fades every region out.
func (h *Highlights) ClearHighlights() {
	h.SetHighlights(nil)
}

// RevealFigure fades the figure stage in.
func (h *Highlights) RevealFigure() {
	h.Stage.Reveal(h.group.Now(), h.timing.FigureReveal)
}

// Reset drops pending work and makes every region transparent at once.
func (h *Highlights) Reset() {
	h.pending = nil
	h.group.Cancel()
	for i := range h.regions {
		h.regions[i] = region{}
	}
	h.Stage.Hide()
}

// Pulsing reports whether region i is pulsing.
func (h *Highlights) Pulsing(i int) bool {
	return i >= 0 && i < len(h.regions) && h.regions[i].pulse
}

// Opacity of region i at now. Out-of-range regions are transparent.
func (h *Highlights) Opacity(i int, now time.Time) float64 {
	if i < 0 || i >= len(h.regions) {
		return 0
	}
	r := h.regions[i]
	if r.pulse && h.timing.PulsePeriod > 0 {
		if elapsed := now.Sub(r.pulseStart); elapsed >= 0 {
			cycle := math.Mod(float64(elapsed), float64(h.timing.PulsePeriod)) / float64(h.timing.PulsePeriod)
			dip := 0.5 - 0.5*math.Cos(2*math.Pi*cycle)
			return 1 - (1-h.timing.PulseFloor)*dip
		}
	}
	if r.duration <= 0 {
		return r.to
	}
	p := motion.EaseInOutCubic(motion.Clamp01(float64(now.Sub(r.since)) / float64(r.duration)))
	return r.from + (r.to-r.from)*p
}

// GratitudeGlow is the warm gradient revealed near the end of the scan.
type GratitudeGlow struct {
	Fade
	clock    Clock
	duration time.Duration
}

// NewGratitudeGlow creates a hidden glow.
func NewGratitudeGlow(clock Clock, reveal time.Duration) *GratitudeGlow {
	g := &GratitudeGlow{clock: clock, duration: reveal}
	g.Hide()
	return g
}

func (g *GratitudeGlow) RevealGlow() { g.Reveal(g.clock.Now(), g.duration) }

func (g *GratitudeGlow) ResetGlow() { g.Hide() }
