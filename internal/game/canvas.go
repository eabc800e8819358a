package game

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/stillwave/internal/breath"
)

type circle struct {
	x, y, r float64
	c       color.NRGBA
}

// displayList records the sphere frame during Update and replays it onto an
// offscreen image during Draw.
type displayList struct {
	circles []circle
}

func (d *displayList) Clear() { d.circles = d.circles[:0] }

func (d *displayList) FillCircle(x, y, radius float64, c color.NRGBA) {
	if c.A == 0 || radius <= 0 {
		return
	}
	d.circles = append(d.circles, circle{x, y, radius, c})
}

// replay draws the list onto dst scaled by dpr.
func (d *displayList) replay(dst *ebiten.Image, dpr float64) {
	dst.Clear()
	for _, c := range d.circles {
		vector.DrawFilledCircle(dst, float32(c.x*dpr), float32(c.y*dpr), float32(c.r*dpr), c.c, true)
	}
}

// sphereRunner drives the renderer from the frame loop on behalf of the
// breathing choreographer.
type sphereRunner struct {
	renderer *breath.Renderer
	canvas   *displayList
}

func newSphereRunner(r *breath.Renderer) *sphereRunner {
	s := &sphereRunner{renderer: r, canvas: &displayList{}}
	r.Idle(s.canvas)
	return s
}

func (s *sphereRunner) Start(kickoff, start time.Time) {
	s.renderer.Start(s.canvas, kickoff, start)
}

func (s *sphereRunner) Cancel() {
	s.renderer.Cancel()
}

// tick advances the animation to now.
func (s *sphereRunner) tick(now time.Time) {
	if s.renderer.Running() {
		s.renderer.Tick(s.canvas, now)
	}
}

// reset drops the drawn frame.
func (s *sphereRunner) reset() {
	s.renderer.Cancel()
	s.renderer.Idle(s.canvas)
}
