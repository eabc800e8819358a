// Package burn implements the worry-burning effect: the typed text is
// consumed from the bottom up behind an undulating, glowing edge.
package burn

import (
	"math"
	"strings"
	"time"

	"github.com/iburimskiy/stillwave/internal/choreo"
	"github.com/iburimskiy/stillwave/internal/motion"
)

// EdgeNodeCount is the number of control points along the burn edge.
const EdgeNodeCount = 20

const progressPower = 1.35

// Node is one control point of the edge, spread evenly from left to right.
type Node struct {
	T     float64 // 0 at the left edge, 1 at the right
	Amp   float64 // px
	Phase float64
}

// Point is a position in frame pixels.
type Point struct {
	X, Y float64
}

// EdgeNodes returns the deterministic control points of the edge.
func EdgeNodes(n int) []Node {
	nodes := make([]Node, n)
	for i := range nodes {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		nodes[i] = Node{
			T:     t,
			Amp:   float64(7 + (i*11)%9),
			Phase: math.Mod(float64(i)*1.37, math.Pi*2),
		}
	}
	return nodes
}

// Effect is one run of the burn over a frame of the given size.
type Effect struct {
	clock    choreo.Clock
	duration time.Duration
	width    float64
	height   float64
	nodes    []Node

	start   time.Time
	running bool
	done    bool
}

// NewEffect sizes an effect; sizes below one pixel clamp to one.
func NewEffect(clock choreo.Clock, width, height float64, duration time.Duration) *Effect {
	return &Effect{
		clock:    clock,
		duration: duration,
		width:    math.Max(1, width),
		height:   math.Max(1, height),
		nodes:    EdgeNodes(EdgeNodeCount),
	}
}

// Size returns the frame size in px.
func (e *Effect) Size() (float64, float64) { return e.width, e.height }

// Start begins burning now.
func (e *Effect) Start() {
	e.start = e.clock.Now()
	e.running = true
	e.done = false
}

// Cancel stops the animation where it is.
func (e *Effect) Cancel() { e.running = false }

// Running reports whether frames are still being produced.
func (e *Effect) Running() bool { return e.running }

// Done reports whether the text burned away completely.
func (e *Effect) Done() bool { return e.done }

// Progress maps elapsed time onto how much of the frame height is consumed.
func (e *Effect) Progress(elapsed time.Duration) float64 {
	if e.duration <= 0 {
		return 1
	}
	return motion.EaseOutPow(float64(elapsed)/float64(e.duration), progressPower)
}

// Edge computes the burn line for a progress value. The line undulates
// with time and stays inside the frame.
func (e *Effect) Edge(progress float64, elapsed time.Duration) []Point {
	ms := float64(elapsed) / float64(time.Millisecond)
	baseY := e.height - e.height*progress
	points := make([]Point, len(e.nodes))
	for i, n := range e.nodes {
		undulate := math.Sin(n.Phase+ms*0.006+n.T*math.Pi*2.8)*n.Amp +
			math.Sin(n.Phase*0.7+ms*0.003+n.T*math.Pi*8)*(n.Amp*0.35)
		points[i] = Point{
			X: n.T * e.width,
			Y: motion.Clamp(baseY+undulate, 0, e.height),
		}
	}
	return points
}

// Frame is the state to draw at one instant.
type Frame struct {
	Progress float64
	Edge     []Point
}

// Tick advances the effect and returns the frame to draw. ok is false once
// the effect has stopped.
func (e *Effect) Tick() (f Frame, ok bool) {
	if !e.running {
		return Frame{}, false
	}
	elapsed := e.clock.Now().Sub(e.start)
	progress := e.Progress(elapsed)
	f = Frame{Progress: progress, Edge: e.Edge(progress, elapsed)}
	if progress >= 1 {
		e.running = false
		e.done = true
	}
	return f, true
}

// EdgeAt interpolates the edge height at x.
func EdgeAt(edge []Point, x float64) float64 {
	if len(edge) == 0 {
		return 0
	}
	if x <= edge[0].X {
		return edge[0].Y
	}
	for i := 1; i < len(edge); i++ {
		a, b := edge[i-1], edge[i]
		if x <= b.X {
			if b.X == a.X {
				return b.Y
			}
			return a.Y + (b.Y-a.Y)*(x-a.X)/(b.X-a.X)
		}
	}
	return edge[len(edge)-1].Y
}

// WrapText breaks text into lines no wider than maxWidth. Line breaks are
// kept, empty lines stay blank and words wider than maxWidth are split by
// character.
func WrapText(text string, maxWidth float64, measure func(string) float64) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	paragraphs := strings.Split(normalized, "\n")

	var lines []string
	for _, paragraph := range paragraphs {
		if strings.TrimSpace(paragraph) == "" {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, word := range strings.Fields(paragraph) {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if measure(candidate) <= maxWidth {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
				if measure(word) <= maxWidth {
					line = word
					continue
				}
			}
			chunk := ""
			for _, r := range word {
				next := chunk + string(r)
				if measure(next) > maxWidth && chunk != "" {
					lines = append(lines, chunk)
					chunk = string(r)
				} else {
					chunk = next
				}
			}
			line = chunk
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
