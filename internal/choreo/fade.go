package choreo

import (
	"strings"
	"time"

	"github.com/iburimskiy/stillwave/internal/motion"
)

// Visibility is the opacity state of a view element.
type Visibility int

const (
	Shown Visibility = iota
	Hidden
	Fading
	Revealing
)

func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "hidden"
	case Fading:
		return "fading"
	case Revealing:
		return "revealing"
	default:
		return "shown"
	}
}

// Fade is an element whose opacity animates between hidden and shown.
type Fade struct {
	State    Visibility
	Since    time.Time
	Duration time.Duration
}

// Show makes the element fully visible immediately.
func (f *Fade) Show() { f.State = Shown }

// Hide removes the element immediately.
func (f *Fade) Hide() { f.State = Hidden }

// FadeOut starts a fade to transparent lasting d.
func (f *Fade) FadeOut(now time.Time, d time.Duration) {
	f.State, f.Since, f.Duration = Fading, now, d
}

// Reveal starts a fade from transparent lasting d.
func (f *Fade) Reveal(now time.Time, d time.Duration) {
	f.State, f.Since, f.Duration = Revealing, now, d
}

// Settle ends a reveal; other states are left alone.
func (f *Fade) Settle() {
	if f.State == Revealing {
		f.State = Shown
	}
}

// Visible reports whether the element takes part in drawing.
func (f *Fade) Visible() bool { return f.State != Hidden }

// Alpha is the element opacity at now.
func (f *Fade) Alpha(now time.Time) float64 {
	switch f.State {
	case Hidden:
		return 0
	case Fading:
		return 1 - motion.EaseInOutCubic(f.progress(now))
	case Revealing:
		return motion.EaseInOutCubic(f.progress(now))
	default:
		return 1
	}
}

func (f *Fade) progress(now time.Time) float64 {
	if f.Duration <= 0 {
		return 1
	}
	return motion.Clamp01(float64(now.Sub(f.Since)) / float64(f.Duration))
}

// Phase labels get the short fade pair.
const (
	InhaleLabel = "Inhale"
	ExhaleLabel = "Exhale"
)

// IsPhaseLabel reports whether text is one of the breath phase labels.
func IsPhaseLabel(text string) bool {
	text = strings.TrimSpace(text)
	return text == InhaleLabel || text == ExhaleLabel
}

// Title is a text element with fade state.
type Title struct {
	Fade
	Text       string
	PhaseLabel bool
}

// NewTitle creates a shown title.
func NewTitle(text string) *Title {
	return &Title{Text: text, PhaseLabel: IsPhaseLabel(text)}
}

// SetText replaces the text and shows the title without animation.
func (t *Title) SetText(text string) {
	t.Text = text
	t.PhaseLabel = IsPhaseLabel(text)
	t.Show()
}

// Swap replaces the text and starts its reveal.
func (t *Title) Swap(now time.Time, text string, reveal time.Duration) {
	t.Text = text
	t.PhaseLabel = IsPhaseLabel(text)
	t.Reveal(now, reveal)
}
