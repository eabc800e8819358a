package choreo

import (
	"strings"
	"time"
)

// TitleTiming holds the fade/reveal pairs of text transitions.
type TitleTiming struct {
	GenericFadeOut time.Duration
	GenericReveal  time.Duration
	PhaseFadeOut   time.Duration
	PhaseReveal    time.Duration
}

// FadeOutFor is the fade used when leaving text.
func (tt TitleTiming) FadeOutFor(text string) time.Duration {
	if IsPhaseLabel(text) {
		return tt.PhaseFadeOut
	}
	return tt.GenericFadeOut
}

// RevealFor is the reveal used when entering text.
func (tt TitleTiming) RevealFor(text string) time.Duration {
	if IsPhaseLabel(text) {
		return tt.PhaseReveal
	}
	return tt.GenericReveal
}

// Transitioner swaps the text of one title through fade out, swap and
// reveal. Each call takes a new token and callbacks of older calls abort.
type Transitioner struct {
	title  *Title
	group  *Group
	timing TitleTiming
	token  uint64
}

// NewTransitioner binds a title to a timer group. A nil title turns every
// transition into a no-op.
func NewTransitioner(title *Title, group *Group, timing TitleTiming) *Transitioner {
	return &Transitioner{title: title, group: group, timing: timing}
}

// Token returns the latest token.
func (tr *Transitioner) Token() uint64 { return tr.token }

// Invalidate makes every in-flight callback stale.
func (tr *Transitioner) Invalidate() { tr.token++ }

// Transition moves the title to next.
func (tr *Transitioner) Transition(next string) {
	if tr.title == nil {
		return
	}
	current := strings.TrimSpace(tr.title.Text)
	if current == next && tr.title.State != Fading {
		return
	}

	fadeOut := tr.timing.FadeOutFor(current)
	reveal := tr.timing.RevealFor(next)

	tr.token++
	token := tr.token
	tr.title.PhaseLabel = IsPhaseLabel(current)
	tr.title.FadeOut(tr.group.Now(), fadeOut)

	tr.group.After(fadeOut, func() {
		if token != tr.token {
			return
		}
		tr.title.Swap(tr.group.Now(), next, reveal)
		tr.group.After(reveal, func() {
			if token != tr.token {
				return
			}
			tr.title.Settle()
		})
	})
}
