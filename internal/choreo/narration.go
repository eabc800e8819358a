package choreo

import "time"

// MidText swaps the step text once while the step is held.
type MidText struct {
	After time.Duration
	Text  string
}

// Step is one narration line.
type Step struct {
	Text       string
	Hold       time.Duration // reveal start to fade start
	Reveal     time.Duration // zero uses the narration default
	Highlights []int         // body figure regions lit while the step holds
	Mid        *MidText
	ShowFigure bool
	Gratitude  bool
}

// NarrationTiming holds the constants shared by every step.
type NarrationTiming struct {
	FadeOut       time.Duration
	Reveal        time.Duration
	HighlightLead time.Duration // highlights fade this long before the text
	FigureDelay   time.Duration
}

// PlanNarration lays steps end to end: each step reveals, holds, fades, and
// the next one reveals once the fade has finished. The timeline ends with a
// finish entry after the last fade.
func PlanNarration(steps []Step, timing NarrationTiming) Timeline {
	var tl Timeline
	var at time.Duration
	for _, s := range steps {
		reveal := s.Reveal
		if reveal <= 0 {
			reveal = timing.Reveal
		}
		tl.add(at, Action{Kind: ActionReveal, Text: s.Text, Duration: reveal})
		if len(s.Highlights) > 0 {
			tl.add(at, Action{Kind: ActionHighlight, Indexes: append([]int(nil), s.Highlights...)})
		}
		if s.Gratitude {
			tl.add(at, Action{Kind: ActionGratitude})
		}
		if s.ShowFigure {
			tl.add(at+timing.FigureDelay, Action{Kind: ActionShowFigure})
		}
		if s.Mid != nil {
			midFade := at + s.Mid.After
			tl.add(midFade, Action{Kind: ActionFade, Duration: timing.FadeOut})
			tl.add(midFade+timing.FadeOut, Action{Kind: ActionReveal, Text: s.Mid.Text, Duration: timing.Reveal})
		}

		fadeAt := at + s.Hold
		if len(s.Highlights) > 0 {
			tl.add(fadeAt-timing.HighlightLead, Action{Kind: ActionClearHighlights})
		}
		tl.add(fadeAt, Action{Kind: ActionFade, Duration: timing.FadeOut})
		at = fadeAt + timing.FadeOut
	}
	tl.add(at, Action{Kind: ActionFinish})
	tl.Sort()
	return tl
}

// PreludeTiming drives the burn ritual up to the first breath.
type PreludeTiming struct {
	BurnField      time.Duration
	FadeOutDelay   time.Duration
	FadeOut        time.Duration
	Reveal         time.Duration
	GuidanceReveal time.Duration
	StageReveal    time.Duration
	HoldAfterGone  time.Duration
	GoneText       string
	GuidanceText   string
}

const (
	stageRevealPad   = 250 * time.Millisecond
	guidanceFadePad  = 500 * time.Millisecond
	startAfterFade   = 180 * time.Millisecond
	startAfterReveal = 120 * time.Millisecond
)

// PlanPrelude schedules the burn ritual: the worry burns away, the title
// confirms it, guides into breathing, and the breathing stage takes over
// once both the guidance fade and the stage reveal have finished.
func PlanPrelude(t PreludeTiming) Timeline {
	var tl Timeline
	tl.add(t.BurnField, Action{Kind: ActionHideBurnFrame})
	tl.add(t.FadeOutDelay, Action{Kind: ActionFade, Duration: t.FadeOut})
	tl.add(t.FadeOutDelay+t.FadeOut, Action{Kind: ActionReveal, Text: t.GoneText, Duration: t.Reveal})

	introStart := t.FadeOutDelay + t.FadeOut + t.Reveal + t.HoldAfterGone
	introSwap := introStart + t.FadeOut
	stageAt := introSwap + t.GuidanceReveal + stageRevealPad
	guidanceFadeAt := introSwap + t.GuidanceReveal + guidanceFadePad
	startAt := max(guidanceFadeAt+t.FadeOut+startAfterFade, stageAt+t.StageReveal+startAfterReveal)

	tl.add(introStart, Action{Kind: ActionFade, Duration: t.FadeOut})
	tl.add(introSwap, Action{Kind: ActionReveal, Text: t.GuidanceText, Duration: t.GuidanceReveal})
	tl.add(stageAt, Action{Kind: ActionShowStage, Duration: t.StageReveal})
	tl.add(guidanceFadeAt, Action{Kind: ActionFade, Duration: t.FadeOut})
	tl.add(startAt, Action{Kind: ActionStartBreathing})
	tl.Sort()
	return tl
}
