package choreo

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func testNarrationTiming() NarrationTiming {
	return NarrationTiming{
		FadeOut:       ms(1200),
		Reveal:        ms(1600),
		HighlightLead: ms(2200),
		FigureDelay:   ms(950),
	}
}

func testSteps() []Step {
	return []Step{
		{Text: "Well done.", Hold: ms(2500)},
		{Text: "Now, last stop.", Hold: ms(2500)},
		{Text: "I’ll guide you through a quick body scan.", Hold: ms(2800), ShowFigure: true},
		{Text: "Notice any sensations in your feet.", Hold: ms(15000), Highlights: []int{9, 10}},
		{Text: "Notice your stomach.", Hold: ms(15000), Highlights: []int{6},
			Mid: &MidText{After: ms(7000), Text: "Feel its emptiness or fullness."}},
		{Text: "Send gratitude to your vessel, your home.", Hold: ms(4800), Gratitude: true},
	}
}

func offsets(tl Timeline) []time.Duration {
	out := make([]time.Duration, 0, len(tl))
	for _, e := range tl {
		out = append(out, e.Offset)
	}
	return out
}

func TestPlanNarrationOffsets(t *testing.T) {
	tl := PlanNarration(testSteps(), testNarrationTiming())

	reveals := tl.Find(ActionReveal)
	want := []time.Duration{ms(0), ms(3700), ms(7400), ms(11400), ms(27600), ms(35800), ms(43800)}
	if diff := cmp.Diff(want, offsets(reveals)); diff != "" {
		t.Errorf("reveal offsets mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Feel its emptiness or fullness.", reveals[5].Action.Text)

	assert.Equal(t, []time.Duration{ms(8350)}, offsets(tl.Find(ActionShowFigure)))
	assert.Equal(t, []time.Duration{ms(24200), ms(40400)}, offsets(tl.Find(ActionClearHighlights)))
	assert.Equal(t, []time.Duration{ms(43800)}, offsets(tl.Find(ActionGratitude)))

	finish := tl.Find(ActionFinish)
	if assert.Len(t, finish, 1) {
		assert.Equal(t, ms(43800+4800+1200), finish[0].Offset)
		assert.Equal(t, finish[0].Offset, tl.End())
	}

	highlights := tl.Find(ActionHighlight)
	if assert.Len(t, highlights, 2) {
		assert.Equal(t, []int{9, 10}, highlights[0].Action.Indexes)
		assert.Equal(t, ms(11400), highlights[0].Offset)
	}
}

func TestPlanNarrationIsSorted(t *testing.T) {
	tl := PlanNarration(testSteps(), testNarrationTiming())
	for i := 1; i < len(tl); i++ {
		assert.LessOrEqual(t, tl[i-1].Offset, tl[i].Offset)
	}
}

func TestPlanNarrationClampsHighlightLead(t *testing.T) {
	tl := PlanNarration([]Step{{Text: "Quick.", Hold: ms(1000), Highlights: []int{1}}}, testNarrationTiming())
	clears := tl.Find(ActionClearHighlights)
	if assert.Len(t, clears, 1) {
		assert.Equal(t, time.Duration(0), clears[0].Offset)
	}
}

func TestPlanPrelude(t *testing.T) {
	tl := PlanPrelude(PreludeTiming{
		BurnField:      ms(6000),
		FadeOutDelay:   ms(400),
		FadeOut:        ms(1200),
		Reveal:         ms(1600),
		GuidanceReveal: ms(2200),
		StageReveal:    ms(1600),
		HoldAfterGone:  ms(900),
		GoneText:       "It’s gone forever.",
		GuidanceText:   "Let’s take three deep breaths together.",
	})

	want := Timeline{
		{Offset: ms(400), Action: Action{Kind: ActionFade, Duration: ms(1200)}},
		{Offset: ms(1600), Action: Action{Kind: ActionReveal, Text: "It’s gone forever.", Duration: ms(1600)}},
		{Offset: ms(4100), Action: Action{Kind: ActionFade, Duration: ms(1200)}},
		{Offset: ms(5300), Action: Action{Kind: ActionReveal, Text: "Let’s take three deep breaths together.", Duration: ms(2200)}},
		{Offset: ms(6000), Action: Action{Kind: ActionHideBurnFrame}},
		{Offset: ms(7750), Action: Action{Kind: ActionShowStage, Duration: ms(1600)}},
		{Offset: ms(8000), Action: Action{Kind: ActionFade, Duration: ms(1200)}},
		{Offset: ms(9470), Action: Action{Kind: ActionStartBreathing}},
	}
	if diff := cmp.Diff(want, tl); diff != "" {
		t.Errorf("prelude mismatch (-want +got):\n%s", diff)
	}
}

func TestTimelineArm(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewScheduler(clock)
	g := s.NewGroup()

	tl := Timeline{
		{Offset: ms(200), Action: Action{Kind: ActionFade}},
		{Offset: ms(100), Action: Action{Kind: ActionReveal, Text: "a"}},
	}
	var got []ActionKind
	assert.Equal(t, 2, tl.Arm(g, epoch, func(a Action) { got = append(got, a.Kind) }))
	assert.Equal(t, 2, g.Armed())

	step(clock, s, ms(300))
	assert.Equal(t, []ActionKind{ActionReveal, ActionFade}, got)
	assert.Equal(t, "finish", ActionFinish.String())
}
