package choreo

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// ActionKind names what a timeline entry does when it fires.
type ActionKind int

const (
	ActionReveal ActionKind = iota
	ActionFade
	ActionHighlight
	ActionClearHighlights
	ActionShowFigure
	ActionGratitude
	ActionHideBurnFrame
	ActionShowStage
	ActionStartBreathing
	ActionFinish
)

var actionNames = map[ActionKind]string{
	ActionReveal:          "reveal",
	ActionFade:            "fade",
	ActionHighlight:       "highlight",
	ActionClearHighlights: "clear-highlights",
	ActionShowFigure:      "show-figure",
	ActionGratitude:       "gratitude",
	ActionHideBurnFrame:   "hide-burn-frame",
	ActionShowStage:       "show-stage",
	ActionStartBreathing:  "start-breathing",
	ActionFinish:          "finish",
}

func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// Action is the payload of a timeline entry.
type Action struct {
	Kind     ActionKind
	Text     string
	Duration time.Duration
	Indexes  []int
}

// Entry fires Action at Offset from the timeline anchor.
type Entry struct {
	Offset time.Duration
	Action Action
}

// Timeline is an ordered, precomputed schedule.
type Timeline []Entry

func (tl *Timeline) add(offset time.Duration, a Action) {
	*tl = append(*tl, Entry{Offset: max(0, offset), Action: a})
}

// Sort orders entries by offset, keeping insertion order for ties.
func (tl Timeline) Sort() {
	slices.SortStableFunc(tl, func(a, b Entry) int { return cmp.Compare(a.Offset, b.Offset) })
}

// End is the offset of the last entry.
func (tl Timeline) End() time.Duration {
	var end time.Duration
	for _, e := range tl {
		end = max(end, e.Offset)
	}
	return end
}

// Find returns the entries of one kind.
func (tl Timeline) Find(kind ActionKind) Timeline {
	var out Timeline
	for _, e := range tl {
		if e.Action.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Arm schedules every entry in g relative to anchor and returns the number
// of timers armed.
func (tl Timeline) Arm(g *Group, anchor time.Time, exec func(Action)) int {
	for _, e := range tl {
		a := e.Action
		g.At(anchor.Add(e.Offset), func() { exec(a) })
	}
	return len(tl)
}
