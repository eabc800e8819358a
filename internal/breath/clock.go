package breath

import (
	"time"

	"github.com/iburimskiy/stillwave/internal/motion"
)

// Phase is the renderer state derived from elapsed time.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseIntro
	PhaseInhale
	PhaseExhale
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIntro:
		return "intro"
	case PhaseInhale:
		return "inhale"
	case PhaseExhale:
		return "exhale"
	case PhaseComplete:
		return "complete"
	default:
		return "idle"
	}
}

// Clock anchors a breathing run. Start is the instant the first inhale
// begins and may lie after Kickoff.
type Clock struct {
	Kickoff time.Time
	Start   time.Time
	Inhale  time.Duration
	Exhale  time.Duration
	Rounds  int
}

// Cycle is one inhale plus one exhale.
func (c Clock) Cycle() time.Duration { return c.Inhale + c.Exhale }

// Total is the length of the whole breathing sequence.
func (c Clock) Total() time.Duration { return c.Cycle() * time.Duration(c.Rounds) }

// Elapsed is negative during the intro.
func (c Clock) Elapsed(now time.Time) time.Duration { return now.Sub(c.Start) }

// PhaseState is the breath classification of one instant.
type PhaseState struct {
	Phase    Phase
	Round    int     // 1-based, capped at Rounds
	Progress float64 // progress through the current phase, [0,1]
	Amount   float64 // eased breath envelope, 1 = full inhale
}

// Classify maps elapsed time onto intro, inhale, exhale or complete.
func (c Clock) Classify(elapsed time.Duration) PhaseState {
	if elapsed < 0 {
		return PhaseState{Phase: PhaseIntro, Round: 1}
	}
	cycle := c.Cycle()
	if cycle <= 0 || c.Rounds <= 0 || elapsed >= c.Total() {
		return PhaseState{Phase: PhaseComplete, Round: c.Rounds, Progress: 1}
	}

	cycleIndex := int(elapsed / cycle)
	cycleTime := elapsed % cycle

	phase := PhaseExhale
	phaseTime := cycleTime - c.Inhale
	phaseDuration := c.Exhale
	if cycleTime < c.Inhale {
		phase = PhaseInhale
		phaseTime = cycleTime
		phaseDuration = c.Inhale
	}

	progress := motion.Clamp01(float64(phaseTime) / float64(phaseDuration))
	eased := motion.EaseInOutCubic(progress)
	amount := eased
	if phase == PhaseExhale {
		amount = 1 - eased
	}

	return PhaseState{
		Phase:    phase,
		Round:    min(cycleIndex+1, c.Rounds),
		Progress: progress,
		Amount:   amount,
	}
}
