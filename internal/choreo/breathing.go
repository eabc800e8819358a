package choreo

import (
	"time"

	"go.uber.org/zap"

	"github.com/iburimskiy/stillwave/internal/logging"
)

// Sphere is the renderer side of a breathing run.
type Sphere interface {
	Start(kickoff, start time.Time)
	Cancel()
}

// Stage is the element hosting the sphere. Its entry animation delays the
// first inhale.
type Stage interface {
	EntryAnimation() (delay, duration time.Duration)
}

// BreathingTiming configures the phase-label schedule.
type BreathingTiming struct {
	Inhale        time.Duration
	Exhale        time.Duration
	Rounds        int
	IntroDotHold  time.Duration
	PhaseLabelLag time.Duration
	Titles        TitleTiming
}

// Breathing arms the phase labels of one breathing run and starts the
// sphere. A run is started at most once until it is cancelled.
type Breathing struct {
	timing BreathingTiming
	sched  *Scheduler
	group  *Group
	titles *Transitioner
	title  *Title
	sphere Sphere
	stage  Stage
	log    *zap.Logger

	started     bool
	kickoff     time.Time
	firstInhale time.Time
}

// NewBreathing wires a choreographer. title and stage may be nil.
func NewBreathing(timing BreathingTiming, sched *Scheduler, sphere Sphere, stage Stage, title *Title, log *zap.Logger) *Breathing {
	log = logging.OrNop(log)
	group := sched.NewGroup()
	return &Breathing{
		timing: timing,
		sched:  sched,
		group:  group,
		titles: NewTransitioner(title, group, timing.Titles),
		title:  title,
		sphere: sphere,
		stage:  stage,
		log:    log,
	}
}

// Started reports whether a run is active.
func (b *Breathing) Started() bool { return b.started }

// FirstInhale is the resolved start of the first inhale of the current run.
func (b *Breathing) FirstInhale() time.Time { return b.firstInhale }

// Kickoff is the instant Start was called.
func (b *Breathing) Kickoff() time.Time { return b.kickoff }

// Armed counts pending timers of the current run.
func (b *Breathing) Armed() int { return b.group.Armed() }

// Transitioner exposes the title transitioner of the run.
func (b *Breathing) Transitioner() *Transitioner { return b.titles }

// Start resolves the first inhale, arms one label swap per phase boundary
// and starts the sphere. Calling Start on a started run does nothing.
func (b *Breathing) Start() {
	if b.started {
		return
	}
	b.started = true
	b.group.Cancel()
	b.titles.Invalidate()

	now := b.sched.Now()
	b.kickoff = now
	b.firstInhale = now

	if b.stage != nil {
		delay, duration := b.stage.EntryAnimation()
		b.firstInhale = now.Add(delay + duration + b.timing.IntroDotHold + b.timing.Titles.GenericFadeOut)
		b.armLabels(now)
	}

	b.log.Debug("breathing started",
		zap.Time("kickoff", b.kickoff),
		zap.Duration("preroll", b.firstInhale.Sub(now)),
		zap.Int("timers", b.group.Armed()))
	b.sphere.Start(b.kickoff, b.firstInhale)
}

func (b *Breathing) armLabels(now time.Time) {
	cycle := b.timing.Inhale + b.timing.Exhale
	lag := b.timing.PhaseLabelLag

	b.scheduleSwap(now, InhaleLabel, b.firstInhale.Add(lag), b.timing.Titles.GenericFadeOut)
	for round := 0; round < b.timing.Rounds; round++ {
		inhaleAt := b.firstInhale.Add(time.Duration(round) * cycle)
		exhaleAt := inhaleAt.Add(b.timing.Inhale)
		if round > 0 {
			b.scheduleSwap(now, InhaleLabel, inhaleAt.Add(lag), b.timing.Titles.PhaseFadeOut)
		}
		b.scheduleSwap(now, ExhaleLabel, exhaleAt.Add(lag), b.timing.Titles.PhaseFadeOut)
	}
}

// scheduleSwap starts the fade lead before swapAt so the new text lands on
// the boundary.
func (b *Breathing) scheduleSwap(now time.Time, text string, swapAt time.Time, lead time.Duration) {
	if b.title == nil {
		return
	}
	delay := max(0, swapAt.Sub(now)-lead)
	b.group.After(delay, func() { b.titles.Transition(text) })
}

// Cancel clears every timer of the run, invalidates in-flight transitions
// and stops the sphere. Start may be called again afterwards.
func (b *Breathing) Cancel() {
	n := b.group.Cancel()
	b.titles.Invalidate()
	b.sphere.Cancel()
	b.started = false
	b.log.Debug("breathing cancelled", zap.Int("timers", n))
}
