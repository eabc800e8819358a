package choreo

import (
	"time"

	"go.uber.org/zap"

	"github.com/iburimskiy/stillwave/internal/logging"
)

// StageView is the breathing stage: a fading element whose entry animation
// is known up front.
type StageView struct {
	Fade
	EntryDelay    time.Duration
	EntryDuration time.Duration
}

func (s *StageView) EntryAnimation() (time.Duration, time.Duration) {
	return s.EntryDelay, s.EntryDuration
}

// BurnEffect is the optional text-burning animation of the ritual.
type BurnEffect interface {
	Start()
	Cancel()
}

// JourneyState tracks which part of the flow is on screen.
type JourneyState int

const (
	JourneyReady JourneyState = iota
	JourneyBurning
	JourneyBreathing
	JourneyNarrating
	JourneyFinished
)

func (s JourneyState) String() string {
	switch s {
	case JourneyBurning:
		return "burning"
	case JourneyBreathing:
		return "breathing"
	case JourneyNarrating:
		return "narrating"
	case JourneyFinished:
		return "finished"
	default:
		return "ready"
	}
}

// Views are the elements the journey drives. Every field is required.
type Views struct {
	Title      *Title
	PhaseTitle *Title
	BurnFrame  *Fade
	InputStack *Fade
	Stage      *StageView
}

// JourneyConfig is the full script of the flow.
type JourneyConfig struct {
	Prelude   PreludeTiming
	Narration NarrationTiming
	Steps     []Step
}

// Journey runs the burn ritual, hands over to the breathing run and narrates
// the body scan once the sphere reports completion.
type Journey struct {
	cfg       JourneyConfig
	sched     *Scheduler
	group     *Group
	views     Views
	breathing *Breathing
	log       *zap.Logger

	figure Figure
	glow   Glow
	burn   BurnEffect

	prelude   Timeline
	narration Timeline
	state     JourneyState
	onFinish  func()

	// titleToken invalidates pending settles of earlier narration reveals.
	titleToken int
}

// NewJourney plans both timelines once.
func NewJourney(cfg JourneyConfig, sched *Scheduler, views Views, breathing *Breathing, log *zap.Logger) *Journey {
	log = logging.OrNop(log)
	return &Journey{
		cfg:       cfg,
		sched:     sched,
		group:     sched.NewGroup(),
		views:     views,
		breathing: breathing,
		log:       log,
		prelude:   PlanPrelude(cfg.Prelude),
		narration: PlanNarration(cfg.Steps, cfg.Narration),
	}
}

// WithFigure attaches the body figure. Pass a nil interface when absent.
func (j *Journey) WithFigure(f Figure) *Journey {
	j.figure = f
	return j
}

// WithGlow attaches the gratitude gradient.
func (j *Journey) WithGlow(g Glow) *Journey {
	j.glow = g
	return j
}

// WithBurn attaches the burn effect.
func (j *Journey) WithBurn(b BurnEffect) *Journey {
	j.burn = b
	return j
}

// OnFinish registers the callback fired when the last line has faded.
func (j *Journey) OnFinish(fn func()) { j.onFinish = fn }

// State returns the current part of the flow.
func (j *Journey) State() JourneyState { return j.state }

// Prelude returns the planned burn-ritual timeline.
func (j *Journey) Prelude() Timeline { return j.prelude }

// Narration returns the planned body-scan timeline.
func (j *Journey) Narration() Timeline { return j.narration }

// Armed counts pending journey timers, breathing timers excluded.
func (j *Journey) Armed() int { return j.group.Armed() }

// Burn starts the ritual. It reports false when the ritual already runs.
func (j *Journey) Burn() bool {
	if j.state != JourneyReady {
		return false
	}
	j.state = JourneyBurning
	if j.burn != nil {
		j.burn.Start()
	}
	if j.figure != nil {
		j.figure.Reset()
	}
	if j.glow != nil {
		j.glow.ResetGlow()
	}
	n := j.prelude.Arm(j.group, j.sched.Now(), j.exec)
	j.log.Info("burn ritual started", zap.Int("timers", n))
	return true
}

// BreathingComplete fades the breathing views and starts the narration once
// they are gone. Calls outside the breathing state are ignored.
func (j *Journey) BreathingComplete() {
	if j.state != JourneyBreathing {
		return
	}
	j.state = JourneyNarrating
	fade := j.cfg.Narration.FadeOut
	now := j.sched.Now()
	j.views.PhaseTitle.PhaseLabel = IsPhaseLabel(j.views.PhaseTitle.Text)
	j.views.PhaseTitle.FadeOut(now, fade)
	j.views.Stage.FadeOut(now, fade)

	j.group.After(fade, func() {
		j.views.PhaseTitle.Hide()
		j.views.PhaseTitle.Text = ""
		j.views.Stage.Hide()
		n := j.narration.Arm(j.group, j.sched.Now(), j.exec)
		j.log.Info("narration started", zap.Int("timers", n))
	})
}

// Cancel tears the flow down: every pending timer of the journey, the
// breathing run and the attached figure is cleared, the burn effect stops and
// the figure and glow return to hidden.
func (j *Journey) Cancel() {
	n := j.group.Cancel()
	j.titleToken++
	j.breathing.Cancel()
	if j.burn != nil {
		j.burn.Cancel()
	}
	if j.figure != nil {
		j.figure.Reset()
	}
	if j.glow != nil {
		j.glow.ResetGlow()
	}
	j.log.Info("journey cancelled", zap.Stringer("state", j.state), zap.Int("timers", n))
	j.state = JourneyReady
}

func (j *Journey) exec(a Action) {
	now := j.sched.Now()
	title := j.views.Title
	switch a.Kind {
	case ActionReveal:
		j.titleToken++
		token := j.titleToken
		title.Swap(now, a.Text, a.Duration)
		j.group.After(a.Duration, func() {
			if token == j.titleToken {
				title.Settle()
			}
		})
	case ActionFade:
		j.titleToken++
		title.FadeOut(now, a.Duration)
	case ActionHideBurnFrame:
		if j.burn != nil {
			j.burn.Cancel()
		}
		j.views.BurnFrame.Hide()
	case ActionShowStage:
		title.Settle()
		j.views.InputStack.Hide()
		j.views.Stage.Reveal(now, a.Duration)
	case ActionStartBreathing:
		title.Hide()
		j.views.PhaseTitle.SetText("")
		j.views.Stage.Settle()
		j.state = JourneyBreathing
		j.breathing.Start()
	case ActionHighlight:
		if j.figure != nil {
			j.figure.SetHighlights(a.Indexes)
		}
	case ActionClearHighlights:
		if j.figure != nil {
			j.figure.ClearHighlights()
		}
	case ActionShowFigure:
		if j.figure != nil {
			j.figure.RevealFigure()
		}
	case ActionGratitude:
		if j.glow != nil {
			j.glow.RevealGlow()
		}
	case ActionFinish:
		j.state = JourneyFinished
		j.log.Info("journey finished")
		if j.onFinish != nil {
			j.onFinish()
		}
	}
	j.log.Debug("journey action", zap.Stringer("kind", a.Kind), zap.String("text", a.Text))
}
