// Package game is the ebiten frontend: the burn ritual, the breathing
// sphere, the guided body scan and the finish screen.
package game

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/ncruces/zenity"
	"go.uber.org/zap"

	"github.com/iburimskiy/stillwave/internal/audio"
	"github.com/iburimskiy/stillwave/internal/breath"
	"github.com/iburimskiy/stillwave/internal/burn"
	"github.com/iburimskiy/stillwave/internal/choreo"
	"github.com/iburimskiy/stillwave/internal/config"
	"github.com/iburimskiy/stillwave/internal/logging"
	"github.com/iburimskiy/stillwave/internal/store"
)

// Mode selects which flow the window runs.
type Mode int

const (
	// ModeJourney is the full flow: burn ritual, breathing, body scan.
	ModeJourney Mode = iota
	// ModeBreathe starts the breathing run right away.
	ModeBreathe
)

const (
	burnFrameWidth  = 560
	burnFrameHeight = 200
	burnFramePad    = 16
	inputLimit      = 400
	titleScale      = 2

	promptText = "What’s weighing on you? Write it down, then let it burn."
)

// SessionStore records finished sessions.
type SessionStore interface {
	RecordSession(ctx context.Context, minutes float64, breaths int) (store.Session, store.Stats, error)
}

// Options wires a Game. Only Config is required.
type Options struct {
	Config   config.Config
	Mode     Mode
	Clock    choreo.Clock
	Rand     *rand.Rand
	Player   *audio.Player
	Store    SessionStore
	Log      *zap.Logger
	PickFile func() (string, error)
}

type Game struct {
	cfg      config.Config
	mode     Mode
	clock    choreo.Clock
	sched    *choreo.Scheduler
	log      *zap.Logger
	player   *audio.Player
	store    SessionStore
	pickFile func() (string, error)

	renderer  *breath.Renderer
	sphere    *sphereRunner
	breathing *choreo.Breathing
	journey   *choreo.Journey
	figure    *choreo.Highlights
	glow      *choreo.GratitudeGlow
	burn      *burn.Effect

	title      *choreo.Title
	phaseTitle *choreo.Title
	burnFrame  choreo.Fade
	inputStack choreo.Fade
	stage      choreo.StageView

	text        textBuffer
	burnLines   []string
	burnState   burn.Frame
	burnDirty   bool
	burnButton  button
	audioButton button
	chars       []rune

	width, height int
	dpr           float64
	level         float64
	elapsed       float64

	completed bool
	finished  bool
	session   *store.Session
	stats     *store.Stats
	lastErr   error

	sphereImg *ebiten.Image
	burnImg   *ebiten.Image
	textCache map[string]*ebiten.Image
}

// New builds every screen element and wires the choreography.
func New(opts Options) *Game {
	cfg := opts.Config
	clock := opts.Clock
	if clock == nil {
		clock = choreo.SystemClock{}
	}
	rng := opts.Rand
	if rng == nil {
		seed := cfg.Sphere.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	log := logging.OrNop(opts.Log)
	pick := opts.PickFile
	if pick == nil {
		pick = selectAmbientFile
	}

	g := &Game{
		cfg:       cfg,
		mode:      opts.Mode,
		clock:     clock,
		sched:     choreo.NewScheduler(clock),
		log:       log,
		player:    opts.Player,
		store:     opts.Store,
		pickFile:  pick,
		text:      textBuffer{limit: inputLimit},
		dpr:       1,
		textCache: map[string]*ebiten.Image{},
	}
	g.title = choreo.NewTitle(promptText)
	g.phaseTitle = choreo.NewTitle("")
	g.phaseTitle.Hide()
	g.stage = choreo.StageView{EntryDelay: cfg.Breathing.StageDelay, EntryDuration: cfg.Breathing.StageDuration}
	g.stage.Hide()

	g.renderer = breath.NewRenderer(cfg.BreathOptions(), rng)
	g.renderer.OnComplete(g.breathingComplete)
	g.sphere = newSphereRunner(g.renderer)
	g.breathing = choreo.NewBreathing(cfg.BreathingTiming(), g.sched, g.sphere, &g.stage, g.phaseTitle, log.Named("breathing"))

	g.figure = choreo.NewHighlights(g.sched, cfg.HighlightTiming())
	g.figure.Load(len(bodyRegions))
	g.glow = choreo.NewGratitudeGlow(clock, cfg.Figure.GlowReveal)
	g.burn = burn.NewEffect(clock, burnFrameWidth, burnFrameHeight, cfg.Prelude.BurnField)

	if g.mode == ModeJourney {
		views := choreo.Views{
			Title:      g.title,
			PhaseTitle: g.phaseTitle,
			BurnFrame:  &g.burnFrame,
			InputStack: &g.inputStack,
			Stage:      &g.stage,
		}
		g.journey = choreo.NewJourney(cfg.JourneyConfig(), g.sched, views, g.breathing, log.Named("journey")).
			WithFigure(g.figure).
			WithGlow(g.glow).
			WithBurn(g.burn)
		g.journey.OnFinish(g.finish)
	} else {
		g.title.Hide()
	}

	g.resize(cfg.Window.Width, cfg.Window.Height, 1)
	return g
}

func selectAmbientFile() (string, error) {
	return zenity.SelectFile(
		zenity.Title("Choose an ambient track"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: []string{"*.wav", "*.mp3", "*.flac"},
		}},
	)
}

func (g *Game) Update() error {
	in := pollInput(g.chars)
	g.chars = in.chars
	return g.step(in)
}

// step advances one tick with the given input.
func (g *Game) step(in input) error {
	if in.quit {
		return ebiten.Termination
	}
	g.elapsed += 1.0 / 60.0

	if g.audioButton.update(in) || in.open {
		g.openAmbient()
	}
	if in.pause && g.player != nil {
		g.player.TogglePause()
	}
	burnClicked := g.burnButton.update(in)

	switch {
	case g.finished:
		if in.enter {
			g.restart()
		}
	case g.journey != nil && g.journey.State() == choreo.JourneyReady:
		g.text.append(in.chars)
		if in.newline {
			g.text.newline()
		}
		if in.backspace {
			g.text.backspace()
		}
		if (in.enter || burnClicked) && !g.text.blank() {
			g.startBurn()
		}
	case g.mode == ModeBreathe && !g.breathing.Started() && !g.completed:
		g.startBreathing()
	case g.cfg.ReducedMotion && g.breathing.Started() && !g.completed && in.enter:
		// Reduced motion never animates to completion; Enter moves on.
		g.breathingComplete()
	}

	g.sched.Poll()
	g.sphere.tick(g.clock.Now())
	if f, ok := g.burn.Tick(); ok {
		g.burnState = f
	}
	if g.player != nil {
		g.level = g.player.Level()
	}
	return nil
}

func (g *Game) startBurn() {
	g.burnLines = burn.WrapText(g.text.String(), burnFrameWidth-2*burnFramePad, func(s string) float64 {
		return textWidth(s, 1)
	})
	g.burnState = burn.Frame{}
	g.burnDirty = true
	if g.journey.Burn() {
		g.log.Info("burning", zap.Int("lines", len(g.burnLines)))
	}
}

func (g *Game) startBreathing() {
	g.stage.Reveal(g.clock.Now(), g.stage.EntryDuration)
	g.phaseTitle.SetText("")
	g.breathing.Start()
}

func (g *Game) breathingComplete() {
	if g.completed {
		return
	}
	g.completed = true
	g.chime()
	if g.journey != nil {
		g.journey.BreathingComplete()
		return
	}
	fade := g.cfg.Narration.FadeOut
	now := g.clock.Now()
	g.phaseTitle.FadeOut(now, fade)
	g.stage.FadeOut(now, fade)
	g.sched.After(fade, g.finish)
}

func (g *Game) chime() {
	if g.player == nil || !g.cfg.Audio.Chime {
		return
	}
	if err := g.player.Chime(); err != nil {
		g.log.Debug("chime skipped", zap.Error(err))
	}
}

// finish records the session and shows the finish screen.
func (g *Game) finish() {
	if g.finished {
		return
	}
	g.finished = true
	g.title.Hide()
	g.phaseTitle.Hide()
	g.stage.Hide()

	b := g.cfg.Breathing
	minutes := ((b.Inhale + b.Exhale) * time.Duration(b.Rounds)).Minutes()
	if g.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	session, stats, err := g.store.RecordSession(ctx, minutes, b.Rounds)
	if err != nil {
		g.lastErr = err
		g.log.Error("record session failed", zap.Error(err))
		return
	}
	g.session, g.stats = &session, &stats
	g.log.Info("session recorded",
		zap.String("id", session.ID),
		zap.Float64("minutes", minutes),
		zap.Int("streak_days", stats.StreakDays))
}

// restart returns to the first screen of the current mode.
func (g *Game) restart() {
	if g.journey != nil {
		g.journey.Cancel()
	} else {
		g.breathing.Cancel()
		g.figure.Reset()
		g.glow.ResetGlow()
		g.burn.Cancel()
	}
	g.sphere.reset()

	g.finished, g.completed = false, false
	g.session, g.stats = nil, nil
	g.text.reset()
	g.burnLines = nil
	g.burnState = burn.Frame{}
	g.phaseTitle.Hide()
	g.stage.Hide()
	g.burnFrame.Show()
	g.inputStack.Show()
	if g.mode == ModeJourney {
		g.title.SetText(promptText)
	}
}

func (g *Game) openAmbient() {
	if g.player == nil || !g.player.Ready() {
		g.lastErr = audio.ErrNotInitialized
		return
	}
	path, err := g.pickFile()
	if err != nil {
		if !errors.Is(err, zenity.ErrCanceled) {
			g.lastErr = err
		}
		return
	}
	if err := g.player.LoadAndPlay(path); err != nil {
		g.lastErr = err
		g.log.Warn("ambient track failed", zap.String("path", path), zap.Error(err))
		return
	}
	g.lastErr = nil
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.layout(outsideWidth, outsideHeight, ebiten.Monitor().DeviceScaleFactor())
}

// layout resizes when the viewport or the pixel ratio changed.
func (g *Game) layout(outsideWidth, outsideHeight int, dpr float64) (int, int) {
	w, h := max(1, outsideWidth), max(1, outsideHeight)
	if w != g.width || h != g.height || dpr != g.dpr {
		g.resize(w, h, dpr)
	}
	return w, h
}

// resize lays the screen out for a w x h logical viewport.
func (g *Game) resize(w, h int, dpr float64) {
	g.width, g.height = max(1, w), max(1, h)
	g.dpr = dpr
	g.renderer.Resize(float64(g.width), float64(g.height)*0.72, dpr)

	frame := g.burnFrameRect()
	g.burnButton = button{label: "Burn", bounds: rect{frame.x + frame.w - 120, frame.y + frame.h + 16, 120, 40}}
	g.audioButton = button{label: "Ambient", bounds: rect{20, 40, 120, 40}}
}

func (g *Game) burnFrameRect() rect {
	return rect{
		x: (float64(g.width) - burnFrameWidth) / 2,
		y: float64(g.height)*0.3 + 24,
		w: burnFrameWidth,
		h: burnFrameHeight,
	}
}
