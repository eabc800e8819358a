// Package config holds every tunable of the app. Default returns the values
// the app ships with; Load overlays a YAML file on top of them.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iburimskiy/stillwave/internal/breath"
	"github.com/iburimskiy/stillwave/internal/choreo"
	"github.com/iburimskiy/stillwave/internal/motion"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

const (
	WindowWidth  = 960
	WindowHeight = 720

	VisualRingSize  = 8192
	SmoothingFactor = 0.6
)

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type Breathing struct {
	Rounds         int           `yaml:"rounds"`
	Inhale         time.Duration `yaml:"inhale"`
	Exhale         time.Duration `yaml:"exhale"`
	IntroDotHold   time.Duration `yaml:"intro_dot_hold"`
	IntroDotFadeIn time.Duration `yaml:"intro_dot_fade_in"`
	PhaseLabelLag  time.Duration `yaml:"phase_label_lag"`
	StageDelay     time.Duration `yaml:"stage_delay"`
	StageDuration  time.Duration `yaml:"stage_duration"`
}

type Sphere struct {
	DotCount       int     `yaml:"dot_count"`
	Size           float64 `yaml:"size"`
	BaseDotSize    float64 `yaml:"base_dot_size"`
	CenterDotSize  float64 `yaml:"center_dot_size"`
	Color          string  `yaml:"color"`
	DPRCap         float64 `yaml:"dpr_cap"`
	DriftSpeed     float64 `yaml:"drift_speed"`
	DriftTiltSpeed float64 `yaml:"drift_tilt_speed"`
	Seed           int64   `yaml:"seed"` // zero seeds from the clock

	ShellBias       float64 `yaml:"shell_bias"`
	Gamma           float64 `yaml:"gamma"`
	CenterFadeAt    float64 `yaml:"center_fade_at"`
	PerspectiveSpan float64 `yaml:"perspective_span"`
	RadiusFactor    float64 `yaml:"radius_factor"`
}

type Titles struct {
	GenericFadeOut time.Duration `yaml:"generic_fade_out"`
	GenericReveal  time.Duration `yaml:"generic_reveal"`
	PhaseFadeOut   time.Duration `yaml:"phase_fade_out"`
	PhaseReveal    time.Duration `yaml:"phase_reveal"`
}

type Prelude struct {
	BurnField      time.Duration `yaml:"burn_field"`
	FadeOutDelay   time.Duration `yaml:"fade_out_delay"`
	FadeOut        time.Duration `yaml:"fade_out"`
	Reveal         time.Duration `yaml:"reveal"`
	GuidanceReveal time.Duration `yaml:"guidance_reveal"`
	StageReveal    time.Duration `yaml:"stage_reveal"`
	HoldAfterGone  time.Duration `yaml:"hold_after_gone"`
	GoneText       string        `yaml:"gone_text"`
	GuidanceText   string        `yaml:"guidance_text"`
}

type Narration struct {
	FadeOut       time.Duration `yaml:"fade_out"`
	Reveal        time.Duration `yaml:"reveal"`
	HighlightLead time.Duration `yaml:"highlight_lead"`
	FigureDelay   time.Duration `yaml:"figure_delay"`
}

type Figure struct {
	Transition     time.Duration `yaml:"transition"`
	LoadTransition time.Duration `yaml:"load_transition"`
	PulseDelay     time.Duration `yaml:"pulse_delay"`
	PulsePeriod    time.Duration `yaml:"pulse_period"`
	PulseStagger   time.Duration `yaml:"pulse_stagger"`
	PulseFloor     float64       `yaml:"pulse_floor"`
	Reveal         time.Duration `yaml:"reveal"`
	GlowReveal     time.Duration `yaml:"glow_reveal"`
}

// Step is one narration line as written in the config file.
type Step struct {
	Text       string        `yaml:"text"`
	Hold       time.Duration `yaml:"hold"`
	Highlights []int         `yaml:"highlights,omitempty"`
	MidAfter   time.Duration `yaml:"mid_after,omitempty"`
	MidText    string        `yaml:"mid_text,omitempty"`
	ShowFigure bool          `yaml:"show_figure,omitempty"`
	Gratitude  bool          `yaml:"gratitude,omitempty"`
}

type Audio struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Ambient    string  `yaml:"ambient"` // optional track path
	Volume     float64 `yaml:"volume"`  // beep volume exponent, 0 is unchanged
	Chime      bool    `yaml:"chime"`
	RingSize   int     `yaml:"ring_size"`
	Smoothing  float64 `yaml:"smoothing"`
}

type Store struct {
	Path string `yaml:"path"`
}

type Server struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Config is the full configuration tree.
type Config struct {
	Window        Window    `yaml:"window"`
	ReducedMotion bool      `yaml:"reduced_motion"`
	Breathing     Breathing `yaml:"breathing"`
	Sphere        Sphere    `yaml:"sphere"`
	Titles        Titles    `yaml:"titles"`
	Prelude       Prelude   `yaml:"prelude"`
	Narration     Narration `yaml:"narration"`
	Figure        Figure    `yaml:"figure"`
	Steps         []Step    `yaml:"steps"`
	Audio         Audio     `yaml:"audio"`
	Store         Store     `yaml:"store"`
	Server        Server    `yaml:"server"`
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// Default returns the shipped configuration.
func Default() Config {
	tuning := breath.DefaultTuning()
	return Config{
		Window: Window{Width: WindowWidth, Height: WindowHeight, Title: "Stillwave"},
		Breathing: Breathing{
			Rounds:         3,
			Inhale:         ms(4000),
			Exhale:         ms(6000),
			IntroDotHold:   ms(120),
			IntroDotFadeIn: ms(420),
			PhaseLabelLag:  ms(180),
			StageDelay:     0,
			StageDuration:  ms(1600),
		},
		Sphere: Sphere{
			DotCount:        220,
			Size:            400,
			BaseDotSize:     9,
			CenterDotSize:   18,
			Color:           "#93BBED",
			DPRCap:          2,
			DriftSpeed:      0.00028,
			DriftTiltSpeed:  0.00017,
			ShellBias:       tuning.ShellBias,
			Gamma:           tuning.Gamma,
			CenterFadeAt:    tuning.CenterFadeAt,
			PerspectiveSpan: tuning.PerspectiveSpan,
			RadiusFactor:    tuning.RadiusFactor,
		},
		Titles: Titles{
			GenericFadeOut: ms(1200),
			GenericReveal:  ms(1600),
			PhaseFadeOut:   ms(550),
			PhaseReveal:    ms(800),
		},
		Prelude: Prelude{
			BurnField:      ms(6000),
			FadeOutDelay:   ms(400),
			FadeOut:        ms(1200),
			Reveal:         ms(1600),
			GuidanceReveal: ms(2200),
			StageReveal:    ms(1600),
			HoldAfterGone:  ms(900),
			GoneText:       "It’s gone forever.",
			GuidanceText:   "Let’s take three deep breaths together.",
		},
		Narration: Narration{
			FadeOut:       ms(1200),
			Reveal:        ms(1600),
			HighlightLead: ms(2200),
			FigureDelay:   ms(950),
		},
		Figure: Figure{
			Transition:     ms(3200),
			LoadTransition: ms(1600),
			PulseDelay:     ms(3250),
			PulsePeriod:    ms(4200),
			PulseStagger:   ms(350),
			PulseFloor:     0.7,
			Reveal:         ms(3200),
			GlowReveal:     ms(3200),
		},
		Steps: DefaultSteps(),
		Audio: Audio{
			Enabled:    true,
			SampleRate: 44100,
			Chime:      true,
			RingSize:   VisualRingSize,
			Smoothing:  SmoothingFactor,
		},
		Store: Store{Path: "stillwave.db"},
		Server: Server{
			Addr:         ":3000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// DefaultSteps is the narration that follows the breathing run: a short
// bridge, then the body scan from the feet up.
func DefaultSteps() []Step {
	const (
		short   = 15000
		closing = 4800
	)
	return []Step{
		{Text: "Well done.", Hold: ms(2500)},
		{Text: "Now, last stop.", Hold: ms(2500)},
		{Text: "I’ll guide you through a quick body scan.", Hold: ms(2800), ShowFigure: true},
		{Text: "Notice any sensations in your feet.", Hold: ms(short), Highlights: []int{9, 10}},
		{Text: "Feel your legs grow heavy.", Hold: ms(short), Highlights: []int{7, 8}},
		{Text: "Notice your stomach.", Hold: ms(short), Highlights: []int{6},
			MidAfter: ms(7000), MidText: "Feel its emptiness or fullness."},
		{Text: "See if you can relax your arms.", Hold: ms(short), Highlights: []int{4, 5}},
		{Text: "Feel your chest rise and fall.", Hold: ms(short), Highlights: []int{3}},
		{Text: "Allow your shoulders to drop.", Hold: ms(short), Highlights: []int{1, 2},
			MidAfter: ms(7000), MidText: "Release what they’ve been holding."},
		{Text: "Notice any tension in your face.", Hold: ms(short), Highlights: []int{0},
			MidAfter: ms(7000), MidText: "Relax your jaw, eyes, and forehead."},
		{Text: "Bring awareness to your whole body.", Hold: ms(closing)},
		{Text: "Send gratitude to your vessel, your home.", Hold: ms(closing), Gratitude: true},
		{Text: "Notice how complete you are.", Hold: ms(closing)},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the app cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Breathing.Rounds < 0:
		return fmt.Errorf("%w: breathing.rounds is negative", ErrInvalid)
	case c.Breathing.Inhale < 0 || c.Breathing.Exhale < 0:
		return fmt.Errorf("%w: breathing phases must not be negative", ErrInvalid)
	case c.Sphere.DotCount < 0:
		return fmt.Errorf("%w: sphere.dot_count is negative", ErrInvalid)
	case c.Sphere.ShellBias < 0 || c.Sphere.ShellBias > 1:
		return fmt.Errorf("%w: sphere.shell_bias %v outside [0,1]", ErrInvalid, c.Sphere.ShellBias)
	case c.Figure.PulseFloor < 0 || c.Figure.PulseFloor > 1:
		return fmt.Errorf("%w: figure.pulse_floor %v outside [0,1]", ErrInvalid, c.Figure.PulseFloor)
	case c.Audio.Enabled && c.Audio.SampleRate <= 0:
		return fmt.Errorf("%w: audio.sample_rate must be positive", ErrInvalid)
	}
	if _, err := motion.ParseHexColor(c.Sphere.Color); err != nil {
		return fmt.Errorf("%w: sphere.color: %v", ErrInvalid, err)
	}
	for i, s := range c.Steps {
		if s.Text == "" {
			return fmt.Errorf("%w: steps[%d] has no text", ErrInvalid, i)
		}
		if s.Hold <= 0 {
			return fmt.Errorf("%w: steps[%d] hold must be positive", ErrInvalid, i)
		}
		if s.MidText != "" && (s.MidAfter <= 0 || s.MidAfter >= s.Hold) {
			return fmt.Errorf("%w: steps[%d] mid text must land inside the hold", ErrInvalid, i)
		}
	}
	return nil
}

// Tuning returns the sphere tuning.
func (c Config) Tuning() breath.Tuning {
	return breath.Tuning{
		ShellBias:       c.Sphere.ShellBias,
		Gamma:           c.Sphere.Gamma,
		CenterFadeAt:    c.Sphere.CenterFadeAt,
		PerspectiveSpan: c.Sphere.PerspectiveSpan,
		RadiusFactor:    c.Sphere.RadiusFactor,
	}
}

// BreathOptions builds the renderer options. The color was checked by
// Validate; an unparsable one falls back to white.
func (c Config) BreathOptions() breath.Options {
	col, err := motion.ParseHexColor(c.Sphere.Color)
	if err != nil {
		col = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return breath.Options{
		Count:          c.Sphere.DotCount,
		StageSize:      c.Sphere.Size,
		BaseDotSize:    c.Sphere.BaseDotSize,
		CenterDotSize:  c.Sphere.CenterDotSize,
		Inhale:         c.Breathing.Inhale,
		Exhale:         c.Breathing.Exhale,
		Rounds:         c.Breathing.Rounds,
		IntroDotFadeIn: c.Breathing.IntroDotFadeIn,
		Color:          col,
		DPRCap:         c.Sphere.DPRCap,
		DriftSpeed:     c.Sphere.DriftSpeed,
		DriftTiltSpeed: c.Sphere.DriftTiltSpeed,
		ReducedMotion:  c.ReducedMotion,
		Tuning:         c.Tuning(),
	}
}

func (c Config) TitleTiming() choreo.TitleTiming {
	return choreo.TitleTiming{
		GenericFadeOut: c.Titles.GenericFadeOut,
		GenericReveal:  c.Titles.GenericReveal,
		PhaseFadeOut:   c.Titles.PhaseFadeOut,
		PhaseReveal:    c.Titles.PhaseReveal,
	}
}

func (c Config) BreathingTiming() choreo.BreathingTiming {
	return choreo.BreathingTiming{
		Inhale:        c.Breathing.Inhale,
		Exhale:        c.Breathing.Exhale,
		Rounds:        c.Breathing.Rounds,
		IntroDotHold:  c.Breathing.IntroDotHold,
		PhaseLabelLag: c.Breathing.PhaseLabelLag,
		Titles:        c.TitleTiming(),
	}
}

func (c Config) HighlightTiming() choreo.HighlightTiming {
	return choreo.HighlightTiming{
		Transition:     c.Figure.Transition,
		LoadTransition: c.Figure.LoadTransition,
		PulseDelay:     c.Figure.PulseDelay,
		PulsePeriod:    c.Figure.PulsePeriod,
		PulseStagger:   c.Figure.PulseStagger,
		PulseFloor:     c.Figure.PulseFloor,
		FigureReveal:   c.Figure.Reveal,
	}
}

// ChoreoSteps converts the narration steps.
func (c Config) ChoreoSteps() []choreo.Step {
	steps := make([]choreo.Step, 0, len(c.Steps))
	for _, s := range c.Steps {
		step := choreo.Step{
			Text:       s.Text,
			Hold:       s.Hold,
			Highlights: append([]int(nil), s.Highlights...),
			ShowFigure: s.ShowFigure,
			Gratitude:  s.Gratitude,
		}
		if s.MidText != "" {
			step.Mid = &choreo.MidText{After: s.MidAfter, Text: s.MidText}
		}
		steps = append(steps, step)
	}
	return steps
}

// JourneyConfig builds the script of the full flow.
func (c Config) JourneyConfig() choreo.JourneyConfig {
	p := c.Prelude
	return choreo.JourneyConfig{
		Prelude: choreo.PreludeTiming{
			BurnField:      p.BurnField,
			FadeOutDelay:   p.FadeOutDelay,
			FadeOut:        p.FadeOut,
			Reveal:         p.Reveal,
			GuidanceReveal: p.GuidanceReveal,
			StageReveal:    p.StageReveal,
			HoldAfterGone:  p.HoldAfterGone,
			GoneText:       p.GoneText,
			GuidanceText:   p.GuidanceText,
		},
		Narration: choreo.NarrationTiming{
			FadeOut:       c.Narration.FadeOut,
			Reveal:        c.Narration.Reveal,
			HighlightLead: c.Narration.HighlightLead,
			FigureDelay:   c.Narration.FigureDelay,
		},
		Steps: c.ChoreoSteps(),
	}
}
