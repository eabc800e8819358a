// Package audio plays the optional ambient track and the completion chime,
// and measures what is playing so the background can follow it.
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"go.uber.org/zap"

	"github.com/iburimskiy/stillwave/internal/logging"
)

// ErrUnsupported is returned for files that are not wav, mp3 or flac.
var ErrUnsupported = errors.New("unsupported file type")

// ErrNotInitialized is returned when playback is requested before Init.
var ErrNotInitialized = errors.New("speaker not initialized")

const (
	meterWindow = 2048
	meterBands  = 64
	chimeFreq   = 528
	chimeLength = 2400 * time.Millisecond
)

// Decode opens path and picks the decoder from its extension. Closing the
// returned streamer closes the file.
func Decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return streamer, format, nil
}

// Options configures a Player.
type Options struct {
	SampleRate int
	RingSize   int
	Smoothing  float64
	Volume     float64
}

// Player owns the speaker. Every method is safe to call when Init failed;
// playback calls then return ErrNotInitialized and Level stays zero.
type Player struct {
	opts Options
	rate beep.SampleRate
	log  *zap.Logger

	mu       sync.Mutex
	initDone bool
	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	tap      *Tap
	meter    *Meter
	track    string
}

func NewPlayer(opts Options, log *zap.Logger) *Player {
	log = logging.OrNop(log)
	return &Player{
		opts:  opts,
		rate:  beep.SampleRate(opts.SampleRate),
		log:   log,
		meter: NewMeter(meterBands, opts.Smoothing),
	}
}

// Init opens the output device.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initDone {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(time.Second/20)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	p.initDone = true
	return nil
}

// Ready reports whether Init succeeded.
func (p *Player) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initDone
}

// Track returns the path of the playing ambient track.
func (p *Player) Track() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track
}

// LoadAndPlay replaces the ambient track with path, looped until Stop.
func (p *Player) LoadAndPlay(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initDone {
		return ErrNotInitialized
	}

	streamer, format, err := Decode(path)
	if err != nil {
		return err
	}
	p.stopLocked()

	var src beep.Streamer = beep.Loop(-1, streamer)
	if format.SampleRate != p.rate {
		src = beep.Resample(4, format.SampleRate, p.rate, src)
	}
	t := NewTap(src, p.opts.RingSize)
	volume := &effects.Volume{Streamer: t, Base: 2, Volume: p.opts.Volume}
	ctrl := &beep.Ctrl{Streamer: volume}

	p.streamer = streamer
	p.tap = t
	p.ctrl = ctrl
	p.track = path
	p.meter.Reset()

	speaker.Play(ctrl)
	p.log.Info("ambient track playing",
		zap.String("path", path),
		zap.Int("sample_rate", int(format.SampleRate)))
	return nil
}

// TogglePause pauses or resumes the ambient track.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = !p.ctrl.Paused
	speaker.Unlock()
}

// Chime plays the completion bell over whatever is playing.
func (p *Player) Chime() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initDone {
		return ErrNotInitialized
	}
	speaker.Play(Chime(p.rate, chimeFreq, chimeLength))
	return nil
}

// Level samples the tap and returns the smoothed loudness in [0,1].
func (p *Player) Level() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tap == nil || (p.ctrl != nil && p.ctrl.Paused) {
		return 0
	}
	p.meter.Update(p.tap.Snapshot(meterWindow))
	return min(1, p.meter.Level())
}

// Stop silences the speaker and releases the track.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.initDone {
		speaker.Clear()
	}
	if p.streamer != nil {
		if err := p.streamer.Close(); err != nil {
			p.log.Warn("close ambient track", zap.Error(err))
		}
	}
	p.streamer = nil
	p.ctrl = nil
	p.tap = nil
	p.track = ""
}
