// Package audio plays short synthesized hit and miss cues.
package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Cue identifies a sound effect.
type Cue uint8

const (
	CueHit Cue = iota
	CueMiss
	CueWin
	CueLose
)

// Player mixes one-shot cues into the speaker. A Player whose speaker failed
// to initialize, or that is disabled, stays silent.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	enabled     bool
}

// NewPlayer creates a player. Call Init before any cue is audible.
func NewPlayer(enabled bool) *Player {
	return &Player{
		mixer:   &beep.Mixer{},
		enabled: enabled,
	}
}

// Init opens the speaker. On failure the player stays usable and silent.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// SetEnabled turns sound on or off. Disabling drops queued cues.
func (p *Player) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.enabled = enabled
	if !enabled && p.initialized {
		speaker.Lock()
		p.mixer.Clear()
		speaker.Unlock()
	}
	slog.Debug("sound_toggled", "enabled", enabled)
}

// Enabled reports whether cues are played.
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Play queues a cue.
func (p *Player) Play(c Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || !p.enabled {
		return
	}
	speaker.Lock()
	p.mixer.Add(CueStreamer(c))
	speaker.Unlock()
}

// Close silences the player.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Clear()
	p.initialized = false
}

// CueStreamer returns a finite streamer for c.
func CueStreamer(c Cue) beep.Streamer {
	switch c {
	case CueHit:
		// Rising chirp
		return beep.Take(sampleRate.N(120*time.Millisecond), NewToneGenerator(sampleRate, 660, 1320, 120*time.Millisecond, 0.3))
	case CueMiss:
		return beep.Take(sampleRate.N(90*time.Millisecond), NewToneGenerator(sampleRate, 220, 160, 90*time.Millisecond, 0.15))
	case CueWin:
		return beep.Seq(
			beep.Take(sampleRate.N(150*time.Millisecond), NewToneGenerator(sampleRate, 523, 523, 150*time.Millisecond, 0.3)),
			beep.Take(sampleRate.N(150*time.Millisecond), NewToneGenerator(sampleRate, 659, 659, 150*time.Millisecond, 0.3)),
			beep.Take(sampleRate.N(300*time.Millisecond), NewToneGenerator(sampleRate, 784, 784, 300*time.Millisecond, 0.3)),
		)
	default:
		return beep.Take(sampleRate.N(400*time.Millisecond), NewToneGenerator(sampleRate, 300, 110, 400*time.Millisecond, 0.3))
	}
}
