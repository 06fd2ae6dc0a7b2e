package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// Format is the sample format handed to the output device.
const Format = oto.FormatSignedInt16LE

// completionPollInterval is how often playback completion is checked.
const completionPollInterval = 50 * time.Millisecond

var (
	otoContext *oto.Context
	otoOnce    sync.Once
	otoErr     error
)

// deviceContext returns the process-wide oto context. The device can only be
// opened once per process.
func deviceContext() (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: PlaybackChans,
			Format:       Format,
		})
		if err != nil {
			otoErr = fmt.Errorf("audio: open output device: %w", err)
			return
		}
		<-ready
		otoContext = ctx
	})
	return otoContext, otoErr
}

// Player owns the single output device. One buffer plays at a time; Play
// reports completion through a callback so the caller can sequence chunks
// without polling.
type Player struct {
	mu      sync.Mutex
	current *oto.Player
	meter   *levelMeter
	volume  float64
	playing bool
	paused  bool
	gen     int // invalidates stale completion watchers
}

// NewPlayer opens (or reuses) the output device.
func NewPlayer() (*Player, error) {
	if _, err := deviceContext(); err != nil {
		return nil, err
	}
	return &Player{
		meter:  newLevelMeter(0),
		volume: 1.0,
	}, nil
}

// Play starts the buffer and invokes done exactly once when the device has
// drained it. Playback already in progress is stopped first.
func (p *Player) Play(buf *Buffer, done func()) error {
	if buf == nil || len(buf.Data) == 0 {
		return ErrEmptyAudio
	}

	ctx, err := deviceContext()
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.current != nil {
		p.current.Close()
		p.current = nil
	}
	p.meter.reset()

	player := ctx.NewPlayer(newMeteredReader(buf.Data, p.meter))
	player.SetVolume(p.volume)
	player.Play()

	p.current = player
	p.playing = true
	p.paused = false
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	go p.watchCompletion(player, gen, buf.Duration(), done)
	return nil
}

// watchCompletion fires done once the device has drained the buffer, unless
// the player moved on to another buffer or was stopped.
func (p *Player) watchCompletion(player *oto.Player, gen int, dur time.Duration, done func()) {
	ticker := time.NewTicker(completionPollInterval)
	defer ticker.Stop()

	deadline := time.Now().Add(dur + 5*time.Second)
	for range ticker.C {
		p.mu.Lock()
		stale := p.gen != gen || p.current != player
		paused := p.paused
		p.mu.Unlock()

		if stale {
			return
		}
		if paused {
			deadline = time.Now().Add(dur + 5*time.Second)
			continue
		}
		if !player.IsPlaying() {
			break
		}
		if time.Now().After(deadline) {
			log.Warn("playback completion deadline exceeded", "duration", dur)
			break
		}
	}

	p.mu.Lock()
	current := p.gen == gen && p.current == player
	if current {
		p.playing = false
		player.Close()
		p.current = nil
	}
	p.mu.Unlock()

	if current && done != nil {
		done()
	}
}

// Pause freezes the device, preserving position.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil || !p.playing {
		return errors.New("audio: nothing playing")
	}
	if p.paused {
		return nil
	}
	p.current.Pause()
	p.paused = true
	return nil
}

// Resume continues from the paused position.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return errors.New("audio: nothing to resume")
	}
	if !p.paused {
		return nil
	}
	p.current.Play()
	p.paused = false
	return nil
}

// Stop halts playback and discards the current buffer. Completion callbacks
// for the discarded buffer do not fire.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	if p.current != nil {
		p.current.Close()
		p.current = nil
	}
	p.playing = false
	p.paused = false
	p.meter.reset()
	return nil
}

// SetVolume sets device volume for current and future buffers. Values are
// clamped to [0, 2].
func (p *Player) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 2 {
		v = 2
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = v
	if p.current != nil {
		p.current.SetVolume(v)
	}
}

// IsPlaying reports whether a buffer is actively sounding.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && !p.paused
}

// Level returns the RMS level in dBFS of the most recently played samples.
// When nothing is playing it reports the silence floor.
func (p *Player) Level() float64 {
	p.mu.Lock()
	active := p.playing && !p.paused
	p.mu.Unlock()

	if !active {
		return SilenceFloorDB
	}
	return p.meter.levelDB()
}
