// Package audio converts raw speech-engine output into playable buffers and
// owns the output device.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Device format. The speech engine emits mono s16le at 24 kHz; the output
// device runs interleaved stereo at the same rate.
const (
	SampleRate    = 24000
	EngineChans   = 1
	PlaybackChans = 2
	BitDepth      = 16
)

// DefaultTailTrimSamples is the number of trailing samples stripped from
// engine output before conversion. The bundled engine appends a short burst
// of garbage samples at the end of every utterance; this is a quirk of that
// engine, not a property of PCM streams in general.
const DefaultTailTrimSamples = 2400

// ErrEmptyAudio is returned when the engine hands over zero usable samples.
var ErrEmptyAudio = errors.New("audio: empty PCM input")

// Buffer is decoded audio ready for the output device: interleaved stereo
// s16le samples.
type Buffer struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate == 0 || b.Channels == 0 || len(b.Data) == 0 {
		return 0
	}
	frames := len(b.Data) / (BitDepth / 8) / b.Channels
	return time.Duration(frames) * time.Second / time.Duration(b.SampleRate)
}

// Frames returns the number of sample frames in the buffer.
func (b *Buffer) Frames() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Data) / (BitDepth / 8) / b.Channels
}

// Assembler turns raw engine PCM into playback buffers.
type Assembler struct {
	tailTrim int
}

// NewAssembler creates an assembler trimming tailTrim samples from the end of
// every engine utterance. Pass 0 to disable trimming; negative values fall
// back to the default.
func NewAssembler(tailTrim int) *Assembler {
	if tailTrim < 0 {
		tailTrim = DefaultTailTrimSamples
	}
	return &Assembler{tailTrim: tailTrim}
}

// Assemble converts mono s16le engine output into an interleaved stereo
// buffer, duplicating each sample into both channels. This is not stereo
// synthesis; the device format simply requires two channels.
func (a *Assembler) Assemble(pcm []byte) (*Buffer, error) {
	if len(pcm) == 0 {
		return nil, ErrEmptyAudio
	}
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("audio: PCM length %d not aligned to 16-bit samples", len(pcm))
	}

	samples := len(pcm) / 2
	if trim := a.tailTrim; trim > 0 && samples > trim {
		samples -= trim
		pcm = pcm[:samples*2]
	}
	if samples == 0 {
		return nil, ErrEmptyAudio
	}

	out := make([]byte, samples*2*PlaybackChans)
	for i := 0; i < samples; i++ {
		s := binary.LittleEndian.Uint16(pcm[i*2:])
		binary.LittleEndian.PutUint16(out[i*4:], s)   // left
		binary.LittleEndian.PutUint16(out[i*4+2:], s) // right
	}

	return &Buffer{
		Data:       out,
		SampleRate: SampleRate,
		Channels:   PlaybackChans,
	}, nil
}
