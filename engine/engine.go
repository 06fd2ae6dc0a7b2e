// Package engine invokes the external speech generator and adapts its output
// for playback.
package engine

import (
	"context"
	"errors"
)

// Request describes one generation call. Session is an opaque token the
// engine must echo back untouched; the caller uses it to detect results that
// outlived their session.
type Request struct {
	Text     string
	Voice    string
	Language string
	Speed    float64
	Session  string
}

// Result is a finished generation: a temporary WAV file on disk plus the
// echoed session token. The caller owns the file and deletes it after
// decoding — including when it discards the result as stale.
type Result struct {
	Path    string
	Session string
}

// Generator produces speech audio for text. Implementations are slow and
// out-of-process; calls honor context cancellation for the caller's side but
// cannot interrupt the external process mid-utterance.
type Generator interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// Generation failure modes. The caller treats them all as one generic
// failure; the distinctions exist for logs.
var (
	ErrGenerationFailed = errors.New("engine: generation failed")
	ErrNoAudioProduced  = errors.New("engine: process produced no audio data")
	ErrEngineNotFound   = errors.New("engine: generator executable not found")
)
