package reader

import (
	"context"

	"github.com/dgnsrekt/pagereader/audio"
	"github.com/dgnsrekt/pagereader/ocr"
)

// TextSource provides the two retrieval shapes the controller needs: flat
// text for reading, positioned fragments for finding on-screen controls.
// *ocr.Acquirer satisfies this; tests substitute fakes.
type TextSource interface {
	Text(ctx context.Context, rect ocr.Rect) (string, error)
	Fragments(ctx context.Context, rect ocr.Rect) ([]ocr.Fragment, error)
}

// AudioPlayer is the single output device. The controller is its only
// owner; nothing else may start or stop it. *audio.Player satisfies this.
type AudioPlayer interface {
	Play(buf *audio.Buffer, done func()) error
	Pause() error
	Resume() error
	Stop() error
	SetVolume(v float64)
	IsPlaying() bool
	Level() float64
}
