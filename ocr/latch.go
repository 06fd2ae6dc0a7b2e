package ocr

import (
	"context"
	"os"
	"sync"
)

// FrameSource is a streaming capture collaborator: Start begins delivering
// frames to the callback until Stop is called. Some backends push more than
// one frame per request, or push from multiple goroutines.
type FrameSource interface {
	Start(ctx context.Context, rect Rect, deliver func(imagePath string)) error
	Stop() error
}

// frameLatch accepts exactly one frame. Later deliveries report false and
// the caller is expected to discard them.
type frameLatch struct {
	once sync.Once
	ch   chan string
}

func newFrameLatch() *frameLatch {
	return &frameLatch{ch: make(chan string, 1)}
}

func (l *frameLatch) deliver(path string) bool {
	accepted := false
	l.once.Do(func() {
		l.ch <- path
		accepted = true
	})
	return accepted
}

func (l *frameLatch) wait(ctx context.Context) (string, error) {
	select {
	case path := <-l.ch:
		return path, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// OneShot adapts a FrameSource into a Capturer that takes exactly one frame
// per call. Duplicate frames from the same capture are deleted, and the
// source is torn down before Capture returns.
type OneShot struct {
	source FrameSource
}

// NewOneShot wraps a streaming frame source.
func NewOneShot(source FrameSource) *OneShot {
	return &OneShot{source: source}
}

// Capture starts the source, accepts the first delivered frame, and stops
// the source again. Extra frames delivered while stopping are removed from
// disk so they cannot leak.
func (o *OneShot) Capture(ctx context.Context, rect Rect) (string, error) {
	latch := newFrameLatch()
	err := o.source.Start(ctx, rect, func(imagePath string) {
		if !latch.deliver(imagePath) {
			os.Remove(imagePath)
		}
	})
	if err != nil {
		return "", err
	}
	defer o.source.Stop()

	return latch.wait(ctx)
}
