// Package ocr turns a rectangle of the screen into recognized text by
// driving external capture and recognition collaborators.
package ocr

import (
	"context"
	"errors"
)

// Rect is a screen-space rectangle in pixels.
type Rect struct {
	X, Y, W, H float64
}

// Box is a bounding box in normalized detector space: origin top-left,
// all coordinates in [0, 1] relative to the captured rectangle.
type Box struct {
	X, Y, W, H float64
}

// Center returns the box midpoint, still normalized.
func (b Box) Center() (x, y float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// Fragment is one recognized run of text with its location.
type Fragment struct {
	Text string
	Box  Box
}

// Capturer produces a single still image of a screen rectangle. The returned
// path names a temporary image file the caller must remove.
type Capturer interface {
	Capture(ctx context.Context, rect Rect) (string, error)
}

// Recognizer extracts positioned text from an image file. Languages are
// BCP-47-ish tags; implementations translate them to whatever the backing
// tool expects.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string, languages []string) ([]Fragment, error)
}

// Failure modes, distinguished so callers can tell a screenshot problem from
// a recognition problem.
var (
	ErrCapture     = errors.New("ocr: screen capture failed")
	ErrRecognition = errors.New("ocr: text recognition failed")
)
