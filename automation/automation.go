// Package automation issues synthetic pointer input through external
// command-line tools.
package automation

import (
	"context"
	"errors"
	"os/exec"
)

// Point is a screen position in pixels.
type Point struct {
	X, Y float64
}

// Automator performs the two gestures auto-continuation needs. ScrollDown
// scrolls the content under at upward by roughly pixels, advancing the
// reader down the page. ClickAt presses the primary button at the position.
type Automator interface {
	ScrollDown(ctx context.Context, at Point, pixels float64) error
	ClickAt(ctx context.Context, at Point) error
}

// ErrNoBackend means no supported input tool is installed.
var ErrNoBackend = errors.New("automation: no input tool found (tried xdotool, cliclick)")

// New picks the first available backend.
func New() (Automator, error) {
	if path, err := exec.LookPath("xdotool"); err == nil {
		return &xdotoolAutomator{binary: path}, nil
	}
	if path, err := exec.LookPath("cliclick"); err == nil {
		return &cliclickAutomator{binary: path}, nil
	}
	return nil, ErrNoBackend
}
