package automation

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// pixelsPerNotch approximates how far one wheel detent scrolls in most
// toolkits. xdotool can only scroll in whole notches.
const pixelsPerNotch = 40.0

// wheelDownButton is the X11 button number for scroll-down.
const wheelDownButton = "5"

type xdotoolAutomator struct {
	binary string
}

func (a *xdotoolAutomator) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, a.binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("automation: xdotool %v: %v: %s", args, err, output)
	}
	return nil
}

// ScrollDown moves the pointer over the target and turns the pixel distance
// into wheel notches.
func (a *xdotoolAutomator) ScrollDown(ctx context.Context, at Point, pixels float64) error {
	notches := notchesFor(pixels)
	if notches == 0 {
		return nil
	}
	if err := a.run(ctx, "mousemove", itoa(at.X), itoa(at.Y)); err != nil {
		return err
	}
	return a.run(ctx, "click", "--repeat", strconv.Itoa(notches), wheelDownButton)
}

func (a *xdotoolAutomator) ClickAt(ctx context.Context, at Point) error {
	return a.run(ctx, "mousemove", itoa(at.X), itoa(at.Y), "click", "1")
}

// notchesFor rounds a pixel distance to whole wheel detents, always at
// least one for any positive distance.
func notchesFor(pixels float64) int {
	if pixels <= 0 {
		return 0
	}
	notches := int(pixels/pixelsPerNotch + 0.5)
	if notches < 1 {
		notches = 1
	}
	return notches
}

func itoa(v float64) string {
	return strconv.Itoa(int(v + 0.5))
}
