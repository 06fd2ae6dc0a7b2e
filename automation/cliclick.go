package automation

import (
	"context"
	"fmt"
	"os/exec"
)

type cliclickAutomator struct {
	binary string
}

func (a *cliclickAutomator) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, a.binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("automation: cliclick %v: %v: %s", args, err, output)
	}
	return nil
}

// ScrollDown falls back to a page-down keypress after placing the pointer:
// cliclick has no wheel command, and page-down advances by roughly a
// viewport, which is what the caller is after anyway.
func (a *cliclickAutomator) ScrollDown(ctx context.Context, at Point, pixels float64) error {
	if pixels <= 0 {
		return nil
	}
	if err := a.run(ctx, fmt.Sprintf("m:%d,%d", int(at.X+0.5), int(at.Y+0.5))); err != nil {
		return err
	}
	return a.run(ctx, "kp:page-down")
}

func (a *cliclickAutomator) ClickAt(ctx context.Context, at Point) error {
	return a.run(ctx, fmt.Sprintf("c:%d,%d", int(at.X+0.5), int(at.Y+0.5)))
}
