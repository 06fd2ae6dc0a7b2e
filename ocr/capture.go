package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
)

// screenshotTool describes one external capture command and how to pass it
// a region plus an output path.
type screenshotTool struct {
	name string
	args func(rect Rect, out string) []string
}

// tools in preference order. The first one present in PATH wins.
var screenshotTools = []screenshotTool{
	{
		// Wayland
		name: "grim",
		args: func(r Rect, out string) []string {
			return []string{"-g", fmt.Sprintf("%d,%d %dx%d", int(r.X), int(r.Y), int(r.W), int(r.H)), out}
		},
	},
	{
		// X11
		name: "maim",
		args: func(r Rect, out string) []string {
			return []string{"-g", fmt.Sprintf("%dx%d+%d+%d", int(r.W), int(r.H), int(r.X), int(r.Y)), out}
		},
	},
	{
		// X11 fallback
		name: "scrot",
		args: func(r Rect, out string) []string {
			return []string{"-a", fmt.Sprintf("%d,%d,%d,%d", int(r.X), int(r.Y), int(r.W), int(r.H)), out}
		},
	},
	{
		// macOS
		name: "screencapture",
		args: func(r Rect, out string) []string {
			return []string{"-x", "-R", fmt.Sprintf("%g,%g,%g,%g", r.X, r.Y, r.W, r.H), out}
		},
	},
}

// SubprocessCapturer shells out to the platform screenshot tool for each
// frame. One invocation produces exactly one image, so it needs no latch.
type SubprocessCapturer struct {
	tool screenshotTool
	// scale maps logical screen points to capture pixels (HiDPI displays
	// report rects in points while some tools want pixels)
	scale float64
}

// NewSubprocessCapturer finds the first available screenshot tool. scale
// multiplies rect coordinates before they reach the tool; pass 1 when the
// tool already works in the rect's coordinate space.
func NewSubprocessCapturer(scale float64) (*SubprocessCapturer, error) {
	if scale <= 0 {
		scale = 1
	}
	for _, tool := range screenshotTools {
		if _, err := exec.LookPath(tool.name); err == nil {
			return &SubprocessCapturer{tool: tool, scale: scale}, nil
		}
	}
	return nil, fmt.Errorf("%w: no screenshot tool found for %s (tried grim, maim, scrot, screencapture)",
		ErrCapture, runtime.GOOS)
}

// Capture writes a PNG of rect to a temp file and returns its path.
func (c *SubprocessCapturer) Capture(ctx context.Context, rect Rect) (string, error) {
	if rect.W <= 0 || rect.H <= 0 {
		return "", fmt.Errorf("%w: degenerate rect %+v", ErrCapture, rect)
	}
	scaled := Rect{
		X: rect.X * c.scale,
		Y: rect.Y * c.scale,
		W: rect.W * c.scale,
		H: rect.H * c.scale,
	}

	out := filepath.Join(os.TempDir(), uuid.NewString()+".png")
	cmd := exec.CommandContext(ctx, c.tool.name, c.tool.args(scaled, out)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("%w: %s: %v: %s", ErrCapture, c.tool.name, err, output)
	}

	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		os.Remove(out)
		return "", fmt.Errorf("%w: %s produced no image", ErrCapture, c.tool.name)
	}
	return out, nil
}

// ToolName reports which screenshot tool was selected. Used in logs.
func (c *SubprocessCapturer) ToolName() string {
	return c.tool.name
}
