package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// edgeTolerance is how close to the capture border a fragment may sit before
// it is discarded as partially cut off, as a fraction of each dimension.
const edgeTolerance = 0.01

// Acquirer orchestrates one capture-then-recognize pass and filters out
// fragments clipped by the rectangle border.
type Acquirer struct {
	capturer   Capturer
	recognizer Recognizer
	languages  []string
	logger     *log.Logger
}

// NewAcquirer wires a capturer and recognizer together. Languages are the
// recognition hints passed through on every call.
func NewAcquirer(c Capturer, r Recognizer, languages []string, logger *log.Logger) *Acquirer {
	if logger == nil {
		logger = log.Default()
	}
	return &Acquirer{
		capturer:   c,
		recognizer: r,
		languages:  languages,
		logger:     logger.With("component", "ocr"),
	}
}

// Fragments captures rect and returns the recognized fragments in detector
// order, with border-touching fragments removed.
func (a *Acquirer) Fragments(ctx context.Context, rect Rect) ([]Fragment, error) {
	imagePath, err := a.capturer.Capture(ctx, rect)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	defer os.Remove(imagePath)

	fragments, err := a.recognizer.Recognize(ctx, imagePath, a.languages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecognition, err)
	}

	kept := filterEdgeFragments(fragments)
	a.logger.Debug("acquisition pass",
		"fragments", len(fragments), "kept", len(kept))
	return kept, nil
}

// Text captures rect and returns the recognized fragments space-joined in
// detector order. Blank fragments are dropped.
func (a *Acquirer) Text(ctx context.Context, rect Rect) (string, error) {
	fragments, err := a.Fragments(ctx, rect)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if t := strings.TrimSpace(f.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}

// filterEdgeFragments drops fragments whose boxes touch the capture border
// within tolerance. A clipped line reads as garbage, so losing it beats
// speaking it.
func filterEdgeFragments(fragments []Fragment) []Fragment {
	kept := make([]Fragment, 0, len(fragments))
	for _, f := range fragments {
		if touchesEdge(f.Box) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func touchesEdge(b Box) bool {
	return b.X < edgeTolerance ||
		b.Y < edgeTolerance ||
		b.X+b.W > 1-edgeTolerance ||
		b.Y+b.H > 1-edgeTolerance
}
