package reader

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/pagereader/automation"
	"github.com/dgnsrekt/pagereader/ocr"
	"github.com/dgnsrekt/pagereader/textproc"
)

// Outcome is what the continuation engine decided to do.
type Outcome int

const (
	// OutcomeStop means the content is exhausted; end the session.
	OutcomeStop Outcome = iota
	// OutcomeRead means NewText holds the next text to speak (scroll path;
	// no fresh acquisition needed).
	OutcomeRead
	// OutcomeReacquire means a click advanced the page; re-run acquisition
	// on the reading rectangle with duplicate-page detection.
	OutcomeReacquire
)

// Decision is the continuation engine's verdict at end of content.
type Decision struct {
	Outcome Outcome
	// NewText is set for OutcomeRead
	NewText string
	// Status is a human-readable note for OutcomeStop
	Status string
}

// nextControlKeywords match the label of a next/continue control, checked
// case-insensitively. Arrow glyphs cover icon-only buttons.
var nextControlKeywords = []string{
	"next", "continue", "more", "keep reading",
	"→", "›", "»", "▶", ">",
}

// ContinuationEngine decides how to advance once a page has been read out.
// Scroll-and-reread runs first when enabled; a click mode only fires when
// scrolling surfaces no unread text, so the reader never skips past content
// still on the current page.
type ContinuationEngine struct {
	source TextSource
	input  automation.Automator
	logger *log.Logger

	// sleep is swapped out by tests
	sleep func(time.Duration)
}

// NewContinuationEngine wires the OCR source and the input backend.
func NewContinuationEngine(source TextSource, input automation.Automator, logger *log.Logger) *ContinuationEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &ContinuationEngine{
		source: source,
		input:  input,
		logger: logger.With("component", "continuation"),
		sleep:  time.Sleep,
	}
}

// Next runs the configured continuation strategy. spokenTail is the end of
// the text already read aloud, used to find the seam after a scroll.
func (e *ContinuationEngine) Next(ctx context.Context, cfg Config, readRect ocr.Rect, spokenTail string) (Decision, error) {
	if cfg.AutoScroll && e.input != nil {
		decision, err := e.scrollAndReread(ctx, cfg, readRect, spokenTail)
		if err != nil {
			return Decision{}, err
		}
		if decision.Outcome == OutcomeRead {
			return decision, nil
		}
		// No unread text below the fold; fall through to a click mode.
	}

	switch cfg.AutoNext {
	case ModeClickFixedZone:
		return e.clickFixedZone(ctx, cfg)
	case ModeClickSmartOCR:
		return e.clickSmartOCR(ctx, cfg)
	default:
		return Decision{Outcome: OutcomeStop, Status: "end of content"}, nil
	}
}

// scrollAndReread scrolls the viewport down, keeping a sliver of overlap,
// and diffs the fresh OCR text against what was already spoken.
func (e *ContinuationEngine) scrollAndReread(ctx context.Context, cfg Config, readRect ocr.Rect, spokenTail string) (Decision, error) {
	distance := readRect.H * (1 - cfg.OverlapFraction)
	center := automation.Point{X: readRect.X + readRect.W/2, Y: readRect.Y + readRect.H/2}

	if err := e.input.ScrollDown(ctx, center, distance); err != nil {
		return Decision{}, err
	}
	e.sleep(cfg.SettleDelay)

	text, err := e.source.Text(ctx, readRect)
	if err != nil {
		return Decision{}, err
	}

	fresh := strings.TrimSpace(textproc.NewSuffix(spokenTail, text))
	if fresh == "" {
		e.logger.Debug("scroll produced no new text")
		return Decision{Outcome: OutcomeStop, Status: "end of content"}, nil
	}

	e.logger.Debug("scroll produced new text", "chars", len(fresh))
	return Decision{Outcome: OutcomeRead, NewText: fresh}, nil
}

// clickFixedZone clicks the middle of the configured next-control rectangle
// and waits for the page to load.
func (e *ContinuationEngine) clickFixedZone(ctx context.Context, cfg Config) (Decision, error) {
	if e.input == nil || cfg.ClickZone.W <= 0 || cfg.ClickZone.H <= 0 {
		return Decision{Outcome: OutcomeStop, Status: "no next-page zone configured"}, nil
	}

	target := automation.Point{
		X: cfg.ClickZone.X + cfg.ClickZone.W/2,
		Y: cfg.ClickZone.Y + cfg.ClickZone.H/2,
	}
	if err := e.input.ClickAt(ctx, target); err != nil {
		return Decision{}, err
	}
	e.sleep(cfg.ClickLoadDelay)
	return Decision{Outcome: OutcomeReacquire}, nil
}

// clickSmartOCR scans the search rectangle for a fragment that reads like a
// next/continue control and clicks its center.
func (e *ContinuationEngine) clickSmartOCR(ctx context.Context, cfg Config) (Decision, error) {
	if e.input == nil || cfg.SearchZone.W <= 0 || cfg.SearchZone.H <= 0 {
		return Decision{Outcome: OutcomeStop, Status: "no search zone configured"}, nil
	}

	fragments, err := e.source.Fragments(ctx, cfg.SearchZone)
	if err != nil {
		return Decision{}, err
	}

	fragment, ok := findNextControl(fragments)
	if !ok {
		return Decision{Outcome: OutcomeStop, Status: "no next control found"}, nil
	}

	// Fragment boxes are normalized to the search rectangle; map the center
	// back into screen coordinates.
	cx, cy := fragment.Box.Center()
	target := automation.Point{
		X: cfg.SearchZone.X + cx*cfg.SearchZone.W,
		Y: cfg.SearchZone.Y + cy*cfg.SearchZone.H,
	}

	e.logger.Debug("clicking next control", "text", fragment.Text, "x", target.X, "y", target.Y)
	if err := e.input.ClickAt(ctx, target); err != nil {
		return Decision{}, err
	}
	e.sleep(cfg.ClickLoadDelay)
	return Decision{Outcome: OutcomeReacquire}, nil
}

// findNextControl returns the first fragment, in detector order, whose text
// contains a next/continue keyword.
func findNextControl(fragments []ocr.Fragment) (ocr.Fragment, bool) {
	for _, fragment := range fragments {
		lower := strings.ToLower(fragment.Text)
		for _, keyword := range nextControlKeywords {
			if strings.Contains(lower, keyword) {
				return fragment, true
			}
		}
	}
	return ocr.Fragment{}, false
}
