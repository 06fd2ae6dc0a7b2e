package reader

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/pagereader/automation"
	"github.com/dgnsrekt/pagereader/ocr"
)

func quietLogger() *log.Logger {
	logger := log.New(os.Stderr)
	logger.SetLevel(log.FatalLevel)
	return logger
}

// fakeSource serves scripted OCR results.
type fakeSource struct {
	mu        sync.Mutex
	texts     []string
	fragments []ocr.Fragment
	err       error
	calls     int
}

func (f *fakeSource) Text(context.Context, ocr.Rect) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.calls++
	if len(f.texts) == 0 {
		return "", nil
	}
	text := f.texts[0]
	if len(f.texts) > 1 {
		f.texts = f.texts[1:]
	}
	return text, nil
}

func (f *fakeSource) Fragments(context.Context, ocr.Rect) ([]ocr.Fragment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.fragments, nil
}

// fakeAutomator records gestures.
type fakeAutomator struct {
	mu      sync.Mutex
	scrolls []float64
	clicks  []automation.Point
	err     error
}

func (f *fakeAutomator) ScrollDown(_ context.Context, _ automation.Point, pixels float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.scrolls = append(f.scrolls, pixels)
	return nil
}

func (f *fakeAutomator) ClickAt(_ context.Context, at automation.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.clicks = append(f.clicks, at)
	return nil
}

func noSleepEngine(source TextSource, input automation.Automator) *ContinuationEngine {
	e := NewContinuationEngine(source, input, quietLogger())
	e.sleep = func(time.Duration) {}
	return e
}

func TestScrollContinuationYieldsSuffix(t *testing.T) {
	source := &fakeSource{texts: []string{"C D E F G."}}
	input := &fakeAutomator{}
	e := noSleepEngine(source, input)

	cfg := DefaultConfig()
	cfg.AutoScroll = true
	rect := ocr.Rect{X: 0, Y: 0, W: 800, H: 600}

	decision, err := e.Next(context.Background(), cfg, rect, "A B C D E.")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if decision.Outcome != OutcomeRead {
		t.Fatalf("expected OutcomeRead, got %v", decision.Outcome)
	}
	if decision.NewText != "F G." {
		t.Errorf("new text = %q, want %q", decision.NewText, "F G.")
	}

	if len(input.scrolls) != 1 {
		t.Fatalf("expected 1 scroll, got %d", len(input.scrolls))
	}
	// 600px viewport with 10% overlap kept.
	if got, want := input.scrolls[0], 540.0; got != want {
		t.Errorf("scroll distance = %g, want %g", got, want)
	}
}

func TestScrollExhaustedFallsThroughToClick(t *testing.T) {
	// Post-scroll OCR returns only already-spoken text.
	source := &fakeSource{texts: []string{"C D E."}}
	input := &fakeAutomator{}
	e := noSleepEngine(source, input)

	cfg := DefaultConfig()
	cfg.AutoScroll = true
	cfg.AutoNext = ModeClickFixedZone
	cfg.ClickZone = ocr.Rect{X: 700, Y: 500, W: 100, H: 40}

	decision, err := e.Next(context.Background(), cfg, ocr.Rect{W: 800, H: 600}, "A B C D E.")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if decision.Outcome != OutcomeReacquire {
		t.Fatalf("expected OutcomeReacquire after fallthrough, got %v", decision.Outcome)
	}
	if len(input.clicks) != 1 {
		t.Fatalf("expected 1 click, got %d", len(input.clicks))
	}
	if got := input.clicks[0]; got.X != 750 || got.Y != 520 {
		t.Errorf("clicked %+v, want center of zone (750, 520)", got)
	}
}

func TestScrollExhaustedNoClickModeStops(t *testing.T) {
	source := &fakeSource{texts: []string{"C D E."}}
	e := noSleepEngine(source, &fakeAutomator{})

	cfg := DefaultConfig()
	cfg.AutoScroll = true

	decision, err := e.Next(context.Background(), cfg, ocr.Rect{W: 800, H: 600}, "A B C D E.")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if decision.Outcome != OutcomeStop {
		t.Errorf("expected OutcomeStop, got %v", decision.Outcome)
	}
}

func TestSmartOCRClicksMatchingFragment(t *testing.T) {
	source := &fakeSource{fragments: []ocr.Fragment{
		{Text: "Chapter 12", Box: ocr.Box{X: 0.1, Y: 0.1, W: 0.2, H: 0.1}},
		{Text: "Next →", Box: ocr.Box{X: 0.25, Y: 0.25, W: 0.5, H: 0.5}},
		{Text: "Next again", Box: ocr.Box{X: 0.8, Y: 0.8, W: 0.1, H: 0.1}},
	}}
	input := &fakeAutomator{}
	e := noSleepEngine(source, input)

	cfg := DefaultConfig()
	cfg.AutoNext = ModeClickSmartOCR
	cfg.SearchZone = ocr.Rect{X: 100, Y: 200, W: 200, H: 100}

	decision, err := e.Next(context.Background(), cfg, ocr.Rect{W: 800, H: 600}, "")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if decision.Outcome != OutcomeReacquire {
		t.Fatalf("expected OutcomeReacquire, got %v", decision.Outcome)
	}

	if len(input.clicks) != 1 {
		t.Fatalf("expected 1 click, got %d", len(input.clicks))
	}
	// First matching fragment in detector order wins; its normalized
	// center (0.5, 0.5) maps into the search zone.
	if got := input.clicks[0]; got.X != 200 || got.Y != 250 {
		t.Errorf("clicked %+v, want (200, 250)", got)
	}
}

func TestSmartOCRNoControlFound(t *testing.T) {
	source := &fakeSource{fragments: []ocr.Fragment{
		{Text: "Chapter 12", Box: ocr.Box{X: 0.1, Y: 0.1, W: 0.2, H: 0.1}},
	}}
	e := noSleepEngine(source, &fakeAutomator{})

	cfg := DefaultConfig()
	cfg.AutoNext = ModeClickSmartOCR
	cfg.SearchZone = ocr.Rect{X: 0, Y: 0, W: 100, H: 100}

	decision, err := e.Next(context.Background(), cfg, ocr.Rect{W: 800, H: 600}, "")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if decision.Outcome != OutcomeStop {
		t.Fatalf("expected OutcomeStop, got %v", decision.Outcome)
	}
	if decision.Status != "no next control found" {
		t.Errorf("status = %q", decision.Status)
	}
}

func TestContinuationOff(t *testing.T) {
	e := noSleepEngine(&fakeSource{}, &fakeAutomator{})
	decision, err := e.Next(context.Background(), DefaultConfig(), ocr.Rect{W: 800, H: 600}, "")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if decision.Outcome != OutcomeStop {
		t.Errorf("expected OutcomeStop for off mode, got %v", decision.Outcome)
	}
}

func TestContinuationScrollError(t *testing.T) {
	input := &fakeAutomator{err: errors.New("no display")}
	e := noSleepEngine(&fakeSource{}, input)

	cfg := DefaultConfig()
	cfg.AutoScroll = true

	if _, err := e.Next(context.Background(), cfg, ocr.Rect{W: 800, H: 600}, ""); err == nil {
		t.Error("expected scroll error to propagate")
	}
}

func TestFindNextControlKeywords(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"Next page", true},
		{"NEXT", true},
		{"Continue reading", true},
		{"»", true},
		{"›", true},
		{"Previous", false},
		{"Chapter index", false},
	}
	for _, tc := range cases {
		_, found := findNextControl([]ocr.Fragment{{Text: tc.text}})
		if found != tc.want {
			t.Errorf("findNextControl(%q) = %v, want %v", tc.text, found, tc.want)
		}
	}
}
