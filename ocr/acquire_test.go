package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func quietLogger() *log.Logger {
	logger := log.New(os.Stderr)
	logger.SetLevel(log.FatalLevel)
	return logger
}

type fakeCapturer struct {
	path string
	err  error
	// captured records the rects seen
	captured []Rect
}

func (f *fakeCapturer) Capture(_ context.Context, rect Rect) (string, error) {
	f.captured = append(f.captured, rect)
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

type fakeRecognizer struct {
	fragments []Fragment
	err       error
}

func (f *fakeRecognizer) Recognize(context.Context, string, []string) ([]Fragment, error) {
	return f.fragments, f.err
}

func tempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAcquirerFiltersEdgeFragments(t *testing.T) {
	fragments := []Fragment{
		{Text: "touches left", Box: Box{X: 0.001, Y: 0.3, W: 0.2, H: 0.05}},
		{Text: "clean one", Box: Box{X: 0.1, Y: 0.1, W: 0.3, H: 0.05}},
		{Text: "touches bottom", Box: Box{X: 0.2, Y: 0.96, W: 0.2, H: 0.035}},
		{Text: "clean two", Box: Box{X: 0.1, Y: 0.5, W: 0.3, H: 0.05}},
		{Text: "touches right", Box: Box{X: 0.85, Y: 0.5, W: 0.149, H: 0.05}},
	}
	a := NewAcquirer(
		&fakeCapturer{path: tempImage(t)},
		&fakeRecognizer{fragments: fragments},
		nil, quietLogger())

	got, err := a.Fragments(context.Background(), Rect{W: 800, H: 600})
	if err != nil {
		t.Fatalf("Fragments: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 surviving fragments, got %d", len(got))
	}
	if got[0].Text != "clean one" || got[1].Text != "clean two" {
		t.Errorf("wrong fragments survived: %q, %q", got[0].Text, got[1].Text)
	}
}

func TestAcquirerTextJoinsInOrder(t *testing.T) {
	fragments := []Fragment{
		{Text: "The quick", Box: Box{X: 0.1, Y: 0.1, W: 0.3, H: 0.05}},
		{Text: "  ", Box: Box{X: 0.1, Y: 0.2, W: 0.3, H: 0.05}},
		{Text: "brown fox.", Box: Box{X: 0.1, Y: 0.3, W: 0.3, H: 0.05}},
	}
	a := NewAcquirer(
		&fakeCapturer{path: tempImage(t)},
		&fakeRecognizer{fragments: fragments},
		nil, quietLogger())

	text, err := a.Text(context.Background(), Rect{W: 800, H: 600})
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "The quick brown fox." {
		t.Errorf("got %q", text)
	}
}

func TestAcquirerErrorKinds(t *testing.T) {
	a := NewAcquirer(
		&fakeCapturer{err: errors.New("no display")},
		&fakeRecognizer{},
		nil, quietLogger())
	if _, err := a.Text(context.Background(), Rect{W: 10, H: 10}); !errors.Is(err, ErrCapture) {
		t.Errorf("expected ErrCapture, got %v", err)
	}

	a = NewAcquirer(
		&fakeCapturer{path: tempImage(t)},
		&fakeRecognizer{err: errors.New("bad image")},
		nil, quietLogger())
	if _, err := a.Text(context.Background(), Rect{W: 10, H: 10}); !errors.Is(err, ErrRecognition) {
		t.Errorf("expected ErrRecognition, got %v", err)
	}
}

func TestAcquirerRemovesCapturedImage(t *testing.T) {
	img := tempImage(t)
	a := NewAcquirer(
		&fakeCapturer{path: img},
		&fakeRecognizer{},
		nil, quietLogger())
	if _, err := a.Text(context.Background(), Rect{W: 10, H: 10}); err != nil {
		t.Fatalf("Text: %v", err)
	}
	if _, err := os.Stat(img); !os.IsNotExist(err) {
		t.Error("captured image was not cleaned up")
	}
}
