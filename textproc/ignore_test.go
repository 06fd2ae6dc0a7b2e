package textproc_test

import (
	"strings"
	"testing"

	"github.com/dgnsrekt/pagereader/textproc"
)

func TestIgnoreFilterNoSnippets(t *testing.T) {
	f := textproc.NewIgnoreFilter(nil)
	input := "Some page text. More text."
	if got := f.Apply(input); got != input {
		t.Errorf("filter without snippets must pass input through, got %q", got)
	}
}

func TestIgnoreFilterNoMatch(t *testing.T) {
	f := textproc.NewIgnoreFilter([]string{"subscribe to our newsletter today friends"})
	input := "An article about something entirely different. It keeps going."
	if got := f.Apply(input); got != input {
		t.Errorf("unmatched input must pass through, got %q", got)
	}
}

func TestIgnoreFilterTruncatesAtStopMarker(t *testing.T) {
	f := textproc.NewIgnoreFilter([]string{"the quick brown fox jumps over lazy"})

	input := "A real paragraph worth reading aloud. " +
		"The quick brown fox jumps over lazy dogs. " +
		"Trailing chrome that must never be spoken."

	got := f.Apply(input)
	if !strings.Contains(got, "real paragraph") {
		t.Errorf("content before the marker was lost: %q", got)
	}
	if strings.Contains(got, "quick brown fox") {
		t.Errorf("stop-marker sentence leaked through: %q", got)
	}
	if strings.Contains(got, "Trailing chrome") {
		t.Errorf("text after the marker leaked through: %q", got)
	}
}

func TestIgnoreFilterToleratesOCRNoise(t *testing.T) {
	f := textproc.NewIgnoreFilter([]string{"the quick brown fox jumps over lazy"})

	// One signature word mangled by OCR: 6/7 overlap is still >= 0.8.
	input := "Keep this sentence please. The qu1ck brown fox jumps over lazy dogs again."
	got := f.Apply(input)
	if got != "Keep this sentence please." {
		t.Errorf("noisy recurrence not caught, got %q", got)
	}
}

func TestIgnoreFilterSkipsShortSentences(t *testing.T) {
	f := textproc.NewIgnoreFilter([]string{"the quick"})

	// Two-word sentences never match, regardless of overlap.
	input := "The quick. Something longer follows here."
	if got := f.Apply(input); got != input {
		t.Errorf("short sentence should not match, got %q", got)
	}
}
