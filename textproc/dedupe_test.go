package textproc_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dgnsrekt/pagereader/textproc"
)

// wordList returns n distinct tokens.
func wordList(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("tok%03d", i)
	}
	return words
}

// overlappingText returns a text sharing exactly shared of a's 100 words,
// with the remainder replaced by tokens absent from a.
func overlappingText(shared int) string {
	words := wordList(100)[:shared]
	for i := shared; i < 100; i++ {
		words = append(words, fmt.Sprintf("other%03d", i))
	}
	return strings.Join(words, " ")
}

func TestSimilarIdentical(t *testing.T) {
	text := strings.Join(wordList(50), " ")
	if !textproc.Similar(text, text) {
		t.Error("a text must be similar to itself")
	}
}

func TestSimilarDisjoint(t *testing.T) {
	a := "alpha beta gamma"
	b := "delta epsilon zeta"
	if textproc.Similar(a, b) {
		t.Error("disjoint word sets must not be similar")
	}
}

func TestSimilarEmptyNeverMatches(t *testing.T) {
	text := strings.Join(wordList(10), " ")
	if textproc.Similar("", text) {
		t.Error("empty first text must not be similar")
	}
	if textproc.Similar(text, "") {
		t.Error("empty second text must not be similar")
	}
	if textproc.Similar("", "") {
		t.Error("two empty texts must not be similar")
	}
}

func TestSimilarThresholdBoundary(t *testing.T) {
	a := strings.Join(wordList(100), " ")

	if !textproc.Similar(a, overlappingText(91)) {
		t.Error("91% overlap must be similar")
	}
	if textproc.Similar(a, overlappingText(90)) {
		t.Error("exactly 90% overlap must not be similar (threshold is exclusive)")
	}
	if textproc.Similar(a, overlappingText(89)) {
		t.Error("89% overlap must not be similar")
	}
}
