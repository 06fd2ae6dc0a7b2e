// Package textproc prepares recognized screen text for speech: sentence
// segmentation, chunking, ignore filtering, duplicate-page detection and
// scroll-diff anchoring.
package textproc

import (
	"strings"
	"unicode"
)

// sentenceEnders is the punctuation set used when no richer boundary
// information is available. Bullets and dashes count as boundaries because
// OCR output of lists and headlines rarely carries terminal periods.
const sentenceEnders = ".!?;:•—"

// SplitSentences splits plain text into sentence-like units. Boundaries are
// detected at terminal punctuation followed by whitespace or end of input,
// with common abbreviations, decimal numbers, and ellipses left intact.
func SplitSentences(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var sentences []string
	lastStart := 0

	for i := 0; i < len(runes); i++ {
		if !isEnderRune(runes[i]) {
			continue
		}

		// Swallow runs of terminal punctuation ("?!", "...").
		punctEnd := i + 1
		for punctEnd < len(runes) && isEnderRune(runes[punctEnd]) {
			punctEnd++
		}

		// Closing quotes and brackets belong to the sentence.
		for punctEnd < len(runes) && isClosingRune(runes[punctEnd]) {
			punctEnd++
		}

		if !isBoundary(runes, i) {
			i = punctEnd - 1
			continue
		}

		s := strings.TrimSpace(string(runes[lastStart:punctEnd]))
		if s != "" {
			sentences = append(sentences, s)
		}

		for punctEnd < len(runes) && unicode.IsSpace(runes[punctEnd]) {
			punctEnd++
		}
		lastStart = punctEnd
		i = punctEnd - 1
	}

	if lastStart < len(runes) {
		if s := strings.TrimSpace(string(runes[lastStart:])); s != "" {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	return sentences
}

func isEnderRune(r rune) bool {
	return strings.ContainsRune(sentenceEnders, r)
}

func isClosingRune(r rune) bool {
	return r == '"' || r == '\'' || r == ')' || r == ']' || r == '”' || r == '’'
}

// isBoundary reports whether the punctuation at pos genuinely terminates a
// sentence rather than an abbreviation, decimal, or ellipsis.
func isBoundary(runes []rune, pos int) bool {
	punct := runes[pos]

	if punct == '.' {
		// Ellipsis is not a boundary mid-run.
		if pos+2 < len(runes) && runes[pos+1] == '.' && runes[pos+2] == '.' {
			return false
		}

		// Decimal numbers: "3.14".
		if pos > 0 && pos+1 < len(runes) &&
			unicode.IsDigit(runes[pos-1]) && unicode.IsDigit(runes[pos+1]) {
			return false
		}

		// Word immediately before the period.
		start := pos - 1
		for start >= 0 && !unicode.IsSpace(runes[start]) {
			start--
		}
		word := strings.ToLower(string(runes[start+1 : pos]))
		if abbreviations[word] {
			return false
		}
		// Multi-dot abbreviations like "e.g" or "u.s" reach here with the
		// inner dots attached.
		if strings.Contains(word, ".") {
			return false
		}
	}

	// End of input always terminates.
	next := pos + 1
	for next < len(runes) && isEnderRune(runes[next]) {
		next++
	}
	for next < len(runes) && isClosingRune(runes[next]) {
		next++
	}
	if next >= len(runes) {
		return true
	}

	// Otherwise require trailing whitespace; "example.com" is not two
	// sentences.
	return unicode.IsSpace(runes[next])
}

// abbreviations that do not end a sentence when followed by a period.
var abbreviations = func() map[string]bool {
	words := []string{
		"mr", "mrs", "ms", "dr", "prof", "sr", "jr", "st",
		"inc", "ltd", "co", "corp", "dept", "est",
		"i.e", "e.g", "etc", "vs", "cf", "al", "no", "vol",
		"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec",
		"mon", "tue", "wed", "thu", "fri", "sat", "sun",
		"ft", "lb", "lbs", "oz", "kg", "km", "cm", "mm", "mi",
		"hr", "hrs", "min", "mins", "sec", "secs",
		"u.s", "u.k", "u.n", "e.u",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}()

// Words splits text on whitespace, dropping empty tokens.
func Words(text string) []string {
	return strings.Fields(text)
}

// WordSet returns the set of distinct whitespace-delimited tokens.
func WordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		set[w] = struct{}{}
	}
	return set
}
