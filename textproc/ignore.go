package textproc

import "strings"

const (
	// signatureWords is how many leading words of an ignored snippet form
	// its match signature.
	signatureWords = 7

	// ignoreOverlapThreshold is the word-overlap ratio at which a sentence
	// is considered a recurrence of an ignored snippet.
	ignoreOverlapThreshold = 0.8

	// minMatchWords guards against trivially matching short sentences.
	minMatchWords = 3
)

// IgnoreFilter truncates recognized text at the first sentence matching a
// previously ignored snippet. Page chrome (headers, footers, ads) recurs
// near-verbatim between captures; word-set overlap tolerates the OCR noise
// that defeats exact string matching.
type IgnoreFilter struct {
	signatures []map[string]struct{}
}

// NewIgnoreFilter builds a filter from stored snippet texts. Snippets too
// short to form a useful signature are skipped.
func NewIgnoreFilter(snippets []string) *IgnoreFilter {
	f := &IgnoreFilter{}
	for _, snippet := range snippets {
		f.Add(snippet)
	}
	return f
}

// Add registers another snippet with the filter.
func (f *IgnoreFilter) Add(snippet string) {
	words := Words(snippet)
	if len(words) == 0 {
		return
	}
	if len(words) > signatureWords {
		words = words[:signatureWords]
	}
	sig := make(map[string]struct{}, len(words))
	for _, w := range words {
		sig[strings.ToLower(w)] = struct{}{}
	}
	f.signatures = append(f.signatures, sig)
}

// Apply returns the prefix of text preceding the first sentence that matches
// any stored signature. Text without a match passes through unchanged.
func (f *IgnoreFilter) Apply(text string) string {
	if len(f.signatures) == 0 {
		return text
	}

	sentences := SplitSentences(text)
	for i, sentence := range sentences {
		words := Words(sentence)
		if len(words) < minMatchWords {
			continue
		}
		if f.matches(words) {
			return strings.Join(sentences[:i], " ")
		}
	}
	return text
}

func (f *IgnoreFilter) matches(words []string) bool {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}

	for _, sig := range f.signatures {
		overlap := 0
		for w := range sig {
			if _, ok := set[w]; ok {
				overlap++
			}
		}
		if float64(overlap)/float64(len(sig)) >= ignoreOverlapThreshold {
			return true
		}
	}
	return false
}
