package textproc

import "strings"

// anchorLength is how many trailing characters of previously read text are
// used to locate the seam in a post-scroll capture.
const anchorLength = 150

// minOverlapWords is the smallest word overlap accepted as a seam match.
const minOverlapWords = 3

// NewSuffix returns the portion of next that follows previously read text.
// The tail of prev acts as an anchor: if it is found inside next, everything
// after it is new. When the exact anchor is missing (reflow, OCR drift at the
// seam line), a punctuation-insensitive word-level match is tried. If no
// overlap is found at all, the whole capture is treated as new rather than
// losing content.
func NewSuffix(prev, next string) string {
	prev = strings.TrimSpace(prev)
	next = strings.TrimSpace(next)
	if prev == "" {
		return next
	}
	if next == "" {
		return ""
	}

	anchor := prev
	if runes := []rune(prev); len(runes) > anchorLength {
		anchor = string(runes[len(runes)-anchorLength:])
	}

	if idx := strings.Index(next, anchor); idx >= 0 {
		return strings.TrimSpace(next[idx+len(anchor):])
	}

	if suffix, ok := wordSeam(Words(anchor), Words(next)); ok {
		return suffix
	}

	return next
}

// wordSeam finds the longest suffix of anchorWords occurring contiguously in
// nextWords, comparing words with trailing punctuation stripped, and returns
// the text after the occurrence.
func wordSeam(anchorWords, nextWords []string) (string, bool) {
	normAnchor := normalizeWords(anchorWords)
	normNext := normalizeWords(nextWords)

	for start := 0; start <= len(normAnchor)-minOverlapWords; start++ {
		suffix := normAnchor[start:]
		for pos := 0; pos+len(suffix) <= len(normNext); pos++ {
			if matchAt(normNext, pos, suffix) {
				rest := nextWords[pos+len(suffix):]
				return strings.Join(rest, " "), true
			}
		}
	}
	return "", false
}

func matchAt(haystack []string, pos int, needle []string) bool {
	for i, w := range needle {
		if haystack[pos+i] != w {
			return false
		}
	}
	return true
}

func normalizeWords(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(strings.TrimRight(w, ".,:;!?…"))
	}
	return out
}
