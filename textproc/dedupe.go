package textproc

// similarityThreshold is the exclusive word-overlap ratio above which two
// captures are treated as the same page.
const similarityThreshold = 0.90

// Similar reports whether b contains essentially the same words as a. The
// ratio is |a ∩ b| / |a|, so it measures how much of a survives in b. Either
// side being blank is never a duplicate: treating empty OCR output as "page
// unchanged" would stall the retry loop forever on a blank capture.
func Similar(a, b string) bool {
	wordsA := WordSet(a)
	wordsB := WordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return false
	}

	overlap := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			overlap++
		}
	}

	return float64(overlap)/float64(len(wordsA)) > similarityThreshold
}
