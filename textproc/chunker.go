package textproc

import "strings"

// Chunk is one speakable span of source text. Index is the playback order
// within a single recognition pass.
type Chunk struct {
	Index int
	Text  string
}

// ChunkerConfig bounds the size of generated chunks in words.
type ChunkerConfig struct {
	MinWords int
	MaxWords int
}

// DefaultChunkerConfig returns the chunk sizing used for normal reading.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		MinWords: 25,
		MaxWords: 50,
	}
}

// ShortChunkerConfig favors low first-audio latency over fewer engine calls.
func ShortChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		MinWords: 5,
		MaxWords: 15,
	}
}

// Chunker splits recognized text into ordered speakable chunks. It is a pure
// function of its input and configuration.
type Chunker struct {
	config ChunkerConfig
}

// NewChunker creates a chunker with the given bounds. Non-positive or
// inverted bounds fall back to defaults.
func NewChunker(config ChunkerConfig) *Chunker {
	def := DefaultChunkerConfig()
	if config.MinWords <= 0 {
		config.MinWords = def.MinWords
	}
	if config.MaxWords <= 0 || config.MaxWords < config.MinWords {
		config.MaxWords = max(def.MaxWords, config.MinWords)
	}
	return &Chunker{config: config}
}

// Split segments text into chunks. Sentences are accumulated greedily: a
// chunk is flushed once the next sentence would push it past MaxWords and it
// already holds at least MinWords. A sentence that would overflow an
// under-filled chunk is appended anyway; undersized chunks are worse than
// oversized ones because each one costs a generation round trip.
func (c *Chunker) Split(text string) []Chunk {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []Chunk
	var current []string
	words := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  strings.Join(current, " "),
		})
		current = current[:0]
		words = 0
	}

	for _, sentence := range sentences {
		n := len(Words(sentence))
		if n == 0 {
			continue
		}
		if words+n > c.config.MaxWords && words >= c.config.MinWords {
			flush()
		}
		current = append(current, sentence)
		words += n
	}
	flush()

	// A trailing fragment below MinWords reads better merged into its
	// predecessor than spoken as a stub.
	if len(chunks) > 1 {
		last := chunks[len(chunks)-1]
		if len(Words(last.Text)) < c.config.MinWords {
			chunks = chunks[:len(chunks)-1]
			chunks[len(chunks)-1].Text += " " + last.Text
		}
	}

	return chunks
}
