package reader

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/dgnsrekt/pagereader/ocr"
	"github.com/dgnsrekt/pagereader/textproc"
)

// ContinuationMode selects what happens when a page runs out of audible
// content.
type ContinuationMode int

const (
	// ModeOff ends the session at end of content.
	ModeOff ContinuationMode = iota
	// ModeClickFixedZone clicks the center of a configured rectangle.
	ModeClickFixedZone
	// ModeClickSmartOCR searches a rectangle for a next/continue control
	// and clicks it.
	ModeClickSmartOCR
)

// String returns the mode name used in config files.
func (m ContinuationMode) String() string {
	switch m {
	case ModeClickFixedZone:
		return "click-fixed-zone"
	case ModeClickSmartOCR:
		return "click-smart-ocr"
	default:
		return "off"
	}
}

// ParseContinuationMode maps a config value to a mode. Unknown values fall
// back to off.
func ParseContinuationMode(s string) ContinuationMode {
	switch s {
	case "click-fixed-zone", "fixed":
		return ModeClickFixedZone
	case "click-smart-ocr", "smart":
		return ModeClickSmartOCR
	default:
		return ModeOff
	}
}

// Config holds every tunable of the reading pipeline.
type Config struct {
	// Voice is the engine voice name
	Voice string
	// Speed is the speaking-rate multiplier
	Speed float64
	// Volume is the playback volume, 0..2
	Volume float64

	// Chunker controls how recognized text is cut into utterances
	Chunker textproc.ChunkerConfig

	// InterChunkDelay is the gap inserted between consecutive chunks
	InterChunkDelay time.Duration
	// FirstChunkTimeout bounds acquisition-to-first-audio; expiry resets
	// the session
	FirstChunkTimeout time.Duration
	// PrefetchRetries bounds re-issued prefetches after soft failures at
	// one chunk boundary
	PrefetchRetries int

	// SilenceThresholdDB and SilenceWindow define audible end of content:
	// output must stay below the threshold for the whole window
	SilenceThresholdDB float64
	SilenceWindow      time.Duration

	// DuplicatePoll and DuplicateTimeout drive the page-change retry loop
	// after a continuation click
	DuplicatePoll    time.Duration
	DuplicateTimeout time.Duration

	// AutoScroll enables scroll-and-reread continuation
	AutoScroll bool
	// AutoNext selects the click-based continuation mode
	AutoNext ContinuationMode
	// OverlapFraction is how much of the viewport a continuation scroll
	// keeps visible
	OverlapFraction float64
	// SettleDelay is the wait after a scroll before re-capturing
	SettleDelay time.Duration
	// ClickLoadDelay is the wait after a continuation click before
	// re-capturing
	ClickLoadDelay time.Duration
	// ClickZone is the fixed next-control rectangle for ModeClickFixedZone,
	// in screen pixels
	ClickZone ocr.Rect
	// SearchZone is where ModeClickSmartOCR looks for a control, in screen
	// pixels
	SearchZone ocr.Rect
}

// DefaultConfig returns the tuning the app ships with.
func DefaultConfig() Config {
	return Config{
		Voice:              "",
		Speed:              1.0,
		Volume:             1.0,
		Chunker:            textproc.DefaultChunkerConfig(),
		InterChunkDelay:    500 * time.Millisecond,
		FirstChunkTimeout:  15 * time.Second,
		PrefetchRetries:    3,
		SilenceThresholdDB: -40.0,
		SilenceWindow:      1500 * time.Millisecond,
		DuplicatePoll:      2 * time.Second,
		DuplicateTimeout:   15 * time.Second,
		AutoScroll:         false,
		AutoNext:           ModeOff,
		OverlapFraction:    0.10,
		SettleDelay:        500 * time.Millisecond,
		ClickLoadDelay:     2 * time.Second,
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Speed != 0 && (c.Speed < 0.5 || c.Speed > 2.0) {
		return fmt.Errorf("speed %.2f outside [0.5, 2.0]", c.Speed)
	}
	if c.Volume < 0 || c.Volume > 2 {
		return fmt.Errorf("volume %.2f outside [0, 2]", c.Volume)
	}
	if c.OverlapFraction < 0 || c.OverlapFraction >= 1 {
		return fmt.Errorf("overlap fraction %.2f outside [0, 1)", c.OverlapFraction)
	}
	if c.SilenceThresholdDB >= 0 {
		return fmt.Errorf("silence threshold %.1f must be negative dBFS", c.SilenceThresholdDB)
	}
	if c.DuplicatePoll <= 0 || c.DuplicateTimeout < c.DuplicatePoll {
		return fmt.Errorf("duplicate-page retry window %v/%v is not usable", c.DuplicatePoll, c.DuplicateTimeout)
	}
	return nil
}

// LoadConfigFromViper reads the reader section of the app configuration.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("reader.voice") {
		cfg.Voice = viper.GetString("reader.voice")
	}
	if viper.IsSet("reader.speed") {
		cfg.Speed = viper.GetFloat64("reader.speed")
	}
	if viper.IsSet("reader.volume") {
		cfg.Volume = viper.GetFloat64("reader.volume")
	}

	if viper.IsSet("reader.chunk.min_words") {
		cfg.Chunker.MinWords = viper.GetInt("reader.chunk.min_words")
	}
	if viper.IsSet("reader.chunk.max_words") {
		cfg.Chunker.MaxWords = viper.GetInt("reader.chunk.max_words")
	}

	if viper.IsSet("reader.inter_chunk_delay") {
		if d, err := time.ParseDuration(viper.GetString("reader.inter_chunk_delay")); err == nil {
			cfg.InterChunkDelay = d
		}
	}
	if viper.IsSet("reader.first_chunk_timeout") {
		if d, err := time.ParseDuration(viper.GetString("reader.first_chunk_timeout")); err == nil {
			cfg.FirstChunkTimeout = d
		}
	}
	if viper.IsSet("reader.prefetch_retries") {
		cfg.PrefetchRetries = viper.GetInt("reader.prefetch_retries")
	}

	if viper.IsSet("reader.silence.threshold_db") {
		cfg.SilenceThresholdDB = viper.GetFloat64("reader.silence.threshold_db")
	}
	if viper.IsSet("reader.silence.window") {
		if d, err := time.ParseDuration(viper.GetString("reader.silence.window")); err == nil {
			cfg.SilenceWindow = d
		}
	}

	if viper.IsSet("reader.duplicate.poll") {
		if d, err := time.ParseDuration(viper.GetString("reader.duplicate.poll")); err == nil {
			cfg.DuplicatePoll = d
		}
	}
	if viper.IsSet("reader.duplicate.timeout") {
		if d, err := time.ParseDuration(viper.GetString("reader.duplicate.timeout")); err == nil {
			cfg.DuplicateTimeout = d
		}
	}

	if viper.IsSet("reader.auto_scroll") {
		cfg.AutoScroll = viper.GetBool("reader.auto_scroll")
	}
	if viper.IsSet("reader.auto_next") {
		cfg.AutoNext = ParseContinuationMode(viper.GetString("reader.auto_next"))
	}
	if viper.IsSet("reader.scroll.overlap") {
		cfg.OverlapFraction = viper.GetFloat64("reader.scroll.overlap")
	}
	if viper.IsSet("reader.scroll.settle_delay") {
		if d, err := time.ParseDuration(viper.GetString("reader.scroll.settle_delay")); err == nil {
			cfg.SettleDelay = d
		}
	}
	if viper.IsSet("reader.click.load_delay") {
		if d, err := time.ParseDuration(viper.GetString("reader.click.load_delay")); err == nil {
			cfg.ClickLoadDelay = d
		}
	}
	cfg.ClickZone = rectFromViper("reader.click.zone")
	cfg.SearchZone = rectFromViper("reader.click.search_zone")

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid reader configuration: %w", err)
	}
	return cfg, nil
}

func rectFromViper(key string) ocr.Rect {
	return ocr.Rect{
		X: viper.GetFloat64(key + ".x"),
		Y: viper.GetFloat64(key + ".y"),
		W: viper.GetFloat64(key + ".w"),
		H: viper.GetFloat64(key + ".h"),
	}
}

// SetDefaults registers reader defaults with viper so the config command
// can render them.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("reader.voice", defaults.Voice)
	viper.SetDefault("reader.speed", defaults.Speed)
	viper.SetDefault("reader.volume", defaults.Volume)
	viper.SetDefault("reader.chunk.min_words", defaults.Chunker.MinWords)
	viper.SetDefault("reader.chunk.max_words", defaults.Chunker.MaxWords)
	viper.SetDefault("reader.inter_chunk_delay", defaults.InterChunkDelay.String())
	viper.SetDefault("reader.first_chunk_timeout", defaults.FirstChunkTimeout.String())
	viper.SetDefault("reader.prefetch_retries", defaults.PrefetchRetries)
	viper.SetDefault("reader.silence.threshold_db", defaults.SilenceThresholdDB)
	viper.SetDefault("reader.silence.window", defaults.SilenceWindow.String())
	viper.SetDefault("reader.duplicate.poll", defaults.DuplicatePoll.String())
	viper.SetDefault("reader.duplicate.timeout", defaults.DuplicateTimeout.String())
	viper.SetDefault("reader.auto_scroll", defaults.AutoScroll)
	viper.SetDefault("reader.auto_next", defaults.AutoNext.String())
	viper.SetDefault("reader.scroll.overlap", defaults.OverlapFraction)
	viper.SetDefault("reader.scroll.settle_delay", defaults.SettleDelay.String())
	viper.SetDefault("reader.click.load_delay", defaults.ClickLoadDelay.String())
}
