package reader

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"speed too high", func(c *Config) { c.Speed = 3.0 }},
		{"speed too low", func(c *Config) { c.Speed = 0.1 }},
		{"negative volume", func(c *Config) { c.Volume = -1 }},
		{"overlap out of range", func(c *Config) { c.OverlapFraction = 1.0 }},
		{"positive silence threshold", func(c *Config) { c.SilenceThresholdDB = 5 }},
		{"timeout shorter than poll", func(c *Config) {
			c.DuplicatePoll = 10 * time.Second
			c.DuplicateTimeout = time.Second
		}},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestParseContinuationMode(t *testing.T) {
	cases := map[string]ContinuationMode{
		"off":              ModeOff,
		"click-fixed-zone": ModeClickFixedZone,
		"fixed":            ModeClickFixedZone,
		"click-smart-ocr":  ModeClickSmartOCR,
		"smart":            ModeClickSmartOCR,
		"garbage":          ModeOff,
		"":                 ModeOff,
	}
	for in, want := range cases {
		if got := ParseContinuationMode(in); got != want {
			t.Errorf("ParseContinuationMode(%q) = %v, want %v", in, got, want)
		}
	}
	for _, mode := range []ContinuationMode{ModeOff, ModeClickFixedZone, ModeClickSmartOCR} {
		if got := ParseContinuationMode(mode.String()); got != mode {
			t.Errorf("mode %v does not round-trip through String", mode)
		}
	}
}

func TestLoadConfigFromViper(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("reader.voice", "bf_emma")
	viper.Set("reader.speed", 1.25)
	viper.Set("reader.chunk.min_words", 10)
	viper.Set("reader.chunk.max_words", 20)
	viper.Set("reader.inter_chunk_delay", "750ms")
	viper.Set("reader.silence.threshold_db", -35.0)
	viper.Set("reader.auto_scroll", true)
	viper.Set("reader.auto_next", "click-smart-ocr")
	viper.Set("reader.click.search_zone.x", 100.0)
	viper.Set("reader.click.search_zone.y", 200.0)
	viper.Set("reader.click.search_zone.w", 300.0)
	viper.Set("reader.click.search_zone.h", 50.0)

	cfg, err := LoadConfigFromViper()
	if err != nil {
		t.Fatalf("LoadConfigFromViper: %v", err)
	}

	if cfg.Voice != "bf_emma" || cfg.Speed != 1.25 {
		t.Errorf("voice/speed = %q/%.2f", cfg.Voice, cfg.Speed)
	}
	if cfg.Chunker.MinWords != 10 || cfg.Chunker.MaxWords != 20 {
		t.Errorf("chunker = %+v", cfg.Chunker)
	}
	if cfg.InterChunkDelay != 750*time.Millisecond {
		t.Errorf("inter-chunk delay = %v", cfg.InterChunkDelay)
	}
	if cfg.SilenceThresholdDB != -35.0 {
		t.Errorf("silence threshold = %v", cfg.SilenceThresholdDB)
	}
	if !cfg.AutoScroll || cfg.AutoNext != ModeClickSmartOCR {
		t.Errorf("continuation = %v/%v", cfg.AutoScroll, cfg.AutoNext)
	}
	if cfg.SearchZone.X != 100 || cfg.SearchZone.H != 50 {
		t.Errorf("search zone = %+v", cfg.SearchZone)
	}

	// Unset keys keep their defaults.
	if cfg.FirstChunkTimeout != 15*time.Second {
		t.Errorf("first-chunk timeout = %v", cfg.FirstChunkTimeout)
	}
}

func TestLoadConfigFromViperRejectsInvalid(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("reader.speed", 9.0)
	if _, err := LoadConfigFromViper(); err == nil {
		t.Error("expected error for invalid speed")
	}
}
