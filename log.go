package main

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
)

// envOverrides are the few settings read straight from the environment,
// mostly for debugging.
type envOverrides struct {
	EngineScript string `env:"PAGEREADER_ENGINE"`
	LogFile      string `env:"PAGEREADER_LOGFILE"`
	Debug        bool   `env:"PAGEREADER_DEBUG"`
}

// setupLog configures the default logger from the environment and returns
// a closer for the log file, if one was opened.
func setupLog() (func() error, error) {
	noop := func() error { return nil }

	overrides, err := env.ParseAs[envOverrides]()
	if err != nil {
		return noop, err
	}
	if overrides.EngineScript != "" && engineScript == "" {
		engineScript = overrides.EngineScript
	}

	if overrides.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if overrides.LogFile != "" {
		f, err := os.OpenFile(overrides.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return noop, err
		}
		log.SetOutput(f)
		log.SetReportTimestamp(true)
		log.SetTimeFormat(time.Kitchen)
		return f.Close, nil
	}

	log.SetOutput(os.Stderr)
	return noop, nil
}
