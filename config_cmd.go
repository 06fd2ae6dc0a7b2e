package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# Speech engine script or binary. It receives the text on stdin and must
# write raw 16-bit little-endian PCM at 24 kHz to stdout.
engine:
  script: "kokoro-tts"

# Screen capture settings
ocr:
  # Capture scale factor for HiDPI displays.
  scale: 1.0

reader:
  # Voice name; run 'pagereader voices' for the full list.
  voice: "af_alloy"
  # Speaking rate, 0.5 to 2.0.
  speed: 1.0
  # Playback volume, 0.0 to 2.0.
  volume: 1.0

  # Text is split into chunks of roughly this many words.
  chunk:
    min_words: 25
    max_words: 50

  # Pause between chunks.
  inter_chunk_delay: "500ms"
  # Give up if the first chunk takes longer than this to generate.
  first_chunk_timeout: "15s"
  # Retries when generating the next chunk fails at a boundary.
  prefetch_retries: 3

  # End of content is detected when playback stays below threshold_db
  # for the whole window.
  silence:
    threshold_db: -40.0
    window: "1500ms"

  # After turning a page, re-read until the text actually changes.
  duplicate:
    poll: "2s"
    timeout: "15s"

  # Scroll and keep reading when the end of the region is reached.
  auto_scroll: false
  scroll:
    # Fraction of the region kept visible across a scroll.
    overlap: 0.10
    # Wait for the page to settle after scrolling.
    settle_delay: "500ms"

  # Click mode at end of content: off, click-fixed-zone, or click-smart-ocr.
  auto_next: "off"
  click:
    load_delay: "2s"
    # Fixed zone to click, in screen pixels. The click lands at its center.
    # zone:
    #   x: 600
    #   y: 1000
    #   w: 120
    #   h: 40
    # Screen-pixel zone searched for a next-page control in smart mode.
    # search_zone:
    #   x: 0
    #   y: 950
    #   w: 1280
    #   h: 100
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the pagereader config file",
	Long:    paragraph(fmt.Sprintf("\n%s the pagereader config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("pagereader config\npagereader config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("PageReader", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
