// Package main provides the entry point for the pagereader CLI.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/pagereader/audio"
	"github.com/dgnsrekt/pagereader/automation"
	"github.com/dgnsrekt/pagereader/engine"
	"github.com/dgnsrekt/pagereader/ignorelist"
	"github.com/dgnsrekt/pagereader/ocr"
	"github.com/dgnsrekt/pagereader/reader"
)

const appName = "pagereader"

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile   string
	debugFlag    bool
	engineScript string
	voiceFlag    string
	speedFlag    float64
	autoScroll   bool
	autoNext     string
	captureScale float64

	rootCmd = &cobra.Command{
		Use:   "pagereader X Y WIDTH HEIGHT",
		Short: "Read any rectangle of your screen aloud",
		Long: paragraph(fmt.Sprintf(
			"\nPoint %s at a rectangle of your screen and it reads the text there aloud, %s as you listen.",
			keyword(appName), keyword("turning pages"))),
		Example:       paragraph("pagereader 100 80 800 600\npagereader --auto-scroll 0 0 1280 720"),
		SilenceErrors: false,
		SilenceUsage:  true,
		Args:          cobra.ExactArgs(4),
		PersistentPreRun: func(*cobra.Command, []string) {
			if debugFlag {
				log.SetLevel(log.DebugLevel)
			}
		},
		RunE: runRead,
	}
)

func rectFromArgs(args []string) (ocr.Rect, error) {
	vals := make([]float64, 4)
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return ocr.Rect{}, fmt.Errorf("rect component %q is not a number", arg)
		}
		vals[i] = v
	}
	rect := ocr.Rect{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}
	if rect.W <= 0 || rect.H <= 0 {
		return ocr.Rect{}, fmt.Errorf("rect %gx%g has no area", rect.W, rect.H)
	}
	return rect, nil
}

// buildController assembles the whole pipeline from configuration.
func buildController(logger *log.Logger) (*reader.Controller, error) {
	cfg, err := reader.LoadConfigFromViper()
	if err != nil {
		return nil, err
	}
	if voiceFlag != "" {
		cfg.Voice = voiceFlag
	}
	if speedFlag != 0 {
		cfg.Speed = speedFlag
	}
	if autoScroll {
		cfg.AutoScroll = true
	}
	if autoNext != "" {
		cfg.AutoNext = reader.ParseContinuationMode(autoNext)
	}
	if cfg.Voice != "" && !engine.ValidVoice(cfg.Voice) {
		return nil, fmt.Errorf("unknown voice %q (run 'pagereader voices')", cfg.Voice)
	}

	capturer, err := ocr.NewSubprocessCapturer(viper.GetFloat64("ocr.scale"))
	if err != nil {
		return nil, err
	}
	logger.Debug("screen capture ready", "tool", capturer.ToolName())

	recognizer, err := ocr.NewTesseractRecognizer()
	if err != nil {
		return nil, err
	}

	voice := cfg.Voice
	if voice == "" {
		voice = engine.DefaultVoice
	}
	languages := []string{engine.LanguageFor(voice), engine.DefaultLanguage}
	source := ocr.NewAcquirer(capturer, recognizer, languages, logger)

	script := engineScript
	if script == "" {
		script = viper.GetString("engine.script")
	}
	gen, err := engine.NewScriptEngine(script, logger)
	if err != nil {
		return nil, err
	}

	player, err := audio.NewPlayer()
	if err != nil {
		return nil, err
	}

	var continuation *reader.ContinuationEngine
	if input, err := automation.New(); err == nil {
		continuation = reader.NewContinuationEngine(source, input, logger)
	} else {
		logger.Warn("auto-continuation unavailable", "err", err)
	}

	store, err := ignorelist.NewStore(appName)
	if err != nil {
		logger.Warn("ignore list unavailable", "err", err)
		store = nil
	}

	return reader.NewController(source, gen, player, reader.Options{
		Config:       cfg,
		Continuation: continuation,
		IgnoreStore:  store,
		Logger:       logger,
		OnStatus: func(status string) {
			fmt.Println(statusLine(status))
		},
	})
}

func runRead(_ *cobra.Command, args []string) error {
	rect, err := rectFromArgs(args)
	if err != nil {
		return err
	}

	logger := log.Default()
	ctrl, err := buildController(logger)
	if err != nil {
		return err
	}

	if err := ctrl.StartReading(rect); err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		// Non-interactive: read until the session ends on its own.
		waitForIdle(ctrl)
		return nil
	}

	fmt.Println(subtle("commands: play pause stop skip back voice speed volume scroll next ignore status quit"))
	return controlLoop(ctrl, rect)
}

// waitForIdle blocks until the controller returns to idle.
func waitForIdle(ctrl *reader.Controller) {
	for ctrl.State() != reader.StateIdle {
		time.Sleep(200 * time.Millisecond)
	}
}

// controlLoop maps stdin commands onto the controller operations.
func controlLoop(ctrl *reader.Controller, rect ocr.Rect) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, rest := fields[0], fields[1:]

		var err error
		switch cmd {
		case "play", "resume":
			ctrl.Play()
		case "pause":
			ctrl.Pause()
		case "stop":
			ctrl.Stop()
		case "read":
			err = ctrl.StartReading(rect)
		case "skip":
			err = ctrl.SkipForward()
		case "back":
			err = ctrl.SkipBackward()
		case "voice":
			if len(rest) != 1 {
				err = fmt.Errorf("usage: voice NAME")
			} else {
				err = ctrl.SetVoice(rest[0])
			}
		case "speed":
			var rate float64
			if len(rest) == 1 {
				rate, err = strconv.ParseFloat(rest[0], 64)
			} else {
				err = fmt.Errorf("usage: speed RATE")
			}
			if err == nil {
				err = ctrl.SetSpeed(rate)
			}
		case "volume":
			var level float64
			if len(rest) == 1 {
				level, err = strconv.ParseFloat(rest[0], 64)
			} else {
				err = fmt.Errorf("usage: volume LEVEL")
			}
			if err == nil {
				ctrl.SetVolume(level)
			}
		case "scroll":
			if len(rest) != 1 || (rest[0] != "on" && rest[0] != "off") {
				err = fmt.Errorf("usage: scroll on|off")
			} else {
				ctrl.ToggleAutoScroll(rest[0] == "on")
			}
		case "next":
			if len(rest) != 1 {
				err = fmt.Errorf("usage: next off|fixed|smart")
			} else {
				ctrl.SetAutoNextMode(reader.ParseContinuationMode(rest[0]))
			}
		case "ignore":
			var zone ocr.Rect
			zone, err = rectFromArgs(rest)
			if err == nil {
				err = ctrl.ConfirmIgnoreZone(context.Background(), zone)
			}
		case "status":
			current, total := ctrl.Progress()
			fmt.Printf("%s %s (part %d of %d)\n",
				statusLine(ctrl.Status()), subtle(ctrl.State().String()), current+1, total)
		case "quit", "exit":
			ctrl.Stop()
			return nil
		default:
			err = fmt.Errorf("unknown command %q", cmd)
		}

		if err != nil {
			fmt.Println(errorLine(err.Error()))
		}
	}
	ctrl.Stop()
	return scanner.Err()
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "verbose logging")
	rootCmd.Flags().StringVar(&engineScript, "engine", "", "speech engine script or binary")
	rootCmd.Flags().StringVar(&voiceFlag, "voice", "", "voice name (see 'pagereader voices')")
	rootCmd.Flags().Float64Var(&speedFlag, "speed", 0, "speaking rate, 0.5 to 2.0")
	rootCmd.Flags().BoolVar(&autoScroll, "auto-scroll", false, "scroll and keep reading at end of content")
	rootCmd.Flags().StringVar(&autoNext, "auto-next", "", "click mode at end of content (off/fixed/smart)")
	rootCmd.Flags().Float64Var(&captureScale, "scale", 0, "capture scale factor for HiDPI displays")

	_ = viper.BindPFlag("engine.script", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("ocr.scale", rootCmd.Flags().Lookup("scale"))

	viper.SetDefault("engine.script", "kokoro-tts")
	viper.SetDefault("ocr.scale", 1.0)
	reader.SetDefaults()

	rootCmd.AddCommand(configCmd, manCmd, voicesCmd)
}

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List available voices",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) {
		for _, voice := range engine.Voices() {
			fmt.Printf("%s  %s\n", voice, subtle(engine.LanguageFor(voice)))
		}
	},
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, appName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, appName)}, dirs...)
	}

	if c := os.Getenv("PAGEREADER_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName(appName)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(appName)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], appName+".yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
