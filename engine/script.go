package engine

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/pagereader/audio"
)

// Speed limits for the speaking-rate multiplier.
const (
	DefaultSpeed = 1.0
	MinSpeed     = 0.5
	MaxSpeed     = 2.0
)

// DefaultGenerateTimeout bounds a single synthesis call. Long chunks on slow
// hardware can take a while, so this is generous.
const DefaultGenerateTimeout = 60 * time.Second

// ScriptEngine drives an external synthesis script. The script receives the
// text on stdin plus voice, language, and speed flags, and writes raw
// signed 16-bit little-endian mono PCM at 24 kHz to stdout. Anything it
// prints to stderr is forwarded to the log verbatim.
type ScriptEngine struct {
	// scriptPath is the synthesis script or binary to invoke
	scriptPath string
	// assembler converts the raw engine PCM into playable stereo audio
	assembler *audio.Assembler
	// timeout for a single synthesis call
	timeout time.Duration

	logger *log.Logger
}

// ScriptOption configures a ScriptEngine.
type ScriptOption func(*ScriptEngine)

// WithTimeout overrides the synthesis timeout.
func WithTimeout(d time.Duration) ScriptOption {
	return func(e *ScriptEngine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithAssembler overrides the audio assembler, letting callers tune the
// tail trim.
func WithAssembler(a *audio.Assembler) ScriptOption {
	return func(e *ScriptEngine) {
		if a != nil {
			e.assembler = a
		}
	}
}

// NewScriptEngine creates an engine backed by the script at path. The path
// must name an existing executable, either absolute or resolvable in PATH.
func NewScriptEngine(path string, logger *log.Logger, opts ...ScriptOption) (*ScriptEngine, error) {
	resolved, err := resolveScript(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	e := &ScriptEngine{
		scriptPath: resolved,
		assembler:  audio.NewAssembler(audio.DefaultTailTrimSamples),
		timeout:    DefaultGenerateTimeout,
		logger:     logger.With("component", "engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// resolveScript locates the synthesis executable. Relative names are looked
// up in PATH; explicit paths are checked directly.
func resolveScript(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty script path", ErrEngineNotFound)
	}
	if strings.ContainsRune(path, os.PathSeparator) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEngineNotFound, err)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf("%w: %s", ErrEngineNotFound, abs)
		}
		return abs, nil
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %q not in PATH", ErrEngineNotFound, path)
	}
	return resolved, nil
}

// Generate synthesizes req.Text and returns the path of a temporary WAV file
// holding playback-ready audio. The session token passes through untouched.
func (e *ScriptEngine) Generate(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Result{}, fmt.Errorf("%w: empty text", ErrGenerationFailed)
	}

	voice := req.Voice
	if voice == "" {
		voice = DefaultVoice
	}
	speed := req.Speed
	if speed < MinSpeed || speed > MaxSpeed {
		speed = DefaultSpeed
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := []string{
		"--voice", voice,
		"--speed", fmt.Sprintf("%.2f", speed),
	}
	if req.Language != "" {
		args = append(args, "--lang", req.Language)
	}

	cmd := exec.CommandContext(ctx, e.scriptPath, args...)

	// Stdin must be wired before Start or the script can race a closed pipe.
	cmd.Stdin = strings.NewReader(req.Text)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, fmt.Errorf("%w: stderr pipe: %v", ErrGenerationFailed, err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("%w: start %s: %v", ErrGenerationFailed, e.scriptPath, err)
	}

	// The script narrates progress on stderr; keep it in the log so engine
	// failures are diagnosable after the fact.
	var lastLine string
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lastLine = line
		e.logger.Debug("engine stderr", "line", line)
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Result{}, fmt.Errorf("%w: timed out after %v", ErrGenerationFailed, e.timeout)
		}
		if lastLine != "" {
			return Result{}, fmt.Errorf("%w: %v: %s", ErrGenerationFailed, err, lastLine)
		}
		return Result{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	pcm := stdout.Bytes()
	if len(pcm) == 0 {
		return Result{}, ErrNoAudioProduced
	}

	buf, err := e.assembler.Assemble(pcm)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	path, err := audio.WriteTempWAV(buf)
	if err != nil {
		return Result{}, fmt.Errorf("%w: write wav: %v", ErrGenerationFailed, err)
	}

	e.logger.Debug("generated audio",
		"chars", len(req.Text),
		"duration", buf.Duration().Round(time.Millisecond),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return Result{Path: path, Session: req.Session}, nil
}
