package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/pagereader/audio"
)

// writeFakeEngine drops a shell script into dir that behaves like the real
// synthesis script: it prints diagnostics on stderr and PCM on stdout.
func writeFakeEngine(t *testing.T, dir, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a Unix shell")
	}
	path := filepath.Join(dir, "fake-engine.sh")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing fake engine: %v", err)
	}
	return path
}

func quietLogger() *log.Logger {
	logger := log.New(os.Stderr)
	logger.SetLevel(log.FatalLevel)
	return logger
}

func TestScriptEngineGenerate(t *testing.T) {
	dir := t.TempDir()
	// 4800 samples of silence: 0.2s of mono PCM at 24kHz.
	script := writeFakeEngine(t, dir, `
echo "synthesizing voice=$2 speed=$4" >&2
head -c 9600 /dev/zero
`)

	eng, err := NewScriptEngine(script, quietLogger(), WithAssembler(audio.NewAssembler(0)))
	if err != nil {
		t.Fatalf("NewScriptEngine: %v", err)
	}

	res, err := eng.Generate(context.Background(), Request{
		Text:    "hello there",
		Voice:   "af_bella",
		Speed:   1.0,
		Session: "session-1",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	defer os.Remove(res.Path)

	if res.Session != "session-1" {
		t.Errorf("session token not echoed: got %q", res.Session)
	}

	buf, err := audio.ReadWAV(res.Path)
	if err != nil {
		t.Fatalf("reading generated wav: %v", err)
	}
	if buf.Channels != audio.PlaybackChans {
		t.Errorf("expected stereo output, got %d channels", buf.Channels)
	}
	if buf.SampleRate != audio.SampleRate {
		t.Errorf("expected %d Hz, got %d", audio.SampleRate, buf.SampleRate)
	}
	// 4800 mono samples become 4800 stereo frames.
	if got := buf.Frames(); got != 4800 {
		t.Errorf("expected 4800 frames, got %d", got)
	}
}

func TestScriptEngineEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	script := writeFakeEngine(t, dir, `exit 0`)

	eng, err := NewScriptEngine(script, quietLogger())
	if err != nil {
		t.Fatalf("NewScriptEngine: %v", err)
	}

	_, err = eng.Generate(context.Background(), Request{Text: "anything"})
	if !errors.Is(err, ErrNoAudioProduced) {
		t.Errorf("expected ErrNoAudioProduced, got %v", err)
	}
}

func TestScriptEngineNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	script := writeFakeEngine(t, dir, `
echo "model file missing" >&2
exit 3
`)

	eng, err := NewScriptEngine(script, quietLogger())
	if err != nil {
		t.Fatalf("NewScriptEngine: %v", err)
	}

	_, err = eng.Generate(context.Background(), Request{Text: "anything"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	// The stderr tail should surface in the error for diagnosability.
	if got := err.Error(); !strings.Contains(got, "model file missing") {
		t.Errorf("error should carry stderr tail, got %q", got)
	}
}

func TestScriptEngineTimeout(t *testing.T) {
	dir := t.TempDir()
	script := writeFakeEngine(t, dir, `sleep 10`)

	eng, err := NewScriptEngine(script, quietLogger(), WithTimeout(200*time.Millisecond))
	if err != nil {
		t.Fatalf("NewScriptEngine: %v", err)
	}

	start := time.Now()
	_, err = eng.Generate(context.Background(), Request{Text: "anything"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed on timeout, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout did not cut the subprocess off")
	}
}

func TestScriptEngineEmptyText(t *testing.T) {
	dir := t.TempDir()
	script := writeFakeEngine(t, dir, `head -c 9600 /dev/zero`)

	eng, err := NewScriptEngine(script, quietLogger())
	if err != nil {
		t.Fatalf("NewScriptEngine: %v", err)
	}

	if _, err := eng.Generate(context.Background(), Request{Text: "   "}); err == nil {
		t.Error("expected error for whitespace-only text")
	}
}

func TestNewScriptEngineMissing(t *testing.T) {
	_, err := NewScriptEngine("/nonexistent/engine.sh", quietLogger())
	if !errors.Is(err, ErrEngineNotFound) {
		t.Errorf("expected ErrEngineNotFound, got %v", err)
	}

	_, err = NewScriptEngine("definitely-not-a-real-binary-xyz", quietLogger())
	if !errors.Is(err, ErrEngineNotFound) {
		t.Errorf("expected ErrEngineNotFound for PATH lookup, got %v", err)
	}
}
