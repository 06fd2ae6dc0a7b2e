package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgnsrekt/pagereader/audio"
)

// mockFrames is the length of the silent buffer each mock result decodes to.
const mockFrames = 100

// MockGenerator is a Generator for tests. It writes short silent WAV files
// that decode like real engine output, records every request it sees, and
// tracks call concurrency so callers can assert their scheduling rules.
type MockGenerator struct {
	mu sync.Mutex

	// Delay is how long Generate blocks before returning
	Delay time.Duration
	// FailAll makes every call fail
	FailAll bool
	// FailCalls marks 1-based call numbers that fail
	FailCalls map[int]bool

	requests      []Request
	paths         []string
	calls         int
	concurrent    int
	maxConcurrent int
}

// NewMockGenerator creates a mock with no delay and no failures.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{FailCalls: map[int]bool{}}
}

// Generate writes a silent stereo WAV after the configured delay and echoes
// the request's session token.
func (m *MockGenerator) Generate(ctx context.Context, req Request) (Result, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.requests = append(m.requests, req)
	m.concurrent++
	if m.concurrent > m.maxConcurrent {
		m.maxConcurrent = m.concurrent
	}
	delay := m.Delay
	fail := m.FailAll || m.FailCalls[call]
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.concurrent--
		m.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}

	if fail {
		return Result{}, fmt.Errorf("%w: mock failure on call %d", ErrGenerationFailed, call)
	}

	buf := &audio.Buffer{
		Data:       make([]byte, mockFrames*2*audio.PlaybackChans),
		SampleRate: audio.SampleRate,
		Channels:   audio.PlaybackChans,
	}
	path, err := audio.WriteTempWAV(buf)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	m.mu.Lock()
	m.paths = append(m.paths, path)
	m.mu.Unlock()
	return Result{Path: path, Session: req.Session}, nil
}

// Calls returns how many times Generate has been invoked.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests returns a copy of every request seen so far.
func (m *MockGenerator) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// MaxConcurrent returns the highest number of Generate calls that were ever
// in flight at once.
func (m *MockGenerator) MaxConcurrent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxConcurrent
}

// Paths returns every WAV file produced so far, including ones the caller
// has since deleted.
func (m *MockGenerator) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.paths))
	copy(out, m.paths)
	return out
}
