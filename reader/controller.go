// Package reader runs the read-aloud pipeline: acquire text from the
// screen, cut it into chunks, stream generated audio gaplessly, and advance
// through pages automatically.
package reader

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dgnsrekt/pagereader/audio"
	"github.com/dgnsrekt/pagereader/engine"
	"github.com/dgnsrekt/pagereader/ignorelist"
	"github.com/dgnsrekt/pagereader/ocr"
	"github.com/dgnsrekt/pagereader/textproc"
)

// silencePollInterval is how often the end-of-content monitor samples the
// output level.
const silencePollInterval = 100 * time.Millisecond

// pendingAudio is the single-slot prefetch buffer: at most one chunk of
// decoded audio waits ahead of the one playing.
type pendingAudio struct {
	index int
	buf   *audio.Buffer
}

// Options configures a Controller beyond its three required collaborators.
// All callbacks are invoked on their own goroutines, so they may call back
// into the controller.
type Options struct {
	Config       Config
	Continuation *ContinuationEngine
	IgnoreStore  *ignorelist.Store
	Logger       *log.Logger
	// OnStatus receives human-readable status updates
	OnStatus func(string)
	// OnStateChange receives every lifecycle state change
	OnStateChange func(StateType)
	// OnChunkChange receives the zero-based chunk index and total whenever
	// a new chunk starts sounding
	OnChunkChange func(current, total int)
	// OnError receives fatal session errors before the session resets
	OnError func(error)
}

// Controller is the streaming playback state machine. All fields are guarded
// by mu; slow work (OCR, generation, delays) runs on goroutines that
// re-validate the session ID before touching state, so a user restart never
// races a slow external call.
type Controller struct {
	mu      sync.Mutex
	cfg     Config
	machine *StateMachine

	source       TextSource
	engine       engine.Generator
	player       AudioPlayer
	continuation *ContinuationEngine
	ignore       *textproc.IgnoreFilter
	store        *ignorelist.Store
	chunker      *textproc.Chunker
	logger       *log.Logger

	onStatus      func(string)
	onStateChange func(StateType)
	onChunkChange func(current, total int)
	onError       func(error)

	// session state, valid while sessionID is non-empty
	sessionID string
	rect      ocr.Rect
	chunks    []textproc.Chunk
	current   int
	// pending holds at most one decoded chunk ahead of playback
	pending          *pendingAudio
	prefetchInFlight bool
	// prefetchEpoch invalidates in-flight prefetch results on pause,
	// skip, and stop
	prefetchEpoch   int
	boundaryRetries int
	// stalled is the chunk index playback is waiting on, -1 otherwise
	stalled int
	// spokenText accumulates everything read this session, for the
	// post-scroll seam diff
	spokenText string
	// lastPageText is the raw OCR text of the current page, for
	// duplicate-page detection after a continuation click
	lastPageText string
	status       string
}

// NewController wires the pipeline together. The ignore list is loaded once
// at construction; snippets confirmed later are appended live.
func NewController(source TextSource, gen engine.Generator, player AudioPlayer, opts Options) (*Controller, error) {
	if source == nil || gen == nil || player == nil {
		return nil, fmt.Errorf("reader: source, generator, and player are all required")
	}
	cfg := opts.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	var snippets []string
	if opts.IgnoreStore != nil {
		loaded, err := opts.IgnoreStore.Load()
		if err != nil {
			logger.Warn("could not load ignore list", "err", err)
		}
		snippets = loaded
	}

	c := &Controller{
		cfg:          cfg,
		machine:      NewStateMachine(),
		source:       source,
		engine:       gen,
		player:       player,
		continuation: opts.Continuation,
		ignore:       textproc.NewIgnoreFilter(snippets),
		store:        opts.IgnoreStore,
		chunker:      textproc.NewChunker(cfg.Chunker),
		logger:       logger.With("component", "reader"),
		stalled:      -1,
	}
	c.onStatus = opts.OnStatus
	c.onStateChange = opts.OnStateChange
	c.onChunkChange = opts.OnChunkChange
	c.onError = opts.OnError
	c.machine.OnChange = func(_, to StateType) {
		c.logger.Debug("state", "to", to)
		if c.onStateChange != nil {
			go c.onStateChange(to)
		}
	}
	c.player.SetVolume(cfg.Volume)
	return c, nil
}

// State reports the current lifecycle state.
func (c *Controller) State() StateType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Current()
}

// Status reports the last published status line.
func (c *Controller) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Progress reports the current chunk index and total chunk count.
func (c *Controller) Progress() (current, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, len(c.chunks)
}

// StartReading begins a new session over the given screen rectangle. Any
// session in progress is stopped first.
func (c *Controller) StartReading(rect ocr.Rect) error {
	if rect.W <= 0 || rect.H <= 0 {
		return fmt.Errorf("reader: degenerate capture rect %+v", rect)
	}

	c.mu.Lock()
	if c.machine.Current() != StateIdle {
		c.stopLocked()
	}
	sid := uuid.NewString()
	c.sessionID = sid
	c.rect = rect
	c.spokenText = ""
	c.lastPageText = ""
	c.machine.Transition(StateAwaitingFirstChunk)
	c.setStatusLocked("reading screen")
	c.logger.Info("session started", "session", sid)
	c.mu.Unlock()

	go c.beginPage(sid, rect, "")
	return nil
}

// Play resumes from pause. Anywhere else it is a no-op.
func (c *Controller) Play() {
	c.mu.Lock()
	if c.machine.Current() != StatePaused {
		c.mu.Unlock()
		return
	}
	c.machine.Transition(StatePlaying)
	sid := c.sessionID
	next := c.current + 1
	needPrefetch := c.pending == nil && next < len(c.chunks)
	stalledIdx := c.stalled
	var stalledBuf *audio.Buffer
	if stalledIdx >= 0 && c.pending != nil && c.pending.index == stalledIdx {
		stalledBuf = c.pending.buf
		c.pending = nil
		c.stalled = -1
	}
	c.setStatusLocked("playing")
	c.mu.Unlock()

	c.player.Resume() //nolint:errcheck // nothing to resume is fine

	if stalledBuf != nil {
		go c.playChunk(sid, stalledIdx, stalledBuf)
	} else if needPrefetch {
		go c.maybePrefetch(sid, next)
	}
}

// Pause freezes playback mid-chunk. Any in-flight prefetch result is dropped
// when it arrives; resume re-issues it.
func (c *Controller) Pause() {
	c.mu.Lock()
	if !c.machine.Transition(StatePaused) {
		c.mu.Unlock()
		return
	}
	c.prefetchEpoch++
	c.setStatusLocked("paused")
	c.mu.Unlock()

	c.player.Pause() //nolint:errcheck // pausing between chunks is fine
}

// Stop ends the session: the session ID is invalidated, the device halted,
// and every pending buffer and in-flight callback orphaned.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stopLocked()
	c.setStatusLocked("stopped")
	c.mu.Unlock()
}

// stopLocked tears the session down. Callers hold mu.
func (c *Controller) stopLocked() {
	if c.sessionID != "" {
		c.logger.Info("session ended", "session", c.sessionID)
	}
	c.sessionID = ""
	c.prefetchEpoch++
	c.pending = nil
	c.prefetchInFlight = false
	c.boundaryRetries = 0
	c.stalled = -1
	c.chunks = nil
	c.current = 0
	c.spokenText = ""
	c.lastPageText = ""
	c.player.Stop() //nolint:errcheck
	c.machine.Reset()
}

// SkipForward jumps to the next chunk, regenerating its audio directly.
// Past the last chunk it is a no-op.
func (c *Controller) SkipForward() error { return c.skip(1) }

// SkipBackward jumps to the previous chunk. Before the first it is a no-op.
func (c *Controller) SkipBackward() error { return c.skip(-1) }

func (c *Controller) skip(delta int) error {
	c.mu.Lock()
	if c.sessionID == "" || len(c.chunks) == 0 {
		c.mu.Unlock()
		return ErrNoSession
	}
	target := c.current + delta
	if target < 0 || target >= len(c.chunks) {
		c.mu.Unlock()
		return nil
	}
	sid := c.sessionID
	c.prefetchEpoch++
	c.pending = nil
	c.stalled = -1
	c.boundaryRetries = 0
	// Leaving end-of-content here keeps the silence monitor from handing
	// the session to continuation while the skip target regenerates.
	c.machine.Transition(StatePlaying)
	c.current = target
	c.player.Stop() //nolint:errcheck
	c.setStatusLocked(fmt.Sprintf("skipping to part %d", target+1))
	c.mu.Unlock()

	go c.generateAndPlay(sid, target, true)
	return nil
}

// SetVoice selects the engine voice for subsequent chunks.
func (c *Controller) SetVoice(name string) error {
	if !engine.ValidVoice(name) {
		return fmt.Errorf("reader: unknown voice %q", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Voice = name
	return nil
}

// SetSpeed sets the speaking-rate multiplier for subsequent chunks.
func (c *Controller) SetSpeed(rate float64) error {
	if rate < engine.MinSpeed || rate > engine.MaxSpeed {
		return fmt.Errorf("reader: speed %.2f outside [%.1f, %.1f]", rate, engine.MinSpeed, engine.MaxSpeed)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Speed = rate
	return nil
}

// SetVolume adjusts output volume immediately.
func (c *Controller) SetVolume(level float64) {
	c.mu.Lock()
	c.cfg.Volume = level
	c.mu.Unlock()
	c.player.SetVolume(level)
}

// ToggleAutoScroll enables or disables scroll-and-reread continuation.
func (c *Controller) ToggleAutoScroll(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.AutoScroll = enabled
}

// SetAutoNextMode selects the click-based continuation mode.
func (c *Controller) SetAutoNextMode(mode ContinuationMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.AutoNext = mode
}

// ConfirmIgnoreZone OCRs the rectangle and registers its text as page
// chrome to skip, persisting it for future runs.
func (c *Controller) ConfirmIgnoreZone(ctx context.Context, rect ocr.Rect) error {
	text, err := c.source.Text(ctx, rect)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAcquisition, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyContent
	}

	c.mu.Lock()
	c.ignore.Add(text)
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Append(text); err != nil {
			return err
		}
	}
	c.logger.Info("ignore zone confirmed", "words", len(textproc.Words(text)))
	return nil
}

// beginPage acquires one page of text and starts the chunk pipeline.
// expectChangeFrom, when non-empty, is the previous page's text: acquisition
// polls until the page genuinely differs or the retry window expires.
func (c *Controller) beginPage(sid string, rect ocr.Rect, expectChangeFrom string) {
	c.mu.Lock()
	cfg := c.cfg
	c.mu.Unlock()

	text, err := c.acquirePage(sid, rect, expectChangeFrom, cfg)
	if err != nil {
		c.failSession(sid, err)
		return
	}

	c.mu.Lock()
	if sid != c.sessionID {
		c.mu.Unlock()
		return
	}
	filtered := c.ignore.Apply(text)
	chunks := c.chunker.Split(filtered)
	if len(chunks) == 0 {
		c.logger.Info("nothing to read", "session", sid)
		c.stopLocked()
		c.setStatusLocked("nothing to read")
		c.mu.Unlock()
		return
	}
	c.chunks = chunks
	c.current = 0
	c.lastPageText = text
	if c.spokenText == "" {
		c.spokenText = filtered
	} else {
		c.spokenText += " " + filtered
	}
	c.logger.Debug("page chunked", "session", sid, "chunks", len(chunks))
	c.mu.Unlock()

	c.generateAndPlay(sid, 0, true)
}

// acquirePage runs OCR, retrying while the result still matches the previous
// page. Returns ErrStalePage when the retry window expires.
func (c *Controller) acquirePage(sid string, rect ocr.Rect, expectChangeFrom string, cfg Config) (string, error) {
	deadline := time.Now().Add(cfg.DuplicateTimeout)
	for {
		text, err := c.source.Text(context.Background(), rect)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrAcquisition, err)
		}
		if expectChangeFrom == "" || !textproc.Similar(text, expectChangeFrom) {
			return text, nil
		}
		if time.Now().After(deadline) {
			return "", ErrStalePage
		}
		c.logger.Debug("page unchanged, retrying", "session", sid)
		time.Sleep(cfg.DuplicatePoll)

		c.mu.Lock()
		stale := sid != c.sessionID
		c.mu.Unlock()
		if stale {
			return "", errStaleSession
		}
	}
}

// generateAndPlay synchronously generates one chunk and starts playing it.
// fatal marks failures that abort the session (first chunk, skip target).
func (c *Controller) generateAndPlay(sid string, idx int, fatal bool) {
	req, cfg, ok := c.requestFor(sid, idx)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.FirstChunkTimeout)
	defer cancel()

	res, err := c.engine.Generate(ctx, req)
	if err != nil {
		if fatal {
			c.failSession(sid, fmt.Errorf("%w: %v", ErrGeneration, err))
		} else {
			c.logger.Warn("chunk generation failed", "session", sid, "chunk", idx, "err", err)
		}
		return
	}

	buf, err := c.claimResult(sid, res)
	if err != nil {
		if fatal {
			c.failSession(sid, err)
		}
		return
	}
	c.playChunk(sid, idx, buf)
}

// requestFor snapshots the generation request for a chunk, validating the
// session under the lock.
func (c *Controller) requestFor(sid string, idx int) (engine.Request, Config, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sid != c.sessionID || idx < 0 || idx >= len(c.chunks) {
		return engine.Request{}, Config{}, false
	}
	voice := c.cfg.Voice
	if voice == "" {
		voice = engine.DefaultVoice
	}
	return engine.Request{
		Text:     c.chunks[idx].Text,
		Voice:    voice,
		Language: engine.LanguageFor(voice),
		Speed:    c.cfg.Speed,
		Session:  sid,
	}, c.cfg, true
}

// claimResult decodes a generation result into memory and deletes the temp
// file. Results whose echoed token no longer matches the live session are
// discarded, file included.
func (c *Controller) claimResult(sid string, res engine.Result) (*audio.Buffer, error) {
	c.mu.Lock()
	stale := sid != c.sessionID || res.Session != c.sessionID
	c.mu.Unlock()
	if stale {
		os.Remove(res.Path)
		c.logger.Debug("discarding stale generation result", "session", sid)
		return nil, errStaleSession
	}

	buf, err := audio.ReadWAV(res.Path)
	os.Remove(res.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrGeneration, res.Path, err)
	}
	return buf, nil
}

// playChunk hands a decoded buffer to the device and primes the next
// prefetch.
func (c *Controller) playChunk(sid string, idx int, buf *audio.Buffer) {
	c.mu.Lock()
	if sid != c.sessionID {
		c.mu.Unlock()
		return
	}
	if c.machine.Current() == StatePaused {
		// The user paused during the inter-chunk gap; hold the buffer for
		// resume.
		c.pending = &pendingAudio{index: idx, buf: buf}
		c.stalled = idx
		c.mu.Unlock()
		return
	}
	if !c.machine.Transition(StatePlaying) {
		c.mu.Unlock()
		return
	}
	c.current = idx
	c.stalled = -1
	c.boundaryRetries = 0
	total := len(c.chunks)
	c.setStatusLocked(fmt.Sprintf("playing part %d of %d", idx+1, total))
	if c.onChunkChange != nil {
		go c.onChunkChange(idx, total)
	}
	c.mu.Unlock()

	err := c.player.Play(buf, func() { c.onChunkDone(sid, idx) })
	if err != nil {
		c.failSession(sid, fmt.Errorf("%w: %v", ErrGeneration, err))
		return
	}
	if idx == total-1 {
		// The silence monitor starts while the final chunk is still
		// audible, so the level threshold sees the real output tail.
		go c.monitorSilence(sid, idx)
	}
	c.maybePrefetch(sid, idx+1)
}

// onChunkDone runs when the device drains a chunk. It either chains into
// the prefetched next chunk, stalls and retries the prefetch, or begins
// end-of-content monitoring.
func (c *Controller) onChunkDone(sid string, idx int) {
	c.mu.Lock()
	if sid != c.sessionID || idx != c.current {
		c.mu.Unlock()
		return
	}

	last := idx == len(c.chunks)-1
	if last {
		// The silence monitor started with this chunk; it takes over once
		// the sustained-quiet window is met.
		c.machine.Transition(StateEndOfContent)
		c.setStatusLocked("finishing")
		c.mu.Unlock()
		return
	}

	next := idx + 1
	if c.pending != nil && c.pending.index == next {
		buf := c.pending.buf
		c.pending = nil
		delay := c.cfg.InterChunkDelay
		c.mu.Unlock()
		time.AfterFunc(delay, func() { c.playChunk(sid, next, buf) })
		return
	}

	// Next chunk not ready: stall at the boundary and re-issue prefetch.
	c.stalled = next
	c.mu.Unlock()
	c.logger.Debug("stalled at chunk boundary", "session", sid, "next", next)
	c.maybePrefetch(sid, next)
}

// maybePrefetch issues generation for chunk idx if the slot and the in-flight
// guard allow it. At most one prefetch is ever outstanding.
func (c *Controller) maybePrefetch(sid string, idx int) {
	c.mu.Lock()
	if sid != c.sessionID || idx >= len(c.chunks) ||
		c.prefetchInFlight || c.pending != nil ||
		c.machine.Current() == StatePaused {
		c.mu.Unlock()
		return
	}
	c.prefetchInFlight = true
	epoch := c.prefetchEpoch
	c.mu.Unlock()

	req, _, ok := c.requestFor(sid, idx)
	if !ok {
		c.mu.Lock()
		c.prefetchInFlight = false
		c.mu.Unlock()
		return
	}

	go func() {
		res, err := c.engine.Generate(context.Background(), req)
		c.finishPrefetch(sid, epoch, idx, res, err)
	}()
}

// finishPrefetch re-enters controller state with a prefetch result, applying
// the session and epoch staleness checks before anything else.
func (c *Controller) finishPrefetch(sid string, epoch, idx int, res engine.Result, genErr error) {
	var buf *audio.Buffer
	var decodeErr error
	if genErr == nil {
		buf, decodeErr = audio.ReadWAV(res.Path)
		os.Remove(res.Path)
	}

	c.mu.Lock()
	c.prefetchInFlight = false

	if sid != c.sessionID || epoch != c.prefetchEpoch {
		c.mu.Unlock()
		c.logger.Debug("dropping stale prefetch", "session", sid, "chunk", idx)
		return
	}

	err := genErr
	if err == nil {
		err = decodeErr
	}
	if err != nil {
		stalledHere := c.stalled == idx
		retry := stalledHere && c.boundaryRetries < c.cfg.PrefetchRetries
		if retry {
			c.boundaryRetries++
			attempt := c.boundaryRetries
			c.mu.Unlock()
			c.logger.Warn("prefetch failed while stalled, retrying",
				"session", sid, "chunk", idx, "attempt", attempt, "err", err)
			c.maybePrefetch(sid, idx)
			return
		}
		if stalledHere {
			c.mu.Unlock()
			c.failSession(sid, fmt.Errorf("%w: chunk %d: %v", ErrGeneration, idx, err))
			return
		}
		// Soft failure: slot stays empty, playback will stall at the
		// boundary and retry there.
		c.mu.Unlock()
		c.logger.Warn("prefetch failed", "session", sid, "chunk", idx, "err", err)
		return
	}

	c.pending = &pendingAudio{index: idx, buf: buf}
	c.boundaryRetries = 0

	// If playback already hit this boundary, kickstart it now.
	if c.stalled == idx && c.machine.Current() == StatePlaying {
		c.pending = nil
		c.stalled = -1
		c.mu.Unlock()
		c.playChunk(sid, idx, buf)
		return
	}
	c.mu.Unlock()
}

// monitorSilence runs from the moment the final chunk starts sounding. It
// watches the output level through the chunk's tail and hands off to
// auto-continuation once the device has drained and the output has stayed
// below the silence threshold for the configured window. A skip, stop, or
// new session ends the monitor.
func (c *Controller) monitorSilence(sid string, idx int) {
	c.mu.Lock()
	cfg := c.cfg
	c.mu.Unlock()

	var silentSince time.Time
	ticker := time.NewTicker(silencePollInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		st := c.machine.Current()
		onFinalChunk := c.current == idx && (st == StatePlaying || st == StatePaused)
		valid := sid == c.sessionID && (onFinalChunk || st == StateEndOfContent)
		c.mu.Unlock()
		if !valid {
			return
		}
		if st == StatePaused {
			silentSince = time.Time{}
			continue
		}

		if c.player.Level() < cfg.SilenceThresholdDB {
			if silentSince.IsZero() {
				silentSince = time.Now()
			}
			if time.Since(silentSince) >= cfg.SilenceWindow &&
				st == StateEndOfContent && !c.player.IsPlaying() {
				break
			}
		} else {
			silentSince = time.Time{}
		}
	}

	c.continueSession(sid)
}

// continueSession asks the continuation engine what to do next and acts on
// its decision.
func (c *Controller) continueSession(sid string) {
	c.mu.Lock()
	if sid != c.sessionID || !c.machine.Transition(StateTransitioning) {
		c.mu.Unlock()
		return
	}
	cfg := c.cfg
	rect := c.rect
	spoken := c.spokenText
	lastPage := c.lastPageText
	c.setStatusLocked("looking for more content")
	c.mu.Unlock()

	if c.continuation == nil || (!cfg.AutoScroll && cfg.AutoNext == ModeOff) {
		c.endSession(sid, "end of content")
		return
	}

	decision, err := c.continuation.Next(context.Background(), cfg, rect, spoken)
	if err != nil {
		c.failSession(sid, fmt.Errorf("%w: %v", ErrAcquisition, err))
		return
	}

	switch decision.Outcome {
	case OutcomeRead:
		c.readContinuationText(sid, decision.NewText)

	case OutcomeReacquire:
		c.mu.Lock()
		if sid != c.sessionID || !c.machine.Transition(StateAwaitingFirstChunk) {
			c.mu.Unlock()
			return
		}
		c.setStatusLocked("reading next page")
		c.mu.Unlock()
		c.beginPage(sid, rect, lastPage)

	default:
		c.endSession(sid, decision.Status)
	}
}

// readContinuationText feeds scroll-discovered text straight into the chunk
// pipeline, same session.
func (c *Controller) readContinuationText(sid, text string) {
	c.mu.Lock()
	if sid != c.sessionID || !c.machine.Transition(StateAwaitingFirstChunk) {
		c.mu.Unlock()
		return
	}
	filtered := c.ignore.Apply(text)
	chunks := c.chunker.Split(filtered)
	if len(chunks) == 0 {
		c.stopLocked()
		c.setStatusLocked("end of content")
		c.mu.Unlock()
		return
	}
	c.chunks = chunks
	c.current = 0
	c.spokenText += " " + filtered
	c.setStatusLocked("reading next section")
	c.mu.Unlock()

	c.generateAndPlay(sid, 0, true)
}

// endSession closes a session normally.
func (c *Controller) endSession(sid, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sid != c.sessionID {
		return
	}
	c.stopLocked()
	if status == "" {
		status = "end of content"
	}
	c.setStatusLocked(status)
}

// failSession aborts a session on a fatal error. Stale-session errors are
// swallowed silently; everything else resets to Idle with a visible status.
func (c *Controller) failSession(sid string, err error) {
	if err == errStaleSession {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if sid != c.sessionID {
		return
	}
	c.logger.Error("session failed", "session", sid, "err", err)
	if c.onError != nil {
		go c.onError(err)
	}
	c.stopLocked()
	c.setStatusLocked(err.Error())
}

// setStatusLocked publishes a status line. Callers hold mu; the callback
// runs on its own goroutine so subscribers can call back into the
// controller.
func (c *Controller) setStatusLocked(status string) {
	c.status = status
	if c.onStatus != nil {
		go c.onStatus(status)
	}
}
