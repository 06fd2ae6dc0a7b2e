package audio

import (
	"bytes"
	"math"
	"sync"
)

// SilenceFloorDB is the level reported when no samples have passed through a
// meter, effectively negative infinity for threshold comparisons.
const SilenceFloorDB = -120.0

// levelMeter computes a running RMS level over the most recent samples fed
// through it. It acts as an amplitude tap on the stream handed to the output
// device, so the reported level tracks what is audibly playing.
type levelMeter struct {
	mu     sync.Mutex
	window []int16
	pos    int
	filled bool
}

// newLevelMeter creates a meter averaging over windowFrames stereo frames.
func newLevelMeter(windowFrames int) *levelMeter {
	if windowFrames <= 0 {
		windowFrames = SampleRate / 10 // 100ms
	}
	return &levelMeter{window: make([]int16, windowFrames*PlaybackChans)}
}

// feed consumes interleaved s16le bytes.
func (m *levelMeter) feed(p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i+1 < len(p); i += 2 {
		m.window[m.pos] = int16(uint16(p[i]) | uint16(p[i+1])<<8)
		m.pos++
		if m.pos == len(m.window) {
			m.pos = 0
			m.filled = true
		}
	}
}

// levelDB returns the RMS level of the window in dBFS.
func (m *levelMeter) levelDB() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.window)
	if !m.filled {
		n = m.pos
	}
	if n == 0 {
		return SilenceFloorDB
	}

	var sum float64
	for _, s := range m.window[:n] {
		v := float64(s) / 32768.0
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(n))
	if rms <= 0 {
		return SilenceFloorDB
	}

	db := 20 * math.Log10(rms)
	if db < SilenceFloorDB {
		return SilenceFloorDB
	}
	return db
}

func (m *levelMeter) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.window {
		m.window[i] = 0
	}
	m.pos = 0
	m.filled = false
}

// meteredReader feeds every byte it serves to the device through the meter.
type meteredReader struct {
	r     *bytes.Reader
	meter *levelMeter
}

func newMeteredReader(data []byte, meter *levelMeter) *meteredReader {
	return &meteredReader{r: bytes.NewReader(data), meter: meter}
}

func (mr *meteredReader) Read(p []byte) (int, error) {
	n, err := mr.r.Read(p)
	if n > 0 {
		mr.meter.feed(p[:n])
	}
	return n, err
}
