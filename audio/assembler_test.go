package audio

import (
	"encoding/binary"
	"errors"
	"testing"
)

// monoPCM builds n mono s16le samples with the given value.
func monoPCM(n int, value int16) []byte {
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(value))
	}
	return out
}

func TestAssembleEmptyInput(t *testing.T) {
	a := NewAssembler(0)
	if _, err := a.Assemble(nil); !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("expected ErrEmptyAudio, got %v", err)
	}
	if _, err := a.Assemble([]byte{}); !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("expected ErrEmptyAudio, got %v", err)
	}
}

func TestAssembleMisalignedInput(t *testing.T) {
	a := NewAssembler(0)
	if _, err := a.Assemble([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Error("expected error for odd-length PCM")
	}
}

func TestAssembleDuplicatesMonoIntoStereo(t *testing.T) {
	a := NewAssembler(0)

	buf, err := a.Assemble(monoPCM(4, 1234))
	if err != nil {
		t.Fatal(err)
	}
	if buf.Channels != PlaybackChans {
		t.Errorf("expected %d channels, got %d", PlaybackChans, buf.Channels)
	}
	if buf.SampleRate != SampleRate {
		t.Errorf("expected sample rate %d, got %d", SampleRate, buf.SampleRate)
	}
	if len(buf.Data) != 4*2*PlaybackChans {
		t.Fatalf("expected %d bytes, got %d", 4*2*PlaybackChans, len(buf.Data))
	}
	for i := 0; i < 4; i++ {
		left := int16(binary.LittleEndian.Uint16(buf.Data[i*4:]))
		right := int16(binary.LittleEndian.Uint16(buf.Data[i*4+2:]))
		if left != 1234 || right != 1234 {
			t.Fatalf("frame %d: got (%d, %d), want (1234, 1234)", i, left, right)
		}
	}
}

func TestAssembleTailTrim(t *testing.T) {
	a := NewAssembler(100)

	buf, err := a.Assemble(monoPCM(500, 7))
	if err != nil {
		t.Fatal(err)
	}
	if got := buf.Frames(); got != 400 {
		t.Errorf("expected 400 frames after trim, got %d", got)
	}
}

func TestAssembleShortInputSkipsTrim(t *testing.T) {
	// Inputs at or below the trim size are kept whole rather than erased.
	a := NewAssembler(100)

	buf, err := a.Assemble(monoPCM(50, 7))
	if err != nil {
		t.Fatal(err)
	}
	if got := buf.Frames(); got != 50 {
		t.Errorf("expected 50 frames, got %d", got)
	}
}

func TestAssembleDefaultTrim(t *testing.T) {
	a := NewAssembler(-1)

	buf, err := a.Assemble(monoPCM(DefaultTailTrimSamples+10, 3))
	if err != nil {
		t.Fatal(err)
	}
	if got := buf.Frames(); got != 10 {
		t.Errorf("expected 10 frames after default trim, got %d", got)
	}
}

func TestBufferDuration(t *testing.T) {
	a := NewAssembler(0)

	buf, err := a.Assemble(monoPCM(SampleRate, 1)) // one second of mono
	if err != nil {
		t.Fatal(err)
	}
	if d := buf.Duration().Seconds(); d < 0.999 || d > 1.001 {
		t.Errorf("expected ~1s duration, got %v", buf.Duration())
	}
}
