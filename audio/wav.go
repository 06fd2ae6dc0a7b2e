package audio

import (
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
)

// WriteTempWAV persists a buffer as a RIFF/WAVE file (PCM format tag, 44-byte
// header) in the system temp directory and returns its path. The file is the
// hand-off unit between the generation side and the playback side; the
// playback side deletes it after decoding.
func WriteTempWAV(buf *Buffer) (string, error) {
	path := filepath.Join(os.TempDir(), uuid.NewString()+".wav")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("audio: create temp wav: %w", err)
	}

	enc := wav.NewEncoder(f, buf.SampleRate, BitDepth, buf.Channels, 1)

	data := make([]int, len(buf.Data)/2)
	for i := range data {
		data[i] = int(int16(uint16(buf.Data[i*2]) | uint16(buf.Data[i*2+1])<<8))
	}

	ib := &goaudio.IntBuffer{
		Format:         &goaudio.Format{SampleRate: buf.SampleRate, NumChannels: buf.Channels},
		Data:           data,
		SourceBitDepth: BitDepth,
	}

	if err := enc.Write(ib); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("audio: encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("audio: finalize wav: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("audio: close wav: %w", err)
	}

	return path, nil
}

// ReadWAV decodes a WAV file back into a playback buffer. The caller owns the
// file; deleting it after decoding is the caller's job.
func ReadWAV(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audio: open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	ib, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: decode wav: %w", err)
	}
	if ib == nil || len(ib.Data) == 0 {
		return nil, ErrEmptyAudio
	}

	data := make([]byte, len(ib.Data)*2)
	for i, s := range ib.Data {
		v := uint16(int16(s))
		data[i*2] = byte(v)
		data[i*2+1] = byte(v >> 8)
	}

	return &Buffer{
		Data:       data,
		SampleRate: ib.Format.SampleRate,
		Channels:   ib.Format.NumChannels,
	}, nil
}
