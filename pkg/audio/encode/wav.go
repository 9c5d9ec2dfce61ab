// ABOUTME: Streaming WAV writer
// ABOUTME: Appends float32 blocks to a 16-bit PCM WAV file via go-audio/wav
package encode

import (
	"errors"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/harperreed/podcast-recorder/pkg/audio"
)

const (
	wavBitDepth  = 16
	wavFormatPCM = 1
)

// WAVWriter appends audio blocks to a WAV file
type WAVWriter struct {
	file    *os.File
	encoder *wav.Encoder
	format  audio.Format
	buf     *goaudio.IntBuffer
	frames  int64
	closed  bool
}

// NewWAVFile creates (or truncates) path and prepares it for streaming writes
func NewWAVFile(path string, format audio.Format) (*WAVWriter, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("invalid format: %dHz %dch", format.SampleRate, format.Channels)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create WAV file: %w", err)
	}

	format.BitDepth = wavBitDepth

	return &WAVWriter{
		file:    f,
		encoder: wav.NewEncoder(f, format.SampleRate, wavBitDepth, format.Channels, wavFormatPCM),
		format:  format,
		buf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: format.Channels,
				SampleRate:  format.SampleRate,
			},
			SourceBitDepth: wavBitDepth,
		},
	}, nil
}

// Write appends interleaved samples
func (w *WAVWriter) Write(samples []float32) error {
	if w.closed {
		return errors.New("write to closed WAV writer")
	}
	if len(samples)%w.format.Channels != 0 {
		return fmt.Errorf("partial frame: %d samples for %d channels", len(samples), w.format.Channels)
	}

	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]
	for i, s := range samples {
		w.buf.Data[i] = audio.SampleToInt(s, wavBitDepth)
	}

	if err := w.encoder.Write(w.buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}

	w.frames += int64(len(samples) / w.format.Channels)
	return nil
}

// Frames returns the number of frames written
func (w *WAVWriter) Frames() int64 {
	return w.frames
}

// Close finalizes the header, syncs and closes the file. Calling it twice is a no-op.
func (w *WAVWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	// The header is emitted lazily on the first write
	if w.frames == 0 {
		w.buf.Data = w.buf.Data[:0]
		if err := w.encoder.Write(w.buf); err != nil {
			w.file.Close()
			return fmt.Errorf("failed to write WAV header: %w", err)
		}
	}

	if err := w.encoder.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to sync WAV file: %w", err)
	}
	return w.file.Close()
}
