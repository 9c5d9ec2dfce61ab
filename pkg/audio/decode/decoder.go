// ABOUTME: Decoder interface definition and file-level helpers
// ABOUTME: Dispatches by extension and wraps failures as decode errors
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/podcast-recorder/pkg/audio"
)

// ErrUnsupportedFormat is returned for files whose extension or encoding is not handled
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Error reports a malformed, missing or unreadable audio file
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Info describes an encoded file without decoding its samples
type Info struct {
	Format audio.Format
	Frames int64
}

// Duration returns frames / sampleRate as a time.Duration
func (i Info) Duration() time.Duration {
	return audio.DurationForFrames(i.Frames, i.Format.SampleRate)
}

// Seconds returns frames / sampleRate
func (i Info) Seconds() float64 {
	return audio.SecondsForFrames(i.Frames, i.Format.SampleRate)
}

// Decoder decodes a complete encoded stream into memory
type Decoder interface {
	// Decode reads the whole stream into a buffer
	Decode(r io.ReadSeeker) (*audio.Buffer, error)

	// Probe reads stream metadata only
	Probe(r io.ReadSeeker) (Info, error)
}

// ForPath returns the decoder matching the file extension
func ForPath(path string) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return WAV{}, nil
	case ".mp3":
		return MP3{}, nil
	case ".flac":
		return FLAC{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// File decodes the audio file at path
func File(path string) (*audio.Buffer, error) {
	dec, err := ForPath(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	defer f.Close()

	buf, err := dec.Decode(f)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return buf, nil
}

// Probe reads the metadata of the audio file at path
func Probe(path string) (Info, error) {
	dec, err := ForPath(path)
	if err != nil {
		return Info{}, &Error{Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return Info{}, &Error{Path: path, Err: err}
	}
	defer f.Close()

	info, err := dec.Probe(f)
	if err != nil {
		return Info{}, &Error{Path: path, Err: err}
	}
	return info, nil
}
