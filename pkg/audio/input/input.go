// ABOUTME: Audio input interface definition
// ABOUTME: Common interface for audio capture backends and a backend factory
package input

import (
	"errors"
	"fmt"

	"github.com/harperreed/podcast-recorder/pkg/audio"
	"go.uber.org/zap"
)

// ErrStreamStopped is reported through StatusFunc when the device stops on its own
var ErrStreamStopped = errors.New("capture device stopped unexpectedly")

// BlockFunc receives one block of interleaved samples; the slice is only valid during the call
type BlockFunc func(block []float32)

// StatusFunc receives non-fatal device status reports during a live stream
type StatusFunc func(err error)

// Input represents an audio capture device
type Input interface {
	// Open prepares a capture stream; blocks are delivered after Start
	Open(format audio.Format, framesPerBlock int, onBlock BlockFunc, onStatus StatusFunc) (Stream, error)
}

// Stream is an opened capture stream
type Stream interface {
	// Start begins delivering blocks
	Start() error

	// Stop halts delivery; no callback runs after Stop returns
	Stop() error

	// Close releases the device
	Close() error
}

// Backend names accepted by New
const (
	BackendMalgo     = "malgo"
	BackendPortAudio = "portaudio"
	BackendTone      = "tone"
)

// New returns the named capture backend
func New(backend string, log *zap.SugaredLogger) (Input, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	switch backend {
	case "", BackendMalgo:
		return NewMalgo(log), nil
	case BackendPortAudio:
		return NewPortAudio(log), nil
	case BackendTone:
		return NewTone(log), nil
	default:
		return nil, fmt.Errorf("unknown input backend %q", backend)
	}
}
