//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package input

import (
	"errors"

	"github.com/harperreed/podcast-recorder/pkg/audio"
	"go.uber.org/zap"
)

// ErrPortAudioDisabled is returned by the stub backend
var ErrPortAudioDisabled = errors.New("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio capture implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio input
func NewPortAudio(log *zap.SugaredLogger) Input {
	return &PortAudio{}
}

// Open always fails without the portaudio build tag
func (p *PortAudio) Open(format audio.Format, framesPerBlock int, onBlock BlockFunc, onStatus StatusFunc) (Stream, error) {
	return nil, ErrPortAudioDisabled
}
