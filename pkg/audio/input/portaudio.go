//go:build portaudio

// ABOUTME: PortAudio capture implementation
// ABOUTME: Cross-platform audio input using PortAudio
package input

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/harperreed/podcast-recorder/pkg/audio"
	"go.uber.org/zap"
)

// PortAudio capture implementation
type PortAudio struct {
	log *zap.SugaredLogger
}

// NewPortAudio creates a new PortAudio input
func NewPortAudio(log *zap.SugaredLogger) Input {
	return &PortAudio{log: log}
}

type portAudioStream struct {
	stream *portaudio.Stream
}

// Open initializes PortAudio and opens the default input device
func (p *PortAudio) Open(format audio.Format, framesPerBlock int, onBlock BlockFunc, onStatus StatusFunc) (Stream, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("invalid format: %dHz %dch", format.SampleRate, format.Channels)
	}
	if onStatus == nil {
		onStatus = func(error) {}
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	callback := func(in []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
		if flags&portaudio.InputOverflow != 0 {
			onStatus(fmt.Errorf("input overflow"))
		}
		onBlock(in)
	}

	stream, err := portaudio.OpenDefaultStream(format.Channels, 0, float64(format.SampleRate), framesPerBlock, callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}

	p.log.Infow("audio input initialized",
		"backend", BackendPortAudio,
		"sample_rate", format.SampleRate,
		"channels", format.Channels,
		"frames_per_block", framesPerBlock)

	return &portAudioStream{stream: stream}, nil
}

func (s *portAudioStream) Start() error {
	return s.stream.Start()
}

func (s *portAudioStream) Stop() error {
	return s.stream.Stop()
}

func (s *portAudioStream) Close() error {
	if err := s.stream.Close(); err != nil {
		portaudio.Terminate()
		return err
	}
	return portaudio.Terminate()
}
