// ABOUTME: Malgo-based audio capture implementation
// ABOUTME: Uses miniaudio via malgo to deliver float32 input blocks
package input

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/harperreed/podcast-recorder/pkg/audio"
	"go.uber.org/zap"
)

// Malgo capture implementation using malgo/miniaudio library
type Malgo struct {
	log *zap.SugaredLogger
}

// NewMalgo creates a new Malgo input
func NewMalgo(log *zap.SugaredLogger) *Malgo {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Malgo{log: log}
}

type malgoStream struct {
	log      *zap.SugaredLogger
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	stopping atomic.Bool
	scratch  []float32
	channels int
	onBlock  BlockFunc
	onStatus StatusFunc
}

// Open initializes a capture device with the requested format
func (m *Malgo) Open(format audio.Format, framesPerBlock int, onBlock BlockFunc, onStatus StatusFunc) (Stream, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("invalid format: %dHz %dch", format.SampleRate, format.Channels)
	}
	if onStatus == nil {
		onStatus = func(error) {}
	}

	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		m.log.Debugw("miniaudio", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	s := &malgoStream{
		log:      m.log,
		malgoCtx: malgoCtx,
		scratch:  make([]float32, framesPerBlock*format.Channels),
		channels: format.Channels,
		onBlock:  onBlock,
		onStatus: onStatus,
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(format.Channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(framesPerBlock)
	deviceConfig.Alsa.NoMMap = 1

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			s.dataCallback(pInputSamples, frameCount)
		},
		Stop: func() {
			if !s.stopping.Load() {
				s.onStatus(ErrStreamStopped)
			}
		},
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		malgoCtx.Uninit()
		malgoCtx.Free()
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}
	s.device = device

	m.log.Infow("audio input initialized",
		"backend", BackendMalgo,
		"sample_rate", format.SampleRate,
		"channels", format.Channels,
		"frames_per_block", framesPerBlock)

	return s, nil
}

// dataCallback converts float32 little-endian device bytes into samples
func (s *malgoStream) dataCallback(in []byte, frameCount uint32) {
	n := int(frameCount) * s.channels
	if n*4 > len(in) {
		n = len(in) / 4
	}
	if cap(s.scratch) < n {
		s.scratch = make([]float32, n)
	}
	block := s.scratch[:n]
	for i := range block {
		block[i] = math.Float32frombits(binary.LittleEndian.Uint32(in[i*4:]))
	}
	s.onBlock(block)
}

func (s *malgoStream) Start() error {
	s.stopping.Store(false)
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("failed to start capture device: %w", err)
	}
	return nil
}

func (s *malgoStream) Stop() error {
	s.stopping.Store(true)
	if err := s.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}
	return nil
}

func (s *malgoStream) Close() error {
	s.stopping.Store(true)
	s.device.Uninit()
	err := s.malgoCtx.Uninit()
	s.malgoCtx.Free()
	if err != nil {
		return fmt.Errorf("failed to release malgo context: %w", err)
	}
	return nil
}
