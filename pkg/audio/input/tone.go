// ABOUTME: Synthetic sine tone input
// ABOUTME: Paces generated blocks in real time so recordings work without a microphone
package input

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/harperreed/podcast-recorder/pkg/audio"
	"go.uber.org/zap"
)

// Tone generates a sine wave at Frequency Hz
type Tone struct {
	Frequency float64
	Amplitude float32
	log       *zap.SugaredLogger
}

// NewTone creates a 440Hz tone at half scale
func NewTone(log *zap.SugaredLogger) *Tone {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Tone{
		Frequency: 440.0, // A4
		Amplitude: 0.5,
		log:       log,
	}
}

type toneStream struct {
	format         audio.Format
	framesPerBlock int
	frequency      float64
	amplitude      float32
	onBlock        BlockFunc
	log            *zap.SugaredLogger

	// index is the next frame number; only the generator goroutine touches it
	index uint64

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// Open prepares a tone stream
func (t *Tone) Open(format audio.Format, framesPerBlock int, onBlock BlockFunc, onStatus StatusFunc) (Stream, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("invalid format: %dHz %dch", format.SampleRate, format.Channels)
	}
	if framesPerBlock <= 0 {
		return nil, fmt.Errorf("invalid block size: %d", framesPerBlock)
	}
	return &toneStream{
		format:         format,
		framesPerBlock: framesPerBlock,
		frequency:      t.Frequency,
		amplitude:      t.Amplitude,
		onBlock:        onBlock,
		log:            t.log,
	}, nil
}

func (s *toneStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true
	go s.run(s.stop, s.done)

	s.log.Debugw("tone input started", "frequency", s.frequency, "sample_rate", s.format.SampleRate)
	return nil
}

func (s *toneStream) run(stop, done chan struct{}) {
	defer close(done)

	period := audio.DurationForFrames(int64(s.framesPerBlock), s.format.SampleRate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	block := make([]float32, s.framesPerBlock*s.format.Channels)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.fill(block)
			s.onBlock(block)
		}
	}
}

// fill writes the next block of the tone to every channel
func (s *toneStream) fill(block []float32) {
	ch := s.format.Channels
	rate := float64(s.format.SampleRate)
	frames := len(block) / ch

	for i := 0; i < frames; i++ {
		t := float64(s.index+uint64(i)) / rate
		v := s.amplitude * float32(math.Sin(2*math.Pi*s.frequency*t))
		for c := 0; c < ch; c++ {
			block[i*ch+c] = v
		}
	}
	s.index += uint64(frames)
}

// Stop waits for the generator so no block is delivered afterwards
func (s *toneStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	close(s.stop)
	<-s.done
	s.running = false
	return nil
}

func (s *toneStream) Close() error {
	return s.Stop()
}
