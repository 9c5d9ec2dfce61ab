// ABOUTME: Capture engine that records input blocks to a durable sink
// ABOUTME: Device callbacks publish amplitude and hand blocks to a writer goroutine
package capture

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harperreed/podcast-recorder/pkg/audio"
	"github.com/harperreed/podcast-recorder/pkg/audio/encode"
	"github.com/harperreed/podcast-recorder/pkg/audio/input"
	"go.uber.org/zap"
)

var (
	// ErrAlreadyRecording is returned by Start while a session is active
	ErrAlreadyRecording = errors.New("already recording")

	// ErrSinkUnavailable is returned when the destination file cannot be opened
	ErrSinkUnavailable = errors.New("sink unavailable")

	// ErrDeviceUnavailable is returned when the input device cannot be opened or started
	ErrDeviceUnavailable = errors.New("input device unavailable")

	// ErrDrainTimeout is returned by Stop when the writer did not finish in time
	ErrDrainTimeout = errors.New("timed out draining capture queue")

	// ErrQueueOverrun is reported through OnStatus when blocks are dropped
	ErrQueueOverrun = errors.New("capture queue full, dropping blocks")
)

const (
	defaultFramesPerBlock = 512
	defaultQueueBlocks    = 1024
)

// SinkFactory opens the destination for a new session
type SinkFactory func(path string, format audio.Format) (encode.Sink, error)

// WAVSink is the default SinkFactory
func WAVSink(path string, format audio.Format) (encode.Sink, error) {
	return encode.NewWAVFile(path, format)
}

// Config tunes the capture engine
type Config struct {
	FramesPerBlock int
	QueueBlocks    int
	// DrainTimeout bounds how long Stop waits for the writer; zero waits forever
	DrainTimeout time.Duration
	// OnStatus receives device and queue warnings; it runs on the device thread and must not block
	OnStatus func(error)
	NewSink  SinkFactory
	Clock    func() time.Time
}

// SessionInfo describes a capture session
type SessionInfo struct {
	Path    string
	Format  audio.Format
	Started time.Time
	Frames  int64
	Dropped int64
}

// Engine records one session at a time
type Engine struct {
	input input.Input
	cfg   Config
	log   *zap.SugaredLogger

	// amplitude holds float32 bits of the latest block peak
	amplitude atomic.Uint32

	mu      sync.Mutex
	session *session
}

type session struct {
	info   SessionInfo
	sink   encode.Sink
	stream input.Stream
	log    *zap.SugaredLogger

	queue chan []float32
	done  chan struct{}

	// qmu orders sends against close(queue)
	qmu    sync.RWMutex
	closed bool

	frames   atomic.Int64
	dropped  atomic.Int64
	overrun  atomic.Bool
	writeErr error
	closeErr error
}

// New creates a capture engine reading from in
func New(in input.Input, cfg Config, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if cfg.FramesPerBlock <= 0 {
		cfg.FramesPerBlock = defaultFramesPerBlock
	}
	if cfg.QueueBlocks <= 0 {
		cfg.QueueBlocks = defaultQueueBlocks
	}
	if cfg.NewSink == nil {
		cfg.NewSink = WAVSink
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Engine{
		input: in,
		cfg:   cfg,
		log:   log,
	}
}

// Start opens the sink at path and begins consuming input blocks
func (e *Engine) Start(path string, format audio.Format) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		return ErrAlreadyRecording
	}

	sink, err := e.cfg.NewSink(path, format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}

	s := &session{
		info: SessionInfo{
			Path:    path,
			Format:  format,
			Started: e.cfg.Clock(),
		},
		sink:  sink,
		log:   e.log,
		queue: make(chan []float32, e.cfg.QueueBlocks),
		done:  make(chan struct{}),
	}

	e.amplitude.Store(0)

	stream, err := e.input.Open(format, e.cfg.FramesPerBlock, func(block []float32) {
		e.onBlock(s, block)
	}, e.reportStatus)
	if err != nil {
		sink.Close()
		os.Remove(path)
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	s.stream = stream

	go s.writeLoop()

	if err := stream.Start(); err != nil {
		stream.Close()
		s.closeQueue()
		<-s.done
		os.Remove(path)
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	e.session = s
	e.log.Infow("recording started",
		"path", path,
		"sample_rate", format.SampleRate,
		"channels", format.Channels,
		"queue_blocks", e.cfg.QueueBlocks)

	return nil
}

// onBlock runs on the device thread: publish the peak, then hand off a copy without blocking
func (e *Engine) onBlock(s *session, block []float32) {
	e.amplitude.Store(math.Float32bits(audio.Peak(block)))

	cp := make([]float32, len(block))
	copy(cp, block)

	s.qmu.RLock()
	defer s.qmu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.queue <- cp:
		s.overrun.Store(false)
	default:
		s.dropped.Add(1)
		// one report per overrun burst
		if !s.overrun.Swap(true) {
			e.reportStatus(ErrQueueOverrun)
		}
	}
}

func (e *Engine) reportStatus(err error) {
	e.log.Warnw("capture status", "error", err)
	if e.cfg.OnStatus != nil {
		e.cfg.OnStatus(err)
	}
}

// writeLoop appends blocks in arrival order and closes the sink once the queue is closed
func (s *session) writeLoop() {
	defer close(s.done)

	channels := s.info.Format.Channels
	for block := range s.queue {
		if s.writeErr != nil {
			continue
		}
		if err := s.sink.Write(block); err != nil {
			s.writeErr = err
			s.log.Errorw("failed to write capture block", "path", s.info.Path, "error", err)
			continue
		}
		s.frames.Add(int64(len(block) / channels))
	}

	s.closeErr = s.sink.Close()
}

func (s *session) closeQueue() {
	s.qmu.Lock()
	defer s.qmu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
}

func (s *session) snapshot() SessionInfo {
	info := s.info
	info.Frames = s.frames.Load()
	info.Dropped = s.dropped.Load()
	return info
}

// Stop halts the device, drains the queue into the sink and finalizes it.
// Stopping with no active session is a no-op.
func (e *Engine) Stop() (SessionInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	if s == nil {
		return SessionInfo{}, nil
	}
	e.session = nil

	var errs []error
	if err := s.stream.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop input: %w", err))
	}
	if err := s.stream.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close input: %w", err))
	}

	s.closeQueue()

	if e.cfg.DrainTimeout > 0 {
		timer := time.NewTimer(e.cfg.DrainTimeout)
		defer timer.Stop()
		select {
		case <-s.done:
		case <-timer.C:
			info := s.snapshot()
			e.log.Errorw("capture writer did not drain in time",
				"path", info.Path,
				"timeout", e.cfg.DrainTimeout,
				"frames_written", info.Frames)
			return info, ErrDrainTimeout
		}
	} else {
		<-s.done
	}

	if s.writeErr != nil {
		errs = append(errs, fmt.Errorf("failed to write recording: %w", s.writeErr))
	}
	if s.closeErr != nil {
		errs = append(errs, fmt.Errorf("failed to finalize recording: %w", s.closeErr))
	}

	info := s.snapshot()
	e.log.Infow("recording stopped",
		"path", info.Path,
		"frames", info.Frames,
		"dropped_blocks", info.Dropped,
		"seconds", audio.SecondsForFrames(info.Frames, info.Format.SampleRate))

	return info, errors.Join(errs...)
}

// Active reports whether a session is in progress
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

// Session returns a snapshot of the active session
func (e *Engine) Session() (SessionInfo, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return SessionInfo{}, false
	}
	return e.session.snapshot(), true
}

// Elapsed returns the wall time since the active session started, or zero
func (e *Engine) Elapsed() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return 0
	}
	return e.cfg.Clock().Sub(e.session.info.Started)
}

// CurrentAmplitude returns the peak of the most recent block, or 0 before any data
func (e *Engine) CurrentAmplitude() float32 {
	return math.Float32frombits(e.amplitude.Load())
}
