// ABOUTME: Playback engine holding one decoded clip in memory
// ABOUTME: Tracks the cursor from a wall-clock anchor instead of querying the device
package playback

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harperreed/podcast-recorder/pkg/audio"
	"github.com/harperreed/podcast-recorder/pkg/audio/decode"
	"github.com/harperreed/podcast-recorder/pkg/audio/output"
	"go.uber.org/zap"
)

var (
	// ErrBusy is returned by Play while a capture session is active
	ErrBusy = errors.New("cannot play while recording")

	// ErrNoBuffer is returned when nothing is loaded
	ErrNoBuffer = errors.New("no audio loaded")
)

// State is the playback state
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Interlock reports whether a conflicting operation is in progress
type Interlock interface {
	Active() bool
}

// Loader decodes a file into memory
type Loader func(path string) (*audio.Buffer, error)

// Options configures optional collaborators
type Options struct {
	Clock     func() time.Time
	Loader    Loader
	Interlock Interlock
}

// Engine plays one in-memory buffer through an output sink
type Engine struct {
	out       output.Output
	log       *zap.SugaredLogger
	clock     func() time.Time
	load      Loader
	interlock Interlock

	mu     sync.Mutex
	path   string
	buf    *audio.Buffer
	state  State
	cursor int64
	// anchor is the wall time at which frame 0 would have played; valid only while Playing
	anchor time.Time
}

// New creates a playback engine rendering to out
func New(out output.Output, opts Options, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Loader == nil {
		opts.Loader = decode.File
	}

	return &Engine{
		out:       out,
		log:       log,
		clock:     opts.Clock,
		load:      opts.Loader,
		interlock: opts.Interlock,
	}
}

// Load stops playback and replaces the buffer with the decoded file.
// On failure playback stays stopped and the previous buffer remains loaded.
func (e *Engine) Load(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.stopLocked(); err != nil {
		e.log.Warnw("failed to halt output before load", "error", err)
	}

	buf, err := e.load(path)
	if err != nil {
		return err
	}

	e.buf = buf
	e.path = path
	e.cursor = 0

	e.log.Infow("audio loaded",
		"path", path,
		"sample_rate", buf.Format.SampleRate,
		"channels", buf.Format.Channels,
		"seconds", buf.Seconds())
	return nil
}

// Unload stops playback and drops the buffer if path is the loaded file
func (e *Engine) Unload(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.buf == nil || e.path != path {
		return nil
	}
	err := e.stopLocked()
	e.buf = nil
	e.path = ""
	return err
}

// Play starts rendering at startSeconds. Offsets at or past the end wrap to 0.
func (e *Engine) Play(startSeconds float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.buf == nil {
		return ErrNoBuffer
	}
	return e.playLocked(audio.FramesForSeconds(startSeconds, e.buf.Format.SampleRate))
}

// Resume continues from the paused cursor
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.buf == nil {
		return ErrNoBuffer
	}
	if e.state == Playing {
		return nil
	}
	return e.playLocked(e.cursor)
}

func (e *Engine) playLocked(offset int64) error {
	if e.interlock != nil && e.interlock.Active() {
		return ErrBusy
	}

	frames := e.buf.Frames()
	if offset < 0 || offset >= frames {
		offset = 0
	}

	rate := e.buf.Format.SampleRate
	if err := e.out.Play(e.buf.From(offset), e.buf.Format); err != nil {
		e.state = Stopped
		e.cursor = offset
		e.anchor = time.Time{}
		return fmt.Errorf("failed to start output: %w", err)
	}

	e.anchor = e.clock().Add(-audio.DurationForFrames(offset, rate))
	e.cursor = offset
	e.state = Playing

	e.log.Debugw("playback started", "path", e.path, "offset_frames", offset)
	return nil
}

// Pause halts output and freezes the cursor at the estimated position.
// It is a no-op unless Playing.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Playing {
		return nil
	}

	err := e.out.Stop()

	e.cursor = e.playedFramesLocked()
	e.state = Paused
	e.anchor = time.Time{}

	e.log.Debugw("playback paused", "cursor_frames", e.cursor)
	if err != nil {
		return fmt.Errorf("failed to halt output: %w", err)
	}
	return nil
}

// Stop halts output and rewinds to frame 0
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopLocked()
}

func (e *Engine) stopLocked() error {
	err := e.out.Stop()
	e.cursor = 0
	e.anchor = time.Time{}
	e.state = Stopped
	if err != nil {
		return fmt.Errorf("failed to halt output: %w", err)
	}
	return nil
}

// Seek moves the cursor to seconds, clamped to [0, duration]. While Playing
// rendering restarts at the target; seeking to the end finishes the track.
func (e *Engine) Seek(seconds float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.buf == nil {
		return ErrNoBuffer
	}

	frames := e.buf.Frames()
	target := audio.FramesForSeconds(seconds, e.buf.Format.SampleRate)
	if target > frames {
		target = frames
	}

	if e.state != Playing {
		e.cursor = target
		return nil
	}

	if target == frames {
		err := e.out.Stop()
		e.state = Stopped
		e.anchor = time.Time{}
		e.cursor = frames
		return err
	}
	return e.playLocked(target)
}

// playedFramesLocked converts elapsed wall time into a frame position within the buffer
func (e *Engine) playedFramesLocked() int64 {
	played := audio.FramesForDuration(e.clock().Sub(e.anchor), e.buf.Format.SampleRate)
	if played < 0 {
		return 0
	}
	if frames := e.buf.Frames(); played > frames {
		return frames
	}
	return played
}

// EstimatedPosition returns min(now - anchor, duration) while Playing, otherwise the cursor
func (e *Engine) EstimatedPosition() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.buf == nil {
		return 0
	}
	if e.state == Playing {
		elapsed := e.clock().Sub(e.anchor)
		if elapsed < 0 {
			return 0
		}
		if total := e.buf.Duration(); elapsed > total {
			return e.buf.Seconds()
		}
		return elapsed.Seconds()
	}
	return audio.SecondsForFrames(e.cursor, e.buf.Format.SampleRate)
}

// Duration returns the loaded buffer length in seconds
func (e *Engine) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Seconds()
}

// State returns the playback state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Cursor returns the stored cursor in frames
func (e *Engine) Cursor() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// Loaded returns the path and buffer currently loaded
func (e *Engine) Loaded() (string, *audio.Buffer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path, e.buf
}
