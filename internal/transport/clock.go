// ABOUTME: Transport clock reconciling engine state with the display on each tick
// ABOUTME: Recording shows elapsed time and level; playback moves the cursor and detects end of track
package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/podcast-recorder/internal/playback"
	"go.uber.org/zap"
)

// DefaultInterval is the polling period used by the UI
const DefaultInterval = 50 * time.Millisecond

// Mode is the transport-level state
type Mode int

const (
	Idle Mode = iota
	Recording
	Playing
	Paused
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Recorder is the capture side seen by the clock
type Recorder interface {
	Active() bool
	Elapsed() time.Duration
	CurrentAmplitude() float32
}

// Player is the playback side seen by the clock
type Player interface {
	State() playback.State
	EstimatedPosition() float64
	Duration() float64
	Stop() error
}

// Display receives the values computed on each tick
type Display interface {
	ShowRecording(elapsed string, amplitude float32)
	SetCursor(seconds float64)
	SetIdle()
}

// Status is a snapshot of one tick
type Status struct {
	Mode      Mode
	Elapsed   string
	Amplitude float32
	Position  float64
	Duration  float64
	// Ended is set on the tick that performed the end-of-track transition
	Ended bool
}

// Clock drives the display from engine state
type Clock struct {
	rec     Recorder
	player  Player
	display Display
	log     *zap.SugaredLogger
}

// New creates a transport clock
func New(rec Recorder, player Player, display Display, log *zap.SugaredLogger) *Clock {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Clock{
		rec:     rec,
		player:  player,
		display: display,
		log:     log,
	}
}

// Mode derives the transport mode; recording wins over playback
func (c *Clock) Mode() Mode {
	if c.rec.Active() {
		return Recording
	}
	switch c.player.State() {
	case playback.Playing:
		return Playing
	case playback.Paused:
		return Paused
	default:
		return Idle
	}
}

// Tick runs one reconciliation step
func (c *Clock) Tick() Status {
	if c.rec.Active() {
		st := Status{
			Mode:      Recording,
			Elapsed:   FormatElapsed(c.rec.Elapsed()),
			Amplitude: c.rec.CurrentAmplitude(),
		}
		c.display.ShowRecording(st.Elapsed, st.Amplitude)
		return st
	}

	switch c.player.State() {
	case playback.Playing:
		total := c.player.Duration()
		pos := c.player.EstimatedPosition()
		c.display.SetCursor(pos)

		if pos < total {
			return Status{Mode: Playing, Position: pos, Duration: total}
		}

		if err := c.player.Stop(); err != nil {
			c.log.Warnw("failed to stop playback at end of track", "error", err)
		}
		c.display.SetCursor(total)
		c.display.SetIdle()
		c.log.Debugw("end of track", "seconds", total)
		return Status{Mode: Idle, Position: total, Duration: total, Ended: true}

	case playback.Paused:
		return Status{Mode: Paused, Position: c.player.EstimatedPosition(), Duration: c.player.Duration()}

	default:
		return Status{Mode: Idle, Position: c.player.EstimatedPosition(), Duration: c.player.Duration()}
	}
}

// Ticker produces one Status per call
type Ticker interface {
	Tick() Status
}

// Run ticks t every interval until ctx is done, sending each status to onTick
func Run(ctx context.Context, interval time.Duration, t Ticker, onTick func(Status)) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := t.Tick()
			if onTick != nil {
				onTick(st)
			}
		}
	}
}

// FormatElapsed renders whole seconds as MM:SS
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
