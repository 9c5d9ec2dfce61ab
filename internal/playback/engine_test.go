// ABOUTME: Tests for the playback engine
// ABOUTME: Drives the wall-clock anchor with a fake clock and a recording output
package playback

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/harperreed/podcast-recorder/pkg/audio"
)

type playCall struct {
	frames int64
	first  float32
}

type fakeOutput struct {
	plays   []playCall
	stops   int
	playErr error
}

func (f *fakeOutput) Play(samples []float32, format audio.Format) error {
	if f.playErr != nil {
		return f.playErr
	}
	call := playCall{frames: int64(len(samples) / format.Channels)}
	if len(samples) > 0 {
		call.first = samples[0]
	}
	f.plays = append(f.plays, call)
	return nil
}

func (f *fakeOutput) Stop() error  { f.stops++; return nil }
func (f *fakeOutput) Close() error { return nil }

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type flag bool

func (f *flag) Active() bool { return bool(*f) }

// ramp returns a mono buffer whose sample i is i/frames, so the first rendered
// sample identifies the offset handed to the output
func ramp(seconds float64, rate int) *audio.Buffer {
	frames := int(seconds * float64(rate))
	samples := make([]float32, frames)
	for i := range samples {
		samples[i] = float32(i) / float32(frames)
	}
	return &audio.Buffer{Format: audio.Format{SampleRate: rate, Channels: 1}, Samples: samples}
}

func newTestEngine(t *testing.T, buf *audio.Buffer) (*Engine, *fakeOutput, *fakeClock, *flag) {
	t.Helper()
	out := &fakeOutput{}
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	busy := new(flag)
	e := New(out, Options{
		Clock:     clock.Now,
		Interlock: busy,
		Loader: func(path string) (*audio.Buffer, error) {
			if path == "bad.wav" {
				return nil, errors.New("malformed")
			}
			return buf, nil
		},
	}, nil)
	if err := e.Load("clip.wav"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return e, out, clock, busy
}

func TestPlayThenPauseReportsStart(t *testing.T) {
	buf := ramp(10, 44100)
	e, _, _, _ := newTestEngine(t, buf)

	for _, s := range []float64{0, 0.5, 1.2345, 3, 7.77, 9.99} {
		if err := e.Play(s); err != nil {
			t.Fatalf("Play(%v) failed: %v", s, err)
		}
		if err := e.Pause(); err != nil {
			t.Fatalf("Pause failed: %v", err)
		}
		got := e.EstimatedPosition()
		if math.Abs(got-s) > 1.0/44100 {
			t.Errorf("Play(%v)+Pause: position %v", s, got)
		}
	}
}

func TestPlayHandsOutputOnlyRemainingSamples(t *testing.T) {
	buf := ramp(2, 1000)
	e, out, _, _ := newTestEngine(t, buf)

	if err := e.Play(0.5); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	call := out.plays[len(out.plays)-1]
	if call.frames != 1500 {
		t.Errorf("expected 1500 remaining frames, got %d", call.frames)
	}
	if call.first != buf.Samples[500] {
		t.Errorf("expected rendering to begin at frame 500")
	}
}

func TestPlayWrapsAtEnd(t *testing.T) {
	buf := ramp(2, 1000)
	e, out, _, _ := newTestEngine(t, buf)

	for _, s := range []float64{2, 2.5, 100} {
		if err := e.Play(s); err != nil {
			t.Fatalf("Play(%v) failed: %v", s, err)
		}
		if got := out.plays[len(out.plays)-1].frames; got != 2000 {
			t.Errorf("Play(%v): expected wrap to full buffer, got %d frames", s, got)
		}
		if e.Cursor() != 0 {
			t.Errorf("Play(%v): expected cursor 0, got %d", s, e.Cursor())
		}
	}
}

func TestStopThenPlayStartsAtZero(t *testing.T) {
	buf := ramp(5, 8000)
	e, out, clock, _ := newTestEngine(t, buf)

	if err := e.Play(3); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Second)
	if err := e.Stop(); err != nil {
		t.Fatal(err)
	}
	if e.State() != Stopped || e.Cursor() != 0 || e.EstimatedPosition() != 0 {
		t.Errorf("expected stopped at 0, got %v cursor=%d", e.State(), e.Cursor())
	}

	if err := e.Play(0); err != nil {
		t.Fatal(err)
	}
	if got := out.plays[len(out.plays)-1].frames; got != buf.Frames() {
		t.Errorf("expected play from frame 0, got %d remaining frames", got)
	}
}

func TestPauseResumeDoesNotDrift(t *testing.T) {
	buf := ramp(60, 44100)
	e, _, clock, _ := newTestEngine(t, buf)

	if err := e.Play(0); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		clock.Advance(10 * time.Millisecond)
		if err := e.Pause(); err != nil {
			t.Fatal(err)
		}
		if err := e.Resume(); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.Pause(); err != nil {
		t.Fatal(err)
	}

	// 100 cycles of exactly 441 frames
	if e.Cursor() != 44100 {
		t.Errorf("expected cursor 44100 after 1s of cycles, got %d", e.Cursor())
	}
}

func TestPauseResumeDriftBoundedBySamplePeriod(t *testing.T) {
	buf := ramp(60, 44100)
	e, _, clock, _ := newTestEngine(t, buf)

	const cycles = 200
	step := 33333333 * time.Nanosecond

	if err := e.Play(0); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < cycles; i++ {
		clock.Advance(step)
		if err := e.Pause(); err != nil {
			t.Fatal(err)
		}
		// resume through the public seconds API
		if err := e.Play(e.EstimatedPosition()); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.Pause(); err != nil {
		t.Fatal(err)
	}

	want := audio.FramesForDuration(cycles*step, 44100)
	diff := want - e.Cursor()
	if diff < 0 {
		diff = -diff
	}
	if diff > cycles {
		t.Errorf("cursor %d drifted from %d by more than one frame per cycle", e.Cursor(), want)
	}
}

func TestPauseIsNoOpUnlessPlaying(t *testing.T) {
	e, out, _, _ := newTestEngine(t, ramp(1, 1000))

	if err := e.Pause(); err != nil {
		t.Fatal(err)
	}
	if e.State() != Stopped {
		t.Errorf("expected Stopped, got %v", e.State())
	}
	if out.stops != 1 { // the stop issued by Load
		t.Errorf("Pause while stopped must not touch the output, got %d stops", out.stops)
	}
}

func TestEstimatedPositionClampsToDuration(t *testing.T) {
	e, _, clock, _ := newTestEngine(t, ramp(2, 1000))

	if err := e.Play(0); err != nil {
		t.Fatal(err)
	}
	clock.Advance(1500 * time.Millisecond)
	if got := e.EstimatedPosition(); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("expected 1.5s, got %v", got)
	}

	clock.Advance(5 * time.Second)
	if got := e.EstimatedPosition(); got != 2 {
		t.Errorf("expected clamp to 2s, got %v", got)
	}

	if err := e.Pause(); err != nil {
		t.Fatal(err)
	}
	if e.Cursor() != 2000 {
		t.Errorf("expected paused cursor clamped to 2000, got %d", e.Cursor())
	}
}

func TestPlayRejectedWhileRecording(t *testing.T) {
	e, out, _, busy := newTestEngine(t, ramp(1, 1000))
	*busy = true

	if err := e.Play(0); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if e.State() != Stopped || len(out.plays) != 0 {
		t.Error("rejected Play must not change state or render")
	}
}

func TestPlayWithoutBuffer(t *testing.T) {
	e := New(&fakeOutput{}, Options{}, nil)
	if err := e.Play(0); !errors.Is(err, ErrNoBuffer) {
		t.Errorf("expected ErrNoBuffer, got %v", err)
	}
	if err := e.Seek(1); !errors.Is(err, ErrNoBuffer) {
		t.Errorf("expected ErrNoBuffer from Seek, got %v", err)
	}
	if e.EstimatedPosition() != 0 || e.Duration() != 0 {
		t.Error("expected zero position and duration without buffer")
	}
}

func TestLoadFailureKeepsPreviousBuffer(t *testing.T) {
	buf := ramp(1, 1000)
	e, _, _, _ := newTestEngine(t, buf)

	if err := e.Play(0.5); err != nil {
		t.Fatal(err)
	}
	if err := e.Load("bad.wav"); err == nil {
		t.Fatal("expected load error")
	}

	path, loaded := e.Loaded()
	if path != "clip.wav" || loaded != buf {
		t.Errorf("previous buffer should remain loaded, got %q", path)
	}
	if e.State() != Stopped {
		t.Errorf("expected Stopped after failed load, got %v", e.State())
	}
}

func TestLoadResetsCursor(t *testing.T) {
	e, _, clock, _ := newTestEngine(t, ramp(4, 1000))

	if err := e.Play(1); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Second)
	if err := e.Pause(); err != nil {
		t.Fatal(err)
	}
	if err := e.Load("other.wav"); err != nil {
		t.Fatal(err)
	}
	if e.Cursor() != 0 || e.State() != Stopped {
		t.Errorf("expected cursor 0 and Stopped, got %d %v", e.Cursor(), e.State())
	}
}

func TestSeek(t *testing.T) {
	e, out, _, _ := newTestEngine(t, ramp(3, 1000))

	// Stopped: moves the cursor, clamps past the end
	if err := e.Seek(10); err != nil {
		t.Fatal(err)
	}
	if e.Cursor() != 3000 {
		t.Errorf("expected cursor clamped to 3000, got %d", e.Cursor())
	}
	if err := e.Seek(-1); err != nil {
		t.Fatal(err)
	}
	if e.Cursor() != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", e.Cursor())
	}

	// Playing: restarts rendering at the target
	if err := e.Play(0); err != nil {
		t.Fatal(err)
	}
	if err := e.Seek(2); err != nil {
		t.Fatal(err)
	}
	if got := out.plays[len(out.plays)-1].frames; got != 1000 {
		t.Errorf("expected 1000 remaining frames after seek, got %d", got)
	}
	if e.State() != Playing {
		t.Errorf("expected Playing after seek, got %v", e.State())
	}

	// Playing past the end finishes the track
	if err := e.Seek(5); err != nil {
		t.Fatal(err)
	}
	if e.State() != Stopped || e.Cursor() != 3000 {
		t.Errorf("expected Stopped at end, got %v cursor=%d", e.State(), e.Cursor())
	}
}

func TestUnload(t *testing.T) {
	e, _, _, _ := newTestEngine(t, ramp(1, 1000))

	if err := e.Unload("other.wav"); err != nil {
		t.Fatal(err)
	}
	if path, _ := e.Loaded(); path != "clip.wav" {
		t.Error("Unload of a different path must keep the buffer")
	}

	if err := e.Unload("clip.wav"); err != nil {
		t.Fatal(err)
	}
	if path, buf := e.Loaded(); path != "" || buf != nil {
		t.Error("expected buffer dropped")
	}
}

func TestOutputFailureLeavesStopped(t *testing.T) {
	e, out, _, _ := newTestEngine(t, ramp(1, 1000))
	out.playErr = errors.New("device gone")

	if err := e.Play(0.25); err == nil {
		t.Fatal("expected output error")
	}
	if e.State() != Stopped {
		t.Errorf("expected Stopped, got %v", e.State())
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{Stopped: "stopped", Playing: "playing", Paused: "paused", State(9): "State(9)"}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
