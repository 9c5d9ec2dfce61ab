// ABOUTME: Tests for the waveform display model
// ABOUTME: Checks live scrolling, overview peaks, cursor clamping and rendering
package waveform

import (
	"testing"
	"unicode/utf8"

	"github.com/harperreed/podcast-recorder/pkg/audio"
)

func TestLiveLevelsScroll(t *testing.T) {
	w := New(4)
	w.StartLive()

	for i, a := range []float32{0.1, 0.2, 0.3, 0.4, 0.5} {
		w.ShowRecording("00:0"+string(rune('0'+i)), a)
	}

	want := []float32{0.2, 0.3, 0.4, 0.5}
	for i, v := range w.Levels() {
		if v != want[i] {
			t.Errorf("level %d = %f, want %f", i, v, want[i])
		}
	}
	if w.Elapsed() != "00:04" {
		t.Errorf("expected elapsed 00:04, got %q", w.Elapsed())
	}
	if w.Mode() != Live {
		t.Errorf("expected Live mode, got %v", w.Mode())
	}
}

func TestStartLiveResets(t *testing.T) {
	w := New(3)
	w.ShowRecording("00:01", 0.9)
	w.StartLive()
	for i, v := range w.Levels() {
		if v != 0 {
			t.Errorf("level %d not reset: %f", i, v)
		}
	}
}

func TestSetBufferOverview(t *testing.T) {
	w := New(4)
	buf := &audio.Buffer{
		Format: audio.Format{SampleRate: 4, Channels: 2},
		// 8 stereo frames; mono mix is (l+r)/2
		Samples: []float32{
			0.2, 0.2, 0.4, 0.4,
			-0.6, -0.6, 0, 0,
			0.1, 0.3, 0, 0,
			1, -1, 0.8, 0.8,
		},
	}

	w.SetBuffer(buf)

	if w.Duration() != 2 {
		t.Errorf("expected duration 2s, got %v", w.Duration())
	}
	want := []float32{0.4, 0.6, 0.2, 0.8}
	for i, v := range w.Peaks() {
		if d := v - want[i]; d > 1e-6 || d < -1e-6 {
			t.Errorf("peak %d = %f, want %f", i, v, want[i])
		}
	}
}

func TestSetCursorClamps(t *testing.T) {
	w := New(10)
	w.SetBuffer(&audio.Buffer{Format: audio.Format{SampleRate: 10, Channels: 1}, Samples: make([]float32, 20)})

	tests := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{0.5, 0.5},
		{2, 2},
		{3.5, 2},
	}
	for _, tt := range tests {
		w.SetCursor(tt.in)
		if w.Cursor() != tt.want {
			t.Errorf("SetCursor(%v) = %v, want %v", tt.in, w.Cursor(), tt.want)
		}
	}
	if w.Idle() {
		t.Error("SetCursor should leave idle state")
	}
	w.SetIdle()
	if !w.Idle() {
		t.Error("expected idle after SetIdle")
	}
}

func TestTimeAtAndCursorColumn(t *testing.T) {
	w := New(10)
	w.SetBuffer(&audio.Buffer{Format: audio.Format{SampleRate: 10, Channels: 1}, Samples: make([]float32, 100)})

	if got := w.TimeAt(0, 11); got != 0 {
		t.Errorf("TimeAt(0) = %v", got)
	}
	if got := w.TimeAt(10, 11); got != 10 {
		t.Errorf("TimeAt(10) = %v, want 10", got)
	}
	if got := w.TimeAt(50, 11); got != 10 {
		t.Errorf("TimeAt past end = %v, want 10", got)
	}

	w.SetCursor(5)
	if got := w.CursorColumn(11); got != 5 {
		t.Errorf("CursorColumn = %d, want 5", got)
	}
}

func TestRenderDimensions(t *testing.T) {
	w := New(200)
	w.StartLive()
	w.ShowRecording("00:00", 1)

	rows := w.Render(40, 3)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, r := range rows {
		if n := utf8.RuneCountInString(r); n != 40 {
			t.Errorf("row %d has %d columns, want 40", i, n)
		}
	}

	// A full-scale level fills the last column on every row
	for i, r := range rows {
		runes := []rune(r)
		if runes[len(runes)-1] != '█' {
			t.Errorf("row %d last column = %q, want full block", i, runes[len(runes)-1])
		}
	}
	if w.Render(0, 3) != nil {
		t.Error("expected nil for zero width")
	}
}

func TestRenderDrawsFileCursor(t *testing.T) {
	w := New(20)
	samples := make([]float32, 40)
	for i := range samples {
		samples[i] = 1
	}
	w.SetBuffer(&audio.Buffer{Format: audio.Format{SampleRate: 40, Channels: 1}, Samples: samples})

	atStart := w.Render(20, 2)
	w.SetCursor(0.5)
	atMiddle := w.Render(20, 2)
	w.SetCursor(1)
	atEnd := w.Render(20, 2)

	tests := []struct {
		name string
		rows []string
		col  int
	}{
		{"start", atStart, 0},
		{"middle", atMiddle, 10},
		{"end", atEnd, 19},
	}

	for _, tt := range tests {
		for r, row := range tt.rows {
			runes := []rune(row)
			if len(runes) != 20 {
				t.Fatalf("%s: row %d has %d columns, want 20", tt.name, r, len(runes))
			}
			for col, c := range runes {
				if col == tt.col && c != cursorRune {
					t.Errorf("%s: row %d column %d = %q, want cursor", tt.name, r, col, c)
				}
				if col != tt.col && c != bars[len(bars)-1] {
					t.Errorf("%s: row %d column %d = %q, want full block", tt.name, r, col, c)
				}
			}
		}
	}

	if atStart[1] == atMiddle[1] {
		t.Error("expected rendered rows to change when the cursor moves")
	}
}

func TestRenderLiveHasNoCursor(t *testing.T) {
	w := New(10)
	w.StartLive()
	for _, row := range w.Render(10, 2) {
		for _, c := range row {
			if c == cursorRune {
				t.Fatalf("unexpected cursor in live view %q", row)
			}
		}
	}
}

func TestClear(t *testing.T) {
	w := New(10)
	w.SetBuffer(&audio.Buffer{Format: audio.Format{SampleRate: 10, Channels: 1}, Samples: make([]float32, 10)})
	w.SetCursor(0.5)
	w.Clear()

	if w.Mode() != Empty || w.Duration() != 0 || w.Cursor() != 0 || w.Peaks() != nil {
		t.Error("Clear did not reset the view")
	}
}
