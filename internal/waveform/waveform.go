// ABOUTME: Waveform display model for live levels and file overviews
// ABOUTME: Implements the transport display and renders to block characters
package waveform

import (
	"math"
	"strings"

	"github.com/harperreed/podcast-recorder/pkg/audio"
)

// DefaultWidth is the number of live level points kept while recording
const DefaultWidth = 200

// Mode selects what the waveform shows
type Mode int

const (
	Empty Mode = iota
	Live
	File
)

var bars = []rune(" ▁▂▃▄▅▆▇█")

// cursorRune marks the playback position in the file overview
const cursorRune = '│'

// Waveform holds the data behind the waveform view
type Waveform struct {
	mode Mode

	// live levels, oldest first
	levels  []float32
	elapsed string

	// file overview: per-column peaks of the mono mixdown
	peaks    []float32
	duration float64
	cursor   float64
	idle     bool
}

// New creates a waveform keeping width live points
func New(width int) *Waveform {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Waveform{levels: make([]float32, width), idle: true}
}

// StartLive clears the view for a new recording
func (w *Waveform) StartLive() {
	w.mode = Live
	for i := range w.levels {
		w.levels[i] = 0
	}
	w.elapsed = "00:00"
	w.idle = false
}

// ShowRecording scrolls the live levels left and appends amplitude
func (w *Waveform) ShowRecording(elapsed string, amplitude float32) {
	if w.mode != Live {
		w.StartLive()
	}
	copy(w.levels, w.levels[1:])
	w.levels[len(w.levels)-1] = amplitude
	w.elapsed = elapsed
}

// SetBuffer shows the overview of buf with the cursor at 0
func (w *Waveform) SetBuffer(buf *audio.Buffer) {
	w.mode = File
	w.peaks = overview(buf, len(w.levels))
	w.duration = buf.Seconds()
	w.cursor = 0
	w.idle = true
}

// SetCursor moves the playback cursor, clamped to [0, duration]
func (w *Waveform) SetCursor(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	if w.duration > 0 && seconds > w.duration {
		seconds = w.duration
	}
	w.cursor = seconds
	w.idle = false
}

// SetIdle marks the transport as stopped
func (w *Waveform) SetIdle() {
	w.idle = true
}

// Clear empties the view
func (w *Waveform) Clear() {
	w.mode = Empty
	w.peaks = nil
	w.duration = 0
	w.cursor = 0
	w.elapsed = ""
	w.idle = true
}

func (w *Waveform) Mode() Mode        { return w.mode }
func (w *Waveform) Cursor() float64   { return w.cursor }
func (w *Waveform) Duration() float64 { return w.duration }
func (w *Waveform) Elapsed() string   { return w.elapsed }
func (w *Waveform) Idle() bool        { return w.idle }
func (w *Waveform) Levels() []float32 { return w.levels }
func (w *Waveform) Peaks() []float32  { return w.peaks }

// TimeAt maps a column of a view width columns wide to seconds
func (w *Waveform) TimeAt(col, width int) float64 {
	if width <= 1 || w.duration <= 0 {
		return 0
	}
	if col < 0 {
		col = 0
	}
	if col >= width {
		col = width - 1
	}
	return w.duration * float64(col) / float64(width-1)
}

// CursorColumn returns the column of the cursor in a view width columns wide
func (w *Waveform) CursorColumn(width int) int {
	if width <= 1 || w.duration <= 0 {
		return 0
	}
	return int(math.Round(w.cursor / w.duration * float64(width-1)))
}

// Render draws the current mode as height rows of width block characters
func (w *Waveform) Render(width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}

	var values []float32
	cursorCol := -1
	switch w.mode {
	case Live:
		values = resampleColumns(w.levels, width)
	case File:
		values = resampleColumns(w.peaks, width)
		cursorCol = w.CursorColumn(width)
	default:
		values = make([]float32, width)
	}

	rows := make([]string, height)
	levels := len(bars) - 1
	for r := 0; r < height; r++ {
		// rows are drawn top to bottom; row 0 covers the loudest band
		floor := float64(height-1-r) / float64(height)
		var b strings.Builder
		for col, v := range values {
			if col == cursorCol {
				b.WriteRune(cursorRune)
				continue
			}
			fill := (float64(v) - floor) * float64(height)
			idx := int(math.Round(fill * float64(levels)))
			if idx < 0 {
				idx = 0
			}
			if idx > levels {
				idx = levels
			}
			b.WriteRune(bars[idx])
		}
		rows[r] = b.String()
	}
	return rows
}

// overview mixes buf to mono and returns the peak of each of columns equal slices
func overview(buf *audio.Buffer, columns int) []float32 {
	frames := buf.Frames()
	if frames == 0 || columns <= 0 {
		return make([]float32, columns)
	}

	channels := buf.Format.Channels
	peaks := make([]float32, columns)
	for col := 0; col < columns; col++ {
		start := frames * int64(col) / int64(columns)
		end := frames * int64(col+1) / int64(columns)
		var peak float32
		for f := start; f < end; f++ {
			var sum float32
			for ch := 0; ch < channels; ch++ {
				sum += buf.Samples[f*int64(channels)+int64(ch)]
			}
			if v := float32(math.Abs(float64(sum / float32(channels)))); v > peak {
				peak = v
			}
		}
		if peak > 1 {
			peak = 1
		}
		peaks[col] = peak
	}
	return peaks
}

// resampleColumns stretches or squeezes values to width columns taking the max of each span
func resampleColumns(values []float32, width int) []float32 {
	out := make([]float32, width)
	n := len(values)
	if n == 0 {
		return out
	}
	for col := 0; col < width; col++ {
		start := n * col / width
		end := n * (col + 1) / width
		if end <= start {
			end = start + 1
		}
		var peak float32
		for _, v := range values[start:end] {
			if v > peak {
				peak = v
			}
		}
		out[col] = peak
	}
	return out
}
