// ABOUTME: Tests for the WAV sink, FLAC export and PCM packing
// ABOUTME: Verifies frame accounting, close semantics and byte layout
package encode

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/harperreed/podcast-recorder/pkg/audio"
)

func TestWAVWriterFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	w, err := NewWAVFile(path, audio.Format{SampleRate: 44100, Channels: 2})
	if err != nil {
		t.Fatalf("NewWAVFile failed: %v", err)
	}

	if err := w.Write(make([]float32, 1024)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Write(make([]float32, 3)); err == nil {
		t.Error("expected error for partial frame")
	}
	if w.Frames() != 512 {
		t.Errorf("expected 512 frames, got %d", w.Frames())
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if err := w.Write(make([]float32, 2)); err == nil {
		t.Error("expected error writing after Close")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// 44-byte canonical header plus 512 frames * 2 channels * 2 bytes
	if len(data) != 44+2048 {
		t.Errorf("expected %d bytes, got %d", 44+2048, len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Errorf("missing RIFF/WAVE magic")
	}
	if size := binary.LittleEndian.Uint32(data[4:8]); size != uint32(len(data)-8) {
		t.Errorf("RIFF size = %d, want %d", size, len(data)-8)
	}
}

func TestWAVWriterEmptyHasHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	w, err := NewWAVFile(path, audio.Format{SampleRate: 44100, Channels: 1})
	if err != nil {
		t.Fatalf("NewWAVFile failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 44 {
		t.Errorf("expected header-only file of 44 bytes, got %d", len(data))
	}
}

func TestNewWAVFileInvalid(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewWAVFile(filepath.Join(dir, "a.wav"), audio.Format{}); err == nil {
		t.Error("expected error for zero format")
	}
	if _, err := NewWAVFile(filepath.Join(dir, "missing", "a.wav"), audio.Format{SampleRate: 8000, Channels: 1}); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestFLACFileNoPartialOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.flac")
	if err := FLACFile(path, nil); err == nil {
		t.Fatal("expected error for nil buffer")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no output file, stat err = %v", err)
	}
	if _, err := os.Stat(path + ".part"); !os.IsNotExist(err) {
		t.Errorf("expected temp file removed, stat err = %v", err)
	}
}

func TestFLACRejectsTooManyChannels(t *testing.T) {
	buf := &audio.Buffer{
		Format:  audio.Format{SampleRate: 44100, Channels: 9},
		Samples: make([]float32, 90),
	}
	if err := FLACFile(filepath.Join(t.TempDir(), "x.flac"), buf); err == nil {
		t.Error("expected error for 9 channels")
	}
}

func TestPCM16(t *testing.T) {
	out := PCM16([]float32{0, 1, -1, 0.5})
	if len(out) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(out))
	}

	want := []int16{0, 32767, -32768, 16383}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(out[i*2:]))
		if got != w {
			t.Errorf("sample %d: got %d, want %d", i, got, w)
		}
	}
}
