// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 files to float32 buffers using go-mp3
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/harperreed/podcast-recorder/pkg/audio"
)

// go-mp3 always produces 16-bit little-endian stereo
const (
	mp3Channels   = 2
	mp3FrameBytes = 4
)

// MP3 decodes MP3 files
type MP3 struct{}

// Decode converts an MP3 stream to float32 samples
func (MP3) Decode(r io.ReadSeeker) (*audio.Buffer, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	// Convert bytes to int16 then to float
	data = data[:len(data)-len(data)%mp3FrameBytes]
	samples := make([]float32, len(data)/2)
	for i := range samples {
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(data[i*2:])))
	}

	return &audio.Buffer{
		Format: audio.Format{
			SampleRate: decoder.SampleRate(),
			Channels:   mp3Channels,
			BitDepth:   16,
		},
		Samples: samples,
	}, nil
}

// Probe reports the decoded length of an MP3 stream
func (MP3) Probe(r io.ReadSeeker) (Info, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return Info{}, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	return Info{
		Format: audio.Format{
			SampleRate: decoder.SampleRate(),
			Channels:   mp3Channels,
			BitDepth:   16,
		},
		Frames: decoder.Length() / mp3FrameBytes,
	}, nil
}
