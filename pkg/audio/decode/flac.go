// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC files to float32 buffers using mewkiz/flac
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/harperreed/podcast-recorder/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLAC decodes FLAC files
type FLAC struct{}

// Decode converts a FLAC stream to float32 samples
func (FLAC) Decode(r io.ReadSeeker) (*audio.Buffer, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC stream: %w", err)
	}

	channels := int(stream.Info.NChannels)
	bitDepth := int(stream.Info.BitsPerSample)
	samples := make([]float32, 0, int(stream.Info.NSamples)*channels)

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		// Subframes are already decorrelated, interleave them
		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, audio.SampleFromInt(int(frame.Subframes[ch].Samples[i]), bitDepth))
			}
		}
	}

	return &audio.Buffer{
		Format: audio.Format{
			SampleRate: int(stream.Info.SampleRate),
			Channels:   channels,
			BitDepth:   bitDepth,
		},
		Samples: samples,
	}, nil
}

// Probe reads the FLAC StreamInfo block
func (FLAC) Probe(r io.ReadSeeker) (Info, error) {
	stream, err := flac.New(r)
	if err != nil {
		return Info{}, fmt.Errorf("failed to open FLAC stream: %w", err)
	}

	return Info{
		Format: audio.Format{
			SampleRate: int(stream.Info.SampleRate),
			Channels:   int(stream.Info.NChannels),
			BitDepth:   int(stream.Info.BitsPerSample),
		},
		Frames: int64(stream.Info.NSamples),
	}, nil
}
