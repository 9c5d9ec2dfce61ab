// ABOUTME: WAV audio decoder
// ABOUTME: Decodes RIFF/WAVE PCM files to float32 buffers using go-audio/wav
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/harperreed/podcast-recorder/pkg/audio"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// WAV decodes PCM WAV files
type WAV struct{}

// Decode converts a WAV stream to float32 samples
func (WAV) Decode(r io.ReadSeeker) (*audio.Buffer, error) {
	d, err := openWAV(r)
	if err != nil {
		return nil, err
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	bitDepth := int(d.BitDepth)
	samples := make([]float32, len(pcm.Data))
	for i, v := range pcm.Data {
		samples[i] = audio.SampleFromInt(v, bitDepth)
	}

	channels := int(d.NumChans)
	// drop a trailing partial frame from truncated files
	samples = samples[:len(samples)-len(samples)%channels]

	return &audio.Buffer{
		Format: audio.Format{
			SampleRate: int(d.SampleRate),
			Channels:   channels,
			BitDepth:   bitDepth,
		},
		Samples: samples,
	}, nil
}

// Probe reads the WAV header and data chunk size
func (WAV) Probe(r io.ReadSeeker) (Info, error) {
	d, err := openWAV(r)
	if err != nil {
		return Info{}, err
	}

	if err := d.FwdToPCM(); err != nil {
		return Info{}, fmt.Errorf("failed to locate PCM data: %w", err)
	}

	frameBytes := int64(d.NumChans) * int64(d.BitDepth/8)
	if frameBytes == 0 {
		return Info{}, errors.New("invalid WAV frame size")
	}

	return Info{
		Format: audio.Format{
			SampleRate: int(d.SampleRate),
			Channels:   int(d.NumChans),
			BitDepth:   int(d.BitDepth),
		},
		Frames: d.PCMLen() / frameBytes,
	}, nil
}

func openWAV(r io.ReadSeeker) (*wav.Decoder, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("invalid WAV file: %w", err)
		}
		return nil, errors.New("invalid WAV file")
	}

	if d.WavAudioFormat != wavFormatPCM && d.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: WAV encoding %d (only PCM)", ErrUnsupportedFormat, d.WavAudioFormat)
	}
	if d.NumChans == 0 || d.SampleRate == 0 {
		return nil, errors.New("invalid WAV format chunk")
	}
	switch d.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, d.BitDepth)
	}

	return d, nil
}
