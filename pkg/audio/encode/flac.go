// ABOUTME: FLAC exporter
// ABOUTME: Encodes an in-memory buffer as 16-bit FLAC using mewkiz/flac
package encode

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/harperreed/podcast-recorder/pkg/audio"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

const (
	flacBlockSize   = 4096
	flacBitDepth    = 16
	flacMaxChannels = 8
)

// FLAC writes buf to w as a FLAC stream
func FLAC(w io.Writer, buf *audio.Buffer) error {
	if buf == nil || !buf.Format.Valid() {
		return errors.New("nothing to encode")
	}
	channels := buf.Format.Channels
	if channels > flacMaxChannels {
		return fmt.Errorf("FLAC supports at most %d channels, got %d", flacMaxChannels, channels)
	}

	frames := buf.Frames()
	info := &meta.StreamInfo{
		BlockSizeMin:  flacBlockSize,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(buf.Format.SampleRate),
		NChannels:     uint8(channels),
		BitsPerSample: flacBitDepth,
		NSamples:      uint64(frames),
	}

	enc, err := flac.NewEncoder(w, info)
	if err != nil {
		return fmt.Errorf("failed to create FLAC encoder: %w", err)
	}

	for start, num := int64(0), uint64(0); start < frames; start, num = start+flacBlockSize, num+1 {
		n := frames - start
		if n > flacBlockSize {
			n = flacBlockSize
		}

		subframes := make([]*frame.Subframe, channels)
		for ch := range subframes {
			samples := make([]int32, n)
			for i := range samples {
				samples[i] = int32(audio.SampleToInt(buf.Samples[(start+int64(i))*int64(channels)+int64(ch)], flacBitDepth))
			}
			subframes[ch] = &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   samples,
				NSamples:  int(n),
			}
		}

		f := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(n),
				SampleRate:        uint32(buf.Format.SampleRate),
				// independent channel assignments are numbered channels-1
				Channels:      frame.Channels(channels - 1),
				BitsPerSample: flacBitDepth,
				Num:           num,
			},
			Subframes: subframes,
		}
		if err := enc.WriteFrame(f); err != nil {
			return fmt.Errorf("failed to write FLAC frame %d: %w", num, err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize FLAC stream: %w", err)
	}
	return nil
}

// FLACFile exports buf to path. The file appears only once it is complete.
func FLACFile(path string, buf *audio.Buffer) error {
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create FLAC file: %w", err)
	}

	if err := FLAC(f, buf); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	// The encoder closes writers that are io.Closers
	if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		os.Remove(tmp)
		return fmt.Errorf("failed to close FLAC file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move FLAC file into place: %w", err)
	}
	return nil
}
