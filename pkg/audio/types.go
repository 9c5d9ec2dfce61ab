// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats, in-memory buffers and frame/time math
package audio

import (
	"math"
	"time"
)

const (
	// Max24Bit is the largest 24-bit sample value, 2^23 - 1
	Max24Bit = 8388607

	// frameEpsilon absorbs binary representation error in seconds*rate products
	// (1536/44100*44100 evaluates to 1535.9999999999998). The error grows with
	// the product, so the guard is relative with an absolute floor.
	frameEpsilon         = 1e-9
	frameRelativeEpsilon = 1e-12
)

// Format describes an audio stream format
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int // container bit depth for encoded files; buffers are always float32
}

// Valid reports whether the format can describe audio
func (f Format) Valid() bool {
	return f.SampleRate > 0 && f.Channels > 0
}

// Buffer holds decoded audio fully resident in memory.
// Samples are interleaved float32 in [-1, 1], len(Samples) is a multiple of Channels.
type Buffer struct {
	Format  Format
	Samples []float32
}

// Frames returns the number of sample frames in the buffer
func (b *Buffer) Frames() int64 {
	if b == nil || b.Format.Channels <= 0 {
		return 0
	}
	return int64(len(b.Samples) / b.Format.Channels)
}

// Duration returns the buffer length as a time.Duration
func (b *Buffer) Duration() time.Duration {
	if b == nil {
		return 0
	}
	return DurationForFrames(b.Frames(), b.Format.SampleRate)
}

// Seconds returns the buffer length in seconds (frames / sampleRate)
func (b *Buffer) Seconds() float64 {
	if b == nil {
		return 0
	}
	return SecondsForFrames(b.Frames(), b.Format.SampleRate)
}

// From returns the samples from frame to the end without copying.
// frame is clamped to [0, Frames()].
func (b *Buffer) From(frame int64) []float32 {
	if b == nil {
		return nil
	}
	if frame < 0 {
		frame = 0
	}
	if n := b.Frames(); frame > n {
		frame = n
	}
	return b.Samples[frame*int64(b.Format.Channels):]
}

// FramesForSeconds converts seconds to a frame offset: floor(seconds * sampleRate)
func FramesForSeconds(seconds float64, sampleRate int) int64 {
	if sampleRate <= 0 || seconds <= 0 {
		return 0
	}
	x := seconds * float64(sampleRate)
	return int64(math.Floor(x + math.Max(frameEpsilon, x*frameRelativeEpsilon)))
}

// SecondsForFrames converts a frame count to seconds: frames / sampleRate
func SecondsForFrames(frames int64, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(frames) / float64(sampleRate)
}

// DurationForFrames converts frames to a duration, rounding up to the next
// nanosecond so that FramesForDuration(DurationForFrames(n)) == n.
func DurationForFrames(frames int64, sampleRate int) time.Duration {
	if sampleRate <= 0 || frames <= 0 {
		return 0
	}
	sr := int64(sampleRate)
	whole := frames / sr
	rem := frames % sr
	return time.Duration(whole)*time.Second +
		time.Duration((rem*int64(time.Second)+sr-1)/sr)
}

// FramesForDuration converts a duration to frames, truncating toward zero
func FramesForDuration(d time.Duration, sampleRate int) int64 {
	if sampleRate <= 0 || d <= 0 {
		return 0
	}
	sr := int64(sampleRate)
	whole := int64(d / time.Second)
	rem := int64(d % time.Second)
	return whole*sr + rem*sr/int64(time.Second)
}

// SampleToInt16 converts a float sample to int16 with clipping
func SampleToInt16(sample float32) int16 {
	if sample >= 1 {
		return math.MaxInt16
	}
	if sample <= -1 {
		return math.MinInt16
	}
	return int16(sample * 32767)
}

// SampleFromInt16 converts an int16 sample to float in [-1, 1)
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / 32768
}

// SampleFromInt converts a signed integer sample of the given bit depth to float
func SampleFromInt(sample int, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	if bitDepth == 8 {
		// 8-bit WAV is unsigned
		return float32(sample-128) / 128
	}
	return float32(float64(sample) / float64(int64(1)<<(bitDepth-1)))
}

// SampleToInt converts a float sample to a signed integer of the given bit depth
func SampleToInt(sample float32, bitDepth int) int {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	if sample > 1 {
		sample = 1
	} else if sample < -1 {
		sample = -1
	}
	max := float64(int64(1)<<(bitDepth-1) - 1)
	return int(math.Round(float64(sample) * max))
}
