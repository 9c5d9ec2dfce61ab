// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types, frame math and sample conversions
// Package audio provides the fundamental audio types shared by the recorder.
//
// This package defines core types used throughout the module:
//   - Format: Describes audio stream format (sample rate, channels, bit depth)
//   - Buffer: Interleaved float32 audio fully resident in memory
//
// Frame/time conversions are done in integer arithmetic where possible so
// that converting frames to a wall-clock anchor and back is exact:
//
//	d := audio.DurationForFrames(frames, 44100)
//	frames == audio.FramesForDuration(d, 44100) // always true
//
// Peak computes the live level shown while recording:
//
//	level := audio.Peak(block) // in [0, 1]
package audio
