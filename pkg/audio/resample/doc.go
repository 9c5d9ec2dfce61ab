// ABOUTME: Sample rate conversion for whole clips
// ABOUTME: Used by playback when the device cannot open at the recording rate
// Package resample converts interleaved float32 clips between sample rates.
//
// Conversion is linear interpolation with source positions tracked as exact
// integer ratios, so long clips do not drift:
//
//	out := resample.Convert(samples, 2, 44100, 48000)
package resample
