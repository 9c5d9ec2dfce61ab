// ABOUTME: Audio decoder package for loading recorded clips
// ABOUTME: Provides Decoder interface and implementations for WAV, MP3, FLAC
// Package decode loads whole audio files into memory.
//
// Supports: WAV (PCM 8/16/24/32-bit), MP3, FLAC
//
// All decoders produce an audio.Buffer of interleaved float32 samples.
// Failures are reported as *decode.Error so callers can tell a malformed
// or unreadable file apart from other failures:
//
//	buf, err := decode.File("grabaciones/rec_1765621946.wav")
//	var decErr *decode.Error
//	if errors.As(err, &decErr) {
//	    // surface to the user, keep previous state
//	}
//
// Probe reads only container metadata and is used to compute the duration
// of a finished recording without decoding it.
package decode
