// ABOUTME: Audio input package for capturing audio
// ABOUTME: Provides Input interface with malgo and PortAudio implementations
// Package input provides audio capture devices.
//
// Blocks are delivered on a device-managed thread. Callbacks must copy what
// they keep and must not block: the slice handed to BlockFunc is reused by
// the backend once the callback returns.
//
// The malgo backend is always available. PortAudio requires the portaudio
// build tag. The tone backend synthesizes a sine wave for machines without
// a microphone.
//
// Example:
//
//	in, err := input.New("malgo", logger)
//	stream, err := in.Open(format, 512, onBlock, onStatus)
//	err = stream.Start()
package input
