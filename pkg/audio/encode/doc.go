// ABOUTME: Audio encoder package for writing recordings and exports
// ABOUTME: Provides streaming WAV sink, FLAC export and PCM packing
// Package encode writes audio to durable containers.
//
// WAVWriter is the capture sink: it is opened once per recording and
// appended to block by block. Close patches the RIFF header so the file
// is decodable even though the final length was unknown when it was opened.
//
// Example:
//
//	w, err := encode.NewWAVFile("rec.wav", audio.Format{SampleRate: 44100, Channels: 1})
//	err = w.Write(block)
//	err = w.Close()
//
// FLACFile exports an in-memory buffer as lossless FLAC.
package encode
