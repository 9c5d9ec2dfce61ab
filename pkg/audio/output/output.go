// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for audio playback backends
package output

import "github.com/harperreed/podcast-recorder/pkg/audio"

// Output represents an audio output device
type Output interface {
	// Play starts rendering samples, replacing anything already playing.
	// It returns once rendering has started.
	Play(samples []float32, format audio.Format) error

	// Stop halts rendering; stopping an idle output is a no-op
	Stop() error

	// Close releases output resources
	Close() error
}
