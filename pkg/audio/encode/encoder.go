// ABOUTME: Sink interface definition
// ABOUTME: Common interface for append-only audio file writers
package encode

// Sink is an append-only audio destination
type Sink interface {
	// Write appends interleaved samples; len(samples) must be a whole number of frames
	Write(samples []float32) error

	// Frames returns the number of frames written so far
	Frames() int64

	// Close flushes and finalizes the container
	Close() error
}
