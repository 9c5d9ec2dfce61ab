// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides Output interface and the oto implementation
// Package output provides audio playback sinks.
//
// An Output renders one clip at a time. Play replaces whatever is rendering,
// so callers seek by handing the sink only the remaining samples.
//
// Example:
//
//	out := output.NewOto(logger)
//	err := out.Play(buf.From(offset), buf.Format)
//	err = out.Stop()
package output
