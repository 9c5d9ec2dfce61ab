// ABOUTME: PCM packing
// ABOUTME: Encodes float32 samples to 16-bit little-endian PCM bytes
package encode

import (
	"encoding/binary"

	"github.com/harperreed/podcast-recorder/pkg/audio"
)

// PCM16 converts float samples to 16-bit little-endian PCM
func PCM16(samples []float32) []byte {
	output := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(output[i*2:], uint16(audio.SampleToInt16(sample)))
	}
	return output
}
