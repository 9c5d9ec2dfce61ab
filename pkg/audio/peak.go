// ABOUTME: Block loudness measurement
// ABOUTME: Computes the peak absolute amplitude of a block of samples
package audio

// Peak returns max(|sample|) over the block, clamped to [0, 1].
// An empty block has peak 0.
func Peak(block []float32) float32 {
	var peak float32
	for _, s := range block {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	if peak > 1 {
		peak = 1
	}
	return peak
}
