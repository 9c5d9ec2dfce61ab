// ABOUTME: Linear interpolation resampler for interleaved clips
// ABOUTME: Maps each output frame to an exact rational source position
package resample

// OutputFrames returns how many frames a clip of frames at inRate occupies at outRate
func OutputFrames(frames, inRate, outRate int) int {
	if inRate <= 0 || outRate <= 0 {
		return frames
	}
	return int(int64(frames) * int64(outRate) / int64(inRate))
}

// Convert resamples an interleaved clip from inRate to outRate.
// The input is returned unchanged when the rates match or are invalid.
func Convert(samples []float32, channels, inRate, outRate int) []float32 {
	if inRate == outRate || inRate <= 0 || outRate <= 0 || channels <= 0 {
		return samples
	}

	frames := len(samples) / channels
	if frames == 0 {
		return nil
	}

	n := OutputFrames(frames, inRate, outRate)
	out := make([]float32, n*channels)
	last := frames - 1
	in, step := int64(inRate), int64(outRate)

	for i := 0; i < n; i++ {
		// source position is i*inRate/outRate, split into frame and remainder
		pos := int64(i) * in
		src := int(pos / step)
		frac := float32(pos%step) / float32(step)

		next := src + 1
		if next > last {
			next = last
		}
		a := samples[src*channels : src*channels+channels]
		b := samples[next*channels : next*channels+channels]
		dst := out[i*channels : i*channels+channels]
		for ch := range dst {
			dst[ch] = a[ch] + (b[ch]-a[ch])*frac
		}
	}
	return out
}
