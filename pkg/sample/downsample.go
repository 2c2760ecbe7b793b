package sample

// DownsampleSamples downsamples a slice of samples to at most maxPoints for
// display. Each output point is the sample with the highest value in its
// bucket, so short strikes survive decimation.
// Destination-based: reuses dst if it has sufficient capacity, otherwise allocates new.
func DownsampleSamples(dst []Sample, samples []Sample, maxPoints int) []Sample {
	if len(samples) <= maxPoints || maxPoints <= 0 {
		if cap(dst) >= len(samples) {
			dst = dst[:len(samples)]
			copy(dst, samples)
			return dst
		}
		result := make([]Sample, len(samples))
		copy(result, samples)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]Sample, 0, maxPoints)
	}

	step := float64(len(samples)) / float64(maxPoints)
	for i := range maxPoints {
		lo := int(float64(i) * step)
		hi := min(int(float64(i+1)*step), len(samples))
		if lo >= hi {
			continue
		}

		best := lo
		for j := lo + 1; j < hi; j++ {
			if samples[j].Max() > samples[best].Max() {
				best = j
			}
		}
		dst = append(dst, samples[best])
	}

	return dst
}
