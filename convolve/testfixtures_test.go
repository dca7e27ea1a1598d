package convolve

import "math"

// genSincFilter generates a normalized windowed-sinc lowpass filter of length
// n at the given normalized cutoff (0, 1). Ported from the original's
// util/SincFilter.hpp genSincFilter, used here only to synthesize long-tail
// test impulse responses without needing a recorded IR file on disk.
func genSincFilter(n int, normalizedCutoff float64) []float32 {
	out := make([]float32, n)

	center := float64(n-1) / 2
	var sum float64

	for i := 0; i < n; i++ {
		x := float64(i) - center

		var s float64
		if x == 0 {
			s = normalizedCutoff
		} else {
			s = math.Sin(math.Pi*normalizedCutoff*x) / (math.Pi * x)
		}

		// Blackman window.
		w := 0.42 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1)) + 0.08*math.Cos(4*math.Pi*float64(i)/float64(n-1))

		v := s * w
		out[i] = float32(v)
		sum += v
	}

	if sum != 0 {
		for i := range out {
			out[i] = float32(float64(out[i]) / sum)
		}
	}

	return out
}

// directConvolve computes the full linear convolution of x and h with the
// textbook O(len(x)*len(h)) algorithm, used as a ground truth reference in
// tests, never on any hot path.
func directConvolve(x, h []float32) []float32 {
	out := make([]float32, len(x)+len(h)-1)
	for i, xi := range x {
		if xi == 0 {
			continue
		}
		for j, hj := range h {
			out[i+j] += xi * hj
		}
	}

	return out
}

// runManager drives m with consecutive blockSize-sized chunks of in (which
// must be an exact multiple of blockSize), returning the concatenated
// output.
func runManager(m *Manager, in []float32, blockSize int) []float32 {
	out := make([]float32, 0, len(in))

	for off := 0; off < len(in); off += blockSize {
		block := in[off : off+blockSize]
		m.ProcessInput(block)

		produced := m.OutputBuffer()
		copied := make([]float32, len(produced))
		copy(copied, produced)
		out = append(out, copied...)
	}

	return out
}
