package convolve

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// upConvolver is the Uniform-Partition FFT Convolver: the IR "head" branch
// from spec section 4.2. It partitions the head of the impulse response into
// P uniform blocks of size B, each zero-padded and transformed once at
// construction, and does one forward/inverse FFT of size N = 2B per input
// block at a fixed one-block latency.
type upConvolver struct {
	blockSize int // B
	n         int // transform size, N = 2B
	partCount int // P

	irSpectra [][]complex64 // H[p], length N, built once at construction
	history   [][]complex64 // X[p], length N, circular input spectrum history
	cursor    int           // history slot the next input block's spectrum is written to

	tail []float32   // overlap-save carry, length B
	out  []float32   // last produced block, length B
	work []complex64 // length-N scratch reused every block, never reallocated

	plan *algofft.Plan[complex64]
}

// newUPConvolver builds a upConvolver over the first min(len(ir), maxPartitions*blockSize)
// samples of ir. blockSize must already be validated as a power of two by the caller.
func newUPConvolver(ir []float32, blockSize, maxPartitions int, cache *kernelCache) (*upConvolver, error) {
	n := 2 * blockSize

	partCount := (len(ir) + blockSize - 1) / blockSize
	if partCount > maxPartitions {
		partCount = maxPartitions
	}
	if partCount < 1 {
		partCount = 1
	}

	plan, err := cache.plan(n)
	if err != nil {
		return nil, err
	}

	u := &upConvolver{
		blockSize: blockSize,
		n:         n,
		partCount: partCount,
		irSpectra: make([][]complex64, partCount),
		history:   make([][]complex64, partCount),
		tail:      make([]float32, blockSize),
		out:       make([]float32, blockSize),
		work:      make([]complex64, n),
		plan:      plan,
	}

	buf := make([]complex64, n)
	for p := 0; p < partCount; p++ {
		for i := range buf {
			buf[i] = 0
		}

		start := p * blockSize
		end := start + blockSize
		if end > len(ir) {
			end = len(ir)
		}
		for i := start; i < end; i++ {
			buf[i-start] = complex(ir[i], 0)
		}

		if err := plan.Forward(buf, buf); err != nil {
			return nil, fmt.Errorf("convolve: upc: transform partition %d: %w", p, err)
		}

		spec := make([]complex64, n)
		copy(spec, buf)
		u.irSpectra[p] = spec
		u.history[p] = make([]complex64, n)
	}

	return u, nil
}

// processInput advances the convolver by one input block of length blockSize,
// leaving the result in outputBuffer(). It never allocates and never
// fails once constructed: the transform size is fixed and the input is
// always zero-padded to it.
func (u *upConvolver) processInput(block []float32) {
	cur := u.history[u.cursor]
	for i := range cur {
		cur[i] = 0
	}
	for i, v := range block {
		cur[i] = complex(v, 0)
	}

	if err := u.plan.Forward(cur, cur); err != nil {
		panic(fmt.Sprintf("convolve: upc: unexpected forward FFT failure: %v", err))
	}

	out := u.work
	for i := range out {
		out[i] = 0
	}

	for j := 0; j < u.partCount; j++ {
		k := TrueMod(u.cursor-j, u.partCount)
		x := u.history[k]
		h := u.irSpectra[j]
		for i := range out {
			out[i] += x[i] * h[i]
		}
	}

	if err := u.plan.Inverse(out, out); err != nil {
		panic(fmt.Sprintf("convolve: upc: unexpected inverse FFT failure: %v", err))
	}

	for i := 0; i < u.blockSize; i++ {
		u.out[i] = real(out[i]) + u.tail[i]
		u.tail[i] = real(out[i+u.blockSize])
	}

	u.cursor = (u.cursor + 1) % u.partCount
}

func (u *upConvolver) outputBuffer() []float32 { return u.out }

func (u *upConvolver) reset() {
	for p := range u.history {
		for i := range u.history[p] {
			u.history[p][i] = 0
		}
	}
	for i := range u.tail {
		u.tail[i] = 0
	}
	for i := range u.out {
		u.out[i] = 0
	}
	u.cursor = 0
}
