package convolve

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUPConvolver_DiracIsIdentity(t *testing.T) {
	const blockSize = 128

	ir := make([]float32, 1)
	ir[0] = 1

	cache := newKernelCache()
	u, err := newUPConvolver(ir, blockSize, headPartitions, cache)
	require.NoError(t, err)

	in := make([]float32, blockSize)
	for i := range in {
		in[i] = float32(i+1) * 0.01
	}

	u.processInput(in)
	require.InDeltaSlice(t, in, u.outputBuffer(), 1e-4)

	// A second, all-zero block should flush to silence: no tail energy
	// should remain once the Dirac IR's only nonzero sample has passed.
	silence := make([]float32, blockSize)
	u.processInput(silence)
	require.InDeltaSlice(t, silence, u.outputBuffer(), 1e-4)
}

func TestUPConvolver_MatchesDirectConvolution(t *testing.T) {
	const blockSize = 64

	ir := genSincFilter(4*blockSize, 0.3) // fits entirely in the head

	cache := newKernelCache()
	u, err := newUPConvolver(ir, blockSize, headPartitions, cache)
	require.NoError(t, err)

	const numBlocks = 6
	in := make([]float32, numBlocks*blockSize)
	for i := range in {
		in[i] = float32(((i*7)%13)-6) / 6
	}

	want := directConvolve(in, ir)

	var got []float32
	for off := 0; off < len(in); off += blockSize {
		u.processInput(in[off : off+blockSize])
		got = append(got, append([]float32(nil), u.outputBuffer()...)...)
	}

	require.InDeltaSlice(t, want[:len(got)], got, 1e-2)
}

func TestUPConvolver_ResetClearsState(t *testing.T) {
	const blockSize = 32

	ir := genSincFilter(2*blockSize, 0.4)
	cache := newKernelCache()
	u, err := newUPConvolver(ir, blockSize, headPartitions, cache)
	require.NoError(t, err)

	in := make([]float32, blockSize)
	for i := range in {
		in[i] = 1
	}
	u.processInput(in)

	u.reset()

	silence := make([]float32, blockSize)
	u.processInput(silence)
	require.InDeltaSlice(t, silence, u.outputBuffer(), 1e-4)
}
