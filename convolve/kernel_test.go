package convolve

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// P1: forward FFT followed by inverse FFT reproduces the original signal.
func TestKernelCache_ForwardInverseRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.SampledFrom([]int{2, 4, 8, 16, 128, 1024}).Draw(t, "n")

		buf := make([]complex64, n)
		orig := make([]complex64, n)
		for i := range buf {
			re := rapid.Float32Range(-1, 1).Draw(t, "re")
			im := rapid.Float32Range(-1, 1).Draw(t, "im")
			buf[i] = complex(re, im)
			orig[i] = buf[i]
		}

		cache := newKernelCache()
		plan, err := cache.plan(n)
		require.NoError(t, err)

		require.NoError(t, plan.Forward(buf, buf))
		require.NoError(t, plan.Inverse(buf, buf))

		for i := range buf {
			require.InDelta(t, real(orig[i]), real(buf[i]), 1e-3)
			require.InDelta(t, imag(orig[i]), imag(buf[i]), 1e-3)
		}
	})
}

func TestKernelCache_ReusesPlanForSameSize(t *testing.T) {
	cache := newKernelCache()

	p1, err := cache.plan(256)
	require.NoError(t, err)

	p2, err := cache.plan(256)
	require.NoError(t, err)

	require.Same(t, p1, p2)
}
