package convolve

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsPowerOfTwo(t *testing.T) {
	require.True(t, IsPowerOfTwo(1))
	require.True(t, IsPowerOfTwo(2))
	require.True(t, IsPowerOfTwo(128))
	require.False(t, IsPowerOfTwo(0))
	require.False(t, IsPowerOfTwo(-4))
	require.False(t, IsPowerOfTwo(5))
	require.False(t, IsPowerOfTwo(100))
}

func TestTrueMod(t *testing.T) {
	require.Equal(t, 0, TrueMod(0, 4))
	require.Equal(t, 3, TrueMod(-1, 4))
	require.Equal(t, 1, TrueMod(-3, 4))
	require.Equal(t, 2, TrueMod(6, 4))
	require.Equal(t, 0, TrueMod(-8, 4))
}

func TestDirac(t *testing.T) {
	ir := make([]float32, 8)
	for i := range ir {
		ir[i] = 42
	}

	Dirac(ir)

	require.Equal(t, float32(1), ir[0])
	for i := 1; i < len(ir); i++ {
		require.Equal(t, float32(0), ir[i])
	}
}

func TestDirac_Empty(t *testing.T) {
	require.NotPanics(t, func() { Dirac(nil) })
}

func TestNormalizeMono(t *testing.T) {
	ir := []float32{1, -2, 3, -4} // abs sum 10
	NormalizeMono(ir, 20)
	require.InDeltaSlice(t, []float32{2, -4, 6, -8}, ir, 1e-5)
}

func TestNormalizeMono_Silent(t *testing.T) {
	ir := []float32{0, 0, 0}
	NormalizeMono(ir, 20)
	require.Equal(t, []float32{0, 0, 0}, ir)
}

func TestNormalizeStereo(t *testing.T) {
	left := []float32{1, 1, 1, 1}  // sum 4
	right := []float32{2, 2, 2, 2} // sum 8, the max

	NormalizeStereo(left, right, 20)

	scale := float32(20.0 / 8.0)
	require.InDeltaSlice(t, []float32{scale, scale, scale, scale}, left, 1e-5)
	require.InDeltaSlice(t, []float32{2 * scale, 2 * scale, 2 * scale, 2 * scale}, right, 1e-5)
}
