package convolve

import "math"

// forwardDecomposition applies one quarter of the split-radix decimation-in-
// frequency butterfly to buf (length n), per spec section 4.3.2: for each of
// the n/8 bins in the given quarter, it folds buf[j] and buf[j+n/2] into the
// even/odd halves that a later length-(n/2) FFT on each half will turn into
// true even- and odd-indexed DFT bins of the full length-n transform.
//
// This is the corrected form of the original's forward decomposition: the
// twiddle multiply below is ordinary complex multiplication, not the
// mis-signed cross term one of the source variants used.
func forwardDecomposition(buf []complex64, n, quarter int) {
	if quarter < 0 || quarter > 3 {
		panicInvalidPhase(quarter)
	}

	n8 := n / 8
	n2 := n / 2
	qOff := quarter * n8

	for i := 0; i < n8; i++ {
		j := qOff + i

		xj := buf[j]
		xjM := buf[j+n2]

		theta := 2 * math.Pi * float64(j) / float64(n)
		tw := complex(float32(math.Cos(theta)), float32(-math.Sin(theta))) // exp(-i*2*pi*j/n)

		buf[j] = xj + xjM
		buf[j+n2] = (xj - xjM) * tw
	}
}

// forwardDecompositionComplete runs all four quarters of forwardDecomposition
// in sequence. Used once at IR-partition construction time, never on the
// per-block audio path (there only one quarter runs per block).
func forwardDecompositionComplete(buf []complex64, n int) {
	for q := 0; q < 4; q++ {
		forwardDecomposition(buf, n, q)
	}
}

// inverseDecomposition is forwardDecomposition's inverse: same butterfly
// shape, conjugated twiddle and a 1/2 scale per spec section 4.3.2.
func inverseDecomposition(buf []complex64, n, quarter int) {
	if quarter < 0 || quarter > 3 {
		panicInvalidPhase(quarter)
	}

	n8 := n / 8
	n2 := n / 2
	qOff := quarter * n8

	for i := 0; i < n8; i++ {
		j := qOff + i

		xj := buf[j]
		xjM := buf[j+n2]

		theta := 2 * math.Pi * float64(j) / float64(n)
		tw := complex(float32(math.Cos(theta)), float32(math.Sin(theta))) // exp(+i*2*pi*j/n)

		buf[j] = (xj + xjM) * 0.5
		buf[j+n2] = ((xj - xjM) * tw) * 0.5
	}
}
