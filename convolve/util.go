package convolve

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// TrueMod returns x mod m with a result in [0, m), unlike Go's % operator
// which can return a negative result when x is negative. Grounded on the
// original engine's trueMod helper (util/util.h).
func TrueMod(x, m int) int {
	r := x % m
	if r < 0 {
		r += m
	}

	return r
}

// Dirac fills ir with a unit impulse: ir[0] = 1, everything else 0. A
// convolution against this IR is the identity. Ports genImpulse from the
// original util/SincFilter.hpp, and is what New uses when given no IR.
func Dirac(ir []float32) {
	for i := range ir {
		ir[i] = 0
	}

	if len(ir) > 0 {
		ir[0] = 1
	}
}

// absSum returns the sum of absolute values of xs.
func absSum(xs []float32) float32 {
	var sum float32
	for _, v := range xs {
		if v < 0 {
			sum -= v
		} else {
			sum += v
		}
	}

	return sum
}

// NormalizeMono scales ir in place so its absolute values sum to target
// (spec section 6 default target is 20). A silent ir is left untouched.
func NormalizeMono(ir []float32, target float32) {
	sum := absSum(ir)
	if sum == 0 {
		return
	}

	scale := target / sum
	for i := range ir {
		ir[i] *= scale
	}
}

// NormalizeStereo scales both channels by the single factor target/max(sL, sR),
// where sL and sR are each channel's sum of absolute values. Using one shared
// scale for both channels preserves their relative balance.
func NormalizeStereo(left, right []float32, target float32) {
	sL, sR := absSum(left), absSum(right)

	m := sL
	if sR > m {
		m = sR
	}

	if m == 0 {
		return
	}

	scale := target / m
	for i := range left {
		left[i] *= scale
	}

	for i := range right {
		right[i] *= scale
	}
}
