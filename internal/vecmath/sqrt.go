package vecmath

import "math"

// fastInvSqrtMagic is the float64 seed constant for the bit-level inverse
// square root estimate.
const fastInvSqrtMagic = 0x5fe6eb50c7b537a9

// Outside [minNormal, maxScaled] the bit seed is wrong (subnormals) or r*r
// can overflow, so the input is moved into range by an even power of two.
const (
	minNormal = 0x1p-1022
	maxScaled = 0x1p1000
)

// StdSqrt returns the platform square root.
func StdSqrt(x float64) float64 {
	return math.Sqrt(x)
}

// FastSqrt approximates sqrt(x) from a bit-level inverse square root seed,
// one Newton pass on the inverse and one refinement on the root.
// Non-positive input returns 0.
func FastSqrt(x float64) float64 {
	if !(x > 0) {
		return 0
	}
	if math.IsInf(x, 1) {
		return x
	}
	if x < minNormal {
		return FastSqrt(x*0x1p54) * 0x1p-27
	}
	if x > maxScaled {
		return FastSqrt(x*0x1p-54) * 0x1p27
	}

	i := math.Float64bits(x)
	i = fastInvSqrtMagic - (i >> 1)
	y := math.Float64frombits(i)

	y = y * (1.5 - 0.5*x*y*y)

	r := x * y
	return r - (r*r-x)/(2*r)
}
