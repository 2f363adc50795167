//go:build !fastsqrt

package vecmath

// SqrtBackend names the square root strategy compiled into Sqrt.
const SqrtBackend = "std"

// Sqrt is the square root used by vector and quaternion lengths.
func Sqrt(x float64) float64 {
	return StdSqrt(x)
}
