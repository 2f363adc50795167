// Package vecmath provides the small value-type math layer used by the
// rigid-body core:
//
//   - [Vec3]: 3-component vector (add, scale, dot, cross, normalize)
//   - [Quat]: Hamilton quaternion (product, rotation, inverse)
//   - [Mat3]: row-major 3x3 matrix (determinant, cofactor inverse)
//
// # Backends
//
// The heavy kernels (cross, Hamilton product, rotation, 3x3 inverse) have
// two interchangeable implementations selected at build time:
//
//	go build ./...              # portable scalar kernels
//	go build -tags mathgl ./... # kernels backed by go-gl/mathgl
//
// [Sqrt] likewise switches from the platform square root to [FastSqrt]
// under the fastsqrt tag. Callers never need to know which is compiled in;
// [Backend] and [SqrtBackend] report it.
package vecmath
