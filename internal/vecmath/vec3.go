package vecmath

import "math"

// NormalizeEpsilon is the magnitude below which normalization leaves its
// input untouched instead of dividing by ~0.
const NormalizeEpsilon = 1e-12

// Vec3 is a 3-component vector of float64.
type Vec3 struct {
	X, Y, Z float64
}

// V3 is shorthand for Vec3{x, y, z}.
func V3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Scale returns s ⋅ a.
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}

// Mul returns the component-wise product.
func (a Vec3) Mul(b Vec3) Vec3 {
	return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

func (a Vec3) Neg() Vec3 {
	return Vec3{-a.X, -a.Y, -a.Z}
}

// Dot returns a ⋅ b.
func (a Vec3) Dot(b Vec3) float64 {
	return dot(a, b)
}

// Cross returns the right-handed cross product a × b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return cross(a, b)
}

func (a Vec3) LengthSq() float64 {
	return dot(a, a)
}

func (a Vec3) Length() float64 {
	return Sqrt(dot(a, a))
}

// Normalized returns a / |a|. Vectors shorter than NormalizeEpsilon are
// returned unchanged.
func (a Vec3) Normalized() Vec3 {
	l := a.Length()
	if l < NormalizeEpsilon {
		return a
	}
	return a.Scale(1 / l)
}

// ApproxEqual reports whether every component differs by at most tol.
func (a Vec3) ApproxEqual(b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// IsFinite reports whether no component is NaN or Inf.
func (a Vec3) IsFinite() bool {
	return finite(a.X) && finite(a.Y) && finite(a.Z)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
