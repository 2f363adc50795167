package vecmath

import "math"

// Quat is a quaternion w + xi + yj + zk. Orientations are unit quaternions.
type Quat struct {
	W, X, Y, Z float64
}

// QuatIdentity returns (1, 0, 0, 0).
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// PureQuat returns (0, v).
func PureQuat(v Vec3) Quat {
	return Quat{X: v.X, Y: v.Y, Z: v.Z}
}

// QuatFromAxisAngle returns the rotation of angle radians about axis.
// A zero axis yields the identity.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	if axis.Length() < NormalizeEpsilon {
		return QuatIdentity()
	}
	n := axis.Normalized()
	s, c := math.Sincos(angle / 2)
	return Quat{W: c, X: n.X * s, Y: n.Y * s, Z: n.Z * s}
}

// Mul returns the Hamilton product q ⋅ r.
func (q Quat) Mul(r Quat) Quat {
	return quatMul(q, r)
}

func (q Quat) Add(r Quat) Quat {
	return Quat{q.W + r.W, q.X + r.X, q.Y + r.Y, q.Z + r.Z}
}

func (q Quat) Scale(s float64) Quat {
	return Quat{q.W * s, q.X * s, q.Y * s, q.Z * s}
}

func (q Quat) Conjugate() Quat {
	return Quat{q.W, -q.X, -q.Y, -q.Z}
}

func (q Quat) NormSq() float64 {
	return q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z
}

func (q Quat) Norm() float64 {
	return Sqrt(q.NormSq())
}

// Normalize rescales q to unit length in place. It is a no-op when the
// magnitude is below NormalizeEpsilon.
func (q *Quat) Normalize() {
	mag := q.Norm()
	if mag < NormalizeEpsilon {
		return
	}
	inv := 1 / mag
	q.W *= inv
	q.X *= inv
	q.Y *= inv
	q.Z *= inv
}

// Normalized returns a unit-length copy of q.
func (q Quat) Normalized() Quat {
	q.Normalize()
	return q
}

// Inverse returns conj(q) / |q|². It reports false, with the zero
// quaternion, when q has zero norm.
func (q Quat) Inverse() (Quat, bool) {
	n := q.NormSq()
	if n == 0 {
		return Quat{}, false
	}
	return q.Conjugate().Scale(1 / n), true
}

// Rotate returns q * (0,v) * conj(q), which rotates v by a unit q.
func (q Quat) Rotate(v Vec3) Vec3 {
	return quatRotate(q, v)
}

// Vec returns the vector part (x, y, z).
func (q Quat) Vec() Vec3 {
	return Vec3{q.X, q.Y, q.Z}
}

// ApproxEqual reports whether every component differs by at most tol.
func (q Quat) ApproxEqual(r Quat, tol float64) bool {
	return math.Abs(q.W-r.W) <= tol &&
		math.Abs(q.X-r.X) <= tol &&
		math.Abs(q.Y-r.Y) <= tol &&
		math.Abs(q.Z-r.Z) <= tol
}

// IsFinite reports whether no component is NaN or Inf.
func (q Quat) IsFinite() bool {
	return finite(q.W) && finite(q.X) && finite(q.Y) && finite(q.Z)
}
