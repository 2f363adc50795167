//go:build mathgl

package vecmath

import "github.com/go-gl/mathgl/mgl64"

// Backend names the kernel set compiled into the package.
const Backend = "mathgl"

func toMgl(v Vec3) mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

func fromMgl(v mgl64.Vec3) Vec3 { return Vec3{v[0], v[1], v[2]} }

func toMglQuat(q Quat) mgl64.Quat {
	return mgl64.Quat{W: q.W, V: mgl64.Vec3{q.X, q.Y, q.Z}}
}

func fromMglQuat(q mgl64.Quat) Quat {
	return Quat{W: q.W, X: q.V[0], Y: q.V[1], Z: q.V[2]}
}

func toMglMat(m Mat3) mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{m[0][0], m[0][1], m[0][2]},
		mgl64.Vec3{m[1][0], m[1][1], m[1][2]},
		mgl64.Vec3{m[2][0], m[2][1], m[2][2]},
	)
}

func fromMglMat(m mgl64.Mat3) Mat3 {
	r0, r1, r2 := m.Rows()
	return Mat3{
		{r0[0], r0[1], r0[2]},
		{r1[0], r1[1], r1[2]},
		{r2[0], r2[1], r2[2]},
	}
}

func dot(a, b Vec3) float64 {
	return toMgl(a).Dot(toMgl(b))
}

func cross(a, b Vec3) Vec3 {
	return fromMgl(toMgl(a).Cross(toMgl(b)))
}

func quatMul(a, b Quat) Quat {
	return fromMglQuat(toMglQuat(a).Mul(toMglQuat(b)))
}

// quatRotate evaluates q * (0,v) * conj(q). mgl64's Rotate assumes a unit
// quaternion, so the full product is used to keep results identical to the
// scalar kernels for non-unit input.
func quatRotate(q Quat, v Vec3) Vec3 {
	mq := toMglQuat(q)
	r := mq.Mul(mgl64.Quat{V: toMgl(v)}).Mul(mq.Conjugate())
	return fromMgl(r.V)
}

func mat3Det(m Mat3) float64 {
	return toMglMat(m).Det()
}

// mat3Inv inverts m. det must be non-zero.
func mat3Inv(m Mat3, _ float64) Mat3 {
	return fromMglMat(toMglMat(m).Inv())
}

func mat3MulVec(m Mat3, v Vec3) Vec3 {
	return fromMgl(toMglMat(m).Mul3x1(toMgl(v)))
}
