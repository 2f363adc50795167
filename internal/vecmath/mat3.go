package vecmath

import "math"

// SingularThreshold is the |det| below which a matrix is treated as
// non-invertible.
const SingularThreshold = 1e-6

// Mat3 is a row-major 3x3 matrix: m[row][col].
type Mat3 [3][3]float64

func Identity3() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Diag3 returns the diagonal matrix diag(x, y, z).
func Diag3(x, y, z float64) Mat3 {
	return Mat3{{x, 0, 0}, {0, y, 0}, {0, 0, z}}
}

func (m Mat3) Det() float64 {
	return mat3Det(m)
}

// Inverse returns m⁻¹ by cofactor expansion. When |det| < SingularThreshold
// it returns the identity and false.
func (m Mat3) Inverse() (Mat3, bool) {
	det := mat3Det(m)
	if !(math.Abs(det) >= SingularThreshold) {
		return Identity3(), false
	}
	return mat3Inv(m, det), true
}

// IsValid reports whether m passes the same determinant test as Inverse.
func (m Mat3) IsValid() bool {
	return math.Abs(mat3Det(m)) >= SingularThreshold
}

// MulVec returns m ⋅ v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return mat3MulVec(m, v)
}

// Mul returns m ⋅ n.
func (m Mat3) Mul(n Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j]
		}
	}
	return r
}

func (m Mat3) Transpose() Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// ApproxEqual reports whether every element differs by at most tol.
func (m Mat3) ApproxEqual(n Mat3, tol float64) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(m[i][j]-n[i][j]) > tol {
				return false
			}
		}
	}
	return true
}
