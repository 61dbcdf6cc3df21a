package core

import "math"

// Matrix4 is a row-major 4x4 matrix. Points are column vectors, so
// a.Mul(b) applied to p is a(b(p)).
type Matrix4 [16]float64

// Identity returns the 4x4 identity matrix
func Identity() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// NewMatrix4FromRows builds a matrix from four rows
func NewMatrix4FromRows(r0, r1, r2, r3 Vec4) Matrix4 {
	return Matrix4{
		r0.X, r0.Y, r0.Z, r0.W,
		r1.X, r1.Y, r1.Z, r1.W,
		r2.X, r2.Y, r2.Z, r2.W,
		r3.X, r3.Y, r3.Z, r3.W,
	}
}

// Translate returns a translation matrix
func Translate(t Vec3) Matrix4 {
	return Matrix4{
		1, 0, 0, t.X,
		0, 1, 0, t.Y,
		0, 0, 1, t.Z,
		0, 0, 0, 1,
	}
}

// Scale returns a (possibly non-uniform) scale matrix
func Scale(s Vec3) Matrix4 {
	return Matrix4{
		s.X, 0, 0, 0,
		0, s.Y, 0, 0,
		0, 0, s.Z, 0,
		0, 0, 0, 1,
	}
}

// RotateX returns a rotation of theta radians around the X axis
func RotateX(theta float64) Matrix4 {
	c, s := math.Cos(theta), math.Sin(theta)
	return Matrix4{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY returns a rotation of theta radians around the Y axis
func RotateY(theta float64) Matrix4 {
	c, s := math.Cos(theta), math.Sin(theta)
	return Matrix4{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ returns a rotation of theta radians around the Z axis
func RotateZ(theta float64) Matrix4 {
	c, s := math.Cos(theta), math.Sin(theta)
	return Matrix4{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// RotateAxis returns a rotation of theta radians around an arbitrary axis (Rodrigues)
func RotateAxis(axis Vec3, theta float64) Matrix4 {
	a := axis.Normalize()
	if a.LengthSquared() == 0 {
		return Identity()
	}
	c, s := math.Cos(theta), math.Sin(theta)
	t := 1 - c
	x, y, z := a.X, a.Y, a.Z
	return Matrix4{
		t*x*x + c, t*x*y - s*z, t*x*z + s*y, 0,
		t*x*y + s*z, t*y*y + c, t*y*z - s*x, 0,
		t*x*z - s*y, t*y*z + s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	}
}

// At returns the element at the given row and column
func (m Matrix4) At(row, col int) float64 {
	return m[row*4+col]
}

// Mul returns the matrix product m * other
func (m Matrix4) Mul(other Matrix4) Matrix4 {
	var res Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * other[k*4+col]
			}
			res[row*4+col] = sum
		}
	}
	return res
}

// MulVec4 returns m * v
func (m Matrix4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3]*v.W,
		Y: m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7]*v.W,
		Z: m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11]*v.W,
		W: m[12]*v.X + m[13]*v.Y + m[14]*v.Z + m[15]*v.W,
	}
}

// TransformPoint applies the affine part of m to a point (translation included)
func (m Matrix4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		X: m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3],
		Y: m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7],
		Z: m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11],
	}
}

// TransformVector applies the linear part of m to a direction (no translation)
func (m Matrix4) TransformVector(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[4]*v.X + m[5]*v.Y + m[6]*v.Z,
		Z: m[8]*v.X + m[9]*v.Y + m[10]*v.Z,
	}
}

// TransformNormal maps a surface normal through m using the inverse-transpose
// of the linear part. The result is normalized.
func (m Matrix4) TransformNormal(n Vec3) Vec3 {
	inv, ok := m.AffineInverse()
	if !ok {
		return m.TransformVector(n).Normalize()
	}
	return inv.Transpose().TransformVector(n).Normalize()
}

// Transpose returns the transposed matrix
func (m Matrix4) Transpose() Matrix4 {
	var res Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			res[col*4+row] = m[row*4+col]
		}
	}
	return res
}

// Determinant3 returns the determinant of the upper-left 3x3 block
func (m Matrix4) Determinant3() float64 {
	return m[0]*(m[5]*m[10]-m[6]*m[9]) -
		m[1]*(m[4]*m[10]-m[6]*m[8]) +
		m[2]*(m[4]*m[9]-m[5]*m[8])
}

// UniformScaleFactor returns the cube root of |det3|, the scale a rigid
// shape parameter such as a radius picks up under m
func (m Matrix4) UniformScaleFactor() float64 {
	return math.Cbrt(math.Abs(m.Determinant3()))
}

// AffineInverse inverts an affine transform: the 3x3 block is inverted and the
// translation column becomes -inv(A)*t. ok is false when the 3x3 block is singular.
func (m Matrix4) AffineInverse() (Matrix4, bool) {
	det := m.Determinant3()
	if det == 0 {
		return Matrix4{}, false
	}
	invDet := 1.0 / det

	var res Matrix4
	res[0] = (m[5]*m[10] - m[6]*m[9]) * invDet
	res[1] = (m[2]*m[9] - m[1]*m[10]) * invDet
	res[2] = (m[1]*m[6] - m[2]*m[5]) * invDet
	res[4] = (m[6]*m[8] - m[4]*m[10]) * invDet
	res[5] = (m[0]*m[10] - m[2]*m[8]) * invDet
	res[6] = (m[2]*m[4] - m[0]*m[6]) * invDet
	res[8] = (m[4]*m[9] - m[5]*m[8]) * invDet
	res[9] = (m[1]*m[8] - m[0]*m[9]) * invDet
	res[10] = (m[0]*m[5] - m[1]*m[4]) * invDet

	t := res.TransformVector(Vec3{-m[3], -m[7], -m[11]})
	res[3], res[7], res[11] = t.X, t.Y, t.Z
	res[15] = 1
	return res, true
}

// Inverse returns the full 4x4 inverse computed from cofactors.
// ok is false when the matrix is singular.
func (m Matrix4) Inverse() (Matrix4, bool) {
	var inv Matrix4

	inv[0] = m[5]*m[10]*m[15] - m[5]*m[11]*m[14] - m[9]*m[6]*m[15] + m[9]*m[7]*m[14] + m[13]*m[6]*m[11] - m[13]*m[7]*m[10]
	inv[4] = -m[4]*m[10]*m[15] + m[4]*m[11]*m[14] + m[8]*m[6]*m[15] - m[8]*m[7]*m[14] - m[12]*m[6]*m[11] + m[12]*m[7]*m[10]
	inv[8] = m[4]*m[9]*m[15] - m[4]*m[11]*m[13] - m[8]*m[5]*m[15] + m[8]*m[7]*m[13] + m[12]*m[5]*m[11] - m[12]*m[7]*m[9]
	inv[12] = -m[4]*m[9]*m[14] + m[4]*m[10]*m[13] + m[8]*m[5]*m[14] - m[8]*m[6]*m[13] - m[12]*m[5]*m[10] + m[12]*m[6]*m[9]
	inv[1] = -m[1]*m[10]*m[15] + m[1]*m[11]*m[14] + m[9]*m[2]*m[15] - m[9]*m[3]*m[14] - m[13]*m[2]*m[11] + m[13]*m[3]*m[10]
	inv[5] = m[0]*m[10]*m[15] - m[0]*m[11]*m[14] - m[8]*m[2]*m[15] + m[8]*m[3]*m[14] + m[12]*m[2]*m[11] - m[12]*m[3]*m[10]
	inv[9] = -m[0]*m[9]*m[15] + m[0]*m[11]*m[13] + m[8]*m[1]*m[15] - m[8]*m[3]*m[13] - m[12]*m[1]*m[11] + m[12]*m[3]*m[9]
	inv[13] = m[0]*m[9]*m[14] - m[0]*m[10]*m[13] - m[8]*m[1]*m[14] + m[8]*m[2]*m[13] + m[12]*m[1]*m[10] - m[12]*m[2]*m[9]
	inv[2] = m[1]*m[6]*m[15] - m[1]*m[7]*m[14] - m[5]*m[2]*m[15] + m[5]*m[3]*m[14] + m[13]*m[2]*m[7] - m[13]*m[3]*m[6]
	inv[6] = -m[0]*m[6]*m[15] + m[0]*m[7]*m[14] + m[4]*m[2]*m[15] - m[4]*m[3]*m[14] - m[12]*m[2]*m[7] + m[12]*m[3]*m[6]
	inv[10] = m[0]*m[5]*m[15] - m[0]*m[7]*m[13] - m[4]*m[1]*m[15] + m[4]*m[3]*m[13] + m[12]*m[1]*m[7] - m[12]*m[3]*m[5]
	inv[14] = -m[0]*m[5]*m[14] + m[0]*m[6]*m[13] + m[4]*m[1]*m[14] - m[4]*m[2]*m[13] - m[12]*m[1]*m[6] + m[12]*m[2]*m[5]
	inv[3] = -m[1]*m[6]*m[11] + m[1]*m[7]*m[10] + m[5]*m[2]*m[11] - m[5]*m[3]*m[10] - m[9]*m[2]*m[7] + m[9]*m[3]*m[6]
	inv[7] = m[0]*m[6]*m[11] - m[0]*m[7]*m[10] - m[4]*m[2]*m[11] + m[4]*m[3]*m[10] + m[8]*m[2]*m[7] - m[8]*m[3]*m[6]
	inv[11] = -m[0]*m[5]*m[11] + m[0]*m[7]*m[9] + m[4]*m[1]*m[11] - m[4]*m[3]*m[9] - m[8]*m[1]*m[7] + m[8]*m[3]*m[5]
	inv[15] = m[0]*m[5]*m[10] - m[0]*m[6]*m[9] - m[4]*m[1]*m[10] + m[4]*m[2]*m[9] + m[8]*m[1]*m[6] - m[8]*m[2]*m[5]

	det := m[0]*inv[0] + m[1]*inv[4] + m[2]*inv[8] + m[3]*inv[12]
	if det == 0 {
		return Matrix4{}, false
	}

	invDet := 1.0 / det
	for i := range inv {
		inv[i] *= invDet
	}
	return inv, true
}

// Equals reports whether two matrices match within tolerance
func (m Matrix4) Equals(other Matrix4, tolerance float64) bool {
	for i := range m {
		if math.Abs(m[i]-other[i]) > tolerance {
			return false
		}
	}
	return true
}
