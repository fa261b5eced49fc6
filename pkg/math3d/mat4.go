package math3d

import "math"

// Mat4 is a 4x4 transform stored in row-major order.
//
// Memory layout (indices):
// | 0  1  2  3  |
// | 4  5  6  7  |
// | 8  9  10 11 |
// | 12 13 14 15 |
//
// For an affine transform the translation lives in the last column
// (indices 3, 7, 11). Column vectors are multiplied on the right: M * v.
//
// The elements are unexported: every Mat4 comes from one of the named
// constructors below or from multiplying two of them.
type Mat4 struct {
	m [16]float64
}

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{[16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{[16]float64{
		1, 0, 0, v.X,
		0, 1, 0, v.Y,
		0, 0, 1, v.Z,
		0, 0, 0, 1,
	}}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{[16]float64{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}}
}

// ScaleUniform creates a uniform scaling matrix.
func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// RotateX creates a rotation matrix around the X axis. angle is in radians.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{[16]float64{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}}
}

// RotateY creates a rotation matrix around the Y axis. angle is in radians.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{[16]float64{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}}
}

// RotateZ creates a rotation matrix around the Z axis. angle is in radians.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{[16]float64{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// LookAt creates a view matrix looking from eye towards center.
// up must not be parallel to center-eye.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize() // Forward
	s := f.Cross(up).Normalize()     // Right
	u := s.Cross(f)                  // Up (recomputed)

	return Mat4{[16]float64{
		s.X, s.Y, s.Z, -s.Dot(eye),
		u.X, u.Y, u.Z, -u.Dot(eye),
		-f.X, -f.Y, -f.Z, f.Dot(eye),
		0, 0, 0, 1,
	}}
}

// Perspective creates a perspective projection matrix.
// fovy is vertical field of view in radians.
// aspect is width/height.
// View-space z = -near maps to NDC z = -1 and z = -far to +1.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovy/2)
	nf := 1.0 / (near - far)

	return Mat4{[16]float64{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, 2 * far * near * nf,
		0, 0, -1, 0,
	}}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var out Mat4
	for row := range 4 {
		for col := range 4 {
			var sum float64
			for k := range 4 {
				sum += a.m[row*4+k] * b.m[k*4+col]
			}
			out.m[row*4+col] = sum
		}
	}
	return out
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m.m[0]*v.X + m.m[1]*v.Y + m.m[2]*v.Z + m.m[3]*v.W,
		m.m[4]*v.X + m.m[5]*v.Y + m.m[6]*v.Z + m.m[7]*v.W,
		m.m[8]*v.X + m.m[9]*v.Y + m.m[10]*v.Z + m.m[11]*v.W,
		m.m[12]*v.X + m.m[13]*v.Y + m.m[14]*v.Z + m.m[15]*v.W,
	}
}

// TransformPoint transforms v as a point (w=1) and divides by the resulting w.
// If w comes out exactly zero the undivided XYZ is returned.
func (m Mat4) TransformPoint(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 1)).PerspectiveDivide()
}

// TransformDirection transforms v as a direction (w=0, no translation) and
// renormalizes the result.
//
// Normals transformed this way are only correct for rotations and uniform
// scale; a non-uniform scale needs the inverse-transpose, which is not applied.
func (m Mat4) TransformDirection(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 0)).Vec3().Normalize()
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m.m[row*4+col]
}

// Translation extracts the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m.m[3], m.m[7], m.m[11]}
}
