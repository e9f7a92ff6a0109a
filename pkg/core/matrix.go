package core

import "math"

// Matrix4 is a row-major 4x4 homogeneous transform
type Matrix4 [4][4]float64

// Identity returns the identity transform
func Identity() Matrix4 {
	return Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// NewTranslation returns a transform that moves points by t
func NewTranslation(t Vec3) Matrix4 {
	m := Identity()
	m[0][3] = t.X
	m[1][3] = t.Y
	m[2][3] = t.Z
	return m
}

// NewScale returns a transform that scales each axis by the matching factor
func NewScale(factors Vec3) Matrix4 {
	m := Identity()
	m[0][0] = factors.X
	m[1][1] = factors.Y
	m[2][2] = factors.Z
	return m
}

// NewRotation returns the rotation of degrees around axis, built from the
// unit quaternion (cos(r/2), axis*sin(r/2)).
func NewRotation(degrees float64, axis Vec3) Matrix4 {
	return NewQuaternion(degrees, axis).Matrix()
}

// Multiply returns m * other
func (m Matrix4) Multiply(other Matrix4) Matrix4 {
	var result Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[row][k] * other[k][col]
			}
			result[row][col] = sum
		}
	}
	return result
}

// TransformPoint applies the full transform, translation included
func (m Matrix4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		X: p.X*m[0][0] + p.Y*m[0][1] + p.Z*m[0][2] + m[0][3],
		Y: p.X*m[1][0] + p.Y*m[1][1] + p.Z*m[1][2] + m[1][3],
		Z: p.X*m[2][0] + p.Y*m[2][1] + p.Z*m[2][2] + m[2][3],
	}
}

// TransformDirection applies only the linear part of the transform
func (m Matrix4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		X: d.X*m[0][0] + d.Y*m[0][1] + d.Z*m[0][2],
		Y: d.X*m[1][0] + d.Y*m[1][1] + d.Z*m[1][2],
		Z: d.X*m[2][0] + d.Y*m[2][1] + d.Z*m[2][2],
	}
}

// Transpose returns the transposed matrix
func (m Matrix4) Transpose() Matrix4 {
	var result Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			result[row][col] = m[col][row]
		}
	}
	return result
}

// Quaternion is a rotation quaternion
type Quaternion struct {
	W, X, Y, Z float64
}

// NewQuaternion builds the rotation of degrees around axis.
// The axis is normalized first; a zero axis yields the identity rotation.
func NewQuaternion(degrees float64, axis Vec3) Quaternion {
	axis = axis.Normalize()
	half := degrees * (math.Pi / 180) / 2
	s := math.Sin(half)
	return Quaternion{
		W: math.Cos(half),
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
	}
}

// Multiply composes two rotations (q applied after other)
func (q Quaternion) Multiply(other Quaternion) Quaternion {
	return Quaternion{
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
	}
}

// Matrix returns the rotation matrix of the quaternion
func (q Quaternion) Matrix() Matrix4 {
	x2, y2, z2 := 2*q.X, 2*q.Y, 2*q.Z
	xx, xy, xz := x2*q.X, x2*q.Y, x2*q.Z
	yy, yz, zz := y2*q.Y, y2*q.Z, z2*q.Z
	xw, yw, zw := x2*q.W, y2*q.W, z2*q.W

	return Matrix4{
		{1 - yy - zz, xy - zw, xz + yw, 0},
		{xy + zw, 1 - xx - zz, yz - xw, 0},
		{xz - yw, yz + xw, 1 - xx - yy, 0},
		{0, 0, 0, 1},
	}
}
