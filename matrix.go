package boxy

import "math"

// Matrix is a 4x4 transformation matrix stored in column-major order, the
// layout GPU mat4 uniforms expect. The renderer only ever populates the
// 2D affine slots, but the full mat4 keeps transforms and projections in
// one type.
type Matrix [16]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translation returns a matrix that translates by (x, y).
func Translation(x, y float64) Matrix {
	m := Identity()
	m[12] = x
	m[13] = y
	return m
}

// Scaling returns a matrix that scales by (x, y).
func Scaling(x, y float64) Matrix {
	m := Identity()
	m[0] = x
	m[5] = y
	return m
}

// Rotation returns a matrix that rotates by angle radians around the origin.
// Positive angles rotate clockwise in the top-left-origin screen space.
func Rotation(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	m := Identity()
	m[0] = cos
	m[1] = sin
	m[4] = -sin
	m[5] = cos
	return m
}

// Ortho2D returns an orthographic projection mapping (0,0)..(width,height)
// with a top-left origin onto clip space.
func Ortho2D(width, height float64) Matrix {
	m := Identity()
	m[0] = 2 / width
	m[5] = -2 / height
	m[10] = -1
	m[12] = -1
	m[13] = 1
	return m
}

// Multiply returns m * o, so o is applied first when transforming points.
func (m Matrix) Multiply(o Matrix) Matrix {
	var out Matrix
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += m[k*4+r] * o[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// Translate returns m translated by (x, y).
func (m Matrix) Translate(x, y float64) Matrix {
	return m.Multiply(Translation(x, y))
}

// Scale returns m scaled by (x, y).
func (m Matrix) Scale(x, y float64) Matrix {
	return m.Multiply(Scaling(x, y))
}

// Rotate returns m rotated by angle radians.
func (m Matrix) Rotate(angle float64) Matrix {
	return m.Multiply(Rotation(angle))
}

// TransformPoint applies the 2D affine part of the matrix to p.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m[0]*p.X + m[4]*p.Y + m[12],
		Y: m[1]*p.X + m[5]*p.Y + m[13],
	}
}

// IsIdentity reports whether m is exactly the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// Invert returns the inverse of the 2D affine part of the matrix.
// A singular matrix inverts to identity.
func (m Matrix) Invert() Matrix {
	a, b := m[0], m[4]
	c, d := m[1], m[5]
	tx, ty := m[12], m[13]

	det := a*d - b*c
	if math.Abs(det) < 1e-12 {
		return Identity()
	}
	inv := 1 / det

	out := Identity()
	out[0] = d * inv
	out[1] = -c * inv
	out[4] = -b * inv
	out[5] = a * inv
	out[12] = (b*ty - d*tx) * inv
	out[13] = (c*tx - a*ty) * inv
	return out
}

// float32s returns the matrix as float32 columns for a mat4 uniform.
func (m Matrix) float32s() [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}
