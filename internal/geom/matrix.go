package geom

import "math"

// Matrix is a 2D affine transform laid out as [a b c d e f]:
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
type Matrix [6]float64

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation.
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// ScaleXY returns a scale about the origin.
func ScaleXY(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation by theta radians about the origin. With y
// growing downwards a positive theta turns clockwise on screen.
func Rotate(theta float64) Matrix {
	sin, cos := math.Sincos(theta)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// RotateAbout returns a rotation by theta radians about c.
func RotateAbout(c Point, theta float64) Matrix {
	return Translate(c.X, c.Y).Multiply(Rotate(theta)).Multiply(Translate(-c.X, -c.Y))
}

// Multiply returns m * o, which applies o first.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// Apply transforms p.
func (m Matrix) Apply(p Point) Point {
	return Point{X: m[0]*p.X + m[2]*p.Y + m[4], Y: m[1]*p.X + m[3]*p.Y + m[5]}
}

// ApplyRect transforms the corners of r and returns their bounding box.
func (m Matrix) ApplyRect(r Rect) Rect {
	c := r.Corners()
	return BoundsOf(m.Apply(c[0]), m.Apply(c[1]), m.Apply(c[2]), m.Apply(c[3]))
}

// Determinant of the linear part.
func (m Matrix) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse, or Identity when m is singular.
func (m Matrix) Invert() Matrix {
	det := m.Determinant()
	if det == 0 {
		return Identity()
	}
	inv := 1 / det
	return Matrix{
		m[3] * inv,
		-m[1] * inv,
		-m[2] * inv,
		m[0] * inv,
		(m[2]*m[5] - m[3]*m[4]) * inv,
		(m[1]*m[4] - m[0]*m[5]) * inv,
	}
}

// RectToRect maps from onto to. A zero-width or zero-height source axis keeps
// a unit scale on that axis.
func RectToRect(from, to Rect) Matrix {
	sx, sy := 1.0, 1.0
	if w := from.Width(); w != 0 {
		sx = to.Width() / w
	}
	if h := from.Height(); h != 0 {
		sy = to.Height() / h
	}
	return Translate(to.Min.X, to.Min.Y).
		Multiply(ScaleXY(sx, sy)).
		Multiply(Translate(-from.Min.X, -from.Min.Y))
}
