package svgpath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// Matrix2D represents the affine transform
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
//
// Its memory layout matches rasterx.Matrix2D, so that
// one can be converted to the other.
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the identity transform.
var Identity = Matrix2D{1, 0, 0, 1, 0, 0}

// Mult returns a × b : b is applied first.
func (a Matrix2D) Mult(b Matrix2D) Matrix2D {
	return Matrix2D{
		A: a.A*b.A + a.C*b.B,
		B: a.B*b.A + a.D*b.B,
		C: a.A*b.C + a.C*b.D,
		D: a.B*b.C + a.D*b.D,
		E: a.A*b.E + a.C*b.F + a.E,
		F: a.B*b.E + a.D*b.F + a.F,
	}
}

// Translate returns a translated by (x, y), in local coordinates.
func (a Matrix2D) Translate(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{1, 0, 0, 1, x, y})
}

// Scale returns a scaled by (x, y), in local coordinates.
func (a Matrix2D) Scale(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{x, 0, 0, y, 0, 0})
}

// Rotate returns a rotated by theta (in radians).
func (a Matrix2D) Rotate(theta float64) Matrix2D {
	s, c := math.Sincos(theta)
	return a.Mult(Matrix2D{c, s, -s, c, 0, 0})
}

// SkewX returns a skewed along the x axis by theta (in radians).
func (a Matrix2D) SkewX(theta float64) Matrix2D {
	return a.Mult(Matrix2D{1, 0, math.Tan(theta), 1, 0, 0})
}

// SkewY returns a skewed along the y axis by theta (in radians).
func (a Matrix2D) SkewY(theta float64) Matrix2D {
	return a.Mult(Matrix2D{1, math.Tan(theta), 0, 1, 0, 0})
}

// Invert returns the inverse of a, or the identity
// if a is not invertible.
func (a Matrix2D) Invert() Matrix2D {
	det := a.A*a.D - a.B*a.C
	if det == 0 {
		return Identity
	}
	return Matrix2D{
		A: a.D / det,
		B: -a.B / det,
		C: -a.C / det,
		D: a.A / det,
		E: (a.C*a.F - a.D*a.E) / det,
		F: (a.B*a.E - a.A*a.F) / det,
	}
}

// Transform applies the matrix to the point (x, y).
func (a Matrix2D) Transform(x, y float64) (float64, float64) {
	return a.A*x + a.C*y + a.E, a.B*x + a.D*y + a.F
}

// TransformVector applies the linear part of the matrix to (x, y).
func (a Matrix2D) TransformVector(x, y float64) (float64, float64) {
	return a.A*x + a.C*y, a.B*x + a.D*y
}

// TFixed applies the matrix to a fixed point.
func (a Matrix2D) TFixed(p fixed.Point26_6) fixed.Point26_6 {
	x, y := a.Transform(float64(p.X)/64, float64(p.Y)/64)
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

// IsIdentity returns true for the identity transform.
func (a Matrix2D) IsIdentity() bool { return a == Identity }

func (a Matrix2D) trMove(op MoveTo) fixed.Point26_6 { return a.TFixed(fixed.Point26_6(op)) }

func (a Matrix2D) trLine(op LineTo) fixed.Point26_6 { return a.TFixed(fixed.Point26_6(op)) }

func (a Matrix2D) trQuad(op QuadTo) (fixed.Point26_6, fixed.Point26_6) {
	return a.TFixed(op[0]), a.TFixed(op[1])
}

func (a Matrix2D) trCubic(op CubicTo) (fixed.Point26_6, fixed.Point26_6, fixed.Point26_6) {
	return a.TFixed(op[0]), a.TFixed(op[1]), a.TFixed(op[2])
}
