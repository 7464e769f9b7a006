package deform

import "math"

// Affine is the transform
//
//	| N0 N2 N4 |
//	| N1 N3 N5 |
//	|  0  0  1 |
//
// applied to column vectors, so a.Mul(b) applies b first.
type Affine struct {
	N0, N1, N2, N3, N4, N5 float64
}

var Identity = Affine{1, 0, 0, 1, 0, 0}

func Scale(sx, sy float64) Affine { return Affine{sx, 0, 0, sy, 0, 0} }

func Translate(v Vec2) Affine { return Affine{1, 0, 0, 1, v.X, v.Y} }

// Rotate turns counter-clockwise by th radians.
func Rotate(th float64) Affine {
	s, c := math.Sincos(th)
	return Affine{c, s, -s, c, 0, 0}
}

// Frame maps local coordinates of a point on a curve into the plane. Local
// x runs along the unit vector tangent and local y along its left normal,
// with the local origin at origin.
func Frame(origin Point, tangent Vec2) Affine {
	n := tangent.Normal()
	return Affine{tangent.X, tangent.Y, n.X, n.Y, origin.X, origin.Y}
}

func (a Affine) Mul(b Affine) Affine {
	return Affine{
		a.N0*b.N0 + a.N2*b.N1,
		a.N1*b.N0 + a.N3*b.N1,
		a.N0*b.N2 + a.N2*b.N3,
		a.N1*b.N2 + a.N3*b.N3,
		a.N0*b.N4 + a.N2*b.N5 + a.N4,
		a.N1*b.N4 + a.N3*b.N5 + a.N5,
	}
}

// ThenTranslate returns a followed by a translation by v.
func (a Affine) ThenTranslate(v Vec2) Affine {
	a.N4, a.N5 = a.N4+v.X, a.N5+v.Y
	return a
}

// ApplyVec applies the linear part of a to v.
func (a Affine) ApplyVec(v Vec2) Vec2 {
	return Vec2{a.N0*v.X + a.N2*v.Y, a.N1*v.X + a.N3*v.Y}
}

func (a Affine) Determinant() float64 { return a.N0*a.N3 - a.N1*a.N2 }

// Invert returns the inverse of a. A singular a gives NaNs and infinities.
func (a Affine) Invert() Affine {
	k := 1 / a.Determinant()
	return Affine{
		k * a.N3,
		-k * a.N1,
		-k * a.N2,
		k * a.N0,
		k * (a.N2*a.N5 - a.N3*a.N4),
		k * (a.N1*a.N4 - a.N0*a.N5),
	}
}
