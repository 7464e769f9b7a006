package deform

import (
	"fmt"

	"github.com/jbeda/geom"
)

// Point is a location in the plane.
type Point struct {
	X, Y float64
}

// Pt returns (x, y).
func Pt(x, y float64) Point { return Point{x, y} }

func (pt Point) Splat() (float64, float64) { return pt.X, pt.Y }

func (pt Point) String() string { return fmt.Sprintf("(%g, %g)", pt.X, pt.Y) }

// Translate moves pt by v.
func (pt Point) Translate(v Vec2) Point { return Point{pt.X + v.X, pt.Y + v.Y} }

// Sub returns the vector from o to pt.
func (pt Point) Sub(o Point) Vec2 { return Vec2{pt.X - o.X, pt.Y - o.Y} }

func (pt Point) Transform(aff Affine) Point {
	return Point{
		aff.N0*pt.X + aff.N2*pt.Y + aff.N4,
		aff.N1*pt.X + aff.N3*pt.Y + aff.N5,
	}
}

func (pt Point) Lerp(o Point, t float64) Point { return pt.Translate(o.Sub(pt).Mul(t)) }

func (pt Point) Midpoint(o Point) Point { return Point{0.5 * (pt.X + o.X), 0.5 * (pt.Y + o.Y)} }

func (pt Point) Distance(o Point) float64 { return pt.Sub(o).Hypot() }

func (pt Point) DistanceSquared(o Point) float64 { return pt.Sub(o).Hypot2() }

// Near reports whether pt lies within eps of o.
func (pt Point) Near(o Point, eps float64) bool {
	return pt.DistanceSquared(o) < eps*eps
}

func (pt Point) coord() geom.Coord { return geom.Coord{X: pt.X, Y: pt.Y} }
