package deform

import (
	"fmt"
	"math"
)

// Vec2 is a displacement in the plane. Tangents and normals are Vec2s, and
// the difference of two points is one.
type Vec2 struct {
	X, Y float64
}

// Vec returns ⟨x, y⟩.
func Vec(x, y float64) Vec2 { return Vec2{x, y} }

// VecFromAngle returns the unit vector at angle th, measured in radians
// counter-clockwise from ⟨1, 0⟩.
func VecFromAngle(th float64) Vec2 {
	s, c := math.Sincos(th)
	return Vec2{c, s}
}

func (v Vec2) String() string { return fmt.Sprintf("⟨%g, %g⟩", v.X, v.Y) }

func (v Vec2) Add(o Vec2) Vec2    { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2    { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Mul(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Div(f float64) Vec2 { return Vec2{v.X / f, v.Y / f} }
func (v Vec2) Negate() Vec2       { return Vec2{-v.X, -v.Y} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Cross returns the z component of v × o. It is positive when o turns to
// the left of v.
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }

// Hypot returns the length of v.
func (v Vec2) Hypot() float64 { return math.Hypot(v.X, v.Y) }

// Hypot2 returns the squared length of v.
func (v Vec2) Hypot2() float64 { return v.Dot(v) }

// Angle returns atan2(y, x).
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Lerp returns v + t·(o − v).
func (v Vec2) Lerp(o Vec2, t float64) Vec2 { return v.Add(o.Sub(v).Mul(t)) }

// Normalize scales v to unit length. The zero vector becomes NaN.
func (v Vec2) Normalize() Vec2 { return v.Div(v.Hypot()) }

// Normal returns v turned a quarter turn counter-clockwise. For a tangent
// this is the left-hand normal, the direction of positive offsets.
func (v Vec2) Normal() Vec2 { return Vec2{-v.Y, v.X} }

// Rotate returns v turned counter-clockwise by th radians.
func (v Vec2) Rotate(th float64) Vec2 {
	s, c := math.Sincos(th)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}
