package deform

import (
	"fmt"
	"math"

	"github.com/jbeda/geom"
)

type SegmentKind int

const (
	LineKind SegmentKind = iota + 1
	CubicKind
)

func (k SegmentKind) String() string {
	switch k {
	case LineKind:
		return "line"
	case CubicKind:
		return "cubic"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// Segment is a single segment of a path, either a line or a cubic Bézier.
//
// A line uses P0 and P1 as its start and end points. A cubic uses all four
// points.
type Segment struct {
	Kind SegmentKind
	P0   Point
	P1   Point
	P2   Point
	P3   Point
}

// Curvature is the signed curvature of a curve at some parameter. Positive
// values turn left. The distinguished value [Infinite] is used at cusps and
// points of zero velocity.
type Curvature float64

// Infinite is the curvature of a cusp.
var Infinite = Curvature(math.Inf(1))

func (k Curvature) IsInf() bool {
	return math.IsInf(float64(k), 0)
}

// LineSeg returns a line segment from p0 to p1.
func LineSeg(p0, p1 Point) Segment {
	return Segment{Kind: LineKind, P0: p0, P1: p1}
}

// CubicSeg returns a cubic Bézier segment.
func CubicSeg(p0, p1, p2, p3 Point) Segment {
	return Segment{Kind: CubicKind, P0: p0, P1: p1, P2: p2, P3: p3}
}

func (s Segment) Start() Point {
	return s.P0
}

func (s Segment) End() Point {
	switch s.Kind {
	case LineKind:
		return s.P1
	case CubicKind:
		return s.P3
	default:
		panic("unreachable")
	}
}

func (s Segment) Line() Line {
	return Line{s.P0, s.End()}
}

// Cubic returns the segment as a cubic Bézier. Lines are raised to cubics
// with their control points at a third of their length.
func (s Segment) Cubic() CubicBez {
	switch s.Kind {
	case LineKind:
		return CubicBez{s.P0, s.P0.Lerp(s.P1, 1.0/3.0), s.P0.Lerp(s.P1, 2.0/3.0), s.P1}
	case CubicKind:
		return CubicBez{s.P0, s.P1, s.P2, s.P3}
	default:
		panic("unreachable")
	}
}

func (s Segment) Eval(t float64) Point {
	switch s.Kind {
	case LineKind:
		return s.P0.Lerp(s.P1, t)
	case CubicKind:
		return s.Cubic().Eval(t)
	default:
		panic("unreachable")
	}
}

// Deriv returns the first derivative at t.
func (s Segment) Deriv(t float64) Vec2 {
	switch s.Kind {
	case LineKind:
		return s.P1.Sub(s.P0)
	case CubicKind:
		return s.Cubic().Deriv(t)
	default:
		panic("unreachable")
	}
}

// Tangent returns the unit tangent at t. Where the velocity vanishes, the
// tangent is taken from the limit approaching t from the inside of the
// segment.
func (s Segment) Tangent(t float64) Vec2 {
	return s.TangentSide(t, t <= 0.5)
}

// TangentSide returns the unit tangent at t. Where the velocity vanishes,
// the tangent is the limit approaching t from above if after is set, and
// from below otherwise. Velocities below [DefaultEpsilon] count as vanished.
func (s Segment) TangentSide(t float64, after bool) Vec2 {
	return s.tangentSide(t, after, DefaultEpsilon)
}

// tangentSide is TangentSide with the velocity below eps counting as
// vanished. One-sided limits step eps in t.
func (s Segment) tangentSide(t float64, after bool, eps float64) Vec2 {
	d := s.Deriv(t)
	if d.Hypot() > eps {
		return d.Normalize()
	}
	switch s.Kind {
	case LineKind:
		return d
	case CubicKind:
		c := s.Cubic()
		if t <= 0 {
			d0, _ := c.Tangents()
			return d0.Normalize()
		}
		if t >= 1 {
			_, d1 := c.Tangents()
			return d1.Normalize()
		}
		h := eps
		if !after {
			h = -h
		}
		return c.Deriv(t + h).Normalize()
	default:
		panic("unreachable")
	}
}

// Curvature returns the signed curvature at t.
func (s Segment) Curvature(t float64) Curvature {
	switch s.Kind {
	case LineKind:
		if s.P0 == s.P1 {
			return Infinite
		}
		return 0
	case CubicKind:
		return s.Cubic().Curvature(t)
	default:
		panic("unreachable")
	}
}

// Arclen returns the arc length of the segment.
func (s Segment) Arclen(accuracy float64) float64 {
	switch s.Kind {
	case LineKind:
		return s.Line().Length()
	case CubicKind:
		return s.Cubic().Arclen(accuracy)
	default:
		panic("unreachable")
	}
}

// ParamAtArclen solves for the parameter that has the given arc length from
// the start of the segment.
func (s Segment) ParamAtArclen(arclen float64, accuracy float64) float64 {
	if arclen <= 0 {
		return 0
	}
	total := s.Arclen(accuracy)
	if arclen >= total {
		return 1
	}
	if s.Kind == LineKind {
		return arclen / total
	}
	// Keep track of the last evaluated parameter so that every evaluation
	// only measures the arc between neighboring guesses.
	c := s.Cubic()
	tLast := 0.0
	arclenLast := 0.0
	epsilon := accuracy / total
	n := 1.0 - min(math.Ceil(math.Log2(epsilon)), 0.0)
	innerAccuracy := accuracy / n
	f := func(t float64) float64 {
		if t > tLast {
			arclenLast += c.Subsegment(tLast, t).Arclen(innerAccuracy)
		} else {
			arclenLast -= c.Subsegment(t, tLast).Arclen(innerAccuracy)
		}
		tLast = t
		return arclenLast - arclen
	}
	return SolveITP(f, 0.0, 1.0, epsilon, 1, 0.2, -arclen, total-arclen)
}

// Subsegment returns the part of the segment between t0 and t1.
func (s Segment) Subsegment(t0, t1 float64) Segment {
	if t0 == 0 && t1 == 1 {
		return s
	}
	switch s.Kind {
	case LineKind:
		return LineSeg(s.Eval(t0), s.Eval(t1))
	case CubicKind:
		return s.Cubic().Subsegment(t0, t1).Seg()
	default:
		panic("unreachable")
	}
}

// Reverse returns the segment traversed in the opposite direction.
func (s Segment) Reverse() Segment {
	switch s.Kind {
	case LineKind:
		return LineSeg(s.P1, s.P0)
	case CubicKind:
		return CubicSeg(s.P3, s.P2, s.P1, s.P0)
	default:
		panic("unreachable")
	}
}

// WithStart returns the segment moved to start at p. The first control
// point of a cubic moves along with the start.
func (s Segment) WithStart(p Point) Segment {
	d := p.Sub(s.P0)
	s.P0 = p
	if s.Kind == CubicKind {
		s.P1 = s.P1.Translate(d)
	}
	return s
}

// WithEnd returns the segment moved to end at p. The last control point of
// a cubic moves along with the end.
func (s Segment) WithEnd(p Point) Segment {
	switch s.Kind {
	case LineKind:
		s.P1 = p
	case CubicKind:
		s.P2 = s.P2.Translate(p.Sub(s.P3))
		s.P3 = p
	default:
		panic("unreachable")
	}
	return s
}

func (s Segment) Translate(v Vec2) Segment {
	s.P0 = s.P0.Translate(v)
	s.P1 = s.P1.Translate(v)
	if s.Kind == CubicKind {
		s.P2 = s.P2.Translate(v)
		s.P3 = s.P3.Translate(v)
	}
	return s
}

func (s Segment) Transform(aff Affine) Segment {
	s.P0 = s.P0.Transform(aff)
	s.P1 = s.P1.Transform(aff)
	if s.Kind == CubicKind {
		s.P2 = s.P2.Transform(aff)
		s.P3 = s.P3.Transform(aff)
	}
	return s
}

// Bounds returns a box containing the segment. For cubics this is the
// box of the control polygon.
func (s Segment) Bounds() geom.Rect {
	r := geom.Rect{Min: s.P0.coord(), Max: s.P0.coord()}
	r.ExpandToContainCoord(s.P1.coord())
	if s.Kind == CubicKind {
		r.ExpandToContainCoord(s.P2.coord())
		r.ExpandToContainCoord(s.P3.coord())
	}
	return r
}

// IsDegenerate reports whether all points of the segment lie within eps of
// its start.
func (s Segment) IsDegenerate(eps float64) bool {
	switch s.Kind {
	case LineKind:
		return s.P0.Near(s.P1, eps)
	case CubicKind:
		return s.P0.Near(s.P1, eps) && s.P0.Near(s.P2, eps) && s.P0.Near(s.P3, eps)
	default:
		panic("unreachable")
	}
}

// IntersectLine intersects the segment with a probe line.
func (s Segment) IntersectLine(l Line) ([3]LineIntersection, int) {
	switch s.Kind {
	case LineKind:
		return s.Line().IntersectLine(l)
	case CubicKind:
		return s.Cubic().IntersectLine(l)
	default:
		panic("unreachable")
	}
}

// Nearest returns the squared distance of pt to the segment and the
// parameter of the nearest point.
func (s Segment) Nearest(pt Point, accuracy float64) (distSq, t float64) {
	switch s.Kind {
	case LineKind:
		return s.Line().Nearest(pt)
	case CubicKind:
		return s.Cubic().Nearest(pt, accuracy)
	default:
		panic("unreachable")
	}
}
