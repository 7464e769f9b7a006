package deform

import (
	"fmt"
	"slices"
)

// KnotType describes how the direction of a spline is chosen on one side of
// a knot.
type KnotType int

const (
	// The direction follows from the curvature equations of the spline.
	KnotOpen KnotType = iota
	// The direction follows from the curl, the ratio of the curvature at the
	// knot to the curvature at the neighboring knot.
	KnotCurl
	// The direction is given as an angle.
	KnotGiven
	// The control point is given explicitly.
	KnotExplicit
	// The side before the first and after the last knot of an open spline.
	KnotEndpoint

	// knotEndCycle marks the first knot of a cyclic spline without any
	// constraints.
	knotEndCycle
)

func (k KnotType) String() string {
	switch k {
	case KnotOpen:
		return "open"
	case KnotCurl:
		return "curl"
	case KnotGiven:
		return "given"
	case KnotExplicit:
		return "explicit"
	case KnotEndpoint:
		return "endpoint"
	case knotEndCycle:
		return "end cycle"
	default:
		return fmt.Sprintf("KnotType(%d)", int(k))
	}
}

// Side describes one side of a knot. The left side is where the spline
// enters the knot, the right side where it leaves it.
type Side struct {
	Type KnotType
	// Direction in radians, for KnotGiven.
	Angle float64
	// Curl for KnotCurl. 1 is neutral, 0 makes the spline straight near the
	// knot.
	Curl float64
	// Control point for KnotExplicit.
	Control Point
	// Tension of the spline on this side. Zero means 1. Negative tensions
	// are "at least" tensions: the spline additionally stays inside the
	// triangle formed by its end points and the crossing of its end
	// tangents. Magnitudes below 3/4 are raised to 3/4.
	Tension float64
}

// Knot is a point the spline passes through.
type Knot struct {
	Point       Point
	Left, Right Side
}

// FitSpline returns the smooth spline through knots, using John Hobby's
// algorithm as implemented by MetaPost. If cycle is set, the spline is
// closed.
//
// Open sides at the ends of an open spline get a curl of 1. A given or curl
// side opposite an open side also applies to the open side.
func FitSpline(knots []Knot, cycle bool, opts FitOptions) (Path, error) {
	if len(knots) < 2 {
		return nil, geometryError("fit", Param{}, ErrDegenerateInput, "%d knots", len(knots))
	}
	h := newHobby(knots, cycle, opts.Epsilon)
	h.makeChoices()
	tracer().Debugf("fit: %d knots, cycle=%t", len(knots), cycle)
	return h.path(), nil
}

// Spline builds a knot sequence for [FitSpline], in the manner of MetaPost
// path expressions. For example,
//
//	NewSpline().Knot(Pt(0, 0)).Curve().Knot(Pt(2, 3)).TensionCurve(1.4, 1.4).
//		Knot(Pt(5, 3)).Line().Knot(Pt(3, -1)).Curve().Cycle()
//
// corresponds to (0,0)..(2,3)..tension 1.4..(5,3)--(3,-1)..cycle.
type Spline struct {
	knots []Knot
	// join is applied to the left side of the next knot.
	join func(left *Side)
	opts FitOptions
}

// NewSpline returns an empty spline that uses [DefaultFitOptions].
func NewSpline() *Spline {
	return &Spline{opts: DefaultFitOptions}
}

// WithOptions sets the options used by End and Cycle.
func (s *Spline) WithOptions(opts FitOptions) *Spline {
	s.opts = opts
	return s
}

// Knot appends a knot. Consecutive knots without a join in between are
// joined by Curve.
func (s *Spline) Knot(p Point) *Spline {
	k := Knot{Point: p}
	if s.join != nil {
		s.join(&k.Left)
		s.join = nil
	}
	s.knots = append(s.knots, k)
	return s
}

func (s *Spline) last(op string) *Knot {
	if len(s.knots) == 0 {
		panic(fmt.Sprintf("cannot add %s to empty spline", op))
	}
	return &s.knots[len(s.knots)-1]
}

// Curve joins the last knot and the next one with a curve of tension 1.
func (s *Spline) Curve() *Spline {
	return s.TensionCurve(1, 1)
}

// TensionCurve joins the last knot and the next one with a curve of
// tensions t1 and t2.
func (s *Spline) TensionCurve(t1, t2 float64) *Spline {
	s.last("curve").Right.Tension = t1
	s.join = func(left *Side) { left.Tension = t2 }
	return s
}

// Line joins the last knot and the next one with a straight line.
func (s *Spline) Line() *Spline {
	k := s.last("line")
	k.Right = Side{Type: KnotCurl, Curl: 1, Tension: k.Right.Tension}
	s.join = func(left *Side) { *left = Side{Type: KnotCurl, Curl: 1, Tension: left.Tension} }
	return s
}

// Controls joins the last knot and the next one with a cubic with the
// control points c1 and c2.
func (s *Spline) Controls(c1, c2 Point) *Spline {
	k := s.last("controls")
	k.Right = Side{Type: KnotExplicit, Control: c1}
	s.join = func(left *Side) { *left = Side{Type: KnotExplicit, Control: c2} }
	return s
}

// Dir sets the direction of the spline at the last knot.
func (s *Spline) Dir(angle float64) *Spline {
	k := s.last("direction")
	k.Left = Side{Type: KnotGiven, Angle: angle, Tension: k.Left.Tension}
	k.Right = Side{Type: KnotGiven, Angle: angle, Tension: k.Right.Tension}
	return s
}

// Curl sets the curl at the last knot.
func (s *Spline) Curl(c float64) *Spline {
	k := s.last("curl")
	k.Left = Side{Type: KnotCurl, Curl: c, Tension: k.Left.Tension}
	k.Right = Side{Type: KnotCurl, Curl: c, Tension: k.Right.Tension}
	return s
}

// Knots returns a copy of the knots built so far.
func (s *Spline) Knots() []Knot {
	return slices.Clone(s.knots)
}

// End fits an open spline through the knots.
func (s *Spline) End() (Path, error) {
	return FitSpline(s.knots, false, s.opts)
}

// Cycle fits a closed spline through the knots. A pending join connects the
// last knot to the first one.
func (s *Spline) Cycle() (Path, error) {
	if s.join != nil && len(s.knots) > 0 {
		s.join(&s.knots[0].Left)
		s.join = nil
	}
	return FitSpline(s.knots, true, s.opts)
}
