package deform

import "math"

// Line is the straight segment from P0 to P1.
type Line struct {
	P0, P1 Point
}

// LineIntersection locates a crossing of a probe line with a segment.
// LineT is in [0, 1]. SegmentT may leave [0, 1] by a rounding error at the
// ends of the segment.
type LineIntersection struct {
	LineT    float64
	SegmentT float64
}

func (l Line) Length() float64 { return l.P1.Distance(l.P0) }

func (l Line) Eval(t float64) Point { return l.P0.Lerp(l.P1, t) }

func (l Line) Subsegment(t0, t1 float64) Line { return Line{l.Eval(t0), l.Eval(t1)} }

func (l Line) Seg() Segment { return LineSeg(l.P0, l.P1) }

// CrossingPoint returns where the infinite extensions of l and o meet. It
// fails for parallel lines.
func (l Line) CrossingPoint(o Line) (Point, bool) {
	u, v := l.P1.Sub(l.P0), o.P1.Sub(o.P0)
	den := u.Cross(v)
	if den == 0 {
		return Point{}, false
	}
	return o.P0.Translate(v.Mul(u.Cross(l.P0.Sub(o.P0)) / den)), true
}

// Nearest returns the squared distance from pt to l and the parameter of
// the closest point.
func (l Line) Nearest(pt Point) (distSq, t float64) {
	d := l.P1.Sub(l.P0)
	proj, dd := d.Dot(pt.Sub(l.P0)), d.Hypot2()
	switch {
	case proj <= 0:
		return pt.DistanceSquared(l.P0), 0
	case proj >= dd:
		return pt.DistanceSquared(l.P1), 1
	}
	t = proj / dd
	return pt.DistanceSquared(l.Eval(t)), t
}

// IntersectLine intersects l with the probe line o, using [DefaultEpsilon]
// as the tolerance.
func (l Line) IntersectLine(o Line) ([3]LineIntersection, int) {
	return l.intersectLine(o, DefaultEpsilon)
}

// intersectLine intersects l with the probe line o. Lines whose angle has a
// sine below eps² are parallel, and hits within eps of the ends of l count.
func (l Line) intersectLine(o Line, eps float64) ([3]LineIntersection, int) {
	e, d := l.P1.Sub(l.P0), o.P1.Sub(o.P0)
	el := e.Hypot()
	det := d.Cross(e)
	if math.Abs(det) <= eps*eps*el*d.Hypot() {
		return [3]LineIntersection{}, 0
	}
	slack := eps / el
	ts := d.Cross(o.P0.Sub(l.P0)) / det
	if ts < -slack || ts > 1+slack {
		return [3]LineIntersection{}, 0
	}
	if tp := l.P0.Sub(o.P0).Cross(e) / det; tp >= 0 && tp <= 1 {
		return [3]LineIntersection{{tp, ts}}, 1
	}
	return [3]LineIntersection{}, 0
}
