package deform

import (
	"math"

	"github.com/jbeda/geom"
)

// SegmentIntersection is a crossing of two segments.
type SegmentIntersection struct {
	// Parameter on the first segment.
	T0 float64
	// Parameter on the second segment.
	T1    float64
	Point Point
}

// maxIntersectDepth bounds the subdivision of cubic pairs.
const maxIntersectDepth = 32

// IntersectSegments returns the points where a and b cross. Overlapping
// collinear pieces don't produce intersections. Degenerate segments never
// intersect anything.
func IntersectSegments(a, b Segment, eps float64) []SegmentIntersection {
	if a.IsDegenerate(eps) || b.IsDegenerate(eps) {
		return nil
	}
	if !rectsOverlap(a.Bounds(), b.Bounds(), eps) {
		return nil
	}
	switch a.Kind {
	case LineKind:
		switch b.Kind {
		case LineKind:
			xs, n := a.Line().intersectLine(b.Line(), eps)
			return lineHits(xs[:n], a, false)
		case CubicKind:
			xs, n := b.Cubic().IntersectLine(a.Line())
			return lineHits(xs[:n], b, true)
		default:
			panic("unreachable")
		}
	case CubicKind:
		switch b.Kind {
		case LineKind:
			xs, n := a.Cubic().IntersectLine(b.Line())
			return lineHits(xs[:n], a, false)
		case CubicKind:
			var out []SegmentIntersection
			intersectCubics(a.Cubic(), 0, 1, b.Cubic(), 0, 1, eps, 0, &out)
			return out
		default:
			panic("unreachable")
		}
	default:
		panic("unreachable")
	}
}

// lineHits converts probe line intersections with seg. If swap is set, seg
// is the second segment of the pair.
func lineHits(xs []LineIntersection, seg Segment, swap bool) []SegmentIntersection {
	out := make([]SegmentIntersection, 0, len(xs))
	for _, x := range xs {
		st := min(1, max(0, x.SegmentT))
		hit := SegmentIntersection{T0: st, T1: x.LineT, Point: seg.Eval(st)}
		if swap {
			hit.T0, hit.T1 = hit.T1, hit.T0
		}
		out = append(out, hit)
	}
	return out
}

// rectsOverlap reports whether a and b, grown by pad in every direction,
// overlap.
func rectsOverlap(a, b geom.Rect, pad float64) bool {
	grow := geom.Coord{X: pad, Y: pad}
	a = geom.Rect{Min: a.Min.Minus(grow), Max: a.Max.Plus(grow)}
	return geom.RectsIntersect(a, b)
}

// flat reports whether the control points of c lie within eps of its chord.
func (c CubicBez) flat(eps float64) bool {
	chord := Line{c.P0, c.P3}
	if chord.Length() < eps {
		return c.P1.Near(c.P0, eps) && c.P2.Near(c.P0, eps)
	}
	d1, _ := chord.Nearest(c.P1)
	d2, _ := chord.Nearest(c.P2)
	return max(d1, d2) < eps*eps
}

func intersectCubics(a CubicBez, a0, a1 float64, b CubicBez, b0, b1 float64, eps float64, depth int, out *[]SegmentIntersection) {
	if !rectsOverlap(a.Seg().Bounds(), b.Seg().Bounds(), eps) {
		return
	}
	if depth >= maxIntersectDepth || (a.flat(eps) && b.flat(eps)) {
		la, lb := Line{a.P0, a.P3}, Line{b.P0, b.P3}
		xs, n := la.intersectLine(lb, eps)
		for _, x := range xs[:n] {
			s := a0 + x.SegmentT*(a1-a0)
			u := b0 + x.LineT*(b1-b0)
			addCubicHit(out, newtonCubics(a, b, a0, a1, b0, b1, s, u), eps)
		}
		return
	}
	am, bm := 0.5*(a0+a1), 0.5*(b0+b1)
	al, ar := a.Subdivide()
	bl, br := b.Subdivide()
	intersectCubics(al, a0, am, bl, b0, bm, eps, depth+1, out)
	intersectCubics(al, a0, am, br, bm, b1, eps, depth+1, out)
	intersectCubics(ar, am, a1, bl, b0, bm, eps, depth+1, out)
	intersectCubics(ar, am, a1, br, bm, b1, eps, depth+1, out)
}

// newtonCubics polishes an approximate intersection of the pieces a and b,
// which span [a0, a1] and [b0, b1] of their parent cubics. s and u are
// parent parameters.
func newtonCubics(a, b CubicBez, a0, a1, b0, b1, s, u float64) SegmentIntersection {
	// Work on the pieces, whose parameters are local.
	ls := (s - a0) / (a1 - a0)
	lu := (u - b0) / (b1 - b0)
	for range 5 {
		f := a.Eval(ls).Sub(b.Eval(lu))
		da, db := a.Deriv(ls), b.Deriv(lu).Negate()
		det := da.Cross(db)
		if math.Abs(det) < 1e-12 {
			break
		}
		ds := f.Cross(db) / det
		du := da.Cross(f) / det
		ls = min(1, max(0, ls-ds))
		lu = min(1, max(0, lu-du))
	}
	return SegmentIntersection{
		T0:    a0 + ls*(a1-a0),
		T1:    b0 + lu*(b1-b0),
		Point: a.Eval(ls),
	}
}

func addCubicHit(out *[]SegmentIntersection, hit SegmentIntersection, eps float64) {
	for _, o := range *out {
		if o.Point.Near(hit.Point, 10*eps) {
			return
		}
	}
	*out = append(*out, hit)
}
