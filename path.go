package deform

import (
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/jbeda/geom"
)

// Subpath is a connected sequence of segments. Each segment starts where the
// previous one ends. The last segment of a closed subpath ends at the start
// of the first.
type Subpath struct {
	Segments []Segment
	Closed   bool
}

// Path is a sequence of disjoint subpaths. It is the curve consumed and
// produced by all deform operations.
type Path []Subpath

// Param locates a position on a path.
type Param struct {
	Subpath int
	Segment int
	T       float64
}

// Compare orders parameters lexicographically by subpath, segment and local
// parameter.
func (p Param) Compare(o Param) int {
	switch {
	case p.Subpath != o.Subpath:
		return cmpInt(p.Subpath, o.Subpath)
	case p.Segment != o.Segment:
		return cmpInt(p.Segment, o.Segment)
	case p.T < o.T:
		return -1
	case p.T > o.T:
		return 1
	default:
		return 0
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	return 1
}

func (p Param) Less(o Param) bool { return p.Compare(o) < 0 }

func (p Param) String() string {
	return fmt.Sprintf("%d:%d@%g", p.Subpath, p.Segment, p.T)
}

func (sp Subpath) Start() Point {
	return sp.Segments[0].Start()
}

func (sp Subpath) End() Point {
	return sp.Segments[len(sp.Segments)-1].End()
}

// Reverse returns the subpath traversed backwards.
func (sp Subpath) Reverse() Subpath {
	out := Subpath{Segments: make([]Segment, len(sp.Segments)), Closed: sp.Closed}
	for i, seg := range sp.Segments {
		out.Segments[len(sp.Segments)-1-i] = seg.Reverse()
	}
	return out
}

func (sp Subpath) Arclen(accuracy float64) float64 {
	var sum float64
	for _, seg := range sp.Segments {
		sum += seg.Arclen(accuracy)
	}
	return sum
}

// AtArclen returns the segment index and local parameter at arc length s
// from the start of the subpath. Arc lengths outside of the subpath are
// clamped to its ends.
func (sp Subpath) AtArclen(s float64, accuracy float64) (int, float64) {
	if s <= 0 {
		return 0, 0
	}
	var acc float64
	for i, seg := range sp.Segments {
		l := seg.Arclen(accuracy)
		if s <= acc+l {
			return i, seg.ParamAtArclen(s-acc, accuracy)
		}
		acc += l
	}
	return len(sp.Segments) - 1, 1
}

// SliceArclen returns the part of the subpath between the arc lengths s0 and
// s1.
func (sp Subpath) SliceArclen(s0, s1 float64, accuracy float64) []Segment {
	i0, t0 := sp.AtArclen(s0, accuracy)
	i1, t1 := sp.AtArclen(s1, accuracy)
	return sliceSegments(sp.Segments, i0, t0, i1, t1, false, accuracy)
}

func (sp Subpath) Bounds() geom.Rect {
	r := sp.Segments[0].Bounds()
	for _, seg := range sp.Segments[1:] {
		r.ExpandToContainRect(seg.Bounds())
	}
	return r
}

// Segments iterates over all segments of the path, along with the
// parameter of their start.
func (p Path) Segments() iter.Seq2[Param, Segment] {
	return func(yield func(Param, Segment) bool) {
		for i, sp := range p {
			for j, seg := range sp.Segments {
				if !yield(Param{i, j, 0}, seg) {
					return
				}
			}
		}
	}
}

func (p Path) NumSegments() int {
	var n int
	for _, sp := range p {
		n += len(sp.Segments)
	}
	return n
}

func (p Path) Segment(at Param) Segment {
	return p[at.Subpath].Segments[at.Segment]
}

func (p Path) Eval(at Param) Point {
	return p.Segment(at).Eval(at.T)
}

func (p Path) Tangent(at Param) Vec2 {
	return p.Segment(at).Tangent(at.T)
}

func (p Path) Curvature(at Param) Curvature {
	return p.Segment(at).Curvature(at.T)
}

// Begin returns the parameter of the start of a subpath.
func (p Path) Begin(subpath int) Param {
	return Param{subpath, 0, 0}
}

// Finish returns the parameter of the end of a subpath.
func (p Path) Finish(subpath int) Param {
	return Param{subpath, len(p[subpath].Segments) - 1, 1}
}

// SmallerEquiv returns the representation of at that uses the end of the
// previous segment when at lies within eps of the start of its segment.
// Closed subpaths wrap around.
func (p Path) SmallerEquiv(at Param, eps float64) Param {
	if at.T > eps {
		return at
	}
	sp := p[at.Subpath]
	switch {
	case at.Segment > 0:
		return Param{at.Subpath, at.Segment - 1, 1}
	case sp.Closed:
		return Param{at.Subpath, len(sp.Segments) - 1, 1}
	default:
		return Param{at.Subpath, 0, 0}
	}
}

// LargerEquiv returns the representation of at that uses the start of the
// next segment when at lies within eps of the end of its segment. Closed
// subpaths wrap around.
func (p Path) LargerEquiv(at Param, eps float64) Param {
	if at.T < 1-eps {
		return at
	}
	sp := p[at.Subpath]
	switch {
	case at.Segment < len(sp.Segments)-1:
		return Param{at.Subpath, at.Segment + 1, 0}
	case sp.Closed:
		return Param{at.Subpath, 0, 0}
	default:
		return Param{at.Subpath, at.Segment, 1}
	}
}

// Canonical returns the canonical representation of at. Parameters on
// segment boundaries are expressed as the start of the following segment,
// except at the end of open subpaths.
func (p Path) Canonical(at Param, eps float64) Param {
	c := p.LargerEquiv(at, eps)
	if c.T < eps {
		c.T = 0
	}
	return c
}

// ParamsEqual reports whether a and b denote the same position on the path,
// even if one of them is expressed via the adjacent segment.
func (p Path) ParamsEqual(a, b Param, eps float64) bool {
	a = p.Canonical(a, eps)
	b = p.Canonical(b, eps)
	return a.Subpath == b.Subpath && a.Segment == b.Segment && math.Abs(a.T-b.T) <= eps
}

// Slice returns the segments between from and to, which must lie on the same
// subpath. On closed subpaths, a to that doesn't lie after from wraps around
// the end of the subpath. Pieces shorter than eps are omitted.
func (p Path) Slice(from, to Param, eps float64) []Segment {
	if from.Subpath != to.Subpath {
		panic(fmt.Sprintf("slice across subpaths %s and %s", from, to))
	}
	sp := p[from.Subpath]
	wrap := sp.Closed && to.Compare(from) <= 0
	return sliceSegments(sp.Segments, from.Segment, from.T, to.Segment, to.T, wrap, eps)
}

func sliceSegments(segs []Segment, i0 int, t0 float64, i1 int, t1 float64, wrap bool, eps float64) []Segment {
	var out []Segment
	add := func(seg Segment) {
		if !seg.IsDegenerate(eps) {
			out = append(out, seg)
		}
	}
	if !wrap {
		if i0 > i1 || (i0 == i1 && t0 > t1) {
			return nil
		}
		if i0 == i1 {
			add(segs[i0].Subsegment(t0, t1))
			return out
		}
	}
	add(segs[i0].Subsegment(t0, 1))
	n := len(segs)
	end := i1
	if wrap {
		end += n
	}
	for i := i0 + 1; i < end; i++ {
		add(segs[i%n])
	}
	add(segs[i1].Subsegment(0, t1))
	return out
}

func (p Path) Arclen(accuracy float64) float64 {
	var sum float64
	for _, sp := range p {
		sum += sp.Arclen(accuracy)
	}
	return sum
}

// Reverse returns the path with every subpath traversed backwards. The order
// of subpaths is kept.
func (p Path) Reverse() Path {
	out := make(Path, len(p))
	for i, sp := range p {
		out[i] = sp.Reverse()
	}
	return out
}

func (p Path) Transform(aff Affine) Path {
	out := make(Path, len(p))
	for i, sp := range p {
		segs := make([]Segment, len(sp.Segments))
		for j, seg := range sp.Segments {
			segs[j] = seg.Transform(aff)
		}
		out[i] = Subpath{Segments: segs, Closed: sp.Closed}
	}
	return out
}

// Clone returns a deep copy of p.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	for i, sp := range p {
		out[i] = Subpath{Segments: slices.Clone(sp.Segments), Closed: sp.Closed}
	}
	return out
}

func (p Path) Bounds() geom.Rect {
	var r geom.Rect
	first := true
	for _, sp := range p {
		if len(sp.Segments) == 0 {
			continue
		}
		if first {
			r = sp.Bounds()
			first = false
		} else {
			r.ExpandToContainRect(sp.Bounds())
		}
	}
	return r
}

// Polyline returns a path consisting of straight lines through pts. A closed
// polyline gets a closing line unless its last point equals its first.
func Polyline(closed bool, pts ...Point) Path {
	if len(pts) < 2 {
		return nil
	}
	sp := Subpath{Closed: closed}
	for i := 1; i < len(pts); i++ {
		sp.Segments = append(sp.Segments, LineSeg(pts[i-1], pts[i]))
	}
	if closed && pts[len(pts)-1] != pts[0] {
		sp.Segments = append(sp.Segments, LineSeg(pts[len(pts)-1], pts[0]))
	}
	return Path{sp}
}

// dropSegments removes the segments for which drop returns true, moving the
// start of the following segment to keep the subpath connected. Closed
// subpaths stay closed.
func (sp Subpath) dropSegments(drop func(Segment) bool) Subpath {
	out := Subpath{Closed: sp.Closed}
	for _, seg := range sp.Segments {
		if drop(seg) {
			continue
		}
		if n := len(out.Segments); n > 0 {
			seg = seg.WithStart(out.Segments[n-1].End())
		}
		out.Segments = append(out.Segments, seg)
	}
	if n := len(out.Segments); n > 0 {
		if sp.Closed {
			out.Segments[n-1] = out.Segments[n-1].WithEnd(out.Segments[0].Start())
		} else {
			// Keep the original end points.
			out.Segments[0] = out.Segments[0].WithStart(sp.Start())
			out.Segments[n-1] = out.Segments[n-1].WithEnd(sp.End())
		}
	}
	return out
}
