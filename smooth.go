package deform

import "math"

// SmoothCorners replaces the corners of p with smooth blends. Around every
// corner, radius worth of arc length is cut from both neighboring segments,
// or half of a segment if it is shorter, and the gap is bridged by cubic
// Béziers that continue the tangents of the cut points.
//
// Segments shorter than opts.RelativeSkipThreshold·radius are merged into
// their neighbors first. The ends of open subpaths are kept. A radius no
// larger than opts.Epsilon returns a copy of p.
func SmoothCorners(p Path, radius float64, opts SmoothOptions) (Path, error) {
	eps := opts.Epsilon
	if radius <= eps {
		return p.Clone(), nil
	}
	acc := accuracy(eps)
	skip := max(eps, opts.RelativeSkipThreshold*radius)
	var out Path
	for i, sp := range p {
		sp = sp.dropSegments(func(seg Segment) bool { return seg.Arclen(acc) < skip })
		if len(sp.Segments) == 0 {
			tracer().Debugf("smooth: subpath %d has no segments longer than %g", i, skip)
			continue
		}
		sm := &smoother{radius: radius, opts: opts, acc: acc, sp: sp, index: i}
		out = append(out, sm.smooth())
	}
	if len(out) == 0 {
		return nil, geometryError("smooth", Param{}, ErrDegenerateInput, "no segments longer than %g", skip)
	}
	return out, nil
}

// smoother smooths the corners of a single subpath.
type smoother struct {
	radius float64
	opts   SmoothOptions
	acc    float64
	sp     Subpath
	index  int

	lens []float64
	// Arc lengths cut from the start and the end of each segment.
	cutStart, cutEnd []float64
	out              []Segment
}

// isCorner reports whether the tangents on both sides of vertex i differ.
func (sm *smoother) isCorner(i int) bool {
	segs := sm.sp.Segments
	if i == 0 && !sm.sp.Closed {
		return false
	}
	prev := segs[(i+len(segs)-1)%len(segs)]
	eps := sm.opts.Epsilon
	t1, t2 := prev.tangentSide(1, false, eps), segs[i].tangentSide(0, true, eps)
	return math.Abs(t1.Cross(t2)) > eps || t1.Dot(t2) < 0
}

func (sm *smoother) smooth() Subpath {
	segs := sm.sp.Segments
	n := len(segs)
	sm.lens = make([]float64, n)
	for i, seg := range segs {
		sm.lens[i] = seg.Arclen(sm.acc)
	}
	sm.cutStart = make([]float64, n)
	sm.cutEnd = make([]float64, n)
	corners := make([]bool, n)
	for i := range n {
		if !sm.isCorner(i) {
			continue
		}
		corners[i] = true
		if n == 1 {
			// Both ends of the only segment meet at the corner.
			cut := min(sm.radius, sm.lens[0]/3)
			sm.cutStart[0], sm.cutEnd[0] = cut, cut
			break
		}
		prev := (i + n - 1) % n
		sm.cutEnd[prev] = min(sm.radius, sm.lens[prev]/2)
		sm.cutStart[i] = min(sm.radius, sm.lens[i]/2)
	}

	for i := range segs {
		sm.middle(i)
		next := i + 1
		if next == n {
			if !sm.sp.Closed {
				break
			}
			next = 0
		}
		if corners[next] {
			sm.blend(i, next)
		}
	}

	out := Subpath{Segments: sm.out, Closed: sm.sp.Closed}
	if k := len(out.Segments); out.Closed && k > 0 {
		out.Segments[k-1] = out.Segments[k-1].WithEnd(out.Segments[0].Start())
	}
	return out
}

// push appends seg, moving its start onto the end of the previous segment.
func (sm *smoother) push(seg Segment) {
	if k := len(sm.out); k > 0 {
		seg = seg.WithStart(sm.out[k-1].End())
	}
	sm.out = append(sm.out, seg)
}

// middle appends the part of segment i that survives the cuts at its ends.
func (sm *smoother) middle(i int) {
	seg := sm.sp.Segments[i]
	s0, s1 := sm.cutStart[i], sm.lens[i]-sm.cutEnd[i]
	if s1-s0 <= sm.opts.Epsilon {
		return
	}
	sm.push(seg.Subsegment(seg.ParamAtArclen(s0, sm.acc), seg.ParamAtArclen(s1, sm.acc)))
}

// blend bridges the corner between segments i and j.
func (sm *smoother) blend(i, j int) {
	p, q := sm.sp.Segments[i], sm.sp.Segments[j]
	ta := p.ParamAtArclen(sm.lens[i]-sm.cutEnd[i], sm.acc)
	tb := q.ParamAtArclen(sm.cutStart[j], sm.acc)
	a, b := p.Eval(ta), q.Eval(tb)
	if a.Near(b, sm.opts.Epsilon) {
		return
	}
	if p.Kind == LineKind && q.Kind == LineKind {
		sm.blendLines(a, q.Start(), b)
		return
	}

	eps := sm.opts.Epsilon
	tanA, tanB := p.Tangent(ta), q.Tangent(tb)
	ka, kb := p.Curvature(ta), q.Curvature(tb)
	if turn := tanA.Cross(tanB); !sm.opts.ObeyCurvatureSign && turn != 0 {
		ka = Curvature(math.Copysign(math.Abs(float64(ka)), turn))
		kb = Curvature(math.Copysign(math.Abs(float64(kb)), turn))
	}
	cands := SolveControlDists(a, b, tanA, tanB, ka, kb, true, eps)
	var c ControlDists
	if len(cands) > 0 && cands[0].positive() {
		c = cands[0]
	} else {
		c = fallbackControlDists(a, b, tanA, tanB, cands)
		tracer().Debugf("smooth: no positive control distances at %s, using %v",
			Param{sm.index, j, 0}, c)
	}
	sm.push(cubicFromDists(a, b, tanA, tanB, c))
}

// blendLines bridges the corner v between two lines with cut points a and
// b. The blend consists of two cubics with zero curvature at a and b that
// meet with a common tangent halfway between the points f1 and f2 on the
// lines.
func (sm *smoother) blendLines(a, v, b Point) {
	k := sm.opts.Softness / 2
	f1 := v.Translate(v.Sub(a).Mul(-k))
	f2 := v.Translate(b.Sub(v).Mul(k))
	e := f1.Midpoint(f2)
	sm.push(CubicSeg(a, a.Lerp(f1, 0.5), f1, e))
	sm.push(CubicSeg(e, f2, b.Lerp(f2, 0.5), b))
}

// fallbackControlDists is used when no positive control distances exist.
// It clips the first candidate to the intersection of the end tangents, or
// without candidates elevates the quadratic through that intersection. If
// the tangents don't meet between a and b, the arms are a third of the
// chord.
func fallbackControlDists(a, b Point, ta, tb Vec2, cands []ControlDists) ControlDists {
	ab := b.Sub(a)
	p := controlProblem{T: ta.Cross(tb), D: ta.Cross(ab), E: ab.Cross(tb)}
	if ia, ib, ok := p.tangentIntersection(); ok {
		if len(cands) > 0 {
			return ControlDists{min(math.Abs(cands[0].A), ia), min(math.Abs(cands[0].B), ib)}
		}
		return ControlDists{2 * ia / 3, 2 * ib / 3}
	}
	third := ab.Hypot() / 3
	return ControlDists{third, third}
}
