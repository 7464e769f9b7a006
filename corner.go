package deform

import "math"

// cornerResolver joins the offset fragments of the segments of one source
// subpath into offset subpaths.
type cornerResolver struct {
	d      float64
	opts   OffsetOptions
	source Subpath
	index  int

	runs []offsetPiece
	cur  offsetPiece
	// The current run started at the start of the first source segment.
	openedAtStart bool
	// The current run ends at the end of the previous source segment.
	joinable bool
}

// vertexTangents returns the tangent at the end of source segment i-1 and at
// the start of segment i.
func (cr *cornerResolver) vertexTangents(i int) (Vec2, Vec2) {
	segs := cr.source.Segments
	prev := segs[(i+len(segs)-1)%len(segs)]
	eps := cr.opts.Epsilon
	return prev.tangentSide(1, false, eps), segs[i%len(segs)].tangentSide(0, true, eps)
}

// join appends the corner at the start of source segment i and then next
// to the current run.
func (cr *cornerResolver) join(run *offsetPiece, i int, next offsetPiece) {
	n := len(cr.source.Segments)
	t1, t2 := cr.vertexTangents(i)
	v := cr.source.Segments[i%n].Start()
	c := cr.connect(run.end(), next.start(), v, t1, t2, Param{cr.index, i % n, 0})
	if c.empty() {
		next.segs[0] = next.segs[0].WithStart(run.end())
	}
	run.extend(c)
	run.extend(next)
}

// connect returns the segments that lead from p to q around the source
// vertex v, where t1 and t2 are the source tangents before and after v. The
// result is empty if p and q coincide and the corner is straight.
func (cr *cornerResolver) connect(p, q, v Point, t1, t2 Vec2, at Param) offsetPiece {
	eps := cr.opts.Epsilon
	var out offsetPiece
	rec := func(kind OffsetKind) OffsetRecord { return OffsetRecord{Kind: kind, From: at, To: at} }

	sin, cos := t1.Cross(t2), t1.Dot(t2)
	if cos >= 0 && math.Abs(cr.d*math.Asin(min(1, max(-1, sin)))) < eps {
		if !p.Near(q, eps) {
			out.add(LineSeg(p, q), rec(Connector))
		}
		return out
	}

	theta := math.Atan2(sin, cos)
	if cos < 0 && math.Abs(sin) < 1e-9 {
		// Reversal; go around the outside of the tip.
		theta = -math.Copysign(math.Pi, cr.d)
		sin = 0
	}
	outer := cr.d*sin <= 0
	if outer && cr.opts.SharpOuterCorners && cos > -0.99 {
		if m, ok := (Line{p, p.Translate(t1)}).CrossingPoint(Line{q, q.Translate(t2)}); ok {
			out.add(LineSeg(p, m), rec(CornerMiter))
			out.add(LineSeg(m, q), rec(CornerMiter))
			return out
		}
	}

	arc := Arc{
		Center:     v,
		Radius:     math.Abs(cr.d),
		StartAngle: p.Sub(v).Angle(),
		SweepAngle: theta,
	}
	segs := arc.Segments(eps)
	if len(segs) == 0 {
		out.add(LineSeg(p, q), rec(Connector))
		return out
	}
	segs[0] = segs[0].WithStart(p)
	segs[len(segs)-1] = segs[len(segs)-1].WithEnd(q)
	for _, seg := range segs {
		out.add(seg, rec(CornerArc))
	}
	return out
}

func (cr *cornerResolver) flush() {
	if !cr.cur.empty() {
		cr.runs = append(cr.runs, cr.cur)
	}
	cr.cur = offsetPiece{}
	cr.joinable = false
}

// add incorporates the fragment of source segment i.
func (cr *cornerResolver) add(i int, frag fragment) {
	if len(frag.pieces) == 0 {
		cr.flush()
		return
	}
	for j, piece := range frag.pieces {
		switch {
		case j == 0 && frag.joinStart && cr.joinable && !cr.cur.empty():
			cr.join(&cr.cur, i, piece)
		default:
			cr.flush()
			if i == 0 && j == 0 && frag.joinStart {
				cr.openedAtStart = true
			}
			cr.cur = piece
		}
	}
	cr.joinable = frag.joinEnd
}

// finish closes the offset of a closed source subpath and returns the runs
// as subpaths together with the records of their segments.
func (cr *cornerResolver) finish() ([]Subpath, [][]OffsetRecord) {
	last := cr.cur
	closed := cr.source.Closed && cr.openedAtStart && cr.joinable && !last.empty()
	cr.cur = offsetPiece{}

	var runs []offsetPiece
	switch {
	case closed && len(cr.runs) == 0:
		// A single run around the whole subpath.
		t1, t2 := cr.vertexTangents(0)
		v := cr.source.Segments[0].Start()
		c := cr.connect(last.end(), last.start(), v, t1, t2, Param{cr.index, 0, 0})
		if c.empty() {
			last.segs[0] = last.segs[0].WithStart(last.end())
		}
		last.extend(c)
		return []Subpath{{Segments: last.segs, Closed: true}}, [][]OffsetRecord{last.recs}
	case closed:
		// The last run continues into the first one.
		cr.join(&last, 0, cr.runs[0])
		runs = append([]offsetPiece{last}, cr.runs[1:]...)
	default:
		runs = cr.runs
		if !last.empty() {
			runs = append(runs, last)
		}
	}
	sps := make([]Subpath, len(runs))
	recs := make([][]OffsetRecord, len(runs))
	for i, r := range runs {
		sps[i] = Subpath{Segments: r.segs}
		recs[i] = r.recs
	}
	return sps, recs
}
