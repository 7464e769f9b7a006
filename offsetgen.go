package deform

import (
	"fmt"
	"math"
	"slices"
)

// OffsetKind names the source feature that produced a segment of a raw
// offset path.
type OffsetKind int

const (
	// Translated source line.
	LinePiece OffsetKind = iota + 1
	// Fitted offset of a piece of a source cubic.
	CurvePiece
	// Circular arc around a source vertex.
	CornerArc
	// Miter at an outer source vertex.
	CornerMiter
	// Line bridging a small gap between two offset pieces.
	Connector
)

func (k OffsetKind) String() string {
	switch k {
	case LinePiece:
		return "line piece"
	case CurvePiece:
		return "curve piece"
	case CornerArc:
		return "corner arc"
	case CornerMiter:
		return "corner miter"
	case Connector:
		return "connector"
	default:
		return fmt.Sprintf("OffsetKind(%d)", int(k))
	}
}

// OffsetRecord maps a segment of a raw offset path back to the part of the
// source path it was derived from. Corner records have From == To, the
// source vertex.
type OffsetRecord struct {
	Kind OffsetKind
	From Param
	To   Param
}

// offsetPiece is a connected run of offset segments.
type offsetPiece struct {
	segs []Segment
	recs []OffsetRecord
}

func (p *offsetPiece) add(seg Segment, rec OffsetRecord) {
	p.segs = append(p.segs, seg)
	p.recs = append(p.recs, rec)
}

func (p *offsetPiece) extend(o offsetPiece) {
	p.segs = append(p.segs, o.segs...)
	p.recs = append(p.recs, o.recs...)
}

func (p *offsetPiece) empty() bool { return len(p.segs) == 0 }

func (p *offsetPiece) start() Point { return p.segs[0].Start() }
func (p *offsetPiece) end() Point   { return p.segs[len(p.segs)-1].End() }

// fragment is the offset of a single source segment. Consecutive pieces are
// separated by gaps or cusps.
type fragment struct {
	pieces []offsetPiece
	// Whether the first piece starts at the start of the source segment,
	// respectively the last one ends at its end.
	joinStart bool
	joinEnd   bool
}

const (
	maxOffsetDepth = 50
	// Number of consecutive pieces accepted without verified control
	// points after which offsetting gives up.
	maxSolverFailures = 3
)

// offsetGen offsets the segments of a source path one by one.
type offsetGen struct {
	d    float64
	opts OffsetOptions
	// Consecutive accepted pieces for which no control points could be
	// found and whose chord/3 fallback missed the exact offset.
	failures int
	// Replaces SolveControlDists if set.
	solve func(a, b Point, ta, tb Vec2, ka, kb Curvature, eps float64) []ControlDists
}

func (g *offsetGen) controlDists(a, b Point, ta, tb Vec2, ka, kb Curvature) []ControlDists {
	if g.solve != nil {
		return g.solve(a, b, ta, tb, ka, kb, g.opts.Epsilon)
	}
	return SolveControlDists(a, b, ta, tb, ka, kb, false, g.opts.Epsilon)
}

// settle updates the failure count for an accepted piece. Pieces that get
// bisected don't count either way.
func (g *offsetGen) settle(verified bool, rec OffsetRecord) error {
	if verified {
		g.failures = 0
		return nil
	}
	g.failures++
	if g.failures >= maxSolverFailures {
		return geometryError("offset", rec.From, ErrUnsolvableGeometry,
			"no control points for %d consecutive pieces", g.failures)
	}
	tracer().Debugf("offset: accepting unverified chord/3 piece %s..%s", rec.From, rec.To)
	return nil
}

func (g *offsetGen) offsetSegment(seg Segment, at Param) (fragment, error) {
	switch seg.Kind {
	case LineKind:
		n := seg.Tangent(0).Normal().Mul(g.d)
		var piece offsetPiece
		piece.add(seg.Translate(n), OffsetRecord{
			Kind: LinePiece,
			From: at,
			To:   Param{at.Subpath, at.Segment, 1},
		})
		return fragment{pieces: []offsetPiece{piece}, joinStart: true, joinEnd: true}, nil
	case CubicKind:
		return g.offsetCubic(seg.Cubic(), at)
	default:
		panic("unreachable")
	}
}

// boundary is a parameter at which a cubic is split before offsetting.
type boundary struct {
	t    float64
	cusp bool
}

// singularities returns the parameters in (0, 1) at which c has a cusp or
// at which 1−d·κ changes sign.
func (g *offsetGen) singularities(c CubicBez) []boundary {
	eps := g.opts.Epsilon
	var out []boundary
	for _, t := range c.Cusps(eps) {
		out = append(out, boundary{t, true})
	}
	gfn := func(t float64) float64 {
		k := c.Curvature(t)
		if k.IsInf() {
			return math.NaN()
		}
		return 1 - g.d*float64(k)
	}
	n := max(g.opts.CurvatureSamples, 2)
	prevT, prevG := 0.0, gfn(0)
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n-1)
		gt := gfn(t)
		if !math.IsNaN(prevG) && !math.IsNaN(gt) && (prevG < 0) != (gt < 0) {
			r := findRoot(gfn, prevT, t, prevG, gt, eps)
			if r > eps && r < 1-eps {
				out = append(out, boundary{r, false})
			}
		}
		prevT, prevG = t, gt
	}
	slices.SortFunc(out, func(a, b boundary) int {
		switch {
		case a.t < b.t:
			return -1
		case a.t > b.t:
			return 1
		default:
			return 0
		}
	})
	// Merge boundaries closer than eps, keeping cusps.
	merged := out[:0]
	for _, b := range out {
		if len(merged) > 0 && b.t-merged[len(merged)-1].t < eps {
			merged[len(merged)-1].cusp = merged[len(merged)-1].cusp || b.cusp
			continue
		}
		merged = append(merged, b)
	}
	return merged
}

func (g *offsetGen) offsetCubic(c CubicBez, at Param) (fragment, error) {
	eps := g.opts.Epsilon
	bounds := append([]boundary{{0, false}}, g.singularities(c)...)
	bounds = append(bounds, boundary{1, false})

	var (
		frag fragment
		cur  offsetPiece
	)
	flush := func() {
		if !cur.empty() {
			frag.pieces = append(frag.pieces, cur)
		}
		cur = offsetPiece{}
	}
	for i := 1; i < len(bounds); i++ {
		b0, b1 := bounds[i-1], bounds[i]
		if b1.t-b0.t < eps {
			continue
		}
		if b0.cusp {
			flush()
		}
		mid := 0.5 * (b0.t + b1.t)
		k := c.Curvature(mid)
		nice := !k.IsInf() && 1-g.d*float64(k) > 0
		if !nice {
			tracer().Debugf("offset: gap over %s..%s, curvature %g exceeds 1/%g",
				Param{at.Subpath, at.Segment, b0.t}, Param{at.Subpath, at.Segment, b1.t}, k, g.d)
			flush()
			if i == 1 {
				frag.joinStart = false
			}
			continue
		}
		if i == 1 {
			frag.joinStart = true
		}
		if i == len(bounds)-1 {
			frag.joinEnd = true
		}
		piece, err := g.offsetNice(c, at, b0, b1, 0)
		if err != nil {
			return fragment{}, err
		}
		cur.extend(piece)
	}
	flush()
	return frag, nil
}

// tangentAt returns the tangent of c at a piece boundary, approaching a cusp
// from the inside of the piece.
func tangentAt(c CubicBez, b boundary, after bool, eps float64) Vec2 {
	if b.cusp {
		h := eps
		if !after {
			h = -h
		}
		return c.Deriv(b.t + h).Normalize()
	}
	return c.Seg().tangentSide(b.t, after, eps)
}

// offsetCurvature returns the curvature of the offset of a curve with
// curvature k.
func offsetCurvature(k Curvature, d float64) Curvature {
	if k.IsInf() {
		return Curvature(-1 / d)
	}
	den := 1 - d*float64(k)
	if math.Abs(den) < 1e-12 {
		return Infinite
	}
	return Curvature(float64(k) / den)
}

// offsetNice offsets a piece of c on which 1−d·κ is positive. The result is
// checked against the exact offset and refined by bisection.
func (g *offsetGen) offsetNice(c CubicBez, at Param, b0, b1 boundary, depth int) (offsetPiece, error) {
	if depth > maxOffsetDepth {
		return offsetPiece{}, geometryError("offset", Param{at.Subpath, at.Segment, b0.t}, errInternal,
			"offset recursion exceeded %d levels", maxOffsetDepth)
	}
	eps := g.opts.Epsilon
	ta := tangentAt(c, b0, true, eps)
	tb := tangentAt(c, b1, false, eps)
	a := c.Eval(b0.t).Translate(ta.Normal().Mul(g.d))
	b := c.Eval(b1.t).Translate(tb.Normal().Mul(g.d))
	rec := OffsetRecord{
		Kind: CurvePiece,
		From: Param{at.Subpath, at.Segment, b0.t},
		To:   Param{at.Subpath, at.Segment, b1.t},
	}

	var piece offsetPiece
	if a.Near(b, eps) {
		// The offset of this piece is shorter than the tolerance.
		return piece, nil
	}

	ka := offsetCurvature(c.Curvature(b0.t), g.d)
	kb := offsetCurvature(c.Curvature(b1.t), g.d)
	if b0.cusp {
		ka = offsetCurvature(Infinite, g.d)
	}
	if b1.cusp {
		kb = offsetCurvature(Infinite, g.d)
	}
	var cand Segment
	solved := false
	if dists := g.controlDists(a, b, ta, tb, ka, kb); len(dists) > 0 {
		solved = true
		cand = cubicFromDists(a, b, ta, tb, dists[0])
	} else {
		tracer().Debugf("offset: no control points for %s..%s, using chord/3", rec.From, rec.To)
		third := b.Sub(a).Hypot() / 3
		cand = cubicFromDists(a, b, ta, tb, ControlDists{third, third})
	}

	good := g.fits(c, b0.t, b1.t, cand)
	if good || b1.t-b0.t < eps {
		if err := g.settle(solved || good, rec); err != nil {
			return piece, err
		}
		piece.add(cand, rec)
		return piece, nil
	}
	mid := boundary{t: 0.5 * (b0.t + b1.t)}
	left, err := g.offsetNice(c, at, b0, mid, depth+1)
	if err != nil {
		return piece, err
	}
	right, err := g.offsetNice(c, at, mid, b1, depth+1)
	if err != nil {
		return piece, err
	}
	piece.extend(left)
	piece.extend(right)
	return piece, nil
}

// fits reports whether cand stays within the allowed error of the exact
// offset of c between t0 and t1, measured along the normals of c at the
// check parameters.
func (g *offsetGen) fits(c CubicBez, t0, t1 float64, cand Segment) bool {
	ad := math.Abs(g.d)
	tol := ad * g.opts.RelativeError
	for _, s := range g.opts.CheckParams {
		t := t0 + s*(t1-t0)
		p := c.Eval(t)
		n := c.Seg().Tangent(t).Normal()
		if g.d < 0 {
			n = n.Negate()
		}
		ray := Line{p, p.Translate(n.Mul(2 * ad))}
		xs, nx := cand.IntersectLine(ray)
		best := math.Inf(1)
		for _, x := range xs[:nx] {
			best = min(best, math.Abs(x.LineT*2*ad-ad))
		}
		if best > tol {
			return false
		}
	}
	return true
}
