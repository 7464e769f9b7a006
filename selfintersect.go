package deform

import (
	"errors"
	"fmt"
	"math"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/sets/hashset"
	"github.com/jbeda/geom"
)

// IntersectionPair is a self-intersection of an offset path. Walking along
// the path and arriving at Entry, the path continues at Exit; the loop in
// between is dropped. The reverse jump, from Exit to Entry, is never taken.
type IntersectionPair struct {
	Entry Param
	Exit  Param
	Point Point
}

type eventKind int

const (
	entryEvent eventKind = iota + 1
	exitEvent
	sourceEvent
)

func (k eventKind) String() string {
	switch k {
	case entryEvent:
		return "entry"
	case exitEvent:
		return "exit"
	case sourceEvent:
		return "source"
	default:
		return fmt.Sprintf("eventKind(%d)", int(k))
	}
}

type event struct {
	kind eventKind
	// The other end of the pair, for entries and exits.
	partner Param
}

// resolver removes the loops from a raw offset path.
type resolver struct {
	raw     Path
	records [][]OffsetRecord
	source  Path
	d       float64
	opts    OffsetOptions

	// Events ordered by parameter. At most one event per parameter.
	events *treemap.Map
	// Parameters consumed by successful walks.
	resolved *hashset.Set
}

func paramComparator(a, b any) int {
	return a.(Param).Compare(b.(Param))
}

// resolveSelfIntersections returns the parts of raw that lie on the
// boundary of the region swept by a disc of radius |d| moving along source.
func resolveSelfIntersections(raw Path, records [][]OffsetRecord, source Path, d float64, opts OffsetOptions) Path {
	r := &resolver{
		raw:      raw,
		records:  records,
		source:   source,
		d:        d,
		opts:     opts,
		events:   treemap.NewWith(paramComparator),
		resolved: hashset.New(),
	}
	for _, pair := range r.pairs() {
		r.addPair(pair)
	}
	for _, at := range r.sourceCrossings() {
		r.addSource(at)
	}
	return r.walkAll()
}

// addPair adds the entry and exit events of pair. A pair that shares a
// parameter with an earlier pair is dropped as a whole.
func (r *resolver) addPair(pair IntersectionPair) bool {
	for _, at := range [2]Param{pair.Entry, pair.Exit} {
		if ev, ok := r.eventAt(at); ok {
			tracer().Infof("offset: dropping crossing at %s, %s already has an %s event",
				pair.Point, at, ev.kind)
			return false
		}
	}
	r.events.Put(pair.Entry, &event{kind: entryEvent, partner: pair.Exit})
	r.events.Put(pair.Exit, &event{kind: exitEvent, partner: pair.Entry})
	return true
}

// addSource adds a source crossing unless another event sits at the same
// parameter.
func (r *resolver) addSource(at Param) bool {
	if ev, ok := r.eventAt(at); ok {
		tracer().Debugf("offset: source crossing at %s coincides with an %s event", at, ev.kind)
		return false
	}
	r.events.Put(at, &event{kind: sourceEvent})
	return true
}

// params returns the event parameters in order.
func (r *resolver) params() []Param {
	out := make([]Param, 0, r.events.Size())
	r.events.Each(func(k, _ any) {
		out = append(out, k.(Param))
	})
	return out
}

// adjacent reports whether the segments at a and b share an end point.
func (r *resolver) adjacent(a, b Param) bool {
	if a.Subpath != b.Subpath {
		return false
	}
	sp := r.raw[a.Subpath]
	n := len(sp.Segments)
	i, j := min(a.Segment, b.Segment), max(a.Segment, b.Segment)
	return j == i+1 || (sp.Closed && i == 0 && j == n-1)
}

func (r *resolver) record(at Param) OffsetRecord {
	if at.Subpath < len(r.records) && at.Segment < len(r.records[at.Subpath]) {
		return r.records[at.Subpath][at.Segment]
	}
	return OffsetRecord{}
}

// rawIntersections finds all crossings of the raw path with itself, in
// canonical form and with the smaller parameter first.
func (r *resolver) rawIntersections() []IntersectionPair {
	eps := r.opts.Epsilon
	type indexed struct {
		at  Param
		seg Segment
	}
	var segs []indexed
	for at, seg := range r.raw.Segments() {
		segs = append(segs, indexed{at, seg})
	}
	var out []IntersectionPair
	for i := range segs {
		for j := i + 1; j < len(segs); j++ {
			a, b := segs[i], segs[j]
			adj := r.adjacent(a.at, b.at)
			for _, x := range IntersectSegments(a.seg, b.seg, eps) {
				if adj && (x.Point.Near(a.seg.End(), 10*eps) || x.Point.Near(a.seg.Start(), 10*eps)) {
					continue
				}
				p := r.raw.Canonical(Param{a.at.Subpath, a.at.Segment, x.T0}, eps)
				q := r.raw.Canonical(Param{b.at.Subpath, b.at.Segment, x.T1}, eps)
				if r.raw.ParamsEqual(p, q, eps) {
					continue
				}
				if q.Less(p) {
					p, q = q, p
				}
				dup := false
				for _, o := range out {
					if r.raw.ParamsEqual(o.Entry, p, eps) && r.raw.ParamsEqual(o.Exit, q, eps) {
						dup = true
						break
					}
				}
				if !dup {
					out = append(out, IntersectionPair{Entry: p, Exit: q, Point: x.Point})
				}
			}
		}
	}
	return out
}

// classify orients a crossing of the raw path so that jumping from Entry to
// Exit keeps the source on the side given by the sign of d.
//
// Branches whose tangents diverge by less than Epsilon over a length of |d|
// are ordered by curvature instead.
func (r *resolver) classify(x IntersectionPair) (IntersectionPair, error) {
	eps := r.opts.Epsilon
	p, q := x.Entry, x.Exit
	tp, tq := r.raw.Tangent(p), r.raw.Tangent(q)
	cross := r.d * tp.Cross(tq)
	switch {
	case cross > eps:
		return IntersectionPair{Entry: p, Exit: q, Point: x.Point}, nil
	case cross < -eps:
		return IntersectionPair{Entry: q, Exit: p, Point: x.Point}, nil
	}
	if tp.Dot(tq) < 0 {
		return x, geometryError("offset", p, ErrTopologyInconsistency,
			"anti-parallel branches touch at %s", x.Point)
	}
	kp, kq := r.raw.Curvature(p), r.raw.Curvature(q)
	if kp.IsInf() || kq.IsInf() {
		return x, geometryError("offset", p, ErrTopologyInconsistency,
			"branches meet at a cusp at %s", x.Point)
	}
	// Same for the gap of the osculating circles.
	dk := r.d * math.Abs(r.d) * float64(kq-kp)
	switch {
	case dk > eps:
		return IntersectionPair{Entry: p, Exit: q, Point: x.Point}, nil
	case dk < -eps:
		return IntersectionPair{Entry: q, Exit: p, Point: x.Point}, nil
	default:
		return x, geometryError("offset", p, ErrTopologyInconsistency,
			"branches with equal tangents and curvatures meet at %s", x.Point)
	}
}

// sourceDistance returns the distance of pt to the source path. Source
// segments farther than limit are skipped.
func (r *resolver) sourceDistance(pt Point, limit float64) float64 {
	acc := accuracy(r.opts.Epsilon)
	box := geom.Rect{Min: pt.coord(), Max: pt.coord()}
	best := math.Inf(1)
	for _, seg := range r.source.Segments() {
		if !rectsOverlap(seg.Bounds(), box, limit) {
			continue
		}
		d2, _ := seg.Nearest(pt, acc)
		best = min(best, math.Sqrt(d2))
	}
	return best
}

// forbidden reports whether pt lies strictly between the source and its
// offset.
func (r *resolver) forbidden(pt Point) bool {
	ad := math.Abs(r.d)
	return r.sourceDistance(pt, ad) < ad*(1-r.opts.RelativeError)
}

// pairs returns the classified crossings that lie outside of the forbidden
// zone.
func (r *resolver) pairs() []IntersectionPair {
	var out []IntersectionPair
	for _, x := range r.rawIntersections() {
		pair, err := r.classify(x)
		if err != nil {
			if errors.Is(err, ErrTopologyInconsistency) {
				tracer().Infof("offset: skipping crossing: %v", err)
			}
			continue
		}
		if r.forbidden(pair.Point) {
			tracer().Debugf("offset: crossing of %s and %s at %s is too close to the source",
				r.record(pair.Entry).Kind, r.record(pair.Exit).Kind, pair.Point)
			continue
		}
		out = append(out, pair)
	}
	return out
}

// sourceCrossings returns the parameters at which the raw path crosses the
// source path.
func (r *resolver) sourceCrossings() []Param {
	eps := r.opts.Epsilon
	var out []Param
	for at, seg := range r.raw.Segments() {
		for _, src := range r.source.Segments() {
			for _, x := range IntersectSegments(seg, src, eps) {
				out = append(out, r.raw.Canonical(Param{at.Subpath, at.Segment, x.T0}, eps))
			}
		}
	}
	return out
}

func (r *resolver) eventAt(at Param) (*event, bool) {
	v, ok := r.events.Get(at)
	if !ok {
		return nil, false
	}
	return v.(*event), true
}

// nextEvent returns the first event after cur on the same subpath. Closed
// subpaths wrap around. On open subpaths, the end of the subpath is returned
// if no event follows.
func (r *resolver) nextEvent(cur Param) (Param, bool) {
	eps := r.opts.Epsilon
	from := cur
	for {
		k, _ := r.events.Ceiling(from)
		if k == nil {
			break
		}
		at := k.(Param)
		if at.Subpath != cur.Subpath {
			break
		}
		if at.Compare(cur) > 0 && !r.raw.ParamsEqual(at, cur, eps) {
			return at, true
		}
		from = Param{at.Subpath, at.Segment, math.Nextafter(at.T, math.Inf(1))}
	}
	if !r.raw[cur.Subpath].Closed {
		return r.raw.Finish(cur.Subpath), false
	}
	if k, _ := r.events.Ceiling(Param{Subpath: cur.Subpath}); k != nil && k.(Param).Subpath == cur.Subpath {
		return k.(Param), true
	}
	// Nothing to wrap to; go around once.
	return cur, true
}

type span struct {
	from, to Param
}

// walk follows the raw path from start, taking every jump it meets. It
// returns the traversed spans and whether the result is closed, or ok ==
// false if the walk hit something that makes it invalid.
func (r *resolver) walk(start Param) (spans []span, closed bool, touched []Param, ok bool) {
	eps := r.opts.Epsilon
	limit := 2*r.events.Size() + 4
	cur := start
	touched = append(touched, start)
	for range limit {
		next, isEvent := r.nextEvent(cur)
		piece := span{cur, next}
		if r.spanForbidden(piece) {
			return nil, false, nil, false
		}
		spans = append(spans, piece)
		if !isEvent {
			if r.resolved.Contains(next) {
				return nil, false, nil, false
			}
			touched = append(touched, next)
			return spans, false, touched, true
		}
		if r.raw.ParamsEqual(next, start, eps) {
			return spans, true, touched, true
		}
		ev, _ := r.eventAt(next)
		if ev.kind != entryEvent || r.resolved.Contains(next) {
			return nil, false, nil, false
		}
		touched = append(touched, next, ev.partner)
		cur = ev.partner
		if r.raw.ParamsEqual(cur, start, eps) {
			return spans, true, touched, true
		}
		if r.resolved.Contains(cur) {
			return nil, false, nil, false
		}
	}
	tracer().Debugf("offset: walk from %s doesn't terminate", start)
	return nil, false, nil, false
}

// spanForbidden checks the middle of a span against the forbidden zone.
func (r *resolver) spanForbidden(s span) bool {
	segs := r.raw.Slice(s.from, s.to, r.opts.Epsilon)
	if len(segs) == 0 {
		return false
	}
	return r.forbidden(segs[len(segs)/2].Eval(0.5))
}

func (r *resolver) walkAll() Path {
	var starts []Param
	for i, sp := range r.raw {
		if !sp.Closed {
			starts = append(starts, r.raw.Begin(i))
		}
	}
	r.events.Each(func(k, v any) {
		if v.(*event).kind == exitEvent {
			starts = append(starts, k.(Param))
		}
	})

	var out Path
	for _, start := range starts {
		if r.resolved.Contains(start) {
			continue
		}
		spans, closed, touched, ok := r.walk(start)
		if !ok {
			tracer().Debugf("offset: discarding walk from %s", start)
			continue
		}
		for _, at := range touched {
			r.resolved.Add(at)
		}
		if sp, ok := r.assemble(spans, closed); ok {
			out = append(out, sp)
		}
	}

	// Closed subpaths without any events.
	hasEvents := make(map[int]bool)
	for _, at := range r.params() {
		hasEvents[at.Subpath] = true
	}
	for i, sp := range r.raw {
		if !sp.Closed || hasEvents[i] || len(sp.Segments) == 0 {
			continue
		}
		if r.forbidden(sp.Segments[0].Eval(0.5)) {
			tracer().Debugf("offset: dropping closed subpath %d inside the forbidden zone", i)
			continue
		}
		out = append(out, Subpath{Segments: append([]Segment(nil), sp.Segments...), Closed: true})
	}
	return out
}

// assemble concatenates the raw path along spans.
func (r *resolver) assemble(spans []span, closed bool) (Subpath, bool) {
	eps := r.opts.Epsilon
	var segs []Segment
	for _, s := range spans {
		for _, seg := range r.raw.Slice(s.from, s.to, eps) {
			if len(segs) > 0 {
				seg = seg.WithStart(segs[len(segs)-1].End())
			}
			if seg.IsDegenerate(eps) {
				continue
			}
			segs = append(segs, seg)
		}
	}
	if len(segs) == 0 {
		return Subpath{}, false
	}
	if closed {
		first, last := segs[0].Start(), segs[len(segs)-1].End()
		if last.Near(first, eps) {
			segs[len(segs)-1] = segs[len(segs)-1].WithEnd(first)
		} else {
			segs = append(segs, LineSeg(last, first))
		}
	}
	return Subpath{Segments: segs, Closed: closed}, true
}
