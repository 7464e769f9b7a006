package deform

import "math"

// WrapCycloid wraps a cycloid of the given radius around p, so that the
// result looks like a spring with p as its axis, seen at opts.TurnAngle. A
// turn angle of 0 shows a sine wave, π/2 a chain of loops.
//
// The first opts.SkipFirst and the last opts.SkipLast units of arc length of
// every subpath are kept as is. Subpaths that are too short to hold the
// cycloid are returned unchanged.
func WrapCycloid(p Path, radius float64, opts CycloidOptions) (Path, error) {
	if opts.HalfLoops < 1 || opts.CurvesPerHalfLoop < 1 {
		return nil, geometryError("wrap", Param{}, ErrDegenerateInput,
			"%d half loops with %d curves each", opts.HalfLoops, opts.CurvesPerHalfLoop)
	}
	radius = math.Abs(radius)
	if radius <= opts.Epsilon {
		return p.Clone(), nil
	}
	out := make(Path, 0, len(p))
	for i, sp := range p {
		if len(sp.Segments) == 0 {
			continue
		}
		w := &cycloidWrapper{radius: radius, opts: opts, acc: accuracy(opts.Epsilon), sp: sp, index: i}
		out = append(out, w.wrap())
	}
	return out, nil
}

type cycloidWrapper struct {
	radius float64
	opts   CycloidOptions
	acc    float64
	sp     Subpath
	index  int
}

// cycloidPoint is an on-curve point of the cycloid with its two control
// points.
type cycloidPoint struct {
	pre, on, post Point
}

func (w *cycloidWrapper) wrap() Subpath {
	o := w.opts
	r := w.radius
	sinT := math.Sin(o.TurnAngle)
	length := w.sp.Arclen(w.acc)
	first, last := math.Abs(o.SkipFirst), math.Abs(o.SkipLast)
	if length <= first+last+2*r*sinT {
		tracer().Infof("wrap: subpath %d is too short for a cycloid of radius %g (%g ≤ %g)",
			w.index, r, length, first+last+2*r*sinT)
		return Subpath{Segments: append([]Segment(nil), w.sp.Segments...), Closed: w.sp.Closed}
	}

	n := o.HalfLoops * o.CurvesPerHalfLoop
	phiMax := float64(o.HalfLoops) * math.Pi
	dphi := math.Pi / float64(o.CurvesPerHalfLoop)
	// The projected loops overshoot by r·sinT·(1−cos φ); the drift along
	// the path makes up for the rest so that the last point lands at
	// length−last.
	drift := (length - first - last - r*sinT*(1-math.Cos(phiMax))) / phiMax
	arm := 4 * r * (1 - math.Cos(dphi/2)) / (3 * math.Sin(dphi/2))
	sign := 1.0
	if o.Sign < 0 {
		sign = -1
	}

	pts := make([]cycloidPoint, n+1)
	for i := range pts {
		phi := float64(i) * dphi
		sin, cos := math.Sincos(phi)
		z := first + r*sinT*(1-cos) + drift*phi
		y := sign * r * sin
		// Derivative of the projected curve with respect to φ.
		tan := Vec(r*sinT*sin+drift, sign*r*cos)

		seg, t := w.at(z)
		frame := Frame(seg.Eval(t), seg.Tangent(t))
		l := arm / r
		if k := seg.Curvature(t); !k.IsInf() {
			// Loops on the inside of a bend get shorter arms.
			l *= math.Abs(1 - float64(k)*y)
		}
		base := Pt(0, y)
		pts[i] = cycloidPoint{
			pre:  base.Translate(tan.Mul(-l)).Transform(frame),
			on:   base.Transform(frame),
			post: base.Translate(tan.Mul(l)).Transform(frame),
		}
	}

	var segs []Segment
	push := func(s []Segment) {
		for _, seg := range s {
			if k := len(segs); k > 0 {
				seg = seg.WithStart(segs[k-1].End())
			}
			segs = append(segs, seg)
		}
	}
	if first > w.opts.Epsilon {
		push(w.sp.SliceArclen(0, first, w.acc))
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		push([]Segment{CubicSeg(a.on, a.post, b.pre, b.on)})
	}
	if last > w.opts.Epsilon {
		push(w.sp.SliceArclen(length-last, length, w.acc))
	}

	out := Subpath{Segments: segs}
	if w.sp.Closed && segs[len(segs)-1].End().Near(segs[0].Start(), w.opts.Epsilon) {
		segs[len(segs)-1] = segs[len(segs)-1].WithEnd(segs[0].Start())
		out.Closed = true
	}
	return out
}

// at returns the segment and parameter at arc length s.
func (w *cycloidWrapper) at(s float64) (Segment, float64) {
	i, t := w.sp.AtArclen(s, w.acc)
	return w.sp.Segments[i], t
}
