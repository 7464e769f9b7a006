package deform

// Offset returns the [parallel curve] of p at the given distance. Positive
// distances offset to the left of the direction of travel, negative ones to
// the right.
//
// Every segment is offset on its own; lines are translated and cubics are
// approximated by cubics within opts.RelativeError·|distance|. Where a cubic
// curves more tightly than 1/distance, its offset has a gap and the result is
// split into separate subpaths. Corners are joined with circular arcs, or
// with miters if opts.SharpOuterCorners is set. Finally, the loops that form
// at inner corners and over-curved sections are removed, unless
// opts.ResolveSelfIntersections is unset.
//
// An offset of zero returns a copy of p.
//
// [parallel curve]: https://en.wikipedia.org/wiki/Parallel_curve
func Offset(p Path, distance float64, opts OffsetOptions) (Path, error) {
	if distance == 0 {
		return p.Clone(), nil
	}
	opts = opts.resolved()
	source, err := cleanPath(p, "offset", opts.Epsilon)
	if err != nil {
		return nil, err
	}
	raw, records, err := rawOffset(source, distance, opts)
	if err != nil {
		return nil, err
	}
	if !opts.ResolveSelfIntersections {
		return raw, nil
	}
	return resolveSelfIntersections(raw, records, source, distance, opts), nil
}

// RawOffset returns the offset of p before self-intersections are removed,
// together with a record of the source of every segment of the result.
func RawOffset(p Path, distance float64, opts OffsetOptions) (Path, [][]OffsetRecord, error) {
	opts = opts.resolved()
	source, err := cleanPath(p, "offset", opts.Epsilon)
	if err != nil {
		return nil, nil, err
	}
	if distance == 0 {
		return source, nil, nil
	}
	return rawOffset(source, distance, opts)
}

// cleanPath removes degenerate segments and empty subpaths.
func cleanPath(p Path, op string, eps float64) (Path, error) {
	var out Path
	for _, sp := range p {
		sp = sp.dropSegments(func(seg Segment) bool { return seg.IsDegenerate(eps) })
		if len(sp.Segments) > 0 {
			out = append(out, sp)
		}
	}
	if len(out) == 0 {
		return nil, geometryError(op, Param{}, ErrDegenerateInput, "no segments longer than %g", eps)
	}
	return out, nil
}

func rawOffset(source Path, d float64, opts OffsetOptions) (Path, [][]OffsetRecord, error) {
	gen := &offsetGen{d: d, opts: opts}
	var (
		out     Path
		records [][]OffsetRecord
	)
	for i, sp := range source {
		cr := &cornerResolver{d: d, opts: opts, source: sp, index: i}
		for j, seg := range sp.Segments {
			frag, err := gen.offsetSegment(seg, Param{i, j, 0})
			if err != nil {
				return nil, nil, err
			}
			cr.add(j, frag)
		}
		sps, recs := cr.finish()
		out = append(out, sps...)
		records = append(records, recs...)
	}
	tracer().Debugf("offset: %d source segments give %d raw segments in %d subpaths at distance %g",
		source.NumSegments(), out.NumSegments(), len(out), d)
	if len(out) == 0 {
		tracer().Infof("offset: nothing left at distance %g", d)
	}
	return out, records, nil
}
