package deform

import (
	"errors"
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertOnCircle checks that points sampled from p lie within tol of the
// circle around c with radius r.
func assertOnCircle(t *testing.T, p Path, c Point, r, tol float64) {
	t.Helper()
	for at, seg := range p.Segments() {
		for _, ts := range []float64{0, 0.25, 0.5, 0.75, 1} {
			if d := seg.Eval(ts).Distance(c); math.Abs(d-r) > tol {
				t.Errorf("point at %s@%g is %g from the center, want %g", at, ts, d, r)
			}
		}
	}
}

func TestOffsetZero(t *testing.T) {
	p := append(square(), Circle(Pt(20, 20), 3)...)
	got, err := Offset(p, 0, DefaultOffsetOptions)
	require.NoError(t, err)
	diff(t, p, got)
}

func TestOffsetLine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deform")
	defer teardown()

	p := Polyline(false, Pt(0, 0), Pt(10, 0))
	got, err := Offset(p, 2, DefaultOffsetOptions)
	require.NoError(t, err)
	diff(t, Polyline(false, Pt(0, 2), Pt(10, 2)), got)

	got, err = Offset(p, -2, DefaultOffsetOptions)
	require.NoError(t, err)
	diff(t, Polyline(false, Pt(0, -2), Pt(10, -2)), got)
}

func TestOffsetDegenerate(t *testing.T) {
	p := Path{{Segments: []Segment{LineSeg(Pt(1, 1), Pt(1, 1+1e-7))}}}
	_, err := Offset(p, 1, DefaultOffsetOptions)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDegenerateInput))
	var gerr *GeometryError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "offset", gerr.Op)
}

func TestOffsetOuterCorner(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deform")
	defer teardown()

	p := Polyline(false, Pt(0, 0), Pt(10, 0), Pt(10, 10))
	t.Run("miter", func(t *testing.T) {
		got, err := Offset(p, -1, DefaultOffsetOptions.WithSharpOuterCorners(true))
		require.NoError(t, err)
		want := Polyline(false, Pt(0, -1), Pt(10, -1), Pt(11, -1), Pt(11, 0), Pt(11, 10))
		diff(t, want, got)
	})
	t.Run("arc", func(t *testing.T) {
		got, err := Offset(p, -1, DefaultOffsetOptions)
		require.NoError(t, err)
		require.Len(t, got, 1)
		segs := got[0].Segments
		require.Greater(t, len(segs), 2)
		diff(t, LineSeg(Pt(0, -1), Pt(10, -1)), segs[0])
		diff(t, LineSeg(Pt(11, 0), Pt(11, 10)), segs[len(segs)-1])
		arc := Path{{Segments: segs[1 : len(segs)-1]}}
		for _, seg := range arc[0].Segments {
			assert.Equal(t, CubicKind, seg.Kind)
		}
		assertOnCircle(t, arc, Pt(10, 0), 1, 1e-4)
	})
}

func TestOffsetInnerCorner(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deform")
	defer teardown()

	p := Polyline(false, Pt(0, 0), Pt(10, 0), Pt(10, 10))
	raw, records, err := RawOffset(p, 1, DefaultOffsetOptions)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	// The inner corner produces a loop.
	kinds := map[OffsetKind]int{}
	for _, r := range records[0] {
		kinds[r.Kind]++
	}
	assert.Equal(t, 2, kinds[LinePiece])
	assert.Positive(t, kinds[CornerArc])

	got, err := Offset(p, 1, DefaultOffsetOptions)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Segments, 2)
	assert.False(t, got[0].Closed)
	for i, want := range []Segment{LineSeg(Pt(0, 1), Pt(9, 1)), LineSeg(Pt(9, 1), Pt(9, 10))} {
		seg := got[0].Segments[i]
		assert.Equal(t, LineKind, seg.Kind)
		assert.InDelta(t, want.P0.X, seg.P0.X, 1e-6)
		assert.InDelta(t, want.P0.Y, seg.P0.Y, 1e-6)
		assert.InDelta(t, want.P1.X, seg.P1.X, 1e-6)
		assert.InDelta(t, want.P1.Y, seg.P1.Y, 1e-6)
	}

	unresolved, err := Offset(p, 1, DefaultOffsetOptions.WithResolveSelfIntersections(false))
	require.NoError(t, err)
	diff(t, raw, unresolved)
}

func TestOffsetSquare(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deform")
	defer teardown()

	acc := 1e-6
	t.Run("outward", func(t *testing.T) {
		got, err := Offset(square(), -1, DefaultOffsetOptions)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].Closed)
		assert.InDelta(t, 40+2*math.Pi, got.Arclen(acc), 1e-3)
	})
	t.Run("inward", func(t *testing.T) {
		got, err := Offset(square(), 1, DefaultOffsetOptions)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].Closed)
		assert.InDelta(t, 32, got.Arclen(acc), 1e-6)
		b := got.Bounds()
		assert.InDelta(t, 1, b.Min.X, 1e-6)
		assert.InDelta(t, 1, b.Min.Y, 1e-6)
		assert.InDelta(t, 9, b.Max.X, 1e-6)
		assert.InDelta(t, 9, b.Max.Y, 1e-6)
	})
	t.Run("round trip", func(t *testing.T) {
		opts := DefaultOffsetOptions.WithSharpOuterCorners(true)
		out, err := Offset(square(), -1, opts)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.InDelta(t, 48, out.Arclen(acc), 1e-9)

		back, err := Offset(out, 1, opts)
		require.NoError(t, err)
		require.Len(t, back, 1)
		assert.True(t, back[0].Closed)
		assert.InDelta(t, 40, back.Arclen(acc), 1e-6)
		b := back.Bounds()
		assert.InDelta(t, 0, b.Min.X, 1e-6)
		assert.InDelta(t, 0, b.Min.Y, 1e-6)
		assert.InDelta(t, 10, b.Max.X, 1e-6)
		assert.InDelta(t, 10, b.Max.Y, 1e-6)
	})
}

func TestOffsetCircle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deform")
	defer teardown()

	c := Pt(3, 4)
	src := Circle(c, 5)
	for _, d := range []float64{-1, 1, 2.5} {
		got, err := Offset(src, d, DefaultOffsetOptions)
		require.NoError(t, err)
		require.Len(t, got, 1, "distance %g", d)
		assert.True(t, got[0].Closed)
		assertOnCircle(t, got, c, 5-d, 0.05*math.Abs(d))
	}

	// Offsetting back restores the original within the tolerance.
	out, err := Offset(src, -1, DefaultOffsetOptions)
	require.NoError(t, err)
	back, err := Offset(out, 1, DefaultOffsetOptions)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assertOnCircle(t, back, c, 5, 0.1)
	assert.InDelta(t, src.Arclen(1e-6), back.Arclen(1e-6), 0.05)
}

func TestOffsetOverCurved(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deform")
	defer teardown()

	// The circle curves more tightly than 1/1.5 everywhere; its inward offset
	// vanishes.
	got, err := Offset(Circle(Pt(0, 0), 1), 1.5, DefaultOffsetOptions)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOffsetFragmentGap(t *testing.T) {
	quarter := Circle(Pt(0, 0), 1)[0].Segments[0]

	g := &offsetGen{d: 2, opts: DefaultOffsetOptions}
	frag, err := g.offsetSegment(quarter, Param{})
	require.NoError(t, err)
	assert.Empty(t, frag.pieces)
	assert.False(t, frag.joinStart)
	assert.False(t, frag.joinEnd)

	g = &offsetGen{d: 0.5, opts: DefaultOffsetOptions}
	frag, err = g.offsetSegment(quarter, Param{})
	require.NoError(t, err)
	require.Len(t, frag.pieces, 1)
	assert.True(t, frag.joinStart)
	assert.True(t, frag.joinEnd)
	for _, rec := range frag.pieces[0].recs {
		assert.Equal(t, CurvePiece, rec.Kind)
	}
	assertOnCircle(t, Path{{Segments: frag.pieces[0].segs}}, Pt(0, 0), 0.5, 0.025)
}

func TestOffsetSingularities(t *testing.T) {
	cusp := CubicBez{Pt(0, 0), Pt(1, 1), Pt(0, 1), Pt(1, 0)}
	g := &offsetGen{d: 0.01, opts: DefaultOffsetOptions}
	var cusps []float64
	for _, b := range g.singularities(cusp) {
		if b.cusp {
			cusps = append(cusps, b.t)
		}
	}
	require.Len(t, cusps, 1)
	assert.InDelta(t, 0.5, cusps[0], 1e-4)

	// A quarter circle of radius 1 has curvature close to 1 everywhere, so
	// 1−d·κ changes sign nowhere for d well away from 1.
	quarter := Circle(Pt(0, 0), 1)[0].Segments[0].Cubic()
	g = &offsetGen{d: 0.5, opts: DefaultOffsetOptions}
	assert.Empty(t, g.singularities(quarter))
}

func TestOffsetCurvature(t *testing.T) {
	assert.InDelta(t, 0.25, float64(offsetCurvature(0.2, 1)), 1e-12)
	assert.InDelta(t, 1.0/6.0, float64(offsetCurvature(0.2, -1)), 1e-12)
	assert.InDelta(t, 1.0/3.0, float64(offsetCurvature(0.2, 2)), 1e-12)
	assert.InDelta(t, -0.5, float64(offsetCurvature(Infinite, 2)), 1e-12)
	assert.True(t, offsetCurvature(0.5, 2).IsInf())
}

func noControlDists(a, b Point, ta, tb Vec2, ka, kb Curvature, eps float64) []ControlDists {
	return nil
}

// assertOffsetDistance checks that points sampled from got lie at distance
// |d| from src, within tol.
func assertOffsetDistance(t *testing.T, got, src Path, d, tol float64) {
	t.Helper()
	acc := accuracy(DefaultEpsilon)
	for at, seg := range got.Segments() {
		for _, ts := range []float64{0, 0.125, 0.25, 0.375, 0.5, 0.625, 0.75, 0.875, 1} {
			pt := seg.Eval(ts)
			best := math.Inf(1)
			for _, s := range src.Segments() {
				d2, _ := s.Nearest(pt, acc)
				best = min(best, math.Sqrt(d2))
			}
			if math.Abs(best-math.Abs(d)) > tol {
				t.Errorf("point %s at %s@%g is %g from the source, want %g", pt, at, ts, best, math.Abs(d))
			}
		}
	}
}

func TestOffsetSmoothCubics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deform")
	defer teardown()

	for _, tt := range []struct {
		name string
		src  Path
		d    float64
	}{
		{"flat start", Path{{Segments: []Segment{CubicSeg(Pt(0, 0), Pt(0.3, 0.05), Pt(2, 3), Pt(4, 0))}}}, 0.3},
		{"s-bend", Path{{Segments: []Segment{CubicSeg(Pt(0, 0), Pt(1, 0.2), Pt(1, 3), Pt(5, 3))}}}, 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Offset(tt.src, tt.d, DefaultOffsetOptions)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assertOffsetDistance(t, got, tt.src, tt.d, 0.075*tt.d)
		})
	}
}

func TestOffsetEllipse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deform")
	defer teardown()

	// The curvature at the ends of the major axis is 10/9, so the inward
	// offset at 2.5 forms swallowtails there.
	src := Circle(Pt(0, 0), 1).Transform(Scale(10, 3))
	const d = 2.5
	raw, _, err := RawOffset(src, d, DefaultOffsetOptions)
	require.NoError(t, err)
	got, err := Offset(src, d, DefaultOffsetOptions)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Closed)
	assert.Less(t, got.Arclen(1e-6), raw.Arclen(1e-6))
	assertOffsetDistance(t, got, src, d, 0.075*d)
}

func TestOffsetQuarterChecks(t *testing.T) {
	// Checking only the middle of each piece lets this curve stray more
	// than 5% from the exact offset.
	src := CubicBez{Pt(0, 0), Pt(1, 1), Pt(2, -1), Pt(3, 0)}
	for _, d := range []float64{1, -1} {
		raw, records, err := RawOffset(Path{{Segments: []Segment{src.Seg()}}}, d, DefaultOffsetOptions)
		require.NoError(t, err)
		for i, recs := range records {
			for j, rec := range recs {
				if rec.Kind != CurvePiece || rec.To.T-rec.From.T < DefaultEpsilon {
					continue
				}
				seg := raw[i].Segments[j]
				for _, s := range []float64{0.25, 0.5, 0.75} {
					ts := rec.From.T + s*(rec.To.T-rec.From.T)
					p := src.Eval(ts)
					n := src.Seg().Tangent(ts).Normal().Mul(2 * d)
					xs, nx := seg.IntersectLine(Line{p, p.Translate(n)})
					require.NotZero(t, nx, "no hit at %g for distance %g", ts, d)
					best := math.Inf(1)
					for _, x := range xs[:nx] {
						best = min(best, math.Abs(x.LineT*2-1))
					}
					assert.LessOrEqual(t, best, 0.05+1e-9, "at %g for distance %g", ts, d)
				}
			}
		}
	}
}

func TestOffsetChordFallback(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deform")
	defer teardown()

	quarter := Circle(Pt(0, 0), 1)[0].Segments[0]
	g := &offsetGen{d: 0.5, opts: DefaultOffsetOptions, solve: noControlDists}
	frag, err := g.offsetSegment(quarter, Param{})
	require.NoError(t, err)
	require.Len(t, frag.pieces, 1)
	assert.Zero(t, g.failures)
	assertOnCircle(t, Path{{Segments: frag.pieces[0].segs}}, Pt(0, 0), 0.5, 0.025)
}

func TestOffsetUnsolvable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deform")
	defer teardown()

	// With a tolerance the chord/3 fallback can't meet, bisection bottoms
	// out at Epsilon and the pieces pile up unverified.
	quarter := Circle(Pt(0, 0), 100)[0].Segments[0]
	opts := DefaultOffsetOptions.WithEpsilon(1e-2).WithRelativeError(1e-9)
	g := &offsetGen{d: 10, opts: opts, solve: noControlDists}
	_, err := g.offsetSegment(quarter, Param{})
	require.ErrorIs(t, err, ErrUnsolvableGeometry)
	var gerr *GeometryError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "offset", gerr.Op)
	assert.Equal(t, maxSolverFailures, g.failures)
}

func TestOffsetDepthLimit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deform")
	defer teardown()

	// A negative error budget is never met and pieces never get narrow
	// enough to be accepted.
	quarter := Circle(Pt(0, 0), 1)[0].Segments[0]
	opts := OffsetOptions{
		RelativeError:    -1,
		CheckParams:      []float64{0.5},
		CurvatureSamples: 11,
		Epsilon:          1e-300,
	}
	g := &offsetGen{d: 0.5, opts: opts, solve: noControlDists}
	_, err := g.offsetSegment(quarter, Param{})
	require.ErrorIs(t, err, errInternal)
	assert.Zero(t, g.failures)
}

func TestOffsetOptionsDefaults(t *testing.T) {
	ts := []float64{0.5}
	opts := DefaultOffsetOptions.WithCheckParams(ts...)
	ts[0] = 0.1
	diff(t, []float64{0.5}, opts.CheckParams)
	diff(t, []float64{0.25, 0.5, 0.75}, DefaultOffsetOptions.CheckParams)

	resolved := opts.resolved()
	resolved.CheckParams[0] = 0.9
	diff(t, []float64{0.5}, opts.CheckParams)

	zero := OffsetOptions{}.resolved()
	assert.Equal(t, DefaultOffsetOptions.RelativeError, zero.RelativeError)
	assert.Equal(t, DefaultOffsetOptions.Epsilon, zero.Epsilon)
	assert.Equal(t, DefaultOffsetOptions.CurvatureSamples, zero.CurvatureSamples)
	diff(t, DefaultOffsetOptions.CheckParams, zero.CheckParams)
	assert.False(t, zero.ResolveSelfIntersections)

	c := Pt(3, 4)
	got, err := Offset(Circle(c, 5), 1, OffsetOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assertOnCircle(t, got, c, 4, 0.05)
}
