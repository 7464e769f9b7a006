package deform

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/npillmayer/arithm"
	"github.com/npillmayer/arithm/jhobby"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deg(d float64) float64 { return d * math.Pi / 180 }

func fitSegments(t *testing.T, p Path, err error) []Segment {
	t.Helper()
	require.NoError(t, err)
	require.Len(t, p, 1)
	return p[0].Segments
}

func TestFitSplineCollinear(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deform")
	defer teardown()

	segs := fitSegments(t, NewSpline().Knot(Pt(0, 0)).Curve().Knot(Pt(5, 0)).Curve().Knot(Pt(10, 0)).End())
	want := []Segment{
		CubicSeg(Pt(0, 0), Pt(5.0/3.0, 0), Pt(10.0/3.0, 0), Pt(5, 0)),
		CubicSeg(Pt(5, 0), Pt(20.0/3.0, 0), Pt(25.0/3.0, 0), Pt(10, 0)),
	}
	diff(t, want, segs, cmpopts.EquateApprox(0, 1e-12))
}

func TestFitSplineCircle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deform")
	defer teardown()

	p, err := NewSpline().Knot(Pt(10, 50)).Curve().Knot(Pt(50, 90)).Curve().
		Knot(Pt(90, 50)).Curve().Knot(Pt(50, 10)).Curve().Cycle()
	segs := fitSegments(t, p, err)
	require.Len(t, segs, 4)
	assert.True(t, p[0].Closed)
	assertSmooth(t, p[0])

	assertNear(t, Pt(10, 72.09139), segs[0].P1, 1e-4)
	assertNear(t, Pt(27.90861, 90), segs[0].P2, 1e-4)
	center := Pt(50, 50)
	for i, seg := range segs {
		assert.InDelta(t, 22.09139, seg.P1.Distance(seg.P0), 1e-4, "segment %d", i)
		assert.InDelta(t, 22.09139, seg.P2.Distance(seg.P3), 1e-4, "segment %d", i)
		assert.InDelta(t, 0, seg.P1.Sub(seg.P0).Dot(seg.P0.Sub(center)), 1e-6,"segment %d", i)
	}
}

func TestFitSplineAgainstJHobby(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deform")
	defer teardown()

	p1, c1 := jhobby.Nullpath().Knot(arithm.P(0, 0)).Curve().Knot(arithm.P(50, 50)).Curve().
		Knot(arithm.P(100, 65)).End()
	p2, c2 := jhobby.Nullpath().Knot(arithm.P(10, 50)).Curve().Knot(arithm.P(50, 90)).Curve().
		Knot(arithm.P(90, 50)).End()
	p3, c3 := jhobby.Nullpath().Knot(arithm.P(0, 0)).Curve().Knot(arithm.P(20, 35)).Curve().
		Knot(arithm.P(45, 30)).Curve().Knot(arithm.P(60, -10)).Curve().Knot(arithm.P(100, 0)).End()
	tests := []struct {
		pts      []Point
		controls jhobby.SplineControls
	}{
		{[]Point{Pt(0, 0), Pt(50, 50), Pt(100, 65)}, jhobby.FindHobbyControls(p1, c1)},
		{[]Point{Pt(10, 50), Pt(50, 90), Pt(90, 50)}, jhobby.FindHobbyControls(p2, c2)},
		{[]Point{Pt(0, 0), Pt(20, 35), Pt(45, 30), Pt(60, -10), Pt(100, 0)}, jhobby.FindHobbyControls(p3, c3)},
	}
	for _, tt := range tests {
		pts, controls := tt.pts, tt.controls
		spline := NewSpline()
		for _, pt := range pts {
			spline.Knot(pt).Curve()
		}
		// The trailing join has no knot to apply to.
		segs := fitSegments(t, spline.End())
		require.Len(t, segs, len(pts)-1)
		for i, seg := range segs {
			post, pre := controls.PostControl(i).C(), controls.PreControl(i+1).C()
			assertNear(t, Pt(real(post), imag(post)), seg.P1, 1e-3, pts, i)
			assertNear(t, Pt(real(pre), imag(pre)), seg.P2, 1e-3, pts, i)
		}
	}
}

func TestFitSplineLine(t *testing.T) {
	segs := fitSegments(t, NewSpline().Knot(Pt(0, 0)).Line().Knot(Pt(9, 0)).Curve().Knot(Pt(9, 9)).End())
	want := []Segment{
		CubicSeg(Pt(0, 0), Pt(3, 0), Pt(6, 0), Pt(9, 0)),
		// Curl on both ends of a single segment also gives a straight line.
		CubicSeg(Pt(9, 0), Pt(9, 3), Pt(9, 6), Pt(9, 9)),
	}
	diff(t, want, segs, cmpopts.EquateApprox(0, 1e-12))
}

func TestFitSplineGiven(t *testing.T) {
	segs := fitSegments(t, NewSpline().Knot(Pt(0, 0)).Dir(math.Pi/2).Curve().Knot(Pt(10, 0)).Dir(-math.Pi/2).End())
	want := []Segment{CubicSeg(Pt(0, 0), Pt(0, 20.0/3.0), Pt(10, 20.0/3.0), Pt(10, 0))}
	diff(t, want, segs, cmpopts.EquateApprox(0, 1e-9))

	// Doubling the tension halves the arms.
	segs = fitSegments(t, NewSpline().Knot(Pt(0, 0)).Dir(math.Pi/2).TensionCurve(2, 2).
		Knot(Pt(10, 0)).Dir(-math.Pi/2).End())
	want = []Segment{CubicSeg(Pt(0, 0), Pt(0, 10.0/3.0), Pt(10, 10.0/3.0), Pt(10, 0))}
	diff(t, want, segs, cmpopts.EquateApprox(0, 1e-9))
}

func TestFitSplineAtLeastTension(t *testing.T) {
	build := func(tension float64) []Segment {
		return fitSegments(t, NewSpline().Knot(Pt(0, 0)).Dir(deg(60)).TensionCurve(tension, tension).
			Knot(Pt(10, 0)).Dir(deg(-5)).End())
	}
	// The end tangents cross this far from the start.
	apex := 10 * math.Sin(deg(5)) / math.Sin(deg(65))

	free := build(0.75)
	assert.Greater(t, free[0].P1.Distance(free[0].P0), apex)

	bounded := build(-0.75)
	arm := bounded[0].P1.Distance(bounded[0].P0)
	assert.LessOrEqual(t, arm, apex)
	assert.InDelta(t, apex, arm, 1e-3)
	assertNear(t, free[0].P2, bounded[0].P2, 1e-12)
}

func TestFitSplineExplicit(t *testing.T) {
	segs := fitSegments(t, NewSpline().Knot(Pt(0, 0)).Controls(Pt(1, 2), Pt(3, 2)).Knot(Pt(4, 0)).End())
	diff(t, []Segment{CubicSeg(Pt(0, 0), Pt(1, 2), Pt(3, 2), Pt(4, 0))}, segs)

	// The curve after explicit controls continues their direction.
	segs = fitSegments(t, NewSpline().Knot(Pt(0, 0)).Controls(Pt(0, 2), Pt(2, 2)).Knot(Pt(2, 0)).
		Curve().Knot(Pt(4, 0)).End())
	require.Len(t, segs, 2)
	tan := segs[1].TangentSide(0, true)
	assertNear(t, Pt(0, -1), Point(tan), 1e-9)
}

func TestFitSplineCoincidentKnots(t *testing.T) {
	segs := fitSegments(t, NewSpline().Knot(Pt(0, 0)).Curve().Knot(Pt(5, 5)).Curve().
		Knot(Pt(5, 5)).Curve().Knot(Pt(10, 0)).End())
	want := []Segment{
		CubicSeg(Pt(0, 0), Pt(5.0/3.0, 5.0/3.0), Pt(10.0/3.0, 10.0/3.0), Pt(5, 5)),
		CubicSeg(Pt(5, 5), Pt(5, 5), Pt(5, 5), Pt(5, 5)),
		CubicSeg(Pt(5, 5), Pt(20.0/3.0, 10.0/3.0), Pt(25.0/3.0, 5.0/3.0), Pt(10, 0)),
	}
	diff(t, want, segs, cmpopts.EquateApprox(0, 1e-12))
}

func TestFitSplineKeepsKnots(t *testing.T) {
	knots := []Knot{{Point: Pt(0, 0)}, {Point: Pt(5, 5)}, {Point: Pt(10, 0)}}
	_, err := FitSpline(knots, false, DefaultFitOptions)
	require.NoError(t, err)
	diff(t, []Knot{{Point: Pt(0, 0)}, {Point: Pt(5, 5)}, {Point: Pt(10, 0)}}, knots)
}

func TestSplineKnots(t *testing.T) {
	s := NewSpline().Knot(Pt(0, 0)).Curve().Knot(Pt(5, 5)).Dir(0).Curve().Knot(Pt(10, 0))
	knots := s.Knots()
	require.Len(t, knots, 3)
	assert.Equal(t, Pt(5, 5), knots[1].Point)
	assert.Equal(t, KnotGiven, knots[1].Left.Type)
	assert.Equal(t, KnotGiven, knots[1].Right.Type)
	assert.InDelta(t, 1, knots[1].Left.Tension, 1e-12)

	want, err := s.End()
	require.NoError(t, err)
	got, err := FitSpline(knots, false, DefaultFitOptions)
	require.NoError(t, err)
	diff(t, want, got)

	knots[1].Point = Pt(100, 100)
	assert.Equal(t, Pt(5, 5), s.Knots()[1].Point)
}

func TestFitSplineErrors(t *testing.T) {
	_, err := FitSpline(nil, false, DefaultFitOptions)
	require.ErrorIs(t, err, ErrDegenerateInput)
	_, err = NewSpline().Knot(Pt(1, 1)).Cycle()
	require.ErrorIs(t, err, ErrDegenerateInput)

	assert.Panics(t, func() { NewSpline().Curve() })
	assert.Equal(t, "curl", KnotCurl.String())
	assert.Equal(t, "KnotType(42)", KnotType(42).String())
}
