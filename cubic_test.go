package deform

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
)

// y = x^2
var parabola = CubicBez{
	Pt(0.0, 0.0),
	Pt(1.0/3.0, 0.0),
	Pt(2.0/3.0, 1.0/3.0),
	Pt(1.0, 1.0),
}

func TestCubicBezDeriv(t *testing.T) {
	const n = 10
	const delta = 1e-6
	for i := range n + 1 {
		ts := float64(i) / float64(n)
		p := parabola.Eval(ts)
		p1 := parabola.Eval(ts + delta)
		dApprox := p1.Sub(p).Mul(1.0 / delta)
		if l := parabola.Deriv(ts).Sub(dApprox).Hypot(); l >= delta*2 {
			t.Errorf("got difference of %g, want at most %g", l, delta*2)
		}

		d2Approx := parabola.Deriv(ts + delta).Sub(parabola.Deriv(ts)).Mul(1.0 / delta)
		if l := parabola.Deriv2(ts).Sub(d2Approx).Hypot(); l >= delta*10 {
			t.Errorf("got second derivative difference of %g, want at most %g", l, delta*10)
		}
	}
}

func TestIntersectCubic(t *testing.T) {
	c := CubicBez{Pt(0.0, -10.0), Pt(10.0, 20.0), Pt(20.0, -20.0), Pt(30.0, 10.0)}
	vLine := Line{Pt(10.0, -10.0), Pt(10.0, 10.0)}
	xs, n := c.IntersectLine(vLine)
	want := []LineIntersection{{16.0 / 27.0, 1.0 / 3.0}}
	diff(t, want, xs[:n], cmpopts.EquateApprox(0, 1e-8))

	hLine := Line{Pt(0.0, 0.0), Pt(100.0, 0.0)}
	if _, n := c.IntersectLine(hLine); n != 3 {
		t.Errorf("got %d intersections, want 3", n)
	}
}

func TestCubicNearest(t *testing.T) {
	verify := func(c CubicBez, pt Point, want float64) {
		t.Helper()
		_, got := c.Nearest(pt, 1e-6)
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("got %v, want %v", got, want)
		}
	}

	// y = x^3
	c := CubicBez{Pt(0.0, 0.0), Pt(1.0/3.0, 0.0), Pt(2.0/3.0, 0.0), Pt(1.0, 1.0)}
	verify(c, Pt(0.1, 0.001), 0.1)
	verify(c, Pt(0.2, 0.008), 0.2)
	verify(c, Pt(0.3, 0.027), 0.3)
	verify(c, Pt(0.4, 0.064), 0.4)
	verify(c, Pt(0.5, 0.125), 0.5)
	verify(c, Pt(0.6, 0.216), 0.6)
	verify(c, Pt(0.7, 0.343), 0.7)
	verify(c, Pt(0.8, 0.512), 0.8)
	verify(c, Pt(0.9, 0.729), 0.9)
	verify(c, Pt(1.0, 1.0), 1.0)
	verify(c, Pt(1.1, 1.1), 1.0)
	verify(c, Pt(-0.1, 0.0), 0.0)
	a := Rotate(0.5)
	verify(c.Seg().Transform(a).Cubic(), Pt(0.1, 0.001).Transform(a), 0.1)
}

func TestCubicBezArclen(t *testing.T) {
	trueArclen := 0.5*math.Sqrt(5.0) + 0.25*math.Log(2.0+math.Sqrt(5.0))
	for i := range 12 {
		accuracy := math.Pow(0.1, float64(i))
		diff(t, trueArclen, parabola.Arclen(accuracy), cmpopts.EquateApprox(0, accuracy))
	}
}

func TestSegmentParamAtArclen(t *testing.T) {
	// y = x^2 / 100
	s := CubicSeg(
		Pt(0.0, 0.0),
		Pt(100.0/3.0, 0.0),
		Pt(200.0/3.0, 100.0/3.0),
		Pt(100.0, 100.0),
	)
	trueArclen := 100.0 * (0.5*math.Sqrt(5.0) + 0.25*math.Log(2.0+math.Sqrt(5.0)))
	for i := range 8 {
		accuracy := math.Pow(0.1, float64(i))
		n := 10
		for j := range n + 1 {
			arc := float64(j) * (1.0 / float64(n) * trueArclen)
			tt := s.ParamAtArclen(arc, accuracy*0.5)
			actualArc := s.Subsegment(0.0, tt).Arclen(accuracy * 0.5)
			diff(t, arc, actualArc, cmpopts.EquateApprox(0, accuracy))
		}
	}

	l := LineSeg(Pt(0, 0), Pt(0, 10))
	if tt := l.ParamAtArclen(2.5, 1e-9); tt != 0.25 {
		t.Errorf("got %v, want 0.25", tt)
	}
}

func TestCubicCurvature(t *testing.T) {
	// Quarter circle of radius 10, counter-clockwise.
	const r = 10.0
	k := 4.0 / 3.0 * math.Tan(math.Pi/8)
	c := CubicBez{Pt(r, 0), Pt(r, k*r), Pt(k*r, r), Pt(0, r)}
	for _, ts := range []float64{0, 0.25, 0.5, 0.75, 1} {
		got := float64(c.Curvature(ts))
		if math.Abs(got-1/r) > 3e-2/r {
			t.Errorf("curvature at %v: got %v, want about %v", ts, got, 1/r)
		}
	}
	rev := c.Seg().Reverse()
	if got := rev.Curvature(0.5); got >= 0 {
		t.Errorf("clockwise arc should have negative curvature, got %v", got)
	}
	if got := LineSeg(Pt(0, 0), Pt(1, 1)).Curvature(0.3); got != 0 {
		t.Errorf("line should have zero curvature, got %v", got)
	}
}

func TestCubicCusps(t *testing.T) {
	c := CubicBez{Pt(0, 0), Pt(1, 1), Pt(0, 1), Pt(1, 0)}
	cusps := c.Cusps(1e-6)
	if len(cusps) != 1 {
		t.Fatalf("got cusps %v, want one", cusps)
	}
	if math.Abs(cusps[0]-0.5) > 1e-6 {
		t.Errorf("got cusp at %v, want 0.5", cusps[0])
	}
	if !c.Curvature(cusps[0]).IsInf() {
		t.Errorf("curvature at a cusp should be infinite, got %v", c.Curvature(cusps[0]))
	}
	if cusps := parabola.Cusps(1e-6); len(cusps) != 0 {
		t.Errorf("got cusps %v on a regular curve", cusps)
	}

	// The tangent at the cusp is the limit from inside the segment.
	tan := c.Seg().Tangent(0.5)
	if math.Abs(tan.Hypot()-1) > 1e-9 {
		t.Errorf("tangent should be a unit vector, got %s", tan)
	}
}

func TestSegmentEnds(t *testing.T) {
	s := CubicSeg(Pt(0, 0), Pt(1, 2), Pt(3, 2), Pt(4, 0))
	diff(t, Pt(4, 0), s.End())
	r := s.Reverse()
	diff(t, Pt(4, 0), r.Start())
	diff(t, Pt(0, 0), r.End())

	moved := s.WithStart(Pt(1, 1))
	diff(t, Pt(2, 3), moved.P1)
	moved = s.WithEnd(Pt(5, 1))
	diff(t, Pt(4, 3), moved.P2)

	bb := s.Bounds()
	if bb.Min.X != 0 || bb.Min.Y != 0 || bb.Max.X != 4 || bb.Max.Y != 2 {
		t.Errorf("unexpected bounding box %v", bb)
	}
	if !LineSeg(Pt(1, 1), Pt(1, 1+1e-9)).IsDegenerate(1e-6) {
		t.Error("tiny line should be degenerate")
	}
}
