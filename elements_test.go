package deform

import (
	"slices"
	"testing"
)

func elementsOf(t *testing.T, els ...PathElement) Path {
	t.Helper()
	p, err := PathFromElements(slices.Values(els))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func reverseHelper(t *testing.T, contour, want []PathElement) {
	t.Helper()
	got := slices.Collect(elementsOf(t, contour...).Reverse().Elements())
	diff(t, want, got)
}

func TestElementsClosePathReferstoLastMove(t *testing.T) {
	p := elementsOf(t,
		MoveTo(Pt(5.0, 5.0)),
		LineTo(Pt(15.0, 15.0)),
		MoveTo(Pt(10.0, 10.0)),
		LineTo(Pt(15.0, 15.0)),
		ClosePath(),
	)
	if len(p) != 2 {
		t.Fatalf("got %d subpaths, want 2", len(p))
	}
	if p[0].Closed || !p[1].Closed {
		t.Errorf("only the second subpath should be closed")
	}
	last := p[1].Segments[len(p[1].Segments)-1]
	diff(t, LineSeg(Pt(15, 15), Pt(10, 10)), last)
}

func TestElementsErrors(t *testing.T) {
	if _, err := PathFromElements(slices.Values([]PathElement{LineTo(Pt(1, 1))})); err == nil {
		t.Error("LineTo without MoveTo should fail")
	}
	if _, err := PathFromElements(slices.Values([]PathElement{{}})); err == nil {
		t.Error("zero element should fail")
	}
}

func TestElementsDropEmptySubpaths(t *testing.T) {
	p := elementsOf(t,
		MoveTo(Pt(2.0, 2.0)),
		MoveTo(Pt(3.0, 3.0)),
		ClosePath(),
		MoveTo(Pt(4.0, 4.0)),
		LineTo(Pt(5.0, 5.0)),
	)
	if len(p) != 1 {
		t.Fatalf("got %d subpaths, want 1", len(p))
	}
}

func TestReverseUnclosed(t *testing.T) {
	reverseHelper(
		t,
		[]PathElement{
			MoveTo(Pt(10, 10)),
			LineTo(Pt(100, 10)),
			CubicTo(Pt(125, 10), Pt(150, 50), Pt(125, 60)),
		},
		[]PathElement{
			MoveTo(Pt(125, 60)),
			CubicTo(Pt(150, 50), Pt(125, 10), Pt(100, 10)),
			LineTo(Pt(10, 10)),
		},
	)
}

func TestReverseClosedTriangle(t *testing.T) {
	reverseHelper(
		t,
		[]PathElement{
			MoveTo(Pt(100, 100)),
			LineTo(Pt(150, 200)),
			LineTo(Pt(50, 200)),
			ClosePath(),
		},
		[]PathElement{
			MoveTo(Pt(100, 100)),
			LineTo(Pt(50, 200)),
			LineTo(Pt(150, 200)),
			LineTo(Pt(100, 100)),
			ClosePath(),
		},
	)
}

func TestReverseMultipleSubpaths(t *testing.T) {
	reverseHelper(
		t,
		[]PathElement{
			MoveTo(Pt(10, 10)),
			LineTo(Pt(100, 10)),
			CubicTo(Pt(125, 10), Pt(150, 50), Pt(125, 60)),
			MoveTo(Pt(125, 100)),
			CubicTo(Pt(150, 150), Pt(50, 150), Pt(25, 300)),
			LineTo(Pt(125, 100)),
			ClosePath(),
		},
		[]PathElement{
			MoveTo(Pt(125, 60)),
			CubicTo(Pt(150, 50), Pt(125, 10), Pt(100, 10)),
			LineTo(Pt(10, 10)),
			MoveTo(Pt(125, 100)),
			LineTo(Pt(25, 300)),
			CubicTo(Pt(50, 150), Pt(150, 150), Pt(125, 100)),
			ClosePath(),
		},
	)
}

func TestElementsRoundTrip(t *testing.T) {
	p := Circle(Pt(1, 2), 3)
	got := elementsOf(t, slices.Collect(p.Elements())...)
	diff(t, p, got)
}
