package deform

import (
	"fmt"
	"iter"
)

type PathElementKind int

const (
	// Move directly to the point without drawing anything, starting a new
	// subpath.
	MoveToKind PathElementKind = iota + 1
	// Draw a line from the current location to the point.
	LineToKind
	// Draw a cubic bezier using the current location and the three points.
	CubicToKind
	// Close off the subpath.
	ClosePathKind
)

// PathElement is a drawing command. It is the flat representation of a
// [Path] used by serializers.
//
// A valid sequence of elements has a MoveTo at the beginning of each
// subpath.
type PathElement struct {
	Kind PathElementKind
	P0   Point
	P1   Point
	P2   Point
}

func (el PathElement) String() string {
	var kind string
	switch el.Kind {
	case MoveToKind:
		kind = "MoveTo"
	case LineToKind:
		kind = "LineTo"
	case CubicToKind:
		kind = "CubicTo"
	case ClosePathKind:
		kind = "ClosePath"
	default:
		kind = "InvalidPathElement"
	}
	return fmt.Sprintf("%s(%s, %s, %s)", kind, el.P0, el.P1, el.P2)
}

func MoveTo(pt Point) PathElement {
	return PathElement{Kind: MoveToKind, P0: pt}
}

func LineTo(pt Point) PathElement {
	return PathElement{Kind: LineToKind, P0: pt}
}

func CubicTo(p0, p1, p2 Point) PathElement {
	return PathElement{Kind: CubicToKind, P0: p0, P1: p1, P2: p2}
}

func ClosePath() PathElement {
	return PathElement{Kind: ClosePathKind}
}

// Elements returns the drawing commands of the path.
func (p Path) Elements() iter.Seq[PathElement] {
	return func(yield func(PathElement) bool) {
		for _, sp := range p {
			if len(sp.Segments) == 0 {
				continue
			}
			if !yield(MoveTo(sp.Start())) {
				return
			}
			for _, seg := range sp.Segments {
				var el PathElement
				switch seg.Kind {
				case LineKind:
					el = LineTo(seg.P1)
				case CubicKind:
					el = CubicTo(seg.P1, seg.P2, seg.P3)
				default:
					panic("unreachable")
				}
				if !yield(el) {
					return
				}
			}
			if sp.Closed {
				if !yield(ClosePath()) {
					return
				}
			}
		}
	}
}

// PathFromElements builds a path from drawing commands. ClosePath adds a
// closing line if the current point differs from the start of the subpath.
// Subpaths without segments are dropped.
func PathFromElements(seq iter.Seq[PathElement]) (Path, error) {
	var (
		out     Path
		cur     Subpath
		start   Point
		last    Point
		started bool
	)
	flush := func() {
		if len(cur.Segments) > 0 {
			out = append(out, cur)
		}
		cur = Subpath{}
	}
	for el := range seq {
		switch el.Kind {
		case MoveToKind:
			flush()
			start, last, started = el.P0, el.P0, true
		case LineToKind:
			if !started {
				return nil, fmt.Errorf("%s without preceding MoveTo", el)
			}
			cur.Segments = append(cur.Segments, LineSeg(last, el.P0))
			last = el.P0
		case CubicToKind:
			if !started {
				return nil, fmt.Errorf("%s without preceding MoveTo", el)
			}
			cur.Segments = append(cur.Segments, CubicSeg(last, el.P0, el.P1, el.P2))
			last = el.P2
		case ClosePathKind:
			if !started {
				return nil, fmt.Errorf("%s without preceding MoveTo", el)
			}
			if last != start {
				cur.Segments = append(cur.Segments, LineSeg(last, start))
			}
			cur.Closed = true
			flush()
			// A segment after ClosePath starts at the subpath's start.
			last = start
		default:
			return nil, fmt.Errorf("invalid path element %s", el)
		}
	}
	flush()
	return out, nil
}
