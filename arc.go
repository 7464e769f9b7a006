package deform

import "math"

// Arc is a circular arc.
type Arc struct {
	Center     Point
	Radius     float64
	StartAngle float64
	// Positive sweep angles run counter-clockwise.
	SweepAngle float64
}

// ArcFromEndpoints returns the arc around center that starts at p0 and
// sweeps by sweep radians. The radius is the distance from center to p0.
func ArcFromEndpoints(center, p0 Point, sweep float64) Arc {
	v := p0.Sub(center)
	return Arc{
		Center:     center,
		Radius:     v.Hypot(),
		StartAngle: v.Angle(),
		SweepAngle: sweep,
	}
}

func (a Arc) StartPoint() Point {
	return pointOnCircle(a.Center, a.Radius, a.StartAngle)
}

func (a Arc) EndPoint() Point {
	return pointOnCircle(a.Center, a.Radius, a.StartAngle+a.SweepAngle)
}

// Segments approximates the arc with cubic Béziers within tolerance.
func (a Arc) Segments(tolerance float64) []Segment {
	if a.SweepAngle == 0 || a.Radius == 0 {
		return nil
	}
	scaledError := a.Radius / tolerance
	// Number of subdivisions per circle based on error tolerance.
	nError := max(math.Pow(1.1163*scaledError, 1.0/6.0), 3.999_999)
	n := math.Ceil(nError * math.Abs(a.SweepAngle) * (1.0 / (2.0 * math.Pi)))
	angleStep := a.SweepAngle / n
	armLen := math.Copysign((4.0/3.0)*math.Tan(math.Abs(0.25*angleStep)), a.SweepAngle) * a.Radius
	angle0 := a.StartAngle
	p0 := a.StartPoint()

	out := make([]Segment, 0, int(n))
	for i := range int(n) {
		angle1 := angle0 + angleStep
		p3 := pointOnCircle(a.Center, a.Radius, angle1)
		if i == int(n)-1 {
			p3 = a.EndPoint()
		}
		p1 := p0.Translate(VecFromAngle(angle0 + math.Pi/2).Mul(armLen))
		p2 := p3.Translate(VecFromAngle(angle1 + math.Pi/2).Mul(-armLen))
		out = append(out, CubicSeg(p0, p1, p2, p3))
		angle0 = angle1
		p0 = p3
	}
	return out
}

func pointOnCircle(center Point, radius float64, angle float64) Point {
	sin, cos := math.Sincos(angle)
	return Point{
		X: center.X + radius*cos,
		Y: center.Y + radius*sin,
	}
}

// Circle returns a closed, counter-clockwise circle made of four cubic
// Béziers, starting at the point with the largest x coordinate.
func Circle(center Point, radius float64) Path {
	// Solution from http://spencermortensen.com/articles/bezier-circle/
	const armLength = 0.551915024494
	x, y := center.Splat()
	r := radius
	segs := make([]Segment, 0, 4)
	prev := Pt(x+r, y)
	const n = 4
	deltaTh := 2.0 * math.Pi / n
	for ix := 1; ix <= n; ix++ {
		a := armLength
		th1 := deltaTh * float64(ix)
		th0 := th1 - deltaTh
		s0, c0 := math.Sincos(th0)
		var s1, c1 float64
		if ix == n {
			s1 = 0.0
			c1 = 1.0
		} else {
			s1, c1 = math.Sincos(th1)
		}
		end := Pt(x+r*c1, y+r*s1)
		segs = append(segs, CubicSeg(
			prev,
			Pt(x+r*(c0-a*s0), y+r*(s0+a*c0)),
			Pt(x+r*(c1+a*s1), y+r*(s1-a*c1)),
			end,
		))
		prev = end
	}
	return Path{{Segments: segs, Closed: true}}
}
