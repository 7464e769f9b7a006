package deform

import "math"

// CubicBez is a cubic Bézier with end points P0, P3 and control points P1,
// P2.
type CubicBez struct {
	P0, P1, P2, P3 Point
}

func (c CubicBez) Seg() Segment { return CubicSeg(c.P0, c.P1, c.P2, c.P3) }

func (c CubicBez) Eval(t float64) Point {
	mt := 1 - t
	bern := func(a, b, c, d float64) float64 {
		return a*(mt*mt*mt) + (b*(mt*mt*3)+(c*(mt*3)+d*t)*t)*t
	}
	return Point{bern(c.P0.X, c.P1.X, c.P2.X, c.P3.X), bern(c.P0.Y, c.P1.Y, c.P2.Y, c.P3.Y)}
}

func (c CubicBez) Deriv(t float64) Vec2 {
	mt := 1 - t
	return c.P1.Sub(c.P0).Mul(3 * mt * mt).
		Add(c.P2.Sub(c.P1).Mul(6 * mt * t)).
		Add(c.P3.Sub(c.P2).Mul(3 * t * t))
}

func (c CubicBez) Deriv2(t float64) Vec2 {
	a := c.P2.Sub(c.P1).Sub(c.P1.Sub(c.P0))
	b := c.P3.Sub(c.P2).Sub(c.P2.Sub(c.P1))
	return a.Mul(6 * (1 - t)).Add(b.Mul(6 * t))
}

// Subdivide splits c at t = 0.5.
func (c CubicBez) Subdivide() (CubicBez, CubicBez) {
	m := c.Eval(0.5)
	quarter := func(a, b, c Point) Point {
		return Point(Vec2(a).Add(Vec2(b).Mul(2)).Add(Vec2(c)).Mul(0.25))
	}
	return CubicBez{c.P0, c.P0.Midpoint(c.P1), quarter(c.P0, c.P1, c.P2), m},
		CubicBez{m, quarter(c.P1, c.P2, c.P3), c.P2.Midpoint(c.P3), c.P3}
}

// Subsegment returns the part of c between t0 and t1. The control points
// follow from the derivatives at both ends.
func (c CubicBez) Subsegment(t0, t1 float64) CubicBez {
	a, d := c.Eval(t0), c.Eval(t1)
	k := (t1 - t0) * (1.0 / 3.0)
	return CubicBez{a, a.Translate(c.Deriv(t0).Mul(k)), d.Translate(c.Deriv(t1).Mul(-k)), d}
}

// Tangents returns unnormalized directions at both ends. A zero-length arm
// is skipped in favor of the next control point.
func (c CubicBez) Tangents() (start, end Vec2) {
	const eps = 1e-12
	pick := func(vs ...Vec2) Vec2 {
		for _, v := range vs[:len(vs)-1] {
			if v.Hypot2() > eps {
				return v
			}
		}
		return vs[len(vs)-1]
	}
	start = pick(c.P1.Sub(c.P0), c.P2.Sub(c.P0), c.P3.Sub(c.P0))
	end = pick(c.P3.Sub(c.P2), c.P3.Sub(c.P1), c.P3.Sub(c.P0))
	return start, end
}

// Arclen returns the arc length of c to within accuracy, using Legendre-Gauss
// quadrature of an order picked from an error estimate, and subdividing when
// even the highest order isn't enough.
func (c CubicBez) Arclen(accuracy float64) float64 {
	return c.arclen(accuracy, 0)
}

func (c CubicBez) arclen(accuracy float64, depth int) float64 {
	a, b, d := c.P1.Sub(c.P0), c.P2.Sub(c.P1), c.P3.Sub(c.P2)
	// How much longer the control polygon is than the chord.
	slack := a.Hypot() + b.Hypot() + d.Hypot() - c.P3.Sub(c.P0).Hypot()
	dd1, dd2 := b.Sub(a), d.Sub(b)
	// Derivatives at the midpoint, without the factor 3 on the first and
	// with a factor 1/2 on the third.
	v := a.Add(d).Mul(0.25).Add(b.Mul(0.5))
	acc := dd2.Add(dd1).Mul(0.5)
	jerk := dd2.Sub(dd1).Mul(0.25)

	var est float64
	for _, wx := range gaussLegendreCoeffs8 {
		w, x := wx[0], wx[1]
		vel := v.Add(acc.Mul(x)).Add(jerk.Mul(x * x)).Hypot2()
		est += w * acc.Add(jerk.Mul(2*x)).Hypot2() / vel
	}
	if math.IsNaN(est) {
		// Zero velocity near a cusp.
		est = 0
	}

	switch {
	case min(math.Pow(est, 3)*2.5e-6, 3e-2)*slack < accuracy:
		return arclenQuadrature(gaussLegendreCoeffs8Half[:], v, acc, jerk)
	case min(math.Pow(est, 6)*1.5e-11, 9e-3)*slack < accuracy:
		return arclenQuadrature(gaussLegendreCoeffs16Half[:], v, acc, jerk)
	case min(math.Pow(est, 9)*3.5e-16, 3.5e-3)*slack < accuracy || depth >= 20:
		return arclenQuadrature(gaussLegendreCoeffs24Half[:], v, acc, jerk)
	}
	l, r := c.Subdivide()
	return l.arclen(accuracy/2, depth+1) + r.arclen(accuracy/2, depth+1)
}

// arclenQuadrature integrates the speed over the symmetric abscissae in
// coeffs, given the derivatives at the midpoint.
func arclenQuadrature(coeffs [][2]float64, v, acc, jerk Vec2) float64 {
	var sum float64
	for _, wx := range coeffs {
		w, x := wx[0], wx[1]
		even := v.Add(jerk.Mul(x * x))
		sum += 1.5 * w * (even.Add(acc.Mul(x)).Hypot() + even.Sub(acc.Mul(x)).Hypot())
	}
	return sum
}

// Curvature returns the signed curvature at t, or [Infinite] where the
// velocity vanishes.
func (c CubicBez) Curvature(t float64) Curvature {
	d1 := c.Deriv(t)
	n2 := d1.Hypot2()
	if n2 < 1e-20 {
		return Infinite
	}
	return Curvature(d1.Cross(c.Deriv2(t)) / (n2 * math.Sqrt(n2)))
}

// Cusps returns the interior parameters at which the velocity of c vanishes,
// that is, |c'(t)| < eps.
func (c CubicBez) Cusps(eps float64) []float64 {
	d0 := c.P1.Sub(c.P0)
	d1 := c.P2.Sub(c.P1)
	d2 := c.P3.Sub(c.P2)
	// c'(t)/3 = a t² + b t + d0
	a := d0.Sub(d1.Mul(2)).Add(d2)
	b := d1.Sub(d0).Mul(2)
	var out []float64
	try := func(roots [2]float64, n int) {
		for _, t := range roots[:n] {
			if t > 0 && t < 1 && c.Deriv(t).Hypot() < eps {
				out = append(out, t)
			}
		}
	}
	if math.Abs(a.X)+math.Abs(b.X)+math.Abs(d0.X) > math.Abs(a.Y)+math.Abs(b.Y)+math.Abs(d0.Y) {
		try(SolveQuadratic(d0.X, b.X, a.X))
	} else {
		try(SolveQuadratic(d0.Y, b.Y, a.Y))
	}
	return out
}

// Nearest returns the squared distance of pt to c and the parameter of the
// nearest point.
func (c CubicBez) Nearest(pt Point, accuracy float64) (distSq, t float64) {
	const samples = 16
	best := math.Inf(1)
	for i := range samples + 1 {
		ti := float64(i) / samples
		if d := c.Eval(ti).DistanceSquared(pt); d < best {
			best, t = d, ti
		}
	}
	// Newton iterations on f(t) = (c(t) - pt) · c'(t).
	for range 8 {
		d1 := c.Deriv(t)
		d2 := c.Deriv2(t)
		r := c.Eval(t).Sub(pt)
		f := r.Dot(d1)
		df := d1.Dot(d1) + r.Dot(d2)
		if df == 0 {
			break
		}
		step := f / df
		nt := min(max(t-step, 0), 1)
		if d := c.Eval(nt).DistanceSquared(pt); d <= best {
			best = d
			if math.Abs(nt-t) < accuracy {
				t = nt
				break
			}
			t = nt
		} else {
			break
		}
	}
	return best, t
}

// IntersectLine intersects c with the probe line l by substituting the
// power basis of c into the implicit equation of l.
func (c CubicBez) IntersectLine(l Line) ([3]LineIntersection, int) {
	const eps = 1e-9
	dir := l.P1.Sub(l.P0)
	x := powerBasis(c.P0.X, c.P1.X, c.P2.X, c.P3.X)
	y := powerBasis(c.P0.Y, c.P1.Y, c.P2.Y, c.P3.Y)
	x[0] -= l.P0.X
	y[0] -= l.P0.Y
	var k [4]float64
	for i := range k {
		k[i] = dir.Y*x[i] - dir.X*y[i]
	}
	ts, n := SolveCubic(k[0], k[1], k[2], k[3])

	var out [3]LineIntersection
	var m int
	for _, t := range ts[:n] {
		if t < -eps || t > 1+eps {
			continue
		}
		// Relative to l.P0.
		rel := Vec(x[0]+t*(x[1]+t*(x[2]+t*x[3])), y[0]+t*(y[1]+t*(y[2]+t*y[3])))
		if u := rel.Dot(dir) / dir.Hypot2(); u >= 0 && u <= 1 {
			out[m] = LineIntersection{u, t}
			m++
		}
	}
	return out, m
}

// powerBasis converts Bézier coordinates to the coefficients of
// a + b t + c t² + d t³.
func powerBasis(a, b, c, d float64) [4]float64 {
	return [4]float64{a, 3 * (b - a), 3 * (c - 2*b + a), d - 3*c + 3*b - a}
}

// Tables of Legendre-Gauss quadrature coefficients, adapted from:
// <https://pomax.github.io/bezierinfo/legendre-gauss.html>

var gaussLegendreCoeffs8 = [...][2]float64{
	{0.3626837833783620, -0.1834346424956498},
	{0.3626837833783620, 0.1834346424956498},
	{0.3137066458778873, -0.5255324099163290},
	{0.3137066458778873, 0.5255324099163290},
	{0.2223810344533745, -0.7966664774136267},
	{0.2223810344533745, 0.7966664774136267},
	{0.1012285362903763, -0.9602898564975363},
	{0.1012285362903763, 0.9602898564975363},
}

var gaussLegendreCoeffs8Half = [...][2]float64{
	{0.3626837833783620, 0.1834346424956498},
	{0.3137066458778873, 0.5255324099163290},
	{0.2223810344533745, 0.7966664774136267},
	{0.1012285362903763, 0.9602898564975363},
}

var gaussLegendreCoeffs16Half = [...][2]float64{
	{0.1894506104550685, 0.0950125098376374},
	{0.1826034150449236, 0.2816035507792589},
	{0.1691565193950025, 0.4580167776572274},
	{0.1495959888165767, 0.6178762444026438},
	{0.1246289712555339, 0.7554044083550030},
	{0.0951585116824928, 0.8656312023878318},
	{0.0622535239386479, 0.9445750230732326},
	{0.0271524594117541, 0.9894009349916499},
}

var gaussLegendreCoeffs24Half = [...][2]float64{
	{0.1279381953467522, 0.0640568928626056},
	{0.1258374563468283, 0.1911188674736163},
	{0.1216704729278034, 0.3150426796961634},
	{0.1155056680537256, 0.4337935076260451},
	{0.1074442701159656, 0.5454214713888396},
	{0.0976186521041139, 0.6480936519369755},
	{0.0861901615319533, 0.7401241915785544},
	{0.0733464814110803, 0.8200019859739029},
	{0.0592985849154368, 0.8864155270044011},
	{0.0442774388174198, 0.9382745520027328},
	{0.0285313886289337, 0.9747285559713095},
	{0.0123412297999872, 0.9951872199970213},
}
