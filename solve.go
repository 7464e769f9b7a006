package deform

import "math"

// SolveQuadratic returns the real roots x of c0 + c1 x + c2 x² = 0 in
// ascending order, and how many there are.
//
// A vanishing c2 solves the linear equation instead. If all coefficients
// are zero, every x is a root and 0 is reported. When one root of a
// nearly linear equation overflows, only the other one is returned.
func SolveQuadratic(c0, c1, c2 float64) ([2]float64, int) {
	b, c := c1/c2, c0/c2
	if math.IsInf(b, 0) || math.IsInf(c, 0) {
		switch x := -c0 / c1; {
		case !math.IsInf(x, 0):
			return [2]float64{x}, 1
		case c0 == 0 && c1 == 0:
			return [2]float64{0}, 1
		default:
			return [2]float64{}, 0
		}
	}

	// x² + b x + c = 0
	var x1 float64
	switch disc := b*b - 4*c; {
	case math.IsInf(disc, 0):
		// b² overflowed, so x² + b x dominates.
		x1 = -b
	case disc < 0:
		return [2]float64{}, 0
	case disc == 0:
		return [2]float64{-0.5 * b}, 1
	default:
		// The larger root first, without cancellation.
		x1 = -0.5 * (b + math.Copysign(math.Sqrt(disc), b))
	}
	x2 := c / x1
	switch {
	case math.IsInf(x2, 0):
		return [2]float64{x1}, 1
	case x2 > x1:
		return [2]float64{x1, x2}, 2
	default:
		return [2]float64{x2, x1}, 2
	}
}

// SolveCubic returns the real roots x of c0 + c1 x + c2 x² + c3 x³ = 0, and
// how many there are. A vanishing c3 falls back to [SolveQuadratic].
//
// The method is Blinn's, in the formulation of
// https://momentsingraphics.de/CubicRoots.html.
func SolveCubic(c0, c1, c2, c3 float64) ([3]float64, int) {
	inv := 1 / c3
	// x³ + 3a x² + 3b x + c = 0
	a, b, c := c2*(1.0/3.0*inv), c1*(1.0/3.0*inv), c0*inv
	if math.IsInf(a, 0) || math.IsInf(b, 0) || math.IsInf(c, 0) {
		r, n := SolveQuadratic(c0, c1, c2)
		return [3]float64{r[0], r[1]}, n
	}

	// Hessian coefficients and the discriminant.
	h0 := math.FMA(-a, a, b)
	h1 := math.FMA(-b, a, c)
	h2 := a*c - b*b
	disc := 4*h0*h2 - h1*h1
	// Constant term of the depressed cubic, scaled.
	dc := math.FMA(-2*a, h0, h1)

	switch {
	case disc < 0:
		// One real root.
		sq := math.Sqrt(-0.25 * disc)
		r := -0.5 * dc
		return [3]float64{math.Cbrt(r+sq) + math.Cbrt(r-sq) - a}, 1
	case disc == 0:
		y := math.Copysign(math.Sqrt(-h0), dc)
		return [3]float64{y - a, -2*y - a}, 2
	default:
		th := math.Atan2(math.Sqrt(disc), -dc) * (1.0 / 3.0)
		sin, cos := math.Sincos(th)
		s3 := sin * math.Sqrt(3)
		m := 2 * math.Sqrt(-h0)
		return [3]float64{
			math.FMA(m, cos, -a),
			math.FMA(m, 0.5*(-cos+s3), -a),
			math.FMA(m, 0.5*(-cos-s3), -a),
		}, 3
	}
}

// SolveQuartic finds real roots of quartic equations.
//
// Returns values of x for which c0 + c1 x + c2 x² + c3 x³ + c4 x⁴ = 0.0
//
// The quartic is depressed and factored into two quadratics using the
// largest root of Ferrari's resolvent cubic. Each root is then polished with
// Newton iterations on the original polynomial. The accuracy suits
// coefficients of geometric magnitude; it does not attempt to handle the
// extreme coefficient ranges that fully robust solvers support.
func SolveQuartic(c0, c1, c2, c3, c4 float64) ([4]float64, int) {
	if c0 == 0.0 {
		res, n := SolveCubic(c1, c2, c3, c4)
		out := [4]float64{res[0], res[1], res[2]}
		out[n] = 0
		return out, n + 1
	}
	a, b, c, d := c3/c4, c2/c4, c1/c4, c0/c4
	if math.IsInf(a, 0) || math.IsInf(b, 0) || math.IsInf(c, 0) || math.IsInf(d, 0) {
		// Quartic coefficient is zero or nearly so.
		res, n := SolveCubic(c0, c1, c2, c3)
		return [4]float64{res[0], res[1], res[2]}, n
	}

	// x = y − a/4 gives y⁴ + p y² + q y + r = 0.
	shift := -0.25 * a
	a2 := a * a
	p := b - 3.0/8.0*a2
	q := c - 0.5*a*b + a2*a/8
	r := d - 0.25*a*c + a2*b/16 - 3.0/256.0*a2*a2

	var ys [4]float64
	var n int
	scale := max(math.Sqrt(math.Abs(p)), math.Sqrt(math.Sqrt(math.Abs(r))))
	if math.Abs(q) <= 1e-12*scale*scale*scale {
		// Biquadratic in y².
		zs, nz := SolveQuadratic(r, p, 1)
		for _, z := range zs[:nz] {
			switch {
			case z > 0:
				ys[n], ys[n+1] = -math.Sqrt(z), math.Sqrt(z)
				n += 2
			case z == 0:
				ys[n] = 0
				n++
			}
		}
	} else {
		// The resolvent 8m³ + 8p m² + (2p² − 8r) m − q² has a positive root.
		ms, nm := SolveCubic(-q*q, 2*p*p-8*r, 8*p, 8)
		m := ms[0]
		for _, v := range ms[1:nm] {
			m = max(m, v)
		}
		if m <= 0 {
			return [4]float64{}, 0
		}
		s := math.Sqrt(2 * m)
		for _, sign := range []float64{-1, 1} {
			roots, nr := SolveQuadratic(0.5*p+m-sign*q/(2*s), sign*s, 1)
			for _, y := range roots[:nr] {
				ys[n] = y
				n++
			}
		}
	}

	var out [4]float64
	for i, y := range ys[:n] {
		out[i] = polishQuarticRoot(a, b, c, d, y+shift)
	}
	return out, n
}

// polishQuarticRoot refines a root of x⁴ + a x³ + b x² + c x + d with Newton
// iterations, keeping the best estimate.
func polishQuarticRoot(a, b, c, d, x float64) float64 {
	eval := func(x float64) (float64, float64) {
		f := (((x+a)*x+b)*x+c)*x + d
		df := ((4*x+3*a)*x+2*b)*x + c
		return f, df
	}
	f, df := eval(x)
	for range 8 {
		if f == 0 || df == 0 {
			break
		}
		nx := x - f/df
		nf, ndf := eval(nx)
		if math.Abs(nf) >= math.Abs(f) {
			break
		}
		x, f, df = nx, nf, ndf
	}
	return x
}

// SolveITP returns a zero crossing of f in [a, b] using the ITP method
// (interpolate, truncate, project), see
// https://en.wikipedia.org/wiki/ITP_Method.
//
// fa = f(a) must be negative and fb = f(b) positive. For monotonic f the
// result is within eps of the crossing. n0 and k1 tune the method. n0 = 1
// and k1 = 0.2/(b − a) suit curve parameters.
func SolveITP(f func(float64) float64, a, b, eps float64, n0 int, k1, fa, fb float64) float64 {
	nHalf := int(max(math.Ceil(math.Log2((b-a)/eps))-1, 0))
	slack := eps * float64(uint64(1)<<(n0+nHalf))
	for b-a > 2*eps {
		mid := 0.5 * (a + b)
		r := slack - 0.5*(b-a)
		// Regula falsi, truncated towards the midpoint. The k2 parameter
		// is fixed at 2.
		xf := (fb*a - fa*b) / (fb - fa)
		sigma := mid - xf
		x := mid
		if delta := k1 * (b - a) * (b - a); delta <= math.Abs(sigma) {
			x = xf + math.Copysign(delta, sigma)
		}
		// Projected into the minmax interval.
		if math.Abs(x-mid) > r {
			x = mid - math.Copysign(r, sigma)
		}
		switch y := f(x); {
		case y > 0:
			b, fb = x, y
		case y < 0:
			a, fa = x, y
		default:
			return x
		}
		slack *= 0.5
	}
	return 0.5 * (a + b)
}

// findRoot finds a zero crossing of f in [a, b] to within epsilon, given
// f(a) and f(b) of opposite signs in either order.
func findRoot(f func(float64) float64, a, b, fa, fb, epsilon float64) float64 {
	if fa == 0 {
		return a
	}
	if fb == 0 {
		return b
	}
	if fa > 0 {
		g := func(t float64) float64 { return -f(t) }
		return SolveITP(g, a, b, epsilon, 1, 0.2/(b-a), -fa, -fb)
	}
	return SolveITP(f, a, b, epsilon, 1, 0.2/(b-a), fa, fb)
}
