package deform

import "math"

// hobby chooses the control points of a spline through a sequence of knots.
//
// The spline is split at breakpoints, knots where the direction is fixed on
// at least one side. Between consecutive breakpoints p and q, the angles θ_k
// between the outgoing direction at knot k and the chord to knot k+1 solve
// a tridiagonal system that makes the mock curvature continuous at every
// knot. A cyclic spline without any breakpoints adds a wrap-around term.
type hobby struct {
	knots []Knot
	cycle bool
	eps   float64

	// Per section scratch space, indexed relative to the first breakpoint.
	delta  []Vec2
	dist   []float64
	psi    []float64
	uu, vv []float64
	ww     []float64
	theta  []float64
}

func newHobby(knots []Knot, cycle bool, eps float64) *hobby {
	h := &hobby{
		knots: append([]Knot(nil), knots...),
		cycle: cycle,
		eps:   eps,
	}
	h.normalize()
	return h
}

func (h *hobby) next(i int) int {
	return (i + 1) % len(h.knots)
}

func (h *hobby) at(i int) *Knot {
	return &h.knots[i%len(h.knots)]
}

func normalizeTension(t float64) float64 {
	if t == 0 {
		return 1
	}
	if math.Abs(t) < 0.75 {
		return math.Copysign(0.75, t)
	}
	return t
}

// normalize fills in the implicit parts of the knots.
func (h *hobby) normalize() {
	for i := range h.knots {
		k := &h.knots[i]
		k.Left.Tension = normalizeTension(k.Left.Tension)
		k.Right.Tension = normalizeTension(k.Right.Tension)
		k.Left.Curl = max(k.Left.Curl, 0)
		k.Right.Curl = max(k.Right.Curl, 0)
		if k.Left.Type == knotEndCycle {
			k.Left.Type = KnotOpen
		}
		// A direction or curl on one side of a knot applies to both.
		switch {
		case k.Right.Type == KnotOpen && (k.Left.Type == KnotGiven || k.Left.Type == KnotCurl):
			k.Right.Type, k.Right.Angle, k.Right.Curl = k.Left.Type, k.Left.Angle, k.Left.Curl
		case k.Left.Type == KnotOpen && (k.Right.Type == KnotGiven || k.Right.Type == KnotCurl):
			k.Left.Type, k.Left.Angle, k.Left.Curl = k.Right.Type, k.Right.Angle, k.Right.Curl
		}
	}
	// Explicit control points come in pairs.
	n := len(h.knots)
	for i := range h.segments() {
		p, q := &h.knots[i], h.at(i+1)
		switch {
		case p.Right.Type == KnotExplicit && q.Left.Type != KnotExplicit:
			q.Left = Side{Type: KnotExplicit, Control: q.Point}
		case q.Left.Type == KnotExplicit && p.Right.Type != KnotExplicit:
			p.Right = Side{Type: KnotExplicit, Control: p.Point}
		}
	}
	if h.cycle {
		return
	}
	first, last := &h.knots[0], &h.knots[n-1]
	first.Left = Side{Type: KnotEndpoint, Tension: 1}
	last.Right = Side{Type: KnotEndpoint, Tension: 1}
	if first.Right.Type == KnotOpen {
		first.Right.Type, first.Right.Curl = KnotCurl, 1
	}
	if last.Left.Type == KnotOpen {
		last.Left.Type, last.Left.Curl = KnotCurl, 1
	}
}

// segments returns the number of segments of the spline.
func (h *hobby) segments() int {
	if h.cycle {
		return len(h.knots)
	}
	return len(h.knots) - 1
}

func isFree(t KnotType) bool {
	return t == KnotOpen || t == KnotCurl || t == KnotGiven
}

// makeChoices replaces all sides that aren't explicit by explicit control
// points.
func (h *hobby) makeChoices() {
	n := len(h.knots)
	// Coincident neighbors are joined by a degenerate cubic.
	for i := range h.segments() {
		p, q := &h.knots[i], h.at(i+1)
		if !isFree(p.Right.Type) || !p.Point.Near(q.Point, h.eps) {
			continue
		}
		p.Right = Side{Type: KnotExplicit, Control: p.Point, Tension: p.Right.Tension}
		if p.Left.Type == KnotOpen {
			p.Left.Type, p.Left.Curl = KnotCurl, 1
		}
		q.Left = Side{Type: KnotExplicit, Control: p.Point, Tension: q.Left.Tension}
		if q.Right.Type == KnotOpen {
			q.Right.Type, q.Right.Curl = KnotCurl, 1
		}
	}

	start := 0
	for {
		k := &h.knots[start]
		if k.Left.Type != KnotOpen || k.Right.Type != KnotOpen {
			break
		}
		start++
		if start == n {
			start = 0
			h.knots[0].Left.Type = knotEndCycle
			break
		}
	}

	p := start
	for {
		q := h.next(p)
		switch kp := &h.knots[p]; {
		case isFree(kp.Right.Type):
			for h.knots[q].Left.Type == KnotOpen && h.knots[q].Right.Type == KnotOpen {
				q = h.next(q)
			}
			h.fill(p, q)
		case kp.Right.Type == KnotEndpoint:
			kp.Right.Control = kp.Point
			h.knots[q].Left.Control = h.knots[q].Point
		}
		p = q
		if p == start {
			break
		}
	}
}

// fill chooses the control points between the breakpoints p and q.
func (h *hobby) fill(p, q int) {
	// n is the number of segments between p and q. A cycle without
	// breakpoints runs one knot past q so that the equations can wrap around.
	var n int
	k := 0
	h.delta, h.dist, h.psi = h.delta[:0], h.dist[:0], h.psi[:0]
	for s := p; ; {
		t := h.next(s)
		d := h.knots[t].Point.Sub(h.knots[s].Point)
		h.delta = append(h.delta, d)
		h.dist = append(h.dist, d.Hypot())
		if k == 0 {
			h.psi = append(h.psi, 0)
		} else {
			prev := h.delta[k-1]
			h.psi = append(h.psi, math.Atan2(prev.Cross(d), prev.Dot(d)))
		}
		k++
		s = t
		if s == q && n == 0 {
			n = k
		}
		if k >= n && n > 0 && h.knots[s].Left.Type != knotEndCycle {
			break
		}
	}
	if k == n {
		h.psi = append(h.psi, 0)
	} else {
		h.psi = append(h.psi, h.psi[1])
	}

	kp, kq := &h.knots[p], &h.knots[q]
	if kq.Left.Type == KnotOpen {
		if d := kq.Right.Control.Sub(kq.Point); d.Hypot() <= h.eps {
			kq.Left.Type, kq.Left.Curl = KnotCurl, 1
		} else {
			kq.Left.Type, kq.Left.Angle = KnotGiven, d.Angle()
		}
	}
	if kp.Right.Type == KnotOpen && kp.Left.Type == KnotExplicit {
		if d := kp.Point.Sub(kp.Left.Control); d.Hypot() <= h.eps {
			kp.Right.Type, kp.Right.Curl = KnotCurl, 1
		} else {
			kp.Right.Type, kp.Right.Angle = KnotGiven, d.Angle()
		}
	}
	h.solve(p, q, n)
}

func grow(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	s = s[:n]
	clear(s)
	return s
}

// solve computes the angles θ_k for the n segments starting at knot p and
// sets the control points.
func (h *hobby) solve(p, q, n int) {
	h.uu = grow(h.uu, n+2)
	h.vv = grow(h.vv, n+2)
	h.ww = grow(h.ww, n+2)
	h.theta = grow(h.theta, n+2)
	uu, vv, ww, theta, psi, dist := h.uu, h.vv, h.ww, h.theta, h.psi, h.dist

	r, s := p, p
	for k := 0; ; k++ {
		t := h.next(s)
		ks, kt, kr := &h.knots[s], &h.knots[t], &h.knots[r]
		if k == 0 {
			switch ks.Right.Type {
			case KnotGiven:
				chord := h.delta[0].Angle()
				if kt.Left.Type == KnotGiven {
					th := reduceAngle(ks.Right.Angle - chord)
					phi := -reduceAngle(kt.Left.Angle - chord)
					h.setControls(s, t, 0, th, phi)
					return
				}
				vv[0] = reduceAngle(ks.Right.Angle - chord)
				uu[0], ww[0] = 0, 0
			case KnotCurl:
				if kt.Left.Type == KnotCurl {
					// A straight line.
					d := h.delta[0]
					ks.Right.Control = ks.Point.Translate(d.Div(3 * math.Abs(ks.Right.Tension)))
					kt.Left.Control = kt.Point.Translate(d.Div(-3 * math.Abs(kt.Left.Tension)))
					ks.Right.Type, kt.Left.Type = KnotExplicit, KnotExplicit
					return
				}
				uu[0] = curlRatio(ks.Right.Curl, math.Abs(ks.Right.Tension), math.Abs(kt.Left.Tension))
				vv[0] = -psi[1] * uu[0]
				ww[0] = 0
			case KnotOpen:
				uu[0], vv[0], ww[0] = 0, 0, 1
			default:
				panic("unreachable")
			}
		} else {
			switch ks.Left.Type {
			case KnotOpen, knotEndCycle:
				// Match the mock curvatures on both sides of knot s.
				rt, lt := math.Abs(kr.Right.Tension), math.Abs(kt.Left.Tension)
				aa := 1 / (3*rt - 1)
				dd := dist[k] * (3 - 1/rt)
				bb := 1 / (3*lt - 1)
				ee := dist[k-1] * (3 - 1/lt)
				cc := 1 - uu[k-1]*aa
				dd *= cc
				if slt, srt := math.Abs(ks.Left.Tension), math.Abs(ks.Right.Tension); slt < srt {
					f := slt / srt
					dd *= f * f
				} else if srt < slt {
					f := srt / slt
					ee *= f * f
				}
				ff := ee / (ee + dd)
				uu[k] = ff * bb
				acc := -psi[k+1] * uu[k]
				if kr.Right.Type == KnotCurl {
					ww[k] = 0
					vv[k] = acc - psi[1]*(1-ff)
				} else {
					ff = (1 - ff) / cc
					acc -= psi[k] * ff
					ff *= aa
					vv[k] = acc - vv[k-1]*ff
					ww[k] = -ww[k-1] * ff
				}
				if ks.Left.Type == knotEndCycle {
					// θ_n = a + b·θ_n, with θ_n = θ_0.
					a, b := 0.0, 1.0
					for j := n - 1; j >= 1; j-- {
						a = vv[j] - a*uu[j]
						b = ww[j] - b*uu[j]
					}
					a = vv[n] - a*uu[n]
					b = ww[n] - b*uu[n]
					a /= 1 - b
					theta[n] = a
					vv[0] = a
					for j := 1; j < n; j++ {
						vv[j] += a * ww[j]
					}
					h.finish(p, n)
					return
				}
			case KnotCurl:
				ff := curlRatio(ks.Left.Curl, math.Abs(ks.Left.Tension), math.Abs(kr.Right.Tension))
				theta[n] = -vv[n-1] * ff / (1 - ff*uu[n-1])
				h.finish(p, n)
				return
			case KnotGiven:
				theta[n] = reduceAngle(ks.Left.Angle - h.delta[n-1].Angle())
				h.finish(p, n)
				return
			default:
				panic("unreachable")
			}
		}
		r, s = s, t
	}
}

// finish back-substitutes the angles and sets the control points of the n
// segments starting at knot p.
func (h *hobby) finish(p, n int) {
	theta := h.theta
	for k := n - 1; k >= 0; k-- {
		theta[k] = h.vv[k] - theta[k+1]*h.uu[k]
	}
	s := p
	for k := range n {
		t := h.next(s)
		h.setControls(s, t, k, theta[k], -h.psi[k+1]-theta[k+1])
		s = t
	}
}

// setControls sets the control points of the segment from knot p to knot
// q, given the angles θ and φ between its end directions and the chord
// delta[k].
func (h *hobby) setControls(p, q, k int, theta, phi float64) {
	kp, kq := &h.knots[p], &h.knots[q]
	st, ct := math.Sincos(theta)
	sf, cf := math.Sincos(phi)
	rr := velocity(st, ct, sf, cf, math.Abs(kp.Right.Tension))
	ss := velocity(sf, cf, st, ct, math.Abs(kq.Left.Tension))
	if kp.Right.Tension < 0 || kq.Left.Tension < 0 {
		// Stay inside the triangle formed by the chord and the end
		// directions.
		if (st >= 0 && sf >= 0) || (st <= 0 && sf <= 0) {
			sine := math.Abs(st)*cf + math.Abs(sf)*ct
			if sine > 0 {
				sine *= 1 + 1.0/65536
				if kp.Right.Tension < 0 && math.Abs(sf) < rr*sine {
					rr = math.Abs(sf) / sine
				}
				if kq.Left.Tension < 0 && math.Abs(st) < ss*sine {
					ss = math.Abs(st) / sine
				}
			}
		}
	}
	d := h.delta[k]
	kp.Right.Control = kp.Point.Translate(d.Rotate(theta).Mul(rr))
	kq.Left.Control = kq.Point.Translate(d.Rotate(-phi).Mul(-ss))
	kp.Right.Type, kq.Left.Type = KnotExplicit, KnotExplicit
}

// velocity returns the length of the control arm relative to the chord,
// for the angles θ and φ at the start and the end of a segment and a
// tension t.
func velocity(st, ct, sf, cf, t float64) float64 {
	acc := (st - sf/16) * (sf - st/16) * (ct - cf)
	num := 2 + math.Sqrt2*acc
	denom := 3 + 1.5*(math.Sqrt(5)-1)*ct + 1.5*(3-math.Sqrt(5))*cf
	num /= t
	if num >= 4*denom {
		return 4
	}
	return num / denom
}

// curlRatio returns the ratio of the angles at a knot with curl gamma,
// for the tensions a on the near and b on the far side of the segment.
func curlRatio(gamma, a, b float64) float64 {
	alpha, beta := 1/a, 1/b
	num := (3-alpha)*alpha*alpha*gamma + beta*beta*beta
	denom := alpha*alpha*alpha*gamma + (3-beta)*beta*beta
	if num >= 4*denom {
		return 4
	}
	return num / denom
}

// reduceAngle maps a into [-π, π].
func reduceAngle(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}

// path returns the spline as cubic Béziers.
func (h *hobby) path() Path {
	segs := make([]Segment, 0, h.segments())
	for i := range h.segments() {
		p, q := &h.knots[i], h.at(i+1)
		segs = append(segs, CubicSeg(p.Point, p.Right.Control, q.Left.Control, q.Point))
	}
	return Path{{Segments: segs, Closed: h.cycle}}
}
