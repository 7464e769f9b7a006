package deform

import (
	"math"
	"slices"
)

// ControlDists are the distances of the two inner control points of a cubic
// Bézier from its end points, measured along the end tangents. The control
// points of the cubic from a to b are a+A·ta and b−B·tb.
type ControlDists struct {
	A, B float64
}

func (c ControlDists) positive() bool { return c.A >= 0 && c.B >= 0 }

// controlProblem holds the geometry of a single control point problem.
//
// With T = ta×tb, D = ta×(b−a) and E = (b−a)×tb, a cubic with control
// distances α and β has end curvatures satisfying
//
//	D − β·T = 3/2·ka·α²
//	E − α·T = 3/2·kb·β²
type controlProblem struct {
	a, b          Point
	ta, tb        Vec2
	ka, kb        Curvature
	T, D, E       float64
	chord         float64
	allowNegative bool
	eps           float64
}

type controlStrategy struct {
	name  string
	solve func(p *controlProblem) []ControlDists
}

// controlStrategies are tried in order until one of them produces an
// acceptable candidate.
var controlStrategies = []controlStrategy{
	{"degenerate-zero", (*controlProblem).degenerateZero},
	{"degenerate-infinite", (*controlProblem).degenerateInfinite},
	{"general-quartic", (*controlProblem).generalQuartic},
	{"small-T", (*controlProblem).smallT},
	{"small-curvature", (*controlProblem).smallCurvature},
}

const (
	// Tangents whose cross product is below this are treated as parallel.
	controlSmallT = 1e-8
	// Curvatures whose product with the chord is below this are treated as
	// zero.
	controlSmallCurvature = 1e-8
)

// SolveControlDists computes candidate control distances for a cubic Bézier
// from a to b with unit end tangents ta and tb and end curvatures ka and kb.
// Candidates are ordered by preference. Negative distances are only
// returned if allowNegative is set. An empty result means that no cubic
// could be found.
func SolveControlDists(a, b Point, ta, tb Vec2, ka, kb Curvature, allowNegative bool, eps float64) []ControlDists {
	cands, _ := solveControlDists(a, b, ta, tb, ka, kb, allowNegative, eps)
	return cands
}

// solveControlDists is like SolveControlDists but also returns the name of
// the strategy that produced the candidates.
func solveControlDists(a, b Point, ta, tb Vec2, ka, kb Curvature, allowNegative bool, eps float64) ([]ControlDists, string) {
	ab := b.Sub(a)
	p := &controlProblem{
		a: a, b: b,
		ta: ta, tb: tb,
		ka: ka, kb: kb,
		T:             ta.Cross(tb),
		D:             ta.Cross(ab),
		E:             ab.Cross(tb),
		chord:         ab.Hypot(),
		allowNegative: allowNegative,
		eps:           eps,
	}
	if p.chord < eps {
		return nil, ""
	}
	for _, s := range controlStrategies {
		cands := p.accept(s.solve(p))
		if len(cands) > 0 {
			p.rank(cands)
			return cands, s.name
		}
	}
	return nil, ""
}

// accept drops invalid candidates, negative ones unless they are allowed,
// and duplicates.
func (p *controlProblem) accept(cands []ControlDists) []ControlDists {
	out := cands[:0]
	for _, c := range cands {
		if math.IsNaN(c.A) || math.IsNaN(c.B) || math.IsInf(c.A, 0) || math.IsInf(c.B, 0) {
			continue
		}
		if !p.allowNegative && !c.positive() {
			continue
		}
		dup := false
		for _, o := range out {
			if math.Abs(o.A-c.A) < p.eps && math.Abs(o.B-c.B) < p.eps {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

// tangentIntersection returns the distances from a and b to the intersection
// of the two tangent lines, if they intersect in front of a and behind b.
func (p *controlProblem) tangentIntersection() (float64, float64, bool) {
	if math.Abs(p.T) < controlSmallT {
		return 0, 0, false
	}
	da, db := p.E/p.T, p.D/p.T
	return da, db, da > 0 && db > 0
}

func (p *controlProblem) rank(cands []ControlDists) {
	ia, ib, ok := p.tangentIntersection()
	rankControlDists(cands, ia, ib, ok)
}

// rankControlDists orders candidates: fully positive pairs first, then pairs
// whose control points lie between the end points and the intersection of
// the tangents, then smaller magnitudes. The preference for control points
// inside the tangent triangle is a heuristic that avoids visible bulges, not
// a correctness requirement.
func rankControlDists(cands []ControlDists, ia, ib float64, haveIntersection bool) {
	inside := func(c ControlDists) bool {
		return haveIntersection && c.positive() && c.A <= ia && c.B <= ib
	}
	key := func(c ControlDists) (int, int, float64) {
		sign, tri := 1, 1
		if c.positive() {
			sign = 0
		}
		if inside(c) {
			tri = 0
		}
		return sign, tri, c.A*c.A + c.B*c.B
	}
	slices.SortStableFunc(cands, func(x, y ControlDists) int {
		xs, xt, xm := key(x)
		ys, yt, ym := key(y)
		switch {
		case xs != ys:
			return xs - ys
		case xt != yt:
			return xt - yt
		case xm < ym:
			return -1
		case xm > ym:
			return 1
		default:
			return 0
		}
	})
}

func (p *controlProblem) degenerateZero() []ControlDists {
	ka, kb := float64(p.ka), float64(p.kb)
	if (ka != 0 && kb != 0) || p.ka.IsInf() || p.kb.IsInf() {
		return nil
	}
	if math.Abs(p.T) < controlSmallT {
		return nil
	}
	switch {
	case ka == 0 && kb == 0:
		return []ControlDists{{p.E / p.T, p.D / p.T}}
	case ka == 0:
		beta := p.D / p.T
		return []ControlDists{{(p.E - 1.5*kb*beta*beta) / p.T, beta}}
	default:
		alpha := p.E / p.T
		return []ControlDists{{alpha, (p.D - 1.5*ka*alpha*alpha) / p.T}}
	}
}

// armsFromCurvature solves x·T_rest = 3/2·k·arm² for the arm, returning both
// signs.
func armsFromCurvature(rest float64, k float64) []float64 {
	if k == 0 {
		return nil
	}
	sq := 2 * rest / (3 * k)
	if sq < 0 {
		return nil
	}
	r := math.Sqrt(sq)
	if r == 0 {
		return []float64{0}
	}
	return []float64{r, -r}
}

func (p *controlProblem) degenerateInfinite() []ControlDists {
	infA, infB := p.ka.IsInf(), p.kb.IsInf()
	switch {
	case infA && infB:
		return []ControlDists{{0, 0}}
	case infA:
		// α = 0, so E = 3/2·kb·β².
		if p.kb == 0 {
			if math.Abs(p.T) < controlSmallT {
				return nil
			}
			return []ControlDists{{0, p.D / p.T}}
		}
		var out []ControlDists
		for _, beta := range armsFromCurvature(p.E, float64(p.kb)) {
			out = append(out, ControlDists{0, beta})
		}
		return out
	case infB:
		if p.ka == 0 {
			if math.Abs(p.T) < controlSmallT {
				return nil
			}
			return []ControlDists{{p.E / p.T, 0}}
		}
		var out []ControlDists
		for _, alpha := range armsFromCurvature(p.D, float64(p.ka)) {
			out = append(out, ControlDists{alpha, 0})
		}
		return out
	default:
		return nil
	}
}

func (p *controlProblem) residuals(c ControlDists) (float64, float64) {
	ka, kb := float64(p.ka), float64(p.kb)
	r1 := p.D - c.B*p.T - 1.5*ka*c.A*c.A
	r2 := p.E - c.A*p.T - 1.5*kb*c.B*c.B
	return r1, r2
}

// polish refines a candidate with a few Newton steps on the coupled
// equations.
func (p *controlProblem) polish(c ControlDists) ControlDists {
	ka, kb := float64(p.ka), float64(p.kb)
	for range 4 {
		r1, r2 := p.residuals(c)
		j11, j12 := 3*ka*c.A, p.T
		j21, j22 := p.T, 3*kb*c.B
		det := j11*j22 - j12*j21
		if det == 0 {
			break
		}
		// J·δ = r, where J is the negated Jacobian of the residuals.
		c.A += (r1*j22 - j12*r2) / det
		c.B += (j11*r2 - j21*r1) / det
	}
	return c
}

func (p *controlProblem) generalQuartic() []ControlDists {
	ka, kb := float64(p.ka), float64(p.kb)
	if ka == 0 || kb == 0 || p.ka.IsInf() || p.kb.IsInf() {
		return nil
	}
	T, D, E := p.T, p.D, p.E
	T3 := T * T * T
	alphas, na := SolveQuartic(1.5*kb*D*D-E*T*T, T3, -4.5*ka*kb*D, 0, 3.375*kb*ka*ka)
	betas, nb := SolveQuartic(1.5*ka*E*E-D*T*T, T3, -4.5*ka*kb*E, 0, 3.375*ka*kb*kb)

	scale := max(p.chord, math.Abs(D), math.Abs(E))
	tol := 1e-7 * scale
	var out []ControlDists
	for _, signA := range [2]float64{1, -1} {
		for _, signB := range [2]float64{1, -1} {
			for _, alpha := range alphas[:na] {
				if alpha*signA < 0 {
					continue
				}
				best := ControlDists{}
				bestRes := math.Inf(1)
				for _, beta := range betas[:nb] {
					if beta*signB < 0 {
						continue
					}
					c := p.polish(ControlDists{alpha, beta})
					r1, r2 := p.residuals(c)
					if res := math.Abs(r1) + math.Abs(r2); res < bestRes {
						best, bestRes = c, res
					}
				}
				if bestRes < tol {
					out = append(out, best)
				}
			}
		}
	}
	return out
}

func (p *controlProblem) smallT() []ControlDists {
	if math.Abs(p.T) >= controlSmallT {
		return nil
	}
	arm := func(rest float64, k Curvature) []float64 {
		if k == 0 || k.IsInf() {
			return []float64{p.chord / 3}
		}
		if arms := armsFromCurvature(rest, float64(k)); len(arms) > 0 {
			return arms
		}
		return []float64{p.chord / 3}
	}
	var out []ControlDists
	for _, alpha := range arm(p.D, p.ka) {
		for _, beta := range arm(p.E, p.kb) {
			out = append(out, ControlDists{alpha, beta})
		}
	}
	return out
}

func (p *controlProblem) smallCurvature() []ControlDists {
	if math.Abs(float64(p.ka))*p.chord >= controlSmallCurvature || math.Abs(float64(p.kb))*p.chord >= controlSmallCurvature {
		return nil
	}
	if ia, ib, ok := p.tangentIntersection(); ok {
		return []ControlDists{{ia, ib}}
	}
	return []ControlDists{{p.chord / 3, p.chord / 3}}
}

// cubicFromDists builds the cubic from a to b with the given control
// distances.
func cubicFromDists(a, b Point, ta, tb Vec2, c ControlDists) Segment {
	return CubicSeg(a, a.Translate(ta.Mul(c.A)), b.Translate(tb.Mul(-c.B)), b)
}
