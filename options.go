package deform

import (
	"math"
	"slices"
)

// DefaultEpsilon is the tolerance used by the default options for point
// coincidence, parameter coincidence and degeneracy tests.
const DefaultEpsilon = 1e-5

// OffsetOptions configures [Offset]. Zero values of RelativeError,
// CheckParams, CurvatureSamples and Epsilon are replaced by those of
// [DefaultOffsetOptions].
type OffsetOptions struct {
	// Allowed deviation of the offset from the exact distance, relative to
	// the distance.
	RelativeError float64
	// Join outer corners with miters instead of circular arcs.
	SharpOuterCorners bool
	// Remove the loops that a naive offset produces at inner corners and
	// over-curved sections.
	ResolveSelfIntersections bool
	// Parameters at which a fitted cubic is checked against the exact
	// offset. Between them the error isn't bounded.
	CheckParams []float64
	// Number of samples per segment used to find where the curvature crosses
	// the reciprocal of the distance.
	CurvatureSamples int
	Epsilon          float64
}

var DefaultOffsetOptions = OffsetOptions{
	RelativeError:            0.05,
	SharpOuterCorners:        false,
	ResolveSelfIntersections: true,
	CheckParams:              []float64{0.25, 0.5, 0.75},
	CurvatureSamples:         11,
	Epsilon:                  DefaultEpsilon,
}

func (o OffsetOptions) WithRelativeError(e float64) OffsetOptions { o.RelativeError = e; return o }
func (o OffsetOptions) WithSharpOuterCorners(b bool) OffsetOptions {
	o.SharpOuterCorners = b
	return o
}
func (o OffsetOptions) WithResolveSelfIntersections(b bool) OffsetOptions {
	o.ResolveSelfIntersections = b
	return o
}
func (o OffsetOptions) WithCheckParams(ts ...float64) OffsetOptions {
	o.CheckParams = slices.Clone(ts)
	return o
}
func (o OffsetOptions) WithCurvatureSamples(n int) OffsetOptions { o.CurvatureSamples = n; return o }
func (o OffsetOptions) WithEpsilon(eps float64) OffsetOptions    { o.Epsilon = eps; return o }

// resolved fills in defaults for unset fields and detaches CheckParams from
// the caller's slice.
func (o OffsetOptions) resolved() OffsetOptions {
	def := DefaultOffsetOptions
	if o.RelativeError <= 0 {
		o.RelativeError = def.RelativeError
	}
	if o.Epsilon <= 0 {
		o.Epsilon = def.Epsilon
	}
	if len(o.CheckParams) == 0 {
		o.CheckParams = def.CheckParams
	}
	if o.CurvatureSamples <= 0 {
		o.CurvatureSamples = def.CurvatureSamples
	}
	o.CheckParams = slices.Clone(o.CheckParams)
	return o
}

// SmoothOptions configures [SmoothCorners].
type SmoothOptions struct {
	// Scales the arms of the blend at line-line corners. 1 is a round
	// blend, smaller values produce tighter corners.
	Softness float64
	// Keep the sign of the curvature at the cut points instead of forcing
	// the blend to turn toward the outgoing direction.
	ObeyCurvatureSign bool
	// Segments shorter than this times the radius are merged into their
	// neighbors before smoothing.
	RelativeSkipThreshold float64
	Epsilon               float64
}

var DefaultSmoothOptions = SmoothOptions{
	Softness:              1,
	ObeyCurvatureSign:     false,
	RelativeSkipThreshold: 0.01,
	Epsilon:               DefaultEpsilon,
}

func (o SmoothOptions) WithSoftness(s float64) SmoothOptions { o.Softness = s; return o }
func (o SmoothOptions) WithObeyCurvatureSign(b bool) SmoothOptions {
	o.ObeyCurvatureSign = b
	return o
}
func (o SmoothOptions) WithRelativeSkipThreshold(r float64) SmoothOptions {
	o.RelativeSkipThreshold = r
	return o
}
func (o SmoothOptions) WithEpsilon(eps float64) SmoothOptions { o.Epsilon = eps; return o }

// CycloidOptions configures [WrapCycloid].
type CycloidOptions struct {
	// Number of half loops along the wrapped part of each subpath.
	HalfLoops int
	// Arc lengths at the start and end of each subpath that are kept as is.
	SkipFirst float64
	SkipLast  float64
	// Number of cubics per half loop.
	CurvesPerHalfLoop int
	// +1 starts the first half loop on the left of the path, -1 on the
	// right.
	Sign int
	// Angle in radians between the path and the axis of the helix. 0 is a
	// flat sine wave, π/2 a row of circles.
	TurnAngle float64
	Epsilon   float64
}

var DefaultCycloidOptions = CycloidOptions{
	HalfLoops:         10,
	CurvesPerHalfLoop: 3,
	Sign:              1,
	TurnAngle:         math.Pi / 4,
	Epsilon:           DefaultEpsilon,
}

func (o CycloidOptions) WithHalfLoops(n int) CycloidOptions { o.HalfLoops = n; return o }
func (o CycloidOptions) WithSkip(first, last float64) CycloidOptions {
	o.SkipFirst, o.SkipLast = first, last
	return o
}
func (o CycloidOptions) WithCurvesPerHalfLoop(n int) CycloidOptions {
	o.CurvesPerHalfLoop = n
	return o
}
func (o CycloidOptions) WithSign(sign int) CycloidOptions       { o.Sign = sign; return o }
func (o CycloidOptions) WithTurnAngle(th float64) CycloidOptions { o.TurnAngle = th; return o }
func (o CycloidOptions) WithEpsilon(eps float64) CycloidOptions  { o.Epsilon = eps; return o }

// FitOptions configures [FitSpline].
type FitOptions struct {
	Epsilon float64
}

var DefaultFitOptions = FitOptions{
	Epsilon: DefaultEpsilon,
}

func (o FitOptions) WithEpsilon(eps float64) FitOptions { o.Epsilon = eps; return o }

// accuracy is the arc length accuracy used for a given tolerance.
func accuracy(eps float64) float64 {
	return eps * 0.1
}
