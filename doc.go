// Package deform provides geometric deformations of 2D paths made of lines
// and cubic Béziers: offsetting, corner smoothing, wrapping a cycloid around
// a path, and fitting smooth splines through points.
//
// # Paths
//
// A [Path] is a sequence of [Subpath] values, each of which is a sequence of
// connected [Segment] values that may be closed. Segments are either lines or
// cubic Béziers. Locations on a path are addressed by [Param], a triple of
// subpath index, segment index and parameter t ∈ [0, 1]. The end of one
// segment and the start of the next are the same location, see
// [Path.Canonical].
//
// Paths can be converted to and from drawing commands with [Path.Elements]
// and [PathFromElements].
//
// # Operations
//
// We provide the following operations:
//
//   - Offsetting paths by a signed distance (see [Offset] and [RawOffset])
//   - Smoothing corners (see [SmoothCorners])
//   - Wrapping cycloids around paths (see [WrapCycloid])
//   - Fitting Hobby splines through knots (see [FitSpline] and [Spline])
//
// Every operation takes an options struct, such as [OffsetOptions]. The
// package provides defaults for each, such as [DefaultOffsetOptions], which
// can be adjusted with With methods:
//
//	opts := deform.DefaultOffsetOptions.WithRelativeError(0.01)
//
// # Offsetting
//
// Offsetting runs in stages. Every segment is offset separately: lines
// exactly and cubics by fitting cubics whose end tangents and end curvatures
// match the exact offset curve, splitting where the fit isn't good enough.
// Adjacent offset segments are then joined at corners, with circular arcs or
// miters on the outside and by trimming on the inside. Finally, the
// intersections of the raw offset with itself are used to remove the parts
// that are closer to the source path than the offset distance.
//
// [RawOffset] stops before the last stage and reports for every output
// segment where it came from, as an [OffsetRecord].
//
// # Errors
//
// Operations return errors of type [*GeometryError], which wrap one of
// [ErrDegenerateInput], [ErrUnsolvableGeometry] and [ErrTopologyInconsistency]
// and can be inspected with [errors.Is]. Recoverable problems are traced
// instead of returned, with the tracing key "deform".
//
// # Literature
//
// This package makes use of the following ideas:
//   - [A Primer on Bézier Curves]
//   - [Parallel curves of cubic Béziers] by Raph Levien
//   - [Smooth, easy to compute interpolating splines] by John D. Hobby
//   - [How to solve a cubic equation, revisited] by Christoph Peters
//   - the choice of control points in MetaPost's mp_make_choices
//
// [A Primer on Bézier Curves]: https://pomax.github.io/bezierinfo/
// [Parallel curves of cubic Béziers]: https://raphlinus.github.io/curves/2022/09/09/parallel-beziers.html
// [Smooth, easy to compute interpolating splines]: https://doi.org/10.1007/BF02187690
// [How to solve a cubic equation, revisited]: https://momentsingraphics.de/CubicRoots.html
package deform
