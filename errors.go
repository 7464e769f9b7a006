package deform

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateInput is returned for input that has no geometry left to
	// work on, such as paths whose segments are all shorter than the
	// tolerance, or splines with fewer than two knots.
	ErrDegenerateInput = errors.New("degenerate input")
	// ErrUnsolvableGeometry is returned when no control points could be found
	// for several consecutive pieces of a curve.
	ErrUnsolvableGeometry = errors.New("unsolvable geometry")
	// ErrTopologyInconsistency marks a self-intersection that can't be
	// classified. It is reported through tracing and never returned by the
	// public operations.
	ErrTopologyInconsistency = errors.New("topology inconsistency")
	// errInternal marks broken invariants, such as runaway recursion.
	errInternal = errors.New("internal error")
)

// GeometryError describes where on the input an operation failed.
type GeometryError struct {
	// Op is the operation that failed, e.g. "offset".
	Op string
	// Param is the position on the input path the error refers to.
	Param Param
	Msg   string
	Err   error
}

func (e *GeometryError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s at %s: %s", e.Op, e.Param, e.Err)
	}
	return fmt.Sprintf("%s at %s: %s: %s", e.Op, e.Param, e.Err, e.Msg)
}

func (e *GeometryError) Unwrap() error { return e.Err }

func geometryError(op string, at Param, err error, format string, args ...any) *GeometryError {
	return &GeometryError{Op: op, Param: at, Msg: fmt.Sprintf(format, args...), Err: err}
}
