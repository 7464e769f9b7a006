package deform

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'deform'.
func tracer() tracing.Trace {
	return tracing.Select("deform")
}
