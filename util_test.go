package deform

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func assertNear(t *testing.T, want, got Point, tol float64, msgAndArgs ...any) {
	t.Helper()
	if d := want.Distance(got); d > tol {
		assert.Fail(t, "points differ", "want %s, got %s (distance %g)", want, got, d)
		if len(msgAndArgs) > 0 {
			t.Log(msgAndArgs...)
		}
	}
}
