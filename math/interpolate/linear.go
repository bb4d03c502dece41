package interpolate

import (
	"fmt"
)

// Linear is a linear interpolator.
type Linear struct {
	xs, vals []float64
	incr     bool
	dx       float64
}

// NewLinear creates a linear interpolator for a sequence of strictly increasing
// or strictly decreasing points, xs, which take on the values given by vals.
// The table is copied.
//
// Lookups are O(1) for uniformly spaced tables and O(log |xs|) otherwise.
func NewLinear(xs, vals []float64) *Linear {
	lin := &Linear{incr: checkTable("NewLinear()", xs, vals)}
	lin.xs = append([]float64{}, xs...)
	lin.vals = append([]float64{}, vals...)
	lin.dx = (xs[len(xs)-1] - xs[0]) / float64(len(xs)-1)
	return lin
}

// Range returns the smallest and largest x values of the table.
func (lin *Linear) Range() (lo, hi float64) {
	lo, hi = lin.xs[0], lin.xs[len(lin.xs)-1]
	if !lin.incr {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Eval returns the interpolated value at x.
//
// Eval panics if called on a values outside the supplied range on inputs.
func (lin *Linear) Eval(x float64) float64 {
	if lo, hi := lin.Range(); x < lo || x > hi {
		panic(fmt.Sprintf(
			"Point %g given to Linear out of bounds [%g, %g].", x, lo, hi,
		))
	}

	i1 := search(lin.xs, lin.incr, lin.dx, x)
	i2 := i1 + 1
	x1, x2 := lin.xs[i1], lin.xs[i2]
	v1, v2 := lin.vals[i1], lin.vals[i2]

	return ((v2-v1)/(x2-x1))*(x-x1) + v1
}

// EvalAll evaluates the interpolator at all the given x values. If an output
// array is given, the output is written to that array (the array is still
// returned as a convenience).
func (lin *Linear) EvalAll(xs []float64, out ...[]float64) []float64 {
	if len(out) == 0 {
		out = [][]float64{make([]float64, len(xs))}
	}
	for i, x := range xs {
		out[0][i] = lin.Eval(x)
	}
	return out[0]
}
