/*package interpolate provides one-dimensional interpolators over tables of
sorted points.
*/
package interpolate

import (
	"fmt"
)

// Interpolator is a function defined by a table of points.
type Interpolator interface {
	Eval(x float64) float64
	EvalAll(xs []float64, out ...[]float64) []float64
	// Range returns the smallest and largest x values that can be evaluated.
	Range() (lo, hi float64)
}

var (
	_ Interpolator = &Spline{}
	_ Interpolator = &Linear{}
)

// checkTable panics if xs and ys cannot be interpolated and returns true if
// xs is increasing.
func checkTable(name string, xs, ys []float64) bool {
	if len(xs) != len(ys) {
		panic(fmt.Sprintf(
			"Table given to %s has len(xs) = %d but len(ys) = %d.",
			name, len(xs), len(ys),
		))
	} else if len(xs) <= 1 {
		panic(fmt.Sprintf(
			"Table given to %s has length of %d.", name, len(xs),
		))
	}

	incr := xs[0] < xs[1]
	for i := 0; i < len(xs)-1; i++ {
		if (xs[i+1] <= xs[i]) == incr {
			panic(fmt.Sprintf("Table given to %s not strictly sorted.", name))
		}
	}
	return incr
}

// search returns the index of the segment of a sorted table containing x.
// dx is the average spacing of the table.
func search(xs []float64, incr bool, dx, x float64) int {
	// Guess under the assumption of uniform spacing.
	guess := int((x - xs[0]) / dx)
	if guess >= 0 && guess < len(xs)-1 &&
		(xs[guess] <= x == incr) &&
		(xs[guess+1] >= x == incr) {

		return guess
	}

	lo, hi := 0, len(xs)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if incr == (x >= xs[mid]) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}
