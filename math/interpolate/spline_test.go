package interpolate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplineKnots(t *testing.T) {
	xs := []float64{0, 0.5, 1, 1.5, 2, 3}
	ys := []float64{1, -2, 0.25, 4, 4, 7}
	sp := NewSpline(xs, ys)

	for i := range xs {
		assert.InDelta(t, ys[i], sp.Eval(xs[i]), 1e-12, "knot %d", i)
	}
}

func TestSplineLinear(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{2, 3, 4, 5, 6}
	sp := NewSpline(xs, ys)

	for _, x := range []float64{0, 0.3, 1.7, 2.5, 3.99, 4} {
		assert.InDelta(t, 2+x, sp.Eval(x), 1e-12)
		assert.InDelta(t, 1, sp.Diff(x, 1), 1e-12)
		assert.InDelta(t, 0, sp.Diff(x, 2), 1e-12)
	}
}

func TestSplineDecreasing(t *testing.T) {
	xs := []float64{4, 3, 2, 1, 0}
	ys := []float64{6, 5, 4, 3, 2}
	sp := NewSpline(xs, ys)

	lo, hi := sp.Range()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 4.0, hi)
	assert.InDelta(t, 3.5, sp.Eval(1.5), 1e-12)
}

func TestSplineSmooth(t *testing.T) {
	n := 41
	xs, ys := make([]float64, n), make([]float64, n)
	for i := range xs {
		xs[i] = float64(i) / float64(n-1) * math.Pi
		ys[i] = math.Sin(xs[i])
	}
	sp := NewSpline(xs, ys)

	for x := 0.05; x < math.Pi; x += 0.1 {
		assert.InDelta(t, math.Sin(x), sp.Eval(x), 1e-4)
	}
}

func TestSplinePanics(t *testing.T) {
	assert.Panics(t, func() { NewSpline([]float64{1}, []float64{1}) })
	assert.Panics(t, func() { NewSpline([]float64{1, 2}, []float64{1}) })
	assert.Panics(t, func() {
		NewSpline([]float64{1, 2, 2}, []float64{1, 2, 3})
	})

	sp := NewSpline([]float64{0, 1, 2}, []float64{0, 1, 4})
	assert.Panics(t, func() { sp.Eval(2.5) })
}

func TestTriDiagAt(t *testing.T) {
	// [2 1 0; 1 2 1; 0 1 2] x = [4 8 8] has solution x = [1 2 3].
	as := []float64{0, 1, 1}
	bs := []float64{2, 2, 2}
	cs := []float64{1, 1, 0}
	rs := []float64{4, 8, 8}
	out := make([]float64, 3)

	TriDiagAt(as, bs, cs, rs, out)
	assert.InDeltaSlice(t, []float64{1, 2, 3}, out, 1e-12)
}
