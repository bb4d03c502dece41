package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phil-mansfield/gopm/cosmo"
	"github.com/phil-mansfield/gopm/density"
	"github.com/phil-mansfield/gopm/potential"
	"github.com/phil-mansfield/gopm/spectral"
)

func newIntegrator(n, workers int) *Integrator {
	c := cosmo.Planck()
	s := potential.NewSolver(
		n, c.OmegaM, potential.Kernel(n), spectral.NewFFT3(n, workers),
	)
	return New(n, workers, s, c)
}

func TestForceStencil(t *testing.T) {
	n := 8
	it := newIntegrator(n, 2)

	phi := make([]float64, n*n*n)
	for i := range phi {
		x, _, _ := it.g.Coords(i)
		phi[i] = math.Cos(2 * math.Pi * float64(x) / float64(n))
	}

	xs := [3][]float64{{0, 2, 6, 2.5}, {0, 3, 1, 0}, {0, 5, 7, 0}}
	want := []float64{
		0,
		(math.Cos(math.Pi/4) - math.Cos(3*math.Pi/4)) / 2,
		(math.Cos(5*math.Pi/4) - math.Cos(7*math.Pi/4)) / 2,
	}
	out := make([]float64, 4)

	it.Force(phi, xs, 0, out)
	for i := range want {
		assert.InDelta(t, want[i], out[i], 1e-12, "particle %d", i)
	}
	// Halfway between the stencils of cells 2 and 3.
	f3 := (math.Cos(2*math.Pi*2/8) - math.Cos(2*math.Pi*4/8)) / 2
	assert.InDelta(t, (want[1]+f3)/2, out[3], 1e-12)

	// Points towards the potential minimum.
	assert.True(t, out[1] > 0)
	assert.True(t, out[2] < 0)

	for axis := 1; axis < 3; axis++ {
		it.Force(phi, xs, axis, out)
		for i := range out {
			assert.InDelta(t, 0, out[i], 1e-12)
		}
	}
}

func TestUniformDensityDrift(t *testing.T) {
	n := 8
	it := newIntegrator(n, 3)
	rho := make([]float64, n*n*n)
	for i := range rho {
		rho[i] = 8
	}

	xs := [3][]float64{{1.5, 7.9}, {2, 0}, {3, 4}}
	vs := [3][]float64{{1, 1}, {0, -2}, {0, 0}}
	a, da := 0.5, 0.01

	phi := it.Step(rho, xs, vs, a, da)
	for i := range phi {
		assert.InDelta(t, 0, phi[i], 1e-9)
	}

	c := cosmo.Planck()
	ah := a + da/2
	drift := da * c.ExpansionFactor(ah) / (ah * ah)

	assert.InDelta(t, 1, vs[0][0], 1e-9)
	assert.InDelta(t, 1.5+drift, xs[0][0], 1e-9)
	assert.InDelta(t, math.Mod(7.9+drift, 8), xs[0][1], 1e-9)
	assert.InDelta(t, 8-2*drift, xs[1][1], 1e-9)
	assert.InDelta(t, 4, xs[2][1], 1e-12)
}

func TestStepKeepsParticlesInBox(t *testing.T) {
	n := 16
	it := newIntegrator(n, 4)
	d := density.NewDepositor(n, 4)
	gen := rand.New(rand.NewSource(5))

	np := 4 * 4 * 4
	var xs, vs [3][]float64
	for axis := 0; axis < 3; axis++ {
		xs[axis] = make([]float64, np)
		vs[axis] = make([]float64, np)
		for i := 0; i < np; i++ {
			xs[axis][i] = gen.Float64() * float64(n)
			vs[axis][i] = gen.NormFloat64() * 1e3
		}
	}

	a, da := 0.01, 0.00099
	for step := 0; step < 10; step++ {
		rho := d.Deposit(xs, 64)
		assert.InDelta(t, float64(np)*64, density.Mass(rho), 1e-6)
		it.Step(rho, xs, vs, a, da)
		a += da

		for axis := 0; axis < 3; axis++ {
			for i := range xs[axis] {
				x := xs[axis][i]
				assert.True(t, x >= 0 && x < float64(n), "x = %g", x)
			}
		}
	}
}

func TestPreconditions(t *testing.T) {
	it := newIntegrator(4, 1)
	phi := make([]float64, 64)
	xs := [3][]float64{{1}, {1}, {1}}

	assert.Panics(t, func() { it.Force(phi, xs, 3, make([]float64, 1)) })
	assert.Panics(t, func() { it.Force(phi, xs, 0, make([]float64, 2)) })
	assert.Panics(t, func() { it.Force(phi[:10], xs, 0, make([]float64, 1)) })
	assert.Panics(t, func() {
		it.Step(phi, xs, [3][]float64{{1, 2}, {1, 2}, {1, 2}}, 1, 0.1)
	})
	assert.Panics(t, func() {
		New(8, 1, potential.NewSolver(
			4, 0.3, potential.Kernel(4), spectral.NewFFT3(4, 1),
		), cosmo.Planck())
	})
}

func BenchmarkStep(b *testing.B) {
	n := 32
	it := newIntegrator(n, 0)
	d := density.NewDepositor(n, 0)
	gen := rand.New(rand.NewSource(1))

	np := 16 * 16 * 16
	var xs, vs [3][]float64
	for axis := 0; axis < 3; axis++ {
		xs[axis] = make([]float64, np)
		vs[axis] = make([]float64, np)
		for i := range xs[axis] {
			xs[axis][i] = gen.Float64() * float64(n)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it.Step(d.Deposit(xs, 8), xs, vs, 0.5, 0.001)
	}
}
