/*package integrator interpolates forces from a potential grid onto particles
and advances them with a leapfrog scheme in the scale factor.
*/
package integrator

import (
	"fmt"
	"runtime"

	"github.com/dgravesa/go-parallel/parallel"

	"github.com/phil-mansfield/gopm/cosmo"
	"github.com/phil-mansfield/gopm/density"
	"github.com/phil-mansfield/gopm/geom"
	"github.com/phil-mansfield/gopm/potential"
)

// Integrator advances a particle set by one step at a time.
type Integrator struct {
	g       geom.Grid
	workers int
	solver  *potential.Solver
	c       cosmo.Params

	// Per-axis force buffers, resized to the particle count.
	forces [3][]float64
}

// New creates an Integrator for grids of side cells. If workers is not
// positive the number of logical cores is used.
func New(
	cells, workers int, solver *potential.Solver, c cosmo.Params,
) *Integrator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if solver.Cells() != cells {
		panic(fmt.Sprintf(
			"Solver of side %d given to Integrator of side %d.",
			solver.Cells(), cells,
		))
	}

	it := &Integrator{workers: workers, solver: solver, c: c}
	it.g.Init(cells)
	return it
}

// Force writes the force along axis acting on every particle to out, using
// central differences of phi at the eight CIC corners of each particle.
func (it *Integrator) Force(phi []float64, xs [3][]float64, axis int, out []float64) {
	n := density.CheckParticles(xs)
	it.g.CheckLen("potential grid", len(phi))
	if len(out) != n {
		panic(fmt.Sprintf(
			"Force buffer has length %d, but there are %d particles.",
			len(out), n,
		))
	} else if axis < 0 || axis > 2 {
		panic(fmt.Sprintf("Axis must be 0, 1, or 2, but is %d.", axis))
	}

	g := &it.g
	parallel.WithNumGoroutines(it.workers).For(n, func(i, _ int) {
		cell, w := density.CICWeights(xs[0][i], xs[1][i], xs[2][i], g.Length)
		sum := 0.0
		for c := 0; c < density.Corners; c++ {
			lo := phi[density.CornerIdx(g, cell, c, axis, -1)]
			hi := phi[density.CornerIdx(g, cell, c, axis, +1)]
			sum += w[c] * (lo - hi)
		}
		out[i] = sum / 2
	})
}

// Step solves for the potential of rho at scale factor a, then kicks the
// velocities vs and drifts the positions xs by da in place. The potential is
// returned.
func (it *Integrator) Step(
	rho []float64, xs, vs [3][]float64, a, da float64,
) []float64 {
	n := density.CheckParticles(xs)
	if density.CheckParticles(vs) != n {
		panic(fmt.Sprintf(
			"%d particle positions, but %d velocities.", n, len(vs[0]),
		))
	}

	phi := it.solver.Potential(rho, a)

	// All forces use the positions at the start of the step.
	for axis := 0; axis < 3; axis++ {
		if cap(it.forces[axis]) < n {
			it.forces[axis] = make([]float64, n)
		}
		it.forces[axis] = it.forces[axis][:n]
		it.Force(phi, xs, axis, it.forces[axis])
	}

	kick := da * it.c.ExpansionFactor(a)
	aHalf := a + da/2
	drift := da * it.c.ExpansionFactor(aHalf) / (aHalf * aHalf)
	w := float64(it.g.Length)

	parallel.WithNumGoroutines(it.workers).For(n, func(i, _ int) {
		for axis := 0; axis < 3; axis++ {
			vs[axis][i] += kick * it.forces[axis][i]
			xs[axis][i] = geom.FMod(xs[axis][i]+drift*vs[axis][i], w)
		}
	})

	return phi
}
