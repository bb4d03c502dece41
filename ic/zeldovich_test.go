package ic

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gopm/cosmo"
	"github.com/phil-mansfield/gopm/spectral"
)

func newZeldovich(cells, particles int, box float64) *Zeldovich {
	return New(
		cells, particles, box, 0.01, cosmo.Planck(),
		spectral.NewFFT3(particles, 2),
	)
}

func TestUniformLattice(t *testing.T) {
	cells, particles := 16, 4
	z := newZeldovich(cells, particles, 5)

	for _, val := range []float64{0, 1, 17} {
		rho := make([]float64, particles*particles*particles)
		for i := range rho {
			rho[i] = val
		}

		xs, vs := z.InitialConditions(rho)
		for i := range xs[0] {
			qx, qy, qz := z.pg.Coords(i)
			q := [3]int{qx, qy, qz}
			for axis := 0; axis < 3; axis++ {
				assert.InDelta(t, float64(q[axis])*4+0.5, xs[axis][i], 1e-9)
				assert.InDelta(t, 0, vs[axis][i], 1e-9)
			}
		}
	}
}

func TestPositionsInRange(t *testing.T) {
	cells, particles := 16, 8
	z := newZeldovich(cells, particles, 5)
	gen := rand.New(rand.NewSource(11))

	rho := make([]float64, particles*particles*particles)
	for i := range rho {
		rho[i] = gen.NormFloat64() * 1e4
	}

	xs, vs := z.InitialConditions(rho)
	for axis := 0; axis < 3; axis++ {
		require.Equal(t, len(rho), len(xs[axis]))
		require.Equal(t, len(rho), len(vs[axis]))
		for i := range xs[axis] {
			assert.True(t, xs[axis][i] >= 0 && xs[axis][i] < float64(cells))
			assert.False(t, math.IsNaN(vs[axis][i]))
		}
	}
}

func TestPlaneWaveDisplacement(t *testing.T) {
	cells, particles, box := 16, 8, 5.0
	z := newZeldovich(cells, particles, box)

	n := particles
	rho := make([]float64, n*n*n)
	for i := range rho {
		x, _, _ := z.pg.Coords(i)
		rho[i] = math.Cos(2 * math.Pi * float64(x) / float64(n))
	}

	k1 := 2 * math.Pi / box
	scale := float64(cells) / float64(particles) * float64(cells) / box

	disp := z.Displacements(rho)
	for i := range rho {
		x, _, _ := z.pg.Coords(i)
		want := -math.Sin(2*math.Pi*float64(x)/float64(n)) / k1 * scale
		assert.InDelta(t, want, disp[0][i], 1e-9)
		assert.InDelta(t, 0, disp[1][i], 1e-9)
		assert.InDelta(t, 0, disp[2][i], 1e-9)
	}

	// Velocities follow the displacement field.
	c := cosmo.Planck()
	a := 0.01
	vScale := a * c.GrowthFactor(a) * c.Hubble(a) * c.ExpansionFactor(a)
	_, vs := z.InitialConditions(rho)
	for i := range rho {
		assert.InDelta(t, vScale*disp[0][i], vs[0][i], 1e-9)
	}
}

func TestPreconditions(t *testing.T) {
	assert.Panics(t, func() {
		New(16, 4, 5, 0.01, cosmo.Planck(), spectral.NewFFT3(8, 1))
	})
	assert.Panics(t, func() {
		New(16, 0, 5, 0.01, cosmo.Planck(), spectral.NewFFT3(4, 1))
	})

	z := newZeldovich(16, 4, 5)
	assert.Panics(t, func() { z.InitialConditions(make([]float64, 63)) })
}
