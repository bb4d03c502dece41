/*package ic creates particle initial conditions from a density field with the
Zel'dovich approximation.
*/
package ic

import (
	"fmt"

	"github.com/phil-mansfield/gopm/cosmo"
	"github.com/phil-mansfield/gopm/geom"
	"github.com/phil-mansfield/gopm/spectral"
)

// LaplaceFloor replaces the zero eigenvalue of the Laplacian so that the DC
// mode can be divided through.
const LaplaceFloor = 1e-10

// Zeldovich displaces a cubic particle lattice along the gradient of the
// potential of a density field.
type Zeldovich struct {
	cells, particles int
	boxSize, aInit   float64
	c                cosmo.Params

	pg  geom.Grid
	fft *spectral.FFT3
	ks  *geom.Mesh
	lap []float64
}

// New creates a Zeldovich initializer for particles^3 particles on a grid of
// side cells inside a box of width boxSize. fft must have side particles.
func New(
	cells, particles int, boxSize, aInit float64,
	c cosmo.Params, fft *spectral.FFT3,
) *Zeldovich {
	if particles <= 0 || cells <= 0 {
		panic(fmt.Sprintf(
			"Zeldovich needs positive grid sizes, but got %d cells and %d "+
				"particles.", cells, particles,
		))
	} else if fft.Len() != particles {
		panic(fmt.Sprintf(
			"FFT3 of side %d given to Zeldovich with %d particles per side.",
			fft.Len(), particles,
		))
	}

	z := &Zeldovich{
		cells: cells, particles: particles,
		boxSize: boxSize, aInit: aInit, c: c, fft: fft,
	}
	z.pg.Init(particles)

	ks := spectral.Wavenumbers(particles, float64(particles)/boxSize)
	z.ks = geom.NewMesh(ks, ks, ks)
	z.lap = z.ks.Pow(2).Sum()
	for i := range z.lap {
		z.lap[i] = -z.lap[i]
		if z.lap[i] == 0 {
			z.lap[i] = LaplaceFloor
		}
	}

	return z
}

// Displacements returns the displacement field of rho along each axis in
// grid units. rho must have particles^3 elements.
func (z *Zeldovich) Displacements(rho []float64) [3][]float64 {
	z.pg.CheckLen("initial density field", len(rho))

	phiK := z.fft.Forward(spectral.FromReal(z.particles, rho))
	for i := range phiK.Data {
		phiK.Data[i] /= complex(z.lap[i], 0)
	}

	ratio := float64(z.cells) / float64(z.particles)
	toCells := float64(z.cells) / z.boxSize

	var disp [3][]float64
	for axis := range disp {
		k := z.ks.Component(axis)
		dispK := phiK.Copy()
		for i := range dispK.Data {
			dispK.Data[i] *= complex(0, -k[i]*ratio)
		}

		disp[axis] = z.fft.Inverse(dispK).Real()
		for i := range disp[axis] {
			disp[axis][i] *= toCells
		}
	}

	return disp
}

// InitialConditions returns the positions and velocities of the particle
// lattice displaced by the density field rho. Positions are in grid units
// and lie in [0, cells).
func (z *Zeldovich) InitialConditions(rho []float64) (xs, vs [3][]float64) {
	disp := z.Displacements(rho)

	a := z.aInit
	growth := z.c.GrowthFactor(a)
	vScale := a * growth * z.c.Hubble(a) * z.c.ExpansionFactor(a)
	spacing := float64(z.cells) / float64(z.particles)
	w := float64(z.cells)

	for axis := 0; axis < 3; axis++ {
		xs[axis] = make([]float64, z.pg.Volume)
		vs[axis] = make([]float64, z.pg.Volume)
	}

	for i := 0; i < z.pg.Volume; i++ {
		qx, qy, qz := z.pg.Coords(i)
		q := [3]int{qx, qy, qz}
		for axis := 0; axis < 3; axis++ {
			lattice := float64(q[axis])*spacing + 0.5
			xs[axis][i] = geom.FMod(lattice+growth*disp[axis][i], w)
			vs[axis][i] = vScale * disp[axis][i]
		}
	}

	return xs, vs
}
