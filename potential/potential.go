/*package potential solves the comoving Poisson equation on a periodic grid.
*/
package potential

import (
	"fmt"

	"github.com/phil-mansfield/gopm/geom"
	"github.com/phil-mansfield/gopm/spectral"
)

// KernelFloor is the smallest Laplacian eigenvalue that is inverted. Modes
// below it (the DC mode) get a kernel value of zero.
const KernelFloor = 1e-12

// Kernel returns the inverse of the discrete Laplacian eigenvalues of a
// periodic grid of side n, 1 / sum_a 2 sin^2(k_a / 2), with k_a in radians
// per cell. The DC mode is set to zero.
func Kernel(n int) []float64 {
	ks := spectral.Wavenumbers(n, 1)
	den := geom.NewMesh(ks, ks, ks).Scale(0.5).Sin().Pow(2).Scale(2).Sum()

	for i := range den {
		if den[i] < KernelFloor {
			den[i] = 0
		} else {
			den[i] = 1 / den[i]
		}
	}
	return den
}

// Solver converts density grids into potential grids.
type Solver struct {
	g      geom.Grid
	omegaM float64
	kernel []float64
	fft    *spectral.FFT3
}

// NewSolver creates a Solver for grids of side n. The kernel is usually
// created by Kernel(n) and must not be modified afterwards.
func NewSolver(
	n int, omegaM float64, kernel []float64, fft *spectral.FFT3,
) *Solver {
	s := &Solver{omegaM: omegaM, kernel: kernel, fft: fft}
	s.g.Init(n)
	s.g.CheckLen("Poisson kernel", len(kernel))
	if fft.Len() != n {
		panic(fmt.Sprintf(
			"FFT3 of side %d given to a Solver of side %d.", fft.Len(), n,
		))
	}
	return s
}

// Cells returns the side length of the Solver's grids.
func (s *Solver) Cells() int { return s.g.Length }

// SourceTerm returns the prefactor -3 OmegaM / (8 a) which multiplies the
// kernel at scale factor a.
func (s *Solver) SourceTerm(a float64) float64 {
	return -3 * s.omegaM / (8 * a)
}

// Potential returns the gravitational potential of the density grid rho at
// scale factor a. rho is not modified.
func (s *Solver) Potential(rho []float64, a float64) []float64 {
	s.g.CheckLen("density grid", len(rho))
	if !(a > 0) {
		panic(fmt.Sprintf("Scale factor must be positive, but is %g.", a))
	}

	rhoK := s.fft.Forward(spectral.FromReal(s.g.Length, rho))
	rhoK.Mul(s.kernel)
	rhoK.Scale(complex(s.SourceTerm(a), 0))
	return s.fft.Inverse(rhoK).Real()
}
