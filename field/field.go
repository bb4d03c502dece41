/*package field generates Gaussian random fields on periodic cubic grids with
a prescribed power spectrum.
*/
package field

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/phil-mansfield/gopm/geom"
	"github.com/phil-mansfield/gopm/spectral"
)

// Generator draws Gaussian random fields of a fixed size. A Generator owns
// its random source, so two Generators with the same seed produce the same
// sequence of fields.
type Generator struct {
	g    geom.Grid
	fft  *spectral.FFT3
	norm distuv.Normal
	kMag []float64
}

// NewGenerator creates a Generator for grids of side n covering a box of the
// given width. fft must have side n.
func NewGenerator(
	n int, boxSize float64, seed uint64, fft *spectral.FFT3,
) *Generator {
	gen := &Generator{fft: fft}
	gen.g.Init(n)
	if fft.Len() != n {
		panic("FFT3 side does not match Generator side.")
	} else if !(boxSize > 0) {
		panic("Box size given to NewGenerator must be positive.")
	}

	gen.norm = distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}

	ks := spectral.Wavenumbers(n, float64(n)/boxSize)
	gen.kMag = geom.NewMesh(ks, ks, ks).Pow(2).Sum()
	for i := range gen.kMag {
		gen.kMag[i] = math.Sqrt(gen.kMag[i])
	}

	return gen
}

// Cells returns the side length of generated grids.
func (gen *Generator) Cells() int { return gen.g.Length }

// Generate returns a new real field whose Fourier amplitudes are white noise
// scaled by sqrt(P(|k|)). Generate panics if s fails CheckInit.
func (gen *Generator) Generate(s Spectrum) []float64 {
	if err := s.CheckInit(); err != nil {
		panic(err.Error())
	}

	noise := spectral.NewGrid(gen.g.Length)
	for i := range noise.Data {
		noise.Data[i] = complex(gen.norm.Rand(), 0)
	}

	modes := gen.fft.Forward(noise)
	for i := range modes.Data {
		if gen.suppressed(s, i) {
			modes.Data[i] = 0
			continue
		}
		modes.Data[i] *= complex(math.Sqrt(s.Power(gen.kMag[i])), 0)
	}

	return gen.fft.Inverse(modes).Real()
}

// suppressed returns true if mode i is removed for the spectrum s.
func (gen *Generator) suppressed(s Spectrum, i int) bool {
	if i == 0 {
		return s.SuppressDC()
	}
	n := gen.g.Length
	x, y, z := gen.g.Coords(i)
	return s.SuppressNyquist() && spectral.IsNyquist(x, n) &&
		spectral.IsNyquist(y, n) && spectral.IsNyquist(z, n)
}
