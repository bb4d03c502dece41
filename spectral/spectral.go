/*package spectral implements discrete Fourier transforms over periodic cubic
lattices along with the frequency conventions used by every wavenumber grid in
gopm.

Transforms are unnormalized in the forward direction and scaled by 1/N^3 in
the inverse direction, so Inverse(Forward(g)) reproduces g. The forward
transform uses the kernel exp(-2 pi i j k / N) along each axis.
*/
package spectral

import (
	"fmt"
	"math"
	"runtime"

	"github.com/dgravesa/go-parallel/parallel"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/phil-mansfield/gopm/geom"
)

// Grid is a cubic lattice of complex values stored with x varying fastest.
type Grid struct {
	N    int
	Data []complex128
}

// NewGrid returns a zeroed Grid of side n.
func NewGrid(n int) *Grid {
	return &Grid{N: n, Data: make([]complex128, n*n*n)}
}

// FromReal returns a Grid whose real parts are xs and whose imaginary parts
// are zero.
func FromReal(n int, xs []float64) *Grid {
	g := NewGrid(n)
	g.check("real input", len(xs))
	for i, x := range xs {
		g.Data[i] = complex(x, 0)
	}
	return g
}

// Real returns the real parts of the Grid.
func (g *Grid) Real() []float64 {
	out := make([]float64, len(g.Data))
	for i, c := range g.Data {
		out[i] = real(c)
	}
	return out
}

// Copy returns a deep copy of the Grid.
func (g *Grid) Copy() *Grid {
	out := &Grid{N: g.N, Data: make([]complex128, len(g.Data))}
	copy(out.Data, g.Data)
	return out
}

// Mul multiplies every element by the matching element of xs in place.
func (g *Grid) Mul(xs []float64) {
	g.check("multiplier", len(xs))
	for i := range g.Data {
		g.Data[i] *= complex(xs[i], 0)
	}
}

// Scale multiplies every element by c in place.
func (g *Grid) Scale(c complex128) {
	for i := range g.Data {
		g.Data[i] *= c
	}
}

// check panics if a slice of length n cannot live on this grid.
func (g *Grid) check(name string, n int) {
	if g.N <= 0 || n != g.N*g.N*g.N {
		panic(fmt.Sprintf(
			"%s has %d elements, but a cubic grid of side %d needs %d.",
			name, n, g.N, g.N*g.N*g.N,
		))
	}
}

// FFT3 performs separable 3D transforms on grids of a fixed side length.
// Lines along each axis are transformed in parallel.
type FFT3 struct {
	n, workers int
	g          geom.Grid

	// One 1D transform and line buffer per goroutine.
	ffts  []*fourier.CmplxFFT
	lines [][]complex128
}

// NewFFT3 creates an FFT3 for grids of side n. If workers is not positive,
// the number of logical cores is used.
func NewFFT3(n, workers int) *FFT3 {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	t := &FFT3{n: n, workers: workers}
	t.g.Init(n)
	t.ffts = make([]*fourier.CmplxFFT, workers)
	t.lines = make([][]complex128, workers)
	for i := range t.ffts {
		t.ffts[i] = fourier.NewCmplxFFT(n)
		t.lines[i] = make([]complex128, n)
	}

	return t
}

// Len returns the side length of grids accepted by the FFT3.
func (t *FFT3) Len() int { return t.n }

// Forward returns the unnormalized forward transform of g. g is not modified.
func (t *FFT3) Forward(g *Grid) *Grid {
	out := t.prepare(g)
	for axis := 0; axis < 3; axis++ {
		t.pass(out, axis, false)
	}
	return out
}

// Inverse returns the inverse transform of g, scaled by 1/N^3. g is not
// modified.
func (t *FFT3) Inverse(g *Grid) *Grid {
	out := t.prepare(g)
	for axis := 0; axis < 3; axis++ {
		t.pass(out, axis, true)
	}
	out.Scale(complex(1/float64(t.g.Volume), 0))
	return out
}

func (t *FFT3) prepare(g *Grid) *Grid {
	if g.N != t.n {
		panic(fmt.Sprintf(
			"Grid of side %d given to FFT3 of side %d.", g.N, t.n,
		))
	}
	g.check("transformed grid", len(g.Data))
	return g.Copy()
}

// pass transforms every line of g along one axis in place.
func (t *FFT3) pass(g *Grid, axis int, inverse bool) {
	n := t.n
	stride := []int{1, n, n * n}[axis]

	// Each of the n*n lines is identified by the coordinates of its first
	// element along the two other axes.
	parallel.WithNumGoroutines(t.workers).For(n*n, func(line, grID int) {
		u, v := line%n, line/n
		var start int
		switch axis {
		case 0:
			start = t.g.Idx(0, u, v)
		case 1:
			start = t.g.Idx(u, 0, v)
		case 2:
			start = t.g.Idx(u, v, 0)
		}

		buf, fft := t.lines[grID], t.ffts[grID]
		for i := 0; i < n; i++ {
			buf[i] = g.Data[start+i*stride]
		}
		if inverse {
			fft.Sequence(buf, buf)
		} else {
			fft.Coefficients(buf, buf)
		}
		for i := 0; i < n; i++ {
			g.Data[start+i*stride] = buf[i]
		}
	})
}

// SampleFrequencies returns the sample frequencies, in cycles per sample, of
// the coefficients of an n-point transform: 0, 1/n, ..., up to the largest
// positive frequency, followed by the negative frequencies increasing towards
// -1/n. For even n the Nyquist frequency is listed as -1/2.
func SampleFrequencies(n int) []float64 {
	out := make([]float64, n)
	pos := (n + 1) / 2
	for i := range out {
		if i < pos {
			out[i] = float64(i) / float64(n)
		} else {
			out[i] = float64(i-n) / float64(n)
		}
	}
	return out
}

// Wavenumbers returns the angular wavenumbers 2 pi scale f for the sample
// frequencies f of an n-point transform. With scale = 1 the result is in
// radians per cell. With scale = n / L it is in radians per unit length of a
// box of width L.
func Wavenumbers(n int, scale float64) []float64 {
	ks := SampleFrequencies(n)
	for i := range ks {
		ks[i] *= 2 * math.Pi * scale
	}
	return ks
}

// IsNyquist returns true if index i of an n-point transform holds the Nyquist
// frequency. Only even n have a Nyquist coefficient.
func IsNyquist(i, n int) bool {
	return n%2 == 0 && i == n/2
}
