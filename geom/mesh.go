package geom

import (
	"fmt"
	"math"
)

// Mesh is a trio of broadcast coordinate fields over a 3D lattice. For input
// coordinate arrays xs, ys, zs, the point with flat index
// i + j*len(xs) + k*len(xs)*len(ys) has X = xs[i], Y = ys[j], Z = zs[k].
//
// None of the Mesh methods modify their receiver. Each returns a new Mesh.
type Mesh struct {
	Dims    [3]int
	X, Y, Z []float64
}

// NewMesh broadcasts three 1D coordinate arrays into a Mesh.
func NewMesh(xs, ys, zs []float64) *Mesh {
	nx, ny, nz := len(xs), len(ys), len(zs)
	m := newMesh([3]int{nx, ny, nz})

	idx := 0
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				m.X[idx], m.Y[idx], m.Z[idx] = xs[i], ys[j], zs[k]
				idx++
			}
		}
	}

	return m
}

func newMesh(dims [3]int) *Mesh {
	n := dims[0] * dims[1] * dims[2]
	return &Mesh{
		Dims: dims,
		X:    make([]float64, n),
		Y:    make([]float64, n),
		Z:    make([]float64, n),
	}
}

// Len returns the number of points in the mesh.
func (m *Mesh) Len() int { return len(m.X) }

// Component returns the field along the given axis (0 = x, 1 = y, 2 = z).
func (m *Mesh) Component(axis int) []float64 {
	switch axis {
	case 0:
		return m.X
	case 1:
		return m.Y
	case 2:
		return m.Z
	}
	panic(fmt.Sprintf("Axis %d is not one of 0, 1, 2.", axis))
}

func (m *Mesh) fields() [3][]float64 { return [3][]float64{m.X, m.Y, m.Z} }

func (m *Mesh) checkDims(m2 *Mesh) {
	if m.Dims != m2.Dims {
		panic(fmt.Sprintf(
			"Mesh dimensions %v and %v do not match.", m.Dims, m2.Dims,
		))
	}
}

// binary applies f pointwise to the matching fields of two meshes.
func (m *Mesh) binary(m2 *Mesh, f func(a, b float64) float64) *Mesh {
	m.checkDims(m2)
	out := newMesh(m.Dims)
	src1, src2, dst := m.fields(), m2.fields(), out.fields()
	for d := 0; d < 3; d++ {
		for i := range dst[d] {
			dst[d][i] = f(src1[d][i], src2[d][i])
		}
	}
	return out
}

// Map applies f to every value of every field.
func (m *Mesh) Map(f func(float64) float64) *Mesh {
	out := newMesh(m.Dims)
	src, dst := m.fields(), out.fields()
	for d := 0; d < 3; d++ {
		for i := range dst[d] {
			dst[d][i] = f(src[d][i])
		}
	}
	return out
}

// Add returns m + m2.
func (m *Mesh) Add(m2 *Mesh) *Mesh {
	return m.binary(m2, func(a, b float64) float64 { return a + b })
}

// Mul returns m * m2.
func (m *Mesh) Mul(m2 *Mesh) *Mesh {
	return m.binary(m2, func(a, b float64) float64 { return a * b })
}

// Div returns m / m2.
func (m *Mesh) Div(m2 *Mesh) *Mesh {
	return m.binary(m2, func(a, b float64) float64 { return a / b })
}

// AddConst returns m + c.
func (m *Mesh) AddConst(c float64) *Mesh {
	return m.Map(func(x float64) float64 { return x + c })
}

// Scale returns c * m.
func (m *Mesh) Scale(c float64) *Mesh {
	return m.Map(func(x float64) float64 { return x * c })
}

// Pow returns m raised to an integer power.
func (m *Mesh) Pow(n int) *Mesh {
	return m.Map(func(x float64) float64 { return ipow(x, n) })
}

// Sin returns sin(m).
func (m *Mesh) Sin() *Mesh { return m.Map(math.Sin) }

// Cos returns cos(m).
func (m *Mesh) Cos() *Mesh { return m.Map(math.Cos) }

// Sum returns the pointwise sum X + Y + Z.
func (m *Mesh) Sum() []float64 {
	out := make([]float64, m.Len())
	for i := range out {
		out[i] = m.X[i] + m.Y[i] + m.Z[i]
	}
	return out
}

// ipow computes x^n by repeated squaring.
func ipow(x float64, n int) float64 {
	if n < 0 {
		return 1 / ipow(x, -n)
	}
	out := 1.0
	for n > 0 {
		if n&1 == 1 {
			out *= x
		}
		x *= x
		n >>= 1
	}
	return out
}
