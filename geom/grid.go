package geom

import (
	"fmt"
	"math"
)

// Grid provides an interface for reasoning over a 1D slice as if it were a
// periodic cubic 3D grid. x is the fastest-varying index.
type Grid struct {
	Length, Area, Volume int
}

// NewGrid returns a new Grid instance with the given side length.
func NewGrid(n int) *Grid {
	g := &Grid{}
	g.Init(n)
	return g
}

// Init initializes a Grid instance.
func (g *Grid) Init(n int) {
	if n <= 0 {
		panic(fmt.Sprintf("Grid side length must be positive, but is %d.", n))
	}

	g.Length = n
	g.Area = n * n
	g.Volume = n * n * n
}

// Idx returns the grid index corresponding to a set of in-bounds coordinates.
func (g *Grid) Idx(x, y, z int) int {
	return x + y*g.Length + z*g.Area
}

// Wrap returns the grid index of a set of coordinates after wrapping each of
// them periodically into the grid.
func (g *Grid) Wrap(x, y, z int) int {
	n := g.Length
	return PMod(x, n) + PMod(y, n)*n + PMod(z, n)*g.Area
}

// BoundsCheck returns true if the given coordinates are within the Grid and
// false otherwise.
func (g *Grid) BoundsCheck(x, y, z int) bool {
	n := g.Length
	return x >= 0 && y >= 0 && z >= 0 && x < n && y < n && z < n
}

// Coords returns the x, y, z coordinates of a point from its grid index.
func (g *Grid) Coords(idx int) (x, y, z int) {
	x = idx % g.Length
	y = (idx % g.Area) / g.Length
	z = idx / g.Area
	return x, y, z
}

// CheckLen panics if a flattened grid has the wrong number of elements.
func (g *Grid) CheckLen(name string, n int) {
	if n != g.Volume {
		panic(fmt.Sprintf(
			"%s has %d elements, but a grid of side %d needs %d.",
			name, n, g.Length, g.Volume,
		))
	}
}

// PMod computes the positive modulo x % y.
func PMod(x, y int) int {
	m := x % y
	if m < 0 {
		m += y
	}
	return m
}

// FMod maps x into the range [0, w).
func FMod(x, w float64) float64 {
	m := math.Mod(x, w)
	if m < 0 {
		m += w
	}
	// -1e-17 + w rounds to w.
	if m >= w {
		m = 0
	}
	return m
}
