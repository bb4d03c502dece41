/*package density interpolates particle positions onto a periodic density
grid with the cloud-in-cell scheme.
*/
package density

import (
	"fmt"
	"math"
	"runtime"

	"github.com/phil-mansfield/gopm/geom"
)

// Corners is the number of grid cells touched by a single CIC particle.
const Corners = 8

// CICWeights returns the cell containing the point (x, y, z) on a periodic
// grid of side n and the trilinear weights of the eight cells at offsets
// (c&1, (c>>1)&1, (c>>2)&1) from it. The weights sum to one.
func CICWeights(x, y, z float64, n int) (cell [3]int, w [Corners]float64) {
	var d, t [3]float64
	for k, v := range [3]float64{x, y, z} {
		fl := math.Floor(v)
		d[k] = v - fl
		t[k] = 1 - d[k]
		cell[k] = geom.PMod(int(fl), n)
	}

	for c := 0; c < Corners; c++ {
		wx, wy, wz := t[0], t[1], t[2]
		if c&1 != 0 {
			wx = d[0]
		}
		if c&2 != 0 {
			wy = d[1]
		}
		if c&4 != 0 {
			wz = d[2]
		}
		w[c] = wx * wy * wz
	}
	return cell, w
}

// CornerIdx returns the grid index of corner c of a cell, shifted by delta
// cells along the given axis.
func CornerIdx(g *geom.Grid, cell [3]int, c, axis, delta int) int {
	off := [3]int{c & 1, (c >> 1) & 1, (c >> 2) & 1}
	off[axis] += delta
	return g.Wrap(cell[0]+off[0], cell[1]+off[1], cell[2]+off[2])
}

// Depositor assigns particle masses to a periodic grid. The particles are
// split between workers and each worker writes to its own buffer, so
// particles sharing a cell never race.
type Depositor struct {
	g       geom.Grid
	workers int
	bufs    [][]float64
}

// NewDepositor creates a Depositor for grids of side n. If workers is not
// positive the number of logical cores is used.
func NewDepositor(n, workers int) *Depositor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	d := &Depositor{workers: workers}
	d.g.Init(n)
	d.bufs = make([][]float64, workers)
	for i := range d.bufs {
		d.bufs[i] = make([]float64, d.g.Volume)
	}
	return d
}

// Cells returns the side length of the grids written by the Depositor.
func (d *Depositor) Cells() int { return d.g.Length }

// Deposit returns a new grid containing the CIC-assigned mass of every
// particle. xs holds the x, y, and z coordinates of the particles in grid
// units.
func (d *Depositor) Deposit(xs [3][]float64, mass float64) []float64 {
	n := CheckParticles(xs)

	out := make(chan int, d.workers)
	for id := 0; id < d.workers; id++ {
		low := n * id / d.workers
		high := n * (id + 1) / d.workers
		go d.chanDeposit(id, xs, mass, low, high, out)
	}

	// Merge worker grids into the output grid.
	rho := make([]float64, d.g.Volume)
	for i := 0; i < d.workers; i++ {
		id := <-out
		buf := d.bufs[id]
		for j := range rho {
			rho[j] += buf[j]
		}
	}

	return rho
}

func (d *Depositor) chanDeposit(
	id int, xs [3][]float64, mass float64, low, high int, out chan<- int,
) {
	buf := d.bufs[id]
	for i := range buf {
		buf[i] = 0
	}
	deposit(&d.g, buf, xs, mass, low, high)
	out <- id
}

// deposit adds particles [low, high) to buf.
func deposit(
	g *geom.Grid, buf []float64, xs [3][]float64, mass float64, low, high int,
) {
	for i := low; i < high; i++ {
		cell, w := CICWeights(xs[0][i], xs[1][i], xs[2][i], g.Length)
		for c := 0; c < Corners; c++ {
			buf[CornerIdx(g, cell, c, 0, 0)] += mass * w[c]
		}
	}
}

// CheckParticles panics if the three coordinate arrays have different lengths
// and returns the number of particles otherwise.
func CheckParticles(xs [3][]float64) int {
	if len(xs[0]) != len(xs[1]) || len(xs[0]) != len(xs[2]) {
		panic(fmt.Sprintf(
			"Coordinate arrays have lengths %d, %d, and %d.",
			len(xs[0]), len(xs[1]), len(xs[2]),
		))
	}
	return len(xs[0])
}

// Mass returns the total mass on a grid.
func Mass(rho []float64) float64 {
	sum := 0.0
	for _, x := range rho {
		sum += x
	}
	return sum
}
