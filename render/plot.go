package render

import (
	"fmt"
	"math"
	"os"
	"path"

	plt "github.com/phil-mansfield/pyplot"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/phil-mansfield/gopm"
)

const (
	PositionsFormat  = "positions_%04d.png"
	VelocitiesFormat = "velocities_%04d.png"
	HeatMapFormat    = "density_slice_%04d.png"
	SpeedsFormat     = "speeds_%04d.png"

	// Density contrasts below this are clipped in heat maps.
	minContrast = 1e-2
)

var axisNames = []string{"x", "y", "z"}
var axisColors = []string{"r", "g", "b"}

// PlotSink is a gopm.Sink which draws figures of every snapshot.
//
// Histograms queues matplotlib figures of the particle positions and
// velocity distributions through pyplot. They are rendered when Close is
// called. HeatMaps draws the density in the middle plane of the box and the
// particle speed distribution with gonum/plot as soon as a snapshot arrives.
type PlotSink struct {
	dir                  string
	bins, workers        int
	histograms, heatMaps bool
	queued               int
}

// NewPlotSink creates a PlotSink which writes to dir, creating it if needed.
func NewPlotSink(
	dir string, bins, workers int, histograms, heatMaps bool,
) (*PlotSink, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("PlotSink needs positive bins, not %d.", bins)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if histograms {
		plt.Reset()
	}
	return &PlotSink{
		dir: dir, bins: bins, workers: workers,
		histograms: histograms, heatMaps: heatMaps,
	}, nil
}

func (ps *PlotSink) Snapshot(snap *gopm.Snapshot) error {
	if ps.histograms {
		ps.plotPositions(snap)
		ps.plotVelocities(snap)
		ps.queued++
	}

	if ps.heatMaps {
		fname := path.Join(ps.dir, fmt.Sprintf(HeatMapFormat, snap.Idx))
		if err := HeatMap(snap, fname); err != nil {
			return err
		}
		fname = path.Join(ps.dir, fmt.Sprintf(SpeedsFormat, snap.Idx))
		if err := SpeedChart(snap, ps.bins, ps.workers, fname); err != nil {
			return err
		}
	}
	return nil
}

// Close renders every queued pyplot figure.
func (ps *PlotSink) Close() error {
	if ps.queued > 0 {
		log.Infof("Rendering %d snapshots with matplotlib.", ps.queued)
		plt.Execute()
		ps.queued = 0
	}
	return nil
}

func (ps *PlotSink) plotPositions(snap *gopm.Snapshot) {
	fname := path.Join(ps.dir, fmt.Sprintf(PositionsFormat, snap.Idx))
	scale := snap.BoxSize / float64(snap.Cells)

	xs := make([]float64, len(snap.Xs[0]))
	ys := make([]float64, len(snap.Xs[1]))
	for i := range xs {
		xs[i], ys[i] = snap.Xs[0][i]*scale, snap.Xs[1][i]*scale
	}

	plt.Figure(plt.FigSize(8, 8))
	plt.Plot(xs, ys, "ok")
	plt.Title(fmt.Sprintf(`$a$ = %.3f`, snap.A))
	plt.XLabel(`$X$ $[{\rm Mpc}/h]$`, plt.FontSize(16))
	plt.YLabel(`$Y$ $[{\rm Mpc}/h]$`, plt.FontSize(16))
	plt.XLim(0, snap.BoxSize)
	plt.YLim(0, snap.BoxSize)
	plt.SaveFig(fname)
}

func (ps *PlotSink) plotVelocities(snap *gopm.Snapshot) {
	fname := path.Join(ps.dir, fmt.Sprintf(VelocitiesFormat, snap.Idx))

	plt.Figure()
	for k := 0; k < 3; k++ {
		info := RangeInfo(snap.Vs[k], ps.bins, "Linear")
		h := Histogram(snap.Vs[k], info, ps.workers)
		counts := make([]float64, len(h.Counts))
		for i := range counts {
			counts[i] = float64(h.Counts[i])
		}
		plt.Plot(h.Centers, counts, plt.LW(3), plt.C(axisColors[k]))
	}
	plt.Title(fmt.Sprintf(`$a$ = %.3f: $v_x$ (r), $v_y$ (g), $v_z$ (b)`, snap.A))
	plt.XLabel(`$v$`, plt.FontSize(16))
	plt.YLabel(`$N$`, plt.FontSize(16))
	plt.YScale("log")
	plt.Grid(plt.Axis("y"))
	plt.SaveFig(fname)
}

// densitySlice is a plotter.GridXYZ over one z-plane of a density grid.
type densitySlice struct {
	rho        []float64
	n, z       int
	mean, cell float64
}

func (s *densitySlice) Dims() (c, r int) { return s.n, s.n }
func (s *densitySlice) X(c int) float64  { return (float64(c) + 0.5) * s.cell }
func (s *densitySlice) Y(r int) float64  { return (float64(r) + 0.5) * s.cell }

// Z returns log10(rho / <rho>), clipped at minContrast.
func (s *densitySlice) Z(c, r int) float64 {
	x := s.rho[c+r*s.n+s.z*s.n*s.n] / s.mean
	return math.Log10(math.Max(x, minContrast))
}

// HeatMap draws the density of the middle z-plane of a snapshot to fname.
func HeatMap(snap *gopm.Snapshot, fname string) error {
	n := snap.Cells
	if len(snap.Density) != n*n*n {
		return fmt.Errorf(
			"Snapshot %d has %d density values, but %d cells per side.",
			snap.Idx, len(snap.Density), n,
		)
	}

	mean := 0.0
	for _, x := range snap.Density {
		mean += x
	}
	mean /= float64(len(snap.Density))
	if mean <= 0 {
		mean = 1
	}

	slice := &densitySlice{
		rho: snap.Density, n: n, z: n / 2,
		mean: mean, cell: snap.BoxSize / float64(n),
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("log10(rho / <rho>), a = %.3f", snap.A)
	p.X.Label.Text = "X [Mpc/h]"
	p.Y.Label.Text = "Y [Mpc/h]"
	p.Add(plotter.NewHeatMap(slice, palette.Heat(32, 1)))

	return p.Save(5*vg.Inch, 5*vg.Inch, fname)
}

// SpeedChart draws the distribution of particle speeds in a snapshot to
// fname.
func SpeedChart(snap *gopm.Snapshot, bins, workers int, fname string) error {
	speeds := make([]float64, len(snap.Vs[0]))
	for i := range speeds {
		vx, vy, vz := snap.Vs[0][i], snap.Vs[1][i], snap.Vs[2][i]
		speeds[i] = math.Sqrt(vx*vx + vy*vy + vz*vz)
	}

	h := Histogram(speeds, RangeInfo(speeds, bins, "Linear"), workers)
	values := make(plotter.Values, len(h.Counts))
	for i := range values {
		values[i] = float64(h.Counts[i])
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Speed distribution, a = %.3f", snap.A)
	p.Y.Label.Text = "Particles"

	bars, err := plotter.NewBarChart(values, vg.Points(4))
	if err != nil {
		return err
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(0)
	p.Add(bars)

	return p.Save(5*vg.Inch, 3*vg.Inch, fname)
}
