/*package gopm runs periodic particle-mesh simulations of cosmological
structure formation.

A Simulation is built from an immutable Config. Each step deposits the
particles onto a density grid, solves for the potential, and moves the
particles with a leapfrog step in the scale factor.
*/
package gopm

import (
	"fmt"
	"math"
	"runtime"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/gopm/cosmo"
	"github.com/phil-mansfield/gopm/density"
	"github.com/phil-mansfield/gopm/field"
	"github.com/phil-mansfield/gopm/ic"
	"github.com/phil-mansfield/gopm/integrator"
	"github.com/phil-mansfield/gopm/potential"
	"github.com/phil-mansfield/gopm/spectral"
)

// Config describes a single simulation. The zero value is not valid, see
// DefaultConfig.
type Config struct {
	Cells, Particles int
	BoxSize          float64
	Cosmo            cosmo.Params

	AInit, AEnd      float64
	Steps, Snapshots int

	Spectrum field.Spectrum
	Seed     uint64
	// Number of goroutines used within a step. Non-positive values use every
	// core.
	Workers int
}

// DefaultConfig returns a small simulation with a power law spectrum.
func DefaultConfig() Config {
	return Config{
		Cells: 32, Particles: 16, BoxSize: 8,
		Cosmo: cosmo.Planck(),
		AInit: 0.01, AEnd: 1, Steps: 1000, Snapshots: 10,
		Spectrum: field.PowerLaw{Index: 0.845, Amplitude: 3.685},
		Seed:     1,
	}
}

// CheckInit returns an error if the Config cannot be run.
func (c *Config) CheckInit() error {
	if c.Cells <= 0 {
		return fmt.Errorf("Cells must be positive, but is %d.", c.Cells)
	} else if c.Particles <= 0 {
		return fmt.Errorf("Particles must be positive, but is %d.", c.Particles)
	} else if !(c.BoxSize > 0) {
		return fmt.Errorf("BoxSize must be positive, but is %g.", c.BoxSize)
	} else if !(c.AInit > 0) {
		return fmt.Errorf("AInit must be positive, but is %g.", c.AInit)
	} else if !(c.AEnd > c.AInit) {
		return fmt.Errorf(
			"AEnd = %g must be larger than AInit = %g.", c.AEnd, c.AInit,
		)
	} else if c.Steps <= 0 {
		return fmt.Errorf("Steps must be positive, but is %d.", c.Steps)
	} else if c.Snapshots < 0 {
		return fmt.Errorf(
			"Snapshots must be non-negative, but is %d.", c.Snapshots,
		)
	} else if c.Spectrum == nil {
		return fmt.Errorf("No power spectrum given.")
	}

	if err := c.Cosmo.CheckInit(); err != nil {
		return err
	}
	return c.Spectrum.CheckInit()
}

// Dt returns the scale factor increment of a single step.
func (c *Config) Dt() float64 {
	return (c.AEnd - c.AInit) / float64(c.Steps)
}

// AverageDensity returns the mass deposited by each particle, chosen so that
// the mean density of the grid is one per cell.
func (c *Config) AverageDensity() float64 {
	r := float64(c.Cells) / float64(c.Particles)
	return r * r * r
}

// Simulation holds the state of a running simulation.
type Simulation struct {
	cfg     Config
	workers int

	depositor  *density.Depositor
	integrator *integrator.Integrator

	step, snaps int
	snapStep    int
	a, dt       float64
	xs, vs      [3][]float64
	rho, phi    []float64

	diags []Diagnostic
	ms    runtime.MemStats
}

// NewSimulation generates initial conditions for cfg and prepares the grids
// needed to evolve them.
func NewSimulation(cfg Config) (*Simulation, error) {
	if err := cfg.CheckInit(); err != nil {
		return nil, err
	}

	sim := &Simulation{cfg: cfg, a: cfg.AInit, dt: cfg.Dt()}
	sim.workers = cfg.Workers
	if sim.workers <= 0 {
		sim.workers = runtime.NumCPU()
	}

	cellFFT := spectral.NewFFT3(cfg.Cells, sim.workers)
	particleFFT := spectral.NewFFT3(cfg.Particles, sim.workers)

	solver := potential.NewSolver(
		cfg.Cells, cfg.Cosmo.OmegaM, potential.Kernel(cfg.Cells), cellFFT,
	)
	sim.depositor = density.NewDepositor(cfg.Cells, sim.workers)
	sim.integrator = integrator.New(cfg.Cells, sim.workers, solver, cfg.Cosmo)

	gen := field.NewGenerator(cfg.Particles, cfg.BoxSize, cfg.Seed, particleFFT)
	delta := gen.Generate(cfg.Spectrum)

	z := ic.New(
		cfg.Cells, cfg.Particles, cfg.BoxSize, cfg.AInit, cfg.Cosmo,
		particleFFT,
	)
	sim.xs, sim.vs = z.InitialConditions(delta)

	runtime.ReadMemStats(&sim.ms)
	log.WithFields(log.Fields{
		"cells": cfg.Cells, "particles": cfg.Particles,
		"workers": sim.workers,
	}).Infof(
		"Initialized simulation. Alloc: %5d MB, Sys: %5d MB",
		sim.ms.Alloc>>20, sim.ms.Sys>>20,
	)

	return sim, nil
}

// Config returns the Config the Simulation was created with.
func (sim *Simulation) Config() Config { return sim.cfg }

// A returns the current scale factor.
func (sim *Simulation) A() float64 { return sim.a }

// Steps returns the number of steps taken so far.
func (sim *Simulation) Steps() int { return sim.step }

// Done returns true once the scale factor has reached the last step.
func (sim *Simulation) Done() bool {
	return sim.a >= sim.cfg.AEnd-sim.dt
}

// Particles returns the current positions and velocities. The slices are
// owned by the Simulation and change with every step.
func (sim *Simulation) Particles() (xs, vs [3][]float64) {
	return sim.xs, sim.vs
}

// Diagnostics returns the Diagnostic of every step taken so far.
func (sim *Simulation) Diagnostics() []Diagnostic { return sim.diags }

// Step advances the simulation by one step and returns its Diagnostic.
func (sim *Simulation) Step() Diagnostic {
	sim.rho = sim.depositor.Deposit(sim.xs, sim.cfg.AverageDensity())
	sim.phi = sim.integrator.Step(sim.rho, sim.xs, sim.vs, sim.a, sim.dt)

	sim.step++
	sim.a = sim.cfg.AInit + float64(sim.step)*sim.dt

	diag := sim.diagnose()
	sim.diags = append(sim.diags, diag)
	log.Debugf(
		"Step %d: a = %.4f, delta_rms = %.4g", diag.Step, diag.A, diag.DeltaRMS,
	)
	return diag
}

func (sim *Simulation) diagnose() Diagnostic {
	diag := Diagnostic{Step: sim.step, A: sim.a, Mass: density.Mass(sim.rho)}

	mean := diag.Mass / float64(len(sim.rho))
	delta := make([]float64, len(sim.rho))
	if mean > 0 {
		floats.ScaleTo(delta, 1/mean, sim.rho)
		floats.AddConst(-1, delta)
	}
	diag.DeltaRMS = math.Sqrt(floats.Dot(delta, delta) / float64(len(delta)))

	speed := make([]float64, len(sim.vs[0]))
	for i := range speed {
		vx, vy, vz := sim.vs[0][i], sim.vs[1][i], sim.vs[2][i]
		speed[i] = math.Sqrt(vx*vx + vy*vy + vz*vz)
	}
	if len(speed) > 0 {
		diag.MaxSpeed = floats.Max(speed)
	}
	return diag
}

// Snapshot returns a deep copy of the current state labeled with the given
// snapshot index.
func (sim *Simulation) Snapshot(idx int) *Snapshot {
	snap := &Snapshot{
		Idx: idx, Step: sim.step, A: sim.a,
		Cells: sim.cfg.Cells, BoxSize: sim.cfg.BoxSize,
		Density:   append([]float64{}, sim.rho...),
		Potential: append([]float64{}, sim.phi...),
	}
	for k := 0; k < 3; k++ {
		snap.Xs[k] = append([]float64{}, sim.xs[k]...)
		snap.Vs[k] = append([]float64{}, sim.vs[k]...)
	}
	return snap
}

// snapshotDue returns true if the current scale factor has passed the next
// snapshot time. Half a step of slack absorbs rounding in the step times.
func (sim *Simulation) snapshotDue() bool {
	if sim.cfg.Snapshots == 0 {
		return false
	}
	dtSnap := (sim.cfg.AEnd - sim.cfg.AInit) / float64(sim.cfg.Snapshots)
	next := sim.cfg.AInit + float64(sim.snaps+1)*dtSnap
	return sim.a >= next-sim.dt/2
}

func (sim *Simulation) emit(sink Sink) error {
	sim.snaps++
	sim.snapStep = sim.step
	diag := sim.diags[len(sim.diags)-1]
	log.WithFields(log.Fields{
		"snapshot": sim.snaps, "step": sim.step, "a": sim.a,
		"delta_rms": diag.DeltaRMS,
	}).Info("Snapshot.")

	if sink == nil {
		return nil
	}
	return sink.Snapshot(sim.Snapshot(sim.snaps))
}

// Run steps the simulation until it is Done, handing a Snapshot to sink at
// the configured cadence and after the final step. sink may be nil. Run
// stops at the first sink error.
func (sim *Simulation) Run(sink Sink) error {
	log.WithFields(log.Fields{
		"a_init": sim.a, "a_end": sim.cfg.AEnd, "dt": sim.dt,
	}).Info("Starting run.")

	for !sim.Done() {
		sim.Step()
		if sim.snapshotDue() {
			if err := sim.emit(sink); err != nil {
				return err
			}
		}
	}

	// The loop stops one step short of AEnd, so the last snapshot time is
	// never reached.
	if sim.step > sim.snapStep && sim.snaps < sim.cfg.Snapshots {
		if err := sim.emit(sink); err != nil {
			return err
		}
	}

	runtime.ReadMemStats(&sim.ms)
	log.Infof(
		"Finished %d steps. Alloc: %5d MB, Sys: %5d MB",
		sim.step, sim.ms.Alloc>>20, sim.ms.Sys>>20,
	)
	return nil
}
