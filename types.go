package gopm

// Sink receives snapshots of a running simulation. A Sink owns the snapshots
// it is given.
type Sink interface {
	Snapshot(snap *Snapshot) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(snap *Snapshot) error

func (f SinkFunc) Snapshot(snap *Snapshot) error { return f(snap) }

// Snapshot is a copy of the simulation state after a step.
type Snapshot struct {
	// Idx counts snapshots from 1. Step is the number of steps taken.
	Idx, Step int
	A         float64
	Cells     int
	BoxSize   float64

	// Density and Potential are the grids used during the last step.
	Density, Potential []float64
	// Positions in grid units and velocities.
	Xs, Vs [3][]float64
}

// Diagnostic summarizes the state of the simulation after a step.
type Diagnostic struct {
	Step int
	A    float64
	// Total deposited mass.
	Mass float64
	// RMS of the density contrast rho / <rho> - 1.
	DeltaRMS float64
	// Largest particle speed.
	MaxSpeed float64
}
