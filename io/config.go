package io

import (
	"fmt"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/gopm"
	"github.com/phil-mansfield/gopm/cosmo"
	"github.com/phil-mansfield/gopm/field"
)

const (
	ExampleSimulationFile = `[Simulation]

#######################
# Required Parameters #
#######################

# Directory where snapshot files and figures will be written to.
Output = path/to/output/dir

#######################
# Optional Parameters #
#######################

# Number of grid cells along one side of the box. Default is 32.
# Cells = 32
# Number of particles along one side of the box. Default is 16.
# Particles = 16
# Width of the box in Mpc/h. Default is 8.
# BoxSize = 8

# Cosmological parameters. The defaults are given below. OmegaM, OmegaK, and
# OmegaL must sum to one.
# OmegaM = 0.31
# OmegaB = 0.04
# OmegaK = 0
# OmegaL = 0.69
# H0 = 0.68

# The simulation runs from scale factor AInit to AEnd in Steps equally sized
# steps. Snapshots sets the number of snapshots written along the way.
# AInit = 0.01
# AEnd = 1
# Steps = 1000
# Snapshots = 10

# The initial density field is drawn from the power law spectrum
# P(k) = Amplitude * k^(-Power).
# Power = 0.845
# Amplitude = 3.685

# Alternatively, PowerSpectrumFile gives a text file whose first two columns
# are k and P(k). Power and Amplitude are ignored if it is set.
# PowerSpectrumInterpolation must be one of [ Spline | Linear ].
# PowerSpectrumFile = path/to/pk.txt
# PowerSpectrumInterpolation = Spline

# Seed for the random number generator. Default is 1.
# Seed = 1

# Number of goroutines used within each step. Defaults to the number of cores.
# Workers = 8

# Figures written alongside each snapshot. Histograms requires python with
# matplotlib.
# Histograms = false
# HeatMaps = false
# HistBins = 50

# Output files which are useful for profiling and debugging. Generally, there
# isn't a reason to use these unless something goes wrong.
# ProfileFile = prof.out
# LogFile = log.out`
)

type SharedConfig struct {
	// Required
	Output string
	// Optional
	LogFile, ProfileFile string
}

func (con *SharedConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *SharedConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *SharedConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

type SimulationConfig struct {
	SharedConfig

	// Optional
	Cells, Particles int
	BoxSize          float64

	OmegaM, OmegaB, OmegaK, OmegaL, H0 float64

	AInit, AEnd      float64
	Steps, Snapshots int

	Power, Amplitude           float64
	PowerSpectrumFile          string
	PowerSpectrumInterpolation string

	Seed    int64
	Workers int

	Histograms, HeatMaps bool
	HistBins             int
}

type SimulationWrapper struct {
	Simulation SimulationConfig
}

func DefaultSimulationWrapper() *SimulationWrapper {
	def := gopm.DefaultConfig()
	pl := def.Spectrum.(field.PowerLaw)

	con := SimulationConfig{
		Cells: def.Cells, Particles: def.Particles, BoxSize: def.BoxSize,
		OmegaM: def.Cosmo.OmegaM, OmegaB: def.Cosmo.OmegaB,
		OmegaK: def.Cosmo.OmegaK, OmegaL: def.Cosmo.OmegaL, H0: def.Cosmo.H0,
		AInit: def.AInit, AEnd: def.AEnd,
		Steps: def.Steps, Snapshots: def.Snapshots,
		Power: pl.Index, Amplitude: pl.Amplitude,
		PowerSpectrumInterpolation: "Spline",
		Seed:                       int64(def.Seed),
		HistBins:                   50,
	}
	return &SimulationWrapper{con}
}

func (con *SimulationConfig) ValidCells() bool {
	return con.Cells > 0
}
func (con *SimulationConfig) ValidParticles() bool {
	return con.Particles > 0
}
func (con *SimulationConfig) ValidBoxSize() bool {
	return con.BoxSize > 0
}
func (con *SimulationConfig) ValidAInit() bool {
	return con.AInit > 0 && con.AInit < con.AEnd
}
func (con *SimulationConfig) ValidSteps() bool {
	return con.Steps > 0
}
func (con *SimulationConfig) ValidSnapshots() bool {
	return con.Snapshots >= 0
}
func (con *SimulationConfig) ValidAmplitude() bool {
	return con.Amplitude >= 0
}
func (con *SimulationConfig) ValidPowerSpectrumFile() bool {
	return con.PowerSpectrumFile != ""
}
func (con *SimulationConfig) ValidPowerSpectrumInterpolation() bool {
	switch strings.ToLower(con.PowerSpectrumInterpolation) {
	case "spline", "linear":
		return true
	}
	return false
}
func (con *SimulationConfig) ValidSeed() bool {
	return con.Seed >= 0
}
func (con *SimulationConfig) ValidHistBins() bool {
	return con.HistBins > 0
}

// CheckInit returns an error describing the first invalid parameter in the
// [Simulation] section of the named file.
func (con *SimulationConfig) CheckInit(fname string) error {
	switch {
	case !con.ValidOutput():
		return fmt.Errorf("Need to specify Output in '%s'.", fname)
	case !con.ValidCells():
		return fmt.Errorf(
			"Cells in '%s' must be positive, but is %d.", fname, con.Cells,
		)
	case !con.ValidParticles():
		return fmt.Errorf(
			"Particles in '%s' must be positive, but is %d.",
			fname, con.Particles,
		)
	case !con.ValidBoxSize():
		return fmt.Errorf(
			"BoxSize in '%s' must be positive, but is %g.", fname, con.BoxSize,
		)
	case !con.ValidAInit():
		return fmt.Errorf(
			"AInit in '%s' must be in range (0, AEnd = %g), but is %g.",
			fname, con.AEnd, con.AInit,
		)
	case !con.ValidSteps():
		return fmt.Errorf(
			"Steps in '%s' must be positive, but is %d.", fname, con.Steps,
		)
	case !con.ValidSnapshots():
		return fmt.Errorf(
			"Snapshots in '%s' must be non-negative, but is %d.",
			fname, con.Snapshots,
		)
	case !con.ValidAmplitude():
		return fmt.Errorf(
			"Amplitude in '%s' must be non-negative, but is %g.",
			fname, con.Amplitude,
		)
	case !con.ValidPowerSpectrumInterpolation():
		return fmt.Errorf(
			"PowerSpectrumInterpolation in '%s' must be one of "+
				"[Spline | Linear]. '%s' is not recognized.",
			fname, con.PowerSpectrumInterpolation,
		)
	case !con.ValidSeed():
		return fmt.Errorf(
			"Seed in '%s' must be non-negative, but is %d.", fname, con.Seed,
		)
	case (con.Histograms || con.HeatMaps) && !con.ValidHistBins():
		return fmt.Errorf(
			"HistBins in '%s' must be positive, but is %d.",
			fname, con.HistBins,
		)
	}

	c := con.Cosmo()
	if err := c.CheckInit(); err != nil {
		return fmt.Errorf("Invalid cosmology in '%s': %s", fname, err.Error())
	}
	return nil
}

// Cosmo returns the cosmological parameters of the configuration.
func (con *SimulationConfig) Cosmo() cosmo.Params {
	return cosmo.Params{
		OmegaM: con.OmegaM, OmegaB: con.OmegaB,
		OmegaK: con.OmegaK, OmegaL: con.OmegaL, H0: con.H0,
	}
}

// Spectrum returns the power spectrum of the initial density field, reading
// PowerSpectrumFile if it is set.
func (con *SimulationConfig) Spectrum() (field.Spectrum, error) {
	if !con.ValidPowerSpectrumFile() {
		return field.PowerLaw{Index: con.Power, Amplitude: con.Amplitude}, nil
	}
	linear := strings.ToLower(con.PowerSpectrumInterpolation) == "linear"
	return field.ReadTabulated(con.PowerSpectrumFile, linear)
}

// Config converts the configuration into a gopm.Config.
func (con *SimulationConfig) Config() (gopm.Config, error) {
	s, err := con.Spectrum()
	if err != nil {
		return gopm.Config{}, err
	}

	return gopm.Config{
		Cells: con.Cells, Particles: con.Particles, BoxSize: con.BoxSize,
		Cosmo: con.Cosmo(),
		AInit: con.AInit, AEnd: con.AEnd,
		Steps: con.Steps, Snapshots: con.Snapshots,
		Spectrum: s,
		Seed:     uint64(con.Seed),
		Workers:  con.Workers,
	}, nil
}

// ReadSimulationConfig reads and validates the [Simulation] section of a
// gcfg file.
func ReadSimulationConfig(fname string) (*SimulationConfig, error) {
	wrap := DefaultSimulationWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	if err := wrap.Simulation.CheckInit(fname); err != nil {
		return nil, err
	}
	return &wrap.Simulation, nil
}
