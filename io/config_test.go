package io

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gopm/field"
)

func writeConfig(t *testing.T, body string) string {
	fname := path.Join(t.TempDir(), "sim.gcfg")
	require.NoError(t, os.WriteFile(fname, []byte(body), 0644))
	return fname
}

func TestExampleConfig(t *testing.T) {
	con, err := ReadSimulationConfig(writeConfig(t, ExampleSimulationFile))
	require.NoError(t, err)

	assert.Equal(t, "path/to/output/dir", con.Output)
	assert.Equal(t, 32, con.Cells)
	assert.Equal(t, 16, con.Particles)
	assert.Equal(t, 1000, con.Steps)
	assert.False(t, con.ValidLogFile())

	cfg, err := con.Config()
	require.NoError(t, err)
	assert.NoError(t, cfg.CheckInit())
	assert.Equal(t, field.PowerLaw{Index: 0.845, Amplitude: 3.685}, cfg.Spectrum)
	assert.Equal(t, uint64(1), cfg.Seed)
}

func TestReadConfig(t *testing.T) {
	fname := writeConfig(t, `[Simulation]
Output = out
Cells = 16
Particles = 4
BoxSize = 5
Steps = 20
Snapshots = 2
Power = 1.5
Amplitude = 2
Seed = 99
Workers = 3
HeatMaps = true
LogFile = log.out`)

	con, err := ReadSimulationConfig(fname)
	require.NoError(t, err)
	assert.True(t, con.HeatMaps)
	assert.False(t, con.Histograms)
	assert.True(t, con.ValidLogFile())

	cfg, err := con.Config()
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Cells)
	assert.Equal(t, 4, cfg.Particles)
	assert.Equal(t, 5.0, cfg.BoxSize)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Equal(t, 0.31, cfg.Cosmo.OmegaM)
	assert.Equal(t, field.PowerLaw{Index: 1.5, Amplitude: 2}, cfg.Spectrum)
}

func TestTabulatedConfig(t *testing.T) {
	dir := t.TempDir()
	pk := path.Join(dir, "pk.txt")
	require.NoError(t, os.WriteFile(pk, []byte("0.1 10\n1 1\n10 0.1\n"), 0644))

	fname := writeConfig(t, "[Simulation]\nOutput = out\n"+
		"PowerSpectrumFile = "+pk+"\nPowerSpectrumInterpolation = Linear\n")
	con, err := ReadSimulationConfig(fname)
	require.NoError(t, err)

	cfg, err := con.Config()
	require.NoError(t, err)
	tab, ok := cfg.Spectrum.(*field.Tabulated)
	require.True(t, ok)
	assert.InEpsilon(t, 2, tab.Power(0.5), 1e-9)
}

func TestInvalidConfig(t *testing.T) {
	table := []string{
		"Cells = 16",
		"Output = out\nCells = 0",
		"Output = out\nParticles = -2",
		"Output = out\nBoxSize = 0",
		"Output = out\nAInit = 2",
		"Output = out\nSteps = 0",
		"Output = out\nSnapshots = -1",
		"Output = out\nAmplitude = -1",
		"Output = out\nPowerSpectrumInterpolation = Quadratic",
		"Output = out\nSeed = -4",
		"Output = out\nHistograms = true\nHistBins = 0",
		"Output = out\nOmegaM = 0.5",
		"Output = out\nNotAField = 3",
	}

	for i, body := range table {
		_, err := ReadSimulationConfig(writeConfig(t, "[Simulation]\n"+body))
		assert.Error(t, err, "%d", i)
	}

	_, err := ReadSimulationConfig(path.Join(t.TempDir(), "missing.gcfg"))
	assert.Error(t, err)
}
