package gopm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gopm/field"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Cells, cfg.Particles, cfg.BoxSize = 16, 4, 5
	cfg.Spectrum = field.PowerLaw{Index: 0.845, Amplitude: 3.685}
	cfg.AInit, cfg.AEnd, cfg.Steps = 0.01, 1, 1000
	cfg.Workers = 2
	return cfg
}

func TestEndToEnd(t *testing.T) {
	cfg := smallConfig()
	sim, err := NewSimulation(cfg)
	require.NoError(t, err)

	want := 64 * cfg.AverageDensity()
	for step := 0; step < 10; step++ {
		diag := sim.Step()
		assert.InDelta(t, want, diag.Mass, 1e-9*want, "step %d", step)

		xs, vs := sim.Particles()
		for axis := 0; axis < 3; axis++ {
			require.Equal(t, 64, len(xs[axis]))
			require.Equal(t, 64, len(vs[axis]))
			for i, x := range xs[axis] {
				assert.True(t,
					x >= 0 && x < 16, "step %d, axis %d, particle %d: %g",
					step, axis, i, x,
				)
			}
		}
	}

	assert.Equal(t, 10, sim.Steps())
	assert.InDelta(t, 0.01+10*cfg.Dt(), sim.A(), 1e-12)
	assert.Len(t, sim.Diagnostics(), 10)
}

func TestDeterministic(t *testing.T) {
	cfg := smallConfig()
	sim1, err := NewSimulation(cfg)
	require.NoError(t, err)
	sim2, err := NewSimulation(cfg)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		sim1.Step()
		sim2.Step()
	}
	xs1, _ := sim1.Particles()
	xs2, _ := sim2.Particles()
	assert.Equal(t, xs1, xs2)
}

func TestRunSnapshots(t *testing.T) {
	cfg := smallConfig()
	cfg.Steps, cfg.Snapshots = 20, 4

	sim, err := NewSimulation(cfg)
	require.NoError(t, err)

	var snaps []*Snapshot
	err = sim.Run(SinkFunc(func(snap *Snapshot) error {
		snaps = append(snaps, snap)
		return nil
	}))
	require.NoError(t, err)
	assert.True(t, sim.Done())

	require.Len(t, snaps, 4)
	for i, snap := range snaps {
		assert.Equal(t, i+1, snap.Idx)
		assert.Equal(t, 16*16*16, len(snap.Density))
		assert.Equal(t, 16*16*16, len(snap.Potential))
		assert.Equal(t, 64, len(snap.Xs[0]))
		assert.Equal(t, 16, snap.Cells)
	}
	assert.Equal(t, []int{5, 10, 15, sim.Steps()}, []int{
		snaps[0].Step, snaps[1].Step, snaps[2].Step, snaps[3].Step,
	})

	// Snapshots are copies.
	xs, _ := sim.Particles()
	snaps[3].Xs[0][0] = -1
	assert.NotEqual(t, -1.0, xs[0][0])
}

func TestRunSnapshotCadence(t *testing.T) {
	table := []struct {
		steps, snapshots int
		first            int
	}{
		{12, 3, 4},
		{20, 2, 10},
		{10, 5, 2},
	}

	for _, test := range table {
		cfg := smallConfig()
		cfg.Steps, cfg.Snapshots = test.steps, test.snapshots
		sim, err := NewSimulation(cfg)
		require.NoError(t, err)

		var steps []int
		err = sim.Run(SinkFunc(func(snap *Snapshot) error {
			steps = append(steps, snap.Step)
			return nil
		}))
		require.NoError(t, err)

		require.Len(t, steps, test.snapshots, "%+v", test)
		assert.Equal(t, test.first, steps[0], "%+v", test)
		assert.Equal(t, sim.Steps(), steps[len(steps)-1], "%+v", test)
		for i := 1; i < len(steps); i++ {
			assert.True(t, steps[i] > steps[i-1], "%+v", test)
		}
	}

	cfg := smallConfig()
	cfg.Steps, cfg.Snapshots = 10, 0
	sim, err := NewSimulation(cfg)
	require.NoError(t, err)
	calls := 0
	require.NoError(t, sim.Run(SinkFunc(func(*Snapshot) error {
		calls++
		return nil
	})))
	assert.Equal(t, 0, calls)
}

func TestRunSinkError(t *testing.T) {
	cfg := smallConfig()
	cfg.Steps, cfg.Snapshots = 20, 4
	sim, err := NewSimulation(cfg)
	require.NoError(t, err)

	calls := 0
	fail := errors.New("disk full")
	err = sim.Run(SinkFunc(func(snap *Snapshot) error {
		calls++
		return fail
	}))
	assert.Equal(t, fail, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 5, sim.Steps())
}

func TestRunNilSink(t *testing.T) {
	cfg := smallConfig()
	cfg.Steps, cfg.Snapshots = 10, 0
	sim, err := NewSimulation(cfg)
	require.NoError(t, err)
	assert.NoError(t, sim.Run(nil))
}

func TestConfigCheckInit(t *testing.T) {
	valid := smallConfig()
	assert.NoError(t, valid.CheckInit())
	assert.InDelta(t, 64, valid.AverageDensity(), 1e-12)
	assert.InDelta(t, 0.99/1000, valid.Dt(), 1e-15)

	table := []func(c *Config){
		func(c *Config) { c.Cells = 0 },
		func(c *Config) { c.Particles = -1 },
		func(c *Config) { c.BoxSize = 0 },
		func(c *Config) { c.AInit = 0 },
		func(c *Config) { c.AEnd = c.AInit },
		func(c *Config) { c.Steps = 0 },
		func(c *Config) { c.Snapshots = -1 },
		func(c *Config) { c.Spectrum = nil },
		func(c *Config) { c.Spectrum = field.PowerLaw{Index: 1, Amplitude: -1} },
		func(c *Config) { c.Cosmo.OmegaM = 0 },
	}

	for i, modify := range table {
		cfg := smallConfig()
		modify(&cfg)
		assert.Error(t, cfg.CheckInit(), "%d", i)
		_, err := NewSimulation(cfg)
		assert.Error(t, err, "%d", i)
	}
}
