/*package io reads configuration files and writes simulation snapshots to
disk.

Snapshots are written as three little-endian binary files per snapshot:
density_%04d.grid and potential_%04d.grid, which hold a GridHeader followed by
Cells^3 float32 values, and particles_%04d.dat, which holds a ParticleHeader
followed by the x, y, and z position blocks and then the velocity blocks.
*/
package io

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/phil-mansfield/gopm"
	"github.com/phil-mansfield/gopm/cosmo"
)

const (
	DensityFormat   = "density_%04d.grid"
	PotentialFormat = "potential_%04d.grid"
	ParticleFormat  = "particles_%04d.dat"
)

// GridWriter is a gopm.Sink which writes snapshots to a directory.
type GridWriter struct {
	dir string
	c   cosmo.Params
	id  uuid.UUID
}

// NewGridWriter creates a GridWriter for the given directory, creating it if
// needed. Every file it writes is tagged with a new run id.
func NewGridWriter(dir string, c cosmo.Params) (*GridWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &GridWriter{dir: dir, c: c, id: uuid.New()}, nil
}

// RunID returns the id written to the headers of every file.
func (w *GridWriter) RunID() uuid.UUID { return w.id }

// Snapshot writes the density, potential, and particle files of a snapshot.
func (w *GridWriter) Snapshot(snap *gopm.Snapshot) error {
	ci := NewCosmoInfo(w.c, snap.A, snap.BoxSize)
	ri := NewRunInfo(w.id, snap.Idx, snap.Step, snap.Cells)

	grids := []struct {
		flag   GridFlag
		format string
		xs     []float64
	}{
		{Density, DensityFormat, snap.Density},
		{Potential, PotentialFormat, snap.Potential},
	}

	for _, g := range grids {
		fname := path.Join(w.dir, fmt.Sprintf(g.format, snap.Idx))
		err := writeFile(fname, func(wr *bufio.Writer) error {
			return WriteGrid(g.flag, Float32s(g.xs), ci, ri, wr)
		})
		if err != nil {
			return err
		}
	}

	var xs, vs [3][]float32
	for k := 0; k < 3; k++ {
		xs[k], vs[k] = Float32s(snap.Xs[k]), Float32s(snap.Vs[k])
	}
	side := int(math.Round(math.Cbrt(float64(len(xs[0])))))
	mass := w.c.ParticleMass(snap.BoxSize, side)

	fname := path.Join(w.dir, fmt.Sprintf(ParticleFormat, snap.Idx))
	err := writeFile(fname, func(wr *bufio.Writer) error {
		return WriteParticles(xs, vs, mass, ci, ri, wr)
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"dir": w.dir, "snapshot": snap.Idx,
	}).Debug("Wrote snapshot files.")
	return nil
}

func writeFile(fname string, write func(wr *bufio.Writer) error) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	wr := bufio.NewWriter(f)
	if err = write(wr); err == nil {
		err = wr.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// MultiSink hands every snapshot to each of its sinks in order.
type MultiSink []gopm.Sink

// Snapshot calls every sink and joins their errors.
func (ms MultiSink) Snapshot(snap *gopm.Snapshot) error {
	var errs []error
	for _, sink := range ms {
		if err := sink.Snapshot(snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AsyncSink passes snapshots to another sink on a background goroutine.
// Snapshot blocks once buffer snapshots are waiting to be written.
type AsyncSink struct {
	sink  gopm.Sink
	snaps chan *gopm.Snapshot
	group *errgroup.Group
	ctx   context.Context
	once  sync.Once
}

// NewAsyncSink starts the goroutine which feeds sink. It stops at the first
// error returned by sink or when ctx is cancelled.
func NewAsyncSink(ctx context.Context, sink gopm.Sink, buffer int) *AsyncSink {
	if buffer < 0 {
		buffer = 0
	}
	group, ctx := errgroup.WithContext(ctx)
	as := &AsyncSink{
		sink: sink, snaps: make(chan *gopm.Snapshot, buffer),
		group: group, ctx: ctx,
	}

	group.Go(func() error {
		for {
			select {
			case snap, ok := <-as.snaps:
				if !ok {
					return ctx.Err()
				}
				if err := as.sink.Snapshot(snap); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	return as
}

// Snapshot queues snap. If the background sink has failed or the AsyncSink
// has been closed, the result of Close is returned instead. Snapshot must not
// be called concurrently with Close.
func (as *AsyncSink) Snapshot(snap *gopm.Snapshot) error {
	if as.ctx.Err() != nil {
		return as.Close()
	}
	select {
	case as.snaps <- snap:
		return nil
	case <-as.ctx.Done():
		return as.Close()
	}
}

// Close waits for every queued snapshot to be written and returns the first
// error encountered.
func (as *AsyncSink) Close() error {
	as.once.Do(func() { close(as.snaps) })
	return as.group.Wait()
}
