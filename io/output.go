package io

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/phil-mansfield/gopm/cosmo"
)

var end = binary.LittleEndian

const (
	// MaxCells is the largest grid side accepted by ReadGrid.
	MaxCells  = 1 << 12
	readBlock = 1 << 16
)

type GridHeader struct {
	Type  TypeInfo
	Cosmo CosmoInfo
	Run   RunInfo
}

type ParticleHeader struct {
	Type  TypeInfo
	Cosmo CosmoInfo
	Run   RunInfo
	Count int64
	// Mass of a single particle in M_sun/h.
	Mass float64
}

type TypeInfo struct {
	Endianness int64
	HeaderSize int64
	GridType   int64
}

type CosmoInfo struct {
	Redshift, ScaleFactor  float64
	OmegaM, OmegaL, Hubble float64
	RhoMean, RhoCritical   float64
	BoxWidth               float64
}

type RunInfo struct {
	ID                    [16]byte
	Snapshot, Step, Cells int64
}

type GridFlag int64

const (
	Density GridFlag = iota
	Potential
	Particles
)

func (flag GridFlag) String() string {
	switch flag {
	case Density:
		return "density"
	case Potential:
		return "potential"
	case Particles:
		return "particles"
	}
	return fmt.Sprintf("GridFlag(%d)", int64(flag))
}

func NewCosmoInfo(c cosmo.Params, a, boxWidth float64) CosmoInfo {
	z := cosmo.Redshift(a)
	return CosmoInfo{
		Redshift: z, ScaleFactor: a,
		OmegaM: c.OmegaM, OmegaL: c.OmegaL, Hubble: c.H0,
		RhoMean: c.RhoMean(z), RhoCritical: c.RhoCritical(z),
		BoxWidth: boxWidth,
	}
}

func NewRunInfo(id uuid.UUID, snapshot, step, cells int) RunInfo {
	return RunInfo{
		ID: [16]byte(id), Snapshot: int64(snapshot), Step: int64(step),
		Cells: int64(cells),
	}
}

// RunID returns the run's id as a UUID.
func (run *RunInfo) RunID() uuid.UUID { return uuid.UUID(run.ID) }

func endFlag() int64 {
	if end == binary.LittleEndian {
		return -1
	}
	return 0
}

func typeInfo(flag GridFlag, hd interface{}) TypeInfo {
	return TypeInfo{
		Endianness: endFlag(),
		HeaderSize: int64(binary.Size(hd)),
		GridType:   int64(flag),
	}
}

func checkType(ti *TypeInfo, flags ...GridFlag) error {
	if ti.Endianness != endFlag() {
		return fmt.Errorf("Unrecognized endianness flag, %d.", ti.Endianness)
	}
	for _, flag := range flags {
		if GridFlag(ti.GridType) == flag {
			return nil
		}
	}
	return fmt.Errorf("Unexpected grid type, %s.", GridFlag(ti.GridType))
}

// WriteGrid writes a header followed by the grid values xs.
func WriteGrid(
	flag GridFlag, xs []float32, cosmo CosmoInfo, run RunInfo, wr io.Writer,
) error {
	if flag != Density && flag != Potential {
		return fmt.Errorf("Cannot write a %s grid with WriteGrid.", flag)
	}
	n := int(run.Cells)
	if len(xs) != n*n*n {
		return fmt.Errorf(
			"Grid has %d values, but header gives %d cells per side.",
			len(xs), n,
		)
	}

	hd := GridHeader{Cosmo: cosmo, Run: run}
	hd.Type = typeInfo(flag, &hd)

	if err := binary.Write(wr, end, &hd); err != nil {
		return err
	}
	return binary.Write(wr, end, xs)
}

// ReadGridHeader reads the header at the start of a grid file.
func ReadGridHeader(rd io.Reader) (*GridHeader, error) {
	hd := &GridHeader{}
	if err := binary.Read(rd, end, hd); err != nil {
		return nil, err
	}
	if err := checkType(&hd.Type, Density, Potential); err != nil {
		return nil, err
	}
	return hd, nil
}

// ReadGrid reads the header and values of a grid file.
func ReadGrid(rd io.Reader) (*GridHeader, []float32, error) {
	hd, err := ReadGridHeader(rd)
	if err != nil {
		return nil, nil, err
	}
	n := hd.Run.Cells
	if n <= 0 || n > MaxCells {
		return nil, nil, fmt.Errorf(
			"Grid header gives %d cells per side, must be in [1, %d].",
			n, MaxCells,
		)
	}
	xs, err := readFloat32s(rd, n*n*n)
	if err != nil {
		return nil, nil, err
	}
	return hd, xs, nil
}

// readFloat32s reads n values in blocks so that a header claiming more
// values than the file holds fails without allocating all of them.
func readFloat32s(rd io.Reader, n int64) ([]float32, error) {
	xs := make([]float32, 0, minInt64(n, readBlock))
	buf := make([]float32, minInt64(n, readBlock))
	for int64(len(xs)) < n {
		block := buf[:minInt64(n-int64(len(xs)), readBlock)]
		if err := binary.Read(rd, end, block); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		xs = append(xs, block...)
	}
	return xs, nil
}

func minInt64(x, y int64) int64 {
	if x < y {
		return x
	}
	return y
}

// WriteParticles writes a header followed by the x, y, and z blocks of the
// positions and then of the velocities.
func WriteParticles(
	xs, vs [3][]float32, mass float64, cosmo CosmoInfo, run RunInfo,
	wr io.Writer,
) error {
	n := len(xs[0])
	for k := 0; k < 3; k++ {
		if len(xs[k]) != n || len(vs[k]) != n {
			return fmt.Errorf("Particle arrays have inconsistent lengths.")
		}
	}

	hd := ParticleHeader{Cosmo: cosmo, Run: run, Count: int64(n), Mass: mass}
	hd.Type = typeInfo(Particles, &hd)
	if err := binary.Write(wr, end, &hd); err != nil {
		return err
	}

	for _, block := range [][3][]float32{xs, vs} {
		for k := 0; k < 3; k++ {
			if err := binary.Write(wr, end, block[k]); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadParticles reads a file written by WriteParticles.
func ReadParticles(rd io.Reader) (hd *ParticleHeader, xs, vs [3][]float32, err error) {
	hd = &ParticleHeader{}
	if err = binary.Read(rd, end, hd); err != nil {
		return nil, xs, vs, err
	}
	if err = checkType(&hd.Type, Particles); err != nil {
		return nil, xs, vs, err
	}

	if hd.Count < 0 {
		return nil, xs, vs, fmt.Errorf(
			"Particle header gives a negative count, %d.", hd.Count,
		)
	}

	for _, block := range []*[3][]float32{&xs, &vs} {
		for k := 0; k < 3; k++ {
			if block[k], err = readFloat32s(rd, hd.Count); err != nil {
				return nil, xs, vs, err
			}
		}
	}
	return hd, xs, vs, nil
}

// Float32s converts a grid to single precision.
func Float32s(xs []float64) []float32 {
	out := make([]float32, len(xs))
	for i := range xs {
		out[i] = float32(xs[i])
	}
	return out
}
