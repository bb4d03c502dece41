package field

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/gopm/math/interpolate"
)

// Spectrum is an isotropic power spectrum P(k).
type Spectrum interface {
	// Power returns P(k) for a wavenumber k in radians per unit length.
	Power(k float64) float64
	// SuppressDC and SuppressNyquist report whether the zero mode and the
	// mode at the Nyquist frequency along every axis are removed from
	// generated fields.
	SuppressDC() bool
	SuppressNyquist() bool
	// CheckInit returns an error if the spectrum cannot be sampled.
	CheckInit() error
}

// PowerLaw is the spectrum P(k) = Amplitude * k^(-Index).
type PowerLaw struct {
	Index, Amplitude float64
}

var (
	_ Spectrum = PowerLaw{}
	_ Spectrum = &Tabulated{}
)

// Power returns Amplitude * k^(-Index).
func (p PowerLaw) Power(k float64) float64 {
	return p.Amplitude * math.Pow(k, -p.Index)
}

// SuppressDC is true for positive indices, where P(0) diverges.
func (p PowerLaw) SuppressDC() bool { return p.Index > 0 }

// SuppressNyquist is true for indices below 3.
func (p PowerLaw) SuppressNyquist() bool { return p.Index < 3 }

func (p PowerLaw) CheckInit() error {
	if math.IsNaN(p.Index) || math.IsInf(p.Index, 0) {
		return fmt.Errorf("Power law index must be finite, but is %g.", p.Index)
	} else if !(p.Amplitude >= 0) || math.IsInf(p.Amplitude, 0) {
		return fmt.Errorf(
			"Power law amplitude must be finite and non-negative, but is %g.",
			p.Amplitude,
		)
	}
	return nil
}

// Tabulated is a spectrum interpolated in log-log space from a table of
// (k, P(k)) pairs. The power is zero outside the table.
type Tabulated struct {
	logP   interpolate.Interpolator
	lo, hi float64
}

// NewTabulated creates a Tabulated spectrum from wavenumbers ks and powers
// ps. ks must be positive and strictly sorted, and ps must be positive. If
// linear is true log P is interpolated linearly instead of with a cubic
// spline.
func NewTabulated(ks, ps []float64, linear bool) (*Tabulated, error) {
	if len(ks) != len(ps) {
		return nil, fmt.Errorf(
			"Power spectrum table has %d wavenumbers but %d powers.",
			len(ks), len(ps),
		)
	} else if len(ks) < 2 {
		return nil, fmt.Errorf(
			"Power spectrum table must have at least 2 rows, but has %d.",
			len(ks),
		)
	}

	logK, logP := make([]float64, len(ks)), make([]float64, len(ps))
	for i := range ks {
		if !(ks[i] > 0) || !(ps[i] > 0) {
			return nil, fmt.Errorf(
				"Row %d of power spectrum table, (%g, %g), is not positive.",
				i, ks[i], ps[i],
			)
		}
		logK[i], logP[i] = math.Log(ks[i]), math.Log(ps[i])
		if i > 0 && !(logK[i] > logK[i-1]) {
			return nil, fmt.Errorf(
				"Wavenumbers in power spectrum table are not increasing at row %d.",
				i,
			)
		}
	}

	t := &Tabulated{}
	if linear {
		t.logP = interpolate.NewLinear(logK, logP)
	} else {
		t.logP = interpolate.NewSpline(logK, logP)
	}
	t.lo, t.hi = t.logP.Range()
	return t, nil
}

// ReadTabulated reads a Tabulated spectrum from the first two columns of a
// text file.
func ReadTabulated(file string, linear bool) (*Tabulated, error) {
	cols, err := table.ReadTable(file, []int{0, 1}, nil)
	if err != nil {
		return nil, err
	}
	return NewTabulated(cols[0], cols[1], linear)
}

// Power returns the interpolated P(k), or 0 outside the table.
func (t *Tabulated) Power(k float64) float64 {
	if !(k > 0) {
		return 0
	}
	lk := math.Log(k)
	if lk < t.lo || lk > t.hi {
		return 0
	}
	return math.Exp(t.logP.Eval(lk))
}

func (t *Tabulated) SuppressDC() bool      { return true }
func (t *Tabulated) SuppressNyquist() bool { return false }
func (t *Tabulated) CheckInit() error      { return nil }
