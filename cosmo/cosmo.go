/*package cosmo contains the background cosmology used by the particle-mesh
integrator. The scale factor a stands in for time throughout.
*/
package cosmo

import (
	"fmt"
	"math"
)

const (
	// Critical density today in units of (M_sun/h) / (Mpc/h)^3.
	rhoCritical0 = 2.77519737e11
)

// Params holds the density parameters and Hubble constant of a cosmology.
// H0 is in units of 100 km/s/Mpc.
type Params struct {
	OmegaM, OmegaB, OmegaK, OmegaL float64
	H0                             float64
}

// Planck returns the cosmology used by default.
func Planck() Params {
	return Params{
		OmegaM: 0.31, OmegaB: 0.04, OmegaK: 0.0, OmegaL: 0.69, H0: 0.68,
	}
}

// CheckInit returns an error if the parameters do not describe a usable
// cosmology.
func (p *Params) CheckInit() error {
	if p.OmegaM <= 0 {
		return fmt.Errorf("OmegaM must be positive, but is %g.", p.OmegaM)
	} else if p.OmegaB < 0 || p.OmegaB > p.OmegaM {
		return fmt.Errorf(
			"OmegaB must be in range [0, OmegaM = %g], but is %g.",
			p.OmegaM, p.OmegaB,
		)
	} else if p.OmegaL < 0 {
		return fmt.Errorf("OmegaL must be non-negative, but is %g.", p.OmegaL)
	} else if p.H0 <= 0 {
		return fmt.Errorf("H0 must be positive, but is %g.", p.H0)
	}

	sum := p.OmegaM + p.OmegaK + p.OmegaL
	if math.Abs(sum-1) > 1e-3 {
		return fmt.Errorf(
			"OmegaM + OmegaK + OmegaL must equal 1, but is %g.", sum,
		)
	}
	return nil
}

// ExpansionFactor returns f(a) = [(OmegaM + OmegaK a + OmegaL a^3) / a]^(-1/2),
// the conversion between scale factor steps and the code's time unit.
func (p *Params) ExpansionFactor(a float64) float64 {
	return 1 / math.Sqrt((p.OmegaM+p.OmegaK*a+p.OmegaL*a*a*a)/a)
}

// GrowthFactor returns the linear growth factor D(a), normalized with the
// Carroll, Press & Turner (1992) fitting formula.
func (p *Params) GrowthFactor(a float64) float64 {
	om, ol := p.OmegaM, p.OmegaL
	norm := math.Pow(om, 4.0/7) - ol + (1+om/2)*(1+ol/70)
	return 5.0 / 2 / om / norm * a
}

// Hubble returns the Hubble rate at scale factor a in units of
// 100 km/s/Mpc.
func (p *Params) Hubble(a float64) float64 {
	return p.H0 * math.Sqrt(p.OmegaL*a*a+p.OmegaK+p.OmegaM/a)
}

// RhoCritical returns the critical density at redshift z in
// (M_sun/h) / (Mpc/h)^3.
func (p *Params) RhoCritical(z float64) float64 {
	a := 1 / (1 + z)
	e2 := p.OmegaM/(a*a*a) + p.OmegaK/(a*a) + p.OmegaL
	return rhoCritical0 * e2
}

// RhoMean returns the mean matter density at redshift z in
// (M_sun/h) / (Mpc/h)^3.
func (p *Params) RhoMean(z float64) float64 {
	a := 1 / (1 + z)
	return rhoCritical0 * p.OmegaM / (a * a * a)
}

// ParticleMass returns the mass of a single particle in a box of the given
// width with the given number of particles on one side.
func (p *Params) ParticleMass(boxSize float64, particles int) float64 {
	l := boxSize / (float64(particles) / 128)
	return 1.32e5 * (p.OmegaM * p.H0 * p.H0) * l * l * l
}

// Redshift converts a scale factor to a redshift.
func Redshift(a float64) float64 { return 1/a - 1 }
