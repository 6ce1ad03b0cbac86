// Package initcond builds the initial hydrodynamic state and the boundary
// callback wired into the patch database.
package initcond

import (
	"math"
	"math/rand"

	"github.com/notargets/gosphere/internal/hydro"
)

// Atmosphere is the hydrostatic power-law atmosphere initial condition:
// ρ = r^(-α), p = ρ·cs²/γ with cs² = 1/(α·r) (free-fall velocity squared
// over the Virial density index α), velocities zero, plus an optional
// uniform density perturbation in [0, noise) drawn from rnd.
type Atmosphere struct {
	Noise        float64
	DensityIndex float64
	Rnd          *rand.Rand
}

// NewAtmosphere builds an Atmosphere profile with density index alpha and
// density-perturbation amplitude noise, drawing jitter from rnd.
func NewAtmosphere(alpha, noise float64, rnd *rand.Rand) Atmosphere {
	return Atmosphere{Noise: noise, DensityIndex: alpha, Rnd: rnd}
}

// Prim evaluates the primitive state at cell centre (r, theta); theta is
// unused (the profile is radially symmetric) but kept for a uniform
// signature with other profiles.
func (a Atmosphere) Prim(r, theta float64) []float64 {
	alpha := a.DensityIndex
	vf2 := 1.0 / r // free-fall velocity squared, GM=1
	cs2 := vf2 / alpha
	dg := math.Pow(r, -alpha)
	pg := dg * cs2 / hydro.GammaLawIndex
	delta := 0.0
	if a.Noise != 0 && a.Rnd != nil {
		delta = a.Noise * a.Rnd.Float64()
	}
	return []float64{dg + delta, 0, 0, 0, pg}
}
