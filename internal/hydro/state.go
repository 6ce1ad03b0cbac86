// Package hydro implements the pure-function Newtonian hydrodynamics
// primitives: conservative/primitive conversion, axis fluxes, characteristic
// wavespeeds, the HLLE Riemann solver, and the spherical source terms
// (geometry, point-mass gravity, heating, Bremsstrahlung cooling).
//
// The state conversions are plain functions at the package constant
// GammaLawIndex; the Riemann solver and the source terms are small values
// carrying their constants (gamma, rate coefficients) with a method (Flux,
// Eval) — never an interface hierarchy.
package hydro

import (
	"fmt"
	"math"
)

// GammaLawIndex is the ideal-gas adiabatic index; fixed at 5/3 for this
// solver (monatomic gas), matching the reference physics model.
const GammaLawIndex = 5.0 / 3.0

// Component indices into a conserved state (DDD, S11, S22, S33, NRG) and a
// primitive state (RHO, V11, V22, V33, PRE).
const (
	Density = 0
	Mom1    = 1
	Mom2    = 2
	Mom3    = 3
	Energy  = 4

	Rho  = 0
	Vel1 = 1
	Vel2 = 2
	Vel3 = 3
	Pres = 4
)

// NumComponents is the width of both the conserved and primitive state
// vectors.
const NumComponents = 5

// Unit is a unit normal direction, one of (1,0,0), (0,1,0), (0,0,1).
type Unit [3]float64

var (
	UnitI = Unit{1, 0, 0}
	UnitJ = Unit{0, 1, 0}
)

// Position is a (r, theta) mesh location.
type Position [2]float64

// ValidationError reports a conserved or primitive state that violates its
// positivity invariant. It names the kernel that raised it, matching the
// reference implementation's practice of tagging errors with the caller.
type ValidationError struct {
	Caller string
	Kind   string
	Value  float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value=%g)", e.Caller, e.Kind, e.Value)
}

// NewValidationError builds a ValidationError; the kinds used in this
// package are "negative conserved density", "negative conserved energy",
// "negative density" and "negative pressure".
func NewValidationError(caller, kind string, value float64) *ValidationError {
	return &ValidationError{Caller: caller, Kind: kind, Value: value}
}

// CheckValidCons validates ρ>0, E>0 on a conserved state, as required by
// the hard invariant on conservatives.
func CheckValidCons(u []float64, caller string) error {
	if u[Density] <= 0.0 {
		return NewValidationError(caller, "negative conserved density", u[Density])
	}
	if u[Energy] <= 0.0 {
		return NewValidationError(caller, "negative conserved energy", u[Energy])
	}
	return nil
}

// CheckValidPrim validates ρ>0, p>0 on a primitive state.
func CheckValidPrim(p []float64, caller string) error {
	if p[Rho] <= 0.0 {
		return NewValidationError(caller, "negative density", p[Rho])
	}
	if p[Pres] <= 0.0 {
		return NewValidationError(caller, "negative pressure", p[Pres])
	}
	return nil
}

// ConsToPrim converts a conserved state to primitives under the ideal-gas
// law at GammaLawIndex. It never panics: an invalid conserved or primitive
// state is reported as a *ValidationError; ConsToPrimUnsafe skips validation for use
// in contexts (e.g. wavespeed estimation of already-known-good states)
// where the caller validates separately.
func ConsToPrim(u []float64) ([]float64, error) {
	if err := CheckValidCons(u, "hydro.ConsToPrim"); err != nil {
		return nil, err
	}
	p := ConsToPrimUnsafe(u)
	if err := CheckValidPrim(p, "hydro.ConsToPrim"); err != nil {
		return nil, err
	}
	return p, nil
}

// ConsToPrimUnsafe performs the conversion without positivity checks.
func ConsToPrimUnsafe(u []float64) []float64 {
	const gm1 = GammaLawIndex - 1.0
	pp := u[Mom1]*u[Mom1] + u[Mom2]*u[Mom2] + u[Mom3]*u[Mom3]
	p := make([]float64, NumComponents)
	p[Rho] = u[Density]
	p[Pres] = (u[Energy] - 0.5*pp/u[Density]) * gm1
	p[Vel1] = u[Mom1] / u[Density]
	p[Vel2] = u[Mom2] / u[Density]
	p[Vel3] = u[Mom3] / u[Density]
	return p
}

// PrimToCons converts a primitive state to conservatives.
func PrimToCons(p []float64) ([]float64, error) {
	if err := CheckValidPrim(p, "hydro.PrimToCons"); err != nil {
		return nil, err
	}
	return PrimToConsUnsafe(p), nil
}

// PrimToConsUnsafe performs the conversion without positivity checks.
func PrimToConsUnsafe(p []float64) []float64 {
	const gm1 = GammaLawIndex - 1.0
	vv := p[Vel1]*p[Vel1] + p[Vel2]*p[Vel2] + p[Vel3]*p[Vel3]
	u := make([]float64, NumComponents)
	u[Density] = p[Rho]
	u[Mom1] = p[Rho] * p[Vel1]
	u[Mom2] = p[Rho] * p[Vel2]
	u[Mom3] = p[Rho] * p[Vel3]
	u[Energy] = p[Rho]*0.5*vv + p[Pres]/gm1
	return u
}

// PrimToFlux computes the axis-aligned flux F(P) along unit normal n.
func PrimToFlux(p []float64, n Unit) []float64 {
	vn := p[Vel1]*n[0] + p[Vel2]*n[1] + p[Vel3]*n[2]
	u := PrimToConsUnsafe(p)
	f := make([]float64, NumComponents)
	f[Density] = vn * u[Density]
	f[Mom1] = vn*u[Mom1] + p[Pres]*n[0]
	f[Mom2] = vn*u[Mom2] + p[Pres]*n[1]
	f[Mom3] = vn*u[Mom3] + p[Pres]*n[2]
	f[Energy] = vn*u[Energy] + p[Pres]*vn
	return f
}

// PrimToEval computes the five characteristic wavespeeds {vn-cs, vn, vn,
// vn, vn+cs} along unit normal n. Pressure is clamped at 0 before the
// sound-speed extraction only, so a momentarily negative pressure used in
// wavespeed estimation never produces a NaN.
func PrimToEval(p []float64, n Unit) []float64 {
	dg := p[Rho]
	pg := math.Max(0.0, p[Pres])
	cs := math.Sqrt(GammaLawIndex * pg / dg)
	vn := p[Vel1]*n[0] + p[Vel2]*n[1] + p[Vel3]*n[2]
	return []float64{vn - cs, vn, vn, vn, vn + cs}
}
