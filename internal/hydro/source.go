package hydro

import "math"

// SourceTerms evaluates the spherical geometric source terms, point-mass
// gravity (GM=1), volumetric heating, and Bremsstrahlung cooling. It is a
// small value carrying the heating/cooling rate coefficients, not a method
// on some larger solver object.
type SourceTerms struct {
	HeatingRate float64
	CoolingRate float64
}

// NewSourceTerms builds a SourceTerms kernel with the given rate
// coefficients.
func NewSourceTerms(heatingRate, coolingRate float64) SourceTerms {
	return SourceTerms{HeatingRate: heatingRate, CoolingRate: coolingRate}
}

// Eval evaluates the source vector S at position X=(r, theta) given the
// local primitive state P.
func (s SourceTerms) Eval(p []float64, x Position) []float64 {
	const gm1 = GammaLawIndex - 1.0
	r := x[0]
	theta := x[1]
	dg := p[Rho]
	vr := p[Vel1]
	vq := p[Vel2]
	vp := p[Vel3]
	pg := p[Pres]
	tg := pg / dg / gm1
	cotTheta := math.Tan(math.Pi/2 - theta)

	out := make([]float64, NumComponents)

	// Geometric source terms for spherical coordinates.
	out[Mom1] = (2*pg + dg*(vq*vq+vp*vp)) / r
	out[Mom2] = (pg*cotTheta + dg*(vp*vp*cotTheta-vr*vq)) / r
	out[Mom3] = -dg * vp * (vr + vq*cotTheta) / r

	// Point-mass gravity, GM=1.
	g := 1.0 / (r * r)
	out[Mom1] -= dg * g
	out[Energy] -= dg * g * vr

	// Volumetric heating and Bremsstrahlung cooling.
	out[Energy] += s.HeatingRate * math.Exp(-r*r)
	out[Energy] -= s.CoolingRate * math.Sqrt(tg) * dg * dg

	return out
}
