package hydro

import "math"

// RiemannHLLE is the Harten-Lax-van Leer-Einfeldt approximate Riemann
// solver, parametrised by the face unit normal.
type RiemannHLLE struct {
	N Unit
}

// NewRiemannHLLE builds an HLLE solver for unit normal n.
func NewRiemannHLLE(n Unit) RiemannHLLE {
	return RiemannHLLE{N: n}
}

// Flux solves the Riemann problem between left and right primitive states
// and returns the HLLE Godunov flux F*.
//
// When both bounding wavespeeds are zero (the quiescent-uniform-flow
// degenerate case, where the textbook formula divides 0/0), Flux returns
// the zero flux rather than propagating a NaN.
func (r RiemannHLLE) Flux(pl, pr []float64) []float64 {
	al := PrimToEval(pl, r.N)
	ar := PrimToEval(pr, r.N)
	fl := PrimToFlux(pl, r.N)
	fr := PrimToFlux(pr, r.N)
	ul := PrimToConsUnsafe(pl)
	ur := PrimToConsUnsafe(pr)

	epl, eml := extremes(al)
	epr, emr := extremes(ar)
	ap := math.Max(0.0, math.Max(epl, epr))
	am := math.Min(0.0, math.Min(eml, emr))

	out := make([]float64, NumComponents)
	denom := ap - am
	if denom == 0 {
		return out
	}
	for q := 0; q < NumComponents; q++ {
		out[q] = (ap*fl[q] - am*fr[q] - (ul[q]-ur[q])*ap*am) / denom
	}
	return out
}

func extremes(a []float64) (max, min float64) {
	max, min = a[0], a[0]
	for _, v := range a[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}
