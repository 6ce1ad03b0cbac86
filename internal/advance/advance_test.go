package advance_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gosphere/internal/advance"
	"github.com/notargets/gosphere/internal/hydro"
	"github.com/notargets/gosphere/internal/mesh"
	"github.com/notargets/gosphere/internal/ndarray"
)

// uniformPatch builds a padded conserved array (ni+4, nj, 5) holding the
// same primitive state everywhere, including the ghost rows, so a quiescent
// uniform flow has no i-direction gradient anywhere.
func uniformPatch(ni, nj int, p []float64) ndarray.Array {
	u := hydro.PrimToConsUnsafe(p)
	a := ndarray.New(ni+4, nj, hydro.NumComponents)
	for i := 0; i < ni+4; i++ {
		for j := 0; j < nj; j++ {
			copy(a.At(i, j), u)
		}
	}
	return a
}

func testGeometry(ni, nj int) advance.Geometry {
	g := mesh.Build(ni, nj, mesh.Extent{R0: 1, R1: 2, Theta0: math.Pi / 4, Theta1: 3 * math.Pi / 4})
	return advance.GeometryFromPatch(g)
}

func TestStepKeepsUniformQuiescentDensityFixed(t *testing.T) {
	ni, nj := 4, 5
	p := []float64{1.0, 0, 0, 0, 1.0}
	u0 := uniformPatch(ni, nj, p)
	geom := testGeometry(ni, nj)

	// Heating and cooling are off; gravity and the geometric terms stay on
	// (they only touch momentum and energy). A uniform state at rest has
	// zero mass flux and no φ-momentum anywhere, so density and Mom3 stay
	// exactly fixed. Mom2 does not: each interior j-face carries exactly
	// the pressure p, the two outer j-faces carry zero flux, and the
	// geometric source adds p·cot θ/r, so the expected Mom2 is computed
	// from the patch geometry.
	dt := 1e-3
	out, err := advance.Step(u0.Slice(0, ni+4, 0, nj), geom, dt, hydro.NewSourceTerms(0, 0))
	require.NoError(t, err)

	outNi, outNj, _ := out.Shape()
	assert.Equal(t, ni, outNi)
	assert.Equal(t, nj, outNj)
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			c := out.At(i, j)
			x := geom.Centroids.At(i, j)
			bottom, top := 0.0, 0.0
			if j > 0 {
				bottom = p[hydro.Pres] * geom.FaceAreaJ.At(i, j)[0]
			}
			if j < nj-1 {
				top = p[hydro.Pres] * geom.FaceAreaJ.At(i, j+1)[0]
			}
			wantMom2 := dt * (p[hydro.Pres]/math.Tan(x[1])/x[0] - (top-bottom)/geom.Volumes.At(i, j)[0])
			assert.InDelta(t, 1.0, c[hydro.Density], 1e-9)
			assert.InDelta(t, wantMom2, c[hydro.Mom2], 1e-9)
			assert.InDelta(t, 0.0, c[hydro.Mom3], 1e-9)
		}
	}
}

func TestStepAppliesRadialGravityToQuiescentColumn(t *testing.T) {
	ni, nj := 3, 3
	// A near-vacuum pressure makes the geometric curvature term (2p/r)
	// negligible next to the gravitational term (ρg), isolating gravity's
	// sign on an otherwise-quiescent column.
	p := []float64{1.0, 0, 0, 0, 1e-6}
	u0 := uniformPatch(ni, nj, p)
	geom := testGeometry(ni, nj)

	out, err := advance.Step(u0.Slice(0, ni+4, 0, nj), geom, 1e-4, hydro.NewSourceTerms(0, 0))
	require.NoError(t, err)

	// Gravity acts inward (negative radial momentum source); since the flow
	// starts at rest, the interior cells must gain negative radial momentum.
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			assert.Less(t, out.At(i, j)[hydro.Mom1], 0.0)
		}
	}
}

func TestStepRejectsNonPositiveDensity(t *testing.T) {
	ni, nj := 3, 3
	p := []float64{1.0, 0, 0, 0, 1.0}
	u0 := uniformPatch(ni, nj, p)
	bad := u0.At(2, 1)
	bad[hydro.Density] = -5.0
	geom := testGeometry(ni, nj)

	_, err := advance.Step(u0.Slice(0, ni+4, 0, nj), geom, 1e-4, hydro.NewSourceTerms(0, 0))
	require.Error(t, err)
}

func TestStepHandlesNarrowPolarPatch(t *testing.T) {
	// nj < 3 cannot support a 3-point j-stencil; Step must still run and
	// simply carry zero j-flux.
	ni, nj := 3, 2
	p := []float64{1.0, 0, 0, 0, 1.0}
	u0 := uniformPatch(ni, nj, p)
	geom := testGeometry(ni, nj)

	out, err := advance.Step(u0.Slice(0, ni+4, 0, nj), geom, 1e-4, hydro.NewSourceTerms(0, 0))
	require.NoError(t, err)
	outNi, outNj, _ := out.Shape()
	assert.Equal(t, ni, outNi)
	assert.Equal(t, nj, outNj)
}
