// Package advance implements the single-patch one-step finite-volume
// update: PLM reconstruction, HLLE fluxes on both axes, spherical-geometry
// source integration, and the conservative update.
package advance

import (
	"math"

	"github.com/notargets/gosphere/internal/hydro"
	"github.com/notargets/gosphere/internal/mesh"
	"github.com/notargets/gosphere/internal/ndarray"
)

// plmTheta is the minmod limiter parameter; 2.0 is the most aggressive,
// least diffusive setting in [1,2].
const plmTheta = 2.0

func sgn(x float64) float64 { return math.Copysign(1, x) }

func minmodScalar(ul, u0, ur, theta float64) float64 {
	a := theta * (u0 - ul)
	b := 0.5 * (ur - ul)
	c := theta * (ur - u0)
	min3 := math.Min(math.Min(math.Abs(a), math.Abs(b)), math.Abs(c))
	return 0.25 * math.Abs(sgn(a)+sgn(b)) * (sgn(a) + sgn(c)) * min3
}

// minmodVec applies the scalar minmod limiter independently to each
// component of the three cell states.
func minmodVec(ul, u0, ur []float64) []float64 {
	out := make([]float64, len(u0))
	for k := range u0 {
		out[k] = minmodScalar(ul[k], u0[k], ur[k], plmTheta)
	}
	return out
}

func extrapLeft(u, g []float64) []float64 {
	out := make([]float64, len(u))
	for k := range u {
		out[k] = u[k] - 0.5*g[k]
	}
	return out
}

func extrapRight(u, g []float64) []float64 {
	out := make([]float64, len(u))
	for k := range u {
		out[k] = u[k] + 0.5*g[k]
	}
	return out
}

func fluxTimesArea(f, area []float64) []float64 {
	out := make([]float64, len(f))
	a := area[0]
	for k := range f {
		out[k] = f[k] * a
	}
	return out
}

// padZerosJ pads a with one zero row on each side of axis 1 (the
// j-direction), realising the "outflow by zero flux" boundary policy at the
// poles for quantities with no j-neighbours to reconstruct from.
func padZerosJ(a ndarray.Array) ndarray.Array {
	ni, nj, nc := a.Shape()
	out := ndarray.New(ni, nj+2, nc)
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			copy(out.At(i, j+1), a.At(i, j))
		}
	}
	return out
}

// Geometry bundles the immutable per-patch geometric fields an Advance call
// needs, at interior (non-ghost-padded) shape.
type Geometry struct {
	Centroids ndarray.View // (ni, nj, 2): (r̄, θ̄)
	Volumes   ndarray.View // (ni, nj, 1)
	FaceAreaI ndarray.View // (ni+1, nj, 1)
	FaceAreaJ ndarray.View // (ni, nj+1, 1)
}

// GeometryFromPatch adapts a mesh.Geometry (owned, non-view arrays) into an
// advance.Geometry of views.
func GeometryFromPatch(g mesh.Geometry) Geometry {
	return Geometry{
		Centroids: g.CellCoords.View(),
		Volumes:   g.CellVolume.View(),
		FaceAreaI: g.FaceAreaI.View(),
		FaceAreaJ: g.FaceAreaJ.View(),
	}
}

// Step advances a single patch by one PLM/HLLE/source step.
//
// u0 must have shape (ni+4, nj, 5): the interior plus 2 ghost cells on each
// i-edge. geom's arrays must have the corresponding interior shape (ni,
// nj,...). The returned array has shape (ni, nj, 5) — the new interior
// conserved state, owned independently of u0.
func Step(u0 ndarray.View, geom Geometry, dt float64, source hydro.SourceTerms) (ndarray.Array, error) {
	mi, mj, _ := u0.Shape()
	ni := mi - 4
	nj := mj

	p0, err := consToPrimView(u0)
	if err != nil {
		return ndarray.Array{}, err
	}
	p0v := p0.View()

	// --- i-direction reconstruction and flux -----------------------------
	pa := p0v.Slice(0, mi-2, 0, mj)
	pb := p0v.Slice(1, mi-1, 0, mj)
	pc := p0v.Slice(2, mi, 0, mj)
	gb := ndarray.MapTernary(pa, pb, pc, hydro.NumComponents, minmodVec)

	pl := ndarray.MapBinary(pb, gb.View(), hydro.NumComponents, extrapLeft)
	pr := ndarray.MapBinary(pb, gb.View(), hydro.NumComponents, extrapRight)

	solverI := hydro.NewRiemannHLLE(hydro.UnitI)
	prFace := pr.View().Slice(0, mi-3, 0, mj)
	plFace := pl.View().Slice(1, mi-2, 0, mj)
	fhI := ndarray.MapBinary(prFace, plFace, hydro.NumComponents, solverI.Flux)
	faI := ndarray.MapBinary(fhI.View(), geom.FaceAreaI, hydro.NumComponents, fluxTimesArea)

	// --- j-direction reconstruction and flux, interior i-range only -----
	p0interior := p0v.Slice(2, mi-2, 0, mj) // shape (ni, nj, 5)

	var faJ ndarray.Array
	if nj >= 3 {
		paJ := p0interior.Slice(0, ni, 0, nj-2)
		pbJ := p0interior.Slice(0, ni, 1, nj-1)
		pcJ := p0interior.Slice(0, ni, 2, nj)
		gbJRaw := ndarray.MapTernary(paJ, pbJ, pcJ, hydro.NumComponents, minmodVec)
		gbJ := padZerosJ(gbJRaw) // zero slope at theta=0, theta=pi

		plJ := ndarray.MapBinary(p0interior, gbJ.View(), hydro.NumComponents, extrapLeft)
		prJ := ndarray.MapBinary(p0interior, gbJ.View(), hydro.NumComponents, extrapRight)

		solverJ := hydro.NewRiemannHLLE(hydro.UnitJ)
		prFaceJ := prJ.View().Slice(0, ni, 0, nj-1)
		plFaceJ := plJ.View().Slice(0, ni, 1, nj)
		fhJRaw := ndarray.MapBinary(prFaceJ, plFaceJ, hydro.NumComponents, solverJ.Flux)
		fhJ := padZerosJ(fhJRaw) // zero flux at the two j-boundary faces (poles)
		faJ = ndarray.MapBinary(fhJ.View(), geom.FaceAreaJ, hydro.NumComponents, fluxTimesArea)
	} else {
		// Too few polar cells for a 3-point stencil: the j-flux is zero
		// everywhere, matching the zero-flux pole policy at both edges.
		faJ = ndarray.New(ni, nj+1, hydro.NumComponents)
	}

	// --- flux divergence, sources, conservative update -------------------
	divFlux := ndarray.New(ni, nj, hydro.NumComponents)
	faIv := faI.View()
	faJv := faJ.View()
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			left, right := faIv.At(i, j), faIv.At(i+1, j)
			bottom, top := faJv.At(i, j), faJv.At(i, j+1)
			out := divFlux.At(i, j)
			for c := 0; c < hydro.NumComponents; c++ {
				out[c] = (right[c] - left[c]) + (top[c] - bottom[c])
			}
		}
	}

	srcFn := func(p, x []float64) []float64 {
		return source.Eval(p, hydro.Position{x[0], x[1]})
	}
	s0 := ndarray.MapBinary(p0interior, geom.Centroids, hydro.NumComponents, srcFn)

	dt_ := dt
	updateFn := func(s, df, v []float64) []float64 {
		out := make([]float64, hydro.NumComponents)
		for c := 0; c < hydro.NumComponents; c++ {
			out[c] = dt_ * (s[c] - df[c]/v[0])
		}
		return out
	}
	dU := ndarray.MapTernary(s0.View(), divFlux.View(), geom.Volumes, hydro.NumComponents, updateFn)

	u0interior := u0.Slice(2, mi-2, 0, mj)
	return ndarray.Add(u0interior, dU.View()), nil
}

// consToPrimView converts every cell of v to primitives, validating
// positivity and returning the first violation encountered.
func consToPrimView(v ndarray.View) (ndarray.Array, error) {
	ni, nj, nc := v.Shape()
	out := ndarray.New(ni, nj, nc)
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			u := v.At(i, j)
			if err := hydro.CheckValidCons(u, "advance.Step"); err != nil {
				return ndarray.Array{}, err
			}
			p := hydro.ConsToPrimUnsafe(u)
			if err := hydro.CheckValidPrim(p, "advance.Step"); err != nil {
				return ndarray.Array{}, err
			}
			copy(out.At(i, j), p)
		}
	}
	return out, nil
}
