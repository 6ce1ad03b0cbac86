package initcond

import (
	"github.com/notargets/gosphere/internal/hydro"
	"github.com/notargets/gosphere/internal/ndarray"
	"github.com/notargets/gosphere/internal/patchdb"
)

// Boundary builds the database.BoundaryFunc for this solver's
// configuration: reflecting at the inner radius, zero-gradient at the
// outer radius, and empty (advance pads its own zero flux) at the two
// polar edges.
func Boundary() patchdb.BoundaryFunc {
	return func(idx patchdb.Index, edge patchdb.Edge, depth int, patch ndarray.Array) ndarray.Array {
		switch edge {
		case patchdb.EdgeIL:
			return reflectingInner(patch, depth)
		case patchdb.EdgeIR:
			return zeroGradientOuter(patch, depth)
		default: // EdgeJL, EdgeJR
			return ndarray.Array{}
		}
	}
}

// zeroGradientOuter duplicates the patch's last interior row depth times,
// for the outer radial boundary.
func zeroGradientOuter(patch ndarray.Array, depth int) ndarray.Array {
	ni, nj, nc := patch.Shape()
	out := ndarray.New(depth, nj, nc)
	for g := 0; g < depth; g++ {
		for j := 0; j < nj; j++ {
			copy(out.At(g, j), patch.At(ni-1, j))
		}
	}
	return out
}

// reflectingInner mirrors density, θ/φ momentum, and energy about the
// inner radial boundary while negating radial momentum, so S₁(ghost) =
// -S₁(first interior) with all other components matching it.
func reflectingInner(patch ndarray.Array, depth int) ndarray.Array {
	_, nj, nc := patch.Shape()
	out := ndarray.New(depth, nj, nc)
	for g := 0; g < depth; g++ {
		src := depth - 1 - g
		for j := 0; j < nj; j++ {
			in := patch.At(src, j)
			o := out.At(g, j)
			copy(o, in)
			o[hydro.Mom1] = -in[hydro.Mom1]
		}
	}
	return out
}
