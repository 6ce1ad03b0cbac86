// Package mesh builds the per-patch vertex grid, cell centroids, cell
// volumes, and face areas for a spherical wedge covering a radial
// sub-interval and the full polar range.
package mesh

import (
	"math"

	"github.com/notargets/gosphere/internal/ndarray"
)

// Extent describes a patch's (r0, r1) x (theta0, theta1) rectangle in the
// logical (r, theta) mesh space.
type Extent struct {
	R0, R1         float64
	Theta0, Theta1 float64
}

// Geometry holds the immutable geometric fields of a single patch: vertex
// coordinates, cell centroids, cell volumes, and the i/j face areas.
type Geometry struct {
	VertCoords ndarray.Array // (ni+1, nj+1, 2): (r, theta) at vertices
	CellCoords ndarray.Array // (ni, nj, 2): (r̄, θ̄) at cell centres
	CellVolume ndarray.Array // (ni, nj, 1)
	FaceAreaI  ndarray.Array // (ni+1, nj, 1)
	FaceAreaJ  ndarray.Array // (ni, nj+1, 1)
}

// Build constructs the full geometry bundle for a patch spanning ni radial
// cells by nj polar cells over the given extent. The radial edges are
// logarithmically spaced; the polar edges are uniform.
func Build(ni, nj int, ext Extent) Geometry {
	verts := buildVertices(ni, nj, ext)
	return Geometry{
		VertCoords: verts,
		CellCoords: cellCentroids(verts),
		CellVolume: cellVolumes(verts),
		FaceAreaI:  faceAreasI(verts),
		FaceAreaJ:  faceAreasJ(verts),
	}
}

func buildVertices(ni, nj int, ext Extent) ndarray.Array {
	verts := ndarray.New(ni+1, nj+1, 2)
	for i := 0; i <= ni; i++ {
		r := ext.R0 * math.Pow(ext.R1/ext.R0, float64(i)/float64(ni))
		for j := 0; j <= nj; j++ {
			theta := ext.Theta0 + (ext.Theta1-ext.Theta0)*float64(j)/float64(nj)
			v := verts.At(i, j)
			v[0] = r
			v[1] = theta
		}
	}
	return verts
}

// cellCentroids computes r̄ = sqrt(r0*r1), θ̄ = (θ0+θ1)/2 for each cell.
func cellCentroids(verts ndarray.Array) ndarray.Array {
	mi, mj, _ := verts.Shape()
	ni, nj := mi-1, mj-1
	out := ndarray.New(ni, nj, 2)
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			r0, q0 := verts.At(i, j)[0], verts.At(i, j)[1]
			r1, q1 := verts.At(i+1, j+1)[0], verts.At(i+1, j+1)[1]
			c := out.At(i, j)
			c[0] = math.Sqrt(r0 * r1)
			c[1] = 0.5 * (q0 + q1)
		}
	}
	return out
}

const twoPi = 2 * math.Pi

// cellVolumes computes V = -1/3 (r1^3-r0^3)(cos θ1 - cos θ0)(2π) for each
// cell.
func cellVolumes(verts ndarray.Array) ndarray.Array {
	mi, mj, _ := verts.Shape()
	ni, nj := mi-1, mj-1
	out := ndarray.New(ni, nj, 1)
	for i := 0; i < ni; i++ {
		r0 := verts.At(i, 0)[0]
		r1 := verts.At(i+1, 0)[0]
		for j := 0; j < nj; j++ {
			q0 := verts.At(i, j)[1]
			q1 := verts.At(i, j+1)[1]
			out.At(i, j)[0] = -1.0 / 3.0 * (r1*r1*r1 - r0*r0*r0) * (math.Cos(q1) - math.Cos(q0)) * twoPi
		}
	}
	return out
}

// faceAreasI computes Ai(r0) = -r0^2 (2π)(cos θ1 - cos θ0) at each i-face.
func faceAreasI(verts ndarray.Array) ndarray.Array {
	mi, mj, _ := verts.Shape()
	ni, nj := mi-1, mj-1
	out := ndarray.New(mi, nj, 1)
	for i := 0; i < mi; i++ {
		r0 := verts.At(i, 0)[0]
		for j := 0; j < nj; j++ {
			q0 := verts.At(i, j)[1]
			q1 := verts.At(i, j+1)[1]
			out.At(i, j)[0] = -r0 * r0 * twoPi * (math.Cos(q1) - math.Cos(q0))
		}
	}
	_ = ni
	return out
}

// faceAreasJ computes Aj = 1/2 (r1+r0)(r1-r0)(2π) sin θ0 at each j-face.
func faceAreasJ(verts ndarray.Array) ndarray.Array {
	mi, mj, _ := verts.Shape()
	ni, nj := mi-1, mj-1
	out := ndarray.New(ni, mj, 1)
	for i := 0; i < ni; i++ {
		r0 := verts.At(i, 0)[0]
		r1 := verts.At(i+1, 0)[0]
		for j := 0; j < mj; j++ {
			q0 := verts.At(i, j)[1]
			out.At(i, j)[0] = 0.5 * (r1 + r0) * (r1 - r0) * twoPi * math.Sin(q0)
		}
	}
	_ = nj
	return out
}
