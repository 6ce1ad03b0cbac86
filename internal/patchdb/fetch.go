package patchdb

import (
	"fmt"

	"github.com/notargets/gosphere/internal/ndarray"
)

// Fetch returns a new array equal to patch idx's conserved array padded by
// ghost zones of depth (giL, giR) on the i-edges and (gjL, gjR) on the
// j-edges.
//
// For i-ghosts, a neighbouring patch (idx.I±1, idx.J, idx.K) supplies the
// slab directly; if no such patch exists, the installed boundary callback
// supplies it. The j-direction has no neighbours in this solver's
// configuration; the boundary callback may return an empty array, in which
// case Fetch leaves that ghost region uninitialised — callers must not read
// it.
func (db *Database) Fetch(idx Index, giL, giR, gjL, gjR int) ndarray.Array {
	db.mu.RLock()
	cons, ok := db.arrays[key{idx, Conserved}]
	db.mu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("patchdb: fetch of unknown patch %s", idx))
	}

	ni, nj, nc := cons.Shape()
	out := ndarray.New(ni+giL+giR, nj+gjL+gjR, nc)

	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			copy(out.At(i+giL, j+gjL), cons.At(i, j))
		}
	}

	if giL > 0 {
		db.fillIGhost(idx, EdgeIL, giL, giL, cons, out, gjL, true)
	}
	if giR > 0 {
		db.fillIGhost(idx, EdgeIR, giR, giL, cons, out, gjL, false)
	}
	if gjL > 0 {
		db.fillJGhost(idx, EdgeJL, gjL, gjL, cons, out, giL, true)
	}
	if gjR > 0 {
		db.fillJGhost(idx, EdgeJR, gjR, gjL, cons, out, giL, false)
	}
	return out
}

// fillIGhost writes the i-ghost slab of depth `depth` into out, on the left
// (left=true) or right side. iInterior is the absolute i-index (in out) at
// which the patch's interior begins — i.e. always the value of giL passed
// to Fetch, regardless of which side is being filled. jOff is the
// j-offset, in out, of the interior's first column.
func (db *Database) fillIGhost(idx Index, edge Edge, depth, iInterior int, cons, out ndarray.Array, jOff int, left bool) {
	ni, nj, _ := cons.Shape()

	var nbIdx Index
	if left {
		nbIdx = idx.neighbor(-1, 0, 0)
	} else {
		nbIdx = idx.neighbor(1, 0, 0)
	}

	db.mu.RLock()
	nb, hasNeighbor := db.arrays[key{nbIdx, Conserved}]
	boundary := db.boundary
	db.mu.RUnlock()

	if hasNeighbor {
		nbNi, _, _ := nb.Shape()
		for g := 0; g < depth; g++ {
			var srcI, dstI int
			if left {
				srcI = nbNi - depth + g
				dstI = g
			} else {
				srcI = g
				dstI = iInterior + ni + g
			}
			for j := 0; j < nj; j++ {
				copy(out.At(dstI, j+jOff), nb.At(srcI, j))
			}
		}
		return
	}

	if boundary == nil {
		panic(fmt.Sprintf("patchdb: no neighbor and no boundary callback installed for %s edge %v", idx, edge))
	}
	slab := boundary(idx, edge, depth, cons)
	si, _, _ := slab.Shape()
	if si == 0 {
		return // boundary declined; leave ghost region uninitialised
	}
	for g := 0; g < depth; g++ {
		dstI := g
		if !left {
			dstI = iInterior + ni + g
		}
		for j := 0; j < nj; j++ {
			copy(out.At(dstI, j+jOff), slab.At(g, j))
		}
	}
}

// fillJGhost writes the j-ghost slab of depth `depth` into out, on the left
// (theta=0, left=true) or right (theta=pi) side. There are never
// neighbouring patches in the j-direction for this configuration, so this
// always consults the boundary callback. jInterior is the absolute
// j-index (in out) at which the interior begins; iOff is the i-offset, in
// out, of the interior's first row.
func (db *Database) fillJGhost(idx Index, edge Edge, depth, jInterior int, cons, out ndarray.Array, iOff int, left bool) {
	ni, nj, _ := cons.Shape()

	db.mu.RLock()
	boundary := db.boundary
	db.mu.RUnlock()
	if boundary == nil {
		panic(fmt.Sprintf("patchdb: no boundary callback installed for %s edge %v", idx, edge))
	}
	slab := boundary(idx, edge, depth, cons)
	_, sj, _ := slab.Shape()
	if sj == 0 {
		return
	}
	for g := 0; g < depth; g++ {
		dstJ := g
		if !left {
			dstJ = jInterior + nj + g
		}
		for i := 0; i < ni; i++ {
			copy(out.At(i+iOff, dstJ), slab.At(i, g))
		}
	}
}
