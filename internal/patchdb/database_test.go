package patchdb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gosphere/internal/ndarray"
	"github.com/notargets/gosphere/internal/patchdb"
)

func makeConserved(ni, nj int, fill func(i, j int) float64) ndarray.Array {
	a := ndarray.New(ni, nj, 5)
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			v := fill(i, j)
			c := a.At(i, j)
			for k := range c {
				c[k] = v
			}
		}
	}
	return a
}

func TestInsertAtAll(t *testing.T) {
	db := patchdb.New()
	a := makeConserved(3, 4, func(i, j int) float64 { return float64(i*10 + j) })
	db.Insert(patchdb.Index{I: 0}, patchdb.Conserved, a)
	db.Insert(patchdb.Index{I: 1}, patchdb.Conserved, a)

	got, ok := db.At(patchdb.Index{I: 0}, patchdb.Conserved)
	require.True(t, ok)
	assert.Equal(t, a.Data(), got.Data())

	entries := db.All(patchdb.Conserved)
	require.Len(t, entries, 2)
	assert.Equal(t, patchdb.Index{I: 0}, entries[0].Index)
	assert.Equal(t, patchdb.Index{I: 1}, entries[1].Index)

	assert.Equal(t, 24, db.NumCells(patchdb.Conserved))
}

func TestFetchUsesNeighborForIGhosts(t *testing.T) {
	db := patchdb.New()
	left := makeConserved(3, 2, func(i, j int) float64 { return float64(100 + i) })
	mid := makeConserved(3, 2, func(i, j int) float64 { return float64(200 + i) })
	right := makeConserved(3, 2, func(i, j int) float64 { return float64(300 + i) })
	db.Insert(patchdb.Index{I: 0}, patchdb.Conserved, left)
	db.Insert(patchdb.Index{I: 1}, patchdb.Conserved, mid)
	db.Insert(patchdb.Index{I: 2}, patchdb.Conserved, right)
	db.SetBoundaryValue(func(idx patchdb.Index, edge patchdb.Edge, depth int, patch ndarray.Array) ndarray.Array {
		t.Fatal("boundary callback should not be invoked when a neighbor exists")
		return ndarray.Array{}
	})

	fetched := db.Fetch(patchdb.Index{I: 1}, 2, 2, 0, 0)
	ni, nj, _ := fetched.Shape()
	assert.Equal(t, 7, ni)
	assert.Equal(t, 2, nj)

	// Left ghosts [0,1] take the last two rows of `left` (values 101, 102).
	assert.Equal(t, 101.0, fetched.At(0, 0)[0])
	assert.Equal(t, 102.0, fetched.At(1, 0)[0])
	// Interior [2,4] is `mid` unchanged.
	assert.Equal(t, 200.0, fetched.At(2, 0)[0])
	assert.Equal(t, 202.0, fetched.At(4, 0)[0])
	// Right ghosts [5,6] take the first two rows of `right` (values 300, 301).
	assert.Equal(t, 300.0, fetched.At(5, 0)[0])
	assert.Equal(t, 301.0, fetched.At(6, 0)[0])
}

func TestFetchUsesBoundaryCallbackAtEdges(t *testing.T) {
	db := patchdb.New()
	mid := makeConserved(3, 2, func(i, j int) float64 { return float64(200 + i) })
	db.Insert(patchdb.Index{I: 0}, patchdb.Conserved, mid)

	var calledEdges []patchdb.Edge
	db.SetBoundaryValue(func(idx patchdb.Index, edge patchdb.Edge, depth int, patch ndarray.Array) ndarray.Array {
		calledEdges = append(calledEdges, edge)
		switch edge {
		case patchdb.EdgeIL, patchdb.EdgeIR:
			return makeConserved(depth, 2, func(i, j int) float64 { return -1 })
		default:
			return ndarray.Array{} // empty: j has no ghosts in this configuration
		}
	})

	fetched := db.Fetch(patchdb.Index{I: 0}, 2, 2, 1, 1)
	ni, nj, _ := fetched.Shape()
	assert.Equal(t, 7, ni)
	assert.Equal(t, 4, nj)
	assert.Equal(t, -1.0, fetched.At(0, 1)[0])
	assert.Equal(t, -1.0, fetched.At(6, 1)[0])
	assert.ElementsMatch(t, []patchdb.Edge{patchdb.EdgeIL, patchdb.EdgeIR, patchdb.EdgeJL, patchdb.EdgeJR}, calledEdges)
}

func TestCommitMixingRule(t *testing.T) {
	db := patchdb.New()
	old := makeConserved(2, 2, func(i, j int) float64 { return 10 })
	db.Insert(patchdb.Index{I: 0}, patchdb.Conserved, old)

	fresh := makeConserved(2, 2, func(i, j int) float64 { return 20 })
	db.Commit(patchdb.Index{I: 0}, fresh, 0.0)
	got, _ := db.At(patchdb.Index{I: 0}, patchdb.Conserved)
	assert.Equal(t, 20.0, got.At(0, 0)[0])

	db.Insert(patchdb.Index{I: 0}, patchdb.Conserved, old)
	db.Commit(patchdb.Index{I: 0}, fresh, 0.5)
	got, _ = db.At(patchdb.Index{I: 0}, patchdb.Conserved)
	assert.Equal(t, 15.0, got.At(0, 0)[0])
}

func TestAssembleConcatenatesBlocksInOrder(t *testing.T) {
	db := patchdb.New()
	a0 := makeConserved(2, 2, func(i, j int) float64 { return 0 })
	a1 := makeConserved(3, 2, func(i, j int) float64 { return 1 })
	db.Insert(patchdb.Index{I: 0}, patchdb.Conserved, a0)
	db.Insert(patchdb.Index{I: 1}, patchdb.Conserved, a1)

	out := db.Assemble(0, 2, 0, 1, 0, patchdb.Conserved)
	ni, nj, _ := out.Shape()
	assert.Equal(t, 5, ni)
	assert.Equal(t, 2, nj)
	assert.Equal(t, 0.0, out.At(0, 0)[0])
	assert.Equal(t, 1.0, out.At(2, 0)[0])
}
