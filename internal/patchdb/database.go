// Package patchdb implements the keyed patch database: per-patch arrays
// addressed by (block_i, block_j, block_k, field), ghost-zone assembly via
// a pluggable boundary callback, multi-patch assembly for I/O, and the
// Runge-Kutta commit/mixing rule. The database exclusively owns every
// patch array it holds; callers only ever see borrowed views or
// independent copies.
package patchdb

import (
	"fmt"
	"sort"
	"sync"

	"github.com/notargets/gosphere/internal/ndarray"
)

// Index identifies a patch. block_j and block_k are always 0 in this
// solver's radial-only decomposition. The type carries all three axes, but
// Fetch looks up neighbours along i only.
type Index struct {
	I, J, K int
}

func (idx Index) String() string { return fmt.Sprintf("(%d,%d,%d)", idx.I, idx.J, idx.K) }

func (idx Index) neighbor(di, dj, dk int) Index {
	return Index{idx.I + di, idx.J + dj, idx.K + dk}
}

// Field names one of the arrays stored per patch.
type Field int

const (
	Conserved Field = iota
	VertCoords
	CellCoords
	CellVolume
	FaceAreaI
	FaceAreaJ
)

func (f Field) String() string {
	switch f {
	case Conserved:
		return "conserved"
	case VertCoords:
		return "vert_coords"
	case CellCoords:
		return "cell_coords"
	case CellVolume:
		return "cell_volume"
	case FaceAreaI:
		return "face_area_i"
	case FaceAreaJ:
		return "face_area_j"
	default:
		return "unknown"
	}
}

// Edge names which side of a patch a ghost slab is being requested for.
type Edge int

const (
	EdgeIL Edge = iota // inner r
	EdgeIR             // outer r
	EdgeJL             // theta = 0
	EdgeJR             // theta = pi
)

// BoundaryFunc supplies a ghost slab for an edge that has no neighbouring
// patch. It may return the zero Array (Shape() == (0,0,0)) to signal "no
// ghost data" — Fetch then leaves that region of the padded array
// uninitialised, and callers relying on it must never read it.
type BoundaryFunc func(idx Index, edge Edge, depth int, patch ndarray.Array) ndarray.Array

type key struct {
	idx   Index
	field Field
}

// Database is the keyed store of per-patch arrays. It is safe for
// concurrent use: Fetch/At/All take a read lock, Insert/Commit take a
// write lock.
type Database struct {
	mu       sync.RWMutex
	arrays   map[key]ndarray.Array
	boundary BoundaryFunc
}

// New constructs an empty database.
func New() *Database {
	return &Database{arrays: make(map[key]ndarray.Array)}
}

// SetBoundaryValue installs the callback used by Fetch whenever a requested
// ghost region has no neighbouring patch.
func (db *Database) SetBoundaryValue(fn BoundaryFunc) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.boundary = fn
}

// Insert stores or replaces the array for (idx, field).
func (db *Database) Insert(idx Index, field Field, a ndarray.Array) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.arrays[key{idx, field}] = a
}

// At borrows the array stored for (idx, field).
func (db *Database) At(idx Index, field Field) (ndarray.Array, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	a, ok := db.arrays[key{idx, field}]
	return a, ok
}

// Entry pairs a patch index with a borrowed array, as returned by All.
type Entry struct {
	Index Index
	Array ndarray.Array
}

// All enumerates every patch holding field, sorted by index for
// deterministic iteration order (required for the thread-invariance
// property: task enqueue order must not depend on map iteration order).
func (db *Database) All(field Field) []Entry {
	db.mu.RLock()
	defer db.mu.RUnlock()
	var out []Entry
	for k, a := range db.arrays {
		if k.field == field {
			out = append(out, Entry{Index: k.idx, Array: a})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Index, out[j].Index
		if a.I != b.I {
			return a.I < b.I
		}
		if a.J != b.J {
			return a.J < b.J
		}
		return a.K < b.K
	})
	return out
}

// NumCells returns the total cell count summed across every patch holding
// field.
func (db *Database) NumCells(field Field) int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	total := 0
	for k, a := range db.arrays {
		if k.field == field {
			ni, nj, _ := a.Shape()
			total += ni * nj
		}
	}
	return total
}

// Commit replaces the conserved array for idx under the Runge-Kutta mixing
// rule C := w*C_old + (1-w)*newConserved. w=0 is an Euler replacement;
// w=0.5 realises the second step of Heun's method.
func (db *Database) Commit(idx Index, newConserved ndarray.Array, w float64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	k := key{idx, Conserved}
	old, ok := db.arrays[k]
	if !ok {
		panic(fmt.Sprintf("patchdb: commit to unknown patch %s", idx))
	}
	ni, nj, nc := old.Shape()
	mixed := ndarray.New(ni, nj, nc)
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			oc := old.At(i, j)
			nc2 := newConserved.At(i, j)
			out := mixed.At(i, j)
			for c := 0; c < nc; c++ {
				out[c] = w*oc[c] + (1-w)*nc2[c]
			}
		}
	}
	db.arrays[k] = mixed
}

// Assemble concatenates the field arrays of blocks [i0,i1) x [j0,j1) at
// level k0 along axis 0 in ascending block order, for global I/O.
func (db *Database) Assemble(i0, i1, j0, j1, k0 int, field Field) ndarray.Array {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var blocks []ndarray.Array
	nj, nc := -1, -1
	for i := i0; i < i1; i++ {
		for j := j0; j < j1; j++ {
			a, ok := db.arrays[key{Index{i, j, k0}, field}]
			if !ok {
				panic(fmt.Sprintf("patchdb: assemble missing patch (%d,%d,%d) field %s", i, j, k0, field))
			}
			_, aj, ac := a.Shape()
			if nj == -1 {
				nj, nc = aj, ac
			} else if aj != nj || ac != nc {
				panic("patchdb: assemble requires uniform (nj, nc) across blocks")
			}
			blocks = append(blocks, a)
		}
	}
	totalNi := 0
	for _, b := range blocks {
		bi, _, _ := b.Shape()
		totalNi += bi
	}
	out := ndarray.New(totalNi, nj, nc)
	ioff := 0
	for _, b := range blocks {
		bi, _, _ := b.Shape()
		for i := 0; i < bi; i++ {
			for j := 0; j < nj; j++ {
				copy(out.At(ioff+i, j), b.At(i, j))
			}
		}
		ioff += bi
	}
	return out
}
