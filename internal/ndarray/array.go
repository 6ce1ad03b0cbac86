// Package ndarray implements the rank-3 double array used throughout the
// hydrodynamics core: a (ni, nj, nc) grid of cell- or vertex-quantities with
// zero-copy sub-views over the first two axes and binary serialisation.
package ndarray

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Array owns a contiguous (ni, nj, nc) block of float64, row-major with nc
// (the component axis) fastest-varying.
type Array struct {
	data   []float64
	ni, nj int
	nc     int
}

// New allocates a zeroed array of the given shape.
func New(ni, nj, nc int) Array {
	return Array{data: make([]float64, ni*nj*nc), ni: ni, nj: nj, nc: nc}
}

// NewFromData wraps an existing flat buffer; len(data) must equal ni*nj*nc.
func NewFromData(data []float64, ni, nj, nc int) Array {
	if len(data) != ni*nj*nc {
		panic(fmt.Sprintf("ndarray: data length %d does not match shape (%d,%d,%d)", len(data), ni, nj, nc))
	}
	return Array{data: data, ni: ni, nj: nj, nc: nc}
}

func (a Array) Shape() (ni, nj, nc int) { return a.ni, a.nj, a.nc }

// Data returns the flat backing slice (row-major, component fastest).
func (a Array) Data() []float64 { return a.data }

// At returns the (writable) component slice for cell (i, j).
func (a Array) At(i, j int) []float64 {
	off := (i*a.nj + j) * a.nc
	return a.data[off : off+a.nc : off+a.nc]
}

// View returns a non-owning view over the whole array.
func (a Array) View() View {
	return View{data: a.data, strideI: a.nj * a.nc, nc: a.nc, ni: a.ni, nj: a.nj}
}

// Slice returns a non-owning view over the half-open cell range
// [i0,i1) x [j0,j1).
func (a Array) Slice(i0, i1, j0, j1 int) View {
	return a.View().Slice(i0, i1, j0, j1)
}

// Clone makes an independent copy of the array.
func (a Array) Clone() Array {
	d := make([]float64, len(a.data))
	copy(d, a.data)
	return Array{data: d, ni: a.ni, nj: a.nj, nc: a.nc}
}

// View is a zero-copy rectangular sub-view over the first two axes of an
// Array. It shares backing storage with its parent; slicing a View never
// allocates or copies.
type View struct {
	data       []float64
	strideI    int // elements between consecutive i for the *backing* array
	nc         int
	i0, j0     int
	ni, nj     int
}

func (v View) Shape() (ni, nj, nc int) { return v.ni, v.nj, v.nc }

// At returns the component slice for cell (i, j) of the view.
func (v View) At(i, j int) []float64 {
	off := (v.i0+i)*v.strideI + (v.j0+j)*v.nc
	return v.data[off : off+v.nc : off+v.nc]
}

// Slice narrows the view further to the half-open range [i0,i1) x [j0,j1),
// interpreted relative to the current view's own index space.
func (v View) Slice(i0, i1, j0, j1 int) View {
	if i0 < 0 || j0 < 0 || i1 > v.ni || j1 > v.nj || i0 > i1 || j0 > j1 {
		panic(fmt.Sprintf("ndarray: slice [%d:%d, %d:%d] out of bounds for view (%d,%d)", i0, i1, j0, j1, v.ni, v.nj))
	}
	return View{
		data:    v.data,
		strideI: v.strideI,
		nc:      v.nc,
		i0:      v.i0 + i0,
		j0:      v.j0 + j0,
		ni:      i1 - i0,
		nj:      j1 - j0,
	}
}

// Copy materialises the view into a freshly-owned, contiguous Array.
func (v View) Copy() Array {
	out := New(v.ni, v.nj, v.nc)
	for i := 0; i < v.ni; i++ {
		for j := 0; j < v.nj; j++ {
			copy(out.At(i, j), v.At(i, j))
		}
	}
	return out
}

// arrayHeaderMagic tags the binary format written by WriteTo, so a loader
// can fail fast on a foreign or truncated file.
const arrayHeaderMagic uint32 = 0x41524e33 // "ARN3"

// WriteTo serialises the array as a small header (magic, ni, nj, nc)
// followed by the raw values in native (little-endian on every platform
// this module targets) byte order, per the checkpoint array-file format.
func (a Array) WriteTo(w io.Writer) (int64, error) {
	header := make([]byte, 4*4)
	binary.LittleEndian.PutUint32(header[0:4], arrayHeaderMagic)
	binary.LittleEndian.PutUint32(header[4:8], uint32(a.ni))
	binary.LittleEndian.PutUint32(header[8:12], uint32(a.nj))
	binary.LittleEndian.PutUint32(header[12:16], uint32(a.nc))
	n, err := w.Write(header)
	if err != nil {
		return int64(n), err
	}
	buf := make([]byte, 8*len(a.data))
	for i, v := range a.data {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], math.Float64bits(v))
	}
	m, err := w.Write(buf)
	return int64(n + m), err
}

// ReadArray deserialises an array previously written by Array.WriteTo.
func ReadArray(r io.Reader) (Array, error) {
	header := make([]byte, 16)
	if _, err := io.ReadFull(r, header); err != nil {
		return Array{}, fmt.Errorf("ndarray: reading header: %w", err)
	}
	magic := binary.LittleEndian.Uint32(header[0:4])
	if magic != arrayHeaderMagic {
		return Array{}, fmt.Errorf("ndarray: bad magic %#x, not an array file", magic)
	}
	ni := int(binary.LittleEndian.Uint32(header[4:8]))
	nj := int(binary.LittleEndian.Uint32(header[8:12]))
	nc := int(binary.LittleEndian.Uint32(header[12:16]))
	n := ni * nj * nc
	buf := make([]byte, 8*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Array{}, fmt.Errorf("ndarray: reading payload: %w", err)
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8 : i*8+8]))
	}
	return NewFromData(data, ni, nj, nc), nil
}
