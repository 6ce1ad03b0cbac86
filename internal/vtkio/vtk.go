// Package vtkio writes legacy VTK STRUCTURED_GRID snapshots: an ASCII
// header followed by big-endian binary single-precision POINTS (reprojected
// from spherical to Cartesian) and CELL_DATA scalars for density,
// radial_velocity, and pressure.
package vtkio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/notargets/gosphere/internal/hydro"
	"github.com/notargets/gosphere/internal/ndarray"
)

// Write assembles the global vertex grid and conserved-state array (already
// concatenated across every radial block, e.g. via patchdb.Assemble) and
// writes a single structured-grid VTK file to path.
func Write(path string, vert ndarray.Array, cons ndarray.Array) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vtkio: creating %s: %w", path, err)
	}
	w := bufio.NewWriter(f)

	vi, vj, _ := vert.Shape()
	if err := writeHeader(w, vi, vj); err != nil {
		return closeAndReturn(f, err)
	}
	if err := writePoints(w, vert); err != nil {
		return closeAndReturn(f, err)
	}

	ci, cj, _ := cons.Shape()
	prim := ndarray.MapUnary(cons.View(), hydro.NumComponents, hydro.ConsToPrimUnsafe)

	if _, err := fmt.Fprintf(w, "CELL_DATA %d\n", ci*cj); err != nil {
		return closeAndReturn(f, err)
	}
	if err := writeScalar(w, "density", prim, hydro.Rho); err != nil {
		return closeAndReturn(f, err)
	}
	if err := writeScalar(w, "radial_velocity", prim, hydro.Vel1); err != nil {
		return closeAndReturn(f, err)
	}
	if err := writeScalar(w, "pressure", prim, hydro.Pres); err != nil {
		return closeAndReturn(f, err)
	}

	if err := w.Flush(); err != nil {
		return closeAndReturn(f, err)
	}
	return f.Close()
}

func closeAndReturn(f *os.File, err error) error {
	f.Close()
	return err
}

func writeHeader(w io.Writer, vi, vj int) error {
	_, err := fmt.Fprintf(w, "# vtk DataFile Version 3.0\nMy Data\nBINARY\nDATASET STRUCTURED_GRID\nDIMENSIONS %d %d %d\n", vi, vj, 1)
	return err
}

// writePoints writes the vertex grid reprojected from (r, theta) to
// Cartesian (x, 0, z) with x = r sin θ, z = r cos θ, in big-endian
// single-precision binary, in j-major/i-minor order matching the original's
// nested j-outer, i-inner loop.
func writePoints(w io.Writer, vert ndarray.Array) error {
	vi, vj, _ := vert.Shape()
	if _, err := fmt.Fprintf(w, "POINTS %d FLOAT\n", vi*vj); err != nil {
		return err
	}
	buf := make([]byte, 0, vi*vj*3*4)
	for j := 0; j < vj; j++ {
		for i := 0; i < vi; i++ {
			rq := vert.At(i, j)
			r, q := rq[0], rq[1]
			x := r * math.Sin(q)
			z := r * math.Cos(q)
			buf = appendBEFloat32(buf, float32(x))
			buf = appendBEFloat32(buf, 0)
			buf = appendBEFloat32(buf, float32(z))
		}
	}
	_, err := w.Write(buf)
	return err
}

// writeScalar writes one CELL_DATA SCALARS block, selecting component comp
// of prim, in the same j-outer/i-inner order as writePoints.
func writeScalar(w io.Writer, name string, prim ndarray.Array, comp int) error {
	ci, cj, _ := prim.Shape()
	if _, err := fmt.Fprintf(w, "SCALARS %s FLOAT %d\nLOOKUP_TABLE default\n", name, 1); err != nil {
		return err
	}
	buf := make([]byte, 0, ci*cj*4)
	for j := 0; j < cj; j++ {
		for i := 0; i < ci; i++ {
			buf = appendBEFloat32(buf, float32(prim.At(i, j)[comp]))
		}
	}
	_, err := w.Write(buf)
	return err
}

// appendBEFloat32 appends the big-endian bytes of v to buf. VTK legacy
// binary always requires big-endian regardless of host byte order, so the
// bytes are byte-reversed (relative to this platform's little-endian
// encoding) unconditionally before write.
func appendBEFloat32(buf []byte, v float32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], math.Float32bits(v))
	return append(buf, b[:]...)
}
