package vtkio_test

import (
	"bufio"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gosphere/internal/hydro"
	"github.com/notargets/gosphere/internal/ndarray"
	"github.com/notargets/gosphere/internal/vtkio"
)

func TestWriteProducesWellFormedHeaderAndBigEndianPayload(t *testing.T) {
	ni, nj := 2, 3
	vert := ndarray.New(ni+1, nj+1, 2)
	for i := 0; i <= ni; i++ {
		for j := 0; j <= nj; j++ {
			v := vert.At(i, j)
			v[0] = 1.0 + float64(i)
			v[1] = math.Pi * float64(j) / float64(nj)
		}
	}
	cons := ndarray.New(ni, nj, hydro.NumComponents)
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			copy(cons.At(i, j), hydro.PrimToConsUnsafe([]float64{2.0, 0.5, 0, 0, 1.0}))
		}
	}

	path := filepath.Join(t.TempDir(), "out.vtk")
	require.NoError(t, vtkio.Write(path, vert, cons))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r := bufio.NewReader(f)

	line, _ := r.ReadString('\n')
	assert.Equal(t, "# vtk DataFile Version 3.0\n", line)
	line, _ = r.ReadString('\n')
	assert.Equal(t, "My Data\n", line)
	line, _ = r.ReadString('\n')
	assert.Equal(t, "BINARY\n", line)
	line, _ = r.ReadString('\n')
	assert.Equal(t, "DATASET STRUCTURED_GRID\n", line)
	line, _ = r.ReadString('\n')
	assert.Equal(t, "DIMENSIONS 3 4 1\n", line)
	line, _ = r.ReadString('\n')
	assert.Equal(t, "POINTS 12 FLOAT\n", line)

	var b [4]byte
	_, err = r.Read(b[:])
	require.NoError(t, err)
	x := math.Float32frombits(binary.BigEndian.Uint32(b[:]))
	assert.InDelta(t, 0.0, x, 1e-6) // r=1, theta=0 => x = r*sin(0) = 0
}
