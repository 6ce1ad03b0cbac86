// Package driver implements the parallel Runge-Kutta orchestration: per
// sub-step, fetch each patch's ghost-padded conserved array and its
// geometry, enqueue an advance task per patch onto the worker pool, await
// every result, then commit with the sub-step's RK weight.
package driver

import (
	"fmt"
	"math"

	"github.com/notargets/gosphere/internal/advance"
	"github.com/notargets/gosphere/internal/hydro"
	"github.com/notargets/gosphere/internal/ndarray"
	"github.com/notargets/gosphere/internal/patchdb"
	"github.com/notargets/gosphere/internal/pool"
)

// iGhostDepth is fixed at 2 per edge, matching the advance kernel's fixed
// two-cell PLM+flux stencil reach. The j-direction carries no database-level
// ghosts; the advance kernel pads its own j-fluxes with zeros at the poles.
const iGhostDepth = 2

// GeometryProvider returns the immutable geometry bundle for a patch.
type GeometryProvider func(idx patchdb.Index) advance.Geometry

// FromDatabase builds a GeometryProvider that reads the geometry fields
// (cell_coords, cell_volume, face_area_i, face_area_j) stored in db for
// each patch, panicking if a patch is missing one — geometry is inserted
// once at startup and never removed, so a missing field is a programming
// error, not a runtime condition to handle gracefully.
func FromDatabase(db *patchdb.Database) GeometryProvider {
	return func(idx patchdb.Index) advance.Geometry {
		cellCoords := mustField(db, idx, patchdb.CellCoords)
		volume := mustField(db, idx, patchdb.CellVolume)
		faceAreaI := mustField(db, idx, patchdb.FaceAreaI)
		faceAreaJ := mustField(db, idx, patchdb.FaceAreaJ)
		return advance.Geometry{
			Centroids: cellCoords.View(),
			Volumes:   volume.View(),
			FaceAreaI: faceAreaI.View(),
			FaceAreaJ: faceAreaJ.View(),
		}
	}
}

func mustField(db *patchdb.Database, idx patchdb.Index, field patchdb.Field) ndarray.Array {
	a, ok := db.At(idx, field)
	if !ok {
		panic(fmt.Sprintf("driver: patch %s missing geometry field %s", idx, field))
	}
	return a
}

// rkWeights returns the sequence of commit weights for the requested RK
// order, or an error for anything but 1 or 2.
func rkWeights(rk int) ([]float64, error) {
	switch rk {
	case 1:
		return []float64{0}, nil
	case 2:
		return []float64{0, 0.5}, nil
	default:
		return nil, fmt.Errorf("driver: invalid rk order %d, must be 1 or 2", rk)
	}
}

type stepResult struct {
	idx  patchdb.Index
	cons ndarray.Array
}

// Step advances every patch in db by one full Runge-Kutta step of order rk,
// at fixed Δt, using source for the volumetric terms.
func Step(db *patchdb.Database, p *pool.Pool, geom GeometryProvider, dt float64, source hydro.SourceTerms, rk int) error {
	weights, err := rkWeights(rk)
	if err != nil {
		return err
	}
	for _, w := range weights {
		entries := db.All(patchdb.Conserved)

		// Fetch every patch's ghost-padded state and geometry in the
		// coordinator before any task is enqueued, so every task in this
		// sub-step sees the same pre-step state no matter how the pool
		// schedules it — a task must never call back into db itself.
		tasks := make([]pool.Task, len(entries))
		for k, e := range entries {
			e := e
			fetched := db.Fetch(e.Index, iGhostDepth, iGhostDepth, 0, 0)
			g := geom(e.Index)
			tasks[k] = func() (any, error) {
				out, err := advance.Step(fetched.View(), g, dt, source)
				if err != nil {
					return nil, fmt.Errorf("driver: patch %s: %w", e.Index, err)
				}
				return stepResult{idx: e.Index, cons: out}, nil
			}
		}

		futures := p.SubmitAll(tasks)
		results := make([]stepResult, len(futures))
		for k, f := range futures {
			v, err := f.Wait()
			if err != nil {
				return err
			}
			results[k] = v.(stepResult)
		}

		// Commit only after every future in this sub-step has resolved, so
		// a patch's post-step state never becomes visible to a still-
		// running neighbor fetch in the same sub-step.
		for _, r := range results {
			db.Commit(r.idx, r.cons, w)
		}
	}
	return nil
}

// Dt computes the fixed time step Δt = 0.25·π/nr prescribed for this
// solver; nr is the polar cell count. No CFL check is performed.
func Dt(nr int) float64 {
	return 0.25 * math.Pi / float64(nr)
}
