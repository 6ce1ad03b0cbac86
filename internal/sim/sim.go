// Package sim wires together the patch database, mesh geometry, scheduler,
// and parallel driver into the solver's main loop.
package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/notargets/gosphere/internal/checkpoint"
	"github.com/notargets/gosphere/internal/config"
	"github.com/notargets/gosphere/internal/driver"
	"github.com/notargets/gosphere/internal/hydro"
	"github.com/notargets/gosphere/internal/initcond"
	"github.com/notargets/gosphere/internal/mesh"
	"github.com/notargets/gosphere/internal/ndarray"
	"github.com/notargets/gosphere/internal/patchdb"
	"github.com/notargets/gosphere/internal/pool"
	"github.com/notargets/gosphere/internal/scheduler"
	"github.com/notargets/gosphere/internal/vtkio"
)

// blockSize returns the per-block radial cell count, matching the
// original's target_radial_zone_count/num_blocks sizing so the cell aspect
// ratio stays roughly uniform as outer_radius grows.
func blockSize(cfg config.Config) int {
	targetRadialZoneCount := float64(cfg.Nr) * math.Log10(cfg.OuterRadius)
	ni := int(targetRadialZoneCount / float64(cfg.NumBlocks))
	if ni < 1 {
		ni = 1
	}
	return ni
}

// CreateDatabase builds a fresh database from the atmosphere initial
// condition, or loads one from cfg.Restart, installing the boundary
// callback either way.
func CreateDatabase(cfg config.Config) (*patchdb.Database, error) {
	db := patchdb.New()
	ni := blockSize(cfg)
	nj := cfg.Nr

	if cfg.Restart != "" {
		if err := checkpoint.Load(db, cfg.Restart); err != nil {
			return nil, fmt.Errorf("sim: loading restart: %w", err)
		}
	} else {
		profile := initcond.NewAtmosphere(cfg.DensityIndex, cfg.Noise, cfg.Rand())
		for i := 0; i < cfg.NumBlocks; i++ {
			r0 := math.Pow(cfg.OuterRadius, float64(i)/float64(cfg.NumBlocks))
			r1 := math.Pow(cfg.OuterRadius, float64(i+1)/float64(cfg.NumBlocks))
			geom := mesh.Build(ni, nj, mesh.Extent{R0: r0, R1: r1, Theta0: 0, Theta1: math.Pi})
			idx := patchdb.Index{I: i}

			db.Insert(idx, patchdb.VertCoords, geom.VertCoords)
			db.Insert(idx, patchdb.CellCoords, geom.CellCoords)
			db.Insert(idx, patchdb.CellVolume, geom.CellVolume)
			db.Insert(idx, patchdb.FaceAreaI, geom.FaceAreaI)
			db.Insert(idx, patchdb.FaceAreaJ, geom.FaceAreaJ)
			db.Insert(idx, patchdb.Conserved, initialConserved(geom, profile))
		}
	}

	db.SetBoundaryValue(initcond.Boundary())
	return db, nil
}

func initialConserved(geom mesh.Geometry, profile initcond.Atmosphere) ndarray.Array {
	ni, nj, _ := geom.CellCoords.Shape()
	out := ndarray.New(ni, nj, hydro.NumComponents)
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			rq := geom.CellCoords.At(i, j)
			p := profile.Prim(rq[0], rq[1])
			copy(out.At(i, j), hydro.PrimToConsUnsafe(p))
		}
	}
	return out
}

// Run executes the full driver loop: scheduler bootstrap, step until
// cfg.Tfinal, final scheduler dispatch. It reports progress the way the
// original's run() does (dotted status lines), unless cfg.TestMode
// suppresses output and I/O.
func Run(cfg config.Config, sts config.Status, db *patchdb.Database) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	sched := scheduler.New()
	source := hydro.NewSourceTerms(cfg.HeatingRate, cfg.CoolingRate)
	dt := driver.Dt(cfg.Nr)
	workers := pool.New(cfg.NumThreads)
	defer workers.Close()
	geom := driver.FromDatabase(db)

	installScheduler(sched, cfg, &sts, db)

	if !cfg.TestMode {
		fmt.Printf("\n")
		fmt.Printf("%s\n", "====================================================")
		fmt.Println("Main loop:")
		fmt.Println()
	}

	if err := sched.Dispatch(sts.Time); err != nil {
		return fmt.Errorf("sim: scheduler: %w", err)
	}

	for sts.Time < cfg.Tfinal {
		if err := sched.Dispatch(sts.Time); err != nil {
			return fmt.Errorf("sim: scheduler: %w", err)
		}

		start := time.Now()
		if err := driver.Step(db, workers, geom, dt, source, cfg.Rk); err != nil {
			return fmt.Errorf("sim: step failed: %w", err)
		}
		elapsed := time.Since(start).Seconds()

		sts.Time += dt
		sts.Iter++
		sts.Wall += elapsed

		if !cfg.TestMode {
			kzps := float64(db.NumCells(patchdb.Conserved)) / 1e3 / elapsed
			fmt.Printf("[%04d] t=%3.3f kzps=%3.2f\n", sts.Iter, sts.Time, kzps)
		}
	}
	if err := sched.Dispatch(sts.Time); err != nil {
		return fmt.Errorf("sim: scheduler: %w", err)
	}

	if !cfg.TestMode && sts.Wall > 0 {
		fmt.Println()
		fmt.Printf("Run completed: average kzps=%f\n\n",
			float64(db.NumCells(patchdb.Conserved))/1e3/sts.Wall*float64(sts.Iter))
	}
	return nil
}

// installScheduler installs write_vtk and write_checkpoint at the
// configured intervals, resuming each task's next-count counter from sts
// so a restarted run continues numbering without collisions.
func installScheduler(sched *scheduler.Scheduler, cfg config.Config, sts *config.Status, db *patchdb.Database) {
	sched.Install("write_vtk", cfg.Vtki, sts.Time, func(t float64, count int) error {
		sts.VTKCount = count + 1
		if cfg.TestMode {
			return nil
		}
		return writeVTKSnapshot(db, cfg, count)
	})
	sched.Install("write_checkpoint", cfg.Cpi, sts.Time, func(t float64, count int) error {
		sts.ChkptCount = count + 1
		if cfg.TestMode {
			return nil
		}
		return checkpoint.Write(db, cfg, *sts, count)
	})
	sched.SetCount("write_vtk", sts.VTKCount, sts.Time)
	sched.SetCount("write_checkpoint", sts.ChkptCount, sts.Time)
}

func writeVTKSnapshot(db *patchdb.Database, cfg config.Config, count int) error {
	vert := db.Assemble(0, cfg.NumBlocks, 0, 1, 0, patchdb.VertCoords)
	cons := db.Assemble(0, cfg.NumBlocks, 0, 1, 0, patchdb.Conserved)
	return vtkio.Write(cfg.VTKPath(count), vert, cons)
}
