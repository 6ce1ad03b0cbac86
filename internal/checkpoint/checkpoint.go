// Package checkpoint implements the on-disk checkpoint tree writer and
// loader: a directory per snapshot holding JSON config/status records and
// one raw-binary array file per (patch, field).
package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/notargets/gosphere/internal/config"
	"github.com/notargets/gosphere/internal/ndarray"
	"github.com/notargets/gosphere/internal/patchdb"
)

// fields is the fixed set of per-patch arrays written to every checkpoint.
var fields = []patchdb.Field{
	patchdb.Conserved,
	patchdb.VertCoords,
	patchdb.CellCoords,
	patchdb.CellVolume,
	patchdb.FaceAreaI,
	patchdb.FaceAreaJ,
}

// Write emits a full checkpoint tree at cfg.ChkptDir(count): config.json,
// status.json, and a subdirectory per patch index holding one array file
// per field.
func Write(db *patchdb.Database, cfg config.Config, sts config.Status, count int) error {
	dir := cfg.ChkptDir(count)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("checkpoint: removing stale %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("checkpoint: creating %s: %w", dir, err)
	}
	if err := cfg.Save(cfg.ConfigPath(count)); err != nil {
		return fmt.Errorf("checkpoint: writing config: %w", err)
	}
	if err := sts.Save(cfg.StatusPath(count)); err != nil {
		return fmt.Errorf("checkpoint: writing status: %w", err)
	}

	for _, field := range fields {
		for _, entry := range db.All(field) {
			patchDir := filepath.Join(dir, patchDirName(entry.Index))
			if err := os.MkdirAll(patchDir, 0o755); err != nil {
				return fmt.Errorf("checkpoint: creating %s: %w", patchDir, err)
			}
			path := filepath.Join(patchDir, field.String())
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("checkpoint: creating %s: %w", path, err)
			}
			_, werr := entry.Array.WriteTo(f)
			cerr := f.Close()
			if werr != nil {
				return fmt.Errorf("checkpoint: writing %s: %w", path, werr)
			}
			if cerr != nil {
				return fmt.Errorf("checkpoint: closing %s: %w", path, cerr)
			}
		}
	}
	return nil
}

// Load walks a checkpoint tree previously written by Write and inserts
// every (index, field) array it finds into db.
func Load(db *patchdb.Database, dir string) error {
	patchDirs, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("checkpoint: reading %s: %w", dir, err)
	}
	for _, pd := range patchDirs {
		if !pd.IsDir() {
			continue
		}
		idx, err := parsePatchDirName(pd.Name())
		if err != nil {
			continue // config/status are files, not dirs; any other dir is unexpected but not fatal here
		}
		patchDir := filepath.Join(dir, pd.Name())
		fieldFiles, err := os.ReadDir(patchDir)
		if err != nil {
			return fmt.Errorf("checkpoint: reading %s: %w", patchDir, err)
		}
		for _, ff := range fieldFiles {
			field, ok := parseFieldName(ff.Name())
			if !ok {
				continue
			}
			path := filepath.Join(patchDir, ff.Name())
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("checkpoint: opening %s: %w", path, err)
			}
			arr, err := ndarray.ReadArray(f)
			cerr := f.Close()
			if err != nil {
				return fmt.Errorf("checkpoint: reading %s: %w", path, err)
			}
			if cerr != nil {
				return fmt.Errorf("checkpoint: closing %s: %w", path, cerr)
			}
			db.Insert(idx, field, arr)
		}
	}
	return nil
}

func patchDirName(idx patchdb.Index) string {
	return fmt.Sprintf("%d.%d.%d", idx.I, idx.J, idx.K)
}

func parsePatchDirName(name string) (patchdb.Index, error) {
	parts := strings.Split(name, ".")
	if len(parts) != 3 {
		return patchdb.Index{}, fmt.Errorf("checkpoint: not a patch directory: %q", name)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return patchdb.Index{}, fmt.Errorf("checkpoint: not a patch directory: %q", name)
		}
		nums[i] = n
	}
	return patchdb.Index{I: nums[0], J: nums[1], K: nums[2]}, nil
}

func parseFieldName(name string) (patchdb.Field, bool) {
	for _, f := range fields {
		if f.String() == name {
			return f, true
		}
	}
	return 0, false
}
