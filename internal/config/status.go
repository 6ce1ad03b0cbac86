package config

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
)

// Status is the mutable run-progress record persisted alongside every
// checkpoint: simulation time, wall-clock seconds spent advancing, iteration
// count, and the scheduler's next-count counters for VTK/checkpoint output.
type Status struct {
	RunID      string  `json:"run_id"`
	Time       float64 `json:"time"`
	Wall       float64 `json:"wall"`
	Iter       int     `json:"iter"`
	VTKCount   int     `json:"vtk_count"`
	ChkptCount int     `json:"chkpt_count"`
}

// NewStatus returns a fresh status at t=0, stamped with a new run
// identifier.
func NewStatus() Status {
	return Status{RunID: uuid.NewString()}
}

// Save writes sts as JSON to path.
func (s Status) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadStatus reads a Status previously written by Save. If path does not
// exist, it returns a fresh Status.
func LoadStatus(path string) (Status, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewStatus(), nil
	}
	if err != nil {
		return Status{}, err
	}
	var sts Status
	if err := json.Unmarshal(data, &sts); err != nil {
		return Status{}, err
	}
	return sts, nil
}
