package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/kapitza/internal/analysis"
	"github.com/san-kum/kapitza/internal/dynamo"
	"github.com/san-kum/kapitza/internal/integrators"
	"github.com/san-kum/kapitza/internal/physics"
	"github.com/san-kum/kapitza/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string              `json:"id"`
	Timestamp time.Time           `json:"timestamp"`
	Method    string              `json:"method"`
	Params    physics.Params      `json:"params"`
	Initial   []float64           `json:"initial"`
	Interval  dynamo.Interval     `json:"interval"`
	Options   integrators.Options `json:"options"`
	Steps     int                 `json:"steps"`
	Stats     dynamo.Stats        `json:"stats"`
	Metrics   map[string]float64  `json:"metrics"`
	Error     string              `json:"error,omitempty"`
}

// Run rebuilds the integration request that produced the stored run.
func (m *RunMetadata) Run() sim.Run {
	return sim.Run{
		Params:   m.Params,
		Initial:  dynamo.State(m.Initial),
		Interval: m.Interval,
		Method:   m.Method,
		Options:  m.Options,
	}
}

// Save writes the run's metadata and its native-grid trajectory to a new
// run directory and returns the run ID. runErr, if set, is recorded in the
// metadata; tr may then be the partial trajectory.
func (s *Store) Save(run sim.Run, tr *dynamo.Trajectory, metrics map[string]float64, runErr error) (string, error) {
	series, err := analysis.NativeSeries(run.Params, tr)
	if err != nil {
		return "", err
	}

	now := time.Now()
	runID := fmt.Sprintf("%s_%d", strings.ToLower(tr.Method), now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: now,
		Method:    tr.Method,
		Params:    run.Params,
		Initial:   run.Initial.Clone(),
		Interval:  run.Interval,
		Options:   run.Options,
		Steps:     tr.Len() - 1,
		Stats:     tr.Stats,
		Metrics:   metrics,
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, series); err != nil {
		return "", err
	}
	return runID, csvFile.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// List returns the metadata of every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSeries reads back the stored trajectory columns. Only the recorded
// quantities (time, angle, angular velocity, potential energy, bob
// position) are populated.
func (s *Store) LoadSeries(runID string) (*analysis.Series, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f)
}
