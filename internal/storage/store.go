package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/rigidsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

// ErrRunNotFound indicates a run id with no run directory.
var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Preset      string             `json:"preset"`
	Mode        string             `json:"mode"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	SampleEvery int                `json:"sample_every"`
	Steps       int                `json:"steps"`
	Bodies      []string           `json:"bodies"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
	Errors      []string           `json:"errors,omitempty"`
}

// Save writes a run directory holding metadata.json and states.csv and
// returns the run id.
func (s *Store) Save(preset string, cfg sim.Config, bodies []string, result *sim.Result) (string, error) {
	now := s.now()
	runID, runDir, err := s.newRunDir(preset, now)
	if err != nil {
		return "", err
	}

	mode := "forces"
	if cfg.Kinematic {
		mode = "kinematic"
	}
	meta := RunMetadata{
		ID:          runID,
		Preset:      preset,
		Mode:        mode,
		Timestamp:   now,
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		SampleEvery: cfg.SampleEvery,
		Steps:       result.StepsTaken,
		Bodies:      bodies,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}
	for _, e := range result.Errors {
		meta.Errors = append(meta.Errors, e.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, TableFromResult(result)); err != nil {
		return "", fmt.Errorf("write states: %w", err)
	}
	return runID, csvFile.Close()
}

// newRunDir creates <preset>_<unix> and adds a counter on collision.
func (s *Store) newRunDir(preset string, now time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%d", preset, now.Unix())
	runID := base
	for i := 2; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
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

// List returns every readable run, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
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
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadStates(runID string) (*Table, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

// Latest returns the id of the most recent run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrRunNotFound
	}
	return runs[len(runs)-1].ID, nil
}

// Table is a run's sampled series: one row per sample, one column per name.
// Time is kept apart from the value columns.
type Table struct {
	Columns []string
	Times   []float64
	Rows    [][]float64
}

// TableFromResult lays out time, energy, px, py, then b<i>_x, b<i>_y,
// b<i>_vx, b<i>_vy for every body.
func TableFromResult(r *sim.Result) *Table {
	t := &Table{Columns: []string{"energy", "px", "py"}, Times: r.Times}
	if len(r.Samples) == 0 {
		return t
	}
	for i := range r.Samples[0] {
		t.Columns = append(t.Columns,
			fmt.Sprintf("b%d_x", i), fmt.Sprintf("b%d_y", i),
			fmt.Sprintf("b%d_vx", i), fmt.Sprintf("b%d_vy", i))
	}

	t.Rows = make([][]float64, len(r.Samples))
	for i, snap := range r.Samples {
		row := make([]float64, 0, len(t.Columns))
		row = append(row, r.Energies[i], r.Momenta[i].X, r.Momenta[i].Y)
		for _, b := range snap {
			row = append(row, b.X, b.Y, b.VX, b.VY)
		}
		t.Rows[i] = row
	}
	return t
}

// Column returns the named series.
func (t *Table) Column(name string) ([]float64, bool) {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out, true
}

// BodyCount infers the number of bodies from the column layout.
func (t *Table) BodyCount() int {
	if len(t.Columns) < 3 {
		return 0
	}
	return (len(t.Columns) - 3) / 4
}

func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	header := append([]string{"time"}, t.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for i, row := range t.Rows {
		record = record[:0]
		record = append(record, formatFloat(t.Times[i]))
		for _, val := range row {
			record = append(record, formatFloat(val))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	if len(records[0]) == 0 || records[0][0] != "time" {
		return nil, fmt.Errorf("states: first column must be time")
	}

	t := &Table{
		Columns: records[0][1:],
		Times:   make([]float64, 0, len(records)-1),
		Rows:    make([][]float64, 0, len(records)-1),
	}
	for i, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		tm, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("states line %d: %w", i+2, err)
		}

		row := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("states line %d: %w", i+2, err)
			}
			row = append(row, val)
		}
		t.Times = append(t.Times, tm)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
