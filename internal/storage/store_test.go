package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Times: []float64{0, 0.01},
		Samples: []sim.Snapshot{
			{{X: 1, Y: 0, VX: 0, VY: 2}, {X: -1, Y: 0, VX: 0, VY: -2}},
			{{X: 0.9, Y: 0.02, VX: -0.1, VY: 2}, {X: -0.9, Y: -0.02, VX: 0.1, VY: -2}},
		},
		Energies:    []float64{5, 5.0000001},
		Momenta:     []geom.Vector{geom.Zero, geom.Vec(1e-12, 0)},
		Metrics:     map[string]float64{"energy_drift": 2e-8},
		EnergyDrift: 2e-8,
		StepsTaken:  1,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := sim.Config{Dt: 0.01, Duration: 0.01, SampleEvery: 1}
	runID, err := st.Save("binary", cfg, []string{"a", "b"}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "binary_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Preset != "binary" || meta.Mode != "forces" || meta.Steps != 1 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if len(meta.Bodies) != 2 || meta.Metrics["energy_drift"] != 2e-8 {
		t.Errorf("unexpected bodies or metrics: %+v", meta)
	}

	table, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(table.Rows) != 2 || len(table.Times) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	want := []string{"energy", "px", "py", "b0_x", "b0_y", "b0_vx", "b0_vy", "b1_x", "b1_y", "b1_vx", "b1_vy"}
	if strings.Join(table.Columns, ",") != strings.Join(want, ",") {
		t.Errorf("columns %v, want %v", table.Columns, want)
	}
	if table.BodyCount() != 2 {
		t.Errorf("expected 2 bodies, got %d", table.BodyCount())
	}

	energy, ok := table.Column("energy")
	if !ok || energy[1] != 5.0000001 {
		t.Errorf("energy column did not round-trip exactly: %v", energy)
	}
	px, _ := table.Column("px")
	if px[1] != 1e-12 {
		t.Errorf("px column did not round-trip exactly: %v", px)
	}
	if _, ok := table.Column("missing"); ok {
		t.Error("expected missing column to be reported")
	}
}

func TestStoreSaveSameSecond(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	fixed := time.Unix(1700000000, 0)
	st.now = func() time.Time { return fixed }

	cfg := sim.Config{Dt: 0.01, Duration: 0.01}
	first, err := st.Save("orbit", cfg, []string{"a", "b"}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save("orbit", cfg, []string{"a", "b"}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if first == second {
		t.Errorf("two runs share id %q", first)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	clock := time.Unix(1700000000, 0)
	st.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	cfg := sim.Config{Dt: 0.01, Duration: 0.01}
	for _, name := range []string{"orbit", "drag"} {
		if _, err := st.Save(name, cfg, []string{"a", "b"}, testResult()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	// stray entries are skipped
	os.Mkdir(filepath.Join(st.baseDir, "junk"), 0755)
	os.WriteFile(filepath.Join(st.baseDir, "notes.txt"), []byte("x"), 0644)

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Preset != "orbit" || runs[1].Preset != "drag" {
		t.Errorf("runs not in time order: %s, %s", runs[0].Preset, runs[1].Preset)
	}

	latest, err := st.Latest()
	if err != nil || latest != runs[1].ID {
		t.Errorf("Latest() = %q, %v; want %q", latest, err, runs[1].ID)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
	if _, err := st.Latest(); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("ghost_1"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadStates("ghost_1"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no time column", "energy,px\n1,2\n"},
		{"bad number", "time,energy\n0,abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.data)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestExportJSON(t *testing.T) {
	meta := &RunMetadata{ID: "drag_1", Preset: "drag", Dt: 0.01}
	table := TableFromResult(testResult())

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, table); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if got.Run.ID != "drag_1" || got.Steps != 2 {
		t.Errorf("unexpected export header %+v", got.Run)
	}
	if xs := got.Series["b1_vy"]; len(xs) != 2 || xs[0] != -2 {
		t.Errorf("unexpected b1_vy series %v", xs)
	}
}
