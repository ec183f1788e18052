package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
)

func newBody(center geom.Vector, mass float64) *physics.Body {
	return physics.NewBody(geom.Rect(center, 2, 2), mass, physics.Black)
}

// springScene is two 10 kg bodies joined by a spring, swinging around each other.
func springScene() *physics.Scene {
	s := physics.NewScene()
	a := s.AddBody(newBody(geom.Zero, 10))
	b := s.AddBody(newBody(geom.Vec(10, 0), 10))
	s.BodyAt(0).SetVelocity(geom.Vec(0, -1))
	s.BodyAt(1).SetVelocity(geom.Vec(0, 1))
	s.AddSpring(10, a, b)
	return s
}

func TestSimulatorRun(t *testing.T) {
	sim := New()
	cfg := Config{Dt: 0.1, Duration: 1.0, SampleEvery: 1}

	result, err := sim.Run(context.Background(), springScene(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if len(result.Samples) != 11 {
		t.Errorf("expected 11 samples, got %d", len(result.Samples))
	}
	if len(result.Times) != 11 || len(result.Energies) != 11 || len(result.Momenta) != 11 {
		t.Errorf("series lengths differ: times %d energies %d momenta %d",
			len(result.Times), len(result.Energies), len(result.Momenta))
	}
	if last := result.Times[len(result.Times)-1]; math.Abs(last-1.0) > 1e-12 {
		t.Errorf("expected final time 1.0, got %v", last)
	}
	for i, p := range result.Momenta {
		if p.Len() > 1e-9 {
			t.Errorf("momentum at sample %d = %v, want zero", i, p)
		}
	}
}

func TestSimulatorSampleStride(t *testing.T) {
	tests := []struct {
		name    string
		every   int
		steps   float64
		samples int
	}{
		{"every step", 1, 100, 101},
		{"every ten", 10, 100, 11},
		{"uneven keeps final", 30, 100, 5},
		{"zero means every step", 0, 20, 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Dt: 0.01, Duration: tt.steps * 0.01, SampleEvery: tt.every}
			result, err := New().Run(context.Background(), springScene(), cfg)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if len(result.Samples) != tt.samples {
				t.Errorf("expected %d samples, got %d", tt.samples, len(result.Samples))
			}
		})
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"NaN dt", Config{Dt: math.NaN(), Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"negative stride", Config{Dt: 0.1, Duration: 1.0, SampleEvery: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), springScene(), tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorEmptyScene(t *testing.T) {
	_, err := New().Run(context.Background(), physics.NewScene(), DefaultConfig())
	if !errors.Is(err, ErrEmptyScene) {
		t.Errorf("expected ErrEmptyScene, got %v", err)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New().Run(ctx, springScene(), Config{Dt: 0.01, Duration: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 || len(result.Samples) != 1 {
		t.Errorf("expected only the initial sample, got %+v", result)
	}
}

func TestSimulatorInvalidState(t *testing.T) {
	s := physics.NewScene()
	id := s.AddBody(newBody(geom.Zero, 1))
	s.AddForceFunc(func(s *physics.Scene) {
		b, _ := s.Body(id)
		b.AddForce(geom.Vec(math.Inf(1), 0))
	}, nil, id)

	result, err := New().Run(context.Background(), s, Config{Dt: 0.1, Duration: 1, ValidateState: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	var simErr SimError
	if !errors.As(result.Errors[0], &simErr) || simErr.Step != 0 {
		t.Errorf("expected SimError at step 0, got %v", result.Errors[0])
	}
	if !errors.Is(result.Errors[0], ErrInvalidState) {
		t.Error("SimError does not unwrap to ErrInvalidState")
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected the run to stop, took %d steps", result.StepsTaken)
	}
}

func TestSimulatorKinematic(t *testing.T) {
	s := physics.NewScene()
	id := s.AddBody(newBody(geom.Zero, 1))
	s.BodyAt(0).SetAcceleration(geom.Vec(0, -2))
	s.AddDrag(100, id)

	result, err := New().Run(context.Background(), s, Config{Dt: 0.5, Duration: 1, Kinematic: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	final := result.Final()[0]
	if math.Abs(final.Y+1) > 1e-12 || math.Abs(final.VY+2) > 1e-12 {
		t.Errorf("expected y=-1 vy=-2 ignoring drag, got %+v", final)
	}
}

type countingMetric struct {
	count int
}

func (c *countingMetric) Name() string                    { return "count" }
func (c *countingMetric) Observe(*physics.Scene, float64) { c.count++ }
func (c *countingMetric) Value() float64                  { return float64(c.count) }
func (c *countingMetric) Reset()                          { c.count = 0 }

func TestSimulatorMetrics(t *testing.T) {
	sim := New()
	metric := &countingMetric{}
	sim.AddMetric(metric)

	cfg := Config{Dt: 0.1, Duration: 1.0}
	result, err := sim.Run(context.Background(), springScene(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if got, ok := result.Metrics["count"]; !ok || got != 10 {
		t.Errorf("expected count metric 10, got %v (present %v)", got, ok)
	}

	// a second run starts from a reset metric
	if _, err := sim.Run(context.Background(), springScene(), cfg); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations after reset, got %d", metric.count)
	}
}

func TestSimulatorDriversRunBeforeTick(t *testing.T) {
	var times []float64
	d := DriverFunc(func(s *physics.Scene, t, dt float64) {
		times = append(times, t)
		s.BodyAt(0).AddImpulse(geom.Vec(1, 0))
	})

	s := physics.NewScene()
	s.AddBody(newBody(geom.Zero, 1))
	if _, err := New(d).Run(context.Background(), s, Config{Dt: 0.25, Duration: 1}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []float64{0, 0.25, 0.5, 0.75}
	if len(times) != len(want) {
		t.Fatalf("driver ran %d times, want %d", len(times), len(want))
	}
	for i := range want {
		if math.Abs(times[i]-want[i]) > 1e-12 {
			t.Errorf("driver call %d at t=%v, want %v", i, times[i], want[i])
		}
	}
	if v := s.BodyAt(0).Velocity(); v != geom.Vec(4, 0) {
		t.Errorf("expected four unit impulses, velocity %v", v)
	}
}

func TestRunWithCallback(t *testing.T) {
	calls := 0
	err := New().RunWithCallback(context.Background(), springScene(), Config{Dt: 0.1, Duration: 1},
		func(snap Snapshot, t float64) bool {
			calls++
			if len(snap) != 2 {
				t.Errorf("snapshot has %d bodies", len(snap))
			}
			return calls < 3
		})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected the callback to stop the run after 3 calls, got %d", calls)
	}
}

func TestSpinDriver(t *testing.T) {
	s := physics.NewScene()
	s.AddBody(newBody(geom.Zero, 1))
	s.AddBody(newBody(geom.Vec(5, 5), physics.InfiniteMass))

	spin := &Spin{Omega: 2}
	spin.Drive(s, 0.5, 0.01)

	if got := s.BodyAt(0).Angle(); got != 1 {
		t.Errorf("expected angle 1, got %v", got)
	}
	if got := s.BodyAt(1).Angle(); got != 0 {
		t.Errorf("anchor should not spin, angle %v", got)
	}
}

func TestBounceDriver(t *testing.T) {
	s := physics.NewScene()
	s.AddBody(newBody(geom.Vec(0, -9.5), 1))
	b := s.BodyAt(0)
	b.SetVelocity(geom.Vec(0, -3))
	b.SetElasticity(geom.Vec(1, 1))

	bounce := &Bounce{Bounds: physics.Bounds{Min: geom.Vec(-10, -10), Max: geom.Vec(10, 10)}}
	bounce.Drive(s, 0, 0.01)

	if b.Velocity() != geom.Vec(0, 3) {
		t.Errorf("expected reflected velocity, got %v", b.Velocity())
	}
	if bounce.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", bounce.Hits)
	}
}
