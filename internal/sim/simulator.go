package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/rigidsim/internal/physics"
)

type Simulator struct {
	drivers   []Driver
	metrics   []Metric
	observers []Observer
	log       *slog.Logger
}

func New(drivers ...Driver) *Simulator {
	return &Simulator{
		drivers:   drivers,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used for run diagnostics.
func (s *Simulator) WithLogger(l *slog.Logger) *Simulator {
	if l != nil {
		s.log = l
	}
	return s
}

func (s *Simulator) AddDriver(d Driver)     { s.drivers = append(s.drivers, d) }
func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances scene for cfg.Duration in steps of cfg.Dt. Cancellation is
// checked between ticks; the partial result is returned with ctx.Err().
func (s *Simulator) Run(ctx context.Context, scene *physics.Scene, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if scene.BodyCount() == 0 {
		return nil, ErrEmptyScene
	}

	steps := cfg.Steps()
	every := sampleStride(cfg)
	n := steps/every + 2
	result := &Result{
		Times:    make([]float64, 0, n),
		Samples:  make([]Snapshot, 0, n),
		Energies: make([]float64, 0, n),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	s.log.Debug("run started", "bodies", scene.BodyCount(), "forces", scene.ForceCount(),
		"dt", cfg.Dt, "steps", steps, "kinematic", cfg.Kinematic)

	record := func(t float64) {
		result.Times = append(result.Times, t)
		result.Samples = append(result.Samples, Capture(scene))
		result.Energies = append(result.Energies, scene.Energy())
		result.Momenta = append(result.Momenta, scene.Momentum())
	}

	t := 0.0
	record(t)
	initialEnergy := scene.Energy()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.log.Debug("run canceled", "step", i)
			return result, ctx.Err()
		default:
		}

		s.Step(scene, cfg, t)

		t = float64(i+1) * cfg.Dt

		if cfg.ValidateState && !validScene(scene) {
			err := SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"}
			result.Errors = append(result.Errors, err)
			s.log.Warn("run stopped", "err", err)
			break
		}

		result.StepsTaken++
		if result.StepsTaken%every == 0 || i == steps-1 {
			record(t)
		}
	}

	finalEnergy := scene.Energy()
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.Debug("run finished", "steps", result.StepsTaken, "samples", len(result.Samples),
		"energy_drift", result.EnergyDrift)
	return result, nil
}

// Step runs the drivers, metrics and observers against the pre-tick state at
// time t, then advances the scene by one cfg.Dt.
func (s *Simulator) Step(scene *physics.Scene, cfg Config, t float64) {
	for _, d := range s.drivers {
		d.Drive(scene, t, cfg.Dt)
	}
	for _, m := range s.metrics {
		m.Observe(scene, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(scene, t)
	}

	if cfg.Kinematic {
		scene.TickNoForces(cfg.Dt)
	} else {
		scene.Tick(cfg.Dt)
	}
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("%w: sample stride must not be negative, got %d", ErrInvalidConfig, cfg.SampleEvery)
	}
	return nil
}

func sampleStride(cfg Config) int {
	if cfg.SampleEvery < 1 {
		return 1
	}
	return cfg.SampleEvery
}

func validScene(scene *physics.Scene) bool {
	for i := 0; i < scene.BodyCount(); i++ {
		b := scene.BodyAt(i)
		if !b.Centroid().IsFinite() || !b.Velocity().IsFinite() {
			return false
		}
	}
	return true
}

// RunWithCallback steps scene until cfg.Duration, handing callback a snapshot
// before every tick. The snapshot is only valid during the call. Returning
// false stops the run.
func (s *Simulator) RunWithCallback(ctx context.Context, scene *physics.Scene, cfg Config, callback func(Snapshot, float64) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	pool := NewSnapshotPool(scene.BodyCount())
	steps := cfg.Steps()
	t := 0.0

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		snap := CaptureInto(pool.Get(), scene)
		keepGoing := callback(snap, t)
		pool.Put(snap)
		if !keepGoing {
			return nil
		}

		s.Step(scene, cfg, t)
		t = float64(i+1) * cfg.Dt

		if cfg.ValidateState && !validScene(scene) {
			return SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"}
		}
	}

	return nil
}
