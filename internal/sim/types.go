package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
)

// BodyState is the observable state of one body at one instant.
type BodyState struct {
	X, Y   float64
	VX, VY float64
	Angle  float64
}

func (b BodyState) IsValid() bool {
	for _, v := range [...]float64{b.X, b.Y, b.VX, b.VY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Snapshot holds one BodyState per body, in scene order.
type Snapshot []BodyState

// Capture records the current state of every body in s.
func Capture(s *physics.Scene) Snapshot {
	return CaptureInto(make(Snapshot, s.BodyCount()), s)
}

// CaptureInto fills dst, which must have one slot per body.
func CaptureInto(dst Snapshot, s *physics.Scene) Snapshot {
	for i := range dst {
		b := s.BodyAt(i)
		c, v := b.Centroid(), b.Velocity()
		dst[i] = BodyState{X: c.X, Y: c.Y, VX: v.X, VY: v.Y, Angle: b.Angle()}
	}
	return dst
}

func (s Snapshot) Clone() Snapshot {
	c := make(Snapshot, len(s))
	copy(c, s)
	return c
}

func (s Snapshot) IsValid() bool {
	for _, b := range s {
		if !b.IsValid() {
			return false
		}
	}
	return true
}

// Driver acts on the scene right before each tick: spinning bodies, bouncing
// them off walls, applying user input.
type Driver interface {
	Drive(s *physics.Scene, t, dt float64)
}

// DriverFunc adapts a plain function to Driver.
type DriverFunc func(s *physics.Scene, t, dt float64)

func (f DriverFunc) Drive(s *physics.Scene, t, dt float64) { f(s, t, dt) }

type Metric interface {
	Name() string
	Observe(s *physics.Scene, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s *physics.Scene, t float64)
}

type Config struct {
	Dt       float64
	Duration float64
	// SampleEvery keeps one snapshot every N steps. The final step is
	// always kept.
	SampleEvery int
	// Kinematic advances bodies with Scene.TickNoForces.
	Kinematic     bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.001,
		Duration:      10.0,
		SampleEvery:   10,
		ValidateState: true,
	}
}

// Steps is the number of ticks a run of cfg takes.
func (c Config) Steps() int {
	return int(c.Duration/c.Dt + 1e-9)
}

type Result struct {
	Times       []float64
	Samples     []Snapshot
	Energies    []float64
	Momenta     []geom.Vector
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

// Final returns the last recorded snapshot, or nil for an empty result.
func (r *Result) Final() Snapshot {
	if len(r.Samples) == 0 {
		return nil
	}
	return r.Samples[len(r.Samples)-1]
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return ErrInvalidState }
