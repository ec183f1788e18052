package metrics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/physics"
)

// Separation tracks the centroid distance between two bodies. Value is the
// width of the observed band relative to the first distance, so a circular
// orbit scores near zero.
type Separation struct {
	name     string
	a, b     physics.BodyID
	initial  float64
	min, max float64
	samples  int
}

func NewSeparation(a, b physics.BodyID) *Separation {
	return &Separation{name: "separation_band", a: a, b: b}
}

func (s *Separation) Name() string { return s.name }

func (s *Separation) Observe(scene *physics.Scene, t float64) {
	ba, okA := scene.Body(s.a)
	bb, okB := scene.Body(s.b)
	if !okA || !okB {
		return
	}
	d := ba.Centroid().Distance(bb.Centroid())
	if s.samples == 0 {
		s.initial, s.min, s.max = d, d, d
	}
	s.samples++
	s.min = math.Min(s.min, d)
	s.max = math.Max(s.max, d)
}

func (s *Separation) Min() float64 { return s.min }
func (s *Separation) Max() float64 { return s.max }

func (s *Separation) Value() float64 {
	if s.samples == 0 || s.initial == 0 {
		return 0
	}
	return (s.max - s.min) / s.initial
}

func (s *Separation) Reset() {
	s.initial, s.min, s.max = 0, 0, 0
	s.samples = 0
}
