package metrics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/physics"
)

// SpeedDecay fits the exponential decay rate of one body's speed: with
// v(t) = v0·e^{-kt} it reports k. Under linear drag k equals γ/m.
type SpeedDecay struct {
	name       string
	body       physics.BodyID
	v0, t0     float64
	last, tEnd float64
	samples    int
}

func NewSpeedDecay(body physics.BodyID) *SpeedDecay {
	return &SpeedDecay{name: "speed_decay", body: body}
}

func (d *SpeedDecay) Name() string { return d.name }

func (d *SpeedDecay) Observe(s *physics.Scene, t float64) {
	b, ok := s.Body(d.body)
	if !ok {
		return
	}
	v := b.Velocity().Len()
	if d.samples == 0 {
		d.v0, d.t0 = v, t
	}
	d.samples++
	d.last, d.tEnd = v, t
}

func (d *SpeedDecay) Value() float64 {
	if d.samples < 2 || d.v0 == 0 || d.last == 0 || d.tEnd == d.t0 {
		return 0
	}
	return math.Log(d.v0/d.last) / (d.tEnd - d.t0)
}

func (d *SpeedDecay) Reset() {
	d.v0, d.t0, d.last, d.tEnd = 0, 0, 0, 0
	d.samples = 0
}
