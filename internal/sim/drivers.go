package sim

import "github.com/san-kum/rigidsim/internal/physics"

// Spin turns bodies to the absolute angle Omega·t before each tick. With no
// Bodies listed every finite-mass body spins.
type Spin struct {
	Omega  float64
	Bodies []physics.BodyID
}

func (sp *Spin) Drive(s *physics.Scene, t, dt float64) {
	angle := sp.Omega * t
	if len(sp.Bodies) == 0 {
		for i := 0; i < s.BodyCount(); i++ {
			if b := s.BodyAt(i); !b.IsAnchor() {
				b.SetRotation(angle)
			}
		}
		return
	}
	for _, id := range sp.Bodies {
		if b, ok := s.Body(id); ok {
			b.SetRotation(angle)
		}
	}
}

// Bounce keeps bodies inside Bounds by reflecting their velocity.
type Bounce struct {
	Bounds physics.Bounds
	Hits   int
}

func (bo *Bounce) Drive(s *physics.Scene, t, dt float64) {
	for i := 0; i < s.BodyCount(); i++ {
		if bo.Bounds.Reflect(s.BodyAt(i)) {
			bo.Hits++
		}
	}
}
