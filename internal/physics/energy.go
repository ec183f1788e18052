package physics

import "github.com/san-kum/rigidsim/internal/geom"

// KineticEnergy sums ½mv² over the finite-mass bodies.
func (s *Scene) KineticEnergy() float64 {
	ke := 0.0
	for _, b := range s.bodies {
		ke += b.KineticEnergy()
	}
	return ke
}

// PotentialEnergy sums the potentials of every conservative generator.
func (s *Scene) PotentialEnergy() float64 {
	pe := 0.0
	for _, f := range s.forces {
		if p, ok := f.(Potential); ok {
			pe += p.Potential(s)
		}
	}
	return pe
}

// Energy is kinetic plus potential energy. Drag and closure generators carry
// no potential, so it is only conserved for scenes built from gravity, springs
// and uniform fields.
func (s *Scene) Energy() float64 {
	return s.KineticEnergy() + s.PotentialEnergy()
}

// Momentum sums m·v over the finite-mass bodies.
func (s *Scene) Momentum() geom.Vector {
	p := geom.Zero
	for _, b := range s.bodies {
		p = p.Add(b.Momentum())
	}
	return p
}
