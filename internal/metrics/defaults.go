package metrics

import (
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/sim"
)

// ForConfig picks the metrics worth reporting for a scene built from cfg.
// Every scene gets energy and momentum drift. Walls add containment, the first
// pairwise force adds separation and the first drag adds its decay rate.
// Bodies are looked up by position, matching the order Build adds them in.
func ForConfig(cfg *config.Config, s *physics.Scene) []sim.Metric {
	ms := []sim.Metric{NewEnergyDrift(), NewMomentumDrift()}
	if bb, ok := cfg.PhysicsBounds(); ok {
		ms = append(ms, NewContainment(bb))
	}

	index := make(map[string]int, len(cfg.Bodies))
	for i, bc := range cfg.Bodies {
		index[bc.Name] = i
	}
	id := func(name string) (physics.BodyID, bool) {
		i, ok := index[name]
		if !ok || i >= s.BodyCount() {
			return 0, false
		}
		return s.IDAt(i), true
	}

	var pair, drag bool
	for _, fc := range cfg.Forces {
		switch fc.Kind {
		case "gravity", "spring":
			if pair || len(fc.Bodies) != 2 {
				continue
			}
			a, okA := id(fc.Bodies[0])
			b, okB := id(fc.Bodies[1])
			if okA && okB {
				ms = append(ms, NewSeparation(a, b))
				pair = true
			}
		case "drag":
			if drag || len(fc.Bodies) != 1 {
				continue
			}
			if b, ok := id(fc.Bodies[0]); ok {
				ms = append(ms, NewSpeedDecay(b))
				drag = true
			}
		}
	}
	return ms
}
