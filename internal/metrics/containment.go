package metrics

import (
	"github.com/san-kum/rigidsim/internal/physics"
)

// Containment is the fraction of observations in which every body centroid lay
// inside the bounds.
type Containment struct {
	name       string
	bounds     physics.Bounds
	violations int
	samples    int
}

func NewContainment(bounds physics.Bounds) *Containment {
	return &Containment{
		name:   "containment",
		bounds: bounds,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(s *physics.Scene, t float64) {
	c.samples++
	for i := 0; i < s.BodyCount(); i++ {
		if !c.bounds.Contains(s.BodyAt(i).Centroid()) {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
