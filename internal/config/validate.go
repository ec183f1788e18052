package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/rigidsim/internal/geom"
)

// ValidationError lists every problem found in a config, one per field path.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) add(format string, args ...any) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, args...))
}

// Validate checks everything Build relies on. It returns a *ValidationError or nil.
func (c *Config) Validate() error {
	v := &ValidationError{}

	if !(c.Dt > 0) {
		v.add("dt: must be positive, got %g", c.Dt)
	}
	if !(c.Duration > 0) {
		v.add("duration: must be positive, got %g", c.Duration)
	}
	if c.SampleEvery < 0 {
		v.add("sample_every: must not be negative, got %d", c.SampleEvery)
	}
	switch c.Mode {
	case "", ModeForces, ModeKinematic:
	default:
		v.add("mode: unknown mode %q (want %s or %s)", c.Mode, ModeForces, ModeKinematic)
	}
	if c.Bounds != nil {
		if !(c.Bounds.Min[0] < c.Bounds.Max[0] && c.Bounds.Min[1] < c.Bounds.Max[1]) {
			v.add("bounds: min %v must lie below and left of max %v", c.Bounds.Min, c.Bounds.Max)
		}
	}

	if len(c.Bodies) == 0 {
		v.add("bodies: at least one body is required")
	}
	masses := make(map[string]Mass, len(c.Bodies))
	for i, b := range c.Bodies {
		path := fmt.Sprintf("bodies[%d]", i)
		if b.Name == "" {
			v.add("%s.name: required", path)
		} else if _, dup := masses[b.Name]; dup {
			v.add("%s.name: duplicate name %q", path, b.Name)
		}
		masses[b.Name] = b.Mass
		if !(b.Mass > 0) {
			v.add("%s.mass: must be positive or \"inf\", got %g", path, float64(b.Mass))
		}
		if b.Elasticity[0] < 0 || b.Elasticity[1] < 0 {
			v.add("%s.elasticity: must not be negative", path)
		}
		if b.Color != nil {
			for _, ch := range b.Color {
				if ch < 0 || ch > 1 {
					v.add("%s.color: components must lie in [0, 1]", path)
					break
				}
			}
		}
		validateShape(v, path+".shape", b)
	}

	for i, f := range c.Forces {
		validateForce(v, fmt.Sprintf("forces[%d]", i), f, masses)
	}

	if len(v.Issues) > 0 {
		return v
	}
	return nil
}

// validateShape checks the shape fields, then the vertices Build would hand to
// physics.NewBody.
func validateShape(v *ValidationError, path string, bc BodyConfig) {
	s := bc.Shape
	issues := len(v.Issues)
	positive := func(field string, x float64) {
		if !(x > 0) {
			v.add("%s.%s: must be positive, got %g", path, field, x)
		}
	}
	switch s.Kind {
	case "rect":
		positive("width", s.Width)
		positive("height", s.Height)
	case "regular":
		positive("radius", s.Radius)
		if s.Sides < 3 {
			v.add("%s.sides: need at least 3, got %d", path, s.Sides)
		}
	case "star":
		positive("radius", s.Radius)
		if s.Points < 2 {
			v.add("%s.points: need at least 2, got %d", path, s.Points)
		}
	case "circle":
		positive("radius", s.Radius)
	case "polygon":
		if len(s.Vertices) < 3 {
			v.add("%s.vertices: need at least 3, got %d", path, len(s.Vertices))
			return
		}
	case "":
		v.add("%s.kind: required", path)
	default:
		v.add("%s.kind: unknown shape %q", path, s.Kind)
	}

	if len(v.Issues) == issues && geom.IsDegenerate(buildShape(bc)) {
		v.add("%s: polygon has zero area", path)
	}
}

func validateForce(v *ValidationError, path string, f ForceConfig, masses map[string]Mass) {
	want := 0
	switch f.Kind {
	case "gravity", "spring":
		want = 2
	case "drag", "field":
		want = 1
	default:
		v.add("%s.kind: unknown force %q", path, f.Kind)
		return
	}

	if len(f.Bodies) != want {
		v.add("%s.bodies: %s takes %d bodies, got %d", path, f.Kind, want, len(f.Bodies))
		return
	}
	for j, name := range f.Bodies {
		if _, ok := masses[name]; !ok {
			v.add("%s.bodies[%d]: unknown body %q", path, j, name)
		}
	}
	if want == 2 && f.Bodies[0] == f.Bodies[1] {
		v.add("%s.bodies: a body cannot be bound to itself", path)
	}
	if f.Kind != "field" && (f.Constant < 0 || math.IsNaN(f.Constant)) {
		v.add("%s.constant: must not be negative, got %g", path, f.Constant)
	}
	if f.Kind == "gravity" {
		for _, name := range f.Bodies {
			if masses[name].IsInf() {
				v.add("%s.bodies: gravity on anchor %q would be infinite", path, name)
			}
		}
	}
}
