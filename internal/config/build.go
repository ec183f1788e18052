package config

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/sim"
)

// Build validates the config and constructs its scene and drivers. Bodies are
// added in file order, forces in file order after all bodies.
func (c *Config) Build() (*physics.Scene, []sim.Driver, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	scene := physics.NewScene()
	ids := make(map[string]physics.BodyID, len(c.Bodies))
	for i, bc := range c.Bodies {
		b := physics.NewBody(buildShape(bc), float64(bc.Mass), bodyColor(bc, i))
		b.SetVelocity(toVec(bc.Velocity))
		b.SetAcceleration(toVec(bc.Acceleration))
		b.SetElasticity(toVec(bc.Elasticity))
		b.SetRotation(bc.Rotation)
		ids[bc.Name] = scene.AddBody(b)
	}

	for _, fc := range c.Forces {
		switch fc.Kind {
		case "gravity":
			scene.AddGravity(fc.Constant, ids[fc.Bodies[0]], ids[fc.Bodies[1]])
		case "spring":
			scene.AddSpring(fc.Constant, ids[fc.Bodies[0]], ids[fc.Bodies[1]])
		case "drag":
			scene.AddDrag(fc.Constant, ids[fc.Bodies[0]])
		case "field":
			scene.AddUniformField(toVec(fc.Field), ids[fc.Bodies[0]])
		}
	}

	var drivers []sim.Driver
	if c.Spin != 0 {
		drivers = append(drivers, &sim.Spin{Omega: c.Spin})
	}
	if bb, ok := c.PhysicsBounds(); ok {
		drivers = append(drivers, &sim.Bounce{Bounds: bb})
	}
	return scene, drivers, nil
}

// PhysicsBounds converts the optional walls.
func (c *Config) PhysicsBounds() (physics.Bounds, bool) {
	if c.Bounds == nil {
		return physics.Bounds{}, false
	}
	return physics.Bounds{Min: toVec(c.Bounds.Min), Max: toVec(c.Bounds.Max)}, true
}

func buildShape(bc BodyConfig) []geom.Vector {
	s := bc.Shape
	center := toVec(bc.Position)
	switch s.Kind {
	case "rect":
		return geom.Rect(center, s.Width, s.Height)
	case "regular":
		return geom.RegularPolygon(s.Sides, s.Radius, center)
	case "star":
		return geom.Star(s.Points, s.Radius, center)
	case "circle":
		return geom.Circle(center, s.Radius, s.Segments)
	}

	// polygon vertices are relative to position
	pts := polygonPoints(s.Vertices)
	geom.Translate(pts, center)
	return pts
}

func polygonPoints(vs []Vec2) []geom.Vector {
	pts := make([]geom.Vector, len(vs))
	for i, v := range vs {
		pts[i] = toVec(v)
	}
	return pts
}

func toVec(v Vec2) geom.Vector { return geom.Vec(v[0], v[1]) }

func bodyColor(bc BodyConfig, i int) physics.Color {
	if bc.Color != nil {
		return physics.Color{R: bc.Color[0], G: bc.Color[1], B: bc.Color[2]}
	}
	return Palette(i)
}

// Palette is the default color of the i-th body, a golden-angle hue walk so
// neighbouring bodies stay distinct.
func Palette(i int) physics.Color {
	hue := math.Mod(float64(i)*137.508, 360)
	c := colorful.Hsv(hue, 0.65, 0.95).Clamped()
	return physics.Color{R: c.R, G: c.G, B: c.B}
}
