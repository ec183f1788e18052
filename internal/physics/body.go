package physics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/geom"
)

// InfiniteMass marks an anchor: a body that never moves under force or impulse.
var InfiniteMass = math.Inf(1)

// Body is a rigid polygon constrained to the plane. Forces and impulses
// accumulate during a tick and are consumed by Tick. Angular dynamics are not
// simulated; orientation only changes through SetRotation.
type Body struct {
	shape        []geom.Vector
	centroid     geom.Vector
	velocity     geom.Vector
	acceleration geom.Vector
	force        geom.Vector
	impulse      geom.Vector
	elasticity   geom.Vector
	mass         float64
	angle        float64
	color        Color
	owned        bool
}

// NewBody creates a body at rest from shape. The shape is copied and a
// clockwise shape is rewound counterclockwise. It panics if the shape has fewer
// than 3 vertices, if it is degenerate (see geom.IsDegenerate), or if mass is
// not positive (InfiniteMass is allowed).
func NewBody(shape []geom.Vector, mass float64, color Color) *Body {
	if len(shape) < 3 {
		fail(ErrTooFewVertices, "got %d", len(shape))
	}
	if geom.IsDegenerate(shape) {
		fail(ErrDegeneratePolygon, "area %g", geom.Area(shape))
	}
	checkMass(mass)

	pts := make([]geom.Vector, len(shape))
	copy(pts, shape)
	if !geom.IsCounterClockwise(pts) {
		geom.Reverse(pts)
	}
	return &Body{
		shape:    pts,
		centroid: geom.Centroid(pts),
		mass:     mass,
		color:    color,
	}
}

func checkMass(mass float64) {
	if !(mass > 0) {
		fail(ErrInvalidMass, "got %v", mass)
	}
}

// Shape returns a copy of the current vertices.
func (b *Body) Shape() []geom.Vector {
	out := make([]geom.Vector, len(b.shape))
	copy(out, b.shape)
	return out
}

// Vertices returns the live vertex slice for read-only iteration (rendering,
// bounds checks). Callers must not modify it.
func (b *Body) Vertices() []geom.Vector { return b.shape }

func (b *Body) Centroid() geom.Vector     { return b.centroid }
func (b *Body) Velocity() geom.Vector     { return b.velocity }
func (b *Body) Acceleration() geom.Vector { return b.acceleration }
func (b *Body) Elasticity() geom.Vector   { return b.elasticity }
func (b *Body) Force() geom.Vector        { return b.force }
func (b *Body) Impulse() geom.Vector      { return b.impulse }
func (b *Body) Mass() float64             { return b.mass }
func (b *Body) Angle() float64            { return b.angle }
func (b *Body) Color() Color              { return b.color }

// IsAnchor reports whether the body has infinite mass.
func (b *Body) IsAnchor() bool { return math.IsInf(b.mass, 1) }

// Area recomputes the shoelace area of the current shape.
func (b *Body) Area() float64 { return geom.Area(b.shape) }

func (b *Body) SetVelocity(v geom.Vector)     { b.velocity = v }
func (b *Body) SetAcceleration(a geom.Vector) { b.acceleration = a }
func (b *Body) SetElasticity(e geom.Vector)   { b.elasticity = e }
func (b *Body) SetColor(c Color)              { b.color = c }

// SetMass replaces the mass. It panics if mass is not positive.
func (b *Body) SetMass(mass float64) {
	checkMass(mass)
	b.mass = mass
}

// Translate moves the body (centroid and every vertex) by d.
func (b *Body) Translate(d geom.Vector) {
	b.centroid = b.centroid.Add(d)
	geom.Translate(b.shape, d)
}

// SetCentroid moves the body so that its centroid is exactly p.
func (b *Body) SetCentroid(p geom.Vector) {
	d := p.Sub(b.centroid)
	geom.Translate(b.shape, d)
	b.centroid = p
}

// SetRotation turns the body about its centroid to the absolute angle
// (radians, counterclockwise positive). Only the difference from the stored
// angle is applied.
func (b *Body) SetRotation(angle float64) {
	delta := angle - b.angle
	if delta == 0 {
		return
	}
	geom.RotateAbout(b.shape, delta, b.centroid)
	b.angle = angle
}

// AddForce accumulates a force for the current tick.
func (b *Body) AddForce(f geom.Vector) { b.force = b.force.Add(f) }

// AddImpulse accumulates an instantaneous change of momentum for the current tick.
func (b *Body) AddImpulse(j geom.Vector) { b.impulse = b.impulse.Add(j) }

// SetForce overwrites the force accumulated so far this tick.
func (b *Body) SetForce(f geom.Vector) { b.force = f }

// SetImpulse overwrites the impulse accumulated so far this tick.
func (b *Body) SetImpulse(j geom.Vector) { b.impulse = j }

func (b *Body) resetAccumulators() {
	b.force = geom.Zero
	b.impulse = geom.Zero
}

// Tick integrates the accumulated force and impulse over dt. The body moves by
// the average of its velocities before and after the step, then both
// accumulators are cleared. Anchors only have their accumulators cleared.
func (b *Body) Tick(dt float64) {
	if b.IsAnchor() {
		b.resetAccumulators()
		return
	}
	vOld := b.velocity
	acc := b.force.Div(b.mass)
	vNew := vOld.Add(acc.Scale(dt)).Add(b.impulse.Div(b.mass))
	vAvg := vOld.Add(vNew).Scale(0.5)

	b.Translate(vAvg.Scale(dt))
	b.velocity = vNew
	b.resetAccumulators()
}

// TickNoForces advances the body kinematically from its own velocity and
// acceleration fields, ignoring the accumulators. Anchors stay put.
func (b *Body) TickNoForces(dt float64) {
	if b.IsAnchor() {
		return
	}
	d := b.velocity.Scale(dt).Add(b.acceleration.Scale(0.5 * dt * dt))
	b.Translate(d)
	b.velocity = b.velocity.Add(b.acceleration.Scale(dt))
}

// KineticEnergy is ½mv²; anchors contribute nothing.
func (b *Body) KineticEnergy() float64 {
	if b.IsAnchor() {
		return 0
	}
	return 0.5 * b.mass * b.velocity.Dot(b.velocity)
}

// Momentum is m·v; anchors contribute nothing.
func (b *Body) Momentum() geom.Vector {
	if b.IsAnchor() {
		return geom.Zero
	}
	return b.velocity.Scale(b.mass)
}
