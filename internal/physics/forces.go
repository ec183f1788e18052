package physics

import "github.com/san-kum/rigidsim/internal/geom"

// Closeness is the centroid separation below which gravity is not applied.
const Closeness = 6.0

// ForceGenerator adds force to bodies of a scene. Apply is called once per
// Scene.Tick, before any body integrates, and must only accumulate.
type ForceGenerator interface {
	Apply(s *Scene)
}

// Releaser is implemented by generators holding state that must be released
// when they are removed from a scene.
type Releaser interface {
	Release()
}

// Potential is implemented by conservative generators.
type Potential interface {
	Potential(s *Scene) float64
}

// BodyReferrer lets the scene drop generators bound to a removed body.
type BodyReferrer interface {
	References(id BodyID) bool
}

// Gravity is Newtonian attraction between two bodies.
type Gravity struct {
	G    float64
	A, B BodyID
}

func (g *Gravity) Apply(s *Scene) {
	a, b := s.mustBody(g.A), s.mustBody(g.B)
	r := a.Centroid().Distance(b.Centroid())
	if r < Closeness {
		return
	}
	applyAttraction(a, b, g.G*a.Mass()*b.Mass()/(r*r))
}

// Potential is -G·m1·m2/r.
func (g *Gravity) Potential(s *Scene) float64 {
	a, b := s.mustBody(g.A), s.mustBody(g.B)
	r := a.Centroid().Distance(b.Centroid())
	return -g.G * a.Mass() * b.Mass() / r
}

func (g *Gravity) References(id BodyID) bool { return g.A == id || g.B == id }

// Spring is a Hookean spring of zero rest length joining two centroids.
type Spring struct {
	K    float64
	A, B BodyID
}

func (sp *Spring) Apply(s *Scene) {
	a, b := s.mustBody(sp.A), s.mustBody(sp.B)
	r := a.Centroid().Distance(b.Centroid())
	applyAttraction(a, b, sp.K*r)
}

// Potential is ½·k·r².
func (sp *Spring) Potential(s *Scene) float64 {
	a, b := s.mustBody(sp.A), s.mustBody(sp.B)
	d := b.Centroid().Sub(a.Centroid())
	return 0.5 * sp.K * d.Dot(d)
}

func (sp *Spring) References(id BodyID) bool { return sp.A == id || sp.B == id }

// Drag is linear drag opposing the body's velocity.
type Drag struct {
	Gamma float64
	Body  BodyID
}

func (d *Drag) Apply(s *Scene) {
	b := s.mustBody(d.Body)
	b.AddForce(b.Velocity().Scale(-d.Gamma))
}

func (d *Drag) References(id BodyID) bool { return d.Body == id }

// applyAttraction pulls a and b toward each other with equal and opposite
// forces of the given magnitude.
func applyAttraction(a, b *Body, magnitude float64) {
	dir := b.Centroid().Sub(a.Centroid()).Unit()
	a.AddForce(dir.Scale(magnitude))
	b.AddForce(dir.Neg().Scale(magnitude))
}

// ForceFunc adapts a closure into a generator. Bodies lists the handles the
// closure reads so the binding goes away with them; release runs on removal.
type ForceFunc struct {
	Fn     func(s *Scene)
	Free   func()
	Bodies []BodyID
}

func (f *ForceFunc) Apply(s *Scene) { f.Fn(s) }

func (f *ForceFunc) Release() {
	if f.Free != nil {
		f.Free()
	}
}

func (f *ForceFunc) References(id BodyID) bool {
	for _, b := range f.Bodies {
		if b == id {
			return true
		}
	}
	return false
}

// UniformField applies m·g to a body, e.g. surface gravity.
type UniformField struct {
	Accel geom.Vector
	Body  BodyID
}

func (u *UniformField) Apply(s *Scene) {
	b := s.mustBody(u.Body)
	if b.IsAnchor() {
		return
	}
	b.AddForce(u.Accel.Scale(b.Mass()))
}

// Potential is -m·g·x measured from the origin.
func (u *UniformField) Potential(s *Scene) float64 {
	b := s.mustBody(u.Body)
	if b.IsAnchor() {
		return 0
	}
	return -b.Mass() * u.Accel.Dot(b.Centroid())
}

func (u *UniformField) References(id BodyID) bool { return u.Body == id }
