package physics

import "github.com/san-kum/rigidsim/internal/geom"

// BodyID is a stable handle to a body in a scene. Handles are never reused, so
// a handle to a removed body stays invalid.
type BodyID uint64

// Scene owns an ordered set of bodies and an ordered set of force generators.
type Scene struct {
	bodies []*Body
	ids    []BodyID
	byID   map[BodyID]*Body
	forces []ForceGenerator
	nextID BodyID
}

func NewScene() *Scene {
	return &Scene{
		bodies: make([]*Body, 0, 8),
		ids:    make([]BodyID, 0, 8),
		byID:   make(map[BodyID]*Body),
		nextID: 1,
	}
}

// AddBody appends b and returns its handle. It panics if b already belongs to
// a scene.
func (s *Scene) AddBody(b *Body) BodyID {
	if b.owned {
		fail(ErrBodyOwned, "body at %v", b.Centroid())
	}
	b.owned = true
	id := s.nextID
	s.nextID++
	s.bodies = append(s.bodies, b)
	s.ids = append(s.ids, id)
	s.byID[id] = b
	return id
}

// RemoveBody drops the body at index. Every generator bound to it is removed
// and released along with it.
func (s *Scene) RemoveBody(index int) {
	s.checkBodyIndex(index)
	id := s.ids[index]
	s.bodies[index].owned = false

	s.bodies = append(s.bodies[:index], s.bodies[index+1:]...)
	s.ids = append(s.ids[:index], s.ids[index+1:]...)
	delete(s.byID, id)

	kept := s.forces[:0]
	for _, f := range s.forces {
		if r, ok := f.(BodyReferrer); ok && r.References(id) {
			release(f)
			continue
		}
		kept = append(kept, f)
	}
	for i := len(kept); i < len(s.forces); i++ {
		s.forces[i] = nil
	}
	s.forces = kept
}

func (s *Scene) BodyCount() int { return len(s.bodies) }

func (s *Scene) BodyAt(index int) *Body {
	s.checkBodyIndex(index)
	return s.bodies[index]
}

func (s *Scene) IDAt(index int) BodyID {
	s.checkBodyIndex(index)
	return s.ids[index]
}

// Body resolves a handle.
func (s *Scene) Body(id BodyID) (*Body, bool) {
	b, ok := s.byID[id]
	return b, ok
}

// IndexOf returns the current list position of the body with handle id.
func (s *Scene) IndexOf(id BodyID) (int, bool) {
	for i, v := range s.ids {
		if v == id {
			return i, true
		}
	}
	return -1, false
}

func (s *Scene) mustBody(id BodyID) *Body {
	b, ok := s.byID[id]
	if !ok {
		fail(ErrUnknownBody, "handle %d", id)
	}
	return b
}

func (s *Scene) checkBodyIndex(index int) {
	if index < 0 || index >= len(s.bodies) {
		fail(ErrIndexOutOfRange, "body %d of %d", index, len(s.bodies))
	}
}

// AddForceGenerator registers g. No check is made that the bodies it refers
// to exist until the next Tick.
func (s *Scene) AddForceGenerator(g ForceGenerator) {
	s.forces = append(s.forces, g)
}

// AddForceFunc registers a closure generator. release may be nil.
func (s *Scene) AddForceFunc(fn func(s *Scene), release func(), bodies ...BodyID) {
	s.AddForceGenerator(&ForceFunc{Fn: fn, Free: release, Bodies: bodies})
}

// AddGravity binds Newtonian attraction between a and b. It panics with
// ErrInvalidMass if either body is an anchor.
func (s *Scene) AddGravity(g float64, a, b BodyID) {
	for _, id := range []BodyID{a, b} {
		if body, ok := s.byID[id]; ok && body.IsAnchor() {
			fail(ErrInvalidMass, "gravity on anchor %d", id)
		}
	}
	s.AddForceGenerator(&Gravity{G: g, A: a, B: b})
}

func (s *Scene) AddSpring(k float64, a, b BodyID) {
	s.AddForceGenerator(&Spring{K: k, A: a, B: b})
}

func (s *Scene) AddDrag(gamma float64, body BodyID) {
	s.AddForceGenerator(&Drag{Gamma: gamma, Body: body})
}

func (s *Scene) AddUniformField(accel geom.Vector, body BodyID) {
	s.AddForceGenerator(&UniformField{Accel: accel, Body: body})
}

func (s *Scene) ForceCount() int { return len(s.forces) }

func (s *Scene) ForceAt(index int) ForceGenerator {
	if index < 0 || index >= len(s.forces) {
		fail(ErrIndexOutOfRange, "force %d of %d", index, len(s.forces))
	}
	return s.forces[index]
}

// RemoveForce unregisters and releases the generator at index.
func (s *Scene) RemoveForce(index int) {
	f := s.ForceAt(index)
	s.forces = append(s.forces[:index], s.forces[index+1:]...)
	release(f)
}

// Tick runs every generator in registration order, then integrates every body
// in insertion order.
func (s *Scene) Tick(dt float64) {
	for _, f := range s.forces {
		f.Apply(s)
	}
	for _, b := range s.bodies {
		b.Tick(dt)
	}
}

// TickNoForces advances every body from its velocity and acceleration fields
// only. Generators are not run.
func (s *Scene) TickNoForces(dt float64) {
	for _, b := range s.bodies {
		b.TickNoForces(dt)
	}
}

// Close releases every generator and drops every body.
func (s *Scene) Close() {
	for _, f := range s.forces {
		release(f)
	}
	for _, b := range s.bodies {
		b.owned = false
	}
	s.forces = nil
	s.bodies = nil
	s.ids = nil
	s.byID = make(map[BodyID]*Body)
}

func release(f ForceGenerator) {
	if r, ok := f.(Releaser); ok {
		r.Release()
	}
}
