package physics

import "github.com/san-kum/rigidsim/internal/geom"

// Bounds is an axis-aligned box that bodies bounce off.
type Bounds struct {
	Min, Max geom.Vector
}

func (bb Bounds) Contains(p geom.Vector) bool {
	return p.X >= bb.Min.X && p.X <= bb.Max.X && p.Y >= bb.Min.Y && p.Y <= bb.Max.Y
}

func (bb Bounds) Width() float64  { return bb.Max.X - bb.Min.X }
func (bb Bounds) Height() float64 { return bb.Max.Y - bb.Min.Y }

// Reflect flips a velocity component when some vertex lies beyond a wall and
// the body is still heading out through it. The flipped component is scaled by
// the body's elasticity on that axis. It reports whether anything changed.
func (bb Bounds) Reflect(b *Body) bool {
	if b.IsAnchor() {
		return false
	}
	lo, hi := geom.Bounds(b.Vertices())
	v := b.Velocity()
	e := b.Elasticity()
	hit := false

	if (lo.X < bb.Min.X && v.X < 0) || (hi.X > bb.Max.X && v.X > 0) {
		v.X = -v.X * e.X
		hit = true
	}
	if (lo.Y < bb.Min.Y && v.Y < 0) || (hi.Y > bb.Max.Y && v.Y > 0) {
		v.Y = -v.Y * e.Y
		hit = true
	}
	if hit {
		b.SetVelocity(v)
	}
	return hit
}
