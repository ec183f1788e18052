package geom

import (
	"fmt"
	"math"
)

// Epsilon is the absolute per-component tolerance used by IsClose.
const Epsilon = 1e-7

type Vector struct {
	X, Y float64
}

var Zero = Vector{}

func Vec(x, y float64) Vector { return Vector{X: x, Y: y} }

func (v Vector) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

func (v Vector) Add(o Vector) Vector { return Vector{v.X + o.X, v.Y + o.Y} }
func (v Vector) Sub(o Vector) Vector { return Vector{v.X - o.X, v.Y - o.Y} }
func (v Vector) Neg() Vector         { return Vector{-v.X, -v.Y} }
func (v Vector) Scale(s float64) Vector {
	return Vector{v.X * s, v.Y * s}
}

// Div divides both components by s. Prefer it over Scale(1/s) where exact
// quotients matter.
func (v Vector) Div(s float64) Vector { return Vector{v.X / s, v.Y / s} }

func (v Vector) Dot(o Vector) float64 { return v.X*o.X + v.Y*o.Y }

// Cross returns the z component of the 3D cross product of v and o.
func (v Vector) Cross(o Vector) float64 { return v.X*o.Y - v.Y*o.X }

// Rotate rotates v counterclockwise by angle radians about the origin.
func (v Vector) Rotate(angle float64) Vector {
	sin, cos := math.Sincos(angle)
	return Vector{cos*v.X - sin*v.Y, sin*v.X + cos*v.Y}
}

func (v Vector) Len() float64 { return math.Hypot(v.X, v.Y) }

// Unit returns v scaled to length one. The zero vector maps to itself.
func (v Vector) Unit() Vector {
	l := v.Len()
	if l == 0 {
		return Zero
	}
	return Vector{v.X / l, v.Y / l}
}

func (v Vector) Distance(o Vector) float64 { return o.Sub(v).Len() }

func (v Vector) Equal(o Vector) bool { return v.X == o.X && v.Y == o.Y }

func (v Vector) IsClose(o Vector) bool {
	return IsClose(v.X, o.X) && IsClose(v.Y, o.Y)
}

func (v Vector) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func IsClose(a, b float64) bool {
	return Within(Epsilon, a, b)
}

// Within reports whether a and b differ by less than eps.
func Within(eps, a, b float64) bool {
	return math.Abs(a-b) < eps
}
