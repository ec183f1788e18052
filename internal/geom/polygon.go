package geom

import "math"

// signedArea2 is twice the signed shoelace area; positive for counterclockwise input.
func signedArea2(poly []Vector) float64 {
	n := len(poly)
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += poly[i].Cross(poly[(i+1)%n])
	}
	return sum
}

// Area returns the unsigned area of the closed polygon.
func Area(poly []Vector) float64 {
	return 0.5 * math.Abs(signedArea2(poly))
}

// Centroid returns the area-weighted centroid of a counterclockwise polygon.
// The polygon must not be degenerate: a zero area divides by zero.
func Centroid(poly []Vector) Vector {
	n := len(poly)
	cx, cy := 0.0, 0.0
	for i := 0; i < n; i++ {
		vi, vj := poly[i], poly[(i+1)%n]
		c := vi.Cross(vj)
		cx += (vi.X + vj.X) * c
		cy += (vi.Y + vj.Y) * c
	}
	a6 := 6 * Area(poly)
	return Vector{cx / a6, cy / a6}
}

// IsCounterClockwise reports whether the vertices wind counterclockwise.
func IsCounterClockwise(poly []Vector) bool {
	return signedArea2(poly) > 0
}

// IsDegenerate reports whether the polygon encloses no usable area. The area is
// measured against the bounding box, so the verdict does not depend on the unit
// scale. Collapsed, collinear and non-finite vertex sets are degenerate.
func IsDegenerate(poly []Vector) bool {
	lo, hi := Bounds(poly)
	box := (hi.X - lo.X) * (hi.Y - lo.Y)
	return !(box > 0 && Area(poly) > Epsilon*box)
}

// Reverse flips the winding of the polygon in place.
func Reverse(poly []Vector) {
	for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
		poly[i], poly[j] = poly[j], poly[i]
	}
}

// Translate shifts every vertex in place.
func Translate(poly []Vector, d Vector) {
	for i := range poly {
		poly[i] = poly[i].Add(d)
	}
}

// RotateAbout rotates every vertex in place by angle around pivot.
func RotateAbout(poly []Vector, angle float64, pivot Vector) {
	sin, cos := math.Sincos(angle)
	for i, p := range poly {
		d := p.Sub(pivot)
		poly[i] = Vector{cos*d.X - sin*d.Y + pivot.X, sin*d.X + cos*d.Y + pivot.Y}
	}
}

// Bounds returns the axis-aligned bounding box of the vertices.
func Bounds(poly []Vector) (min, max Vector) {
	if len(poly) == 0 {
		return Zero, Zero
	}
	min, max = poly[0], poly[0]
	for _, p := range poly[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}
