package geom

import "math"

const DefaultCircleSegments = 50

// RegularPolygon returns n vertices on a circle of the given radius, starting
// at angle zero and winding counterclockwise.
func RegularPolygon(n int, radius float64, center Vector) []Vector {
	poly := make([]Vector, n)
	step := 2 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		poly[i] = center.Add(Vector{radius, 0}.Rotate(float64(i) * step))
	}
	return poly
}

// Star returns a star with the given number of points. Outer vertices lie on
// radius; inner vertices sit at 2*radius/points, offset by half a point.
func Star(points int, radius float64, center Vector) []Vector {
	poly := make([]Vector, 0, points*2)
	inner := 2 * radius / float64(points)
	step := 2 * math.Pi / float64(points)
	angle := math.Pi / 2
	for i := 0; i < points; i++ {
		poly = append(poly,
			center.Add(Vector{math.Cos(angle), math.Sin(angle)}.Scale(radius)),
			center.Add(Vector{math.Cos(angle + step/2), math.Sin(angle + step/2)}.Scale(inner)),
		)
		angle += step
	}
	return poly
}

func Circle(center Vector, radius float64, segments int) []Vector {
	if segments < 3 {
		segments = DefaultCircleSegments
	}
	return RegularPolygon(segments, radius, center)
}

// Rect returns an axis-aligned rectangle centred on center.
func Rect(center Vector, w, h float64) []Vector {
	hw, hh := w/2, h/2
	return []Vector{
		{center.X - hw, center.Y - hh},
		{center.X + hw, center.Y - hh},
		{center.X + hw, center.Y + hh},
		{center.X - hw, center.Y + hh},
	}
}
