package analysis

import (
	"github.com/san-kum/rigidsim/internal/geom"
)

// Portrait is a trajectory through a 2D plane: a body's path in x-y, or a
// coordinate against its velocity.
type Portrait struct {
	Points []geom.Vector
}

// NewPortrait pairs xs with ys, stopping at the shorter series.
func NewPortrait(xs, ys []float64) Portrait {
	n := min(len(xs), len(ys))
	p := Portrait{Points: make([]geom.Vector, n)}
	for i := 0; i < n; i++ {
		p.Points[i] = geom.Vec(xs[i], ys[i])
	}
	return p
}

// Bounds is the box around every point. An empty portrait gives zero vectors.
func (p Portrait) Bounds() (lo, hi geom.Vector) { return geom.Bounds(p.Points) }

// Crossings records the times at which xs rises through level, interpolating
// linearly between samples.
func Crossings(times, xs []float64, level float64) []float64 {
	n := min(len(times), len(xs))
	var out []float64
	for i := 1; i < n; i++ {
		prev, curr := xs[i-1], xs[i]
		if prev < level && curr >= level {
			frac := (level - prev) / (curr - prev)
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// Period estimates an oscillation period from the mean spacing of upward
// crossings through the series mean. It needs at least two crossings.
func Period(times, xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	c := Crossings(times, xs, mean)
	if len(c) < 2 {
		return 0, false
	}
	return (c[len(c)-1] - c[0]) / float64(len(c)-1), true
}
