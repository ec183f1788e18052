package viz

import (
	"image"
	"math"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
)

// Viewport maps world coordinates onto canvas dots with one scale on both
// axes, centering the world box and flipping y so it points up.
type Viewport struct {
	World      physics.Bounds
	scale      float64
	offX, offY float64
}

func NewViewport(world physics.Bounds, dotsW, dotsH int) Viewport {
	w, h := world.Width(), world.Height()
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	spanX, spanY := float64(dotsW-1), float64(dotsH-1)
	scale := math.Min(spanX/w, spanY/h)
	return Viewport{
		World: world,
		scale: scale,
		offX:  (spanX - w*scale) / 2,
		offY:  (spanY - h*scale) / 2,
	}
}

func (v Viewport) Scale() float64 { return v.scale }

// ToDots converts a world point to canvas dots.
func (v Viewport) ToDots(p geom.Vector) image.Point {
	x := v.offX + (p.X-v.World.Min.X)*v.scale
	y := v.offY + (v.World.Max.Y-p.Y)*v.scale
	return image.Pt(int(math.Round(x)), int(math.Round(y)))
}

func (v Viewport) Polygon(poly []geom.Vector) []image.Point {
	pts := make([]image.Point, len(poly))
	for i, p := range poly {
		pts[i] = v.ToDots(p)
	}
	return pts
}

// SceneExtent is the box around every vertex in s, grown by margin times its
// larger side. An empty scene gives the unit box about the origin.
func SceneExtent(s *physics.Scene, margin float64) physics.Bounds {
	var pts []geom.Vector
	for i := 0; i < s.BodyCount(); i++ {
		pts = append(pts, s.BodyAt(i).Vertices()...)
	}
	return PointsExtent(pts, margin)
}

// PointsExtent is SceneExtent for a bare point set.
func PointsExtent(pts []geom.Vector, margin float64) physics.Bounds {
	if len(pts) == 0 {
		return physics.Bounds{Min: geom.Vec(-1, -1), Max: geom.Vec(1, 1)}
	}
	lo, hi := geom.Bounds(pts)
	pad := math.Max(hi.X-lo.X, hi.Y-lo.Y) * margin
	if pad == 0 {
		pad = 1
	}
	d := geom.Vec(pad, pad)
	return physics.Bounds{Min: lo.Sub(d), Max: hi.Add(d)}
}
