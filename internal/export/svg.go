package export

import (
	"fmt"
	"io"
	"math"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/viz"
)

const (
	background = "#0a0a0a"
	defaultInk = "#00ff00"
)

// CanvasToSVG draws every lit braille dot of canvas as a circle, colored by
// its cell's ink. scale is the size of one dot in SVG units.
func CanvasToSVG(w io.Writer, canvas *viz.Canvas, scale float64) error {
	if canvas == nil {
		return fmt.Errorf("export: nil canvas")
	}
	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	ew := &errWriter{w: w}
	ew.printf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	dotRadius := scale * 0.4
	dw, dh := canvas.Dots()
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			ink := string(canvas.Ink(x/2, y/4))
			if ink == "" {
				ink = defaultInk
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			ew.printf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", cx, cy, dotRadius, ink)
		}
	}

	ew.printf("</svg>\n")
	return ew.err
}

// Path is one named trajectory.
type Path struct {
	Name   string
	Color  string
	Points []geom.Vector
}

// TrajectoriesToSVG draws paths as polylines on a shared frame. Both axes use
// one scale so circles stay round; y points up. Each path is labeled in the
// top left corner.
func TrajectoriesToSVG(w io.Writer, paths []Path, width, height int) error {
	var all []geom.Vector
	for _, p := range paths {
		all = append(all, p.Points...)
	}
	if len(all) < 2 {
		return fmt.Errorf("export: need at least two points")
	}

	lo, hi := geom.Bounds(all)
	pad := math.Max(hi.X-lo.X, hi.Y-lo.Y) * 0.1
	if pad == 0 {
		pad = 1
	}
	lo = lo.Sub(geom.Vec(pad, pad))
	hi = hi.Add(geom.Vec(pad, pad))
	scale := math.Min(float64(width)/(hi.X-lo.X), float64(height)/(hi.Y-lo.Y))
	offX := (float64(width) - (hi.X-lo.X)*scale) / 2
	offY := (float64(height) - (hi.Y-lo.Y)*scale) / 2
	project := func(p geom.Vector) (float64, float64) {
		return offX + (p.X-lo.X)*scale, offY + (hi.Y-p.Y)*scale
	}

	ew := &errWriter{w: w}
	ew.printf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	for i, p := range paths {
		color := p.Color
		if color == "" {
			color = defaultInk
		}
		if len(p.Points) > 0 {
			ew.printf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color)
			for j, pt := range p.Points {
				x, y := project(pt)
				if j == 0 {
					ew.printf("%.1f,%.1f", x, y)
				} else {
					ew.printf(" L%.1f,%.1f", x, y)
				}
			}
			ew.printf("\"/>\n")
		}
		ew.printf("<text x=\"8\" y=\"%d\" fill=\"%s\" font-family=\"monospace\" font-size=\"12\">%s</text>\n",
			16*(i+1), color, escape(p.Name))
	}

	ew.printf("</svg>\n")
	return ew.err
}

// errWriter keeps the first write error and drops everything after it.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func escape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		case '&':
			out = append(out, "&amp;"...)
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
