package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rigidsim/internal/analysis"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/export"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/storage"
	"github.com/san-kum/rigidsim/internal/viz"
)

const spectrumBins = 80

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRun(args)
	if err != nil {
		return err
	}
	if len(table.Rows) < 4 {
		return fmt.Errorf("not enough samples to analyze")
	}

	name := column
	if name == "" {
		if name = movingColumn(table); name == "" {
			return fmt.Errorf("no body moves in run %s", meta.ID)
		}
	}
	xs, ok := table.Column(name)
	if !ok {
		return fmt.Errorf("unknown column %q (have %s)", name, strings.Join(table.Columns, ", "))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "column: %s\n", name)

	sampleDt := table.Times[1] - table.Times[0]
	spec := analysis.PowerSpectrum(xs, sampleDt)
	if freq, _ := spec.Dominant(); freq > 0 {
		fmt.Fprintf(out, "dominant frequency: %.4f Hz (period %.3f s)\n", freq, 1/freq)
	} else {
		fmt.Fprintln(out, "dominant frequency: none")
	}
	if period, ok := analysis.Period(table.Times, xs); ok {
		fmt.Fprintf(out, "period: %.3f s\n", period)
	} else {
		fmt.Fprintln(out, "period: fewer than two crossings")
	}

	power := spec.Power
	if len(power) > spectrumBins {
		power = power[:spectrumBins]
	}
	if lo, hi := extent(power); hi > lo {
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(power,
			asciigraph.Height(8),
			asciigraph.Width(spectrumBins),
			asciigraph.Caption(fmt.Sprintf("spectrum, %.3g Hz per column", spec.Freqs[1])),
		))
	}

	if !phase {
		return nil
	}
	vname, ok := velocityColumn(name)
	if !ok {
		return fmt.Errorf("no velocity column for %s", name)
	}
	vs, ok := table.Column(vname)
	if !ok {
		return fmt.Errorf("unknown column %q", vname)
	}
	portrait := analysis.NewPortrait(xs, vs)
	fmt.Fprintf(out, "\nphase portrait %s against %s\n", name, vname)
	c := viz.NewCanvas(60, 20)
	traceOnCanvas(c, [][]geom.Vector{portrait.Points}, []lipgloss.Color{viz.GetTheme(theme).Primary})
	fmt.Fprint(out, c.String())
	return nil
}

// movingColumn picks the x column of the first body whose x or y changes.
func movingColumn(t *storage.Table) string {
	for i := 0; i < t.BodyCount(); i++ {
		for _, axis := range []string{"x", "y"} {
			name := fmt.Sprintf("b%d_%s", i, axis)
			xs, ok := t.Column(name)
			if !ok || len(xs) == 0 {
				continue
			}
			if lo, hi := extent(xs); hi > lo {
				return name
			}
		}
	}
	return ""
}

// velocityColumn maps b<i>_x to b<i>_vx and b<i>_y to b<i>_vy.
func velocityColumn(name string) (string, bool) {
	idx := strings.LastIndex(name, "_")
	if idx < 0 || !strings.HasPrefix(name, "b") {
		return "", false
	}
	axis := name[idx+1:]
	if axis != "x" && axis != "y" {
		return "", false
	}
	return name[:idx+1] + "v" + axis, true
}

func drawTrails(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRun(args)
	if err != nil {
		return err
	}
	n := table.BodyCount()
	if n == 0 || len(table.Rows) == 0 {
		return fmt.Errorf("no bodies recorded in run %s", meta.ID)
	}

	paths := make([]export.Path, n)
	for i := range paths {
		xs, _ := table.Column(fmt.Sprintf("b%d_x", i))
		ys, _ := table.Column(fmt.Sprintf("b%d_y", i))
		name := fmt.Sprintf("b%d", i)
		if i < len(meta.Bodies) {
			name = meta.Bodies[i]
		}
		paths[i] = export.Path{
			Name:   name,
			Color:  string(viz.BodyInk(config.Palette(i), viz.GetTheme(theme).Primary)),
			Points: analysis.NewPortrait(xs, ys).Points,
		}
	}

	out := cmd.OutOrStdout()
	if svgPath != "" {
		f, err := os.Create(svgPath)
		if err != nil {
			return err
		}
		if err := export.TrajectoriesToSVG(f, paths, 800, 600); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", svgPath)
		return nil
	}

	fmt.Fprintf(out, "run: %s\n", meta.ID)
	c := viz.NewCanvas(plotWidth, plotHeight)
	pts := make([][]geom.Vector, n)
	pens := make([]lipgloss.Color, n)
	for i, p := range paths {
		pts[i] = p.Points
		pens[i] = lipgloss.Color(p.Color)
	}
	traceOnCanvas(c, pts, pens)
	fmt.Fprint(out, c.String())
	printLegend(out, paths)
	return nil
}

// traceOnCanvas fits every path into c and draws path i with pens[i].
func traceOnCanvas(c *viz.Canvas, paths [][]geom.Vector, pens []lipgloss.Color) {
	var all []geom.Vector
	for _, p := range paths {
		all = append(all, p...)
	}
	dw, dh := c.Dots()
	view := viz.NewViewport(viz.PointsExtent(all, 0.05), dw, dh)
	for i, p := range paths {
		c.SetPen(pens[i])
		c.DrawPath(view.Polygon(p))
	}
}

func printLegend(w io.Writer, paths []export.Path) {
	for _, p := range paths {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render("■")
		fmt.Fprintf(w, "  %s %s\n", swatch, p.Name)
	}
}
