package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rigidsim/internal/physics"
)

// styles holds the lipgloss styles derived from a Theme.
type styles struct {
	theme   Theme
	canvas  lipgloss.Style
	walls   lipgloss.Color
	panel   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	alert   lipgloss.Style
	graph   lipgloss.Style
	help    lipgloss.Style
	cursor  lipgloss.Style
	item    lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		theme:  t,
		canvas: lipgloss.NewStyle().Padding(1, 2),
		walls:  t.Muted,
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(panelWidth),
		header:  lipgloss.NewStyle().Foreground(t.Secondary).Bold(true),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		running: lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		paused:  lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		alert:   lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		graph:   lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		help:    lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		cursor:  lipgloss.NewStyle().Foreground(t.Secondary).Bold(true),
		item:    lipgloss.NewStyle().Foreground(t.Muted),
	}
}

// GradientText colors each rune of text along a blend from start to end.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	a, errA := colorful.Hex(string(start))
	b, errB := colorful.Hex(string(end))
	if errA != nil || errB != nil {
		return lipgloss.NewStyle().Foreground(start).Render(text)
	}

	var out strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := lipgloss.Color(a.BlendLab(b, t).Clamped().Hex())
		out.WriteString(lipgloss.NewStyle().Foreground(c).Render(string(r)))
	}
	return out.String()
}

// ProgressBar renders a fraction in [0, 1] as a bar of width cells.
func ProgressBar(frac float64, width int, fill lipgloss.Color) string {
	filled := int(frac * float64(width))
	filled = min(max(filled, 0), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(fill).Render(bar)
}

// BodyInk is the terminal color for a body. Colors too dark to see on a
// terminal background fall back to fallback.
func BodyInk(c physics.Color, fallback lipgloss.Color) lipgloss.Color {
	col := colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped()
	if l, _, _ := col.Lab(); l < 0.2 {
		return fallback
	}
	return lipgloss.Color(col.Hex())
}

func Separator(width int, col lipgloss.Color) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return lipgloss.NewStyle().Foreground(col).Render(left + " ◆ " + right)
}
