package viz

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	panelWidth      = 38
	frameRate       = 60
	historyCapacity = 600
	maxStepsFrame   = 2000
	listedBodies    = 8

	// NudgeSpeed is the speed change one arrow press gives the first movable
	// body.
	NudgeSpeed = 20.0
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model animates a scene built from a config in real time.
type Model struct {
	cfg      *config.Config
	simCfg   sim.Config
	scene    *physics.Scene
	sim      *sim.Simulator
	names    []string
	view     Viewport
	canvas   *Canvas
	t        float64
	steps    int
	running  bool
	energy   []float64
	e0       float64
	theme    int
	styles   styles
	recorder *Recorder
	gifPath  string
	status   string
	log      *slog.Logger

	width, height int
}

// NewModel builds the scene described by cfg and starts it running.
func NewModel(cfg *config.Config) (Model, error) {
	m := Model{
		cfg:     cfg.Clone(),
		simCfg:  cfg.SimConfig(),
		names:   cfg.BodyNames(),
		running: true,
		styles:  newStyles(Themes[0]),
		gifPath: cfg.Name + ".gif",
		log:     slog.New(slog.DiscardHandler),
		width:   width,
		height:  height,
		canvas:  NewCanvas(canvasSize(width, height)),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// WithLogger sets the logger for recording and reset events.
func (m Model) WithLogger(l *slog.Logger) Model {
	if l != nil {
		m.log = l
	}
	return m
}

// WithTheme selects a theme by name.
func (m Model) WithTheme(name string) Model {
	m.theme = themeIndex(name)
	m.styles = newStyles(Themes[m.theme])
	return m
}

// WithRecordPath sets where the g key saves its GIF.
func (m Model) WithRecordPath(path string) Model {
	m.gifPath = path
	return m
}

func canvasSize(w, h int) (int, int) {
	return max(w-panelWidth-8, 20), max(h-4, 8)
}

// reset rebuilds the scene from the config and clears the history.
func (m *Model) reset() error {
	scene, drivers, err := m.cfg.Build()
	if err != nil {
		return err
	}
	if m.scene != nil {
		m.scene.Close()
	}
	m.scene = scene
	m.sim = sim.New(drivers...)
	m.t, m.steps = 0, 0
	m.e0 = scene.Energy()
	m.energy = append(m.energy[:0], m.e0)
	m.fit()
	return nil
}

// fit points the viewport at the walls, or at the scene's starting extent
// when there are none.
func (m *Model) fit() {
	world, ok := m.cfg.PhysicsBounds()
	if !ok {
		world = SceneExtent(m.scene, 0.25)
	}
	dw, dh := m.canvas.Dots()
	m.view = NewViewport(world, dw, dh)
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.canvas = NewCanvas(canvasSize(m.width, m.height))
		m.fit()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.stopRecording()
			m.scene.Close()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.status = err.Error()
			}
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.styles = newStyles(Themes[m.theme])
		case "g":
			if m.recorder != nil {
				m.stopRecording()
			} else {
				m.recorder = NewRecorder()
				m.status = "recording"
			}
		case "up", "k":
			m.nudge(geom.Vec(0, 1))
		case "down", "j":
			m.nudge(geom.Vec(0, -1))
		case "left", "h":
			m.nudge(geom.Vec(-1, 0))
		case "right", "l":
			m.nudge(geom.Vec(1, 0))
		}
	case TickMsg:
		if m.running {
			m.advance(m.stepsPerFrame())
		}
		m.draw()
		if m.recorder != nil {
			m.recorder.Capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

// stepsPerFrame keeps simulated time in step with the wall clock.
func (m *Model) stepsPerFrame() int {
	n := int(math.Round(1 / (frameRate * m.simCfg.Dt)))
	return min(max(n, 1), maxStepsFrame)
}

func (m *Model) advance(steps int) {
	for i := 0; i < steps; i++ {
		m.sim.Step(m.scene, m.simCfg, m.t)
		m.steps++
		m.t = float64(m.steps) * m.simCfg.Dt
	}
	m.energy = append(m.energy, m.scene.Energy())
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

// nudge changes the velocity of the first movable body by NudgeSpeed along
// dir. In force mode it goes through the impulse accumulator so the next tick
// integrates it; kinematic ticks ignore impulses, so the velocity is set.
func (m *Model) nudge(dir geom.Vector) bool {
	for i := 0; i < m.scene.BodyCount(); i++ {
		b := m.scene.BodyAt(i)
		if b.IsAnchor() {
			continue
		}
		dv := dir.Scale(NudgeSpeed)
		if m.simCfg.Kinematic {
			b.SetVelocity(b.Velocity().Add(dv))
		} else {
			b.AddImpulse(dv.Scale(b.Mass()))
		}
		return true
	}
	return false
}

func (m *Model) stopRecording() {
	if m.recorder == nil {
		return
	}
	rec := m.recorder
	m.recorder = nil
	if rec.Len() == 0 {
		m.status = ""
		return
	}
	if err := rec.Save(m.gifPath); err != nil {
		m.status = err.Error()
		m.log.Error("save recording", "path", m.gifPath, "err", err)
		return
	}
	m.status = "saved " + m.gifPath
	m.log.Info("saved recording", "path", m.gifPath, "frames", rec.Len())
}

func (m *Model) draw() {
	m.canvas.Clear()
	if world, ok := m.cfg.PhysicsBounds(); ok {
		m.canvas.SetPen(m.styles.walls)
		lo := m.view.ToDots(geom.Vec(world.Min.X, world.Max.Y))
		hi := m.view.ToDots(geom.Vec(world.Max.X, world.Min.Y))
		m.canvas.DrawRect(image.Rectangle{Min: lo, Max: hi})
	}
	for i := 0; i < m.scene.BodyCount(); i++ {
		b := m.scene.BodyAt(i)
		m.canvas.SetPen(BodyInk(b.Color(), m.styles.theme.Text))
		m.canvas.DrawPolygon(m.view.Polygon(b.Vertices()))
		c := m.view.ToDots(b.Centroid())
		m.canvas.Set(c.X, c.Y)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	st := m.styles
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.cfg.Name), st.theme.Primary, st.theme.Secondary) + "\n")
	status := st.running.Render("RUNNING")
	if !m.running {
		status = st.paused.Render("PAUSED")
	}
	if m.recorder != nil {
		status += " " + st.alert.Render("● REC")
	}
	s.WriteString(status + "\n")
	if m.status != "" && m.recorder == nil {
		s.WriteString(st.item.Render(m.status) + "\n")
	}
	s.WriteString("\n")

	if m.cfg.Duration > 0 {
		s.WriteString(ProgressBar(m.t/m.cfg.Duration, panelWidth-6, st.theme.Accent) + "\n")
	}
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.t))
	row("Step", fmt.Sprintf("%g × %d", m.simCfg.Dt, m.stepsPerFrame()))
	e := m.scene.Energy()
	row("Energy", fmt.Sprintf("%.4g", e))
	if m.e0 != 0 {
		row("Drift", fmt.Sprintf("%.3g%%", 100*math.Abs(e-m.e0)/math.Abs(m.e0)))
	}
	p := m.scene.Momentum()
	row("Momentum", fmt.Sprintf("(%.3g, %.3g)", p.X, p.Y))

	if spread(m.energy) > 0 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	s.WriteString("\n" + st.header.Render("BODIES") + "\n")
	for i := 0; i < m.scene.BodyCount() && i < listedBodies; i++ {
		b := m.scene.BodyAt(i)
		swatch := lipgloss.NewStyle().Foreground(BodyInk(b.Color(), st.theme.Text)).Render("■")
		name := fmt.Sprintf("#%d", i)
		if i < len(m.names) {
			name = m.names[i]
		}
		speed := "anchor"
		if !b.IsAnchor() {
			speed = fmt.Sprintf("|v| %.3g", b.Velocity().Len())
		}
		s.WriteString(fmt.Sprintf("%s %-10s %s\n", swatch, name, st.item.Render(speed)))
	}
	if extra := m.scene.BodyCount() - listedBodies; extra > 0 {
		s.WriteString(st.item.Render(fmt.Sprintf("  +%d more", extra)) + "\n")
	}

	s.WriteString(st.help.Render(Separator(panelWidth-6, st.theme.Muted) + "\nSP:Pause R:Reset Q:Quit\nT:Theme  G:Record\n←↑↓→:Nudge"))
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
}

func spread(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	return hi - lo
}

// Time returns the simulated time.
func (m Model) Time() float64 { return m.t }

// Scene returns the scene being animated.
func (m Model) Scene() *physics.Scene { return m.scene }

func (m Model) Running() bool { return m.running }

// Run shows m full screen until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
