package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/rigidsim/internal/config"
)

var presetInfo = map[string]string{
	"bounce":     "star in a box, no forces",
	"freefall":   "spinning star under gravity",
	"orbit":      "planet around a heavy sun",
	"binary":     "two equal masses",
	"oscillator": "spring on an anchor",
	"damped":     "spring with drag",
	"drag":       "coasting to a stop",
}

const (
	stateMenu = iota
	stateSim
)

// App lists the presets and opens the chosen one in a live Model.
type App struct {
	state, cursor int
	presets       []string
	theme         string
	width, height int
	live          Model
	err           error
}

func NewApp(theme string) App {
	return App{
		presets: config.ListPresets(),
		theme:   theme,
		width:   width,
		height:  height,
	}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		a.width, a.height = size.Width, size.Height
	}
	if a.state == stateSim {
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		return a.menuKey(key)
	}
	return a, nil
}

func (a App) menuKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ":
		return a.open(a.presets[a.cursor])
	}
	return a, nil
}

func (a App) open(name string) (App, tea.Cmd) {
	m, err := NewModel(config.GetPreset(name))
	if err != nil {
		a.err = err
		return a, nil
	}
	m = m.WithTheme(a.theme)
	next, _ := m.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	a.live = next.(Model)
	a.state, a.err = stateSim, nil
	return a, a.live.Init()
}

func (a App) View() string {
	if a.state == stateSim {
		return a.live.View()
	}
	st := newStyles(GetTheme(a.theme))
	var b strings.Builder
	b.WriteString("\n\n    " + GradientText("RIGIDSIM", st.theme.Primary, st.theme.Secondary) +
		"\n    " + st.item.Render("2d rigid body playground") +
		"\n    " + st.item.Render("────────────────────────") + "\n\n")
	for i, name := range a.presets {
		desc := presetInfo[name]
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", st.cursor.Render("▸"), st.value.Bold(true).Render(fmt.Sprintf("%-12s", name)), st.paused.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", st.item.Render(fmt.Sprintf("%-12s", name)), st.item.Render(desc)))
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + st.alert.Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n    " + st.cursor.Render("j/k") + st.item.Render(" navigate  ") +
		st.cursor.Render("enter") + st.item.Render(" select  ") +
		st.cursor.Render("q") + st.item.Render(" quit") + "\n")
	return b.String()
}

// RunInteractive opens the preset menu full screen.
func RunInteractive(theme string) error {
	_, err := tea.NewProgram(NewApp(theme), tea.WithAltScreen()).Run()
	return err
}
