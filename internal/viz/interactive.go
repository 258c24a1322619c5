package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	cyan = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dim  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

const (
	stateMenu = iota
	stateSim
)

// Launcher builds a live Model for a named setup.
type Launcher func(name string) (Model, error)

// Picker lists named setups and opens the chosen one in the live view.
type Picker struct {
	state  int
	cursor int
	names  []string
	info   map[string]string
	launch Launcher
	live   Model
	err    error
}

func NewPicker(names []string, info map[string]string, launch Launcher) Picker {
	return Picker{names: names, info: info, launch: launch}
}

func (p Picker) Init() tea.Cmd { return nil }

// Err returns the launch or simulation error, if any.
func (p Picker) Err() error {
	if p.err != nil {
		return p.err
	}
	if p.state == stateSim {
		return p.live.Err()
	}
	return nil
}

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateSim {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			p.state = stateMenu
			return p, nil
		}
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.names)-1 {
			p.cursor++
		}
	case "enter":
		if len(p.names) == 0 {
			return p, nil
		}
		live, err := p.launch(p.names[p.cursor])
		if err != nil {
			p.err = err
			return p, nil
		}
		p.err = nil
		p.live = live
		p.state = stateSim
		return p, live.Init()
	}
	return p, nil
}

func (p Picker) View() string {
	if p.state == stateSim {
		return p.live.View() + "\n" + KeyHint.Render("esc: back to presets")
	}

	var s strings.Builder
	s.WriteString(Title.Render("DISKBOX") + "\n\n")
	for i, name := range p.names {
		line := fmt.Sprintf("%-10s %s", name, dim.Render(p.info[name]))
		if i == p.cursor {
			s.WriteString(cyan.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	if p.err != nil {
		s.WriteString("\n" + ErrorStyle.Render(p.err.Error()) + "\n")
	}
	s.WriteString("\n" + KeyHint.Render("↑↓: select  enter: run  q: quit"))
	return GlassPanel.Render(s.String())
}
