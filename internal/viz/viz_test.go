package viz

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/diskbox/internal/physics"
	"github.com/san-kum/diskbox/internal/sim"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(3, 2)
	if !c.IsSet(3, 2) {
		t.Fatal("expected pixel set")
	}
	if c.Grid[0][1] != 0x2800+0x20 {
		t.Errorf("unexpected braille rune %U", c.Grid[0][1])
	}

	c.Unset(3, 2)
	if c.IsSet(3, 2) || c.Grid[0][1] != 0x2800 {
		t.Error("expected pixel cleared")
	}

	// Out of range is ignored.
	c.Set(-1, 0)
	c.Set(100, 100)
}

func TestCanvasDrawCircle(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawCircle(20, 20, 5)

	for _, p := range [][2]int{{25, 20}, {15, 20}, {20, 25}, {20, 15}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("expected (%d, %d) on the circle", p[0], p[1])
		}
	}
	if c.IsSet(20, 20) {
		t.Error("circle should be an outline")
	}

	c.Clear()
	c.DrawCircle(4, 4, 0)
	if !c.IsSet(4, 4) {
		t.Error("tiny circle should set its center")
	}
}

func TestCanvasDrawRect(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawRect(0, 0, 19, 19)
	for _, p := range [][2]int{{0, 0}, {19, 0}, {19, 19}, {0, 19}, {10, 0}, {0, 10}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("expected (%d, %d) on the rectangle", p[0], p[1])
		}
	}
	if c.IsSet(10, 10) {
		t.Error("rectangle should be an outline")
	}
}

func testBuilder(t *testing.T) Builder {
	return func() (*sim.Simulator, error) {
		box, err := physics.NewSquareBoundary(10)
		if err != nil {
			return nil, err
		}
		p, err := physics.NewParticle(1, 4.5, 0, 1, 0, 0.5)
		if err != nil {
			return nil, err
		}
		return sim.New(box, []physics.Particle{p}, nil), nil
	}
}

func TestModelSteps(t *testing.T) {
	m, err := NewModel(testBuilder(t), 0.1, "test")
	if err != nil {
		t.Fatal(err)
	}

	next, _ := m.Update(TickMsg{})
	m = next.(Model)
	if m.sim.StepCount() != 1 {
		t.Fatalf("expected 1 step, got %d", m.sim.StepCount())
	}
	if m.rebounds != 1 {
		t.Errorf("expected the wall rebound to be counted, got %d", m.rebounds)
	}
	if m.last.Pressure != 1.0/3 {
		t.Errorf("expected pressure 1/3, got %f", m.last.Pressure)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	m = next.(Model)
	next, _ = m.Update(TickMsg{})
	m = next.(Model)
	if m.sim.StepCount() != 3 {
		t.Errorf("expected 3 steps at double speed, got %d", m.sim.StepCount())
	}

	view := m.View()
	if !strings.Contains(view, "TEST") || !strings.Contains(view, "Pressure") {
		t.Error("view missing title or pressure")
	}
}

func TestModelPauseAndReset(t *testing.T) {
	m, err := NewModel(testBuilder(t), 0.1, "test")
	if err != nil {
		t.Fatal(err)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(Model)
	next, _ = m.Update(TickMsg{})
	m = next.(Model)
	if m.sim.StepCount() != 0 {
		t.Error("paused model must not step on tick")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'.'}})
	m = next.(Model)
	if m.sim.StepCount() != 1 {
		t.Errorf("expected single step, got %d", m.sim.StepCount())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = next.(Model)
	if m.sim.StepCount() != 0 || len(m.pressureHistory) != 0 {
		t.Error("reset should rebuild the simulator and clear history")
	}
}

func TestNewModelBuildError(t *testing.T) {
	want := errors.New("boom")
	_, err := NewModel(func() (*sim.Simulator, error) { return nil, want }, 0.1, "x")
	if !errors.Is(err, want) {
		t.Errorf("expected build error, got %v", err)
	}
}

func TestPicker(t *testing.T) {
	launched := ""
	p := NewPicker([]string{"a", "b"}, map[string]string{"a": "first"}, func(name string) (Model, error) {
		launched = name
		return NewModel(testBuilder(t), 0.1, name)
	})

	if !strings.Contains(p.View(), "first") {
		t.Error("menu should show preset info")
	}

	next, _ := p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p = next.(Picker)
	next, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p = next.(Picker)

	if launched != "b" || p.state != stateSim || cmd == nil {
		t.Fatalf("expected b launched, got %q (state %d)", launched, p.state)
	}

	next, _ = p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	p = next.(Picker)
	if p.state != stateMenu {
		t.Error("esc should return to the menu")
	}
}
