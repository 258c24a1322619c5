package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/diskbox/internal/sim"
)

const (
	width           = 60
	height          = 22
	historyCapacity = 600
	maxStepsPerTick = 64
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Builder creates a fresh simulator; the live view calls it again on reset.
type Builder func() (*sim.Simulator, error)

// Model steps a simulator on every tick and draws the box on a braille
// canvas next to the running pressure and energy.
type Model struct {
	build           Builder
	sim             *sim.Simulator
	dt              float64
	title           string
	canvas          *Canvas
	running         bool
	stepsPerTick    int
	last            sim.Summary
	pressureHistory []float64
	energyHistory   []float64
	collisions      int
	rebounds        int
	err             error
}

func NewModel(build Builder, dt float64, title string) (Model, error) {
	s, err := build()
	if err != nil {
		return Model{}, err
	}
	m := Model{
		build:        build,
		sim:          s,
		dt:           dt,
		title:        title,
		canvas:       NewCanvas(width, height),
		running:      true,
		stepsPerTick: 1,
	}
	m.draw()
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Err reports the error that stopped the simulation, if any.
func (m Model) Err() error { return m.err }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case ".":
			if !m.running {
				m.step()
			}
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		}
		m.draw()
	case TickMsg:
		if m.running && m.err == nil {
			for i := 0; i < m.stepsPerTick && m.err == nil; i++ {
				m.step()
			}
		}
		m.draw()
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	summary, err := m.sim.Step(m.dt)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.last = summary
	m.collisions += summary.Collisions
	m.rebounds += summary.Rebounds

	m.pressureHistory = appendCapped(m.pressureHistory, summary.Pressure)
	m.energyHistory = appendCapped(m.energyHistory, summary.Energy)
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) reset() {
	s, err := m.build()
	if err != nil {
		m.err = err
		return
	}
	m.sim = s
	m.err = nil
	m.last = sim.Summary{}
	m.collisions, m.rebounds = 0, 0
	m.pressureHistory = m.pressureHistory[:0]
	m.energyHistory = m.energyHistory[:0]
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(Title.Render(strings.ToUpper(m.title)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(ErrorStyle.Render("STOPPED") + "\n\n")
	case m.running:
		s.WriteString(StatusRunning.Render(fmt.Sprintf("RUNNING x%d", m.stepsPerTick)) + "\n\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.pressureHistory) > 1 {
		chart := asciigraph.Plot(m.pressureHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Pressure"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(Metric("Step", fmt.Sprintf("%d", m.sim.StepCount())) + "\n")
	s.WriteString(Metric("Time", fmt.Sprintf("%.2f", float64(m.sim.StepCount())*m.dt)) + "\n")
	s.WriteString(Metric("Particles", fmt.Sprintf("%d", len(m.sim.Particles()))) + "\n")
	s.WriteString(Metric("Pressure", fmt.Sprintf("%.4f", m.last.Pressure)) + "\n")
	s.WriteString(Metric("Energy", fmt.Sprintf("%.4f", m.last.Energy)) + "\n")
	s.WriteString(Metric("Collisions", fmt.Sprintf("%d", m.collisions)) + "\n")
	s.WriteString(Metric("Rebounds", fmt.Sprintf("%d", m.rebounds)) + "\n")
	if len(m.energyHistory) > 0 {
		s.WriteString(MetricLabel.Render("Energy") + Sparkline(m.energyHistory, 20) + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + ErrorStyle.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\n.:Step   +/-:Speed"))

	canvasView := canvasStyle.Render(m.canvas.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

// project maps box coordinates to canvas sub-pixels, keeping the aspect
// ratio and flipping y so +y points up.
func (m *Model) project(x, y float64) (int, int) {
	box := m.sim.Boundary()
	scale := m.scale()
	px := (x - box.XMin()) * scale
	py := (box.YMax() - y) * scale
	return int(math.Round(px)), int(math.Round(py))
}

func (m *Model) scale() float64 {
	box := m.sim.Boundary()
	cw, ch := float64(m.canvas.Width*2-1), float64(m.canvas.Height*4-1)
	return math.Min(cw/box.Width(), ch/box.Height())
}

func (m *Model) draw() {
	m.canvas.Clear()

	box := m.sim.Boundary()
	x0, y0 := m.project(box.XMin(), box.YMax())
	x1, y1 := m.project(box.XMax(), box.YMin())
	m.canvas.DrawRect(x0, y0, x1, y1)

	scale := m.scale()
	ps := m.sim.Particles()
	for i := range ps {
		if !ps[i].IsFinite() {
			continue
		}
		cx, cy := m.project(ps[i].X(), ps[i].Y())
		m.canvas.DrawCircle(cx, cy, int(ps[i].Radius()*scale))
	}
}
