package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/scenephys/internal/physics"
)

const (
	canvasWidth     = 72
	canvasHeight    = 20
	historyCapacity = 600

	// Side-view projection window in world units.
	viewHalfWidth = 10.0
	viewHeight    = 14.0
)

type TickMsg time.Time

// Model is the bubbletea program that steps a physics world at a fixed
// rate and renders a side view of its bodies next to live counters.
type Model struct {
	world *physics.World

	running  bool
	showHelp bool
	ticks    int

	stepTimes []float64
	lastStep  time.Duration

	canvas [][]rune
}

func NewModel(world *physics.World) Model {
	canvas := make([][]rune, canvasHeight)
	for i := range canvas {
		canvas[i] = make([]rune, canvasWidth)
	}
	return Model{
		world:     world,
		running:   true,
		stepTimes: make([]float64, 0, historyCapacity),
		canvas:    canvas,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) step() {
	stats := m.world.Statistics()
	before := stats.StepTime
	m.world.Step()
	m.lastStep = stats.StepTime - before
	m.ticks++

	ms := float64(m.lastStep.Microseconds()) / 1000.0
	m.stepTimes = append(m.stepTimes, ms)
	if len(m.stepTimes) > historyCapacity {
		m.stepTimes = m.stepTimes[1:]
	}
}

func (m *Model) draw() {
	for y := range m.canvas {
		for x := range m.canvas[y] {
			m.canvas[y][x] = ' '
		}
	}
	// Ground line at world y = 0.
	groundRow := worldToRow(0)
	if groundRow >= 0 && groundRow < canvasHeight {
		for x := 0; x < canvasWidth; x++ {
			m.canvas[groundRow][x] = '='
		}
	}

	for _, h := range m.world.BodyHandles() {
		body := m.world.Body(h)
		if body == nil {
			continue
		}
		col := int(float64(body.Position.X()+viewHalfWidth) / (2 * viewHalfWidth) * float64(canvasWidth))
		row := worldToRow(body.Position.Y())
		if col < 0 || col >= canvasWidth || row < 0 || row >= canvasHeight {
			continue
		}
		if body.IsSleeping() {
			m.canvas[row][col] = 'o'
		} else {
			m.canvas[row][col] = 'O'
		}
	}
}

func worldToRow(y float32) int {
	return canvasHeight - 1 - int(float64(y)/viewHeight*float64(canvasHeight))
}

func (m Model) View() string {
	var canvas strings.Builder
	for _, row := range m.canvas {
		canvas.WriteString(string(row))
		canvas.WriteByte('\n')
	}

	status := "running"
	if !m.running {
		status = "paused"
	}
	stats := strings.Join([]string{
		StatRow("status", status),
		StatRow("tick", fmt.Sprintf("%d", m.ticks)),
		StatRow("bodies", fmt.Sprintf("%d", m.world.BodyCount())),
		StatRow("colliders", fmt.Sprintf("%d", m.world.ColliderCount())),
		StatRow("joints", fmt.Sprintf("%d", m.world.JointCount())),
		StatRow("step", fmt.Sprintf("%.3f ms", float64(m.lastStep.Microseconds())/1000.0)),
		StatRow("step times", Sparkline(m.stepTimes, 24)),
	}, "\n")

	view := HeaderStyle.Render("scenephys live") + "\n" +
		CanvasStyle.Render(canvas.String()) + "\n" +
		StatsStyle.Render(stats)

	if m.showHelp {
		view += "\n" + HelpStyle.Render("space pause · q quit · ? help")
	} else {
		view += "\n" + HelpStyle.Render("? help")
	}
	return view
}
