package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/advhover/internal/agent"
	"github.com/san-kum/advhover/internal/control"
	"github.com/san-kum/advhover/internal/dynamo"
	"github.com/san-kum/advhover/internal/env"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	canvasWidth     = 34
	canvasHeight    = 12
	historyCapacity = 300
	trailLength     = 60
	frameRate       = 30
	maxStepsFrame   = 16
)

// both views span two meters around the origin
var view = Viewport{HMin: -1, HMax: 1, VMin: 0, VMax: 2}

type TickMsg time.Time

// Model flies a policy through an environment a few control steps per
// frame.
type Model struct {
	env    env.Environment
	policy control.Policy
	title  string
	theme  Theme
	styles styles

	obs   dynamo.Observation
	state dynamo.AgentState
	last  env.StepResult
	steps int
	ret   float64
	done  bool
	err   error

	running       bool
	showHelp      bool
	stepsPerFrame int

	altitude []float64
	tilt     []float64
	trail    []r3.Vec
	front    *Canvas
	side     *Canvas
}

// NewModel resets e and p and returns a model ready to run.
func NewModel(e env.Environment, p control.Policy, title string) (Model, error) {
	m := Model{
		env:           e,
		policy:        p,
		title:         title,
		theme:         Themes[0],
		styles:        newStyles(Themes[0]),
		running:       true,
		stepsPerFrame: 2,
		front:         NewCanvas(canvasWidth, canvasHeight),
		side:          NewCanvas(canvasWidth, canvasHeight),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// WithTheme selects a theme by name.
func (m Model) WithTheme(name string) Model {
	m.theme = GetTheme(name)
	m.styles = newStyles(m.theme)
	return m
}

func (m Model) Steps() int      { return m.steps }
func (m Model) Return() float64 { return m.ret }
func (m Model) Done() bool      { return m.done }
func (m Model) Running() bool   { return m.running }
func (m Model) Err() error      { return m.err }

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "+", "=":
			m.stepsPerFrame = min(m.stepsPerFrame*2, maxStepsFrame)
		case "-", "_":
			m.stepsPerFrame = max(m.stepsPerFrame/2, 1)
		case "t":
			m.theme = m.theme.Next()
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			for i := 0; i < m.stepsPerFrame && !m.done; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) reset() error {
	obs, err := m.env.Reset()
	if err != nil {
		return err
	}
	m.policy.Reset()
	m.obs = obs
	m.state = m.env.State()
	m.last = env.StepResult{}
	m.steps = 0
	m.ret = 0
	m.done = false
	m.err = nil
	m.altitude = m.altitude[:0]
	m.tilt = m.tilt[:0]
	m.trail = m.trail[:0]
	m.record()
	return nil
}

func (m *Model) step() {
	if m.done {
		return
	}
	res, err := m.env.Step(m.policy.Act(m.obs))
	if err != nil {
		m.err = err
		m.done = true
		return
	}
	m.obs = res.Observation
	m.state = m.env.State()
	m.last = res
	m.steps++
	m.ret += res.Reward
	m.done = res.Done
	m.record()
}

func (m *Model) record() {
	roll, pitch, _ := m.state.RPY()
	m.altitude = appendCapped(m.altitude, m.state.Altitude(), historyCapacity)
	m.tilt = appendCapped(m.tilt, dynamo.RadToDeg(math.Max(math.Abs(roll), math.Abs(pitch))), historyCapacity)
	m.trail = append(m.trail, m.state.Position)
	if len(m.trail) > trailLength {
		m.trail = m.trail[1:]
	}
}

func appendCapped(s []float64, v float64, capacity int) []float64 {
	s = append(s, v)
	if len(s) > capacity {
		s = s[1:]
	}
	return s
}

// draw renders the front and side views.
func (m *Model) draw() {
	roll, pitch, _ := m.state.RPY()
	pos := m.state.Position
	// positive roll lowers the +y side, positive pitch lowers the +x side
	drawView(m.front, view, m.trail, func(p r3.Vec) float64 { return p.Y }, pos.Y, pos.Z, -roll)
	drawView(m.side, view, m.trail, func(p r3.Vec) float64 { return p.X }, pos.X, pos.Z, -pitch)
}

func drawView(c *Canvas, vp Viewport, trail []r3.Vec, horizontal func(r3.Vec) float64, h, v, angle float64) {
	c.Clear()

	gx0, gy := vp.Project(c, vp.HMin, 0)
	gx1, _ := vp.Project(c, vp.HMax, 0)
	_, ht := c.Dots()
	gy = min(gy, ht-1)
	c.Line(gx0, gy, gx1, gy)

	for _, p := range trail {
		x, y := vp.Project(c, horizontal(p), p.Z)
		c.Set(x, y)
	}

	cx, cy := vp.Project(c, h, v)
	// arms drawn at four times scale to stay visible
	arm := 4 * agent.DefaultParams().ArmLength * vp.Scale(c)
	dx, dy := arm*math.Cos(angle), arm*math.Sin(angle)
	lx, ly := cx-int(math.Round(dx)), cy+int(math.Round(dy))
	rx, ry := cx+int(math.Round(dx)), cy-int(math.Round(dy))
	c.Line(lx, ly, rx, ry)
	c.Line(lx-2, ly-1, lx+2, ly-1)
	c.Line(rx-2, ry-1, rx+2, ry-1)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.styles.failed.Render("FAILED: " + m.err.Error())
	case m.done && m.last.Info.TimeLimit:
		return m.styles.running.Render("TIME LIMIT")
	case m.done:
		return m.styles.failed.Render(fmt.Sprintf("TERMINATED (%s)", m.last.Info.Reason))
	case !m.running:
		return m.styles.paused.Render("PAUSED")
	}
	return m.styles.running.Render(fmt.Sprintf("RUNNING x%d", m.stepsPerFrame))
}

func (m Model) View() string {
	m.draw()
	st := m.styles

	views := lipgloss.JoinHorizontal(lipgloss.Top,
		st.panel.Render("front\n"+m.front.String()),
		st.panel.Render("side\n"+m.side.String()),
	)

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	roll, pitch, yaw := m.state.RPY()
	d := m.last.Info.Disturbance
	rows := []struct{ label, value string }{
		{"Step", fmt.Sprintf("%d", m.steps)},
		{"Position", fmt.Sprintf("%+.3f %+.3f %+.3f", m.state.Position.X, m.state.Position.Y, m.state.Position.Z)},
		{"RPY (deg)", fmt.Sprintf("%+.1f %+.1f %+.1f", dynamo.RadToDeg(roll), dynamo.RadToDeg(pitch), dynamo.RadToDeg(yaw))},
		{"Torque", fmt.Sprintf("%+.1e %+.1e %+.1e", d[0], d[1], d[2])},
		{"Reward", fmt.Sprintf("%.4f", m.last.Reward)},
		{"Return", fmt.Sprintf("%.3f", m.ret)},
	}
	for _, r := range rows {
		s.WriteString(st.label.Render(r.label) + st.value.Render(r.value) + "\n")
	}

	if len(m.altitude) > 1 {
		s.WriteString("\n" + st.graph.Render(asciigraph.Plot(m.altitude,
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("altitude (m)"))) + "\n")
	}
	if len(m.tilt) > 1 {
		s.WriteString("\n" + st.graph.Render(asciigraph.Plot(m.tilt,
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("tilt (deg)"))) + "\n")
	}
	s.WriteString(st.help.Render("SP:Pause N:Step R:Reset +/-:Speed T:Theme ?:Help Q:Quit"))

	layout := lipgloss.JoinHorizontal(lipgloss.Top, views, st.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + layout
	}
	return layout
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  N        - Single step when paused  ║
║  R        - Reset episode            ║
║  + / -    - Steps per frame          ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`
