package viz

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/advhover/internal/adversary"
	"github.com/san-kum/advhover/internal/control"
	"github.com/san-kum/advhover/internal/dynamo"
	"github.com/san-kum/advhover/internal/env"
	"github.com/san-kum/advhover/internal/storage"
)

func TestCanvasSetAndLine(t *testing.T) {
	c := NewCanvas(4, 2)
	w, h := c.Dots()
	if w != 8 || h != 8 {
		t.Fatalf("dots = %dx%d, want 8x8", w, h)
	}

	c.Set(-1, 0)
	c.Set(100, 100)
	if strings.ContainsFunc(c.String(), func(r rune) bool { return r != brailleBase && r != '\n' }) {
		t.Error("out of range dots should be ignored")
	}

	c.Line(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal dot (%d,%d) not set", i, i)
		}
	}
	if c.IsSet(7, 0) {
		t.Error("unexpected dot at (7,0)")
	}

	c.Clear()
	if c.IsSet(0, 0) {
		t.Error("Clear left a dot")
	}
}

func TestViewportProject(t *testing.T) {
	c := NewCanvas(10, 5)
	vp := Viewport{HMin: -1, HMax: 1, VMin: 0, VMax: 2}

	x, y := vp.Project(c, -1, 2)
	if x != 0 || y != 0 {
		t.Errorf("top left = (%d,%d), want (0,0)", x, y)
	}
	x, y = vp.Project(c, 1, 0)
	if x != 19 || y != 19 {
		t.Errorf("bottom right = (%d,%d), want (19,19)", x, y)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 5); got != "─────" {
		t.Errorf("empty sparkline = %q", got)
	}
	if got := Sparkline([]float64{1, 2, 3}, 3); !strings.Contains(got, "█") {
		t.Errorf("sparkline %q has no full bar", got)
	}
}

func TestPlotColumn(t *testing.T) {
	traj := &storage.Trajectory{
		Columns: []string{"step", "z", "roll"},
		Rows:    [][]float64{{1, 1, 0}, {2, 1.1, 0.1}, {3, 1.2, 0.2}},
	}
	graph, err := PlotColumn(traj, "roll", 5, 20)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(graph, "roll (deg)") {
		t.Errorf("missing degree caption in\n%s", graph)
	}

	if _, err := PlotColumn(traj, "vx", 5, 20); err == nil {
		t.Error("expected error for missing column")
	}

	var buf bytes.Buffer
	if err := PlotEpisode(&buf, traj, []string{"z", "roll"}, 5, 20); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "z") {
		t.Error("episode plot missing altitude chart")
	}
}

func newModel(t *testing.T, sampler adversary.Sampler, maxSteps int) Model {
	t.Helper()
	h, err := env.NewHoverEnv(env.DefaultOptions(), sampler)
	if err != nil {
		t.Fatal(err)
	}
	tl, err := env.NewTimeLimit(h, maxSteps)
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewModel(tl, control.NewHover(tl.ActionSpace(), h.HoverAction()[0]), "hover")
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelSteps(t *testing.T) {
	m := newModel(t, adversary.Zero{}, 3)

	m = update(m, TickMsg{})
	if m.Steps() != 2 {
		t.Fatalf("steps after one frame = %d, want 2", m.Steps())
	}

	m = update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if m.Running() {
		t.Fatal("space should pause")
	}
	m = update(m, TickMsg{})
	if m.Steps() != 2 {
		t.Errorf("paused model stepped to %d", m.Steps())
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if m.Steps() != 3 || !m.Done() {
		t.Errorf("single step: steps=%d done=%v", m.Steps(), m.Done())
	}
	if !strings.Contains(m.View(), "TIME LIMIT") {
		t.Error("view should show the time limit status")
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if m.Steps() != 0 || m.Done() {
		t.Errorf("reset: steps=%d done=%v", m.Steps(), m.Done())
	}
}

func TestModelShowsTermination(t *testing.T) {
	m := newModel(t, adversary.Constant{Torque: dynamo.Disturbance{1e-3, 0, 0}}, 500)
	for i := 0; i < 100 && !m.Done(); i++ {
		m = update(m, TickMsg{})
	}
	if !m.Done() {
		t.Fatal("sustained torque should end the episode")
	}
	if m.Err() != nil {
		t.Fatalf("unexpected error: %v", m.Err())
	}
	if !strings.Contains(m.View(), "TERMINATED (attitude)") {
		t.Error("view should name the termination reason")
	}
}
