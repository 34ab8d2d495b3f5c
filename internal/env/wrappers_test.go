package env

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/advhover/internal/adversary"
	"github.com/san-kum/advhover/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r1"
)

type spaceOnly struct {
	Environment
	space []r1.Interval
}

func (s spaceOnly) ActionSpace() []r1.Interval { return s.space }

func TestNormalizeRoundTrip(t *testing.T) {
	spaces := [][]r1.Interval{
		{{Min: 0, Max: 1}, {Min: 0, Max: 1}, {Min: 0, Max: 1}, {Min: 0, Max: 1}},
		{{Min: -2, Max: 3}, {Min: 0.1, Max: 0.2}, {Min: -1, Max: 1}, {Min: 10, Max: 1000}},
	}
	for _, space := range spaces {
		n := NewNormalizeAction(spaceOnly{space: space})

		low, high := make(dynamo.Action, 4), make(dynamo.Action, 4)
		for i, iv := range space {
			low[i], high[i] = iv.Min, iv.Max
		}
		for i, v := range n.Normalize(low) {
			if math.Abs(v+1) > 1e-12 {
				t.Errorf("low bound %d normalized to %v", i, v)
			}
		}
		for i, v := range n.Normalize(high) {
			if math.Abs(v-1) > 1e-12 {
				t.Errorf("high bound %d normalized to %v", i, v)
			}
		}

		for _, a := range []dynamo.Action{
			{-1, 1, 0, 0.5},
			{0.25, -0.75, 0.999, -0.001},
			{0.3, 0.7, -0.2, 0.9},
		} {
			back := n.Normalize(n.Denormalize(a))
			for i := range a {
				if math.Abs(back[i]-a[i]) > 1e-12 {
					t.Errorf("%v: axis %d round-tripped to %v", a, i, back[i])
				}
			}
		}
	}
}

func TestNormalizeActionSpace(t *testing.T) {
	n := NewNormalizeAction(newEnv(t, nil))
	for i, iv := range n.ActionSpace() {
		if iv.Min != -1 || iv.Max != 1 {
			t.Errorf("axis %d: expected [-1, 1], got %v", i, iv)
		}
	}
	if _, err := n.Step(dynamo.Action{0, 0}); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestNormalizeActionMatchesRaw(t *testing.T) {
	raw := newEnv(t, nil)
	wrapped := NewNormalizeAction(newEnv(t, nil))

	hover := raw.HoverAction()
	for i := 0; i < 20; i++ {
		if _, err := raw.Step(hover); err != nil {
			t.Fatal(err)
		}
		if _, err := wrapped.Step(wrapped.Normalize(hover)); err != nil {
			t.Fatal(err)
		}
	}
	dz := raw.State().Position.Z - wrapped.State().Position.Z
	if math.Abs(dz) > 1e-9 {
		t.Errorf("normalized stepping diverged from raw by %v", dz)
	}
}

func TestTimeLimit(t *testing.T) {
	tl, err := NewTimeLimit(newEnv(t, adversary.Zero{}), 3)
	if err != nil {
		t.Fatal(err)
	}
	hover := Unwrap(tl).(*HoverEnv).HoverAction()

	for episode := 0; episode < 2; episode++ {
		for step := 1; step <= 3; step++ {
			res, err := tl.Step(hover)
			if err != nil {
				t.Fatalf("episode %d step %d: %v", episode, step, err)
			}
			truncated := step == 3
			if res.Done != truncated || res.Info.TimeLimit != truncated {
				t.Errorf("episode %d step %d: done=%v timelimit=%v", episode, step, res.Done, res.Info.TimeLimit)
			}
		}
		if _, err := tl.Step(hover); !errors.Is(err, dynamo.ErrEpisodeDone) {
			t.Errorf("expected ErrEpisodeDone past the limit, got %v", err)
		}
		if _, err := tl.Reset(); err != nil {
			t.Fatal(err)
		}
		if tl.Elapsed() != 0 {
			t.Error("reset should clear the step counter")
		}
	}

	if _, err := NewTimeLimit(tl, 0); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestTimeLimitKeepsTermination(t *testing.T) {
	tl, _ := NewTimeLimit(newEnv(t, adversary.Constant{Torque: dynamo.Disturbance{1e-3, 0, 0}}), 500)
	hover := Unwrap(tl).(*HoverEnv).HoverAction()
	for {
		res, err := tl.Step(hover)
		if err != nil {
			t.Fatal(err)
		}
		if res.Done {
			if res.Info.TimeLimit {
				t.Error("a real termination must not be reported as truncation")
			}
			return
		}
	}
}

func TestUnwrap(t *testing.T) {
	h := newEnv(t, nil)
	tl, _ := NewTimeLimit(h, 10)
	n := NewNormalizeAction(tl)
	if Unwrap(n) != Environment(h) {
		t.Error("Unwrap should reach the innermost environment")
	}
}
