package env

import (
	"fmt"

	"github.com/san-kum/advhover/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r1"
)

// NormalizeAction exposes [-1, 1] on every action axis and maps it
// linearly onto the wrapped environment's action space. Normalize and
// Denormalize are inverse maps.
type NormalizeAction struct {
	Environment
	space []r1.Interval
}

func NewNormalizeAction(e Environment) *NormalizeAction {
	return &NormalizeAction{Environment: e, space: e.ActionSpace()}
}

func (n *NormalizeAction) ActionSpace() []r1.Interval {
	space := make([]r1.Interval, len(n.space))
	for i := range space {
		space[i] = r1.Interval{Min: -1, Max: 1}
	}
	return space
}

// Normalize maps an action from the inner space onto [-1, 1].
func (n *NormalizeAction) Normalize(a dynamo.Action) dynamo.Action {
	out := make(dynamo.Action, len(a))
	for i, v := range a {
		iv := n.space[i]
		out[i] = 2*((v-iv.Min)/(iv.Max-iv.Min)) - 1
	}
	return out
}

// Denormalize maps an action from [-1, 1] onto the inner space.
func (n *NormalizeAction) Denormalize(a dynamo.Action) dynamo.Action {
	out := make(dynamo.Action, len(a))
	for i, v := range a {
		iv := n.space[i]
		out[i] = (v+1)/2*(iv.Max-iv.Min) + iv.Min
	}
	return out
}

func (n *NormalizeAction) Step(a dynamo.Action) (StepResult, error) {
	if len(a) != len(n.space) {
		return StepResult{}, fmt.Errorf("%w: action has %d entries, want %d", dynamo.ErrDimensionMismatch, len(a), len(n.space))
	}
	return n.Environment.Step(n.Denormalize(a))
}

// TimeLimit ends an episode after a fixed number of control steps. The
// truncating step is reported as Done with Info.TimeLimit set.
type TimeLimit struct {
	Environment
	max     int
	elapsed int
}

func NewTimeLimit(e Environment, maxSteps int) (*TimeLimit, error) {
	if maxSteps < 1 {
		return nil, dynamo.Bounds("max_episode_steps", maxSteps)
	}
	return &TimeLimit{Environment: e, max: maxSteps}, nil
}

func (t *TimeLimit) MaxSteps() int { return t.max }
func (t *TimeLimit) Elapsed() int  { return t.elapsed }

func (t *TimeLimit) Reset() (dynamo.Observation, error) {
	t.elapsed = 0
	return t.Environment.Reset()
}

func (t *TimeLimit) Step(a dynamo.Action) (StepResult, error) {
	if t.elapsed >= t.max {
		return StepResult{}, dynamo.ErrEpisodeDone
	}
	res, err := t.Environment.Step(a)
	if err != nil {
		return res, err
	}
	t.elapsed++
	if t.elapsed >= t.max && !res.Done {
		res.Done = true
		res.Info.TimeLimit = true
	}
	return res, nil
}

func (n *NormalizeAction) Unwrap() Environment { return n.Environment }
func (t *TimeLimit) Unwrap() Environment       { return t.Environment }

// Unwrap strips every decorator and returns the innermost environment.
func Unwrap(e Environment) Environment {
	for {
		w, ok := e.(interface{ Unwrap() Environment })
		if !ok {
			return e
		}
		e = w.Unwrap()
	}
}
