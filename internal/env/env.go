package env

import (
	"github.com/san-kum/advhover/internal/dynamo"
	"github.com/san-kum/advhover/internal/termination"
	"gonum.org/v1/gonum/spatial/r1"
)

type Environment interface {
	Reset() (dynamo.Observation, error)
	Step(a dynamo.Action) (StepResult, error)
	ActionSpace() []r1.Interval
	ObservationDim() int
	State() dynamo.AgentState
}

// Info carries diagnostics alongside every step. Cost is 1 on the step
// that leaves the safe envelope and 0 otherwise.
type Info struct {
	Cost        float64
	Disturbance dynamo.Disturbance
	Iteration   int
	Reason      termination.Reason
	TimeLimit   bool
}

type StepResult struct {
	Observation dynamo.Observation
	Reward      float64
	Done        bool
	Info        Info
}
