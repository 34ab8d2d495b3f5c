package sim

import (
	"github.com/san-kum/advhover/internal/dynamo"
	"github.com/san-kum/advhover/internal/termination"
)

type Observer interface {
	OnStep(tr dynamo.Transition)
}

// Config bounds an episode. MaxSteps of zero runs until the environment
// reports done. Record keeps every transition in the result.
type Config struct {
	MaxSteps int
	Record   bool
}

type Result struct {
	Seed        uint64
	Steps       int
	Return      float64
	Done        bool
	Truncated   bool
	Reason      termination.Reason
	Transitions []dynamo.Transition
	Metrics     map[string]float64
}

// Summary aggregates an ensemble of episodes.
type Summary struct {
	Episodes   int
	MeanReturn float64
	StdReturn  float64
	MeanSteps  float64
	Terminated int
	Truncated  int
	Reasons    map[termination.Reason]int
}
