package env

import (
	"math"

	"github.com/san-kum/advhover/internal/agent"
	"github.com/san-kum/advhover/internal/dynamo"
	"github.com/san-kum/advhover/internal/physics"
	"github.com/san-kum/advhover/internal/termination"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultSimFrequency   = 200
	DefaultAggregateSteps = 2
	DefaultRateFilterTau  = 0.01
)

// RewardWeights scale the penalty terms subtracted from the negative
// distance to target.
type RewardWeights struct {
	Action     float64
	ActionRate float64
	Angle      float64
	Spin       float64
	Velocity   float64
	Terminal   float64
}

func DefaultRewardWeights() RewardWeights {
	return RewardWeights{
		Action:   1e-4,
		Spin:     1e-4,
		Terminal: 100,
	}
}

// Options configures a HoverEnv. InitNoise is the half-width of the uniform
// spawn perturbation, in meters for position and radians for roll and
// pitch. RateFilterTau is the time constant of the gyro low-pass filter;
// zero passes raw rates through.
type Options struct {
	Physics        physics.Kind
	Agent          agent.Kind
	Integrator     string
	SimFrequency   float64
	AggregateSteps int
	AgentParams    agent.Params
	PhysicsOptions physics.Options
	Termination    termination.Policy
	Reward         RewardWeights
	Target         r3.Vec
	InitNoise      float64
	RateFilterTau  float64
	Seed           uint64
	Logger         *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		Physics:        physics.KindRigidAdversary,
		Agent:          agent.KindCrazyFlieAdversary,
		Integrator:     "semi_implicit",
		SimFrequency:   DefaultSimFrequency,
		AggregateSteps: DefaultAggregateSteps,
		AgentParams:    agent.DefaultParams(),
		PhysicsOptions: physics.DefaultOptions(),
		Termination:    termination.Adversarial(),
		Reward:         DefaultRewardWeights(),
		Target:         r3.Vec{Z: 1},
		RateFilterTau:  DefaultRateFilterTau,
	}
}

// TimeStep is the physics substep length.
func (o Options) TimeStep() float64 { return 1 / o.SimFrequency }

// ControlFrequency is the rate at which Step is expected to be called.
func (o Options) ControlFrequency() float64 {
	return o.SimFrequency / float64(o.AggregateSteps)
}

func (o Options) Validate() error {
	if !(o.SimFrequency > 0) || math.IsInf(o.SimFrequency, 0) {
		return dynamo.Bounds("sim_frequency", o.SimFrequency)
	}
	if o.AggregateSteps < 1 {
		return dynamo.Bounds("aggregate_steps", o.AggregateSteps)
	}
	if o.InitNoise < 0 || math.IsNaN(o.InitNoise) {
		return dynamo.Bounds("init_noise", o.InitNoise)
	}
	if o.RateFilterTau < 0 || math.IsNaN(o.RateFilterTau) {
		return dynamo.Bounds("rate_filter_tau", o.RateFilterTau)
	}
	if o.Target.Z < o.Termination.MinAltitude {
		return dynamo.Bounds("target_z", o.Target.Z)
	}
	return nil
}
