package env

import (
	"fmt"
	"math"

	"github.com/san-kum/advhover/internal/adversary"
	"github.com/san-kum/advhover/internal/agent"
	"github.com/san-kum/advhover/internal/body"
	"github.com/san-kum/advhover/internal/dynamo"
	"github.com/san-kum/advhover/internal/integrators"
	"github.com/san-kum/advhover/internal/logging"
	"github.com/san-kum/advhover/internal/physics"
	"github.com/san-kum/advhover/internal/termination"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"
)

type HoverEnv struct {
	opts    Options
	engine  *body.Engine
	agent   agent.Agent
	stepper *physics.Stepper
	sampler adversary.Sampler
	rng     *rand.Rand
	log     *zap.Logger
	alpha   float64

	rates      r3.Vec
	lastAction dynamo.Action
	iteration  int
	steps      int
	done       bool
	failed     bool
}

// NewHoverEnv builds an environment and resets it. A nil sampler applies
// no disturbance.
func NewHoverEnv(opts Options, sampler adversary.Sampler) (*HoverEnv, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if sampler == nil {
		sampler = adversary.Zero{}
	}

	integ, err := integrators.New(opts.Integrator)
	if err != nil {
		return nil, err
	}
	eng, err := body.NewEngine(body.NewCrazyFlieBody(), integ, opts.TimeStep())
	if err != nil {
		return nil, err
	}
	ag, err := agent.New(opts.Agent, eng, opts.AgentParams)
	if err != nil {
		return nil, err
	}
	st, err := physics.New(opts.Physics, ag, eng, opts.PhysicsOptions)
	if err != nil {
		return nil, err
	}

	e := &HoverEnv{
		opts:    opts,
		engine:  eng,
		agent:   ag,
		stepper: st,
		sampler: sampler,
		rng:     rand.New(rand.NewSource(opts.Seed)),
		log:     logging.OrNop(opts.Logger),
		alpha:   1,
	}
	if opts.RateFilterTau > 0 {
		e.alpha = 1 - math.Exp(-opts.TimeStep()/opts.RateFilterTau)
	}
	e.Reset()
	return e, nil
}

func (e *HoverEnv) Options() Options                { return e.opts }
func (e *HoverEnv) Agent() agent.Agent              { return e.agent }
func (e *HoverEnv) Sampler() adversary.Sampler      { return e.sampler }
func (e *HoverEnv) State() dynamo.AgentState        { return e.agent.State() }
func (e *HoverEnv) Time() float64                   { return e.engine.Time() }
func (e *HoverEnv) Steps() int                      { return e.steps }
func (e *HoverEnv) Done() bool                      { return e.done || e.failed }
func (e *HoverEnv) ObservationDim() int             { return dynamo.ObsDim }
func (e *HoverEnv) HoverAction() dynamo.Action      { return e.agent.HoverAction() }
func (e *HoverEnv) FilteredRates() r3.Vec           { return e.rates }
func (e *HoverEnv) Termination() termination.Policy { return e.opts.Termination }

// ActionSpace is the raw duty cycle range of every motor.
func (e *HoverEnv) ActionSpace() []r1.Interval {
	space := make([]r1.Interval, e.agent.ActionDim())
	for i := range space {
		space[i] = r1.Interval{Min: 0, Max: 1}
	}
	return space
}

// Reset respawns the drone at the target with motors at hover. With
// InitNoise set, position, roll and pitch are perturbed uniformly.
func (e *HoverEnv) Reset() (dynamo.Observation, error) {
	s := dynamo.Hovering(e.opts.Target)
	if n := e.opts.InitNoise; n > 0 {
		s.Position = r3.Add(s.Position, r3.Vec{X: e.noise(n), Y: e.noise(n), Z: e.noise(n)})
		s.Orientation = dynamo.RPYToQuat(e.noise(n), e.noise(n), 0)
	}
	e.agent.Reset(s)

	e.rates = e.agent.State().AngularVelocity
	e.lastAction = e.agent.HoverAction()
	e.iteration = 0
	e.steps = 0
	e.done = false
	e.failed = false

	e.log.Debug("episode reset",
		zap.Float64("x", s.Position.X),
		zap.Float64("y", s.Position.Y),
		zap.Float64("z", s.Position.Z),
	)
	return e.observe(), nil
}

// Step runs one control step. The action is checked before anything is
// touched, then held for every substep together with a single disturbance
// sampled from the pre-step state.
func (e *HoverEnv) Step(a dynamo.Action) (StepResult, error) {
	if e.failed {
		return StepResult{}, dynamo.ErrEpisodeFailed
	}
	if e.done {
		return StepResult{}, dynamo.ErrEpisodeDone
	}
	if len(a) != e.agent.ActionDim() {
		return StepResult{}, fmt.Errorf("%w: action has %d entries, want %d", dynamo.ErrDimensionMismatch, len(a), e.agent.ActionDim())
	}
	if !a.IsValid() {
		return StepResult{}, dynamo.ErrInvalidAction
	}

	action := a.Clone()
	dstb := e.sampler.Sample(e.agent.State())

	for i := 0; i < e.opts.AggregateSteps; i++ {
		if err := e.stepper.StepForward(action, dstb); err != nil {
			e.failed = true
			e.log.Warn("engine failure, episode aborted",
				zap.Int("step", e.steps),
				zap.Int("substep", i),
				zap.Error(err),
			)
			return StepResult{}, fmt.Errorf("env: step %d: %w", e.steps, err)
		}
		e.filterRates()
		e.iteration++
	}
	e.steps++

	state := e.agent.State()
	reason := e.opts.Termination.Reason(state)
	done := reason != termination.None

	res := StepResult{
		Observation: dynamo.NewObservation(state, e.rates, action),
		Reward:      e.reward(action, state, done),
		Done:        done,
		Info: Info{
			Disturbance: dstb,
			Iteration:   e.iteration,
			Reason:      reason,
		},
	}
	if done {
		res.Info.Cost = 1
		e.done = true
		roll, pitch, _ := state.RPY()
		e.log.Debug("episode terminated",
			zap.String("reason", string(reason)),
			zap.Int("step", e.steps),
			zap.Float64("z", state.Position.Z),
			zap.Float64("roll_deg", dynamo.RadToDeg(roll)),
			zap.Float64("pitch_deg", dynamo.RadToDeg(pitch)),
		)
	}
	e.lastAction = action
	return res, nil
}

func (e *HoverEnv) observe() dynamo.Observation {
	return dynamo.NewObservation(e.agent.State(), e.rates, e.lastAction)
}

func (e *HoverEnv) filterRates() {
	w := e.agent.State().AngularVelocity
	if e.alpha == 1 {
		e.rates = w
		return
	}
	e.rates = r3.Add(e.rates, r3.Scale(e.alpha, r3.Sub(w, e.rates)))
}

func (e *HoverEnv) reward(a dynamo.Action, s dynamo.AgentState, done bool) float64 {
	w := e.opts.Reward
	roll, pitch, yaw := s.RPY()

	penalty := w.Action*floats.Norm(a, 2) +
		w.ActionRate*floats.Distance(a, e.lastAction, 2) +
		w.Angle*math.Sqrt(roll*roll+pitch*pitch+yaw*yaw) +
		w.Spin*r3.Norm(e.rates) +
		w.Velocity*r3.Norm(s.Velocity)
	if done {
		penalty += w.Terminal
	}
	return -r3.Norm(r3.Sub(s.Position, e.opts.Target)) - penalty
}

func (e *HoverEnv) noise(n float64) float64 {
	return (2*e.rng.Float64() - 1) * n
}
