package physics

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/advhover/internal/agent"
	"github.com/san-kum/advhover/internal/body"
	"github.com/san-kum/advhover/internal/dynamo"
)

type Kind string

const (
	KindRigid          Kind = "rigid"
	KindRigidAdversary Kind = "rigid_adversary"
)

type variant struct {
	adversarial bool
}

var variants = map[Kind]variant{
	KindRigid:          {adversarial: false},
	KindRigidAdversary: {adversarial: true},
}

func ParseKind(name string) (Kind, error) {
	k := Kind(name)
	if _, ok := variants[k]; !ok {
		return "", fmt.Errorf("%w: physics %q", dynamo.ErrUnknownKind, name)
	}
	return k, nil
}

func Kinds() []string {
	names := make([]string, 0, len(variants))
	for k := range variants {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}

type Options struct {
	Drag            Drag
	GroundEffect    GroundEffect
	UseGroundEffect bool
}

func DefaultOptions() Options {
	return Options{
		Drag:            DefaultDrag(),
		GroundEffect:    DefaultGroundEffect(),
		UseGroundEffect: true,
	}
}

type Stepper struct {
	kind      Kind
	agent     agent.Agent
	engine    *body.Engine
	adversary agent.TorqueReceiver
	opts      Options
}

// New builds a stepper of the given kind over an agent and the engine it
// queues loads on.
func New(kind Kind, ag agent.Agent, eng *body.Engine, opts Options) (*Stepper, error) {
	v, ok := variants[kind]
	if !ok {
		return nil, fmt.Errorf("%w: physics %q", dynamo.ErrUnknownKind, kind)
	}
	if !nonNegative(opts.Drag.Coeff) {
		return nil, dynamo.Bounds("drag_coeff", opts.Drag.Coeff)
	}
	if opts.UseGroundEffect && !nonNegative(opts.GroundEffect.Threshold) {
		return nil, dynamo.Bounds("ground_effect_threshold", opts.GroundEffect.Threshold)
	}

	s := &Stepper{kind: kind, agent: ag, engine: eng, opts: opts}
	if v.adversarial {
		tr, ok := ag.(agent.TorqueReceiver)
		if !ok {
			return nil, fmt.Errorf("physics %q needs an agent with disturbance channels, got %q", kind, ag.Kind())
		}
		s.adversary = tr
	}
	return s, nil
}

func (s *Stepper) Kind() Kind { return s.kind }

// StepForward runs one physics substep with action held and disturbance
// dstb applied. Only the x and y disturbance components are used.
func (s *Stepper) StepForward(action dynamo.Action, dstb dynamo.Disturbance) error {
	if len(action) != s.agent.ActionDim() {
		return fmt.Errorf("%w: action has %d entries, want %d", dynamo.ErrDimensionMismatch, len(action), s.agent.ActionDim())
	}
	if !action.IsValid() {
		return dynamo.ErrInvalidAction
	}

	saved := s.agent.Motors().Snapshot()
	motor := s.agent.ApplyAction(action)

	s.agent.ApplyMotorForces(motor.Thrust)
	s.agent.ApplyZTorque(motor.YawTorque)

	if s.adversary != nil {
		s.adversary.ApplyXTorque(dstb[0])
		s.adversary.ApplyYTorque(dstb[1])
	}

	state := s.agent.State()
	s.agent.ApplyForce(s.opts.Drag.Force(s.agent.MotorState(), state))

	if s.opts.UseGroundEffect {
		if ge, ok := s.opts.GroundEffect.Forces(state, s.agent.MotorPositions(), motor.Thrust); ok {
			s.agent.ApplyMotorForces(ge)
		}
	}

	if err := s.engine.Step(); err != nil {
		s.agent.Motors().Restore(saved)
		return fmt.Errorf("physics: integrate: %w", err)
	}
	s.agent.UpdateInformation()
	return nil
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}
