package agent

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/advhover/internal/body"
	"github.com/san-kum/advhover/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

type Kind string

const (
	KindCrazyFlie          Kind = "cf21x_bullet"
	KindCrazyFlieAdversary Kind = "cf21x_bullet_adversary"
)

// Agent is the quadrotor as the physics stepper sees it: it turns actions
// into motor forces, queues loads on the engine and caches the state read
// back after every engine step.
type Agent interface {
	Kind() Kind
	ActionDim() int
	HoverAction() dynamo.Action

	ApplyAction(a dynamo.Action) MotorForces
	ApplyMotorForces(thrust [NumMotors]float64)
	ApplyZTorque(tau float64)
	ApplyForce(f r3.Vec)

	Motors() *MotorModel
	MotorState() [NumMotors]float64
	MotorPositions() [NumMotors]r3.Vec

	State() dynamo.AgentState
	UpdateInformation()
	Reset(s dynamo.AgentState)
}

// TorqueReceiver accepts the roll and pitch disturbance channels.
type TorqueReceiver interface {
	ApplyXTorque(tau float64)
	ApplyYTorque(tau float64)
}

type Params struct {
	ArmLength         float64
	Thrust2Weight     float64
	KMKF              float64
	MotorTimeConstant float64
	LatencySteps      int
	UseMotorDynamics  bool
}

func DefaultParams() Params {
	return Params{
		ArmLength:         0.0397,
		Thrust2Weight:     2.25,
		KMKF:              7.94e-12 / 3.16e-10,
		MotorTimeConstant: 0.08,
		LatencySteps:      0,
		UseMotorDynamics:  true,
	}
}

func (p Params) Validate() error {
	if p.ArmLength <= 0 {
		return dynamo.Bounds("arm_length", p.ArmLength)
	}
	if p.Thrust2Weight <= 1 {
		return dynamo.Bounds("thrust2weight", p.Thrust2Weight)
	}
	if p.KMKF < 0 {
		return dynamo.Bounds("km_kf", p.KMKF)
	}
	if p.MotorTimeConstant < 0 {
		return dynamo.Bounds("motor_time_constant", p.MotorTimeConstant)
	}
	if p.LatencySteps < 0 {
		return dynamo.Bounds("latency_steps", p.LatencySteps)
	}
	return nil
}

// HoverCommand is the normalized command whose thrust balances gravity.
func (p Params) HoverCommand() float64 {
	return 1 / p.Thrust2Weight
}

type CrazyFlie struct {
	engine    *body.Engine
	motors    *MotorModel
	params    Params
	positions [NumMotors]r3.Vec
	state     dynamo.AgentState
}

func NewCrazyFlie(eng *body.Engine, p Params) (*CrazyFlie, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b := eng.Body()
	d := p.ArmLength / math.Sqrt2
	c := &CrazyFlie{
		engine: eng,
		motors: NewMotorModel(p, b.Mass*b.Gravity, eng.TimeStep()),
		params: p,
		// X layout: front-right, rear-right, rear-left, front-left
		positions: [NumMotors]r3.Vec{
			{X: d, Y: -d},
			{X: -d, Y: -d},
			{X: -d, Y: d},
			{X: d, Y: d},
		},
	}
	c.UpdateInformation()
	return c, nil
}

func (c *CrazyFlie) Kind() Kind          { return KindCrazyFlie }
func (c *CrazyFlie) ActionDim() int      { return NumMotors }
func (c *CrazyFlie) Params() Params      { return c.params }
func (c *CrazyFlie) Motors() *MotorModel { return c.motors }

func (c *CrazyFlie) HoverAction() dynamo.Action {
	a := make(dynamo.Action, NumMotors)
	for i := range a {
		a[i] = c.params.HoverCommand()
	}
	return a
}

func (c *CrazyFlie) ApplyAction(a dynamo.Action) MotorForces {
	return c.motors.Apply(a)
}

func (c *CrazyFlie) ApplyMotorForces(thrust [NumMotors]float64) {
	for i, f := range thrust {
		c.engine.ApplyForce(r3.Vec{Z: f}, c.positions[i], body.LinkFrame)
	}
}

func (c *CrazyFlie) ApplyZTorque(tau float64) {
	c.engine.ApplyTorque(r3.Vec{Z: tau}, body.LinkFrame)
}

// ApplyForce queues a body-frame force at the center of mass.
func (c *CrazyFlie) ApplyForce(f r3.Vec) {
	c.engine.ApplyForce(f, r3.Vec{}, body.LinkFrame)
}

func (c *CrazyFlie) MotorState() [NumMotors]float64    { return c.motors.State() }
func (c *CrazyFlie) MotorPositions() [NumMotors]r3.Vec { return c.positions }

func (c *CrazyFlie) State() dynamo.AgentState { return c.state }

func (c *CrazyFlie) UpdateInformation() {
	c.state = c.engine.State()
}

func (c *CrazyFlie) Reset(s dynamo.AgentState) {
	c.engine.Reset(s)
	c.motors.Reset(c.params.HoverCommand())
	c.UpdateInformation()
}

// AdversaryCrazyFlie additionally exposes the roll and pitch torque channels
// used by the disturbance input.
type AdversaryCrazyFlie struct {
	*CrazyFlie
}

func NewAdversaryCrazyFlie(eng *body.Engine, p Params) (*AdversaryCrazyFlie, error) {
	c, err := NewCrazyFlie(eng, p)
	if err != nil {
		return nil, err
	}
	return &AdversaryCrazyFlie{CrazyFlie: c}, nil
}

func (a *AdversaryCrazyFlie) Kind() Kind { return KindCrazyFlieAdversary }

// ApplyXTorque queues a roll torque in the body frame.
func (a *AdversaryCrazyFlie) ApplyXTorque(tau float64) {
	a.engine.ApplyTorque(r3.Vec{X: tau}, body.LinkFrame)
}

// ApplyYTorque queues a pitch torque in the body frame.
func (a *AdversaryCrazyFlie) ApplyYTorque(tau float64) {
	a.engine.ApplyTorque(r3.Vec{Y: tau}, body.LinkFrame)
}

var registry = map[Kind]func(*body.Engine, Params) (Agent, error){
	KindCrazyFlie: func(e *body.Engine, p Params) (Agent, error) {
		c, err := NewCrazyFlie(e, p)
		if err != nil {
			return nil, err
		}
		return c, nil
	},
	KindCrazyFlieAdversary: func(e *body.Engine, p Params) (Agent, error) {
		a, err := NewAdversaryCrazyFlie(e, p)
		if err != nil {
			return nil, err
		}
		return a, nil
	},
}

// New builds the agent registered under kind.
func New(kind Kind, eng *body.Engine, p Params) (Agent, error) {
	fn, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: agent %q", dynamo.ErrUnknownKind, kind)
	}
	return fn(eng, p)
}

func Kinds() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}
