package body

import (
	"github.com/san-kum/advhover/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Frame selects how an injected vector is interpreted.
type Frame int

const (
	WorldFrame Frame = iota
	LinkFrame
)

func (f Frame) String() string {
	if f == LinkFrame {
		return "link"
	}
	return "world"
}

type Engine struct {
	body  *RigidBody
	integ dynamo.Integrator
	dt    float64

	x     dynamo.State
	t     float64
	steps int

	// world-frame force, body-frame torque
	force  r3.Vec
	torque r3.Vec
}

func NewEngine(b *RigidBody, integ dynamo.Integrator, dt float64) (*Engine, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if dt <= 0 {
		return nil, dynamo.Bounds("time_step", dt)
	}
	e := &Engine{body: b, integ: integ, dt: dt}
	e.Reset(dynamo.Hovering(r3.Vec{}))
	return e, nil
}

// Reset places the body in s, zeroes the clock and drops queued loads.
func (e *Engine) Reset(s dynamo.AgentState) {
	s.Orientation = dynamo.Normalize(s.Orientation)
	e.x = s.Vector()
	e.t = 0
	e.steps = 0
	e.clearLoads()
}

func (e *Engine) Body() *RigidBody  { return e.body }
func (e *Engine) TimeStep() float64 { return e.dt }
func (e *Engine) Time() float64     { return e.t }
func (e *Engine) Steps() int        { return e.steps }

func (e *Engine) State() dynamo.AgentState {
	return dynamo.AgentStateFrom(e.x)
}

// ApplyForce queues force f acting at offset at from the center of mass.
// The offset is always given in the body frame; frame selects how f is read.
func (e *Engine) ApplyForce(f, at r3.Vec, frame Frame) {
	s := e.State()
	var fWorld, fBody r3.Vec
	if frame == LinkFrame {
		fBody = f
		fWorld = s.ToWorld(f)
	} else {
		fWorld = f
		fBody = s.ToBody(f)
	}
	e.force = r3.Add(e.force, fWorld)
	if at != (r3.Vec{}) {
		e.torque = r3.Add(e.torque, r3.Cross(at, fBody))
	}
}

// ApplyTorque queues a torque about the center of mass.
func (e *Engine) ApplyTorque(tau r3.Vec, frame Frame) {
	if frame == WorldFrame {
		tau = e.State().ToBody(tau)
	}
	e.torque = r3.Add(e.torque, tau)
}

// QueuedLoads reports the world-frame force and body-frame torque that the
// next Step will consume.
func (e *Engine) QueuedLoads() (force, torque r3.Vec) {
	return e.force, e.torque
}

// Step integrates one fixed time step with every queued load.
func (e *Engine) Step() error {
	u := dynamo.Control{e.force.X, e.force.Y, e.force.Z, e.torque.X, e.torque.Y, e.torque.Z}
	e.clearLoads()

	next := e.integ.Step(e.body, e.x, u, e.t, e.dt)
	if !next.IsValid() {
		return &dynamo.SimulationError{
			Step:    e.steps,
			Time:    e.t,
			State:   e.x.Clone(),
			Wrapped: dynamo.ErrInvalidState,
		}
	}

	s := dynamo.AgentStateFrom(next)
	s.Orientation = dynamo.Normalize(s.Orientation)
	e.x = s.Vector()
	e.t += e.dt
	e.steps++
	return nil
}

func (e *Engine) clearLoads() {
	e.force = r3.Vec{}
	e.torque = r3.Vec{}
}
