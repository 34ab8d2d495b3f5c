package body

import (
	"fmt"

	"github.com/san-kum/advhover/internal/dynamo"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const DefaultGravity = 9.81

// RigidBody is a single body with a diagonal inertia tensor. Its state
// vector follows the dynamo rigid-body layout and its control vector is
// the net world-frame force followed by the net body-frame torque.
type RigidBody struct {
	Mass    float64
	Inertia r3.Vec
	Gravity float64
}

// NewCrazyFlieBody returns the mass properties of a Crazyflie 2.1.
func NewCrazyFlieBody() *RigidBody {
	return &RigidBody{
		Mass:    0.027,
		Inertia: r3.Vec{X: 1.4e-5, Y: 1.4e-5, Z: 2.17e-5},
		Gravity: DefaultGravity,
	}
}

func (b *RigidBody) StateDim() int   { return dynamo.RigidBodyDim }
func (b *RigidBody) ControlDim() int { return 6 }
func (b *RigidBody) ConfigDim() int  { return dynamo.RigidConfigDim }

func (b *RigidBody) Validate() error {
	if b.Mass <= 0 {
		return dynamo.Bounds("mass", b.Mass)
	}
	if b.Inertia.X <= 0 || b.Inertia.Y <= 0 || b.Inertia.Z <= 0 {
		return dynamo.Bounds("inertia", b.Inertia)
	}
	if b.Gravity < 0 {
		return dynamo.Bounds("gravity", b.Gravity)
	}
	return nil
}

func (b *RigidBody) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	s := dynamo.AgentStateFrom(x)

	var force, torque r3.Vec
	if len(u) >= 6 {
		force = r3.Vec{X: u[0], Y: u[1], Z: u[2]}
		torque = r3.Vec{X: u[3], Y: u[4], Z: u[5]}
	}

	w := s.AngularVelocity
	qdot := quat.Scale(0.5, quat.Mul(s.Orientation, quat.Number{Imag: w.X, Jmag: w.Y, Kmag: w.Z}))

	acc := r3.Scale(1/b.Mass, force)
	acc.Z -= b.Gravity

	iw := r3.Vec{X: b.Inertia.X * w.X, Y: b.Inertia.Y * w.Y, Z: b.Inertia.Z * w.Z}
	net := r3.Sub(torque, r3.Cross(w, iw))
	alpha := r3.Vec{X: net.X / b.Inertia.X, Y: net.Y / b.Inertia.Y, Z: net.Z / b.Inertia.Z}

	return dynamo.State{
		s.Velocity.X, s.Velocity.Y, s.Velocity.Z,
		qdot.Real, qdot.Imag, qdot.Jmag, qdot.Kmag,
		acc.X, acc.Y, acc.Z,
		alpha.X, alpha.Y, alpha.Z,
	}
}

func (b *RigidBody) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":    b.Mass,
		"ixx":     b.Inertia.X,
		"iyy":     b.Inertia.Y,
		"izz":     b.Inertia.Z,
		"gravity": b.Gravity,
	}
}

func (b *RigidBody) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		b.Mass = value
	case "ixx":
		b.Inertia.X = value
	case "iyy":
		b.Inertia.Y = value
	case "izz":
		b.Inertia.Z = value
	case "gravity":
		b.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
