package dynamo

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Layout of the flat rigid-body vector.
const (
	IdxPos   = 0
	IdxQuat  = 3
	IdxVel   = 7
	IdxOmega = 10

	RigidBodyDim   = 13
	RigidConfigDim = 7
)

// AgentState is the quadrotor pose and motion. Position and Velocity are in
// the world frame, Orientation rotates body into world, AngularVelocity holds
// the body rates (roll, pitch, yaw rate) in rad/s.
type AgentState struct {
	Position        r3.Vec
	Orientation     quat.Number
	Velocity        r3.Vec
	AngularVelocity r3.Vec
}

// Hovering returns a level, motionless state at pos.
func Hovering(pos r3.Vec) AgentState {
	return AgentState{Position: pos, Orientation: quat.Number{Real: 1}}
}

func (s AgentState) Altitude() float64 { return s.Position.Z }

// RPY returns roll, pitch and yaw (ZYX convention) in radians.
func (s AgentState) RPY() (roll, pitch, yaw float64) {
	return QuatToRPY(s.Orientation)
}

// ToBody rotates a world-frame vector into the body frame.
func (s AgentState) ToBody(v r3.Vec) r3.Vec {
	return r3.Rotation(quat.Conj(s.Orientation)).Rotate(v)
}

// ToWorld rotates a body-frame vector into the world frame.
func (s AgentState) ToWorld(v r3.Vec) r3.Vec {
	return r3.Rotation(s.Orientation).Rotate(v)
}

func (s AgentState) Vector() State {
	x := make(State, RigidBodyDim)
	x[IdxPos], x[IdxPos+1], x[IdxPos+2] = s.Position.X, s.Position.Y, s.Position.Z
	q := s.Orientation
	x[IdxQuat], x[IdxQuat+1], x[IdxQuat+2], x[IdxQuat+3] = q.Real, q.Imag, q.Jmag, q.Kmag
	x[IdxVel], x[IdxVel+1], x[IdxVel+2] = s.Velocity.X, s.Velocity.Y, s.Velocity.Z
	w := s.AngularVelocity
	x[IdxOmega], x[IdxOmega+1], x[IdxOmega+2] = w.X, w.Y, w.Z
	return x
}

// AgentStateFrom unpacks a flat rigid-body vector.
func AgentStateFrom(x State) AgentState {
	return AgentState{
		Position:        r3.Vec{X: x[IdxPos], Y: x[IdxPos+1], Z: x[IdxPos+2]},
		Orientation:     quat.Number{Real: x[IdxQuat], Imag: x[IdxQuat+1], Jmag: x[IdxQuat+2], Kmag: x[IdxQuat+3]},
		Velocity:        r3.Vec{X: x[IdxVel], Y: x[IdxVel+1], Z: x[IdxVel+2]},
		AngularVelocity: r3.Vec{X: x[IdxOmega], Y: x[IdxOmega+1], Z: x[IdxOmega+2]},
	}
}

// QuatToRPY matches the usual aerospace ZYX Euler extraction.
func QuatToRPY(q quat.Number) (roll, pitch, yaw float64) {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	roll = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	sp := 2 * (w*y - z*x)
	sp = math.Max(-1, math.Min(1, sp))
	pitch = math.Asin(sp)
	yaw = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return roll, pitch, yaw
}

// RPYToQuat is the inverse of QuatToRPY.
func RPYToQuat(roll, pitch, yaw float64) quat.Number {
	sr, cr := math.Sincos(roll / 2)
	sp, cp := math.Sincos(pitch / 2)
	sy, cy := math.Sincos(yaw / 2)
	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}

// Normalize returns q scaled to unit length. The zero quaternion maps to identity.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}
