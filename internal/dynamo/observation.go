package dynamo

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Observation layout: position(3), quaternion(4), velocity(3),
// filtered body rates(3), last action(4).
const (
	ObsPos        = 0
	ObsQuat       = 3
	ObsVel        = 7
	ObsRates      = 10
	ObsLastAction = 13
	ObsDim        = 17
)

type Observation []float64

func (o Observation) Position() r3.Vec {
	return r3.Vec{X: o[ObsPos], Y: o[ObsPos+1], Z: o[ObsPos+2]}
}

func (o Observation) Velocity() r3.Vec {
	return r3.Vec{X: o[ObsVel], Y: o[ObsVel+1], Z: o[ObsVel+2]}
}

func (o Observation) Rates() r3.Vec {
	return r3.Vec{X: o[ObsRates], Y: o[ObsRates+1], Z: o[ObsRates+2]}
}

// RPY decodes the quaternion slot.
func (o Observation) RPY() (roll, pitch, yaw float64) {
	return QuatToRPY(quat.Number{Real: o[ObsQuat], Imag: o[ObsQuat+1], Jmag: o[ObsQuat+2], Kmag: o[ObsQuat+3]})
}

// NewObservation packs s, the filtered body rates and the last applied
// action. A short action leaves the remaining slots zero.
func NewObservation(s AgentState, rates r3.Vec, last Action) Observation {
	o := make(Observation, ObsDim)
	x := s.Vector()
	copy(o[ObsPos:ObsVel], x[IdxPos:IdxVel])
	o[ObsVel], o[ObsVel+1], o[ObsVel+2] = s.Velocity.X, s.Velocity.Y, s.Velocity.Z
	o[ObsRates], o[ObsRates+1], o[ObsRates+2] = rates.X, rates.Y, rates.Z
	copy(o[ObsLastAction:], last)
	return o
}
