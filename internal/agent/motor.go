package agent

import (
	"math"

	"github.com/san-kum/advhover/internal/dynamo"
)

const NumMotors = 4

// spin direction per motor, diagonal pairs share a sign
var spin = [NumMotors]float64{-1, 1, -1, 1}

type MotorForces struct {
	Thrust    [NumMotors]float64
	YawTorque float64
}

// MotorModel turns normalized PWM commands into rotor thrust. With dynamics
// enabled each rotor follows its command through a first-order lag; an
// optional latency delays commands by whole physics steps.
type MotorModel struct {
	maxThrust float64
	kmkf      float64
	alpha     float64
	dynamics  bool

	x       [NumMotors]float64
	pending [][NumMotors]float64
}

func NewMotorModel(p Params, weight, dt float64) *MotorModel {
	m := &MotorModel{
		maxThrust: p.Thrust2Weight * weight / NumMotors,
		kmkf:      p.KMKF,
		dynamics:  p.UseMotorDynamics && p.MotorTimeConstant > 0,
		pending:   make([][NumMotors]float64, p.LatencySteps),
	}
	if m.dynamics {
		m.alpha = 1 - math.Exp(-dt/p.MotorTimeConstant)
	}
	m.Reset(p.HoverCommand())
	return m
}

// Reset sets every rotor and every queued command to level.
func (m *MotorModel) Reset(level float64) {
	for i := range m.x {
		m.x[i] = level
	}
	for i := range m.pending {
		m.pending[i] = m.x
	}
}

func (m *MotorModel) MaxThrust() float64 { return m.maxThrust }

// MotorSnapshot holds the rotor lag state and the queued commands.
type MotorSnapshot struct {
	x       [NumMotors]float64
	pending [][NumMotors]float64
}

func (m *MotorModel) Snapshot() MotorSnapshot {
	return MotorSnapshot{x: m.x, pending: append([][NumMotors]float64(nil), m.pending...)}
}

// Restore rewinds the rotors to a snapshot taken from the same model.
func (m *MotorModel) Restore(s MotorSnapshot) {
	m.x = s.x
	copy(m.pending, s.pending)
}

// State is the lagged normalized rotor command, each entry in [0, 1].
func (m *MotorModel) State() [NumMotors]float64 { return m.x }

// Apply advances the rotors by one physics step toward command a.
func (m *MotorModel) Apply(a dynamo.Action) MotorForces {
	var y [NumMotors]float64
	for i := range y {
		y[i] = clip(a[i], 0, 1)
	}

	if len(m.pending) > 0 {
		next := m.pending[0]
		copy(m.pending, m.pending[1:])
		m.pending[len(m.pending)-1] = y
		y = next
	}

	if m.dynamics {
		for i := range m.x {
			m.x[i] += m.alpha * (y[i] - m.x[i])
		}
	} else {
		m.x = y
	}

	var out MotorForces
	for i := range m.x {
		out.Thrust[i] = m.x[i] * m.maxThrust
		out.YawTorque += spin[i] * m.kmkf * out.Thrust[i]
	}
	return out
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
