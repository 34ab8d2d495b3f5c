package physics

import (
	"math"

	"github.com/san-kum/advhover/internal/agent"
	"github.com/san-kum/advhover/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultGroundEffectCoeff     = 11.36859
	DefaultPropRadius            = 2.31348e-2
	DefaultGroundEffectThreshold = 0.25
)

// GroundEffect adds lift to each rotor when the drone flies close to the
// floor: F_i * coeff * (r / (4 h_i))^2, with h_i the rotor height.
type GroundEffect struct {
	Coeff      float64
	PropRadius float64
	HClip      float64
	Threshold  float64
}

func DefaultGroundEffect() GroundEffect {
	g := GroundEffect{
		Coeff:      DefaultGroundEffectCoeff,
		PropRadius: DefaultPropRadius,
		Threshold:  DefaultGroundEffectThreshold,
	}
	g.HClip = 0.25 * g.PropRadius * math.Sqrt(15*g.Coeff/4)
	return g
}

// Active reports whether the drone is low enough and upright enough for the
// correction to apply.
func (g GroundEffect) Active(s dynamo.AgentState) bool {
	if s.Altitude() >= g.Threshold {
		return false
	}
	roll, pitch, _ := s.RPY()
	return math.Abs(roll) < math.Pi/2 && math.Abs(pitch) < math.Pi/2
}

// Forces returns the per-rotor lift addendum. ok is false when the
// correction does not apply.
func (g GroundEffect) Forces(s dynamo.AgentState, positions [agent.NumMotors]r3.Vec, thrust [agent.NumMotors]float64) (forces [agent.NumMotors]float64, ok bool) {
	if !g.Active(s) {
		return forces, false
	}
	for i, p := range positions {
		h := r3.Add(s.Position, s.ToWorld(p)).Z
		h = math.Max(h, g.HClip)
		ratio := g.PropRadius / (4 * h)
		forces[i] = thrust[i] * g.Coeff * ratio * ratio
	}
	return forces, true
}
