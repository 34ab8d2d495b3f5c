package metrics

import (
	"math"

	"github.com/san-kum/advhover/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Return is the undiscounted sum of rewards.
type Return struct {
	sum float64
}

func NewReturn() *Return { return &Return{} }

func (r *Return) Name() string                 { return "return" }
func (r *Return) Observe(tr dynamo.Transition) { r.sum += tr.Reward }
func (r *Return) Value() float64               { return r.sum }
func (r *Return) Reset()                       { r.sum = 0 }

// MaxTilt is the largest roll or pitch magnitude seen, in degrees.
type MaxTilt struct {
	max float64
}

func NewMaxTilt() *MaxTilt { return &MaxTilt{} }

func (m *MaxTilt) Name() string { return "max_tilt_deg" }

func (m *MaxTilt) Observe(tr dynamo.Transition) {
	roll, pitch, _ := tr.State.RPY()
	tilt := math.Max(math.Abs(roll), math.Abs(pitch))
	m.max = math.Max(m.max, dynamo.RadToDeg(tilt))
}

func (m *MaxTilt) Value() float64 { return m.max }
func (m *MaxTilt) Reset()         { m.max = 0 }

// DisturbanceEnergy accumulates the squared torque norm of the applied
// roll and pitch disturbance over the episode.
type DisturbanceEnergy struct {
	sum float64
}

func NewDisturbanceEnergy() *DisturbanceEnergy { return &DisturbanceEnergy{} }

func (d *DisturbanceEnergy) Name() string { return "disturbance_energy" }

func (d *DisturbanceEnergy) Observe(tr dynamo.Transition) {
	d.sum += tr.Disturbance[0]*tr.Disturbance[0] + tr.Disturbance[1]*tr.Disturbance[1]
}

func (d *DisturbanceEnergy) Value() float64 { return d.sum }
func (d *DisturbanceEnergy) Reset()         { d.sum = 0 }

// PositionError is the RMS distance to target.
type PositionError struct {
	target  r3.Vec
	sumSq   float64
	samples int
}

func NewPositionError(target r3.Vec) *PositionError {
	return &PositionError{target: target}
}

func (p *PositionError) Name() string { return "position_rms" }

func (p *PositionError) Observe(tr dynamo.Transition) {
	d := r3.Norm(r3.Sub(tr.State.Position, p.target))
	p.sumSq += d * d
	p.samples++
}

func (p *PositionError) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return math.Sqrt(p.sumSq / float64(p.samples))
}

func (p *PositionError) Reset() {
	p.sumSq = 0
	p.samples = 0
}

// Default is the metric set recorded for every episode.
func Default(target r3.Vec) []dynamo.Metric {
	return []dynamo.Metric{
		NewReturn(),
		NewMaxTilt(),
		NewPositionError(target),
		NewDisturbanceEnergy(),
		NewControlEffort(),
	}
}

