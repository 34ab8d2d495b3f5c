package physics

import (
	"math"

	"github.com/san-kum/advhover/internal/agent"
	"github.com/san-kum/advhover/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultDragCoeff = 9.1785e-7
	DefaultRPMScale  = 25000
)

// Drag is a simple body drag model driven by a rotor speed proxy.
type Drag struct {
	Coeff    float64
	RPMScale float64
}

func DefaultDrag() Drag {
	return Drag{Coeff: DefaultDragCoeff, RPMScale: DefaultRPMScale}
}

// RPM maps normalized rotor states to a speed proxy, rpm = x^2 * scale.
func (d Drag) RPM(x [agent.NumMotors]float64) [agent.NumMotors]float64 {
	var rpm [agent.NumMotors]float64
	for i, v := range x {
		rpm[i] = v * v * d.RPMScale
	}
	return rpm
}

// Factor is -coeff times the summed rotor speeds in rad/s.
func (d Drag) Factor(x [agent.NumMotors]float64) float64 {
	sum := 0.0
	for _, rpm := range d.RPM(x) {
		sum += 2 * math.Pi * rpm / 60
	}
	return -d.Coeff * sum
}

// Force returns the body-frame drag force for rotor states x.
func (d Drag) Force(x [agent.NumMotors]float64, s dynamo.AgentState) r3.Vec {
	if s.Velocity == (r3.Vec{}) {
		return r3.Vec{}
	}
	return r3.Scale(d.Factor(x), s.ToBody(s.Velocity))
}
