// Package termination decides when a hover episode ends because the drone
// left its safe envelope.
package termination

import (
	"math"

	"github.com/san-kum/advhover/internal/dynamo"
)

type Reason string

const (
	None     Reason = ""
	Altitude Reason = "altitude"
	Attitude Reason = "attitude"
	Rate     Reason = "rate"
)

const DefaultMinAltitude = 0.2

// Policy holds fixed thresholds. Angles are in radians, rates in rad/s.
// Every comparison is strict, so a state sitting exactly on a threshold is
// still inside the envelope. Yaw and yaw rate are never checked.
type Policy struct {
	MinAltitude float64
	MaxAttitude float64
	MaxRate     float64
}

// New builds a policy from thresholds given in degrees and degrees per second.
func New(minAltitude, maxAttitudeDeg, maxRateDeg float64) (Policy, error) {
	if math.IsNaN(minAltitude) || math.IsInf(minAltitude, 0) {
		return Policy{}, dynamo.Bounds("min_altitude", minAltitude)
	}
	if !(maxAttitudeDeg > 0 && maxAttitudeDeg <= 180) {
		return Policy{}, dynamo.Bounds("max_attitude_deg", maxAttitudeDeg)
	}
	if !(maxRateDeg > 0) || math.IsInf(maxRateDeg, 0) {
		return Policy{}, dynamo.Bounds("max_rate_deg", maxRateDeg)
	}
	return Policy{
		MinAltitude: minAltitude,
		MaxAttitude: dynamo.DegToRad(maxAttitudeDeg),
		MaxRate:     dynamo.DegToRad(maxRateDeg),
	}, nil
}

// Adversarial is the relaxed envelope used when a disturbance is active.
func Adversarial() Policy {
	p, _ := New(DefaultMinAltitude, 75, 1000)
	return p
}

func Baseline() Policy {
	p, _ := New(DefaultMinAltitude, 60, 300)
	return p
}

// Evaluate reports whether s is outside the envelope.
func (p Policy) Evaluate(s dynamo.AgentState) bool {
	return p.Reason(s) != None
}

// Reason names the first violated condition, checked in the order
// altitude, attitude, rate.
func (p Policy) Reason(s dynamo.AgentState) Reason {
	roll, pitch, _ := s.RPY()
	return p.Check(s.Altitude(), roll, pitch, s.AngularVelocity.X, s.AngularVelocity.Y)
}

// Check is Reason over raw values.
func (p Policy) Check(altitude, roll, pitch, rollRate, pitchRate float64) Reason {
	switch {
	case altitude < p.MinAltitude:
		return Altitude
	case math.Abs(roll) > p.MaxAttitude || math.Abs(pitch) > p.MaxAttitude:
		return Attitude
	case math.Abs(rollRate) > p.MaxRate || math.Abs(pitchRate) > p.MaxRate:
		return Rate
	}
	return None
}
