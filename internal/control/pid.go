package control

// PID is a single-axis controller. The derivative term is fed from a
// measured rate rather than a differenced error.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Limit    float64
	integral float64
}

func NewPID(kp, ki, kd, limit float64) *PID {
	return &PID{
		Kp:    kp,
		Ki:    ki,
		Kd:    kd,
		Limit: limit,
	}
}

// Update advances the integral by err*dt and returns the command.
// The integral is clamped to ±Limit/Ki when both are positive.
func (p *PID) Update(err, errRate, dt float64) float64 {
	p.integral += err * dt
	if p.Limit > 0 && p.Ki > 0 {
		bound := p.Limit / p.Ki
		p.integral = clip(p.integral, -bound, bound)
	}
	return p.Kp*err + p.Ki*p.integral + p.Kd*errRate
}

// Reset clears integral state
func (p *PID) Reset() {
	p.integral = 0
}

// GetParams returns the gains for display
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp": p.Kp,
		"Ki": p.Ki,
		"Kd": p.Kd,
	}
}

// SetParam adjusts a gain
func (p *PID) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	}
}
