package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

type Control []float64

// System is a continuous-time model dX/dt = f(X, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Partitioned systems keep their configuration coordinates in
// x[:ConfigDim()] and the velocities driving them in the remainder.
type Partitioned interface {
	System
	ConfigDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// Action is one control command per motor, normalized PWM duty in [0, 1].
type Action []float64

func (a Action) Clone() Action {
	c := make(Action, len(a))
	copy(c, a)
	return c
}

func (a Action) IsValid() bool {
	return State(a).IsValid()
}

// Disturbance is an exogenous torque about the body x, y and z axes (N·m).
type Disturbance [3]float64

// Transition is what a Metric sees after every control step.
type Transition struct {
	Step        int
	Time        float64
	State       AgentState
	Action      Action
	Disturbance Disturbance
	Reward      float64
	Done        bool
}

type Metric interface {
	Name() string
	Observe(tr Transition)
	Value() float64
	Reset()
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 { return rad * 180 / math.Pi }
