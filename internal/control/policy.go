package control

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/advhover/internal/dynamo"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

type Policy interface {
	Name() string
	Act(obs dynamo.Observation) dynamo.Action
	Reset()
}

// Gains configures HoverPID. Attitude and altitude outputs are duty-cycle
// offsets; position outputs are tilt angles in radians.
type Gains struct {
	Target      r3.Vec
	AltKp       float64
	AltKi       float64
	AltKd       float64
	AttKp       float64
	AttKd       float64
	YawKp       float64
	YawKd       float64
	PosKp       float64
	PosKd       float64
	MaxTilt     float64
	IntegralCap float64
}

func DefaultGains() Gains {
	return Gains{
		Target:      r3.Vec{Z: 1},
		AltKp:       0.4,
		AltKi:       0.05,
		AltKd:       0.25,
		AttKp:       0.1,
		AttKd:       0.015,
		YawKp:       0.05,
		YawKd:       0.01,
		PosKp:       0.2,
		PosKd:       0.2,
		MaxTilt:     0.35,
		IntegralCap: 0.1,
	}
}

// Mixer rows for the X layout: front-right, rear-right, rear-left,
// front-left.
var (
	rollMix  = [4]float64{-1, -1, 1, 1}
	pitchMix = [4]float64{-1, 1, 1, -1}
	yawMix   = [4]float64{-1, 1, -1, 1}
)

// HoverPID holds position with a cascade: position error sets a desired
// tilt, attitude PD loops turn tilt error into differential thrust, and the
// altitude loop sets collective thrust around the hover command.
type HoverPID struct {
	gains    Gains
	space    []r1.Interval
	hover    float64
	dt       float64
	altitude *PID
	roll     *PID
	pitch    *PID
	yaw      *PID
}

func NewHoverPID(space []r1.Interval, hover float64, g Gains, dt float64) (*HoverPID, error) {
	if len(space) != len(rollMix) {
		return nil, fmt.Errorf("%w: pid needs %d actions, got %d", dynamo.ErrDimensionMismatch, len(rollMix), len(space))
	}
	if !(dt > 0) {
		return nil, dynamo.Bounds("dt", dt)
	}
	return &HoverPID{
		gains:    g,
		space:    space,
		hover:    hover,
		dt:       dt,
		altitude: NewPID(g.AltKp, g.AltKi, g.AltKd, g.IntegralCap),
		roll:     NewPID(g.AttKp, 0, g.AttKd, 0),
		pitch:    NewPID(g.AttKp, 0, g.AttKd, 0),
		yaw:      NewPID(g.YawKp, 0, g.YawKd, 0),
	}, nil
}

func (h *HoverPID) Name() string { return "pid" }

func (h *HoverPID) Act(obs dynamo.Observation) dynamo.Action {
	pos, vel, rates := obs.Position(), obs.Velocity(), obs.Rates()
	roll, pitch, yaw := obs.RPY()
	g := h.gains

	// positive pitch tilts thrust toward +x, positive roll toward -y
	ex, ey := g.Target.X-pos.X, g.Target.Y-pos.Y
	wantPitch := clip(g.PosKp*ex-g.PosKd*vel.X, -g.MaxTilt, g.MaxTilt)
	wantRoll := clip(-(g.PosKp*ey - g.PosKd*vel.Y), -g.MaxTilt, g.MaxTilt)

	collective := h.hover + h.altitude.Update(g.Target.Z-pos.Z, -vel.Z, h.dt)
	// keep lift when tilted
	if c := math.Cos(roll) * math.Cos(pitch); c > 0.5 {
		collective /= c
	}

	r := h.roll.Update(wantRoll-roll, -rates.X, h.dt)
	p := h.pitch.Update(wantPitch-pitch, -rates.Y, h.dt)
	y := h.yaw.Update(-wrap(yaw), -rates.Z, h.dt)

	a := make(dynamo.Action, len(rollMix))
	for i := range a {
		u := clip(collective+rollMix[i]*r+pitchMix[i]*p+yawMix[i]*y, 0, 1)
		a[i] = toSpace(u, h.space[i])
	}
	return a
}

func (h *HoverPID) Reset() {
	h.altitude.Reset()
	h.roll.Reset()
	h.pitch.Reset()
	h.yaw.Reset()
}

// Hover always commands the hover duty cycle.
type Hover struct {
	action dynamo.Action
}

func NewHover(space []r1.Interval, hover float64) *Hover {
	a := make(dynamo.Action, len(space))
	for i, iv := range space {
		a[i] = toSpace(hover, iv)
	}
	return &Hover{action: a}
}

func (h *Hover) Name() string                         { return "hover" }
func (h *Hover) Act(dynamo.Observation) dynamo.Action { return h.action.Clone() }
func (h *Hover) Reset()                               {}

// Random samples every action entry uniformly from its interval.
type Random struct {
	axes []distuv.Uniform
}

func NewRandom(space []r1.Interval, seed uint64) *Random {
	src := rand.NewSource(seed)
	r := &Random{axes: make([]distuv.Uniform, len(space))}
	for i, iv := range space {
		r.axes[i] = distuv.Uniform{Min: iv.Min, Max: iv.Max, Src: src}
	}
	return r
}

func (r *Random) Name() string { return "random" }

func (r *Random) Act(dynamo.Observation) dynamo.Action {
	a := make(dynamo.Action, len(r.axes))
	for i := range r.axes {
		a[i] = r.axes[i].Rand()
	}
	return a
}

func (r *Random) Reset() {}

type builder func(space []r1.Interval, hover float64, g Gains, dt float64, seed uint64) (Policy, error)

var registry = map[string]builder{
	"hover": func(space []r1.Interval, hover float64, _ Gains, _ float64, _ uint64) (Policy, error) {
		return NewHover(space, hover), nil
	},
	"pid": func(space []r1.Interval, hover float64, g Gains, dt float64, _ uint64) (Policy, error) {
		p, err := NewHoverPID(space, hover, g, dt)
		if err != nil {
			return nil, err
		}
		return p, nil
	},
	"random": func(space []r1.Interval, _ float64, _ Gains, _ float64, seed uint64) (Policy, error) {
		return NewRandom(space, seed), nil
	},
}

// New builds the policy registered under kind for an action space.
// hover is the hover duty cycle in [0, 1].
func New(kind string, space []r1.Interval, hover float64, g Gains, dt float64, seed uint64) (Policy, error) {
	fn, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: policy %q", dynamo.ErrUnknownKind, kind)
	}
	return fn(space, hover, g, dt, seed)
}

func Kinds() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// toSpace maps a duty cycle in [0, 1] onto iv.
func toSpace(u float64, iv r1.Interval) float64 {
	return iv.Min + u*(iv.Max-iv.Min)
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func wrap(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}
