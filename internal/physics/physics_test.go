package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/advhover/internal/agent"
	"github.com/san-kum/advhover/internal/body"
	"github.com/san-kum/advhover/internal/dynamo"
	"github.com/san-kum/advhover/internal/integrators"
	"gonum.org/v1/gonum/spatial/r3"
)

func setup(t *testing.T, kind Kind, agentKind agent.Kind, opts Options) (*Stepper, agent.Agent, *body.Engine) {
	t.Helper()
	eng, err := body.NewEngine(body.NewCrazyFlieBody(), integrators.NewSemiImplicitEuler(), 1.0/200)
	if err != nil {
		t.Fatal(err)
	}
	ag, err := agent.New(agentKind, eng, agent.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	ag.Reset(dynamo.Hovering(r3.Vec{Z: 1}))
	st, err := New(kind, ag, eng, opts)
	if err != nil {
		t.Fatal(err)
	}
	return st, ag, eng
}

func TestDragZeroVelocity(t *testing.T) {
	d := DefaultDrag()
	s := dynamo.Hovering(r3.Vec{Z: 1})
	s.Orientation = dynamo.RPYToQuat(0.3, -0.2, 1.0)

	for _, x := range [][agent.NumMotors]float64{
		{0, 0, 0, 0},
		{0.5, 0.5, 0.5, 0.5},
		{1, 1, 1, 1},
		{0.1, 0.9, 0.3, 0.7},
	} {
		if f := d.Force(x, s); f != (r3.Vec{}) {
			t.Errorf("drag at rest should be exactly zero, got %v for rotors %v", f, x)
		}
	}
}

func TestDragOpposesVelocity(t *testing.T) {
	d := DefaultDrag()
	s := dynamo.Hovering(r3.Vec{Z: 1})
	s.Orientation = dynamo.RPYToQuat(0.1, 0.2, 0.5)
	s.Velocity = r3.Vec{X: 1, Y: -2, Z: 0.5}

	f := s.ToWorld(d.Force([agent.NumMotors]float64{0.5, 0.5, 0.5, 0.5}, s))
	if r3.Dot(f, s.Velocity) >= 0 {
		t.Errorf("drag %v should oppose velocity %v", f, s.Velocity)
	}
	if r3.Norm(r3.Cross(f, s.Velocity)) > 1e-12 {
		t.Errorf("drag %v should be parallel to velocity %v", f, s.Velocity)
	}
}

func TestDragFactor(t *testing.T) {
	d := Drag{Coeff: 1, RPMScale: 60}
	// rpm = 60 per rotor -> 2π rad/s each
	got := d.Factor([agent.NumMotors]float64{1, 1, 1, 1})
	if math.Abs(got+8*math.Pi) > 1e-12 {
		t.Errorf("expected %v, got %v", -8*math.Pi, got)
	}
}

func TestGroundEffect(t *testing.T) {
	g := DefaultGroundEffect()
	thrust := [agent.NumMotors]float64{0.1, 0.1, 0.1, 0.1}
	positions := [agent.NumMotors]r3.Vec{{X: 0.03}, {Y: 0.03}, {X: -0.03}, {Y: -0.03}}

	if _, ok := g.Forces(dynamo.Hovering(r3.Vec{Z: 1}), positions, thrust); ok {
		t.Error("ground effect should be inactive at 1m")
	}

	high, ok := g.Forces(dynamo.Hovering(r3.Vec{Z: 0.2}), positions, thrust)
	if !ok {
		t.Fatal("ground effect should be active at 0.2m")
	}
	low, _ := g.Forces(dynamo.Hovering(r3.Vec{Z: 0.1}), positions, thrust)
	for i := range low {
		if high[i] <= 0 || low[i] <= high[i] {
			t.Errorf("rotor %d: expected 0 < %v < %v", i, high[i], low[i])
		}
	}

	clipped, _ := g.Forces(dynamo.Hovering(r3.Vec{Z: -1}), positions, thrust)
	atClip, _ := g.Forces(dynamo.Hovering(r3.Vec{Z: g.HClip}), positions, thrust)
	if clipped != atClip {
		t.Errorf("heights below the clip should saturate: %v vs %v", clipped, atClip)
	}

	upsideDown := dynamo.Hovering(r3.Vec{Z: 0.1})
	upsideDown.Orientation = dynamo.RPYToQuat(math.Pi*0.75, 0, 0)
	if g.Active(upsideDown) {
		t.Error("ground effect should not apply to an inverted drone")
	}
}

func TestHoverSubstep(t *testing.T) {
	st, ag, _ := setup(t, KindRigidAdversary, agent.KindCrazyFlieAdversary, DefaultOptions())

	if err := st.StepForward(ag.HoverAction(), dynamo.Disturbance{}); err != nil {
		t.Fatal(err)
	}
	s := ag.State()
	if dz := math.Abs(s.Position.Z - 1); dz > 1e-6 {
		t.Errorf("hover substep moved altitude by %v", dz)
	}
	roll, pitch, _ := s.RPY()
	if roll != 0 || pitch != 0 {
		t.Errorf("hover should stay level, got roll=%v pitch=%v", roll, pitch)
	}
}

func TestDisturbanceChannels(t *testing.T) {
	st, ag, _ := setup(t, KindRigidAdversary, agent.KindCrazyFlieAdversary, DefaultOptions())
	if err := st.StepForward(ag.HoverAction(), dynamo.Disturbance{1e-3, -1e-3, 1e-3}); err != nil {
		t.Fatal(err)
	}
	w := ag.State().AngularVelocity
	if w.X <= 0 || w.Y >= 0 {
		t.Errorf("expected +roll and -pitch rate, got %v", w)
	}
	if math.Abs(w.Z) > 1e-12 {
		t.Errorf("yaw channel must not be disturbed, got yaw rate %v", w.Z)
	}
}

func TestRigidIgnoresDisturbance(t *testing.T) {
	st, ag, _ := setup(t, KindRigid, agent.KindCrazyFlie, DefaultOptions())
	if err := st.StepForward(ag.HoverAction(), dynamo.Disturbance{1e-3, 1e-3, 1e-4}); err != nil {
		t.Fatal(err)
	}
	if w := ag.State().AngularVelocity; r3.Norm(w) > 1e-12 {
		t.Errorf("rigid physics should not apply disturbance, got rates %v", w)
	}
}

func TestGroundEffectAddsLift(t *testing.T) {
	with, agWith, _ := setup(t, KindRigid, agent.KindCrazyFlie, DefaultOptions())
	opts := DefaultOptions()
	opts.UseGroundEffect = false
	without, agWithout, _ := setup(t, KindRigid, agent.KindCrazyFlie, opts)

	low := dynamo.Hovering(r3.Vec{Z: 0.1})
	agWith.Reset(low)
	agWithout.Reset(low)

	if err := with.StepForward(agWith.HoverAction(), dynamo.Disturbance{}); err != nil {
		t.Fatal(err)
	}
	if err := without.StepForward(agWithout.HoverAction(), dynamo.Disturbance{}); err != nil {
		t.Fatal(err)
	}
	if agWith.State().Velocity.Z <= agWithout.State().Velocity.Z {
		t.Errorf("ground effect should add lift near the floor")
	}
}

func TestStepForwardRejectsBadAction(t *testing.T) {
	st, ag, eng := setup(t, KindRigidAdversary, agent.KindCrazyFlieAdversary, DefaultOptions())
	before := ag.MotorState()

	err := st.StepForward(dynamo.Action{0.5, 0.5}, dynamo.Disturbance{})
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	err = st.StepForward(dynamo.Action{0.5, math.NaN(), 0.5, 0.5}, dynamo.Disturbance{})
	if !errors.Is(err, dynamo.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}

	force, torque := eng.QueuedLoads()
	if eng.Steps() != 0 || force != (r3.Vec{}) || torque != (r3.Vec{}) || ag.MotorState() != before {
		t.Error("rejected action must not touch the engine or the motors")
	}
}

func TestNewValidation(t *testing.T) {
	eng, _ := body.NewEngine(body.NewCrazyFlieBody(), integrators.NewRK4(), 0.005)
	base, _ := agent.New(agent.KindCrazyFlie, eng, agent.DefaultParams())

	if _, err := New(KindRigidAdversary, base, eng, DefaultOptions()); err == nil {
		t.Error("adversarial physics should refuse an agent without disturbance channels")
	}
	if _, err := New("pybullet", base, eng, DefaultOptions()); !errors.Is(err, dynamo.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	bad := []struct {
		name   string
		mutate func(o *Options)
	}{
		{"negative drag", func(o *Options) { o.Drag.Coeff = -1 }},
		{"nan drag", func(o *Options) { o.Drag.Coeff = math.NaN() }},
		{"infinite drag", func(o *Options) { o.Drag.Coeff = math.Inf(1) }},
		{"negative threshold", func(o *Options) { o.GroundEffect.Threshold = -0.1 }},
		{"nan threshold", func(o *Options) { o.GroundEffect.Threshold = math.NaN() }},
	}
	for _, tt := range bad {
		opts := DefaultOptions()
		tt.mutate(&opts)
		if _, err := New(KindRigid, base, eng, opts); !errors.Is(err, dynamo.ErrParameterBounds) {
			t.Errorf("%s: expected ErrParameterBounds, got %v", tt.name, err)
		}
	}
	if _, err := ParseKind("rigid_adversary"); err != nil {
		t.Errorf("ParseKind: %v", err)
	}
}

func TestFailedStepKeepsMotorState(t *testing.T) {
	st, ag, eng := setup(t, KindRigidAdversary, agent.KindCrazyFlieAdversary, DefaultOptions())
	before := ag.MotorState()
	state := ag.State()

	full := dynamo.Action{1, 1, 1, 1}
	err := st.StepForward(full, dynamo.Disturbance{math.Inf(1), 0, 0})
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if ag.MotorState() != before {
		t.Errorf("motor state moved on a failed step: %v -> %v", before, ag.MotorState())
	}
	if ag.State() != state || eng.Steps() != 0 {
		t.Error("failed step must not change the body state")
	}

	if err := st.StepForward(full, dynamo.Disturbance{}); err != nil {
		t.Fatal(err)
	}
	if ag.MotorState()[0] <= before[0] {
		t.Errorf("rotor should spin up after a good step, got %v", ag.MotorState())
	}
}
