package experiment

import (
	"context"
	"testing"

	"github.com/san-kum/advhover/internal/config"
	"github.com/san-kum/advhover/internal/dynamo"
	"github.com/san-kum/advhover/internal/env"
	"github.com/san-kum/advhover/internal/termination"
	"github.com/stretchr/testify/require"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Episodes = 3
	cfg.NumEnvs = 2
	cfg.MaxEpisodeSteps = 20
	cfg.Seed = 11
	return cfg
}

func TestNewRejectsUnknownNames(t *testing.T) {
	for _, mutate := range []func(*config.Config){
		func(c *config.Config) { c.Env = "CartPole-v1" },
		func(c *config.Config) { c.Policy = "lqr" },
		func(c *config.Config) { c.Integrator = "verlet" },
		func(c *config.Config) { c.Disturbance.Kind = "gusty" },
	} {
		cfg := smallConfig()
		mutate(cfg)
		_, err := New(cfg, nil)
		require.ErrorIs(t, err, dynamo.ErrUnknownKind)
	}
}

func TestTerminationDefaults(t *testing.T) {
	e, err := New(smallConfig(), nil)
	require.NoError(t, err)
	term, err := e.Termination()
	require.NoError(t, err)
	require.Equal(t, termination.Adversarial().MinAltitude, term.MinAltitude)
	require.InDelta(t, termination.Adversarial().MaxAttitude, term.MaxAttitude, 1e-12)
	require.InDelta(t, termination.Adversarial().MaxRate, term.MaxRate, 1e-12)

	cfg := smallConfig()
	cfg.Env = "DroneHoverBulletEnv-v0"
	cfg.Termination.MaxAttitudeDeg = 45
	e, err = New(cfg, nil)
	require.NoError(t, err)
	term, err = e.Termination()
	require.NoError(t, err)
	require.InDelta(t, dynamo.DegToRad(45), term.MaxAttitude, 1e-12)
	require.InDelta(t, termination.Baseline().MaxRate, term.MaxRate, 1e-12)
}

func TestTerminationZeroFloor(t *testing.T) {
	cfg := smallConfig()
	floor := 0.0
	cfg.Termination.MinAltitude = &floor
	e, err := New(cfg, nil)
	require.NoError(t, err)
	term, err := e.Termination()
	require.NoError(t, err)
	require.Zero(t, term.MinAltitude)
	require.InDelta(t, termination.Adversarial().MaxAttitude, term.MaxAttitude, 1e-12)
}

func TestDisturbanceFallsBackToEnv(t *testing.T) {
	e, err := New(smallConfig(), nil)
	require.NoError(t, err)
	kind, bound, constant := e.Disturbance()
	require.Equal(t, "uniform", kind)
	require.Equal(t, [3]float64{1e-3, 1e-3, 1e-4}, bound)
	require.Equal(t, [3]float64{}, constant)
}

func TestOptionsMapping(t *testing.T) {
	cfg := smallConfig()
	cfg.Motor.LatencySteps = 2
	cfg.Physics.GroundEffect = false
	cfg.PolicyParams.TargetZ = 1.5
	e, err := New(cfg, nil)
	require.NoError(t, err)

	o, err := e.Options(3)
	require.NoError(t, err)
	require.Equal(t, uint64(3), o.Seed)
	require.Equal(t, 2, o.AggregateSteps)
	require.Equal(t, 2, o.AgentParams.LatencySteps)
	require.False(t, o.PhysicsOptions.UseGroundEffect)
	require.InDelta(t, 1.5, o.Target.Z, 0)
	require.InDelta(t, 1.5, e.Gains().Target.Z, 0)
}

func TestBuildNormalizesActions(t *testing.T) {
	cfg := smallConfig()
	cfg.NormalizeActions = true
	e, err := New(cfg, nil)
	require.NoError(t, err)

	en, pol, err := e.Build(1)
	require.NoError(t, err)
	_, ok := en.(*env.NormalizeAction)
	require.True(t, ok)
	require.Equal(t, "pid", pol.Name())
	for _, iv := range en.ActionSpace() {
		require.Equal(t, -1.0, iv.Min)
	}
}

func TestRunEnsemble(t *testing.T) {
	cfg := smallConfig()
	cfg.Disturbance.Kind = "zero"
	e, err := New(cfg, nil)
	require.NoError(t, err)

	results, err := e.Run(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		require.Equal(t, cfg.Seed+uint64(i), r.Seed)
		require.Equal(t, 20, r.Steps)
		require.True(t, r.Truncated)
		require.Len(t, r.Transitions, 20)
		require.Contains(t, r.Metrics, "position_rms")
	}

	meta := e.Metadata()
	require.Equal(t, "zero", meta.Disturbance)
	require.Equal(t, cfg.Env, meta.Env)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.Contains(t, r.Envs, "DroneHoverBulletEnvWithAdversary-v0")
	require.Contains(t, r.Policies, "pid")
	require.Contains(t, r.Integrators, "semi_implicit")
	require.Contains(t, r.Disturbances, "uniform")
	require.NotEmpty(t, r.Presets("DroneHoverBulletEnvWithAdversary-v0"))
}
