package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/advhover/internal/adversary"
	"github.com/san-kum/advhover/internal/agent"
	"github.com/san-kum/advhover/internal/config"
	"github.com/san-kum/advhover/internal/control"
	"github.com/san-kum/advhover/internal/dynamo"
	"github.com/san-kum/advhover/internal/env"
	"github.com/san-kum/advhover/internal/logging"
	"github.com/san-kum/advhover/internal/metrics"
	"github.com/san-kum/advhover/internal/physics"
	"github.com/san-kum/advhover/internal/sim"
	"github.com/san-kum/advhover/internal/storage"
	"github.com/san-kum/advhover/internal/termination"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// Experiment turns a Config into environments, policies and ensembles.
type Experiment struct {
	cfg  *config.Config
	spec env.Spec
	log  *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	spec, err := env.Lookup(cfg.Env)
	if err != nil {
		return nil, err
	}
	e := &Experiment{cfg: cfg, spec: spec, log: logging.OrNop(log)}
	// surface bad names before any goroutine starts
	if _, _, err := e.Build(cfg.Seed); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) Spec() env.Spec         { return e.spec }

// Options maps the configuration onto environment options for one seed.
func (e *Experiment) Options(seed uint64) (env.Options, error) {
	cfg := e.cfg
	o := e.spec.Options()
	o.Integrator = cfg.Integrator
	o.SimFrequency = cfg.SimFrequency
	o.AggregateSteps = cfg.AggregateSteps()
	o.InitNoise = cfg.InitNoise
	o.Seed = seed
	o.Logger = e.log

	p := agent.DefaultParams()
	p.Thrust2Weight = cfg.Motor.Thrust2Weight
	p.MotorTimeConstant = cfg.Motor.TimeConstant
	p.LatencySteps = cfg.Motor.LatencySteps
	p.UseMotorDynamics = cfg.Motor.Dynamics
	o.AgentParams = p

	po := physics.DefaultOptions()
	po.Drag.Coeff = cfg.Physics.DragCoeff
	po.UseGroundEffect = cfg.Physics.GroundEffect
	if cfg.Physics.GroundThreshold > 0 {
		po.GroundEffect.Threshold = cfg.Physics.GroundThreshold
	}
	o.PhysicsOptions = po

	term, err := e.Termination()
	if err != nil {
		return env.Options{}, err
	}
	o.Termination = term

	o.Reward = env.RewardWeights{
		Action:     cfg.Reward.Action,
		ActionRate: cfg.Reward.ActionRate,
		Angle:      cfg.Reward.Angle,
		Spin:       cfg.Reward.Spin,
		Velocity:   cfg.Reward.Velocity,
		Terminal:   cfg.Reward.Terminal,
	}
	if z := cfg.PolicyParams.TargetZ; z > 0 {
		o.Target = r3.Vec{Z: z}
	}
	return o, nil
}

// Termination is the environment's envelope with any configured fields
// replacing the defaults.
func (e *Experiment) Termination() (termination.Policy, error) {
	base := e.spec.Termination()
	t := e.cfg.Termination

	minAlt := base.MinAltitude
	if t.MinAltitude != nil {
		minAlt = *t.MinAltitude
	}
	att := dynamo.RadToDeg(base.MaxAttitude)
	if t.MaxAttitudeDeg > 0 {
		att = t.MaxAttitudeDeg
	}
	rate := dynamo.RadToDeg(base.MaxRate)
	if t.MaxRateDeg > 0 {
		rate = t.MaxRateDeg
	}
	return termination.New(minAlt, att, rate)
}

// Disturbance resolves the sampler kind and its parameters.
func (e *Experiment) Disturbance() (kind string, bound, constant [3]float64) {
	kind = e.cfg.Disturbance.Kind
	if kind == "" {
		kind = e.spec.Disturbance
	}
	bound = config.Vec3(e.cfg.Disturbance.Bound, adversary.DefaultBound)
	constant = config.Vec3(e.cfg.Disturbance.Constant, [3]float64{})
	return kind, bound, constant
}

func (e *Experiment) Gains() control.Gains {
	pp := e.cfg.PolicyParams
	g := control.DefaultGains()
	g.AltKp, g.AltKi, g.AltKd = pp.AltKp, pp.AltKi, pp.AltKd
	g.AttKp, g.AttKd = pp.AttKp, pp.AttKd
	g.PosKp, g.PosKd = pp.PosKp, pp.PosKd
	if pp.TargetZ > 0 {
		g.Target = r3.Vec{Z: pp.TargetZ}
	}
	return g
}

// Build creates a fresh environment and policy for one seed. It has the
// signature of sim.Factory.
func (e *Experiment) Build(seed uint64) (env.Environment, control.Policy, error) {
	opts, err := e.Options(seed)
	if err != nil {
		return nil, nil, err
	}
	kind, bound, constant := e.Disturbance()
	tl, err := env.Build(opts, kind, bound, constant, e.cfg.MaxEpisodeSteps)
	if err != nil {
		return nil, nil, err
	}

	var en env.Environment = tl
	if e.cfg.NormalizeActions {
		en = env.NewNormalizeAction(tl)
	}

	dt := 1 / opts.ControlFrequency()
	pol, err := control.New(e.cfg.Policy, en.ActionSpace(), opts.AgentParams.HoverCommand(), e.Gains(), dt, seed)
	if err != nil {
		return nil, nil, err
	}
	return en, pol, nil
}

func (e *Experiment) Metrics() []dynamo.Metric {
	target := r3.Vec{Z: 1}
	if z := e.cfg.PolicyParams.TargetZ; z > 0 {
		target.Z = z
	}
	return metrics.Default(target)
}

func (e *Experiment) Ensemble() *sim.Ensemble {
	return sim.NewEnsemble(e.Build, e.cfg.Episodes, e.cfg.Seed).
		WithMetrics(e.Metrics).
		WithWorkers(e.cfg.NumEnvs).
		WithLogger(e.log)
}

// Run flies every configured episode. record keeps full trajectories.
func (e *Experiment) Run(ctx context.Context, record bool) ([]*sim.Result, error) {
	start := time.Now()
	results, err := e.Ensemble().Run(ctx, sim.Config{MaxSteps: e.cfg.MaxEpisodeSteps, Record: record})
	if err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}
	e.log.Info("experiment finished",
		zap.String("env", e.cfg.Env),
		zap.Int("episodes", len(results)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

// Metadata describes this experiment for the run store.
func (e *Experiment) Metadata() storage.RunMetadata {
	kind, _, _ := e.Disturbance()
	return storage.RunMetadata{
		Env:              e.cfg.Env,
		Timestamp:        time.Now(),
		Seed:             e.cfg.Seed,
		Policy:           e.cfg.Policy,
		Integrator:       e.cfg.Integrator,
		Disturbance:      kind,
		SimFrequency:     e.cfg.SimFrequency,
		ControlFrequency: e.cfg.ControlFrequency,
	}
}
