package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/advhover/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEnv              = "DroneHoverBulletEnvWithAdversary-v0"
	DefaultSimFrequency     = 200.0
	DefaultControlFrequency = 100.0
	DefaultMaxEpisodeSteps  = 500
	DefaultEpisodes         = 1
	DefaultNumEnvs          = 4
	DefaultDragCoeff        = 9.1785e-7
	DefaultGroundThreshold  = 0.25
	DefaultMotorTau         = 0.08
)

type Config struct {
	Env              string            `yaml:"env"`
	Integrator       string            `yaml:"integrator"`
	Policy           string            `yaml:"policy"`
	SimFrequency     float64           `yaml:"sim_frequency"`
	ControlFrequency float64           `yaml:"control_frequency"`
	MaxEpisodeSteps  int               `yaml:"max_episode_steps"`
	Episodes         int               `yaml:"episodes"`
	NumEnvs          int               `yaml:"num_envs"`
	Seed             uint64            `yaml:"seed"`
	NormalizeActions bool              `yaml:"normalize_actions"`
	InitNoise        float64           `yaml:"init_noise"`
	Disturbance      DisturbanceConfig `yaml:"disturbance"`
	Termination      TerminationConfig `yaml:"termination"`
	Physics          PhysicsConfig     `yaml:"physics"`
	Motor            MotorConfig       `yaml:"motor"`
	Reward           RewardConfig      `yaml:"reward"`
	PolicyParams     PolicyConfig      `yaml:"policy_params"`
	Log              LogConfig         `yaml:"log"`
}

// DisturbanceConfig selects the sampler. An empty kind uses the
// environment's default.
type DisturbanceConfig struct {
	Kind     string    `yaml:"kind"`
	Bound    []float64 `yaml:"bound"`
	Constant []float64 `yaml:"constant"`
}

// TerminationConfig overrides the environment's envelope. An unset
// MinAltitude or a zero limit keeps the default for that environment.
type TerminationConfig struct {
	MinAltitude    *float64 `yaml:"min_altitude,omitempty"`
	MaxAttitudeDeg float64  `yaml:"max_attitude_deg"`
	MaxRateDeg     float64  `yaml:"max_rate_deg"`
}

type PhysicsConfig struct {
	DragCoeff       float64 `yaml:"drag_coeff"`
	GroundEffect    bool    `yaml:"ground_effect"`
	GroundThreshold float64 `yaml:"ground_threshold"`
}

type MotorConfig struct {
	TimeConstant  float64 `yaml:"time_constant"`
	LatencySteps  int     `yaml:"latency_steps"`
	Dynamics      bool    `yaml:"dynamics"`
	Thrust2Weight float64 `yaml:"thrust2weight"`
}

type RewardConfig struct {
	Action     float64 `yaml:"action"`
	ActionRate float64 `yaml:"action_rate"`
	Angle      float64 `yaml:"angle"`
	Spin       float64 `yaml:"spin"`
	Velocity   float64 `yaml:"velocity"`
	Terminal   float64 `yaml:"terminal"`
}

type PolicyConfig struct {
	AltKp   float64 `yaml:"alt_kp"`
	AltKi   float64 `yaml:"alt_ki"`
	AltKd   float64 `yaml:"alt_kd"`
	AttKp   float64 `yaml:"att_kp"`
	AttKd   float64 `yaml:"att_kd"`
	PosKp   float64 `yaml:"pos_kp"`
	PosKd   float64 `yaml:"pos_kd"`
	TargetZ float64 `yaml:"target_z"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Env:              DefaultEnv,
		Integrator:       "semi_implicit",
		Policy:           "pid",
		SimFrequency:     DefaultSimFrequency,
		ControlFrequency: DefaultControlFrequency,
		MaxEpisodeSteps:  DefaultMaxEpisodeSteps,
		Episodes:         DefaultEpisodes,
		NumEnvs:          DefaultNumEnvs,
		Physics: PhysicsConfig{
			DragCoeff:       DefaultDragCoeff,
			GroundEffect:    true,
			GroundThreshold: DefaultGroundThreshold,
		},
		Motor: MotorConfig{
			TimeConstant:  DefaultMotorTau,
			Dynamics:      true,
			Thrust2Weight: 2.25,
		},
		Reward: RewardConfig{
			Action:   1e-4,
			Spin:     1e-4,
			Terminal: 100,
		},
		PolicyParams: PolicyConfig{
			AltKp:   0.4,
			AltKi:   0.05,
			AltKd:   0.25,
			AttKp:   0.1,
			AttKd:   0.015,
			PosKp:   0.2,
			PosKd:   0.2,
			TargetZ: 1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// AggregateSteps is the number of physics substeps per control step.
func (c *Config) AggregateSteps() int {
	return int(math.Round(c.SimFrequency / c.ControlFrequency))
}

func (c *Config) Validate() error {
	if !(c.SimFrequency > 0) {
		return dynamo.Bounds("sim_frequency", c.SimFrequency)
	}
	if !(c.ControlFrequency > 0) || c.ControlFrequency > c.SimFrequency {
		return dynamo.Bounds("control_frequency", c.ControlFrequency)
	}
	ratio := c.SimFrequency / c.ControlFrequency
	if math.Abs(ratio-math.Round(ratio)) > 1e-9 {
		return fmt.Errorf("%w: sim_frequency %v is not a multiple of control_frequency %v",
			dynamo.ErrParameterBounds, c.SimFrequency, c.ControlFrequency)
	}
	if c.MaxEpisodeSteps < 1 {
		return dynamo.Bounds("max_episode_steps", c.MaxEpisodeSteps)
	}
	if c.Episodes < 1 {
		return dynamo.Bounds("episodes", c.Episodes)
	}
	if c.NumEnvs < 1 {
		return dynamo.Bounds("num_envs", c.NumEnvs)
	}
	if c.InitNoise < 0 {
		return dynamo.Bounds("init_noise", c.InitNoise)
	}
	if err := checkVector("disturbance.bound", c.Disturbance.Bound, true); err != nil {
		return err
	}
	if err := checkVector("disturbance.constant", c.Disturbance.Constant, false); err != nil {
		return err
	}
	if m := c.Termination.MinAltitude; m != nil && (math.IsNaN(*m) || math.IsInf(*m, 0)) {
		return dynamo.Bounds("termination.min_altitude", *m)
	}
	if !(c.Termination.MaxAttitudeDeg >= 0 && c.Termination.MaxAttitudeDeg <= 180) {
		return dynamo.Bounds("termination.max_attitude_deg", c.Termination.MaxAttitudeDeg)
	}
	if !(c.Termination.MaxRateDeg >= 0) || math.IsInf(c.Termination.MaxRateDeg, 1) {
		return dynamo.Bounds("termination.max_rate_deg", c.Termination.MaxRateDeg)
	}
	if !(c.Physics.DragCoeff >= 0) || math.IsInf(c.Physics.DragCoeff, 1) {
		return dynamo.Bounds("physics.drag_coeff", c.Physics.DragCoeff)
	}
	if !(c.Physics.GroundThreshold >= 0) || math.IsInf(c.Physics.GroundThreshold, 1) {
		return dynamo.Bounds("physics.ground_threshold", c.Physics.GroundThreshold)
	}
	if c.Motor.Dynamics && !(c.Motor.TimeConstant > 0) {
		return dynamo.Bounds("motor.time_constant", c.Motor.TimeConstant)
	}
	if c.Motor.LatencySteps < 0 {
		return dynamo.Bounds("motor.latency_steps", c.Motor.LatencySteps)
	}
	if !(c.Motor.Thrust2Weight > 1) {
		return dynamo.Bounds("motor.thrust2weight", c.Motor.Thrust2Weight)
	}
	return nil
}

func checkVector(name string, v []float64, nonNegative bool) error {
	if v == nil {
		return nil
	}
	if len(v) != 3 {
		return fmt.Errorf("%w: %s needs 3 entries, got %d", dynamo.ErrDimensionMismatch, name, len(v))
	}
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) || (nonNegative && x < 0) {
			return dynamo.Bounds(fmt.Sprintf("%s[%d]", name, i), x)
		}
	}
	return nil
}

// Vec3 copies a validated three-entry slice, falling back to def when v is
// empty.
func Vec3(v []float64, def [3]float64) [3]float64 {
	if len(v) != 3 {
		return def
	}
	return [3]float64{v[0], v[1], v[2]}
}
