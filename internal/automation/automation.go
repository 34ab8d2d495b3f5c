package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/advhover/internal/adversary"
	"github.com/san-kum/advhover/internal/config"
	"github.com/san-kum/advhover/internal/experiment"
	"github.com/san-kum/advhover/internal/logging"
	"github.com/san-kum/advhover/internal/sim"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of experiments.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset of Env (or the defaults) and applies
// Overrides, which use the config file keys.
type ScenarioStep struct {
	Name      string    `yaml:"name"`
	Env       string    `yaml:"env"`
	Preset    string    `yaml:"preset"`
	Overrides yaml.Node `yaml:"overrides"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}
	return &scenario, nil
}

// Config resolves the configuration of one step.
func (s ScenarioStep) Config() (*config.Config, error) {
	env := s.Env
	if env == "" {
		env = config.DefaultEnv
	}

	cfg := config.DefaultConfig()
	if s.Preset != "" {
		p := config.GetPreset(env, s.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for %s", s.Preset, env)
		}
		c := *p
		cfg = &c
	}
	cfg.Env = env

	if !s.Overrides.IsZero() {
		if err := s.Overrides.Decode(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

type StepResult struct {
	Name    string
	Config  *config.Config
	Results []*sim.Result
	Summary sim.Summary
}

// RunScenario executes every step in order and stops at the first error.
func RunScenario(ctx context.Context, scenario *Scenario, log *zap.Logger) ([]StepResult, error) {
	log = logging.OrNop(log)
	out := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		log.Info("scenario step", zap.String("scenario", scenario.Name), zap.String("step", name),
			zap.Int("index", i+1), zap.Int("of", len(scenario.Steps)))

		cfg, err := step.Config()
		if err != nil {
			return out, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}
		exp, err := experiment.New(cfg, log)
		if err != nil {
			return out, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}
		results, err := exp.Run(ctx, false)
		if err != nil {
			return out, fmt.Errorf("step %d (%s) run: %w", i+1, name, err)
		}

		out = append(out, StepResult{
			Name:    name,
			Config:  cfg,
			Results: results,
			Summary: sim.Summarize(results),
		})
	}
	return out, nil
}

// BoundSweep scales the uniform disturbance bound and measures how long the
// policy survives at each scale.
type BoundSweep struct {
	Base   *config.Config
	Scales []float64
}

type SweepResult struct {
	Scale   float64
	Bound   [3]float64
	Summary sim.Summary
}

// Survival is the mean fraction of the episode limit survived.
func (r SweepResult) Survival(maxSteps int) float64 {
	if maxSteps <= 0 {
		return 0
	}
	return r.Summary.MeanSteps / float64(maxSteps)
}

func RunSweep(ctx context.Context, sweep *BoundSweep, log *zap.Logger) ([]SweepResult, error) {
	if len(sweep.Scales) == 0 {
		return nil, fmt.Errorf("sweep: no scales")
	}
	log = logging.OrNop(log)
	base := config.Vec3(sweep.Base.Disturbance.Bound, adversary.DefaultBound)
	results := make([]SweepResult, 0, len(sweep.Scales))

	for i, scale := range sweep.Scales {
		if scale < 0 {
			return nil, fmt.Errorf("sweep: negative scale %v", scale)
		}
		bound := [3]float64{base[0] * scale, base[1] * scale, base[2] * scale}

		cfg := *sweep.Base
		cfg.Disturbance = config.DisturbanceConfig{Kind: "uniform", Bound: bound[:]}
		exp, err := experiment.New(&cfg, log)
		if err != nil {
			return nil, err
		}
		runs, err := exp.Run(ctx, false)
		if err != nil {
			return nil, err
		}

		res := SweepResult{Scale: scale, Bound: bound, Summary: sim.Summarize(runs)}
		results = append(results, res)
		log.Info("sweep point",
			zap.Int("index", i+1),
			zap.Float64("scale", scale),
			zap.Float64("mean_steps", res.Summary.MeanSteps),
			zap.Float64("mean_return", res.Summary.MeanReturn),
		)
	}
	return results, nil
}
