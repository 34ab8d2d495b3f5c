package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/advhover/internal/control"
	"github.com/san-kum/advhover/internal/dynamo"
	"github.com/san-kum/advhover/internal/env"
	"github.com/san-kum/advhover/internal/logging"
	"go.uber.org/zap"
)

// Simulator flies a policy through episodes of one environment.
type Simulator struct {
	env       env.Environment
	policy    control.Policy
	metrics   []dynamo.Metric
	observers []Observer
	log       *zap.Logger
}

func New(e env.Environment, p control.Policy, log *zap.Logger) *Simulator {
	return &Simulator{
		env:       e,
		policy:    p,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]Observer, 0),
		log:       logging.OrNop(log),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric) { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)    { s.observers = append(s.observers, o) }

// Run resets the environment and the policy, then steps until the episode
// ends, cfg.MaxSteps is reached or ctx is cancelled.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.MaxSteps < 0 {
		return nil, dynamo.Bounds("max_steps", cfg.MaxSteps)
	}

	result := &Result{
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	err := s.RunWithCallback(ctx, cfg.MaxSteps, func(tr dynamo.Transition, res env.StepResult) bool {
		for _, m := range s.metrics {
			m.Observe(tr)
		}
		if cfg.Record {
			result.Transitions = append(result.Transitions, tr)
		}
		result.Steps++
		result.Return += tr.Reward
		if res.Done {
			result.Done = true
			result.Truncated = res.Info.TimeLimit
			result.Reason = res.Info.Reason
		}
		return true
	})

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	if err != nil {
		return result, err
	}

	s.log.Info("episode finished",
		zap.String("policy", s.policy.Name()),
		zap.Int("steps", result.Steps),
		zap.Float64("return", result.Return),
		zap.Bool("truncated", result.Truncated),
		zap.String("reason", string(result.Reason)),
	)
	return result, nil
}

// RunWithCallback runs one episode and hands every transition to callback.
// Returning false from callback stops the episode early.
func (s *Simulator) RunWithCallback(ctx context.Context, maxSteps int, callback func(dynamo.Transition, env.StepResult) bool) error {
	obs, err := s.env.Reset()
	if err != nil {
		return fmt.Errorf("sim: reset: %w", err)
	}
	s.policy.Reset()
	clock, hasClock := env.Unwrap(s.env).(interface{ Time() float64 })

	for step := 0; maxSteps == 0 || step < maxSteps; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		a := s.policy.Act(obs)
		res, err := s.env.Step(a)
		if err != nil {
			return fmt.Errorf("sim: step %d: %w", step, err)
		}

		tr := dynamo.Transition{
			Step:        step + 1,
			State:       s.env.State(),
			Action:      a,
			Disturbance: res.Info.Disturbance,
			Reward:      res.Reward,
			Done:        res.Done,
		}
		if hasClock {
			tr.Time = clock.Time()
		}
		for _, o := range s.observers {
			o.OnStep(tr)
		}

		if !callback(tr, res) || res.Done {
			return nil
		}
		obs = res.Observation
	}
	return nil
}
