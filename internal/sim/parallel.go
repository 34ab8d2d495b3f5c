package sim

import (
	"context"
	"runtime"

	"github.com/san-kum/advhover/internal/control"
	"github.com/san-kum/advhover/internal/dynamo"
	"github.com/san-kum/advhover/internal/env"
	"github.com/san-kum/advhover/internal/logging"
	"github.com/san-kum/advhover/internal/termination"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Factory builds a fresh environment and policy for one run. Nothing it
// returns may be shared with another run.
type Factory func(seed uint64) (env.Environment, control.Policy, error)

// Ensemble runs independent episodes in parallel, one environment per
// goroutine.
type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart uint64
	workers   int
	metrics   func() []dynamo.Metric
	log       *zap.Logger
}

func NewEnsemble(f Factory, numRuns int, seedStart uint64) *Ensemble {
	return &Ensemble{
		factory:   f,
		numRuns:   numRuns,
		seedStart: seedStart,
		workers:   runtime.GOMAXPROCS(0),
		log:       zap.NewNop(),
	}
}

// WithMetrics sets a constructor called once per run.
func (e *Ensemble) WithMetrics(fn func() []dynamo.Metric) *Ensemble {
	e.metrics = fn
	return e
}

func (e *Ensemble) WithWorkers(n int) *Ensemble {
	if n > 0 {
		e.workers = n
	}
	return e
}

func (e *Ensemble) WithLogger(l *zap.Logger) *Ensemble {
	e.log = logging.OrNop(l)
	return e
}

// Run executes every episode and returns results in seed order. The first
// failing run cancels the rest.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	if e.numRuns < 1 {
		return nil, dynamo.Bounds("num_runs", e.numRuns)
	}
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			seed := e.seedStart + uint64(idx)
			en, pol, err := e.factory(seed)
			if err != nil {
				return err
			}

			s := New(en, pol, e.log.With(zap.Uint64("seed", seed)))
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, cfg)
			if err != nil {
				return err
			}
			res.Seed = seed
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func Summarize(results []*Result) Summary {
	sum := Summary{
		Episodes: len(results),
		Reasons:  make(map[termination.Reason]int),
	}
	if len(results) == 0 {
		return sum
	}

	returns := make([]float64, len(results))
	steps := make([]float64, len(results))
	for i, r := range results {
		returns[i] = r.Return
		steps[i] = float64(r.Steps)
		switch {
		case r.Truncated:
			sum.Truncated++
		case r.Done:
			sum.Terminated++
			sum.Reasons[r.Reason]++
		}
	}
	sum.MeanReturn, sum.StdReturn = stat.MeanStdDev(returns, nil)
	if len(results) == 1 {
		sum.StdReturn = 0
	}
	sum.MeanSteps = stat.Mean(steps, nil)
	return sum
}
