package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/advhover/internal/config"
	"github.com/san-kum/advhover/internal/experiment"
	"github.com/san-kum/advhover/internal/sim"
	"go.uber.org/zap"
)

// Score rates an ensemble; higher is better.
type Score func(results []*sim.Result) float64

// MeanReturn scores by the average episode return.
func MeanReturn(results []*sim.Result) float64 {
	return sim.Summarize(results).MeanReturn
}

// GridSearch tries every combination of the given parameter values and keeps
// the best scoring one.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(params), len(ranges))
	}
	probe := config.DefaultConfig()
	for i, name := range params {
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("optim: no values for %s", name)
		}
		if err := Apply(probe, name, ranges[i][0]); err != nil {
			return nil, err
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of combinations.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Result of a search.
type Result struct {
	Params map[string]float64
	Score  float64
	Tried  int
}

// Search runs one ensemble per combination on a copy of base.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, score Score, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	best := &Result{Score: math.Inf(-1)}

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		cfg := *base
		for name, v := range params {
			if err := Apply(&cfg, name, v); err != nil {
				return err
			}
		}
		exp, err := experiment.New(&cfg, log)
		if err != nil {
			return err
		}
		results, err := exp.Run(ctx, false)
		if err != nil {
			return err
		}

		val := score(results)
		best.Tried++
		log.Debug("grid point", zap.Any("params", params), zap.Float64("score", val))
		if val > best.Score {
			best.Score = val
			best.Params = make(map[string]float64, len(params))
			for k, v := range params {
				best.Params[k] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, eval func(map[string]float64) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return eval(current)
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val
		if err := g.searchRecursive(ctx, depth+1, next, eval); err != nil {
			return err
		}
	}
	return nil
}

var setters = map[string]func(c *config.Config, v float64){
	"alt_kp": func(c *config.Config, v float64) { c.PolicyParams.AltKp = v },
	"alt_ki": func(c *config.Config, v float64) { c.PolicyParams.AltKi = v },
	"alt_kd": func(c *config.Config, v float64) { c.PolicyParams.AltKd = v },
	"att_kp": func(c *config.Config, v float64) { c.PolicyParams.AttKp = v },
	"att_kd": func(c *config.Config, v float64) { c.PolicyParams.AttKd = v },
	"pos_kp": func(c *config.Config, v float64) { c.PolicyParams.PosKp = v },
	"pos_kd": func(c *config.Config, v float64) { c.PolicyParams.PosKd = v },
}

// Apply sets a tunable gain by its config key.
func Apply(c *config.Config, name string, v float64) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("optim: unknown parameter %q (tunable: %v)", name, Tunable())
	}
	set(c, v)
	return nil
}

func Tunable() []string {
	names := make([]string, 0, len(setters))
	for k := range setters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
