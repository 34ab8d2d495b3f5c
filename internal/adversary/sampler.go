package adversary

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/advhover/internal/dynamo"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultBound is the per-axis torque bound in N·m.
var DefaultBound = [3]float64{1e-3, 1e-3, 1e-4}

type Sampler interface {
	Name() string
	Sample(s dynamo.AgentState) dynamo.Disturbance
}

// UniformBox draws each axis independently from [-Bound[i], Bound[i]].
type UniformBox struct {
	bound [3]float64
	axes  [3]distuv.Uniform
}

func NewUniformBox(bound [3]float64, seed uint64) (*UniformBox, error) {
	if err := ValidateBound(bound); err != nil {
		return nil, err
	}
	src := rand.NewSource(seed)
	u := &UniformBox{bound: bound}
	for i, b := range bound {
		u.axes[i] = distuv.Uniform{Min: -b, Max: b, Src: src}
	}
	return u, nil
}

func (u *UniformBox) Name() string      { return "uniform" }
func (u *UniformBox) Bound() [3]float64 { return u.bound }

func (u *UniformBox) Sample(dynamo.AgentState) dynamo.Disturbance {
	var d dynamo.Disturbance
	for i := range u.axes {
		d[i] = u.axes[i].Rand()
	}
	return d
}

type Zero struct{}

func (Zero) Name() string                                { return "zero" }
func (Zero) Sample(dynamo.AgentState) dynamo.Disturbance { return dynamo.Disturbance{} }

// Constant returns the same torque on every call.
type Constant struct {
	Torque dynamo.Disturbance
}

func (c Constant) Name() string                                { return "constant" }
func (c Constant) Sample(dynamo.AgentState) dynamo.Disturbance { return c.Torque }

// ValidateBound requires every axis bound to be finite and non-negative.
func ValidateBound(bound [3]float64) error {
	for i, b := range bound {
		if math.IsNaN(b) || math.IsInf(b, 0) || b < 0 {
			return dynamo.Bounds(fmt.Sprintf("bound[%d]", i), b)
		}
	}
	return nil
}

var kinds = map[string]func(bound, constant [3]float64, seed uint64) (Sampler, error){
	"uniform": func(bound, _ [3]float64, seed uint64) (Sampler, error) {
		u, err := NewUniformBox(bound, seed)
		if err != nil {
			return nil, err
		}
		return u, nil
	},
	"zero": func(_, _ [3]float64, _ uint64) (Sampler, error) {
		return Zero{}, nil
	},
	"constant": func(_, constant [3]float64, _ uint64) (Sampler, error) {
		for i, v := range constant {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, dynamo.Bounds(fmt.Sprintf("constant[%d]", i), v)
			}
		}
		return Constant{Torque: constant}, nil
	},
}

// New builds the sampler registered under kind. bound is used by "uniform",
// constant by "constant".
func New(kind string, bound, constant [3]float64, seed uint64) (Sampler, error) {
	fn, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: disturbance %q", dynamo.ErrUnknownKind, kind)
	}
	return fn(bound, constant, seed)
}

func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
