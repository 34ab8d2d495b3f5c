package env

import (
	"fmt"
	"sort"

	"github.com/san-kum/advhover/internal/adversary"
	"github.com/san-kum/advhover/internal/agent"
	"github.com/san-kum/advhover/internal/dynamo"
	"github.com/san-kum/advhover/internal/physics"
	"github.com/san-kum/advhover/internal/termination"
	"go.uber.org/zap"
)

const DefaultMaxEpisodeSteps = 500

// Spec describes a registered environment.
type Spec struct {
	ID              string
	Physics         physics.Kind
	Agent           agent.Kind
	Termination     func() termination.Policy
	Disturbance     string
	MaxEpisodeSteps int
}

var specs = map[string]Spec{
	"DroneHoverBulletEnv-v0": {
		ID:              "DroneHoverBulletEnv-v0",
		Physics:         physics.KindRigid,
		Agent:           agent.KindCrazyFlie,
		Termination:     termination.Baseline,
		Disturbance:     "zero",
		MaxEpisodeSteps: DefaultMaxEpisodeSteps,
	},
	"DroneHoverBulletEnvWithAdversary-v0": {
		ID:              "DroneHoverBulletEnvWithAdversary-v0",
		Physics:         physics.KindRigidAdversary,
		Agent:           agent.KindCrazyFlieAdversary,
		Termination:     termination.Adversarial,
		Disturbance:     "uniform",
		MaxEpisodeSteps: DefaultMaxEpisodeSteps,
	},
}

func Lookup(id string) (Spec, error) {
	s, ok := specs[id]
	if !ok {
		return Spec{}, fmt.Errorf("%w: environment %q", dynamo.ErrUnknownKind, id)
	}
	return s, nil
}

func IDs() []string {
	ids := make([]string, 0, len(specs))
	for id := range specs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Options returns the default options for this environment.
func (s Spec) Options() Options {
	o := DefaultOptions()
	o.Physics = s.Physics
	o.Agent = s.Agent
	o.Termination = s.Termination()
	return o
}

// Build assembles the environment from opts with a sampler of the given
// kind, wrapped in a TimeLimit of maxSteps.
func Build(opts Options, disturbance string, bound, constant [3]float64, maxSteps int) (*TimeLimit, error) {
	sampler, err := adversary.New(disturbance, bound, constant, opts.Seed)
	if err != nil {
		return nil, err
	}
	h, err := NewHoverEnv(opts, sampler)
	if err != nil {
		return nil, err
	}
	return NewTimeLimit(h, maxSteps)
}

// Make builds a registered environment with its default settings.
func Make(id string, seed uint64, log *zap.Logger) (*TimeLimit, error) {
	s, err := Lookup(id)
	if err != nil {
		return nil, err
	}
	opts := s.Options()
	opts.Seed = seed
	opts.Logger = log
	return Build(opts, s.Disturbance, adversary.DefaultBound, [3]float64{}, s.MaxEpisodeSteps)
}
