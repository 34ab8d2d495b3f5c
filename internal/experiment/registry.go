package experiment

import (
	"github.com/san-kum/advhover/internal/adversary"
	"github.com/san-kum/advhover/internal/config"
	"github.com/san-kum/advhover/internal/control"
	"github.com/san-kum/advhover/internal/env"
	"github.com/san-kum/advhover/internal/integrators"
)

// Registry lists every name a configuration may refer to.
type Registry struct {
	Envs         []string
	Policies     []string
	Integrators  []string
	Disturbances []string
}

func NewRegistry() *Registry {
	return &Registry{
		Envs:         env.IDs(),
		Policies:     control.Kinds(),
		Integrators:  integrators.Names(),
		Disturbances: adversary.Kinds(),
	}
}

// Presets returns the preset names for an environment.
func (r *Registry) Presets(envID string) []string {
	return config.ListPresets(envID)
}
