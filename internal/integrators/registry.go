package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/advhover/internal/dynamo"
)

var registry = map[string]func() dynamo.Integrator{
	"euler":         func() dynamo.Integrator { return NewEuler() },
	"semi_implicit": func() dynamo.Integrator { return NewSemiImplicitEuler() },
	"rk4":           func() dynamo.Integrator { return NewRK4() },
}

// New returns a fresh integrator. Integrators carry scratch buffers, so each
// engine needs its own instance.
func New(name string) (dynamo.Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: integrator %q", dynamo.ErrUnknownKind, name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
