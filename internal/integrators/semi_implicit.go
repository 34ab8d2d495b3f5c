package integrators

import "github.com/san-kum/advhover/internal/dynamo"

// SemiImplicitEuler advances velocities first and then moves the
// configuration with the updated velocities, the scheme used by most
// game-style rigid-body engines. Systems that are not dynamo.Partitioned
// fall back to explicit Euler.
type SemiImplicitEuler struct {
	scratch dynamo.State
}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (s *SemiImplicitEuler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	p, ok := dyn.(dynamo.Partitioned)
	if !ok {
		return (&Euler{}).Step(dyn, x, u, t, dt)
	}
	split := p.ConfigDim()

	if len(s.scratch) != n {
		s.scratch = make(dynamo.State, n)
	}

	dx := dyn.Derive(x, u, t)
	copy(s.scratch, x)
	for i := split; i < n; i++ {
		s.scratch[i] = x[i] + dt*dx[i]
	}

	dxNew := dyn.Derive(s.scratch, u, t+dt)

	result := s.scratch.Clone()
	for i := 0; i < split; i++ {
		result[i] = x[i] + dt*dxNew[i]
	}
	return result
}
