package integrators

import "github.com/san-kum/advhover/internal/dynamo"

// Euler is the explicit forward scheme. It gains energy on rotating bodies
// and is kept to compare against SemiImplicitEuler.
type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

func (*Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	out := x.Clone()
	for i, d := range dyn.Derive(x, u, t) {
		out[i] += dt * d
	}
	return out
}
