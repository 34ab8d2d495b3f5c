package integrators

import "github.com/san-kum/advhover/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta scheme, a higher-order
// reference for runs on the default SemiImplicitEuler. Four derivative
// calls per tick.
type RK4 struct {
	k       [4]dynamo.State
	scratch dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) resize(n int) {
	if len(r.scratch) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.scratch = make(dynamo.State, n)
}

// stage offsets of the classic tableau
var rk4Nodes = [4]float64{0, 0.5, 0.5, 1}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	r.resize(len(x))

	for s, c := range rk4Nodes {
		in := x
		if s > 0 {
			prev := r.k[s-1]
			for i := range x {
				r.scratch[i] = x[i] + c*dt*prev[i]
			}
			in = r.scratch
		}
		copy(r.k[s], dyn.Derive(in, u, t+c*dt))
	}

	out := make(dynamo.State, len(x))
	for i := range x {
		out[i] = x[i] + dt/6*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	return out
}
