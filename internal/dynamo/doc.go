// Package dynamo provides the core types shared by the hover simulation.
//
// The package defines the fundamental interfaces and value types that the
// rigid-body engine, the quadrotor agent and the environment loop exchange:
//
//   - [State]: flat vector integrated by an [Integrator]
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [AgentState]: pose, velocity and body rates of the quadrotor
//   - [Action]: per-motor normalized PWM command
//   - [Disturbance]: adversarial torque about the body axes
//   - [Observation]: flat vector handed to a control policy
//
// # Example
//
//	eng, _ := body.NewEngine(body.NewCrazyFlieBody(), integrators.NewSemiImplicitEuler(), 1.0/200)
//	eng.Reset(dynamo.Hovering(r3.Vec{Z: 1}))
//	eng.ApplyForce(r3.Vec{Z: 0.3}, r3.Vec{}, body.LinkFrame)
//	err := eng.Step()
//
// # Thread Safety
//
// None of the stateful types are safe for concurrent use. Parallel rollouts
// give every goroutine its own engine, agent and disturbance sampler.
package dynamo
