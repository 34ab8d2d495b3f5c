// Package body is a small single-body rigid dynamics engine.
//
// It offers the handful of calls a quadrotor simulation needs from a physics
// engine: queue forces and torques in the world or body frame, advance one
// fixed time step, read the pose back. There is no collision handling and no
// multi-body support.
//
// Forces and torques queued between two calls to [Engine.Step] are summed and
// consumed atomically by the next step. A step that produces a non-finite
// state is discarded: the previous state is kept, the accumulators are
// cleared and a [*dynamo.SimulationError] is returned.
package body
