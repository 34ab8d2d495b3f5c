// Package physics advances the quadrotor by one physics substep.
//
// A [Stepper] composes the agent's motor model with aerodynamic drag,
// ground effect and, for the adversarial kind, the roll/pitch disturbance
// torques, then asks the engine for exactly one integration tick:
//
//	motor thrust -> yaw torque -> disturbance -> drag -> ground effect -> integrate -> refresh
//
// Stepper kinds form a closed set resolved through [ParseKind]:
//
//   - [KindRigid]: no disturbance channel
//   - [KindRigidAdversary]: disturbance on body x and y
//
// The adversarial kind requires an agent that implements
// [agent.TorqueReceiver].
package physics
