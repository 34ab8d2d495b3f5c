// Package adversary provides the disturbance samplers that feed roll and
// pitch torques into the adversarial hover physics.
//
// A Sampler receives the current agent state on every control step. The
// samplers here ignore it: UniformBox draws i.i.d. torques from a box and
// Constant replays a fixed vector. The state argument is the hook for a
// state-conditioned adversary; none is implemented.
//
// Samplers own their random source and are not safe for concurrent use.
// Each environment instance builds its own.
package adversary
