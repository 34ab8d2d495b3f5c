// Package env runs the hover task: one control step samples a disturbance,
// holds the action for a fixed number of physics substeps, then reports
// an observation, a shaped reward and the termination verdict.
//
// [HoverEnv] is the core loop. [NormalizeAction] and [TimeLimit] decorate
// any [Environment] and compose freely:
//
//	e, err := env.Make("DroneHoverBulletEnvWithAdversary-v0", seed, logger)
//	n := env.NewNormalizeAction(e)
//	obs, err := n.Reset()
//	res, err := n.Step(dynamo.Action{0, 0, 0, 0})
//
// Once an episode reports Done, Step returns [dynamo.ErrEpisodeDone] until
// Reset. An engine failure returns the wrapped error once and
// [dynamo.ErrEpisodeFailed] afterwards.
//
// An environment owns its engine, agent and disturbance sampler. Separate
// instances share nothing and may run on separate goroutines; a single
// instance is not safe for concurrent use.
package env
