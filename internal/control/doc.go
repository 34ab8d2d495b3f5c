// Package control provides the policies that fly the hover environment.
//
// A [Policy] maps an observation to an action in the environment's action
// space:
//
//   - [Hover]: constant hover command, open loop
//   - [HoverPID]: cascaded position, altitude and attitude PID loops
//   - [Random]: uniform samples inside the action bounds
//
// # Usage
//
//	space := e.ActionSpace()
//	pol, err := control.New("pid", space, params.HoverCommand(), control.DefaultGains(), 0.01, seed)
//	obs, _ := e.Reset()
//	res, err := e.Step(pol.Act(obs))
//
// Policies keep internal state (integrators, random sources) and must be
// reset between episodes. They are not safe for concurrent use.
package control
