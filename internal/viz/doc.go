// Package viz renders hover episodes in the terminal.
//
// [Model] is a Bubble Tea program that flies a policy through an
// environment live, drawing front and side views of the drone on a braille
// [Canvas] next to altitude and tilt charts. [PlotColumn] and [PlotEpisode]
// chart stored trajectories with asciigraph.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single step while paused
//	R     - Reset the episode
//	+/-   - Change steps per frame
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
