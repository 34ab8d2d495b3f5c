// Package analysis characterizes the attitude response of stored episodes.
//
//   - [PowerSpectrum]: one-sided power spectrum of a uniformly sampled series
//   - [DominantFrequency]: strongest non-DC oscillation
//   - [Describe]: mean, spread and extremes of a series
//
// A hover controller fighting a random torque shows up as broadband roll
// noise; a poorly damped loop shows a sharp peak near its crossover
// frequency:
//
//	s := analysis.PowerSpectrum(traj.Column("roll"), 100)
//	f, _ := s.Dominant()
package analysis
