// Package analysis turns integrated trajectories into the quantities the
// plotting and animation layers consume.
//
//   - [DeriveSeries]: energies, bob and pivot positions and display phase at
//     arbitrary times, through the trajectory's dense output
//   - [NewAnimation]: uniform frame grid with a per-frame accessor
//   - [Stroboscopic]: one sample per driving period (Poincaré section)
//   - [PowerSpectrum]: spectrum of a uniformly sampled series
//   - [LyapunovExponent], [BifurcationDiagram]: chaos diagnostics
//
// Nothing here integrates except the chaos diagnostics, and every function
// is a pure function of its inputs:
//
//	s, err := analysis.DeriveSeries(params, tr, analysis.UniformTimes(tr.Interval, 1000))
//	if errors.Is(err, dynamo.ErrSampleOutOfRange) {
//	    // a requested time lies outside the trajectory
//	}
package analysis
