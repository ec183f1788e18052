// Package analysis inspects recorded runs.
//
//   - [PowerSpectrum]: amplitude spectrum of a sampled column
//   - [Period]: oscillation period from mean crossings
//   - [Portrait]: 2D trajectory for phase or path plots
//
// # Oscillators
//
// A body on a spring of stiffness k has angular frequency sqrt(k/m), so its
// x column should peak near sqrt(k/m)/2π:
//
//	s := analysis.PowerSpectrum(xs, sampleDt)
//	freq, _ := s.Dominant()
package analysis
