// Package audio analyses mono sample blocks into the scalar values consumed
// by audio triggers: nine band energies, RMS and peak volume, a beat flag
// and a tempo estimate.
package audio
