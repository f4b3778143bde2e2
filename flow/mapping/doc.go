// Package mapping turns raw trigger values into target parameter values.
//
// A Config is attached to one input socket of a part and selects one of
// four laws. The raw value x is inverted first when Invert is set
// (x' = 1 - x), then:
//
//   - Direct:        Min + x'*(Max-Min)
//   - Fixed:         Max when x' >= Threshold, otherwise Min
//   - RandomInRange: a uniform sample from [Min, Max] taken each time x'
//     rises through Threshold, held until the next rise; Min before the
//     first rise
//   - Smoothed:      out += (target-out)*(1-exp(-dt/tau)) with
//     target = Min + x'*(Max-Min), tau = Attack while rising and Release
//     while falling; the envelope starts at Min
//
// Config holds configuration only. Channel and Router keep the per-socket
// state the stateful laws need and are driven once per tick by the evaluator.
package mapping
