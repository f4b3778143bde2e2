package mapping

import "math"

// Normalize applies the invert flag to a raw trigger value.
func (c Config) Normalize(raw float32) float32 {
	if c.Invert {
		return 1 - raw
	}

	return raw
}

// Lerp interpolates linearly between Min and Max.
func (c Config) Lerp(x float32) float32 {
	return c.Min + x*(c.Max-c.Min)
}

// Gate is the Fixed law: Max at or above Threshold, Min below it.
func (c Config) Gate(x float32) float32 {
	if x >= c.Threshold {
		return c.Max
	}

	return c.Min
}

// Fires reports whether x crosses Threshold upwards relative to prev.
func (c Config) Fires(prev, x float32) bool {
	return prev < c.Threshold && x >= c.Threshold
}

// Apply evaluates the stateless laws for one raw value. Smoothed returns
// its envelope target and RandomInRange returns Min; use a Channel when
// state has to carry across ticks.
func (c Config) Apply(raw float32) float32 {
	x := c.Normalize(raw)

	switch c.Mode.Kind {
	case Direct, Smoothed:
		return c.Lerp(x)
	case Fixed:
		return c.Gate(x)
	case RandomInRange:
		return c.Min
	default:
		return c.Lerp(x)
	}
}

// SmoothingCoeff returns 1 - exp(-dt/tau). A non-positive tau snaps to the
// target.
func SmoothingCoeff(dt, tau float64) float32 {
	if tau <= 0 {
		return 1
	}

	return float32(1 - math.Exp(-dt/tau))
}

// Envelope advances an asymmetric first-order envelope by dt seconds.
// Rising values use attack as time constant, falling values use release.
func Envelope(out, target float32, attack, release float32, dt float64) float32 {
	tau := release
	if target > out {
		tau = attack
	}

	return out + (target-out)*SmoothingCoeff(dt, float64(tau))
}
