package mapping

import "math/rand/v2"

// Channel carries the per-socket state a mapping law needs between ticks:
// the Smoothed envelope output and the RandomInRange held sample.
type Channel struct {
	kind   ModeKind
	primed bool
	value  float32
	prev   float32
}

// Reset drops all state; the next Step starts fresh.
func (ch *Channel) Reset() {
	*ch = Channel{}
}

// Value returns the last output.
func (ch *Channel) Value() float32 {
	return ch.value
}

// Step applies cfg to raw for one tick of dt seconds. rng is only consulted
// by RandomInRange and may be nil for the other modes. Switching the mode
// kind resets the state.
func (ch *Channel) Step(cfg Config, raw float32, dt float64, rng *rand.Rand) float32 {
	if ch.primed && ch.kind != cfg.Mode.Kind {
		ch.Reset()
	}

	x := cfg.Normalize(raw)

	switch cfg.Mode.Kind {
	case Direct:
		ch.value = cfg.Lerp(x)
	case Fixed:
		ch.value = cfg.Gate(x)
	case RandomInRange:
		if !ch.primed {
			ch.value = cfg.Min
			// The first tick counts as coming from below the threshold.
			ch.prev = cfg.Threshold - 1
		}

		if cfg.Fires(ch.prev, x) {
			ch.value = sample(cfg, rng)
		}

		ch.prev = x
	case Smoothed:
		if !ch.primed {
			ch.value = cfg.Min
		}

		ch.value = Envelope(ch.value, cfg.Lerp(x), cfg.Mode.Attack, cfg.Mode.Release, dt)
	default:
		ch.value = cfg.Lerp(x)
	}

	ch.kind = cfg.Mode.Kind
	ch.primed = true

	return ch.value
}

func sample(cfg Config, rng *rand.Rand) float32 {
	var u float32
	if rng != nil {
		u = rng.Float32()
	} else {
		u = rand.Float32()
	}

	return cfg.Min + u*(cfg.Max-cfg.Min)
}
