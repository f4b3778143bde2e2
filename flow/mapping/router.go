package mapping

import "math/rand/v2"

// Key addresses one mapped input socket.
type Key struct {
	Part   uint64
	Socket int
}

// Router owns the Channel of every mapped socket of a graph.
type Router struct {
	channels map[Key]*Channel
	rng      *rand.Rand
}

// NewRouter creates a Router. A nil rng selects a randomly seeded source.
func NewRouter(rng *rand.Rand) *Router {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec
	}

	return &Router{
		channels: make(map[Key]*Channel),
		rng:      rng,
	}
}

// Resolve runs cfg for the socket at key and returns the mapped value.
func (r *Router) Resolve(key Key, cfg Config, raw float32, dt float64) float32 {
	ch := r.channels[key]
	if ch == nil {
		ch = &Channel{}
		r.channels[key] = ch
	}

	return ch.Step(cfg, raw, dt, r.rng)
}

// Channel returns the state for key, if any.
func (r *Router) Channel(key Key) (*Channel, bool) {
	ch, ok := r.channels[key]

	return ch, ok
}

// Retain drops every channel for which keep returns false.
func (r *Router) Retain(keep func(Key) bool) {
	for key := range r.channels {
		if !keep(key) {
			delete(r.channels, key)
		}
	}
}

// Len returns the number of live channels.
func (r *Router) Len() int {
	return len(r.channels)
}

// Reset drops all channels.
func (r *Router) Reset() {
	clear(r.channels)
}
