package eval

import (
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
	"github.com/MrLongNight/MapFlow-sub000/flow/mapping"
)

// Evaluator turns a module graph and a Snapshot into resolved parameter
// values, once per tick. It keeps the per-socket mapping state and the
// Random trigger state between ticks and is not safe for concurrent use.
type Evaluator struct {
	logger  *slog.Logger
	rng     *rand.Rand
	router  *mapping.Router
	randoms map[graph.PartID]randomState
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	cfg := applyOptions(opts...)

	return &Evaluator{
		logger:  cfg.logger,
		rng:     cfg.rng,
		router:  mapping.NewRouter(cfg.rng),
		randoms: make(map[graph.PartID]randomState),
	}
}

// Reset drops all state carried between ticks.
func (e *Evaluator) Reset() {
	e.router.Reset()
	clear(e.randoms)
}

// Channels returns the number of live mapping channels.
func (e *Evaluator) Channels() int {
	return e.router.Len()
}

// Evaluate runs one tick over m.
func (e *Evaluator) Evaluate(m *graph.Module, snap Snapshot) *Result {
	res := newResult()

	for _, p := range m.Parts() {
		if p.Category() != graph.CategoryTrigger {
			continue
		}

		values := e.triggerValues(p, &snap)
		if override, ok := snap.Triggers[p.ID]; ok {
			copy(values, override)
		}

		res.TriggerValues[p.ID] = values

		if active := activeSockets(p, values); len(active) > 0 {
			res.Active[p.ID] = active
		}
	}

	e.propagate(m, res)
	e.linkMasters(m, res)
	clear(res.SocketInputs)
	e.propagate(m, res)
	e.linkSlaves(m, res)
	e.applyMappings(m, res, snap.Dt.Seconds())
	e.prune(m)

	return res
}

// propagate delivers every source value to its target socket. Only
// Trigger and Link outputs carry values; media, layer and other edges are
// left alone. Several edges into one socket combine with max.
func (e *Evaluator) propagate(m *graph.Module, res *Result) {
	for _, c := range m.Connections() {
		values, ok := res.TriggerValues[c.FromPart]
		if !ok {
			continue
		}

		from, fromOK := m.Part(c.FromPart)
		to, toOK := m.Part(c.ToPart)

		if !fromOK || !toOK || c.FromSocket < 0 || c.FromSocket >= len(values) ||
			c.FromSocket >= len(from.Outputs()) ||
			c.ToSocket < 0 || c.ToSocket >= len(to.Inputs()) {
			e.logger.Debug("skipping dangling connection",
				"from_part", c.FromPart, "from_socket", c.FromSocket,
				"to_part", c.ToPart, "to_socket", c.ToSocket)

			continue
		}

		if !carriesValue(from.Outputs()[c.FromSocket].Type) {
			continue
		}

		v := values[c.FromSocket]

		inputs := res.SocketInputs[c.ToPart]
		if inputs == nil {
			inputs = make(map[int]float32)
			res.SocketInputs[c.ToPart] = inputs
		}

		if prev, ok := inputs[c.ToSocket]; !ok || v > prev {
			inputs[c.ToSocket] = v
		}
	}
}

func carriesValue(t graph.SocketType) bool {
	return t == graph.SocketTrigger || t == graph.SocketLink
}

// linkMasters writes the activity of every master on its Link Out socket.
// Activity is 1 unless the visibility input is enabled, in which case it is
// the delivered visibility value, or 0 when nothing is connected.
func (e *Evaluator) linkMasters(m *graph.Module, res *Result) {
	for _, p := range m.Parts() {
		activity := float32(1)

		if p.Link.TriggerInputEnabled {
			activity = 0

			if idx, ok := p.InputIndex(graph.SocketVisibilityIn); ok {
				activity, _ = res.Input(p.ID, idx)
			}

			res.Visibility[p.ID] = activity
		}

		if p.Link.Mode != graph.LinkMaster {
			continue
		}

		res.Visibility[p.ID] = activity

		idx, ok := p.OutputIndex(graph.SocketLinkOut)
		if !ok {
			continue
		}

		values := res.TriggerValues[p.ID]
		if len(values) < len(p.Outputs()) {
			values = slices.Grow(values, len(p.Outputs())-len(values))
			values = values[:len(p.Outputs())]
			res.TriggerValues[p.ID] = values
		}

		values[idx] = activity
	}
}

// linkSlaves reads the Link In value of every slave, inverted for
// Inverted slaves, and records it as the slave's visibility.
func (e *Evaluator) linkSlaves(m *graph.Module, res *Result) {
	for _, p := range m.Parts() {
		if p.Link.Mode != graph.LinkSlave {
			continue
		}

		idx, ok := p.InputIndex(graph.SocketLinkIn)
		if !ok {
			continue
		}

		v, ok := res.Input(p.ID, idx)
		if !ok {
			continue
		}

		if p.Link.Behavior == graph.Inverted {
			v = 1 - clamp01(v)
			res.SocketInputs[p.ID][idx] = v
		}

		res.Visibility[p.ID] = v
	}
}

// applyMappings runs every configured, connected input socket through its
// mapping channel, visiting parts in topological order.
func (e *Evaluator) applyMappings(m *graph.Module, res *Result, dt float64) {
	order, err := m.Order()
	if err != nil {
		e.logger.Warn("mapping in insertion order", "module", m.ID, "error", err)

		order = make([]graph.PartID, 0, len(m.Parts()))
		for _, p := range m.Parts() {
			order = append(order, p.ID)
		}
	}

	for _, id := range order {
		p, ok := m.Part(id)
		if !ok || !p.AcceptsMappings() || len(p.TriggerTargets) == 0 {
			continue
		}

		sockets := make([]int, 0, len(p.TriggerTargets))
		for s := range p.TriggerTargets {
			sockets = append(sockets, s)
		}

		slices.Sort(sockets)

		for _, socket := range sockets {
			cfg := p.TriggerTargets[socket]
			if cfg.Target.IsNone() {
				continue
			}

			raw, ok := res.Input(id, socket)
			if !ok {
				continue
			}

			key := mapping.Key{Part: uint64(id), Socket: socket}
			res.Params = append(res.Params, ResolvedParam{
				Part:   id,
				Socket: socket,
				Target: cfg.Target,
				Value:  e.router.Resolve(key, cfg, raw, dt),
			})
		}
	}
}

// prune drops mapping channels and Random trigger state whose part,
// socket or mapping no longer exists.
func (e *Evaluator) prune(m *graph.Module) {
	e.router.Retain(func(key mapping.Key) bool {
		p, ok := m.Part(graph.PartID(key.Part))
		if !ok || key.Socket >= len(p.Inputs()) {
			return false
		}

		cfg, ok := p.Mapping(key.Socket)

		return ok && !cfg.Target.IsNone()
	})

	for id := range e.randoms {
		p, ok := m.Part(id)
		if !ok {
			delete(e.randoms, id)

			continue
		}

		if _, random := p.Type.(graph.TriggerRandom); !random {
			delete(e.randoms, id)
		}
	}
}
