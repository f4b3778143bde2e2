package graph

// Order returns the part ids in topological order (Kahn's algorithm).
// Parts without dependencies keep their insertion order. Self-loops and
// connections to unknown parts are ignored. A cycle yields ErrCycle.
func (m *Module) Order() ([]PartID, error) {
	indegree := make(map[PartID]int, len(m.parts))
	for _, p := range m.parts {
		indegree[p.ID] = 0
	}

	outgoing := make(map[PartID][]PartID, len(m.parts))

	for _, c := range m.connections {
		if c.FromPart == c.ToPart {
			continue
		}

		if _, ok := indegree[c.FromPart]; !ok {
			continue
		}

		if _, ok := indegree[c.ToPart]; !ok {
			continue
		}

		outgoing[c.FromPart] = append(outgoing[c.FromPart], c.ToPart)
		indegree[c.ToPart]++
	}

	queue := make([]PartID, 0, len(m.parts))

	for _, p := range m.parts {
		if indegree[p.ID] == 0 {
			queue = append(queue, p.ID)
		}
	}

	order := make([]PartID, 0, len(m.parts))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		order = append(order, id)
		for _, to := range outgoing[id] {
			indegree[to]--
			if indegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}

	if len(order) != len(m.parts) {
		return nil, ErrCycle
	}

	return order, nil
}
