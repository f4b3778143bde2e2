package graph

import (
	"fmt"
	"slices"
)

// UpdatePartSockets regenerates the sockets of a part from its current
// configuration and deletes the connections whose socket index on this
// part is now out of range. Unknown ids are ignored.
func (m *Module) UpdatePartSockets(id PartID) {
	p, ok := m.Part(id)
	if !ok {
		return
	}

	p.inputs, p.outputs = p.ComputeSockets()
	nIn, nOut := len(p.inputs), len(p.outputs)

	m.connections = slices.DeleteFunc(m.connections, func(c Connection) bool {
		return (c.ToPart == id && c.ToSocket >= nIn) || (c.FromPart == id && c.FromSocket >= nOut)
	})
}

// UpdateAllSockets runs UpdatePartSockets for every part.
func (m *Module) UpdateAllSockets() {
	for _, p := range m.parts {
		m.UpdatePartSockets(p.ID)
	}
}

// DanglingConnections returns the connections that do not address an
// existing output and input socket. After UpdatePartSockets ran for every
// edited part the result is empty unless connections were added with bad
// indices or to unknown parts.
func (m *Module) DanglingConnections() []Connection {
	var out []Connection

	for _, c := range m.connections {
		if !m.inRange(c) {
			out = append(out, c)
		}
	}

	return out
}

func (m *Module) inRange(c Connection) bool {
	from, ok := m.Part(c.FromPart)
	if !ok || c.FromSocket < 0 || c.FromSocket >= len(from.outputs) {
		return false
	}

	to, ok := m.Part(c.ToPart)
	if !ok || c.ToSocket < 0 || c.ToSocket >= len(to.inputs) {
		return false
	}

	return true
}

// ValidateConnection checks that c goes from an existing output socket to
// an existing input socket of the same type. AddConnection does not call
// it.
func (m *Module) ValidateConnection(c Connection) error {
	from, err := m.RequirePart(c.FromPart)
	if err != nil {
		return err
	}

	to, err := m.RequirePart(c.ToPart)
	if err != nil {
		return err
	}

	if c.FromSocket < 0 || c.FromSocket >= len(from.outputs) {
		return fmt.Errorf("%w: part %d has no output %d", ErrInvalidConnection, c.FromPart, c.FromSocket)
	}

	if c.ToSocket < 0 || c.ToSocket >= len(to.inputs) {
		return fmt.Errorf("%w: part %d has no input %d", ErrInvalidConnection, c.ToPart, c.ToSocket)
	}

	out, in := from.outputs[c.FromSocket], to.inputs[c.ToSocket]
	if out.Type != in.Type {
		return fmt.Errorf("%w: %q (%s) cannot feed %q (%s)",
			ErrInvalidConnection, out.Name, out.Type, in.Name, in.Type)
	}

	return nil
}
