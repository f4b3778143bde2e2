package graph

import "github.com/MrLongNight/MapFlow-sub000/flow/mapping"

// Part is a node of a Module.
//
// Inputs and outputs are derived from Type and Link. After editing either,
// call Module.UpdatePartSockets to regenerate them and prune connections
// that no longer fit.
type Part struct {
	ID       PartID
	Type     PartType
	Position Vec2
	Size     *Vec2
	Link     LinkData

	// TriggerTargets maps an input socket index to its mapping.
	TriggerTargets map[int]mapping.Config

	inputs  []Socket
	outputs []Socket
}

func newPart(id PartID, pt PartType, pos Vec2) *Part {
	p := &Part{ID: id, Type: pt, Position: pos}
	p.inputs, p.outputs = p.ComputeSockets()

	return p
}

// Category returns the category of the part type.
func (p *Part) Category() Category { return p.Type.Category() }

// Inputs returns the stored input sockets. The slice must not be modified.
func (p *Part) Inputs() []Socket { return p.inputs }

// Outputs returns the stored output sockets. The slice must not be modified.
func (p *Part) Outputs() []Socket { return p.outputs }

// ComputeSockets resolves the sockets for the current configuration
// without storing them.
func (p *Part) ComputeSockets() (inputs, outputs []Socket) {
	return ResolveSockets(p.Type, p.Link)
}

// InputIndex returns the index of the first input socket with the name.
func (p *Part) InputIndex(name string) (int, bool) { return socketIndex(p.inputs, name) }

// OutputIndex returns the index of the first output socket with the name.
func (p *Part) OutputIndex(name string) (int, bool) { return socketIndex(p.outputs, name) }

// AcceptsMappings reports whether the part may carry trigger mappings.
func (p *Part) AcceptsMappings() bool { return p.Category().AcceptsMappings() }

// Mapping returns the mapping of the input socket, if any.
func (p *Part) Mapping(socket int) (mapping.Config, bool) {
	cfg, ok := p.TriggerTargets[socket]

	return cfg, ok
}

func socketIndex(sockets []Socket, name string) (int, bool) {
	for i, s := range sockets {
		if s.Name == name {
			return i, true
		}
	}

	return -1, false
}
