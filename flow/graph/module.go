package graph

import (
	"fmt"
	"slices"

	"github.com/MrLongNight/MapFlow-sub000/flow/mapping"
)

// PlaybackKind decides when a module hands over to the next one.
type PlaybackKind int

const (
	PlaybackLoop PlaybackKind = iota
	PlaybackTimeline
)

var playbackKindNames = enumNames{"LoopUntilManualSwitch", "TimelineDuration"}

func (k PlaybackKind) String() string { return playbackKindNames.format(int(k), "PlaybackKind") }

// MarshalText implements encoding.TextMarshaler.
func (k PlaybackKind) MarshalText() ([]byte, error) {
	return playbackKindNames.marshal(int(k), "playback")
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PlaybackKind) UnmarshalText(text []byte) error {
	v, err := playbackKindNames.parse(string(text), "playback")
	if err != nil {
		return err
	}

	*k = PlaybackKind(v)

	return nil
}

// PlaybackMode is the playback setting of a module.
type PlaybackMode struct {
	Kind       PlaybackKind `json:"kind"`
	DurationMs uint64       `json:"duration_ms,omitempty"`
}

// Module is a graph of parts and connections.
//
// A Module is not safe for concurrent use. Mutations on unknown part ids
// are no-ops and lookups report absence instead of failing.
type Module struct {
	ID       ModuleID
	Name     string
	Color    [4]float32
	Playback PlaybackMode

	parts       []*Part
	connections []Connection
	ids         IDGen
}

// NewModule returns an empty module.
func NewModule(id ModuleID, name string) *Module {
	return &Module{ID: id, Name: name, Color: [4]float32{1, 1, 1, 1}}
}

// Parts returns the parts in insertion order. The slice must not be
// modified.
func (m *Module) Parts() []*Part { return m.parts }

// Connections returns the connections in insertion order. The slice must
// not be modified.
func (m *Module) Connections() []Connection { return m.connections }

// NextPartID returns the id the next added part will receive.
func (m *Module) NextPartID() PartID { return m.ids.Peek() }

// AddPart adds a part with a fresh id and its initial sockets. A nil type
// is ignored and yields 0.
func (m *Module) AddPart(pt PartType, pos Vec2) PartID {
	if pt == nil {
		return 0
	}

	p := newPart(m.ids.Next(), pt, pos)
	m.parts = append(m.parts, p)

	return p.ID
}

// AddDefaultPart adds a part of the category's default kind from the
// built-in registry. Projector outputs get the lowest projector id not in
// use. It returns 0 for an invalid category.
func (m *Module) AddDefaultPart(c Category, pos Vec2) PartID {
	pt, ok := builtins.Default(c)
	if !ok {
		return 0
	}

	if _, isProjector := pt.(OutputProjector); isProjector {
		pt = NewProjector(m.freeProjectorID())
	}

	return m.AddPart(pt, pos)
}

func (m *Module) freeProjectorID() uint64 {
	used := make(map[uint64]bool)

	for _, p := range m.parts {
		if proj, ok := p.Type.(OutputProjector); ok {
			used[proj.ID] = true
		}
	}

	id := uint64(1)
	for used[id] {
		id++
	}

	return id
}

// Part returns the part with the id.
func (m *Module) Part(id PartID) (*Part, bool) {
	i := m.partIndex(id)
	if i < 0 {
		return nil, false
	}

	return m.parts[i], true
}

// RequirePart is like Part but reports an unknown id as ErrPartNotFound.
func (m *Module) RequirePart(id PartID) (*Part, error) {
	p, ok := m.Part(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrPartNotFound, id)
	}

	return p, nil
}

func (m *Module) partIndex(id PartID) int {
	return slices.IndexFunc(m.parts, func(p *Part) bool { return p.ID == id })
}

// UpdatePartPosition moves a part on the canvas.
func (m *Module) UpdatePartPosition(id PartID, pos Vec2) {
	if p, ok := m.Part(id); ok {
		p.Position = pos
	}
}

// ResizePart sets a custom size, or clears it when size is nil.
func (m *Module) ResizePart(id PartID, size *Vec2) {
	p, ok := m.Part(id)
	if !ok {
		return
	}

	if size == nil {
		p.Size = nil

		return
	}

	s := *size
	p.Size = &s
}

// SetPartType replaces the configuration of a part. Sockets are not
// regenerated; call UpdatePartSockets afterwards.
func (m *Module) SetPartType(id PartID, pt PartType) {
	if p, ok := m.Part(id); ok && pt != nil {
		p.Type = pt
	}
}

// SetLinkData replaces the link state of a part. Sockets are not
// regenerated; call UpdatePartSockets afterwards.
func (m *Module) SetLinkData(id PartID, link LinkData) {
	if p, ok := m.Part(id); ok {
		p.Link = link
	}
}

// AddConnection appends a connection. It does not check socket ranges,
// types or direction, and self-loops are accepted. Use ValidateConnection
// first when the caller cannot guarantee a valid edge.
func (m *Module) AddConnection(fromPart PartID, fromSocket int, toPart PartID, toSocket int) {
	m.connections = append(m.connections, Connection{
		FromPart:   fromPart,
		FromSocket: fromSocket,
		ToPart:     toPart,
		ToSocket:   toSocket,
	})
}

// RemoveConnection removes every connection matching all four fields.
func (m *Module) RemoveConnection(fromPart PartID, fromSocket int, toPart PartID, toSocket int) {
	target := Connection{FromPart: fromPart, FromSocket: fromSocket, ToPart: toPart, ToSocket: toSocket}

	m.connections = slices.DeleteFunc(m.connections, func(c Connection) bool { return c == target })
}

// RemovePart deletes a part and every connection touching it.
func (m *Module) RemovePart(id PartID) {
	i := m.partIndex(id)
	if i < 0 {
		return
	}

	m.parts = slices.Delete(m.parts, i, i+1)
	m.connections = slices.DeleteFunc(m.connections, func(c Connection) bool { return c.Touches(id) })
}

// ConnectionsTo returns the connections ending at the part.
func (m *Module) ConnectionsTo(id PartID) []Connection {
	var out []Connection

	for _, c := range m.connections {
		if c.ToPart == id {
			out = append(out, c)
		}
	}

	return out
}

// ConnectionsFrom returns the connections starting at the part.
func (m *Module) ConnectionsFrom(id PartID) []Connection {
	var out []Connection

	for _, c := range m.connections {
		if c.FromPart == id {
			out = append(out, c)
		}
	}

	return out
}

// SetMapping stores the mapping of an input socket. Parts whose category
// does not accept mappings, unknown ids and negative sockets are ignored.
func (m *Module) SetMapping(id PartID, socket int, cfg mapping.Config) {
	p, ok := m.Part(id)
	if !ok || !p.AcceptsMappings() || socket < 0 {
		return
	}

	if p.TriggerTargets == nil {
		p.TriggerTargets = make(map[int]mapping.Config)
	}

	p.TriggerTargets[socket] = cfg
}

// ClearMapping removes the mapping of an input socket.
func (m *Module) ClearMapping(id PartID, socket int) {
	if p, ok := m.Part(id); ok {
		delete(p.TriggerTargets, socket)
	}
}

// Mapping returns the mapping of an input socket, if any.
func (m *Module) Mapping(id PartID, socket int) (mapping.Config, bool) {
	p, ok := m.Part(id)
	if !ok {
		return mapping.Config{}, false
	}

	return p.Mapping(socket)
}
