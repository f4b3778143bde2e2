package graph

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/MrLongNight/MapFlow-sub000/flow/mapping"
)

// typeDoc is the JSON envelope of a PartType.
type typeDoc struct {
	Category Category        `json:"category"`
	Kind     string          `json:"kind"`
	Config   json.RawMessage `json:"config,omitempty"`
}

type partDoc struct {
	ID             PartID                 `json:"id"`
	Type           typeDoc                `json:"part_type"`
	Position       Vec2                   `json:"position"`
	Size           *Vec2                  `json:"size,omitempty"`
	Link           LinkData               `json:"link_data"`
	Inputs         []Socket               `json:"inputs"`
	Outputs        []Socket               `json:"outputs"`
	TriggerTargets map[int]mapping.Config `json:"trigger_targets,omitempty"`
}

type moduleDoc struct {
	ID          ModuleID      `json:"id"`
	Name        string        `json:"name"`
	Color       *[4]float32   `json:"color,omitempty"`
	Playback    *PlaybackMode `json:"playback_mode,omitempty"`
	Parts       []partDoc     `json:"parts"`
	Connections []Connection  `json:"connections"`
	NextPartID  PartID        `json:"next_part_id,omitempty"`
}

// MarshalPartType encodes pt as a {"category","kind","config"} envelope.
func MarshalPartType(pt PartType) ([]byte, error) {
	doc, err := encodeType(pt)
	if err != nil {
		return nil, err
	}

	return json.Marshal(doc)
}

// UnmarshalPartType decodes an envelope through the built-in registry.
// Fields absent from the config keep the kind's default values.
func UnmarshalPartType(data []byte) (PartType, error) {
	var doc typeDoc

	err := json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("graph: part type: %w", err)
	}

	return builtins.decodeType(doc)
}

func encodeType(pt PartType) (typeDoc, error) {
	if pt == nil {
		return typeDoc{}, fmt.Errorf("%w: nil part type", ErrUnknownKind)
	}

	cfg, err := json.Marshal(pt)
	if err != nil {
		return typeDoc{}, fmt.Errorf("graph: encode %s/%s: %w", pt.Category(), pt.Kind(), err)
	}

	return typeDoc{Category: pt.Category(), Kind: pt.Kind(), Config: cfg}, nil
}

func (r *Registry) decodeType(doc typeDoc) (PartType, error) {
	def, err := r.New(doc.Category, doc.Kind)
	if err != nil {
		return nil, err
	}

	if len(doc.Config) == 0 || string(doc.Config) == "null" {
		return def, nil
	}

	// Decode on top of a copy of the default so absent fields keep it.
	ptr := reflect.New(reflect.TypeOf(def))
	ptr.Elem().Set(reflect.ValueOf(def))

	err = json.Unmarshal(doc.Config, ptr.Interface())
	if err != nil {
		return nil, fmt.Errorf("graph: decode %s/%s: %w", doc.Category, doc.Kind, err)
	}

	pt, ok := ptr.Elem().Interface().(PartType)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownKind, doc.Category, doc.Kind)
	}

	return pt, nil
}

// MarshalJSON encodes the module with its parts, connections and id
// counter. Stored sockets are included for readers; decoding recomputes
// them.
func (m *Module) MarshalJSON() ([]byte, error) {
	color := m.Color
	playback := m.Playback

	doc := moduleDoc{
		ID:          m.ID,
		Name:        m.Name,
		Color:       &color,
		Playback:    &playback,
		Parts:       make([]partDoc, 0, len(m.parts)),
		Connections: m.connections,
		NextPartID:  m.ids.Peek(),
	}

	if doc.Connections == nil {
		doc.Connections = []Connection{}
	}

	for _, p := range m.parts {
		td, err := encodeType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("graph: part %d: %w", p.ID, err)
		}

		doc.Parts = append(doc.Parts, partDoc{
			ID:             p.ID,
			Type:           td,
			Position:       p.Position,
			Size:           p.Size,
			Link:           p.Link,
			Inputs:         p.inputs,
			Outputs:        p.outputs,
			TriggerTargets: p.TriggerTargets,
		})
	}

	return json.Marshal(doc)
}

// UnmarshalJSON decodes a module. Fields missing from older documents take
// their defaults, sockets are recomputed from each part's configuration,
// and connections referring to unknown parts are dropped.
func (m *Module) UnmarshalJSON(data []byte) error {
	var doc moduleDoc

	err := json.Unmarshal(data, &doc)
	if err != nil {
		return fmt.Errorf("graph: module: %w", err)
	}

	out := NewModule(doc.ID, doc.Name)
	if doc.Color != nil {
		out.Color = *doc.Color
	}

	if doc.Playback != nil {
		out.Playback = *doc.Playback
	}

	known := make(map[PartID]bool, len(doc.Parts))

	for _, pd := range doc.Parts {
		pt, err := builtins.decodeType(pd.Type)
		if err != nil {
			return fmt.Errorf("graph: part %d: %w", pd.ID, err)
		}

		if pd.ID == 0 || known[pd.ID] {
			pd.ID = out.ids.Peek()
		}

		p := &Part{
			ID:             pd.ID,
			Type:           pt,
			Position:       pd.Position,
			Size:           pd.Size,
			Link:           pd.Link,
			TriggerTargets: pd.TriggerTargets,
		}
		p.inputs, p.outputs = p.ComputeSockets()

		out.parts = append(out.parts, p)
		out.ids.Observe(p.ID)
		known[p.ID] = true
	}

	if doc.NextPartID > 1 {
		out.ids.Observe(doc.NextPartID - 1)
	}

	for _, c := range doc.Connections {
		if known[c.FromPart] && known[c.ToPart] {
			out.connections = append(out.connections, c)
		}
	}

	*m = *out

	return nil
}

type managerDoc struct {
	Modules   []*Module `json:"modules"`
	NextID    ModuleID  `json:"next_module_id"`
	NextColor int       `json:"next_color_index"`
}

// MarshalJSON encodes every module ordered by id.
func (mg *Manager) MarshalJSON() ([]byte, error) {
	return json.Marshal(managerDoc{
		Modules:   mg.Modules(),
		NextID:    mg.NextModuleID(),
		NextColor: mg.NextColorIndex(),
	})
}

// UnmarshalJSON replaces the manager's modules.
func (mg *Manager) UnmarshalJSON(data []byte) error {
	var doc managerDoc

	err := json.Unmarshal(data, &doc)
	if err != nil {
		return fmt.Errorf("graph: manager: %w", err)
	}

	out := NewManager()
	for _, m := range doc.Modules {
		out.Adopt(m)
	}

	out.RestoreCounters(doc.NextID, doc.NextColor)

	*mg = *out

	return nil
}
