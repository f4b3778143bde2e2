package graph

import (
	"maps"
	"slices"
)

// Palette holds the colors handed out to new modules in turn.
var Palette = [16][4]float32{
	{1.0, 0.2, 0.2, 1.0},
	{1.0, 0.5, 0.2, 1.0},
	{1.0, 1.0, 0.2, 1.0},
	{0.5, 1.0, 0.2, 1.0},
	{0.2, 1.0, 0.2, 1.0},
	{0.2, 1.0, 0.5, 1.0},
	{0.2, 1.0, 1.0, 1.0},
	{0.2, 0.5, 1.0, 1.0},
	{0.2, 0.2, 1.0, 1.0},
	{0.5, 0.2, 1.0, 1.0},
	{1.0, 0.2, 1.0, 1.0},
	{1.0, 0.2, 0.5, 1.0},
	{0.5, 0.5, 0.5, 1.0},
	{1.0, 0.5, 0.8, 1.0},
	{0.5, 1.0, 0.8, 1.0},
	{0.8, 0.5, 1.0, 1.0},
}

// Manager owns a set of modules (scenes).
type Manager struct {
	modules   map[ModuleID]*Module
	nextID    ModuleID
	nextColor int
}

// NewManager returns an empty manager. Module ids start at 1.
func NewManager() *Manager {
	return &Manager{modules: make(map[ModuleID]*Module), nextID: 1}
}

// CreateModule adds an empty module with the next palette color.
func (mg *Manager) CreateModule(name string) ModuleID {
	id := mg.nextID
	mg.nextID++

	m := NewModule(id, name)
	m.Color = Palette[mg.nextColor%len(Palette)]
	mg.nextColor++

	mg.modules[id] = m

	return id
}

// Adopt inserts an existing module, replacing any module with the same
// id, and keeps the id counter ahead of it.
func (mg *Manager) Adopt(m *Module) {
	if m == nil {
		return
	}

	mg.modules[m.ID] = m
	if m.ID >= mg.nextID {
		mg.nextID = m.ID + 1
	}
}

// DeleteModule removes a module. Unknown ids are ignored.
func (mg *Manager) DeleteModule(id ModuleID) {
	delete(mg.modules, id)
}

// Module returns the module with the id.
func (mg *Manager) Module(id ModuleID) (*Module, bool) {
	m, ok := mg.modules[id]

	return m, ok
}

// Modules returns every module ordered by id.
func (mg *Manager) Modules() []*Module {
	ids := slices.Sorted(maps.Keys(mg.modules))

	out := make([]*Module, 0, len(ids))
	for _, id := range ids {
		out = append(out, mg.modules[id])
	}

	return out
}

// NextModuleID returns the id the next created module will get.
func (mg *Manager) NextModuleID() ModuleID { return mg.nextID }

// NextColorIndex returns the palette index of the next created module.
func (mg *Manager) NextColorIndex() int { return mg.nextColor }

// RestoreCounters sets the id and color counters of a reloaded manager.
// The id counter never moves below an adopted module.
func (mg *Manager) RestoreCounters(nextID ModuleID, nextColor int) {
	if nextID > mg.nextID {
		mg.nextID = nextID
	}

	if nextColor >= 0 {
		mg.nextColor = nextColor
	}
}

// Len returns the number of modules.
func (mg *Manager) Len() int { return len(mg.modules) }

// SetModuleColor changes the color of a module.
func (mg *Manager) SetModuleColor(id ModuleID, color [4]float32) {
	if m, ok := mg.modules[id]; ok {
		m.Color = color
	}
}

// AddPartToModule adds a default part of the category to a module.
func (mg *Manager) AddPartToModule(id ModuleID, c Category, pos Vec2) (PartID, bool) {
	m, ok := mg.modules[id]
	if !ok {
		return 0, false
	}

	pid := m.AddDefaultPart(c, pos)

	return pid, pid != 0
}
