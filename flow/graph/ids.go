package graph

import (
	"encoding/json"
	"fmt"
)

// ModuleID identifies a module within a Manager.
type ModuleID uint64

// PartID identifies a part within a Module. Zero is never allocated.
type PartID uint64

// IDGen allocates monotonically increasing part ids. The zero value starts
// at 1.
type IDGen struct {
	next PartID
}

// Next returns a fresh id.
func (g *IDGen) Next() PartID {
	if g.next == 0 {
		g.next = 1
	}

	id := g.next
	g.next++

	return id
}

// Peek returns the id the next call to Next will return.
func (g *IDGen) Peek() PartID {
	if g.next == 0 {
		return 1
	}

	return g.next
}

// Observe makes sure id is never handed out again.
func (g *IDGen) Observe(id PartID) {
	if id >= g.Peek() {
		g.next = id + 1
	}
}

// Vec2 is a 2D canvas coordinate or size.
type Vec2 struct {
	X float32
	Y float32
}

// MarshalJSON encodes v as [x, y].
func (v Vec2) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float32{v.X, v.Y})
}

// UnmarshalJSON decodes [x, y].
func (v *Vec2) UnmarshalJSON(data []byte) error {
	var xy [2]float32

	err := json.Unmarshal(data, &xy)
	if err != nil {
		return fmt.Errorf("graph: vec2: %w", err)
	}

	v.X, v.Y = xy[0], xy[1]

	return nil
}
