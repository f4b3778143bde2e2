package eval

import (
	"slices"

	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
	"github.com/MrLongNight/MapFlow-sub000/flow/mapping"
)

// ResolvedParam is the value of one target parameter on one part.
type ResolvedParam struct {
	Part   graph.PartID
	Socket int
	Target mapping.Target
	Value  float32
}

// Result is the outcome of one tick.
type Result struct {
	// TriggerValues holds the output values of trigger parts and the Link
	// Out value of masters, indexed by output socket.
	TriggerValues map[graph.PartID][]float32
	// SocketInputs holds the value delivered to each connected input
	// socket. Several edges into one socket combine with max.
	SocketInputs map[graph.PartID]map[int]float32
	// Visibility holds the link state of masters, slaves and parts with a
	// visibility input.
	Visibility map[graph.PartID]float32
	// Active lists, per trigger part, the output sockets that fired this
	// tick in ascending order. Parts with no fired output are absent.
	Active map[graph.PartID][]int
	// Params lists the mapped values in topological part order.
	Params []ResolvedParam
}

func newResult() *Result {
	return &Result{
		TriggerValues: make(map[graph.PartID][]float32),
		SocketInputs:  make(map[graph.PartID]map[int]float32),
		Visibility:    make(map[graph.PartID]float32),
		Active:        make(map[graph.PartID][]int),
	}
}

// Input returns the value delivered to an input socket.
func (r *Result) Input(part graph.PartID, socket int) (float32, bool) {
	v, ok := r.SocketInputs[part][socket]

	return v, ok
}

// IsActive reports whether a trigger output fired this tick.
func (r *Result) IsActive(part graph.PartID, socket int) bool {
	return slices.Contains(r.Active[part], socket)
}

// Param returns the value of target on part. When several sockets of the
// part map to the same target, the last one in socket order wins.
func (r *Result) Param(part graph.PartID, target mapping.Target) (float32, bool) {
	var (
		value float32
		found bool
	)

	for _, p := range r.Params {
		if p.Part == part && p.Target == target {
			value, found = p.Value, true
		}
	}

	return value, found
}
