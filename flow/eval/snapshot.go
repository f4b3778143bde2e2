package eval

import (
	"time"

	"github.com/MrLongNight/MapFlow-sub000/flow/audio"
	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
)

// Snapshot is everything the signal producers hand over for one tick. It
// is read but never retained by the Evaluator.
type Snapshot struct {
	// Audio feeds AudioFFT and Beat triggers.
	Audio audio.Analysis
	// Keys holds the key codes currently pressed, for Shortcut triggers.
	Keys map[string]bool
	// Triggers replaces the computed outputs of the listed trigger parts,
	// indexed by output socket. MIDI and OSC triggers only fire this way.
	Triggers map[graph.PartID][]float32
	// Elapsed is the time since the show started; Fixed triggers use it.
	Elapsed time.Duration
	// Dt is the time since the previous tick; Smoothed mappings use it.
	Dt time.Duration
}
