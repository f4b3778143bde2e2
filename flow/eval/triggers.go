package eval

import (
	"time"

	"github.com/MrLongNight/MapFlow-sub000/flow/audio"
	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
)

const minPulse = 16 * time.Millisecond

// triggerValues computes the outputs of a trigger part, one per output
// socket. Sockets the trigger does not drive, such as Link Out, stay 0.
func (e *Evaluator) triggerValues(p *graph.Part, snap *Snapshot) []float32 {
	values := make([]float32, len(p.Outputs()))
	if len(values) == 0 {
		return values
	}

	switch t := p.Type.(type) {
	case graph.TriggerAudioFFT:
		for i, s := range p.Outputs() {
			v, ok := audioValue(s.Name, &snap.Audio)
			if !ok {
				continue
			}

			if t.Outputs.IsInverted(s.Name) {
				v = 1 - clamp01(v)
			}

			values[i] = v
		}
	case graph.TriggerBeat:
		values[0] = boolValue(snap.Audio.Beat)
	case graph.TriggerRandom:
		values[0] = e.random(p.ID, t, snap.Elapsed)
	case graph.TriggerFixed:
		values[0] = fixedPulse(t, snap.Elapsed)
	case graph.TriggerShortcut:
		values[0] = boolValue(t.KeyCode != "" && snap.Keys[t.KeyCode])
	case graph.TriggerMidi, graph.TriggerOsc:
		// Driven only through Snapshot.Triggers.
	}

	return values
}

// activeSockets lists the trigger outputs of p that fired this tick.
// AudioFFT band and volume outputs fire above the part's threshold and BPM
// never fires; every other trigger output fires at 0.5 or more.
func activeSockets(p *graph.Part, values []float32) []int {
	fft, isFFT := p.Type.(graph.TriggerAudioFFT)

	var active []int

	for i, s := range p.Outputs() {
		if i >= len(values) || s.Type != graph.SocketTrigger {
			continue
		}

		v := values[i]

		var fired bool

		switch {
		case isFFT && s.Name == graph.OutBPM:
			fired = false
		case isFFT && s.Name != graph.OutBeat:
			fired = v > fft.Threshold
		default:
			fired = v >= 0.5
		}

		if fired {
			active = append(active, i)
		}
	}

	return active
}

func audioValue(name string, a *audio.Analysis) (float32, bool) {
	for i, band := range graph.BandOutputNames {
		if name == band {
			return a.Bands[i], true
		}
	}

	switch name {
	case graph.OutRMS:
		return a.RMS, true
	case graph.OutPeak:
		return a.Peak, true
	case graph.OutBeat:
		return boolValue(a.Beat), true
	case graph.OutBPM:
		if !a.HasBPM {
			return 0, true
		}

		return a.BPM, true
	default:
		return 0, false
	}
}

// fixedPulse is 1 for the first tenth of every interval after the offset,
// but never for less than 16ms. A zero interval is always on.
func fixedPulse(t graph.TriggerFixed, elapsed time.Duration) float32 {
	if t.IntervalMs == 0 {
		return 1
	}

	interval := time.Duration(t.IntervalMs) * time.Millisecond
	offset := time.Duration(t.OffsetMs) * time.Millisecond
	pulse := max(interval/10, minPulse)

	since := max(elapsed-offset, 0)

	return boolValue(since%interval < pulse)
}

// randomState anchors the interval limits of a Random trigger: the time of
// its last fire, or of its first evaluation if it never fired.
type randomState struct {
	anchor time.Duration
	fired  bool
}

// random fires with the trigger's probability on each tick. A non-zero
// MinIntervalMs suppresses firing that soon after the previous fire, and a
// non-zero MaxIntervalMs forces a fire once that long has passed.
func (e *Evaluator) random(id graph.PartID, t graph.TriggerRandom, now time.Duration) float32 {
	st, seen := e.randoms[id]
	if !seen || now < st.anchor {
		st = randomState{anchor: now}
	}

	since := now - st.anchor

	if st.fired && t.MinIntervalMs > 0 && since < time.Duration(t.MinIntervalMs)*time.Millisecond {
		e.randoms[id] = st

		return 0
	}

	fire := e.rng.Float32() < t.Probability
	if t.MaxIntervalMs > 0 && since >= time.Duration(t.MaxIntervalMs)*time.Millisecond {
		fire = true
	}

	if fire {
		st = randomState{anchor: now, fired: true}
	}

	e.randoms[id] = st

	return boolValue(fire)
}

func boolValue(b bool) float32 {
	if b {
		return 1
	}

	return 0
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
