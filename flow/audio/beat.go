package audio

import (
	"math"
	"slices"
)

// detectBeat compares the bass band against its recent average. A beat
// needs the bass energy above beatRatio times the average and above
// minBeatEnergy, at least minBeatInterval seconds after the previous beat.
func (a *Analyzer) detectBeat(timestamp float64) (bool, float32) {
	bass := a.bands[1]

	if len(a.energy) == historyLen {
		a.energy = append(a.energy[:0], a.energy[1:]...)
	}

	a.energy = append(a.energy, bass)

	if len(a.energy) < minHistory {
		return false, 0
	}

	var sum float64
	for _, e := range a.energy {
		sum += e
	}

	avg := sum / float64(len(a.energy))

	var strength float32
	if avg > 0 {
		strength = float32(clamp(bass/avg-1, 0, 2) / 2)
	}

	sinceLast := math.Inf(1)
	if len(a.beats) > 0 {
		sinceLast = timestamp - a.beats[len(a.beats)-1]
	}

	if bass <= avg*beatRatio || bass <= minBeatEnergy || sinceLast < minBeatInterval {
		return false, strength
	}

	if len(a.beats) == maxBeatTimestamp {
		a.beats = append(a.beats[:0], a.beats[1:]...)
	}

	a.beats = append(a.beats, timestamp)
	a.bpm, a.hasBPM = estimateBPM(a.beats)

	return true, strength
}

// estimateBPM averages the middle half of the sorted beat intervals and
// folds the tempo into 60..200 BPM. It needs at least four beats.
func estimateBPM(beats []float64) (float32, bool) {
	if len(beats) < 4 {
		return 0, false
	}

	intervals := make([]float64, 0, len(beats)-1)
	for i := 1; i < len(beats); i++ {
		intervals = append(intervals, beats[i]-beats[i-1])
	}

	slices.Sort(intervals)

	if len(intervals) >= 4 {
		cut := len(intervals) / 4
		intervals = intervals[cut : len(intervals)-cut]
	}

	var sum float64
	for _, d := range intervals {
		sum += d
	}

	avg := sum / float64(len(intervals))
	if avg <= 0.001 {
		return 0, false
	}

	bpm := 60 / avg

	switch {
	case bpm >= 60 && bpm <= 200:
	case bpm > 200 && bpm <= 400:
		bpm /= 2
	case bpm >= 30 && bpm < 60:
		bpm *= 2
	default:
		return 0, false
	}

	return float32(math.Round(bpm*10) / 10), true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
