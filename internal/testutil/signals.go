package testutil

import (
	"math"
	"math/rand/v2"
)

// Sine generates a deterministic sine wave block.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = float32(amplitude * math.Sin(step*float64(i)))
	}

	return out
}

// Noise generates white noise with a fixed seed for reproducibility.
func Noise(seed uint64, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	for i := range out {
		out[i] = float32((rng.Float64()*2 - 1) * amplitude)
	}

	return out
}

// Silence returns a zeroed block.
func Silence(length int) []float32 {
	return make([]float32, length)
}

// Ramp returns length values rising linearly from start to end inclusive.
func Ramp(start, end float32, length int) []float32 {
	out := make([]float32, length)
	if length == 1 {
		out[0] = start

		return out
	}

	for i := range out {
		out[i] = start + (end-start)*float32(i)/float32(length-1)
	}

	return out
}
