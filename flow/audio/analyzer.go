package audio

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/MrLongNight/MapFlow-sub000/internal/window"
)

// Band edges in Hz, lowest band first.
var bandEdges = [NumBands][2]float64{
	{20, 60},
	{60, 250},
	{250, 500},
	{500, 1000},
	{1000, 2000},
	{2000, 4000},
	{4000, 6000},
	{6000, 12000},
	{12000, 20000},
}

// NumBands is the number of frequency bands.
const NumBands = 9

const (
	peakDecay        = 0.995
	historyLen       = 32
	minHistory       = 16
	beatRatio        = 1.5
	minBeatEnergy    = 0.01
	minBeatInterval  = 0.2
	maxBeatTimestamp = 16
)

// Analysis is one snapshot of the analyzer output.
type Analysis struct {
	Timestamp float64
	// RMS is the smoothed RMS of the last processed block.
	RMS float32
	// Peak follows the absolute sample peak with a slow decay.
	Peak  float32
	Bands [NumBands]float32
	Beat  bool
	// BeatStrength is in [0, 1].
	BeatStrength float32
	BPM          float32
	HasBPM       bool
}

// Analyzer turns blocks of mono samples into Analysis snapshots. It is not
// safe for concurrent use.
type Analyzer struct {
	cfg  Config
	plan *algofft.Plan[complex128]

	window []float64
	ring   []float64
	write  int
	filled int
	hop    int
	since  int

	frame    []float64
	spectrum []complex128
	input    []complex128
	re, im   []float64
	mags     []float64
	smoothed []float64

	bands  [NumBands]float64
	rms    float64
	peak   float32
	energy []float64
	beats  []float64
	bpm    float32
	hasBPM bool
	latest Analysis
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(opts ...Option) (*Analyzer, error) {
	cfg := applyOptions(opts...)

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("audio: fft plan: %w", err)
	}

	n := cfg.FFTSize
	half := n / 2

	hop := int((1 - cfg.Overlap) * float64(n))
	if hop < 1 {
		hop = 1
	}

	return &Analyzer{
		cfg:      cfg,
		plan:     plan,
		window:   window.Generate(cfg.Window, n, window.WithPeriodic()),
		ring:     make([]float64, n),
		hop:      hop,
		frame:    make([]float64, n),
		spectrum: make([]complex128, n),
		input:    make([]complex128, n),
		re:       make([]float64, half),
		im:       make([]float64, half),
		mags:     make([]float64, half),
		smoothed: make([]float64, half),
		energy:   make([]float64, 0, historyLen),
		beats:    make([]float64, 0, maxBeatTimestamp),
	}, nil
}

// Config returns the effective configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// Latest returns the most recent analysis.
func (a *Analyzer) Latest() Analysis { return a.latest }

// Reset clears every buffer and the beat history.
func (a *Analyzer) Reset() {
	clear(a.ring)
	clear(a.smoothed)
	clear(a.mags)

	a.write, a.filled, a.since = 0, 0, 0
	a.bands = [NumBands]float64{}
	a.rms, a.peak = 0, 0
	a.energy = a.energy[:0]
	a.beats = a.beats[:0]
	a.bpm, a.hasBPM = 0, false
	a.latest = Analysis{}
}

// Process analyses a block of samples captured at timestamp (seconds).
// Non-finite samples count as silence. An empty block returns the latest
// analysis unchanged.
func (a *Analyzer) Process(samples []float32, timestamp float64) Analysis {
	if len(samples) == 0 {
		return a.latest
	}

	s := a.cfg.Smoothing

	var sum float64

	var peak float32

	for _, x := range samples {
		v := float64(x)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}

		sum += v * v

		if ax := float32(math.Abs(v)); ax > peak {
			peak = ax
		}

		a.push(v)
	}

	a.rms = a.rms*s + math.Sqrt(sum/float64(len(samples)))*(1-s)

	if peak > a.peak {
		a.peak = peak
	} else {
		a.peak *= peakDecay
	}

	beat, strength := a.detectBeat(timestamp)

	out := Analysis{
		Timestamp:    timestamp,
		RMS:          float32(a.rms),
		Peak:         a.peak,
		Beat:         beat,
		BeatStrength: strength,
		BPM:          a.bpm,
		HasBPM:       a.hasBPM,
	}

	for i, b := range a.bands {
		out.Bands[i] = float32(b)
	}

	a.latest = out

	return out
}

func (a *Analyzer) push(v float64) {
	n := len(a.ring)

	a.ring[a.write] = v

	a.write++
	if a.write >= n {
		a.write = 0
	}

	if a.filled < n {
		a.filled++
	}

	a.since++
	if a.filled < n || a.since < a.hop {
		return
	}

	a.since = 0
	a.analyzeFrame()
}

func (a *Analyzer) analyzeFrame() {
	n := len(a.ring)

	// Oldest sample first.
	copy(a.frame, a.ring[a.write:])
	copy(a.frame[n-a.write:], a.ring[:a.write])
	window.Apply(a.frame, a.window)

	for i, v := range a.frame {
		a.input[i] = complex(v, 0)
	}

	err := a.plan.Forward(a.spectrum, a.input)
	if err != nil {
		return
	}

	for i := range a.re {
		a.re[i] = real(a.spectrum[i])
		a.im[i] = imag(a.spectrum[i])
	}

	vecmath.Magnitude(a.mags, a.re, a.im)

	s := a.cfg.Smoothing
	norm := 1 / math.Sqrt(float64(n))

	for i, m := range a.mags {
		a.smoothed[i] = a.smoothed[i]*s + m*norm*(1-s)
	}

	a.updateBands()
}

func (a *Analyzer) updateBands() {
	binWidth := a.cfg.SampleRate / float64(a.cfg.FFTSize)
	last := len(a.smoothed) - 1
	s := a.cfg.Smoothing

	for i, edge := range bandEdges {
		lo := int(edge[0] / binWidth)
		hi := min(int(edge[1]/binWidth), last)

		if hi <= lo || lo > last {
			continue
		}

		var sum float64
		for _, m := range a.smoothed[lo : hi+1] {
			sum += m
		}

		energy := sum / float64(hi-lo+1)
		a.bands[i] = a.bands[i]*s + energy*(1-s)
	}
}
