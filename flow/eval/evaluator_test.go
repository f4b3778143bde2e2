package eval

import (
	"bytes"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrLongNight/MapFlow-sub000/flow/audio"
	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
	"github.com/MrLongNight/MapFlow-sub000/flow/mapping"
	"github.com/MrLongNight/MapFlow-sub000/internal/testutil"
)

const (
	effectTriggerIn = 1 // Modulizer inputs: Media In, Trigger In
	layerLinkIn     = 2 // Layer inputs: Input, Trigger, Link In
)

var opacity = mapping.Target{Kind: mapping.TargetOpacity}

func newTestEvaluator() *Evaluator {
	return New(WithRand(rand.New(rand.NewPCG(1, 2))))
}

func TestTriggerToOpacityEndToEnd(t *testing.T) {
	t.Parallel()

	m := graph.NewModule(1, "scene")
	fft := m.AddPart(graph.TriggerAudioFFT{Outputs: graph.DefaultAudioOutputs()}, graph.Vec2{})
	fx := m.AddPart(graph.NewEffect(graph.EffectBlur), graph.Vec2{X: 200})

	m.AddConnection(fft, 0, fx, effectTriggerIn)
	m.SetMapping(fx, effectTriggerIn, mapping.ForTarget(opacity))

	e := newTestEvaluator()
	res := e.Evaluate(m, Snapshot{
		Triggers: map[graph.PartID][]float32{fft: {0.8}},
		Dt:       16 * time.Millisecond,
	})

	v, ok := res.Param(fx, opacity)
	require.True(t, ok)
	testutil.RequireNear(t, v, 0.8, 1e-6)

	in, ok := res.Input(fx, effectTriggerIn)
	require.True(t, ok)
	testutil.RequireNear(t, in, 0.8, 0)

	require.Len(t, res.Params, 1)
	assert.Equal(t, effectTriggerIn, res.Params[0].Socket)
}

func TestBandOutputDrivesMapping(t *testing.T) {
	t.Parallel()

	m := graph.NewModule(1, "scene")
	fft := m.AddPart(graph.TriggerAudioFFT{
		Outputs: graph.AudioTriggerOutputConfig{FrequencyBands: true},
	}, graph.Vec2{})
	fx := m.AddPart(graph.NewEffect(graph.EffectBlur), graph.Vec2{})

	m.AddConnection(fft, 1, fx, effectTriggerIn) // Bass Out
	m.SetMapping(fx, effectTriggerIn, mapping.Config{
		Target: opacity,
		Mode:   mapping.Mode{Kind: mapping.Direct},
		Min:    0.2,
		Max:    0.6,
	})

	var a audio.Analysis
	a.Bands[1] = 0.5

	res := newTestEvaluator().Evaluate(m, Snapshot{Audio: a})

	v, ok := res.Param(fx, opacity)
	require.True(t, ok)
	testutil.RequireNear(t, v, 0.4, 1e-6)
}

func TestAudioOutputsFollowSocketOrder(t *testing.T) {
	t.Parallel()

	outputs := graph.AudioTriggerOutputConfig{
		FrequencyBands: true,
		VolumeOutputs:  true,
		BeatOutput:     true,
		BPMOutput:      true,
	}.SetInverted(graph.OutRMS, true).SetInverted(graph.OutAir, true)

	m := graph.NewModule(1, "scene")
	fft := m.AddPart(graph.TriggerAudioFFT{Outputs: outputs}, graph.Vec2{})

	a := audio.Analysis{
		RMS:    0.3,
		Peak:   0.9,
		Beat:   true,
		BPM:    128,
		HasBPM: true,
	}
	for i := range a.Bands {
		a.Bands[i] = float32(i) * 0.1
	}

	res := newTestEvaluator().Evaluate(m, Snapshot{Audio: a})

	want := make([]float32, 0, 13)
	want = append(want, a.Bands[:8]...)
	want = append(want, 1-a.Bands[8], 1-a.RMS, a.Peak, 1, 128)

	testutil.RequireSliceNear(t, res.TriggerValues[fft], want, 1e-6)
}

func TestInvertedOutputIsClamped(t *testing.T) {
	t.Parallel()

	outputs := graph.AudioTriggerOutputConfig{BPMOutput: true}.SetInverted(graph.OutBPM, true)

	m := graph.NewModule(1, "scene")
	fft := m.AddPart(graph.TriggerAudioFFT{Outputs: outputs}, graph.Vec2{})

	res := newTestEvaluator().Evaluate(m, Snapshot{Audio: audio.Analysis{BPM: 120, HasBPM: true}})

	assert.Equal(t, []float32{0}, res.TriggerValues[fft])
}

func TestSimpleTriggers(t *testing.T) {
	t.Parallel()

	m := graph.NewModule(1, "scene")
	beat := m.AddPart(graph.TriggerBeat{}, graph.Vec2{})
	key := m.AddPart(graph.TriggerShortcut{KeyCode: "Space"}, graph.Vec2{})
	other := m.AddPart(graph.TriggerShortcut{KeyCode: "Enter"}, graph.Vec2{})
	midi := m.AddPart(graph.TriggerMidi{Note: 60}, graph.Vec2{})
	osc := m.AddPart(graph.TriggerOsc{Address: "/fade"}, graph.Vec2{})

	res := newTestEvaluator().Evaluate(m, Snapshot{
		Audio:    audio.Analysis{Beat: true},
		Keys:     map[string]bool{"Space": true},
		Triggers: map[graph.PartID][]float32{osc: {0.4}},
	})

	assert.Equal(t, []float32{1}, res.TriggerValues[beat])
	assert.Equal(t, []float32{1}, res.TriggerValues[key])
	assert.Equal(t, []float32{0}, res.TriggerValues[other])
	assert.Equal(t, []float32{0}, res.TriggerValues[midi])
	assert.Equal(t, []float32{0.4}, res.TriggerValues[osc])
}

func TestActiveSockets(t *testing.T) {
	t.Parallel()

	outputs := graph.AudioTriggerOutputConfig{
		FrequencyBands: true,
		VolumeOutputs:  true,
		BeatOutput:     true,
		BPMOutput:      true,
	}.SetInverted(graph.OutRMS, true).SetInverted(graph.OutAir, true)

	m := graph.NewModule(1, "scene")
	fft := m.AddPart(graph.TriggerAudioFFT{Threshold: 0.45, Outputs: outputs}, graph.Vec2{})
	quiet := m.AddPart(graph.TriggerAudioFFT{Threshold: 0.95, Outputs: outputs}, graph.Vec2{})
	beat := m.AddPart(graph.TriggerBeat{}, graph.Vec2{})
	midi := m.AddPart(graph.TriggerMidi{Note: 60}, graph.Vec2{})
	osc := m.AddPart(graph.TriggerOsc{Address: "/fade"}, graph.Vec2{})
	fixed := m.AddPart(graph.TriggerFixed{}, graph.Vec2{})
	fx := m.AddPart(graph.NewEffect(graph.EffectBlur), graph.Vec2{})

	a := audio.Analysis{RMS: 0.3, Peak: 0.9, Beat: true, BPM: 128, HasBPM: true}
	for i := range a.Bands {
		a.Bands[i] = float32(i) * 0.1
	}

	res := newTestEvaluator().Evaluate(m, Snapshot{
		Audio:    a,
		Triggers: map[graph.PartID][]float32{midi: {1}, osc: {0.4}},
	})

	// Bands 5..7 clear the threshold, Air is inverted to 0.2, inverted RMS
	// is 0.7, then Peak and Beat. BPM never fires.
	assert.Equal(t, []int{5, 6, 7, 9, 10, 11}, res.Active[fft])
	assert.True(t, res.IsActive(fft, 10))
	assert.False(t, res.IsActive(fft, 12))

	// Only the beat flag fires above a 0.95 threshold.
	assert.Equal(t, []int{11}, res.Active[quiet])

	assert.Equal(t, []int{0}, res.Active[beat])
	assert.Equal(t, []int{0}, res.Active[midi])
	assert.Equal(t, []int{0}, res.Active[fixed])
	assert.NotContains(t, res.Active, osc)
	assert.NotContains(t, res.Active, fx)
}

func TestNilPartTypeIsIgnored(t *testing.T) {
	t.Parallel()

	m := graph.NewModule(1, "scene")
	assert.Equal(t, graph.PartID(0), m.AddPart(nil, graph.Vec2{}))
	beat := m.AddPart(graph.TriggerBeat{}, graph.Vec2{})

	var res *Result

	require.NotPanics(t, func() {
		res = newTestEvaluator().Evaluate(m, Snapshot{Audio: audio.Analysis{Beat: true}})
	})
	assert.Equal(t, []float32{1}, res.TriggerValues[beat])
}

func TestFixedPulse(t *testing.T) {
	t.Parallel()

	ms := time.Millisecond

	tests := []struct {
		name     string
		interval uint32
		offset   uint32
		elapsed  time.Duration
		want     float32
	}{
		{"zero interval always on", 0, 0, 1234 * ms, 1},
		{"start of interval", 1000, 0, 0, 1},
		{"inside pulse", 1000, 0, 99 * ms, 1},
		{"after pulse", 1000, 0, 100 * ms, 0},
		{"next interval", 1000, 0, 2050 * ms, 1},
		{"minimum pulse width", 100, 0, 15 * ms, 1},
		{"minimum pulse ends", 100, 0, 16 * ms, 0},
		{"before offset saturates", 1000, 500, 200 * ms, 1},
		{"after offset", 1000, 500, 600 * ms, 0},
		{"offset pulse", 1000, 500, 1550 * ms, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fixedPulse(graph.TriggerFixed{IntervalMs: tt.interval, OffsetMs: tt.offset}, tt.elapsed)
			if got != tt.want {
				t.Fatalf("fixedPulse(%d, %d, %v) = %v, want %v",
					tt.interval, tt.offset, tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestRandomTrigger(t *testing.T) {
	t.Parallel()

	ms := time.Millisecond

	t.Run("probability bounds", func(t *testing.T) {
		t.Parallel()

		e := newTestEvaluator()
		for i := range 20 {
			now := time.Duration(i) * ms
			require.Equal(t, float32(1), e.random(1, graph.TriggerRandom{Probability: 1}, now))
			require.Equal(t, float32(0), e.random(2, graph.TriggerRandom{Probability: 0}, now))
		}
	})

	t.Run("minimum interval", func(t *testing.T) {
		t.Parallel()

		e := newTestEvaluator()
		trig := graph.TriggerRandom{Probability: 1, MinIntervalMs: 1000}

		assert.Equal(t, float32(1), e.random(1, trig, 0))
		assert.Equal(t, float32(0), e.random(1, trig, 500*ms))
		assert.Equal(t, float32(1), e.random(1, trig, 1000*ms))
	})

	t.Run("maximum interval", func(t *testing.T) {
		t.Parallel()

		e := newTestEvaluator()
		trig := graph.TriggerRandom{Probability: 0, MaxIntervalMs: 200}

		assert.Equal(t, float32(0), e.random(1, trig, 0))
		assert.Equal(t, float32(0), e.random(1, trig, 100*ms))
		assert.Equal(t, float32(1), e.random(1, trig, 200*ms))
		assert.Equal(t, float32(0), e.random(1, trig, 300*ms))
		assert.Equal(t, float32(1), e.random(1, trig, 400*ms))
	})

	t.Run("state is pruned with the part", func(t *testing.T) {
		t.Parallel()

		m := graph.NewModule(1, "scene")
		id := m.AddPart(graph.TriggerRandom{Probability: 0.5}, graph.Vec2{})

		e := newTestEvaluator()
		e.Evaluate(m, Snapshot{})
		require.Len(t, e.randoms, 1)

		m.RemovePart(id)
		e.Evaluate(m, Snapshot{})
		assert.Empty(t, e.randoms)
	})
}

func TestMultipleEdgesCombineWithMax(t *testing.T) {
	t.Parallel()

	m := graph.NewModule(1, "scene")
	a := m.AddPart(graph.TriggerOsc{}, graph.Vec2{})
	b := m.AddPart(graph.TriggerOsc{}, graph.Vec2{})
	fx := m.AddPart(graph.NewEffect(graph.EffectBlur), graph.Vec2{})

	m.AddConnection(a, 0, fx, effectTriggerIn)
	m.AddConnection(b, 0, fx, effectTriggerIn)

	res := newTestEvaluator().Evaluate(m, Snapshot{
		Triggers: map[graph.PartID][]float32{a: {0.3}, b: {0.7}},
	})

	v, ok := res.Input(fx, effectTriggerIn)
	require.True(t, ok)
	assert.Equal(t, float32(0.7), v)
}

func TestDanglingConnectionsAreSkipped(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m := graph.NewModule(1, "scene")
	trig := m.AddPart(graph.TriggerBeat{}, graph.Vec2{})
	fx := m.AddPart(graph.NewEffect(graph.EffectBlur), graph.Vec2{})

	m.AddConnection(trig, 5, fx, effectTriggerIn)
	m.AddConnection(trig, 0, fx, 9)
	m.AddConnection(trig, 0, 99, 0)
	m.SetMapping(fx, effectTriggerIn, mapping.ForTarget(opacity))

	e := New(WithLogger(logger))
	res := e.Evaluate(m, Snapshot{Audio: audio.Analysis{Beat: true}})

	assert.Empty(t, res.SocketInputs)
	assert.Empty(t, res.Params)
	// Both propagation passes skip all three edges.
	assert.Equal(t, 6, bytes.Count(buf.Bytes(), []byte("skipping dangling connection")))
}

func TestMasterSlaveLink(t *testing.T) {
	t.Parallel()

	build := func(visibilityInput bool) (*graph.Module, graph.PartID, graph.PartID, graph.PartID) {
		m := graph.NewModule(1, "scene")
		master := m.AddPart(graph.NewEffect(graph.EffectBlur), graph.Vec2{})
		same := m.AddPart(graph.LayerSingle{Opacity: 1}, graph.Vec2{})
		inverted := m.AddPart(graph.LayerSingle{Opacity: 1}, graph.Vec2{})

		m.SetLinkData(master, graph.LinkData{Mode: graph.LinkMaster, TriggerInputEnabled: visibilityInput})
		m.SetLinkData(same, graph.LinkData{Mode: graph.LinkSlave})
		m.SetLinkData(inverted, graph.LinkData{Mode: graph.LinkSlave, Behavior: graph.Inverted})
		m.UpdateAllSockets()

		p, _ := m.Part(master)
		out, ok := p.OutputIndex(graph.SocketLinkOut)
		require.True(t, ok)

		m.AddConnection(master, out, same, layerLinkIn)
		m.AddConnection(master, out, inverted, layerLinkIn)
		m.SetMapping(inverted, layerLinkIn, mapping.ForTarget(opacity))

		return m, master, same, inverted
	}

	t.Run("always active master", func(t *testing.T) {
		t.Parallel()

		m, master, same, inverted := build(false)
		res := newTestEvaluator().Evaluate(m, Snapshot{})

		assert.Equal(t, float32(1), res.Visibility[master])
		assert.Equal(t, float32(1), res.Visibility[same])
		assert.Equal(t, float32(0), res.Visibility[inverted])
		assert.Equal(t, []float32{0, 1}, res.TriggerValues[master])

		v, ok := res.Param(inverted, opacity)
		require.True(t, ok)
		assert.Equal(t, float32(0), v)
	})

	t.Run("visibility input drives master", func(t *testing.T) {
		t.Parallel()

		m, master, same, inverted := build(true)
		trig := m.AddPart(graph.TriggerOsc{}, graph.Vec2{})

		p, _ := m.Part(master)
		vis, ok := p.InputIndex(graph.SocketVisibilityIn)
		require.True(t, ok)
		m.AddConnection(trig, 0, master, vis)

		res := newTestEvaluator().Evaluate(m, Snapshot{
			Triggers: map[graph.PartID][]float32{trig: {0.25}},
		})

		assert.Equal(t, float32(0.25), res.Visibility[master])
		assert.Equal(t, float32(0.25), res.Visibility[same])
		assert.Equal(t, float32(0.75), res.Visibility[inverted])

		in, ok := res.Input(inverted, layerLinkIn)
		require.True(t, ok)
		assert.Equal(t, float32(0.75), in)

		v, ok := res.Param(inverted, opacity)
		require.True(t, ok)
		testutil.RequireNear(t, v, 0.75, 1e-6)
	})

	t.Run("unconnected visibility input is inactive", func(t *testing.T) {
		t.Parallel()

		m, master, same, inverted := build(true)
		res := newTestEvaluator().Evaluate(m, Snapshot{})

		assert.Equal(t, float32(0), res.Visibility[master])
		assert.Equal(t, float32(0), res.Visibility[same])
		assert.Equal(t, float32(1), res.Visibility[inverted])
	})
}

func TestMasterDoesNotDriveMediaEdges(t *testing.T) {
	t.Parallel()

	for _, mode := range []graph.LinkMode{graph.LinkOff, graph.LinkMaster} {
		t.Run(mode.String(), func(t *testing.T) {
			t.Parallel()

			m := graph.NewModule(1, "scene")
			fx := m.AddPart(graph.NewEffect(graph.EffectBlur), graph.Vec2{})
			layer := m.AddPart(graph.LayerAll{Opacity: 1}, graph.Vec2{})

			m.SetLinkData(fx, graph.LinkData{Mode: mode})
			m.UpdateAllSockets()
			m.AddConnection(fx, 0, layer, 0) // Media Out -> Input

			cfg := mapping.ForTarget(opacity)
			cfg.Min = 0.3
			m.SetMapping(layer, 0, cfg)

			res := newTestEvaluator().Evaluate(m, Snapshot{})

			_, ok := res.Input(layer, 0)
			assert.False(t, ok, "media edge delivered a value")

			_, ok = res.Param(layer, opacity)
			assert.False(t, ok, "media edge drove a mapping")
			assert.Empty(t, res.Params)
		})
	}
}

func TestSmoothedMappingCarriesAcrossTicks(t *testing.T) {
	t.Parallel()

	m := graph.NewModule(1, "scene")
	trig := m.AddPart(graph.TriggerOsc{}, graph.Vec2{})
	fx := m.AddPart(graph.NewEffect(graph.EffectBlur), graph.Vec2{})

	m.AddConnection(trig, 0, fx, effectTriggerIn)

	cfg := mapping.ForTarget(opacity)
	cfg.Mode = mapping.SmoothedMode(0.1, 0.5)
	m.SetMapping(fx, effectTriggerIn, cfg)

	e := newTestEvaluator()
	tick := func(raw float32) float32 {
		res := e.Evaluate(m, Snapshot{
			Triggers: map[graph.PartID][]float32{trig: {raw}},
			Dt:       100 * time.Millisecond,
		})

		v, ok := res.Param(fx, opacity)
		require.True(t, ok)

		return v
	}

	want := mapping.Envelope(0, 1, 0.1, 0.5, 0.1)
	testutil.RequireNear(t, tick(1), want, 1e-6)

	want = mapping.Envelope(want, 1, 0.1, 0.5, 0.1)
	testutil.RequireNear(t, tick(1), want, 1e-6)

	want = mapping.Envelope(want, 0, 0.1, 0.5, 0.1)
	testutil.RequireNear(t, tick(0), want, 1e-6)
}

func TestRouterIsPruned(t *testing.T) {
	t.Parallel()

	m := graph.NewModule(1, "scene")
	trig := m.AddPart(graph.TriggerOsc{}, graph.Vec2{})
	fx := m.AddPart(graph.NewEffect(graph.EffectBlur), graph.Vec2{})
	layer := m.AddPart(graph.LayerSingle{Opacity: 1}, graph.Vec2{})

	m.AddConnection(trig, 0, fx, effectTriggerIn)
	m.AddConnection(trig, 0, layer, 1)
	m.SetMapping(fx, effectTriggerIn, mapping.ForTarget(opacity))
	m.SetMapping(layer, 1, mapping.ForTarget(opacity))

	e := newTestEvaluator()
	snap := Snapshot{Triggers: map[graph.PartID][]float32{trig: {1}}}

	e.Evaluate(m, snap)
	require.Equal(t, 2, e.Channels())

	m.ClearMapping(fx, effectTriggerIn)
	e.Evaluate(m, snap)
	assert.Equal(t, 1, e.Channels())

	m.RemovePart(layer)
	e.Evaluate(m, snap)
	assert.Equal(t, 0, e.Channels())
}

func TestMappingsSkipUnusableSockets(t *testing.T) {
	t.Parallel()

	m := graph.NewModule(1, "scene")
	trig := m.AddPart(graph.TriggerOsc{}, graph.Vec2{})
	fx := m.AddPart(graph.NewEffect(graph.EffectBlur), graph.Vec2{})

	m.AddConnection(trig, 0, fx, effectTriggerIn)
	m.SetMapping(fx, 0, mapping.ForTarget(opacity))             // nothing delivered
	m.SetMapping(fx, effectTriggerIn, mapping.DefaultConfig()) // no target

	e := newTestEvaluator()
	res := e.Evaluate(m, Snapshot{Triggers: map[graph.PartID][]float32{trig: {1}}})

	assert.Empty(t, res.Params)
	assert.Equal(t, 0, e.Channels())
}

func TestCycleFallsBackToInsertionOrder(t *testing.T) {
	t.Parallel()

	m := graph.NewModule(1, "scene")
	trig := m.AddPart(graph.TriggerOsc{}, graph.Vec2{})
	a := m.AddPart(graph.NewEffect(graph.EffectBlur), graph.Vec2{})
	b := m.AddPart(graph.NewEffect(graph.EffectBlur), graph.Vec2{})

	m.AddConnection(a, 0, b, 0)
	m.AddConnection(b, 0, a, 0)
	m.AddConnection(trig, 0, a, effectTriggerIn)
	m.AddConnection(trig, 0, b, effectTriggerIn)
	m.SetMapping(a, effectTriggerIn, mapping.ForTarget(opacity))
	m.SetMapping(b, effectTriggerIn, mapping.ForTarget(opacity))

	_, err := m.Order()
	require.ErrorIs(t, err, graph.ErrCycle)

	res := newTestEvaluator().Evaluate(m, Snapshot{Triggers: map[graph.PartID][]float32{trig: {0.5}}})

	require.Len(t, res.Params, 2)
	assert.Equal(t, a, res.Params[0].Part)
	assert.Equal(t, b, res.Params[1].Part)
}

func TestParamsFollowTopologicalOrder(t *testing.T) {
	t.Parallel()

	m := graph.NewModule(1, "scene")
	layer := m.AddPart(graph.LayerSingle{Opacity: 1}, graph.Vec2{})
	fx := m.AddPart(graph.NewEffect(graph.EffectBlur), graph.Vec2{})
	trig := m.AddPart(graph.TriggerOsc{}, graph.Vec2{})

	m.AddConnection(fx, 0, layer, 0)
	m.AddConnection(trig, 0, fx, effectTriggerIn)
	m.AddConnection(trig, 0, layer, 1)
	m.SetMapping(layer, 1, mapping.ForTarget(opacity))
	m.SetMapping(fx, effectTriggerIn, mapping.ForTarget(mapping.ParamTarget("radius")))

	res := newTestEvaluator().Evaluate(m, Snapshot{Triggers: map[graph.PartID][]float32{trig: {1}}})

	require.Len(t, res.Params, 2)
	assert.Equal(t, fx, res.Params[0].Part)
	assert.Equal(t, layer, res.Params[1].Part)
}
