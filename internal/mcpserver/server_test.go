package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
	"github.com/MrLongNight/MapFlow-sub000/internal/store"
)

func call(t *testing.T, h server.ToolHandlerFunc, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	var req mcp.CallToolRequest
	req.Params.Arguments = args

	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)

	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, res.Content)

	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])

	return tc.Text
}

func mustOK(t *testing.T, h server.ToolHandlerFunc, args map[string]any) string {
	t.Helper()

	res := call(t, h, args)
	require.False(t, res.IsError, text(t, res))

	return text(t, res)
}

// buildScene creates module 1 with an AudioFFT trigger (part 1) wired to
// the Trigger In of a Blur effect (part 2) mapped to opacity.
func buildScene(t *testing.T, s *Server) {
	t.Helper()

	mustOK(t, s.handleCreateModule, map[string]any{"name": "scene"})
	mustOK(t, s.handleAddPart, map[string]any{"module_id": 1, "category": "Trigger", "kind": "AudioFFT"})
	mustOK(t, s.handleAddPart, map[string]any{"module_id": 1, "category": "Modulizer", "x": 200.0})
	mustOK(t, s.handleConnect, map[string]any{
		"module_id": 1, "from_part": 1, "from_socket": 0, "to_part": 2, "to_socket": 1,
	})
	mustOK(t, s.handleSetMapping, map[string]any{
		"module_id": 1, "part_id": 2, "socket": 1, "target": "Opacity",
	})
}

func TestEditAndEvaluate(t *testing.T) {
	t.Parallel()

	s := New()
	buildScene(t, s)

	out := mustOK(t, s.handleEvaluate, map[string]any{
		"module_id": 1,
		"triggers":  `{"1":[0.8]}`,
	})

	var res evaluateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))

	require.Len(t, res.Params, 1)
	assert.Equal(t, graph.PartID(2), res.Params[0].Part)
	assert.Equal(t, "Opacity", res.Params[0].Target.String())
	assert.InDelta(t, 0.8, res.Params[0].Value, 1e-6)
	assert.Equal(t, int64(16), res.ElapsedMs)
	assert.Equal(t, map[graph.PartID][]int{1: {0}}, res.Active)

	// The session clock advances by dt between calls.
	out = mustOK(t, s.handleEvaluate, map[string]any{"module_id": 1, "dt_ms": 20.0})
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, int64(36), res.ElapsedMs)
}

func TestEvaluateFromAudio(t *testing.T) {
	t.Parallel()

	s := New()
	buildScene(t, s)

	out := mustOK(t, s.handleEvaluate, map[string]any{
		"module_id": 1,
		"audio":     `{"beat":true}`,
	})

	var res evaluateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Params, 1)
	assert.InDelta(t, 1, res.Params[0].Value, 1e-6)
	assert.Equal(t, map[graph.PartID][]int{1: {0}}, res.Active)

	res = evaluateResult{}
	out = mustOK(t, s.handleEvaluate, map[string]any{"module_id": 1})
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Params, 1)
	assert.InDelta(t, 0, res.Params[0].Value, 1e-6)
	assert.Empty(t, res.Active)
}

func TestConnectValidates(t *testing.T) {
	t.Parallel()

	s := New()
	buildScene(t, s)

	// Trigger Out into Media In is a type mismatch.
	res := call(t, s.handleConnect, map[string]any{
		"module_id": 1, "from_part": 1, "from_socket": 0, "to_part": 2, "to_socket": 0,
	})
	assert.True(t, res.IsError)

	res = call(t, s.handleConnect, map[string]any{
		"module_id": 1, "from_part": 1, "from_socket": 0, "to_part": 2, "to_socket": 0, "force": true,
	})
	assert.False(t, res.IsError)

	m, _ := s.Manager().Module(1)
	assert.Len(t, m.Connections(), 2)

	out := mustOK(t, s.handleDisconnect, map[string]any{
		"module_id": 1, "from_part": 1, "from_socket": 0, "to_part": 2, "to_socket": 0,
	})
	assert.Contains(t, out, "Removed 1")
	assert.Len(t, m.Connections(), 1)
}

func TestAudioOutputsPruneConnections(t *testing.T) {
	t.Parallel()

	s := New()
	mustOK(t, s.handleCreateModule, map[string]any{"name": "scene"})
	mustOK(t, s.handleAddPart, map[string]any{"module_id": 1, "category": "Trigger", "kind": "AudioFFT"})
	mustOK(t, s.handleAddPart, map[string]any{"module_id": 1, "category": "Layer"})

	out := mustOK(t, s.handleSetAudioOutputs, map[string]any{
		"module_id": 1, "part_id": 1, "frequency_bands": true, "inverted": "Air Out, Bass Out",
	})
	assert.Contains(t, out, `out[8] Air Out`)

	mustOK(t, s.handleConnect, map[string]any{
		"module_id": 1, "from_part": 1, "from_socket": 8, "to_part": 2, "to_socket": 1,
	})

	out = mustOK(t, s.handleSetAudioOutputs, map[string]any{"module_id": 1, "part_id": 1, "beat_output": true})
	assert.Contains(t, out, "1 connection(s) pruned")

	m, _ := s.Manager().Module(1)
	assert.Empty(t, m.Connections())

	p, _ := m.Part(1)
	fft := p.Type.(graph.TriggerAudioFFT)
	assert.False(t, fft.Outputs.IsInverted(graph.OutAir))

	// Not an AudioFFT trigger.
	res := call(t, s.handleSetAudioOutputs, map[string]any{"module_id": 1, "part_id": 2})
	assert.True(t, res.IsError)
}

func TestSetLinkAndDescribe(t *testing.T) {
	t.Parallel()

	s := New()
	buildScene(t, s)

	out := mustOK(t, s.handleSetLink, map[string]any{
		"module_id": 1, "part_id": 2, "mode": "Master", "trigger_input": true,
	})
	assert.Contains(t, out, "Link Out")
	assert.Contains(t, out, "Trigger In (Vis)")

	desc := mustOK(t, s.handleDescribeModule, map[string]any{"module_id": 1})
	assert.Contains(t, desc, `Module 1 "scene"`)
	assert.Contains(t, desc, "link=Master")
	assert.Contains(t, desc, "map  in[1] -> Opacity Direct 0..1")
	assert.Contains(t, desc, `1.[0] "Beat Out" -> 2.[1] "Trigger In"`)

	res := call(t, s.handleSetLink, map[string]any{"module_id": 1, "part_id": 2, "mode": "Sideways"})
	assert.True(t, res.IsError)
}

func TestSetMappingErrors(t *testing.T) {
	t.Parallel()

	s := New()
	buildScene(t, s)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"trigger parts take no mappings", map[string]any{"module_id": 1, "part_id": 1, "socket": 0, "target": "Opacity"}},
		{"socket out of range", map[string]any{"module_id": 1, "part_id": 2, "socket": 5, "target": "Opacity"}},
		{"unknown target", map[string]any{"module_id": 1, "part_id": 2, "socket": 1, "target": "Loudness"}},
		{"unknown mode", map[string]any{"module_id": 1, "part_id": 2, "socket": 1, "target": "Opacity", "mode": "Wobble"}},
		{"unknown part", map[string]any{"module_id": 1, "part_id": 9, "socket": 1, "target": "Opacity"}},
		{"unknown module", map[string]any{"module_id": 7, "part_id": 2, "socket": 1, "target": "Opacity"}},
	}

	for _, tt := range tests {
		res := call(t, s.handleSetMapping, tt.args)
		assert.True(t, res.IsError, tt.name)
	}

	mustOK(t, s.handleSetMapping, map[string]any{"module_id": 1, "part_id": 2, "socket": 1, "target": "None"})

	m, _ := s.Manager().Module(1)
	_, ok := m.Mapping(2, 1)
	assert.False(t, ok)
}

func TestCreateModuleColor(t *testing.T) {
	t.Parallel()

	s := New()

	mustOK(t, s.handleCreateModule, map[string]any{"name": "intro"})
	mustOK(t, s.handleCreateModule, map[string]any{"name": "drop", "color_index": 5.0})
	mustOK(t, s.handleCreateModule, map[string]any{"name": "outro", "color_index": 17.0})

	intro, _ := s.Manager().Module(1)
	drop, _ := s.Manager().Module(2)
	outro, _ := s.Manager().Module(3)

	assert.Equal(t, graph.Palette[0], intro.Color)
	assert.Equal(t, graph.Palette[5], drop.Color)
	assert.Equal(t, graph.Palette[1], outro.Color)

	res := call(t, s.handleCreateModule, map[string]any{"name": "  "})
	assert.True(t, res.IsError)
}

func TestRemoveAndMovePart(t *testing.T) {
	t.Parallel()

	s := New()
	buildScene(t, s)

	mustOK(t, s.handleMovePart, map[string]any{"module_id": 1, "part_id": 1, "x": 5.0, "y": 6.0})

	m, _ := s.Manager().Module(1)
	p, _ := m.Part(1)
	assert.Equal(t, graph.Vec2{X: 5, Y: 6}, p.Position)

	mustOK(t, s.handleRemovePart, map[string]any{"module_id": 1, "part_id": 1})
	assert.Len(t, m.Parts(), 1)
	assert.Empty(t, m.Connections())

	list := mustOK(t, s.handleListModules, nil)
	assert.Contains(t, list, "1  scene  (1 parts, 0 connections)")
}

func TestUpdateSockets(t *testing.T) {
	t.Parallel()

	s := New()
	buildScene(t, s)

	m, _ := s.Manager().Module(1)
	m.AddConnection(1, 0, 2, 7)

	out := mustOK(t, s.handleUpdateSockets, map[string]any{"module_id": 1})
	assert.Contains(t, out, "pruned 1 connection(s)")
	assert.Len(t, m.Connections(), 1)
}

func TestSave(t *testing.T) {
	t.Parallel()

	res := call(t, New().handleSave, nil)
	assert.True(t, res.IsError)

	st, err := store.Open(filepath.Join(t.TempDir(), "mapflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	s := New(WithStore(st))
	buildScene(t, s)
	mustOK(t, s.handleSave, nil)

	mg, err := st.LoadAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, mg.Len())

	m, _ := mg.Module(1)
	assert.Len(t, m.Parts(), 2)
	assert.Len(t, m.Connections(), 1)
}

func TestToolsAreRegistered(t *testing.T) {
	t.Parallel()

	srv := New().NewMCPServer("mapflow-test", "0.0.0")

	resp := srv.HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	for _, name := range []string{
		"list_modules", "create_module", "describe_module", "add_part", "remove_part",
		"move_part", "connect", "disconnect", "set_link", "set_audio_outputs",
		"update_sockets", "set_mapping", "evaluate", "save",
	} {
		assert.Contains(t, string(data), `"name":"`+name+`"`)
	}
}
