package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
	"github.com/MrLongNight/MapFlow-sub000/flow/mapping"
)

func (s *Server) registerGraphTools(srv *server.MCPServer) {
	srv.AddTool(listModulesTool(), s.locked(s.handleListModules))
	srv.AddTool(createModuleTool(), s.locked(s.handleCreateModule))
	srv.AddTool(describeModuleTool(), s.locked(s.handleDescribeModule))
	srv.AddTool(addPartTool(), s.locked(s.handleAddPart))
	srv.AddTool(removePartTool(), s.locked(s.handleRemovePart))
	srv.AddTool(movePartTool(), s.locked(s.handleMovePart))
	srv.AddTool(connectTool(), s.locked(s.handleConnect))
	srv.AddTool(disconnectTool(), s.locked(s.handleDisconnect))
	srv.AddTool(setLinkTool(), s.locked(s.handleSetLink))
	srv.AddTool(setAudioOutputsTool(), s.locked(s.handleSetAudioOutputs))
	srv.AddTool(updateSocketsTool(), s.locked(s.handleUpdateSockets))
	srv.AddTool(setMappingTool(), s.locked(s.handleSetMapping))
}

// locked serialises a handler on the session mutex.
func (s *Server) locked(h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		return h(ctx, req)
	}
}

func moduleIDParam() mcp.ToolOption {
	return mcp.WithNumber("module_id", mcp.Description("Module id"), mcp.Required())
}

func partIDParam() mcp.ToolOption {
	return mcp.WithNumber("part_id", mcp.Description("Part id within the module"), mcp.Required())
}

// --- list_modules ---

func listModulesTool() mcp.Tool {
	return mcp.NewTool("list_modules",
		mcp.WithDescription("List the modules (scenes) of the session with their part counts."),
	)
}

func (s *Server) handleListModules(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	modules := s.manager.Modules()
	if len(modules) == 0 {
		return mcp.NewToolResultText("No modules."), nil
	}

	var sb strings.Builder
	for _, m := range modules {
		fmt.Fprintf(&sb, "%d  %s  (%d parts, %d connections)\n",
			m.ID, m.Name, len(m.Parts()), len(m.Connections()))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// --- create_module ---

func createModuleTool() mcp.Tool {
	return mcp.NewTool("create_module",
		mcp.WithDescription("Create an empty module."),
		mcp.WithString("name", mcp.Description("Module name"), mcp.Required()),
		mcp.WithNumber("color_index", mcp.Description("Palette entry for the module color; defaults to the next unused one")),
	)
}

func (s *Server) handleCreateModule(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return toolError(errors.New("name is required"))
	}

	id := s.manager.CreateModule(name)

	if i := req.GetInt("color_index", -1); i >= 0 {
		s.manager.SetModuleColor(id, graph.Palette[i%len(graph.Palette)])
	}

	s.logger.Info("module created", "id", id, "name", name)

	return mcp.NewToolResultText(fmt.Sprintf("Created module %d %q.", id, name)), nil
}

// --- describe_module ---

func describeModuleTool() mcp.Tool {
	return mcp.NewTool("describe_module",
		mcp.WithDescription("Show the parts, sockets, connections and mappings of a module."),
		moduleIDParam(),
	)
}

func (s *Server) handleDescribeModule(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.module(req)
	if err != nil {
		return toolError(err)
	}

	return mcp.NewToolResultText(Describe(m)), nil
}

// --- add_part ---

func addPartTool() mcp.Tool {
	return mcp.NewTool("add_part",
		mcp.WithDescription("Add a part to a module. Without kind the category's default kind is used."),
		moduleIDParam(),
		mcp.WithString("category",
			mcp.Description("Trigger, Source, Mask, Modulizer, Mesh, Layer or Output"),
			mcp.Required(),
		),
		mcp.WithString("kind", mcp.Description("Part kind within the category, e.g. AudioFFT, Effect, Projector")),
		mcp.WithNumber("x", mcp.Description("Canvas x position")),
		mcp.WithNumber("y", mcp.Description("Canvas y position")),
	)
}

func (s *Server) handleAddPart(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.module(req)
	if err != nil {
		return toolError(err)
	}

	c, err := graph.ParseCategory(req.GetString("category", ""))
	if err != nil {
		return toolError(err)
	}

	pos := graph.Vec2{X: float32(req.GetFloat("x", 0)), Y: float32(req.GetFloat("y", 0))}

	var id graph.PartID

	if kind := req.GetString("kind", ""); kind != "" {
		pt, err := graph.Builtins().New(c, kind)
		if err != nil {
			return toolError(err)
		}

		id = m.AddPart(pt, pos)
	} else {
		id = m.AddDefaultPart(c, pos)
	}

	p, _ := m.Part(id)

	return mcp.NewToolResultText(fmt.Sprintf("Added part %d (%s %s).", id, c, p.Type.Kind())), nil
}

// --- remove_part ---

func removePartTool() mcp.Tool {
	return mcp.NewTool("remove_part",
		mcp.WithDescription("Remove a part and every connection touching it."),
		moduleIDParam(),
		partIDParam(),
	)
}

func (s *Server) handleRemovePart(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.module(req)
	if err != nil {
		return toolError(err)
	}

	p, err := s.part(m, req)
	if err != nil {
		return toolError(err)
	}

	m.RemovePart(p.ID)

	return mcp.NewToolResultText(fmt.Sprintf("Removed part %d.", p.ID)), nil
}

// --- move_part ---

func movePartTool() mcp.Tool {
	return mcp.NewTool("move_part",
		mcp.WithDescription("Move a part on the canvas."),
		moduleIDParam(),
		partIDParam(),
		mcp.WithNumber("x", mcp.Description("Canvas x position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Canvas y position"), mcp.Required()),
	)
}

func (s *Server) handleMovePart(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.module(req)
	if err != nil {
		return toolError(err)
	}

	p, err := s.part(m, req)
	if err != nil {
		return toolError(err)
	}

	pos := graph.Vec2{X: float32(req.GetFloat("x", 0)), Y: float32(req.GetFloat("y", 0))}
	m.UpdatePartPosition(p.ID, pos)

	return mcp.NewToolResultText(fmt.Sprintf("Moved part %d to (%g, %g).", p.ID, pos.X, pos.Y)), nil
}

// --- connect / disconnect ---

func connectionParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		moduleIDParam(),
		mcp.WithNumber("from_part", mcp.Description("Source part id"), mcp.Required()),
		mcp.WithNumber("from_socket", mcp.Description("Output socket index on the source"), mcp.Required()),
		mcp.WithNumber("to_part", mcp.Description("Target part id"), mcp.Required()),
		mcp.WithNumber("to_socket", mcp.Description("Input socket index on the target"), mcp.Required()),
	}
}

func connectionFrom(req mcp.CallToolRequest) graph.Connection {
	return graph.Connection{
		FromPart:   graph.PartID(req.GetInt("from_part", 0)),
		FromSocket: req.GetInt("from_socket", -1),
		ToPart:     graph.PartID(req.GetInt("to_part", 0)),
		ToSocket:   req.GetInt("to_socket", -1),
	}
}

func connectTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Connect an output socket to an input socket. The edge is checked unless force is set."),
	}, connectionParams()...)
	opts = append(opts, mcp.WithBoolean("force", mcp.Description("Skip socket range and type checks")))

	return mcp.NewTool("connect", opts...)
}

func (s *Server) handleConnect(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.module(req)
	if err != nil {
		return toolError(err)
	}

	c := connectionFrom(req)

	if !req.GetBool("force", false) {
		err = m.ValidateConnection(c)
		if err != nil {
			return toolError(err)
		}
	}

	m.AddConnection(c.FromPart, c.FromSocket, c.ToPart, c.ToSocket)

	return mcp.NewToolResultText(fmt.Sprintf("Connected %s.", formatConnection(m, c))), nil
}

func disconnectTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Remove every connection matching the four endpoints."),
	}, connectionParams()...)

	return mcp.NewTool("disconnect", opts...)
}

func (s *Server) handleDisconnect(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.module(req)
	if err != nil {
		return toolError(err)
	}

	c := connectionFrom(req)
	before := len(m.Connections())
	m.RemoveConnection(c.FromPart, c.FromSocket, c.ToPart, c.ToSocket)

	return mcp.NewToolResultText(fmt.Sprintf("Removed %d connection(s).", before-len(m.Connections()))), nil
}

// --- set_link ---

func setLinkTool() mcp.Tool {
	return mcp.NewTool("set_link",
		mcp.WithDescription("Set the master/slave link state of a part and regenerate its sockets."),
		moduleIDParam(),
		partIDParam(),
		mcp.WithString("mode", mcp.Description("Off, Master or Slave"), mcp.Required()),
		mcp.WithString("behavior", mcp.Description("SameAsMaster or Inverted (slaves only)")),
		mcp.WithBoolean("trigger_input", mcp.Description("Expose a visibility trigger input")),
	)
}

func (s *Server) handleSetLink(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.module(req)
	if err != nil {
		return toolError(err)
	}

	p, err := s.part(m, req)
	if err != nil {
		return toolError(err)
	}

	mode, err := graph.ParseLinkMode(req.GetString("mode", ""))
	if err != nil {
		return toolError(err)
	}

	behavior, err := graph.ParseLinkBehavior(req.GetString("behavior", "SameAsMaster"))
	if err != nil {
		return toolError(err)
	}

	m.SetLinkData(p.ID, graph.LinkData{
		Mode:                mode,
		Behavior:            behavior,
		TriggerInputEnabled: req.GetBool("trigger_input", false),
	})

	return s.regenerate(m, p)
}

// --- set_audio_outputs ---

func setAudioOutputsTool() mcp.Tool {
	return mcp.NewTool("set_audio_outputs",
		mcp.WithDescription("Choose the outputs of an AudioFFT trigger and regenerate its sockets."),
		moduleIDParam(),
		partIDParam(),
		mcp.WithBoolean("frequency_bands", mcp.Description("Nine band outputs")),
		mcp.WithBoolean("volume_outputs", mcp.Description("RMS and peak volume outputs")),
		mcp.WithBoolean("beat_output", mcp.Description("Beat output")),
		mcp.WithBoolean("bpm_output", mcp.Description("BPM output")),
		mcp.WithString("inverted", mcp.Description("Comma-separated output names to invert, e.g. \"Bass Out,RMS Volume\"")),
	)
}

func (s *Server) handleSetAudioOutputs(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.module(req)
	if err != nil {
		return toolError(err)
	}

	p, err := s.part(m, req)
	if err != nil {
		return toolError(err)
	}

	fft, ok := p.Type.(graph.TriggerAudioFFT)
	if !ok {
		return toolError(fmt.Errorf("part %d is %s %s, not an AudioFFT trigger", p.ID, p.Category(), p.Type.Kind()))
	}

	outputs := graph.AudioTriggerOutputConfig{
		FrequencyBands: req.GetBool("frequency_bands", false),
		VolumeOutputs:  req.GetBool("volume_outputs", false),
		BeatOutput:     req.GetBool("beat_output", false),
		BPMOutput:      req.GetBool("bpm_output", false),
	}

	for _, name := range splitList(req.GetString("inverted", "")) {
		outputs = outputs.SetInverted(name, true)
	}

	fft.Outputs = outputs
	m.SetPartType(p.ID, fft)

	return s.regenerate(m, p)
}

// --- update_sockets ---

func updateSocketsTool() mcp.Tool {
	return mcp.NewTool("update_sockets",
		mcp.WithDescription("Regenerate sockets and drop connections to sockets that no longer exist. Without part_id every part is updated."),
		moduleIDParam(),
		mcp.WithNumber("part_id", mcp.Description("Part id; omit for all parts")),
	)
}

func (s *Server) handleUpdateSockets(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.module(req)
	if err != nil {
		return toolError(err)
	}

	if req.GetInt("part_id", 0) == 0 {
		before := len(m.Connections())
		m.UpdateAllSockets()

		return mcp.NewToolResultText(fmt.Sprintf("Updated %d parts, pruned %d connection(s).",
			len(m.Parts()), before-len(m.Connections()))), nil
	}

	p, err := s.part(m, req)
	if err != nil {
		return toolError(err)
	}

	return s.regenerate(m, p)
}

func (s *Server) regenerate(m *graph.Module, p *graph.Part) (*mcp.CallToolResult, error) {
	before := len(m.Connections())
	m.UpdatePartSockets(p.ID)
	pruned := before - len(m.Connections())

	if pruned > 0 {
		s.logger.Info("connections pruned", "module", m.ID, "part", p.ID, "count", pruned)
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "Part %d sockets updated, %d connection(s) pruned.\n", p.ID, pruned)
	writeSockets(&sb, p)

	return mcp.NewToolResultText(sb.String()), nil
}

// --- set_mapping ---

func setMappingTool() mcp.Tool {
	return mcp.NewTool("set_mapping",
		mcp.WithDescription("Map a trigger input socket to a part parameter. Target None clears the mapping."),
		moduleIDParam(),
		partIDParam(),
		mcp.WithNumber("socket", mcp.Description("Input socket index"), mcp.Required()),
		mcp.WithString("target",
			mcp.Description("Opacity, Brightness, Contrast, Saturation, HueShift, ScaleX, ScaleY, Rotation, Param:<name> or None"),
			mcp.Required(),
		),
		mcp.WithString("mode", mcp.Description("Direct, Fixed, RandomInRange or Smoothed")),
		mcp.WithNumber("min", mcp.Description("Output at input 0")),
		mcp.WithNumber("max", mcp.Description("Output at input 1")),
		mcp.WithNumber("threshold", mcp.Description("Crossover for Fixed and RandomInRange")),
		mcp.WithBoolean("invert", mcp.Description("Use 1 - input")),
		mcp.WithNumber("attack", mcp.Description("Smoothed rise time constant in seconds")),
		mcp.WithNumber("release", mcp.Description("Smoothed fall time constant in seconds")),
	)
}

func (s *Server) handleSetMapping(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.module(req)
	if err != nil {
		return toolError(err)
	}

	p, err := s.part(m, req)
	if err != nil {
		return toolError(err)
	}

	if !p.AcceptsMappings() {
		return toolError(fmt.Errorf("%s parts do not accept mappings", p.Category()))
	}

	socket := req.GetInt("socket", -1)
	if socket < 0 || socket >= len(p.Inputs()) {
		return toolError(fmt.Errorf("socket %d out of range, part %d has %d inputs", socket, p.ID, len(p.Inputs())))
	}

	target, err := mapping.ParseTarget(req.GetString("target", ""))
	if err != nil {
		return toolError(err)
	}

	if target.IsNone() {
		m.ClearMapping(p.ID, socket)

		return mcp.NewToolResultText(fmt.Sprintf("Cleared mapping on part %d socket %d.", p.ID, socket)), nil
	}

	kind, err := mapping.ParseModeKind(req.GetString("mode", "Direct"))
	if err != nil {
		return toolError(err)
	}

	def := mapping.DefaultConfig()
	cfg := mapping.Config{
		Target: target,
		Mode: mapping.Mode{
			Kind:    kind,
			Attack:  float32(req.GetFloat("attack", 0)),
			Release: float32(req.GetFloat("release", 0)),
		},
		Min:       float32(req.GetFloat("min", float64(def.Min))),
		Max:       float32(req.GetFloat("max", float64(def.Max))),
		Threshold: float32(req.GetFloat("threshold", float64(def.Threshold))),
		Invert:    req.GetBool("invert", false),
	}

	m.SetMapping(p.ID, socket, cfg)

	return mcp.NewToolResultText(fmt.Sprintf("Mapped part %d socket %d to %s (%s, %g..%g).",
		p.ID, socket, target, kind, cfg.Min, cfg.Max)), nil
}

func splitList(s string) []string {
	var out []string

	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
