package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/MrLongNight/MapFlow-sub000/flow/audio"
	"github.com/MrLongNight/MapFlow-sub000/flow/eval"
	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
	"github.com/MrLongNight/MapFlow-sub000/flow/mapping"
)

const defaultDtMs = 16

func (s *Server) registerEvalTools(srv *server.MCPServer) {
	srv.AddTool(evaluateTool(), s.locked(s.handleEvaluate))
	srv.AddTool(saveTool(), s.locked(s.handleSave))
}

// --- evaluate ---

func evaluateTool() mcp.Tool {
	return mcp.NewTool("evaluate",
		mcp.WithDescription("Run one evaluation tick of a module and return the resolved parameters "+
			"and the trigger sockets that fired. Mapping state such as smoothing carries over between calls."),
		moduleIDParam(),
		mcp.WithString("triggers",
			mcp.Description(`JSON object of explicit trigger outputs by part id, e.g. {"1":[0.8]}`),
		),
		mcp.WithString("audio",
			mcp.Description(`JSON audio analysis, e.g. {"bands":[0,0.6],"rms":0.3,"peak":0.5,"beat":true,"bpm":120}`),
		),
		mcp.WithString("keys", mcp.Description("Comma-separated pressed key codes")),
		mcp.WithNumber("dt_ms", mcp.Description("Tick length in milliseconds (default 16)")),
		mcp.WithNumber("elapsed_ms", mcp.Description("Show time in milliseconds; defaults to the previous tick plus dt_ms")),
	)
}

type audioArg struct {
	Bands []float32 `json:"bands"`
	RMS   float32   `json:"rms"`
	Peak  float32   `json:"peak"`
	Beat  bool      `json:"beat"`
	BPM   *float32  `json:"bpm"`
}

func (a audioArg) analysis() audio.Analysis {
	out := audio.Analysis{RMS: a.RMS, Peak: a.Peak, Beat: a.Beat}
	copy(out.Bands[:], a.Bands)

	if a.BPM != nil {
		out.BPM, out.HasBPM = *a.BPM, true
	}

	return out
}

type paramResult struct {
	Part   graph.PartID   `json:"part"`
	Socket int            `json:"socket"`
	Target mapping.Target `json:"target"`
	Value  float32        `json:"value"`
}

type evaluateResult struct {
	ElapsedMs  int64                            `json:"elapsed_ms"`
	Params     []paramResult                    `json:"params"`
	Visibility map[graph.PartID]float32         `json:"visibility,omitempty"`
	Triggers   map[graph.PartID][]float32       `json:"trigger_values,omitempty"`
	Inputs     map[graph.PartID]map[int]float32 `json:"socket_inputs,omitempty"`
	Active     map[graph.PartID][]int           `json:"active,omitempty"`
}

func (s *Server) handleEvaluate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.module(req)
	if err != nil {
		return toolError(err)
	}

	snap, err := s.snapshot(m.ID, req)
	if err != nil {
		return toolError(err)
	}

	res := s.evaluator(m.ID).Evaluate(m, snap)
	s.clocks[m.ID] = snap.Elapsed

	out := evaluateResult{
		ElapsedMs:  snap.Elapsed.Milliseconds(),
		Params:     make([]paramResult, 0, len(res.Params)),
		Visibility: res.Visibility,
		Triggers:   res.TriggerValues,
		Inputs:     res.SocketInputs,
		Active:     res.Active,
	}

	for _, p := range res.Params {
		out.Params = append(out.Params, paramResult(p))
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return toolError(err)
	}

	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) snapshot(id graph.ModuleID, req mcp.CallToolRequest) (eval.Snapshot, error) {
	dt := time.Duration(req.GetFloat("dt_ms", defaultDtMs) * float64(time.Millisecond))
	if dt < 0 {
		return eval.Snapshot{}, errors.New("dt_ms must not be negative")
	}

	elapsed := s.clocks[id] + dt
	if ms := req.GetFloat("elapsed_ms", -1); ms >= 0 {
		elapsed = time.Duration(ms * float64(time.Millisecond))
	}

	snap := eval.Snapshot{Elapsed: elapsed, Dt: dt}

	if raw := req.GetString("triggers", ""); raw != "" {
		var byID map[string][]float32

		err := json.Unmarshal([]byte(raw), &byID)
		if err != nil {
			return snap, fmt.Errorf("triggers: %w", err)
		}

		snap.Triggers = make(map[graph.PartID][]float32, len(byID))

		for k, v := range byID {
			n, err := strconv.ParseUint(k, 10, 64)
			if err != nil {
				return snap, fmt.Errorf("triggers: part id %q: %w", k, err)
			}

			snap.Triggers[graph.PartID(n)] = v
		}
	}

	if raw := req.GetString("audio", ""); raw != "" {
		var a audioArg

		err := json.Unmarshal([]byte(raw), &a)
		if err != nil {
			return snap, fmt.Errorf("audio: %w", err)
		}

		snap.Audio = a.analysis()
	}

	if keys := splitList(req.GetString("keys", "")); len(keys) > 0 {
		snap.Keys = make(map[string]bool, len(keys))
		for _, k := range keys {
			snap.Keys[k] = true
		}
	}

	return snap, nil
}

// --- save ---

func saveTool() mcp.Tool {
	return mcp.NewTool("save",
		mcp.WithDescription("Write every module of the session to the project database."),
	)
}

func (s *Server) handleSave(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return toolError(errors.New("no project database configured"))
	}

	err := s.store.SaveAll(ctx, s.manager)
	if err != nil {
		return toolError(err)
	}

	s.logger.Info("session saved", "modules", s.manager.Len(), "path", s.store.Path())

	return mcp.NewToolResultText(fmt.Sprintf("Saved %d module(s) to %s.", s.manager.Len(), s.store.Path())), nil
}
