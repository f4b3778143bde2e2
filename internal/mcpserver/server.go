// Package mcpserver exposes module graph editing and evaluation as MCP
// tools for scripted callers.
package mcpserver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/MrLongNight/MapFlow-sub000/flow/eval"
	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
	"github.com/MrLongNight/MapFlow-sub000/internal/store"
)

// Server holds one editing session. mcp-go may dispatch tool calls
// concurrently, so every handler runs under mu.
type Server struct {
	mu         sync.Mutex
	manager    *graph.Manager
	store      *store.Store
	logger     *slog.Logger
	evaluators map[graph.ModuleID]*eval.Evaluator
	clocks     map[graph.ModuleID]time.Duration
	evalOpts   []eval.Option
}

// Option configures a Server.
type Option func(*Server)

// WithManager starts the session from an existing set of modules.
func WithManager(mg *graph.Manager) Option {
	return func(s *Server) {
		if mg != nil {
			s.manager = mg
		}
	}
}

// WithStore enables the save tool.
func WithStore(st *store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithLogger sets the logger used by the server and its evaluators.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEvalOptions passes options to every evaluator the server creates.
func WithEvalOptions(opts ...eval.Option) Option {
	return func(s *Server) {
		s.evalOpts = append(s.evalOpts, opts...)
	}
}

// New creates a Server with an empty manager unless WithManager is given.
func New(opts ...Option) *Server {
	s := &Server{
		manager:    graph.NewManager(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		evaluators: make(map[graph.ModuleID]*eval.Evaluator),
		clocks:     make(map[graph.ModuleID]time.Duration),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Manager returns the session's modules. Callers must not use it while
// the server is serving.
func (s *Server) Manager() *graph.Manager { return s.manager }

// Register adds every tool to srv.
func (s *Server) Register(srv *server.MCPServer) {
	s.registerGraphTools(srv)
	s.registerEvalTools(srv)
}

// NewMCPServer builds an MCP server with every tool registered.
func (s *Server) NewMCPServer(name, version string) *server.MCPServer {
	srv := server.NewMCPServer(name, version, server.WithToolCapabilities(true))
	s.Register(srv)

	return srv
}

func (s *Server) module(req mcp.CallToolRequest) (*graph.Module, error) {
	id := req.GetInt("module_id", 0)
	if id <= 0 {
		return nil, errors.New("module_id is required")
	}

	m, ok := s.manager.Module(graph.ModuleID(id))
	if !ok {
		return nil, fmt.Errorf("module %d not found", id)
	}

	return m, nil
}

func (s *Server) part(m *graph.Module, req mcp.CallToolRequest) (*graph.Part, error) {
	id := req.GetInt("part_id", 0)
	if id <= 0 {
		return nil, errors.New("part_id is required")
	}

	return m.RequirePart(graph.PartID(id))
}

func (s *Server) evaluator(id graph.ModuleID) *eval.Evaluator {
	e, ok := s.evaluators[id]
	if !ok {
		opts := append([]eval.Option{eval.WithLogger(s.logger)}, s.evalOpts...)
		e = eval.New(opts...)
		s.evaluators[id] = e
	}

	return e
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
