// Package server exposes analysis and layout operations as a JSON-RPC
// 2.0 tool server, over stdio or HTTP. The wire protocol follows the
// MCP tool conventions: clients call initialize, list tools, then
// invoke tools by name with JSON arguments.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/panefit/panefit/internal/analyze"
	"github.com/panefit/panefit/internal/mux"
	otelx "github.com/panefit/panefit/internal/otel"
	"github.com/panefit/panefit/internal/scorer"
)

const protocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Server dispatches JSON-RPC requests to panefit operations. The
// provider may be nil, in which case tools that need live session
// access report an error while pure tools keep working.
type Server struct {
	provider mux.Provider
	analyzer *analyze.Analyzer
	blender  *scorer.Blender
	metrics  *otelx.Metrics
	version  string
}

// Option configures a Server.
type Option func(*Server)

// WithProvider attaches a multiplexer provider for session-backed tools.
func WithProvider(p mux.Provider) Option {
	return func(s *Server) { s.provider = p }
}

// WithBlender attaches external score enrichment.
func WithBlender(b *scorer.Blender) Option {
	return func(s *Server) { s.blender = b }
}

// WithMetrics attaches telemetry counters.
func WithMetrics(m *otelx.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New builds a Server.
func New(version string, opts ...Option) *Server {
	s := &Server{
		analyzer: analyze.New(),
		version:  version,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle processes one request and returns the response. Notifications
// (requests without an id) still get a response; transport layers decide
// whether to deliver it.
func (s *Server) Handle(ctx context.Context, req Request) Response {
	if req.JSONRPC != "2.0" {
		return errorResponse(req.ID, codeInvalidRequest, "jsonrpc must be \"2.0\"")
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return errorResponse(req.ID, codeMethodNotFound,
			fmt.Sprintf("method not found: %s", req.Method))
	}
}

// HandleRaw decodes one JSON request body and processes it. Malformed
// JSON yields an invalid-request error response with a null id.
func (s *Server) HandleRaw(ctx context.Context, body []byte) Response {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return errorResponse(nil, codeInvalidRequest, "invalid JSON: "+err.Error())
	}
	return s.Handle(ctx, req)
}

func (s *Server) handleInitialize(req Request) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    "panefit",
				"version": s.version,
			},
		},
	}
}

func (s *Server) handleToolsList(req Request) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  map[string]any{"tools": toolDefinitions()},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req Request) Response {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "invalid params: "+err.Error())
	}
	if params.Name == "" {
		return errorResponse(req.ID, codeInvalidParams, "missing tool name")
	}

	result, err := s.callTool(ctx, params.Name, params.Arguments)
	if err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			return errorResponse(req.ID, rpcErr.Code, rpcErr.Message)
		}
		return errorResponse(req.ID, codeInternalError, err.Error())
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errorResponse(req.ID, codeInternalError, err.Error())
	}
	return Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": string(text)},
			},
		},
	}
}

func errorResponse(id json.RawMessage, code int, message string) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message},
	}
}
