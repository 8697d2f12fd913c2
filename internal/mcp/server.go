package mcp

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/data-power-io/tariffscope/internal/metrics"
	"github.com/data-power-io/tariffscope/internal/portfolio"
)

// Server routes JSON-RPC messages to the query engine. It is transport
// independent; stdio and HTTP serving live in their own files.
type Server struct {
	name    string
	version string
	engine  *portfolio.Engine
	store   *portfolio.Store
	logger  *zap.Logger
}

// NewServer creates the MCP server for an engine. The store is consulted
// for the health endpoint's record count.
func NewServer(name, version string, engine *portfolio.Engine, store *portfolio.Store, logger *zap.Logger) *Server {
	return &Server{
		name:    name,
		version: version,
		engine:  engine,
		store:   store,
		logger:  logger,
	}
}

// HandleMessage processes one raw JSON-RPC message and returns the
// response, or nil when the message is a notification.
func (s *Server) HandleMessage(ctx context.Context, data []byte) *Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.logger.Warn("unable to parse JSON-RPC request", zap.Error(err))
		return errorResponse(nil, CodeParseError, "Parse error", nil)
	}
	return s.route(ctx, &req)
}

func (s *Server) route(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return newResponse(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      ServerInfo{Name: s.name, Version: s.version},
		})
	case "notifications/initialized":
		return nil
	case "ping":
		return newResponse(req.ID, struct{}{})
	case "tools/list":
		return newResponse(req.ID, ListToolsResult{Tools: toolCatalog()})
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		if req.IsNotification() {
			s.logger.Debug("ignoring notification", zap.String("method", req.Method))
			return nil
		}
		return errorResponse(req.ID, CodeMethodNotFound, "Method not found", nil)
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params CallParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return errorResponse(req.ID, CodeInvalidParams, "Invalid params", nil)
	}

	timer := metrics.NewTimer()
	result, status, rpcErr := s.safeDispatch(ctx, req, &params, timer)
	if rpcErr != nil {
		metrics.RecordToolCall(params.Name, "error", timer.Duration())
		return errorResponse(req.ID, rpcErr.Code, rpcErr.Message, nil)
	}
	metrics.RecordToolCall(params.Name, status, timer.Duration())

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		s.logger.Error("failed to encode tool result",
			zap.String("tool", params.Name),
			zap.Error(err))
		return errorResponse(req.ID, CodeInternalError, "Internal error", nil)
	}
	return newResponse(req.ID, CallResult{Content: []Content{{Type: "text", Text: string(text)}}})
}

// safeDispatch confines a handler panic to the current request: the
// failure is logged with its correlation fields and elapsed time and
// surfaces as an internal JSON-RPC error, leaving the cache and other
// in-flight requests untouched.
func (s *Server) safeDispatch(ctx context.Context, req *Request, params *CallParams, timer *metrics.Timer) (result any, status string, rpcErr *Error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tool handler panic",
				zap.String("tool", params.Name),
				zap.ByteString("rpc_id", req.ID),
				zap.Any("panic", r),
				zap.Duration("elapsed", timer.Duration()))
			result, status = nil, ""
			rpcErr = &Error{Code: CodeInternalError, Message: "Internal error"}
		}
	}()
	return s.dispatchTool(ctx, params.Name, params.Arguments)
}
