package mcp

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SessionHeader carries the session identifier issued on initialize and
// echoed back on every subsequent request.
const SessionHeader = "Mcp-Session-Id"

// Handler returns the HTTP handler for the streamable transport. JSON-RPC
// messages are POSTed to /mcp one per request; /healthz and /metrics expose
// liveness and Prometheus metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", s.handleMCP)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageBytes))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	var probe struct {
		Method string `json:"method"`
	}
	if err := json.Unmarshal(body, &probe); err == nil && probe.Method == "initialize" {
		w.Header().Set(SessionHeader, uuid.NewString())
	} else if sid := r.Header.Get(SessionHeader); sid != "" {
		w.Header().Set(SessionHeader, sid)
	}

	resp := s.HandleMessage(r.Context(), body)
	if resp == nil {
		// Notifications get no JSON-RPC response.
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to write response", zap.Error(err))
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records := s.store.Records(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"records": len(records),
	}); err != nil {
		s.logger.Error("failed to write health response", zap.Error(err))
	}
}
