package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ClientConfig holds configuration for the streamable HTTP client.
type ClientConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// DefaultClientConfig returns a default client configuration.
func DefaultClientConfig(endpoint string) *ClientConfig {
	return &ClientConfig{
		Endpoint: endpoint,
		Timeout:  30 * time.Second,
	}
}

// Client speaks JSON-RPC to a streamable HTTP server. It tracks the
// session identifier issued on initialize and is safe for concurrent use.
type Client struct {
	endpoint string
	httpc    *http.Client
	logger   *zap.Logger

	mu        sync.Mutex
	sessionID string
	nextID    int64
}

// NewClient creates a client for the server at cfg.Endpoint.
func NewClient(cfg *ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		httpc:    &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

// Initialize performs the protocol handshake and announces readiness.
func (c *Client) Initialize(ctx context.Context, clientName, clientVersion string) (*InitializeResult, error) {
	params := map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo": ServerInfo{
			Name:    clientName,
			Version: clientVersion,
		},
	}

	var result InitializeResult
	if err := c.call(ctx, "initialize", params, &result); err != nil {
		c.logger.Error("initialize failed",
			zap.String("endpoint", c.endpoint),
			zap.Error(err))
		return nil, err
	}
	if err := c.notify(ctx, "notifications/initialized"); err != nil {
		return nil, err
	}

	c.logger.Info("session initialized",
		zap.String("endpoint", c.endpoint),
		zap.String("server", result.ServerInfo.Name),
		zap.String("protocol_version", result.ProtocolVersion))

	return &result, nil
}

// ListTools fetches the server's tool catalog.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	var result ListToolsResult
	if err := c.call(ctx, "tools/list", nil, &result); err != nil {
		c.logger.Error("tools/list failed",
			zap.String("endpoint", c.endpoint),
			zap.Error(err))
		return nil, err
	}
	return result.Tools, nil
}

// CallTool invokes one tool and returns the text payload of its result.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	arguments, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("failed to encode arguments: %w", err)
	}

	var result CallResult
	err = c.call(ctx, "tools/call", CallParams{Name: name, Arguments: arguments}, &result)
	if err != nil {
		c.logger.Error("tool call failed",
			zap.String("endpoint", c.endpoint),
			zap.String("tool", name),
			zap.Error(err))
		return "", err
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("tool %s returned no content", name)
	}
	return result.Content[0].Text, nil
}

// SessionID returns the session identifier issued by the server, if any.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.mu.Unlock()

	req := Request{
		JSONRPC: "2.0",
		Method:  method,
		ID:      json.RawMessage(strconv.FormatInt(id, 10)),
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to encode params: %w", err)
		}
		req.Params = data
	}

	body, err := c.post(ctx, req)
	if err != nil {
		return err
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result != nil {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

func (c *Client) notify(ctx context.Context, method string) error {
	_, err := c.post(ctx, Request{JSONRPC: "2.0", Method: method})
	return err
}

func (c *Client) post(ctx context.Context, msg Request) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.mu.Lock()
	if c.sessionID != "" {
		httpReq.Header.Set(SessionHeader, c.sessionID)
	}
	c.mu.Unlock()

	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", c.endpoint, err)
	}
	defer httpResp.Body.Close()

	if sid := httpResp.Header.Get(SessionHeader); sid != "" {
		c.mu.Lock()
		c.sessionID = sid
		c.mu.Unlock()
	}

	// Notifications are acknowledged with 202 and an empty body.
	if httpResp.StatusCode == http.StatusAccepted {
		return nil, nil
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s from %s", httpResp.Status, c.endpoint)
	}
	return io.ReadAll(io.LimitReader(httpResp.Body, maxMessageBytes))
}
