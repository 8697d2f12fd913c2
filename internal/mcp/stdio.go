package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const maxMessageBytes = 1024 * 1024

// ServeStdio reads newline-delimited JSON-RPC messages from r and writes
// responses to w until EOF. Messages are served one at a time in arrival
// order.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, maxMessageBytes)
	scanner.Buffer(buf, maxMessageBytes)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		resp := s.HandleMessage(ctx, []byte(line))
		if resp == nil {
			continue
		}

		data, err := json.Marshal(resp)
		if err != nil {
			s.logger.Error("failed to encode response", zap.Error(err))
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}

	return scanner.Err()
}
