package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestServeStdio validates line framing: one response per request,
// nothing for blank lines or notifications
func TestServeStdio(t *testing.T) {
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`,
		``,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	err := newTestServer(t).ServeStdio(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	lines := nonEmptyLines(out.String())
	require.Len(t, lines, 2)

	var first Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "1", string(first.ID))
	require.Nil(t, first.Error)

	var init InitializeResult
	require.NoError(t, json.Unmarshal(first.Result, &init))
	assert.Equal(t, ProtocolVersion, init.ProtocolVersion)

	var second Response
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "2", string(second.ID))
}

func TestServeStdio_MalformedLineAnswersParseError(t *testing.T) {
	var out bytes.Buffer
	err := newTestServer(t).ServeStdio(context.Background(), strings.NewReader("{broken\n"), &out)
	require.NoError(t, err)

	lines := nonEmptyLines(out.String())
	require.Len(t, lines, 1)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeParseError, resp.Error.Code)
}

func TestServeStdio_EmptyInput(t *testing.T) {
	var out bytes.Buffer
	err := newTestServer(t).ServeStdio(context.Background(), strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestServeStdio_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := newTestServer(t).ServeStdio(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
