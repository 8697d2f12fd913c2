package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/data-power-io/tariffscope/internal/mcp"
)

// maxToolRounds bounds the number of model/tool exchanges per query.
const maxToolRounds = 8

const agentVersion = "2.0.0"

// Runner wires the model to the analysis server's tools and drives the
// conversation until the model produces a final answer.
type Runner struct {
	config  *Config
	mcp     *mcp.Client
	llm     *chatClient
	tools   []chatTool
	logger  *zap.Logger
	out     io.Writer
	verbose bool
}

// NewRunner creates a runner writing user-facing output to out. Call
// Connect before answering queries.
func NewRunner(cfg *Config, logger *zap.Logger, out io.Writer, verbose bool) *Runner {
	return &Runner{
		config:  cfg,
		mcp:     mcp.NewClient(mcp.DefaultClientConfig(cfg.Server.URL), logger),
		llm:     newChatClient(cfg.Model, logger),
		logger:  logger,
		out:     out,
		verbose: verbose,
	}
}

// Connect initializes the tool session and fetches the tool catalog.
func (r *Runner) Connect(ctx context.Context) error {
	r.progress("Connecting to %s...", r.config.Server.Name)

	if _, err := r.mcp.Initialize(ctx, r.config.Name, agentVersion); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", r.config.Server.URL, err)
	}

	tools, err := r.mcp.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}
	if len(tools) == 0 {
		return fmt.Errorf("server at %s advertises no tools", r.config.Server.URL)
	}

	r.tools = make([]chatTool, 0, len(tools))
	for _, t := range tools {
		r.tools = append(r.tools, chatTool{
			Type: "function",
			Function: toolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		})
	}

	r.logger.Info("connected to analysis server",
		zap.String("url", r.config.Server.URL),
		zap.Int("tools", len(tools)))
	return nil
}

// Answer runs one query through the model, executing tool calls until
// the model stops asking for them.
func (r *Runner) Answer(ctx context.Context, query string) (string, error) {
	messages := []chatMessage{
		{Role: "system", Content: r.config.Instructions},
		{Role: "user", Content: query},
	}

	for round := 0; round < maxToolRounds; round++ {
		msg, err := r.llm.complete(ctx, messages, r.tools)
		if err != nil {
			return "", err
		}
		if len(msg.ToolCalls) == 0 {
			if msg.Content == "" {
				return "No response received", nil
			}
			return msg.Content, nil
		}

		messages = append(messages, *msg)
		for _, call := range msg.ToolCalls {
			messages = append(messages, r.executeToolCall(ctx, call))
		}
	}

	return "", fmt.Errorf("no final answer after %d tool rounds", maxToolRounds)
}

func (r *Runner) executeToolCall(ctx context.Context, call toolCall) chatMessage {
	r.progress("Calling %s...", call.Function.Name)

	var args map[string]any
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			r.logger.Warn("model produced invalid tool arguments",
				zap.String("tool", call.Function.Name),
				zap.Error(err))
			return chatMessage{
				Role:       "tool",
				Content:    fmt.Sprintf("invalid arguments: %v", err),
				ToolCallID: call.ID,
			}
		}
	}

	text, err := r.mcp.CallTool(ctx, call.Function.Name, args)
	if err != nil {
		// Feed the failure back so the model can adjust its next call.
		text = fmt.Sprintf("tool call failed: %v", err)
	}
	r.logger.Debug("tool result",
		zap.String("tool", call.Function.Name),
		zap.String("payload", text))
	return chatMessage{Role: "tool", Content: text, ToolCallID: call.ID}
}

// RunOnce answers a single query, falling back to the configured default
// when query is empty.
func (r *Runner) RunOnce(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		query = r.config.DefaultQuery
	}
	if err := r.Connect(ctx); err != nil {
		return "", err
	}
	r.progress("Running query: %s...", truncate(query, 50))
	return r.Answer(ctx, query)
}

// Interactive runs a read-answer loop until EOF or a quit command.
func (r *Runner) Interactive(ctx context.Context, in io.Reader) error {
	if err := r.Connect(ctx); err != nil {
		return err
	}

	fmt.Fprintf(r.out, "\nInteractive Mode - %s\n", r.config.Server.Name)
	fmt.Fprintln(r.out, strings.Repeat("=", 50))
	fmt.Fprintln(r.out, "Type 'quit' or 'exit' to stop")
	fmt.Fprintln(r.out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return scanner.Err()
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if lower := strings.ToLower(query); lower == "quit" || lower == "exit" {
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		}

		fmt.Fprintln(r.out, "Thinking...")
		fmt.Fprintln(r.out)

		answer, err := r.Answer(ctx, query)
		if err != nil {
			fmt.Fprintf(r.out, "Agent error: %v\n\n", err)
			continue
		}
		fmt.Fprintf(r.out, "Agent: %s\n\n", answer)
	}
}

func (r *Runner) progress(format string, args ...any) {
	if !r.verbose {
		return
	}
	fmt.Fprintf(r.out, format+"\n", args...)
}
