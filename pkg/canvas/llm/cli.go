package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CLIClient implements Client by shelling out to a model CLI binary
// (e.g. "claude"). The binary is asked to print a single JSON object
// satisfying the tool's parameter schema.
type CLIClient struct {
	path    string
	model   string
	workdir string
	timeout time.Duration
}

// CLIOption configures CLIClient.
type CLIOption func(*CLIClient)

// WithPath sets the path to the CLI binary.
func WithPath(path string) CLIOption {
	return func(c *CLIClient) { c.path = path }
}

// WithModel sets the default model.
func WithModel(model string) CLIOption {
	return func(c *CLIClient) { c.model = model }
}

// WithWorkdir sets the working directory for CLI invocations.
func WithWorkdir(dir string) CLIOption {
	return func(c *CLIClient) { c.workdir = dir }
}

// WithTimeout sets the per-invocation timeout.
func WithTimeout(d time.Duration) CLIOption {
	return func(c *CLIClient) { c.timeout = d }
}

// NewCLIClient creates a CLI-backed client.
// Assumes "claude" is in PATH unless overridden with WithPath.
func NewCLIClient(opts ...CLIOption) *CLIClient {
	c := &CLIClient{
		path:    "claude",
		timeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke implements Client.
func (c *CLIClient) Invoke(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	model := c.model
	if req.Model != "" {
		model = req.Model
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.path, c.buildArgs(req, model)...)
	if c.workdir != "" {
		cmd.Dir = c.workdir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, &InvokeError{Model: model, Err: ctx.Err()}
		}
		errMsg := stderr.String()
		return nil, &InvokeError{
			Model:     model,
			Detail:    errMsg,
			Retryable: isRetryable(errMsg),
			Err:       err,
		}
	}

	content := strings.TrimSpace(stdout.String())
	result := &Result{
		Content:  content,
		Model:    model,
		Duration: time.Since(start),
	}
	if args := extractJSON(content); args != nil {
		result.ToolCall = &ToolCall{Name: req.Tool.Name, Arguments: args}
	}
	return result, nil
}

// buildArgs constructs CLI arguments for a request.
func (c *CLIClient) buildArgs(req Request, model string) []string {
	args := []string{"--print"}

	system := req.System
	if len(req.Tool.Parameters) > 0 {
		schemaInstr := fmt.Sprintf(
			"Respond with a single JSON object matching this schema, and nothing else:\n%s",
			string(req.Tool.Parameters))
		if system != "" {
			system += "\n\n" + schemaInstr
		} else {
			system = schemaInstr
		}
	}
	if system != "" {
		args = append(args, "--system-prompt", system)
	}
	if model != "" {
		args = append(args, "--model", model)
	}
	if req.MaxTokens > 0 {
		args = append(args, "--max-tokens", fmt.Sprintf("%d", req.MaxTokens))
	}

	return append(args, "-p", req.Prompt)
}

// extractJSON pulls the first JSON object out of model output,
// tolerating surrounding prose and markdown fences. Returns nil when
// no object is present.
func extractJSON(content string) json.RawMessage {
	if idx := strings.Index(content, "```"); idx >= 0 {
		rest := content[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			content = rest[:end]
		}
	}

	begin := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if begin < 0 || end <= begin {
		return nil
	}
	return json.RawMessage(content[begin : end+1])
}

// isRetryable checks if an error message indicates a transient failure.
func isRetryable(errMsg string) bool {
	errLower := strings.ToLower(errMsg)
	return strings.Contains(errLower, "rate limit") ||
		strings.Contains(errLower, "timeout") ||
		strings.Contains(errLower, "overloaded") ||
		strings.Contains(errLower, "503") ||
		strings.Contains(errLower, "529")
}
