// Package llm defines the model invocation adapter: given a prompt and
// a target output contract, return a structured result or fail. Model
// choice, auth, and provider retry policy live behind this interface.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Tool describes the output contract the model must satisfy, as a
// named tool with JSON Schema parameters.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolCall is the model's structured output: arguments targeting a
// named tool. Arguments are raw JSON; callers validate them against
// the declared contract before use.
type ToolCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// TokenUsage tracks token consumption for one invocation.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Request configures one model invocation.
type Request struct {
	// System is the system prompt, optional.
	System string
	// Prompt is the user-facing prompt text.
	Prompt string
	// Tool is the output contract the model must target.
	Tool Tool
	// Model overrides the client's default model when non-empty.
	Model string
	// Temperature is the sampling temperature.
	Temperature float64
	// MaxTokens bounds the response length; 0 means provider default.
	MaxTokens int
}

// Result is the outcome of a successful invocation.
type Result struct {
	// ToolCall is the structured output. Nil if the model answered
	// with free text instead of calling the tool.
	ToolCall *ToolCall
	// Content is the raw text output, kept for diagnostics.
	Content string
	// Model is the model that produced the result.
	Model string
	// Usage is token accounting, zero when the provider does not
	// report it.
	Usage TokenUsage
	// Duration is wall-clock invocation time.
	Duration time.Duration
}

// Client invokes a model with a structured output contract.
// Implementations must be safe for concurrent use.
type Client interface {
	Invoke(ctx context.Context, req Request) (*Result, error)
}

// InvokeError is an opaque failure from the model adapter.
type InvokeError struct {
	// Model is the model that was invoked.
	Model string
	// Detail is provider output useful for debugging (e.g. stderr).
	Detail string
	// Retryable hints whether the failure looks transient.
	Retryable bool
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *InvokeError) Error() string {
	switch {
	case e.Err != nil && e.Detail != "":
		return fmt.Sprintf("model invocation (%s): %v: %s", e.Model, e.Err, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("model invocation (%s): %v", e.Model, e.Err)
	default:
		return fmt.Sprintf("model invocation (%s): %s", e.Model, e.Detail)
	}
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *InvokeError) Unwrap() error {
	return e.Err
}
