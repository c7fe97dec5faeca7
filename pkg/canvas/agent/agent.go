// Package agent wires the workflow nodes for collaborative artifact
// editing: intent classification, artifact generation and editing,
// conversational replies, and session maintenance (reflections,
// summaries, titles). BuildGraph assembles them into a compiled graph;
// Session adds run control and thread persistence on top.
package agent

import (
	"errors"
	"fmt"
	"time"

	"github.com/randalmurphal/canvasflow/pkg/canvas"
	"github.com/randalmurphal/canvasflow/pkg/canvas/config"
	"github.com/randalmurphal/canvasflow/pkg/canvas/llm"
	"github.com/randalmurphal/canvasflow/pkg/canvas/observability"
	"github.com/randalmurphal/canvasflow/pkg/canvas/schema"
	"github.com/randalmurphal/canvasflow/pkg/canvas/store"
)

// Options tunes the assistant. Zero values fall back to defaults; see
// DefaultOptions.
type Options struct {
	// Model passed on every invocation. Empty uses the client default.
	Model string

	// Temperature for artifact-producing invocations.
	Temperature float64

	// MaxTokens bounds each model response; 0 means provider default.
	MaxTokens int

	// SearchLimit caps how many web results a search may contribute.
	SearchLimit int

	// MaxSteps bounds a single run's node executions.
	MaxSteps int

	// SummarizeAfter is the message count past which a run ends with
	// a thread summarization pass.
	SummarizeAfter int

	// UserID and AssistantID scope persisted reflections.
	UserID      string
	AssistantID string
}

// DefaultOptions returns the standard assistant configuration.
func DefaultOptions() Options {
	return Options{
		Model:          "claude-3-7-sonnet",
		Temperature:    0.5,
		MaxTokens:      4096,
		SearchLimit:    5,
		MaxSteps:       25,
		SummarizeAfter: 20,
		UserID:         "default",
		AssistantID:    "default",
	}
}

// OptionsFromConfig builds Options from a loaded configuration,
// falling back to DefaultOptions for missing keys.
func OptionsFromConfig(cfg config.Config) Options {
	def := DefaultOptions()
	return Options{
		Model:          cfg.String("model", def.Model),
		Temperature:    cfg.Float("temperature", def.Temperature),
		MaxTokens:      cfg.Int("max_tokens", def.MaxTokens),
		SearchLimit:    cfg.Int("search_limit", def.SearchLimit),
		MaxSteps:       cfg.Int("max_steps", def.MaxSteps),
		SummarizeAfter: cfg.Int("summarize_after", def.SummarizeAfter),
		UserID:         cfg.String("user_id", def.UserID),
		AssistantID:    cfg.String("assistant_id", def.AssistantID),
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Model == "" {
		o.Model = def.Model
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = def.MaxTokens
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = def.SearchLimit
	}
	if o.MaxSteps <= 0 {
		o.MaxSteps = def.MaxSteps
	}
	if o.SummarizeAfter <= 0 {
		o.SummarizeAfter = def.SummarizeAfter
	}
	if o.UserID == "" {
		o.UserID = def.UserID
	}
	if o.AssistantID == "" {
		o.AssistantID = def.AssistantID
	}
	return o
}

// Assistant holds the node implementations. Construct one with New,
// then assemble its graph with BuildGraph.
type Assistant struct {
	opts Options
}

// New creates an assistant with the given options.
func New(opts Options) *Assistant {
	return &Assistant{opts: opts.withDefaults()}
}

// Opts returns the effective options after defaulting.
func (a *Assistant) Opts() Options {
	return a.opts
}

// invoke runs one structured-output model call and validates the
// result against the contract.
func (a *Assistant) invoke(ctx canvas.Context, contract schema.Schema, system, prompt string) (map[string]any, error) {
	client := ctx.LLM()
	if client == nil {
		return nil, &llm.InvokeError{Model: a.opts.Model, Detail: "no model client configured"}
	}

	done := observability.TimedOperation()
	result, err := client.Invoke(ctx, llm.Request{
		System:      system,
		Prompt:      prompt,
		Tool: llm.Tool{
			Name:        contract.Name,
			Description: contract.Description,
			Parameters:  contract.Parameters(),
		},
		Model:       a.opts.Model,
		Temperature: a.opts.Temperature,
		MaxTokens:   a.opts.MaxTokens,
	})
	elapsed := done()
	observability.LogModelInvocation(ctx.Logger(), contract.Name, a.opts.Model, elapsed, err)
	ctx.Metrics().RecordModelInvocation(ctx, contract.Name, time.Duration(elapsed)*time.Millisecond, err)
	if err != nil {
		return nil, err
	}

	raw := rawOutput(result)
	if len(raw) == 0 {
		return nil, &schema.ValidationError{Schema: contract.Name, Reason: "model produced no structured output"}
	}
	return contract.Validate(raw)
}

// invokeValidated adds one corrective retry on contract violations.
// The retry restates the rejection so the model can repair its output;
// a second violation is returned to the caller.
func (a *Assistant) invokeValidated(ctx canvas.Context, contract schema.Schema, system, prompt string) (map[string]any, error) {
	obj, err := a.invoke(ctx, contract, system, prompt)
	var vErr *schema.ValidationError
	if !errors.As(err, &vErr) {
		return obj, err
	}

	ctx.Logger().Warn("contract violation, retrying once",
		"schema", contract.Name,
		"reason", vErr.Reason)
	corrective := fmt.Sprintf("%s\n\nYour previous response was rejected: %s.\nRespond again, following the output contract exactly.", prompt, vErr.Error())
	return a.invoke(ctx, contract, system, corrective)
}

// rawOutput extracts the JSON payload to validate: the tool call
// arguments when present, otherwise the raw text content.
func rawOutput(result *llm.Result) []byte {
	if result == nil {
		return nil
	}
	if result.ToolCall != nil && len(result.ToolCall.Arguments) > 0 {
		return result.ToolCall.Arguments
	}
	return []byte(result.Content)
}

// reflectionNamespace scopes persisted insights to one user/assistant
// pairing.
func (a *Assistant) reflectionNamespace() []string {
	return []string{"memories", a.opts.UserID, a.opts.AssistantID}
}

const reflectionKey = "reflections"

// loadReflections returns the persisted insight notes, or empty when
// the store is absent or the record does not exist. Load failures are
// logged and treated as empty; reflections are advisory input.
func (a *Assistant) loadReflections(ctx canvas.Context) string {
	memory := ctx.Store()
	if memory == nil {
		return ""
	}
	value, err := memory.Get(a.reflectionNamespace(), reflectionKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			ctx.Logger().Warn("reflection load failed", "error", err)
		}
		return ""
	}
	return string(value)
}
