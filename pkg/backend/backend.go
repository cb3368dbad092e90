// Package backend resolves encoded decision prompts into JSON replies, either
// through an external decision source or the built-in deterministic policy.
package backend

import (
	"context"

	"handoff/pkg/agent/llm"
	"handoff/pkg/status"
)

// Backend is an external decision source: a small model, a rule engine, or a human.
// It receives an encoded prompt and returns the JSON text of the decision.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BackendFunc adapts a plain function to Backend.
type BackendFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f BackendFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Request carries everything either strategy may need. Prompt is the encoded
// text sent to a Backend; Status and Errors feed the fallback policy.
type Request struct {
	Kind   string // prompt task name
	Prompt string
	Status status.Snapshot
	Errors []string
}

// Adapter turns a Request into reply text for the decoder.
type Adapter interface {
	Resolve(ctx context.Context, req *Request) (string, error)
}

// New returns a Delegate around b, or the Fallback policy when b is nil.
func New(b Backend) Adapter {
	if b == nil {
		return Fallback{}
	}
	return Delegate{Backend: b}
}

// Delegate forwards the encoded prompt to an external Backend. Errors are
// returned unchanged; there are no retries or timeouts at this layer.
type Delegate struct {
	Backend Backend
}

// Resolve implements Adapter. The request kind is attached to ctx for LLM middleware labels.
func (d Delegate) Resolve(ctx context.Context, req *Request) (string, error) {
	return d.Backend.Generate(llm.WithTask(ctx, req.Kind), req.Prompt) //nolint:wrapcheck // identity preserved for callers
}
