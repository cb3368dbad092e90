package backend

import (
	"context"
	"fmt"
	"strings"

	"handoff/pkg/agent/llm"
	"handoff/pkg/agent/llmerrors"
)

// SystemInstruction pins a chat model to the constrained-JSON contract.
const SystemInstruction = "You are a coordination controller for autonomous software agents. " +
	"Read the JSON request, follow its instruction and constraints, and reply with a single JSON object " +
	"matching output_format. Do not add prose or Markdown."

// LLM is a Backend that asks a chat model. Middleware such as retry, timeout and
// metrics is expected to be composed into client by the caller with llm.Chain.
type LLM struct {
	client llm.LLMClient
}

// NewLLM wraps client as a decision Backend.
func NewLLM(client llm.LLMClient) *LLM {
	return &LLM{client: client}
}

// Model returns the underlying model name.
func (b *LLM) Model() string {
	return b.client.GetModelName()
}

// Generate implements Backend.
func (b *LLM) Generate(ctx context.Context, prompt string) (string, error) {
	req := llm.CompletionRequest{
		Messages: []llm.CompletionMessage{
			llm.NewSystemMessage(SystemInstruction),
			llm.NewUserMessage(prompt),
		},
		MaxTokens:   llm.DecisionMaxTokens,
		Temperature: llm.TemperatureDeterministic,
	}

	resp, err := b.client.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", b.client.GetModelName(), err)
	}

	text := StripCodeFence(resp.Content)
	if text == "" {
		return "", llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse,
			fmt.Sprintf("%s returned an empty reply (stop reason %q)", b.client.GetModelName(), resp.StopReason))
	}
	return text, nil
}

// StripCodeFence removes a surrounding Markdown code fence such as ```json ... ```.
// Text without a fence is returned trimmed.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	nl := strings.IndexByte(text, '\n')
	if nl < 0 {
		return strings.TrimSpace(strings.Trim(text, "`"))
	}
	body := text[nl+1:]
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}
