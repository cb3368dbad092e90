package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handoff/pkg/agent/llm"
	"handoff/pkg/agent/llmerrors"
	"handoff/pkg/prompt"
)

func TestDelegateForwardsPromptAndTask(t *testing.T) {
	var gotPrompt, gotTask string
	adapter := New(BackendFunc(func(ctx context.Context, p string) (string, error) {
		gotPrompt = p
		gotTask = llm.TaskFrom(ctx)
		return `{"next_agent": "NONE", "rationale": "idle"}`, nil
	}))
	require.IsType(t, Delegate{}, adapter)

	text, err := adapter.Resolve(context.Background(), &Request{Kind: prompt.TaskStateRouting, Prompt: "{\"task\": 1}"})
	require.NoError(t, err)
	assert.Equal(t, `{"next_agent": "NONE", "rationale": "idle"}`, text)
	assert.Equal(t, "{\"task\": 1}", gotPrompt)
	assert.Equal(t, prompt.TaskStateRouting, gotTask)
}

func TestDelegatePreservesErrorIdentity(t *testing.T) {
	sentinel := errors.New("backend down")
	adapter := New(BackendFunc(func(context.Context, string) (string, error) {
		return "", sentinel
	}))

	_, err := adapter.Resolve(context.Background(), &Request{Kind: prompt.TaskFixTriage})
	assert.Same(t, sentinel, err)
}

func TestScripted(t *testing.T) {
	s := NewScripted("a", "b")
	ctx := context.Background()

	got, err := s.Generate(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "a", got)
	got, err = s.Generate(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "b", got)
	assert.Zero(t, s.Remaining())

	_, err = s.Generate(ctx, "p3")
	assert.ErrorIs(t, err, ErrScriptExhausted)
	assert.Equal(t, []string{"p1", "p2", "p3"}, s.Prompts())
}

func TestScriptedCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewScripted("a").Generate(ctx, "p")
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeClient struct {
	reply string
	err   error
	req   llm.CompletionRequest
}

func (f *fakeClient) Complete(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	f.req = req
	if f.err != nil {
		return llm.CompletionResponse{}, f.err
	}
	return llm.CompletionResponse{Content: f.reply, StopReason: "stop"}, nil
}

func (f *fakeClient) GetModelName() string { return "fake-small" }

func TestLLMGenerate(t *testing.T) {
	client := &fakeClient{reply: "```json\n{\"next_agent\": \"TesterAgent\", \"rationale\": \"r\"}\n```"}
	b := NewLLM(client)

	got, err := b.Generate(context.Background(), "PROMPT")
	require.NoError(t, err)
	assert.Equal(t, `{"next_agent": "TesterAgent", "rationale": "r"}`, got)
	assert.Equal(t, "fake-small", b.Model())

	require.Len(t, client.req.Messages, 2)
	assert.Equal(t, llm.RoleSystem, client.req.Messages[0].Role)
	assert.Equal(t, "PROMPT", client.req.Messages[1].Content)
	assert.InDelta(t, llm.TemperatureDeterministic, client.req.Temperature, 0)
	assert.Equal(t, llm.DecisionMaxTokens, client.req.MaxTokens)
}

func TestLLMGenerateErrors(t *testing.T) {
	cause := llmerrors.NewError(llmerrors.ErrorTypeAuth, "bad key")
	_, err := NewLLM(&fakeClient{err: cause}).Generate(context.Background(), "p")
	assert.ErrorIs(t, err, cause)

	_, err = NewLLM(&fakeClient{reply: "  \n "}).Generate(context.Background(), "p")
	assert.True(t, llmerrors.Is(err, llmerrors.ErrorTypeEmptyResponse))
}

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		`{"a": 1}`:                 `{"a": 1}`,
		"  {\"a\": 1}\n":           `{"a": 1}`,
		"```\n{\"a\": 1}\n```":     `{"a": 1}`,
		"```json\n{\"a\": 1}\n```": `{"a": 1}`,
		"```{\"a\": 1}```":         `{"a": 1}`,
	}
	for in, want := range tests {
		assert.Equal(t, want, StripCodeFence(in), "input %q", in)
	}
}
