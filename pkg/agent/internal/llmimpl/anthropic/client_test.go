package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handoff/pkg/agent/llm"
	"handoff/pkg/agent/llmerrors"
)

func newTestServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func request() llm.CompletionRequest {
	req := llm.NewCompletionRequest([]llm.CompletionMessage{
		llm.NewSystemMessage("json only"),
		llm.NewUserMessage(`{"task":"state_routing"}`),
	})
	req.Temperature = llm.TemperatureDeterministic
	return req
}

func TestComplete(t *testing.T) {
	var seen map[string]any
	srv := newTestServer(t, http.StatusOK, `{
		"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-test",
		"content": [{"type": "text", "text": "{\"next_agent\":\"NONE\",\"rationale\":\"r\"}"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 10, "output_tokens": 5}
	}`, &seen)

	client := NewClaudeClientWithModel("test-key", "claude-test", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	resp, err := client.Complete(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, `{"next_agent":"NONE","rationale":"r"}`, resp.Content)
	assert.Equal(t, "end_turn", resp.StopReason)

	assert.Equal(t, "claude-test", seen["model"])
	system := seen["system"].([]any)
	require.Len(t, system, 1)
	assert.Equal(t, "json only", system[0].(map[string]any)["text"])
	assert.Len(t, seen["messages"].([]any), 1)
}

func TestCompleteAuthError(t *testing.T) {
	srv := newTestServer(t, http.StatusUnauthorized,
		`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, nil)

	client := NewClaudeClientWithModel("bad", "claude-test", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	_, err := client.Complete(context.Background(), request())
	require.Error(t, err)
	assert.True(t, llmerrors.Is(err, llmerrors.ErrorTypeAuth))
}

func TestCompleteEmptyContent(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{
		"id": "msg_2", "type": "message", "role": "assistant", "model": "claude-test",
		"content": [], "stop_reason": "max_tokens",
		"usage": {"input_tokens": 1, "output_tokens": 0}
	}`, nil)

	client := NewClaudeClientWithModel("k", "claude-test", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	_, err := client.Complete(context.Background(), request())
	assert.True(t, llmerrors.Is(err, llmerrors.ErrorTypeEmptyResponse))
}

func TestCompleteRejectsSystemOnly(t *testing.T) {
	client := NewClaudeClientWithModel("k", "", option.WithMaxRetries(0))
	assert.Equal(t, DefaultModel, client.GetModelName())

	_, err := client.Complete(context.Background(), llm.NewCompletionRequest([]llm.CompletionMessage{llm.NewSystemMessage("x")}))
	assert.True(t, llmerrors.Is(err, llmerrors.ErrorTypeBadPrompt))
}
