package openaiofficial

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handoff/pkg/agent/llm"
	"handoff/pkg/agent/llmerrors"
)

func TestFlattenMessages(t *testing.T) {
	got := flattenMessages([]llm.CompletionMessage{
		llm.NewSystemMessage("rules"),
		{Role: llm.RoleAssistant, Content: "earlier"},
		llm.NewUserMessage("question"),
	})
	assert.Equal(t, "System: rules\n\nAssistant: earlier\n\nquestion", got)
}

func TestComplete(t *testing.T) {
	var seen map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &seen)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "resp_1", "object": "response", "created_at": 0, "status": "completed", "model": "gpt-test",
			"output": [{
				"type": "message", "id": "msg_1", "status": "completed", "role": "assistant",
				"content": [{"type": "output_text", "text": "{\"action\":\"ROUTE_TESTER\",\"context_focus\":\"tests\"}", "annotations": []}]
			}]
		}`)
	}))
	defer srv.Close()

	client := NewOfficialClientWithModel("k", "gpt-test", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	resp, err := client.Complete(context.Background(), llm.NewCompletionRequest([]llm.CompletionMessage{
		llm.NewSystemMessage("json only"),
		llm.NewUserMessage("triage"),
	}))
	require.NoError(t, err)
	assert.Equal(t, `{"action":"ROUTE_TESTER","context_focus":"tests"}`, resp.Content)
	assert.Equal(t, "completed", resp.StopReason)
	assert.Equal(t, "gpt-test", seen["model"])
	assert.Equal(t, "System: json only\n\ntriage", seen["input"])
}

func TestCompleteRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"slow down","type":"rate_limit"}}`)
	}))
	defer srv.Close()

	client := NewOfficialClientWithModel("k", "", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	assert.Equal(t, DefaultModel, client.GetModelName())

	_, err := client.Complete(context.Background(), llm.NewCompletionRequest([]llm.CompletionMessage{llm.NewUserMessage("x")}))
	require.Error(t, err)
	assert.True(t, llmerrors.Is(err, llmerrors.ErrorTypeRateLimit))
}
