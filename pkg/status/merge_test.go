package status

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handoff/pkg/proto"
)

func TestMergeFullResult(t *testing.T) {
	r := New(Seed{})
	err := r.Merge(Result{
		"action":               "RUN_TESTS",
		"result":               "PARTIAL",
		"ai_state":             "PROCESSING",
		"ai_queue_status":      "IN_PROGRESS",
		"ai_handoff_requested": true,
		"build_success_rate":   1.0,
		"test_success_rate":    0.9,
		"errors":               []string{"e1"},
		"test_results":         map[string]any{"total": 10},
	}, "TesterAgent")
	require.NoError(t, err)

	s := r.Snapshot()
	assert.Equal(t, "RUN_TESTS", s.LastAction)
	assert.Equal(t, "TesterAgent", s.LastAgent)
	assert.Equal(t, "PARTIAL", s.LastResult)
	assert.Equal(t, proto.StateProcessing, s.AIState)
	assert.Equal(t, proto.QueueInProgress, s.AIQueueStatus)
	assert.True(t, s.AIHandoffRequested)
	assert.Equal(t, 1.0, s.BuildSuccessRate)
	assert.Equal(t, 0.9, s.TestSuccessRate)
	assert.Equal(t, []string{"e1"}, s.TopErrors)
	assert.Equal(t, 1, s.ErrorCount)
}

func TestMergeDefaultsAndPartialUpdate(t *testing.T) {
	r := New(Seed{BuildSuccessRate: 0.5, AIHandoffRequested: true, Errors: []string{"keep"}})
	require.NoError(t, r.Merge(Result{}, "BuilderAgent"))

	s := r.Snapshot()
	assert.Equal(t, Unknown, s.LastAction)
	assert.Equal(t, Unknown, s.LastResult)
	assert.Equal(t, "BuilderAgent", s.LastAgent)
	assert.Equal(t, proto.StateReady, s.AIState)
	assert.Equal(t, proto.QueueQueued, s.AIQueueStatus)
	assert.True(t, s.AIHandoffRequested)
	assert.Equal(t, 0.5, s.BuildSuccessRate)
	assert.Equal(t, []string{"keep"}, s.TopErrors)
	assert.Equal(t, 1, s.ErrorCount)
}

func TestMergeErrorTruncation(t *testing.T) {
	for _, n := range []int{0, 1, 4, 5, 6, 12} {
		t.Run(fmt.Sprintf("len=%d", n), func(t *testing.T) {
			errs := make([]any, n)
			for i := range errs {
				errs[i] = fmt.Sprintf("error %d", i)
			}

			r := New(Seed{Errors: []string{"stale"}})
			require.NoError(t, r.Merge(Result{"errors": errs}, "w"))

			s := r.Snapshot()
			assert.Len(t, s.TopErrors, min(n, MaxTopErrors))
			assert.Equal(t, n, s.ErrorCount)
			for i, e := range s.TopErrors {
				assert.Equal(t, errs[i], e)
			}
		})
	}
}

func TestMergeNumericKinds(t *testing.T) {
	r := New(Seed{})
	require.NoError(t, r.Merge(Result{"build_success_rate": 1, "test_success_rate": float32(0.5)}, "w"))
	s := r.Snapshot()
	assert.Equal(t, 1.0, s.BuildSuccessRate)
	assert.Equal(t, 0.5, s.TestSuccessRate)

	require.NoError(t, r.Merge(Result{"build_success_rate": json.Number("0.25")}, "w"))
	assert.Equal(t, 0.25, r.Snapshot().BuildSuccessRate)

	require.NoError(t, r.Merge(Result{"ai_state": proto.StateBlocked, "ai_queue_status": proto.QueueRejected}, "w"))
	assert.Equal(t, proto.StateBlocked, r.Snapshot().AIState)
	assert.Equal(t, proto.QueueRejected, r.Snapshot().AIQueueStatus)
}

func TestMergeValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		field  string
	}{
		{"unknown state", Result{"ai_state": "SLEEPING"}, KeyAIState},
		{"lowercase state", Result{"ai_state": "done"}, KeyAIState},
		{"state not string", Result{"ai_state": 3}, KeyAIState},
		{"unknown queue", Result{"ai_queue_status": "WAITING"}, KeyAIQueueStatus},
		{"handoff not bool", Result{"ai_handoff_requested": "yes"}, KeyHandoffRequested},
		{"rate not numeric", Result{"build_success_rate": "0.9"}, KeyBuildSuccessRate},
		{"rate above one", Result{"test_success_rate": 1.01}, KeyTestSuccessRate},
		{"errors not sequence", Result{"errors": "boom"}, KeyErrors},
		{"errors element", Result{"errors": []any{"ok", 7}}, KeyErrors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(Seed{}).Merge(tt.result, "w")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestMergeIsNotTransactional(t *testing.T) {
	r := New(Seed{})
	err := r.Merge(Result{
		"action":          "REASON_AND_FIX",
		"result":          "SUCCESS",
		"ai_state":        "PROCESSING",
		"ai_queue_status": "NOT_A_STATUS",
		"errors":          []string{"never applied"},
	}, "ReasoningAgent")
	require.ErrorIs(t, err, ErrValidation)

	s := r.Snapshot()
	assert.Equal(t, "REASON_AND_FIX", s.LastAction)
	assert.Equal(t, "ReasoningAgent", s.LastAgent)
	assert.Equal(t, proto.StateProcessing, s.AIState)
	assert.Equal(t, proto.QueueQueued, s.AIQueueStatus)
	assert.Empty(t, s.TopErrors)
	assert.Zero(t, s.ErrorCount)
}
