package proto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAgentState(t *testing.T) {
	for _, s := range AllAgentStates() {
		got, err := ParseAgentState(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	assert.Len(t, AllAgentStates(), 7)

	for _, bad := range []string{"", "ready", "Done", "UNKNOWN", " READY"} {
		_, err := ParseAgentState(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParseQueueStatus(t *testing.T) {
	for _, q := range AllQueueStatuses() {
		got, err := ParseQueueStatus(string(q))
		require.NoError(t, err)
		assert.Equal(t, q, got)
	}
	assert.Len(t, AllQueueStatuses(), 9)

	for _, bad := range []string{"", "queued", "PENDING", "DONE"} {
		_, err := ParseQueueStatus(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := map[AgentState]bool{StateDone: true, StateFailed: true}
	for _, s := range AllAgentStates() {
		assert.Equal(t, terminal[s], s.IsTerminal(), "state %s", s)
	}
}

func TestEnumJSON(t *testing.T) {
	type wrapper struct {
		State AgentState  `json:"ai_state"`
		Queue QueueStatus `json:"ai_queue_status"`
	}

	data, err := json.Marshal(wrapper{State: StateBlocked, Queue: QueueReviewPending})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ai_state":"BLOCKED","ai_queue_status":"REVIEW_PENDING"}`, string(data))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"ai_state":"PAUSED","ai_queue_status":"ABANDONED"}`), &w))
	assert.Equal(t, StatePaused, w.State)
	assert.Equal(t, QueueAbandoned, w.Queue)

	assert.Error(t, json.Unmarshal([]byte(`{"ai_state":"SLEEPING"}`), &w))
	assert.Error(t, json.Unmarshal([]byte(`{"ai_queue_status":"queued"}`), &w))

	_, err = json.Marshal(wrapper{State: "bogus", Queue: QueueQueued})
	assert.Error(t, err)
}

func TestParseTriageAction(t *testing.T) {
	for _, a := range []TriageAction{TriageRouteReasoner, TriageRouteTester, TriageRouteFinalizer, TriageManualReview} {
		got, err := ParseTriageAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	_, err := ParseTriageAction("ROUTE_BUILDER")
	assert.Error(t, err)
}

func TestRoutingDecisionIsNone(t *testing.T) {
	assert.True(t, RoutingDecision{NextAgent: NoAgent}.IsNone())
	assert.False(t, RoutingDecision{NextAgent: AgentReasoning}.IsNone())
	assert.False(t, RoutingDecision{NextAgent: "none"}.IsNone())
}
