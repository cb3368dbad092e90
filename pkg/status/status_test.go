package status

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handoff/pkg/proto"
)

func TestNewDefaults(t *testing.T) {
	s := New(Seed{}).Snapshot()

	assert.Equal(t, "INIT", s.LastAction)
	assert.Equal(t, "SYSTEM", s.LastAgent)
	assert.Equal(t, "SUCCESS", s.LastResult)
	assert.Equal(t, proto.StateReady, s.AIState)
	assert.Equal(t, proto.QueueQueued, s.AIQueueStatus)
	assert.False(t, s.AIHandoffRequested)
	assert.Zero(t, s.BuildSuccessRate)
	assert.Zero(t, s.TestSuccessRate)
	assert.Zero(t, s.ErrorCount)
	assert.NotNil(t, s.TopErrors)
	assert.Empty(t, s.TopErrors)
}

func TestNewSeed(t *testing.T) {
	s := New(Seed{
		AIState:            proto.StateProcessing,
		AIHandoffRequested: true,
		BuildSuccessRate:   0.98,
		TestSuccessRate:    0.95,
		Errors:             []string{"a", "b", "c", "d", "e", "f", "g"},
	}).Snapshot()

	assert.Equal(t, proto.StateProcessing, s.AIState)
	assert.Equal(t, proto.QueueQueued, s.AIQueueStatus)
	assert.True(t, s.AIHandoffRequested)
	assert.Equal(t, 0.98, s.BuildSuccessRate)
	assert.Equal(t, 0.95, s.TestSuccessRate)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, s.TopErrors)
	assert.Equal(t, 7, s.ErrorCount)

	s = New(Seed{Errors: []string{"only"}, ErrorCount: 4}).Snapshot()
	assert.Equal(t, 4, s.ErrorCount)
	assert.Equal(t, []string{"only"}, s.TopErrors)
}

func TestSeedValidate(t *testing.T) {
	assert.NoError(t, Seed{}.Validate())
	assert.NoError(t, Seed{AIState: proto.StateBlocked, BuildSuccessRate: 1}.Validate())

	for name, seed := range map[string]Seed{
		"state":      {AIState: "SLEEPING"},
		"queue":      {AIQueueStatus: "later"},
		"build rate": {BuildSuccessRate: 1.5},
		"test rate":  {TestSuccessRate: -0.1},
		"count":      {ErrorCount: -1},
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, seed.Validate(), ErrValidation)
		})
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	r := New(Seed{Errors: []string{"x"}})
	s := r.Snapshot()
	s.TopErrors[0] = "mutated"
	s.AIState = proto.StateFailed

	again := r.Snapshot()
	assert.Equal(t, "x", again.TopErrors[0])
	assert.Equal(t, proto.StateReady, again.AIState)
}

func TestSnapshotJSON(t *testing.T) {
	data, err := json.Marshal(New(Seed{}).Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"last_action": "INIT",
		"last_agent": "SYSTEM",
		"last_result": "SUCCESS",
		"ai_state": "READY",
		"ai_queue_status": "QUEUED",
		"ai_handoff_requested": false,
		"build_success_rate": 0,
		"test_success_rate": 0,
		"error_count": 0,
		"top_errors": []
	}`, string(data))
}
