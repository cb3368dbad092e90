package prompt

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handoff/pkg/proto"
	"handoff/pkg/status"
)

// decodeObject encodes p and parses it back as a generic JSON object.
func decodeObject(t *testing.T, p Prompt) map[string]any {
	t.Helper()
	text, err := p.Encode()
	require.NoError(t, err)

	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &obj))
	return obj
}

func assertTopLevelKeys(t *testing.T, obj map[string]any) {
	t.Helper()
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"task", "instruction", "input", "output_format", "constraints"}, keys)
}

func TestRoutingPrompt(t *testing.T) {
	st := status.New(status.Seed{AIHandoffRequested: true, Errors: []string{"boom"}}).Snapshot()
	agents := []string{"ReasoningAgent", "FinalizerAgent"}

	obj := decodeObject(t, Routing(st, agents))
	assertTopLevelKeys(t, obj)
	assert.Equal(t, "state_routing", obj["task"])

	input := obj["input"].(map[string]any)
	assert.Equal(t, map[string]any{
		"last_action":          "INIT",
		"last_agent":           "SYSTEM",
		"last_result":          "SUCCESS",
		"ai_state":             "READY",
		"ai_queue_status":      "QUEUED",
		"ai_handoff_requested": true,
		"available_agents":     []any{"ReasoningAgent", "FinalizerAgent"},
	}, input)

	format := obj["output_format"].(map[string]any)
	assert.Contains(t, format, "next_agent")
	assert.Contains(t, format, "rationale")
	assert.Contains(t, obj["constraints"], "next_agent must be from available_agents or 'NONE'")
	assert.Contains(t, obj["constraints"], "rationale must be under 200 characters")
}

func TestRoutingPromptSnapshotsAgents(t *testing.T) {
	agents := []string{"A"}
	p := Routing(status.Snapshot{AIState: proto.StateReady, AIQueueStatus: proto.QueueQueued}, agents)
	agents[0] = "B"
	assert.Equal(t, []string{"A"}, p.Input.(RoutingInput).AvailableAgents)

	obj := decodeObject(t, Routing(status.New(status.Seed{}).Snapshot(), nil))
	assert.Equal(t, []any{}, obj["input"].(map[string]any)["available_agents"])
}

func TestTriagePromptTruncates(t *testing.T) {
	for _, n := range []int{0, 1, 3, 5, 6, 20} {
		t.Run(fmt.Sprintf("len=%d", n), func(t *testing.T) {
			errs := make([]string, n)
			for i := range errs {
				errs[i] = fmt.Sprintf("E%d", i)
			}

			obj := decodeObject(t, Triage(errs))
			assertTopLevelKeys(t, obj)
			assert.Equal(t, "fix_triage", obj["task"])

			input := obj["input"].(map[string]any)
			got := input["errors"].([]any)
			assert.Len(t, got, min(n, 5))
			assert.EqualValues(t, n, input["error_count"])
			for i, e := range got {
				assert.Equal(t, errs[i], e)
			}
		})
	}
}

func TestTriagePromptDoesNotMutateInput(t *testing.T) {
	errs := []string{"a", "b", "c", "d", "e", "f"}
	p := Triage(errs)
	p.Input.(TriageInput).Errors[0] = "changed"
	assert.Equal(t, "a", errs[0])
}

func TestTriagePromptActions(t *testing.T) {
	obj := decodeObject(t, Triage(nil))
	assert.Contains(t, obj["constraints"],
		"action must be one of: ROUTE_REASONER, ROUTE_TESTER, ROUTE_FINALIZER, MANUAL_REVIEW")
	assert.Equal(t, "string (ROUTE_REASONER, ROUTE_TESTER, ROUTE_FINALIZER, or MANUAL_REVIEW)",
		obj["output_format"].(map[string]any)["action"])
}

func TestFinalPrompt(t *testing.T) {
	obj := decodeObject(t, Final(0.98, 0.95))
	assertTopLevelKeys(t, obj)
	assert.Equal(t, "final_decision", obj["task"])
	assert.Equal(t, map[string]any{
		"build_success_rate": 0.98,
		"test_success_rate":  0.95,
		"threshold_build":    0.95,
		"threshold_test":     0.9,
	}, obj["input"])

	format := obj["output_format"].(map[string]any)
	assert.Equal(t, "boolean", format["commit_required"])
	assert.Contains(t, format, "next_agent")
	assert.Contains(t, format, "rationale")
}

func TestEncodeIndented(t *testing.T) {
	text, err := Final(0.5, 0.5).Encode()
	require.NoError(t, err)
	assert.Contains(t, text, "\n  \"task\": \"final_decision\"")
	assert.Contains(t, text, "'FinalizerAgent'")
}

func TestEncodeRejectsInvalidState(t *testing.T) {
	_, err := Routing(status.Snapshot{AIState: "bogus", AIQueueStatus: proto.QueueQueued}, nil).Encode()
	assert.Error(t, err)
}
