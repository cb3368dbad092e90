// Package prompt builds the three constrained JSON requests the coordinator sends
// to its decision backend. The top-level keys and task names are a wire contract.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"handoff/pkg/proto"
	"handoff/pkg/status"
)

// Task names.
const (
	TaskStateRouting  = "state_routing"
	TaskFixTriage     = "fix_triage"
	TaskFinalDecision = "final_decision"
)

// Commit thresholds advertised in the final-decision prompt and applied by the fallback policy.
const (
	ThresholdBuild = 0.95
	ThresholdTest  = 0.90
)

const (
	MaxTopErrors = status.MaxTopErrors
	// MaxRationaleChars is advisory; the decoder does not enforce it.
	MaxRationaleChars = 200
)

// Prompt is one constrained request. Input holds a RoutingInput, TriageInput or FinalInput.
type Prompt struct {
	Task         string            `json:"task"`
	Instruction  string            `json:"instruction"`
	Input        any               `json:"input"`
	OutputFormat map[string]string `json:"output_format"`
	Constraints  []string          `json:"constraints"`
}

type RoutingInput struct {
	LastAction         string            `json:"last_action"`
	LastAgent          string            `json:"last_agent"`
	LastResult         string            `json:"last_result"`
	AIState            proto.AgentState  `json:"ai_state"`
	AIQueueStatus      proto.QueueStatus `json:"ai_queue_status"`
	AIHandoffRequested bool              `json:"ai_handoff_requested"`
	AvailableAgents    []string          `json:"available_agents"`
}

type TriageInput struct {
	Errors     []string `json:"errors"`
	ErrorCount int      `json:"error_count"`
}

type FinalInput struct {
	BuildSuccessRate float64 `json:"build_success_rate"`
	TestSuccessRate  float64 `json:"test_success_rate"`
	ThresholdBuild   float64 `json:"threshold_build"`
	ThresholdTest    float64 `json:"threshold_test"`
}

const constraintValidJSON = "Response must be valid JSON"

// Routing asks for the next worker given the state and the registered worker names.
func Routing(st status.Snapshot, availableAgents []string) Prompt {
	agents := slices.Clone(availableAgents)
	if agents == nil {
		agents = []string{}
	}
	return Prompt{
		Task:        TaskStateRouting,
		Instruction: "Determine the next agent to execute based on current state. Respond ONLY with valid JSON.",
		Input: RoutingInput{
			LastAction:         st.LastAction,
			LastAgent:          st.LastAgent,
			LastResult:         st.LastResult,
			AIState:            st.AIState,
			AIQueueStatus:      st.AIQueueStatus,
			AIHandoffRequested: st.AIHandoffRequested,
			AvailableAgents:    agents,
		},
		OutputFormat: map[string]string{
			"next_agent": fmt.Sprintf("string (one of available_agents or '%s')", proto.NoAgent),
			"rationale":  "string (brief explanation)",
		},
		Constraints: []string{
			constraintValidJSON,
			fmt.Sprintf("next_agent must be from available_agents or '%s'", proto.NoAgent),
			fmt.Sprintf("rationale must be under %d characters", MaxRationaleChars),
		},
	}
}

// Triage asks how to route a list of errors. Only the first MaxTopErrors are sent;
// error_count carries the full length.
func Triage(errs []string) Prompt {
	n := min(len(errs), MaxTopErrors)
	top := slices.Clone(errs[:n])
	if top == nil {
		top = []string{}
	}
	actions := triageActionList()
	return Prompt{
		Task:        TaskFixTriage,
		Instruction: "Analyze errors and determine routing action. Respond ONLY with valid JSON.",
		Input: TriageInput{
			Errors:     top,
			ErrorCount: len(errs),
		},
		OutputFormat: map[string]string{
			"action":        fmt.Sprintf("string (%s)", actions),
			"context_focus": "string (area needing attention)",
		},
		Constraints: []string{
			constraintValidJSON,
			fmt.Sprintf("action must be one of: %s", strings.ReplaceAll(actions, ", or ", ", ")),
			"context_focus must identify specific code area or phase",
		},
	}
}

// Final asks whether the work is ready to commit.
func Final(buildSuccessRate, testSuccessRate float64) Prompt {
	return Prompt{
		Task:        TaskFinalDecision,
		Instruction: "Determine if work is ready to commit. Respond ONLY with valid JSON.",
		Input: FinalInput{
			BuildSuccessRate: buildSuccessRate,
			TestSuccessRate:  testSuccessRate,
			ThresholdBuild:   ThresholdBuild,
			ThresholdTest:    ThresholdTest,
		},
		OutputFormat: map[string]string{
			"commit_required": "boolean",
			"next_agent":      "string (agent to handle next step)",
			"rationale":       "string (brief explanation)",
		},
		Constraints: []string{
			constraintValidJSON,
			"commit_required based on thresholds",
			fmt.Sprintf("If commit_required is true, next_agent should be '%s'", proto.AgentFinalizer),
			"If commit_required is false, next_agent should suggest remediation",
		},
	}
}

func triageActionList() string {
	return fmt.Sprintf("%s, %s, %s, or %s",
		proto.TriageRouteReasoner, proto.TriageRouteTester, proto.TriageRouteFinalizer, proto.TriageManualReview)
}

// Encode renders the prompt as indented JSON text.
func (p Prompt) Encode() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", fmt.Errorf("failed to encode %s prompt: %w", p.Task, err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

