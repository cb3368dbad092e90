// Package status holds the coordinator's shared Status Record and the merge
// rule that folds a worker's structured result back into it.
package status

import (
	"slices"

	"handoff/pkg/proto"
)

// MaxTopErrors bounds the retained error list; ErrorCount still reflects the full list.
const MaxTopErrors = 5

// Initial values of a fresh record.
const (
	InitialAction = "INIT"
	InitialAgent  = "SYSTEM"
	InitialResult = "SUCCESS"

	// Unknown fills last_action and last_result when a result omits them.
	Unknown = "UNKNOWN"
)

// Result is a worker's structured output. Recognized keys are listed in the Key* constants;
// anything else is ignored by Merge and kept verbatim in the audit log.
type Result = map[string]any

// Recognized result keys.
const (
	KeyAction           = "action"
	KeyResult           = "result"
	KeyAIState          = "ai_state"
	KeyAIQueueStatus    = "ai_queue_status"
	KeyHandoffRequested = "ai_handoff_requested"
	KeyBuildSuccessRate = "build_success_rate"
	KeyTestSuccessRate  = "test_success_rate"
	KeyErrors           = "errors"
)

// Snapshot is a read-only copy of the record, safe to hand to workers, prompts and audit sinks.
type Snapshot struct {
	LastAction         string            `json:"last_action"`
	LastAgent          string            `json:"last_agent"`
	LastResult         string            `json:"last_result"`
	AIState            proto.AgentState  `json:"ai_state"`
	AIQueueStatus      proto.QueueStatus `json:"ai_queue_status"`
	AIHandoffRequested bool              `json:"ai_handoff_requested"`
	BuildSuccessRate   float64           `json:"build_success_rate"`
	TestSuccessRate    float64           `json:"test_success_rate"`
	ErrorCount         int               `json:"error_count"`
	TopErrors          []string          `json:"top_errors"`
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.TopErrors = slices.Clone(s.TopErrors)
	if out.TopErrors == nil {
		out.TopErrors = []string{}
	}
	return out
}

// Seed overrides initial values at construction. Zero fields keep the defaults.
type Seed struct {
	AIState            proto.AgentState  `yaml:"ai_state"`
	AIQueueStatus      proto.QueueStatus `yaml:"ai_queue_status"`
	AIHandoffRequested bool              `yaml:"handoff_requested"`
	BuildSuccessRate   float64           `yaml:"build_success_rate"`
	TestSuccessRate    float64           `yaml:"test_success_rate"`
	Errors             []string          `yaml:"errors"`
	// ErrorCount is raised to len(Errors) when smaller.
	ErrorCount int `yaml:"error_count"`
}

// Validate checks enum membership and rate bounds.
func (s Seed) Validate() error {
	if s.AIState != "" {
		if _, err := proto.ParseAgentState(string(s.AIState)); err != nil {
			return &ValidationError{Field: KeyAIState, Value: s.AIState, Reason: err.Error()}
		}
	}
	if s.AIQueueStatus != "" {
		if _, err := proto.ParseQueueStatus(string(s.AIQueueStatus)); err != nil {
			return &ValidationError{Field: KeyAIQueueStatus, Value: s.AIQueueStatus, Reason: err.Error()}
		}
	}
	if err := checkRate(KeyBuildSuccessRate, s.BuildSuccessRate); err != nil {
		return err
	}
	if err := checkRate(KeyTestSuccessRate, s.TestSuccessRate); err != nil {
		return err
	}
	if s.ErrorCount < 0 {
		return &ValidationError{Field: "error_count", Value: s.ErrorCount, Reason: "must be >= 0"}
	}
	return nil
}

// Record is the single mutable state of a coordination cycle.
// It is owned by one coordinator and provides no internal locking.
type Record struct {
	s Snapshot
}

// New creates a record with the initial values, overridden by seed.
func New(seed Seed) *Record {
	r := &Record{s: Snapshot{
		LastAction:    InitialAction,
		LastAgent:     InitialAgent,
		LastResult:    InitialResult,
		AIState:       proto.StateReady,
		AIQueueStatus: proto.QueueQueued,
		TopErrors:     []string{},
	}}

	if seed.AIState != "" {
		r.s.AIState = seed.AIState
	}
	if seed.AIQueueStatus != "" {
		r.s.AIQueueStatus = seed.AIQueueStatus
	}
	r.s.AIHandoffRequested = seed.AIHandoffRequested
	r.s.BuildSuccessRate = seed.BuildSuccessRate
	r.s.TestSuccessRate = seed.TestSuccessRate
	r.setErrors(seed.Errors)
	if seed.ErrorCount > r.s.ErrorCount {
		r.s.ErrorCount = seed.ErrorCount
	}
	return r
}

// Snapshot returns a deep copy of the current state.
func (r *Record) Snapshot() Snapshot {
	return r.s.Clone()
}

func (r *Record) setErrors(errs []string) {
	n := min(len(errs), MaxTopErrors)
	r.s.TopErrors = slices.Clone(errs[:n])
	if r.s.TopErrors == nil {
		r.s.TopErrors = []string{}
	}
	r.s.ErrorCount = len(errs)
}
