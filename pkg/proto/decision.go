package proto

import "fmt"

// NoAgent is the routing sentinel meaning "dispatch nothing".
const NoAgent = "NONE"

// Well-known worker names. The deterministic fallback policy routes by these literals.
const (
	AgentReasoning = "ReasoningAgent"
	AgentTester    = "TesterAgent"
	AgentBuilder   = "BuilderAgent"
	AgentFinalizer = "FinalizerAgent"
)

// TriageAction is the closed set of triage outcomes.
type TriageAction string

const (
	TriageRouteReasoner  TriageAction = "ROUTE_REASONER"
	TriageRouteTester    TriageAction = "ROUTE_TESTER"
	TriageRouteFinalizer TriageAction = "ROUTE_FINALIZER"
	TriageManualReview   TriageAction = "MANUAL_REVIEW"
)

// ParseTriageAction validates and converts a string to TriageAction.
func ParseTriageAction(s string) (TriageAction, error) {
	switch TriageAction(s) {
	case TriageRouteReasoner, TriageRouteTester, TriageRouteFinalizer, TriageManualReview:
		return TriageAction(s), nil
	default:
		return "", fmt.Errorf("invalid triage action: %q. Valid: ROUTE_REASONER, ROUTE_TESTER, ROUTE_FINALIZER, MANUAL_REVIEW", s)
	}
}

// String returns the string representation of TriageAction.
func (a TriageAction) String() string {
	return string(a)
}

// RoutingDecision names the next worker to dispatch, or NoAgent.
type RoutingDecision struct {
	NextAgent string `json:"next_agent"`
	Rationale string `json:"rationale"`
}

// IsNone reports whether the decision is the explicit stop sentinel.
func (d RoutingDecision) IsNone() bool {
	return d.NextAgent == NoAgent
}

type TriageDecision struct {
	Action       TriageAction `json:"action"`
	ContextFocus string       `json:"context_focus"`
}

type FinalDecision struct {
	CommitRequired bool   `json:"commit_required"`
	NextAgent      string `json:"next_agent"`
	Rationale      string `json:"rationale"`
}
