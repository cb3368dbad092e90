package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"handoff/pkg/prompt"
	"handoff/pkg/proto"
	"handoff/pkg/status"
)

// Fallback is the deterministic policy used when no Backend is configured.
// It emits the same JSON a model would, so its replies go through the normal decoder.
type Fallback struct{}

// Rationale strings produced by the fallback policy.
const (
	RationaleMultipleErrors = "Multiple errors detected"
	RationaleSingleError    = "Single error needs fixing"
	RationaleNoErrors       = "No errors, proceed to testing"
	RationaleCommitReady    = "Build and test success rates meet thresholds"
	RationaleBelowThreshold = "Success rates below threshold, need fixes"

	// triageManyErrors is the count above which triage reports "multiple" errors.
	triageManyErrors = 3
)

// Resolve implements Adapter.
func (Fallback) Resolve(_ context.Context, req *Request) (string, error) {
	var v any
	switch req.Kind {
	case prompt.TaskStateRouting:
		v = FallbackRouting(req.Status)
	case prompt.TaskFixTriage:
		v = FallbackTriage(req.Errors)
	case prompt.TaskFinalDecision:
		v = FallbackFinal(req.Status.BuildSuccessRate, req.Status.TestSuccessRate)
	default:
		return "", fmt.Errorf("fallback: unknown request kind %q", req.Kind)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fallback: encode %s reply: %w", req.Kind, err)
	}
	return string(out), nil
}

// FallbackRouting sends work to the reasoning worker whenever a handoff was
// requested, the record is READY, or errors are outstanding; otherwise to the finalizer.
func FallbackRouting(st status.Snapshot) proto.RoutingDecision {
	next := proto.AgentFinalizer
	if st.AIHandoffRequested || st.AIState == proto.StateReady || st.ErrorCount > 0 {
		next = proto.AgentReasoning
	}
	return proto.RoutingDecision{
		NextAgent: next,
		Rationale: fmt.Sprintf("Selected %s based on current state", next),
	}
}

// FallbackTriage routes any error to the reasoner and an empty list to the tester.
func FallbackTriage(errs []string) proto.TriageDecision {
	switch {
	case len(errs) > triageManyErrors:
		return proto.TriageDecision{Action: proto.TriageRouteReasoner, ContextFocus: RationaleMultipleErrors}
	case len(errs) > 0:
		return proto.TriageDecision{Action: proto.TriageRouteReasoner, ContextFocus: RationaleSingleError}
	default:
		return proto.TriageDecision{Action: proto.TriageRouteTester, ContextFocus: RationaleNoErrors}
	}
}

// FallbackFinal requires both rates to meet their thresholds before committing.
func FallbackFinal(buildSuccessRate, testSuccessRate float64) proto.FinalDecision {
	if buildSuccessRate >= prompt.ThresholdBuild && testSuccessRate >= prompt.ThresholdTest {
		return proto.FinalDecision{
			CommitRequired: true,
			NextAgent:      proto.AgentFinalizer,
			Rationale:      RationaleCommitReady,
		}
	}
	return proto.FinalDecision{
		CommitRequired: false,
		NextAgent:      proto.AgentReasoning,
		Rationale:      RationaleBelowThreshold,
	}
}
