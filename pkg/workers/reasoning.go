package workers

import (
	"context"
	"strings"

	"handoff/pkg/proto"
	"handoff/pkg/status"
)

// Fix types proposed by the reasoning worker.
const (
	FixSyntaxCorrection = "SYNTAX_CORRECTION"
	FixAddImport        = "ADD_IMPORT"
	FixDefineVariable   = "DEFINE_VARIABLE"
	FixManualReview     = "MANUAL_REVIEW"
)

// FixRecommendation is a structured fix for one error.
type FixRecommendation struct {
	FixType      string  `json:"fix_type"`
	TargetFile   string  `json:"target_file"`
	LineNumber   int     `json:"line_number"`
	ErrorType    string  `json:"error_type"`
	SuggestedFix string  `json:"suggested_fix,omitempty"`
	NewCode      string  `json:"new_code,omitempty"`
	Confidence   float64 `json:"confidence"`
	ErrorMessage string  `json:"error_message,omitempty"`
}

// Reasoning analyzes the first outstanding error and proposes a fix.
// With no errors left it declares the cycle done.
type Reasoning struct {
	// TargetFile is reported in recommendations; "unknown.py" when empty.
	TargetFile string
}

// Execute implements registry.Worker.
func (r *Reasoning) Execute(_ context.Context, st status.Snapshot) (status.Result, error) {
	if len(st.TopErrors) == 0 {
		return status.Result{
			status.KeyAction:           "ANALYZE",
			status.KeyResult:           ResultSuccess,
			status.KeyAIState:          string(proto.StateDone),
			status.KeyAIQueueStatus:    string(proto.QueueCompleted),
			status.KeyHandoffRequested: false,
			"analysis":                 "No errors found, system is healthy",
		}, nil
	}

	fix := r.recommend(st.TopErrors[0])

	// The last error hands off for review; otherwise keep working.
	state, queue, handoff := proto.StateProcessing, proto.QueueInProgress, false
	if len(st.TopErrors) <= 1 {
		state, queue, handoff = proto.StateReady, proto.QueueReviewPending, true
	}

	return status.Result{
		status.KeyAction:           "REASON_AND_FIX",
		status.KeyResult:           ResultSuccess,
		status.KeyAIState:          string(state),
		status.KeyAIQueueStatus:    string(queue),
		status.KeyHandoffRequested: handoff,
		"fix_recommendation":       fix,
		"errors_remaining":         len(st.TopErrors) - 1,
	}, nil
}

func (r *Reasoning) recommend(msg string) FixRecommendation {
	target := r.TargetFile
	if target == "" {
		target = "unknown.py"
	}
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "syntax error"):
		return FixRecommendation{
			FixType: FixSyntaxCorrection, TargetFile: target, ErrorType: "SYNTAX",
			SuggestedFix: "Check for missing parentheses or quotes", Confidence: 0.7,
		}
	case strings.Contains(lower, "import"):
		return FixRecommendation{
			FixType: FixAddImport, TargetFile: target, LineNumber: 1, ErrorType: "IMPORT",
			NewCode: "# Add missing import statement", Confidence: 0.8,
		}
	case strings.Contains(lower, "undefined"), strings.Contains(lower, "not defined"):
		return FixRecommendation{
			FixType: FixDefineVariable, TargetFile: target, ErrorType: "UNDEFINED",
			SuggestedFix: "Initialize variable before use", Confidence: 0.75,
		}
	default:
		return FixRecommendation{
			FixType: FixManualReview, TargetFile: target, ErrorType: "UNKNOWN",
			SuggestedFix: "Requires manual investigation", Confidence: 0.5, ErrorMessage: msg,
		}
	}
}
