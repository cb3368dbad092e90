package workers

import (
	"context"
	"fmt"

	"handoff/pkg/proto"
	"handoff/pkg/status"
)

// Test success thresholds.
const (
	TestPassRate    = 0.90
	TestPartialRate = 0.50
)

// TestReport is the outcome of one test run.
type TestReport struct {
	Total    int      `json:"total"`
	Passed   int      `json:"passed"`
	Failed   int      `json:"failed"`
	Skipped  int      `json:"skipped"`
	Failures []string `json:"failures"`
}

// SuccessRate is Passed/Total, or 0 with no tests.
func (r TestReport) SuccessRate() float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.Passed) / float64(r.Total)
}

// TestRunner runs the test suite.
type TestRunner func(ctx context.Context) (TestReport, error)

// SimulatedTests reports ten tests with one failure.
func SimulatedTests(context.Context) (TestReport, error) {
	return TestReport{
		Total:    10,
		Passed:   9,
		Failed:   1,
		Failures: []string{"test_memory_allocation: AssertionError at line 45"},
	}, nil
}

// Tester runs tests and reports the success rate and failures.
type Tester struct {
	Run TestRunner // SimulatedTests when nil
}

// Execute implements registry.Worker.
func (t *Tester) Execute(ctx context.Context, _ status.Snapshot) (status.Result, error) {
	run := t.Run
	if run == nil {
		run = SimulatedTests
	}
	report, err := run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run tests: %w", err)
	}

	rate := report.SuccessRate()

	var state proto.AgentState
	var queue proto.QueueStatus
	switch {
	case rate >= TestPassRate:
		state, queue = proto.StateReady, proto.QueueApproved
	case rate >= TestPartialRate:
		state, queue = proto.StateProcessing, proto.QueueInProgress
	default:
		state, queue = proto.StateBlocked, proto.QueueRejected
	}

	result := ResultPartial
	if rate >= TestPassRate {
		result = ResultSuccess
	}

	failures := report.Failures
	if failures == nil {
		failures = []string{}
	}

	return status.Result{
		status.KeyAction:           "RUN_TESTS",
		status.KeyResult:           result,
		status.KeyAIState:          string(state),
		status.KeyAIQueueStatus:    string(queue),
		status.KeyHandoffRequested: true,
		status.KeyTestSuccessRate:  rate,
		status.KeyErrors:           failures,
		"test_results":             report,
	}, nil
}
