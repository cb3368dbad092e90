package workers

import (
	"context"

	"handoff/pkg/prompt"
	"handoff/pkg/proto"
	"handoff/pkg/status"
)

// CommitMessage is proposed when the cycle is ready to commit.
const CommitMessage = "Autonomous development cycle completed successfully"

// Finalizer completes the cycle when both success rates meet the commit
// thresholds and blocks it otherwise.
type Finalizer struct{}

// Execute implements registry.Worker.
func (Finalizer) Execute(_ context.Context, st status.Snapshot) (status.Result, error) {
	build, test := st.BuildSuccessRate, st.TestSuccessRate

	if build >= prompt.ThresholdBuild && test >= prompt.ThresholdTest {
		return status.Result{
			status.KeyAction:           "FINALIZE",
			status.KeyResult:           ResultSuccess,
			status.KeyAIState:          string(proto.StateDone),
			status.KeyAIQueueStatus:    string(proto.QueueCompleted),
			status.KeyHandoffRequested: false,
			status.KeyBuildSuccessRate: build,
			status.KeyTestSuccessRate:  test,
			"commit_ready":             true,
			"commit_message":           CommitMessage,
		}, nil
	}

	return status.Result{
		status.KeyAction:           "FINALIZE",
		status.KeyResult:           ResultFailure,
		status.KeyAIState:          string(proto.StateBlocked),
		status.KeyAIQueueStatus:    string(proto.QueueRejected),
		status.KeyHandoffRequested: true,
		status.KeyBuildSuccessRate: build,
		status.KeyTestSuccessRate:  test,
		"commit_ready":             false,
		"reason":                   "Success rates below threshold",
		"required_build_rate":      prompt.ThresholdBuild,
		"required_test_rate":       prompt.ThresholdTest,
	}, nil
}
