package workers

import (
	"context"
	"fmt"

	"handoff/pkg/proto"
	"handoff/pkg/status"
)

// BuildReport is the outcome of one build.
type BuildReport struct {
	Status   string   `json:"status"` // SUCCESS or FAILURE
	Duration float64  `json:"duration"`
	Warnings int      `json:"warnings"`
	Errors   []string `json:"errors"`
}

// BuildRunner runs the build.
type BuildRunner func(ctx context.Context) (BuildReport, error)

// SimulatedBuild always succeeds with two warnings.
func SimulatedBuild(context.Context) (BuildReport, error) {
	return BuildReport{Status: ResultSuccess, Duration: 45.2, Warnings: 2, Errors: []string{}}, nil
}

// Builder runs the build and reports a binary success rate.
type Builder struct {
	Run BuildRunner // SimulatedBuild when nil
}

// Execute implements registry.Worker.
func (b *Builder) Execute(ctx context.Context, _ status.Snapshot) (status.Result, error) {
	run := b.Run
	if run == nil {
		run = SimulatedBuild
	}
	report, err := run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run build: %w", err)
	}

	rate := 0.0
	state, queue := proto.StateBlocked, proto.QueueRejected
	if report.Status == ResultSuccess {
		rate = 1.0
		state, queue = proto.StateReady, proto.QueueCompleted
	}

	errs := report.Errors
	if errs == nil {
		errs = []string{}
	}

	return status.Result{
		status.KeyAction:           "BUILD",
		status.KeyResult:           report.Status,
		status.KeyAIState:          string(state),
		status.KeyAIQueueStatus:    string(queue),
		status.KeyHandoffRequested: true,
		status.KeyBuildSuccessRate: rate,
		status.KeyErrors:           errs,
		"build_results":            report,
	}, nil
}
