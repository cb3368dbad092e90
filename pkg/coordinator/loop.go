package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"handoff/pkg/audit"
	"handoff/pkg/metrics"
	"handoff/pkg/proto"
	"handoff/pkg/registry"
	"handoff/pkg/status"
)

// Reason says why a run stopped normally.
type Reason string

const (
	ReasonDone           Reason = Reason(proto.StateDone)
	ReasonFailed         Reason = Reason(proto.StateFailed)
	ReasonNoValidAgent   Reason = "no valid next agent"
	ReasonIterationLimit Reason = "iteration limit reached"
)

func (r Reason) String() string {
	return string(r)
}

// ErrInvalidMaxIterations is returned by Run when maxIterations is not positive.
var ErrInvalidMaxIterations = errors.New("max iterations must be positive")

// Outcome describes a run that terminated normally.
type Outcome struct {
	RunID string
	// Iterations counts iterations entered, including the one that stopped the run.
	Iterations int
	Reason     Reason
	Final      status.Snapshot
	Log        []audit.Entry
	// Rejected holds the routing decision that failed the dispatch guard, if any.
	Rejected *proto.RoutingDecision
}

// Run drives the cycle until a terminal state, an unusable routing decision,
// or maxIterations. Any failure of the backend, decoder, merge or a worker
// aborts the run; the record keeps whatever was merged before the failure.
func (c *Coordinator) Run(ctx context.Context, maxIterations int) (*Outcome, error) {
	if maxIterations <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxIterations, maxIterations)
	}

	out := &Outcome{RunID: c.newRunID(), Log: []audit.Entry{}}
	started := c.now()
	c.logger.Info("run %s started: max_iterations=%d workers=%v", out.RunID, maxIterations, c.registry.Names())

	err := c.loop(ctx, maxIterations, out)
	out.Final = c.record.Snapshot()
	c.finish(ctx, out, started, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Coordinator) loop(ctx context.Context, maxIterations int, out *Outcome) error {
	for iteration := 1; ; iteration++ {
		out.Iterations = iteration

		st := c.record.Snapshot()
		if st.AIState.IsTerminal() {
			out.Reason = Reason(st.AIState)
			return nil
		}

		decision, err := c.Route(ctx)
		if err != nil {
			return fmt.Errorf("iteration %d: %w", iteration, err)
		}

		worker, ok := c.registry.Lookup(decision.NextAgent)
		if decision.IsNone() || !ok {
			c.logger.Warn("iteration %d: no valid next agent %q", iteration, decision.NextAgent)
			out.Reason = ReasonNoValidAgent
			out.Rejected = &decision
			return nil
		}

		result, err := c.dispatch(ctx, decision.NextAgent, worker, st)
		if err != nil {
			return fmt.Errorf("iteration %d: %w", iteration, err)
		}

		if err := c.record.Merge(result, decision.NextAgent); err != nil {
			return fmt.Errorf("iteration %d: merge %s result: %w", iteration, decision.NextAgent, err)
		}

		entry := audit.NewEntry(out.RunID, iteration, decision, decision.NextAgent, result, c.record.Snapshot(), c.now())
		out.Log = append(out.Log, entry)
		c.forward(ctx, &entry)

		c.logger.Info("iteration %d: %s -> state=%s queue=%s errors=%d",
			iteration, decision.NextAgent, entry.Status.AIState, entry.Status.AIQueueStatus, entry.Status.ErrorCount)

		if iteration >= maxIterations {
			out.Reason = ReasonIterationLimit
			return nil
		}
	}
}

func (c *Coordinator) dispatch(ctx context.Context, name string, w registry.Worker, st status.Snapshot) (status.Result, error) {
	start := c.now()
	result, err := w.Execute(ctx, st)

	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
	}
	c.recorder.ObserveDispatch(name, outcome, c.now().Sub(start))

	if err != nil {
		return nil, fmt.Errorf("worker %s: %w", name, err)
	}
	if result == nil {
		result = status.Result{}
	}
	return result, nil
}

// forward sends one entry to every sink. Sink failures are logged; the in-memory log stays authoritative.
func (c *Coordinator) forward(ctx context.Context, e *audit.Entry) {
	for _, s := range c.sinks {
		if err := s.Record(ctx, e); err != nil {
			c.logger.Warn("audit sink failed to record iteration %d: %v", e.Iteration, err)
		}
	}
}

func (c *Coordinator) finish(ctx context.Context, out *Outcome, started time.Time, runErr error) {
	sum := &audit.Summary{
		RunID:      out.RunID,
		Iterations: out.Iterations,
		Final:      out.Final,
		StartedAt:  started,
		FinishedAt: c.now(),
	}
	if runErr != nil {
		sum.Error = runErr.Error()
		c.logger.Error("run %s failed after %d iterations: %v", out.RunID, out.Iterations, runErr)
	} else {
		sum.Reason = out.Reason.String()
		c.logger.Info("run %s finished: %s after %d iterations", out.RunID, out.Reason, out.Iterations)
	}
	c.recorder.ObserveRun(sum.Reason, out.Iterations)

	for _, s := range c.sinks {
		if err := s.Finish(ctx, sum); err != nil {
			c.logger.Warn("audit sink failed to record run summary: %v", err)
		}
	}
}
