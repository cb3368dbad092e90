// Package audit defines the per-iteration audit entry and the sinks that
// export a run's entries outside the process.
package audit

import (
	"context"
	"maps"
	"time"

	"handoff/pkg/proto"
	"handoff/pkg/status"
)

// Entry records one completed iteration: the routing decision, the worker
// that ran, its raw result, and the Status Record after merging it.
type Entry struct {
	RunID     string                `json:"run_id"`
	Iteration int                   `json:"iteration"`
	Decision  proto.RoutingDecision `json:"decision"`
	Agent     string                `json:"agent"`
	Result    status.Result         `json:"result"`
	Status    status.Snapshot       `json:"status"`
	Timestamp time.Time             `json:"timestamp"`
}

// NewEntry builds an entry, copying result so later mutation by the worker is not observed.
func NewEntry(runID string, iteration int, decision proto.RoutingDecision, agent string,
	result status.Result, st status.Snapshot, at time.Time,
) Entry {
	return Entry{
		RunID:     runID,
		Iteration: iteration,
		Decision:  decision,
		Agent:     agent,
		Result:    maps.Clone(result),
		Status:    st.Clone(),
		Timestamp: at,
	}
}

// Summary closes a run.
type Summary struct {
	RunID      string          `json:"run_id"`
	Iterations int             `json:"iterations"`
	Reason     string          `json:"reason,omitempty"`
	Error      string          `json:"error,omitempty"`
	Final      status.Snapshot `json:"final"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Sink receives entries as they are appended and a summary when the run ends.
// Sinks are write-only; nothing is read back to resume a cycle.
type Sink interface {
	Record(ctx context.Context, e *Entry) error
	Finish(ctx context.Context, s *Summary) error
}

// Memory keeps everything in process. It is mostly useful in tests.
type Memory struct {
	Entries   []Entry
	Summaries []Summary
}

// Record implements Sink.
func (m *Memory) Record(_ context.Context, e *Entry) error {
	m.Entries = append(m.Entries, *e)
	return nil
}

// Finish implements Sink.
func (m *Memory) Finish(_ context.Context, s *Summary) error {
	m.Summaries = append(m.Summaries, *s)
	return nil
}
