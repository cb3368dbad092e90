// Package proto defines the closed vocabularies and decision values exchanged
// between the coordinator, its decision backend, and its workers.
package proto

import (
	"fmt"
)

// AgentState drives loop continuation.
type AgentState string

const (
	StateProcessing AgentState = "PROCESSING"
	StateReady      AgentState = "READY"
	StateDone       AgentState = "DONE"
	StateBlocked    AgentState = "BLOCKED"
	StatePaused     AgentState = "PAUSED"
	StateFailed     AgentState = "FAILED"
	StateCancelled  AgentState = "CANCELLED"
)

// AllAgentStates lists every AgentState in declaration order.
func AllAgentStates() []AgentState {
	return []AgentState{
		StateProcessing, StateReady, StateDone, StateBlocked,
		StatePaused, StateFailed, StateCancelled,
	}
}

// ParseAgentState converts s to an AgentState. Matching is exact; there is no default.
func ParseAgentState(s string) (AgentState, error) {
	switch AgentState(s) {
	case StateProcessing, StateReady, StateDone, StateBlocked, StatePaused, StateFailed, StateCancelled:
		return AgentState(s), nil
	default:
		return "", fmt.Errorf("unknown agent state: %q", s)
	}
}

// String returns the string representation of AgentState.
func (s AgentState) String() string {
	return string(s)
}

// IsTerminal reports whether the loop halts on this state.
// BLOCKED, PAUSED and CANCELLED are informational only.
func (s AgentState) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

func (s AgentState) MarshalText() ([]byte, error) {
	if _, err := ParseAgentState(string(s)); err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (s *AgentState) UnmarshalText(b []byte) error {
	parsed, err := ParseAgentState(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// QueueStatus is advisory context for the decision backend; the loop never branches on it.
type QueueStatus string

const (
	QueueQueued           QueueStatus = "QUEUED"
	QueueAssigned         QueueStatus = "ASSIGNED"
	QueueInProgress       QueueStatus = "IN_PROGRESS"
	QueueReviewPending    QueueStatus = "REVIEW_PENDING"
	QueueReviewInProgress QueueStatus = "REVIEW_IN_PROGRESS"
	QueueApproved         QueueStatus = "APPROVED"
	QueueRejected         QueueStatus = "REJECTED"
	QueueCompleted        QueueStatus = "COMPLETED"
	QueueAbandoned        QueueStatus = "ABANDONED"
)

// AllQueueStatuses lists every QueueStatus in declaration order.
func AllQueueStatuses() []QueueStatus {
	return []QueueStatus{
		QueueQueued, QueueAssigned, QueueInProgress, QueueReviewPending,
		QueueReviewInProgress, QueueApproved, QueueRejected, QueueCompleted, QueueAbandoned,
	}
}

// ParseQueueStatus converts s to a QueueStatus. Matching is exact; there is no default.
func ParseQueueStatus(s string) (QueueStatus, error) {
	switch QueueStatus(s) {
	case QueueQueued, QueueAssigned, QueueInProgress, QueueReviewPending, QueueReviewInProgress,
		QueueApproved, QueueRejected, QueueCompleted, QueueAbandoned:
		return QueueStatus(s), nil
	default:
		return "", fmt.Errorf("unknown queue status: %q", s)
	}
}

// String returns the string representation of QueueStatus.
func (q QueueStatus) String() string {
	return string(q)
}

func (q QueueStatus) MarshalText() ([]byte, error) {
	if _, err := ParseQueueStatus(string(q)); err != nil {
		return nil, err
	}
	return []byte(q), nil
}

func (q *QueueStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseQueueStatus(string(b))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
