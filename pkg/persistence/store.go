package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"handoff/pkg/audit"
)

// Record implements audit.Sink. The owning run row is created on first sight.
func (s *Store) Record(ctx context.Context, e *audit.Entry) error {
	result, err := json.Marshal(e.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	st, err := json.Marshal(e.Status)
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO runs (id, started_at) VALUES (?, ?)`,
		e.RunID, e.Timestamp.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", e.RunID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO entries (id, run_id, iteration, agent, rationale, result, status, recorded_at, ai_state, error_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), e.RunID, e.Iteration, e.Agent, e.Decision.Rationale,
		string(result), string(st), e.Timestamp.UTC().Format(time.RFC3339Nano),
		e.Status.AIState.String(), e.Status.ErrorCount,
	); err != nil {
		return fmt.Errorf("failed to insert entry %s/%d: %w", e.RunID, e.Iteration, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entry: %w", err)
	}
	return nil
}

// Finish implements audit.Sink.
func (s *Store) Finish(ctx context.Context, sum *audit.Summary) error {
	final, err := json.Marshal(sum.Final)
	if err != nil {
		return fmt.Errorf("failed to encode final status: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, iterations, reason, error, final_status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			iterations = excluded.iterations,
			reason = excluded.reason,
			error = excluded.error,
			final_status = excluded.final_status`,
		sum.RunID,
		sum.StartedAt.UTC().Format(time.RFC3339Nano),
		sum.FinishedAt.UTC().Format(time.RFC3339Nano),
		sum.Iterations, nullable(sum.Reason), nullable(sum.Error), string(final),
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", sum.RunID, err)
	}
	s.logger.Debug("run %s recorded: %d iterations (%s)", sum.RunID, sum.Iterations, sum.Reason)
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
