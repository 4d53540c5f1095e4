package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetRun returns the run with the given ID, or ErrRunNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (RunRecord, error) {
	var (
		r          RunRecord
		startedAt  int64
		finishedAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, artifact_root, filter, leaf_count,
		       total, passed, failed, errors, skipped, interrupted
		FROM runs
		WHERE id = ?
	`, id).Scan(
		&r.ID,
		&startedAt,
		&finishedAt,
		&r.ArtifactRoot,
		&r.Filter,
		&r.LeafCount,
		&r.Totals.Total,
		&r.Totals.Passed,
		&r.Totals.Failed,
		&r.Totals.Errors,
		&r.Totals.Skipped,
		&r.Interrupted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run: %w", err)
	}

	r.StartedAt = time.UnixMilli(startedAt).UTC()
	if finishedAt.Valid {
		r.FinishedAt = time.UnixMilli(finishedAt.Int64).UTC()
	}
	return r, nil
}

// ListVerdicts returns the verdicts of a run ordered by seq.
// Returns an empty slice (not nil) if the run has none.
func (s *Store) ListVerdicts(ctx context.Context, runID string) ([]VerdictRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, challenge, variant, iteration, model, check_name,
		       outcome, exit_code, output_path, duration_ms, detail
		FROM verdicts
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query verdicts: %w", err)
	}
	defer rows.Close()

	verdicts := []VerdictRecord{}
	for rows.Next() {
		var (
			v  VerdictRecord
			ms int64
		)
		if err := rows.Scan(
			&v.RunID,
			&v.Seq,
			&v.Challenge,
			&v.Variant,
			&v.Iteration,
			&v.Model,
			&v.Check,
			&v.Outcome,
			&v.ExitCode,
			&v.OutputPath,
			&ms,
			&v.Detail,
		); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		v.Duration = time.Duration(ms) * time.Millisecond
		verdicts = append(verdicts, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verdicts: %w", err)
	}
	return verdicts, nil
}

// ListRuns returns every run in the ledger, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM runs
		ORDER BY started_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	// The pool holds a single connection; release it before GetRun.
	rows.Close()

	runs := make([]RunRecord, 0, len(ids))
	for _, id := range ids {
		r, err := s.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, nil
}
