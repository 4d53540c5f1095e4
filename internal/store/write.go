package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned when a run ID is not in the ledger.
var ErrRunNotFound = errors.New("run not found")

// BeginRun inserts a run record. FinishedAt and Totals are ignored; they are
// filled in by FinishRun.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) BeginRun(ctx context.Context, run RunRecord) error {
	if run.ID == "" {
		return fmt.Errorf("begin run: empty run id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, artifact_root, filter, leaf_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.StartedAt.UnixMilli(),
		run.ArtifactRoot,
		run.Filter,
		run.LeafCount,
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// WriteVerdict inserts one verdict. A second write with the same (run, seq)
// is silently ignored. The run must exist (foreign key constraint).
func (s *Store) WriteVerdict(ctx context.Context, v VerdictRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verdicts
		(run_id, seq, challenge, variant, iteration, model, check_name, outcome, exit_code, output_path, duration_ms, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		v.RunID,
		v.Seq,
		v.Challenge,
		v.Variant,
		v.Iteration,
		v.Model,
		v.Check,
		v.Outcome,
		v.ExitCode,
		v.OutputPath,
		v.Duration.Milliseconds(),
		v.Detail,
	)
	if err != nil {
		return fmt.Errorf("write verdict: %w", err)
	}
	return nil
}

// FinishRun records a run's totals and end time.
func (s *Store) FinishRun(ctx context.Context, id string, totals Totals, finishedAt time.Time, interrupted bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, total = ?, passed = ?, failed = ?, errors = ?, skipped = ?, interrupted = ?
		WHERE id = ?
	`,
		finishedAt.UnixMilli(),
		totals.Total,
		totals.Passed,
		totals.Failed,
		totals.Errors,
		totals.Skipped,
		interrupted,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrRunNotFound)
	}
	return nil
}
