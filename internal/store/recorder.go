package store

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/codegrade/internal/harness"
)

// Recorder writes every verdict event of a run to the ledger. Write
// failures are logged and counted; they never affect grading.
type Recorder struct {
	ctx      context.Context
	store    *Store
	runID    string
	logger   *slog.Logger
	failures int
}

// NewRecorder returns an observer that records verdicts under runID. A nil
// logger discards.
func NewRecorder(ctx context.Context, s *Store, runID string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	// Recording continues after an interrupt so the partial run is complete.
	return &Recorder{ctx: context.WithoutCancel(ctx), store: s, runID: runID, logger: logger}
}

// Observe implements harness.Observer.
func (r *Recorder) Observe(e harness.Event) {
	if e.Kind != harness.EventVerdict {
		return
	}
	rec := VerdictFrom(r.runID, e.Seq, e.Verdict)
	if err := r.store.WriteVerdict(r.ctx, rec); err != nil {
		r.failures++
		r.logger.Error("failed to record verdict",
			"run_id", r.runID,
			"seq", e.Seq,
			"error", err,
		)
	}
}

// Failures returns how many verdicts could not be recorded.
func (r *Recorder) Failures() int {
	return r.failures
}

// VerdictFrom converts a harness verdict into its ledger record.
func VerdictFrom(runID string, seq int64, v harness.Verdict) VerdictRecord {
	return VerdictRecord{
		RunID:      runID,
		Seq:        seq,
		Challenge:  v.Run.Leaf.Challenge,
		Variant:    v.Run.Leaf.Variant,
		Iteration:  v.Run.Leaf.Iteration,
		Model:      v.Run.Model,
		Check:      v.Run.Check.Name,
		Outcome:    v.Outcome.String(),
		ExitCode:   v.ExitCode,
		OutputPath: v.OutputPath,
		Duration:   v.Duration,
		Detail:     v.Detail,
	}
}

// TotalsFrom converts a harness summary into ledger totals.
func TotalsFrom(s *harness.Summary) Totals {
	return Totals{
		Total:   s.Total,
		Passed:  s.Passed,
		Failed:  s.Failed,
		Errors:  s.Errors,
		Skipped: s.Skipped,
	}
}
