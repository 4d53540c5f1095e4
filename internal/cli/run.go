package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/codegrade/internal/config"
	"github.com/roach88/codegrade/internal/harness"
	"github.com/roach88/codegrade/internal/metrics"
	"github.com/roach88/codegrade/internal/report"
	"github.com/roach88/codegrade/internal/store"
)

// Auxiliary outputs written next to the result files.
const (
	LedgerFileName  = "ledger.db"
	MetricsFileName = "metrics.prom"
)

func grade(cmd *cobra.Command, opts *RootOptions, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))

	root, err := opts.InstallRoot()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to locate install root", err)
	}

	cfg, err := config.Resolve(root, args)
	if err != nil {
		return WrapExitError(ExitFailure, "cannot start grading", err)
	}

	leaves, err := harness.Discover(cfg.CodeDir, cfg.Filter)
	if err != nil {
		if errors.Is(err, harness.ErrNoLeaves) {
			return WrapExitError(ExitFailure, "nothing to grade", err)
		}
		return WrapExitError(ExitFailure, "failed to discover artifacts", err)
	}

	out := cmd.OutOrStdout()
	live := report.NewLive(out, report.WithInline(opts.IsTerminal(out)))
	live.Banner(cfg.CodeDir, len(leaves))

	metricsRec := metrics.NewRecorder()
	observers := []harness.Observer{live, metricsRec}

	ledger := openLedger(ctx, cfg, len(leaves), logger)
	if ledger != nil {
		defer func() {
			if closeErr := ledger.store.Close(); closeErr != nil {
				logger.Error("error closing ledger", "error", closeErr)
			}
		}()
		observers = append(observers, store.NewRecorder(ctx, ledger.store, ledger.runID, logger))
	}

	h := harness.New(opts.Matrix, cfg.ChecksDir, cfg.ResultsDir, harness.WithLogger(logger))
	runner := harness.NewRunner(h, harness.WithObservers(observers...))

	summary, runErr := runner.Run(ctx, leaves)
	if runErr != nil {
		logger.Warn("grading interrupted, remaining runs were not started", "error", runErr)
	}
	live.Summary(summary, cfg.ResultsDir)

	finished := time.Now()
	if ledger != nil {
		err := ledger.store.FinishRun(context.WithoutCancel(ctx), ledger.runID,
			store.TotalsFrom(summary), finished, runErr != nil)
		if err != nil {
			logger.Error("failed to finish ledger run", "run_id", ledger.runID, "error", err)
		}
	}
	metricsPath := filepath.Join(cfg.ResultsDir, MetricsFileName)
	if err := metricsRec.WriteTextfile(metricsPath, summary, finished); err != nil {
		logger.Error("failed to write metrics", "path", metricsPath, "error", err)
	}

	switch {
	case runErr != nil:
		return WrapExitError(ExitFailure, "grading interrupted", runErr)
	case summary.Total == 0:
		return NewExitError(ExitFailure, "no checks were run: no model artifacts found")
	case !summary.OK():
		return NewExitError(summary.ExitCode(),
			fmt.Sprintf("%d of %d checks failed", summary.Failed, summary.Total))
	}
	return nil
}

type ledgerRun struct {
	store *store.Store
	runID string
}

// openLedger opens the run ledger and records the start of a run. The
// ledger is auxiliary: on failure it logs and returns nil.
func openLedger(ctx context.Context, cfg *config.Config, leaves int, logger *slog.Logger) *ledgerRun {
	path := filepath.Join(cfg.ResultsDir, LedgerFileName)
	st, err := store.Open(path)
	if err != nil {
		logger.Error("failed to open ledger, continuing without it", "path", path, "error", err)
		return nil
	}

	run := store.RunRecord{
		ID:           store.NewRunID(),
		StartedAt:    time.Now(),
		ArtifactRoot: cfg.CodeDir,
		Filter:       cfg.Filter,
		LeafCount:    leaves,
	}
	if err := st.BeginRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Error("failed to record run start, continuing without ledger", "error", err)
		st.Close()
		return nil
	}
	logger.Debug("ledger run started", "run_id", run.ID)
	return &ledgerRun{store: st, runID: run.ID}
}
