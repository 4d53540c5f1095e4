package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Harness executes single runs: it checks the precondition, stages the
// check script inside the leaf, runs it and always removes the staged copy.
//
// A Harness holds no per-run state. Two runs against the same leaf must not
// overlap because they share the staged file name; the Runner guarantees
// that.
type Harness struct {
	matrix     *Matrix
	checksDir  string
	resultsDir string
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger used for warnings. Defaults to discarding.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// WithClock overrides the time source used to measure run durations.
func WithClock(now func() time.Time) Option {
	return func(h *Harness) {
		h.now = now
	}
}

// New creates a Harness. checksDir holds one subdirectory of check scripts
// per challenge; resultsDir receives one output file per run.
func New(m *Matrix, checksDir, resultsDir string, opts ...Option) *Harness {
	h := &Harness{
		matrix:     m,
		checksDir:  checksDir,
		resultsDir: resultsDir,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Matrix returns the matrix the harness grades against.
func (h *Harness) Matrix() *Matrix {
	return h.matrix
}

// ScriptPath returns where the check script for run is expected.
func (h *Harness) ScriptPath(run Run) string {
	return filepath.Join(h.checksDir, run.Leaf.Challenge, run.Check.Script)
}

// Execute performs one run and returns its verdict. It never returns an
// error: every failure mode is a verdict. Exactly one result file is
// written per call.
//
// Execution flow:
//  1. Create (truncate) the result file
//  2. Verify the check script exists, else verdict missing_check
//  3. Copy the script into the leaf under the staged name
//  4. Run it with the leaf as working directory and the model as argument
//  5. Remove the staged copy, whatever happened in 4
//
// An existing file under the staged name is never overwritten or removed;
// the run becomes a spawn_error instead.
func (h *Harness) Execute(ctx context.Context, run Run) (v Verdict) {
	start := h.now()
	v = Verdict{Run: run, ExitCode: -1}
	defer func() {
		v.Duration = h.now().Sub(start)
	}()

	outPath := filepath.Join(h.resultsDir, run.ResultFileName())
	out, err := os.Create(outPath)
	if err != nil {
		h.logger.Error("failed to create result file", "path", outPath, "error", err)
		v.Outcome = OutcomeSpawnError
		v.Detail = fmt.Sprintf("create result file: %v", err)
		return v
	}
	defer out.Close()
	v.OutputPath = outPath

	script := h.ScriptPath(run)
	if info, err := os.Stat(script); err != nil || !info.Mode().IsRegular() {
		h.logger.Warn("check script not found",
			"script", script,
			"leaf", run.Leaf.String(),
			"model", run.Model,
		)
		v.Outcome = OutcomeMissingCheck
		v.Detail = fmt.Sprintf("check script not found: %s", script)
		fmt.Fprintln(out, v.Detail)
		return v
	}

	staged := filepath.Join(run.Leaf.Path, h.matrix.StagedFile(run.Check))
	if err := copyFile(script, staged); err != nil {
		if errors.Is(err, fs.ErrExist) {
			h.logger.Warn("staged check name already taken, leaving it untouched",
				"path", staged,
				"leaf", run.Leaf.String(),
			)
		}
		v.Outcome = OutcomeSpawnError
		v.Detail = fmt.Sprintf("stage check script: %v", err)
		fmt.Fprintln(out, v.Detail)
		return v
	}
	// Only a copy this run created is removed.
	defer h.cleanup(staged)

	argv := h.matrix.Command(run.Check, run.Model)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = run.Leaf.Path
	cmd.Stdout = out
	cmd.Stderr = out

	err = cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		v.Outcome = OutcomePass
		v.ExitCode = 0
	case errors.As(err, &exitErr):
		v.Outcome = OutcomeFail
		v.ExitCode = exitErr.ExitCode()
		v.Detail = fmt.Sprintf("exit status %d", v.ExitCode)
		if v.ExitCode < 0 {
			v.Detail = fmt.Sprintf("terminated: %v", exitErr)
		}
	default:
		v.Outcome = OutcomeSpawnError
		v.Detail = fmt.Sprintf("start check: %v", err)
		fmt.Fprintln(out, v.Detail)
	}
	return v
}

// cleanup removes the staged script. A missing file is fine: staging may
// have failed before creating it.
func (h *Harness) cleanup(staged string) {
	if err := os.Remove(staged); err != nil && !errors.Is(err, os.ErrNotExist) {
		h.logger.Error("failed to remove staged check", "path", staged, "error", err)
	}
}

// copyFile copies src to a new file dst, keeping src's permission bits so
// directly executed scripts stay executable. It fails with fs.ErrExist if
// dst is already there, and removes dst again if the copy fails midway.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	// The umask may have stripped bits at creation.
	return os.Chmod(dst, info.Mode().Perm())
}
