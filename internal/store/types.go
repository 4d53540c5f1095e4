package store

import (
	"time"

	"github.com/google/uuid"
)

// RunRecord is one grading invocation.
type RunRecord struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time // zero while unfinished
	ArtifactRoot string
	Filter       string
	LeafCount    int
	Totals       Totals
	Interrupted  bool
}

// Finished reports whether FinishRun has been recorded for the run.
func (r RunRecord) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Totals are the aggregate counts of a finished run.
type Totals struct {
	Total   int
	Passed  int
	Failed  int
	Errors  int
	Skipped int
}

// VerdictRecord is one counted verdict of a run.
type VerdictRecord struct {
	RunID      string
	Seq        int64
	Challenge  string
	Variant    string
	Iteration  string
	Model      string
	Check      string
	Outcome    string
	ExitCode   int
	OutputPath string
	Duration   time.Duration
	Detail     string
}

// NewRunID returns a fresh, time-ordered run identifier.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}
